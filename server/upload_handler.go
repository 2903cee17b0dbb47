package server

import (
	"errors"
	"fmt"
	"net/http"

	"rhythmcloud/logger"
	"rhythmcloud/model"
)

// maxUploadSize caps the request body for admin uploads.
const maxUploadSize = 50 << 20 // 50MB

// AdminUploadHandler ingests one audio file from the configured administrator
// and registers it as a Song. The Song record is created only after storage
// confirms the upload, so a storage failure leaves no partial record.
func (h *APIHandler) AdminUploadHandler(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())
	if user == nil || h.cfg.AdminEmail == "" || user.Email != h.cfg.AdminEmail {
		http.Error(w, "Access Denied: Only The RhythmCloud Admin can upload.", http.StatusForbidden)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		logger.Warn("failed to parse upload form", logger.ErrorField(err))
		http.Error(w, "Failed to parse upload form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("song")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			// Soft outcome, mirrored from the original: absence of a file is
			// not a server error and creates nothing.
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			fmt.Fprint(w, "No file uploaded")
			return
		}
		logger.Warn("failed to read uploaded file", logger.ErrorField(err))
		http.Error(w, "Failed to process uploaded file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	title := r.FormValue("title")
	if title == "" {
		http.Error(w, "Missing 'title' in form", http.StatusBadRequest)
		return
	}

	url, err := h.store.UploadAudio(r.Context(), file, header.Size)
	if err != nil {
		logger.Error("failed to store uploaded audio",
			logger.String("title", title),
			logger.Int64("size", header.Size),
			logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	song := &model.Song{
		Title:  title,
		Artist: model.StudioArtist,
		URL:    url,
		Cover:  model.DefaultCover,
	}
	if _, err := h.songRepo.CreateSong(r.Context(), song); err != nil {
		logger.Error("failed to create song record",
			logger.String("title", title),
			logger.String("url", url),
			logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	logger.Info("song uploaded",
		logger.String("title", title),
		logger.String("url", url),
		logger.String("by", user.Email))
	http.Redirect(w, r, "/", http.StatusFound)
}
