package server

import (
	"net/http"

	"rhythmcloud/logger"

	"github.com/gorilla/mux"
)

// GetSongsHandler returns the whole catalog, newest first. Public; no
// authentication required.
func (h *APIHandler) GetSongsHandler(w http.ResponseWriter, r *http.Request) {
	songs, err := h.songRepo.ListSongs(r.Context())
	if err != nil {
		logger.Error("failed to list songs", logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, songs)
}

// LikeSongHandler flips membership of the song id in the caller's liked set
// and returns the updated user record. The song id is not checked for
// existence; a nonexistent id can be liked, matching the original behavior.
func (h *APIHandler) LikeSongHandler(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())
	if user == nil {
		http.Error(w, "Login required", http.StatusUnauthorized)
		return
	}

	songID := mux.Vars(r)["id"]
	updated, err := h.userRepo.ToggleLikedSong(r.Context(), user.ID.Hex(), songID)
	if err != nil {
		logger.Error("failed to toggle liked song",
			logger.String("userId", user.ID.Hex()),
			logger.String("songId", songID),
			logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if updated == nil {
		// The account disappeared between session resolution and the toggle.
		http.Error(w, "Login required", http.StatusUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}
