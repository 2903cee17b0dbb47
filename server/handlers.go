package server

import (
	"context"
	"encoding/json"
	"net/http"

	"rhythmcloud/config"
	"rhythmcloud/core/auth"
	"rhythmcloud/core/oauth"
	"rhythmcloud/logger"
	"rhythmcloud/repository"
	"rhythmcloud/storage"

	"golang.org/x/oauth2"
)

// IdentityProvider is the slice of the OAuth provider the handlers need.
// Satisfied by oauth.GoogleProvider.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	FetchProfile(ctx context.Context, token *oauth2.Token) (*oauth.Profile, error)
}

// APIHandler handles all API requests. External clients are injected rather
// than reached through package globals so the handlers stay testable.
type APIHandler struct {
	userRepo    repository.UserRepository
	songRepo    repository.SongRepository
	store       storage.ObjectStore
	provider    IdentityProvider
	revocations auth.RevocationStore
	cfg         *config.Config
	secret      []byte
}

// NewAPIHandler creates a new API handler.
func NewAPIHandler(
	userRepo repository.UserRepository,
	songRepo repository.SongRepository,
	store storage.ObjectStore,
	provider IdentityProvider,
	revocations auth.RevocationStore,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		userRepo:    userRepo,
		songRepo:    songRepo,
		store:       store,
		provider:    provider,
		revocations: revocations,
		cfg:         cfg,
		secret:      []byte(cfg.SessionSecret),
	}
}

// writeJSON encodes v as the response body.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", logger.ErrorField(err))
	}
}
