package server

import (
	"net/http"
	"time"

	"rhythmcloud/core/auth"
	"rhythmcloud/logger"
	"rhythmcloud/model"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const (
	sessionCookieName = "rc_session"
	stateCookieName   = "rc_oauth_state"
	stateTTL          = 10 * time.Minute
)

// providerFromRequest validates the {provider} route variable. Only Google is
// wired in this deployment; the route shape leaves room for more.
func providerFromRequest(r *http.Request) (string, bool) {
	name := mux.Vars(r)["provider"]
	return name, name == "google"
}

// ProviderStartHandler redirects the browser to the provider consent screen,
// planting a short-lived CSRF state cookie on the way out.
func (h *APIHandler) ProviderStartHandler(w http.ResponseWriter, r *http.Request) {
	name, ok := providerFromRequest(r)
	if !ok {
		logger.Warn("unknown identity provider requested", logger.String("provider", name))
		http.NotFound(w, r)
		return
	}

	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusFound)
}

// ProviderCallbackHandler completes the OAuth flow: verify state, exchange the
// code, fetch the profile, resolve it to a local user, and bind a session.
// Nothing is persisted on any failure before the find-or-create step.
func (h *APIHandler) ProviderCallbackHandler(w http.ResponseWriter, r *http.Request) {
	name, ok := providerFromRequest(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		logger.Warn("provider denied authorization",
			logger.String("provider", name),
			logger.String("error", errParam))
		http.Error(w, "Authentication failed", http.StatusUnauthorized)
		return
	}

	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		http.Error(w, "Missing code or state", http.StatusBadRequest)
		return
	}

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value != state {
		logger.Warn("oauth state mismatch", logger.String("provider", name))
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}
	clearCookie(w, stateCookieName)

	token, err := h.provider.Exchange(r.Context(), code)
	if err != nil {
		logger.Error("token exchange failed", logger.ErrorField(err))
		http.Error(w, "Authentication failed", http.StatusUnauthorized)
		return
	}

	profile, err := h.provider.FetchProfile(r.Context(), token)
	if err != nil {
		logger.Error("failed to fetch provider profile", logger.ErrorField(err))
		http.Error(w, "Authentication failed", http.StatusUnauthorized)
		return
	}

	user, err := h.userRepo.FindOrCreateByGoogleID(r.Context(), &model.User{
		GoogleID:    profile.Subject,
		DisplayName: profile.Name,
		Email:       profile.Email,
		Photo:       profile.Picture,
	})
	if err != nil {
		logger.Error("failed to resolve user for provider profile", logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	sessionToken, err := auth.GenerateSessionToken(h.secret, user.ID.Hex())
	if err != nil {
		logger.Error("failed to mint session token", logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionToken,
		Path:     "/",
		MaxAge:   int(auth.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	logger.Info("user signed in",
		logger.String("userId", user.ID.Hex()),
		logger.String("provider", name))
	http.Redirect(w, r, "/", http.StatusFound)
}

// CurrentUserHandler returns the session's user, or JSON null when the
// request carries no valid session.
func (h *APIHandler) CurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CurrentUser(r.Context()))
}

// LogoutHandler revokes the session server-side, clears the cookie, and sends
// the browser home. Safe to call without a session.
func (h *APIHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if claims, err := auth.ParseSessionToken(h.secret, cookie.Value); err == nil {
			ttl := time.Until(claims.ExpiresAt.Time)
			if err := h.revocations.Revoke(r.Context(), claims.ID, ttl); err != nil {
				logger.Error("failed to revoke session", logger.String("sessionId", claims.ID), logger.ErrorField(err))
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}
		}
	}

	clearCookie(w, sessionCookieName)
	http.Redirect(w, r, "/", http.StatusFound)
}

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
