package server

import (
	"context"
	"net/http"

	"rhythmcloud/core/auth"
	"rhythmcloud/logger"
	"rhythmcloud/model"
)

type contextKey string

const userContextKey contextKey = "currentUser"

// SessionMiddleware deserializes the session cookie into an optional current
// user. Every failure mode short of a handler bug degrades to an
// unauthenticated request: missing cookie, bad signature, expired or revoked
// token, and a user id that no longer resolves to a record.
func (h *APIHandler) SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := auth.ParseSessionToken(h.secret, cookie.Value)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		revoked, err := h.revocations.IsRevoked(r.Context(), claims.ID)
		if err != nil {
			logger.Warn("revocation check failed, treating request as unauthenticated", logger.ErrorField(err))
			next.ServeHTTP(w, r)
			return
		}
		if revoked {
			next.ServeHTTP(w, r)
			return
		}

		user, err := h.userRepo.GetUserByID(r.Context(), claims.UserID)
		if err != nil {
			logger.Error("failed to resolve session user", logger.String("userId", claims.UserID), logger.ErrorField(err))
			next.ServeHTTP(w, r)
			return
		}
		if user == nil {
			// Stale session: the record behind it is gone.
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CurrentUser returns the authenticated user bound to the request, or nil.
func CurrentUser(ctx context.Context) *model.User {
	user, ok := ctx.Value(userContextKey).(*model.User)
	if !ok {
		return nil
	}
	return user
}

// CORSMiddleware applies permissive CORS headers to every route, matching the
// open frontend the catalog serves.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
