package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"rhythmcloud/core/auth"
	"rhythmcloud/model"
)

// sessionCookieFor mints a valid session cookie for the given user.
func sessionCookieFor(t *testing.T, env *testEnv, user *model.User) *http.Cookie {
	t.Helper()

	token, err := auth.GenerateSessionToken(env.handler.secret, user.ID.Hex())
	if err != nil {
		t.Fatalf("failed to mint session token: %v", err)
	}
	return &http.Cookie{Name: sessionCookieName, Value: token}
}

func TestSessionMiddleware(t *testing.T) {
	t.Run("No Cookie", func(t *testing.T) {
		env := newTestEnv()

		var seen *model.User
		handler := env.handler.SessionMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = CurrentUser(r.Context())
		}))

		req := httptest.NewRequest("GET", "/api/current_user", nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)

		if seen != nil {
			t.Errorf("expected no current user, got %v", seen)
		}
	})

	t.Run("Valid Session", func(t *testing.T) {
		env := newTestEnv()
		user := env.users.add(&model.User{GoogleID: "g1", Email: "u@example.com"})

		var seen *model.User
		handler := env.handler.SessionMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = CurrentUser(r.Context())
		}))

		req := httptest.NewRequest("GET", "/api/current_user", nil)
		req.AddCookie(sessionCookieFor(t, env, user))
		handler.ServeHTTP(httptest.NewRecorder(), req)

		if seen == nil {
			t.Fatal("expected current user to be resolved")
		}
		if seen.ID != user.ID {
			t.Errorf("expected user %s, got %s", user.ID.Hex(), seen.ID.Hex())
		}
	})

	t.Run("Tampered Token", func(t *testing.T) {
		env := newTestEnv()
		user := env.users.add(&model.User{GoogleID: "g1"})

		cookie := sessionCookieFor(t, env, user)
		cookie.Value += "x"

		var seen *model.User
		handler := env.handler.SessionMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = CurrentUser(r.Context())
		}))

		req := httptest.NewRequest("GET", "/api/current_user", nil)
		req.AddCookie(cookie)
		handler.ServeHTTP(httptest.NewRecorder(), req)

		if seen != nil {
			t.Error("tampered token must not resolve to a user")
		}
	})

	t.Run("Stale Session", func(t *testing.T) {
		env := newTestEnv()
		user := env.users.add(&model.User{GoogleID: "g1"})
		cookie := sessionCookieFor(t, env, user)

		// The record behind the session disappears.
		delete(env.users.users, user.ID.Hex())

		var called bool
		var seen *model.User
		handler := env.handler.SessionMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			seen = CurrentUser(r.Context())
		}))

		req := httptest.NewRequest("GET", "/api/current_user", nil)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if !called {
			t.Fatal("stale session must degrade to unauthenticated, not fail the request")
		}
		if seen != nil {
			t.Error("stale session must not resolve to a user")
		}
	})

	t.Run("Revoked Session", func(t *testing.T) {
		env := newTestEnv()
		user := env.users.add(&model.User{GoogleID: "g1"})
		cookie := sessionCookieFor(t, env, user)

		claims, err := auth.ParseSessionToken(env.handler.secret, cookie.Value)
		if err != nil {
			t.Fatalf("failed to parse freshly minted token: %v", err)
		}
		env.revocations.revoked[claims.ID] = true

		var seen *model.User
		handler := env.handler.SessionMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = CurrentUser(r.Context())
		}))

		req := httptest.NewRequest("GET", "/api/current_user", nil)
		req.AddCookie(cookie)
		handler.ServeHTTP(httptest.NewRecorder(), req)

		if seen != nil {
			t.Error("revoked session must not resolve to a user")
		}
	})
}

func TestCORSMiddleware(t *testing.T) {
	handler := CORSMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	t.Run("Preflight", func(t *testing.T) {
		req := httptest.NewRequest("OPTIONS", "/api/songs", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200 for preflight, got %d", rec.Code)
		}
		if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Error("expected permissive CORS origin header")
		}
	})

	t.Run("Passthrough", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/songs", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusTeapot {
			t.Errorf("expected wrapped handler to run, got %d", rec.Code)
		}
	})
}
