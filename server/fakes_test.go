package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"rhythmcloud/config"
	"rhythmcloud/core/oauth"
	"rhythmcloud/model"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/oauth2"
)

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	users    map[string]*model.User // keyed by hex id
	byGoogle map[string]string      // google id -> hex id
	created  int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:    make(map[string]*model.User),
		byGoogle: make(map[string]string),
	}
}

func (r *fakeUserRepo) add(user *model.User) *model.User {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.LikedSongs == nil {
		user.LikedSongs = []string{}
	}
	r.users[user.ID.Hex()] = user
	if user.GoogleID != "" {
		r.byGoogle[user.GoogleID] = user.ID.Hex()
	}
	return user
}

func copyUser(u *model.User) *model.User {
	cp := *u
	cp.LikedSongs = append([]string{}, u.LikedSongs...)
	return &cp
}

func (r *fakeUserRepo) FindOrCreateByGoogleID(ctx context.Context, profile *model.User) (*model.User, error) {
	if id, ok := r.byGoogle[profile.GoogleID]; ok {
		return copyUser(r.users[id]), nil
	}
	r.created++
	user := r.add(&model.User{
		GoogleID:    profile.GoogleID,
		DisplayName: profile.DisplayName,
		Email:       profile.Email,
		Photo:       profile.Photo,
		LikedSongs:  []string{},
		CreatedAt:   time.Now(),
	})
	return copyUser(user), nil
}

func (r *fakeUserRepo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return copyUser(user), nil
}

func (r *fakeUserRepo) ToggleLikedSong(ctx context.Context, userID, songID string) (*model.User, error) {
	user, ok := r.users[userID]
	if !ok {
		return nil, nil
	}

	kept := user.LikedSongs[:0]
	found := false
	for _, id := range user.LikedSongs {
		if id == songID {
			found = true
			continue
		}
		kept = append(kept, id)
	}
	user.LikedSongs = kept
	if !found {
		user.LikedSongs = append(user.LikedSongs, songID)
	}
	return copyUser(user), nil
}

// fakeSongRepo is an in-memory SongRepository. ListSongs returns songs in the
// order they were prepended, i.e. newest first when created through the repo.
type fakeSongRepo struct {
	songs   []model.Song
	listErr error
}

func (r *fakeSongRepo) CreateSong(ctx context.Context, song *model.Song) (string, error) {
	song.ID = primitive.NewObjectID()
	song.Date = time.Now()
	r.songs = append([]model.Song{*song}, r.songs...)
	return song.ID.Hex(), nil
}

func (r *fakeSongRepo) ListSongs(ctx context.Context) ([]model.Song, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return append([]model.Song{}, r.songs...), nil
}

var errFakeStorage = errors.New("storage backend unavailable")

// fakeStore records upload calls without touching any storage backend.
type fakeStore struct {
	calls int
	url   string
	err   error
}

func (s *fakeStore) UploadAudio(ctx context.Context, reader io.Reader, size int64) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	if s.url != "" {
		return s.url, nil
	}
	return "http://storage.test/rhythmcloud/songs/object.mp3", nil
}

// fakeProvider satisfies IdentityProvider without any network traffic.
type fakeProvider struct {
	profile     *oauth.Profile
	exchangeErr error
}

func (p *fakeProvider) AuthCodeURL(state string) string {
	return "https://provider.test/consent?state=" + state
}

func (p *fakeProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if p.exchangeErr != nil {
		return nil, p.exchangeErr
	}
	return &oauth2.Token{AccessToken: "fake-access-token"}, nil
}

func (p *fakeProvider) FetchProfile(ctx context.Context, token *oauth2.Token) (*oauth.Profile, error) {
	if p.profile == nil {
		return nil, fmt.Errorf("no profile configured")
	}
	return p.profile, nil
}

// fakeRevocations is an in-memory RevocationStore.
type fakeRevocations struct {
	revoked map[string]bool
}

func newFakeRevocations() *fakeRevocations {
	return &fakeRevocations{revoked: make(map[string]bool)}
}

func (s *fakeRevocations) Revoke(ctx context.Context, sessionID string, ttl time.Duration) error {
	s.revoked[sessionID] = true
	return nil
}

func (s *fakeRevocations) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	return s.revoked[sessionID], nil
}

// testEnv bundles a handler with its fakes and a router wired like production.
type testEnv struct {
	handler     *APIHandler
	users       *fakeUserRepo
	songs       *fakeSongRepo
	store       *fakeStore
	provider    *fakeProvider
	revocations *fakeRevocations
	cfg         *config.Config
	router      *mux.Router
}

func newTestEnv() *testEnv {
	env := &testEnv{
		users:       newFakeUserRepo(),
		songs:       &fakeSongRepo{},
		store:       &fakeStore{},
		provider:    &fakeProvider{},
		revocations: newFakeRevocations(),
		cfg: &config.Config{
			SessionSecret: "test-session-secret",
			AdminEmail:    "admin@rhythmcloud.test",
		},
	}
	env.handler = NewAPIHandler(env.users, env.songs, env.store, env.provider, env.revocations, env.cfg)

	router := mux.NewRouter()
	router.Use(env.handler.SessionMiddleware)
	router.HandleFunc("/auth/{provider}/start", env.handler.ProviderStartHandler).Methods("GET")
	router.HandleFunc("/auth/{provider}/callback", env.handler.ProviderCallbackHandler).Methods("GET")
	router.HandleFunc("/api/current_user", env.handler.CurrentUserHandler).Methods("GET")
	router.HandleFunc("/api/logout", env.handler.LogoutHandler).Methods("GET")
	router.HandleFunc("/api/songs", env.handler.GetSongsHandler).Methods("GET")
	router.HandleFunc("/api/admin/upload", env.handler.AdminUploadHandler).Methods("POST")
	router.HandleFunc("/api/songs/{id}/like", env.handler.LikeSongHandler).Methods("POST")
	env.router = router
	return env
}
