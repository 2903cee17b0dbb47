package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rhythmcloud/config"
	"rhythmcloud/core/auth"
	"rhythmcloud/core/oauth"
	"rhythmcloud/db"
	"rhythmcloud/logger"
	"rhythmcloud/repository"
	"rhythmcloud/storage"

	"github.com/gorilla/mux"
)

// Start initializes all external clients and runs the HTTP server until
// interrupted.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogFile,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
	})

	if cfg.SessionSecret == "" {
		logger.Fatal("SESSION_SECRET is required")
	}

	if err := db.ConnectMongo(cfg); err != nil {
		logger.Fatal("failed to connect to MongoDB", logger.ErrorField(err))
	}
	defer db.CloseMongo()

	if err := db.ConnectRedis(cfg); err != nil {
		logger.Fatal("failed to connect to Redis", logger.ErrorField(err))
	}
	defer db.CloseRedis()

	if err := storage.InitMinio(cfg); err != nil {
		logger.Fatal("failed to initialize MinIO", logger.ErrorField(err))
	}

	indexCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.EnsureIndexes(indexCtx); err != nil {
		logger.Fatal("failed to ensure indexes", logger.ErrorField(err))
	}

	provider, err := oauth.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthCallbackBase)
	if err != nil {
		logger.Fatal("failed to configure identity provider", logger.ErrorField(err))
	}

	userRepo := repository.NewMongoUserRepository(db.Users())
	songRepo := repository.NewMongoSongRepository(db.Songs())
	store := storage.NewMinioStore(storage.GetMinioClient(), cfg.MinioBucket, cfg.MinioPublicURL)
	revocations := auth.NewRedisRevocationStore(db.RedisClient)

	apiHandler := NewAPIHandler(userRepo, songRepo, store, provider, revocations, cfg)

	router := mux.NewRouter()
	router.Use(CORSMiddleware)
	router.Use(apiHandler.SessionMiddleware)

	// Identity
	router.HandleFunc("/auth/{provider}/start", apiHandler.ProviderStartHandler).Methods(http.MethodGet)
	router.HandleFunc("/auth/{provider}/callback", apiHandler.ProviderCallbackHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/current_user", apiHandler.CurrentUserHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/logout", apiHandler.LogoutHandler).Methods(http.MethodGet)

	// Catalog
	router.HandleFunc("/api/songs", apiHandler.GetSongsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/admin/upload", apiHandler.AdminUploadHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/songs/{id}/like", apiHandler.LikeSongHandler).Methods(http.MethodPost)

	// Frontend assets
	router.PathPrefix("/").Handler(http.FileServer(http.Dir(cfg.StaticDir)))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("RhythmCloud running", logger.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("shutting down server")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("server stopped")
}
