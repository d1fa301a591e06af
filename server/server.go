package server

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"packvault/config"
	"packvault/core/active"
	"packvault/core/auth"
	"packvault/core/guard"
	"packvault/core/publish"
	"packvault/db"
	"packvault/logger"
	"packvault/repository"
	"packvault/storage"
)

// NewAPIHandler wires the API handler with its collaborators.
func NewAPIHandler(
	userRepo repository.UserRepository,
	creatorRepo repository.CreatorRepository,
	packRepo repository.PackRepository,
	sampleRepo repository.SampleRepository,
	categories repository.TaxonomyRepository,
	genres repository.TaxonomyRepository,
	moods repository.TaxonomyRepository,
	bannerRepo *repository.BannerRepository,
	popupRepo *repository.PopupRepository,
	publisher *publish.Publisher,
	lifecycle *publish.Lifecycle,
	delGuard *guard.Guard,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		userRepo:    userRepo,
		creatorRepo: creatorRepo,
		packRepo:    packRepo,
		sampleRepo:  sampleRepo,
		categories:  categories,
		genres:      genres,
		moods:       moods,
		bannerRepo:  bannerRepo,
		popupRepo:   popupRepo,
		publisher:   publisher,
		lifecycle:   lifecycle,
		delGuard:    delGuard,
		bannerSlot:  active.NewEnforcer(bannerRepo, "banner"),
		popupSlot:   active.NewEnforcer(popupRepo, "popup"),
		progress:    NewProgressHub(),
		cfg:         cfg,
	}
}

// Start initializes all backing services and runs the HTTP server
// until interrupted.
func Start() {
	cfg := config.Load()

	logger.Init(logger.Config{
		Level:      cfg.LogLevel,
		OutputPath: cfg.LogOutput,
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	})
	auth.SetSecret(cfg.JWTSecret)

	if err := storage.InitMinio(cfg); err != nil {
		logger.Fatal("Failed to initialize MinIO", logger.ErrorField(err))
	}

	if err := db.ConnectDB(cfg); err != nil {
		logger.Fatal("Failed to connect to database", logger.ErrorField(err))
	}
	defer db.DB.Close()

	if err := db.ConnectGormDB(cfg); err != nil {
		logger.Fatal("Failed to connect to database (gorm)", logger.ErrorField(err))
	}
	defer db.CloseGormDB()

	if err := db.ConnectRedis(cfg); err != nil {
		logger.Fatal("Failed to connect to Redis", logger.ErrorField(err))
	}
	defer db.CloseRedis()

	if err := db.InitDB(); err != nil {
		logger.Fatal("Failed to initialize database schema", logger.ErrorField(err))
	}

	userRepo := repository.NewMySQLUserRepository(db.DB)
	creatorRepo := repository.NewMySQLCreatorRepository(db.DB)
	packRepo := repository.NewMySQLPackRepository(db.DB)
	sampleRepo := repository.NewMySQLSampleRepository(db.DB)
	categoryRepo := repository.NewMySQLCategoryRepository(db.DB)
	genreRepo := repository.NewMySQLGenreRepository(db.DB)
	moodRepo := repository.NewMySQLMoodRepository(db.DB)
	bannerRepo := repository.NewBannerRepository(db.GormDB)
	popupRepo := repository.NewPopupRepository(db.GormDB)

	uploader := publish.NewStoreUploader(storage.NewObjectStore(cfg))
	orchestrator := publish.NewOrchestrator(uploader, uploader)
	writer := publish.NewAggregateWriter(packRepo, sampleRepo)
	publisher := publish.NewPublisher(orchestrator, writer)
	lifecycle := publish.NewLifecycle(packRepo, sampleRepo)

	// Deletion is blocked for any entity still referenced; the
	// console offers disable instead.
	delGuard := guard.New()
	delGuard.Register("creator", packRepo.CountByCreator)
	delGuard.Register("category", packRepo.CountByCategory)
	delGuard.Register("genre", packRepo.CountByGenre)
	delGuard.Register("mood", sampleRepo.CountByMood)
	delGuard.Register("pack", packRepo.CountDownloadHistory)

	apiHandler := NewAPIHandler(
		userRepo, creatorRepo, packRepo, sampleRepo,
		categoryRepo, genreRepo, moodRepo,
		bannerRepo, popupRepo,
		publisher, lifecycle, delGuard, cfg)

	router := mux.NewRouter()
	router.Use(corsMiddleware)

	// Auth.
	router.HandleFunc("/api/auth/login", apiHandler.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/register", apiHandler.AuthMiddleware(apiHandler.RegisterHandler)).Methods(http.MethodPost)

	// Packs.
	router.HandleFunc("/api/packs", apiHandler.AuthMiddleware(apiHandler.GetPacksHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/packs", apiHandler.AuthMiddleware(apiHandler.CreatePackHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/packs/{id}", apiHandler.AuthMiddleware(apiHandler.GetPackHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/packs/{id}", apiHandler.AuthMiddleware(apiHandler.EditPackHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/packs/{id}", apiHandler.AuthMiddleware(apiHandler.DeletePackHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/packs/{id}/status", apiHandler.AuthMiddleware(apiHandler.UpdatePackStatusHandler)).Methods(http.MethodPut)

	// Samples.
	router.HandleFunc("/api/samples/{id}/status", apiHandler.AuthMiddleware(apiHandler.UpdateSampleStatusHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/samples/{id}/download", apiHandler.AuthMiddleware(apiHandler.RecordDownloadHandler)).Methods(http.MethodPost)

	// Upload progress feed.
	router.HandleFunc("/ws/progress/{job}", apiHandler.ProgressFeedHandler)

	// Creators.
	router.HandleFunc("/api/creators", apiHandler.AuthMiddleware(apiHandler.GetCreatorsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/creators", apiHandler.AuthMiddleware(apiHandler.CreateCreatorHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/creators/{id}", apiHandler.AuthMiddleware(apiHandler.UpdateCreatorHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/creators/{id}", apiHandler.AuthMiddleware(apiHandler.DeleteCreatorHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/creators/{id}/enable", apiHandler.AuthMiddleware(apiHandler.SetCreatorActiveHandler(true))).Methods(http.MethodPut)
	router.HandleFunc("/api/creators/{id}/disable", apiHandler.AuthMiddleware(apiHandler.SetCreatorActiveHandler(false))).Methods(http.MethodPut)

	// Taxonomies.
	registerTaxonomyRoutes(router, apiHandler, "categories", apiHandler.categoryHandlers())
	registerTaxonomyRoutes(router, apiHandler, "genres", apiHandler.genreHandlers())
	registerTaxonomyRoutes(router, apiHandler, "moods", apiHandler.moodHandlers())

	// Banners and popups.
	router.HandleFunc("/api/banners", apiHandler.AuthMiddleware(apiHandler.GetBannersHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/banners", apiHandler.AuthMiddleware(apiHandler.CreateBannerHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/banners/{id}", apiHandler.AuthMiddleware(apiHandler.UpdateBannerHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/banners/{id}", apiHandler.AuthMiddleware(apiHandler.DeleteBannerHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/banners/{id}/activate", apiHandler.AuthMiddleware(apiHandler.ActivateBannerHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/banners/{id}/deactivate", apiHandler.AuthMiddleware(apiHandler.DeactivateBannerHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/popups", apiHandler.AuthMiddleware(apiHandler.GetPopupsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/popups", apiHandler.AuthMiddleware(apiHandler.CreatePopupHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/popups/{id}", apiHandler.AuthMiddleware(apiHandler.UpdatePopupHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/popups/{id}", apiHandler.AuthMiddleware(apiHandler.DeletePopupHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/popups/{id}/activate", apiHandler.AuthMiddleware(apiHandler.ActivatePopupHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/popups/{id}/deactivate", apiHandler.AuthMiddleware(apiHandler.DeactivatePopupHandler)).Methods(http.MethodPut)

	// Public storefront endpoints.
	router.HandleFunc("/api/showcase", apiHandler.ShowcaseHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/browse/packs/{id}", apiHandler.BrowsePackHandler).Methods(http.MethodGet)

	// Static asset passthrough from MinIO.
	router.PathPrefix("/static/").HandlerFunc(staticAssetHandler(cfg))

	httpServer := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  5 * time.Minute, // pack uploads are large
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("Server starting", logger.String("port", cfg.ServerPort))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", logger.ErrorField(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", logger.ErrorField(err))
	}
	logger.Sync()
}

func registerTaxonomyRoutes(router *mux.Router, api *APIHandler, path string, t *taxonomyHandlers) {
	router.HandleFunc("/api/"+path, api.AuthMiddleware(t.List)).Methods(http.MethodGet)
	router.HandleFunc("/api/"+path, api.AuthMiddleware(t.Create)).Methods(http.MethodPost)
	router.HandleFunc("/api/"+path+"/{id}", api.AuthMiddleware(t.Update)).Methods(http.MethodPut)
	router.HandleFunc("/api/"+path+"/{id}", api.AuthMiddleware(t.Delete)).Methods(http.MethodDelete)
	router.HandleFunc("/api/"+path+"/{id}/enable", api.AuthMiddleware(t.SetActive(true))).Methods(http.MethodPut)
	router.HandleFunc("/api/"+path+"/{id}/disable", api.AuthMiddleware(t.SetActive(false))).Methods(http.MethodPut)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Range")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Range")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// staticAssetHandler serves cover art and audio straight out of the
// object store.
func staticAssetHandler(cfg *config.Config) http.HandlerFunc {
	store := storage.NewObjectStore(cfg)
	return func(w http.ResponseWriter, r *http.Request) {
		objectPath := strings.TrimPrefix(r.URL.Path, "/static/")

		object, err := store.Get(r.Context(), objectPath)
		if err != nil {
			http.Error(w, "File not found", http.StatusNotFound)
			return
		}
		defer object.Close()

		var contentType string
		switch {
		case strings.HasPrefix(objectPath, "covers/"):
			contentType = "image/jpeg"
		case strings.HasPrefix(objectPath, "samples/"), strings.HasPrefix(objectPath, "stems/"):
			contentType = "audio/wav"
		default:
			contentType = "application/octet-stream"
		}

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "public, max-age=31536000")

		if _, err := io.Copy(w, object); err != nil {
			logger.Warn("static asset stream interrupted",
				logger.String("object", objectPath),
				logger.ErrorField(err))
		}
	}
}
