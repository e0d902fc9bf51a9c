package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jobfolio/apiserver/config"
	"github.com/jobfolio/apiserver/internal/db"
	"github.com/jobfolio/apiserver/internal/events"
	"github.com/jobfolio/apiserver/internal/handlers"
	"github.com/jobfolio/apiserver/internal/services"
	"github.com/jobfolio/apiserver/internal/storage"
	"github.com/jobfolio/apiserver/internal/store"
	"github.com/jobfolio/apiserver/internal/uploads"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	publisher  *events.Publisher
}

// New constructs a Server with all dependencies wired.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// Versioned, additive migrations run before the listener starts.
	// A failure leaves the schema as-is; the server still starts.
	if err := db.Migrate(cfg); err != nil {
		log.ErrorContext(ctx, "schema migration failed", "error", err)
	}

	uploadStore, err := newUploadStorage(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	if err := uploadStore.EnsureBucket(ctx); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("prepare upload storage: %w", err)
	}

	publisher, err := newEventPublisher(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	saver := uploads.NewSaver(uploadStore)
	userService := services.NewUserService(userRepo, saver, publisher, log)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	handlers.AuthRouter(router, userService, log)
	router.Route("/uploads", func(r chi.Router) {
		handlers.UploadsRouter(r, uploadStore, log)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		publisher:  publisher,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.publisher != nil {
		_ = s.publisher.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}

func newUploadStorage(ctx context.Context, cfg config.Config) (storage.ObjectStorage, error) {
	switch cfg.Uploads.Backend {
	case config.StorageBackendLocal, "":
		return storage.NewLocalClient(cfg.Uploads.Dir)
	case config.StorageBackendMinio:
		return storage.NewMinioClient(cfg.Minio)
	case config.StorageBackendGCS:
		return storage.NewGCSClient(ctx, cfg.GCS)
	default:
		return nil, fmt.Errorf("unknown uploads backend %q", cfg.Uploads.Backend)
	}
}

func newEventPublisher(ctx context.Context, cfg config.Config) (*events.Publisher, error) {
	switch cfg.Events.Backend {
	case config.EventsBackendNone, "":
		return nil, nil
	case config.EventsBackendRabbitMQ:
		backend, err := events.NewRabbitMQClient(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return events.NewPublisher(backend, cfg.Events.Channel), nil
	case config.EventsBackendPubSub:
		backend, err := events.NewPubSubClient(ctx, cfg.PubSub)
		if err != nil {
			return nil, err
		}
		return events.NewPublisher(backend, cfg.Events.Channel), nil
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Events.Backend)
	}
}
