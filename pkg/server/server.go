package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	handlers "github.com/de-tools/jyotish-atlas/pkg/handlers/analysis"
	"github.com/de-tools/jyotish-atlas/pkg/metrics"
	"github.com/de-tools/jyotish-atlas/pkg/models/domain"
	atlasmiddleware "github.com/de-tools/jyotish-atlas/pkg/server/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

const defaultShutdownTimeout = 10 * time.Second

type WebAPI struct {
	router          chi.Router
	logger          *zerolog.Logger
	server          *http.Server
	shutdownTimeout time.Duration
}

type Dependencies struct {
	Runner  handlers.Runner
	Metrics *metrics.Metrics
	Logger  zerolog.Logger
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	// APIKeyHash is a bcrypt hash; empty disables API key checks.
	APIKeyHash   string
	Dependencies Dependencies
}

// ConfigureRouter mounts every route on a fresh chi router.
func ConfigureRouter(config Config) chi.Router {
	deps := config.Dependencies
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	h := handlers.NewHandler(deps.Runner)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(atlasmiddleware.Logger(&deps.Logger))
	router.Use(middleware.Recoverer)
	router.Use(atlasmiddleware.Metrics(deps.Metrics))
	router.Use(atlasmiddleware.APIKey(config.APIKeyHash, "/healthz"))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	router.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())

	router.Post("/analyze", h.Analyze)
	router.Post("/seduction_profile", h.Profile)
	router.Route("/modules", func(r chi.Router) {
		r.Get("/", h.ListModules)
		r.Post("/", h.AnalyzeModules)
		for _, id := range domain.AllModules {
			r.Post("/"+id.Slug(), h.AnalyzeModule(id))
		}
	})

	return router
}

func NewWebAPI(logger zerolog.Logger, config Config) *WebAPI {
	config.Dependencies.Logger = logger
	router := ConfigureRouter(config)

	timeout := config.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	return &WebAPI{
		router: router,
		logger: &logger,
		server: &http.Server{
			Addr:              config.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		shutdownTimeout: timeout,
	}
}

func (w *WebAPI) Handler() http.Handler {
	return w.router
}

// Start serves until SIGINT/SIGTERM and then shuts down gracefully.
func (w *WebAPI) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return w.Run(ctx)
}

// Run serves until ctx is done.
func (w *WebAPI) Run(ctx context.Context) error {
	serverErrors := make(chan error, 1)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		w.logger.Info().Msg("shutdown initiated")

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
		defer cancel()

		err := w.server.Shutdown(shutdownCtx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}

		if err != nil {
			return err
		}
	}

	return nil
}
