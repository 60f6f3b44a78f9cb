// Package internal wires the datagen commands: archive generation, the HTTP
// browser and the MCP server.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/datagen/internal/api"
	"github.com/starford/datagen/internal/apperr"
	"github.com/starford/datagen/internal/catalog"
	"github.com/starford/datagen/internal/generator"
	"github.com/starford/datagen/internal/mcpserver"
	"github.com/starford/datagen/internal/models"
	"github.com/starford/datagen/internal/sse"
	"github.com/starford/datagen/internal/storage"
	pkgconfig "github.com/starford/datagen/pkg/config"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.logger == nil {
		// Structured JSON logs go to stderr; stdout is reserved for the MCP transport.
		app.logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: app.config.App.LogLevel,
		}))
		slog.SetDefault(app.logger)
	}
	return app, nil
}

// Generate loads the blueprint and materialises the archive under the
// configured root. If a catalog is configured, the archive is synced into it
// afterwards.
func Generate(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg, logger := app.config, app.logger

	if err := cfg.ValidateGenerate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	var bp models.Blueprint
	if err := pkgconfig.Load(cfg.Generation.Blueprint, &bp); err != nil {
		return &apperr.ConfigLoadError{Path: cfg.Generation.Blueprint, Err: err}
	}

	logger.Info("Blueprint loaded",
		slog.String("blueprint", cfg.Generation.Blueprint),
		slog.Int("years", len(bp.Years)),
		slog.Int("departments", len(bp.Departments)),
		slog.Int("templates", len(bp.Texts)))

	store, err := storage.NewFS(cfg.Archive.Root)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	engine := generator.New(store,
		generator.WithSeed(cfg.Generation.Seed),
		generator.WithLogger(logger))
	if err := engine.Run(ctx, &bp); err != nil {
		return err
	}

	if !cfg.Catalog.Enabled() {
		return nil
	}
	db, err := catalog.Open(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("init catalog: %w", err)
	}
	defer db.Close()

	if err := catalog.Sync(db, store, logger); err != nil {
		return fmt.Errorf("catalog sync: %w", err)
	}
	return nil
}

// openCatalog opens the archive and its catalog and runs an initial sync.
func openCatalog(cfg *Config, logger *slog.Logger) (*storage.FS, *catalog.DB, error) {
	store, err := storage.NewFS(cfg.Archive.Root)
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}
	db, err := catalog.Open(cfg.Catalog.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init catalog: %w", err)
	}
	if err := catalog.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}
	return store, db, nil
}

// Serve starts the read-only archive browser and keeps the catalog in step
// with the archive until ctx is cancelled or a shutdown signal arrives.
func Serve(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg, logger := app.config, app.logger

	if err := cfg.ValidateServe(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.HTTP.Address()),
		slog.String("archive_root", cfg.Archive.Root),
		slog.String("catalog_path", cfg.Catalog.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, db, err := openCatalog(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	health := func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
	r.Get("/health/live", health)
	r.Get("/health/ready", health)

	r.Mount("/api", api.NewRouter(db, broker))

	httpServer := &http.Server{
		Addr:              cfg.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return catalog.Watch(gCtx, db, store, logger, broker.Notify)
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal",
				slog.String("signal", sig.String()),
				slog.Int("sse_clients", broker.ClientCount()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown",
				slog.Int("sse_clients", broker.ClientCount()))
		}
		// Streaming handlers only return once their channel is closed.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the errgroup once the server has been asked to stop,
// so the watcher exits too.
var errShutdown = errors.New("shutdown requested")

// ServeMCP serves the archive tools over stdio until the client disconnects.
func ServeMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg, logger := app.config, app.logger

	if err := cfg.ValidateBrowse(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	store, db, err := openCatalog(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	logger.Info("MCP server starting", slog.String("archive_root", store.Root()))
	return mcpserver.New(store, db, logger).ServeStdio()
}
