// Package app initializes and orchestrates the main components of the
// documentation pipeline: the store, the Git client, the Worker Loop pool,
// the Incremental Updater, and the read-only status HTTP server.
package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/sevigo/reposcribe/internal/config"
	"github.com/sevigo/reposcribe/internal/db"
	"github.com/sevigo/reposcribe/internal/gitutil"
	"github.com/sevigo/reposcribe/internal/server"
	"github.com/sevigo/reposcribe/internal/storage"
	"github.com/sevigo/reposcribe/internal/updater"
	"github.com/sevigo/reposcribe/internal/worker"
)

// App holds the main application components.
type App struct {
	Store     storage.Store
	GitClient *gitutil.Client
	Cfg       *config.Config

	logger  *slog.Logger
	server  *server.Server
	loops   []*worker.Loop
	updater *updater.Updater

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewApp sets up the application with all its dependencies.
func NewApp(ctx context.Context, cfg *config.Config, dbConn *db.DB, logger *slog.Logger) (*App, func(), error) {
	logger.Info("initializing documentation pipeline application",
		"llm_provider", cfg.LLM.ModelProvider,
		"chat_model", cfg.LLM.ChatModel,
		"worker_concurrency", cfg.Worker.Concurrency,
	)

	store := storage.NewStore(dbConn.DB)
	gitClient := gitutil.NewClient(logger.With("component", "gitutil"))

	concurrency := cfg.Worker.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	loops := make([]*worker.Loop, concurrency)
	for i := range loops {
		loops[i] = worker.New(cfg, store, gitClient, logger)
	}

	inc := updater.New(cfg, store, gitClient, logger)
	httpServer := server.NewServer(ctx, cfg, store, logger)

	logger.Info("documentation pipeline application initialized successfully")
	return &App{
			Store:     store,
			GitClient: gitClient,
			Cfg:       cfg,
			logger:    logger,
			server:    httpServer,
			loops:     loops,
			updater:   inc,
		}, func() {
			if err := dbConn.Close(); err != nil {
				logger.Error("failed to close database connection", "error", err)
			}
		}, nil
}

// Start launches every Worker Loop, the Incremental Updater, and the HTTP
// server as background goroutines, then blocks on the HTTP server.
func (a *App) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	for _, loop := range a.loops {
		a.wg.Add(1)
		go func(l *worker.Loop) {
			defer a.wg.Done()
			l.Run(runCtx)
		}(loop)
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.updater.Run(runCtx)
	}()

	a.logger.Info("starting documentation pipeline",
		"worker_count", len(a.loops))

	err := a.server.Start()
	if err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Error("failed to start HTTP server", "error", err)
		return err
	}
	return nil
}

// Stop shuts down the application cleanly: stop accepting new HTTP
// requests, cancel the worker/updater loops, and wait for any in-flight
// repository run to reach a stage boundary and return.
func (a *App) Stop() error {
	a.logger.Info("shutting down documentation pipeline")

	var shutdownErr error
	if a.server != nil {
		if err := a.server.Stop(); err != nil {
			a.logger.Error("error during HTTP server shutdown", "error", err)
			shutdownErr = errors.Join(shutdownErr, err)
		}
	}
	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()

	if shutdownErr != nil {
		a.logger.Error("documentation pipeline stopped with errors", "error", shutdownErr)
	} else {
		a.logger.Info("documentation pipeline stopped successfully")
	}
	return shutdownErr
}
