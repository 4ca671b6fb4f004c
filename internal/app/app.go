// Package app wires configuration to adapters and use cases.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/DSdoesVS/fake-news-detector/internal/config"
	"github.com/DSdoesVS/fake-news-detector/internal/domain"
	"github.com/DSdoesVS/fake-news-detector/internal/infrastructure/artifact"
	"github.com/DSdoesVS/fake-news-detector/internal/infrastructure/corpus"
	"github.com/DSdoesVS/fake-news-detector/internal/infrastructure/httpapi"
	"github.com/DSdoesVS/fake-news-detector/internal/infrastructure/storage"
	"github.com/DSdoesVS/fake-news-detector/internal/logging"
	"github.com/DSdoesVS/fake-news-detector/internal/ports"
	"github.com/DSdoesVS/fake-news-detector/internal/usecase"
)

// Application owns the assembled object graph and its lifecycle.
type Application struct {
	cfg        config.Config
	logger     *slog.Logger
	store      *artifact.FileStore
	repository *storage.SQLiteRepository
	service    *usecase.PredictionService
	server     *httpapi.Server
	watcher    *artifact.Watcher
}

// New builds a runnable application instance. The prediction history
// database is optional: an empty sqlite path disables it.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	var repository *storage.SQLiteRepository
	var repoPort ports.PredictionRepository
	if cfg.Storage.SQLitePath != "" {
		var err error
		repository, err = storage.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open history db: %w", err)
		}
		repoPort = repository
	}

	store := artifact.NewFileStore(cfg.Model.ArtifactPath)
	source := corpus.NewDirectorySource(cfg.Corpus.Dir, baseLogger.With("component", "corpus"))

	trainer := usecase.NewTrainer(usecase.TrainerDeps{
		Source:     source,
		Store:      store,
		Repository: repoPort,
		Logger:     baseLogger.With("component", "trainer"),
		Vectorizer: cfg.Vectorizer,
		Training:   cfg.Training,
	})

	service := usecase.NewPredictionService(usecase.PredictionServiceDeps{
		Trainer:    trainer,
		Repository: repoPort,
		Logger:     baseLogger.With("component", "predictor"),
		Validation: cfg.Validation,
	})

	a := &Application{
		cfg:        cfg,
		logger:     baseLogger,
		store:      store,
		repository: repository,
		service:    service,
		server:     httpapi.NewServer(cfg.Server.Addr, service, repoPort, baseLogger),
	}
	if cfg.Model.WatchReload {
		a.watcher = artifact.NewWatcher(store, service.Reload, baseLogger)
	}
	return a, nil
}

// LoadArtifact restores the persisted model, if any. A missing file is
// not an error: the service starts unloaded and reports 503 until a
// model is trained.
func (a *Application) LoadArtifact(ctx context.Context) error {
	loaded, err := a.store.Load(ctx)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			a.logger.Info("no model artifact yet", "path", a.store.Path())
			return nil
		}
		return fmt.Errorf("load artifact: %w", err)
	}
	a.service.Reload(loaded)
	return nil
}

// Serve runs the HTTP server (and the reload watcher, when enabled)
// until the context is canceled.
func (a *Application) Serve(ctx context.Context) error {
	if err := a.LoadArtifact(ctx); err != nil {
		a.logger.Warn("starting without a model", "error", err)
	}

	if a.watcher != nil {
		go func() {
			if err := a.watcher.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error("artifact watcher stopped", "error", err)
			}
		}()
	}

	return a.server.Run(ctx)
}

// Train runs one training job and leaves the fresh artifact both on
// disk and loaded in the service.
func (a *Application) Train(ctx context.Context) (domain.Metrics, error) {
	return a.service.TrainAndReload(ctx)
}

// PredictText classifies a single text using the persisted artifact.
func (a *Application) PredictText(ctx context.Context, text string, detailed bool) (domain.PredictionResult, error) {
	if !a.service.Loaded() {
		if err := a.LoadArtifact(ctx); err != nil {
			return domain.PredictionResult{}, err
		}
	}
	return a.service.Predict(ctx, text, detailed)
}

// Close releases held resources.
func (a *Application) Close() error {
	if a.repository != nil {
		return a.repository.Close()
	}
	return nil
}
