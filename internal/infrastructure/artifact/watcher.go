package artifact

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/DSdoesVS/fake-news-detector/internal/domain"
)

const reloadDebounce = 200 * time.Millisecond

// Watcher reloads the artifact whenever the file on disk is replaced,
// so a model trained by another process becomes live without a restart.
type Watcher struct {
	store  *FileStore
	reload func(*domain.ModelArtifact)
	logger *slog.Logger
}

// NewWatcher wires a store to a reload callback.
func NewWatcher(store *FileStore, reload func(*domain.ModelArtifact), logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		store:  store,
		reload: reload,
		logger: logger.With("component", "artifact_watcher"),
	}
}

// Watch blocks until the context is canceled. Events are debounced:
// the atomic save produces a create-rename burst and only the settled
// file should be loaded.
func (w *Watcher) Watch(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	// Watch the directory, not the file: rename-into-place replaces the
	// inode and a file watch would go stale after the first swap.
	dir := filepath.Dir(w.store.Path())
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	base := filepath.Base(w.store.Path())
	var timer *time.Timer
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
			} else {
				timer.Reset(reloadDebounce)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			artifact, err := w.store.Load(ctx)
			if err != nil {
				w.logger.Error("artifact reload failed", "path", w.store.Path(), "error", err)
				continue
			}
			w.reload(artifact)
			w.logger.Info("artifact reloaded",
				"path", w.store.Path(),
				"vocabulary_size", artifact.Vocabulary.Size(),
				"trained_at", artifact.Metadata.TrainedAt)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("artifact watch error", "error", err)
		}
	}
}
