// Package storage persists the prediction and training audit trail in
// an embedded SQLite database.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"github.com/DSdoesVS/fake-news-detector/internal/domain"
	"github.com/DSdoesVS/fake-news-detector/internal/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS predictions (
	id           TEXT PRIMARY KEY,
	created_at   TIMESTAMP NOT NULL,
	label        INTEGER NOT NULL,
	confidence   REAL NOT NULL,
	text_preview TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS training_runs (
	id            TEXT PRIMARY KEY,
	started_at    TIMESTAMP NOT NULL,
	finished_at   TIMESTAMP NOT NULL,
	status        TEXT NOT NULL,
	error         TEXT NOT NULL DEFAULT '',
	accuracy      REAL NOT NULL DEFAULT 0,
	precision     REAL NOT NULL DEFAULT 0,
	recall        REAL NOT NULL DEFAULT 0,
	f1            REAL NOT NULL DEFAULT 0,
	train_samples INTEGER NOT NULL DEFAULT 0,
	test_samples  INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions (created_at DESC);
`

// SQLiteRepository stores inference and training history.
type SQLiteRepository struct {
	db *sql.DB
}

var _ ports.PredictionRepository = (*SQLiteRepository)(nil)

// Open connects to the database file and applies the schema. The file
// and any missing parent directories are created on first use by the
// driver.
func Open(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// modernc sqlite serializes writes itself; a single connection
	// avoids SQLITE_BUSY under concurrent inserts.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

// Close releases the database handle.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// SavePrediction appends one inference to the audit trail.
func (r *SQLiteRepository) SavePrediction(ctx context.Context, record domain.PredictionRecord) error {
	query, args, err := sq.Insert("predictions").
		Columns("id", "created_at", "label", "confidence", "text_preview").
		Values(record.ID, record.CreatedAt.UTC(), int(record.Label), record.Confidence, record.TextPreview).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert prediction: %w", err)
	}
	return nil
}

// SaveTrainingRun records the outcome of one training job.
func (r *SQLiteRepository) SaveTrainingRun(ctx context.Context, run domain.TrainingRun) error {
	query, args, err := sq.Insert("training_runs").
		Columns("id", "started_at", "finished_at", "status", "error",
			"accuracy", "precision", "recall", "f1", "train_samples", "test_samples").
		Values(run.ID, run.StartedAt.UTC(), run.FinishedAt.UTC(), run.Status, run.Error,
			run.Metrics.Accuracy, run.Metrics.Precision, run.Metrics.Recall, run.Metrics.F1,
			run.Metrics.TrainSamples, run.Metrics.TestSamples).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert training run: %w", err)
	}
	return nil
}

// RecentPredictions returns the newest records first.
func (r *SQLiteRepository) RecentPredictions(ctx context.Context, limit int) ([]domain.PredictionRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query, args, err := sq.Select("id", "created_at", "label", "confidence", "text_preview").
		From("predictions").
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	var records []domain.PredictionRecord
	for rows.Next() {
		var rec domain.PredictionRecord
		var label int
		var createdAt time.Time
		if err := rows.Scan(&rec.ID, &createdAt, &label, &rec.Confidence, &rec.TextPreview); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		rec.CreatedAt = createdAt.UTC()
		rec.Label = domain.Label(label)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return records, nil
}

// RecentTrainingRuns returns the newest runs first.
func (r *SQLiteRepository) RecentTrainingRuns(ctx context.Context, limit int) ([]domain.TrainingRun, error) {
	if limit <= 0 {
		limit = 20
	}

	query, args, err := sq.Select("id", "started_at", "finished_at", "status", "error",
		"accuracy", "precision", "recall", "f1", "train_samples", "test_samples").
		From("training_runs").
		OrderBy("started_at DESC", "id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query training runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.TrainingRun
	for rows.Next() {
		var run domain.TrainingRun
		var started, finished time.Time
		if err := rows.Scan(&run.ID, &started, &finished, &run.Status, &run.Error,
			&run.Metrics.Accuracy, &run.Metrics.Precision, &run.Metrics.Recall, &run.Metrics.F1,
			&run.Metrics.TrainSamples, &run.Metrics.TestSamples); err != nil {
			return nil, fmt.Errorf("scan training run: %w", err)
		}
		run.StartedAt = started.UTC()
		run.FinishedAt = finished.UTC()
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return runs, nil
}
