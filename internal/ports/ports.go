package ports

import (
	"context"

	"github.com/DSdoesVS/fake-news-detector/internal/domain"
)

// CorpusSource loads the raw labeled training corpus.
type CorpusSource interface {
	Load(ctx context.Context) ([]domain.Document, error)
}

// ArtifactStore persists the trained bundle and restores it as a unit.
type ArtifactStore interface {
	Save(ctx context.Context, artifact *domain.ModelArtifact) error
	Load(ctx context.Context) (*domain.ModelArtifact, error)
}

// PredictionRepository keeps an audit trail of inferences and training
// runs for history/debugging.
type PredictionRepository interface {
	SavePrediction(ctx context.Context, record domain.PredictionRecord) error
	SaveTrainingRun(ctx context.Context, run domain.TrainingRun) error
	RecentPredictions(ctx context.Context, limit int) ([]domain.PredictionRecord, error)
}
