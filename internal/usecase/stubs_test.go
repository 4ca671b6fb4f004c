package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/DSdoesVS/fake-news-detector/internal/domain"
	"github.com/DSdoesVS/fake-news-detector/internal/ports"
)

type stubSource struct {
	docs []domain.Document
	err  error
}

func (s *stubSource) Load(context.Context) ([]domain.Document, error) {
	return s.docs, s.err
}

type stubStore struct {
	mu    sync.Mutex
	saved *domain.ModelArtifact
	err   error
}

func (s *stubStore) Save(_ context.Context, artifact *domain.ModelArtifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.saved = artifact
	return nil
}

func (s *stubStore) Load(context.Context) (*domain.ModelArtifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved == nil {
		return nil, fmt.Errorf("nothing stored")
	}
	return s.saved, nil
}

type stubRepository struct {
	mu          sync.Mutex
	predictions []domain.PredictionRecord
	runs        []domain.TrainingRun
}

func (r *stubRepository) SavePrediction(_ context.Context, record domain.PredictionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.predictions = append(r.predictions, record)
	return nil
}

func (r *stubRepository) SaveTrainingRun(_ context.Context, run domain.TrainingRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, run)
	return nil
}

func (r *stubRepository) RecentPredictions(context.Context, int) ([]domain.PredictionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.PredictionRecord(nil), r.predictions...), nil
}

var (
	_ ports.CorpusSource         = (*stubSource)(nil)
	_ ports.ArtifactStore        = (*stubStore)(nil)
	_ ports.PredictionRepository = (*stubRepository)(nil)
)
