package usecase

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
	"unicode"

	"github.com/abadojack/whatlanggo"
	"github.com/google/uuid"

	"github.com/DSdoesVS/fake-news-detector/internal/config"
	"github.com/DSdoesVS/fake-news-detector/internal/domain"
	"github.com/DSdoesVS/fake-news-detector/internal/feature"
	"github.com/DSdoesVS/fake-news-detector/internal/model"
	"github.com/DSdoesVS/fake-news-detector/internal/ports"
	"github.com/DSdoesVS/fake-news-detector/internal/textproc"
)

const (
	previewLimit       = 120
	explainTopFeatures = 10
)

// loadedModel bundles the artifact with the normalizer matching its
// stemming setting. Swapped as a unit so readers never observe a
// half-updated pair.
type loadedModel struct {
	artifact   *domain.ModelArtifact
	normalizer *textproc.Normalizer
}

// PredictionServiceDeps wire the inference service.
type PredictionServiceDeps struct {
	Trainer    *Trainer
	Repository ports.PredictionRepository
	Logger     *slog.Logger
	Validation config.ValidationConfig
}

// PredictionService runs Normalizer → Vectorizer → Classifier over an
// atomically swappable loaded artifact. Inference is read-only and safe
// for concurrent use.
type PredictionService struct {
	current    atomic.Pointer[loadedModel]
	trainer    *Trainer
	repository ports.PredictionRepository
	logger     *slog.Logger
	validation config.ValidationConfig
	trainMu    sync.Mutex
}

// NewPredictionService constructs the service with no artifact loaded.
func NewPredictionService(deps PredictionServiceDeps) *PredictionService {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &PredictionService{
		trainer:    deps.Trainer,
		repository: deps.Repository,
		logger:     logger,
		validation: deps.Validation,
	}
}

// Reload atomically swaps in a freshly loaded artifact. Concurrent
// Predict calls see either the fully-old or fully-new model.
func (s *PredictionService) Reload(artifact *domain.ModelArtifact) {
	if artifact == nil {
		return
	}
	s.current.Store(&loadedModel{
		artifact:   artifact,
		normalizer: textproc.NewNormalizer(artifact.Metadata.Stemming),
	})
	s.logger.Info("model reloaded",
		"vocabulary", artifact.Vocabulary.Size(),
		"trained_at", artifact.Metadata.TrainedAt,
		"stemming", artifact.Metadata.Stemming,
	)
}

// Loaded reports whether an artifact is available for inference.
func (s *PredictionService) Loaded() bool {
	return s.current.Load() != nil
}

// Predict validates the text and runs the full inference pipeline.
// detailed additionally returns the strongest features of this input.
func (s *PredictionService) Predict(ctx context.Context, text string, detailed bool) (domain.PredictionResult, error) {
	var zero domain.PredictionResult

	if err := s.validate(text); err != nil {
		return zero, err
	}

	snapshot := s.current.Load()
	if snapshot == nil {
		return zero, domain.ErrModelNotLoaded
	}

	tokens := snapshot.normalizer.Normalize(text)
	vec := feature.Transform(tokens, snapshot.artifact.Vocabulary)
	label, confidence := model.Predict(snapshot.artifact.Weights, vec)

	result := domain.PredictionResult{
		Label:           label,
		Confidence:      confidence,
		OriginalLength:  len(text),
		ProcessedLength: len(tokens),
	}
	if detailed {
		result.TopFeatures = model.Explain(snapshot.artifact.Weights, snapshot.artifact.Vocabulary, vec, explainTopFeatures)
	}

	s.logger.Debug("prediction served",
		"label", label.String(),
		"confidence", confidence,
		"preview", preview(text),
	)
	s.record(ctx, result, text)

	return result, nil
}

// Info describes the loaded model for the public model-info surface.
func (s *PredictionService) Info() (domain.ModelInfo, error) {
	snapshot := s.current.Load()
	if snapshot == nil {
		return domain.ModelInfo{}, domain.ErrModelNotLoaded
	}

	meta := snapshot.artifact.Metadata
	classes := make([]string, 0, len(snapshot.artifact.Weights.Classes))
	for _, c := range snapshot.artifact.Weights.Classes {
		classes = append(classes, c.String())
	}
	return domain.ModelInfo{
		Kind:            "logistic_regression",
		FeatureCount:    len(snapshot.artifact.Weights.Coefficients),
		VocabularySize:  snapshot.artifact.Vocabulary.Size(),
		Classes:         classes,
		Stemming:        meta.Stemming,
		TrainedAt:       meta.TrainedAt,
		Accuracy:        meta.Accuracy,
		TrainingSamples: meta.TrainingSamples,
	}, nil
}

// TopFeatures exports the n strongest model coefficients with their
// vocabulary terms.
func (s *PredictionService) TopFeatures(n int) ([]domain.FeatureWeight, error) {
	snapshot := s.current.Load()
	if snapshot == nil {
		return nil, domain.ErrModelNotLoaded
	}
	return model.TopWeights(snapshot.artifact.Weights, snapshot.artifact.Vocabulary, n), nil
}

// TrainAndReload runs one exclusive training job and swaps the fresh
// artifact in on success. A failed run leaves the current model
// serving. A concurrent call is rejected, not queued.
func (s *PredictionService) TrainAndReload(ctx context.Context) (domain.Metrics, error) {
	if s.trainer == nil {
		return domain.Metrics{}, domain.NewTrainingError("no trainer configured", nil)
	}
	if !s.trainMu.TryLock() {
		return domain.Metrics{}, domain.ErrTrainingInProgress
	}
	defer s.trainMu.Unlock()

	artifact, metrics, err := s.trainer.Run(ctx)
	if err != nil {
		return domain.Metrics{}, err
	}

	s.Reload(artifact)
	return metrics, nil
}

func (s *PredictionService) validate(text string) error {
	if len(text) == 0 {
		return domain.NewValidationError("Text cannot be empty")
	}

	runes := []rune(text)
	trimmed := 0
	letters := 0
	for _, r := range runes {
		if unicode.IsSpace(r) {
			continue
		}
		trimmed++
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if trimmed == 0 {
		return domain.NewValidationError("Text cannot be empty")
	}

	if min := s.validation.MinTextLength; min > 0 && len(runes) < min {
		return domain.NewValidationError("text too short: %d characters, minimum is %d", len(runes), min)
	}
	if max := s.validation.MaxTextLength; max > 0 && len(runes) > max {
		return domain.NewValidationError("text length %d exceeds the maximum of %d characters", len(runes), max)
	}

	if ratio := s.validation.MinAlphaRatio; ratio > 0 {
		if float64(letters)/float64(trimmed) < ratio {
			return domain.NewValidationError("text must be at least %.0f%% alphabetic characters", ratio*100)
		}
	}

	if s.validation.LanguageCheck {
		info := whatlanggo.Detect(text)
		if info.Lang != whatlanggo.Eng && info.IsReliable() {
			return domain.NewValidationError("text does not appear to be English (detected %s)", whatlanggo.LangToString(info.Lang))
		}
	}

	return nil
}

func (s *PredictionService) record(ctx context.Context, result domain.PredictionResult, text string) {
	if s.repository == nil {
		return
	}
	err := s.repository.SavePrediction(ctx, domain.PredictionRecord{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
		Label:       result.Label,
		Confidence:  result.Confidence,
		TextPreview: preview(text),
	})
	if err != nil {
		s.logger.Warn("record prediction", "error", err)
	}
}

// preview truncates input for logs and audit rows so pathological
// payloads never balloon storage.
func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLimit {
		return text
	}
	return string(runes[:previewLimit]) + "…"
}
