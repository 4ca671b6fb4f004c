package usecase

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/DSdoesVS/fake-news-detector/internal/config"
	"github.com/DSdoesVS/fake-news-detector/internal/domain"
	"github.com/DSdoesVS/fake-news-detector/internal/feature"
	"github.com/DSdoesVS/fake-news-detector/internal/model"
	"github.com/DSdoesVS/fake-news-detector/internal/ports"
	"github.com/DSdoesVS/fake-news-detector/internal/textproc"
)

// TrainerDeps wires the driven adapters into the training pipeline.
type TrainerDeps struct {
	Source     ports.CorpusSource
	Store      ports.ArtifactStore
	Repository ports.PredictionRepository
	Logger     *slog.Logger
	Vectorizer config.VectorizerConfig
	Training   config.TrainingConfig
}

// Trainer orchestrates corpus loading, vocabulary fitting, classifier
// fitting, held-out evaluation, and artifact emission. Any failure is a
// TrainingError; nothing here evicts a previously loaded artifact.
type Trainer struct {
	source     ports.CorpusSource
	store      ports.ArtifactStore
	repository ports.PredictionRepository
	logger     *slog.Logger
	vecCfg     config.VectorizerConfig
	trainCfg   config.TrainingConfig
}

// NewTrainer constructs the training orchestrator.
func NewTrainer(deps TrainerDeps) *Trainer {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Trainer{
		source:     deps.Source,
		store:      deps.Store,
		repository: deps.Repository,
		logger:     logger,
		vecCfg:     deps.Vectorizer,
		trainCfg:   deps.Training,
	}
}

// Run executes the full training pipeline and persists the resulting
// artifact. The evaluation split is stratified and seeded, so repeated
// runs on the same corpus are reproducible.
func (t *Trainer) Run(ctx context.Context) (*domain.ModelArtifact, domain.Metrics, error) {
	started := time.Now().UTC()

	artifact, metrics, err := t.run(ctx)
	t.recordRun(ctx, started, metrics, err)
	return artifact, metrics, err
}

func (t *Trainer) run(ctx context.Context) (*domain.ModelArtifact, domain.Metrics, error) {
	var zero domain.Metrics

	if t.source == nil {
		return nil, zero, domain.NewTrainingError("no corpus source configured", nil)
	}

	docs, err := t.source.Load(ctx)
	if err != nil {
		return nil, zero, domain.NewTrainingError("load corpus", err)
	}
	if len(docs) == 0 {
		return nil, zero, domain.NewTrainingError("corpus is empty", nil)
	}

	normalizer := textproc.NewNormalizer(t.trainCfg.Stemming)

	sequences := make([]domain.TokenSequence, 0, len(docs))
	labels := make([]domain.Label, 0, len(docs))
	for _, doc := range docs {
		tokens := normalizer.Normalize(doc.Content())
		if len(tokens) == 0 {
			continue
		}
		sequences = append(sequences, tokens)
		labels = append(labels, doc.Label)
	}
	if len(sequences) == 0 {
		return nil, zero, domain.NewTrainingError("corpus is empty after normalization", nil)
	}

	classCounts := lo.CountValues(labels)
	if len(classCounts) < 2 {
		return nil, zero, domain.NewTrainingError("single-class corpus", nil)
	}
	t.logger.Info("corpus loaded",
		"documents", len(sequences),
		"fake", classCounts[domain.LabelFake],
		"real", classCounts[domain.LabelReal],
	)

	trainIdx, testIdx := stratifiedSplit(labels, t.trainCfg.TestFraction, t.trainCfg.Seed)
	t.logger.Info("split corpus", "train", len(trainIdx), "test", len(testIdx), "seed", t.trainCfg.Seed)

	trainSeqs := make([]domain.TokenSequence, len(trainIdx))
	trainLabels := make([]domain.Label, len(trainIdx))
	for i, idx := range trainIdx {
		trainSeqs[i] = sequences[idx]
		trainLabels[i] = labels[idx]
	}

	vocab, err := feature.Fit(trainSeqs, feature.FitOptions{
		MaxFeatures:     t.vecCfg.MaxFeatures,
		NGramMin:        t.vecCfg.NGramMin,
		NGramMax:        t.vecCfg.NGramMax,
		MinDocFreq:      t.vecCfg.MinDocFreq,
		MaxDocFreqRatio: t.vecCfg.MaxDocFreqRatio,
	})
	if err != nil {
		return nil, zero, domain.NewTrainingError("empty vocabulary after frequency pruning", err)
	}
	t.logger.Info("vocabulary fitted", "terms", vocab.Size())

	trainX := make([]domain.FeatureVector, len(trainSeqs))
	for i, seq := range trainSeqs {
		trainX[i] = feature.Transform(seq, vocab)
	}

	weights, err := model.Fit(trainX, trainLabels, model.FitOptions{
		C:             t.trainCfg.RegularizationC,
		MaxIterations: t.trainCfg.MaxIterations,
		Tolerance:     t.trainCfg.Tolerance,
	})
	if err != nil {
		return nil, zero, domain.NewTrainingError("classifier fit", err)
	}

	// Test split is transformed with the frozen vocabulary, never refit.
	metrics := evaluate(weights, vocab, sequences, labels, testIdx)
	metrics.TrainSamples = len(trainIdx)
	metrics.TestSamples = len(testIdx)
	t.logger.Info("model evaluated",
		"accuracy", metrics.Accuracy,
		"precision", metrics.Precision,
		"recall", metrics.Recall,
		"f1", metrics.F1,
	)

	artifact := &domain.ModelArtifact{
		FormatVersion: domain.ArtifactFormatVersion,
		Vocabulary:    vocab,
		Weights:       weights,
		Metadata: domain.ArtifactMetadata{
			TrainedAt:       time.Now().UTC(),
			Accuracy:        metrics.Accuracy,
			TrainingSamples: len(trainIdx),
			Stemming:        t.trainCfg.Stemming,
		},
	}

	if t.store != nil {
		if err := t.store.Save(ctx, artifact); err != nil {
			return nil, zero, domain.NewTrainingError("persist artifact", err)
		}
	}

	return artifact, metrics, nil
}

func (t *Trainer) recordRun(ctx context.Context, started time.Time, metrics domain.Metrics, runErr error) {
	if t.repository == nil {
		return
	}

	run := domain.TrainingRun{
		ID:         uuid.NewString(),
		StartedAt:  started,
		FinishedAt: time.Now().UTC(),
		Status:     domain.RunSucceeded,
		Metrics:    metrics,
	}
	if runErr != nil {
		run.Status = domain.RunFailed
		run.Error = runErr.Error()
	}

	if err := t.repository.SaveTrainingRun(ctx, run); err != nil {
		t.logger.Warn("record training run", "error", err)
	}
}

// stratifiedSplit partitions indices into train/test preserving the
// class ratio. The shuffle is seeded, so the split is reproducible.
func stratifiedSplit(labels []domain.Label, testFraction float64, seed int64) (train, test []int) {
	if testFraction <= 0 || testFraction >= 1 {
		testFraction = 0.2
	}

	rng := rand.New(rand.NewSource(seed))
	for _, class := range []domain.Label{domain.LabelReal, domain.LabelFake} {
		var indices []int
		for i, l := range labels {
			if l == class {
				indices = append(indices, i)
			}
		}
		if len(indices) == 0 {
			continue
		}

		rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})

		nTest := int(float64(len(indices)) * testFraction)
		if nTest < 1 {
			nTest = 1
		}
		if nTest >= len(indices) {
			nTest = len(indices) - 1
		}
		test = append(test, indices[:nTest]...)
		train = append(train, indices[nTest:]...)
	}
	return train, test
}

// evaluate computes held-out metrics with fake as the positive class.
func evaluate(weights domain.ClassifierWeights, vocab domain.Vocabulary, sequences []domain.TokenSequence, labels []domain.Label, testIdx []int) domain.Metrics {
	var tp, tn, fp, fn int
	for _, idx := range testIdx {
		vec := feature.Transform(sequences[idx], vocab)
		predicted, _ := model.Predict(weights, vec)
		actual := labels[idx]
		switch {
		case predicted == domain.LabelFake && actual == domain.LabelFake:
			tp++
		case predicted == domain.LabelReal && actual == domain.LabelReal:
			tn++
		case predicted == domain.LabelFake && actual == domain.LabelReal:
			fp++
		default:
			fn++
		}
	}

	total := len(testIdx)
	m := domain.Metrics{}
	if total > 0 {
		m.Accuracy = float64(tp+tn) / float64(total)
	}
	if tp+fp > 0 {
		m.Precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		m.Recall = float64(tp) / float64(tp+fn)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	return m
}
