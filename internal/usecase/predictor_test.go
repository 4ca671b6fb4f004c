package usecase

import (
	"context"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DSdoesVS/fake-news-detector/internal/config"
	"github.com/DSdoesVS/fake-news-detector/internal/domain"
)

func testValidation() config.ValidationConfig {
	return config.ValidationConfig{
		MinTextLength: 10,
		MaxTextLength: 10000,
		MinAlphaRatio: 0.5,
	}
}

// Fixed artifact from the recorded scenario: vocabulary
// {breaking:0, news:1}, idf {0:1.5, 1:1.0}, coefficients [2,-1], bias 0.
func scenarioArtifact() *domain.ModelArtifact {
	return &domain.ModelArtifact{
		FormatVersion: domain.ArtifactFormatVersion,
		Vocabulary: domain.Vocabulary{
			TermIndex: map[string]int{"breaking": 0, "news": 1},
			DocFreq:   map[string]int{"breaking": 2, "news": 3},
			IDF:       []float64{1.5, 1.0},
			NGramMin:  1,
			NGramMax:  2,
		},
		Weights: domain.ClassifierWeights{
			Coefficients: []float64{2.0, -1.0},
			Bias:         0.0,
			Classes:      []domain.Label{domain.LabelReal, domain.LabelFake},
		},
		Metadata: domain.ArtifactMetadata{
			TrainedAt:       time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC),
			Accuracy:        0.97,
			TrainingSamples: 480,
		},
	}
}

func newService(repo *stubRepository) *PredictionService {
	deps := PredictionServiceDeps{
		Validation: testValidation(),
	}
	if repo != nil {
		deps.Repository = repo
	}
	return NewPredictionService(deps)
}

func TestPredictNotLoaded(t *testing.T) {
	t.Parallel()

	svc := newService(nil)
	assert.False(t, svc.Loaded())

	_, err := svc.Predict(context.Background(), "plenty of valid article text here", false)
	assert.ErrorIs(t, err, domain.ErrModelNotLoaded)

	_, err = svc.Info()
	assert.ErrorIs(t, err, domain.ErrModelNotLoaded)

	_, err = svc.TopFeatures(5)
	assert.ErrorIs(t, err, domain.ErrModelNotLoaded)
}

func TestPredictValidation(t *testing.T) {
	t.Parallel()

	svc := newService(nil)
	svc.Reload(scenarioArtifact())

	cases := []struct {
		name    string
		text    string
		wantMsg []string
	}{
		{name: "empty", text: "", wantMsg: []string{"Text cannot be empty"}},
		{name: "whitespace only", text: "   \n\t  ", wantMsg: []string{"Text cannot be empty"}},
		{name: "too short", text: "hi there", wantMsg: []string{"too short", "10"}},
		{name: "too long", text: strings.Repeat("a", 10001), wantMsg: []string{"10001", "10000"}},
		{name: "low alphabetic ratio", text: "1234567890 1234567890 123", wantMsg: []string{"alphabetic"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Predict(context.Background(), tc.text, false)
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve, "expected validation error")
			for _, want := range tc.wantMsg {
				assert.Contains(t, ve.Error(), want)
			}
		})
	}
}

// Validation failures must be distinguishable from the not-loaded
// condition: bad input is rejected before the artifact check.
func TestPredictValidationBeforeModelCheck(t *testing.T) {
	t.Parallel()

	svc := newService(nil)
	_, err := svc.Predict(context.Background(), "", false)
	assert.True(t, domain.IsValidation(err))
	assert.NotErrorIs(t, err, domain.ErrModelNotLoaded)
}

func TestPredictRecordedScenario(t *testing.T) {
	t.Parallel()

	repo := &stubRepository{}
	svc := newService(repo)
	svc.Reload(scenarioArtifact())

	res, err := svc.Predict(context.Background(), "breaking breaking news", false)
	require.NoError(t, err)

	// tf {breaking:2, news:1} → raw weights [3.0, 1.0] → score 5/sqrt(10).
	assert.Equal(t, domain.LabelFake, res.Label)
	assert.InDelta(t, 0.8294, res.Confidence, 1e-3)
	assert.Equal(t, len("breaking breaking news"), res.OriginalLength)
	assert.Equal(t, 3, res.ProcessedLength)

	require.Len(t, repo.predictions, 1)
	assert.Equal(t, domain.LabelFake, repo.predictions[0].Label)
	assert.Equal(t, "breaking breaking news", repo.predictions[0].TextPreview)
}

func TestPredictDeterministic(t *testing.T) {
	t.Parallel()

	svc := newService(nil)
	svc.Reload(scenarioArtifact())

	text := "breaking news tonight about the breaking situation downtown"
	first, err := svc.Predict(context.Background(), text, false)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := svc.Predict(context.Background(), text, false)
		require.NoError(t, err)
		assert.Equal(t, first.Label, again.Label)
		assert.Equal(t, first.Confidence, again.Confidence)
	}
}

func TestPredictDetailedFeatures(t *testing.T) {
	t.Parallel()

	svc := newService(nil)
	svc.Reload(scenarioArtifact())

	res, err := svc.Predict(context.Background(), "breaking breaking news", true)
	require.NoError(t, err)
	require.Len(t, res.TopFeatures, 2)
	assert.Equal(t, "breaking", res.TopFeatures[0].Term)
	assert.Equal(t, 2.0, res.TopFeatures[0].Coefficient)
	assert.Equal(t, "news", res.TopFeatures[1].Term)
}

func TestPredictUnknownTermsOnly(t *testing.T) {
	t.Parallel()

	svc := newService(nil)
	svc.Reload(scenarioArtifact())

	// Zero vector: score is the bias, probability 0.5 → labeled fake.
	res, err := svc.Predict(context.Background(), "completely unrelated article content here", false)
	require.NoError(t, err)
	assert.Equal(t, domain.LabelFake, res.Label)
	assert.InDelta(t, 0.5, res.Confidence, 1e-12)
}

func TestInfoDescribesLoadedModel(t *testing.T) {
	t.Parallel()

	svc := newService(nil)
	svc.Reload(scenarioArtifact())

	info, err := svc.Info()
	require.NoError(t, err)
	assert.Equal(t, "logistic_regression", info.Kind)
	assert.Equal(t, 2, info.FeatureCount)
	assert.Equal(t, 2, info.VocabularySize)
	assert.Equal(t, []string{"real", "fake"}, info.Classes)
	assert.Equal(t, 0.97, info.Accuracy)
	assert.Equal(t, 480, info.TrainingSamples)
}

func TestTopFeaturesExport(t *testing.T) {
	t.Parallel()

	svc := newService(nil)
	svc.Reload(scenarioArtifact())

	top, err := svc.TopFeatures(1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "breaking", top[0].Term)
}

func TestTrainAndReloadSingleFlight(t *testing.T) {
	t.Parallel()

	svc := newService(nil)
	svc.trainMu.Lock()
	defer svc.trainMu.Unlock()

	svc.trainer = NewTrainer(TrainerDeps{
		Source:     &stubSource{docs: syntheticCorpus()},
		Vectorizer: testVectorizerConfig(),
		Training:   testTrainingConfig(),
	})

	_, err := svc.TrainAndReload(context.Background())
	assert.ErrorIs(t, err, domain.ErrTrainingInProgress)
}

func TestTrainAndReloadKeepsOldModelOnFailure(t *testing.T) {
	t.Parallel()

	svc := NewPredictionService(PredictionServiceDeps{
		Trainer: NewTrainer(TrainerDeps{
			Source:     &stubSource{}, // empty corpus → training failure
			Vectorizer: testVectorizerConfig(),
			Training:   testTrainingConfig(),
		}),
		Validation: testValidation(),
	})
	old := scenarioArtifact()
	svc.Reload(old)

	_, err := svc.TrainAndReload(context.Background())
	var te *domain.TrainingError
	require.ErrorAs(t, err, &te)

	// The previously loaded artifact keeps serving.
	res, err := svc.Predict(context.Background(), "breaking breaking news", false)
	require.NoError(t, err)
	assert.Equal(t, domain.LabelFake, res.Label)
	assert.InDelta(t, 0.8294, res.Confidence, 1e-3)
}

func TestTrainAndReloadSwapsModel(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	svc := NewPredictionService(PredictionServiceDeps{
		Trainer: NewTrainer(TrainerDeps{
			Source:     &stubSource{docs: syntheticCorpus()},
			Store:      store,
			Vectorizer: testVectorizerConfig(),
			Training:   testTrainingConfig(),
		}),
		Validation: testValidation(),
	})
	require.False(t, svc.Loaded())

	metrics, err := svc.TrainAndReload(context.Background())
	require.NoError(t, err)
	assert.True(t, svc.Loaded())
	assert.GreaterOrEqual(t, metrics.Accuracy, 0.9)

	res, err := svc.Predict(context.Background(), "shocking miracle cure secret trick exposed", false)
	require.NoError(t, err)
	assert.Equal(t, domain.LabelFake, res.Label)
}

// Concurrent predictions during artifact reloads must never observe a
// half-swapped artifact: every result matches exactly one of the two
// fixed models.
func TestConcurrentReloadNeverTearsArtifact(t *testing.T) {
	t.Parallel()

	leanReal := &domain.ModelArtifact{
		FormatVersion: domain.ArtifactFormatVersion,
		Vocabulary: domain.Vocabulary{
			TermIndex: map[string]int{"breaking": 0},
			IDF:       []float64{1.0},
			NGramMin:  1,
			NGramMax:  1,
		},
		Weights: domain.ClassifierWeights{Coefficients: []float64{0}, Bias: -2},
	}
	leanFake := &domain.ModelArtifact{
		FormatVersion: domain.ArtifactFormatVersion,
		Vocabulary: domain.Vocabulary{
			TermIndex: map[string]int{"breaking": 0},
			IDF:       []float64{1.0},
			NGramMin:  1,
			NGramMax:  1,
		},
		Weights: domain.ClassifierWeights{Coefficients: []float64{0}, Bias: 2},
	}

	wantConf := 1 / (1 + math.Exp(-2))

	svc := newService(nil)
	svc.Reload(leanReal)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			if i%2 == 0 {
				svc.Reload(leanFake)
			} else {
				svc.Reload(leanReal)
			}
		}
	}()

	var wg sync.WaitGroup
	for g := 0; g < 100; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				res, err := svc.Predict(context.Background(), "breaking breaking breaking news", false)
				if err != nil {
					t.Error(err)
					return
				}
				// Either model yields the same confidence; only the
				// label differs. A torn artifact would break this.
				if res.Label != domain.LabelFake && res.Label != domain.LabelReal {
					t.Errorf("impossible label %v", res.Label)
					return
				}
				if math.Abs(res.Confidence-wantConf) > 1e-12 {
					t.Errorf("confidence %v does not match either model", res.Confidence)
					return
				}
			}
		}()
	}

	wg.Wait()
	<-done
}
