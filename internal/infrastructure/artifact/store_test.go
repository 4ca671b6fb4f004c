package artifact

import (
	"context"
	"math"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DSdoesVS/fake-news-detector/internal/domain"
)

func sampleArtifact() *domain.ModelArtifact {
	return &domain.ModelArtifact{
		FormatVersion: domain.ArtifactFormatVersion,
		Vocabulary: domain.Vocabulary{
			TermIndex: map[string]int{"breaking": 0, "news": 1, "breaking news": 2},
			DocFreq:   map[string]int{"breaking": 7, "news": 11, "breaking news": 5},
			IDF:       []float64{1.5108256237659907, 1.0, 0.1 + 0.2}, // 0.30000000000000004
			NGramMin:  1,
			NGramMax:  2,
		},
		Weights: domain.ClassifierWeights{
			Coefficients: []float64{2.220446049250313e-16, -1.7976931348623157e+308, math.Pi},
			Bias:         -0.4054651081081644,
			Classes:      []domain.Label{domain.LabelReal, domain.LabelFake},
		},
		Metadata: domain.ArtifactMetadata{
			TrainedAt:       time.Date(2026, time.August, 20, 9, 30, 0, 0, time.UTC),
			Accuracy:        0.9583333333333334,
			TrainingSamples: 480,
			Stemming:        true,
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewFileStore(filepath.Join(t.TempDir(), "models", "model.json"))
	original := sampleArtifact()

	require.NoError(t, store.Save(context.Background(), original))

	restored, err := store.Load(context.Background())
	require.NoError(t, err)

	// Floats must come back bit-identical, not merely close.
	assert.Equal(t, original, restored)
	for i, c := range original.Weights.Coefficients {
		assert.Equal(t, math.Float64bits(c), math.Float64bits(restored.Weights.Coefficients[i]))
	}
	for i, v := range original.Vocabulary.IDF {
		assert.Equal(t, math.Float64bits(v), math.Float64bits(restored.Vocabulary.IDF[i]))
	}
	assert.Equal(t, math.Float64bits(original.Weights.Bias), math.Float64bits(restored.Weights.Bias))
}

func TestSaveOverwritesAtomically(t *testing.T) {
	t.Parallel()

	store := NewFileStore(filepath.Join(t.TempDir(), "model.json"))
	first := sampleArtifact()
	require.NoError(t, store.Save(context.Background(), first))

	second := sampleArtifact()
	second.Weights.Bias = 3.25
	require.NoError(t, store.Save(context.Background(), second))

	restored, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3.25, restored.Weights.Bias)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	store := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))
	_, err := store.Load(context.Background())
	assert.Error(t, err)

	var se *domain.SerializationError
	assert.NotErrorAs(t, err, &se, "a missing file is not a corrupt one")
}

func TestDecodeRejectsCorruptInput(t *testing.T) {
	t.Parallel()

	_, err := Decode(strings.NewReader("{not json"))
	var se *domain.SerializationError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Error(), "decode artifact")
}

func TestDecodeRejectsVersionMismatch(t *testing.T) {
	t.Parallel()

	_, err := Decode(strings.NewReader(`{
		"format_version": 99,
		"vocabulary": {"breaking": 0},
		"idf_table": [1.0],
		"classifier": {"coefficients": [0.5], "bias": 0}
	}`))
	var se *domain.SerializationError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Error(), "format version 99")
}

func TestDecodeRejectsInconsistentBundle(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		body string
		want string
	}{
		{
			name: "coefficient count mismatch",
			body: `{
				"format_version": 1,
				"vocabulary": {"breaking": 0, "news": 1},
				"idf_table": [1.5, 1.0],
				"classifier": {"coefficients": [0.5], "bias": 0}
			}`,
			want: "1 coefficients for 2 terms",
		},
		{
			name: "idf table mismatch",
			body: `{
				"format_version": 1,
				"vocabulary": {"breaking": 0, "news": 1},
				"idf_table": [1.5],
				"classifier": {"coefficients": [0.5, -0.5], "bias": 0}
			}`,
			want: "idf table",
		},
		{
			name: "empty vocabulary",
			body: `{
				"format_version": 1,
				"vocabulary": {},
				"idf_table": [],
				"classifier": {"coefficients": [], "bias": 0}
			}`,
			want: "empty vocabulary",
		},
		{
			name: "duplicated index",
			body: `{
				"format_version": 1,
				"vocabulary": {"breaking": 0, "news": 0},
				"idf_table": [1.5, 1.0],
				"classifier": {"coefficients": [0.5, -0.5], "bias": 0}
			}`,
			want: "out of range or duplicated",
		},
		{
			name: "index out of range",
			body: `{
				"format_version": 1,
				"vocabulary": {"breaking": 0, "news": 5},
				"idf_table": [1.5, 1.0],
				"classifier": {"coefficients": [0.5, -0.5], "bias": 0}
			}`,
			want: "out of range or duplicated",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tc.body))
			var se *domain.SerializationError
			require.ErrorAs(t, err, &se)
			assert.Contains(t, se.Error(), tc.want)
		})
	}
}

func TestWatcherReloadsOnSave(t *testing.T) {
	t.Parallel()

	store := NewFileStore(filepath.Join(t.TempDir(), "model.json"))

	var mu sync.Mutex
	var got *domain.ModelArtifact
	watcher := NewWatcher(store, func(a *domain.ModelArtifact) {
		mu.Lock()
		got = a
		mu.Unlock()
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Watch(ctx)

	// Give the watcher time to register before the first save.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, store.Save(context.Background(), sampleArtifact()))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return got != nil
	}, 5*time.Second, 25*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, got.Vocabulary.Size())
	assert.True(t, got.Metadata.Stemming)
}
