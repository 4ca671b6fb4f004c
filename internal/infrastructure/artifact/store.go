// Package artifact persists the trained model bundle as a single
// versioned JSON file. The bundle is written atomically and loaded as a
// unit; a corrupt or version-mismatched file refuses to load.
package artifact

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/DSdoesVS/fake-news-detector/internal/domain"
	"github.com/DSdoesVS/fake-news-detector/internal/ports"
)

// FileStore reads and writes the artifact at a fixed path.
type FileStore struct {
	path string
}

var _ ports.ArtifactStore = (*FileStore)(nil)

// NewFileStore points the store at the artifact location.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the artifact location on disk.
func (s *FileStore) Path() string {
	return s.path
}

// Save writes the bundle to a temporary file and renames it into place,
// so concurrent readers never observe a partially written artifact.
func (s *FileStore) Save(_ context.Context, a *domain.ModelArtifact) error {
	if a == nil {
		return fmt.Errorf("nil artifact")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".artifact-*.json")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, a); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace artifact: %w", err)
	}
	return nil
}

// Load restores the bundle from disk.
func (s *FileStore) Load(context.Context) (*domain.ModelArtifact, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// artifactFile is the persisted layout of the bundle.
type artifactFile struct {
	FormatVersion int              `json:"format_version"`
	NGramMin      int              `json:"ngram_min"`
	NGramMax      int              `json:"ngram_max"`
	Vocabulary    map[string]int   `json:"vocabulary"`
	DocFreq       map[string]int   `json:"document_frequency,omitempty"`
	IDF           []float64        `json:"idf_table"`
	Classifier    classifierFile   `json:"classifier"`
	Metadata      metadataFile     `json:"metadata"`
}

type classifierFile struct {
	Coefficients []float64 `json:"coefficients"`
	Bias         float64   `json:"bias"`
	Classes      []int     `json:"classes"`
}

type metadataFile struct {
	TrainedAt       time.Time `json:"trained_at"`
	Accuracy        float64   `json:"accuracy"`
	TrainingSamples int       `json:"training_sample_count"`
	Stemming        bool      `json:"stemming"`
}

// Encode serializes the bundle to JSON. Round-trips bit-exactly:
// encoding/json emits the shortest float representation that restores
// the identical bits.
func Encode(w io.Writer, a *domain.ModelArtifact) error {
	classes := make([]int, len(a.Weights.Classes))
	for i, c := range a.Weights.Classes {
		classes[i] = int(c)
	}

	file := artifactFile{
		FormatVersion: a.FormatVersion,
		NGramMin:      a.Vocabulary.NGramMin,
		NGramMax:      a.Vocabulary.NGramMax,
		Vocabulary:    a.Vocabulary.TermIndex,
		DocFreq:       a.Vocabulary.DocFreq,
		IDF:           a.Vocabulary.IDF,
		Classifier: classifierFile{
			Coefficients: a.Weights.Coefficients,
			Bias:         a.Weights.Bias,
			Classes:      classes,
		},
		Metadata: metadataFile{
			TrainedAt:       a.Metadata.TrainedAt,
			Accuracy:        a.Metadata.Accuracy,
			TrainingSamples: a.Metadata.TrainingSamples,
			Stemming:        a.Metadata.Stemming,
		},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(file); err != nil {
		return &domain.SerializationError{Reason: "encode artifact", Err: err}
	}
	return nil
}

// Decode restores and validates the bundle. Any inconsistency between
// vocabulary, IDF table, and coefficients rejects the whole artifact.
func Decode(r io.Reader) (*domain.ModelArtifact, error) {
	var file artifactFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, &domain.SerializationError{Reason: "decode artifact", Err: err}
	}

	if file.FormatVersion != domain.ArtifactFormatVersion {
		return nil, &domain.SerializationError{
			Reason: fmt.Sprintf("format version %d, want %d", file.FormatVersion, domain.ArtifactFormatVersion),
		}
	}

	size := len(file.Vocabulary)
	if size == 0 {
		return nil, &domain.SerializationError{Reason: "empty vocabulary"}
	}
	if len(file.IDF) != size {
		return nil, &domain.SerializationError{
			Reason: fmt.Sprintf("idf table has %d entries for %d terms", len(file.IDF), size),
		}
	}
	if len(file.Classifier.Coefficients) != size {
		return nil, &domain.SerializationError{
			Reason: fmt.Sprintf("%d coefficients for %d terms", len(file.Classifier.Coefficients), size),
		}
	}

	seen := make([]bool, size)
	for term, idx := range file.Vocabulary {
		if idx < 0 || idx >= size || seen[idx] {
			return nil, &domain.SerializationError{
				Reason: fmt.Sprintf("vocabulary index %d for %q is out of range or duplicated", idx, term),
			}
		}
		seen[idx] = true
	}

	classes := make([]domain.Label, len(file.Classifier.Classes))
	for i, c := range file.Classifier.Classes {
		classes[i] = domain.Label(c)
	}

	return &domain.ModelArtifact{
		FormatVersion: file.FormatVersion,
		Vocabulary: domain.Vocabulary{
			TermIndex: file.Vocabulary,
			DocFreq:   file.DocFreq,
			IDF:       file.IDF,
			NGramMin:  file.NGramMin,
			NGramMax:  file.NGramMax,
		},
		Weights: domain.ClassifierWeights{
			Coefficients: file.Classifier.Coefficients,
			Bias:         file.Classifier.Bias,
			Classes:      classes,
		},
		Metadata: domain.ArtifactMetadata{
			TrainedAt:       file.Metadata.TrainedAt,
			Accuracy:        file.Metadata.Accuracy,
			TrainingSamples: file.Metadata.TrainingSamples,
			Stemming:        file.Metadata.Stemming,
		},
	}, nil
}
