package domain

import "time"

// ArtifactFormatVersion guards persisted bundles against layout drift.
// Bumped whenever the serialized shape changes incompatibly.
const ArtifactFormatVersion = 1

// Vocabulary is the frozen mapping from n-gram term to feature index,
// built once during fitting. Indices are contiguous in [0, Size()).
type Vocabulary struct {
	TermIndex map[string]int
	DocFreq   map[string]int
	IDF       []float64
	NGramMin  int
	NGramMax  int
}

// Size reports the feature dimension.
func (v Vocabulary) Size() int {
	return len(v.TermIndex)
}

// Terms returns the term for every index, in index order.
func (v Vocabulary) Terms() []string {
	terms := make([]string, len(v.TermIndex))
	for term, idx := range v.TermIndex {
		terms[idx] = term
	}
	return terms
}

// ClassifierWeights are the parameters of the trained linear model.
// len(Coefficients) equals the vocabulary size.
type ClassifierWeights struct {
	Coefficients []float64
	Bias         float64
	Classes      []Label
}

// ArtifactMetadata describes the training run that produced a bundle.
// Stemming records whether the normalizer stemmed tokens during
// training; inference must use the same setting.
type ArtifactMetadata struct {
	TrainedAt       time.Time
	Accuracy        float64
	TrainingSamples int
	Stemming        bool
}

// ModelArtifact is the durable bundle produced by training and consumed
// by inference. It is loaded and swapped as a unit; a partial bundle is
// invalid.
type ModelArtifact struct {
	FormatVersion int
	Vocabulary    Vocabulary
	Weights       ClassifierWeights
	Metadata      ArtifactMetadata
}

// ModelInfo is the public description of the currently loaded model.
type ModelInfo struct {
	Kind            string    `json:"model_kind"`
	FeatureCount    int       `json:"feature_count"`
	VocabularySize  int       `json:"vocabulary_size"`
	Classes         []string  `json:"classes"`
	Stemming        bool      `json:"stemming"`
	TrainedAt       time.Time `json:"trained_at"`
	Accuracy        float64   `json:"accuracy"`
	TrainingSamples int       `json:"training_sample_count"`
}
