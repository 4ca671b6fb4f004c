package domain

import "time"

// Label is the binary class of an article. The encoding is fixed:
// 1 means fake, 0 means real. Positive classifier coefficients push
// toward fake.
type Label int

const (
	LabelReal Label = 0
	LabelFake Label = 1
)

// String renders the public name of the class.
func (l Label) String() string {
	if l == LabelFake {
		return "fake"
	}
	return "real"
}

// ParseLabel maps the public class name back to its encoding.
func ParseLabel(s string) (Label, bool) {
	switch s {
	case "fake":
		return LabelFake, true
	case "real":
		return LabelReal, true
	}
	return 0, false
}

// Document is one raw input article before normalization.
type Document struct {
	Title string
	Text  string
	Label Label
}

// Content joins title and body the way the training corpus expects.
func (d Document) Content() string {
	if d.Title == "" {
		return d.Text
	}
	if d.Text == "" {
		return d.Title
	}
	return d.Title + " " + d.Text
}

// TokenSequence is the normalized output of a document: ordered,
// lowercase tokens with stop-words and short/numeric tokens removed.
type TokenSequence []string

// FeatureVector is a sparse TF-IDF representation of a document.
// All indices are < Dim.
type FeatureVector struct {
	Weights map[int]float64
	Dim     int
}

// PredictionResult is the output of a single inference. Confidence is
// the probability assigned to the predicted class, always in [0,1].
type PredictionResult struct {
	Label           Label
	Confidence      float64
	OriginalLength  int
	ProcessedLength int
	TopFeatures     []FeatureWeight
}

// FeatureWeight pairs a vocabulary term with its classifier coefficient
// and, when computed per request, the term's TF-IDF value in the input.
type FeatureWeight struct {
	Term        string  `json:"term"`
	Coefficient float64 `json:"coefficient"`
	Value       float64 `json:"value,omitempty"`
}

// PredictionRecord is the persisted audit trail of one inference.
// TextPreview is always truncated, never the full input.
type PredictionRecord struct {
	ID          string
	CreatedAt   time.Time
	Label       Label
	Confidence  float64
	TextPreview string
}

// TrainingRun captures the outcome of one training job for audit.
type TrainingRun struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Status     string
	Error      string
	Metrics    Metrics
}

// Training run statuses persisted in storage.
const (
	RunSucceeded = "succeeded"
	RunFailed    = "failed"
)

// Metrics holds the held-out evaluation of a trained model. Fake is the
// positive class for precision/recall/F1.
type Metrics struct {
	Accuracy     float64 `json:"accuracy"`
	Precision    float64 `json:"precision"`
	Recall       float64 `json:"recall"`
	F1           float64 `json:"f1"`
	TrainSamples int     `json:"train_samples"`
	TestSamples  int     `json:"test_samples"`
}
