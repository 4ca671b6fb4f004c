// Package model implements the linear binary classifier: L2-regularized
// logistic regression trained by batch gradient descent with a
// backtracking step, and deterministic inference.
package model

import (
	"fmt"
	"math"
	"sort"

	"github.com/DSdoesVS/fake-news-detector/internal/domain"
)

// FitOptions control the convex optimization. C is the inverse
// regularization strength (larger C, weaker penalty).
type FitOptions struct {
	C             float64
	MaxIterations int
	Tolerance     float64
}

// DefaultFitOptions match the training defaults (C=1, 1000 iterations).
func DefaultFitOptions() FitOptions {
	return FitOptions{C: 1.0, MaxIterations: 1000, Tolerance: 1e-4}
}

// Fit minimizes the regularized logistic loss
//
//	sum_i CE(sigmoid(w·x_i + b), y_i) + (1/2C)·‖w‖²
//
// over the training set. The loss is convex, so any run on identical
// input converges to the same optimum. Training fails when the gradient
// norm has not fallen below the tolerance within the iteration cap.
func Fit(x []domain.FeatureVector, y []domain.Label, opts FitOptions) (domain.ClassifierWeights, error) {
	if len(x) == 0 {
		return domain.ClassifierWeights{}, fmt.Errorf("no training vectors")
	}
	if len(x) != len(y) {
		return domain.ClassifierWeights{}, fmt.Errorf("feature/label length mismatch: %d vs %d", len(x), len(y))
	}
	if opts.C <= 0 {
		return domain.ClassifierWeights{}, fmt.Errorf("regularization C must be positive, got %g", opts.C)
	}

	dim := x[0].Dim
	for i := range x {
		if x[i].Dim != dim {
			return domain.ClassifierWeights{}, fmt.Errorf("vector %d has dimension %d, want %d", i, x[i].Dim, dim)
		}
	}

	w := make([]float64, dim)
	var b float64
	step := 1.0
	loss := objective(x, y, w, b, opts.C)

	gradW := make([]float64, dim)
	trialW := make([]float64, dim)

	for iter := 0; iter < opts.MaxIterations; iter++ {
		gradB := gradient(x, y, w, b, opts.C, gradW)

		var normSq float64
		for _, g := range gradW {
			normSq += g * g
		}
		normSq += gradB * gradB
		if math.Sqrt(normSq) < opts.Tolerance {
			return weights(w, b), nil
		}

		// Backtracking: shrink the step until the objective decreases.
		accepted := false
		for trial := 0; trial < 40; trial++ {
			for i := range w {
				trialW[i] = w[i] - step*gradW[i]
			}
			trialB := b - step*gradB
			trialLoss := objective(x, y, trialW, trialB, opts.C)
			if trialLoss < loss {
				copy(w, trialW)
				b = trialB
				loss = trialLoss
				step *= 1.25
				accepted = true
				break
			}
			step /= 2
		}
		if !accepted {
			// The step underflowed without improving the objective;
			// treat the current point as stationary.
			gradB = gradient(x, y, w, b, opts.C, gradW)
			normSq = gradB * gradB
			for _, g := range gradW {
				normSq += g * g
			}
			if math.Sqrt(normSq) < opts.Tolerance {
				return weights(w, b), nil
			}
			return domain.ClassifierWeights{}, fmt.Errorf("optimizer stalled at gradient norm %g (tolerance %g)", math.Sqrt(normSq), opts.Tolerance)
		}
	}

	return domain.ClassifierWeights{}, fmt.Errorf("no convergence after %d iterations (tolerance %g)", opts.MaxIterations, opts.Tolerance)
}

// Probability returns sigmoid(w·x + b): the probability that x is fake.
func Probability(w domain.ClassifierWeights, x domain.FeatureVector) float64 {
	score := w.Bias
	for idx, val := range x.Weights {
		if idx < len(w.Coefficients) {
			score += w.Coefficients[idx] * val
		}
	}
	return sigmoid(score)
}

// Predict maps x to its class and the confidence in that class.
// Deterministic: identical input and weights always yield identical
// output.
func Predict(w domain.ClassifierWeights, x domain.FeatureVector) (domain.Label, float64) {
	p := Probability(w, x)
	if p >= 0.5 {
		return domain.LabelFake, p
	}
	return domain.LabelReal, 1 - p
}

// TopWeights exposes the n coefficients with the largest magnitude,
// labeled with their vocabulary terms. Positive coefficients push
// toward fake, negative toward real.
func TopWeights(w domain.ClassifierWeights, vocab domain.Vocabulary, n int) []domain.FeatureWeight {
	terms := vocab.Terms()
	indices := make([]int, 0, len(w.Coefficients))
	for i := range w.Coefficients {
		indices = append(indices, i)
	}
	sort.Slice(indices, func(a, b int) bool {
		ca := math.Abs(w.Coefficients[indices[a]])
		cb := math.Abs(w.Coefficients[indices[b]])
		if ca != cb {
			return ca > cb
		}
		return indices[a] < indices[b]
	})

	if n > len(indices) {
		n = len(indices)
	}
	out := make([]domain.FeatureWeight, 0, n)
	for _, idx := range indices[:n] {
		fw := domain.FeatureWeight{Coefficient: w.Coefficients[idx]}
		if idx < len(terms) {
			fw.Term = terms[idx]
		}
		out = append(out, fw)
	}
	return out
}

// Explain pairs the non-zero features of x with their coefficients and
// TF-IDF values, strongest coefficient first. Used for per-request
// feature importance.
func Explain(w domain.ClassifierWeights, vocab domain.Vocabulary, x domain.FeatureVector, n int) []domain.FeatureWeight {
	terms := vocab.Terms()
	out := make([]domain.FeatureWeight, 0, len(x.Weights))
	for idx, val := range x.Weights {
		if idx >= len(w.Coefficients) {
			continue
		}
		fw := domain.FeatureWeight{Coefficient: w.Coefficients[idx], Value: val}
		if idx < len(terms) {
			fw.Term = terms[idx]
		}
		out = append(out, fw)
	}
	sort.Slice(out, func(a, b int) bool {
		ca, cb := math.Abs(out[a].Coefficient), math.Abs(out[b].Coefficient)
		if ca != cb {
			return ca > cb
		}
		return out[a].Term < out[b].Term
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func weights(w []float64, b float64) domain.ClassifierWeights {
	coeffs := make([]float64, len(w))
	copy(coeffs, w)
	return domain.ClassifierWeights{
		Coefficients: coeffs,
		Bias:         b,
		Classes:      []domain.Label{domain.LabelReal, domain.LabelFake},
	}
}

// gradient fills gradW with d(loss)/dw and returns d(loss)/db.
func gradient(x []domain.FeatureVector, y []domain.Label, w []float64, b, c float64, gradW []float64) float64 {
	for i := range gradW {
		gradW[i] = w[i] / c
	}
	var gradB float64
	for i := range x {
		score := b
		for idx, val := range x[i].Weights {
			score += w[idx] * val
		}
		residual := sigmoid(score) - float64(y[i])
		for idx, val := range x[i].Weights {
			gradW[idx] += residual * val
		}
		gradB += residual
	}
	return gradB
}

func objective(x []domain.FeatureVector, y []domain.Label, w []float64, b, c float64) float64 {
	var loss float64
	for i := range x {
		score := b
		for idx, val := range x[i].Weights {
			score += w[idx] * val
		}
		// log(1 + e^{-s·score}) with s in {-1,+1}, computed in the
		// numerically stable branch.
		s := 2*float64(y[i]) - 1
		m := s * score
		if m > 0 {
			loss += math.Log1p(math.Exp(-m))
		} else {
			loss += -m + math.Log1p(math.Exp(m))
		}
	}
	var reg float64
	for _, wi := range w {
		reg += wi * wi
	}
	return loss + reg/(2*c)
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
