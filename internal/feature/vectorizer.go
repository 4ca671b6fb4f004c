// Package feature builds the fixed vocabulary from a training corpus
// and converts token sequences into sparse TF-IDF vectors.
package feature

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/DSdoesVS/fake-news-detector/internal/domain"
)

// FitOptions bound the vocabulary built from a corpus.
type FitOptions struct {
	MaxFeatures     int
	NGramMin        int
	NGramMax        int
	MinDocFreq      int
	MaxDocFreqRatio float64
}

// DefaultFitOptions mirror the training defaults: top 10k unigrams and
// bigrams seen in at least 2 and at most 95% of documents.
func DefaultFitOptions() FitOptions {
	return FitOptions{
		MaxFeatures:     10000,
		NGramMin:        1,
		NGramMax:        2,
		MinDocFreq:      2,
		MaxDocFreqRatio: 0.95,
	}
}

// Fit enumerates n-grams across the corpus, prunes by document
// frequency, ranks the survivors by total corpus frequency (ties broken
// lexicographically, so the output is reproducible) and assigns
// contiguous indices with smoothed IDF weights.
func Fit(corpus []domain.TokenSequence, opts FitOptions) (domain.Vocabulary, error) {
	if opts.NGramMin < 1 || opts.NGramMax < opts.NGramMin {
		return domain.Vocabulary{}, fmt.Errorf("invalid ngram range (%d,%d)", opts.NGramMin, opts.NGramMax)
	}
	if len(corpus) == 0 {
		return domain.Vocabulary{}, fmt.Errorf("empty corpus")
	}

	docFreq := make(map[string]int)
	totalFreq := make(map[string]int)
	for _, tokens := range corpus {
		seen := make(map[string]struct{})
		for _, term := range ngrams(tokens, opts.NGramMin, opts.NGramMax) {
			totalFreq[term]++
			if _, ok := seen[term]; !ok {
				seen[term] = struct{}{}
				docFreq[term]++
			}
		}
	}

	corpusSize := len(corpus)
	maxDocFreq := int(opts.MaxDocFreqRatio * float64(corpusSize))

	kept := make([]string, 0, len(docFreq))
	for term, df := range docFreq {
		if df < opts.MinDocFreq || df > maxDocFreq {
			continue
		}
		kept = append(kept, term)
	}
	if len(kept) == 0 {
		return domain.Vocabulary{}, fmt.Errorf("no terms survived frequency pruning (corpus size %d)", corpusSize)
	}

	sort.Slice(kept, func(i, j int) bool {
		if totalFreq[kept[i]] != totalFreq[kept[j]] {
			return totalFreq[kept[i]] > totalFreq[kept[j]]
		}
		return kept[i] < kept[j]
	})
	if opts.MaxFeatures > 0 && len(kept) > opts.MaxFeatures {
		kept = kept[:opts.MaxFeatures]
	}

	vocab := domain.Vocabulary{
		TermIndex: make(map[string]int, len(kept)),
		DocFreq:   make(map[string]int, len(kept)),
		IDF:       make([]float64, len(kept)),
		NGramMin:  opts.NGramMin,
		NGramMax:  opts.NGramMax,
	}
	for idx, term := range kept {
		df := docFreq[term]
		vocab.TermIndex[term] = idx
		vocab.DocFreq[term] = df
		// Smoothed so every kept term carries positive weight, even one
		// appearing in all documents.
		vocab.IDF[idx] = math.Log(float64(1+corpusSize)/float64(1+df)) + 1
	}

	return vocab, nil
}

// Transform counts in-vocabulary n-grams, weights them by IDF and
// L2-normalizes the result. Unknown n-grams are ignored; a document
// with no recognized terms stays a zero vector.
func Transform(tokens domain.TokenSequence, vocab domain.Vocabulary) domain.FeatureVector {
	vec := domain.FeatureVector{
		Weights: make(map[int]float64),
		Dim:     vocab.Size(),
	}

	for _, term := range ngrams(tokens, vocab.NGramMin, vocab.NGramMax) {
		if idx, ok := vocab.TermIndex[term]; ok {
			vec.Weights[idx] += vocab.IDF[idx]
		}
	}

	var sumSq float64
	for _, w := range vec.Weights {
		sumSq += w * w
	}
	if sumSq > 0 {
		norm := math.Sqrt(sumSq)
		for idx, w := range vec.Weights {
			vec.Weights[idx] = w / norm
		}
	}

	return vec
}

func ngrams(tokens domain.TokenSequence, minN, maxN int) []string {
	if len(tokens) == 0 {
		return nil
	}
	grams := make([]string, 0, len(tokens)*(maxN-minN+1))
	for n := minN; n <= maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			if n == 1 {
				grams = append(grams, tokens[i])
				continue
			}
			grams = append(grams, strings.Join(tokens[i:i+n], " "))
		}
	}
	return grams
}
