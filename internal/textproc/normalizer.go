// Package textproc turns raw article text into the token form consumed
// by the feature extractor. The pipeline is pure and order-fixed so that
// training and inference always agree.
package textproc

import (
	"regexp"
	"strings"

	"github.com/blevesearch/go-porterstemmer"

	"github.com/DSdoesVS/fake-news-detector/internal/domain"
)

const minTokenLength = 2

var (
	urlExpr     = regexp.MustCompile(`(?:[a-z][a-z0-9+.-]*://\S+|www\.\S+)`)
	emailExpr   = regexp.MustCompile(`\S+@\S+`)
	htmlTagExpr = regexp.MustCompile(`<[^>]*>`)
	mentionExpr = regexp.MustCompile(`[@#]\w+`)
	nonCharset  = regexp.MustCompile(`[^a-z0-9 ]+`)
	digitsOnly  = regexp.MustCompile(`^[0-9]+$`)
)

// Normalizer performs deterministic text cleanup and tokenization.
// Stemming is optional; the choice is recorded in the model artifact so
// a stemmed vocabulary is never queried with unstemmed tokens.
type Normalizer struct {
	stem      bool
	stopWords map[string]struct{}
}

// NewNormalizer builds a normalizer with the embedded stop-word list.
func NewNormalizer(stem bool) *Normalizer {
	return &Normalizer{stem: stem, stopWords: stopWordSet()}
}

// Stemming reports whether the stemming step is enabled.
func (n *Normalizer) Stemming() bool {
	return n.stem
}

// Normalize runs the full cleanup pipeline. Malformed or empty input
// yields an empty sequence, never an error.
func (n *Normalizer) Normalize(raw string) domain.TokenSequence {
	if raw == "" {
		return nil
	}

	text := strings.ToLower(raw)
	text = urlExpr.ReplaceAllString(text, " ")
	text = emailExpr.ReplaceAllString(text, " ")
	text = htmlTagExpr.ReplaceAllString(text, " ")
	text = mentionExpr.ReplaceAllString(text, " ")
	text = nonCharset.ReplaceAllString(text, "")

	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}

	tokens := make(domain.TokenSequence, 0, len(fields))
	for _, tok := range fields {
		if len(tok) < minTokenLength {
			continue
		}
		if digitsOnly.MatchString(tok) {
			continue
		}
		if _, stop := n.stopWords[tok]; stop {
			continue
		}
		if n.stem {
			tok = porterstemmer.StemString(tok)
			if len(tok) < minTokenLength {
				continue
			}
		}
		tokens = append(tokens, tok)
	}

	if len(tokens) == 0 {
		return nil
	}
	return tokens
}
