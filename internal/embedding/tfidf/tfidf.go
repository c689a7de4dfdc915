package tfidf

import (
	"math"
	"sort"

	"github.com/rs/zerolog"

	"intentbot/internal/domain"
	"intentbot/internal/preprocess"
)

// Model is a TF-IDF vocabulary fitted over a phrase corpus. It is never
// mutated after Fit returns; refitting produces a new Model.
type Model struct {
	tokenizer  *preprocess.Tokenizer
	vocabulary map[string]int
	terms      []string
	idf        []float64
	documents  int
}

// Fit builds the vocabulary and IDF weights from phrases. Each phrase counts
// once per term regardless of repetition. An empty corpus yields an empty
// vocabulary.
func Fit(phrases []string, tokenizer *preprocess.Tokenizer) *Model {
	if tokenizer == nil {
		tokenizer = preprocess.NewTokenizer(nil, 0)
	}
	df := make(map[string]int)
	for _, text := range phrases {
		seen := make(map[string]struct{})
		for _, tok := range tokenizer.Tokenize(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	// Sorted so vector slots are stable across refits of the same corpus
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	m := &Model{
		tokenizer:  tokenizer,
		vocabulary: make(map[string]int, len(terms)),
		terms:      terms,
		idf:        make([]float64, len(terms)),
		documents:  len(phrases),
	}
	n := float64(len(phrases))
	for i, term := range terms {
		m.vocabulary[term] = i
		// Smoothed IDF, always > 0
		m.idf[i] = math.Log((n+1)/(float64(df[term])+1)) + 1.0
	}
	return m
}

// Dimension returns the vocabulary size.
func (m *Model) Dimension() int { return len(m.terms) }

// Documents returns the number of phrases the model was fitted on.
func (m *Model) Documents() int { return m.documents }

// Terms returns the vocabulary in vector slot order.
func (m *Model) Terms() []string {
	out := make([]string, len(m.terms))
	copy(out, m.terms)
	return out
}

// IDF returns the weight of term and whether it is in the vocabulary.
func (m *Model) IDF(term string) (float64, bool) {
	idx, ok := m.vocabulary[term]
	if !ok {
		return 0, false
	}
	return m.idf[idx], true
}

// Vectorize returns raw term frequency times IDF for every vocabulary term.
// Terms outside the vocabulary are ignored.
func (m *Model) Vectorize(text string) []float64 {
	vec := make([]float64, len(m.terms))
	for _, tok := range m.tokenizer.Tokenize(text) {
		if idx, ok := m.vocabulary[tok]; ok {
			vec[idx]++
		}
	}
	for i, count := range vec {
		if count != 0 {
			vec[i] = count * m.idf[i]
		}
	}
	return vec
}

// Embedder builds TF-IDF term spaces for the assistant. It keeps no model of
// its own; publishing the result is up to the caller.
type Embedder struct {
	tokenizer *preprocess.Tokenizer
	logger    zerolog.Logger
}

// NewEmbedder creates an embedder tokenizing with tokenizer.
func NewEmbedder(tokenizer *preprocess.Tokenizer, logger zerolog.Logger) *Embedder {
	if tokenizer == nil {
		tokenizer = preprocess.NewTokenizer(nil, 0)
	}
	return &Embedder{tokenizer: tokenizer, logger: logger}
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "tfidf" }

// Build fits a new model over phrases. Each call returns an independent model.
func (e *Embedder) Build(phrases []string) domain.TermSpace {
	m := Fit(phrases, e.tokenizer)
	e.logger.Debug().
		Int("phrases", len(phrases)).
		Int("vocabulary", m.Dimension()).
		Msg("tfidf model fitted")
	return m
}
