package similarity

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intentbot/internal/domain"
	"intentbot/internal/embedding/tfidf"
)

// fixedSpace returns canned vectors so ties can be constructed exactly.
type fixedSpace map[string][]float64

func (f fixedSpace) Dimension() int { return 2 }

func (f fixedSpace) Vectorize(text string) []float64 {
	if v, ok := f[text]; ok {
		return v
	}
	return []float64{0, 0}
}

func TestCosine(t *testing.T) {
	v := []float64{1.5, 0, 2.25, 3}
	assert.InDelta(t, 1.0, Cosine(v, v), 1e-12)
	assert.Equal(t, 0.0, Cosine(v, make([]float64, len(v))))
	assert.Equal(t, 0.0, Cosine(make([]float64, 2), make([]float64, 2)))
	assert.Equal(t, 0.0, Cosine([]float64{1}, []float64{1, 0}))
	assert.InDelta(t, -1.0, Cosine([]float64{1, 2}, []float64{-1, -2}), 1e-12)
	assert.InDelta(t, 0.0, Cosine([]float64{1, 0}, []float64{0, 1}), 1e-12)
}

func TestFindBestMatch_EmptyCatalog(t *testing.T) {
	s := NewScorer(Options{}, zerolog.Nop())
	_, ok := s.FindBestMatch(tfidf.Fit(nil, nil), "hello", nil)
	assert.False(t, ok)

	_, err := s.Match(tfidf.Fit(nil, nil), "hello", nil)
	assert.ErrorIs(t, err, domain.ErrNoCandidates)
}

func TestFindBestMatch_SharedTerm(t *testing.T) {
	phrases := []string{"hello", "hi", "bye"}
	space := tfidf.Fit(phrases, nil)
	s := NewScorer(Options{}, zerolog.Nop())

	got, ok := s.FindBestMatch(space, "hello there", phrases)
	require.True(t, ok)
	assert.Equal(t, 0, got.Index)
	assert.Equal(t, "hello", got.Phrase)
	assert.Greater(t, got.Score, 0.0)
}

func TestFindBestMatch_ExactPhraseScoresMaximum(t *testing.T) {
	phrases := []string{"what time is it", "tell me a joke", "open the app store"}
	space := tfidf.Fit(phrases, nil)
	s := NewScorer(Options{}, zerolog.Nop())

	got, ok := s.FindBestMatch(space, "tell me a joke", phrases)
	require.True(t, ok)
	assert.Equal(t, 1, got.Index)
	assert.InDelta(t, 1.0, got.Score, 1e-12)
}

func TestFindBestMatch_UnknownTermsStillMatch(t *testing.T) {
	phrases := []string{"hello", "bye"}
	s := NewScorer(Options{}, zerolog.Nop())
	got, ok := s.FindBestMatch(tfidf.Fit(phrases, nil), "zzz qqq", phrases)
	require.True(t, ok)
	assert.Equal(t, 0, got.Index)
	assert.Equal(t, 0.0, got.Score)
}

func TestFindBestMatch_TieBreak(t *testing.T) {
	space := fixedSpace{
		"q": {1, 1},
		"a": {1, 0},
		"b": {0, 1},
		"c": {1, 0},
	}
	phrases := []string{"a", "b", "c"}

	first := NewScorer(Options{}, zerolog.Nop())
	for i := 0; i < 5; i++ {
		got, ok := first.FindBestMatch(space, "q", phrases)
		require.True(t, ok)
		assert.Equal(t, 0, got.Index)
	}

	last := NewScorer(Options{TieBreak: TieBreakLast}, zerolog.Nop())
	got, ok := last.FindBestMatch(space, "q", phrases)
	require.True(t, ok)
	assert.Equal(t, 2, got.Index)
}

func TestMatch_MinConfidence(t *testing.T) {
	phrases := []string{"hello world", "bye"}
	space := tfidf.Fit(phrases, nil)

	s := NewScorer(Options{MinConfidence: 0.9}, zerolog.Nop())
	got, err := s.Match(space, "hello", phrases)
	assert.ErrorIs(t, err, domain.ErrBelowThreshold)
	assert.Equal(t, "hello world", got.Phrase)

	got, err = s.Match(space, "hello world", phrases)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Index)
}

func TestNewScorer_Defaults(t *testing.T) {
	s := NewScorer(Options{TieBreak: "random", MinConfidence: -1}, zerolog.Nop())
	assert.Equal(t, TieBreakFirst, s.Options().TieBreak)
	assert.Equal(t, 0.0, s.Options().MinConfidence)
}

func TestRank(t *testing.T) {
	space := fixedSpace{
		"q": {1, 0},
		"a": {0, 1},
		"b": {1, 0},
		"c": {1, 1},
		"d": {1, 0},
	}
	phrases := []string{"a", "b", "c", "d"}

	ranked := NewScorer(Options{}, zerolog.Nop()).Rank(space, "q", phrases, 3)
	require.Len(t, ranked, 3)
	assert.Equal(t, []int{1, 3, 2}, []int{ranked[0].Index, ranked[1].Index, ranked[2].Index})

	ranked = NewScorer(Options{TieBreak: TieBreakLast}, zerolog.Nop()).Rank(space, "q", phrases, 0)
	require.Len(t, ranked, 4)
	assert.Equal(t, 3, ranked[0].Index)
	assert.Equal(t, 1, ranked[1].Index)
	assert.Equal(t, 0, ranked[3].Index)
}
