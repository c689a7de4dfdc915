package similarity

import (
	"math"
	"sort"

	"github.com/rs/zerolog"

	"intentbot/internal/domain"
)

// TieBreak selects among candidates with identical top scores.
type TieBreak string

const (
	// TieBreakFirst keeps the earliest candidate in catalog order.
	TieBreakFirst TieBreak = "first"
	// TieBreakLast keeps the latest candidate in catalog order.
	TieBreakLast TieBreak = "last"
)

// Options configures a Scorer.
type Options struct {
	TieBreak TieBreak
	// MinConfidence rejects best matches scoring below it. Zero disables the cutoff.
	MinConfidence float64
}

// Scorer selects the catalog phrase closest to a query by cosine similarity.
type Scorer struct {
	opts   Options
	logger zerolog.Logger
}

// NewScorer creates a scorer. Unknown tie-break policies fall back to TieBreakFirst.
func NewScorer(opts Options, logger zerolog.Logger) *Scorer {
	if opts.TieBreak != TieBreakLast {
		opts.TieBreak = TieBreakFirst
	}
	if opts.MinConfidence < 0 {
		opts.MinConfidence = 0
	}
	return &Scorer{opts: opts, logger: logger}
}

// Options returns the effective options.
func (s *Scorer) Options() Options { return s.opts }

// Cosine returns the cosine similarity of a and b. It is 0 when either vector
// has zero norm or the dimensions differ.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	// rounding can push |sim| slightly past 1
	return math.Max(-1, math.Min(1, sim))
}

// FindBestMatch vectorizes query once and every phrase on each call, returning
// the highest scoring phrase. It reports false only when phrases is empty; a
// best score of 0 is still a match.
func (s *Scorer) FindBestMatch(space domain.TermSpace, query string, phrases []string) (domain.MatchResult, bool) {
	if len(phrases) == 0 {
		return domain.MatchResult{}, false
	}
	qv := space.Vectorize(query)
	best := domain.MatchResult{Index: -1, Score: math.Inf(-1)}
	for i, phrase := range phrases {
		score := Cosine(qv, space.Vectorize(phrase))
		if score > best.Score || (s.opts.TieBreak == TieBreakLast && score == best.Score) {
			best = domain.MatchResult{Index: i, Phrase: phrase, Score: score}
		}
	}
	return best, true
}

// Match is FindBestMatch with the configured cutoff applied. It returns
// ErrNoCandidates for an empty phrase list and ErrBelowThreshold, together with
// the rejected result, when the best score is under MinConfidence.
func (s *Scorer) Match(space domain.TermSpace, query string, phrases []string) (domain.MatchResult, error) {
	best, ok := s.FindBestMatch(space, query, phrases)
	if !ok {
		return domain.MatchResult{}, domain.ErrNoCandidates
	}
	s.logger.Debug().
		Str("phrase", best.Phrase).
		Int("index", best.Index).
		Float64("score", best.Score).
		Msg("best match")
	if s.opts.MinConfidence > 0 && best.Score < s.opts.MinConfidence {
		return best, domain.ErrBelowThreshold
	}
	return best, nil
}

// Rank scores every phrase and returns up to topK results, best first. Equal
// scores are ordered by the tie-break policy. A non-positive topK returns all.
func (s *Scorer) Rank(space domain.TermSpace, query string, phrases []string, topK int) []domain.MatchResult {
	qv := space.Vectorize(query)
	results := make([]domain.MatchResult, len(phrases))
	for i, phrase := range phrases {
		results[i] = domain.MatchResult{Index: i, Phrase: phrase, Score: Cosine(qv, space.Vectorize(phrase))}
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if s.opts.TieBreak == TieBreakLast {
			return results[i].Index > results[j].Index
		}
		return false
	})
	if topK > 0 && topK < len(results) {
		results = results[:topK]
	}
	return results
}
