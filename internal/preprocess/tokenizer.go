package preprocess

import (
	"regexp"
	"strings"

	"intentbot/internal/domain"
)

// DefaultSynonymLimit is the number of alternates emitted per token when no limit is configured.
const DefaultSynonymLimit = 3

// nonWordPattern matches everything that is neither a word character nor
// whitespace. \s alone is ASCII-only, so \v and U+0085 are listed explicitly
// to keep every rune strings.Fields splits on.
var nonWordPattern = regexp.MustCompile(`[^\p{L}\p{N}\p{M}_\s\p{Z}\v\x{85}]+`)

// Tokenizer normalizes raw text into tokens, optionally expanding each token
// with a bounded number of synonyms.
type Tokenizer struct {
	synonyms domain.SynonymLookup
	limit    int
}

// NewTokenizer creates a tokenizer. A nil lookup disables synonym expansion;
// a non-positive limit falls back to DefaultSynonymLimit.
func NewTokenizer(synonyms domain.SynonymLookup, limit int) *Tokenizer {
	if limit <= 0 {
		limit = DefaultSynonymLimit
	}
	return &Tokenizer{synonyms: synonyms, limit: limit}
}

// Tokenize lowercases text, strips punctuation, splits on whitespace and
// emits each token followed by at most limit synonyms. Empty tokens are dropped.
func (t *Tokenizer) Tokenize(text string) []string {
	words := Words(text)
	if t.synonyms == nil || len(words) == 0 {
		return words
	}
	out := make([]string, 0, len(words))
	for _, w := range words {
		out = append(out, w)
		added := 0
		for _, alt := range t.synonyms(w) {
			if added == t.limit {
				break
			}
			alt = strings.ToLower(strings.TrimSpace(alt))
			if alt == "" || alt == w {
				continue
			}
			out = append(out, alt)
			added++
		}
	}
	return out
}

// Words returns the normalized tokens of text without synonym expansion.
func Words(text string) []string {
	lower := strings.ToLower(text)
	cleaned := nonWordPattern.ReplaceAllString(lower, "")
	fields := strings.Fields(cleaned)
	if len(fields) == 0 {
		return nil
	}
	return fields
}
