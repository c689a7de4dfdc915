// Package synonyms provides synonym sources that can be injected into the tokenizer.
package synonyms

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"intentbot/internal/domain"
)

// Thesaurus maps a lowercase word to its alternates, in preference order.
type Thesaurus map[string][]string

// New builds a thesaurus from raw entries, lowercasing keys. Entries for the
// same key after lowercasing are concatenated.
func New(entries map[string][]string) Thesaurus {
	t := make(Thesaurus, len(entries))
	for word, alts := range entries {
		key := strings.ToLower(strings.TrimSpace(word))
		if key == "" {
			continue
		}
		t[key] = append(t[key], alts...)
	}
	return t
}

// Load reads a YAML document of the form `word: [alt1, alt2]`.
func Load(path string) (Thesaurus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse thesaurus %s: %w", path, err)
	}
	return New(raw), nil
}

// Lookup returns the alternates for token.
func (t Thesaurus) Lookup(token string) []string {
	return t[token]
}

// Func adapts the thesaurus to the tokenizer's lookup capability. An empty
// thesaurus yields nil so synonym expansion is skipped entirely.
func (t Thesaurus) Func() domain.SynonymLookup {
	if len(t) == 0 {
		return nil
	}
	return t.Lookup
}
