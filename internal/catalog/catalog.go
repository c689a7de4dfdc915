package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"intentbot/internal/domain"
)

// Catalog is an ordered, immutable set of intents with their example phrases
// flattened in catalog order.
type Catalog struct {
	entries []domain.IntentEntry
	phrases []string
	owners  map[string]int
}

// New validates entries and indexes their phrases. When a phrase string appears
// under several intents the first-listed intent owns it.
func New(entries []domain.IntentEntry) (*Catalog, error) {
	c := &Catalog{
		entries: make([]domain.IntentEntry, len(entries)),
		owners:  make(map[string]int),
	}
	for i, e := range entries {
		if strings.TrimSpace(e.Name) == "" {
			e.Name = "intent-" + strconv.Itoa(i+1)
		}
		if len(e.ExamplePhrases) == 0 {
			return nil, fmt.Errorf("intent %q has no example phrases: %w", e.Name, domain.ErrInvalidCatalog)
		}
		if len(e.ReplyTemplates) == 0 {
			return nil, fmt.Errorf("intent %q has no replies: %w", e.Name, domain.ErrInvalidCatalog)
		}
		e.ExamplePhrases = append([]string(nil), e.ExamplePhrases...)
		e.ReplyTemplates = append([]string(nil), e.ReplyTemplates...)
		c.entries[i] = e
		for _, p := range e.ExamplePhrases {
			c.phrases = append(c.phrases, p)
			if _, taken := c.owners[p]; !taken {
				c.owners[p] = i
			}
		}
	}
	return c, nil
}

// Len returns the number of intents.
func (c *Catalog) Len() int { return len(c.entries) }

// Entries returns the intents in catalog order.
func (c *Catalog) Entries() []domain.IntentEntry {
	return append([]domain.IntentEntry(nil), c.entries...)
}

// Phrases returns every example phrase in catalog order.
func (c *Catalog) Phrases() []string {
	return append([]string(nil), c.phrases...)
}

// Owner returns the intent owning phrase.
func (c *Catalog) Owner(phrase string) (*domain.IntentEntry, bool) {
	i, ok := c.owners[phrase]
	if !ok {
		return nil, false
	}
	e := c.entries[i]
	return &e, true
}
