package domain

import (
	"context"
	"time"
)

// ContextFunc derives the text substituted into a reply template from the raw
// user input. An empty result means no context was derived. Implementations may
// block (network, disk) and should honour ctx.
type ContextFunc func(ctx context.Context, input string) (string, error)

// IntentEntry pairs the canonical utterances of one intent with its reply
// templates and context derivation. Entries are immutable once loaded.
type IntentEntry struct {
	Name           string
	ExamplePhrases []string
	ReplyTemplates []string
	DeriveContext  ContextFunc
}

// Sender identifies the author of a conversation turn.
type Sender string

const (
	SenderUser Sender = "USER"
	SenderAI   Sender = "AI"
)

// ConversationTurn is a single message in a conversation.
type ConversationTurn struct {
	Text   string    `json:"text"`
	Sender Sender    `json:"sender"`
	At     time.Time `json:"at"`
}

// MatchResult identifies the catalog example phrase closest to a query.
type MatchResult struct {
	Index  int
	Phrase string
	Score  float64
}

// Candidate is a ranked phrase annotated with the intent that owns it.
type Candidate struct {
	MatchResult
	Intent string
}

// Reply is the outcome of one assistant turn. Reason carries the recovered
// failure when Fallback is set, or a non-fatal context derivation error.
type Reply struct {
	Text     string
	Intent   string
	Match    *MatchResult
	Fallback bool
	Reason   error
}

// SynonymLookup returns alternates for a lowercase token, or nil if none are known.
type SynonymLookup func(token string) []string

// TermSpace is a fitted, immutable vocabulary that maps text to term vectors.
// Vectors from different spaces are not comparable.
type TermSpace interface {
	Dimension() int
	Vectorize(text string) []float64
}

// SpaceBuilder fits a new TermSpace over a phrase corpus.
type SpaceBuilder interface {
	Name() string
	Build(phrases []string) TermSpace
}
