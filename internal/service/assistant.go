package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"intentbot/internal/catalog"
	"intentbot/internal/domain"
	"intentbot/internal/history"
	"intentbot/internal/resolver"
	"intentbot/internal/similarity"
)

// snapshot binds a catalog to the term space fitted on its phrases. It is
// published as a whole so a turn never mixes vocabularies.
type snapshot struct {
	catalog *catalog.Catalog
	phrases []string
	space   domain.TermSpace
}

// Assistant answers user turns by matching them against the intent catalog.
type Assistant struct {
	builder  domain.SpaceBuilder
	scorer   *similarity.Scorer
	resolver *resolver.Resolver
	store    history.Store
	logger   zerolog.Logger
	now      func() time.Time
	current  atomic.Pointer[snapshot]
}

func NewAssistant(builder domain.SpaceBuilder, scorer *similarity.Scorer, resolver *resolver.Resolver, store history.Store, logger zerolog.Logger) *Assistant {
	return &Assistant{
		builder:  builder,
		scorer:   scorer,
		resolver: resolver,
		store:    store,
		logger:   logger,
		now:      time.Now,
	}
}

// LoadCatalog fits a model on c and swaps it in once fully built.
func (a *Assistant) LoadCatalog(c *catalog.Catalog) error {
	if c == nil {
		return fmt.Errorf("nil catalog: %w", domain.ErrInvalidCatalog)
	}
	phrases := c.Phrases()
	snap := &snapshot{catalog: c, phrases: phrases, space: a.builder.Build(phrases)}
	a.current.Store(snap)
	a.logger.Info().
		Int("intents", c.Len()).
		Int("phrases", len(phrases)).
		Int("vocabulary", snap.space.Dimension()).
		Str("embedder", a.builder.Name()).
		Msg("catalog loaded")
	return nil
}

// Catalog returns the catalog currently serving, or nil before LoadCatalog.
func (a *Assistant) Catalog() *catalog.Catalog {
	if s := a.current.Load(); s != nil {
		return s.catalog
	}
	return nil
}

// Match selects the intent for input. Errors are the domain sentinels; with
// ErrBelowThreshold the rejected result is still returned.
func (a *Assistant) Match(input string) (domain.MatchResult, *domain.IntentEntry, error) {
	snap := a.current.Load()
	if snap == nil {
		return domain.MatchResult{}, nil, domain.ErrModelNotReady
	}
	return a.match(snap, input)
}

func (a *Assistant) match(snap *snapshot, input string) (domain.MatchResult, *domain.IntentEntry, error) {
	m, err := a.scorer.Match(snap.space, input, snap.phrases)
	if err != nil {
		return m, nil, err
	}
	entry, ok := snap.catalog.Owner(m.Phrase)
	if !ok {
		return m, nil, fmt.Errorf("phrase %q: %w", m.Phrase, domain.ErrOrphanedMatch)
	}
	return m, entry, nil
}

// Explain ranks the topK phrases closest to input with their owning intents.
func (a *Assistant) Explain(input string, topK int) ([]domain.Candidate, error) {
	snap := a.current.Load()
	if snap == nil {
		return nil, domain.ErrModelNotReady
	}
	ranked := a.scorer.Rank(snap.space, input, snap.phrases, topK)
	out := make([]domain.Candidate, 0, len(ranked))
	for _, r := range ranked {
		c := domain.Candidate{MatchResult: r}
		if owner, ok := snap.catalog.Owner(r.Phrase); ok {
			c.Intent = owner.Name
		}
		out = append(out, c)
	}
	return out, nil
}

// Reply runs one turn: match synchronously, derive context, assemble the text.
// Matching failures become the fallback reply with Reason set. The returned
// error is non-nil only when ctx ended first; the reply is then discarded and
// no AI turn is recorded.
func (a *Assistant) Reply(ctx context.Context, conversationID, input string) (domain.Reply, error) {
	a.record(ctx, conversationID, domain.SenderUser, input)

	var reply domain.Reply
	snap := a.current.Load()
	if snap == nil {
		a.logger.Warn().Msg("reply requested before catalog was loaded")
		reply = a.resolver.FallbackReply(domain.ErrModelNotReady)
	} else {
		m, entry, err := a.match(snap, input)
		switch {
		case err != nil:
			a.logMatchFailure(err, input)
			reply = a.resolver.FallbackReply(err)
		default:
			reply, err = a.resolver.Resolve(ctx, input, entry)
			if err != nil {
				a.logger.Debug().Err(err).Str("conversation", conversationID).Msg("turn abandoned")
				return domain.Reply{}, err
			}
		}
		if m.Phrase != "" {
			reply.Match = &m
		}
	}

	a.record(ctx, conversationID, domain.SenderAI, reply.Text)
	return reply, nil
}

// History returns the recorded turns of a conversation.
func (a *Assistant) History(ctx context.Context, conversationID string) ([]domain.ConversationTurn, error) {
	if a.store == nil {
		return nil, nil
	}
	return a.store.Load(ctx, conversationID)
}

// WatchCatalog reloads the catalog on every change event until events closes
// or ctx is done. A failed reload, or one that yields no intents, keeps the
// previous catalog serving.
func (a *Assistant) WatchCatalog(ctx context.Context, events <-chan catalog.Event, load func() (*catalog.Catalog, error)) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Operation == catalog.Removed {
				a.logger.Warn().Str("path", ev.Path).Msg("catalog file removed, keeping current catalog")
				continue
			}
			c, err := load()
			if err != nil {
				a.logger.Error().Err(err).Str("path", ev.Path).Msg("catalog reload failed")
				continue
			}
			// An empty file is usually a write in progress.
			if c == nil || c.Len() == 0 {
				a.logger.Error().Str("path", ev.Path).Msg("reloaded catalog has no intents, keeping current catalog")
				continue
			}
			if err := a.LoadCatalog(c); err != nil {
				a.logger.Error().Err(err).Str("path", ev.Path).Msg("catalog reload failed")
			}
		}
	}
}

func (a *Assistant) record(ctx context.Context, conversationID string, sender domain.Sender, text string) {
	if a.store == nil || conversationID == "" {
		return
	}
	turn := domain.ConversationTurn{Text: text, Sender: sender, At: a.now()}
	if err := a.store.Append(ctx, conversationID, turn); err != nil {
		a.logger.Error().Err(err).Str("conversation", conversationID).Msg("failed to record turn")
	}
}

func (a *Assistant) logMatchFailure(err error, input string) {
	ev := a.logger.Debug()
	switch {
	case errors.Is(err, domain.ErrOrphanedMatch):
		ev = a.logger.Error()
	case errors.Is(err, domain.ErrNoCandidates):
		ev = a.logger.Warn()
	}
	ev.Err(err).Int("input_len", len(strings.TrimSpace(input))).Msg("no intent matched")
}
