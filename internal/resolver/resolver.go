package resolver

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"intentbot/internal/domain"
)

const (
	// DefaultWord fills the context slot when nothing was derived.
	DefaultWord = "that"
	// DefaultFallback is returned when no intent can answer.
	DefaultFallback = "Sorry, I didn't quite get that. Could you rephrase?"
)

// Options configures a Resolver.
type Options struct {
	DefaultWord     string
	FallbackMessage string
	// Rand picks reply templates. Nil seeds a generator from the clock.
	Rand *rand.Rand
}

// Resolver turns a matched intent and the raw input into reply text.
type Resolver struct {
	defaultWord string
	fallback    string
	logger      zerolog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a resolver, filling unset options with defaults.
func New(opts Options, logger zerolog.Logger) *Resolver {
	if strings.TrimSpace(opts.DefaultWord) == "" {
		opts.DefaultWord = DefaultWord
	}
	if strings.TrimSpace(opts.FallbackMessage) == "" {
		opts.FallbackMessage = DefaultFallback
	}
	if opts.Rand == nil {
		seed := uint64(time.Now().UnixNano())
		opts.Rand = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return &Resolver{
		defaultWord: opts.DefaultWord,
		fallback:    opts.FallbackMessage,
		logger:      logger,
		rng:         opts.Rand,
	}
}

// NewSeeded returns a generator suitable for Options.Rand with reproducible output.
func NewSeeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Fallback returns the fixed reply used when no intent can answer.
func (r *Resolver) Fallback() string { return r.fallback }

// FallbackReply wraps the fallback message with the reason it was used.
func (r *Resolver) FallbackReply(reason error) domain.Reply {
	return domain.Reply{Text: r.fallback, Fallback: true, Reason: reason}
}

// Resolve picks a template uniformly at random, derives the context from input
// and fills the slot. A failing context function falls back to the default word
// and is reported in Reply.Reason. The only error returned is ctx's, meaning the
// turn was abandoned and the reply must be discarded.
func (r *Resolver) Resolve(ctx context.Context, input string, entry *domain.IntentEntry) (domain.Reply, error) {
	if entry == nil {
		return r.FallbackReply(domain.ErrOrphanedMatch), nil
	}
	if len(entry.ReplyTemplates) == 0 {
		return r.FallbackReply(fmt.Errorf("intent %q has no replies: %w", entry.Name, domain.ErrInvalidCatalog)), nil
	}
	tmpl := ParseTemplate(entry.ReplyTemplates[r.pick(len(entry.ReplyTemplates))])

	value, err := r.derive(ctx, input, entry.DeriveContext)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return domain.Reply{}, ctxErr
	}
	reply := domain.Reply{Intent: entry.Name}
	if err != nil {
		r.logger.Warn().Err(err).Str("intent", entry.Name).Msg("context derivation failed")
		reply.Reason = fmt.Errorf("%w: %v", domain.ErrContextDerivation, err)
		value = ""
	}
	if strings.TrimSpace(value) == "" {
		value = r.defaultWord
	}
	reply.Text = tmpl.Fill(value)
	return reply, nil
}

func (r *Resolver) pick(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.IntN(n)
}

type derived struct {
	value string
	err   error
}

// derive runs fn off the caller's goroutine so an abandoned turn returns as
// soon as ctx is done, even if fn ignores ctx.
func (r *Resolver) derive(ctx context.Context, input string, fn domain.ContextFunc) (string, error) {
	if fn == nil {
		return "", nil
	}
	ch := make(chan derived, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				ch <- derived{err: fmt.Errorf("panic: %v", p)}
			}
		}()
		v, err := fn(ctx, input)
		ch <- derived{value: v, err: err}
	}()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case d := <-ch:
		return d.value, d.err
	}
}
