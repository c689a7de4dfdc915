package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intentbot/internal/domain"
)

func static(v string) domain.ContextFunc {
	return func(context.Context, string) (string, error) { return v, nil }
}

func TestTemplate(t *testing.T) {
	tmpl := ParseTemplate("Glad you liked {{context}}!")
	assert.True(t, tmpl.HasSlot())
	assert.Equal(t, "Glad you liked apps!", tmpl.Fill("apps"))

	plain := ParseTemplate("Hello!")
	assert.False(t, plain.HasSlot())
	assert.Equal(t, "Hello!", plain.Fill("ignored"))
	assert.Equal(t, "Hello!", plain.String())

	twice := ParseTemplate("{{context}} and {{context}}")
	assert.Equal(t, "x and {{context}}", twice.Fill("x"))
}

func TestResolve_SubstitutesContext(t *testing.T) {
	r := New(Options{Rand: NewSeeded(1)}, zerolog.Nop())
	entry := &domain.IntentEntry{
		Name:           "feedback",
		ReplyTemplates: []string{"Glad you liked {{context}}!"},
		DeriveContext:  static("apps"),
	}
	reply, err := r.Resolve(context.Background(), "I like apps", entry)
	require.NoError(t, err)
	assert.Equal(t, "Glad you liked apps!", reply.Text)
	assert.Equal(t, "feedback", reply.Intent)
	assert.False(t, reply.Fallback)
	assert.NoError(t, reply.Reason)
}

func TestResolve_AbsentContextUsesDefaultWord(t *testing.T) {
	entry := &domain.IntentEntry{ReplyTemplates: []string{"Glad you liked {{context}}!"}}

	reply, err := New(Options{Rand: NewSeeded(1)}, zerolog.Nop()).Resolve(context.Background(), "x", entry)
	require.NoError(t, err)
	assert.Equal(t, "Glad you liked that!", reply.Text)

	entry.DeriveContext = static("   ")
	reply, err = New(Options{DefaultWord: "it", Rand: NewSeeded(1)}, zerolog.Nop()).Resolve(context.Background(), "x", entry)
	require.NoError(t, err)
	assert.Equal(t, "Glad you liked it!", reply.Text)
}

func TestResolve_DerivationFailureStillReplies(t *testing.T) {
	r := New(Options{Rand: NewSeeded(1)}, zerolog.Nop())
	entry := &domain.IntentEntry{
		Name:           "weather",
		ReplyTemplates: []string{"Looking up {{context}}."},
		DeriveContext: func(context.Context, string) (string, error) {
			return "", errors.New("service down")
		},
	}
	reply, err := r.Resolve(context.Background(), "weather?", entry)
	require.NoError(t, err)
	assert.Equal(t, "Looking up that.", reply.Text)
	assert.ErrorIs(t, reply.Reason, domain.ErrContextDerivation)
	assert.False(t, reply.Fallback)
}

func TestResolve_DerivationPanicIsRecovered(t *testing.T) {
	r := New(Options{Rand: NewSeeded(1)}, zerolog.Nop())
	entry := &domain.IntentEntry{
		ReplyTemplates: []string{"ok {{context}}"},
		DeriveContext:  func(context.Context, string) (string, error) { panic("boom") },
	}
	reply, err := r.Resolve(context.Background(), "x", entry)
	require.NoError(t, err)
	assert.Equal(t, "ok that", reply.Text)
	assert.ErrorIs(t, reply.Reason, domain.ErrContextDerivation)
}

func TestResolve_CancelledTurnIsDiscarded(t *testing.T) {
	r := New(Options{Rand: NewSeeded(1)}, zerolog.Nop())
	release := make(chan struct{})
	defer close(release)
	entry := &domain.IntentEntry{
		ReplyTemplates: []string{"{{context}}"},
		DeriveContext: func(context.Context, string) (string, error) {
			<-release
			return "late", nil
		},
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := r.Resolve(ctx, "x", entry)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestResolve_MissingEntryFallsBack(t *testing.T) {
	r := New(Options{FallbackMessage: "Come again?"}, zerolog.Nop())
	assert.Equal(t, "Come again?", r.Fallback())

	reply, err := r.Resolve(context.Background(), "x", nil)
	require.NoError(t, err)
	assert.True(t, reply.Fallback)
	assert.Equal(t, "Come again?", reply.Text)
	assert.ErrorIs(t, reply.Reason, domain.ErrOrphanedMatch)

	reply, err = r.Resolve(context.Background(), "x", &domain.IntentEntry{Name: "empty"})
	require.NoError(t, err)
	assert.True(t, reply.Fallback)
	assert.ErrorIs(t, reply.Reason, domain.ErrInvalidCatalog)
}

func TestResolve_SeededSelectionIsReproducible(t *testing.T) {
	entry := &domain.IntentEntry{ReplyTemplates: []string{"a", "b", "c", "d", "e"}}
	run := func() []string {
		r := New(Options{Rand: NewSeeded(42)}, zerolog.Nop())
		var out []string
		for i := 0; i < 20; i++ {
			reply, err := r.Resolve(context.Background(), "x", entry)
			require.NoError(t, err)
			out = append(out, reply.Text)
		}
		return out
	}
	first := run()
	assert.Equal(t, first, run())

	seen := map[string]bool{}
	for _, s := range first {
		seen[s] = true
	}
	assert.Greater(t, len(seen), 1)
}
