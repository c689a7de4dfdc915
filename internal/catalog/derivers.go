package catalog

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"intentbot/internal/domain"
	"intentbot/internal/preprocess"
)

// DeriverFactory builds a context function from the argument that follows the
// colon in a deriver spec such as "static:apps".
type DeriverFactory func(arg string) (domain.ContextFunc, error)

// Registry resolves deriver specs named in catalog files.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]DeriverFactory
	now       func() time.Time
}

// NewRegistry creates a registry holding the built-in derivers.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]DeriverFactory), now: time.Now}
	r.Register("none", func(string) (domain.ContextFunc, error) { return nil, nil })
	r.Register("input", func(string) (domain.ContextFunc, error) { return deriveInput, nil })
	r.Register("last_word", func(string) (domain.ContextFunc, error) { return deriveLastWord, nil })
	r.Register("keyword", func(string) (domain.ContextFunc, error) { return deriveKeyword, nil })
	r.Register("static", func(arg string) (domain.ContextFunc, error) {
		return func(context.Context, string) (string, error) { return arg, nil }, nil
	})
	r.Register("time", r.timeDeriver)
	r.Register("match", matchDeriver)
	return r
}

// SetClock replaces the time source used by the "time" deriver.
func (r *Registry) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

// Register adds or replaces a deriver kind.
func (r *Registry) Register(kind string, factory DeriverFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[strings.ToLower(kind)] = factory
}

// Kinds lists the registered deriver kinds.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for k := range r.factories {
		out = append(out, k)
	}
	return out
}

// Resolve turns a spec of the form "kind" or "kind:arg" into a context function.
// An empty spec means no context. A nil function with a nil error is valid.
func (r *Registry) Resolve(spec string) (domain.ContextFunc, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil
	}
	kind, arg, _ := strings.Cut(spec, ":")
	r.mu.RLock()
	factory, ok := r.factories[strings.ToLower(strings.TrimSpace(kind))]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%q: %w", kind, domain.ErrUnknownDeriver)
	}
	return factory(arg)
}

func deriveInput(_ context.Context, input string) (string, error) {
	return strings.TrimSpace(input), nil
}

func deriveLastWord(_ context.Context, input string) (string, error) {
	words := preprocess.Words(input)
	if len(words) == 0 {
		return "", nil
	}
	return words[len(words)-1], nil
}

// deriveKeyword returns the most frequent non-stopword token, preferring the
// earliest on ties.
func deriveKeyword(_ context.Context, input string) (string, error) {
	freq := make(map[string]int)
	var order []string
	for _, w := range preprocess.Words(input) {
		if preprocess.IsStopword(w) {
			continue
		}
		if freq[w] == 0 {
			order = append(order, w)
		}
		freq[w]++
	}
	best := ""
	for _, w := range order {
		if freq[w] > freq[best] {
			best = w
		}
	}
	return best, nil
}

func (r *Registry) timeDeriver(layout string) (domain.ContextFunc, error) {
	if layout == "" {
		layout = "15:04"
	}
	return func(context.Context, string) (string, error) {
		r.mu.RLock()
		now := r.now
		r.mu.RUnlock()
		return now().Format(layout), nil
	}, nil
}

func matchDeriver(expr string) (domain.ContextFunc, error) {
	if expr == "" {
		return nil, fmt.Errorf("match deriver needs a pattern: %w", domain.ErrInvalidCatalog)
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("match deriver %q: %w", expr, err)
	}
	return func(_ context.Context, input string) (string, error) {
		m := re.FindStringSubmatch(input)
		switch {
		case m == nil:
			return "", nil
		case len(m) > 1:
			return strings.TrimSpace(m[1]), nil
		default:
			return strings.TrimSpace(m[0]), nil
		}
	}, nil
}
