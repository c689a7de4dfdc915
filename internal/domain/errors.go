package domain

import "errors"

// Matching errors. All of them are recovered at the turn boundary and end up
// as the fallback reply; they are exposed so callers can tell them apart.
var (
	// ErrModelNotReady indicates vectorization was attempted before a model was fitted.
	ErrModelNotReady = errors.New("model not ready")

	// ErrNoCandidates indicates the catalog holds no example phrases.
	ErrNoCandidates = errors.New("no candidates")

	// ErrOrphanedMatch indicates a matched phrase has no owning intent.
	ErrOrphanedMatch = errors.New("matched phrase has no owning intent")

	// ErrBelowThreshold indicates the best score fell under the configured minimum confidence.
	ErrBelowThreshold = errors.New("best match below confidence threshold")

	// ErrContextDerivation indicates the intent's context function failed.
	ErrContextDerivation = errors.New("context derivation failed")
)

// Catalog errors.
var (
	// ErrInvalidCatalog indicates a catalog entry violates its invariants.
	ErrInvalidCatalog = errors.New("invalid catalog")

	// ErrUnknownDeriver indicates a catalog references an unregistered context deriver.
	ErrUnknownDeriver = errors.New("unknown context deriver")
)
