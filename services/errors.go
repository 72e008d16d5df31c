package services

import "errors"

// Sentinel error kinds. Handlers translate these to HTTP statuses;
// everything else is treated as a bad request.
var (
	// ErrValidation marks malformed input. Nothing is mutated.
	ErrValidation = errors.New("invalid input")

	// ErrNotFound marks a reference to an absent transaction or config.
	ErrNotFound = errors.New("not found")

	// ErrPrecondition marks an operation rejected by current state,
	// e.g. settling an empty ledger or syncing a busy source.
	ErrPrecondition = errors.New("precondition failed")

	// ErrUpstreamFetch marks a provider failure. The sync path contains
	// it (degrades to an empty result) rather than letting it surface.
	ErrUpstreamFetch = errors.New("upstream fetch failed")
)
