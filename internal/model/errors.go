package model

import "errors"

// Error kinds recognized by the pipeline. Each is a sentinel checked with
// errors.Is; callers wrap them with pkg/utils.Wrap to add context without
// losing the kind.
var (
	// ErrTransient marks an upstream fetch failure or a block that does not
	// yet exist. HTTPAdapter retries it with backoff; once that retry window
	// is exhausted it is returned to the caller, and the sync driver stops
	// on it rather than retrying further.
	ErrTransient = errors.New("transient upstream error")

	// ErrMalformed marks unparsable JSON or an unexpected operation shape.
	// Logged and skipped at the parser; never aborts a block.
	ErrMalformed = errors.New("malformed operation payload")

	// ErrImpersonation marks a custom_json acting-account mismatch. Dropped
	// silently by the projector.
	ErrImpersonation = errors.New("impersonation: acting account mismatch")

	// ErrIntegrity marks a referenced post id missing during a dirty-set or
	// delete refresh. Fatal to the current transaction; the driver stops.
	ErrIntegrity = errors.New("integrity: referenced post not found")

	// ErrForkDetected marks block.previous != last_hash during live tail.
	// Fatal in this design; the driver exits.
	ErrForkDetected = errors.New("fork detected: block.previous does not match last applied hash")
)
