package session

import "errors"

// Error taxonomy. Every failure an operation can return wraps exactly one of
// these, so callers and the HTTP layer can classify with errors.Is.
var (
	// ErrInvalidInput rejects malformed or empty request fields before any
	// state mutation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound means the session id is unknown or the session expired.
	ErrNotFound = errors.New("session not found")

	// ErrInvalidState means the operation is not valid for the session's
	// current status, e.g. answering when no question is pending.
	ErrInvalidState = errors.New("invalid session state")

	// ErrConflict means a concurrent update won the race; re-read and retry.
	ErrConflict = errors.New("session modified concurrently")

	// ErrOracleUnavailable means a collaborator call failed or timed out.
	// No state was changed; the identical request can be retried.
	ErrOracleUnavailable = errors.New("oracle unavailable")
)
