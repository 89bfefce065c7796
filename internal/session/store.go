package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store is keyed persistence for session snapshots. Sessions are
// independent; there are no cross-session relationships.
//
// Update is optimistic: it succeeds only if the stored Version still equals
// the snapshot's Version (i.e. nobody else committed since the caller read
// it), and bumps the version on success. A losing writer gets ErrConflict
// and must re-read before retrying.
type Store interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id uuid.UUID) (*Session, error)
	Update(ctx context.Context, s *Session) error
	// Delete is idempotent; deleting a missing id is not an error.
	Delete(ctx context.Context, id uuid.UUID) error
	// SweepExpired removes sessions whose last activity is older than the
	// given duration and reports how many were removed.
	SweepExpired(ctx context.Context, olderThan time.Duration) (int, error)
}
