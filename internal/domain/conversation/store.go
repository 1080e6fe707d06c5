package conversation

import (
	"context"

	"github.com/shopbot/backend/internal/domain/shared"
)

// ErrNoSession is returned when a user has no live session
var ErrNoSession = shared.NewDomainError("NO_SESSION", "No active session")

// Store holds at most one live session per user identity. Put replaces
// any existing session unconditionally.
type Store interface {
	// Get returns the live session for a user, or ErrNoSession
	Get(ctx context.Context, userID int64) (Session, error)

	// Put stores the session for a user, replacing any previous one
	Put(ctx context.Context, userID int64, session Session) error

	// Clear removes the session for a user. Clearing a user without a
	// session is a no-op.
	Clear(ctx context.Context, userID int64) error
}
