package sessions

import (
	"context"

	"github.com/google/uuid"
)

// System manages upload session persistence.
type System interface {
	// Open creates a new session for the owner with the configured TTL.
	Open(ctx context.Context, ownerID uuid.UUID) (*Session, error)

	// Find returns a session by ID.
	Find(ctx context.Context, id uuid.UUID) (*Session, error)

	// EnsureUsable returns the session if drafts may still be added or
	// finalized in it. Returns ErrExpired or ErrClosed otherwise.
	EnsureUsable(ctx context.Context, id uuid.UUID) (*Session, error)

	// Close marks an open session explicitly completed. Closing an already
	// closed session is a no-op.
	Close(ctx context.Context, id uuid.UUID) error

	// FindExpired returns open sessions whose TTL has passed.
	FindExpired(ctx context.Context) ([]Session, error)

	// MarkReclaimed records that the sweeper has reclaimed the session.
	MarkReclaimed(ctx context.Context, id uuid.UUID) error
}
