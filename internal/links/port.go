package links

import (
	"context"

	"github.com/google/uuid"
)

// Port is the persistence surface the Manager drives. The postgres
// implementation lives in repository.go; tests substitute an in-memory fake.
type Port interface {
	// FindLink reports whether the exact link row already exists.
	FindLink(ctx context.Context, documentID uuid.UUID, linkedType Type, linkedID uuid.UUID) (bool, error)

	// FindByDocument returns every link row for a document.
	FindByDocument(ctx context.Context, documentID uuid.UUID) ([]Link, error)

	// Insert persists one link row.
	Insert(ctx context.Context, link Link) error
}
