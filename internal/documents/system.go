package documents

import (
	"context"

	"github.com/google/uuid"

	"github.com/proprio/docintake/internal/dedup"
	"github.com/proprio/docintake/pkg/pagination"
)

// System manages document record persistence.
type System interface {
	// Create inserts a new draft record for a staged upload.
	Create(ctx context.Context, cmd CreateCommand) (*Document, error)

	// Find returns a document by ID, including tombstones.
	Find(ctx context.Context, id uuid.UUID) (*Document, error)

	// List returns a filtered page of documents. Deleted documents are
	// excluded unless the filter requests them.
	List(ctx context.Context, req ListRequest) (*pagination.PageResult[Document], error)

	// FindDuplicateCandidates returns the active documents of an owner for
	// duplicate comparison. Drafts never appear in the pool.
	FindDuplicateCandidates(ctx context.Context, ownerID uuid.UUID) ([]dedup.Candidate, error)

	// MarkActive promotes a draft to active with its classification outcome.
	// Returns ErrAlreadyFinalized when the document is already active.
	MarkActive(ctx context.Context, id uuid.UUID, cmd FinalizeCommand) (*Document, error)

	// SoftDelete tombstones an active document and removes its links.
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// Replace makes the new document stand in for the existing one: links
	// move to the new document and the existing one is tombstoned.
	Replace(ctx context.Context, newID, existingID uuid.UUID) error

	// DeleteDraft hard-deletes a draft record. Used by upload cancellation
	// and session reclamation.
	DeleteDraft(ctx context.Context, id uuid.UUID) error

	// FindDraftsBySession returns the draft records of an upload session.
	FindDraftsBySession(ctx context.Context, sessionID uuid.UUID) ([]Document, error)
}
