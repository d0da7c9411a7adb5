// Package links implements the polymorphic association between documents
// and the business entities they concern. The Manager is the only writer of
// link rows in the whole service; it enforces the context compatibility
// invariant and keeps link creation idempotent.
package links

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type identifies the kind of entity a link points at.
type Type string

// Link types. Global is the catch-all link that makes every non-deleted
// document discoverable from the unscoped document list.
const (
	TypeGlobal      Type = "global"
	TypeProperty    Type = "property"
	TypeLease       Type = "lease"
	TypeTenant      Type = "tenant"
	TypeTransaction Type = "transaction"
)

// ParseType validates a raw link type name.
func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case TypeGlobal, TypeProperty, TypeLease, TypeTenant, TypeTransaction:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// Link is one association row between a document and an entity.
// (DocumentID, LinkedType, LinkedID) is unique. Global links use the nil
// UUID as LinkedID.
type Link struct {
	ID         uuid.UUID `json:"id"`
	DocumentID uuid.UUID `json:"document_id"`
	LinkedType Type      `json:"linked_type"`
	LinkedID   uuid.UUID `json:"linked_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Target names the entities a document should be linked to on finalize.
// Nil fields are skipped; the global link is always implied.
type Target struct {
	PropertyID    *uuid.UUID `json:"property_id,omitempty"`
	LeaseID       *uuid.UUID `json:"lease_id,omitempty"`
	TenantID      *uuid.UUID `json:"tenant_id,omitempty"`
	TransactionID *uuid.UUID `json:"transaction_id,omitempty"`
}

// candidates expands the target into concrete links for a document,
// the global link first. Exhaustive over link types by construction.
func (t Target) candidates(documentID uuid.UUID) []Link {
	out := []Link{{DocumentID: documentID, LinkedType: TypeGlobal, LinkedID: uuid.Nil}}

	for _, entry := range []struct {
		linkType Type
		id       *uuid.UUID
	}{
		{TypeProperty, t.PropertyID},
		{TypeLease, t.LeaseID},
		{TypeTenant, t.TenantID},
		{TypeTransaction, t.TransactionID},
	} {
		if entry.id != nil {
			out = append(out, Link{
				DocumentID: documentID,
				LinkedType: entry.linkType,
				LinkedID:   *entry.id,
			})
		}
	}

	return out
}
