package links

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Manager creates and reads document links. All link writes in the service
// go through a single Manager instance, so per-row check-then-insert is
// race-free without table locks.
type Manager struct {
	port   Port
	logger *slog.Logger
}

// NewManager creates a Manager over the given port.
func NewManager(port Port, logger *slog.Logger) *Manager {
	return &Manager{
		port:   port,
		logger: logger.With("system", "links"),
	}
}

// CreateLinks links a document to every entity in the target, plus the
// global link. Existing identical rows are skipped, so the call is
// idempotent; it returns the number of rows actually created. A target that
// contradicts the document's existing property or lease attachment is
// rejected before any row is written.
func (m *Manager) CreateLinks(ctx context.Context, documentID uuid.UUID, target Target) (int, error) {
	existing, err := m.port.FindByDocument(ctx, documentID)
	if err != nil {
		return 0, fmt.Errorf("load existing links: %w", err)
	}

	if err := ensureCompatibleContext(existing, target); err != nil {
		return 0, err
	}

	created := 0
	for _, link := range target.candidates(documentID) {
		found, err := m.port.FindLink(ctx, documentID, link.LinkedType, link.LinkedID)
		if err != nil {
			return created, fmt.Errorf("check link %s: %w", link.LinkedType, err)
		}
		if found {
			continue
		}

		link.ID = uuid.New()
		link.CreatedAt = time.Now().UTC()
		if err := m.port.Insert(ctx, link); err != nil {
			return created, fmt.Errorf("insert link %s: %w", link.LinkedType, err)
		}
		created++
	}

	if created > 0 {
		m.logger.Info("document links created", "document_id", documentID, "created", created)
	}

	return created, nil
}

// ListForDocument returns the link rows of a document.
func (m *Manager) ListForDocument(ctx context.Context, documentID uuid.UUID) ([]Link, error) {
	return m.port.FindByDocument(ctx, documentID)
}

// ensureCompatibleContext rejects a target that would attach the document to
// a second property or lease. Re-linking to the same entity is allowed; that
// is the idempotent repeat case.
func ensureCompatibleContext(existing []Link, target Target) error {
	for _, link := range existing {
		switch link.LinkedType {
		case TypeProperty:
			if target.PropertyID != nil && *target.PropertyID != link.LinkedID {
				return fmt.Errorf("%w: linked to %s", ErrContextConflictProperty, link.LinkedID)
			}
		case TypeLease:
			if target.LeaseID != nil && *target.LeaseID != link.LinkedID {
				return fmt.Errorf("%w: linked to %s", ErrContextConflictLease, link.LinkedID)
			}
		}
	}
	return nil
}
