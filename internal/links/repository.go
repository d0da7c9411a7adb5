package links

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/proprio/docintake/pkg/repository"
)

const linkColumns = "id, document_id, linked_type, linked_id, created_at"

// postgresPort persists links in the document_links table.
type postgresPort struct {
	db *sql.DB
}

// NewPort creates the postgres-backed link persistence port.
func NewPort(db *sql.DB) Port {
	return &postgresPort{db: db}
}

func (p *postgresPort) FindLink(ctx context.Context, documentID uuid.UUID, linkedType Type, linkedID uuid.UUID) (bool, error) {
	return repository.Exists(ctx, p.db, `
		SELECT EXISTS (
			SELECT 1 FROM document_links
			WHERE document_id = $1 AND linked_type = $2 AND linked_id = $3
		)`,
		documentID, string(linkedType), linkedID,
	)
}

func (p *postgresPort) FindByDocument(ctx context.Context, documentID uuid.UUID) ([]Link, error) {
	return repository.QueryMany(ctx, p.db, `
		SELECT `+linkColumns+`
		FROM document_links
		WHERE document_id = $1
		ORDER BY created_at, linked_type`,
		[]any{documentID}, scanLink,
	)
}

func (p *postgresPort) Insert(ctx context.Context, link Link) error {
	_, err := repository.ExecAffected(ctx, p.db, `
		INSERT INTO document_links (id, document_id, linked_type, linked_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (document_id, linked_type, linked_id) DO NOTHING`,
		link.ID, link.DocumentID, string(link.LinkedType), link.LinkedID, link.CreatedAt,
	)
	return err
}

func scanLink(s repository.Scanner) (Link, error) {
	var (
		link       Link
		linkedType string
	)
	err := s.Scan(&link.ID, &link.DocumentID, &linkedType, &link.LinkedID, &link.CreatedAt)
	if err != nil {
		return Link{}, err
	}
	link.LinkedType = Type(linkedType)
	return link, nil
}
