package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/proprio/docintake/internal/dedup"
	"github.com/proprio/docintake/pkg/pagination"
	"github.com/proprio/docintake/pkg/query"
	"github.com/proprio/docintake/pkg/repository"
)

type repo struct {
	db     *sql.DB
	pages  pagination.Config
	logger *slog.Logger
}

// New creates the postgres-backed document system.
func New(db *sql.DB, pages pagination.Config, logger *slog.Logger) System {
	return &repo{
		db:     db,
		pages:  pages,
		logger: logger.With("system", "documents"),
	}
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Document, error) {
	doc := Document{
		ID:            uuid.New(),
		OwnerID:       cmd.OwnerID,
		SessionID:     cmd.SessionID,
		Filename:      cmd.Filename,
		Mime:          cmd.Mime,
		SizeBytes:     cmd.SizeBytes,
		PageCount:     cmd.PageCount,
		Checksum:      cmd.Checksum,
		Status:        StatusDraft,
		Context:       cmd.Context,
		ExtractedText: cmd.ExtractedText,
		UploadedAt:    time.Now().UTC(),
	}
	doc.StorageKey = StagingKey(doc.ID)

	err := repository.ExecExpectOne(ctx, r.db, `
		INSERT INTO documents (
			id, owner_id, session_id, filename, mime, size_bytes, page_count,
			checksum, storage_key, status, context, auto_assigned,
			extracted_text, uploaded_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, false, $12, $13)`,
		doc.ID, doc.OwnerID, doc.SessionID, doc.Filename, doc.Mime,
		doc.SizeBytes, doc.PageCount, doc.Checksum, doc.StorageKey,
		string(doc.Status), string(doc.Context), doc.ExtractedText, doc.UploadedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create draft document: %w", err)
	}

	r.logger.Info("draft document created", "id", doc.ID, "filename", doc.Filename)
	return &doc, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Document, error) {
	sqlStr, args := query.NewBuilder(documentProjection()).BuildSingle("id", id)

	doc, err := repository.QueryOne(ctx, r.db, sqlStr, args, scanDocument)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find document %s: %w", id, err)
	}
	return &doc, nil
}

func (r *repo) List(ctx context.Context, req ListRequest) (*pagination.PageResult[Document], error) {
	req.Page.Normalize(r.pages)

	builder := query.NewBuilder(
		documentProjection(),
		query.SortField{Field: "uploadedAt", Descending: true},
	)

	if req.Status != nil {
		builder.WhereEquals("status", string(*req.Status))
	} else {
		builder.WhereIn("status", []any{string(StatusDraft), string(StatusActive)})
	}
	if req.OwnerID != nil {
		builder.WhereEquals("ownerId", *req.OwnerID)
	}
	if req.TypeCode != nil {
		builder.WhereEquals("documentTypeCode", *req.TypeCode)
	}
	if req.Context != nil {
		builder.WhereEquals("context", string(*req.Context))
	}
	builder.
		WhereSearch(req.Page.Search, "filename").
		OrderByFields(req.Page.Sort)

	countSQL, countArgs := builder.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	pageSQL, pageArgs := builder.BuildPage(req.Page.Page, req.Page.PageSize)
	docs, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanDocument)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	result := pagination.NewPageResult(docs, total, req.Page.Page, req.Page.PageSize)
	return &result, nil
}

// FindDuplicateCandidates returns active documents only: drafts and uploads
// still tied to an open session are not yet real documents and must never
// mark a new upload as duplicate.
func (r *repo) FindDuplicateCandidates(ctx context.Context, ownerID uuid.UUID) ([]dedup.Candidate, error) {
	return repository.QueryMany(ctx, r.db, `
		SELECT d.id, d.filename, d.checksum, d.status, d.extracted_text,
		       d.document_type_code, d.size_bytes, d.uploaded_at
		FROM public.documents d
		WHERE d.owner_id = $1 AND d.status = $2 AND d.session_id IS NULL
		ORDER BY d.uploaded_at DESC`,
		[]any{ownerID, string(StatusActive)}, scanCandidate,
	)
}

func (r *repo) MarkActive(ctx context.Context, id uuid.UUID, cmd FinalizeCommand) (*Document, error) {
	now := time.Now().UTC()

	err := repository.ExecExpectOne(ctx, r.db, `
		UPDATE documents
		SET status = $1, document_type_code = $2, confidence = $3,
		    auto_assigned = $4, storage_key = $5, session_id = NULL,
		    finalized_at = $6
		WHERE id = $7 AND status = $8`,
		string(StatusActive), cmd.TypeCode, cmd.Confidence, cmd.AutoAssigned,
		cmd.StorageKey, now, id, string(StatusDraft),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.describeMissingDraft(ctx, id)
		}
		return nil, fmt.Errorf("mark document active: %w", err)
	}

	r.logger.Info(
		"document finalized",
		"id", id,
		"type_code", cmd.TypeCode,
		"auto_assigned", cmd.AutoAssigned,
	)
	return r.Find(ctx, id)
}

func (r *repo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		err := repository.ExecExpectOne(ctx, tx, `
			UPDATE documents SET status = $1, deleted_at = $2
			WHERE id = $3 AND status = $4`,
			string(StatusDeleted), time.Now().UTC(), id, string(StatusActive),
		)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return struct{}{}, r.describeMissingActive(ctx, id)
			}
			return struct{}{}, err
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM document_links WHERE document_id = $1`, id,
		); err != nil {
			return struct{}{}, fmt.Errorf("remove links: %w", err)
		}

		return struct{}{}, nil
	})
	if err != nil {
		return err
	}

	r.logger.Info("document deleted", "id", id)
	return nil
}

// Replace moves the existing document's links onto the new document and
// tombstones the existing one, atomically. Link rows the new document
// already carries are dropped rather than duplicated.
func (r *repo) Replace(ctx context.Context, newID, existingID uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if _, err := tx.ExecContext(ctx, `
			UPDATE document_links SET document_id = $1
			WHERE document_id = $2
			  AND NOT EXISTS (
				SELECT 1 FROM document_links existing
				WHERE existing.document_id = $1
				  AND existing.linked_type = document_links.linked_type
				  AND existing.linked_id = document_links.linked_id
			  )`,
			newID, existingID,
		); err != nil {
			return struct{}{}, fmt.Errorf("migrate links: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM document_links WHERE document_id = $1`, existingID,
		); err != nil {
			return struct{}{}, fmt.Errorf("drop residual links: %w", err)
		}

		err := repository.ExecExpectOne(ctx, tx, `
			UPDATE documents SET status = $1, deleted_at = $2
			WHERE id = $3 AND status = $4`,
			string(StatusDeleted), time.Now().UTC(), existingID, string(StatusActive),
		)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return struct{}{}, r.describeMissingActive(ctx, existingID)
			}
			return struct{}{}, err
		}

		return struct{}{}, nil
	})
	if err != nil {
		return fmt.Errorf("replace document %s: %w", existingID, err)
	}

	r.logger.Info("document replaced", "existing_id", existingID, "new_id", newID)
	return nil
}

func (r *repo) DeleteDraft(ctx context.Context, id uuid.UUID) error {
	err := repository.ExecExpectOne(ctx, r.db, `
		DELETE FROM documents WHERE id = $1 AND status = $2`,
		id, string(StatusDraft),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r.describeMissingDraft(ctx, id)
		}
		return fmt.Errorf("delete draft %s: %w", id, err)
	}
	return nil
}

func (r *repo) FindDraftsBySession(ctx context.Context, sessionID uuid.UUID) ([]Document, error) {
	builder := query.NewBuilder(
		documentProjection(),
		query.SortField{Field: "uploadedAt"},
	)
	builder.
		WhereEquals("sessionId", sessionID).
		WhereEquals("status", string(StatusDraft))

	sqlStr, args := builder.Build()
	return repository.QueryMany(ctx, r.db, sqlStr, args, scanDocument)
}

// describeMissingDraft distinguishes a missing row from a draft-state
// conflict after a guarded write matched nothing.
func (r *repo) describeMissingDraft(ctx context.Context, id uuid.UUID) error {
	doc, err := r.Find(ctx, id)
	if err != nil {
		return err
	}
	if doc.Status == StatusActive {
		return ErrAlreadyFinalized
	}
	return ErrNotDraft
}

func (r *repo) describeMissingActive(ctx context.Context, id uuid.UUID) error {
	doc, err := r.Find(ctx, id)
	if err != nil {
		return err
	}
	if doc.Status == StatusDeleted {
		return ErrAlreadyDeleted
	}
	return ErrNotActive
}

func scanCandidate(s repository.Scanner) (dedup.Candidate, error) {
	var (
		c        dedup.Candidate
		text     sql.NullString
		typeCode sql.NullString
	)
	err := s.Scan(&c.ID, &c.Filename, &c.Checksum, &c.Status, &text, &typeCode, &c.SizeBytes, &c.UploadedAt)
	if err != nil {
		return dedup.Candidate{}, err
	}
	if text.Valid {
		c.ExtractedText = text.String
	}
	if typeCode.Valid {
		c.DocumentTypeCode = &typeCode.String
	}
	return c, nil
}
