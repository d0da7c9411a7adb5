package documents

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/proprio/docintake/internal/catalog"
	"github.com/proprio/docintake/pkg/query"
	"github.com/proprio/docintake/pkg/repository"
)

func documentProjection() *query.ProjectionMap {
	return query.NewProjectionMap("public", "documents", "d").
		Project("id", "id").
		Project("owner_id", "ownerId").
		Project("session_id", "sessionId").
		Project("filename", "filename").
		Project("mime", "mime").
		Project("size_bytes", "sizeBytes").
		Project("page_count", "pageCount").
		Project("checksum", "checksum").
		Project("storage_key", "storageKey").
		Project("status", "status").
		Project("context", "context").
		Project("document_type_code", "documentTypeCode").
		Project("confidence", "confidence").
		Project("auto_assigned", "autoAssigned").
		Project("extracted_text", "extractedText").
		Project("uploaded_at", "uploadedAt").
		Project("finalized_at", "finalizedAt").
		Project("deleted_at", "deletedAt")
}

func scanDocument(s repository.Scanner) (Document, error) {
	var (
		doc         Document
		sessionID   sql.Null[uuid.UUID]
		status      string
		docContext  string
		typeCode    sql.NullString
		confidence  sql.NullFloat64
		text        sql.NullString
		finalizedAt sql.NullTime
		deletedAt   sql.NullTime
	)

	err := s.Scan(
		&doc.ID,
		&doc.OwnerID,
		&sessionID,
		&doc.Filename,
		&doc.Mime,
		&doc.SizeBytes,
		&doc.PageCount,
		&doc.Checksum,
		&doc.StorageKey,
		&status,
		&docContext,
		&typeCode,
		&confidence,
		&doc.AutoAssigned,
		&text,
		&doc.UploadedAt,
		&finalizedAt,
		&deletedAt,
	)
	if err != nil {
		return Document{}, err
	}

	doc.Status = Status(status)
	doc.Context = catalog.Context(docContext)
	if sessionID.Valid {
		doc.SessionID = &sessionID.V
	}
	if typeCode.Valid {
		doc.DocumentTypeCode = &typeCode.String
	}
	if confidence.Valid {
		doc.Confidence = &confidence.Float64
	}
	if text.Valid {
		doc.ExtractedText = text.String
	}
	if finalizedAt.Valid {
		doc.FinalizedAt = &finalizedAt.Time
	}
	if deletedAt.Valid {
		doc.DeletedAt = &deletedAt.Time
	}

	return doc, nil
}
