// Package documents manages the document records themselves: draft creation
// on upload, listing and retrieval, finalization, soft deletion, and the
// candidate pool for duplicate detection.
package documents

import (
	"time"

	"github.com/google/uuid"

	"github.com/proprio/docintake/internal/catalog"
	"github.com/proprio/docintake/pkg/pagination"
)

// Status is the document lifecycle state.
type Status string

// Document statuses. Drafts are uploads that have not been finalized yet;
// deleted documents are kept as tombstones for audit.
const (
	StatusDraft   Status = "draft"
	StatusActive  Status = "active"
	StatusDeleted Status = "deleted"
)

// Document is one stored document record. ExtractedText is kept out of API
// responses; it exists for classification and duplicate comparison only.
type Document struct {
	ID               uuid.UUID       `json:"id"`
	OwnerID          uuid.UUID       `json:"owner_id"`
	SessionID        *uuid.UUID      `json:"session_id,omitempty"`
	Filename         string          `json:"filename"`
	Mime             string          `json:"mime"`
	SizeBytes        int64           `json:"size_bytes"`
	PageCount        int             `json:"page_count,omitempty"`
	Checksum         string          `json:"checksum"`
	StorageKey       string          `json:"storage_key"`
	Status           Status          `json:"status"`
	Context          catalog.Context `json:"context"`
	DocumentTypeCode *string         `json:"document_type_code,omitempty"`
	Confidence       *float64        `json:"confidence,omitempty"`
	AutoAssigned     bool            `json:"auto_assigned"`
	ExtractedText    string          `json:"-"`
	UploadedAt       time.Time       `json:"uploaded_at"`
	FinalizedAt      *time.Time      `json:"finalized_at,omitempty"`
	DeletedAt        *time.Time      `json:"deleted_at,omitempty"`
}

// CreateCommand carries the fields for a new draft record. The blob is
// already in staging when the record is created.
type CreateCommand struct {
	OwnerID       uuid.UUID
	SessionID     *uuid.UUID
	Filename      string
	Mime          string
	SizeBytes     int64
	PageCount     int
	Checksum      string
	Context       catalog.Context
	ExtractedText string
}

// FinalizeCommand carries the classification outcome applied when a draft
// becomes active.
type FinalizeCommand struct {
	TypeCode     string
	Confidence   float64
	AutoAssigned bool
	StorageKey   string
}

// ListRequest filters the document listing. Deleted documents are excluded
// unless Status names them explicitly.
type ListRequest struct {
	Page     pagination.PageRequest
	OwnerID  *uuid.UUID
	TypeCode *string
	Context  *catalog.Context
	Status   *Status
}

// StagingKey returns the blob key of a draft upload.
func StagingKey(id uuid.UUID) string {
	return "staging/" + id.String()
}

// PermanentKey returns the blob key of a finalized document.
func PermanentKey(id uuid.UUID) string {
	return "documents/" + id.String()
}
