// Package intake orchestrates the upload pipeline: staging an upload as a
// draft, classification, duplicate detection, duplicate resolution, and the
// final draft-to-active transition with link creation.
package intake

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/proprio/docintake/internal/catalog"
	"github.com/proprio/docintake/internal/classifier"
	"github.com/proprio/docintake/internal/dedup"
	"github.com/proprio/docintake/internal/dedupflow"
	"github.com/proprio/docintake/internal/documents"
	"github.com/proprio/docintake/internal/extraction"
	"github.com/proprio/docintake/internal/links"
	"github.com/proprio/docintake/internal/metrics"
	"github.com/proprio/docintake/internal/sessions"
	"github.com/proprio/docintake/pkg/storage"
)

// System orchestrates the intake pipeline across the domain systems.
type System struct {
	catalog   catalog.System
	detector  *dedup.Detector
	docs      documents.System
	links     *links.Manager
	sessions  sessions.System
	blobs     storage.System
	extractor extraction.Extractor
	metrics   *metrics.Metrics
	locks     *keyedLocks
	logger    *slog.Logger
}

// New creates the intake system.
func New(
	cat catalog.System,
	detector *dedup.Detector,
	docs documents.System,
	linkManager *links.Manager,
	sess sessions.System,
	blobs storage.System,
	extractor extraction.Extractor,
	m *metrics.Metrics,
	logger *slog.Logger,
) *System {
	return &System{
		catalog:   cat,
		detector:  detector,
		docs:      docs,
		links:     linkManager,
		sessions:  sess,
		blobs:     blobs,
		extractor: extractor,
		metrics:   m,
		locks:     newKeyedLocks(),
		logger:    logger.With("system", "intake"),
	}
}

// UploadCommand carries one uploaded file and its intake scope.
type UploadCommand struct {
	OwnerID   uuid.UUID
	SessionID *uuid.UUID
	Context   catalog.Context
	Filename  string
	Mime      string
	Checksum  string
	Data      []byte
}

// UploadResult is the draft record plus the previews the client needs to
// drive the resolution flow.
type UploadResult struct {
	Document       *documents.Document `json:"document"`
	Classification classifier.Result   `json:"classification"`
	Dedup          *dedup.Match        `json:"dedup"`
	Flow           dedupflow.Output    `json:"flow"`
}

// Upload stages the file, creates the draft record, and runs classification
// and duplicate detection previews. Extraction failure degrades to empty
// text; it never fails the upload.
func (s *System) Upload(ctx context.Context, cmd UploadCommand) (*UploadResult, error) {
	if cmd.SessionID != nil {
		if _, err := s.sessions.EnsureUsable(ctx, *cmd.SessionID); err != nil {
			return nil, err
		}
	}

	pageCount, err := extraction.PageCount(cmd.Data, cmd.Mime)
	if err != nil {
		s.logger.Warn("page count failed", "filename", cmd.Filename, "error", err)
		pageCount = 0
	}

	extracted, err := s.extractor.Extract(ctx, cmd.Data, cmd.Mime)
	if err != nil {
		s.logger.Warn("extraction failed", "filename", cmd.Filename, "error", err)
	}

	doc, err := s.docs.Create(ctx, documents.CreateCommand{
		OwnerID:       cmd.OwnerID,
		SessionID:     cmd.SessionID,
		Filename:      cmd.Filename,
		Mime:          cmd.Mime,
		SizeBytes:     int64(len(cmd.Data)),
		PageCount:     pageCount,
		Checksum:      cmd.Checksum,
		Context:       cmd.Context,
		ExtractedText: extracted.Text,
	})
	if err != nil {
		return nil, err
	}

	if err := s.blobs.Upload(ctx, doc.StorageKey, bytes.NewReader(cmd.Data), cmd.Mime); err != nil {
		if deleteErr := s.docs.DeleteDraft(ctx, doc.ID); deleteErr != nil {
			s.logger.Error("orphaned draft after failed upload", "id", doc.ID, "error", deleteErr)
		}
		return nil, fmt.Errorf("stage upload: %w", err)
	}

	result := &UploadResult{
		Document:       doc,
		Classification: s.Classify(classifier.Input{
			Filename: doc.Filename,
			Mime:     doc.Mime,
			Context:  doc.Context,
			Text:     doc.ExtractedText,
		}),
	}

	match, err := s.detector.Detect(ctx, doc.Checksum, doc.ExtractedText, doc.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("duplicate check: %w", err)
	}
	s.metrics.DedupChecks.WithLabelValues(string(match.Classification)).Inc()
	result.Dedup = match

	flow, err := dedupflow.Orchestrate(dedupflow.Request{
		DuplicateStatus: match.Classification,
		Decision:        dedupflow.DecisionPending,
		TempFile:        tempMeta(doc),
		ExistingFile:    existingMeta(match),
	})
	if err != nil {
		return nil, err
	}
	result.Flow = flow

	return result, nil
}

// Classify runs the rule engine against the current catalog snapshot and
// records the outcome.
func (s *System) Classify(in classifier.Input) classifier.Result {
	start := time.Now()
	result := classifier.Classify(in, s.catalog.Current())
	s.metrics.ClassificationDuration.Observe(time.Since(start).Seconds())
	s.metrics.Classifications.WithLabelValues(classificationOutcome(result)).Inc()
	return result
}

// Dedup re-runs duplicate detection for an existing draft.
func (s *System) Dedup(ctx context.Context, documentID uuid.UUID) (*dedup.Match, error) {
	doc, err := s.docs.Find(ctx, documentID)
	if err != nil {
		return nil, err
	}

	match, err := s.detector.Detect(ctx, doc.Checksum, doc.ExtractedText, doc.OwnerID)
	if err != nil {
		return nil, err
	}
	s.metrics.DedupChecks.WithLabelValues(string(match.Classification)).Inc()
	return match, nil
}

// FinalizeCommand promotes a draft. TypeCode overrides the engine's
// assignment when the user picked a type manually; ReplaceExistingID makes
// the finalized document stand in for an existing one.
type FinalizeCommand struct {
	DocumentID        uuid.UUID    `json:"document_id"`
	TypeCode          *string      `json:"type_code,omitempty"`
	Target            links.Target `json:"target"`
	ReplaceExistingID *uuid.UUID   `json:"replace_existing_id,omitempty"`
}

// FinalizeResult reports the finalized record and what was done for it.
type FinalizeResult struct {
	Document       *documents.Document `json:"document"`
	Classification *classifier.Result  `json:"classification,omitempty"`
	LinksCreated   int                 `json:"links_created"`
}

// Finalize performs the draft-to-active transition. Calls for the same
// document serialize on a per-document lock; the loser of a concurrent race
// observes ErrAlreadyFinalized.
func (s *System) Finalize(ctx context.Context, cmd FinalizeCommand) (*FinalizeResult, error) {
	unlock := s.locks.Lock(cmd.DocumentID)
	defer unlock()

	doc, err := s.docs.Find(ctx, cmd.DocumentID)
	if err != nil {
		return nil, err
	}

	switch doc.Status {
	case documents.StatusActive:
		return nil, documents.ErrAlreadyFinalized
	case documents.StatusDeleted:
		return nil, documents.ErrAlreadyDeleted
	}

	if doc.SessionID != nil {
		if _, err := s.sessions.EnsureUsable(ctx, *doc.SessionID); err != nil {
			return nil, err
		}
	}

	finalize := documents.FinalizeCommand{
		StorageKey: documents.PermanentKey(doc.ID),
	}

	var classification *classifier.Result
	if cmd.TypeCode != nil {
		if err := s.ensureKnownType(*cmd.TypeCode); err != nil {
			return nil, err
		}
		finalize.TypeCode = *cmd.TypeCode
		finalize.Confidence = 1
	} else {
		result := s.Classify(classifier.Input{
			Filename: doc.Filename,
			Mime:     doc.Mime,
			Context:  doc.Context,
			Text:     doc.ExtractedText,
		})
		classification = &result
		top := result.Top()
		finalize.TypeCode = top.TypeCode
		finalize.Confidence = top.NormalizedScore
		finalize.AutoAssigned = result.AutoAssigned
	}

	if err := s.blobs.Copy(ctx, doc.StorageKey, finalize.StorageKey); err != nil {
		return nil, fmt.Errorf("promote blob: %w", err)
	}

	finalized, err := s.docs.MarkActive(ctx, doc.ID, finalize)
	if err != nil {
		return nil, err
	}

	if err := s.blobs.Delete(ctx, doc.StorageKey); err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.logger.Warn("staging blob not removed", "key", doc.StorageKey, "error", err)
	}

	if cmd.ReplaceExistingID != nil {
		if err := s.docs.Replace(ctx, doc.ID, *cmd.ReplaceExistingID); err != nil {
			return nil, err
		}
	}

	created, err := s.links.CreateLinks(ctx, doc.ID, cmd.Target)
	if err != nil {
		return nil, err
	}
	s.metrics.LinksCreated.Add(float64(created))

	return &FinalizeResult{
		Document:       finalized,
		Classification: classification,
		LinksCreated:   created,
	}, nil
}

// Cancel discards a draft upload: the staged blob and the draft record are
// removed.
func (s *System) Cancel(ctx context.Context, documentID uuid.UUID) error {
	unlock := s.locks.Lock(documentID)
	defer unlock()

	doc, err := s.docs.Find(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.Status != documents.StatusDraft {
		return documents.ErrNotDraft
	}

	if err := s.blobs.Delete(ctx, doc.StorageKey); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("delete staged blob: %w", err)
	}

	return s.docs.DeleteDraft(ctx, documentID)
}

func (s *System) ensureKnownType(code string) error {
	snap := s.catalog.Current()
	for i := range snap.Types {
		if snap.Types[i].Code == code {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownType, code)
}

func classificationOutcome(result classifier.Result) string {
	switch {
	case result.AutoAssigned:
		return "auto_assigned"
	case result.Top().TypeCode == catalog.FallbackTypeCode:
		return "fallback"
	default:
		return "suggested"
	}
}

func tempMeta(doc *documents.Document) dedupflow.FileMeta {
	return dedupflow.FileMeta{
		ID:        doc.ID.String(),
		Name:      doc.Filename,
		SizeBytes: doc.SizeBytes,
		Checksum:  doc.Checksum,
	}
}

func existingMeta(match *dedup.Match) *dedupflow.FileMeta {
	if match.Document == nil {
		return nil
	}
	return &dedupflow.FileMeta{
		ID:        match.Document.ID.String(),
		Name:      match.Document.Filename,
		SizeBytes: match.Document.SizeBytes,
		Checksum:  match.Document.Checksum,
	}
}
