// Package dedup implements duplicate detection for uploaded documents:
// exact matching by content checksum and probable matching by text
// similarity against the active documents in the same scope.
package dedup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// SimilarityThreshold is the minimum token-set Jaccard similarity for a
// probable duplicate. Chosen to tolerate OCR noise on re-scans of the same
// document while keeping distinct monthly receipts below the line.
const SimilarityThreshold = 0.82

// Classification is the outcome of a duplicate check.
type Classification string

// Duplicate classifications.
const (
	ExactDuplicate    Classification = "exact_duplicate"
	ProbableDuplicate Classification = "probable_duplicate"
	NotDuplicate      Classification = "not_duplicate"
)

// StatusActive marks a candidate as a finalized document. Only active
// candidates participate in duplicate comparison.
const StatusActive = "active"

// Candidate is an existing document eligible for duplicate comparison.
// The candidate pool never contains drafts or documents attached to an open
// upload session; those are not yet real documents and must not trigger
// false positives.
type Candidate struct {
	ID               uuid.UUID `json:"id"`
	Filename         string    `json:"filename"`
	Checksum         string    `json:"checksum"`
	Status           string    `json:"status,omitempty"`
	ExtractedText    string    `json:"-"`
	DocumentTypeCode *string   `json:"document_type_code,omitempty"`
	SizeBytes        int64     `json:"size_bytes"`
	UploadedAt       time.Time `json:"uploaded_at"`
}

// eligible reports whether the candidate may be compared against a new
// upload. The source contract already excludes drafts and tombstones; this
// guard holds even if a source stops filtering.
func (c *Candidate) eligible() bool {
	return c.Status == "" || c.Status == StatusActive
}

// Match reports the duplicate classification and, when a duplicate was
// found, the best-matching existing document for UI display.
type Match struct {
	Classification Classification `json:"classification"`
	Document       *Candidate     `json:"document,omitempty"`
	Similarity     float64        `json:"similarity,omitempty"`
}

// CandidateSource supplies the comparison pool for a scope.
type CandidateSource interface {
	FindDuplicateCandidates(ctx context.Context, ownerID uuid.UUID) ([]Candidate, error)
}

// Detector runs duplicate checks against a candidate source.
type Detector struct {
	source    CandidateSource
	threshold float64
	logger    *slog.Logger
}

// NewDetector creates a Detector with the default similarity threshold.
func NewDetector(source CandidateSource, logger *slog.Logger) *Detector {
	return &Detector{
		source:    source,
		threshold: SimilarityThreshold,
		logger:    logger.With("system", "dedup"),
	}
}

// Detect classifies the upload identified by checksum and extracted text
// against the scope's candidate pool. Checksum equality wins over text
// similarity; similarity is never computed against empty OCR text.
func (d *Detector) Detect(ctx context.Context, checksum, text string, ownerID uuid.UUID) (*Match, error) {
	candidates, err := d.source.FindDuplicateCandidates(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("load duplicate candidates: %w", err)
	}

	for i := range candidates {
		if !candidates[i].eligible() {
			continue
		}
		if candidates[i].Checksum == checksum {
			d.logger.Info(
				"exact duplicate detected",
				"owner_id", ownerID,
				"existing_id", candidates[i].ID,
			)
			return &Match{
				Classification: ExactDuplicate,
				Document:       &candidates[i],
				Similarity:     1,
			}, nil
		}
	}

	if text == "" {
		return &Match{Classification: NotDuplicate}, nil
	}

	var (
		best      *Candidate
		bestScore float64
	)
	for i := range candidates {
		if !candidates[i].eligible() || candidates[i].ExtractedText == "" {
			continue
		}
		score := Similarity(text, candidates[i].ExtractedText)
		if score > bestScore {
			best = &candidates[i]
			bestScore = score
		}
	}

	if best != nil && bestScore >= d.threshold {
		d.logger.Info(
			"probable duplicate detected",
			"owner_id", ownerID,
			"existing_id", best.ID,
			"similarity", bestScore,
		)
		return &Match{
			Classification: ProbableDuplicate,
			Document:       best,
			Similarity:     bestScore,
		}, nil
	}

	return &Match{Classification: NotDuplicate}, nil
}
