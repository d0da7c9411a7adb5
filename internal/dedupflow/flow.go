// Package dedupflow implements the upload duplicate resolution state
// machine. It turns a duplicate classification and a user decision into one
// concrete next step, described as data: the caller executes the returned
// API and UI descriptors. The orchestrator itself performs no I/O, which
// keeps every transition testable without storage.
package dedupflow

import (
	"errors"
	"fmt"

	"github.com/proprio/docintake/internal/dedup"
)

// Flow identifies the next step in the upload pipeline.
type Flow string

// Flows.
const (
	FlowUploadReview       Flow = "upload_review"
	FlowDuplicateDetection Flow = "duplicate_detection"
	FlowCancelUpload       Flow = "cancel_upload"
	FlowReplaceDocument    Flow = "replace_document"
	FlowLinkExisting       Flow = "link_existing"
)

// Decision is the user's resolution for a detected duplicate.
// Pending means no decision has been made yet.
type Decision string

// Decisions.
const (
	DecisionPending      Decision = "pending"
	DecisionLinkExisting Decision = "link_existing"
	DecisionReplace      Decision = "replace"
	DecisionKeepBoth     Decision = "keep_both"
	DecisionCancel       Decision = "cancel"
)

// Orchestration errors.
var (
	ErrMissingExisting = errors.New("decision requires an existing file reference")
	ErrUnknownDecision = errors.New("unknown duplicate decision")
)

// FileMeta describes a file involved in duplicate resolution.
type FileMeta struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
	Checksum  string `json:"checksum,omitempty"`
}

// Request is the orchestrator input: the detector's classification, the
// user's decision so far, and the files involved.
type Request struct {
	DuplicateStatus dedup.Classification `json:"duplicate_status"`
	Decision        Decision             `json:"decision"`
	TempFile        FileMeta             `json:"temp_file"`
	ExistingFile    *FileMeta            `json:"existing_file,omitempty"`
}

// Flags carry the side-effect switches the caller must honor.
type Flags struct {
	ReplaceExisting bool `json:"replace_existing"`
	DeleteTempFile  bool `json:"delete_temp_file"`
	KeepBoth        bool `json:"keep_both"`
}

// UI describes the screen the caller should present next.
type UI struct {
	Kind     string    `json:"kind"`
	Temp     FileMeta  `json:"temp"`
	Existing *FileMeta `json:"existing,omitempty"`
}

// API describes the persistence call the caller must execute.
type API struct {
	Action     string `json:"action"`
	ExistingID string `json:"existing_id,omitempty"`
}

// Output is the orchestrator's full answer: the flow to enter, the echoed
// inputs, and the side effects to perform.
type Output struct {
	Flow            Flow                 `json:"flow"`
	DuplicateStatus dedup.Classification `json:"duplicate_status"`
	Decision        Decision             `json:"decision"`
	Flags           Flags                `json:"flags"`
	UI              *UI                  `json:"ui,omitempty"`
	API             *API                 `json:"api,omitempty"`
}

// Orchestrate computes the next flow step. It is pure: same request, same
// output, no side effects.
func Orchestrate(req Request) (Output, error) {
	out := Output{
		DuplicateStatus: req.DuplicateStatus,
		Decision:        req.Decision,
	}

	switch req.Decision {
	case DecisionPending, "":
		out.Decision = DecisionPending
		if req.DuplicateStatus == dedup.NotDuplicate || req.DuplicateStatus == "" {
			out.Flow = FlowUploadReview
			return out, nil
		}
		out.Flow = FlowDuplicateDetection
		out.UI = &UI{
			Kind:     "duplicate_dialog",
			Temp:     req.TempFile,
			Existing: req.ExistingFile,
		}
		return out, nil

	case DecisionCancel:
		out.Flow = FlowCancelUpload
		out.Flags.DeleteTempFile = true
		return out, nil

	case DecisionReplace:
		if req.ExistingFile == nil || req.ExistingFile.ID == "" {
			return Output{}, fmt.Errorf("replace: %w", ErrMissingExisting)
		}
		out.Flow = FlowReplaceDocument
		out.Flags.ReplaceExisting = true
		out.API = &API{Action: "replace", ExistingID: req.ExistingFile.ID}
		return out, nil

	case DecisionKeepBoth:
		out.Flow = FlowUploadReview
		out.Flags.KeepBoth = true
		out.API = &API{Action: "finalize"}
		return out, nil

	case DecisionLinkExisting:
		if req.ExistingFile == nil || req.ExistingFile.ID == "" {
			return Output{}, fmt.Errorf("link existing: %w", ErrMissingExisting)
		}
		out.Flow = FlowLinkExisting
		out.Flags.DeleteTempFile = true
		out.API = &API{Action: "link_existing", ExistingID: req.ExistingFile.ID}
		return out, nil
	}

	return Output{}, fmt.Errorf("%w: %q", ErrUnknownDecision, req.Decision)
}
