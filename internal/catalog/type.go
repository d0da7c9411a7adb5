// Package catalog implements the classification rule catalog: document type
// definitions, reusable signal detectors, and the versioned snapshot store
// the classifier reads from. Definitions are persisted in PostgreSQL,
// compiled into immutable snapshots, and published atomically so readers
// never observe a partially updated configuration.
package catalog

import (
	"time"

	"github.com/google/uuid"
)

// FallbackTypeCode is the type assigned when no rule produces a positive score.
const FallbackTypeCode = "MISC"

// DocumentType defines one semantic document type and the rules that vote for it.
type DocumentType struct {
	ID                  uuid.UUID        `json:"id"`
	Code                string           `json:"code"`
	Label               string           `json:"label"`
	IsSystem            bool             `json:"is_system"`
	IsActive            bool             `json:"is_active"`
	Order               int              `json:"order"`
	IsSensitive         bool             `json:"is_sensitive"`
	AutoAssignThreshold float64          `json:"auto_assign_threshold"`
	DefaultContexts     []Context        `json:"default_contexts"`
	Rules               []SuggestionRule `json:"rules"`
	Keywords            []Keyword        `json:"keywords"`
	Signals             []SignalRef      `json:"signals"`
	ExtractionRules     []ExtractionRule `json:"extraction_rules"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// SuggestionRule is a weighted filename-pattern vote for a document type.
// A rule matches only when the filename pattern matches and every configured
// constraint (contexts, MIME allow-list, OCR keywords) is satisfied.
// Lock rules short-circuit scoring: a match makes the type dominant.
type SuggestionRule struct {
	Pattern          string    `json:"pattern"`
	Contexts         []Context `json:"contexts,omitempty"`
	MimeIn           []string  `json:"mime_in,omitempty"`
	OCRKeywords      []string  `json:"ocr_keywords,omitempty"`
	MatchAllKeywords bool      `json:"match_all_keywords,omitempty"`
	Weight           float64   `json:"weight"`
	Lock             bool      `json:"lock,omitempty"`
}

// Keyword is a weighted term matched against extracted text.
// When Context is set the keyword only counts in that upload context.
type Keyword struct {
	Term    string   `json:"term"`
	Weight  float64  `json:"weight"`
	Context *Context `json:"context,omitempty"`
}

// SignalRef binds a globally defined signal to a document type with a weight.
type SignalRef struct {
	Code    string  `json:"code"`
	Weight  float64 `json:"weight"`
	Enabled bool    `json:"enabled"`
}

// ExtractionRule captures a named field from extracted text via regex.
// Rules with lower Priority values run first; the first capture wins.
type ExtractionRule struct {
	Field       string `json:"field"`
	Pattern     string `json:"pattern"`
	PostProcess string `json:"post_process,omitempty"`
	Priority    int    `json:"priority"`
}

// Signal is a named, reusable regex detector (e.g. "contains an IBAN")
// shared across document types. Protected signals cannot be modified or
// deleted through the API.
type Signal struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Pattern   string    `json:"pattern"`
	Flags     string    `json:"flags"`
	Protected bool      `json:"protected"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateTypeCommand carries the data needed to define a new document type.
type CreateTypeCommand struct {
	Code                string           `json:"code"`
	Label               string           `json:"label"`
	Order               int              `json:"order"`
	IsSensitive         bool             `json:"is_sensitive"`
	AutoAssignThreshold float64          `json:"auto_assign_threshold"`
	DefaultContexts     []Context        `json:"default_contexts"`
	Rules               []SuggestionRule `json:"rules"`
	Keywords            []Keyword        `json:"keywords"`
	Signals             []SignalRef      `json:"signals"`
	ExtractionRules     []ExtractionRule `json:"extraction_rules"`
}

// UpdateTypeCommand carries mutable document type fields. The code itself is
// immutable once any document references the type.
type UpdateTypeCommand struct {
	Label               string           `json:"label"`
	IsActive            bool             `json:"is_active"`
	Order               int              `json:"order"`
	IsSensitive         bool             `json:"is_sensitive"`
	AutoAssignThreshold float64          `json:"auto_assign_threshold"`
	DefaultContexts     []Context        `json:"default_contexts"`
	Rules               []SuggestionRule `json:"rules"`
	Keywords            []Keyword        `json:"keywords"`
	Signals             []SignalRef      `json:"signals"`
	ExtractionRules     []ExtractionRule `json:"extraction_rules"`
}

// SignalCommand carries the data needed to create or update a signal.
type SignalCommand struct {
	Code    string `json:"code"`
	Pattern string `json:"pattern"`
	Flags   string `json:"flags"`
}
