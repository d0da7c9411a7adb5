// Package extraction turns uploaded file bytes into plain text for
// classification and duplicate detection. Local PDF text extraction is tried
// first; scanned files fall through to the remote OCR service.
package extraction

import (
	"context"
	"errors"
	"log/slog"
)

// ErrUnsupported reports a content type no extractor can handle.
var ErrUnsupported = errors.New("unsupported content type for extraction")

// Extraction is the result of one extraction attempt.
type Extraction struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Extractor produces text from raw file bytes. Implementations return
// ErrUnsupported for content types they cannot handle.
type Extractor interface {
	Extract(ctx context.Context, data []byte, contentType string) (Extraction, error)
}

// Chain tries each extractor in order and returns the first usable result.
// An empty-text success falls through to the next extractor; extraction
// failure is not fatal to intake, so a fully failed chain returns an empty
// extraction and the last error.
type Chain struct {
	extractors []Extractor
	logger     *slog.Logger
}

// NewChain creates a Chain over the given extractors.
func NewChain(logger *slog.Logger, extractors ...Extractor) *Chain {
	return &Chain{
		extractors: extractors,
		logger:     logger.With("system", "extraction"),
	}
}

// Extract runs the chain.
func (c *Chain) Extract(ctx context.Context, data []byte, contentType string) (Extraction, error) {
	var lastErr error

	for _, ex := range c.extractors {
		result, err := ex.Extract(ctx, data, contentType)
		if err != nil {
			if !errors.Is(err, ErrUnsupported) {
				c.logger.Warn("extractor failed", "content_type", contentType, "error", err)
				lastErr = err
			}
			continue
		}
		if result.Text != "" {
			return result, nil
		}
	}

	return Extraction{}, lastErr
}
