package extraction

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	ledongthuc "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// pdfTextConfidence is reported for text layers read directly from the PDF.
// Embedded text is exact, unlike OCR output.
const pdfTextConfidence = 1.0

// PDFExtractor reads the embedded text layer of a PDF. Scanned PDFs without
// a text layer extract successfully but empty, which lets the chain fall
// through to OCR.
type PDFExtractor struct{}

// NewPDFExtractor creates a PDFExtractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Extract implements Extractor for application/pdf content.
func (e *PDFExtractor) Extract(_ context.Context, data []byte, contentType string) (Extraction, error) {
	if !IsPDF(contentType) {
		return Extraction{}, ErrUnsupported
	}

	reader, err := ledongthuc.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Extraction{}, fmt.Errorf("open pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return Extraction{}, fmt.Errorf("read pdf text: %w", err)
	}

	var sb strings.Builder
	if _, err := io.Copy(&sb, plain); err != nil {
		return Extraction{}, fmt.Errorf("read pdf text: %w", err)
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return Extraction{}, nil
	}

	return Extraction{Text: text, Confidence: pdfTextConfidence}, nil
}

// IsPDF reports whether the content type denotes a PDF.
func IsPDF(contentType string) bool {
	return contentType == "application/pdf" ||
		strings.HasPrefix(contentType, "application/pdf;")
}

// PageCount returns the number of pages of a PDF, or 0 for other content.
func PageCount(data []byte, contentType string) (int, error) {
	if !IsPDF(contentType) {
		return 0, nil
	}

	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return 0, fmt.Errorf("count pdf pages: %w", err)
	}
	return count, nil
}
