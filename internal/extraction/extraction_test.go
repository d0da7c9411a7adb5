package extraction

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExtractor struct {
	result Extraction
	err    error
	calls  int
}

func (s *stubExtractor) Extract(_ context.Context, _ []byte, _ string) (Extraction, error) {
	s.calls++
	return s.result, s.err
}

func newTestChain(extractors ...Extractor) *Chain {
	return NewChain(slog.New(slog.DiscardHandler), extractors...)
}

func TestChainReturnsFirstUsableResult(t *testing.T) {
	first := &stubExtractor{result: Extraction{Text: "quittance de loyer", Confidence: 1}}
	second := &stubExtractor{result: Extraction{Text: "should not run"}}
	chain := newTestChain(first, second)

	result, err := chain.Extract(context.Background(), []byte("pdf"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "quittance de loyer", result.Text)
	assert.Equal(t, 1.0, result.Confidence)
	assert.Zero(t, second.calls)
}

func TestChainEmptyTextFallsThrough(t *testing.T) {
	// A scanned PDF has a valid but empty text layer; OCR must still run.
	scanned := &stubExtractor{result: Extraction{Text: ""}}
	ocr := &stubExtractor{result: Extraction{Text: "texte ocr", Confidence: 0.9}}
	chain := newTestChain(scanned, ocr)

	result, err := chain.Extract(context.Background(), []byte("pdf"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "texte ocr", result.Text)
	assert.Equal(t, 1, scanned.calls)
}

func TestChainSkipsUnsupported(t *testing.T) {
	unsupported := &stubExtractor{err: ErrUnsupported}
	ocr := &stubExtractor{result: Extraction{Text: "texte ocr", Confidence: 0.9}}
	chain := newTestChain(unsupported, ocr)

	result, err := chain.Extract(context.Background(), []byte("img"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "texte ocr", result.Text)
}

func TestChainAllFailedReturnsEmptyAndLastError(t *testing.T) {
	boom := errors.New("ocr service down")
	chain := newTestChain(
		&stubExtractor{err: ErrUnsupported},
		&stubExtractor{err: boom},
	)

	result, err := chain.Extract(context.Background(), []byte("img"), "image/png")
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, result.Text)
}

func TestChainNothingSupportedReturnsEmpty(t *testing.T) {
	chain := newTestChain(&stubExtractor{err: ErrUnsupported})

	result, err := chain.Extract(context.Background(), []byte("zip"), "application/zip")
	assert.NoError(t, err)
	assert.Empty(t, result.Text)
}

func TestChainEmpty(t *testing.T) {
	chain := newTestChain()

	result, err := chain.Extract(context.Background(), nil, "application/pdf")
	assert.NoError(t, err)
	assert.Empty(t, result.Text)
}
