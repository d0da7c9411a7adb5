package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
)

// OCR errors.
var (
	ErrOCRUnavailable = errors.New("ocr service unavailable")
)

// OCRConfig configures the remote OCR client.
type OCRConfig struct {
	Endpoint string `toml:"endpoint"`
	Timeout  int    `toml:"timeout"`
}

// Merge overlays non-zero values from other onto the config.
func (c *OCRConfig) Merge(other OCRConfig) {
	if other.Endpoint != "" {
		c.Endpoint = other.Endpoint
	}
	if other.Timeout > 0 {
		c.Timeout = other.Timeout
	}
}

// Finalize applies defaults.
func (c *OCRConfig) Finalize() {
	if c.Timeout <= 0 {
		c.Timeout = 30
	}
}

type ocrResponse struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// RemoteOCR calls the OCR service over HTTP. A circuit breaker guards the
// call so a down OCR backend degrades intake instead of stalling it: while
// the breaker is open, extraction returns ErrOCRUnavailable immediately.
type RemoteOCR struct {
	endpoint string
	client   *http.Client
	breaker  *gobreaker.CircuitBreaker[Extraction]
	logger   *slog.Logger
}

// NewRemoteOCR creates the OCR client with its circuit breaker.
func NewRemoteOCR(cfg OCRConfig, logger *slog.Logger) *RemoteOCR {
	logger = logger.With("system", "ocr")

	breaker := gobreaker.NewCircuitBreaker[Extraction](gobreaker.Settings{
		Name:    "ocr",
		Timeout: 60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &RemoteOCR{
		endpoint: cfg.Endpoint,
		client:   &http.Client{Timeout: time.Duration(cfg.Timeout) * time.Second},
		breaker:  breaker,
		logger:   logger,
	}
}

// Extract implements Extractor. It handles PDFs and raster images; other
// content types are unsupported.
func (o *RemoteOCR) Extract(ctx context.Context, data []byte, contentType string) (Extraction, error) {
	if o.endpoint == "" {
		return Extraction{}, ErrUnsupported
	}
	if !IsPDF(contentType) && !strings.HasPrefix(contentType, "image/") {
		return Extraction{}, ErrUnsupported
	}

	result, err := o.breaker.Execute(func() (Extraction, error) {
		return o.call(ctx, data, contentType)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return Extraction{}, fmt.Errorf("%w: %w", ErrOCRUnavailable, err)
		}
		return Extraction{}, err
	}

	return result, nil
}

func (o *RemoteOCR) call(ctx context.Context, data []byte, contentType string) (Extraction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(data))
	if err != nil {
		return Extraction{}, fmt.Errorf("build ocr request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := o.client.Do(req)
	if err != nil {
		return Extraction{}, fmt.Errorf("call ocr service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Extraction{}, fmt.Errorf("ocr service returned %d", resp.StatusCode)
	}

	var body ocrResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Extraction{}, fmt.Errorf("decode ocr response: %w", err)
	}

	return Extraction{Text: body.Text, Confidence: body.Confidence}, nil
}
