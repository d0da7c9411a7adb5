package config

import (
	"os"
	"strconv"

	"github.com/proprio/docintake/internal/extraction"
	"github.com/proprio/docintake/internal/intake"
	"github.com/proprio/docintake/internal/sessions"
)

const (
	EnvIntakeMaxUploadMB    = "DOCINTAKE_INTAKE_MAX_UPLOAD_MB"
	EnvSessionTTLMinutes    = "DOCINTAKE_SESSION_TTL_MINUTES"
	EnvSessionSweepSchedule = "DOCINTAKE_SESSION_SWEEP_SCHEDULE"
	EnvOCREndpoint          = "DOCINTAKE_OCR_ENDPOINT"
	EnvOCRTimeout           = "DOCINTAKE_OCR_TIMEOUT"
	EnvCatalogFile          = "DOCINTAKE_CATALOG_FILE"
)

// IntakeConfig bundles the intake pipeline settings: upload limits, session
// lifetime, the OCR backend, and the optional catalog definition file.
type IntakeConfig struct {
	// CatalogFile points at a portable catalog JSON file to import on
	// startup and watch for changes. Empty disables the watcher.
	CatalogFile string `toml:"catalog_file"`

	Upload   intake.Config        `toml:"upload"`
	Sessions sessions.Config      `toml:"sessions"`
	OCR      extraction.OCRConfig `toml:"ocr"`
}

// Finalize applies defaults and environment variable overrides.
func (c *IntakeConfig) Finalize() error {
	c.loadEnv()
	c.Upload.Finalize()
	c.Sessions.Finalize()
	c.OCR.Finalize()
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *IntakeConfig) Merge(overlay *IntakeConfig) {
	if overlay.CatalogFile != "" {
		c.CatalogFile = overlay.CatalogFile
	}
	c.Upload.Merge(overlay.Upload)
	c.Sessions.Merge(overlay.Sessions)
	c.OCR.Merge(overlay.OCR)
}

func (c *IntakeConfig) loadEnv() {
	if v := os.Getenv(EnvCatalogFile); v != "" {
		c.CatalogFile = v
	}
	if v := os.Getenv(EnvIntakeMaxUploadMB); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Upload.MaxUploadMB = n
		}
	}
	if v := os.Getenv(EnvSessionTTLMinutes); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Sessions.TTLMinutes = n
		}
	}
	if v := os.Getenv(EnvSessionSweepSchedule); v != "" {
		c.Sessions.SweepSchedule = v
	}
	if v := os.Getenv(EnvOCREndpoint); v != "" {
		c.OCR.Endpoint = v
	}
	if v := os.Getenv(EnvOCRTimeout); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.OCR.Timeout = n
		}
	}
}
