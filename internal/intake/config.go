package intake

// Config controls upload intake limits.
type Config struct {
	// MaxUploadMB caps the size of a single uploaded file.
	MaxUploadMB int `toml:"max_upload_mb"`
}

// Merge overlays non-zero values from other onto the config.
func (c *Config) Merge(other Config) {
	if other.MaxUploadMB > 0 {
		c.MaxUploadMB = other.MaxUploadMB
	}
}

// Finalize applies defaults.
func (c *Config) Finalize() {
	if c.MaxUploadMB <= 0 {
		c.MaxUploadMB = 50
	}
}

// MaxUploadBytes returns the limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}
