package sessions

import "time"

// Config controls session lifetime and sweeping.
type Config struct {
	// TTLMinutes is the session lifetime from creation.
	TTLMinutes int `toml:"ttl_minutes"`
	// SweepSchedule is the cron schedule for the reclamation sweep.
	SweepSchedule string `toml:"sweep_schedule"`
}

// Merge overlays non-zero values from other onto the config.
func (c *Config) Merge(other Config) {
	if other.TTLMinutes > 0 {
		c.TTLMinutes = other.TTLMinutes
	}
	if other.SweepSchedule != "" {
		c.SweepSchedule = other.SweepSchedule
	}
}

// Finalize applies defaults.
func (c *Config) Finalize() {
	if c.TTLMinutes <= 0 {
		c.TTLMinutes = 60
	}
	if c.SweepSchedule == "" {
		c.SweepSchedule = "*/10 * * * *"
	}
}

// TTL returns the session lifetime as a duration.
func (c *Config) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}
