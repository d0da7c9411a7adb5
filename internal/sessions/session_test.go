package sessions

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionExpired(t *testing.T) {
	now := time.Now().UTC()
	session := Session{ExpiresAt: now.Add(time.Hour)}

	assert.False(t, session.Expired(now))
	assert.False(t, session.Expired(now.Add(time.Hour)))
	assert.True(t, session.Expired(now.Add(time.Hour+time.Second)))
}

func TestSessionUsable(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name    string
		session Session
		want    bool
	}{
		{"open and fresh", Session{Status: StatusOpen, ExpiresAt: now.Add(time.Hour)}, true},
		{"open but expired", Session{Status: StatusOpen, ExpiresAt: now.Add(-time.Minute)}, false},
		{"closed", Session{Status: StatusClosed, ExpiresAt: now.Add(time.Hour)}, false},
		{"reclaimed", Session{Status: StatusReclaimed, ExpiresAt: now.Add(time.Hour)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.session.Usable(now))
		})
	}
}

func TestConfigFinalizeDefaults(t *testing.T) {
	var cfg Config
	cfg.Finalize()

	assert.Equal(t, 60, cfg.TTLMinutes)
	assert.Equal(t, "*/10 * * * *", cfg.SweepSchedule)
	assert.Equal(t, time.Hour, cfg.TTL())
}

func TestConfigMerge(t *testing.T) {
	cfg := Config{TTLMinutes: 60, SweepSchedule: "*/10 * * * *"}

	cfg.Merge(Config{})
	assert.Equal(t, 60, cfg.TTLMinutes)
	assert.Equal(t, "*/10 * * * *", cfg.SweepSchedule)

	cfg.Merge(Config{TTLMinutes: 15, SweepSchedule: "*/5 * * * *"})
	assert.Equal(t, 15, cfg.TTLMinutes)
	assert.Equal(t, "*/5 * * * *", cfg.SweepSchedule)
	assert.Equal(t, 15*time.Minute, cfg.TTL())
}
