// Package sessions manages upload sessions: the short-lived scope a batch
// of draft uploads lives in until finalized. Sessions expire on a TTL; a
// background sweeper reclaims the drafts and staged blobs of expired
// sessions.
package sessions

import (
	"time"

	"github.com/google/uuid"
)

// Status is the session lifecycle state.
type Status string

// Session statuses. Closed sessions were explicitly completed; reclaimed
// sessions expired and had their drafts swept.
const (
	StatusOpen      Status = "open"
	StatusClosed    Status = "closed"
	StatusReclaimed Status = "reclaimed"
)

// Session is one upload session record.
type Session struct {
	ID          uuid.UUID  `json:"id"`
	OwnerID     uuid.UUID  `json:"owner_id"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
	ReclaimedAt *time.Time `json:"reclaimed_at,omitempty"`
}

// Expired reports whether the session TTL has passed at the given instant.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Usable reports whether drafts may still be added or finalized in the
// session.
func (s *Session) Usable(now time.Time) bool {
	return s.Status == StatusOpen && !s.Expired(now)
}
