package sessions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/proprio/docintake/internal/documents"
	"github.com/proprio/docintake/internal/metrics"
	"github.com/proprio/docintake/pkg/lifecycle"
	"github.com/proprio/docintake/pkg/storage"
)

// sweepConcurrency bounds how many expired sessions are reclaimed at once.
const sweepConcurrency = 4

// Sweeper reclaims expired upload sessions on a cron schedule: every draft
// of an expired session is deleted along with its staged blob, and the
// session is marked reclaimed.
type Sweeper struct {
	sessions System
	docs     documents.System
	blobs    storage.System
	metrics  *metrics.Metrics
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewSweeper creates a Sweeper.
func NewSweeper(
	sessions System,
	docs documents.System,
	blobs storage.System,
	m *metrics.Metrics,
	cfg Config,
	logger *slog.Logger,
) *Sweeper {
	return &Sweeper{
		sessions: sessions,
		docs:     docs,
		blobs:    blobs,
		metrics:  m,
		schedule: cfg.SweepSchedule,
		logger:   logger.With("system", "session-sweeper"),
	}
}

// Start schedules the sweep and ties the scheduler to the application
// lifecycle.
func (s *Sweeper) Start(lc *lifecycle.Coordinator) error {
	s.cron = cron.New()

	_, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.Sweep(lc.Context()); err != nil {
			s.logger.Error("session sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule session sweep %q: %w", s.schedule, err)
	}

	lc.OnStartup(func() {
		s.cron.Start()
		s.logger.Info("session sweeper scheduled", "schedule", s.schedule)
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		<-s.cron.Stop().Done()
		s.logger.Info("session sweeper stopped")
	})

	return nil
}

// Sweep reclaims every expired open session and returns the number of
// drafts removed. A failure on one session does not stop the others.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	expired, err := s.sessions.FindExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("find expired sessions: %w", err)
	}

	var reclaimed atomic.Int64

	group := &errgroup.Group{}
	group.SetLimit(sweepConcurrency)

	for i := range expired {
		session := &expired[i]
		group.Go(func() error {
			count, err := s.reclaim(ctx, session)
			reclaimed.Add(int64(count))
			return err
		})
	}
	err = group.Wait()

	total := int(reclaimed.Load())
	if total > 0 {
		s.metrics.SweepReclaimed.Add(float64(total))
		s.logger.Info("session sweep complete", "sessions", len(expired), "drafts_reclaimed", total)
	}

	return total, err
}

func (s *Sweeper) reclaim(ctx context.Context, session *Session) (int, error) {
	drafts, err := s.docs.FindDraftsBySession(ctx, session.ID)
	if err != nil {
		return 0, fmt.Errorf("session %s: load drafts: %w", session.ID, err)
	}

	reclaimed := 0
	for i := range drafts {
		if err := s.blobs.Delete(ctx, drafts[i].StorageKey); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return reclaimed, fmt.Errorf("session %s: delete blob %s: %w", session.ID, drafts[i].StorageKey, err)
		}
		if err := s.docs.DeleteDraft(ctx, drafts[i].ID); err != nil {
			// A draft finalized, cancelled, or otherwise moved on between
			// listing and deletion is no longer ours to reclaim.
			if errors.Is(err, documents.ErrAlreadyFinalized) ||
				errors.Is(err, documents.ErrNotFound) ||
				errors.Is(err, documents.ErrNotDraft) {
				continue
			}
			return reclaimed, fmt.Errorf("session %s: delete draft %s: %w", session.ID, drafts[i].ID, err)
		}
		reclaimed++
	}

	if err := s.sessions.MarkReclaimed(ctx, session.ID); err != nil && !errors.Is(err, ErrNotFound) {
		return reclaimed, fmt.Errorf("session %s: mark reclaimed: %w", session.ID, err)
	}

	return reclaimed, nil
}
