package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/proprio/docintake/pkg/repository"
)

const sessionColumns = "id, owner_id, status, created_at, expires_at, closed_at, reclaimed_at"

type repo struct {
	db     *sql.DB
	cfg    Config
	logger *slog.Logger
}

// New creates the postgres-backed session system.
func New(db *sql.DB, cfg Config, logger *slog.Logger) System {
	return &repo{
		db:     db,
		cfg:    cfg,
		logger: logger.With("system", "sessions"),
	}
}

func (r *repo) Open(ctx context.Context, ownerID uuid.UUID) (*Session, error) {
	now := time.Now().UTC()
	session := Session{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Status:    StatusOpen,
		CreatedAt: now,
		ExpiresAt: now.Add(r.cfg.TTL()),
	}

	err := repository.ExecExpectOne(ctx, r.db, `
		INSERT INTO upload_sessions (id, owner_id, status, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)`,
		session.ID, session.OwnerID, string(session.Status),
		session.CreatedAt, session.ExpiresAt,
	)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}

	r.logger.Info("session opened", "id", session.ID, "expires_at", session.ExpiresAt)
	return &session, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Session, error) {
	session, err := repository.QueryOne(ctx, r.db, `
		SELECT `+sessionColumns+` FROM upload_sessions WHERE id = $1`,
		[]any{id}, scanSession,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find session %s: %w", id, err)
	}
	return &session, nil
}

func (r *repo) EnsureUsable(ctx context.Context, id uuid.UUID) (*Session, error) {
	session, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	switch {
	case session.Status == StatusClosed:
		return nil, ErrClosed
	case session.Status == StatusReclaimed, session.Expired(time.Now().UTC()):
		return nil, ErrExpired
	}

	return session, nil
}

func (r *repo) Close(ctx context.Context, id uuid.UUID) error {
	affected, err := repository.ExecAffected(ctx, r.db, `
		UPDATE upload_sessions SET status = $1, closed_at = $2
		WHERE id = $3 AND status = $4`,
		string(StatusClosed), time.Now().UTC(), id, string(StatusOpen),
	)
	if err != nil {
		return fmt.Errorf("close session %s: %w", id, err)
	}

	if affected == 0 {
		session, err := r.Find(ctx, id)
		if err != nil {
			return err
		}
		if session.Status == StatusReclaimed {
			return ErrExpired
		}
		// Already closed: idempotent.
		return nil
	}

	return nil
}

func (r *repo) FindExpired(ctx context.Context) ([]Session, error) {
	return repository.QueryMany(ctx, r.db, `
		SELECT `+sessionColumns+` FROM upload_sessions
		WHERE status = $1 AND expires_at < $2
		ORDER BY expires_at`,
		[]any{string(StatusOpen), time.Now().UTC()}, scanSession,
	)
}

func (r *repo) MarkReclaimed(ctx context.Context, id uuid.UUID) error {
	err := repository.ExecExpectOne(ctx, r.db, `
		UPDATE upload_sessions SET status = $1, reclaimed_at = $2
		WHERE id = $3 AND status = $4`,
		string(StatusReclaimed), time.Now().UTC(), id, string(StatusOpen),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("mark session reclaimed %s: %w", id, err)
	}
	return nil
}

func scanSession(s repository.Scanner) (Session, error) {
	var (
		session     Session
		status      string
		closedAt    sql.NullTime
		reclaimedAt sql.NullTime
	)

	err := s.Scan(
		&session.ID,
		&session.OwnerID,
		&status,
		&session.CreatedAt,
		&session.ExpiresAt,
		&closedAt,
		&reclaimedAt,
	)
	if err != nil {
		return Session{}, err
	}

	session.Status = Status(status)
	if closedAt.Valid {
		session.ClosedAt = &closedAt.Time
	}
	if reclaimedAt.Valid {
		session.ReclaimedAt = &reclaimedAt.Time
	}
	return session, nil
}
