package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/proprio/docintake/pkg/repository"
)

type repo struct {
	db     *sql.DB
	store  *Store
	logger *slog.Logger
}

// New creates a catalog repository implementing the System interface.
// Call Reload once at startup to publish the initial snapshot.
func New(db *sql.DB, store *Store, logger *slog.Logger) System {
	return &repo{
		db:     db,
		store:  store,
		logger: logger.With("system", "catalog"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Current() *Snapshot {
	return r.store.Current()
}

func (r *repo) Reload(ctx context.Context) (*Snapshot, error) {
	types, err := r.ListTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("reload types: %w", err)
	}

	signals, err := r.ListSignals(ctx)
	if err != nil {
		return nil, fmt.Errorf("reload signals: %w", err)
	}

	return r.store.Publish(types, signals), nil
}

func (r *repo) ListTypes(ctx context.Context) ([]DocumentType, error) {
	q := fmt.Sprintf(
		"SELECT %s FROM document_types ORDER BY sort_order, code",
		typeColumns,
	)
	return repository.QueryMany(ctx, r.db, q, nil, scanType)
}

func (r *repo) FindType(ctx context.Context, code string) (*DocumentType, error) {
	q := fmt.Sprintf("SELECT %s FROM document_types WHERE code = $1", typeColumns)

	dt, err := repository.QueryOne(ctx, r.db, q, []any{code}, scanType)
	if err != nil {
		return nil, repository.MapError(err, ErrTypeNotFound, ErrTypeExists)
	}
	return &dt, nil
}

func (r *repo) CreateType(ctx context.Context, cmd CreateTypeCommand) (*DocumentType, error) {
	if err := validateTypeDefinition(cmd.Code, cmd.AutoAssignThreshold, cmd.DefaultContexts); err != nil {
		return nil, err
	}

	contexts, rules, keywords, signals, extractions, err := marshalTypeFields(
		cmd.DefaultContexts, cmd.Rules, cmd.Keywords, cmd.Signals, cmd.ExtractionRules,
	)
	if err != nil {
		return nil, fmt.Errorf("encode type definition: %w", err)
	}

	q := fmt.Sprintf(`
		INSERT INTO document_types(id, code, label, sort_order, is_sensitive,
			auto_assign_threshold, default_contexts, rules, keywords, signals, extraction_rules)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING %s`, typeColumns)

	args := []any{
		uuid.New(), cmd.Code, cmd.Label, cmd.Order, cmd.IsSensitive,
		cmd.AutoAssignThreshold, contexts, rules, keywords, signals, extractions,
	}

	dt, err := repository.QueryOne(ctx, r.db, q, args, scanType)
	if err != nil {
		return nil, repository.MapError(err, ErrTypeNotFound, ErrTypeExists)
	}

	if _, err := r.Reload(ctx); err != nil {
		return nil, err
	}

	r.logger.Info("document type created", "code", dt.Code)
	return &dt, nil
}

func (r *repo) UpdateType(ctx context.Context, code string, cmd UpdateTypeCommand) (*DocumentType, error) {
	if err := validateTypeDefinition(code, cmd.AutoAssignThreshold, cmd.DefaultContexts); err != nil {
		return nil, err
	}

	contexts, rules, keywords, signals, extractions, err := marshalTypeFields(
		cmd.DefaultContexts, cmd.Rules, cmd.Keywords, cmd.Signals, cmd.ExtractionRules,
	)
	if err != nil {
		return nil, fmt.Errorf("encode type definition: %w", err)
	}

	q := fmt.Sprintf(`
		UPDATE document_types
		SET label = $2, is_active = $3, sort_order = $4, is_sensitive = $5,
			auto_assign_threshold = $6, default_contexts = $7, rules = $8,
			keywords = $9, signals = $10, extraction_rules = $11, updated_at = now()
		WHERE code = $1
		RETURNING %s`, typeColumns)

	args := []any{
		code, cmd.Label, cmd.IsActive, cmd.Order, cmd.IsSensitive,
		cmd.AutoAssignThreshold, contexts, rules, keywords, signals, extractions,
	}

	dt, err := repository.QueryOne(ctx, r.db, q, args, scanType)
	if err != nil {
		return nil, repository.MapError(err, ErrTypeNotFound, ErrTypeExists)
	}

	if _, err := r.Reload(ctx); err != nil {
		return nil, err
	}

	r.logger.Info("document type updated", "code", dt.Code)
	return &dt, nil
}

func (r *repo) DeleteType(ctx context.Context, code string) error {
	referenced, err := repository.Exists(ctx, r.db,
		"SELECT EXISTS(SELECT 1 FROM documents WHERE document_type_code = $1)", code)
	if err != nil {
		return fmt.Errorf("check type references: %w", err)
	}
	if referenced {
		return ErrTypeReferenced
	}

	err = repository.ExecExpectOne(ctx, r.db,
		"DELETE FROM document_types WHERE code = $1 AND NOT is_system", code)
	if err != nil {
		return repository.MapError(err, ErrTypeNotFound, ErrTypeExists)
	}

	if _, err := r.Reload(ctx); err != nil {
		return err
	}

	r.logger.Info("document type deleted", "code", code)
	return nil
}

func (r *repo) ListSignals(ctx context.Context) ([]Signal, error) {
	q := fmt.Sprintf("SELECT %s FROM signals ORDER BY code", signalColumns)
	return repository.QueryMany(ctx, r.db, q, nil, scanSignal)
}

func (r *repo) CreateSignal(ctx context.Context, cmd SignalCommand) (*Signal, error) {
	q := fmt.Sprintf(`
		INSERT INTO signals(id, code, pattern, flags)
		VALUES ($1, $2, $3, $4)
		RETURNING %s`, signalColumns)

	sig, err := repository.QueryOne(ctx, r.db, q,
		[]any{uuid.New(), cmd.Code, cmd.Pattern, cmd.Flags}, scanSignal)
	if err != nil {
		return nil, repository.MapError(err, ErrSignalNotFound, ErrSignalExists)
	}

	if _, err := r.Reload(ctx); err != nil {
		return nil, err
	}

	r.logger.Info("signal created", "code", sig.Code)
	return &sig, nil
}

func (r *repo) UpdateSignal(ctx context.Context, code string, cmd SignalCommand) (*Signal, error) {
	if err := r.ensureUnprotected(ctx, code); err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`
		UPDATE signals SET pattern = $2, flags = $3, updated_at = now()
		WHERE code = $1
		RETURNING %s`, signalColumns)

	sig, err := repository.QueryOne(ctx, r.db, q,
		[]any{code, cmd.Pattern, cmd.Flags}, scanSignal)
	if err != nil {
		return nil, repository.MapError(err, ErrSignalNotFound, ErrSignalExists)
	}

	if _, err := r.Reload(ctx); err != nil {
		return nil, err
	}

	return &sig, nil
}

func (r *repo) DeleteSignal(ctx context.Context, code string) error {
	if err := r.ensureUnprotected(ctx, code); err != nil {
		return err
	}

	err := repository.ExecExpectOne(ctx, r.db,
		"DELETE FROM signals WHERE code = $1", code)
	if err != nil {
		return repository.MapError(err, ErrSignalNotFound, ErrSignalExists)
	}

	if _, err := r.Reload(ctx); err != nil {
		return err
	}

	r.logger.Info("signal deleted", "code", code)
	return nil
}

func (r *repo) ensureUnprotected(ctx context.Context, code string) error {
	var protected bool
	err := r.db.QueryRowContext(ctx,
		"SELECT protected FROM signals WHERE code = $1", code).Scan(&protected)
	if err != nil {
		return repository.MapError(err, ErrSignalNotFound, ErrSignalExists)
	}
	if protected {
		return ErrSignalProtected
	}
	return nil
}

func validateTypeDefinition(code string, threshold float64, contexts []Context) error {
	if code == "" {
		return fmt.Errorf("%w: code required", ErrInvalidCatalog)
	}
	if threshold < 0 || threshold > 1 {
		return ErrInvalidThreshold
	}
	for _, c := range contexts {
		if _, err := ParseContext(string(c)); err != nil {
			return err
		}
	}
	return nil
}
