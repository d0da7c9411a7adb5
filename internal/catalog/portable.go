package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/proprio/docintake/pkg/repository"
)

// Portable is the environment-independent serialization of the catalog.
// It round-trips through Export and Import field-for-field, so rule
// configuration can move between environments.
type Portable struct {
	Types   []PortableType   `json:"types"`
	Signals []PortableSignal `json:"signals"`
}

// PortableType carries a document type definition without environment-bound
// identity (no row id, no timestamps).
type PortableType struct {
	Code                string           `json:"code"`
	Label               string           `json:"label"`
	IsSystem            bool             `json:"is_system"`
	IsActive            bool             `json:"is_active"`
	Order               int              `json:"order"`
	IsSensitive         bool             `json:"is_sensitive"`
	AutoAssignThreshold float64          `json:"auto_assign_threshold"`
	DefaultContexts     []Context        `json:"default_contexts"`
	Rules               []SuggestionRule `json:"rules"`
	Keywords            []Keyword        `json:"keywords"`
	Signals             []SignalRef      `json:"signals"`
	ExtractionRules     []ExtractionRule `json:"extraction_rules"`
}

// PortableSignal carries a signal definition without environment-bound identity.
type PortableSignal struct {
	Code      string `json:"code"`
	Pattern   string `json:"pattern"`
	Flags     string `json:"flags"`
	Protected bool   `json:"protected"`
}

func (r *repo) Export(ctx context.Context) (*Portable, error) {
	types, err := r.ListTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("export types: %w", err)
	}

	signals, err := r.ListSignals(ctx)
	if err != nil {
		return nil, fmt.Errorf("export signals: %w", err)
	}

	p := &Portable{
		Types:   make([]PortableType, 0, len(types)),
		Signals: make([]PortableSignal, 0, len(signals)),
	}

	for _, dt := range types {
		p.Types = append(p.Types, PortableType{
			Code:                dt.Code,
			Label:               dt.Label,
			IsSystem:            dt.IsSystem,
			IsActive:            dt.IsActive,
			Order:               dt.Order,
			IsSensitive:         dt.IsSensitive,
			AutoAssignThreshold: dt.AutoAssignThreshold,
			DefaultContexts:     orEmpty(dt.DefaultContexts),
			Rules:               orEmpty(dt.Rules),
			Keywords:            orEmpty(dt.Keywords),
			Signals:             orEmpty(dt.Signals),
			ExtractionRules:     orEmpty(dt.ExtractionRules),
		})
	}

	for _, sig := range signals {
		p.Signals = append(p.Signals, PortableSignal{
			Code:      sig.Code,
			Pattern:   sig.Pattern,
			Flags:     sig.Flags,
			Protected: sig.Protected,
		})
	}

	return p, nil
}

func (r *repo) Import(ctx context.Context, p *Portable) error {
	if err := validatePortable(p); err != nil {
		return err
	}

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if _, err := tx.ExecContext(ctx, "DELETE FROM signals"); err != nil {
			return struct{}{}, fmt.Errorf("clear signals: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM document_types"); err != nil {
			return struct{}{}, fmt.Errorf("clear document types: %w", err)
		}

		for _, pt := range p.Types {
			contexts, rules, keywords, signals, extractions, err := marshalTypeFields(
				pt.DefaultContexts, pt.Rules, pt.Keywords, pt.Signals, pt.ExtractionRules,
			)
			if err != nil {
				return struct{}{}, fmt.Errorf("encode type %s: %w", pt.Code, err)
			}

			_, err = tx.ExecContext(ctx, `
				INSERT INTO document_types(id, code, label, is_system, is_active,
					sort_order, is_sensitive, auto_assign_threshold, default_contexts,
					rules, keywords, signals, extraction_rules)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
				uuid.New(), pt.Code, pt.Label, pt.IsSystem, pt.IsActive,
				pt.Order, pt.IsSensitive, pt.AutoAssignThreshold, contexts,
				rules, keywords, signals, extractions,
			)
			if err != nil {
				return struct{}{}, fmt.Errorf("import type %s: %w", pt.Code, err)
			}
		}

		for _, ps := range p.Signals {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO signals(id, code, pattern, flags, protected)
				VALUES ($1, $2, $3, $4, $5)`,
				uuid.New(), ps.Code, ps.Pattern, ps.Flags, ps.Protected,
			)
			if err != nil {
				return struct{}{}, fmt.Errorf("import signal %s: %w", ps.Code, err)
			}
		}

		return struct{}{}, nil
	})
	if err != nil {
		return err
	}

	if _, err := r.Reload(ctx); err != nil {
		return err
	}

	r.logger.Info("catalog imported", "types", len(p.Types), "signals", len(p.Signals))
	return nil
}

func validatePortable(p *Portable) error {
	if p == nil {
		return fmt.Errorf("%w: empty payload", ErrInvalidCatalog)
	}

	seenTypes := make(map[string]bool, len(p.Types))
	for _, pt := range p.Types {
		if pt.Code == "" {
			return fmt.Errorf("%w: type with empty code", ErrInvalidCatalog)
		}
		if seenTypes[pt.Code] {
			return fmt.Errorf("%w: duplicate type code %s", ErrInvalidCatalog, pt.Code)
		}
		seenTypes[pt.Code] = true

		if pt.AutoAssignThreshold < 0 || pt.AutoAssignThreshold > 1 {
			return fmt.Errorf("%w: type %s", ErrInvalidThreshold, pt.Code)
		}
		for _, c := range pt.DefaultContexts {
			if _, err := ParseContext(string(c)); err != nil {
				return fmt.Errorf("type %s: %w", pt.Code, err)
			}
		}
	}

	seenSignals := make(map[string]bool, len(p.Signals))
	for _, ps := range p.Signals {
		if ps.Code == "" {
			return fmt.Errorf("%w: signal with empty code", ErrInvalidCatalog)
		}
		if seenSignals[ps.Code] {
			return fmt.Errorf("%w: duplicate signal code %s", ErrInvalidCatalog, ps.Code)
		}
		seenSignals[ps.Code] = true
	}

	return nil
}
