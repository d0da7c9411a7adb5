package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/proprio/docintake/pkg/repository"
)

const typeColumns = `id, code, label, is_system, is_active, sort_order, is_sensitive,
	auto_assign_threshold, default_contexts, rules, keywords, signals,
	extraction_rules, created_at, updated_at`

const signalColumns = `id, code, pattern, flags, protected, created_at, updated_at`

func scanType(s repository.Scanner) (DocumentType, error) {
	var (
		dt          DocumentType
		contexts    []byte
		rules       []byte
		keywords    []byte
		signals     []byte
		extractions []byte
	)

	err := s.Scan(
		&dt.ID,
		&dt.Code,
		&dt.Label,
		&dt.IsSystem,
		&dt.IsActive,
		&dt.Order,
		&dt.IsSensitive,
		&dt.AutoAssignThreshold,
		&contexts,
		&rules,
		&keywords,
		&signals,
		&extractions,
		&dt.CreatedAt,
		&dt.UpdatedAt,
	)
	if err != nil {
		return dt, err
	}

	for _, field := range []struct {
		name string
		data []byte
		dst  any
	}{
		{"default_contexts", contexts, &dt.DefaultContexts},
		{"rules", rules, &dt.Rules},
		{"keywords", keywords, &dt.Keywords},
		{"signals", signals, &dt.Signals},
		{"extraction_rules", extractions, &dt.ExtractionRules},
	} {
		if len(field.data) == 0 {
			continue
		}
		if err := json.Unmarshal(field.data, field.dst); err != nil {
			return dt, fmt.Errorf("type %s: decode %s: %w", dt.Code, field.name, err)
		}
	}

	return dt, nil
}

func scanSignal(s repository.Scanner) (Signal, error) {
	var sig Signal
	err := s.Scan(
		&sig.ID,
		&sig.Code,
		&sig.Pattern,
		&sig.Flags,
		&sig.Protected,
		&sig.CreatedAt,
		&sig.UpdatedAt,
	)
	return sig, err
}

func marshalTypeFields(
	contexts []Context,
	rules []SuggestionRule,
	keywords []Keyword,
	signals []SignalRef,
	extractions []ExtractionRule,
) ([]byte, []byte, []byte, []byte, []byte, error) {
	c, err := json.Marshal(orEmpty(contexts))
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	r, err := json.Marshal(orEmpty(rules))
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	k, err := json.Marshal(orEmpty(keywords))
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	s, err := json.Marshal(orEmpty(signals))
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	e, err := json.Marshal(orEmpty(extractions))
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	return c, r, k, s, e, nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
