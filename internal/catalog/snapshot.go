package catalog

import (
	"log/slog"
	"regexp"
	"sort"
	"sync/atomic"
)

// CompiledRule is a SuggestionRule with its filename pattern pre-compiled.
type CompiledRule struct {
	SuggestionRule
	Filename *regexp.Regexp
}

// CompiledSignal is a Signal with its detector pattern pre-compiled.
type CompiledSignal struct {
	Signal
	Detector *regexp.Regexp
}

// CompiledType is a DocumentType whose valid rules have been compiled.
// Rules that failed to compile are absent; their diagnostics live on the
// snapshot.
type CompiledType struct {
	DocumentType
	CompiledRules []CompiledRule
}

// HasDefaultContext reports whether this type is the contextual default for ctx.
func (t *CompiledType) HasDefaultContext(ctx Context) bool {
	for _, c := range t.DefaultContexts {
		if c == ctx {
			return true
		}
	}
	return false
}

// Snapshot is an immutable, versioned view of the compiled catalog.
// Types are ordered by Order ascending then Code for deterministic iteration.
type Snapshot struct {
	Version     uint64
	Types       []CompiledType
	Diagnostics []string

	signals map[string]*CompiledSignal
}

// Signal returns the compiled signal for a code, if it exists.
func (s *Snapshot) Signal(code string) (*CompiledSignal, bool) {
	sig, ok := s.signals[code]
	return sig, ok
}

// SignalCount returns the number of compiled signals in the snapshot.
func (s *Snapshot) SignalCount() int {
	return len(s.signals)
}

// Store publishes catalog snapshots with copy-on-write semantics.
// Readers call Current and always see a consistent whole snapshot;
// Publish swaps the pointer atomically and bumps the version counter.
type Store struct {
	current atomic.Pointer[Snapshot]
	version atomic.Uint64
	logger  *slog.Logger
}

// NewStore creates a Store pre-seeded with an empty snapshot.
func NewStore(logger *slog.Logger) *Store {
	s := &Store{
		logger: logger.With("system", "catalog"),
	}
	s.current.Store(&Snapshot{signals: map[string]*CompiledSignal{}})
	return s
}

// Current returns the latest published snapshot. Never nil.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Publish compiles the given definitions into a new snapshot and swaps it in.
// Invalid rule or signal patterns are skipped with a logged diagnostic;
// compilation never fails as a whole.
func (s *Store) Publish(types []DocumentType, signals []Signal) *Snapshot {
	snap := compile(types, signals)
	snap.Version = s.version.Add(1)

	for _, d := range snap.Diagnostics {
		s.logger.Warn("catalog entry skipped", "reason", d)
	}

	s.current.Store(snap)
	s.logger.Info(
		"catalog published",
		"version", snap.Version,
		"types", len(snap.Types),
		"signals", len(snap.signals),
	)
	return snap
}

func compile(types []DocumentType, signals []Signal) *Snapshot {
	snap := &Snapshot{
		signals: make(map[string]*CompiledSignal, len(signals)),
	}

	for _, sig := range signals {
		re, err := compileSignalPattern(sig.Pattern, sig.Flags)
		if err != nil {
			snap.Diagnostics = append(snap.Diagnostics,
				"signal "+sig.Code+": "+err.Error())
			continue
		}
		snap.signals[sig.Code] = &CompiledSignal{Signal: sig, Detector: re}
	}

	for _, dt := range types {
		if !dt.IsActive {
			continue
		}

		ct := CompiledType{DocumentType: dt}
		for _, rule := range dt.Rules {
			re, err := regexp.Compile("(?i)" + rule.Pattern)
			if err != nil {
				snap.Diagnostics = append(snap.Diagnostics,
					"type "+dt.Code+" rule "+rule.Pattern+": "+err.Error())
				continue
			}
			ct.CompiledRules = append(ct.CompiledRules, CompiledRule{
				SuggestionRule: rule,
				Filename:       re,
			})
		}
		snap.Types = append(snap.Types, ct)
	}

	sort.SliceStable(snap.Types, func(i, j int) bool {
		if snap.Types[i].Order != snap.Types[j].Order {
			return snap.Types[i].Order < snap.Types[j].Order
		}
		return snap.Types[i].Code < snap.Types[j].Code
	})

	return snap
}

func compileSignalPattern(pattern, flags string) (*regexp.Regexp, error) {
	prefix := ""
	for _, f := range flags {
		switch f {
		case 'i':
			prefix += "(?i)"
		case 'm':
			prefix += "(?m)"
		case 's':
			prefix += "(?s)"
		}
	}
	return regexp.Compile(prefix + pattern)
}
