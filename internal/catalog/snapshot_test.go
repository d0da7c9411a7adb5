package catalog

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	return NewStore(slog.New(slog.DiscardHandler))
}

func TestStoreStartsWithEmptySnapshot(t *testing.T) {
	store := newTestStore()

	snap := store.Current()
	require.NotNil(t, snap)
	assert.Empty(t, snap.Types)
	assert.Zero(t, snap.SignalCount())
	assert.Zero(t, snap.Version)
}

func TestPublishOrdersTypes(t *testing.T) {
	store := newTestStore()

	snap := store.Publish([]DocumentType{
		{Code: "MISC", IsActive: true, Order: 100},
		{Code: "INVOICE", IsActive: true, Order: 20},
		{Code: "CONTRACT", IsActive: true, Order: 20},
		{Code: "RENT_RECEIPT", IsActive: true, Order: 10},
	}, nil)

	codes := make([]string, 0, len(snap.Types))
	for i := range snap.Types {
		codes = append(codes, snap.Types[i].Code)
	}
	assert.Equal(t, []string{"RENT_RECEIPT", "CONTRACT", "INVOICE", "MISC"}, codes)
}

func TestPublishSkipsInactiveTypes(t *testing.T) {
	store := newTestStore()

	snap := store.Publish([]DocumentType{
		{Code: "ACTIVE", IsActive: true},
		{Code: "RETIRED", IsActive: false},
	}, nil)

	require.Len(t, snap.Types, 1)
	assert.Equal(t, "ACTIVE", snap.Types[0].Code)
}

func TestPublishInvalidRulePatternBecomesDiagnostic(t *testing.T) {
	store := newTestStore()

	snap := store.Publish([]DocumentType{
		{
			Code:     "RENT_RECEIPT",
			IsActive: true,
			Rules: []SuggestionRule{
				{Pattern: "quittance", Weight: 2},
				{Pattern: "([unclosed", Weight: 1},
			},
		},
	}, nil)

	// The type survives with its valid rule; the broken one is reported.
	require.Len(t, snap.Types, 1)
	assert.Len(t, snap.Types[0].CompiledRules, 1)
	require.Len(t, snap.Diagnostics, 1)
	assert.Contains(t, snap.Diagnostics[0], "RENT_RECEIPT")
}

func TestPublishInvalidSignalPatternBecomesDiagnostic(t *testing.T) {
	store := newTestStore()

	snap := store.Publish(nil, []Signal{
		{Code: "IBAN", Pattern: `[A-Z]{2}[0-9]{2}`},
		{Code: "BROKEN", Pattern: `(?P<`},
	})

	assert.Equal(t, 1, snap.SignalCount())
	_, ok := snap.Signal("IBAN")
	assert.True(t, ok)
	_, ok = snap.Signal("BROKEN")
	assert.False(t, ok)
	require.Len(t, snap.Diagnostics, 1)
	assert.Contains(t, snap.Diagnostics[0], "BROKEN")
}

func TestPublishSignalFlags(t *testing.T) {
	store := newTestStore()

	snap := store.Publish(nil, []Signal{
		{Code: "CASED", Pattern: "iban", Flags: "i"},
		{Code: "EXACT", Pattern: "iban"},
	})

	cased, ok := snap.Signal("CASED")
	require.True(t, ok)
	assert.True(t, cased.Detector.MatchString("IBAN FR76"))

	exact, ok := snap.Signal("EXACT")
	require.True(t, ok)
	assert.False(t, exact.Detector.MatchString("IBAN FR76"))
	assert.True(t, exact.Detector.MatchString("iban fr76"))
}

func TestPublishRulePatternsCaseInsensitive(t *testing.T) {
	store := newTestStore()

	snap := store.Publish([]DocumentType{
		{
			Code:     "RENT_RECEIPT",
			IsActive: true,
			Rules:    []SuggestionRule{{Pattern: "quittance", Weight: 2}},
		},
	}, nil)

	require.Len(t, snap.Types[0].CompiledRules, 1)
	assert.True(t, snap.Types[0].CompiledRules[0].Filename.MatchString("QUITTANCE_JUIN.PDF"))
}

func TestPublishBumpsVersion(t *testing.T) {
	store := newTestStore()

	first := store.Publish(nil, nil)
	second := store.Publish(nil, nil)

	assert.Equal(t, uint64(1), first.Version)
	assert.Equal(t, uint64(2), second.Version)
	assert.Same(t, second, store.Current())
}

func TestHasDefaultContext(t *testing.T) {
	ct := CompiledType{DocumentType: DocumentType{
		DefaultContexts: []Context{ContextLease, ContextProperty},
	}}

	assert.True(t, ct.HasDefaultContext(ContextLease))
	assert.True(t, ct.HasDefaultContext(ContextProperty))
	assert.False(t, ct.HasDefaultContext(ContextTenant))
}

func TestParseContext(t *testing.T) {
	for _, valid := range []string{"global", "property", "lease", "tenant", "transaction"} {
		c, err := ParseContext(valid)
		require.NoError(t, err)
		assert.Equal(t, Context(valid), c)
	}

	for _, invalid := range []string{"", "Lease", "building", "LEASE"} {
		_, err := ParseContext(invalid)
		assert.ErrorIs(t, err, ErrUnknownContext, "input %q", invalid)
	}
}
