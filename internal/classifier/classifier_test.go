package classifier

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proprio/docintake/internal/catalog"
)

func buildSnapshot(t *testing.T, types []catalog.DocumentType, signals []catalog.Signal) *catalog.Snapshot {
	t.Helper()
	store := catalog.NewStore(slog.New(slog.DiscardHandler))
	return store.Publish(types, signals)
}

func rentReceiptCatalog(t *testing.T) *catalog.Snapshot {
	return buildSnapshot(t, []catalog.DocumentType{
		{
			Code:                "RENT_RECEIPT",
			Label:               "Rent receipt",
			IsActive:            true,
			Order:               10,
			AutoAssignThreshold: 0.7,
			DefaultContexts:     []catalog.Context{catalog.ContextLease},
			Rules: []catalog.SuggestionRule{
				{Pattern: "quittance", Weight: 2},
			},
			Keywords: []catalog.Keyword{
				{Term: "quittance", Weight: 8},
				{Term: "loyer", Weight: 3},
			},
		},
		{
			Code:                "INVOICE",
			Label:               "Invoice",
			IsActive:            true,
			Order:               20,
			AutoAssignThreshold: 0.7,
			DefaultContexts:     []catalog.Context{catalog.ContextProperty},
			Keywords: []catalog.Keyword{
				{Term: "facture", Weight: 7},
			},
		},
		{
			Code:                "MISC",
			Label:               "Miscellaneous",
			IsActive:            true,
			Order:               100,
			AutoAssignThreshold: 1,
			DefaultContexts:     []catalog.Context{catalog.ContextGlobal},
		},
	}, nil)
}

func TestClassifyRentReceiptAutoAssigned(t *testing.T) {
	snap := rentReceiptCatalog(t)

	result := Classify(Input{
		Filename: "quittance_juin_2026.pdf",
		Mime:     "application/pdf",
		Context:  catalog.ContextLease,
		Text:     "Quittance de loyer pour le mois de juin",
	}, snap)

	top := result.Top()
	require.NotNil(t, top)
	assert.Equal(t, "RENT_RECEIPT", top.TypeCode)
	assert.Equal(t, 1.0, top.NormalizedScore)
	assert.True(t, result.AutoAssigned)
	assert.Contains(t, result.Evidence, "keyword:quittance")
	assert.Contains(t, top.MatchedKeywords, "quittance")
	assert.Contains(t, top.MatchedKeywords, "loyer")
}

func TestClassifyDeterministic(t *testing.T) {
	snap := rentReceiptCatalog(t)
	in := Input{
		Filename: "quittance_juin.pdf",
		Context:  catalog.ContextLease,
		Text:     "quittance de loyer, facture jointe",
	}

	first := Classify(in, snap)
	for range 10 {
		assert.Equal(t, first, Classify(in, snap))
	}
}

func TestClassifyNormalizedScoresBounded(t *testing.T) {
	snap := rentReceiptCatalog(t)

	result := Classify(Input{
		Filename: "documents.pdf",
		Context:  catalog.ContextLease,
		Text:     "quittance loyer facture",
	}, snap)

	require.NotEmpty(t, result.Predictions)
	assert.Equal(t, 1.0, result.Predictions[0].NormalizedScore)
	for _, p := range result.Predictions {
		assert.Greater(t, p.NormalizedScore, 0.0)
		assert.LessOrEqual(t, p.NormalizedScore, 1.0)
	}
}

func TestClassifyRankingIsDescending(t *testing.T) {
	snap := rentReceiptCatalog(t)

	result := Classify(Input{
		Filename: "papiers.pdf",
		Context:  catalog.ContextLease,
		Text:     "quittance et facture",
	}, snap)

	for i := 1; i < len(result.Predictions); i++ {
		assert.GreaterOrEqual(t,
			result.Predictions[i-1].NormalizedScore,
			result.Predictions[i].NormalizedScore,
		)
	}
}

func TestClassifyThresholdBoundary(t *testing.T) {
	// The top prediction always normalizes to exactly 1.0; a threshold of
	// 1.0 must still auto-assign because the comparison is inclusive.
	snap := buildSnapshot(t, []catalog.DocumentType{
		{
			Code:                "CONTRACT",
			IsActive:            true,
			AutoAssignThreshold: 1,
			Keywords:            []catalog.Keyword{{Term: "contrat", Weight: 5}},
		},
	}, nil)

	result := Classify(Input{
		Filename: "doc.pdf",
		Context:  catalog.ContextProperty,
		Text:     "contrat de bail",
	}, snap)

	require.Equal(t, "CONTRACT", result.Top().TypeCode)
	assert.True(t, result.AutoAssigned)
}

func TestClassifyBelowThresholdNotAutoAssigned(t *testing.T) {
	// With max-raw normalization the top of a scored run is always exactly
	// 1.0, so a top prediction lands below its threshold only on the
	// fallback path. Its 0.1 confidence against a 1.0 threshold must never
	// auto-assign.
	snap := rentReceiptCatalog(t)

	result := Classify(Input{
		Filename: "notes.txt",
		Mime:     "text/plain",
		Context:  catalog.ContextTenant,
		Text:     "rien d'utile ici",
	}, snap)

	top := result.Top()
	require.NotNil(t, top)
	assert.Less(t, top.NormalizedScore, top.Threshold)
	assert.False(t, result.AutoAssigned)
	for _, p := range result.Predictions {
		assert.Less(t, p.NormalizedScore, p.Threshold)
	}
}

func TestClassifyNoMatchFallsBack(t *testing.T) {
	snap := rentReceiptCatalog(t)

	result := Classify(Input{
		Filename: "holiday_photo.jpg",
		Mime:     "image/jpeg",
		Context:  catalog.ContextTenant,
		Text:     "",
	}, snap)

	top := result.Top()
	require.NotNil(t, top)
	assert.Equal(t, catalog.FallbackTypeCode, top.TypeCode)
	assert.Equal(t, 0.1, top.NormalizedScore)
	assert.False(t, result.AutoAssigned)
	assert.Contains(t, result.Evidence, EvidenceNoMatch)

	require.GreaterOrEqual(t, len(result.Predictions), 3)
	for _, alt := range result.Predictions[1:] {
		assert.Equal(t, 0.05, alt.NormalizedScore)
		assert.NotEqual(t, catalog.FallbackTypeCode, alt.TypeCode)
	}
}

func TestClassifyFallbackOnEmptyCatalog(t *testing.T) {
	snap := buildSnapshot(t, nil, nil)

	result := Classify(Input{Filename: "a.pdf", Context: catalog.ContextGlobal}, snap)

	require.NotNil(t, result.Top())
	assert.Equal(t, catalog.FallbackTypeCode, result.Top().TypeCode)
	assert.False(t, result.AutoAssigned)
	assert.GreaterOrEqual(t, len(result.Predictions), 3)
}

func TestClassifyLockRuleDominates(t *testing.T) {
	snap := buildSnapshot(t, []catalog.DocumentType{
		{
			Code:                "PAYSLIP",
			IsActive:            true,
			Order:               1,
			AutoAssignThreshold: 0.7,
			Rules: []catalog.SuggestionRule{
				{Pattern: `bulletin.*paie`, Weight: 1, Lock: true},
			},
		},
		{
			Code:                "CONTRACT",
			IsActive:            true,
			Order:               2,
			AutoAssignThreshold: 0.7,
			Keywords:            []catalog.Keyword{{Term: "bulletin", Weight: 50}},
		},
	}, nil)

	result := Classify(Input{
		Filename: "bulletin_de_paie_mars.pdf",
		Context:  catalog.ContextTenant,
		Text:     "bulletin de salaire",
	}, snap)

	require.Equal(t, "PAYSLIP", result.Top().TypeCode)
	assert.True(t, result.AutoAssigned)
	assert.Contains(t, result.Evidence, "rule:lock")
}

func TestClassifyContextScopedKeyword(t *testing.T) {
	leaseOnly := catalog.ContextLease
	snap := buildSnapshot(t, []catalog.DocumentType{
		{
			Code:                "RENT_RECEIPT",
			IsActive:            true,
			AutoAssignThreshold: 0.7,
			Keywords: []catalog.Keyword{
				{Term: "quittance", Weight: 8, Context: &leaseOnly},
			},
		},
	}, nil)

	in := Input{Filename: "doc.pdf", Text: "quittance de loyer"}

	in.Context = catalog.ContextLease
	leaseResult := Classify(in, snap)
	assert.Equal(t, "RENT_RECEIPT", leaseResult.Top().TypeCode)

	in.Context = catalog.ContextTransaction
	txResult := Classify(in, snap)
	assert.Equal(t, catalog.FallbackTypeCode, txResult.Top().TypeCode)
}

func TestClassifySignalContributes(t *testing.T) {
	snap := buildSnapshot(t,
		[]catalog.DocumentType{
			{
				Code:                "BANK_DETAILS",
				IsActive:            true,
				AutoAssignThreshold: 0.7,
				Signals: []catalog.SignalRef{
					{Code: "IBAN", Weight: 4, Enabled: true},
				},
			},
		},
		[]catalog.Signal{
			{Code: "IBAN", Pattern: `[A-Z]{2}[0-9]{2}[A-Z0-9]{11,30}`},
		},
	)

	result := Classify(Input{
		Filename: "rib.pdf",
		Context:  catalog.ContextTenant,
		Text:     "IBAN FR7630006000011234567890189",
	}, snap)

	top := result.Top()
	require.Equal(t, "BANK_DETAILS", top.TypeCode)
	assert.Contains(t, top.MatchedSignals, "IBAN")
	assert.Contains(t, result.Evidence, "signal:IBAN")
}

func TestClassifyDisabledSignalIgnored(t *testing.T) {
	snap := buildSnapshot(t,
		[]catalog.DocumentType{
			{
				Code:                "BANK_DETAILS",
				IsActive:            true,
				AutoAssignThreshold: 0.7,
				Signals: []catalog.SignalRef{
					{Code: "IBAN", Weight: 4, Enabled: false},
				},
			},
		},
		[]catalog.Signal{
			{Code: "IBAN", Pattern: `[A-Z]{2}[0-9]{2}[A-Z0-9]{11,30}`},
		},
	)

	result := Classify(Input{
		Filename: "rib.pdf",
		Context:  catalog.ContextTenant,
		Text:     "IBAN FR7630006000011234567890189",
	}, snap)

	assert.Equal(t, catalog.FallbackTypeCode, result.Top().TypeCode)
}

func TestClassifyContextPrior(t *testing.T) {
	snap := rentReceiptCatalog(t)

	// Nothing matches, but RENT_RECEIPT is the lease-context default and
	// outranks types with no standing at all.
	result := Classify(Input{
		Filename: "scan001.pdf",
		Context:  catalog.ContextLease,
		Text:     "illisible",
	}, snap)

	assert.Equal(t, "RENT_RECEIPT", result.Top().TypeCode)
}

func TestClassifyRuleMimeConstraint(t *testing.T) {
	snap := buildSnapshot(t, []catalog.DocumentType{
		{
			Code:                "RENT_RECEIPT",
			IsActive:            true,
			AutoAssignThreshold: 0.7,
			Rules: []catalog.SuggestionRule{
				{Pattern: "quittance", MimeIn: []string{"application/pdf"}, Weight: 3},
			},
		},
	}, nil)

	in := Input{Filename: "quittance.pdf", Context: catalog.ContextLease}

	in.Mime = "application/pdf"
	pdfResult := Classify(in, snap)
	assert.Equal(t, "RENT_RECEIPT", pdfResult.Top().TypeCode)

	in.Mime = "image/png"
	pngResult := Classify(in, snap)
	assert.Equal(t, catalog.FallbackTypeCode, pngResult.Top().TypeCode)
}
