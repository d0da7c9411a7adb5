package dedup

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{"identical", "quittance de loyer juin", "quittance de loyer juin", 1},
		{"disjoint", "quittance loyer", "facture electricite", 0},
		{"both empty", "", "", 0},
		{"one empty", "quittance", "", 0},
		{"punctuation only", "--- ,,, !!!", "quittance", 0},
		{"case and punctuation ignored", "Quittance, de LOYER.", "quittance de loyer", 1},
		{"accented tokens survive", "reçu émis", "reçu émis", 1},
		{"half overlap", "a b c d", "c d e f", 1.0 / 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Similarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestSimilaritySymmetric(t *testing.T) {
	a := "quittance de loyer pour le mois de juin deux mille vingt six"
	b := "quittance loyer mois juin vingt six signature"
	assert.Equal(t, Similarity(a, b), Similarity(b, a))
}

type fakeSource struct {
	candidates []Candidate
	err        error
}

func (f *fakeSource) FindDuplicateCandidates(_ context.Context, _ uuid.UUID) ([]Candidate, error) {
	return f.candidates, f.err
}

func newDetector(candidates ...Candidate) *Detector {
	return NewDetector(
		&fakeSource{candidates: candidates},
		slog.New(slog.DiscardHandler),
	)
}

func TestDetectExactDuplicate(t *testing.T) {
	existing := Candidate{
		ID:       uuid.New(),
		Filename: "quittance_juin.pdf",
		Checksum: "abc123",
	}
	detector := newDetector(existing)

	match, err := detector.Detect(context.Background(), "abc123", "", uuid.New())
	require.NoError(t, err)
	assert.Equal(t, ExactDuplicate, match.Classification)
	require.NotNil(t, match.Document)
	assert.Equal(t, existing.ID, match.Document.ID)
	assert.Equal(t, 1.0, match.Similarity)
}

func TestDetectChecksumWinsOverSimilarity(t *testing.T) {
	text := "quittance de loyer juin"
	similar := Candidate{ID: uuid.New(), Checksum: "other", ExtractedText: text}
	exact := Candidate{ID: uuid.New(), Checksum: "abc123", ExtractedText: "unrelated words entirely"}
	detector := newDetector(similar, exact)

	match, err := detector.Detect(context.Background(), "abc123", text, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, ExactDuplicate, match.Classification)
	assert.Equal(t, exact.ID, match.Document.ID)
}

func TestDetectProbableDuplicate(t *testing.T) {
	base := "quittance de loyer pour le mois de juin montant sept cents euros"
	existing := Candidate{ID: uuid.New(), Checksum: "other", ExtractedText: base}
	detector := newDetector(existing)

	// Same document re-scanned with one OCR artifact.
	rescanned := base + " x"
	match, err := detector.Detect(context.Background(), "abc123", rescanned, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, ProbableDuplicate, match.Classification)
	require.NotNil(t, match.Document)
	assert.Equal(t, existing.ID, match.Document.ID)
	assert.GreaterOrEqual(t, match.Similarity, SimilarityThreshold)
}

func TestDetectBelowThresholdNotDuplicate(t *testing.T) {
	existing := Candidate{
		ID:            uuid.New(),
		Checksum:      "other",
		ExtractedText: "quittance de loyer pour le mois de mai",
	}
	detector := newDetector(existing)

	match, err := detector.Detect(
		context.Background(),
		"abc123",
		"facture electricite du fournisseur pour la residence",
		uuid.New(),
	)
	require.NoError(t, err)
	assert.Equal(t, NotDuplicate, match.Classification)
	assert.Nil(t, match.Document)
}

func TestDetectEmptyTextNeverProbable(t *testing.T) {
	existing := Candidate{ID: uuid.New(), Checksum: "other", ExtractedText: ""}
	detector := newDetector(existing)

	match, err := detector.Detect(context.Background(), "abc123", "", uuid.New())
	require.NoError(t, err)
	assert.Equal(t, NotDuplicate, match.Classification)
}

func TestDetectSkipsCandidatesWithoutText(t *testing.T) {
	text := "quittance de loyer juin"
	blank := Candidate{ID: uuid.New(), Checksum: "a", ExtractedText: ""}
	filled := Candidate{ID: uuid.New(), Checksum: "b", ExtractedText: text}
	detector := newDetector(blank, filled)

	match, err := detector.Detect(context.Background(), "c", text, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, ProbableDuplicate, match.Classification)
	assert.Equal(t, filled.ID, match.Document.ID)
}

func TestDetectDraftWithSameChecksumNotDuplicate(t *testing.T) {
	// A draft staged in a concurrent session may carry the same bytes as
	// the new upload; it is not yet a document and must not match.
	draft := Candidate{
		ID:       uuid.New(),
		Filename: "quittance_juin.pdf",
		Checksum: "abc123",
		Status:   "draft",
	}
	detector := newDetector(draft)

	match, err := detector.Detect(context.Background(), "abc123", "quittance de loyer", uuid.New())
	require.NoError(t, err)
	assert.Equal(t, NotDuplicate, match.Classification)
	assert.Nil(t, match.Document)
}

func TestDetectIneligibleCandidatesExcludedFromSimilarity(t *testing.T) {
	text := "quittance de loyer pour le mois de juin"
	draft := Candidate{ID: uuid.New(), Checksum: "a", Status: "draft", ExtractedText: text}
	deleted := Candidate{ID: uuid.New(), Checksum: "b", Status: "deleted", ExtractedText: text}
	active := Candidate{ID: uuid.New(), Checksum: "c", Status: StatusActive, ExtractedText: text}
	detector := newDetector(draft, deleted, active)

	match, err := detector.Detect(context.Background(), "d", text, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, ProbableDuplicate, match.Classification)
	assert.Equal(t, active.ID, match.Document.ID)
}

func TestDetectOnlyIneligibleCandidates(t *testing.T) {
	text := "quittance de loyer juin"
	draft := Candidate{ID: uuid.New(), Checksum: "abc123", Status: "draft", ExtractedText: text}
	detector := newDetector(draft)

	match, err := detector.Detect(context.Background(), "other", text, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, NotDuplicate, match.Classification)
}

func TestDetectEmptyPool(t *testing.T) {
	detector := newDetector()

	match, err := detector.Detect(context.Background(), "abc123", "quittance", uuid.New())
	require.NoError(t, err)
	assert.Equal(t, NotDuplicate, match.Classification)
}
