package dedupflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proprio/docintake/internal/dedup"
)

var (
	tempFile     = FileMeta{Name: "quittance_juin.pdf", SizeBytes: 120_000, Checksum: "abc123"}
	existingFile = &FileMeta{ID: "7f0f2f9e", Name: "quittance_juin.pdf", Checksum: "abc123"}
)

func TestOrchestratePendingNotDuplicate(t *testing.T) {
	out, err := Orchestrate(Request{
		DuplicateStatus: dedup.NotDuplicate,
		Decision:        DecisionPending,
		TempFile:        tempFile,
	})
	require.NoError(t, err)
	assert.Equal(t, FlowUploadReview, out.Flow)
	assert.Equal(t, DecisionPending, out.Decision)
	assert.Equal(t, Flags{}, out.Flags)
	assert.Nil(t, out.UI)
	assert.Nil(t, out.API)
}

func TestOrchestrateDefaultsApplied(t *testing.T) {
	// Empty status and decision behave like not_duplicate and pending.
	out, err := Orchestrate(Request{TempFile: tempFile})
	require.NoError(t, err)
	assert.Equal(t, FlowUploadReview, out.Flow)
	assert.Equal(t, DecisionPending, out.Decision)
}

func TestOrchestratePendingDuplicateShowsDialog(t *testing.T) {
	for _, status := range []dedup.Classification{dedup.ExactDuplicate, dedup.ProbableDuplicate} {
		t.Run(string(status), func(t *testing.T) {
			out, err := Orchestrate(Request{
				DuplicateStatus: status,
				Decision:        DecisionPending,
				TempFile:        tempFile,
				ExistingFile:    existingFile,
			})
			require.NoError(t, err)
			assert.Equal(t, FlowDuplicateDetection, out.Flow)
			require.NotNil(t, out.UI)
			assert.Equal(t, "duplicate_dialog", out.UI.Kind)
			assert.Equal(t, tempFile, out.UI.Temp)
			assert.Equal(t, existingFile, out.UI.Existing)
			assert.Nil(t, out.API)
		})
	}
}

func TestOrchestrateCancel(t *testing.T) {
	out, err := Orchestrate(Request{
		DuplicateStatus: dedup.ExactDuplicate,
		Decision:        DecisionCancel,
		TempFile:        tempFile,
		ExistingFile:    existingFile,
	})
	require.NoError(t, err)
	assert.Equal(t, FlowCancelUpload, out.Flow)
	assert.True(t, out.Flags.DeleteTempFile)
	assert.False(t, out.Flags.ReplaceExisting)
	assert.Nil(t, out.API)
}

func TestOrchestrateReplace(t *testing.T) {
	out, err := Orchestrate(Request{
		DuplicateStatus: dedup.ExactDuplicate,
		Decision:        DecisionReplace,
		TempFile:        tempFile,
		ExistingFile:    existingFile,
	})
	require.NoError(t, err)
	assert.Equal(t, FlowReplaceDocument, out.Flow)
	assert.True(t, out.Flags.ReplaceExisting)
	assert.False(t, out.Flags.DeleteTempFile)
	require.NotNil(t, out.API)
	assert.Equal(t, "replace", out.API.Action)
	assert.Equal(t, existingFile.ID, out.API.ExistingID)
}

func TestOrchestrateKeepBoth(t *testing.T) {
	out, err := Orchestrate(Request{
		DuplicateStatus: dedup.ProbableDuplicate,
		Decision:        DecisionKeepBoth,
		TempFile:        tempFile,
		ExistingFile:    existingFile,
	})
	require.NoError(t, err)
	assert.Equal(t, FlowUploadReview, out.Flow)
	assert.True(t, out.Flags.KeepBoth)
	assert.False(t, out.Flags.DeleteTempFile)
	require.NotNil(t, out.API)
	assert.Equal(t, "finalize", out.API.Action)
	assert.Empty(t, out.API.ExistingID)
}

func TestOrchestrateLinkExisting(t *testing.T) {
	out, err := Orchestrate(Request{
		DuplicateStatus: dedup.ExactDuplicate,
		Decision:        DecisionLinkExisting,
		TempFile:        tempFile,
		ExistingFile:    existingFile,
	})
	require.NoError(t, err)
	assert.Equal(t, FlowLinkExisting, out.Flow)
	assert.True(t, out.Flags.DeleteTempFile)
	require.NotNil(t, out.API)
	assert.Equal(t, "link_existing", out.API.Action)
	assert.Equal(t, existingFile.ID, out.API.ExistingID)
}

func TestOrchestrateMissingExistingFile(t *testing.T) {
	for _, decision := range []Decision{DecisionReplace, DecisionLinkExisting} {
		t.Run(string(decision), func(t *testing.T) {
			_, err := Orchestrate(Request{
				DuplicateStatus: dedup.ExactDuplicate,
				Decision:        decision,
				TempFile:        tempFile,
			})
			assert.ErrorIs(t, err, ErrMissingExisting)

			_, err = Orchestrate(Request{
				DuplicateStatus: dedup.ExactDuplicate,
				Decision:        decision,
				TempFile:        tempFile,
				ExistingFile:    &FileMeta{Name: "no-id.pdf"},
			})
			assert.ErrorIs(t, err, ErrMissingExisting)
		})
	}
}

func TestOrchestrateUnknownDecision(t *testing.T) {
	_, err := Orchestrate(Request{
		DuplicateStatus: dedup.ExactDuplicate,
		Decision:        Decision("merge"),
		TempFile:        tempFile,
	})
	assert.ErrorIs(t, err, ErrUnknownDecision)
}

func TestOrchestrateEchoesInputs(t *testing.T) {
	out, err := Orchestrate(Request{
		DuplicateStatus: dedup.ProbableDuplicate,
		Decision:        DecisionReplace,
		TempFile:        tempFile,
		ExistingFile:    existingFile,
	})
	require.NoError(t, err)
	assert.Equal(t, dedup.ProbableDuplicate, out.DuplicateStatus)
	assert.Equal(t, DecisionReplace, out.Decision)
}
