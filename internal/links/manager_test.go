package links

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePort struct {
	rows []Link
}

func (f *fakePort) FindLink(_ context.Context, documentID uuid.UUID, linkedType Type, linkedID uuid.UUID) (bool, error) {
	for _, row := range f.rows {
		if row.DocumentID == documentID && row.LinkedType == linkedType && row.LinkedID == linkedID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePort) FindByDocument(_ context.Context, documentID uuid.UUID) ([]Link, error) {
	var out []Link
	for _, row := range f.rows {
		if row.DocumentID == documentID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakePort) Insert(_ context.Context, link Link) error {
	f.rows = append(f.rows, link)
	return nil
}

func newTestManager() (*Manager, *fakePort) {
	port := &fakePort{}
	return NewManager(port, slog.New(slog.DiscardHandler)), port
}

func TestCreateLinksIncludesGlobal(t *testing.T) {
	mgr, port := newTestManager()
	docID := uuid.New()
	propertyID := uuid.New()

	created, err := mgr.CreateLinks(context.Background(), docID, Target{PropertyID: &propertyID})
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	types := make(map[Type]uuid.UUID)
	for _, row := range port.rows {
		types[row.LinkedType] = row.LinkedID
	}
	assert.Equal(t, uuid.Nil, types[TypeGlobal])
	assert.Equal(t, propertyID, types[TypeProperty])
}

func TestCreateLinksIdempotentRepeat(t *testing.T) {
	mgr, port := newTestManager()
	docID := uuid.New()
	propertyID := uuid.New()
	leaseID := uuid.New()
	target := Target{PropertyID: &propertyID, LeaseID: &leaseID}

	created, err := mgr.CreateLinks(context.Background(), docID, target)
	require.NoError(t, err)
	require.Equal(t, 3, created)

	created, err = mgr.CreateLinks(context.Background(), docID, target)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.Len(t, port.rows, 3)
}

func TestCreateLinksPartialOverlap(t *testing.T) {
	mgr, _ := newTestManager()
	docID := uuid.New()
	propertyID := uuid.New()
	tenantID := uuid.New()

	created, err := mgr.CreateLinks(context.Background(), docID, Target{PropertyID: &propertyID})
	require.NoError(t, err)
	require.Equal(t, 2, created)

	created, err = mgr.CreateLinks(context.Background(), docID, Target{
		PropertyID: &propertyID,
		TenantID:   &tenantID,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, created, "only the tenant link is new")
}

func TestCreateLinksPropertyConflict(t *testing.T) {
	mgr, port := newTestManager()
	docID := uuid.New()
	first := uuid.New()
	second := uuid.New()

	_, err := mgr.CreateLinks(context.Background(), docID, Target{PropertyID: &first})
	require.NoError(t, err)

	created, err := mgr.CreateLinks(context.Background(), docID, Target{PropertyID: &second})
	assert.ErrorIs(t, err, ErrContextConflictProperty)
	assert.Equal(t, 0, created)
	assert.Len(t, port.rows, 2, "conflict rejected before any write")
}

func TestCreateLinksLeaseConflict(t *testing.T) {
	mgr, _ := newTestManager()
	docID := uuid.New()
	first := uuid.New()
	second := uuid.New()

	_, err := mgr.CreateLinks(context.Background(), docID, Target{LeaseID: &first})
	require.NoError(t, err)

	_, err = mgr.CreateLinks(context.Background(), docID, Target{LeaseID: &second})
	assert.ErrorIs(t, err, ErrContextConflictLease)
}

func TestCreateLinksConflictThenSameEntity(t *testing.T) {
	mgr, _ := newTestManager()
	docID := uuid.New()
	propertyID := uuid.New()
	other := uuid.New()

	_, err := mgr.CreateLinks(context.Background(), docID, Target{PropertyID: &propertyID})
	require.NoError(t, err)

	_, err = mgr.CreateLinks(context.Background(), docID, Target{PropertyID: &other})
	require.ErrorIs(t, err, ErrContextConflictProperty)

	created, err := mgr.CreateLinks(context.Background(), docID, Target{PropertyID: &propertyID})
	require.NoError(t, err)
	assert.Equal(t, 0, created, "re-link to same property stays idempotent after a rejected conflict")
}

func TestCreateLinksGlobalOnly(t *testing.T) {
	mgr, port := newTestManager()
	docID := uuid.New()

	created, err := mgr.CreateLinks(context.Background(), docID, Target{})
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	require.Len(t, port.rows, 1)
	assert.Equal(t, TypeGlobal, port.rows[0].LinkedType)
}

func TestParseType(t *testing.T) {
	for _, valid := range []string{"global", "property", "lease", "tenant", "transaction"} {
		parsed, err := ParseType(valid)
		require.NoError(t, err)
		assert.Equal(t, Type(valid), parsed)
	}

	_, err := ParseType("building")
	assert.True(t, errors.Is(err, ErrUnknownType))
}
