package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	domain "github.com/Spirits-Studio/zakeke-lite/internal/domain/configurator"
	"github.com/Spirits-Studio/zakeke-lite/internal/modules/configurator"
	"github.com/Spirits-Studio/zakeke-lite/internal/pkg/dbctx"
	"github.com/Spirits-Studio/zakeke-lite/internal/platform/logger"
)

type fakeHistoryRepo struct {
	mu        sync.Mutex
	snapshots []*domain.OrderSnapshotRecord
	intents   []*domain.UploadIntentRecord
	fail      error
}

func (f *fakeHistoryRepo) CreateSnapshot(dbc dbctx.Context, rec *domain.OrderSnapshotRecord) (*domain.OrderSnapshotRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	f.snapshots = append(f.snapshots, rec)
	return rec, nil
}

func (f *fakeHistoryRepo) CreateIntent(dbc dbctx.Context, rec *domain.UploadIntentRecord) (*domain.UploadIntentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	f.intents = append(f.intents, rec)
	return rec, nil
}

func (f *fakeHistoryRepo) LatestSnapshot(dbc dbctx.Context, sessionID string) (*domain.OrderSnapshotRecord, error) {
	return nil, nil
}

func (f *fakeHistoryRepo) ListSnapshots(dbc dbctx.Context, sessionID string, limit int) ([]*domain.OrderSnapshotRecord, error) {
	return f.snapshots, nil
}

func (f *fakeHistoryRepo) ListIntents(dbc dbctx.Context, sessionID string) ([]*domain.UploadIntentRecord, error) {
	return f.intents, nil
}

func TestHistoryOrderStoreRecords(t *testing.T) {
	inner := configurator.NewMemoryOrderStore()
	repo := &fakeHistoryRepo{}
	h := NewHistoryOrderStore(inner, repo, logger.Nop())
	h.Track("s1", "gin-70cl")
	ctx := context.Background()

	snap := domain.OrderSnapshot{SKU: "SS-GIN-70", BottleSlug: "antica"}
	require.NoError(t, h.SetFromSelections(ctx, "s1", snap))
	got, ok := inner.Snapshot("s1")
	require.True(t, ok)
	require.Equal(t, "antica", got.BottleSlug)
	require.Len(t, repo.snapshots, 1)
	require.Equal(t, "gin-70cl", repo.snapshots[0].ProductCode)
	require.Equal(t, configurator.OrderKey(snap), repo.snapshots[0].OrderKey)

	require.NoError(t, h.SetFromUploadDesign(ctx, "s1", domain.UploadIntent{
		DesignSide:   "front",
		DesignExport: map[string]any{"id": "d1"},
		Order:        map[string]any{"bottle": "antica"},
	}))
	require.Len(t, repo.intents, 1)
	require.JSONEq(t, `{"id":"d1"}`, string(repo.intents[0].DesignExport))

	designs, err := h.LabelDesigns(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, "d1", *designs.FrontID())

	h.Untrack("s1")
	require.NoError(t, h.SetFromSelections(ctx, "s1", snap))
	require.Equal(t, "", repo.snapshots[1].ProductCode)
}

func TestHistoryOrderStoreIgnoresRepoFailures(t *testing.T) {
	inner := configurator.NewMemoryOrderStore()
	h := NewHistoryOrderStore(inner, &fakeHistoryRepo{fail: errors.New("db down")}, logger.Nop())
	ctx := context.Background()
	require.NoError(t, h.SetFromSelections(ctx, "s1", domain.OrderSnapshot{SKU: "x"}))
	_, ok := inner.Snapshot("s1")
	require.True(t, ok)
	require.NoError(t, h.SetFromUploadDesign(ctx, "s1", domain.UploadIntent{DesignSide: "back"}))
}
