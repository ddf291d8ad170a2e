package testutil

import (
	"context"
	"encoding/json"
	"testing"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	domain "github.com/Spirits-Studio/zakeke-lite/internal/domain/configurator"
)

// SeedSnapshot inserts a snapshot record for sessionID built from snap.
func SeedSnapshot(tb testing.TB, ctx context.Context, tx *gorm.DB, sessionID string, snap domain.OrderSnapshot) *domain.OrderSnapshotRecord {
	tb.Helper()
	raw, err := json.Marshal(snap)
	if err != nil {
		tb.Fatalf("marshal snapshot: %v", err)
	}
	rec := &domain.OrderSnapshotRecord{
		SessionID:  sessionID,
		OrderKey:   snap.BottleSlug,
		SKU:        snap.SKU,
		BottleSlug: snap.BottleSlug,
		Price:      snap.Price,
		Valid:      snap.Valid,
		Snapshot:   datatypes.JSON(raw),
	}
	if err := tx.WithContext(ctx).Create(rec).Error; err != nil {
		tb.Fatalf("seed snapshot: %v", err)
	}
	return rec
}
