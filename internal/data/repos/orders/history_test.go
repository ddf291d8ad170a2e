package orders

import (
	"context"
	"testing"
	"time"

	"gorm.io/datatypes"

	"github.com/Spirits-Studio/zakeke-lite/internal/data/repos/testutil"
	domain "github.com/Spirits-Studio/zakeke-lite/internal/domain/configurator"
	"github.com/Spirits-Studio/zakeke-lite/internal/pkg/dbctx"
)

func TestHistoryRepoSnapshots(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewHistoryRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	sid := "history-" + time.Now().Format("150405.000000")
	if _, err := repo.CreateSnapshot(dbc, &domain.OrderSnapshotRecord{SessionID: ""}); err == nil {
		t.Fatalf("expected error without session id")
	}

	price := 41.95
	first, err := repo.CreateSnapshot(dbc, &domain.OrderSnapshotRecord{
		SessionID: sid, OrderKey: "1|2|3", SKU: "SS-GIN-70", BottleSlug: "antica", Price: &price,
		Snapshot:  datatypes.JSON([]byte(`{"bottleSlug":"antica"}`)),
		CreatedAt: time.Now().Add(-time.Minute),
	})
	if err != nil {
		t.Fatalf("CreateSnapshot: %v", err)
	}
	if _, err := repo.CreateSnapshot(dbc, &domain.OrderSnapshotRecord{
		SessionID: sid, OrderKey: "9|2|3", SKU: "SS-GIN-70", BottleSlug: "polo", Valid: true,
		Snapshot: datatypes.JSON([]byte(`{"bottleSlug":"polo"}`)),
	}); err != nil {
		t.Fatalf("CreateSnapshot: %v", err)
	}

	latest, err := repo.LatestSnapshot(dbc, sid)
	if err != nil {
		t.Fatalf("LatestSnapshot: %v", err)
	}
	if latest == nil || latest.BottleSlug != "polo" || !latest.Valid {
		t.Fatalf("unexpected latest snapshot: %+v", latest)
	}

	list, err := repo.ListSnapshots(dbc, sid, 10)
	if err != nil {
		t.Fatalf("ListSnapshots: %v", err)
	}
	if len(list) != 2 || list[1].ID != first.ID {
		t.Fatalf("expected newest first, got %d records", len(list))
	}

	none, err := repo.LatestSnapshot(dbc, sid+"-missing")
	if err != nil || none != nil {
		t.Fatalf("expected nil for unknown session, got %+v %v", none, err)
	}
}

func TestHistoryRepoIntents(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewHistoryRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	sid := "intents-" + time.Now().Format("150405.000000")
	for _, side := range []string{"front", "back"} {
		if _, err := repo.CreateIntent(dbc, &domain.UploadIntentRecord{
			SessionID:    sid,
			DesignSide:   side,
			DesignExport: datatypes.JSON([]byte(`{"id":"` + side + `"}`)),
		}); err != nil {
			t.Fatalf("CreateIntent: %v", err)
		}
	}
	got, err := repo.ListIntents(dbc, sid)
	if err != nil {
		t.Fatalf("ListIntents: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 intents, got %d", len(got))
	}
}

func TestHistoryRepoLatestFromSeed(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewHistoryRepo(db, testutil.Logger(t))
	ctx := context.Background()

	sid := "seed-" + time.Now().Format("150405.000000")
	seeded := testutil.SeedSnapshot(t, ctx, tx, sid, domain.OrderSnapshot{SKU: "SS-GIN-70", BottleSlug: "outlaw"})

	got, err := repo.LatestSnapshot(dbctx.Context{Ctx: ctx, Tx: tx}, sid)
	if err != nil {
		t.Fatalf("LatestSnapshot: %v", err)
	}
	if got == nil || got.ID != seeded.ID {
		t.Fatalf("expected seeded record, got %+v", got)
	}
}
