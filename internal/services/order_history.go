package services

import (
	"context"
	"encoding/json"
	"sync"

	"gorm.io/datatypes"

	"github.com/Spirits-Studio/zakeke-lite/internal/data/repos"
	domain "github.com/Spirits-Studio/zakeke-lite/internal/domain/configurator"
	"github.com/Spirits-Studio/zakeke-lite/internal/modules/configurator"
	"github.com/Spirits-Studio/zakeke-lite/internal/pkg/dbctx"
	"github.com/Spirits-Studio/zakeke-lite/internal/platform/logger"
)

// HistoryOrderStore writes through to the shared order store and appends every
// published snapshot and upload intent to the history repo. History writes never fail
// the caller.
type HistoryOrderStore struct {
	inner    configurator.OrderStore
	repo     repos.OrderHistoryRepo
	log      *logger.Logger
	products sync.Map
}

func NewHistoryOrderStore(inner configurator.OrderStore, repo repos.OrderHistoryRepo, baseLog *logger.Logger) *HistoryOrderStore {
	return &HistoryOrderStore{
		inner: inner,
		repo:  repo,
		log:   baseLog.With("service", "HistoryOrderStore"),
	}
}

// Track tags the session's records with productCode.
func (h *HistoryOrderStore) Track(sessionID, productCode string) { h.products.Store(sessionID, productCode) }

func (h *HistoryOrderStore) Untrack(sessionID string) { h.products.Delete(sessionID) }

func (h *HistoryOrderStore) productOf(sessionID string) string {
	if v, ok := h.products.Load(sessionID); ok {
		return v.(string)
	}
	return ""
}

func (h *HistoryOrderStore) SetFromSelections(ctx context.Context, sessionID string, snap domain.OrderSnapshot) error {
	if err := h.inner.SetFromSelections(ctx, sessionID, snap); err != nil {
		return err
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		h.log.Warn("Encode snapshot for history failed", "session", sessionID, "error", err)
		return nil
	}
	if _, err := h.repo.CreateSnapshot(dbctx.From(ctx), &domain.OrderSnapshotRecord{
		SessionID:   sessionID,
		ProductCode: h.productOf(sessionID),
		OrderKey:    configurator.OrderKey(snap),
		SKU:         snap.SKU,
		BottleSlug:  snap.BottleSlug,
		Price:       snap.Price,
		Valid:       snap.Valid,
		Snapshot:    datatypes.JSON(raw),
	}); err != nil {
		h.log.Warn("Record snapshot history failed", "session", sessionID, "error", err)
	}
	return nil
}

func (h *HistoryOrderStore) SetFromUploadDesign(ctx context.Context, sessionID string, intent domain.UploadIntent) error {
	if err := h.inner.SetFromUploadDesign(ctx, sessionID, intent); err != nil {
		return err
	}
	rec := &domain.UploadIntentRecord{SessionID: sessionID, DesignSide: intent.DesignSide}
	if raw, err := json.Marshal(intent.DesignExport); err == nil {
		rec.DesignExport = datatypes.JSON(raw)
	}
	if intent.Order != nil {
		if raw, err := json.Marshal(intent.Order); err == nil {
			rec.Order = datatypes.JSON(raw)
		}
	}
	if _, err := h.repo.CreateIntent(dbctx.From(ctx), rec); err != nil {
		h.log.Warn("Record upload intent history failed", "session", sessionID, "error", err)
	}
	return nil
}

func (h *HistoryOrderStore) LabelDesigns(ctx context.Context, sessionID string) (domain.LabelDesigns, error) {
	return h.inner.LabelDesigns(ctx, sessionID)
}
