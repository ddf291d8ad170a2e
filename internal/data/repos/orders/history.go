package orders

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	domain "github.com/Spirits-Studio/zakeke-lite/internal/domain/configurator"
	"github.com/Spirits-Studio/zakeke-lite/internal/pkg/dbctx"
	"github.com/Spirits-Studio/zakeke-lite/internal/platform/logger"
)

const defaultListLimit = 50

type HistoryRepo interface {
	CreateSnapshot(dbc dbctx.Context, rec *domain.OrderSnapshotRecord) (*domain.OrderSnapshotRecord, error)
	CreateIntent(dbc dbctx.Context, rec *domain.UploadIntentRecord) (*domain.UploadIntentRecord, error)
	LatestSnapshot(dbc dbctx.Context, sessionID string) (*domain.OrderSnapshotRecord, error)
	ListSnapshots(dbc dbctx.Context, sessionID string, limit int) ([]*domain.OrderSnapshotRecord, error)
	ListIntents(dbc dbctx.Context, sessionID string) ([]*domain.UploadIntentRecord, error)
}

type historyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHistoryRepo(db *gorm.DB, baseLog *logger.Logger) HistoryRepo {
	return &historyRepo{
		db:  db,
		log: baseLog.With("repo", "OrderHistoryRepo"),
	}
}

func (r *historyRepo) CreateSnapshot(dbc dbctx.Context, rec *domain.OrderSnapshotRecord) (*domain.OrderSnapshotRecord, error) {
	if rec == nil || strings.TrimSpace(rec.SessionID) == "" {
		return nil, errors.New("snapshot record requires a session id")
	}
	if err := dbc.DB(r.db).Create(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *historyRepo) CreateIntent(dbc dbctx.Context, rec *domain.UploadIntentRecord) (*domain.UploadIntentRecord, error) {
	if rec == nil || strings.TrimSpace(rec.SessionID) == "" {
		return nil, errors.New("intent record requires a session id")
	}
	if err := dbc.DB(r.db).Create(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *historyRepo) LatestSnapshot(dbc dbctx.Context, sessionID string) (*domain.OrderSnapshotRecord, error) {
	if sessionID == "" {
		return nil, nil
	}
	var rec domain.OrderSnapshotRecord
	err := dbc.DB(r.db).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Limit(1).
		Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *historyRepo) ListSnapshots(dbc dbctx.Context, sessionID string, limit int) ([]*domain.OrderSnapshotRecord, error) {
	var out []*domain.OrderSnapshotRecord
	if sessionID == "" {
		return out, nil
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if err := dbc.DB(r.db).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *historyRepo) ListIntents(dbc dbctx.Context, sessionID string) ([]*domain.UploadIntentRecord, error) {
	var out []*domain.UploadIntentRecord
	if sessionID == "" {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
