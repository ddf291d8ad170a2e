package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	domain "github.com/Spirits-Studio/zakeke-lite/internal/domain/configurator"
	"github.com/Spirits-Studio/zakeke-lite/internal/platform/logger"
)

const (
	DefaultOrderTTL = 24 * time.Hour
	defaultPrefix   = "zakeke:order"
)

// OrderStore keeps the shared order state in redis so any instance serving a session
// sees the same snapshot and label designs. Every write refreshes the session's TTL.
type OrderStore struct {
	rdb    *goredis.Client
	log    *logger.Logger
	ttl    time.Duration
	prefix string
}

func NewOrderStore(rdb *goredis.Client, baseLog *logger.Logger, ttl time.Duration) (*OrderStore, error) {
	if rdb == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	if ttl <= 0 {
		ttl = DefaultOrderTTL
	}
	return &OrderStore{
		rdb:    rdb,
		log:    baseLog.With("store", "RedisOrderStore"),
		ttl:    ttl,
		prefix: defaultPrefix,
	}, nil
}

func (s *OrderStore) snapshotKey(sid string) string { return s.prefix + ":" + sid + ":snapshot" }
func (s *OrderStore) intentsKey(sid string) string  { return s.prefix + ":" + sid + ":intents" }
func (s *OrderStore) designsKey(sid string) string  { return s.prefix + ":" + sid + ":designs" }

func (s *OrderStore) SetFromSelections(ctx context.Context, sessionID string, snap domain.OrderSnapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := s.rdb.Set(ctx, s.snapshotKey(sessionID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	return nil
}

// SetFromUploadDesign appends the intent and, for a recognised side, replaces that
// side's design export.
func (s *OrderStore) SetFromUploadDesign(ctx context.Context, sessionID string, intent domain.UploadIntent) error {
	raw, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("marshal intent: %w", err)
	}
	pipe := s.rdb.TxPipeline()
	pipe.RPush(ctx, s.intentsKey(sessionID), raw)
	pipe.Expire(ctx, s.intentsKey(sessionID), s.ttl)
	if side, ok := domain.ParseDesignSide(intent.DesignSide); ok {
		export, err := json.Marshal(intent.DesignExport)
		if err != nil {
			return fmt.Errorf("marshal design export: %w", err)
		}
		pipe.HSet(ctx, s.designsKey(sessionID), string(side), export)
		pipe.Expire(ctx, s.designsKey(sessionID), s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store upload intent: %w", err)
	}
	return nil
}

func (s *OrderStore) LabelDesigns(ctx context.Context, sessionID string) (domain.LabelDesigns, error) {
	var out domain.LabelDesigns
	fields, err := s.rdb.HGetAll(ctx, s.designsKey(sessionID)).Result()
	if err != nil {
		return out, fmt.Errorf("load label designs: %w", err)
	}
	for side, raw := range fields {
		var export map[string]any
		if err := json.Unmarshal([]byte(raw), &export); err != nil {
			s.log.Warn("Skipping unreadable design export", "side", side, "error", err)
			continue
		}
		switch domain.DesignSide(side) {
		case domain.SideFront:
			out.Front = export
		case domain.SideBack:
			out.Back = export
		}
	}
	return out, nil
}

// Snapshot returns the last published snapshot; ok is false when none is stored.
func (s *OrderStore) Snapshot(ctx context.Context, sessionID string) (domain.OrderSnapshot, bool, error) {
	var snap domain.OrderSnapshot
	raw, err := s.rdb.Get(ctx, s.snapshotKey(sessionID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return snap, false, nil
	}
	if err != nil {
		return snap, false, fmt.Errorf("load snapshot: %w", err)
	}
	if err := json.Unmarshal(raw, &snap); err != nil {
		return snap, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, true, nil
}

func (s *OrderStore) Intents(ctx context.Context, sessionID string) ([]domain.UploadIntent, error) {
	items, err := s.rdb.LRange(ctx, s.intentsKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load intents: %w", err)
	}
	out := make([]domain.UploadIntent, 0, len(items))
	for _, raw := range items {
		var in domain.UploadIntent
		if err := json.Unmarshal([]byte(raw), &in); err != nil {
			s.log.Warn("Skipping unreadable upload intent", "error", err)
			continue
		}
		out = append(out, in)
	}
	return out, nil
}

func (s *OrderStore) Forget(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, s.snapshotKey(sessionID), s.intentsKey(sessionID), s.designsKey(sessionID)).Err()
}
