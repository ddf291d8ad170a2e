package app

import (
	"context"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Spirits-Studio/zakeke-lite/internal/clients/redis"
	"github.com/Spirits-Studio/zakeke-lite/internal/data/db"
	"github.com/Spirits-Studio/zakeke-lite/internal/platform/logger"
	"github.com/Spirits-Studio/zakeke-lite/internal/realtime/bus"
)

// Clients holds the optional backing services. Each is nil when not configured.
type Clients struct {
	Redis    *goredis.Client
	SSEBus   bus.Bus
	Postgres *db.PostgresService
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	// Redis
	if addr := strings.TrimSpace(cfg.RedisAddr); addr != "" {
		rdb, err := redis.Connect(ctx, addr)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis: %w", err)
		}
		b, err := bus.NewRedisBusFromClient(log, rdb, cfg.RedisChannel)
		if err != nil {
			_ = rdb.Close()
			return Clients{}, fmt.Errorf("init redis SSE bus: %w", err)
		}
		out.Redis, out.SSEBus = rdb, b
	} else {
		log.Warn("REDIS_ADDR not set; order state and outbound messages stay in process")
	}

	// Postgres
	if dsn := strings.TrimSpace(cfg.PostgresDSN); dsn != "" {
		pg, err := db.NewPostgresService(log, dsn)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init postgres: %w", err)
		}
		out.Postgres = pg
	}

	return out, nil
}

func (c Clients) Close() {
	if c.SSEBus != nil {
		_ = c.SSEBus.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.Postgres != nil {
		_ = c.Postgres.Close()
	}
}
