package app

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(env.Options{Environment: map[string]string{}})
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, []string{"https://create.spiritsstudio.co.uk", "https://spiritsstudio.co.uk"}, cfg.ParentOrigins)
	require.Equal(t, 32*time.Millisecond, cfg.SettleDelay)
	require.Equal(t, 24*time.Hour, cfg.OrderTTL)
	require.Equal(t, "configurator:outbound", cfg.RedisChannel)
	require.True(t, cfg.LogRedactionEnabled)
	require.False(t, cfg.Otel.Enabled)
	require.Equal(t, "zakeke-lite", cfg.Otel.ServiceName)
}

func TestLoadConfigOverrides(t *testing.T) {
	cfg, err := loadConfig(env.Options{Environment: map[string]string{
		"HTTP_ADDR":                   ":9090",
		"PARENT_ORIGINS":              " https://a.example/ ,https://a.example,,https://b.example",
		"REDIS_ADDR":                  "localhost:6379",
		"SESSION_TTL":                 "30m",
		"SETTLE_DELAY":                "0s",
		"OTEL_ENABLED":                "true",
		"OTEL_EXPORTER_OTLP_ENDPOINT": "collector:4318",
		"OTEL_EXPORTER_OTLP_HEADERS":  "api-key=abc",
	}})
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddr)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.ParentOrigins)
	require.Equal(t, "localhost:6379", cfg.RedisAddr)
	require.Equal(t, 30*time.Minute, cfg.SessionTTL)
	require.Zero(t, cfg.SettleDelay)

	otelCfg := cfg.Otel.Config("v1")
	require.True(t, otelCfg.Enabled)
	require.Equal(t, "collector:4318", otelCfg.Endpoint)
	require.Equal(t, map[string]string{"api-key": "abc"}, otelCfg.Headers)
	require.Equal(t, "v1", otelCfg.Version)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	_, err := loadConfig(env.Options{Environment: map[string]string{"SESSION_TTL": "0s"}})
	require.Error(t, err)
	_, err = loadConfig(env.Options{Environment: map[string]string{"SETTLE_DELAY": "-1s"}})
	require.Error(t, err)
	_, err = loadConfig(env.Options{Environment: map[string]string{"ORDER_TTL": "soon"}})
	require.Error(t, err)
}
