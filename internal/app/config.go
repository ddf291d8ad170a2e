package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/Spirits-Studio/zakeke-lite/internal/observability"
)

type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	LogMode             string `env:"LOG_MODE" envDefault:"development"`
	LogRedactionEnabled bool   `env:"LOG_REDACTION_ENABLED" envDefault:"true"`
	LogHashSalt         string `env:"LOG_HASH_SALT"`

	// ParentOrigins is the storefront allow-list for both CORS and inbound messages.
	ParentOrigins []string `env:"PARENT_ORIGINS" envSeparator:"," envDefault:"https://create.spiritsstudio.co.uk,https://spiritsstudio.co.uk"`
	// PublicOrigin is this service's own origin, trusted only when ParentOrigins is empty.
	PublicOrigin string `env:"PUBLIC_ORIGIN"`
	CatalogPath  string `env:"CATALOG_PATH"`

	RedisAddr    string        `env:"REDIS_ADDR"`
	RedisChannel string        `env:"REDIS_CHANNEL" envDefault:"configurator:outbound"`
	OrderTTL     time.Duration `env:"ORDER_TTL" envDefault:"24h"`
	PostgresDSN  string        `env:"POSTGRES_DSN"`

	SessionSecret  string        `env:"SESSION_SECRET"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"12h"`
	SessionIdleTTL time.Duration `env:"SESSION_IDLE_TTL" envDefault:"2h"`
	SweepInterval  time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"1m"`
	SettleDelay    time.Duration `env:"SETTLE_DELAY" envDefault:"32ms"`
	WaitForSignals bool          `env:"WAIT_FOR_SIGNALS" envDefault:"false"`

	ImageFetchTimeout time.Duration `env:"IMAGE_FETCH_TIMEOUT" envDefault:"15s"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	Otel OtelEnv `envPrefix:"OTEL_"`
}

type OtelEnv struct {
	Enabled     bool    `env:"ENABLED"`
	ServiceName string  `env:"SERVICE_NAME" envDefault:"zakeke-lite"`
	Environment string  `env:"ENVIRONMENT"`
	Exporter    string  `env:"EXPORTER"`
	Endpoint    string  `env:"EXPORTER_OTLP_ENDPOINT"`
	Headers     string  `env:"EXPORTER_OTLP_HEADERS"`
	Insecure    bool    `env:"EXPORTER_OTLP_INSECURE"`
	SampleRatio float64 `env:"SAMPLER_RATIO" envDefault:"0.1"`
}

func (o OtelEnv) Config(version string) observability.OtelConfig {
	return observability.OtelConfig{
		Enabled:     o.Enabled,
		ServiceName: o.ServiceName,
		Environment: o.Environment,
		Version:     version,
		Exporter:    o.Exporter,
		Endpoint:    o.Endpoint,
		Headers:     observability.ParseHeaders(o.Headers),
		Insecure:    o.Insecure,
		SampleRatio: o.SampleRatio,
	}
}

// LoadConfig reads the process environment.
func LoadConfig() (Config, error) {
	return loadConfig(env.Options{})
}

func loadConfig(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.ParentOrigins = cleanOrigins(cfg.ParentOrigins)
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.HTTPAddr) == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	for name, d := range map[string]time.Duration{
		"SESSION_TTL":      c.SessionTTL,
		"SESSION_IDLE_TTL": c.SessionIdleTTL,
		"ORDER_TTL":        c.OrderTTL,
		"SHUTDOWN_TIMEOUT": c.ShutdownTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	if c.SettleDelay < 0 {
		return fmt.Errorf("SETTLE_DELAY must not be negative")
	}
	return nil
}

func cleanOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}
	for _, o := range in {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" {
			continue
		}
		if _, dup := seen[o]; dup {
			continue
		}
		seen[o] = struct{}{}
		out = append(out, o)
	}
	return out
}
