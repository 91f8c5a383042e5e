package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
)

const envPrefix = "RELAY_"

// WebhookURLVars are the variables the webhook destination is read from, in priority order.
var WebhookURLVars = []string{"N8N_WEBHOOK_URL", "WEBHOOK_URL"}

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type Config struct {
	Primary   Primary         `koanf:"primary"`
	Server    ServerConfig    `koanf:"server"`
	Store     StoreConfig     `koanf:"store"`
	Database  DatabaseConfig  `koanf:"database" validate:"-"`
	Redis     RedisConfig     `koanf:"redis" validate:"-"`
	Webhook   WebhookConfig   `koanf:"webhook"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Logger    LoggerConfig    `koanf:"logger"`
	Worker    WorkerConfig    `koanf:"worker"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

type ServerConfig struct {
	Port           string        `koanf:"port" validate:"required"`
	ReadTimeout    time.Duration `koanf:"read_timeout" validate:"required"`
	WriteTimeout   time.Duration `koanf:"write_timeout" validate:"required"`
	IdleTimeout    time.Duration `koanf:"idle_timeout" validate:"required"`
	RequestTimeout time.Duration `koanf:"request_timeout" validate:"required"`
	CORSOrigins    []string      `koanf:"cors_origins"`
}

type StoreConfig struct {
	Backend string `koanf:"backend" validate:"required,oneof=memory postgres redis"`
}

type DatabaseConfig struct {
	Host            string        `koanf:"host" validate:"required"`
	Port            int           `koanf:"port" validate:"required"`
	User            string        `koanf:"user" validate:"required"`
	Password        string        `koanf:"password" validate:"required"`
	Name            string        `koanf:"name" validate:"required"`
	SSLMode         string        `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int           `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int           `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time" validate:"required"`
	ApplicationName string        `koanf:"application_name"`
}

type RedisConfig struct {
	Addr      string `koanf:"addr" validate:"required"`
	Password  string `koanf:"password"`
	DB        int    `koanf:"db" validate:"min=0"`
	KeyPrefix string `koanf:"key_prefix" validate:"required"`
}

// WebhookConfig describes the outbound call. URL is not read from the RELAY_
// namespace; see WebhookURLVars.
type WebhookConfig struct {
	URL     string        `koanf:"-"`
	Timeout time.Duration `koanf:"timeout" validate:"required"`
}

type RateLimitConfig struct {
	RPS                float64 `koanf:"rps" validate:"min=0"`
	Burst              int     `koanf:"burst" validate:"min=0"`
	TrustXForwardedFor bool    `koanf:"trust_x_forwarded_for"`
}

type WorkerConfig struct {
	Interval     time.Duration `koanf:"interval" validate:"required"`
	StaleAfter   time.Duration `koanf:"stale_after" validate:"required"`
	ReportSample int           `koanf:"report_sample" validate:"min=0"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"primary.env":                 "development",
		"server.port":                 "5000",
		"server.read_timeout":         "15s",
		"server.write_timeout":        "45s",
		"server.idle_timeout":         "60s",
		"server.request_timeout":      "40s",
		"store.backend":               BackendMemory,
		"database.host":               "localhost",
		"database.port":               5432,
		"database.ssl_mode":           "disable",
		"database.max_open_conns":     10,
		"database.max_idle_conns":     2,
		"database.conn_max_lifetime":  "1h",
		"database.conn_max_idle_time": "30m",
		"database.application_name":   "consultation-relay",
		"redis.addr":                  "localhost:6379",
		"redis.key_prefix":            "consultation",
		"webhook.timeout":             "30s",
		"rate_limit.rps":              5,
		"rate_limit.burst":            10,
		"logger.level":                "info",
		"logger.format":               "text",
		"worker.interval":             "1m",
		"worker.stale_after":          "5m",
		"worker.report_sample":        10,
	}
}

// LoadConfig reads configuration from the environment (and a .env file when present).
// Keys use the RELAY_ prefix with "__" separating sections, e.g. RELAY_SERVER__PORT.
func LoadConfig() (*Config, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		logger.Error("failed to load default configuration", "error", err)
		return nil, err
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, envPrefix)),
			"__",
			".",
		)
	}), nil)
	if err != nil {
		logger.Error("failed to load environment variables", "error", err)
		return nil, err
	}

	mainConfig := &Config{}

	err = k.Unmarshal("", mainConfig)
	if err != nil {
		logger.Error("could not unmarshal main config", "error", err)
		return nil, err
	}

	mainConfig.Webhook.URL = ResolveWebhookURL(os.LookupEnv)

	if err := mainConfig.Validate(); err != nil {
		logger.Error("config validation failed", "error", err)
		return nil, err
	}

	return mainConfig, nil
}

// Validate checks the configuration, including the settings of the selected store backend.
func (c *Config) Validate() error {
	validate := validator.New()

	if err := validate.Struct(c); err != nil {
		return err
	}

	switch c.Store.Backend {
	case BackendPostgres:
		if err := validate.Struct(&c.Database); err != nil {
			return fmt.Errorf("database config: %w", err)
		}
	case BackendRedis:
		if err := validate.Struct(&c.Redis); err != nil {
			return fmt.Errorf("redis config: %w", err)
		}
	}

	// A webhook call must end inside the request deadline.
	if c.Webhook.Timeout >= c.Server.RequestTimeout {
		return fmt.Errorf("webhook.timeout (%s) must be shorter than server.request_timeout (%s)",
			c.Webhook.Timeout, c.Server.RequestTimeout)
	}

	return nil
}

// ResolveWebhookURL returns the first non-empty value among WebhookURLVars.
func ResolveWebhookURL(lookup func(string) (string, bool)) string {
	for _, name := range WebhookURLVars {
		if v, ok := lookup(name); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}
