package config

import (
	"os"
	"strconv"
)

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// MQConfig holds RabbitMQ settings.
type MQConfig struct {
	URL string `yaml:"url"`
}

// RedisConfig holds Redis settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port string `yaml:"port"`
}

// LedgerConfig holds penalty bookkeeping settings. PenaltyAmount is the
// fixed value charged per missed day and mirrored to the partner.
type LedgerConfig struct {
	PenaltyAmount int64 `yaml:"penalty_amount"`
}

// OtelConfig holds OpenTelemetry exporter settings.
type OtelConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// WorkerConfig holds background worker settings.
type WorkerConfig struct {
	WebhookURL string `yaml:"webhook_url"`
}

// OverrideDBFromEnv applies DB_* environment variables on top of the file config.
func OverrideDBFromEnv(cfg *DBConfig) {
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Port = p
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.Password = password
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Name = name
	}
}

// OverrideMQFromEnv applies MQ_URL on top of the file config.
func OverrideMQFromEnv(cfg *MQConfig) {
	if url := os.Getenv("MQ_URL"); url != "" {
		cfg.URL = url
	}
}

// OverrideRedisFromEnv applies REDIS_* environment variables.
func OverrideRedisFromEnv(cfg *RedisConfig) {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Password = password
	}
}

// OverrideJWTFromEnv applies JWT_SECRET.
func OverrideJWTFromEnv(cfg *JWTConfig) {
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.Secret = secret
	}
}

// OverrideServerFromEnv applies SERVER_PORT.
func OverrideServerFromEnv(cfg *ServerConfig) {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Port = port
	}
}

// OverrideLedgerFromEnv applies PENALTY_AMOUNT.
func OverrideLedgerFromEnv(cfg *LedgerConfig) {
	if amount := os.Getenv("PENALTY_AMOUNT"); amount != "" {
		if a, err := strconv.ParseInt(amount, 10, 64); err == nil && a > 0 {
			cfg.PenaltyAmount = a
		}
	}
}

// OverrideWorkerFromEnv applies WEBHOOK_URL.
func OverrideWorkerFromEnv(cfg *WorkerConfig) {
	if url := os.Getenv("WEBHOOK_URL"); url != "" {
		cfg.WebhookURL = url
	}
}
