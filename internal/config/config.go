package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	pkgconfig "habitpact/pkg/config"
)

// Config is the full typed configuration shared by the API and the worker.
type Config struct {
	Server pkgconfig.ServerConfig `yaml:"server"`
	DB     pkgconfig.DBConfig     `yaml:"db"`
	MQ     pkgconfig.MQConfig     `yaml:"mq"`
	Redis  pkgconfig.RedisConfig  `yaml:"redis"`
	JWT    pkgconfig.JWTConfig    `yaml:"jwt"`
	Ledger pkgconfig.LedgerConfig `yaml:"ledger"`
	Otel   pkgconfig.OtelConfig   `yaml:"otel"`
	Worker pkgconfig.WorkerConfig `yaml:"worker"`
}

// Load reads the layered YAML config and applies environment overrides.
func Load() (*Config, error) {
	env := pkgconfig.GetConfigEnv()
	configDir := pkgconfig.GetEnv("CONFIG_DIR", "config")

	merged, err := pkgconfig.LoadConfig(env, configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	data, err := yaml.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	pkgconfig.OverrideServerFromEnv(&cfg.Server)
	pkgconfig.OverrideDBFromEnv(&cfg.DB)
	pkgconfig.OverrideMQFromEnv(&cfg.MQ)
	pkgconfig.OverrideRedisFromEnv(&cfg.Redis)
	pkgconfig.OverrideJWTFromEnv(&cfg.JWT)
	pkgconfig.OverrideLedgerFromEnv(&cfg.Ledger)
	pkgconfig.OverrideWorkerFromEnv(&cfg.Worker)

	if cfg.Ledger.PenaltyAmount <= 0 {
		cfg.Ledger.PenaltyAmount = 50
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}

	return &cfg, nil
}
