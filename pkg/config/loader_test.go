package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadConfig_MergesEnvOverBase(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", `
db:
  host: "postgres"
  port: 5432
server:
  port: "8080"
`)
	writeFile(t, dir, "dev.yaml", `
db:
  host: "localhost"
`)

	merged, err := LoadConfig("dev", dir)
	require.NoError(t, err)

	dbCfg, ok := merged["db"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "localhost", dbCfg["host"])
	assert.Equal(t, 5432, dbCfg["port"])

	serverCfg, ok := merged["server"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "8080", serverCfg["port"])
}

func TestLoadConfig_MissingEnvFileFallsBackToBase(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", `
server:
  port: "8080"
`)

	merged, err := LoadConfig("staging", dir)
	require.NoError(t, err)
	serverCfg := merged["server"].(map[string]interface{})
	assert.Equal(t, "8080", serverCfg["port"])
}

func TestLoadConfig_SubstitutesSecrets(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", `
jwt:
  secret: "${JWT_SECRET}"
`)
	writeFile(t, dir, "secrets.env", `
# local secrets
JWT_SECRET="s3cret"
`)

	merged, err := LoadConfig("base", dir)
	require.NoError(t, err)
	jwtCfg := merged["jwt"].(map[string]interface{})
	assert.Equal(t, "s3cret", jwtCfg["secret"])
}

func TestLoadConfig_MissingBaseFails(t *testing.T) {
	_, err := LoadConfig("dev", t.TempDir())
	assert.Error(t, err)
}

func TestOverrideDBFromEnv(t *testing.T) {
	t.Setenv("DB_HOST", "override-host")
	t.Setenv("DB_PORT", "5433")

	cfg := DBConfig{Host: "postgres", Port: 5432, User: "u"}
	OverrideDBFromEnv(&cfg)

	assert.Equal(t, "override-host", cfg.Host)
	assert.Equal(t, 5433, cfg.Port)
	assert.Equal(t, "u", cfg.User)
}

func TestOverrideLedgerFromEnv(t *testing.T) {
	cfg := LedgerConfig{PenaltyAmount: 50}

	t.Setenv("PENALTY_AMOUNT", "not-a-number")
	OverrideLedgerFromEnv(&cfg)
	assert.Equal(t, int64(50), cfg.PenaltyAmount)

	t.Setenv("PENALTY_AMOUNT", "-5")
	OverrideLedgerFromEnv(&cfg)
	assert.Equal(t, int64(50), cfg.PenaltyAmount)

	t.Setenv("PENALTY_AMOUNT", "75")
	OverrideLedgerFromEnv(&cfg)
	assert.Equal(t, int64(75), cfg.PenaltyAmount)
}

func TestGetConfigEnv(t *testing.T) {
	t.Setenv("CONFIG_ENV", "")
	assert.Equal(t, "local", GetConfigEnv())

	t.Setenv("CONFIG_ENV", "prod")
	assert.Equal(t, "prod", GetConfigEnv())
}
