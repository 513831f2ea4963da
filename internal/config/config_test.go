package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))
	return dir
}

func TestLoadConfigFrom_Defaults(t *testing.T) {
	dir := writeConfig(t, "server:\n  port: 9090\n")

	cfg, err := LoadConfigFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"localhost"}, cfg.Cassandra.Hosts)
	assert.Equal(t, "sports_analytics", cfg.Cassandra.Keyspace)
	assert.Equal(t, 5, cfg.Cassandra.ConnectRetries)
	assert.Equal(t, 5*time.Second, cfg.Cassandra.ConnectRetryDelay)
	assert.Equal(t, "team2", cfg.Analytics.TieRule)
	assert.Equal(t, "serpapi", cfg.Live.Source)
}

func TestLoadConfigFrom_EnvOverridesSecrets(t *testing.T) {
	dir := writeConfig(t, `
postgres:
  dsn: postgres://from-yaml
live:
  api_key: yaml-key
`)
	t.Setenv("SERPAPI_API_KEY", "env-key")
	t.Setenv("POSTGRES_DSN", "postgres://from-env")
	t.Setenv("CASSANDRA_HOSTS", "cass1,cass2")

	cfg, err := LoadConfigFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Live.APIKey)
	assert.Equal(t, "postgres://from-env", cfg.Postgres.DSN)
	assert.Equal(t, []string{"cass1", "cass2"}, cfg.Cassandra.Hosts)
}

func TestLoadConfigFrom_RejectsUnknownTieRule(t *testing.T) {
	dir := writeConfig(t, "analytics:\n  tie_rule: coinflip\n")

	_, err := LoadConfigFrom(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tie_rule")
}

func TestLoadConfigFrom_MissingFile(t *testing.T) {
	_, err := LoadConfigFrom(t.TempDir())
	require.Error(t, err)
}
