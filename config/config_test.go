package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Defaults()
	cfg.Server.Addr = ""
	cfg.Database.Driver = "sqlite"
	cfg.Market.Provider = "alphavantage"
	cfg.Lock.Wait = Duration{}

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"server.addr", "database.driver", "market.api_key", "lock.ttl"} {
		assert.True(t, strings.Contains(err.Error(), want), "missing %q in %v", want, err)
	}
}

func TestLoadMergesFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level = "debug"

[server]
addr = ":9090"

[database]
driver = "memory"
host = "db.internal"

[market]
cache_ttl = "90s"

[lock]
wait = "2s"
`), 0o600))

	t.Setenv("DB_HOST", "override.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("ALPHA_VANTAGE_API_KEY", "secret")
	t.Setenv("PORTFOLIO_CORS_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, "override.internal", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "secret", cfg.Market.APIKey)
	assert.Equal(t, 90*time.Second, cfg.Market.CacheTTL.Duration)
	assert.Equal(t, 2*time.Second, cfg.Lock.Wait.Duration)
	assert.Equal(t, 10*time.Second, cfg.Lock.TTL.Duration)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults().Server.Addr, cfg.Server.Addr)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[lock]\nttl = \"soon\"\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestPostgresDSN(t *testing.T) {
	cfg := Defaults().Database
	cfg.Password = "pw"
	assert.Equal(t,
		"host=localhost user=postgres password=pw dbname=portfolio port=5432 sslmode=disable TimeZone=UTC",
		cfg.PostgresDSN())

	cfg.DSN = "postgres://u@h/db"
	assert.Equal(t, "postgres://u@h/db", cfg.PostgresDSN())
}
