package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "DATABASE_URL", "REDIS_URL", "LOCAL_STORE_DIR", "DEFAULT_OWNER",
		"SNAPSHOT_SCHEDULE", "REPORT_CURRENCY", "CACHE_TTL", "ANALYTICS_CACHE_TTL",
		"DB_MAX_RETRIES", "DB_RETRY_DELAY",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "default", cfg.Server.DefaultOwner)
	assert.Equal(t, defaultDatabaseURL, cfg.Database.URL)
	assert.Equal(t, 60, cfg.Database.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.Database.RetryDelay)
	assert.Equal(t, "redis:6379", cfg.Cache.RedisURL)
	assert.Equal(t, time.Minute, cfg.Cache.RecordTTL)
	assert.Equal(t, 5*time.Minute, cfg.Cache.AnalyticsTTL)
	assert.Equal(t, "./data", cfg.Store.LocalDir)
	assert.Equal(t, "@every 15m", cfg.Store.SnapshotSchedule)
	assert.Equal(t, "INR", cfg.Report.Currency)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DEFAULT_OWNER", "alice")
	t.Setenv("REPORT_CURRENCY", "usd")
	t.Setenv("CACHE_TTL", "10s")
	t.Setenv("DB_MAX_RETRIES", "3")
	t.Setenv("SNAPSHOT_SCHEDULE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "alice", cfg.Server.DefaultOwner)
	assert.Equal(t, "USD", cfg.Report.Currency)
	assert.Equal(t, 10*time.Second, cfg.Cache.RecordTTL)
	assert.Equal(t, 3, cfg.Database.MaxRetries)
	assert.Empty(t, cfg.Store.SnapshotSchedule, "set-but-empty disables the snapshot job")
}

func TestLoadInvalidValues(t *testing.T) {
	cases := map[string]string{
		"DB_MAX_RETRIES":      "lots",
		"DB_RETRY_DELAY":      "soon",
		"CACHE_TTL":           "-1s",
		"ANALYTICS_CACHE_TTL": "5 minutes",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestNormalizeDatabaseURL(t *testing.T) {
	tests := []struct{ in, want string }{
		{"postgresql://u:p@h:5432/db", "postgres://u:p@h:5432/db?sslmode=disable"},
		{"postgres://u:p@h/db?connect_timeout=5", "postgres://u:p@h/db?connect_timeout=5&sslmode=disable"},
		{"postgres://u:p@h/db?sslmode=require", "postgres://u:p@h/db?sslmode=require"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeDatabaseURL(tt.in))
	}
}
