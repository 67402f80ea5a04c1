package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("ASSIGNMENT_MAX_CAS_RETRIES", "")
	t.Setenv("NOTIFY_ADMIN_EMAILS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, 3, cfg.Assignment.MaxCASRetries)
	assert.Equal(t, 5, cfg.Outbox.MaxAttempts)
	assert.Equal(t, 5*time.Second, cfg.Outbox.PollInterval())
	assert.Equal(t, 5*time.Minute, cfg.Outbox.Lease())
	assert.Equal(t, []string{"*"}, cfg.Realtime.AllowedOrigins)
	assert.Empty(t, cfg.Notification.AdminEmails)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_HOST", "127.0.0.1")
	t.Setenv("APP_PORT", "9000")
	t.Setenv("ASSIGNMENT_MAX_CAS_RETRIES", "7")
	t.Setenv("NOTIFY_ADMIN_EMAILS", "gm@hotel.test, ops@hotel.test ,")
	t.Setenv("OUTBOX_POLL_INTERVAL_SECONDS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.App.Addr())
	assert.Equal(t, 7, cfg.Assignment.MaxCASRetries)
	assert.Equal(t, []string{"gm@hotel.test", "ops@hotel.test"}, cfg.Notification.AdminEmails)
	assert.Equal(t, 5*time.Second, cfg.Outbox.PollInterval())
}

func TestLoadRejectsInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "zero")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_DB")
}
