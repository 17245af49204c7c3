package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 5, cfg.MaxClients)
	assert.Equal(t, 50, cfg.MaxIdentityLen)
	assert.Equal(t, 1024, cfg.ReadBufferSize)
	assert.Equal(t, 256, cfg.OutboxSize)
	assert.True(t, cfg.NotifyRejected)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Empty(t, cfg.HTTPAddr)
}

func TestSanitizeConfigRepairsZeroValues(t *testing.T) {
	cfg := sanitizeConfig(Config{MaxClients: -1, OutboxSize: 0})

	assert.Equal(t, defaultAddr, cfg.Addr)
	assert.Equal(t, defaultMaxClients, cfg.MaxClients)
	assert.Equal(t, defaultOutboxSize, cfg.OutboxSize)
	assert.Equal(t, defaultWriteTimeout, cfg.WriteTimeout)
	assert.Equal(t, time.Second, cfg.RateLimit.RefillInterval)
}

func TestNewConfigFromEnv(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":9000")
	t.Setenv("MAX_CLIENTS", "12")
	t.Setenv("OUTBOX_SIZE", "not-a-number")
	t.Setenv("ALLOWED_ORIGINS", "http://a.example, http://b.example")
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "250ms")

	cfg := NewConfigFromEnv()

	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, 12, cfg.MaxClients)
	assert.Equal(t, defaultOutboxSize, cfg.OutboxSize)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 250*time.Millisecond, cfg.RateLimit.RefillInterval)
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gochat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr: ":7000"
http_addr: ":7001"
max_clients: 3
write_timeout: 2s
notify_rejected: false
rate_limit:
  enabled: true
  burst: 4
  refill_interval: 3s
log_format: json
`), 0o600))
	t.Setenv("MAX_CLIENTS", "9")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, ":7001", cfg.HTTPAddr)
	assert.Equal(t, 9, cfg.MaxClients, "environment wins over the file")
	assert.Equal(t, 2*time.Second, cfg.WriteTimeout)
	assert.False(t, cfg.NotifyRejected)
	assert.Equal(t, RateLimitConfig{Enabled: true, Burst: 4, RefillInterval: 3 * time.Second}, cfg.RateLimit)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":7000\"\nhttp_addr: \":7000\"\nlog_format: xml\n"), 0o600))
	_, err = LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collides")
	assert.Contains(t, err.Error(), "log_format")
}
