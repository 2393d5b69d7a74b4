package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("DATABASE_URL", "postgres://localhost/shift?sslmode=disable")
	t.Setenv("ADMIN_TELEGRAM_ID", "12345")
}

func clearOptional(t *testing.T) {
	for _, name := range []string{
		"LOG_LEVEL", "ENVIRONMENT", "REDIS_ADDR", "REDIS_NAMESPACE", "SESSION_TTL",
		"ALBUM_WAIT", "REPORT_UTC_OFFSET_HOURS", "BROADCAST_HOUR", "BROADCAST_CRON_SPEC",
		"BROADCAST_RETAIN", "BROADCAST_TEXT",
	} {
		t.Setenv(name, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearOptional(t)
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(12345), cfg.AdminTelegramID)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "development", cfg.Environment)
	assert.Empty(t, cfg.RedisAddrs)
	assert.Equal(t, "shift_report_bot", cfg.RedisNamespace)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 3, cfg.ReportUTCOffsetHours)
	assert.Equal(t, 16, cfg.BroadcastHour)
	assert.Equal(t, "0 * * * *", cfg.BroadcastCronSpec)
	assert.Equal(t, "last", cfg.BroadcastRetain)
	assert.NotEmpty(t, cfg.BroadcastText)

	_, offset := time.Date(2024, 1, 1, 0, 0, 0, 0, cfg.Location()).Zone()
	assert.Equal(t, 3*60*60, offset)
}

func TestLoadOverrides(t *testing.T) {
	clearOptional(t)
	setRequired(t)
	t.Setenv("REDIS_ADDR", "redis-a:6379, redis-b:6379")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("BROADCAST_HOUR", "9")
	t.Setenv("BROADCAST_RETAIN", "ALL")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"redis-a:6379", "redis-b:6379"}, cfg.RedisAddrs)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 9, cfg.BroadcastHour)
	assert.Equal(t, "all", cfg.BroadcastRetain)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string][2]string{
		"missing token":  {"TELEGRAM_TOKEN", ""},
		"admin id":       {"ADMIN_TELEGRAM_ID", "me"},
		"session ttl":    {"SESSION_TTL", "soon"},
		"broadcast hour": {"BROADCAST_HOUR", "24"},
		"offset":         {"REPORT_UTC_OFFSET_HOURS", "+15"},
		"negative wait":  {"ALBUM_WAIT", "-1s"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			clearOptional(t)
			setRequired(t)
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			require.Error(t, err)
		})
	}
}
