package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	TelegramToken   string
	DatabaseURL     string
	AdminTelegramID int64 // chat that receives delivery failures; also the bootstrap admin
	LogLevel        string
	Environment     string

	RedisAddrs     []string // empty keeps sessions in memory
	RedisNamespace string
	SessionTTL     time.Duration

	ReportUTCOffsetHours int
	BroadcastHour        int
	BroadcastCronSpec    string // how often the broadcast window is re-evaluated
	BroadcastRetain      string
	BroadcastText        string
	AlbumWait            time.Duration
}

const defaultBroadcastText = "Привет! Не забудь провести дневную сверку и отправить отчёт 🙂"

// Location returns the fixed zone reports and broadcasts are timed in.
func (c *AppConfig) Location() *time.Location {
	return time.FixedZone(fmt.Sprintf("UTC%+d", c.ReportUTCOffsetHours), c.ReportUTCOffsetHours*60*60)
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID")
	if adminIDStr == "" {
		return nil, fmt.Errorf("ADMIN_TELEGRAM_ID is not set")
	}
	cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	if addrs := strings.TrimSpace(os.Getenv("REDIS_ADDR")); addrs != "" {
		for _, a := range strings.Split(addrs, ",") {
			if a = strings.TrimSpace(a); a != "" {
				cfg.RedisAddrs = append(cfg.RedisAddrs, a)
			}
		}
	}
	cfg.RedisNamespace = os.Getenv("REDIS_NAMESPACE")
	if cfg.RedisNamespace == "" {
		cfg.RedisNamespace = "shift_report_bot"
	}

	if cfg.SessionTTL, err = durationEnv("SESSION_TTL", 12*time.Hour); err != nil {
		return nil, err
	}
	if cfg.AlbumWait, err = durationEnv("ALBUM_WAIT", 700*time.Millisecond); err != nil {
		return nil, err
	}

	if cfg.ReportUTCOffsetHours, err = intEnv("REPORT_UTC_OFFSET_HOURS", 3); err != nil {
		return nil, err
	}
	if cfg.ReportUTCOffsetHours < -12 || cfg.ReportUTCOffsetHours > 14 {
		return nil, fmt.Errorf("invalid REPORT_UTC_OFFSET_HOURS: %d", cfg.ReportUTCOffsetHours)
	}

	if cfg.BroadcastHour, err = intEnv("BROADCAST_HOUR", 16); err != nil {
		return nil, err
	}
	if cfg.BroadcastHour < 0 || cfg.BroadcastHour > 23 {
		return nil, fmt.Errorf("invalid BROADCAST_HOUR: %d", cfg.BroadcastHour)
	}

	cfg.BroadcastCronSpec = os.Getenv("BROADCAST_CRON_SPEC")
	if cfg.BroadcastCronSpec == "" {
		cfg.BroadcastCronSpec = "0 * * * *" // Default: top of every hour
	}

	cfg.BroadcastRetain = strings.ToLower(os.Getenv("BROADCAST_RETAIN"))
	if cfg.BroadcastRetain == "" {
		cfg.BroadcastRetain = "last"
	}

	cfg.BroadcastText = os.Getenv("BROADCAST_TEXT")
	if cfg.BroadcastText == "" {
		cfg.BroadcastText = defaultBroadcastText
	}

	return cfg, nil
}

func durationEnv(name string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(name)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", name)
	}
	return d, nil
}

func intEnv(name string, def int) (int, error) {
	v := os.Getenv(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return n, nil
}
