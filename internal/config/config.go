package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the configuration of the tracker
type Config struct {
	// Database driver: "sqlite3" or "postgres"
	DBDriver string
	// Data source name; a file path for sqlite3, a connection URL for postgres
	DBDSN string
	// Address the HTTP API listens on
	HTTPAddr string
	// Tab used when a request does not name one
	DefaultTab string
	// Location used for day and week boundaries
	Location *time.Location
	// First day of the week for weekly progress
	WeekStart time.Weekday
	LogLevel  string
	LogFormat string
	// Daily digest of overdue revisions
	DigestEnabled bool
	DigestAt      string
	// Telegram delivery of the digest; disabled when the token is empty
	TelegramToken  string
	TelegramChatID int64
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		DBDriver:   "sqlite3",
		DBDSN:      "data/sptracker.db",
		HTTPAddr:   ":8080",
		DefaultTab: "IP",
		Location:   time.Local,
		WeekStart:  time.Sunday,
		LogLevel:   "info",
		LogFormat:  "text",
		DigestAt:   "08:00",
	}
}

// Load reads an optional .env file and overrides the defaults with
// environment variables
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function such as os.Getenv
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := DefaultConfig()

	if v := getenv("DB_DRIVER"); v != "" {
		switch v {
		case "sqlite3", "postgres":
			cfg.DBDriver = v
		default:
			return nil, fmt.Errorf("unsupported DB_DRIVER %q", v)
		}
	}
	if v := getenv("DB_DSN"); v != "" {
		cfg.DBDSN = v
	} else if cfg.DBDriver == "postgres" {
		return nil, errors.New("DB_DSN environment variable is not set")
	}
	if v := getenv("HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := getenv("DEFAULT_TAB"); v != "" {
		cfg.DefaultTab = v
	}
	if v := getenv("TIMEZONE"); v != "" {
		loc, err := time.LoadLocation(v)
		if err != nil {
			return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
		}
		cfg.Location = loc
	}
	if v := getenv("WEEK_START"); v != "" {
		day, err := parseWeekday(v)
		if err != nil {
			return nil, err
		}
		cfg.WeekStart = day
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := getenv("LOG_FORMAT"); v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}
	if v := getenv("DIGEST_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid DIGEST_ENABLED: %w", err)
		}
		cfg.DigestEnabled = enabled
	}
	if v := getenv("DIGEST_AT"); v != "" {
		if _, err := time.Parse("15:04", v); err != nil {
			return nil, fmt.Errorf("invalid DIGEST_AT %q, expected HH:MM", v)
		}
		cfg.DigestAt = v
	}
	cfg.TelegramToken = getenv("TELEGRAM_BOT_TOKEN")
	if v := getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}
	if cfg.TelegramToken != "" && cfg.TelegramChatID == 0 {
		return nil, errors.New("TELEGRAM_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")
	}

	return cfg, nil
}

func parseWeekday(s string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), s) {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("invalid WEEK_START %q", s)
}
