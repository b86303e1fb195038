package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"sayless/internal/datewindow"
	"sayless/pkg/httputil"
)

const (
	DefaultConfigPath         = "./local/configs.json"
	DefaultServiceAccountPath = "./local/secrets/service-account.json"
	DefaultMaxResults         = 50
	DefaultRequestsPerSecond  = 5
	defaultLogLevel           = "info"

	envConfigPath         = "SAYLESS_CONFIG_PATH"
	envServiceAccountPath = "SAYLESS_SERVICE_ACCOUNT_PATH"
	envMaxResults         = "SAYLESS_MAX_RESULTS"
	envTimezone           = "SAYLESS_TIMEZONE"
	envRequestTimeout     = "SAYLESS_REQUEST_TIMEOUT"
	envRequestsPerSecond  = "SAYLESS_REQUESTS_PER_SECOND"
	envLogLevel           = "SAYLESS_LOG_LEVEL"
)

// MaxResultsLimit is the largest page playlistItems.list returns.
const MaxResultsLimit = 50

// Settings is built once at startup and passed down by value.
type Settings struct {
	ConfigPath         string
	ServiceAccountPath string
	MaxResults         int64
	Location           *time.Location
	RequestTimeout     time.Duration
	// RequestsPerSecond caps API calls; zero disables pacing.
	RequestsPerSecond float64
	LogLevel          slog.Level
}

// Overrides carries explicitly set command-line values. Zero values mean
// "not set" and fall through to the environment, then to the defaults.
type Overrides struct {
	ConfigPath         string
	ServiceAccountPath string
	MaxResults         int64
}

// LoadSettings reads an optional .env file from the working directory before
// consulting the environment.
func LoadSettings(o Overrides) (Settings, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to read .env file", "error", err)
	}

	return settingsFrom(o, os.Getenv)
}

func settingsFrom(o Overrides, getenv func(string) string) (Settings, error) {
	s := Settings{
		ConfigPath:         firstNonEmpty(o.ConfigPath, getenv(envConfigPath), DefaultConfigPath),
		ServiceAccountPath: firstNonEmpty(o.ServiceAccountPath, getenv(envServiceAccountPath), DefaultServiceAccountPath),
		MaxResults:         o.MaxResults,
		RequestTimeout:     httputil.DefaultTimeout,
		RequestsPerSecond:  DefaultRequestsPerSecond,
	}

	if s.MaxResults == 0 {
		s.MaxResults = DefaultMaxResults
		if raw := getenv(envMaxResults); raw != "" {
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return Settings{}, settingsError(envMaxResults, fmt.Errorf("not an integer: %q", raw))
			}
			s.MaxResults = n
		}
	}
	if s.MaxResults <= 0 || s.MaxResults > MaxResultsLimit {
		return Settings{}, settingsError("maxResults", fmt.Errorf("must be between 1 and %d, got %d", MaxResultsLimit, s.MaxResults))
	}

	loc, err := datewindow.LoadLocation(getenv(envTimezone))
	if err != nil {
		return Settings{}, settingsError(envTimezone, err)
	}
	s.Location = loc

	if raw := getenv(envRequestTimeout); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return Settings{}, settingsError(envRequestTimeout, err)
		}
		if d <= 0 {
			return Settings{}, settingsError(envRequestTimeout, fmt.Errorf("must be positive, got %s", d))
		}
		s.RequestTimeout = d
	}

	if raw := getenv(envRequestsPerSecond); raw != "" {
		rps, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Settings{}, settingsError(envRequestsPerSecond, fmt.Errorf("not a number: %q", raw))
		}
		if rps < 0 {
			return Settings{}, settingsError(envRequestsPerSecond, fmt.Errorf("must not be negative, got %v", rps))
		}
		s.RequestsPerSecond = rps
	}

	level, err := parseLevel(firstNonEmpty(getenv(envLogLevel), defaultLogLevel))
	if err != nil {
		return Settings{}, settingsError(envLogLevel, err)
	}
	s.LogLevel = level

	return s, nil
}

func parseLevel(raw string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(raw))); err != nil {
		return 0, err
	}
	return level, nil
}

func settingsError(field string, err error) error {
	return &ConfigError{Path: "settings", Err: fmt.Errorf("%s: %w", field, err)}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
