package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pevans/postline/fetch"
)

// Setting keys, shared by the settings store and the environment.
const (
	KeyUserAgent    = "user_agent"
	KeyTimeout      = "timeout"
	KeyIncludeTitle = "include_title"
	KeyFeeds        = "feeds"
	KeyLogLevel     = "log_level"
)

// Configuration errors.
var (
	ErrUnknownKey      = errors.New("unknown setting")
	ErrInvalidTimeout  = errors.New("timeout must be a positive duration (e.g., 2s, 500ms)")
	ErrInvalidBool     = errors.New("value must be true or false")
	ErrInvalidLogLevel = errors.New("log_level must be one of: debug, info, warn, error")
	ErrEmptyUserAgent  = errors.New("user_agent must not be empty")
)

// envVars maps each setting to the environment variable that overrides it.
var envVars = map[string]string{
	KeyUserAgent:    "POSTLINE_USER_AGENT",
	KeyTimeout:      "POSTLINE_TIMEOUT",
	KeyIncludeTitle: "POSTLINE_INCLUDE_TITLE",
	KeyFeeds:        "POSTLINE_FEEDS",
	KeyLogLevel:     "POSTLINE_LOG_LEVEL",
}

// Settings are the knobs of a single run.
type Settings struct {
	UserAgent    string
	Timeout      time.Duration
	IncludeTitle bool
	Feeds        bool
	LogLevel     string
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		UserAgent:    fetch.DefaultUserAgent,
		Timeout:      fetch.DefaultTimeout,
		IncludeTitle: false,
		Feeds:        false,
		LogLevel:     "warn",
	}
}

// Keys lists every setting key in a stable order.
func Keys() []string {
	keys := make([]string, 0, len(envVars))
	for k := range envVars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// EnvVar returns the environment variable that overrides key.
func EnvVar(key string) string {
	return envVars[key]
}

// Set parses value and assigns it to the setting named by key.
func (s *Settings) Set(key, value string) error {
	value = strings.TrimSpace(value)

	switch key {
	case KeyUserAgent:
		if value == "" {
			return ErrEmptyUserAgent
		}
		s.UserAgent = value
	case KeyTimeout:
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return ErrInvalidTimeout
		}
		s.Timeout = d
	case KeyIncludeTitle:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, ErrInvalidBool)
		}
		s.IncludeTitle = b
	case KeyFeeds:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, ErrInvalidBool)
		}
		s.Feeds = b
	case KeyLogLevel:
		switch strings.ToLower(value) {
		case "debug", "info", "warn", "error":
			s.LogLevel = strings.ToLower(value)
		default:
			return ErrInvalidLogLevel
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	return nil
}

// Get returns the setting named by key formatted the way Set accepts it.
func (s *Settings) Get(key string) (string, error) {
	switch key {
	case KeyUserAgent:
		return s.UserAgent, nil
	case KeyTimeout:
		return s.Timeout.String(), nil
	case KeyIncludeTitle:
		return strconv.FormatBool(s.IncludeTitle), nil
	case KeyFeeds:
		return strconv.FormatBool(s.Feeds), nil
	case KeyLogLevel:
		return s.LogLevel, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
}

// Validate checks a value for key without keeping it.
func Validate(key, value string) error {
	scratch := Default()
	return scratch.Set(key, value)
}

// Dir is the directory holding the config file and the settings store:
// $POSTLINE_HOME if set, otherwise ~/.postline.
func Dir(getenv func(string) string) (string, error) {
	if dir := getenv("POSTLINE_HOME"); dir != "" {
		return dir, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".postline"), nil
}

// SettingsDSN is the path of the settings store: $POSTLINE_SETTINGS_DSN if
// set, otherwise settings.db inside Dir.
func SettingsDSN(getenv func(string) string) (string, error) {
	if dsn := getenv("POSTLINE_SETTINGS_DSN"); dsn != "" {
		return dsn, nil
	}

	dir, err := Dir(getenv)
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, "settings.db"), nil
}

// Load builds settings with precedence:
// 1. Environment variables (highest priority)
// 2. Settings store (settings.db), if it already exists
// 3. Configuration file (config.yaml)
// 4. Default values (lowest priority)
//
// A layer that cannot be read or holds a bad value is skipped, and the
// problem is reported in the returned error. The settings are usable either
// way.
func Load(getenv func(string) string) (Settings, error) {
	settings := Default()
	var errs []error

	dir, err := Dir(getenv)
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg, err := LoadConfigFile(filepath.Join(dir, "config.yaml"))
		if err != nil {
			errs = append(errs, err)
		}
		if cfg != nil {
			errs = append(errs, cfg.ApplyTo(&settings)...)
		}
	}

	if err := applyStore(getenv, &settings); err != nil {
		errs = append(errs, err)
	}

	for _, key := range Keys() {
		value := getenv(envVars[key])
		if value == "" {
			continue
		}
		if err := settings.Set(key, value); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", envVars[key], err))
		}
	}

	return settings, errors.Join(errs...)
}

// applyStore copies the settings store's values into settings. A store that
// has never been created is not an error; it is not created here either.
func applyStore(getenv func(string) string, settings *Settings) error {
	dsn, err := SettingsDSN(getenv)
	if err != nil {
		return err
	}

	if _, err := os.Stat(dsn); os.IsNotExist(err) {
		return nil
	}

	store, err := NewSettingsStore(dsn)
	if err != nil {
		return err
	}
	defer store.Close()

	values, err := store.All()
	if err != nil {
		return err
	}

	var errs []error
	for _, key := range Keys() {
		value, ok := values[key]
		if !ok {
			continue
		}
		if err := settings.Set(key, value); err != nil {
			errs = append(errs, fmt.Errorf("settings store: %s: %w", key, err))
		}
	}

	return errors.Join(errs...)
}
