package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	domain "github.com/oshokin/focus-timer/internal/domain/timer"
	"github.com/oshokin/focus-timer/internal/logger"
)

// Config holds the settings of the focus timer.
type Config struct {
	// LogLevel is the minimum level of log entries written to stderr.
	LogLevel string `yaml:"log_level"`
	// DefaultMinutes pre-fills the minutes field before the first submit.
	DefaultMinutes int `yaml:"default_minutes"`
	// DefaultSeconds pre-fills the seconds field before the first submit.
	DefaultSeconds int `yaml:"default_seconds"`
	// SnoozeDuration is the length of the countdown started by a snooze.
	SnoozeDuration time.Duration `yaml:"snooze_duration"`
	// FlashInterval is the period of the alarm flash toggle.
	FlashInterval time.Duration `yaml:"flash_interval"`
	// ChallengePhrase is the text that must be typed to dismiss the alarm.
	ChallengePhrase string `yaml:"challenge_phrase"`
	// AlarmCommand is an optional program with arguments started when the alarm goes off.
	AlarmCommand []string `yaml:"alarm_command,omitempty"`
	// AllowMultiple disables the single-instance guard.
	AllowMultiple bool `yaml:"allow_multiple"`
}

const (
	// DefaultConfigFilename is the default filename for the timer settings.
	DefaultConfigFilename = "focus-timer-settings.yaml"

	// DefaultLogLevel is used when no level is configured.
	DefaultLogLevel = "info"

	// DefaultSnoozeDuration is the default snooze countdown length.
	DefaultSnoozeDuration = domain.DefaultSnoozeSeconds * time.Second

	// DefaultFlashInterval is the default period of the alarm flash.
	DefaultFlashInterval = 500 * time.Millisecond

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

// Environment variables that override file values.
const (
	envLogLevel        = "FOCUS_TIMER_LOG_LEVEL"
	envDefaultMinutes  = "FOCUS_TIMER_DEFAULT_MINUTES"
	envDefaultSeconds  = "FOCUS_TIMER_DEFAULT_SECONDS"
	envSnoozeDuration  = "FOCUS_TIMER_SNOOZE_DURATION"
	envFlashInterval   = "FOCUS_TIMER_FLASH_INTERVAL"
	envChallengePhrase = "FOCUS_TIMER_CHALLENGE_PHRASE"
	envAlarmCommand    = "FOCUS_TIMER_ALARM_COMMAND"
	envAllowMultiple   = "FOCUS_TIMER_ALLOW_MULTIPLE"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUnknownLogLevel is returned for a log level zap does not know.
	errUnknownLogLevel = errors.New("unknown log level")
	// errSnoozeNotWholeSeconds is returned when the snooze duration has a sub-second part.
	errSnoozeNotWholeSeconds = errors.New("snooze duration must be a whole number of seconds")
	// errEmptyAlarmCommand is returned when the alarm command has no program name.
	errEmptyAlarmCommand = errors.New("alarm command program must not be empty")
)

// Default returns validated built-in settings.
func Default() *Config {
	cfg := new(Config)

	//nolint:errcheck // Zero settings always validate once defaults are filled in.
	_ = Validate(cfg)

	return cfg
}

// Load reads settings from the provided path, applies environment overrides and validates them.
// A missing file at the default location is not an error: built-in defaults are used instead.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	var cfg Config

	contents, err := os.ReadFile(filepath.Clean(path))

	switch {
	case err == nil:
		if err = yaml.Unmarshal(contents, &cfg); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && path == DefaultConfigFilename:
		// Keep zero settings, defaults are filled in by Validate.
	default:
		return nil, fmt.Errorf("read settings: %w", err)
	}

	if err = applyEnv(&cfg); err != nil {
		return nil, err
	}

	if err = Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills in defaults and checks the settings for consistency.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.LogLevel == "" {
		settings.LogLevel = DefaultLogLevel
	}

	if _, ok := logger.ParseLogLevel(settings.LogLevel); !ok {
		return fmt.Errorf("%w: %q", errUnknownLogLevel, settings.LogLevel)
	}

	if err := settings.Defaults().Validate(); err != nil {
		return fmt.Errorf("invalid default duration: %w", err)
	}

	if settings.SnoozeDuration <= 0 {
		settings.SnoozeDuration = DefaultSnoozeDuration
	}

	if settings.SnoozeDuration%time.Second != 0 {
		return fmt.Errorf("%w: %s", errSnoozeNotWholeSeconds, settings.SnoozeDuration)
	}

	if settings.FlashInterval <= 0 {
		settings.FlashInterval = DefaultFlashInterval
	}

	settings.ChallengePhrase = strings.TrimSpace(settings.ChallengePhrase)
	if settings.ChallengePhrase == "" {
		settings.ChallengePhrase = domain.DefaultChallengePhrase
	}

	if len(settings.AlarmCommand) > 0 && strings.TrimSpace(settings.AlarmCommand[0]) == "" {
		return errEmptyAlarmCommand
	}

	return nil
}

// Defaults returns the configured pre-filled duration.
func (c *Config) Defaults() domain.Config {
	return domain.Config{
		Minutes: c.DefaultMinutes,
		Seconds: c.DefaultSeconds,
	}
}

// SnoozeSeconds returns the snooze duration in whole seconds.
func (c *Config) SnoozeSeconds() int {
	return int(c.SnoozeDuration / time.Second)
}
