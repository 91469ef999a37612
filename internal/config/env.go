package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from the given .env files,
// or from ".env" when none are given. Missing files are skipped and
// variables that are already set are never overwritten.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}

			return fmt.Errorf("load %s: %w", file, err)
		}
	}

	return nil
}

// applyEnv overrides settings with FOCUS_TIMER_* environment variables.
func applyEnv(cfg *Config) error {
	if v, ok := lookup(envLogLevel); ok {
		cfg.LogLevel = v
	}

	if v, ok := lookup(envChallengePhrase); ok {
		cfg.ChallengePhrase = v
	}

	if v, ok := lookup(envAlarmCommand); ok {
		cfg.AlarmCommand = strings.Fields(v)
	}

	if err := envInt(envDefaultMinutes, &cfg.DefaultMinutes); err != nil {
		return err
	}

	if err := envInt(envDefaultSeconds, &cfg.DefaultSeconds); err != nil {
		return err
	}

	if err := envDuration(envSnoozeDuration, &cfg.SnoozeDuration); err != nil {
		return err
	}

	if err := envDuration(envFlashInterval, &cfg.FlashInterval); err != nil {
		return err
	}

	if v, ok := lookup(envAllowMultiple); ok {
		allow, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", envAllowMultiple, err)
		}

		cfg.AllowMultiple = allow
	}

	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}

	v = strings.TrimSpace(v)

	return v, v != ""
}

func envInt(key string, dst *int) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("parse %s: %w", key, err)
	}

	*dst = n

	return nil
}

func envDuration(key string, dst *time.Duration) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("parse %s: %w", key, err)
	}

	*dst = d

	return nil
}
