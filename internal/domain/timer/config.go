package timer

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// secondsPerMinute is the number of seconds in one minute.
	secondsPerMinute = 60
	// MaxMinutes is the largest minute count whose total in seconds fits in an int.
	MaxMinutes = (math.MaxInt - (secondsPerMinute - 1)) / secondsPerMinute
)

var (
	// ErrInvalidDuration is returned when minutes or seconds are malformed or out of range.
	ErrInvalidDuration = errors.New("invalid duration")
	// ErrChallengeMismatch is returned when the typed phrase does not match the challenge.
	ErrChallengeMismatch = errors.New("challenge phrase mismatch")
)

// Config is the countdown duration requested by the user.
type Config struct {
	// Minutes is the whole-minute part of the duration, never negative.
	Minutes int
	// Seconds is the seconds part of the duration, in [0, 59].
	Seconds int
}

// Validate checks that minutes are in [0, MaxMinutes] and seconds are in [0, 59].
func (c Config) Validate() error {
	if c.Minutes < 0 {
		return fmt.Errorf("%w: minutes must not be negative, got %d", ErrInvalidDuration, c.Minutes)
	}

	if c.Minutes > MaxMinutes {
		return fmt.Errorf("%w: minutes must not exceed %d, got %d", ErrInvalidDuration, MaxMinutes, c.Minutes)
	}

	if c.Seconds < 0 || c.Seconds >= secondsPerMinute {
		return fmt.Errorf("%w: seconds must be in [0, 59], got %d", ErrInvalidDuration, c.Seconds)
	}

	return nil
}

// TotalSeconds returns the whole duration in seconds.
func (c Config) TotalSeconds() int {
	return c.Minutes*secondsPerMinute + c.Seconds
}

// String renders the config the same way the countdown is displayed.
func (c Config) String() string {
	return FormatRemaining(c.TotalSeconds())
}

// ParseFields builds a Config from raw text fields without range checks.
// An empty field counts as zero; only non-integer text is rejected.
func ParseFields(minutes, seconds string) (Config, error) {
	m, err := parseField("minutes", minutes)
	if err != nil {
		return Config{}, err
	}

	s, err := parseField("seconds", seconds)
	if err != nil {
		return Config{}, err
	}

	return Config{
		Minutes: m,
		Seconds: s,
	}, nil
}

// ParseConfig is ParseFields followed by Validate.
func ParseConfig(minutes, seconds string) (Config, error) {
	cfg, err := ParseFields(minutes, seconds)
	if err != nil {
		return Config{}, err
	}

	if err = cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// FormatRemaining renders seconds as MM:SS with both fields zero-padded.
// Negative input is clamped to zero.
func FormatRemaining(seconds int) string {
	seconds = max(seconds, 0)

	return fmt.Sprintf("%02d:%02d", seconds/secondsPerMinute, seconds%secondsPerMinute)
}

func parseField(name, text string) (int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, nil
	}

	value, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", ErrInvalidDuration, name, text)
	}

	return value, nil
}
