package timer

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	// DefaultChallengePhrase is the text that dismisses an expired alarm.
	DefaultChallengePhrase = "I am ready to focus again"

	// DefaultSnoozeSeconds is the length of the countdown started by a snooze.
	DefaultSnoozeSeconds = 5 * secondsPerMinute

	// InvalidDurationMessage is shown when a submitted duration is rejected.
	InvalidDurationMessage = "Please enter valid minutes and seconds (0-59)."
	// ChallengeMismatchMessage is shown when the typed phrase is wrong.
	ChallengeMismatchMessage = "Please type the exact phrase to continue."
)

// Machine is the countdown and alarm state machine.
// It is not safe for concurrent use; a single owner must serialize all calls.
type Machine struct {
	// state is the current lifecycle stage.
	state State
	// remaining is the remaining time in seconds, never negative.
	remaining int
	// last is the last successfully submitted duration.
	last Config

	// flashActive gates flash toggles while the alarm is unresolved.
	flashActive bool
	// flashOn is the current flash signal.
	flashOn bool
	// snoozed marks a countdown started by Snooze.
	snoozed bool
	// sessionID identifies the current countdown.
	sessionID string

	// phrase is the challenge phrase.
	phrase string
	// snoozeSeconds is the snooze countdown length.
	snoozeSeconds int
	// newSessionID generates session identifiers.
	newSessionID func() string
}

// Option configures a Machine.
type Option func(*Machine)

// WithChallengePhrase overrides the phrase that dismisses the alarm.
func WithChallengePhrase(phrase string) Option {
	return func(m *Machine) {
		if phrase = strings.TrimSpace(phrase); phrase != "" {
			m.phrase = phrase
		}
	}
}

// WithSnoozeSeconds overrides the snooze countdown length.
func WithSnoozeSeconds(seconds int) Option {
	return func(m *Machine) {
		if seconds > 0 {
			m.snoozeSeconds = seconds
		}
	}
}

// WithDefaults sets the duration pre-filled before anything was submitted.
// Invalid values are ignored.
func WithDefaults(cfg Config) Option {
	return func(m *Machine) {
		if cfg.Validate() == nil {
			m.last = cfg
		}
	}
}

// WithSessionIDs replaces the session identifier generator.
func WithSessionIDs(generate func() string) Option {
	return func(m *Machine) {
		if generate != nil {
			m.newSessionID = generate
		}
	}
}

// NewMachine returns an idle machine.
func NewMachine(opts ...Option) *Machine {
	m := &Machine{
		state:         StateIdle,
		phrase:        DefaultChallengePhrase,
		snoozeSeconds: DefaultSnoozeSeconds,
		newSessionID:  uuid.NewString,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// State returns the current lifecycle stage.
func (m *Machine) State() State {
	return m.state
}

// Remaining returns the remaining time in seconds.
func (m *Machine) Remaining() int {
	return m.remaining
}

// FlashActive reports whether flash toggles are currently expected.
func (m *Machine) FlashActive() bool {
	return m.flashActive
}

// Snapshot returns a copy of the current state for rendering.
func (m *Machine) Snapshot() Snapshot {
	return Snapshot{
		State:           m.state,
		Remaining:       m.remaining,
		Display:         FormatRemaining(m.remaining),
		Defaults:        m.last,
		FlashActive:     m.flashActive,
		FlashOn:         m.flashOn,
		Snoozed:         m.snoozed,
		SessionID:       m.sessionID,
		ChallengePhrase: m.phrase,
	}
}

// Submit starts a countdown from Idle. An invalid duration leaves the machine
// Idle and reports a validation error event together with ErrInvalidDuration.
// Submit outside of Idle is ignored.
func (m *Machine) Submit(cfg Config) ([]Event, error) {
	if m.state != StateIdle {
		return nil, nil
	}

	if err := cfg.Validate(); err != nil {
		return []Event{m.validationError(InvalidDurationMessage)}, err
	}

	m.last = cfg
	m.remaining = cfg.TotalSeconds()
	m.snoozed = false
	m.sessionID = m.newSessionID()

	return []Event{
		m.transition(StateRunning),
		m.display(),
	}, nil
}

// Start resumes a paused countdown or, from Idle, submits the last used duration.
func (m *Machine) Start() []Event {
	switch m.state {
	case StatePaused:
		return []Event{m.transition(StateRunning)}
	case StateIdle:
		//nolint:errcheck // The last used duration was validated when it was stored.
		events, _ := m.Submit(m.last)

		return events
	default:
		return nil
	}
}

// TogglePause switches between Running and Paused.
func (m *Machine) TogglePause() []Event {
	switch m.state {
	case StateRunning:
		return []Event{m.transition(StatePaused)}
	case StatePaused:
		return []Event{m.transition(StateRunning)}
	default:
		return nil
	}
}

// Stop returns to Idle from Running, Paused or Expired and restores
// the last used duration as the displayed default.
func (m *Machine) Stop() []Event {
	if m.state == StateIdle {
		return nil
	}

	events := make([]Event, 0, 2)
	if m.flashActive {
		events = append(events, m.clearAlarm())
	}

	return append(events, m.reset())
}

// Tick advances a running countdown by one second.
// Reaching zero moves the machine to Expired and starts the flash.
func (m *Machine) Tick() []Event {
	if m.state != StateRunning {
		return nil
	}

	if m.remaining > 0 {
		m.remaining--
	}

	if m.remaining > 0 {
		return []Event{m.display()}
	}

	m.flashActive = true
	m.flashOn = true

	return []Event{
		m.display(),
		m.transition(StateExpired),
		m.event(EventAlarmStarted),
		m.flash(),
	}
}

// Flash flips the flash signal while the alarm is unresolved.
func (m *Machine) Flash() []Event {
	if !m.flashActive {
		return nil
	}

	m.flashOn = !m.flashOn

	return []Event{m.flash()}
}

// Snooze clears the alarm and starts a fixed-length countdown.
func (m *Machine) Snooze() []Event {
	if m.state != StateExpired {
		return nil
	}

	cleared := m.clearAlarm()

	m.remaining = m.snoozeSeconds
	m.snoozed = true
	m.sessionID = m.newSessionID()

	return []Event{
		cleared,
		m.transition(StateRunning),
		m.display(),
	}
}

// SubmitChallenge dismisses the alarm when text, trimmed of surrounding
// whitespace, equals the challenge phrase. Otherwise the machine stays
// Expired and reports ErrChallengeMismatch.
func (m *Machine) SubmitChallenge(text string) ([]Event, error) {
	if m.state != StateExpired {
		return nil, nil
	}

	if strings.TrimSpace(text) != m.phrase {
		err := fmt.Errorf("%w: got %q", ErrChallengeMismatch, text)

		return []Event{m.validationError(ChallengeMismatchMessage)}, err
	}

	cleared := m.clearAlarm()

	return []Event{cleared, m.reset()}, nil
}

// reset moves the machine to Idle with the last used duration displayed.
func (m *Machine) reset() Event {
	m.flashActive = false
	m.flashOn = false
	m.snoozed = false
	m.remaining = m.last.TotalSeconds()

	return m.transition(StateIdle)
}

func (m *Machine) clearAlarm() Event {
	m.flashActive = false
	m.flashOn = false

	return m.event(EventAlarmCleared)
}

func (m *Machine) transition(to State) Event {
	m.state = to

	return m.event(EventStateChanged)
}

func (m *Machine) display() Event {
	e := m.event(EventDisplayUpdate)
	e.Text = e.Snapshot.Display

	return e
}

func (m *Machine) flash() Event {
	e := m.event(EventFlashToggle)
	e.FlashOn = m.flashOn

	return e
}

func (m *Machine) validationError(message string) Event {
	e := m.event(EventValidationError)
	e.Message = message

	return e
}

func (m *Machine) event(kind EventKind) Event {
	return Event{
		Kind:     kind,
		Snapshot: m.Snapshot(),
	}
}
