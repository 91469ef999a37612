package timer

// State is the lifecycle stage of the countdown.
type State int

const (
	// StateIdle waits for a duration to be submitted.
	StateIdle State = iota
	// StateRunning decrements the remaining time on every tick.
	StateRunning
	// StatePaused keeps the remaining time frozen.
	StatePaused
	// StateExpired means the countdown reached zero and the alarm is active.
	StateExpired
)

// String returns a lowercase name of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Snapshot is a declarative view of the machine that a display surface renders as is.
type Snapshot struct {
	// State is the current lifecycle stage.
	State State
	// Remaining is the remaining time in seconds.
	Remaining int
	// Display is Remaining formatted as MM:SS.
	Display string
	// Defaults is the last successfully submitted duration, pre-filled on the input form.
	Defaults Config
	// FlashActive is set while the alarm flashes.
	FlashActive bool
	// FlashOn is the current flash signal value.
	FlashOn bool
	// Snoozed is set when the running countdown was started by a snooze.
	Snoozed bool
	// SessionID identifies the countdown started by the last submit or snooze.
	SessionID string
	// ChallengePhrase is the text the user must type to dismiss the alarm.
	ChallengePhrase string
}

// EventKind enumerates the events the machine reports to display surfaces.
type EventKind int

const (
	// EventDisplayUpdate carries a freshly formatted remaining time in Text.
	EventDisplayUpdate EventKind = iota
	// EventAlarmStarted is reported when the countdown reaches zero.
	EventAlarmStarted
	// EventFlashToggle carries the new flash signal in FlashOn.
	EventFlashToggle
	// EventAlarmCleared is reported when the alarm is resolved, snoozed or stopped.
	EventAlarmCleared
	// EventValidationError carries a user-facing message in Message.
	EventValidationError
	// EventStateChanged is reported after every state transition.
	EventStateChanged
)

// String returns the wire-style name of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventDisplayUpdate:
		return "display_update"
	case EventAlarmStarted:
		return "alarm_started"
	case EventFlashToggle:
		return "flash_toggle"
	case EventAlarmCleared:
		return "alarm_cleared"
	case EventValidationError:
		return "validation_error"
	case EventStateChanged:
		return "state_changed"
	default:
		return "unknown"
	}
}

// Event is a single output of the machine.
type Event struct {
	// Kind selects which of the other fields are meaningful.
	Kind EventKind
	// Text is the MM:SS value of a display update.
	Text string
	// FlashOn is the signal value of a flash toggle.
	FlashOn bool
	// Message is the user-facing text of a validation error.
	Message string
	// Snapshot is the machine state right after the event.
	Snapshot Snapshot
}
