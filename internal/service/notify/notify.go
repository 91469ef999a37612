package notify

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	domain "github.com/oshokin/focus-timer/internal/domain/timer"
	"github.com/oshokin/focus-timer/internal/logger"
)

// ErrNoCommand indicates an empty alarm command.
var ErrNoCommand = errors.New("alarm command is empty")

// Hook starts the alarm command on every alarm_started event.
type Hook struct {
	// argv is the program followed by its arguments.
	argv []string
	// start launches the program, replaceable in tests.
	start func(ctx context.Context, argv []string) error
}

// NewHook returns a hook for argv. A nil or empty argv yields a hook that does nothing.
func NewHook(argv []string) *Hook {
	return &Hook{
		argv:  argv,
		start: Start,
	}
}

// Render starts the alarm command when the alarm goes off.
// Failures are logged and never interrupt the timer.
func (h *Hook) Render(ctx context.Context, event domain.Event) {
	if event.Kind != domain.EventAlarmStarted || len(h.argv) == 0 {
		return
	}

	if err := h.start(ctx, h.argv); err != nil {
		logger.WarnKV(ctx, "Alarm command failed", "command", strings.Join(h.argv, " "), "error", err)
		return
	}

	logger.DebugKV(ctx, "Alarm command started", "command", h.argv[0], "session_id", event.Snapshot.SessionID)
}

// Start launches argv asynchronously; the process is reaped in the background.
func Start(ctx context.Context, argv []string) error {
	if len(argv) == 0 || argv[0] == "" {
		return ErrNoCommand
	}

	//nolint:gosec // The command comes from the user's own settings file.
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", argv[0], err)
	}

	go func() {
		_ = cmd.Wait()
	}()

	return nil
}
