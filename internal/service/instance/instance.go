package instance

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/focus-timer/internal/logger"
)

// ErrAlreadyRunning is returned when another timer process is found.
var ErrAlreadyRunning = errors.New("another focus timer is already running")

// errSelfNotFound is returned when the current process is missing from the process table.
var errSelfNotFound = errors.New("current process not found")

// EnsureSingle fails with ErrAlreadyRunning if another process runs the same executable.
func EnsureSingle(ctx context.Context) error {
	self, err := ps.FindProcess(os.Getpid())
	if err != nil {
		return fmt.Errorf("find current process: %w", err)
	}

	if self == nil {
		return errSelfNotFound
	}

	processList, err := ps.Processes()
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	if other, found := findDuplicate(self, processList); found {
		return fmt.Errorf("%w: %s with pid %d", ErrAlreadyRunning, other.Executable(), other.Pid())
	}

	logger.DebugKV(ctx, "No other timer is running", "executable", self.Executable(), "pid", self.Pid())

	return nil
}

// findDuplicate returns a process other than self running the same executable.
func findDuplicate(self ps.Process, processList []ps.Process) (ps.Process, bool) {
	for _, process := range processList {
		if process.Pid() == self.Pid() {
			continue
		}

		if process.Executable() != self.Executable() {
			continue
		}

		return process, true
	}

	return nil, false
}
