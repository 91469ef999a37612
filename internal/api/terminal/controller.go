package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	domain "github.com/oshokin/focus-timer/internal/domain/timer"
	"github.com/oshokin/focus-timer/internal/logger"
)

// Service abstracts the timer operations the terminal depends on.
type Service interface {
	Submit(ctx context.Context, cfg domain.Config) error
	Start(ctx context.Context) error
	TogglePause(ctx context.Context) error
	Stop(ctx context.Context) error
	Snooze(ctx context.Context) error
	SubmitChallenge(ctx context.Context, text string) error
	Snapshot(ctx context.Context) (domain.Snapshot, error)
}

// helpText lists the commands understood by the controller.
const helpText = `Commands:
  set M S, M S   start a countdown of M minutes and S seconds
  <Enter>        start with the pre-filled duration while idle
  start          resume, or start with the pre-filled duration
  pause          pause or resume the countdown
  stop           stop the countdown or the alarm
  snooze         silence the alarm and count down again
  status         show the current state
  quit           exit
While the alarm is on, any other line is checked against the phrase.
`

// Controller turns input lines into service commands.
type Controller struct {
	// service executes the commands.
	service Service
	// out receives help, status and local parse errors.
	out io.Writer
}

// NewController returns a controller writing its own messages to out.
func NewController(service Service, out io.Writer) *Controller {
	return &Controller{
		service: service,
		out:     out,
	}
}

// Run reads lines from in until EOF, a quit command or ctx cancellation.
// Reading happens in a separate goroutine so cancellation does not wait for input.
func (c *Controller) Run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(logger.WithName(ctx, "terminal"))
	defer cancel()

	lines := make(chan string)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}

		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					if err != nil {
						return fmt.Errorf("read input: %w", err)
					}
				default:
				}

				logger.Debugf(ctx, "Input closed")

				return nil
			}

			quit, err := c.Handle(ctx, line)
			if err != nil {
				return err
			}

			if quit {
				return nil
			}
		}
	}
}

// Handle executes a single input line. It reports whether the user asked to quit.
// Rejected input is not an error: the service reports it to the display.
func (c *Controller) Handle(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)

	var keyword string
	if len(fields) > 0 {
		keyword = strings.ToLower(fields[0])
	}

	if keyword == "quit" || keyword == "exit" {
		return true, nil
	}

	if keyword != "" && c.isChallengePhrase(ctx, line) {
		return false, ignoreRejected(c.service.SubmitChallenge(ctx, line))
	}

	var err error

	switch keyword {
	case "help", "?":
		c.printf("%s", helpText)
	case "status":
		err = c.status(ctx)
	case "start":
		err = c.service.Start(ctx)
	case "pause", "resume":
		err = c.service.TogglePause(ctx)
	case "stop":
		err = c.service.Stop(ctx)
	case "snooze", "sleep":
		err = c.service.Snooze(ctx)
	case "set":
		err = c.submit(ctx, fields[1:])
	default:
		err = c.free(ctx, line, fields)
	}

	return false, ignoreRejected(err)
}

// free handles a line that is not a command keyword.
func (c *Controller) free(ctx context.Context, line string, fields []string) error {
	snapshot, err := c.service.Snapshot(ctx)
	if err != nil {
		return err
	}

	switch snapshot.State {
	case domain.StateExpired:
		return c.service.SubmitChallenge(ctx, line)
	case domain.StateIdle:
		if len(fields) == 0 {
			return c.service.Start(ctx)
		}

		return c.submit(ctx, fields)
	case domain.StateRunning, domain.StatePaused:
		if len(fields) > 0 {
			c.printf("Unknown command %q, type 'help'.\n", fields[0])
		}
	}

	return nil
}

// isChallengePhrase reports whether the alarm is on and line is its phrase,
// so a phrase starting with a command word still dismisses the alarm.
func (c *Controller) isChallengePhrase(ctx context.Context, line string) bool {
	snapshot, err := c.service.Snapshot(ctx)
	if err != nil {
		return false
	}

	return snapshot.State == domain.StateExpired && strings.TrimSpace(line) == snapshot.ChallengePhrase
}

func (c *Controller) submit(ctx context.Context, args []string) error {
	if len(args) > 2 {
		c.printf("Invalid input: %s\n", domain.InvalidDurationMessage)
		return nil
	}

	var minutes, seconds string

	if len(args) > 0 {
		minutes = args[0]
	}

	if len(args) > 1 {
		seconds = args[1]
	}

	// Range checks belong to the machine, which reports them to every surface.
	cfg, err := domain.ParseFields(minutes, seconds)
	if err != nil {
		logger.DebugKV(ctx, "Unparsable duration", "error", err)
		c.printf("Invalid input: %s\n", domain.InvalidDurationMessage)

		return nil
	}

	return c.service.Submit(ctx, cfg)
}

func (c *Controller) status(ctx context.Context) error {
	s, err := c.service.Snapshot(ctx)
	if err != nil {
		return err
	}

	c.printf("State: %s, remaining %s", s.State, s.Display)

	if s.Snoozed {
		c.printf(", snoozed")
	}

	if s.SessionID != "" {
		c.printf(", session %s", s.SessionID)
	}

	c.printf("\n")

	return nil
}

func (c *Controller) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}

// ignoreRejected drops errors the user can recover from by retrying.
func ignoreRejected(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrInvalidDuration), errors.Is(err, domain.ErrChallengeMismatch):
		return nil
	case errors.Is(err, context.Canceled):
		return nil
	default:
		return err
	}
}
