package terminal

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	domain "github.com/oshokin/focus-timer/internal/domain/timer"
)

// ANSI sequences used on a real terminal.
const (
	clearLine   = "\r\033[2K"
	flashOnSGR  = "\033[1;37;41m"
	flashOffSGR = "\033[1;31;47m"
	resetSGR    = "\033[0m"
)

// Renderer writes engine events to a text stream.
// It also implements io.Writer so other output shares its line handling.
type Renderer struct {
	// mu serializes writes.
	mu sync.Mutex
	// out is the destination stream.
	out io.Writer
	// tty enables in-place updates and colors.
	tty bool
	// inline is set when the cursor sits after an in-place line.
	inline bool
	// snooze is the snooze countdown length announced with the alarm.
	snooze time.Duration
	// now returns the current time for relative time messages.
	now func() time.Time
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithTTY forces terminal mode on or off instead of detecting it.
func WithTTY(tty bool) RendererOption {
	return func(r *Renderer) {
		r.tty = tty
	}
}

// WithSnoozeDuration sets the snooze length mentioned in the alarm prompt.
func WithSnoozeDuration(d time.Duration) RendererOption {
	return func(r *Renderer) {
		if d > 0 {
			r.snooze = d
		}
	}
}

// NewRenderer returns a renderer writing to out.
// Terminal mode is enabled when out is a terminal file descriptor.
func NewRenderer(out io.Writer, opts ...RendererOption) *Renderer {
	r := &Renderer{
		out:    out,
		tty:    IsTerminal(out),
		snooze: domain.DefaultSnoozeSeconds * time.Second,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Write writes p as regular line-oriented output.
func (r *Renderer) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.breakInline()

	return r.out.Write(p)
}

// Render writes a single event.
func (r *Renderer) Render(_ context.Context, event domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch event.Kind {
	case domain.EventDisplayUpdate:
		r.inlinef("%s", event.Text)
	case domain.EventFlashToggle:
		if !r.tty {
			return
		}

		sgr := flashOffSGR
		if event.FlashOn {
			sgr = flashOnSGR
		}

		r.inlinef("%s  TIME'S UP  %s", sgr, resetSGR)
	case domain.EventAlarmStarted:
		r.linef("Time's up!")
		r.linef("Type the phrase to continue: %s", event.Snapshot.ChallengePhrase)
		r.linef("Or type 'snooze' to sleep for %s.", humanizeDuration(r.now(), r.snooze))
	case domain.EventAlarmCleared:
		r.linef("Alarm cleared.")
	case domain.EventValidationError:
		r.linef("Invalid input: %s", event.Message)
	case domain.EventStateChanged:
		r.renderState(event.Snapshot)
	default:
	}
}

func (r *Renderer) renderState(s domain.Snapshot) {
	switch s.State {
	case domain.StateIdle:
		r.linef(
			"Enter timer duration as 'minutes seconds' (Enter for %d %d).",
			s.Defaults.Minutes,
			s.Defaults.Seconds,
		)
	case domain.StateRunning:
		if s.Snoozed && s.Remaining > 0 {
			wake := r.now().Add(time.Duration(s.Remaining) * time.Second)
			r.linef("Snoozed, the alarm rings again %s.", humanize.RelTime(r.now(), wake, "from now", "ago"))
		}

		r.linef("Running. Type 'pause' or 'stop'.")
	case domain.StatePaused:
		r.linef("Paused at %s. Type 'resume' or 'stop'.", s.Display)
	case domain.StateExpired:
	}
}

// inlinef writes a line that the next inline write replaces on a terminal.
func (r *Renderer) inlinef(format string, args ...any) {
	if !r.tty {
		_, _ = fmt.Fprintf(r.out, format+"\n", args...)
		return
	}

	_, _ = fmt.Fprintf(r.out, clearLine+format, args...)
	r.inline = true
}

func (r *Renderer) linef(format string, args ...any) {
	r.breakInline()

	_, _ = fmt.Fprintf(r.out, format+"\n", args...)
}

func (r *Renderer) breakInline() {
	if !r.inline {
		return
	}

	_, _ = io.WriteString(r.out, "\n")
	r.inline = false
}

// humanizeDuration renders d as "5 minutes" style text.
func humanizeDuration(now time.Time, d time.Duration) string {
	return strings.TrimSpace(humanize.RelTime(now, now.Add(d), "", ""))
}
