package timer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/oshokin/focus-timer/internal/api/terminal"
	"github.com/oshokin/focus-timer/internal/config"
	domain "github.com/oshokin/focus-timer/internal/domain/timer"
	"github.com/oshokin/focus-timer/internal/logger"
	"github.com/oshokin/focus-timer/internal/service/instance"
	"github.com/oshokin/focus-timer/internal/service/notify"
)

// Options controls the focus-timer process.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// LogLevel overrides the log level from the settings when not empty.
	LogLevel string
	// Initial starts a countdown right away when set.
	Initial *domain.Config
	// In is the command input, stdin when nil.
	In io.Reader
	// Out receives the display, stdout when nil.
	Out io.Writer
}

// errUnknownLogLevel is returned for an unknown --log-level value.
var errUnknownLogLevel = errors.New("unknown log level")

// Run loads the settings, starts the engine and serves the terminal until
// the input ends, the user quits or ctx is canceled.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "focus-timer")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	levelName := cfg.LogLevel
	if opts.LogLevel != "" {
		levelName = opts.LogLevel
	}

	level, ok := logger.ParseLogLevel(levelName)
	if !ok {
		return fmt.Errorf("%w: %q", errUnknownLogLevel, levelName)
	}

	logger.SetLevel(level)

	if !cfg.AllowMultiple {
		if err = instance.EnsureSingle(ctx); err != nil {
			return err
		}
	}

	in, out := opts.In, opts.Out
	if in == nil {
		in = os.Stdin
	}

	if out == nil {
		out = os.Stdout
	}

	machine := domain.NewMachine(
		domain.WithChallengePhrase(cfg.ChallengePhrase),
		domain.WithSnoozeSeconds(cfg.SnoozeSeconds()),
		domain.WithDefaults(cfg.Defaults()),
	)

	renderer := terminal.NewRenderer(out, terminal.WithSnoozeDuration(cfg.SnoozeDuration))
	surfaces := []Surface{renderer, notify.NewHook(cfg.AlarmCommand)}
	engine := NewEngine(machine, surfaces, WithFlashInterval(cfg.FlashInterval))

	engineCtx, stopEngine := context.WithCancel(ctx)
	defer stopEngine()

	engineDone := make(chan error, 1)

	go func() {
		engineDone <- engine.Run(engineCtx)
	}()

	logger.InfoKV(
		ctx,
		"Focus timer ready",
		"snooze", cfg.SnoozeDuration.String(),
		"flash_interval", cfg.FlashInterval.String(),
		"alarm_command", len(cfg.AlarmCommand) > 0,
	)

	runErr := serve(engineCtx, engine, renderer, in, opts.Initial)

	stopEngine()

	if err = <-engineDone; err != nil {
		return err
	}

	return runErr
}

// serve optionally submits the initial duration and runs the terminal controller.
func serve(ctx context.Context, engine *Engine, out io.Writer, in io.Reader, initial *domain.Config) error {
	if initial != nil {
		err := engine.Submit(ctx, *initial)

		switch {
		case errors.Is(err, domain.ErrInvalidDuration):
			// Already shown to the user; the form stays open for a retry.
		case err != nil:
			return err
		}
	}

	return terminal.NewController(engine, out).Run(ctx, in)
}
