package timer

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	domain "github.com/oshokin/focus-timer/internal/domain/timer"
	"github.com/oshokin/focus-timer/internal/logger"
	"github.com/oshokin/focus-timer/internal/service/repeater"
)

// TickInterval is the countdown granularity.
const TickInterval = time.Second

var (
	// ErrEngineStopped is returned when a command is sent to an engine that is not running.
	ErrEngineStopped = errors.New("timer engine is not running")
	// errEngineAlreadyRunning is returned when Run is called twice.
	errEngineAlreadyRunning = errors.New("timer engine is already running")
)

// Surface receives the events produced by the engine, in order.
// Render is called from the engine goroutine and must not call back into the engine.
type Surface interface {
	Render(ctx context.Context, event domain.Event)
}

// SurfaceFunc adapts a function to the Surface interface.
type SurfaceFunc func(ctx context.Context, event domain.Event)

// Render calls f.
func (f SurfaceFunc) Render(ctx context.Context, event domain.Event) {
	f(ctx, event)
}

// Engine owns a Machine and is the only writer of its state.
type Engine struct {
	// machine is mutated only by the Run goroutine.
	machine *domain.Machine
	// surfaces receive every event.
	surfaces []Surface

	// commands carries user commands to the Run goroutine.
	commands chan command
	// ticks carries countdown signals from the tick repeater.
	ticks chan struct{}
	// flashes carries flash signals from the flash repeater.
	flashes chan struct{}

	// tick fires once per TickInterval while the countdown is Running or Paused.
	tick *repeater.Repeater
	// flash fires once per flash interval while the alarm flashes.
	flash *repeater.Repeater

	// running guards against concurrent Run calls.
	running atomic.Bool
	// done is closed when Run returns.
	done chan struct{}
}

// command is a unit of work applied to the machine by the Run goroutine.
type command struct {
	// name is used for logging only.
	name string
	// apply mutates the machine and returns the produced events.
	apply func(m *domain.Machine) ([]domain.Event, error)
	// reply receives the outcome; it is buffered so the engine never blocks on it.
	reply chan commandResult
}

// commandResult is the outcome of a command.
type commandResult struct {
	snapshot domain.Snapshot
	err      error
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

// engineOptions holds the tunables of an Engine.
type engineOptions struct {
	flashInterval time.Duration
}

// WithFlashInterval overrides the flash toggle period.
func WithFlashInterval(interval time.Duration) EngineOption {
	return func(o *engineOptions) {
		if interval > 0 {
			o.flashInterval = interval
		}
	}
}

// NewEngine returns an engine around machine. Call Run to start processing.
func NewEngine(machine *domain.Machine, surfaces []Surface, opts ...EngineOption) *Engine {
	options := &engineOptions{
		flashInterval: 500 * time.Millisecond,
	}

	for _, opt := range opts {
		opt(options)
	}

	e := &Engine{
		machine:  machine,
		surfaces: surfaces,
		commands: make(chan command),
		ticks:    make(chan struct{}),
		flashes:  make(chan struct{}),
		done:     make(chan struct{}),
	}

	e.tick = repeater.New(TickInterval, signal(e.ticks))
	e.flash = repeater.New(options.flashInterval, signal(e.flashes))

	return e
}

// Run processes commands and repeater signals until ctx is canceled.
// Both repeaters are stopped before Run returns.
func (e *Engine) Run(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		return errEngineAlreadyRunning
	}

	defer close(e.done)

	ctx = logger.WithName(ctx, "engine")

	defer func() {
		e.tick.Stop()
		e.flash.Stop()
	}()

	logger.DebugKV(ctx, "Timer engine started", "flash_interval", e.flash.Period().String())

	e.publish(ctx, []domain.Event{{
		Kind:     domain.EventStateChanged,
		Snapshot: e.machine.Snapshot(),
	}})

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Timer engine stopped")
			return nil
		case cmd := <-e.commands:
			events, err := cmd.apply(e.machine)
			e.handle(ctx, cmd.name, events, err)

			cmd.reply <- commandResult{
				snapshot: e.machine.Snapshot(),
				err:      err,
			}
		case <-e.ticks:
			e.handle(ctx, "tick", e.machine.Tick(), nil)
		case <-e.flashes:
			e.handle(ctx, "flash", e.machine.Flash(), nil)
		}
	}
}

// Submit starts a countdown of the given duration.
func (e *Engine) Submit(ctx context.Context, cfg domain.Config) error {
	return e.exec(ctx, "submit", func(m *domain.Machine) ([]domain.Event, error) {
		return m.Submit(cfg)
	})
}

// Start resumes a paused countdown or starts one with the last used duration.
func (e *Engine) Start(ctx context.Context) error {
	return e.exec(ctx, "start", noError((*domain.Machine).Start))
}

// TogglePause pauses a running countdown or resumes a paused one.
func (e *Engine) TogglePause(ctx context.Context) error {
	return e.exec(ctx, "pause", noError((*domain.Machine).TogglePause))
}

// Stop cancels the countdown or the alarm and returns to the input form.
func (e *Engine) Stop(ctx context.Context) error {
	return e.exec(ctx, "stop", noError((*domain.Machine).Stop))
}

// Snooze clears the alarm and starts the snooze countdown.
func (e *Engine) Snooze(ctx context.Context) error {
	return e.exec(ctx, "snooze", noError((*domain.Machine).Snooze))
}

// SubmitChallenge tries to dismiss the alarm with the typed phrase.
func (e *Engine) SubmitChallenge(ctx context.Context, text string) error {
	return e.exec(ctx, "challenge", func(m *domain.Machine) ([]domain.Event, error) {
		return m.SubmitChallenge(text)
	})
}

// Snapshot returns the current machine state.
func (e *Engine) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	return e.do(ctx, command{
		name:  "snapshot",
		apply: func(*domain.Machine) ([]domain.Event, error) { return nil, nil },
		reply: make(chan commandResult, 1),
	})
}

func (e *Engine) exec(ctx context.Context, name string, apply func(m *domain.Machine) ([]domain.Event, error)) error {
	_, err := e.do(ctx, command{
		name:  name,
		apply: apply,
		reply: make(chan commandResult, 1),
	})

	return err
}

func (e *Engine) do(ctx context.Context, cmd command) (domain.Snapshot, error) {
	select {
	case e.commands <- cmd:
	case <-ctx.Done():
		return domain.Snapshot{}, ctx.Err()
	case <-e.done:
		return domain.Snapshot{}, ErrEngineStopped
	}

	// The reply is sent before the loop takes anything else,
	// so it is already buffered if Run has returned meanwhile.
	select {
	case res := <-cmd.reply:
		return res.snapshot, res.err
	case <-ctx.Done():
		return domain.Snapshot{}, ctx.Err()
	case <-e.done:
		select {
		case res := <-cmd.reply:
			return res.snapshot, res.err
		default:
			return domain.Snapshot{}, ErrEngineStopped
		}
	}
}

// handle reconciles the repeaters with the new machine state, then publishes events.
func (e *Engine) handle(ctx context.Context, name string, events []domain.Event, err error) {
	e.reconcile(ctx)

	switch {
	case err != nil:
		logger.InfoKV(ctx, "Command rejected", "command", name, "error", err)
	case len(events) == 0 && name != "snapshot" && name != "tick":
		logger.DebugKV(ctx, "Command ignored in current state", "command", name, "state", e.machine.State().String())
	}

	e.publish(ctx, events)
}

// reconcile starts or stops the repeaters so that they match the machine state.
// Stop waits for the repeater goroutine, so no stale signal survives a transition.
func (e *Engine) reconcile(ctx context.Context) {
	state := e.machine.State()

	setActive(ctx, e.tick, state == domain.StateRunning || state == domain.StatePaused)
	setActive(ctx, e.flash, e.machine.FlashActive())
}

func (e *Engine) publish(ctx context.Context, events []domain.Event) {
	for _, event := range events {
		switch event.Kind {
		case domain.EventStateChanged:
			logger.InfoKV(
				ctx,
				"Timer state changed",
				"state", event.Snapshot.State.String(),
				"remaining", event.Snapshot.Display,
				"session_id", event.Snapshot.SessionID,
			)
		case domain.EventDisplayUpdate:
			logger.Debugf(ctx, "Remaining %s", event.Text)
		case domain.EventFlashToggle:
			logger.DebugKV(ctx, "Flash toggled", "on", event.FlashOn)
		default:
		}

		for _, surface := range e.surfaces {
			surface.Render(ctx, event)
		}
	}
}

func setActive(ctx context.Context, r *repeater.Repeater, active bool) {
	switch {
	case active && !r.Active():
		r.Start(ctx)
	case !active && r.Active():
		r.Stop()
	}
}

// signal returns a repeater callback delivering one value to ch,
// giving up when the repeater is stopped.
func signal(ch chan<- struct{}) func(ctx context.Context) {
	return func(ctx context.Context) {
		select {
		case ch <- struct{}{}:
		case <-ctx.Done():
		}
	}
}

// noError adapts a machine method that cannot fail.
func noError(fn func(m *domain.Machine) []domain.Event) func(m *domain.Machine) ([]domain.Event, error) {
	return func(m *domain.Machine) ([]domain.Event, error) {
		return fn(m), nil
	}
}
