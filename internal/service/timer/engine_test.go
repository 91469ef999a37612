package timer

import (
	"context"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/focus-timer/internal/domain/timer"
)

// recorder is a Surface that keeps every rendered event.
type recorder struct {
	// mu protects events.
	mu sync.Mutex
	// events holds rendered events in order.
	events []domain.Event
}

// Render stores the event.
func (r *recorder) Render(_ context.Context, event domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)
}

// count returns how many events of the kind were rendered.
func (r *recorder) count(kind domain.EventKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int

	for _, e := range r.events {
		if e.Kind == kind {
			n++
		}
	}

	return n
}

// last returns the most recent event of the kind.
func (r *recorder) last(kind domain.EventKind) domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Kind == kind {
			return r.events[i]
		}
	}

	return domain.Event{}
}

// startEngine runs an engine in the current bubble and returns a function that stops it.
func startEngine(t *testing.T, opts ...EngineOption) (*Engine, *recorder, func()) {
	t.Helper()

	rec := new(recorder)
	engine := NewEngine(domain.NewMachine(), []Surface{rec}, opts...)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)

	go func() {
		done <- engine.Run(ctx)
	}()

	synctest.Wait()

	return engine, rec, func() {
		cancel()
		require.NoError(t, <-done)
	}
}

// advance moves the fake clock and lets the engine settle.
func advance(d time.Duration) {
	time.Sleep(d)
	synctest.Wait()
}

// snapshot reads the engine state or fails the test.
func snapshot(t *testing.T, e *Engine) domain.Snapshot {
	t.Helper()

	s, err := e.Snapshot(t.Context())
	require.NoError(t, err)

	return s
}

// TestEngine_EndToEnd counts down three seconds, fails a challenge and passes it.
func TestEngine_EndToEnd(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		e, rec, stop := startEngine(t)
		defer stop()

		// Initial idle snapshot is published on start.
		require.Equal(t, 1, rec.count(domain.EventStateChanged))

		require.NoError(t, e.Submit(t.Context(), domain.Config{Seconds: 3}))

		s := snapshot(t, e)
		require.Equal(t, domain.StateRunning, s.State)
		require.Equal(t, 3, s.Remaining)

		advance(time.Second)
		require.Equal(t, "00:02", rec.last(domain.EventDisplayUpdate).Text)
		require.Equal(t, 2, snapshot(t, e).Remaining)

		advance(time.Second)
		require.Equal(t, "00:01", rec.last(domain.EventDisplayUpdate).Text)

		advance(time.Second)
		s = snapshot(t, e)
		require.Equal(t, domain.StateExpired, s.State)
		require.Equal(t, 0, s.Remaining)
		require.Equal(t, 1, rec.count(domain.EventAlarmStarted))

		err := e.SubmitChallenge(t.Context(), "wrong")
		require.ErrorIs(t, err, domain.ErrChallengeMismatch)
		require.Equal(t, domain.StateExpired, snapshot(t, e).State)
		require.Equal(t, 1, rec.count(domain.EventValidationError))

		require.NoError(t, e.SubmitChallenge(t.Context(), "I am ready to focus again"))
		require.Equal(t, domain.StateIdle, snapshot(t, e).State)
		require.Equal(t, 1, rec.count(domain.EventAlarmCleared))

		// Neither repeater is left running.
		require.False(t, e.tick.Active())
		require.False(t, e.flash.Active())
	})
}

// TestEngine_FlashCadence checks the flash period and that it stops with the alarm.
func TestEngine_FlashCadence(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		e, rec, stop := startEngine(t)
		defer stop()

		require.NoError(t, e.Submit(t.Context(), domain.Config{Seconds: 1}))
		advance(time.Second)

		// Entering Expired turns the flash on at once.
		require.Equal(t, 1, rec.count(domain.EventFlashToggle))
		require.True(t, rec.last(domain.EventFlashToggle).FlashOn)

		advance(500 * time.Millisecond)
		require.Equal(t, 2, rec.count(domain.EventFlashToggle))
		require.False(t, rec.last(domain.EventFlashToggle).FlashOn)

		advance(500 * time.Millisecond)
		require.Equal(t, 3, rec.count(domain.EventFlashToggle))
		require.True(t, rec.last(domain.EventFlashToggle).FlashOn)

		advance(time.Second)
		require.Equal(t, 5, rec.count(domain.EventFlashToggle))

		require.NoError(t, e.Stop(t.Context()))
		require.False(t, e.flash.Active())

		advance(5 * time.Second)
		require.Equal(t, 5, rec.count(domain.EventFlashToggle))
		require.Equal(t, domain.StateIdle, snapshot(t, e).State)
	})
}

// TestEngine_CustomFlashInterval verifies the flash interval option.
func TestEngine_CustomFlashInterval(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		e, rec, stop := startEngine(t, WithFlashInterval(time.Second))
		defer stop()

		require.NoError(t, e.Submit(t.Context(), domain.Config{}))
		advance(time.Second)
		require.Equal(t, domain.StateExpired, snapshot(t, e).State)

		advance(2 * time.Second)
		require.Equal(t, 3, rec.count(domain.EventFlashToggle))
	})
}

// TestEngine_PauseFreezesCountdown ensures ticks during a pause change nothing.
func TestEngine_PauseFreezesCountdown(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		e, rec, stop := startEngine(t)
		defer stop()

		require.NoError(t, e.Submit(t.Context(), domain.Config{Seconds: 10}))
		advance(2 * time.Second)
		require.Equal(t, 8, snapshot(t, e).Remaining)

		require.NoError(t, e.TogglePause(t.Context()))
		require.Equal(t, domain.StatePaused, snapshot(t, e).State)

		updates := rec.count(domain.EventDisplayUpdate)

		advance(5 * time.Second)
		require.Equal(t, 8, snapshot(t, e).Remaining)
		require.Equal(t, updates, rec.count(domain.EventDisplayUpdate))

		require.NoError(t, e.TogglePause(t.Context()))
		advance(time.Second)
		require.Equal(t, 7, snapshot(t, e).Remaining)
	})
}

// TestEngine_StopHaltsTicks verifies nothing changes after Stop returns.
func TestEngine_StopHaltsTicks(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		e, rec, stop := startEngine(t)
		defer stop()

		require.NoError(t, e.Submit(t.Context(), domain.Config{Minutes: 1, Seconds: 5}))
		advance(1500 * time.Millisecond)

		require.NoError(t, e.Stop(t.Context()))
		require.False(t, e.tick.Active())

		updates := rec.count(domain.EventDisplayUpdate)

		advance(10 * time.Second)
		require.Equal(t, updates, rec.count(domain.EventDisplayUpdate))

		s := snapshot(t, e)
		require.Equal(t, domain.StateIdle, s.State)
		require.Equal(t, domain.Config{Minutes: 1, Seconds: 5}, s.Defaults)

		// A restarted countdown begins a fresh full period.
		require.NoError(t, e.Start(t.Context()))
		advance(999 * time.Millisecond)
		require.Equal(t, 65, snapshot(t, e).Remaining)

		advance(time.Millisecond)
		require.Equal(t, 64, snapshot(t, e).Remaining)
	})
}

// TestEngine_Snooze restarts a five-minute countdown and stops the flash.
func TestEngine_Snooze(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		e, rec, stop := startEngine(t)
		defer stop()

		require.NoError(t, e.Submit(t.Context(), domain.Config{Seconds: 1}))
		advance(time.Second)
		require.Equal(t, domain.StateExpired, snapshot(t, e).State)

		require.NoError(t, e.Snooze(t.Context()))

		s := snapshot(t, e)
		require.Equal(t, domain.StateRunning, s.State)
		require.Equal(t, 300, s.Remaining)
		require.True(t, s.Snoozed)
		require.False(t, s.FlashActive)
		require.False(t, e.flash.Active())

		flashes := rec.count(domain.EventFlashToggle)

		advance(time.Second)
		require.Equal(t, 299, snapshot(t, e).Remaining)
		require.Equal(t, flashes, rec.count(domain.EventFlashToggle))

		advance(299 * time.Second)
		require.Equal(t, domain.StateExpired, snapshot(t, e).State)
		require.Equal(t, 2, rec.count(domain.EventAlarmStarted))
	})
}

// TestEngine_ValidationError keeps the engine idle and reports the error.
func TestEngine_ValidationError(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		e, rec, stop := startEngine(t)
		defer stop()

		err := e.Submit(t.Context(), domain.Config{Seconds: 60})
		require.ErrorIs(t, err, domain.ErrInvalidDuration)
		require.Equal(t, domain.StateIdle, snapshot(t, e).State)
		require.NotEmpty(t, rec.last(domain.EventValidationError).Message)
		require.False(t, e.tick.Active())

		// Retrying is allowed.
		require.NoError(t, e.Submit(t.Context(), domain.Config{Seconds: 59}))
		require.Equal(t, domain.StateRunning, snapshot(t, e).State)
	})
}

// TestEngine_Lifecycle covers commands before and after Run and a second Run.
func TestEngine_Lifecycle(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		engine := NewEngine(domain.NewMachine(), nil)

		// Before Run, commands wait for the caller's context.
		ctx, cancel := context.WithTimeout(t.Context(), time.Second)
		err := engine.Start(ctx)
		cancel()
		require.ErrorIs(t, err, context.DeadlineExceeded)

		runCtx, stopRun := context.WithCancel(t.Context())
		done := make(chan error, 1)

		go func() {
			done <- engine.Run(runCtx)
		}()

		synctest.Wait()
		require.Error(t, engine.Run(runCtx))

		require.NoError(t, engine.Submit(t.Context(), domain.Config{Seconds: 5}))

		stopRun()
		require.NoError(t, <-done)

		require.ErrorIs(t, engine.Stop(t.Context()), ErrEngineStopped)
		require.False(t, engine.tick.Active())
	})
}

// TestSurfaceFunc checks the function adapter.
func TestSurfaceFunc(t *testing.T) {
	t.Parallel()

	var got domain.EventKind

	SurfaceFunc(func(_ context.Context, e domain.Event) { got = e.Kind }).
		Render(context.Background(), domain.Event{Kind: domain.EventAlarmCleared})

	require.Equal(t, domain.EventAlarmCleared, got)
}
