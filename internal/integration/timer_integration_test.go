package integration

import (
	"bytes"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/focus-timer/internal/config"
	domain "github.com/oshokin/focus-timer/internal/domain/timer"
	"github.com/oshokin/focus-timer/internal/service/timer"
)

// lineReader is an io.Reader fed line by line from the test.
type lineReader struct {
	// lines delivers whole input lines.
	lines chan string
	// pending holds the unread part of the current line.
	pending []byte
}

// newLineReader must be called inside the bubble so reads block durably.
func newLineReader() *lineReader {
	return &lineReader{
		lines: make(chan string),
	}
}

// Read returns the next chunk of input or io.EOF once closed.
func (r *lineReader) Read(p []byte) (int, error) {
	if len(r.pending) == 0 {
		line, ok := <-r.lines
		if !ok {
			return 0, io.EOF
		}

		r.pending = []byte(line + "\n")
	}

	n := copy(p, r.pending)
	r.pending = r.pending[n:]

	return n, nil
}

// send types a line and lets the timer process it.
func (r *lineReader) send(line string) {
	r.lines <- line

	synctest.Wait()
}

// syncBuffer is a goroutine-safe output sink.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// Write appends p.
func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

// String returns everything written so far.
func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

// writeSettings stores settings for a single test run.
func writeSettings(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, config.Save(path, &config.Config{
		LogLevel:      "error",
		AllowMultiple: true,
	}))

	return path
}

// TestTimer_EndToEnd runs the binary flow: countdown, alarm, challenge, restart and quit.
func TestTimer_EndToEnd(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		var (
			in   = newLineReader()
			out  = new(syncBuffer)
			done = make(chan error, 1)
		)

		options := &timer.Options{
			ConfigPath: writeSettings(t),
			Initial:    &domain.Config{Seconds: 2},
			In:         in,
			Out:        out,
		}

		go func() {
			done <- timer.Run(t.Context(), options)
		}()

		synctest.Wait()
		require.Contains(t, out.String(), "00:02\n")

		time.Sleep(time.Second)
		synctest.Wait()
		require.Contains(t, out.String(), "00:01\n")

		time.Sleep(time.Second)
		synctest.Wait()
		require.Contains(t, out.String(), "Time's up!\n")
		require.Contains(t, out.String(), "Type the phrase to continue: I am ready to focus again\n")

		in.send("wrong")
		require.Contains(t, out.String(), "Invalid input: "+domain.ChallengeMismatchMessage)

		in.send("I am ready to focus again")
		require.Contains(t, out.String(), "Alarm cleared.\n")
		require.Contains(t, out.String(), "Enter timer duration as 'minutes seconds' (Enter for 0 2).\n")

		// Enter restarts the remembered duration.
		in.send("")
		time.Sleep(time.Second)
		synctest.Wait()

		in.send("status")
		require.Contains(t, out.String(), "State: running, remaining 00:01")

		in.send("stop")
		in.send("quit")

		require.NoError(t, <-done)
		close(in.lines)
	})
}

// TestTimer_SnoozeAndEOF snoozes the alarm and exits when the input ends.
func TestTimer_SnoozeAndEOF(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		var (
			in   = newLineReader()
			out  = new(syncBuffer)
			done = make(chan error, 1)
		)

		options := &timer.Options{
			ConfigPath: writeSettings(t),
			In:         in,
			Out:        out,
		}

		go func() {
			done <- timer.Run(t.Context(), options)
		}()

		synctest.Wait()

		in.send("set 0 60")
		require.Contains(t, out.String(), "Invalid input: "+domain.InvalidDurationMessage)

		in.send("set 0 1")
		time.Sleep(time.Second)
		synctest.Wait()
		require.Contains(t, out.String(), "Time's up!\n")

		in.send("snooze")
		require.Contains(t, out.String(), "Snoozed, the alarm rings again 5 minutes from now.\n")
		require.Contains(t, out.String(), "05:00\n")

		time.Sleep(time.Second)
		synctest.Wait()
		require.Contains(t, out.String(), "04:59\n")

		close(in.lines)
		require.NoError(t, <-done)
	})
}
