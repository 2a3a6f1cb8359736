package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/khmm12/ping-sweep/internal/common/tracing"
)

type recordingTask struct {
	mu       sync.Mutex
	traceIDs []string
	err      error
}

func (t *recordingTask) Execute(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.traceIDs = append(t.traceIDs, tracing.GetTraceID(ctx))

	return t.err
}

func (t *recordingTask) runs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]string(nil), t.traceIDs...)
}

func TestWorker_RunsImmediatelyAndOnInterval(t *testing.T) {
	task := &recordingTask{err: errors.New("sweep failed")}
	w := NewWorker(discardLogger(), 20*time.Millisecond, task)

	done := make(chan error, 1)
	go func() { done <- w.Start(t.Context()) }()

	require.Eventually(t, func() bool { return len(task.runs()) >= 3 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, w.Shutdown(t.Context()))
	require.NoError(t, <-done)

	runs := task.runs()
	require.NotEmpty(t, runs[0])
	require.NotEqual(t, runs[0], runs[1], "every round gets its own trace id")
}

func TestWorker_StopsWithContext(t *testing.T) {
	task := &recordingTask{}
	w := NewWorker(discardLogger(), time.Hour, task)

	ctx, cancel := context.WithCancel(t.Context())

	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	require.Eventually(t, func() bool { return len(task.runs()) == 1 }, time.Second, 5*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestWorker_RefusesSecondStart(t *testing.T) {
	task := &recordingTask{}
	w := NewWorker(discardLogger(), time.Hour, task)

	done := make(chan error, 1)
	go func() { done <- w.Start(t.Context()) }()

	require.Eventually(t, func() bool { return len(task.runs()) == 1 }, time.Second, 5*time.Millisecond)
	require.ErrorContains(t, w.Start(t.Context()), "already running")

	require.NoError(t, w.Shutdown(t.Context()))
	require.NoError(t, <-done)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
