package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/khmm12/ping-sweep/internal/common/logging"
	"github.com/khmm12/ping-sweep/internal/common/tracing"
)

type Task interface {
	Execute(ctx context.Context) error
}

// Worker runs a task immediately and then once per interval. A round that outlasts
// the interval delays the next one instead of overlapping it.
type Worker struct {
	logger *slog.Logger

	interval time.Duration
	task     Task

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

func NewWorker(logger *slog.Logger, interval time.Duration, task Task) *Worker {
	return &Worker{
		logger:   logger,
		interval: interval,
		task:     task,
	}
}

// Start blocks until ctx is done or Shutdown is called.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("worker is already running")
	}

	ctx, cancel := context.WithCancel(ctx)
	w.running = true
	w.cancel = cancel
	w.mu.Unlock()

	defer func() {
		cancel()

		w.mu.Lock()
		w.running = false
		w.cancel = nil
		w.mu.Unlock()
	}()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		err := w.run(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			w.logger.ErrorContext(ctx, "Failed to execute task", logging.Error(err))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *Worker) Shutdown(_ context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel != nil {
		w.cancel()
	}

	return nil
}

func (w *Worker) run(ctx context.Context) error {
	return w.task.Execute(tracing.WithTraceID(ctx))
}
