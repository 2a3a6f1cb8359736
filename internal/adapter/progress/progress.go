package progress

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/khmm12/ping-sweep/internal/ports"
)

// WriterSink prints a human readable progress line per update, usually to stderr.
type WriterSink struct {
	w io.Writer
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) Progress(_ context.Context, p ports.SweepProgress) {
	_, _ = fmt.Fprintf(s.w, "progress: %d/%d hosts probed (%d%%), %d up\n", p.Completed, p.Total, percent(p), p.Up)
}

// LogSink reports progress as debug log records.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Progress(ctx context.Context, p ports.SweepProgress) {
	s.logger.DebugContext(ctx, "Sweep progress",
		slog.Group("progress",
			slog.Int("completed", p.Completed),
			slog.Int("total", p.Total),
			slog.Int("up", p.Up),
			slog.Int("percent", percent(p)),
		))
}

func percent(p ports.SweepProgress) int {
	if p.Total <= 0 {
		return 100
	}

	return p.Completed * 100 / p.Total
}
