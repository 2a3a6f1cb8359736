package prometheus

import (
	"context"
	"log/slog"

	"github.com/khmm12/ping-sweep/internal/ports"
)

type SweepReportPublisher struct {
	logger   *slog.Logger
	exporter *Exporter
}

func NewSweepReportPublisher(logger *slog.Logger, exporter *Exporter) *SweepReportPublisher {
	return &SweepReportPublisher{
		logger:   logger,
		exporter: exporter,
	}
}

func (p *SweepReportPublisher) Publish(ctx context.Context, report *ports.SweepReport) error {
	summary := report.Summary()

	p.logger.DebugContext(ctx, "Publishing sweep report",
		slog.Group("publish",
			slog.Int("up_hosts", summary.Up),
			slog.Int("down_hosts", summary.Down),
			slog.Int("unknown_hosts", summary.Unknown),
		))

	m := p.exporter.metrics

	outcome := "complete"
	complete := 1.0

	if !report.Complete() {
		outcome = "partial"
		complete = 0.0
	}

	m.sweepsTotal.WithLabelValues(outcome).Inc()
	m.sweepComplete.Set(complete)
	m.sweepDuration.Set(report.Duration().Seconds())
	m.sweepLastTimestamp.Set(float64(report.FinishedAt().Unix()))
	m.hostsTotal.Set(float64(summary.Total))
	m.hostsUp.Set(float64(summary.Up))
	m.hostsDown.Set(float64(summary.Down))
	m.hostsNamed.Set(float64(summary.Named))

	// Hosts that vanished or changed name since the previous sweep must not linger.
	m.hostUp.Reset()

	for _, rec := range report.All() {
		switch rec.State {
		case ports.HostUp:
			m.hostUp.WithLabelValues(rec.Address.String(), rec.Name).Set(1.0)
		case ports.HostDown:
			m.hostUp.WithLabelValues(rec.Address.String(), rec.Name).Set(0.0)
		case ports.HostUnknown:
		}
	}

	return nil
}
