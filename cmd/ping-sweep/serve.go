package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/khmm12/ping-sweep/internal/adapter/httpsrv"
	"github.com/khmm12/ping-sweep/internal/adapter/progress"
	"github.com/khmm12/ping-sweep/internal/adapter/prometheus"
	"github.com/khmm12/ping-sweep/internal/adapter/worker"
	"github.com/khmm12/ping-sweep/internal/common/cidr"
	"github.com/khmm12/ping-sweep/internal/common/logging"
	"github.com/khmm12/ping-sweep/internal/ports"
	"github.com/khmm12/ping-sweep/internal/usecase"
)

type Metrics struct {
	Addr string `name:"addr" env:"METRICS_ADDR" default:"0.0.0.0:8080" help:"HTTP Address to bind Prometheus metrics"`
	Path string `name:"path" env:"METRICS_PATH" default:"/metrics" help:"Path to serve Prometheus metrics"`
}

type Serve struct {
	CIDR     string        `arg:"" name:"cidr" help:"IPv4 prefix to sweep (e.g., 192.168.1.0/24)."`
	Interval time.Duration `name:"interval" env:"SWEEP_INTERVAL" default:"5m" help:"The interval between the start of two sweeps (e.g., 1m, 5m, 1h)."`

	Probe   Probe      `embed:"" prefix:"probe."`
	Resolve Resolve    `embed:"" prefix:"resolve."`
	Sweep   SweepFlags `embed:"" prefix:"sweep."`
	Metrics Metrics    `embed:"" prefix:"metrics."`
	Names   bool       `name:"resolve" env:"RESOLVE" default:"true" negatable:"" help:"Resolve host names. Enabled by default."`
}

func (c *Serve) Run(cli *CLI) error {
	ctx := context.Background()
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger, err := cli.logger()
	if err != nil {
		return err
	}

	probe, closeProbe, err := buildProbe(ctx, logger, c.Probe, c.Resolve, c.Names, c.Sweep.Concurrency)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to set up host probe", logging.Error(err))
		return err
	}

	defer func() {
		logger.InfoContext(ctx, "Closing host probe")
		closeProbe()
	}()

	exporter, err := prometheus.NewExporter()
	if err != nil {
		logger.ErrorContext(ctx, "Failed to create prometheus exporter", logging.Error(err))
		return err
	}

	store := httpsrv.NewReportStore()

	uc := usecase.NewSweepHostsUseCase(
		logger,
		probe,
		multiPublisher{prometheus.NewSweepReportPublisher(logger, exporter), store},
		progress.NewLogSink(logger),
		c.Sweep.options(c.Probe, c.Resolve, c.Names),
	)

	httpsrv := httpsrv.NewServer(c.Metrics.Addr, httpsrv.ServerOptions{
		MetricsHandler: exporter.Handler(),
		MetricsPath:    c.Metrics.Path,
		ReportHandler:  store,
	})

	worker := worker.NewWorker(
		logger,
		c.Interval,
		newTask(logger, uc, usecase.SweepHostsCommand{CIDR: c.CIDR, Exclude: c.Sweep.Exclude}),
	)

	defer func() {
		logger.InfoContext(ctx, "Stopping...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		logger.InfoContext(ctx, "Stopping Worker...")
		serr := worker.Shutdown(shutdownCtx)
		if serr != nil {
			logger.ErrorContext(ctx, "Failed to stop Worker", logging.Error(serr))
		}

		logger.InfoContext(ctx, "Stopping HTTP Server...")
		serr = httpsrv.Shutdown(shutdownCtx)
		if serr != nil {
			logger.ErrorContext(ctx, "Failed to stop HTTP Server", logging.Error(serr))
		}

		logger.InfoContext(ctx, "Stopped")
	}()

	errCh := make(chan error, 2)

	go func() {
		logger.InfoContext(ctx, "Start HTTP Server", slog.String("address", httpsrv.ListenAddr()))

		err := httpsrv.Start()
		if err != nil {
			logger.ErrorContext(ctx, "Failed to start HTTP Server", logging.Error(err))
			errCh <- err
		}
	}()

	go func() {
		logger.InfoContext(ctx, "Start Worker", slog.Duration("interval", c.Interval))

		err := worker.Start(ctx)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to start Worker", logging.Error(err))
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return nil
	}
}

func (c *Serve) Validate() error {
	var errs []error

	// Refuse a bad prefix at startup rather than on every round.
	if _, err := cidr.Parse(c.CIDR); err != nil {
		errs = append(errs, err)
	}

	if c.Interval <= 0 {
		errs = append(errs, errors.New("--interval: must be greater than zero"))
	}

	if !isTCPAddr(c.Metrics.Addr) {
		errs = append(errs, errors.New("--metrics.addr: must be a valid tcp listening address (e.g. 0.0.0.0:8080)"))
	}

	errs = append(errs, c.Probe.validate()...)
	errs = append(errs, c.Resolve.validate()...)
	errs = append(errs, c.Sweep.validate()...)

	return errors.Join(errs...)
}

// multiPublisher hands each report to every publisher and joins their errors.
type multiPublisher []ports.SweepReportPublisher

func (m multiPublisher) Publish(ctx context.Context, report *ports.SweepReport) error {
	var errs []error

	for _, p := range m {
		if err := p.Publish(ctx, report); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

type taskUC interface {
	Execute(ctx context.Context, cmd usecase.SweepHostsCommand) (*ports.SweepReport, error)
}

type task struct {
	logger *slog.Logger
	uc     taskUC
	cmd    usecase.SweepHostsCommand
}

func newTask(logger *slog.Logger, uc taskUC, cmd usecase.SweepHostsCommand) *task {
	return &task{
		logger: logger,
		uc:     uc,
		cmd:    cmd,
	}
}

func (t *task) Execute(ctx context.Context) error {
	now := time.Now()

	t.logger.InfoContext(ctx, "Run sweep", slog.String("cidr", t.cmd.CIDR))

	report, err := t.uc.Execute(ctx, t.cmd)

	var timeoutErr *usecase.SweepTimeoutError

	switch {
	case errors.As(err, &timeoutErr):
		t.logger.WarnContext(ctx, "Sweep stopped at its deadline", logging.Error(err), slog.Duration("duration", time.Since(now)))
	case err != nil:
		t.logger.ErrorContext(ctx, "Failed to execute sweep", logging.Error(err), slog.Duration("duration", time.Since(now)))
	default:
		t.logger.InfoContext(ctx, "Finished sweep",
			slog.Int("up_hosts", report.Summary().Up),
			slog.Duration("duration", time.Since(now)))
	}

	return nil
}
