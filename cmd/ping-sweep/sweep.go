package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/khmm12/ping-sweep/internal/adapter/progress"
	"github.com/khmm12/ping-sweep/internal/adapter/prometheus"
	"github.com/khmm12/ping-sweep/internal/adapter/render"
	"github.com/khmm12/ping-sweep/internal/common/cidr"
	"github.com/khmm12/ping-sweep/internal/common/logging"
	"github.com/khmm12/ping-sweep/internal/common/tracing"
	"github.com/khmm12/ping-sweep/internal/ports"
	"github.com/khmm12/ping-sweep/internal/usecase"
)

type Sweep struct {
	CIDR string `arg:"" name:"cidr" help:"IPv4 prefix to sweep (e.g., 192.168.1.0/24). A bare address is swept as /32."`

	Probe    Probe      `embed:"" prefix:"probe."`
	Resolve  Resolve    `embed:"" prefix:"resolve."`
	Sweep    SweepFlags `embed:"" prefix:"sweep."`
	Names    bool       `name:"resolve" env:"RESOLVE" default:"true" negatable:"" help:"Resolve host names. Enabled by default."`
	Output   string     `name:"output" short:"o" env:"OUTPUT" default:"text" enum:"text,json" help:"Report format (text, json)."`
	Progress bool       `name:"progress" env:"PROGRESS" default:"true" negatable:"" help:"Print progress lines to stderr. Enabled by default."`
	Textfile string     `name:"metrics.textfile" env:"METRICS_TEXTFILE" type:"path" help:"Also write the sweep metrics to this file in the node_exporter textfile format."`
}

func (c *Sweep) Run(cli *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ctx = tracing.WithTraceID(ctx)

	logger, err := cli.logger()
	if err != nil {
		return err
	}

	renderer, err := render.New(render.Format(c.Output), os.Stdout)
	if err != nil {
		return err
	}

	probe, closeProbe, err := buildProbe(ctx, logger, c.Probe, c.Resolve, c.Names, c.Sweep.Concurrency)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to set up host probe", logging.Error(err))
		return err
	}

	defer closeProbe()

	var (
		exporter  *prometheus.Exporter
		publisher ports.SweepReportPublisher
		sink      ports.ProgressSink
	)

	if c.Textfile != "" {
		exporter, err = prometheus.NewExporter()
		if err != nil {
			logger.ErrorContext(ctx, "Failed to create prometheus exporter", logging.Error(err))
			return err
		}

		publisher = prometheus.NewSweepReportPublisher(logger, exporter)
	}

	if c.Progress {
		sink = progress.NewWriterSink(os.Stderr)
	}

	uc := usecase.NewSweepHostsUseCase(logger, probe, publisher, sink, c.Sweep.options(c.Probe, c.Resolve, c.Names))

	report, err := uc.Execute(ctx, usecase.SweepHostsCommand{
		CIDR:    c.CIDR,
		Exclude: c.Sweep.Exclude,
	})

	var timeoutErr *usecase.SweepTimeoutError

	switch {
	case report == nil:
		logger.ErrorContext(ctx, "Sweep refused", logging.Error(err))
		return err
	case errors.As(err, &timeoutErr):
		// A truncated sweep still produced a report, unprobed hosts are listed as unknown.
		logger.WarnContext(ctx, "Sweep stopped at its deadline", logging.Error(err))
		err = nil
	case err != nil:
		logger.ErrorContext(ctx, "Sweep did not finish", logging.Error(err))
	}

	if rerr := renderer.Render(report); rerr != nil {
		return errors.Join(err, fmt.Errorf("failed to render report: %w", rerr))
	}

	if exporter != nil {
		if werr := exporter.WriteTextfile(c.Textfile); werr != nil {
			logger.ErrorContext(ctx, "Failed to write metrics textfile", logging.Error(werr), slog.String("path", c.Textfile))
			return errors.Join(err, werr)
		}
	}

	return err
}

func (c *Sweep) Validate() error {
	var errs []error

	if _, err := cidr.Parse(c.CIDR); err != nil {
		errs = append(errs, err)
	}

	errs = append(errs, c.Probe.validate()...)
	errs = append(errs, c.Resolve.validate()...)
	errs = append(errs, c.Sweep.validate()...)

	return errors.Join(errs...)
}
