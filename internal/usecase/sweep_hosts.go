package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/netip"
	"slices"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/khmm12/ping-sweep/internal/common/cidr"
	"github.com/khmm12/ping-sweep/internal/common/tracing"
	"github.com/khmm12/ping-sweep/internal/ports"
)

const (
	DefaultConcurrency      = 15
	DefaultProgressInterval = time.Second
	DefaultResolveTimeout   = 2 * time.Second
	DefaultMaxHosts         = 1 << 16

	// HardMaxHosts bounds every sweep, the report holds one record per host.
	HardMaxHosts = 1 << 24
)

// progressFlushTimeout bounds the wait for the final progress update.
const progressFlushTimeout = 250 * time.Millisecond

var ErrPrefixTooLarge = errors.New("prefix has too many hosts")

// SweepTimeoutError reports that the global sweep deadline passed before every
// address was probed. The returned report is partial.
type SweepTimeoutError struct {
	Timeout  time.Duration
	Launched int
	Total    int
}

func (e *SweepTimeoutError) Error() string {
	return fmt.Sprintf("sweep deadline of %s exceeded after probing %d of %d hosts", e.Timeout, e.Launched, e.Total)
}

type SweepOptions struct {
	// Concurrency bounds the number of in-flight probes.
	Concurrency int
	Probe       ports.ProbeOptions
	// Timeout is the global sweep deadline, zero disables it.
	Timeout time.Duration
	// ProgressInterval is the minimum time between two progress updates.
	ProgressInterval time.Duration
	// MaxHosts refuses prefixes with more hosts. Zero means DefaultMaxHosts, a negative
	// value lifts the cap up to HardMaxHosts.
	MaxHosts int
}

func (o SweepOptions) withDefaults() SweepOptions {
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}

	if o.ProgressInterval <= 0 {
		o.ProgressInterval = DefaultProgressInterval
	}

	if o.Probe.Count <= 0 {
		o.Probe.Count = 4
	}

	if o.Probe.Timeout <= 0 {
		o.Probe.Timeout = time.Second
	}

	if o.Probe.ResolveTimeout <= 0 {
		o.Probe.ResolveTimeout = DefaultResolveTimeout
	}

	switch {
	case o.MaxHosts == 0:
		o.MaxHosts = DefaultMaxHosts
	case o.MaxHosts < 0 || o.MaxHosts > HardMaxHosts:
		o.MaxHosts = HardMaxHosts
	}

	return o
}

type SweepHostsUseCase struct {
	logger    *slog.Logger
	probe     ports.HostProbe
	publisher ports.SweepReportPublisher
	progress  ports.ProgressSink
	opts      SweepOptions
}

// NewSweepHostsUseCase builds the use case. publisher and progress may be nil.
func NewSweepHostsUseCase(
	logger *slog.Logger,
	probe ports.HostProbe,
	publisher ports.SweepReportPublisher,
	progress ports.ProgressSink,
	opts SweepOptions,
) *SweepHostsUseCase {
	return &SweepHostsUseCase{
		logger:    logger,
		probe:     probe,
		publisher: publisher,
		progress:  progress,
		opts:      opts.withDefaults(),
	}
}

type SweepHostsCommand struct {
	CIDR string
	// Exclude lists addresses and prefixes that are not probed.
	Exclude []string
}

// Execute parses the prefix, sweeps its hosts and publishes the report.
// Invalid input fails before any probe is launched. An interrupted sweep returns
// a partial report together with the reason.
func (u *SweepHostsUseCase) Execute(ctx context.Context, cmd SweepHostsCommand) (*ports.SweepReport, error) {
	prefix, err := cidr.Parse(cmd.CIDR)
	if err != nil {
		return nil, err
	}

	if prefix.HostCount() > uint64(u.opts.MaxHosts) {
		return nil, fmt.Errorf("%w: %s has %d hosts, limit is %d", ErrPrefixTooLarge, prefix, prefix.HostCount(), u.opts.MaxHosts)
	}

	excluded, err := cidr.ParseExclusions(cmd.Exclude)
	if err != nil {
		return nil, err
	}

	ctx = tracing.WithPrefix(ctx, prefix.String())

	addrs := slices.Collect(cidr.Without(prefix.Hosts(), excluded))

	report, sweepErr := u.sweep(ctx, prefix.String(), addrs)

	if u.publisher != nil {
		if err := u.publisher.Publish(context.WithoutCancel(ctx), report); err != nil {
			return report, errors.Join(sweepErr, fmt.Errorf("failed to publish sweep report: %w", err))
		}
	}

	return report, sweepErr
}

// Sweep probes addrs and returns their records in the order given.
func (u *SweepHostsUseCase) Sweep(ctx context.Context, addrs []netip.Addr) (*ports.SweepReport, error) {
	return u.sweep(ctx, "", addrs)
}

func (u *SweepHostsUseCase) sweep(ctx context.Context, prefix string, addrs []netip.Addr) (*ports.SweepReport, error) {
	startedAt := time.Now()

	records := make([]ports.HostRecord, len(addrs))
	for i, addr := range addrs {
		records[i] = ports.HostRecord{Address: addr, State: ports.HostUnknown}
	}

	sweepCtx := ctx
	if u.opts.Timeout > 0 {
		var cancel context.CancelFunc
		sweepCtx, cancel = context.WithTimeout(ctx, u.opts.Timeout)
		defer cancel()
	}

	// In-flight probes run to their own deadline even when the sweep is stopped.
	probeCtx := context.WithoutCancel(ctx)

	u.logger.InfoContext(ctx, "Sweep started",
		slog.Int("hosts", len(addrs)),
		slog.Int("concurrency", u.opts.Concurrency))

	var (
		completed atomic.Int64
		up        atomic.Int64
	)

	stopProgress := u.reportProgress(ctx, len(records), &completed, &up)

	sem := semaphore.NewWeighted(int64(u.opts.Concurrency))

	var g errgroup.Group

	launched := 0

	for i := range records {
		if sweepCtx.Err() != nil {
			break
		}

		if err := sem.Acquire(sweepCtx, 1); err != nil {
			break
		}

		launched++

		g.Go(func() error {
			defer sem.Release(1)

			// Each goroutine owns records[i]; g.Wait publishes the writes.
			records[i] = u.probeOne(probeCtx, records[i])

			if records[i].State == ports.HostUp {
				up.Add(1)
			}

			completed.Add(1)

			return nil
		})
	}

	_ = g.Wait()

	stopProgress()

	complete := launched == len(records)
	report := ports.NewSweepReport(prefix, records, complete, startedAt, time.Now())

	summary := report.Summary()
	u.logger.InfoContext(ctx, "Sweep finished",
		slog.Bool("complete", complete),
		slog.Int("up", summary.Up),
		slog.Int("down", summary.Down),
		slog.Int("unknown", summary.Unknown),
		slog.Duration("duration", report.Duration()))

	if complete {
		return report, nil
	}

	if ctx.Err() == nil && errors.Is(sweepCtx.Err(), context.DeadlineExceeded) {
		return report, &SweepTimeoutError{Timeout: u.opts.Timeout, Launched: launched, Total: len(records)}
	}

	return report, fmt.Errorf("sweep interrupted after probing %d of %d hosts: %w", launched, len(records), context.Cause(ctx))
}

func (u *SweepHostsUseCase) probeOne(ctx context.Context, rec ports.HostRecord) ports.HostRecord {
	res := u.probe.Probe(ctx, rec.Address, u.opts.Probe)

	rec.State = res.State
	rec.Name = res.Name
	rec.Elapsed = res.Elapsed

	if res.Err != nil {
		rec.Diagnostic = res.Err.Error()
	}

	if !rec.State.Terminal() {
		u.logger.WarnContext(ctx, "Probe returned no verdict, marking host down", slog.String("address", rec.Address.String()))

		rec.State = ports.HostDown
		if rec.Diagnostic == "" {
			rec.Diagnostic = "probe returned no verdict"
		}
	}

	return rec
}

// reportProgress feeds the progress sink at most once per interval until the returned
// function is called, which also emits the final count. The sink runs on its own
// goroutine: updates are dropped while it is busy and a stuck sink is abandoned.
func (u *SweepHostsUseCase) reportProgress(ctx context.Context, total int, completed, up *atomic.Int64) func() {
	if u.progress == nil {
		return func() {}
	}

	snapshot := func() ports.SweepProgress {
		return ports.SweepProgress{
			Completed: int(completed.Load()),
			Total:     total,
			Up:        int(up.Load()),
		}
	}

	updates := make(chan ports.SweepProgress, 1)
	drained := make(chan struct{})

	go func() {
		defer close(drained)

		for p := range updates {
			u.emitProgress(ctx, p)
		}
	}()

	stop := make(chan struct{})
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)

		ticker := time.NewTicker(u.opts.ProgressInterval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				select {
				case updates <- snapshot():
				default:
				}
			}
		}
	}()

	return func() {
		close(stop)
		<-stopped

		final := snapshot()

		// Replace a pending stale update so the final count is delivered last.
		select {
		case updates <- final:
		default:
			select {
			case <-updates:
			default:
			}

			select {
			case updates <- final:
			default:
			}
		}

		close(updates)

		timer := time.NewTimer(progressFlushTimeout)
		defer timer.Stop()

		select {
		case <-drained:
		case <-timer.C:
			u.logger.WarnContext(ctx, "Progress sink is not keeping up, leaving it behind")
		}
	}
}

func (u *SweepHostsUseCase) emitProgress(ctx context.Context, p ports.SweepProgress) {
	defer func() {
		if r := recover(); r != nil {
			u.logger.WarnContext(ctx, "Progress sink panicked", slog.Any("panic", r))
		}
	}()

	u.progress.Progress(ctx, p)
}
