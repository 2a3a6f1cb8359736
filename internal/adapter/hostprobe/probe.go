package hostprobe

import (
	"context"
	"errors"
	"log/slog"
	"net/netip"
	"time"

	"github.com/khmm12/ping-sweep/internal/common/logging"
	"github.com/khmm12/ping-sweep/internal/ports"
)

const (
	// DefaultOverhead is added on top of count*timeout to bound a whole liveness check.
	DefaultOverhead = 2 * time.Second
	// DefaultResolveTimeout bounds name resolution when the options leave it unset.
	DefaultResolveTimeout = 2 * time.Second
)

var ErrNoVerdict = errors.New("liveness check did not finish before its deadline")

// Probe checks liveness with a Pinger and optionally resolves the host name.
// It never fails: transport problems are folded into an unreachable result.
type Probe struct {
	logger   *slog.Logger
	pinger   ports.Pinger
	resolver ports.NameResolver
	overhead time.Duration
}

func New(logger *slog.Logger, pinger ports.Pinger, resolver ports.NameResolver, overhead time.Duration) *Probe {
	if overhead <= 0 {
		overhead = DefaultOverhead
	}

	return &Probe{
		logger:   logger,
		pinger:   pinger,
		resolver: resolver,
		overhead: overhead,
	}
}

// Deadline is the hard upper bound of one liveness check.
func (p *Probe) Deadline(opts ports.ProbeOptions) time.Duration {
	return time.Duration(max(opts.Count, 1))*opts.Timeout + p.overhead
}

func (p *Probe) Probe(ctx context.Context, addr netip.Addr, opts ports.ProbeOptions) ports.ProbeResult {
	res := p.ping(ctx, addr, opts)

	if opts.Resolve && p.resolver != nil {
		res.Name = p.resolve(ctx, addr, opts.ResolveTimeout)
	}

	return res
}

func (p *Probe) ping(ctx context.Context, addr netip.Addr, opts ports.ProbeOptions) ports.ProbeResult {
	pingCtx, cancel := context.WithTimeout(ctx, p.Deadline(opts))
	defer cancel()

	start := time.Now()

	ok, err := p.pingWithin(pingCtx, addr, opts)
	elapsed := time.Since(start)

	switch {
	case err != nil && errors.Is(pingCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		p.logger.WarnContext(ctx, "Liveness check exceeded its deadline", slog.String("address", addr.String()))
		return ports.ProbeResult{
			State:   ports.HostDown,
			Elapsed: elapsed,
			Err:     &ports.ProbeTransportError{Address: addr, Op: "ping", Err: ErrNoVerdict},
		}
	case err != nil:
		p.logger.WarnContext(ctx, "Liveness check failed", slog.String("address", addr.String()), logging.Error(err))
		return ports.ProbeResult{
			State:   ports.HostDown,
			Elapsed: elapsed,
			Err:     &ports.ProbeTransportError{Address: addr, Op: "ping", Err: err},
		}
	case ok:
		return ports.ProbeResult{State: ports.HostUp, Elapsed: elapsed}
	default:
		return ports.ProbeResult{State: ports.HostDown, Elapsed: elapsed}
	}
}

type pingOutcome struct {
	ok  bool
	err error
}

// pingWithin returns once ctx is done even if the pinger does not honor it.
func (p *Probe) pingWithin(ctx context.Context, addr netip.Addr, opts ports.ProbeOptions) (bool, error) {
	done := make(chan pingOutcome, 1)

	go func() {
		ok, err := p.pinger.Ping(ctx, addr, opts.Count, opts.Timeout)
		done <- pingOutcome{ok: ok, err: err}
	}()

	select {
	case o := <-done:
		return o.ok, o.err
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

type lookupOutcome struct {
	name string
	err  error
}

// resolve returns once its deadline passes even if the resolver does not honor ctx.
func (p *Probe) resolve(ctx context.Context, addr netip.Addr, timeout time.Duration) string {
	if timeout <= 0 {
		timeout = DefaultResolveTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan lookupOutcome, 1)

	go func() {
		name, err := p.resolver.LookupName(ctx, addr)
		done <- lookupOutcome{name: name, err: err}
	}()

	var o lookupOutcome

	select {
	case o = <-done:
	case <-ctx.Done():
		o.err = ctx.Err()
	}

	if o.err != nil {
		p.logger.DebugContext(ctx, "Name resolution failed", slog.String("address", addr.String()), logging.Error(o.err))
		return ""
	}

	return o.name
}
