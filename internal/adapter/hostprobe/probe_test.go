package hostprobe

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/khmm12/ping-sweep/internal/ports"
	portsm "github.com/khmm12/ping-sweep/internal/ports/mocks"
)

var defaultOpts = ports.ProbeOptions{
	Count:          4,
	Timeout:        time.Second,
	Resolve:        true,
	ResolveTimeout: time.Second,
}

func TestProbe_ReachableWithName(t *testing.T) {
	ctx := t.Context()
	addr := netip.MustParseAddr("10.0.0.1")

	pinger := portsm.NewMockPinger(t)
	resolver := portsm.NewMockNameResolver(t)

	pinger.On("Ping", mock.Anything, addr, 4, time.Second).Return(true, nil)
	resolver.On("LookupName", mock.Anything, addr).Return("host1", nil)

	res := newTestProbe(t, pinger, resolver).Probe(ctx, addr, defaultOpts)

	require.Equal(t, ports.HostUp, res.State)
	require.Equal(t, "host1", res.Name)
	require.NoError(t, res.Err)
}

func TestProbe_ResolutionFailureLeavesNameAbsent(t *testing.T) {
	ctx := t.Context()
	addr := netip.MustParseAddr("10.0.0.1")

	pinger := portsm.NewMockPinger(t)
	resolver := portsm.NewMockNameResolver(t)

	pinger.On("Ping", mock.Anything, addr, 4, time.Second).Return(true, nil)
	resolver.On("LookupName", mock.Anything, addr).Return("", &ports.ResolutionError{Address: addr, Err: errors.New("NXDOMAIN")})

	res := newTestProbe(t, pinger, resolver).Probe(ctx, addr, defaultOpts)

	require.Equal(t, ports.HostUp, res.State)
	require.Empty(t, res.Name)
	require.NoError(t, res.Err)
}

func TestProbe_UnreachableHostStillResolved(t *testing.T) {
	ctx := t.Context()
	addr := netip.MustParseAddr("10.0.0.2")

	pinger := portsm.NewMockPinger(t)
	resolver := portsm.NewMockNameResolver(t)

	pinger.On("Ping", mock.Anything, addr, 4, time.Second).Return(false, nil)
	resolver.On("LookupName", mock.Anything, addr).Return("stale-record", nil)

	res := newTestProbe(t, pinger, resolver).Probe(ctx, addr, defaultOpts)

	require.Equal(t, ports.HostDown, res.State)
	require.Equal(t, "stale-record", res.Name)
	require.NoError(t, res.Err)
}

func TestProbe_TransportErrorIsUnreachableWithDiagnostic(t *testing.T) {
	ctx := t.Context()
	addr := netip.MustParseAddr("10.0.0.3")

	pinger := portsm.NewMockPinger(t)
	resolver := portsm.NewMockNameResolver(t)

	spawnErr := errors.New("exec: permission denied")
	pinger.On("Ping", mock.Anything, addr, 4, time.Second).Return(false, spawnErr)
	resolver.On("LookupName", mock.Anything, addr).Return("", errors.New("timeout"))

	res := newTestProbe(t, pinger, resolver).Probe(ctx, addr, defaultOpts)

	require.Equal(t, ports.HostDown, res.State)

	var terr *ports.ProbeTransportError
	require.ErrorAs(t, res.Err, &terr)
	require.Equal(t, addr, terr.Address)
	require.ErrorIs(t, res.Err, spawnErr)
}

func TestProbe_SkipsResolutionWhenDisabled(t *testing.T) {
	ctx := t.Context()
	addr := netip.MustParseAddr("10.0.0.4")

	pinger := portsm.NewMockPinger(t)
	resolver := portsm.NewMockNameResolver(t)

	pinger.On("Ping", mock.Anything, addr, 1, time.Second).Return(true, nil)

	opts := defaultOpts
	opts.Count = 1
	opts.Resolve = false

	res := newTestProbe(t, pinger, resolver).Probe(ctx, addr, opts)

	require.Equal(t, ports.HostUp, res.State)
	require.Empty(t, res.Name)
	resolver.AssertNotCalled(t, "LookupName", mock.Anything, mock.Anything)
}

func TestProbe_AbortsLivenessCheckPastDeadline(t *testing.T) {
	ctx := t.Context()
	addr := netip.MustParseAddr("10.0.0.5")

	pinger := portsm.NewMockPinger(t)

	// A transport that ignores its context.
	pinger.On("Ping", mock.Anything, addr, 1, 10*time.Millisecond).
		Run(func(mock.Arguments) { time.Sleep(time.Second) }).
		Return(true, nil)

	probe := New(slog.New(slog.NewTextHandler(io.Discard, nil)), pinger, nil, 40*time.Millisecond)
	opts := ports.ProbeOptions{Count: 1, Timeout: 10 * time.Millisecond}

	require.Equal(t, 50*time.Millisecond, probe.Deadline(opts))

	start := time.Now()
	res := probe.Probe(ctx, addr, opts)

	require.Less(t, time.Since(start), 500*time.Millisecond)
	require.Equal(t, ports.HostDown, res.State)
	require.ErrorIs(t, res.Err, ErrNoVerdict)
}

func TestProbe_PassesDeadlineToPinger(t *testing.T) {
	ctx := t.Context()
	addr := netip.MustParseAddr("10.0.0.6")

	pinger := portsm.NewMockPinger(t)

	var deadline time.Time
	pinger.On("Ping", mock.Anything, addr, 2, 100*time.Millisecond).
		Run(func(args mock.Arguments) {
			deadline, _ = args.Get(0).(context.Context).Deadline()
		}).
		Return(false, nil)

	start := time.Now()
	res := New(slog.New(slog.NewTextHandler(io.Discard, nil)), pinger, nil, time.Second).
		Probe(ctx, addr, ports.ProbeOptions{Count: 2, Timeout: 100 * time.Millisecond, Resolve: true})

	require.Equal(t, ports.HostDown, res.State)
	require.WithinDuration(t, start.Add(1200*time.Millisecond), deadline, 100*time.Millisecond)
}

func TestProbe_AbortsResolutionPastDeadline(t *testing.T) {
	ctx := t.Context()
	addr := netip.MustParseAddr("10.0.0.7")

	pinger := portsm.NewMockPinger(t)
	resolver := portsm.NewMockNameResolver(t)

	pinger.On("Ping", mock.Anything, addr, 1, 10*time.Millisecond).Return(true, nil)

	// A resolver that ignores its context.
	resolver.On("LookupName", mock.Anything, addr).
		Run(func(mock.Arguments) { time.Sleep(time.Second) }).
		Return("too-late", nil)

	opts := ports.ProbeOptions{Count: 1, Timeout: 10 * time.Millisecond, Resolve: true, ResolveTimeout: 30 * time.Millisecond}

	start := time.Now()
	res := newTestProbe(t, pinger, resolver).Probe(ctx, addr, opts)

	require.Less(t, time.Since(start), 500*time.Millisecond)
	require.Equal(t, ports.HostUp, res.State)
	require.Empty(t, res.Name)
	require.NoError(t, res.Err)
}

func TestProbe_BoundsResolutionWithoutTimeout(t *testing.T) {
	ctx := t.Context()
	addr := netip.MustParseAddr("10.0.0.8")

	pinger := portsm.NewMockPinger(t)
	resolver := portsm.NewMockNameResolver(t)

	pinger.On("Ping", mock.Anything, addr, 1, 10*time.Millisecond).Return(true, nil)

	var deadline time.Time
	resolver.On("LookupName", mock.Anything, addr).
		Run(func(args mock.Arguments) {
			deadline, _ = args.Get(0).(context.Context).Deadline()
		}).
		Return("host8", nil)

	start := time.Now()
	res := newTestProbe(t, pinger, resolver).
		Probe(ctx, addr, ports.ProbeOptions{Count: 1, Timeout: 10 * time.Millisecond, Resolve: true})

	require.Equal(t, "host8", res.Name)
	require.WithinDuration(t, start.Add(DefaultResolveTimeout), deadline, 200*time.Millisecond)
}

func newTestProbe(t *testing.T, pinger ports.Pinger, resolver ports.NameResolver) *Probe {
	t.Helper()

	return New(slog.New(slog.NewTextHandler(io.Discard, nil)), pinger, resolver, 0)
}
