package ports

import (
	"context"
	"fmt"
	"net/netip"
	"time"
)

type HostState int

const (
	HostUnknown HostState = iota
	HostUp
	HostDown
)

func (s HostState) String() string {
	switch s {
	case HostUp:
		return "up"
	case HostDown:
		return "down"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state is a probe verdict.
func (s HostState) Terminal() bool {
	return s == HostUp || s == HostDown
}

type ProbeOptions struct {
	// Count is the number of echo requests sent to the host.
	Count int
	// Timeout bounds the wait for a single echo reply.
	Timeout time.Duration
	// Resolve enables reverse name resolution of the host address.
	Resolve bool
	// ResolveTimeout bounds the name resolution.
	ResolveTimeout time.Duration
}

type ProbeResult struct {
	State HostState
	// Name is the resolved host name, empty when resolution failed or was skipped.
	Name string
	// Elapsed is the time spent on the liveness check.
	Elapsed time.Duration
	// Err is set when the liveness check itself could not be performed.
	Err error
}

type HostProbe interface {
	Probe(ctx context.Context, addr netip.Addr, opts ProbeOptions) ProbeResult
}

// Pinger sends echo requests to a host. It returns true when at least one reply arrived.
type Pinger interface {
	Ping(ctx context.Context, addr netip.Addr, count int, timeout time.Duration) (bool, error)
}

type NameResolver interface {
	LookupName(ctx context.Context, addr netip.Addr) (string, error)
}

type ForwardResolver interface {
	LookupAddrs(ctx context.Context, name string) ([]netip.Addr, error)
}

type ProbeTransportError struct {
	Address netip.Addr
	Op      string
	Err     error
}

func (e *ProbeTransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Address, e.Err)
}

func (e *ProbeTransportError) Unwrap() error {
	return e.Err
}

type ResolutionError struct {
	Address netip.Addr
	Err     error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s: %v", e.Address, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}
