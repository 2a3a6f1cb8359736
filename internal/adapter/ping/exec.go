package ping

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"os/exec"
	"runtime"
	"strconv"
	"time"
)

// ExecPinger runs the platform ping binary and treats exit status 0 as reachable.
type ExecPinger struct {
	command string
	goos    string
}

type ExecOption func(*ExecPinger)

// WithCommand replaces the ping binary.
func WithCommand(command string) ExecOption {
	return func(p *ExecPinger) {
		p.command = command
	}
}

// WithGOOS selects the argument dialect of the ping binary.
func WithGOOS(goos string) ExecOption {
	return func(p *ExecPinger) {
		p.goos = goos
	}
}

func NewExecPinger(opts ...ExecOption) *ExecPinger {
	p := &ExecPinger{
		command: "ping",
		goos:    runtime.GOOS,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Preflight checks that the ping binary can be found.
func (p *ExecPinger) Preflight(_ context.Context) error {
	if _, err := exec.LookPath(p.command); err != nil {
		return fmt.Errorf("ping: cannot find %q: %w", p.command, err)
	}

	return nil
}

func (p *ExecPinger) Ping(ctx context.Context, addr netip.Addr, count int, timeout time.Duration) (bool, error) {
	cmd := exec.CommandContext(ctx, p.command, Args(p.goos, addr, count, timeout)...)

	err := cmd.Run()
	if err == nil {
		return true, nil
	}

	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return false, nil
	}

	return false, err
}

// Args builds the ping arguments for the given platform.
func Args(goos string, addr netip.Addr, count int, timeout time.Duration) []string {
	if count <= 0 {
		count = 1
	}

	n := strconv.Itoa(count)

	switch goos {
	case "windows":
		return []string{"-n", n, "-w", millis(timeout), addr.String()}
	case "linux", "android":
		return []string{"-n", "-q", "-c", n, "-W", seconds(timeout), addr.String()}
	case "darwin", "ios", "freebsd", "netbsd", "dragonfly":
		return []string{"-n", "-q", "-c", n, "-W", millis(timeout), addr.String()}
	default:
		return []string{"-c", n, addr.String()}
	}
}

func millis(d time.Duration) string {
	return strconv.FormatInt(max(d.Milliseconds(), 1), 10)
}

func seconds(d time.Duration) string {
	s := (d + time.Second - 1) / time.Second
	return strconv.FormatInt(max(int64(s), 1), 10)
}
