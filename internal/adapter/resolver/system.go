package resolver

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"strings"

	"github.com/khmm12/ping-sweep/internal/ports"
)

var ErrNoName = errors.New("no PTR record")

// SystemResolver resolves names through the operating system resolver.
type SystemResolver struct {
	resolver *net.Resolver
}

func NewSystemResolver() *SystemResolver {
	return &SystemResolver{resolver: net.DefaultResolver}
}

func (r *SystemResolver) LookupName(ctx context.Context, addr netip.Addr) (string, error) {
	names, err := r.resolver.LookupAddr(ctx, addr.String())
	if err != nil {
		return "", &ports.ResolutionError{Address: addr, Err: err}
	}

	return firstName(addr, names)
}

func (r *SystemResolver) LookupAddrs(ctx context.Context, name string) ([]netip.Addr, error) {
	return r.resolver.LookupNetIP(ctx, "ip4", name)
}

func firstName(addr netip.Addr, names []string) (string, error) {
	for _, name := range names {
		if name = strings.TrimSuffix(name, "."); name != "" {
			return name, nil
		}
	}

	return "", &ports.ResolutionError{Address: addr, Err: ErrNoName}
}
