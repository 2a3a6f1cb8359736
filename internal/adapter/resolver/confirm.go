package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"slices"
	"strings"

	"github.com/khmm12/ping-sweep/internal/ports"
)

var ErrNotConfirmed = errors.New("forward lookup does not point back to the address")

// ConfirmingResolver accepts a reverse name only when a forward lookup of that name
// returns the probed address. Names under .local are confirmed over mDNS when
// a local resolver is configured.
type ConfirmingResolver struct {
	reverse ports.NameResolver
	forward ports.ForwardResolver
	local   ports.ForwardResolver
}

func NewConfirmingResolver(reverse ports.NameResolver, forward, local ports.ForwardResolver) *ConfirmingResolver {
	return &ConfirmingResolver{
		reverse: reverse,
		forward: forward,
		local:   local,
	}
}

func (r *ConfirmingResolver) LookupName(ctx context.Context, addr netip.Addr) (string, error) {
	name, err := r.reverse.LookupName(ctx, addr)
	if err != nil {
		return "", err
	}

	forward := r.forward
	if r.local != nil && isLocal(name) {
		forward = r.local
	}

	addrs, err := forward.LookupAddrs(ctx, name)
	if err != nil {
		return "", &ports.ResolutionError{Address: addr, Err: fmt.Errorf("forward lookup of %s: %w", name, err)}
	}

	if !slices.ContainsFunc(addrs, func(a netip.Addr) bool { return a.Unmap() == addr }) {
		return "", &ports.ResolutionError{Address: addr, Err: fmt.Errorf("%s: %w", name, ErrNotConfirmed)}
	}

	return name, nil
}

func isLocal(name string) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSuffix(name, ".")), ".local")
}
