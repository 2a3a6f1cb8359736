package resolver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strings"
	"sync/atomic"
	"time"

	"github.com/miekg/dns"

	"github.com/khmm12/ping-sweep/internal/ports"
)

// DNSResolver sends PTR queries straight to the configured DNS servers, bypassing the
// operating system resolver. Servers are used round-robin; a failed attempt moves on
// to the next server.
type DNSResolver struct {
	client  *dns.Client
	servers []string
	retries int
	next    atomic.Uint32
}

func NewDNSResolver(servers []string, timeout time.Duration, retries int) (*DNSResolver, error) {
	if len(servers) == 0 {
		return nil, errors.New("resolver: at least one DNS server is required")
	}

	normalized := make([]string, 0, len(servers))
	for _, s := range servers {
		addr, err := normalizeServer(s)
		if err != nil {
			return nil, err
		}

		normalized = append(normalized, addr)
	}

	return &DNSResolver{
		client: &dns.Client{
			Net:     "udp",
			Timeout: timeout,
		},
		servers: normalized,
		retries: max(retries, 0),
	}, nil
}

func normalizeServer(s string) (string, error) {
	s = strings.TrimSpace(s)

	if addr, err := netip.ParseAddrPort(s); err == nil {
		return addr.String(), nil
	}

	if addr, err := netip.ParseAddr(s); err == nil {
		return net.JoinHostPort(addr.String(), "53"), nil
	}

	return "", fmt.Errorf("resolver: invalid DNS server %q (want ip or ip:port)", s)
}

func (r *DNSResolver) LookupName(ctx context.Context, addr netip.Addr) (string, error) {
	qname, err := dns.ReverseAddr(addr.String())
	if err != nil {
		return "", &ports.ResolutionError{Address: addr, Err: err}
	}

	m := new(dns.Msg)
	m.SetQuestion(qname, dns.TypePTR)
	m.RecursionDesired = true

	var lastErr error

	for attempt := 0; attempt <= r.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", &ports.ResolutionError{Address: addr, Err: err}
		}

		server := r.servers[int(r.next.Add(1)-1)%len(r.servers)]

		in, _, err := r.client.ExchangeContext(ctx, m, server)
		if err != nil {
			lastErr = fmt.Errorf("query %s: %w", server, err)
			continue
		}

		switch in.Rcode {
		case dns.RcodeSuccess:
			return firstName(addr, ptrNames(in))
		case dns.RcodeNameError:
			// Authoritative answer that the name does not exist; retrying will not help.
			return "", &ports.ResolutionError{Address: addr, Err: fmt.Errorf("%s: %w", dns.RcodeToString[in.Rcode], ErrNoName)}
		default:
			lastErr = fmt.Errorf("query %s: %s", server, dns.RcodeToString[in.Rcode])
		}
	}

	return "", &ports.ResolutionError{Address: addr, Err: lastErr}
}

func ptrNames(m *dns.Msg) []string {
	var names []string

	for _, rr := range m.Answer {
		if ptr, ok := rr.(*dns.PTR); ok {
			names = append(names, ptr.Ptr)
		}
	}

	return names
}
