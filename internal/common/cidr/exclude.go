package cidr

import (
	"fmt"
	"iter"
	"net/netip"
	"strings"

	"go4.org/netipx"
)

// ParseExclusions builds a set from IPv4 addresses and prefixes. Host bits are ignored.
func ParseExclusions(items []string) (*netipx.IPSet, error) {
	var builder netipx.IPSetBuilder

	for _, raw := range items {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		if strings.Contains(raw, "/") {
			p, err := netip.ParsePrefix(raw)
			if err != nil || !p.Addr().Is4() {
				return nil, &InvalidPrefixError{Input: raw, Reason: "bad exclusion prefix"}
			}

			builder.AddPrefix(p.Masked())

			continue
		}

		addr, err := netip.ParseAddr(raw)
		if err != nil || !addr.Is4() {
			return nil, &InvalidPrefixError{Input: raw, Reason: "bad exclusion address"}
		}

		builder.Add(addr)
	}

	set, err := builder.IPSet()
	if err != nil {
		return nil, fmt.Errorf("failed to build exclusion set: %w", err)
	}

	return set, nil
}

// Without filters addresses contained in set out of seq, keeping the order of the rest.
func Without(seq iter.Seq[netip.Addr], set *netipx.IPSet) iter.Seq[netip.Addr] {
	if set == nil {
		return seq
	}

	return func(yield func(netip.Addr) bool) {
		for addr := range seq {
			if set.Contains(addr) {
				continue
			}

			if !yield(addr) {
				return
			}
		}
	}
}
