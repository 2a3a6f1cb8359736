package cidr

import (
	"encoding/binary"
	"fmt"
	"iter"
	"net/netip"
	"strconv"
	"strings"

	"go4.org/netipx"
)

type InvalidPrefixError struct {
	Input  string
	Reason string
}

func (e *InvalidPrefixError) Error() string {
	return fmt.Sprintf("invalid prefix %q: %s", e.Input, e.Reason)
}

// Prefix is an IPv4 network in canonical form.
type Prefix struct {
	p netip.Prefix
}

// Parse parses an IPv4 CIDR such as "192.168.1.0/24". A bare address is taken as a /32.
// Prefixes with host bits set are rejected.
func Parse(input string) (Prefix, error) {
	s := input
	if !strings.Contains(s, "/") {
		addr, err := netip.ParseAddr(s)
		if err != nil {
			return Prefix{}, &InvalidPrefixError{Input: input, Reason: "not an IPv4 address or CIDR"}
		}

		s = addr.String() + "/32"
	}

	p, err := netip.ParsePrefix(s)
	if err != nil {
		return Prefix{}, &InvalidPrefixError{Input: input, Reason: parseReason(s)}
	}

	if !p.Addr().Is4() {
		return Prefix{}, &InvalidPrefixError{Input: input, Reason: "only IPv4 prefixes are supported"}
	}

	if p.Masked() != p {
		return Prefix{}, &InvalidPrefixError{Input: input, Reason: "host bits set, did you mean " + p.Masked().String() + "?"}
	}

	return Prefix{p: p}, nil
}

func MustParse(s string) Prefix {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}

	return p
}

func parseReason(s string) string {
	addr, bits, _ := strings.Cut(s, "/")

	if _, err := netip.ParseAddr(addr); err != nil {
		return "bad address"
	}

	n, err := strconv.Atoi(bits)
	if err != nil {
		return "bad mask length"
	}

	if n < 0 || n > 32 {
		return "mask length out of range [0,32]"
	}

	return "malformed"
}

func (p Prefix) String() string {
	return p.p.String()
}

func (p Prefix) Bits() int {
	return p.p.Bits()
}

func (p Prefix) Addr() netip.Addr {
	return p.p.Addr()
}

func (p Prefix) Contains(addr netip.Addr) bool {
	return p.p.Contains(addr)
}

// Size is the number of addresses covered by the prefix.
func (p Prefix) Size() uint64 {
	return 1 << (32 - p.p.Bits())
}

// Degenerate reports whether the prefix is too small to have network and broadcast addresses.
func (p Prefix) Degenerate() bool {
	return p.Size() <= 2
}

// HostCount is the number of addresses yielded by Hosts.
func (p Prefix) HostCount() uint64 {
	if p.Degenerate() {
		return p.Size()
	}

	return p.Size() - 2
}

// Hosts yields the usable host addresses in ascending order. The network and broadcast
// addresses are skipped unless the prefix is a /31 or /32.
// The sequence can be ranged over more than once.
func (p Prefix) Hosts() iter.Seq[netip.Addr] {
	first, last := p.bounds()

	return func(yield func(netip.Addr) bool) {
		for v := first; ; v++ {
			if !yield(fromUint32(v)) || v == last {
				return
			}
		}
	}
}

func (p Prefix) bounds() (uint32, uint32) {
	first := toUint32(p.p.Addr())
	last := toUint32(netipx.PrefixLastIP(p.p))

	if !p.Degenerate() {
		first++
		last--
	}

	return first, last
}

func toUint32(addr netip.Addr) uint32 {
	b := addr.As4()
	return binary.BigEndian.Uint32(b[:])
}

func fromUint32(v uint32) netip.Addr {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)

	return netip.AddrFrom4(b)
}
