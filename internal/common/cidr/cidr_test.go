package cidr

import (
	"net/netip"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse_EnumeratesUsableHosts(t *testing.T) {
	tests := []struct {
		cidr  string
		count uint64
		first string
		last  string
	}{
		{cidr: "192.168.1.0/24", count: 254, first: "192.168.1.1", last: "192.168.1.254"},
		{cidr: "10.0.0.0/30", count: 2, first: "10.0.0.1", last: "10.0.0.2"},
		{cidr: "10.0.0.0/29", count: 6, first: "10.0.0.1", last: "10.0.0.6"},
		{cidr: "172.16.0.0/22", count: 1022, first: "172.16.0.1", last: "172.16.3.254"},
		{cidr: "10.0.0.0/31", count: 2, first: "10.0.0.0", last: "10.0.0.1"},
		{cidr: "10.0.0.7/32", count: 1, first: "10.0.0.7", last: "10.0.0.7"},
		{cidr: "255.255.255.252/30", count: 2, first: "255.255.255.253", last: "255.255.255.254"},
		{cidr: "255.255.255.255/32", count: 1, first: "255.255.255.255", last: "255.255.255.255"},
	}

	for _, tt := range tests {
		t.Run(tt.cidr, func(t *testing.T) {
			p, err := Parse(tt.cidr)
			require.NoError(t, err)

			hosts := slices.Collect(p.Hosts())

			require.Equal(t, tt.count, p.HostCount())
			require.Len(t, hosts, int(tt.count))
			require.Equal(t, netip.MustParseAddr(tt.first), hosts[0])
			require.Equal(t, netip.MustParseAddr(tt.last), hosts[len(hosts)-1])
			require.True(t, slices.IsSortedFunc(hosts, netip.Addr.Compare))
		})
	}
}

func TestParse_ExcludesNetworkAndBroadcastForEveryMask(t *testing.T) {
	for bits := 16; bits <= 30; bits++ {
		p, err := Parse(netip.PrefixFrom(netip.MustParseAddr("10.20.0.0"), bits).String())
		require.NoError(t, err)

		network := p.Addr()
		broadcast := fromUint32(toUint32(network) + uint32(p.Size()) - 1)

		var n uint64
		for addr := range p.Hosts() {
			require.NotEqual(t, network, addr)
			require.NotEqual(t, broadcast, addr)
			require.True(t, p.Contains(addr))
			n++
		}

		require.Equal(t, uint64(1)<<(32-bits)-2, n, "mask /%d", bits)
	}
}

func TestParse_DegeneratePrefixesKeepAllAddresses(t *testing.T) {
	p31 := MustParse("192.0.2.4/31")
	require.True(t, p31.Degenerate())
	require.Equal(t, []netip.Addr{
		netip.MustParseAddr("192.0.2.4"),
		netip.MustParseAddr("192.0.2.5"),
	}, slices.Collect(p31.Hosts()))

	p32 := MustParse("192.0.2.9/32")
	require.True(t, p32.Degenerate())
	require.Equal(t, []netip.Addr{netip.MustParseAddr("192.0.2.9")}, slices.Collect(p32.Hosts()))
}

func TestParse_BareAddressIsSingleHost(t *testing.T) {
	p, err := Parse("10.1.2.3")
	require.NoError(t, err)

	require.Equal(t, "10.1.2.3/32", p.String())
	require.Equal(t, uint64(1), p.HostCount())
}

func TestParse_WholeSpaceCountsWithoutOverflow(t *testing.T) {
	p := MustParse("0.0.0.0/0")

	require.Equal(t, uint64(1)<<32, p.Size())
	require.Equal(t, uint64(1)<<32-2, p.HostCount())

	var first []netip.Addr
	for addr := range p.Hosts() {
		first = append(first, addr)
		if len(first) == 2 {
			break
		}
	}

	require.Equal(t, []netip.Addr{netip.MustParseAddr("0.0.0.1"), netip.MustParseAddr("0.0.0.2")}, first)
}

func TestParse_SequenceIsRestartable(t *testing.T) {
	p := MustParse("10.0.0.0/28")

	require.Equal(t, slices.Collect(p.Hosts()), slices.Collect(p.Hosts()))
}

func TestParse_RejectsMalformedInput(t *testing.T) {
	tests := []struct {
		input  string
		reason string
	}{
		{input: "not-an-ip/24", reason: "bad address"},
		{input: "not-an-ip", reason: "not an IPv4 address or CIDR"},
		{input: "256.1.1.0/24", reason: "bad address"},
		{input: "10.0.0.0/33", reason: "mask length out of range [0,32]"},
		{input: "10.0.0.0/-1", reason: "mask length out of range [0,32]"},
		{input: "10.0.0.0/24x", reason: "bad mask length"},
		{input: "10.0.0.0/", reason: "bad mask length"},
		{input: "10.0.0.0/24 ", reason: "bad mask length"},
		{input: "", reason: "not an IPv4 address or CIDR"},
		{input: "2001:db8::/64", reason: "only IPv4 prefixes are supported"},
		{input: "192.168.1.7/24", reason: "host bits set, did you mean 192.168.1.0/24?"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Parse(tt.input)

			var perr *InvalidPrefixError
			require.ErrorAs(t, err, &perr)
			require.Equal(t, tt.input, perr.Input)
			require.Equal(t, tt.reason, perr.Reason)
		})
	}
}

func TestWithout_SkipsExcludedAddresses(t *testing.T) {
	set, err := ParseExclusions([]string{"10.0.0.1", "10.0.0.4/30", " "})
	require.NoError(t, err)

	got := slices.Collect(Without(MustParse("10.0.0.0/29").Hosts(), set))

	require.Equal(t, []netip.Addr{
		netip.MustParseAddr("10.0.0.2"),
		netip.MustParseAddr("10.0.0.3"),
	}, got)
}

func TestParseExclusions_RejectsGarbage(t *testing.T) {
	_, err := ParseExclusions([]string{"10.0.0.1", "nope"})

	var perr *InvalidPrefixError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, "nope", perr.Input)
}
