package resolver

import (
	"errors"
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/khmm12/ping-sweep/internal/ports"
	portsm "github.com/khmm12/ping-sweep/internal/ports/mocks"
)

func TestDNSResolver_ReturnsPTRName(t *testing.T) {
	server := startDNSServer(t, map[string]string{
		"1.0.0.10.in-addr.arpa.": "host1.example.",
	})

	r, err := NewDNSResolver([]string{server}, time.Second, 0)
	require.NoError(t, err)

	name, err := r.LookupName(t.Context(), netip.MustParseAddr("10.0.0.1"))
	require.NoError(t, err)
	require.Equal(t, "host1.example", name)
}

func TestDNSResolver_NXDomainIsResolutionError(t *testing.T) {
	server := startDNSServer(t, nil)

	r, err := NewDNSResolver([]string{server}, time.Second, 2)
	require.NoError(t, err)

	addr := netip.MustParseAddr("10.0.0.2")
	name, err := r.LookupName(t.Context(), addr)

	var rerr *ports.ResolutionError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, addr, rerr.Address)
	require.ErrorIs(t, err, ErrNoName)
	require.Empty(t, name)
}

func TestDNSResolver_UnreachableServerIsResolutionError(t *testing.T) {
	pc, err := net.ListenPacket("udp4", "127.0.0.1:0")
	require.NoError(t, err)

	// Nothing answers on this socket.
	t.Cleanup(func() { _ = pc.Close() })

	r, err := NewDNSResolver([]string{pc.LocalAddr().String()}, 100*time.Millisecond, 1)
	require.NoError(t, err)

	_, err = r.LookupName(t.Context(), netip.MustParseAddr("10.0.0.3"))

	var rerr *ports.ResolutionError
	require.ErrorAs(t, err, &rerr)
}

func TestNewDNSResolver_ValidatesServers(t *testing.T) {
	_, err := NewDNSResolver(nil, time.Second, 0)
	require.Error(t, err)

	_, err = NewDNSResolver([]string{"dns.example"}, time.Second, 0)
	require.ErrorContains(t, err, "invalid DNS server")

	r, err := NewDNSResolver([]string{"192.0.2.53", "192.0.2.54:5353"}, time.Second, 0)
	require.NoError(t, err)
	require.Equal(t, []string{"192.0.2.53:53", "192.0.2.54:5353"}, r.servers)
}

func TestConfirmingResolver_AcceptsMatchingForwardLookup(t *testing.T) {
	ctx := t.Context()
	addr := netip.MustParseAddr("10.0.0.1")

	reverse := portsm.NewMockNameResolver(t)
	forward := portsm.NewMockForwardResolver(t)

	reverse.On("LookupName", mock.Anything, addr).Return("host1.example", nil)
	forward.On("LookupAddrs", mock.Anything, "host1.example").Return([]netip.Addr{
		netip.MustParseAddr("10.0.0.9"),
		netip.MustParseAddr("::ffff:10.0.0.1"),
	}, nil)

	name, err := NewConfirmingResolver(reverse, forward, nil).LookupName(ctx, addr)
	require.NoError(t, err)
	require.Equal(t, "host1.example", name)
}

func TestConfirmingResolver_RejectsMismatch(t *testing.T) {
	ctx := t.Context()
	addr := netip.MustParseAddr("10.0.0.1")

	reverse := portsm.NewMockNameResolver(t)
	forward := portsm.NewMockForwardResolver(t)

	reverse.On("LookupName", mock.Anything, addr).Return("spoofed.example", nil)
	forward.On("LookupAddrs", mock.Anything, "spoofed.example").Return([]netip.Addr{netip.MustParseAddr("203.0.113.5")}, nil)

	_, err := NewConfirmingResolver(reverse, forward, nil).LookupName(ctx, addr)
	require.ErrorIs(t, err, ErrNotConfirmed)
}

func TestConfirmingResolver_UsesLocalResolverForDotLocal(t *testing.T) {
	ctx := t.Context()
	addr := netip.MustParseAddr("192.168.1.20")

	reverse := portsm.NewMockNameResolver(t)
	forward := portsm.NewMockForwardResolver(t)
	local := portsm.NewMockForwardResolver(t)

	reverse.On("LookupName", mock.Anything, addr).Return("printer.local", nil)
	local.On("LookupAddrs", mock.Anything, "printer.local").Return([]netip.Addr{addr}, nil)

	name, err := NewConfirmingResolver(reverse, forward, local).LookupName(ctx, addr)
	require.NoError(t, err)
	require.Equal(t, "printer.local", name)
	forward.AssertNotCalled(t, "LookupAddrs", mock.Anything, mock.Anything)
}

func TestConfirmingResolver_PassesReverseFailureThrough(t *testing.T) {
	ctx := t.Context()
	addr := netip.MustParseAddr("10.0.0.1")

	reverse := portsm.NewMockNameResolver(t)
	forward := portsm.NewMockForwardResolver(t)

	reverseErr := &ports.ResolutionError{Address: addr, Err: errors.New("timeout")}
	reverse.On("LookupName", mock.Anything, addr).Return("", reverseErr)

	_, err := NewConfirmingResolver(reverse, forward, nil).LookupName(ctx, addr)
	require.ErrorIs(t, err, reverseErr)
	forward.AssertNotCalled(t, "LookupAddrs", mock.Anything, mock.Anything)
}

func startDNSServer(t *testing.T, ptr map[string]string) string {
	t.Helper()

	pc, err := net.ListenPacket("udp4", "127.0.0.1:0")
	require.NoError(t, err)

	handler := dns.HandlerFunc(func(w dns.ResponseWriter, req *dns.Msg) {
		m := new(dns.Msg)
		m.SetReply(req)

		q := req.Question[0]
		target, ok := ptr[q.Name]

		if !ok || q.Qtype != dns.TypePTR {
			m.SetRcode(req, dns.RcodeNameError)
		} else {
			m.Answer = append(m.Answer, &dns.PTR{
				Hdr: dns.RR_Header{Name: q.Name, Rrtype: dns.TypePTR, Class: dns.ClassINET, Ttl: 60},
				Ptr: target,
			})
		}

		_ = w.WriteMsg(m)
	})

	started := make(chan struct{})
	srv := &dns.Server{
		PacketConn:        pc,
		Handler:           handler,
		NotifyStartedFunc: func() { close(started) },
	}

	go func() {
		_ = srv.ActivateAndServe()
	}()

	<-started

	t.Cleanup(func() { _ = srv.Shutdown() })

	return pc.LocalAddr().String()
}
