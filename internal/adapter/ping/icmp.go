package ping

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

const protocolICMP = 1

var echoPayload = []byte("ping-sweep")

// ICMPPinger sends ICMP echo requests from the process itself.
//
// Unprivileged mode uses datagram ICMP sockets (on Linux gated by net.ipv4.ping_group_range),
// privileged mode uses raw sockets and needs root or CAP_NET_RAW.
type ICMPPinger struct {
	privileged bool
	id         int
	seq        atomic.Uint32
}

func NewICMPPinger(privileged bool) *ICMPPinger {
	return &ICMPPinger{
		privileged: privileged,
		id:         os.Getpid() & 0xffff,
	}
}

func (p *ICMPPinger) network() string {
	if p.privileged {
		return "ip4:icmp"
	}

	return "udp4"
}

// Preflight checks that an ICMP socket can be opened.
func (p *ICMPPinger) Preflight(_ context.Context) error {
	conn, err := icmp.ListenPacket(p.network(), "0.0.0.0")
	if err != nil {
		return fmt.Errorf("ping: cannot open %s ICMP socket: %w", p.network(), err)
	}

	return conn.Close()
}

func (p *ICMPPinger) Ping(ctx context.Context, addr netip.Addr, count int, timeout time.Duration) (bool, error) {
	conn, err := icmp.ListenPacket(p.network(), "0.0.0.0")
	if err != nil {
		return false, fmt.Errorf("failed to open ICMP socket: %w", err)
	}

	defer func() {
		_ = conn.Close()
	}()

	// Unblock a pending read as soon as the context is done.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Now())
	})
	defer stop()

	buf := make([]byte, 1500)

	for range max(count, 1) {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		seq := int(p.seq.Add(1) & 0xffff)

		if err := p.send(conn, addr, seq); err != nil {
			return false, err
		}

		ok, err := p.awaitReply(ctx, conn, buf, addr, seq, time.Now().Add(timeout))
		if err != nil || ok {
			return ok, err
		}
	}

	return false, nil
}

func (p *ICMPPinger) send(conn *icmp.PacketConn, addr netip.Addr, seq int) error {
	msg := icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{
			ID:   p.id,
			Seq:  seq,
			Data: echoPayload,
		},
	}

	b, err := msg.Marshal(nil)
	if err != nil {
		return fmt.Errorf("failed to marshal ICMP message: %w", err)
	}

	if _, err := conn.WriteTo(b, p.dst(addr)); err != nil {
		return fmt.Errorf("failed to send echo request: %w", err)
	}

	return nil
}

func (p *ICMPPinger) awaitReply(ctx context.Context, conn *icmp.PacketConn, buf []byte, addr netip.Addr, seq int, deadline time.Time) (bool, error) {
	if err := conn.SetReadDeadline(deadline); err != nil {
		return false, fmt.Errorf("failed to set read deadline: %w", err)
	}

	for {
		n, peer, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}

			var nerr net.Error
			if errors.As(err, &nerr) && nerr.Timeout() {
				return false, nil
			}

			return false, fmt.Errorf("failed to read echo reply: %w", err)
		}

		if p.matches(buf[:n], peer, addr, seq) {
			return true, nil
		}
	}
}

func (p *ICMPPinger) dst(addr netip.Addr) net.Addr {
	if p.privileged {
		return &net.IPAddr{IP: addr.AsSlice()}
	}

	return &net.UDPAddr{IP: addr.AsSlice()}
}

// matches reports whether b is the echo reply to seq from addr.
// Datagram sockets get their echo ID rewritten by the kernel, so only raw sockets check it.
func (p *ICMPPinger) matches(b []byte, peer net.Addr, addr netip.Addr, seq int) bool {
	rm, err := icmp.ParseMessage(protocolICMP, b)
	if err != nil || rm.Type != ipv4.ICMPTypeEchoReply {
		return false
	}

	echo, ok := rm.Body.(*icmp.Echo)
	if !ok || echo.Seq != seq {
		return false
	}

	if p.privileged && echo.ID != p.id {
		return false
	}

	var ip net.IP

	switch a := peer.(type) {
	case *net.IPAddr:
		ip = a.IP
	case *net.UDPAddr:
		ip = a.IP
	default:
		return false
	}

	from, ok := netip.AddrFromSlice(ip)

	return ok && from.Unmap() == addr
}
