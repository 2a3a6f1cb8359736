package mdns

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"strings"
	"time"

	"github.com/pion/mdns/v2"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
	"golang.org/x/sync/semaphore"
)

// Client answers forward lookups of .local names over multicast DNS.
type Client struct {
	logger  *slog.Logger
	conn    *mdns.Conn
	timeout time.Duration
	sem     *semaphore.Weighted
}

type Config struct {
	UseIPv4     bool
	UseIPv6     bool
	IPv4Addr    string
	IPv6Addr    string
	Timeout     time.Duration
	Concurrency int
}

func New(logger *slog.Logger, cfg Config) (*Client, error) {
	if cfg.Concurrency <= 0 {
		return nil, fmt.Errorf("mdns: query concurrency must be greater than zero")
	}

	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("mdns: query timeout must be greater than zero")
	}

	if !cfg.UseIPv4 && !cfg.UseIPv6 {
		return nil, fmt.Errorf("mdns: at least one of IPv4 or IPv6 must be enabled")
	}

	conn, err := listen(cfg)
	if err != nil {
		return nil, err
	}

	return &Client{
		logger:  logger,
		conn:    conn,
		timeout: cfg.Timeout,
		sem:     semaphore.NewWeighted(int64(cfg.Concurrency)),
	}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// LookupAddrs queries the address of name. A name that nobody answers for within the
// timeout yields an empty result rather than an error.
func (c *Client) LookupAddrs(ctx context.Context, name string) ([]netip.Addr, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	defer c.sem.Release(1)

	innerCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, addr, err := c.conn.QueryAddr(innerCtx, strings.TrimSuffix(name, "."))
	if err != nil {
		// The parent deadline is the caller's problem, not a missing answer.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if errors.Is(err, context.DeadlineExceeded) || errors.Is(innerCtx.Err(), context.DeadlineExceeded) {
			c.logger.DebugContext(ctx, "No mdns answer", slog.String("name", name))
			return nil, nil
		}

		return nil, fmt.Errorf("mdns: query %s: %w", name, err)
	}

	return []netip.Addr{addr.Unmap()}, nil
}

func listen(cfg Config) (*mdns.Conn, error) {
	var (
		v4 *ipv4.PacketConn
		v6 *ipv6.PacketConn
	)

	if cfg.UseIPv4 {
		c, err := listenUDP("udp4", cfg.IPv4Addr)
		if err != nil {
			return nil, err
		}

		v4 = ipv4.NewPacketConn(c)
	}

	if cfg.UseIPv6 {
		c, err := listenUDP("udp6", cfg.IPv6Addr)
		if err != nil {
			if v4 != nil {
				_ = v4.Close()
			}

			return nil, err
		}

		v6 = ipv6.NewPacketConn(c)
	}

	conn, err := mdns.Server(v4, v6, &mdns.Config{})
	if err != nil {
		return nil, fmt.Errorf("mdns: start querier: %w", err)
	}

	return conn, nil
}

func listenUDP(network, addr string) (*net.UDPConn, error) {
	udpAddr, err := net.ResolveUDPAddr(network, addr)
	if err != nil {
		return nil, fmt.Errorf("mdns: resolve %s address %q: %w", network, addr, err)
	}

	conn, err := net.ListenUDP(network, udpAddr)
	if err != nil {
		return nil, fmt.Errorf("mdns: listen on %s %s: %w", network, addr, err)
	}

	return conn, nil
}
