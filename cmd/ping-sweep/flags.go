package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/khmm12/ping-sweep/internal/adapter/hostprobe"
	"github.com/khmm12/ping-sweep/internal/adapter/mdns"
	"github.com/khmm12/ping-sweep/internal/adapter/ping"
	"github.com/khmm12/ping-sweep/internal/adapter/resolver"
	"github.com/khmm12/ping-sweep/internal/ports"
	"github.com/khmm12/ping-sweep/internal/usecase"
)

type Probe struct {
	Method     string        `name:"method" env:"PROBE_METHOD" default:"exec" enum:"exec,icmp" help:"Liveness check transport: the system ping binary (exec) or in-process ICMP echo (icmp)."`
	Command    string        `name:"command" env:"PROBE_COMMAND" default:"ping" help:"Ping binary used by the exec method."`
	Privileged bool          `name:"privileged" env:"PROBE_PRIVILEGED" help:"Use raw ICMP sockets with the icmp method, requires CAP_NET_RAW or root."`
	Count      int           `name:"count" env:"PROBE_COUNT" default:"4" help:"Echo requests sent to each host."`
	Timeout    time.Duration `name:"timeout" env:"PROBE_TIMEOUT" default:"1s" help:"Time to wait for a single echo reply (e.g., 500ms, 1s)."`
	Overhead   time.Duration `name:"overhead" env:"PROBE_OVERHEAD" default:"2s" help:"Slack added to count*timeout before a liveness check is aborted."`
}

type Resolve struct {
	Timeout      time.Duration `name:"timeout" env:"RESOLVE_TIMEOUT" default:"2s" help:"Time allowed for resolving the name of one host."`
	Servers      []string      `name:"servers" env:"RESOLVE_SERVERS" sep:"," help:"Comma-separated DNS servers queried for PTR records instead of the system resolver (e.g., '10.0.0.53,1.1.1.1:53')."`
	Retries      int           `name:"retries" env:"RESOLVE_RETRIES" default:"2" help:"Retries per PTR query against --resolve.servers."`
	Confirm      bool          `name:"confirm" env:"RESOLVE_CONFIRM" help:"Accept a name only when its forward lookup returns the probed address."`
	MDNS         bool          `name:"mdns" env:"RESOLVE_MDNS" help:"Confirm .local names over multicast DNS."`
	MDNSIPv4Addr string        `name:"mdns.ipv4.addr" env:"RESOLVE_MDNS_IPV4_ADDR" default:"224.0.0.0:5353" help:"IPv4 address to bind to for mDNS queries."`
}

type SweepFlags struct {
	Concurrency      int           `name:"concurrency" env:"SWEEP_CONCURRENCY" default:"15" help:"Maximum number of hosts probed at the same time."`
	Timeout          time.Duration `name:"timeout" env:"SWEEP_TIMEOUT" default:"0s" help:"Deadline of a whole sweep, 0 disables it. Hosts not probed in time are reported as unknown."`
	MaxHosts         int           `name:"max-hosts" env:"SWEEP_MAX_HOSTS" default:"${default_max_hosts}" help:"Refuse prefixes with more hosts, 0 lifts the limit up to ${hard_max_hosts} hosts."`
	ProgressInterval time.Duration `name:"progress-interval" env:"SWEEP_PROGRESS_INTERVAL" default:"1s" help:"Minimum time between two progress updates."`
	Exclude          []string      `name:"exclude" env:"SWEEP_EXCLUDE" sep:"," help:"Comma-separated addresses or prefixes that are not probed."`
}

func (s SweepFlags) options(p Probe, r Resolve, resolve bool) usecase.SweepOptions {
	maxHosts := s.MaxHosts
	if maxHosts == 0 {
		maxHosts = -1
	}

	return usecase.SweepOptions{
		Concurrency:      s.Concurrency,
		Timeout:          s.Timeout,
		ProgressInterval: s.ProgressInterval,
		MaxHosts:         maxHosts,
		Probe: ports.ProbeOptions{
			Count:          p.Count,
			Timeout:        p.Timeout,
			Resolve:        resolve,
			ResolveTimeout: r.Timeout,
		},
	}
}

type preflighter interface {
	Preflight(ctx context.Context) error
}

// buildProbe wires the liveness transport and name resolution. The returned function
// releases the resources of both.
func buildProbe(ctx context.Context, logger *slog.Logger, p Probe, r Resolve, resolve bool, concurrency int) (*hostprobe.Probe, func(), error) {
	var pinger interface {
		ports.Pinger
		preflighter
	}

	switch p.Method {
	case "icmp":
		pinger = ping.NewICMPPinger(p.Privileged)
	default:
		pinger = ping.NewExecPinger(ping.WithCommand(p.Command))
	}

	if err := pinger.Preflight(ctx); err != nil {
		return nil, nil, fmt.Errorf("probe transport %s is not usable: %w", p.Method, err)
	}

	if !resolve {
		return hostprobe.New(logger, pinger, nil, p.Overhead), func() {}, nil
	}

	nameResolver, closeResolver, err := buildResolver(logger, r, concurrency)
	if err != nil {
		return nil, nil, err
	}

	return hostprobe.New(logger, pinger, nameResolver, p.Overhead), closeResolver, nil
}

func buildResolver(logger *slog.Logger, r Resolve, concurrency int) (ports.NameResolver, func(), error) {
	system := resolver.NewSystemResolver()

	var reverse ports.NameResolver = system

	if len(r.Servers) > 0 {
		dnsResolver, err := resolver.NewDNSResolver(r.Servers, r.Timeout, r.Retries)
		if err != nil {
			return nil, nil, err
		}

		reverse = dnsResolver
	}

	if !r.Confirm {
		return reverse, func() {}, nil
	}

	if !r.MDNS {
		return resolver.NewConfirmingResolver(reverse, system, nil), func() {}, nil
	}

	client, err := mdns.New(logger, mdns.Config{
		UseIPv4:     true,
		IPv4Addr:    r.MDNSIPv4Addr,
		Timeout:     r.Timeout,
		Concurrency: concurrency,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create mdns client: %w", err)
	}

	return resolver.NewConfirmingResolver(reverse, system, client), func() { _ = client.Close() }, nil
}

func (p Probe) validate() []error {
	var errs []error

	if p.Count <= 0 {
		errs = append(errs, errors.New("--probe.count: must be greater than zero"))
	}

	if p.Timeout <= 0 {
		errs = append(errs, errors.New("--probe.timeout: must be greater than zero"))
	}

	if p.Overhead < 0 {
		errs = append(errs, errors.New("--probe.overhead: must not be negative"))
	}

	if p.Method == "exec" && p.Command == "" {
		errs = append(errs, errors.New("--probe.command: must not be empty"))
	}

	return errs
}

func (r Resolve) validate() []error {
	var errs []error

	if r.Timeout <= 0 {
		errs = append(errs, errors.New("--resolve.timeout: must be greater than zero"))
	}

	if r.Retries < 0 {
		errs = append(errs, errors.New("--resolve.retries: must not be negative"))
	}

	for _, s := range r.Servers {
		if !isDNSServer(s) {
			errs = append(errs, fmt.Errorf("--resolve.servers: %q must be an IPv4 address with an optional port", s))
		}
	}

	if r.MDNS && !r.Confirm {
		errs = append(errs, errors.New("--resolve.mdns: requires --resolve.confirm"))
	}

	if r.MDNS && !isUDP4AddrResolvable(r.MDNSIPv4Addr) {
		errs = append(errs, errors.New("--resolve.mdns.ipv4.addr: must be a valid UDP IPv4 address e.g. 224.0.0.0:5353"))
	}

	return errs
}

func (s SweepFlags) validate() []error {
	var errs []error

	if s.Concurrency <= 0 {
		errs = append(errs, errors.New("--sweep.concurrency: must be greater than zero"))
	}

	if s.Timeout < 0 {
		errs = append(errs, errors.New("--sweep.timeout: must not be negative"))
	}

	if s.MaxHosts < 0 || s.MaxHosts > usecase.HardMaxHosts {
		errs = append(errs, fmt.Errorf("--sweep.max-hosts: must be between 0 and %d", usecase.HardMaxHosts))
	}

	if s.ProgressInterval <= 0 {
		errs = append(errs, errors.New("--sweep.progress-interval: must be greater than zero"))
	}

	return errs
}
