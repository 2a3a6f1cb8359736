package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	sweepComplete      prometheus.Gauge
	sweepDuration      prometheus.Gauge
	sweepLastTimestamp prometheus.Gauge
	hostsTotal         prometheus.Gauge
	hostsUp            prometheus.Gauge
	hostsDown          prometheus.Gauge
	hostsNamed         prometheus.Gauge
	hostUp             *prometheus.GaugeVec
	sweepsTotal        *prometheus.CounterVec
}

const (
	prefix = "ping_sweep_"
)

func newMetrics(reg *prometheus.Registry) (*metrics, error) {
	m := &metrics{
		sweepComplete: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "complete",
			Help: "Whether the last sweep probed every host (1: complete, 0: partial)",
		}),
		sweepDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "duration_seconds",
			Help: "Duration of the last sweep in seconds",
		}),
		sweepLastTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "last_timestamp_seconds",
			Help: "Unix time the last sweep finished",
		}),
		hostsTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "hosts_total",
			Help: "Number of hosts covered by the last sweep",
		}),
		hostsUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "hosts_up",
			Help: "Number of hosts that answered the last sweep",
		}),
		hostsDown: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "hosts_down",
			Help: "Number of hosts that did not answer the last sweep",
		}),
		hostsNamed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "hosts_named",
			Help: "Number of hosts with a resolved name in the last sweep",
		}),
		hostUp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: prefix + "host_up",
			Help: "Reachability of a specific host (1: up, 0: down)",
		}, []string{"address", "name"}),
		sweepsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "sweeps_total",
			Help: "Number of sweeps by outcome",
		}, []string{"outcome"}),
	}

	err := register(reg,
		m.sweepComplete,
		m.sweepDuration,
		m.sweepLastTimestamp,
		m.hostsTotal,
		m.hostsUp,
		m.hostsDown,
		m.hostsNamed,
		m.hostUp,
		m.sweepsTotal,
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func register(r *prometheus.Registry, cs ...prometheus.Collector) error {
	for i, c := range cs {
		if err := r.Register(c); err != nil {
			for _, c := range cs[:i] {
				r.Unregister(c)
			}

			return err
		}
	}

	return nil
}
