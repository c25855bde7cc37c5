// Package metrics exposes the Prometheus counters and gauges describing
// the command server's live state: open connections and dispatched
// commands. It carries no protocol knowledge of its own.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics groups the collectors the command server updates.
type Metrics struct {
	ConnectionsOpen prometheus.Gauge
	CommandsTotal   *prometheus.CounterVec
	FramesDropped   prometheus.Counter
}

// New registers and returns a fresh set of collectors against reg. Pass
// prometheus.DefaultRegisterer for process-wide metrics, or a fresh
// *prometheus.Registry in tests to avoid collisions between runs.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ConnectionsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cmdnet",
			Name:      "connections_open",
			Help:      "Number of currently connected clients.",
		}),
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cmdnet",
			Name:      "commands_total",
			Help:      "Number of commands dispatched, labeled by command name.",
		}, []string{"command"}),
		FramesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cmdnet",
			Name:      "frames_dropped_total",
			Help:      "Number of frames discarded for failing validation.",
		}),
	}

	reg.MustRegister(m.ConnectionsOpen, m.CommandsTotal, m.FramesDropped)
	return m
}
