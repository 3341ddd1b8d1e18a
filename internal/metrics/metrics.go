// Package metrics exposes the server core's connection and framing
// counters as Prometheus collectors, scraped by the admin introspection
// surface's /metrics endpoint.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collector implements internal/server.MetricsSink against a dedicated
// prometheus.Registry so a process can run more than one instance
// without colliding on the default global registry.
type Collector struct {
	Registry *prometheus.Registry

	connectionsOpen  prometheus.Gauge
	connectionsTotal prometheus.Counter
	framesDecoded    prometheus.Counter
	framesDropped    *prometheus.CounterVec
}

// New builds a Collector and registers its collectors against a fresh
// registry.
func New() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		Registry: reg,
		connectionsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "msapi",
			Subsystem: "server",
			Name:      "connections_open",
			Help:      "Number of currently live connections, inbound and outbound.",
		}),
		connectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "msapi",
			Subsystem: "server",
			Name:      "connections_total",
			Help:      "Total connections accepted or dialed since process start.",
		}),
		framesDecoded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "msapi",
			Subsystem: "server",
			Name:      "frames_decoded_total",
			Help:      "Total control frames successfully decoded.",
		}),
		framesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "msapi",
			Subsystem: "server",
			Name:      "frames_dropped_total",
			Help:      "Total frames dropped, labeled by reason.",
		}, []string{"reason"}),
	}
	reg.MustRegister(c.connectionsOpen, c.connectionsTotal, c.framesDecoded, c.framesDropped)
	return c
}

func (c *Collector) ConnectionOpened() {
	c.connectionsOpen.Inc()
	c.connectionsTotal.Inc()
}

func (c *Collector) ConnectionClosed() { c.connectionsOpen.Dec() }

func (c *Collector) FrameDecoded() { c.framesDecoded.Inc() }

func (c *Collector) FrameDropped(reason string) { c.framesDropped.WithLabelValues(reason).Inc() }
