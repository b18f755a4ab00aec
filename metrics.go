package mqttclient

import (
	"github.com/ionmesh/mqttclient/packet"
	"github.com/prometheus/client_golang/prometheus"
)

// metrics is the client's Stat: counters/gauges modelled on Stat in
// stat.go, relabelled per packet type and error kind since a client
// library has many more distinguishable events than a broker's uptime
// counter. Unlike stat.go's package-level singleton, metrics is owned
// per-Client and is only registered, on the caller's own registry, when
// the caller opts in via WithMetricsRegistry; it never touches
// prometheus.DefaultRegisterer.
type metrics struct {
	packetsSent     *prometheus.CounterVec
	packetsReceived *prometheus.CounterVec
	bytesSent       prometheus.Counter
	bytesReceived   prometheus.Counter
	pendingOccupied prometheus.Gauge
	protocolErrors  *prometheus.CounterVec
}

func newMetrics() *metrics {
	return &metrics{
		packetsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mqttclient_packets_sent_total",
			Help: "Control packets sent, by packet type.",
		}, []string{"type"}),
		packetsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mqttclient_packets_received_total",
			Help: "Control packets received, by packet type.",
		}, []string{"type"}),
		bytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mqttclient_bytes_sent_total",
			Help: "Raw bytes written to the transport.",
		}),
		bytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mqttclient_bytes_received_total",
			Help: "Raw bytes read from the transport.",
		}),
		pendingOccupied: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mqttclient_pending_table_occupancy",
			Help: "Live entries in the pending-acknowledgement table.",
		}),
		protocolErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mqttclient_protocol_errors_total",
			Help: "Errors raised by the engine, by error kind.",
		}, []string{"kind"}),
	}
}

// register adds every collector to reg. Safe to call with a nil reg (no-op).
func (m *metrics) register(reg *prometheus.Registry) {
	if reg == nil {
		return
	}
	reg.MustRegister(
		m.packetsSent,
		m.packetsReceived,
		m.bytesSent,
		m.bytesReceived,
		m.pendingOccupied,
		m.protocolErrors,
	)
}

func (m *metrics) sent(t packet.Type, n int) {
	m.packetsSent.WithLabelValues(t.String()).Inc()
	m.bytesSent.Add(float64(n))
}

func (m *metrics) received(t packet.Type, n int) {
	m.packetsReceived.WithLabelValues(t.String()).Inc()
	m.bytesReceived.Add(float64(n))
}

func (m *metrics) recordError(k packet.Kind) {
	m.protocolErrors.WithLabelValues(k.String()).Inc()
}

func (m *metrics) setOccupancy(n int) {
	m.pendingOccupied.Set(float64(n))
}
