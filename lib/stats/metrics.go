package stats

import (
	"fmt"
	"io"

	"github.com/VictoriaMetrics/metrics"
)

// Metrics exposes the registry and the per-connection counters in the
// Prometheus text format. Every Metrics instance owns its own metrics.Set,
// so several servers can live in the same process (e.g. in tests).
type Metrics struct {
	set *metrics.Set

	// BytesEchoed counts the bytes written back on the data channel
	BytesEchoed *metrics.Counter
	// ConnectionErrors counts connections that ended with a read or write error
	ConnectionErrors *metrics.Counter

	tcpConnections  *metrics.Counter
	unixConnections *metrics.Counter
}

// NewMetrics creates the metric set for the given registry
func NewMetrics(registry *Registry) *Metrics {
	set := metrics.NewSet()

	set.NewGauge("dcaps_current_users", func() float64 {
		return float64(registry.SnapshotUsers())
	})
	set.NewGauge("dcaps_admin_connections_total", func() float64 {
		return float64(registry.SnapshotAdmins())
	})

	return &Metrics{
		set:              set,
		BytesEchoed:      set.NewCounter("dcaps_bytes_echoed_total"),
		ConnectionErrors: set.NewCounter("dcaps_connection_errors_total"),
		tcpConnections:   set.NewCounter(`dcaps_connections_total{listener="tcp"}`),
		unixConnections:  set.NewCounter(`dcaps_connections_total{listener="unix"}`),
	}
}

// ConnectionAccepted counts an accepted connection for the named listener ("tcp" or "unix")
func (m *Metrics) ConnectionAccepted(listener string) {
	switch listener {
	case "tcp":
		m.tcpConnections.Inc()
	case "unix":
		m.unixConnections.Inc()
	default:
		panic(fmt.Sprintf("unknown listener %q", listener))
	}
}

// WritePrometheus writes all metrics in the Prometheus text exposition format
func (m *Metrics) WritePrometheus(w io.Writer) {
	m.set.WritePrometheus(w)
}
