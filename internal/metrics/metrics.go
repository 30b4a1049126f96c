// Package metrics holds the server's in-process Prometheus collectors.
// There is no HTTP exporter here: spec scope is a single TCP listener,
// so these are gathered and logged periodically by internal/diagnostics
// instead of scraped, mirroring the teacher's plain in-memory
// GeneralStats counters but through a real prometheus.Registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Registry holds this server's counters and gauges, registered against a
// private prometheus.Registry rather than the global default one, so
// multiple servers in the same process (as in tests) never collide.
type Registry struct {
	reg *prometheus.Registry

	ConnectionsReceived prometheus.Counter
	CommandsExecuted    prometheus.Counter
	ExpiredKeys         prometheus.Counter
	StoreKeys           prometheus.Gauge
}

// New builds and registers every collector.
func New() *Registry {
	reg := prometheus.NewRegistry()
	m := &Registry{
		reg: reg,
		ConnectionsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "respkv_connections_received_total",
			Help: "Total TCP connections accepted since startup.",
		}),
		CommandsExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "respkv_commands_executed_total",
			Help: "Total commands dispatched since startup.",
		}),
		ExpiredKeys: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "respkv_expired_keys_total",
			Help: "Total keys removed by lazy or active expiration since startup.",
		}),
		StoreKeys: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "respkv_store_keys",
			Help: "Current number of live keys in the store.",
		}),
	}
	reg.MustRegister(m.ConnectionsReceived, m.CommandsExecuted, m.ExpiredKeys, m.StoreKeys)
	return m
}

// Snapshot is a point-in-time read of every collector, produced via the
// registry's real Gather path rather than reading the Go values directly,
// so the metric names and label sets stay in sync with what a real
// scraper would see if one were ever attached.
type Snapshot struct {
	ConnectionsReceived float64
	CommandsExecuted    float64
	ExpiredKeys         float64
	StoreKeys           float64
}

// Gather runs the registry's collection path and extracts the counter
// values diagnostics logs every tick.
func (m *Registry) Gather() (Snapshot, error) {
	families, err := m.reg.Gather()
	if err != nil {
		return Snapshot{}, err
	}
	var snap Snapshot
	for _, fam := range families {
		if len(fam.Metric) == 0 {
			continue
		}
		metric := fam.Metric[0]
		switch fam.GetName() {
		case "respkv_connections_received_total":
			snap.ConnectionsReceived = counterValue(metric)
		case "respkv_commands_executed_total":
			snap.CommandsExecuted = counterValue(metric)
		case "respkv_expired_keys_total":
			snap.ExpiredKeys = counterValue(metric)
		case "respkv_store_keys":
			snap.StoreKeys = metric.GetGauge().GetValue()
		}
	}
	return snap, nil
}

func counterValue(m *dto.Metric) float64 {
	return m.GetCounter().GetValue()
}
