package reconcile

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the reconcile collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	runs     *prometheus.CounterVec
	commands *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates and registers the reconcile collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "iosrecon_reconcile_runs_total",
			Help: "Reconcile runs by feature, mode and result.",
		}, []string{"feature", "mode", "result"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "iosrecon_reconcile_commands_total",
			Help: "Configuration lines generated.",
		}, []string{"feature", "mode"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "iosrecon_reconcile_duration_seconds",
			Help:    "Time spent in one reconcile run.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"feature", "mode"}),
	}
	m.Registry.MustRegister(m.runs, m.commands, m.duration)
	return m
}

func (m *Metrics) observe(feature, mode string, commands int, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.runs.WithLabelValues(feature, mode, result).Inc()
	m.commands.WithLabelValues(feature, mode).Add(float64(commands))
	m.duration.WithLabelValues(feature, mode).Observe(elapsed.Seconds())
}

// WriteToTextfile writes the current metrics in the text exposition format,
// for pickup by a node exporter textfile collector.
func (m *Metrics) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
