package render

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the renderer's collectors. Renderers of one process can share
// a Metrics through WithSharedMetrics. A nil *Metrics records nothing.
type Metrics struct {
	hostOps    *prometheus.CounterVec
	renders    *prometheus.CounterVec
	duration   prometheus.Histogram
	errors     *prometheus.CounterVec
	components prometheus.Gauge
}

// NewMetrics registers the renderer collectors on reg under namespace. A nil
// reg means prometheus.DefaultRegisterer. It panics if the collectors are
// already registered on reg.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		hostOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "host_ops_total",
			Help:      "Host operations issued by the renderer",
		}, []string{"op"}),

		renders: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Mount and update passes",
		}, []string{"kind"}),

		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Duration of mount and update passes in seconds",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		}),

		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Errors reported by the runtime and the renderer",
		}, []string{"code"}),

		components: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mounted_components",
			Help:      "Component instances currently mounted",
		}),
	}
}

func (m *Metrics) hostOp(op string) {
	if m == nil {
		return
	}
	m.hostOps.WithLabelValues(op).Inc()
}

func (m *Metrics) pass(kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.renders.WithLabelValues(kind).Inc()
	m.duration.Observe(d.Seconds())
}

func (m *Metrics) error(code string) {
	if m == nil {
		return
	}
	if code == "" {
		code = "unknown"
	}
	m.errors.WithLabelValues(code).Inc()
}

func (m *Metrics) mounted(delta int) {
	if m == nil {
		return
	}
	m.components.Add(float64(delta))
}
