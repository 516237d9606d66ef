package render

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the renderer's logger. The default derives from the
// runtime's logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMetrics registers the renderer's Prometheus collectors on reg under
// namespace. Use WithSharedMetrics when several renderers report to the same
// registry.
func WithMetrics(reg prometheus.Registerer, namespace string) Option {
	return func(r *Renderer) {
		r.metrics = NewMetrics(reg, namespace)
	}
}

// WithSharedMetrics records into m, created by NewMetrics.
func WithSharedMetrics(m *Metrics) Option {
	return func(r *Renderer) {
		r.metrics = m
	}
}

// WithTracer traces every mount and update pass with spans from tp.
func WithTracer(tp trace.TracerProvider) Option {
	return func(r *Renderer) {
		if tp != nil {
			r.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithErrorChannel makes every reported error available on Errors, in a
// buffer of size n. Errors are dropped while the buffer is full.
func WithErrorChannel(n int) Option {
	return func(r *Renderer) {
		if n < 1 {
			n = 1
		}
		r.errCh = make(chan error, n)
	}
}
