package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/liveroom-dev/liveroom/pkg/live"
)

// MetricsOption configures the metrics middleware.
type MetricsOption func(*metricsOptions)

type metricsOptions struct {
	registerer prometheus.Registerer
	namespace  string
	buckets    []float64
}

// WithRegisterer sets the registry the collectors are registered with.
// Defaults to prometheus.DefaultRegisterer.
func WithRegisterer(reg prometheus.Registerer) MetricsOption {
	return func(o *metricsOptions) { o.registerer = reg }
}

// WithNamespace sets the metric namespace. Defaults to "liveroom".
func WithNamespace(ns string) MetricsOption {
	return func(o *metricsOptions) { o.namespace = ns }
}

// WithBuckets overrides the duration histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(o *metricsOptions) { o.buckets = buckets }
}

// Metrics returns middleware that records action counts and handler
// duration, labelled by action name and result.
func Metrics(opts ...MetricsOption) live.Middleware {
	o := &metricsOptions{
		registerer: prometheus.DefaultRegisterer,
		namespace:  "liveroom",
		buckets:    []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
	}
	for _, opt := range opts {
		opt(o)
	}

	actions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: o.namespace,
		Name:      "actions_total",
		Help:      "Dispatched actions by name and result.",
	}, []string{"action", "result"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: o.namespace,
		Name:      "action_duration_seconds",
		Help:      "Handler execution time by action.",
		Buckets:   o.buckets,
	}, []string{"action"})
	o.registerer.MustRegister(actions, duration)

	return func(next live.HandlerFunc) live.HandlerFunc {
		return func(ctx *live.Ctx) error {
			start := time.Now()
			err := next(ctx)
			duration.WithLabelValues(ctx.Action()).Observe(time.Since(start).Seconds())
			result := "ok"
			if err != nil {
				result = "error"
			}
			actions.WithLabelValues(ctx.Action(), result).Inc()
			return err
		}
	}
}
