package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the server's Prometheus collectors.
type Metrics struct {
	ConnectionsActive prometheus.Gauge
	ConnectionsTotal  prometheus.Counter
	EventsTotal       *prometheus.CounterVec
	FramesTotal       *prometheus.CounterVec
	ResyncsTotal      prometheus.Counter
	RoomsActive       prometheus.GaugeFunc
}

// NewMetrics creates and registers the server collectors. rooms reports
// the current live room count; pass nil to skip the gauge.
func NewMetrics(reg prometheus.Registerer, rooms func() int) *Metrics {
	m := &Metrics{
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "liveroom_connections_active",
			Help: "Currently open WebSocket connections.",
		}),
		ConnectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "liveroom_connections_total",
			Help: "Total WebSocket connections accepted.",
		}),
		EventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "liveroom_events_total",
			Help: "Inbound action events by result.",
		}, []string{"result"}),
		FramesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "liveroom_frames_total",
			Help: "Outbound frames by kind.",
		}, []string{"kind"}),
		ResyncsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "liveroom_resyncs_total",
			Help: "Full renders sent to recover slow connections.",
		}),
	}
	if rooms != nil {
		m.RoomsActive = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "liveroom_rooms_active",
			Help: "Currently live rooms.",
		}, func() float64 { return float64(rooms()) })
	}

	if reg != nil {
		reg.MustRegister(
			m.ConnectionsActive,
			m.ConnectionsTotal,
			m.EventsTotal,
			m.FramesTotal,
			m.ResyncsTotal,
		)
		if m.RoomsActive != nil {
			reg.MustRegister(m.RoomsActive)
		}
	}
	return m
}
