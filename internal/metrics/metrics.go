package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Session metrics
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "roomcast_sessions_active",
		Help: "The current number of admitted sessions.",
	})
	AdmissionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roomcast_admissions_total",
		Help: "The total number of successful handshakes.",
	})
	RejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roomcast_rejections_total",
		Help: "The total number of rejected handshakes.",
	}, []string{"reason"})

	// Routing metrics
	EventsRouted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roomcast_events_routed_total",
		Help: "The total number of inbound events routed.",
	}, []string{"event"})
	DeliveriesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roomcast_deliveries_dropped_total",
		Help: "The total number of per-recipient deliveries dropped on backpressure.",
	})
	FramesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roomcast_frames_sent_total",
		Help: "The total number of frames written to peers.",
	})
)
