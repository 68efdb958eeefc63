package websocket

import "github.com/prometheus/client_golang/prometheus"

var (
	wsConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "signaling_ws_connections",
			Help: "Current number of authenticated websocket connections.",
		},
	)
	wsMessagesHandled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signaling_ws_messages_handled_total",
			Help: "Inbound frames by event type and outcome.",
		},
		[]string{"type", "outcome"},
	)
	wsErrorsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signaling_ws_errors_total",
			Help: "Error frames sent to clients by code.",
		},
		[]string{"code"},
	)
	wsMessagesDelivered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "signaling_ws_messages_delivered_total",
			Help: "Total websocket frames written to clients.",
		},
	)
	wsSlowConsumers = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "signaling_ws_slow_consumers_total",
			Help: "Connections closed because their send buffer was full.",
		},
	)
	lifecycleEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signaling_lifecycle_events_total",
			Help: "Call lifecycle events by type and publish outcome.",
		},
		[]string{"type", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(wsConnections, wsMessagesHandled, wsErrorsSent, wsMessagesDelivered, wsSlowConsumers, lifecycleEvents)
}

func incConnections() {
	wsConnections.Inc()
}

func decConnections() {
	wsConnections.Dec()
}

func addDelivered(count int) {
	wsMessagesDelivered.Add(float64(count))
}
