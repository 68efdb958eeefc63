package call

import "github.com/prometheus/client_golang/prometheus"

var (
	roomsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "signaling",
		Name:      "rooms_active",
		Help:      "Number of rooms with at least one participant.",
	})
	participantsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "signaling",
		Name:      "participants_active",
		Help:      "Number of room memberships across all rooms.",
	})
	invitesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "signaling",
		Name:      "invites_total",
		Help:      "Incoming-call notifications by outcome.",
	}, []string{"outcome"})
	relayedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "signaling",
		Name:      "relayed_messages_total",
		Help:      "Offer, answer and ICE candidate messages by outcome.",
	}, []string{"kind", "outcome"})
	speakerChangesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "signaling",
		Name:      "speaker_changes_total",
		Help:      "Speaker assignments, explicit or by reassignment.",
	})
)

func init() {
	prometheus.MustRegister(roomsActive, participantsActive, invitesTotal, relayedTotal, speakerChangesTotal)
}
