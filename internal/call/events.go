package call

import "time"

type LifecycleEventType string

const (
	LifecycleCallStarted       LifecycleEventType = "call.started"
	LifecycleCallEnded         LifecycleEventType = "call.ended"
	LifecycleParticipantJoined LifecycleEventType = "participant.joined"
	LifecycleParticipantLeft   LifecycleEventType = "participant.left"
	LifecycleSpeakerChanged    LifecycleEventType = "speaker.changed"
)

const (
	ReasonLeft         = "left"
	ReasonDisconnected = "disconnected"
)

// LifecycleEvent is published for consumers outside the signaling server,
// such as call history or billing. It carries no media or signaling data.
type LifecycleEvent struct {
	Type     LifecycleEventType `json:"type"`
	RoomID   string             `json:"roomId"`
	Identity string             `json:"identity,omitempty"`
	IsGroup  bool               `json:"isGroup"`
	Reason   string             `json:"reason,omitempty"`
	At       time.Time          `json:"at"`
}

// LifecycleSink must not block the caller.
type LifecycleSink interface {
	Publish(LifecycleEvent)
}

type NopSink struct{}

func (NopSink) Publish(LifecycleEvent) {}
