package dto

import (
	"encoding/json"
	"time"
)

type EventType string

const (
	EventCreateRoom         EventType = "create-room"
	EventRoomCreated        EventType = "room-created"
	EventIncomingCall       EventType = "incoming-call"
	EventJoinRoom           EventType = "join-room"
	EventRoomJoined         EventType = "room-joined"
	EventParticipantJoined  EventType = "participant-joined"
	EventLeaveRoom          EventType = "leave-room"
	EventParticipantLeft    EventType = "participant-left"
	EventOffer              EventType = "offer"
	EventAnswer             EventType = "answer"
	EventICECandidate       EventType = "ice-candidate"
	EventAddParticipant     EventType = "add-participant"
	EventParticipantInvited EventType = "participant-invited"
	EventSetSpeaker         EventType = "set-speaker"
	EventSpeakerChanged     EventType = "speaker-changed"
	EventToggleMute         EventType = "toggle-mute"
	EventToggleVideo        EventType = "toggle-video"
	EventParticipantUpdated EventType = "participant-updated"
	EventError              EventType = "error"
)

// IsSignal reports whether t is one of the relayed negotiation events.
func (t EventType) IsSignal() bool {
	switch t {
	case EventOffer, EventAnswer, EventICECandidate:
		return true
	}
	return false
}

// Envelope is the outbound frame. Data holds one of the event structs below.
type Envelope struct {
	Type      EventType `json:"type"`
	Data      any       `json:"data,omitempty"`
	Timestamp int64     `json:"timestamp"`
}

func NewEnvelope(eventType EventType, data any, at time.Time) Envelope {
	return Envelope{
		Type:      eventType,
		Data:      data,
		Timestamp: at.Unix(),
	}
}

type InboundEnvelope struct {
	Type EventType       `json:"type" validate:"required,max=64"`
	Data json.RawMessage `json:"data"`
}

// client -> server

type CreateRoomRequest struct {
	RoomID   string   `json:"roomId" validate:"required,max=128"`
	IsGroup  bool     `json:"isGroup"`
	Invitees []string `json:"invitees" validate:"max=64,dive,required,max=128"`
}

type JoinRoomRequest struct {
	RoomID string `json:"roomId" validate:"required,max=128"`
}

type LeaveRoomRequest struct {
	RoomID string `json:"roomId" validate:"required,max=128"`
}

type AddParticipantRequest struct {
	RoomID  string `json:"roomId" validate:"required,max=128"`
	Invitee string `json:"invitee" validate:"required,max=128"`
}

type SetSpeakerRequest struct {
	RoomID  string `json:"roomId" validate:"required,max=128"`
	Speaker string `json:"speaker" validate:"required,max=128"`
}

type ToggleMuteRequest struct {
	RoomID string `json:"roomId" validate:"required,max=128"`
	Muted  *bool  `json:"muted" validate:"required"`
}

type ToggleVideoRequest struct {
	RoomID   string `json:"roomId" validate:"required,max=128"`
	VideoOff *bool  `json:"videoOff" validate:"required"`
}

// SignalRequest carries an offer, answer or ICE candidate addressed to one
// participant. Payload is forwarded without modification.
type SignalRequest struct {
	RoomID  string          `json:"roomId" validate:"required,max=128"`
	To      string          `json:"to" validate:"required,max=128"`
	Payload json.RawMessage `json:"payload" validate:"required"`
}

// server -> client

type ParticipantSnapshot struct {
	Identity    string `json:"identity"`
	DisplayName string `json:"displayName"`
	Muted       bool   `json:"muted"`
	VideoOff    bool   `json:"videoOff"`
	JoinedAt    string `json:"joinedAt"`
}

type RoomCreated struct {
	RoomID       string                `json:"roomId"`
	IsGroup      bool                  `json:"isGroup"`
	Speaker      string                `json:"speaker"`
	Participants []ParticipantSnapshot `json:"participants"`
}

type RoomJoined struct {
	RoomID       string                `json:"roomId"`
	IsGroup      bool                  `json:"isGroup"`
	Speaker      string                `json:"speaker"`
	Participants []ParticipantSnapshot `json:"participants"`
}

type IncomingCall struct {
	RoomID         string `json:"roomId"`
	CallerIdentity string `json:"callerIdentity"`
	CallerName     string `json:"callerName"`
	IsGroup        bool   `json:"isGroup"`
}

type ParticipantJoined struct {
	RoomID      string `json:"roomId"`
	Identity    string `json:"identity"`
	DisplayName string `json:"displayName"`
}

type ParticipantLeft struct {
	RoomID   string `json:"roomId"`
	Identity string `json:"identity"`
}

type ParticipantInvited struct {
	RoomID  string `json:"roomId"`
	Invitee string `json:"invitee"`
}

type SpeakerChanged struct {
	RoomID  string `json:"roomId"`
	Speaker string `json:"speaker"`
}

type ParticipantUpdated struct {
	RoomID   string `json:"roomId"`
	Identity string `json:"identity"`
	Muted    bool   `json:"muted"`
	VideoOff bool   `json:"videoOff"`
}

type SignalRelay struct {
	RoomID       string          `json:"roomId"`
	FromIdentity string          `json:"fromIdentity"`
	Payload      json.RawMessage `json:"payload"`
}

type ErrorEvent struct {
	Operation string `json:"operation"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

// HTTP views

type RoomSummary struct {
	RoomID           string `json:"roomId"`
	IsGroup          bool   `json:"isGroup"`
	Creator          string `json:"creator"`
	Speaker          string `json:"speaker"`
	ParticipantCount int    `json:"participantCount"`
	CreatedAt        string `json:"createdAt"`
}

type RoomSnapshot struct {
	RoomSummary
	Participants []ParticipantSnapshot `json:"participants"`
}
