package call

import (
	"fmt"
	"log/slog"
	"time"

	"signaling-server/internal/dto"

	"github.com/samber/lo"
)

// Manager applies room operations to the registry and presence tables and
// emits the resulting events. It is not safe for concurrent use; the hub
// calls it from a single goroutine so that every operation observes the
// effects of all earlier ones.
type Manager struct {
	registry *Registry
	presence *Presence
	sink     LifecycleSink
	log      *slog.Logger
	now      func() time.Time
}

func NewManager(log *slog.Logger, sink LifecycleSink, now func() time.Time) *Manager {
	if sink == nil {
		sink = NopSink{}
	}
	if now == nil {
		now = time.Now
	}
	return &Manager{
		registry: NewRegistry(),
		presence: NewPresence(),
		sink:     sink,
		log:      log,
		now:      now,
	}
}

func (m *Manager) Registry() *Registry {
	return m.registry
}

func (m *Manager) Presence() *Presence {
	return m.presence
}

// Connect makes conn the primary connection for its identity.
func (m *Manager) Connect(conn Conn) {
	identity := conn.Identity().UserID
	m.presence.Put(identity, conn)
	m.log.Info("connection registered",
		"identity", identity,
		"conn", conn.ID(),
		"sessions", len(m.presence.Connections(identity)),
	)
}

// Disconnect forgets conn and removes its identity from every room that was
// bound to this particular connection. Rooms joined through another of the
// user's connections are left alone.
func (m *Manager) Disconnect(conn Conn) {
	identity := conn.Identity().UserID
	remaining := m.presence.Remove(identity, conn)

	swept := 0
	for _, roomID := range m.registry.RoomsOf(identity) {
		room, ok := m.registry.Get(roomID)
		if !ok {
			continue
		}
		p, ok := room.Participant(identity)
		if !ok || p.Conn == nil || p.Conn.ID() != conn.ID() {
			continue
		}
		m.leave(room, identity, ReasonDisconnected)
		swept++
	}

	m.log.Info("connection closed",
		"identity", identity,
		"conn", conn.ID(),
		"rooms_left", swept,
		"sessions", remaining,
	)
}

func (m *Manager) CreateRoom(conn Conn, req dto.CreateRoomRequest) error {
	caller := conn.Identity()
	now := m.now()

	room, err := m.registry.Create(req.RoomID, req.IsGroup, now, &Participant{
		Identity:    caller.UserID,
		DisplayName: caller.DisplayName,
		Conn:        conn,
		JoinedAt:    now,
	})
	if err != nil {
		return err
	}

	conn.Send(m.envelope(dto.EventRoomCreated, dto.RoomCreated{
		RoomID:       room.ID,
		IsGroup:      room.IsGroup,
		Speaker:      room.Speaker,
		Participants: room.snapshots(),
	}))

	notice := m.envelope(dto.EventIncomingCall, dto.IncomingCall{
		RoomID:         room.ID,
		CallerIdentity: caller.UserID,
		CallerName:     caller.DisplayName,
		IsGroup:        room.IsGroup,
	})
	for _, invitee := range lo.Without(lo.Uniq(req.Invitees), caller.UserID) {
		target, online := m.presence.Get(invitee)
		if !online {
			invitesTotal.WithLabelValues("offline").Inc()
			m.log.Debug("invitee offline", "room", room.ID, "invitee", invitee)
			continue
		}
		if target.Send(notice) {
			invitesTotal.WithLabelValues("delivered").Inc()
		} else {
			invitesTotal.WithLabelValues("dropped").Inc()
		}
	}

	m.publish(LifecycleCallStarted, room, caller.UserID, "")
	m.log.Info("room created", "room", room.ID, "creator", caller.UserID, "group", room.IsGroup)
	return nil
}

func (m *Manager) JoinRoom(conn Conn, req dto.JoinRoomRequest) error {
	caller := conn.Identity()
	room, ok := m.registry.Get(req.RoomID)
	if !ok {
		return ErrRoomNotFound
	}

	if p, ok := room.Participant(caller.UserID); ok {
		// Re-join from a new connection: rebind without announcing twice.
		p.Conn = conn
		conn.Send(m.roomJoined(room))
		return nil
	}

	p := &Participant{
		Identity:    caller.UserID,
		DisplayName: caller.DisplayName,
		Conn:        conn,
		JoinedAt:    m.now(),
	}
	room.broadcast(m.envelope(dto.EventParticipantJoined, dto.ParticipantJoined{
		RoomID:      room.ID,
		Identity:    p.Identity,
		DisplayName: p.DisplayName,
	}), "")
	m.registry.AddParticipant(room, p)
	conn.Send(m.roomJoined(room))

	m.publish(LifecycleParticipantJoined, room, caller.UserID, "")
	return nil
}

func (m *Manager) LeaveRoom(conn Conn, req dto.LeaveRoomRequest) error {
	caller := conn.Identity()
	room, ok := m.registry.Get(req.RoomID)
	if !ok {
		return ErrRoomNotFound
	}
	if !room.Has(caller.UserID) {
		return ErrNotParticipant
	}
	m.leave(room, caller.UserID, ReasonLeft)
	return nil
}

// leave removes identity from room, announces it to the remaining
// participants and reassigns the speaker when needed.
func (m *Manager) leave(room *Room, identity, reason string) {
	_, removed, deleted := m.registry.RemoveParticipant(room, identity)
	if !removed {
		return
	}

	m.publish(LifecycleParticipantLeft, room, identity, reason)
	if deleted {
		m.publish(LifecycleCallEnded, room, "", reason)
		m.log.Info("room closed", "room", room.ID, "last", identity)
		return
	}

	room.broadcast(m.envelope(dto.EventParticipantLeft, dto.ParticipantLeft{
		RoomID:   room.ID,
		Identity: identity,
	}), "")

	if room.Speaker != identity {
		return
	}
	next, _ := room.earliestJoined()
	m.changeSpeaker(room, next)
}

func (m *Manager) AddParticipant(conn Conn, req dto.AddParticipantRequest) error {
	caller := conn.Identity()
	room, ok := m.registry.Get(req.RoomID)
	if !ok {
		return ErrRoomNotFound
	}
	if !room.Has(caller.UserID) {
		return ErrNotAuthorized
	}
	target, online := m.presence.Get(req.Invitee)
	if !online {
		invitesTotal.WithLabelValues("offline").Inc()
		return ErrUserOffline
	}

	if target.Send(m.envelope(dto.EventIncomingCall, dto.IncomingCall{
		RoomID:         room.ID,
		CallerIdentity: caller.UserID,
		CallerName:     caller.DisplayName,
		IsGroup:        room.IsGroup,
	})) {
		invitesTotal.WithLabelValues("delivered").Inc()
	} else {
		invitesTotal.WithLabelValues("dropped").Inc()
	}

	conn.Send(m.envelope(dto.EventParticipantInvited, dto.ParticipantInvited{
		RoomID:  room.ID,
		Invitee: req.Invitee,
	}))
	return nil
}

func (m *Manager) SetSpeaker(conn Conn, req dto.SetSpeakerRequest) error {
	caller := conn.Identity()
	room, ok := m.registry.Get(req.RoomID)
	if !ok {
		return ErrRoomNotFound
	}
	if room.Creator != caller.UserID {
		return ErrNotAuthorized
	}
	if !room.Has(req.Speaker) {
		return NewError(CodeNotParticipant, fmt.Sprintf("%s is not a participant of this room", req.Speaker), nil)
	}
	m.changeSpeaker(room, req.Speaker)
	return nil
}

func (m *Manager) changeSpeaker(room *Room, speaker string) {
	room.Speaker = speaker
	speakerChangesTotal.Inc()
	room.broadcast(m.envelope(dto.EventSpeakerChanged, dto.SpeakerChanged{
		RoomID:  room.ID,
		Speaker: speaker,
	}), "")
	m.publish(LifecycleSpeakerChanged, room, speaker, "")
}

// ToggleMute is ignored when the room or the caller's membership is gone.
func (m *Manager) ToggleMute(conn Conn, req dto.ToggleMuteRequest) error {
	m.updateMedia(conn, req.RoomID, func(p *Participant) {
		p.Muted = *req.Muted
	})
	return nil
}

func (m *Manager) ToggleVideo(conn Conn, req dto.ToggleVideoRequest) error {
	m.updateMedia(conn, req.RoomID, func(p *Participant) {
		p.VideoOff = *req.VideoOff
	})
	return nil
}

func (m *Manager) updateMedia(conn Conn, roomID string, apply func(*Participant)) {
	identity := conn.Identity().UserID
	room, ok := m.registry.Get(roomID)
	if !ok {
		return
	}
	p, ok := room.Participant(identity)
	if !ok {
		return
	}
	apply(p)
	room.broadcast(m.envelope(dto.EventParticipantUpdated, dto.ParticipantUpdated{
		RoomID:   room.ID,
		Identity: identity,
		Muted:    p.Muted,
		VideoOff: p.VideoOff,
	}), identity)
}

// Rooms summarizes every active room, oldest first.
func (m *Manager) Rooms() []dto.RoomSummary {
	return lo.Map(m.registry.Rooms(), func(room *Room, _ int) dto.RoomSummary {
		return room.Summary()
	})
}

func (m *Manager) Room(roomID string) (dto.RoomSnapshot, bool) {
	room, ok := m.registry.Get(roomID)
	if !ok {
		return dto.RoomSnapshot{}, false
	}
	return room.Snapshot(), true
}

func (m *Manager) roomJoined(room *Room) dto.Envelope {
	return m.envelope(dto.EventRoomJoined, dto.RoomJoined{
		RoomID:       room.ID,
		IsGroup:      room.IsGroup,
		Speaker:      room.Speaker,
		Participants: room.snapshots(),
	})
}

func (m *Manager) envelope(eventType dto.EventType, data any) dto.Envelope {
	return dto.NewEnvelope(eventType, data, m.now())
}

func (m *Manager) publish(eventType LifecycleEventType, room *Room, identity, reason string) {
	m.sink.Publish(LifecycleEvent{
		Type:     eventType,
		RoomID:   room.ID,
		Identity: identity,
		IsGroup:  room.IsGroup,
		Reason:   reason,
		At:       m.now(),
	})
}
