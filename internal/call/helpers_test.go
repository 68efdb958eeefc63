package call

import (
	"strings"
	"testing"
	"time"

	"signaling-server/internal/dto"
	"signaling-server/internal/logging"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	id       string
	identity Identity
	frames   []dto.Envelope
	full     bool
}

func newConn(id, user string) *fakeConn {
	return &fakeConn{
		id:       id,
		identity: Identity{UserID: user, Email: user + "@example.com", DisplayName: strings.ToUpper(user)},
	}
}

func (c *fakeConn) ID() string         { return c.id }
func (c *fakeConn) Identity() Identity { return c.identity }

func (c *fakeConn) Send(env dto.Envelope) bool {
	if c.full {
		return false
	}
	c.frames = append(c.frames, env)
	return true
}

func (c *fakeConn) types() []dto.EventType {
	return lo.Map(c.frames, func(env dto.Envelope, _ int) dto.EventType { return env.Type })
}

func (c *fakeConn) ofType(eventType dto.EventType) []dto.Envelope {
	return lo.Filter(c.frames, func(env dto.Envelope, _ int) bool { return env.Type == eventType })
}

func (c *fakeConn) last(t *testing.T, eventType dto.EventType) dto.Envelope {
	t.Helper()
	frames := c.ofType(eventType)
	require.NotEmpty(t, frames, "no %s frame for %s", eventType, c.identity.UserID)
	return frames[len(frames)-1]
}

func (c *fakeConn) reset() {
	c.frames = nil
}

type recordingSink struct {
	events []LifecycleEvent
}

func (s *recordingSink) Publish(event LifecycleEvent) {
	s.events = append(s.events, event)
}

func (s *recordingSink) types() []LifecycleEventType {
	return lo.Map(s.events, func(e LifecycleEvent, _ int) LifecycleEventType { return e.Type })
}

// steppingClock advances one second per call so join times are distinct.
func steppingClock() func() time.Time {
	current := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

type fixture struct {
	manager *Manager
	sink    *recordingSink
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	sink := &recordingSink{}
	return &fixture{
		manager: NewManager(logging.Discard(), sink, steppingClock()),
		sink:    sink,
	}
}

func (f *fixture) connect(id, user string) *fakeConn {
	conn := newConn(id, user)
	f.manager.Connect(conn)
	return conn
}

func (f *fixture) create(t *testing.T, conn *fakeConn, roomID string, isGroup bool, invitees ...string) {
	t.Helper()
	require.NoError(t, f.manager.CreateRoom(conn, dto.CreateRoomRequest{RoomID: roomID, IsGroup: isGroup, Invitees: invitees}))
}

func (f *fixture) join(t *testing.T, conn *fakeConn, roomID string) {
	t.Helper()
	require.NoError(t, f.manager.JoinRoom(conn, dto.JoinRoomRequest{RoomID: roomID}))
}

func (f *fixture) room(t *testing.T, roomID string) *Room {
	t.Helper()
	room, ok := f.manager.Registry().Get(roomID)
	require.True(t, ok, "room %s not registered", roomID)
	return room
}

func identities(participants []dto.ParticipantSnapshot) []string {
	return lo.Map(participants, func(p dto.ParticipantSnapshot, _ int) string { return p.Identity })
}

func boolPtr(v bool) *bool {
	return &v
}
