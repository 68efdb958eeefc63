package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"signaling-server/internal/call"
	"signaling-server/internal/dto"
	"signaling-server/internal/logging"

	"github.com/gorilla/websocket"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

type frame struct {
	Type      dto.EventType   `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

type testServer struct {
	*httptest.Server
	hub     *Hub
	handler *Handler
}

func newTestServer(t *testing.T, opts ClientOptions) *testServer {
	t.Helper()
	log := logging.Discard()
	hub := NewHub(call.NewManager(log, call.NopSink{}, nil), log)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	handler := NewHandler(hub, nil, opts, log)
	srv := httptest.NewServer(identityFromQuery(handler))

	t.Cleanup(func() {
		cancel()
		<-hub.Stopped()
		srv.Close()
	})
	return &testServer{Server: srv, hub: hub, handler: handler}
}

func identityFromQuery(handler *Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := r.URL.Query().Get("user")
		if user == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		handler.Connect(w, r, call.Identity{UserID: user, DisplayName: strings.ToUpper(user)})
	})
}

// mount serves a second handler with its own client options on the same hub.
func (s *testServer) mount(t *testing.T, opts ClientOptions) string {
	t.Helper()
	srv := httptest.NewServer(identityFromQuery(NewHandler(s.hub, nil, opts, logging.Discard())))
	t.Cleanup(srv.Close)
	return srv.URL
}

func (s *testServer) dial(t *testing.T, user string) *websocket.Conn {
	t.Helper()
	return s.dialAt(t, s.URL, user)
}

func (s *testServer) dialAt(t *testing.T, base, user string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(base, "http") + "?user=" + user
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { conn.Close() })

	s.waitOnline(t, user, true)
	return conn
}

func (s *testServer) waitOnline(t *testing.T, user string, want bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		online := false
		_ = s.hub.Query(context.Background(), func(m *call.Manager) {
			_, online = m.Presence().Get(user)
		})
		return online == want
	}, 2*time.Second, 10*time.Millisecond)
}

func send(t *testing.T, conn *websocket.Conn, eventType dto.EventType, data any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]any{"type": eventType, "data": data}))
}

func next(t *testing.T, conn *websocket.Conn, want dto.EventType, out any) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	require.Equal(t, want, f.Type, "unexpected frame %s", string(f.Data))
	require.NotZero(t, f.Timestamp)
	if out != nil {
		require.NoError(t, json.Unmarshal(f.Data, out))
	}
	return f
}

func participantIDs(snapshots []dto.ParticipantSnapshot) []string {
	return lo.Map(snapshots, func(p dto.ParticipantSnapshot, _ int) string { return p.Identity })
}

func TestCallScenarioOverWebSocket(t *testing.T) {
	srv := newTestServer(t, DefaultClientOptions())
	a := srv.dial(t, "A")
	b := srv.dial(t, "B")

	send(t, a, dto.EventCreateRoom, dto.CreateRoomRequest{RoomID: "r1", Invitees: []string{"B"}})
	var created dto.RoomCreated
	next(t, a, dto.EventRoomCreated, &created)
	require.Equal(t, "A", created.Speaker)
	require.Equal(t, []string{"A"}, participantIDs(created.Participants))

	var incoming dto.IncomingCall
	next(t, b, dto.EventIncomingCall, &incoming)
	require.Equal(t, dto.IncomingCall{RoomID: "r1", CallerIdentity: "A", CallerName: "A"}, incoming)

	send(t, b, dto.EventJoinRoom, dto.JoinRoomRequest{RoomID: "r1"})
	var joined dto.RoomJoined
	next(t, b, dto.EventRoomJoined, &joined)
	require.Equal(t, []string{"A", "B"}, participantIDs(joined.Participants))
	var announced dto.ParticipantJoined
	next(t, a, dto.EventParticipantJoined, &announced)
	require.Equal(t, "B", announced.Identity)

	offer := json.RawMessage(`{"type":"offer","sdp":"v=0\r\no=- 1 2 IN IP4 127.0.0.1\r\ns=-\r\nt=0 0\r\nm=audio 9 UDP/TLS/RTP/SAVPF 111\r\nc=IN IP4 0.0.0.0\r\na=rtpmap:111 opus/48000/2\r\n"}`)
	send(t, a, dto.EventOffer, dto.SignalRequest{RoomID: "r1", To: "B", Payload: offer})
	var relayed dto.SignalRelay
	next(t, b, dto.EventOffer, &relayed)
	require.Equal(t, "A", relayed.FromIdentity)
	require.JSONEq(t, string(offer), string(relayed.Payload))

	require.NoError(t, a.Close())

	var left dto.ParticipantLeft
	next(t, b, dto.EventParticipantLeft, &left)
	require.Equal(t, "A", left.Identity)
	var changed dto.SpeakerChanged
	next(t, b, dto.EventSpeakerChanged, &changed)
	require.Equal(t, "B", changed.Speaker)

	snapshot, found, err := srv.handler.Room(context.Background(), "r1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []string{"B"}, participantIDs(snapshot.Participants))

	send(t, b, dto.EventLeaveRoom, dto.LeaveRoomRequest{RoomID: "r1"})
	send(t, b, dto.EventJoinRoom, dto.JoinRoomRequest{RoomID: "r1"})
	var failure dto.ErrorEvent
	next(t, b, dto.EventError, &failure)
	require.Equal(t, dto.ErrorEvent{Operation: "join-room", Code: "room_not_found", Message: "room not found"}, failure)
}

func TestMalformedFramesAreReportedToSenderOnly(t *testing.T) {
	srv := newTestServer(t, DefaultClientOptions())
	a := srv.dial(t, "alice")
	b := srv.dial(t, "bob")

	send(t, a, dto.EventCreateRoom, dto.CreateRoomRequest{RoomID: "r1"})
	next(t, a, dto.EventRoomCreated, nil)
	send(t, b, dto.EventJoinRoom, dto.JoinRoomRequest{RoomID: "r1"})
	next(t, b, dto.EventRoomJoined, nil)
	next(t, a, dto.EventParticipantJoined, nil)

	require.NoError(t, b.WriteMessage(websocket.TextMessage, []byte("not json")))
	var failure dto.ErrorEvent
	next(t, b, dto.EventError, &failure)
	require.Equal(t, "invalid_message", failure.Code)

	send(t, b, "teleport", map[string]string{"roomId": "r1"})
	next(t, b, dto.EventError, &failure)
	require.Equal(t, "teleport", failure.Operation)
	require.Equal(t, "invalid_message", failure.Code)

	send(t, b, dto.EventToggleMute, map[string]string{"roomId": "r1"})
	next(t, b, dto.EventError, &failure)
	require.Equal(t, "toggle-mute", failure.Operation)

	send(t, b, dto.EventSetSpeaker, dto.SetSpeakerRequest{RoomID: "r1", Speaker: "bob"})
	next(t, b, dto.EventError, &failure)
	require.Equal(t, "not_authorized", failure.Code)

	// The connection survived every failure and alice heard none of them.
	muted := true
	send(t, b, dto.EventToggleMute, dto.ToggleMuteRequest{RoomID: "r1", Muted: &muted})
	var updated dto.ParticipantUpdated
	next(t, a, dto.EventParticipantUpdated, &updated)
	require.Equal(t, dto.ParticipantUpdated{RoomID: "r1", Identity: "bob", Muted: true}, updated)
}

func TestRelayToOfflineUserIsSilent(t *testing.T) {
	srv := newTestServer(t, DefaultClientOptions())
	a := srv.dial(t, "alice")

	send(t, a, dto.EventICECandidate, dto.SignalRequest{RoomID: "r1", To: "ghost", Payload: json.RawMessage(`{"candidate":""}`)})
	// A follow-up request proves nothing was queued for the relay.
	send(t, a, dto.EventJoinRoom, dto.JoinRoomRequest{RoomID: "missing"})
	var failure dto.ErrorEvent
	next(t, a, dto.EventError, &failure)
	require.Equal(t, "join-room", failure.Operation)
}

func TestSecondSessionBecomesPrimary(t *testing.T) {
	srv := newTestServer(t, DefaultClientOptions())
	a := srv.dial(t, "alice")
	first := srv.dial(t, "bob")
	second := srv.dial(t, "bob")

	send(t, a, dto.EventCreateRoom, dto.CreateRoomRequest{RoomID: "r1", Invitees: []string{"bob"}})
	next(t, a, dto.EventRoomCreated, nil)
	next(t, second, dto.EventIncomingCall, nil)

	require.NoError(t, second.Close())
	require.Eventually(t, func() bool {
		sessions := 0
		_ = srv.hub.Query(context.Background(), func(m *call.Manager) {
			sessions = len(m.Presence().Connections("bob"))
		})
		return sessions == 1
	}, 2*time.Second, 10*time.Millisecond)

	send(t, a, dto.EventAddParticipant, dto.AddParticipantRequest{RoomID: "r1", Invitee: "bob"})
	next(t, a, dto.EventParticipantInvited, nil)
	next(t, first, dto.EventIncomingCall, nil)
}

func TestHandshakeWithoutIdentityIsRejected(t *testing.T) {
	srv := newTestServer(t, DefaultClientOptions())
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRoomsView(t *testing.T) {
	srv := newTestServer(t, DefaultClientOptions())
	a := srv.dial(t, "alice")

	rooms, err := srv.handler.Rooms(context.Background())
	require.NoError(t, err)
	require.Empty(t, rooms)

	send(t, a, dto.EventCreateRoom, dto.CreateRoomRequest{RoomID: "r1", IsGroup: true})
	next(t, a, dto.EventRoomCreated, nil)

	rooms, err = srv.handler.Rooms(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	require.Equal(t, "r1", rooms[0].RoomID)
	require.Equal(t, "alice", rooms[0].Speaker)
	require.Equal(t, 1, rooms[0].ParticipantCount)
}

func TestQueryAfterHubStopped(t *testing.T) {
	log := logging.Discard()
	hub := NewHub(call.NewManager(log, nil, nil), log)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	hub.Run(ctx)

	err := hub.Query(context.Background(), func(*call.Manager) {})
	require.ErrorIs(t, err, ErrHubStopped)
	require.False(t, hub.Register(&WSClient{id: "x"}))
}

func TestCheckOrigin(t *testing.T) {
	request := func(origin string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/signal", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}

	anyOrigin := checkOrigin(nil)
	require.True(t, anyOrigin(request("https://evil.example")))

	wildcard := checkOrigin([]string{"*"})
	require.True(t, wildcard(request("https://evil.example")))

	restricted := checkOrigin([]string{"https://app.example"})
	require.True(t, restricted(request("https://app.example")))
	require.True(t, restricted(request("")))
	require.False(t, restricted(request("https://evil.example")))
}
