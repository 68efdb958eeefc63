package websocket

import (
	"encoding/json"
	"testing"

	"signaling-server/internal/dto"

	"github.com/stretchr/testify/require"
)

func TestLookupCoversEveryInboundEvent(t *testing.T) {
	inbound := []dto.EventType{
		dto.EventCreateRoom, dto.EventJoinRoom, dto.EventLeaveRoom,
		dto.EventAddParticipant, dto.EventSetSpeaker,
		dto.EventToggleMute, dto.EventToggleVideo,
		dto.EventOffer, dto.EventAnswer, dto.EventICECandidate,
	}
	for _, kind := range inbound {
		_, ok := lookup(kind)
		require.True(t, ok, "no route for %s", kind)
	}

	for _, kind := range []dto.EventType{dto.EventRoomCreated, dto.EventError, "teleport"} {
		_, ok := lookup(kind)
		require.False(t, ok, "unexpected route for %s", kind)
	}
}

func TestRelayKeepsEventKind(t *testing.T) {
	srv := newTestServer(t, DefaultClientOptions())
	a := srv.dial(t, "alice")
	b := srv.dial(t, "bob")

	// An offer description sent as an answer is rejected under the answer's name.
	offer := json.RawMessage(`{"type":"offer","sdp":"v=0\r\no=- 1 2 IN IP4 127.0.0.1\r\ns=-\r\nt=0 0\r\n"}`)
	send(t, a, dto.EventAnswer, dto.SignalRequest{RoomID: "r1", To: "bob", Payload: offer})
	var failure dto.ErrorEvent
	next(t, a, dto.EventError, &failure)
	require.Equal(t, "answer", failure.Operation)
	require.Equal(t, "invalid_message", failure.Code)

	candidate := json.RawMessage(`{"candidate":"candidate:1 1 udp 2122260223 10.0.0.1 54321 typ host","sdpMid":"0","sdpMLineIndex":0}`)
	send(t, a, dto.EventICECandidate, dto.SignalRequest{RoomID: "r1", To: "bob", Payload: candidate})
	var relayed dto.SignalRelay
	next(t, b, dto.EventICECandidate, &relayed)
	require.Equal(t, "alice", relayed.FromIdentity)
	require.JSONEq(t, string(candidate), string(relayed.Payload))
}
