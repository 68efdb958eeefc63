package call

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func participant(identity string) *Participant {
	return &Participant{Identity: identity, Conn: newConn(identity+"-conn", identity), JoinedAt: time.Now()}
}

func TestRegistryExistsWhileNonEmpty(t *testing.T) {
	g := NewRegistry()
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	room, err := g.Create("r1", true, at, participant("alice"))
	require.NoError(t, err)
	require.Equal(t, "alice", room.Speaker)
	g.AddParticipant(room, participant("bob"))
	g.AddParticipant(room, participant("bob"))
	require.Equal(t, []string{"alice", "bob"}, room.Identities())
	require.Equal(t, []string{"r1"}, g.RoomsOf("bob"))

	_, removed, deleted := g.RemoveParticipant(room, "alice")
	require.True(t, removed)
	require.False(t, deleted)

	_, removed, _ = g.RemoveParticipant(room, "alice")
	require.False(t, removed)

	_, removed, deleted = g.RemoveParticipant(room, "bob")
	require.True(t, removed)
	require.True(t, deleted)
	_, ok := g.Get("r1")
	require.False(t, ok)
	require.Empty(t, g.RoomsOf("bob"))
}

func TestRegistryRejectsDuplicateID(t *testing.T) {
	g := NewRegistry()
	at := time.Now()
	_, err := g.Create("r1", false, at, participant("alice"))
	require.NoError(t, err)

	_, err = g.Create("r1", true, at, participant("bob"))
	require.ErrorIs(t, err, ErrRoomAlreadyExists)

	room, _ := g.Get("r1")
	require.Equal(t, []string{"alice"}, room.Identities())
	require.Empty(t, g.RoomsOf("bob"))
}

func TestRegistryRoomsOrderedByCreation(t *testing.T) {
	g := NewRegistry()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, _ = g.Create("b", false, base.Add(time.Minute), participant("alice"))
	_, _ = g.Create("a", false, base.Add(time.Minute), participant("bob"))
	_, _ = g.Create("c", false, base, participant("carol"))

	ids := []string{}
	for _, room := range g.Rooms() {
		ids = append(ids, room.ID)
	}
	require.Equal(t, []string{"c", "a", "b"}, ids)
	require.Equal(t, 3, g.Len())
}

func TestRoomEarliestJoinedFollowsJoinOrder(t *testing.T) {
	room := newRoom("r1", "alice", true, time.Now())
	room.add(participant("carol"))
	room.add(participant("alice"))
	room.add(participant("bob"))

	next, ok := room.earliestJoined()
	require.True(t, ok)
	require.Equal(t, "carol", next)

	room.remove("carol")
	next, _ = room.earliestJoined()
	require.Equal(t, "alice", next)
}
