package call

import (
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
)

// Registry holds the active rooms. A room is present exactly while it has
// at least one participant. byIdentity indexes the rooms each user is in so
// a disconnect only visits that user's rooms.
type Registry struct {
	rooms      map[string]*Room
	byIdentity map[string]map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:      make(map[string]*Room),
		byIdentity: make(map[string]map[string]struct{}),
	}
}

func (g *Registry) Get(roomID string) (*Room, bool) {
	room, ok := g.rooms[roomID]
	return room, ok
}

func (g *Registry) Len() int {
	return len(g.rooms)
}

// Create registers a room whose only participant, and speaker, is creator.
// The registry is left untouched when the id is taken.
func (g *Registry) Create(roomID string, isGroup bool, createdAt time.Time, creator *Participant) (*Room, error) {
	if _, exists := g.rooms[roomID]; exists {
		return nil, ErrRoomAlreadyExists
	}

	room := newRoom(roomID, creator.Identity, isGroup, createdAt)
	room.Speaker = creator.Identity
	g.rooms[roomID] = room
	g.AddParticipant(room, creator)

	roomsActive.Set(float64(len(g.rooms)))
	return room, nil
}

func (g *Registry) AddParticipant(room *Room, p *Participant) {
	if room.Has(p.Identity) {
		return
	}
	room.add(p)
	g.index(p.Identity, room.ID)
	participantsActive.Inc()
}

// RemoveParticipant reports whether identity was removed and whether that
// emptied, and therefore deleted, the room.
func (g *Registry) RemoveParticipant(room *Room, identity string) (p *Participant, removed bool, deleted bool) {
	p, removed = room.remove(identity)
	if !removed {
		return nil, false, false
	}
	g.unindex(identity, room.ID)
	participantsActive.Dec()

	if room.Len() == 0 {
		delete(g.rooms, room.ID)
		roomsActive.Set(float64(len(g.rooms)))
		return p, true, true
	}
	return p, true, false
}

// RoomsOf returns the ids of the rooms identity participates in, sorted.
func (g *Registry) RoomsOf(identity string) []string {
	ids := lo.Keys(g.byIdentity[identity])
	slices.Sort(ids)
	return ids
}

// Rooms returns the active rooms oldest first.
func (g *Registry) Rooms() []*Room {
	rooms := lo.Values(g.rooms)
	slices.SortFunc(rooms, func(a, b *Room) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return rooms
}

func (g *Registry) index(identity, roomID string) {
	set, ok := g.byIdentity[identity]
	if !ok {
		set = make(map[string]struct{})
		g.byIdentity[identity] = set
	}
	set[roomID] = struct{}{}
}

func (g *Registry) unindex(identity, roomID string) {
	set, ok := g.byIdentity[identity]
	if !ok {
		return
	}
	delete(set, roomID)
	if len(set) == 0 {
		delete(g.byIdentity, identity)
	}
}
