package call

import (
	"time"

	"signaling-server/internal/dto"

	"github.com/samber/lo"
)

// Identity is the authenticated user behind a connection.
type Identity struct {
	UserID      string
	Email       string
	DisplayName string
}

// Conn is a live, authenticated connection. Send must not block; it reports
// whether the frame was queued for delivery.
type Conn interface {
	ID() string
	Identity() Identity
	Send(dto.Envelope) bool
}

type Participant struct {
	Identity    string
	DisplayName string
	Conn        Conn
	Muted       bool
	VideoOff    bool
	JoinedAt    time.Time
}

func (p *Participant) Snapshot() dto.ParticipantSnapshot {
	return dto.ParticipantSnapshot{
		Identity:    p.Identity,
		DisplayName: p.DisplayName,
		Muted:       p.Muted,
		VideoOff:    p.VideoOff,
		JoinedAt:    p.JoinedAt.UTC().Format(time.RFC3339),
	}
}

// Room keeps participants in join order; the order decides speaker
// reassignment.
type Room struct {
	ID        string
	Creator   string
	IsGroup   bool
	Speaker   string
	CreatedAt time.Time

	participants map[string]*Participant
	order        []string
}

func newRoom(id, creator string, isGroup bool, createdAt time.Time) *Room {
	return &Room{
		ID:           id,
		Creator:      creator,
		IsGroup:      isGroup,
		CreatedAt:    createdAt,
		participants: make(map[string]*Participant),
	}
}

func (r *Room) Len() int {
	return len(r.order)
}

func (r *Room) Has(identity string) bool {
	_, ok := r.participants[identity]
	return ok
}

func (r *Room) Participant(identity string) (*Participant, bool) {
	p, ok := r.participants[identity]
	return p, ok
}

func (r *Room) Participants() []*Participant {
	return lo.Map(r.order, func(identity string, _ int) *Participant {
		return r.participants[identity]
	})
}

func (r *Room) Identities() []string {
	return append([]string(nil), r.order...)
}

func (r *Room) add(p *Participant) {
	if _, exists := r.participants[p.Identity]; exists {
		return
	}
	r.participants[p.Identity] = p
	r.order = append(r.order, p.Identity)
}

func (r *Room) remove(identity string) (*Participant, bool) {
	p, ok := r.participants[identity]
	if !ok {
		return nil, false
	}
	delete(r.participants, identity)
	r.order = lo.Without(r.order, identity)
	return p, true
}

// earliestJoined is the speaker reassignment rule.
func (r *Room) earliestJoined() (string, bool) {
	if len(r.order) == 0 {
		return "", false
	}
	return r.order[0], true
}

// broadcast queues env on every participant's connection except the one
// named by except, and returns how many frames were queued.
func (r *Room) broadcast(env dto.Envelope, except string) int {
	delivered := 0
	for _, p := range r.Participants() {
		if p.Identity == except || p.Conn == nil {
			continue
		}
		if p.Conn.Send(env) {
			delivered++
		}
	}
	return delivered
}

func (r *Room) snapshots() []dto.ParticipantSnapshot {
	return lo.Map(r.Participants(), func(p *Participant, _ int) dto.ParticipantSnapshot {
		return p.Snapshot()
	})
}

func (r *Room) Summary() dto.RoomSummary {
	return dto.RoomSummary{
		RoomID:           r.ID,
		IsGroup:          r.IsGroup,
		Creator:          r.Creator,
		Speaker:          r.Speaker,
		ParticipantCount: r.Len(),
		CreatedAt:        r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (r *Room) Snapshot() dto.RoomSnapshot {
	return dto.RoomSnapshot{
		RoomSummary:  r.Summary(),
		Participants: r.snapshots(),
	}
}
