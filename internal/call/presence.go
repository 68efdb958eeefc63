package call

import "github.com/samber/lo"

// Presence maps an identity to its live connections, oldest first. The
// primary connection, the one signaling and invitations are routed to, is
// the most recently registered. Closing it falls back to the next most
// recent one rather than leaving the user unreachable.
type Presence struct {
	conns map[string][]Conn
}

func NewPresence() *Presence {
	return &Presence{conns: make(map[string][]Conn)}
}

// Put registers conn as identity's primary connection.
func (p *Presence) Put(identity string, conn Conn) {
	existing := lo.Reject(p.conns[identity], func(c Conn, _ int) bool {
		return c.ID() == conn.ID()
	})
	p.conns[identity] = append(existing, conn)
}

func (p *Presence) Get(identity string) (Conn, bool) {
	conns := p.conns[identity]
	if len(conns) == 0 {
		return nil, false
	}
	return conns[len(conns)-1], true
}

// Remove drops conn from identity's set and returns how many connections
// remain for that identity.
func (p *Presence) Remove(identity string, conn Conn) int {
	remaining := lo.Reject(p.conns[identity], func(c Conn, _ int) bool {
		return c.ID() == conn.ID()
	})
	if len(remaining) == 0 {
		delete(p.conns, identity)
		return 0
	}
	p.conns[identity] = remaining
	return len(remaining)
}

func (p *Presence) Connections(identity string) []Conn {
	return append([]Conn(nil), p.conns[identity]...)
}

// Len is the number of identities with at least one live connection.
func (p *Presence) Len() int {
	return len(p.conns)
}
