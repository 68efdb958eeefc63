package websocket

import (
	"context"
	"log/slog"
	"time"

	"signaling-server/internal/call"
)

// Hub owns the call manager. Registration, disconnects, inbound frames and
// read-only queries are all applied from the Run goroutine in arrival
// order, so room state never needs a lock.
type Hub struct {
	manager    *call.Manager
	clients    map[string]*WSClient
	register   chan *WSClient
	unregister chan *WSClient
	inbound    chan inboundMessage
	queries    chan query
	stopped    chan struct{}
	log        *slog.Logger
	now        func() time.Time
}

func NewHub(manager *call.Manager, log *slog.Logger) *Hub {
	return &Hub{
		manager:    manager,
		clients:    make(map[string]*WSClient),
		register:   make(chan *WSClient),
		unregister: make(chan *WSClient),
		inbound:    make(chan inboundMessage),
		queries:    make(chan query),
		stopped:    make(chan struct{}),
		log:        log,
		now:        time.Now,
	}
}

// Run processes events until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)

	for {
		select {
		case <-ctx.Done():
			for _, client := range h.clients {
				client.close()
			}
			h.log.Info("hub stopped", "clients", len(h.clients))
			return

		case client := <-h.register:
			h.clients[client.ID()] = client
			h.manager.Connect(client)
			incConnections()

		case client := <-h.unregister:
			if _, ok := h.clients[client.ID()]; ok {
				delete(h.clients, client.ID())
				h.manager.Disconnect(client)
				decConnections()
			}

		case msg := <-h.inbound:
			if _, ok := h.clients[msg.client.ID()]; !ok {
				continue
			}
			h.dispatch(msg.client, msg.raw)

		case q := <-h.queries:
			q(h.manager)
		}
	}
}

// Register hands a freshly upgraded client to the hub. It returns false
// once the hub has stopped.
func (h *Hub) Register(client *WSClient) bool {
	select {
	case h.register <- client:
		return true
	case <-h.stopped:
		return false
	}
}

func (h *Hub) Unregister(client *WSClient) {
	select {
	case h.unregister <- client:
	case <-h.stopped:
	}
}

func (h *Hub) deliver(client *WSClient, raw []byte) bool {
	select {
	case h.inbound <- inboundMessage{client: client, raw: raw}:
		return true
	case <-h.stopped:
		return false
	}
}

// Query runs fn on the hub goroutine and waits for it to return.
func (h *Hub) Query(ctx context.Context, fn func(*call.Manager)) error {
	done := make(chan struct{})
	q := func(m *call.Manager) {
		defer close(done)
		fn(m)
	}

	select {
	case h.queries <- q:
	case <-h.stopped:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	<-done
	return nil
}

// Stopped is closed when Run returns.
func (h *Hub) Stopped() <-chan struct{} {
	return h.stopped
}
