package websocket

import (
	"log/slog"
	"sync"
	"time"

	"signaling-server/internal/call"
	"signaling-server/internal/dto"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// WSClient is one authenticated connection. It satisfies call.Conn; the hub
// pushes frames through Send and the write pump drains them.
type WSClient struct {
	Conn     *websocket.Conn
	Message  chan dto.Envelope
	id       string
	identity call.Identity
	opts     ClientOptions
	log      *slog.Logger
	done     chan struct{} // closed once the client is shutting down
	once     sync.Once
}

func newClient(conn *websocket.Conn, identity call.Identity, opts ClientOptions, log *slog.Logger) *WSClient {
	id := uuid.NewString()
	return &WSClient{
		Conn:     conn,
		Message:  make(chan dto.Envelope, opts.SendBuffer),
		id:       id,
		identity: identity,
		opts:     opts,
		log:      log.With("conn", id, "identity", identity.UserID),
		done:     make(chan struct{}),
	}
}

func (cl *WSClient) ID() string {
	return cl.id
}

func (cl *WSClient) Identity() call.Identity {
	return cl.identity
}

// Send queues env without blocking. A client that cannot keep up is closed
// and later swept by its read pump.
func (cl *WSClient) Send(env dto.Envelope) bool {
	select {
	case <-cl.done:
		return false
	default:
	}

	select {
	case cl.Message <- env:
		return true
	default:
		wsSlowConsumers.Inc()
		cl.log.Warn("send buffer full, closing connection", "type", env.Type)
		cl.close()
		return false
	}
}

func (cl *WSClient) close() {
	cl.once.Do(func() {
		close(cl.done)
	})
}

func (cl *WSClient) keepAlive() {
	ticker := time.NewTicker(cl.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-cl.done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(cl.opts.WriteTimeout)
			if err := cl.Conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				cl.log.Debug("ping failed", "error", err)
				cl.close()
				return
			}
		}
	}
}

func (cl *WSClient) writeMessage() {
	defer cl.Conn.Close()

	for {
		select {
		case <-cl.done:
			deadline := time.Now().Add(cl.opts.WriteTimeout)
			_ = cl.Conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			return
		case env := <-cl.Message:
			_ = cl.Conn.SetWriteDeadline(time.Now().Add(cl.opts.WriteTimeout))
			if err := cl.Conn.WriteJSON(env); err != nil {
				cl.log.Warn("write failed", "type", env.Type, "error", err)
				cl.close()
				return
			}
			addDelivered(1)
		}
	}
}

func (cl *WSClient) readMessage(hub *Hub) {
	defer func() {
		if r := recover(); r != nil {
			cl.log.Error("recovered from panic in read loop", "panic", r)
		}
		cl.close()
		hub.Unregister(cl)
	}()

	cl.Conn.SetReadLimit(cl.opts.ReadLimit)
	_ = cl.Conn.SetReadDeadline(time.Now().Add(cl.opts.PongWait))
	cl.Conn.SetPongHandler(func(string) error {
		return cl.Conn.SetReadDeadline(time.Now().Add(cl.opts.PongWait))
	})

	for {
		_, message, err := cl.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived) {
				cl.log.Warn("read failed", "error", err)
			}
			return
		}

		if !hub.deliver(cl, message) {
			return
		}
	}
}
