package websocket

import (
	"context"
	"log/slog"
	"net/http"

	"signaling-server/internal/call"
	"signaling-server/internal/dto"

	"github.com/gorilla/websocket"
	"github.com/samber/lo"
)

type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	opts     ClientOptions
	log      *slog.Logger
}

func NewHandler(hub *Hub, allowedOrigins []string, opts ClientOptions, log *slog.Logger) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
		opts: opts,
		log:  log,
	}
}

// checkOrigin accepts requests without an Origin header, which only
// non-browser clients send.
func checkOrigin(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 || lo.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || lo.Contains(allowed, origin)
	}
}

// Connect upgrades an already authenticated request and attaches the new
// connection to the hub. On upgrade failure the upgrader has already
// answered the request.
func (h *Handler) Connect(w http.ResponseWriter, r *http.Request, identity call.Identity) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "identity", identity.UserID, "error", err)
		return
	}

	cl := newClient(conn, identity, h.opts, h.log)
	if !h.hub.Register(cl) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	go cl.keepAlive()
	go cl.writeMessage()
	go cl.readMessage(h.hub)
}

func (h *Handler) Rooms(ctx context.Context) ([]dto.RoomSummary, error) {
	var rooms []dto.RoomSummary
	err := h.hub.Query(ctx, func(m *call.Manager) {
		rooms = m.Rooms()
	})
	return rooms, err
}

func (h *Handler) Room(ctx context.Context, roomID string) (dto.RoomSnapshot, bool, error) {
	var (
		room  dto.RoomSnapshot
		found bool
	)
	err := h.hub.Query(ctx, func(m *call.Manager) {
		room, found = m.Room(roomID)
	})
	return room, found, err
}

// Alive reports whether the hub is still processing events.
func (h *Handler) Alive() bool {
	select {
	case <-h.hub.Stopped():
		return false
	default:
		return true
	}
}
