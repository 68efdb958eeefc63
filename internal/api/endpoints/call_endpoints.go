package endpoints

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"signaling-server/internal/api/middleware"
	"signaling-server/internal/call"
	"signaling-server/internal/dto"
	"signaling-server/internal/service/auth"
)

type CallEndpoints interface {
	Signal(http.ResponseWriter, *http.Request) error
	Calls(http.ResponseWriter, *http.Request) error
	Call(http.ResponseWriter, *http.Request) error
}

type Authenticator interface {
	Authenticate(r *http.Request) (auth.Identity, error)
}

// SignalingHandler is implemented by websocket.Handler.
type SignalingHandler interface {
	Connect(w http.ResponseWriter, r *http.Request, identity call.Identity)
	Rooms(ctx context.Context) ([]dto.RoomSummary, error)
	Room(ctx context.Context, roomID string) (dto.RoomSnapshot, bool, error)
}

type CallPaths struct {
	CallPrefix string
}

type callEndpoints struct {
	auth    Authenticator
	handler SignalingHandler
	paths   CallPaths
	log     *slog.Logger
}

func NewCallEndpoints(authenticator Authenticator, handler SignalingHandler, prefix string, log *slog.Logger) CallEndpoints {
	return NewCallEndpointsWithPaths(authenticator, handler, CallPaths{
		CallPrefix: strings.TrimRight(prefix, "/") + "/calls/",
	}, log)
}

func NewCallEndpointsWithPaths(authenticator Authenticator, handler SignalingHandler, paths CallPaths, log *slog.Logger) CallEndpoints {
	return &callEndpoints{
		auth:    authenticator,
		handler: handler,
		paths:   paths,
		log:     log,
	}
}

// Signal authenticates the handshake before upgrading, so a bad token is a
// plain 401 and never becomes a connection.
func (h *callEndpoints) Signal(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleSignal,
	})
}

func (h *callEndpoints) handleSignal(w http.ResponseWriter, r *http.Request) error {
	identity, err := h.auth.Authenticate(r)
	if err != nil {
		return h.authError(err)
	}

	h.handler.Connect(w, r, call.Identity{
		UserID:      identity.UserID,
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
	})
	return nil
}

func (h *callEndpoints) Calls(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleListCalls,
	})
}

func (h *callEndpoints) handleListCalls(w http.ResponseWriter, r *http.Request) error {
	rooms, err := h.handler.Rooms(r.Context())
	if err != nil {
		return h.hubError(err)
	}
	h.log.Info("calls listed", "requester", h.requester(r), "rooms", len(rooms))
	return WriteJSON(w, http.StatusOK, rooms)
}

func (h *callEndpoints) Call(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleGetCall,
	})
}

func (h *callEndpoints) handleGetCall(w http.ResponseWriter, r *http.Request) error {
	roomID, err := h.extractFromPath(r.URL.Path, h.paths.CallPrefix)
	if err != nil {
		return err
	}

	room, found, err := h.handler.Room(r.Context(), roomID)
	if err != nil {
		return h.hubError(err)
	}
	h.log.Info("call viewed", "requester", h.requester(r), "room", roomID, "found", found)
	if !found {
		return &HTTPError{
			StatusCode: http.StatusNotFound,
			Message:    "Call not found",
			ErrorLog:   fmt.Errorf("call %s not found", roomID),
		}
	}
	return WriteJSON(w, http.StatusOK, room)
}

// requester is the identity stored by the JWT middleware, empty when the
// route is mounted without it.
func (h *callEndpoints) requester(r *http.Request) string {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		return ""
	}
	return identity.UserID
}

func (h *callEndpoints) extractFromPath(path, prefix string) (string, error) {
	id := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if id == "" || strings.Contains(id, "/") {
		return "", &HTTPError{
			StatusCode: http.StatusNotFound,
			Message:    "Call not found",
			ErrorLog:   fmt.Errorf("unexpected call path %q", path),
		}
	}
	return id, nil
}

func (h *callEndpoints) authError(err error) error {
	var authErr *auth.Error
	if errors.As(err, &authErr) {
		var logErr error = authErr
		if authErr.Err != nil {
			logErr = fmt.Errorf("%s: %w", authErr.Message, authErr.Err)
		}
		return &HTTPError{StatusCode: http.StatusUnauthorized, Message: "Unauthorized", ErrorLog: logErr}
	}
	return &HTTPError{
		StatusCode: http.StatusInternalServerError,
		Message:    "Internal server error",
		ErrorLog:   fmt.Errorf("authenticate handshake: %w", err),
	}
}

func (h *callEndpoints) hubError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &HTTPError{StatusCode: http.StatusServiceUnavailable, Message: "Request cancelled", ErrorLog: err}
	}
	return &HTTPError{
		StatusCode: http.StatusServiceUnavailable,
		Message:    "Signaling hub unavailable",
		ErrorLog:   fmt.Errorf("query hub: %w", err),
	}
}
