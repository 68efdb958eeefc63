package websocket

import (
	"encoding/json"
	"fmt"
	"runtime/debug"

	"signaling-server/internal/call"
	"signaling-server/internal/dto"
)

type route func(m *call.Manager, conn call.Conn, kind dto.EventType, data json.RawMessage) error

var routes = map[dto.EventType]route{
	dto.EventCreateRoom:     decoded((*call.Manager).CreateRoom),
	dto.EventJoinRoom:       decoded((*call.Manager).JoinRoom),
	dto.EventLeaveRoom:      decoded((*call.Manager).LeaveRoom),
	dto.EventAddParticipant: decoded((*call.Manager).AddParticipant),
	dto.EventSetSpeaker:     decoded((*call.Manager).SetSpeaker),
	dto.EventToggleMute:     decoded((*call.Manager).ToggleMute),
	dto.EventToggleVideo:    decoded((*call.Manager).ToggleVideo),
}

// lookup sends every negotiation event through relay, the rest through
// the route table.
func lookup(kind dto.EventType) (route, bool) {
	if kind.IsSignal() {
		return relay, true
	}
	handle, ok := routes[kind]
	return handle, ok
}

func decoded[T any](op func(*call.Manager, call.Conn, T) error) route {
	return func(m *call.Manager, conn call.Conn, _ dto.EventType, data json.RawMessage) error {
		req, err := decode[T](data)
		if err != nil {
			return err
		}
		return op(m, conn, req)
	}
}

func relay(m *call.Manager, conn call.Conn, kind dto.EventType, data json.RawMessage) error {
	req, err := decode[dto.SignalRequest](data)
	if err != nil {
		return err
	}
	return m.Relay(conn, kind, req)
}

func decode[T any](data json.RawMessage) (T, error) {
	var req T
	if err := dto.Decode(data, &req); err != nil {
		return req, call.NewError(call.CodeInvalidMessage, err.Error(), err)
	}
	return req, nil
}

// dispatch decodes one inbound frame and applies it. Failures, including
// panics, are reported to the sender only.
func (h *Hub) dispatch(client *WSClient, raw []byte) {
	env, err := dto.DecodeEnvelope(raw)
	if err != nil {
		h.fail(client, string(env.Type), "invalid", call.NewError(call.CodeInvalidMessage, err.Error(), err))
		return
	}

	handle, ok := lookup(env.Type)
	if !ok {
		h.fail(client, string(env.Type), "unknown", call.NewError(call.CodeInvalidMessage, fmt.Sprintf("unknown event type %q", env.Type), nil))
		return
	}

	if err := h.invoke(handle, client, env.Type, env.Data); err != nil {
		h.fail(client, string(env.Type), string(env.Type), err)
		return
	}
	wsMessagesHandled.WithLabelValues(string(env.Type), "ok").Inc()
}

func (h *Hub) invoke(handle route, client *WSClient, kind dto.EventType, data json.RawMessage) (err error) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("handler panic", "conn", client.ID(), "panic", r, "stack", string(debug.Stack()))
			err = call.NewError(call.CodeInternal, "internal error", fmt.Errorf("panic: %v", r))
		}
	}()
	return handle(h.manager, client, kind, data)
}

// fail sends an error frame to client. metricType keeps label cardinality
// bounded for frames whose type is not a known event.
func (h *Hub) fail(client *WSClient, operation, metricType string, err error) {
	code := call.CodeOf(err)
	message := err.Error()
	if code == call.CodeInternal {
		message = "internal error"
		h.log.Error("operation failed", "conn", client.ID(), "operation", operation, "error", err)
	} else {
		h.log.Debug("operation rejected", "conn", client.ID(), "operation", operation, "code", code, "error", err)
	}

	wsMessagesHandled.WithLabelValues(metricType, string(code)).Inc()
	wsErrorsSent.WithLabelValues(string(code)).Inc()
	client.Send(dto.NewEnvelope(dto.EventError, dto.ErrorEvent{
		Operation: operation,
		Code:      string(code),
		Message:   message,
	}, h.now()))
}
