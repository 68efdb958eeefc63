package call

import (
	"encoding/json"
	"errors"
	"fmt"

	"signaling-server/internal/dto"

	"github.com/pion/sdp/v3"
	"github.com/pion/webrtc/v4"
)

var errNotSignal = errors.New("not a signaling event")

// Relay forwards an offer, answer or ICE candidate to the primary connection
// of req.To. Payloads are checked for shape but forwarded byte for byte.
// Nothing is reported to the sender when the target is offline.
func (m *Manager) Relay(conn Conn, kind dto.EventType, req dto.SignalRequest) error {
	if err := ValidateSignalPayload(kind, req.Payload); err != nil {
		relayedTotal.WithLabelValues(string(kind), "invalid").Inc()
		return NewError(CodeInvalidMessage, err.Error(), err)
	}

	from := conn.Identity().UserID
	target, online := m.presence.Get(req.To)
	if !online {
		relayedTotal.WithLabelValues(string(kind), "offline").Inc()
		m.log.Debug("relay target offline", "kind", kind, "room", req.RoomID, "from", from, "to", req.To)
		return nil
	}

	delivered := target.Send(m.envelope(kind, dto.SignalRelay{
		RoomID:       req.RoomID,
		FromIdentity: from,
		Payload:      req.Payload,
	}))
	if !delivered {
		relayedTotal.WithLabelValues(string(kind), "dropped").Inc()
		return nil
	}
	relayedTotal.WithLabelValues(string(kind), "delivered").Inc()
	return nil
}

// ValidateSignalPayload checks that payload is a session description of the
// matching type, or an ICE candidate.
func ValidateSignalPayload(kind dto.EventType, payload json.RawMessage) error {
	switch kind {
	case dto.EventOffer, dto.EventAnswer:
		var desc webrtc.SessionDescription
		if err := json.Unmarshal(payload, &desc); err != nil {
			return fmt.Errorf("%s payload is not a session description: %w", kind, err)
		}
		if !sdpTypeMatches(kind, desc.Type) {
			return fmt.Errorf("%s payload has sdp type %q", kind, desc.Type.String())
		}
		var parsed sdp.SessionDescription
		if err := parsed.Unmarshal([]byte(desc.SDP)); err != nil {
			return fmt.Errorf("%s payload carries invalid sdp: %w", kind, err)
		}
		return nil
	case dto.EventICECandidate:
		var candidate webrtc.ICECandidateInit
		if err := json.Unmarshal(payload, &candidate); err != nil {
			return fmt.Errorf("ice-candidate payload is not a candidate: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", errNotSignal, kind)
	}
}

func sdpTypeMatches(kind dto.EventType, t webrtc.SDPType) bool {
	if kind == dto.EventOffer {
		return t == webrtc.SDPTypeOffer
	}
	return t == webrtc.SDPTypeAnswer || t == webrtc.SDPTypePranswer
}
