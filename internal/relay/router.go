// Package relay dispatches decoded inbound frames: presence updates are
// broadcast, chat frames are routed to exactly one recipient.
package relay

// errInvalidFormat mirrors the error frame text clients already handle.
const errInvalidFormat = "Invalid message format"

// route handles one inbound frame. Each frame type is processed
// independently; there is no cross-frame state machine. A malformed frame
// earns the sender a single error reply and never terminates the session.
func (h *Hub) route(sender *Client, payload []byte) {
	frame, err := decodeInbound(payload)
	if err != nil {
		h.log.Debug().Err(err).Str("id", sender.id).Msg("discarding malformed frame")
		h.sendError(sender)
		return
	}

	switch frame.Type {
	case TypeLogin:
		// A login without a usable name is silently ignored.
		if frame.Name != nil {
			h.presence.SetName(sender.id, *frame.Name)
		}

	case TypeUpdateLocation:
		h.handleUpdateLocation(sender, frame)

	case TypeChatRequest:
		h.relayDirected(sender, TypeChatRequest, frame.RecipientID, "")

	case TypeChatAccept:
		h.relayDirected(sender, TypeChatAccept, frame.RecipientID, "")

	case TypePrivateMessage:
		if frame.Message == nil {
			h.sendError(sender)
			return
		}
		h.relayDirected(sender, TypePrivateMessage, frame.RecipientID, *frame.Message)

	default:
		h.log.Debug().Str("type", frame.Type).Str("id", sender.id).Msg("unknown frame type")
	}
}

// handleUpdateLocation stores the reported position and fans out userMoved to
// everyone but the mover. Coordinates are stored as received; the relay does
// not judge geographic plausibility.
func (h *Hub) handleUpdateLocation(sender *Client, frame inboundFrame) {
	if frame.Lat == nil || frame.Lon == nil {
		h.sendError(sender)
		return
	}

	h.presence.SetLocation(sender.id, *frame.Lat, *frame.Lon)
	if frame.Name != nil {
		h.presence.SetName(sender.id, *frame.Name)
	}

	var name *string
	if n, ok := h.presence.Name(sender.id); ok {
		name = &n
	}
	h.broadcastFrame(userMovedFrame{
		Type:   TypeUserMoved,
		UserID: sender.id,
		Lat:    *frame.Lat,
		Lon:    *frame.Lon,
		Name:   name,
	}, sender.id)
}

// relayDirected delivers a chat frame to exactly one recipient. An empty or
// unknown recipient id is a silent no-op: the recipient may have legitimately
// disconnected between the client's last snapshot and now.
func (h *Hub) relayDirected(sender *Client, frameType, recipientID, message string) {
	if recipientID == "" {
		return
	}
	recipient, ok := h.registry.Find(recipientID)
	if !ok {
		h.log.Debug().Str("type", frameType).Str("recipient", recipientID).Msg("dropping frame for unknown recipient")
		return
	}

	h.sendFrame(recipient, directedFrame{
		Type:       frameType,
		SenderID:   sender.id,
		SenderName: h.senderLabel(sender.id),
		Message:    message,
	})
}

// senderLabel resolves a display name for directed frames, falling back to a
// deterministic label derived from the id so routing never blocks on a
// missing name.
func (h *Hub) senderLabel(id string) string {
	if name, ok := h.presence.Name(id); ok {
		return name
	}
	short := id
	if len(short) > 4 {
		short = short[:4]
	}
	return "User " + short
}

// sendError replies to the originating session only.
func (h *Hub) sendError(sender *Client) {
	h.sendFrame(sender, errorFrame{Type: TypeError, Message: errInvalidFormat})
}
