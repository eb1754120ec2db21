// Package relay defines the JSON frame envelope exchanged with clients.
// Every frame is a single UTF-8 JSON object carrying a mandatory "type"
// discriminant plus type-specific fields.
package relay

import "encoding/json"

// Inbound frame types.
const (
	TypeLogin          = "login"
	TypeUpdateLocation = "updateLocation"
	TypeChatRequest    = "chatRequest"
	TypeChatAccept     = "chatAccept"
	TypePrivateMessage = "privateMessage"
)

// Outbound frame types.
const (
	TypeInit      = "init"
	TypeUserMoved = "userMoved"
	TypeUserLeft  = "userLeft"
	TypeError     = "error"
)

// inboundFrame is the superset of all fields a client may send. Pointer
// fields distinguish absent values from zero values so the router can tell a
// missing coordinate from latitude 0.
type inboundFrame struct {
	Type        string   `json:"type"`
	Name        *string  `json:"name,omitempty"`
	Lat         *float64 `json:"lat,omitempty"`
	Lon         *float64 `json:"lon,omitempty"`
	RecipientID string   `json:"recipientId,omitempty"`
	Message     *string  `json:"message,omitempty"`
}

// decodeInbound parses a raw frame. Unknown fields are ignored; only a JSON
// syntax or type mismatch counts as malformed.
func decodeInbound(payload []byte) (inboundFrame, error) {
	var frame inboundFrame
	if err := json.Unmarshal(payload, &frame); err != nil {
		return inboundFrame{}, err
	}
	return frame, nil
}

// initFrame is sent once to a participant immediately after its session is
// registered. Users holds the full current presence snapshot; clients filter
// out their own entry.
type initFrame struct {
	Type   string          `json:"type"`
	UserID string          `json:"userId"`
	Users  []PresenceEntry `json:"users"`
}

// userMovedFrame is broadcast to every session except the mover. Name is null
// until the participant has logged in a display name.
type userMovedFrame struct {
	Type   string  `json:"type"`
	UserID string  `json:"userId"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Name   *string `json:"name"`
}

// userLeftFrame is broadcast to the remaining sessions after a teardown.
type userLeftFrame struct {
	Type   string  `json:"type"`
	UserID string  `json:"userId"`
	Name   *string `json:"name"`
}

// directedFrame carries chatRequest, chatAccept, and privateMessage events to
// exactly one recipient. Message is set only for privateMessage.
type directedFrame struct {
	Type       string `json:"type"`
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
	Message    string `json:"message,omitempty"`
}

// errorFrame is sent back to the originating session when an inbound frame
// cannot be decoded. The session stays open.
type errorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
