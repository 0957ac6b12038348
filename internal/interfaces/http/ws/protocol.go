package ws

import (
	"encoding/json"

	"merovian.backend/internal/domain/entities"
)

// Frame types exchanged on the realtime socket.
const (
	FrameSubscribe   = "subscribe"
	FrameUnsubscribe = "unsubscribe"
	FrameSubscribed  = "subscribed"
	FrameChange      = "change"
	FrameError       = "error"
)

// ClientFrame is sent by the client.
type ClientFrame struct {
	Type   string              `json:"type"`
	Ref    string              `json:"ref"`
	Table  string              `json:"table,omitempty"`
	Event  entities.ChangeType `json:"event,omitempty"`
	Filter string              `json:"filter,omitempty"`
}

// ServerFrame is sent by the server. Change carries the event for
// FrameChange, Error the reason for FrameError.
type ServerFrame struct {
	Type   string                `json:"type"`
	Ref    string                `json:"ref,omitempty"`
	Change *entities.ChangeEvent `json:"change,omitempty"`
	Error  string                `json:"error,omitempty"`
}

func encodeFrame(f ServerFrame) ([]byte, error) {
	return json.Marshal(f)
}
