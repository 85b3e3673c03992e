package live

import (
	"encoding/json"
	"fmt"

	"mesob/internal/models"
)

// Client-to-server message types. Server-to-client event names live in
// the orders package next to the code that emits them.
const (
	MsgJoin         = "join"
	MsgUpdateStatus = "update_status"
	MsgUpdateError  = "update_error"
)

// Envelope is the tagged frame every socket message travels in. A
// message that does not match a known variant shape is rejected before
// processing.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// JoinPayload identifies a connection and implies its topic set.
type JoinPayload struct {
	Role     models.UserRole `json:"role"`
	Identity string          `json:"identity"`
}

// UpdateStatusPayload asks for one station's transition on one order.
type UpdateStatusPayload struct {
	OrderID   uint                      `json:"orderId"`
	Station   models.PreparationStation `json:"station"`
	NewStatus models.OrderStatus        `json:"newStatus"`
}

// ErrorPayload is sent back to the originating connection only.
type ErrorPayload struct {
	Message string `json:"message"`
}

func encodeEnvelope(msgType string, payload interface{}) ([]byte, error) {
	env := Envelope{Type: msgType}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
		}
		env.Payload = raw
	}
	return json.Marshal(env)
}
