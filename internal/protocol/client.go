// Package protocol defines the JSON messages exchanged over the
// persistent quiz socket. Client messages arrive as a flat object
// discriminated by "ty"; server messages are either rid-correlated
// responses or broadcast events.
package protocol

import (
	"encoding/json"

	"github.com/google/uuid"

	"quizler/internal/types"
)

// Client message types.
const (
	ClientInitialize = "Initialize"
	ClientConnect    = "Connect"
	ClientJoin       = "Join"
	ClientReady      = "Ready"
	ClientHostAction = "HostAction"
	ClientAnswer     = "Answer"
	ClientKick       = "Kick"
)

// ClientMessage is a request from the client, discriminated by Ty.
// Only the fields relevant to the message type are populated.
type ClientMessage struct {
	Ty string `json:"ty"`
	// RID correlates the response with this request.
	RID uint32 `json:"rid,omitempty"`

	UUID   uuid.UUID        `json:"uuid,omitempty"`   // Initialize
	Token  string           `json:"token,omitempty"`  // Connect
	Name   string           `json:"name,omitempty"`   // Join
	Action types.HostAction `json:"action,omitempty"` // HostAction
	Answer *types.Answer    `json:"answer,omitempty"` // Answer
	ID     types.SessionID  `json:"id,omitempty"`     // Kick
}

// DecodeClientMessage parses a text frame into a client message,
// mapping any parse failure to the MalformedMessage wire error.
func DecodeClientMessage(data []byte) (*ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, types.ErrMalformedMessage
	}
	if msg.Ty == "" {
		return nil, types.ErrMalformedMessage
	}
	return &msg, nil
}
