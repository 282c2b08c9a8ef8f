package server

import (
	"encoding/json"
	"time"
)

// MessageType identifies a WebSocket message
type MessageType string

// Client → Server
const (
	MessageTypeDraw   MessageType = "draw"
	MessageTypeToggle MessageType = "toggle"
	MessageTypeReset  MessageType = "reset"
)

// Server → Client
const (
	MessageTypeSnapshot MessageType = "snapshot"
	MessageTypeError    MessageType = "error"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// ErrorData is the payload of an error message
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
