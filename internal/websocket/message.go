package websocket

import (
	"encoding/json"

	"github.com/isdelr/accounts-be/internal/models"
)

// Message defines the structure for websocket messages.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}

// NewEventMessage wraps an event for delivery to clients.
func NewEventMessage(event models.Event) Message {
	return Message{Action: "event", Payload: event}
}

// NewErrorMessage returns an encoded error message.
func NewErrorMessage(text string) []byte {
	return encode(Message{Action: "error", Payload: map[string]string{"message": text}})
}

// NewPongMessage returns an encoded reply to a client ping.
func NewPongMessage() []byte {
	return encode(Message{Action: "pong"})
}

func encode(m Message) []byte {
	b, _ := json.Marshal(m)
	return b
}
