package models

import "github.com/google/uuid"

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleModel:
		return "Gemini"
	default:
		return string(r)
	}
}

// Message is a single record in the conversation. The ID is stable for the
// record's lifetime and unique within a conversation. User messages are
// immutable after creation; model messages may be rewritten while Streaming
// is true and are frozen once it clears.
type Message struct {
	ID        string
	Role      Role
	Text      string
	Streaming bool
}

// NewUserMessage creates an immutable user record.
func NewUserMessage(text string) *Message {
	return &Message{
		ID:   uuid.NewString(),
		Role: RoleUser,
		Text: text,
	}
}

// NewModelMessage creates a terminal (fully written) model record.
func NewModelMessage(text string) *Message {
	return &Message{
		ID:   uuid.NewString(),
		Role: RoleModel,
		Text: text,
	}
}

// NewPlaceholder creates an empty model record that will receive streamed
// fragments.
func NewPlaceholder() *Message {
	return &Message{
		ID:        uuid.NewString(),
		Role:      RoleModel,
		Streaming: true,
	}
}
