package models

// Role identifies who authored a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	// RoleSystem is only used on the wire; transcripts never contain it.
	RoleSystem Role = "system"
)

// Valid reports whether r is a role the completion API accepts
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Message is one entry of a conversation. It is a value: revisions of a
// message are new values, never edits of a shared one.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// UserMessage builds a user-authored message
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage builds an assistant-authored message
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// WithContent returns a copy of m carrying content
func (m Message) WithContent(content string) Message {
	m.Content = content
	return m
}
