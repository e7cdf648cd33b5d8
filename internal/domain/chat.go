package domain

// Role author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	default:
		return false
	}
}

// ChatMessage single conversation turn, shaped like the completion service expects it.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatState observable chat session state.
// Typing is never part of the transcript.
type ChatState struct {
	SessionID  string        `json:"session_id"`
	Transcript []ChatMessage `json:"transcript"`
	Typing     bool          `json:"typing"`
	// Indicator is the text shown while Typing is set.
	Indicator string `json:"indicator,omitempty"`
}
