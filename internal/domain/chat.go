package domain

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleHuman Role = "human"
	RoleAI    Role = "ai"
)

// Turn is one message in a conversation. Immutable once appended.
type Turn struct {
	Role    Role   `json:"type"`
	Content string `json:"content"`
}

// Greeting is the synthetic assistant turn every new session starts with.
const Greeting = "Hello, I am a bot. How can I help you?"

// InitSessionRequest is the request to create a session from a web page
type InitSessionRequest struct {
	URL string `json:"url" binding:"required"`
}

// InitSessionResponse is the response to a successful session creation
type InitSessionResponse struct {
	SessionID string `json:"session_id"`
}

// ChatRequest is the request to send a chat message
type ChatRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Message   string `json:"message" binding:"required"`
}

// ChatResponse is the response from a chat message
type ChatResponse struct {
	Response string `json:"response"`
}
