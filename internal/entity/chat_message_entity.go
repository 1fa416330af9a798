package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
	ChatMessageRoleSystem    = "system"
)

// TokenUsage mirrors the usage block returned by the chat backend.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// MessageMetadata is only present on assistant messages.
type MessageMetadata struct {
	Model       string      `json:"model,omitempty"`
	Provider    string      `json:"provider,omitempty"`
	Cost        float64     `json:"cost,omitempty"`
	Usage       *TokenUsage `json:"usage,omitempty"`
	Citations   []Citation  `json:"citations,omitempty"`
	Annotations []any       `json:"annotations,omitempty"`
}

// ChatMessage is one finalized transcript entry. Messages are immutable once
// appended; the in-progress streaming buffer never becomes a ChatMessage until
// the turn completes.
type ChatMessage struct {
	Id            uuid.UUID        `json:"id"`
	Role          string           `json:"role"`
	Content       string           `json:"content"`
	ChatSessionId uuid.UUID        `json:"chat_session_id"`
	CreatedAt     time.Time        `json:"created_at"`
	AttachedFiles []*AttachedFile  `json:"attached_files,omitempty"`
	Metadata      *MessageMetadata `json:"metadata,omitempty"`
}
