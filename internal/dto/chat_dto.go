package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionResponse struct {
	Id uuid.UUID `json:"id"`
}

type GetAllSessionsResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type ChatCitationDTO struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content,omitempty"`
	Type    string `json:"type"`
}

type ChatMessageDTO struct {
	Id        uuid.UUID         `json:"id"`
	Role      string            `json:"role"`
	Chat      string            `json:"chat"`
	CreatedAt time.Time         `json:"created_at"`
	Model     string            `json:"model,omitempty"`
	Cost      float64           `json:"cost,omitempty"`
	Citations []ChatCitationDTO `json:"citations,omitempty"`
	Files     []AttachedFileDTO `json:"files,omitempty"`
}

type GetChatHistoryResponse struct {
	ChatSessionId uuid.UUID        `json:"chat_session_id"`
	State         string           `json:"state"`
	Messages      []ChatMessageDTO `json:"messages"`
}

type SendChatRequest struct {
	ChatSessionId uuid.UUID `json:"chat_session_id" validate:"required"`
	Chat          string    `json:"chat"`
	FileIds       []string  `json:"file_ids,omitempty" validate:"max=10"`
}

type SendChatResponse struct {
	ChatSessionId uuid.UUID         `json:"chat_session_id"`
	Mode          string            `json:"mode"`
	Sent          *ChatMessageDTO   `json:"sent"`
	Reply         *ChatMessageDTO   `json:"reply"`
	Citations     []ChatCitationDTO `json:"citations,omitempty"`
}

type DeleteSessionRequest struct {
	ChatSessionId uuid.UUID `json:"chat_session_id"`
}

type UpdateFlagsRequest struct {
	ChatSessionId   uuid.UUID `json:"chat_session_id" validate:"required"`
	ImageGeneration *bool     `json:"image_generation,omitempty"`
	DocumentChat    *bool     `json:"document_chat,omitempty"`
}

type GetFlagsResponse struct {
	ImageGeneration bool `json:"image_generation"`
	DocumentChat    bool `json:"document_chat"`
	QuotaExhausted  bool `json:"quota_exhausted"`
	APIKeyMissing   bool `json:"api_key_missing"`
}

type GetModelsResponse struct {
	Loaded       bool            `json:"loaded"`
	DefaultModel string          `json:"default_model"`
	Models       []ModelEntryDTO `json:"models"`
}

type ModelEntryDTO struct {
	Model    string `json:"model"`
	Provider string `json:"provider"`
	Label    string `json:"label"`
}
