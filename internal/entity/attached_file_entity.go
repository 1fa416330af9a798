package entity

import (
	"time"

	"github.com/google/uuid"
)

// AttachedFile is a user upload bound to a chat session. ProcessedText and
// IsProcessed are filled asynchronously by the extraction worker; until then
// the raw base64 bytes are inlined into outgoing requests instead.
type AttachedFile struct {
	Id               uuid.UUID `json:"id"`
	UserId           uuid.UUID `json:"user_id"`
	Name             string    `json:"name"`
	Size             int64     `json:"size"`
	MimeType         string    `json:"type"`
	URL              string    `json:"url,omitempty"`
	Base64           string    `json:"base64,omitempty"`
	ProcessedText    string    `json:"processed_text,omitempty"`
	IsProcessed      bool      `json:"is_processed"`
	ProcessingError  string    `json:"processing_error,omitempty"`
	ProcessingMethod string    `json:"processing_method,omitempty"`
	Annotations      []any     `json:"annotations,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
