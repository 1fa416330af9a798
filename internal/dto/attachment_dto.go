package dto

import (
	"time"

	"github.com/google/uuid"
)

type AttachedFileDTO struct {
	Id               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Size             int64     `json:"size"`
	Type             string    `json:"type"`
	IsProcessed      bool      `json:"is_processed"`
	ProcessingError  string    `json:"processing_error,omitempty"`
	ProcessingMethod string    `json:"processing_method,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

type UploadAttachmentResponse struct {
	File AttachedFileDTO `json:"file"`
}

type ListAttachmentsResponse struct {
	Files []AttachedFileDTO `json:"files"`
}

type DeleteAttachmentRequest struct {
	FileId uuid.UUID `json:"file_id" validate:"required"`
}

type ClearAttachmentsResponse struct {
	Removed int `json:"removed"`
}

// PublishExtractAttachmentMessage is the extraction job payload on the bus.
type PublishExtractAttachmentMessage struct {
	FileId uuid.UUID `json:"file_id"`
	UserId uuid.UUID `json:"user_id"`
}
