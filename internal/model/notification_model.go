package model

import (
	"time"

	"github.com/google/uuid"
)

// Toast levels.
const (
	ToastSuccess = "success"
	ToastError   = "error"
	ToastInfo    = "info"
)

// Notification is the toast payload pushed to connected clients.
type Notification struct {
	ID        uuid.UUID              `json:"id"`
	UserID    uuid.UUID              `json:"user_id"`
	Level     string                 `json:"level"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// NewNotification builds a toast for a single user.
func NewNotification(userID uuid.UUID, level, title, message string) Notification {
	return Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Level:     level,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now(),
	}
}
