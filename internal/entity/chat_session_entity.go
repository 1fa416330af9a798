package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatSession groups one transcript. Sessions live in the in-memory store
// only; nothing survives a process restart.
type ChatSession struct {
	Id        uuid.UUID  `json:"id"`
	UserId    uuid.UUID  `json:"user_id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}
