package store

import (
	"ai-docchat-be/internal/entity"
	"ai-docchat-be/pkg/chat"
)

// Runtime is the live in-memory state of one chat session: its metadata, the
// turn orchestrator driving it, and the per-session feature toggles.
type Runtime struct {
	Session      *entity.ChatSession
	Orchestrator *chat.Orchestrator
	Flags        *chat.MemoryFlags
}

func (r *Runtime) ID() string {
	return r.Session.Id.String()
}
