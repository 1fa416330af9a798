package websocket

import (
	"ai-docchat-be/internal/entity"
	"ai-docchat-be/pkg/chat"

	"github.com/google/uuid"
)

// TurnBroadcaster adapts the hub to the chat service's TurnDelivery port,
// mapping each orchestrator callback to a typed frame.
type TurnBroadcaster struct {
	hub *Hub
}

func NewTurnBroadcaster(hub *Hub) *TurnBroadcaster {
	return &TurnBroadcaster{hub: hub}
}

func (b *TurnBroadcaster) State(userID uuid.UUID, sessionId string, state string) {
	b.hub.SendFrame(userID, FrameChatState, map[string]interface{}{
		"session_id": sessionId,
		"state":      state,
	})
}

func (b *TurnBroadcaster) StreamDelta(userID uuid.UUID, sessionId string, buffer string) {
	b.hub.SendFrame(userID, FrameStreamDelta, map[string]interface{}{
		"session_id": sessionId,
		"buffer":     buffer,
	})
}

func (b *TurnBroadcaster) Reveal(userID uuid.UUID, sessionId string, update chat.RevealUpdate) {
	b.hub.SendFrame(userID, FrameReveal, map[string]interface{}{
		"session_id": sessionId,
		"visible":    update.Visible,
		"progress":   update.Progress,
	})
}

func (b *TurnBroadcaster) Citations(userID uuid.UUID, sessionId string, citations []entity.Citation) {
	b.hub.SendFrame(userID, FrameCitations, map[string]interface{}{
		"session_id": sessionId,
		"citations":  citations,
	})
}

func (b *TurnBroadcaster) ModelUsed(userID uuid.UUID, sessionId string, model string) {
	b.hub.SendFrame(userID, FrameModelUsed, map[string]interface{}{
		"session_id": sessionId,
		"model":      model,
	})
}
