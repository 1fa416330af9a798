package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"ai-docchat-be/internal/model"
	"ai-docchat-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Envelope types pushed over the socket.
const (
	FrameNotification = "notification"
	FrameChatState    = "chat_state"
	FrameStreamDelta  = "stream_delta"
	FrameReveal       = "reveal"
	FrameCitations    = "citations"
	FrameModelUsed    = "model_used"
)

type Hub struct {
	// UserID -> connected clients (multi-device).
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Redis connection for cross-instance fan-out. Optional.
	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.UserID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.UserID]) == 0 {
					delete(h.clients, client.UserID)
					h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"user_id": client.UserID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// SendFrame pushes an arbitrary typed frame to one user's connections.
func (h *Hub) SendFrame(userID uuid.UUID, frameType string, payload interface{}) {
	data, err := json.Marshal(map[string]interface{}{
		"type": frameType,
		"data": payload,
	})
	if err != nil {
		h.logger.Warn("Hub", "Failed to marshal frame", map[string]interface{}{"type": frameType, "error": err.Error()})
		return
	}
	h.deliver(userID, data)
}

// Send pushes a toast notification to one user.
func (h *Hub) Send(userID uuid.UUID, notification model.Notification) {
	h.SendFrame(userID, FrameNotification, notification)
}

// Broadcast sends a notification to every connected client.
func (h *Hub) Broadcast(notification model.Notification) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": FrameNotification,
		"data": notification,
	})

	h.push(h.allClients(), data)

	if h.rdb != nil {
		payload := map[string]interface{}{
			"target_user_id": "*",
			"message":        data,
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), "cluster_events", jsonPayload)
	}
}

func (h *Hub) deliver(userID uuid.UUID, data []byte) {
	h.push(h.clientsFor(userID), data)

	// Other instances may hold connections for the same user.
	if h.rdb != nil {
		payload := map[string]interface{}{
			"target_user_id": userID.String(),
			"message":        data,
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), "cluster_events", jsonPayload)
	}
}

// allClients snapshots every connected client.
func (h *Hub) allClients() []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []*Client
	for _, clients := range h.clients {
		out = append(out, clients...)
	}
	return out
}

// clientsFor snapshots one user's connections.
func (h *Hub) clientsFor(userID uuid.UUID) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	clients := h.clients[userID]
	out := make([]*Client, len(clients))
	copy(out, clients)
	return out
}

// push writes data to each client, unregistering connections whose buffers
// are full. The lock is never held while sending, so a slow client cannot
// stall Run. Send channels are closed only by the unregister path in Run.
func (h *Hub) push(clients []*Client, data []byte) {
	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Client Send buffer full, dropping connection", map[string]interface{}{"user_id": client.UserID})
			h.unregister <- client
		}
	}
}

func (h *Hub) subscribeToRedis() {
	// Every instance subscribes to cluster_events; on arrival it forwards the
	// message to the target user's local connections if any.
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, "cluster_events")
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload struct {
			TargetUserID string          `json:"target_user_id"`
			Message      json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		if payload.TargetUserID == "*" {
			h.push(h.allClients(), payload.Message)
			continue
		}

		uid, err := uuid.Parse(payload.TargetUserID)
		if err != nil {
			continue
		}

		h.push(h.clientsFor(uid), payload.Message)
	}
}
