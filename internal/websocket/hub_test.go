package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"ai-docchat-be/internal/model"
	"ai-docchat-be/internal/pkg/logger"

	"github.com/google/uuid"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(nil, logger.NewNopLogger())
	go hub.Run()
	return hub
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		hub.mu.RLock()
		got := len(hub.clients)
		hub.mu.RUnlock()
		if got == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("hub never reached %d registered users", want)
}

func TestSendFrameEnvelope(t *testing.T) {
	hub := newTestHub(t)
	userID := uuid.New()
	client := &Client{Hub: hub, UserID: userID, Send: make(chan []byte, 4)}
	hub.register <- client
	waitForClients(t, hub, 1)

	hub.SendFrame(userID, FrameChatState, map[string]interface{}{"state": "thinking"})

	select {
	case raw := <-client.Send:
		var frame struct {
			Type string                 `json:"type"`
			Data map[string]interface{} `json:"data"`
		}
		if err := json.Unmarshal(raw, &frame); err != nil {
			t.Fatalf("frame is not JSON: %v", err)
		}
		if frame.Type != FrameChatState || frame.Data["state"] != "thinking" {
			t.Errorf("frame = %+v", frame)
		}
	case <-time.After(time.Second):
		t.Fatalf("no frame delivered")
	}
}

func TestBroadcastFullBuffersDoesNotBlock(t *testing.T) {
	hub := newTestHub(t)

	// Two clients, both with full send buffers, so every write hits the
	// drop path in one Broadcast pass.
	for i := 0; i < 2; i++ {
		client := &Client{Hub: hub, UserID: uuid.New(), Send: make(chan []byte, 1)}
		client.Send <- []byte("stuck")
		hub.register <- client
	}
	waitForClients(t, hub, 2)

	done := make(chan struct{})
	go func() {
		hub.Broadcast(model.NewNotification(uuid.Nil, model.ToastInfo, "title", "message"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Broadcast blocked with full client buffers")
	}
	waitForClients(t, hub, 0)
}

func TestDeliverFullBufferUnregistersClient(t *testing.T) {
	hub := newTestHub(t)
	userID := uuid.New()
	client := &Client{Hub: hub, UserID: userID, Send: make(chan []byte, 1)}
	client.Send <- []byte("stuck")
	hub.register <- client
	waitForClients(t, hub, 1)

	done := make(chan struct{})
	go func() {
		hub.Send(userID, model.NewNotification(userID, model.ToastInfo, "title", "message"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Send blocked with a full client buffer")
	}
	waitForClients(t, hub, 0)
}
