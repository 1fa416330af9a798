package service

import (
	"context"
	"time"

	"ai-docchat-be/internal/model"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/pkg/chat"
	"ai-docchat-be/pkg/events"
	pktNats "ai-docchat-be/pkg/nats"

	"github.com/google/uuid"
)

// natsNotifier implements chat.Notifier for one user by publishing toast
// events on the bus; the notification service fans them out to sockets.
type natsNotifier struct {
	userId uuid.UUID
	pub    *pktNats.Publisher
	logger logger.ILogger
}

func NewToastNotifier(userId uuid.UUID, pub *pktNats.Publisher, log logger.ILogger) chat.Notifier {
	return &natsNotifier{
		userId: userId,
		pub:    pub,
		logger: log,
	}
}

func (n *natsNotifier) Success(title, message string) {
	n.publish(model.ToastSuccess, title, message)
}

func (n *natsNotifier) Error(title, message string) {
	n.publish(model.ToastError, title, message)
}

func (n *natsNotifier) Info(title, message string) {
	n.publish(model.ToastInfo, title, message)
}

func (n *natsNotifier) publish(level, title, message string) {
	if n.pub == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	evt := events.NewToastEvent(n.userId.String(), level, title, message)
	if err := n.pub.Publish(ctx, evt); err != nil {
		n.logger.Warn("ToastNotifier", "Failed to publish toast event", map[string]interface{}{
			"user_id": n.userId.String(),
			"error":   err.Error(),
		})
	}
}
