package service

import (
	"context"
	"fmt"
	"strings"

	"ai-docchat-be/internal/model"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/pkg/events"
	pktNats "ai-docchat-be/pkg/nats"

	"github.com/google/uuid"
)

// NotificationDelivery defines how to push real-time updates.
// Typically implemented by the WebSocket Hub.
type NotificationDelivery interface {
	Send(userID uuid.UUID, notification model.Notification)
	Broadcast(notification model.Notification)
}

// NotificationService turns bus events into toast notifications on the
// user's open sockets. Notifications are push-only; nothing is persisted.
type NotificationService struct {
	subscriber *pktNats.Subscriber
	delivery   NotificationDelivery
	logger     logger.ILogger
}

func NewNotificationService(sub *pktNats.Subscriber, delivery NotificationDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	err := s.subscriber.Subscribe("events.>", "notif-service-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to events.>", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	typeCode := strings.TrimPrefix(event.EventType(), "events.")
	payload := event.Payload()

	s.logger.Info("NotificationService", fmt.Sprintf("Processing event: %s", typeCode), map[string]interface{}{"type": typeCode})

	switch typeCode {
	case events.TypeToastShown:
		userID, ok := payloadUserID(payload)
		if !ok {
			s.logger.Warn("NotificationService", "Toast event without user_id", nil)
			return nil
		}
		level, _ := payload["level"].(string)
		if level == "" {
			level = model.ToastInfo
		}
		title, _ := payload["title"].(string)
		message, _ := payload["message"].(string)

		if s.delivery != nil {
			s.delivery.Send(userID, model.NewNotification(userID, level, title, message))
		}

	case events.TypeAttachmentProcessed:
		userID, ok := payloadUserID(payload)
		if !ok {
			return nil
		}
		fileName, _ := payload["file_name"].(string)
		success, _ := payload["success"].(bool)

		notif := model.NewNotification(userID, model.ToastSuccess, "File processed", fmt.Sprintf("%s is ready to use in chat", fileName))
		if !success {
			errMsg, _ := payload["error"].(string)
			notif = model.NewNotification(userID, model.ToastError, "File processing failed", errMsg)
		}
		if fileID, ok := payload["file_id"].(string); ok {
			notif.Metadata = map[string]interface{}{"file_id": fileID}
		}
		if s.delivery != nil {
			s.delivery.Send(userID, notif)
		}

	case events.TypeSystemBroadcast:
		title, _ := payload["title"].(string)
		message, _ := payload["message"].(string)
		if s.delivery != nil {
			s.delivery.Broadcast(model.NewNotification(uuid.Nil, model.ToastInfo, title, message))
		}

	case events.TypeTurnCompleted:
		// Turn progress already reaches the client over the chat frames;
		// nothing to toast here.

	default:
		s.logger.Info("NotificationService", fmt.Sprintf("No notification mapping for event '%s'", typeCode), nil)
	}

	return nil
}

func payloadUserID(payload map[string]interface{}) (uuid.UUID, bool) {
	uidStr, ok := payload["user_id"].(string)
	if !ok {
		return uuid.Nil, false
	}
	uid, err := uuid.Parse(uidStr)
	if err != nil {
		return uuid.Nil, false
	}
	return uid, true
}
