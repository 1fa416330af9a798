package events

import "time"

// Event is the contract for everything published on the bus.
type Event interface {
	// EventType returns the unique code for this event (e.g. "TOAST_SHOWN").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Event type codes.
const (
	TypeToastShown          = "TOAST_SHOWN"
	TypeTurnCompleted       = "TURN_COMPLETED"
	TypeAttachmentProcessed = "ATTACHMENT_PROCESSED"
	TypeSystemBroadcast     = "SYSTEM_BROADCAST"
)

// BaseEvent is the generic implementation used by publishers that do not
// need a dedicated type.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewToastEvent wraps a toast notification destined for one user.
func NewToastEvent(userId, level, title, message string) BaseEvent {
	return BaseEvent{
		Type: TypeToastShown,
		Data: map[string]interface{}{
			"user_id": userId,
			"level":   level,
			"title":   title,
			"message": message,
		},
		OccurredAt: time.Now(),
	}
}

// NewTurnCompletedEvent records that an assistant turn finished for a session.
func NewTurnCompletedEvent(userId, sessionId, model string) BaseEvent {
	return BaseEvent{
		Type: TypeTurnCompleted,
		Data: map[string]interface{}{
			"user_id":    userId,
			"session_id": sessionId,
			"model":      model,
		},
		OccurredAt: time.Now(),
	}
}

// NewAttachmentProcessedEvent records the outcome of a file extraction job.
func NewAttachmentProcessedEvent(userId, fileId, fileName string, success bool, errMsg string) BaseEvent {
	return BaseEvent{
		Type: TypeAttachmentProcessed,
		Data: map[string]interface{}{
			"user_id":   userId,
			"file_id":   fileId,
			"file_name": fileName,
			"success":   success,
			"error":     errMsg,
		},
		OccurredAt: time.Now(),
	}
}
