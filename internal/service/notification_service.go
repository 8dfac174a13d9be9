package service

import (
	"context"

	"bpmn-interview-be/internal/pkg/logger"
	"bpmn-interview-be/pkg/events"
	pktNats "bpmn-interview-be/pkg/nats"
)

// ProgressEvent is the websocket message kind for forwarded domain events.
const ProgressEvent = "event"

// NotificationService forwards domain events from the bus to the websocket
// clients of the session they belong to.
type NotificationService struct {
	subscriber *pktNats.Subscriber
	delivery   ProgressNotifier
	logger     logger.ILogger
}

func NewNotificationService(sub *pktNats.Subscriber, delivery ProgressNotifier, log logger.ILogger) *NotificationService {
	return &NotificationService{
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus. Without a subscriber it is a no-op.
func (s *NotificationService) Start() {
	if s.subscriber == nil {
		return
	}
	err := s.subscriber.Subscribe(events.SubjectPrefix+">", "interview-notifier", s.HandleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err.Error()})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to events.>", nil)
}

// HandleEvent delivers one event. Events without a session are dropped.
func (s *NotificationService) HandleEvent(ctx context.Context, event events.Event) error {
	sessionID := events.SessionID(event)
	if sessionID == "" {
		s.logger.Debug("NotificationService", "Event without session, skipped", map[string]interface{}{"type": event.EventType()})
		return nil
	}

	s.delivery.Notify(sessionID, ProgressEvent, map[string]interface{}{
		"type":        event.EventType(),
		"payload":     event.Payload(),
		"occurred_at": event.Timestamp(),
	})
	return nil
}
