package service

import (
	"context"
	"time"

	"bpmn-interview-be/internal/pkg/logger"
	"bpmn-interview-be/pkg/bpmn"
	"bpmn-interview-be/pkg/events"
	"bpmn-interview-be/pkg/interview"
	pktNats "bpmn-interview-be/pkg/nats"
)

// EventPublisher emits interview lifecycle events. Publishing never fails
// the calling operation.
type EventPublisher interface {
	PublishInterviewStarted(ctx context.Context, s *interview.Session)
	PublishInterviewCompleted(ctx context.Context, s *interview.Session)
	PublishBPMNGenerated(ctx context.Context, s *interview.Session, res *bpmn.Result)
	PublishGenerationFailed(ctx context.Context, s *interview.Session, err error)
}

// NatsEventPublisher implements EventPublisher on JetStream. A nil
// publisher turns every call into a no-op.
type NatsEventPublisher struct {
	publisher *pktNats.Publisher
	logger    logger.ILogger
}

func NewNatsEventPublisher(publisher *pktNats.Publisher, log logger.ILogger) *NatsEventPublisher {
	return &NatsEventPublisher{publisher: publisher, logger: log}
}

func (p *NatsEventPublisher) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if p.publisher == nil {
		return
	}

	evt := events.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
	if err := p.publisher.Publish(ctx, evt); err != nil {
		p.logger.Error("EVENTS", "Failed to publish "+eventType+" event", map[string]interface{}{"error": err.Error()})
	}
}

func (p *NatsEventPublisher) PublishInterviewStarted(ctx context.Context, s *interview.Session) {
	p.publish(ctx, events.InterviewStarted, map[string]interface{}{
		"session_id":   s.ID,
		"process_type": s.ProcessType,
	})
}

func (p *NatsEventPublisher) PublishInterviewCompleted(ctx context.Context, s *interview.Session) {
	p.publish(ctx, events.InterviewCompleted, map[string]interface{}{
		"session_id":       s.ID,
		"process_type":     s.ProcessType,
		"topics_completed": len(s.TopicsCompleted),
	})
}

func (p *NatsEventPublisher) PublishBPMNGenerated(ctx context.Context, s *interview.Session, res *bpmn.Result) {
	p.publish(ctx, events.BPMNGenerated, map[string]interface{}{
		"session_id":       s.ID,
		"process_type":     s.ProcessType,
		"repair_attempts":  res.Attempts,
		"remaining_issues": len(res.Issues),
		"layout_applied":   res.LayoutApplied,
		"duration_seconds": res.Duration.Seconds(),
	})
}

func (p *NatsEventPublisher) PublishGenerationFailed(ctx context.Context, s *interview.Session, err error) {
	p.publish(ctx, events.GenerationFailed, map[string]interface{}{
		"session_id":   s.ID,
		"process_type": s.ProcessType,
		"error":        err.Error(),
	})
}
