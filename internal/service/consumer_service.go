package service

import (
	"context"
	"encoding/json"

	"bpmn-interview-be/internal/dto"
	"bpmn-interview-be/internal/entity"
	"bpmn-interview-be/internal/pkg/logger"
	"bpmn-interview-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		uowFactory: uowFactory,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage stores one generation. Storage is best effort: every
// message is acked, failures are only logged.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var payload dto.SaveGenerationMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("CONSUMER", "Failed to unmarshal generation message", map[string]interface{}{"error": err.Error()})
		return
	}

	if cs.uowFactory == nil {
		cs.logger.Warn("CONSUMER", "Database not configured, generation not stored", map[string]interface{}{
			"session_id": payload.SessionId,
		})
		return
	}

	generation := toGenerationEntity(&payload)

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		cs.logger.Error("CONSUMER", "Failed to begin transaction", map[string]interface{}{"error": err.Error()})
		return
	}
	defer uow.Rollback()

	if err := uow.BpmnGenerationRepository().Create(ctx, generation); err != nil {
		cs.logger.Error("CONSUMER", "Failed to store generation", map[string]interface{}{
			"session_id": payload.SessionId,
			"error":      err.Error(),
		})
		return
	}

	if err := uow.Commit(); err != nil {
		cs.logger.Error("CONSUMER", "Failed to commit generation", map[string]interface{}{"error": err.Error()})
		return
	}

	cs.logger.Info("CONSUMER", "Generation stored", map[string]interface{}{
		"id":           generation.Id,
		"session_id":   payload.SessionId,
		"process_type": payload.ProcessType,
	})
}

func toGenerationEntity(p *dto.SaveGenerationMessage) *entity.BpmnGeneration {
	history := make([]entity.ChatEntry, len(p.ChatHistory))
	for i, e := range p.ChatHistory {
		history[i] = entity.ChatEntry{Role: e.Role, Content: e.Content, Title: e.Title}
	}
	return &entity.BpmnGeneration{
		ProcessType:               p.ProcessType,
		AiModel:                   p.AiModel,
		ChatHistory:               history,
		InterviewSummary:          p.InterviewSummary,
		BpmnXml:                   p.BpmnXml,
		GenerationDurationSeconds: p.GenerationDurationSeconds,
	}
}
