package service

import (
	"context"
	"encoding/json"

	"bpmn-interview-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// IPublisherService queues finished generations for the history table.
type IPublisherService interface {
	PublishGeneration(ctx context.Context, msg *dto.SaveGenerationMessage) error
}

type publisherService struct {
	topicName string
	publisher message.Publisher
}

func NewPublisherService(topicName string, publisher message.Publisher) IPublisherService {
	return &publisherService{
		topicName: topicName,
		publisher: publisher,
	}
}

func (ps *publisherService) PublishGeneration(ctx context.Context, payload *dto.SaveGenerationMessage) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set("session_id", payload.SessionId)

	return ps.publisher.Publish(ps.topicName, msg)
}
