package contract

import (
	"context"

	"bpmn-interview-be/internal/entity"
	"bpmn-interview-be/internal/repository/specification"
)

type BpmnGenerationRepository interface {
	Create(ctx context.Context, generation *entity.BpmnGeneration) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.BpmnGeneration, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.BpmnGeneration, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	Stats(ctx context.Context) (*entity.GenerationStats, error)
}
