package mapper

import (
	"encoding/json"

	"bpmn-interview-be/internal/entity"
	"bpmn-interview-be/internal/model"

	"gorm.io/datatypes"
)

type BpmnGenerationMapper struct{}

func NewBpmnGenerationMapper() *BpmnGenerationMapper {
	return &BpmnGenerationMapper{}
}

func (m *BpmnGenerationMapper) ToEntity(g *model.BpmnGeneration) *entity.BpmnGeneration {
	if g == nil {
		return nil
	}

	history := []entity.ChatEntry{}
	if len(g.ChatHistory) > 0 {
		// a malformed column still yields the rest of the record
		_ = json.Unmarshal(g.ChatHistory, &history)
	}

	return &entity.BpmnGeneration{
		Id:                        g.Id,
		CreatedAt:                 g.CreatedAt,
		ProcessType:               g.ProcessType,
		AiModel:                   g.AiModel,
		ChatHistory:               history,
		InterviewSummary:          g.InterviewSummary,
		BpmnXml:                   g.BpmnXml,
		GenerationDurationSeconds: g.GenerationDurationSeconds,
	}
}

func (m *BpmnGenerationMapper) ToModel(g *entity.BpmnGeneration) (*model.BpmnGeneration, error) {
	if g == nil {
		return nil, nil
	}

	history := g.ChatHistory
	if history == nil {
		history = []entity.ChatEntry{}
	}
	raw, err := json.Marshal(history)
	if err != nil {
		return nil, err
	}

	return &model.BpmnGeneration{
		Id:                        g.Id,
		CreatedAt:                 g.CreatedAt,
		ProcessType:               g.ProcessType,
		AiModel:                   g.AiModel,
		ChatHistory:               datatypes.JSON(raw),
		InterviewSummary:          g.InterviewSummary,
		BpmnXml:                   g.BpmnXml,
		GenerationDurationSeconds: g.GenerationDurationSeconds,
	}, nil
}

func (m *BpmnGenerationMapper) ToEntities(generations []*model.BpmnGeneration) []*entity.BpmnGeneration {
	entities := make([]*entity.BpmnGeneration, len(generations))
	for i, g := range generations {
		entities[i] = m.ToEntity(g)
	}
	return entities
}
