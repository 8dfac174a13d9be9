package service

import (
	"context"
	"errors"

	"bpmn-interview-be/internal/dto"
	"bpmn-interview-be/internal/entity"
	"bpmn-interview-be/internal/repository/scope"
	"bpmn-interview-be/internal/repository/specification"
	"bpmn-interview-be/internal/repository/unitofwork"
)

var (
	ErrGenerationNotFound = errors.New("generation not found")
	ErrStorageDisabled    = errors.New("generation history is not configured")
)

type IGenerationService interface {
	List(ctx context.Context, req *dto.ListGenerationsRequest) ([]*dto.GenerationSummaryResponse, error)
	Show(ctx context.Context, id uint) (*dto.GenerationDetailResponse, error)
	Stats(ctx context.Context) (*dto.GenerationStatsResponse, error)
}

type generationService struct {
	uowFactory unitofwork.RepositoryFactory
}

// NewGenerationService serves the history table. A nil factory makes every
// call fail with ErrStorageDisabled.
func NewGenerationService(uowFactory unitofwork.RepositoryFactory) IGenerationService {
	return &generationService{uowFactory: uowFactory}
}

func (s *generationService) List(ctx context.Context, req *dto.ListGenerationsRequest) ([]*dto.GenerationSummaryResponse, error) {
	if s.uowFactory == nil {
		return nil, ErrStorageDisabled
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{
		specification.OmitXML{},
		specification.Scoped(scope.OrderByCreatedDesc),
		specification.Scoped(scope.Limit(req.Limit)),
	}
	if req.ProcessType != "" {
		specs = append(specs, specification.ByProcessType{ProcessType: req.ProcessType})
	}

	generations, err := uow.BpmnGenerationRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.GenerationSummaryResponse, 0, len(generations))
	for _, g := range generations {
		summary := toGenerationSummary(g)
		result = append(result, &summary)
	}
	return result, nil
}

func (s *generationService) Show(ctx context.Context, id uint) (*dto.GenerationDetailResponse, error) {
	if s.uowFactory == nil {
		return nil, ErrStorageDisabled
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)

	g, err := uow.BpmnGenerationRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGenerationNotFound
	}

	history := make([]dto.ChatEntryResponse, len(g.ChatHistory))
	for i, e := range g.ChatHistory {
		history[i] = dto.ChatEntryResponse{Role: e.Role, Content: e.Content, Title: e.Title}
	}
	return &dto.GenerationDetailResponse{
		GenerationSummaryResponse: toGenerationSummary(g),
		ChatHistory:               history,
		InterviewSummary:          g.InterviewSummary,
		BpmnXml:                   g.BpmnXml,
	}, nil
}

func (s *generationService) Stats(ctx context.Context) (*dto.GenerationStatsResponse, error) {
	if s.uowFactory == nil {
		return nil, ErrStorageDisabled
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)

	stats, err := uow.BpmnGenerationRepository().Stats(ctx)
	if err != nil {
		return nil, err
	}

	byType := make([]dto.ProcessTypeCountResponse, len(stats.ByProcessType))
	for i, c := range stats.ByProcessType {
		byType[i] = dto.ProcessTypeCountResponse{ProcessType: c.ProcessType, Count: c.Count}
	}
	return &dto.GenerationStatsResponse{
		Total:              stats.Total,
		UniqueProcessTypes: stats.UniqueProcessTypes,
		AvgDurationSeconds: stats.AvgDurationSeconds,
		FirstGeneration:    stats.FirstGeneration,
		LastGeneration:     stats.LastGeneration,
		ByProcessType:      byType,
	}, nil
}

func toGenerationSummary(g *entity.BpmnGeneration) dto.GenerationSummaryResponse {
	return dto.GenerationSummaryResponse{
		Id:                        g.Id,
		CreatedAt:                 g.CreatedAt,
		ProcessType:               g.ProcessType,
		AiModel:                   g.AiModel,
		GenerationDurationSeconds: g.GenerationDurationSeconds,
	}
}
