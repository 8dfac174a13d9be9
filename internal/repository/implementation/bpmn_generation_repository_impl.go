package implementation

import (
	"context"
	"errors"
	"time"

	"bpmn-interview-be/internal/entity"
	"bpmn-interview-be/internal/mapper"
	"bpmn-interview-be/internal/model"
	"bpmn-interview-be/internal/repository/contract"
	"bpmn-interview-be/internal/repository/specification"

	"gorm.io/gorm"
)

type BpmnGenerationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.BpmnGenerationMapper
}

func NewBpmnGenerationRepository(db *gorm.DB) contract.BpmnGenerationRepository {
	return &BpmnGenerationRepositoryImpl{
		db:     db,
		mapper: mapper.NewBpmnGenerationMapper(),
	}
}

func (r *BpmnGenerationRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *BpmnGenerationRepositoryImpl) Create(ctx context.Context, generation *entity.BpmnGeneration) error {
	m, err := r.mapper.ToModel(generation)
	if err != nil {
		return err
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*generation = *r.mapper.ToEntity(m)
	return nil
}

func (r *BpmnGenerationRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.BpmnGeneration, error) {
	var m model.BpmnGeneration
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *BpmnGenerationRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.BpmnGeneration, error) {
	var models []*model.BpmnGeneration
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *BpmnGenerationRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.BpmnGeneration{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *BpmnGenerationRepositoryImpl) Stats(ctx context.Context) (*entity.GenerationStats, error) {
	var totals struct {
		Total       int64
		UniqueTypes int64
		AvgDuration *float64
		FirstAt     *time.Time
		LastAt      *time.Time
	}
	err := r.db.WithContext(ctx).Model(&model.BpmnGeneration{}).
		Select(`COUNT(*) AS total,
			COUNT(DISTINCT process_type) AS unique_types,
			AVG(generation_duration_seconds) AS avg_duration,
			MIN(created_at) AS first_at,
			MAX(created_at) AS last_at`).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}

	var buckets []entity.ProcessTypeCount
	err = r.db.WithContext(ctx).Model(&model.BpmnGeneration{}).
		Select("process_type, COUNT(*) AS count").
		Group("process_type").
		Order("count DESC").
		Scan(&buckets).Error
	if err != nil {
		return nil, err
	}

	stats := &entity.GenerationStats{
		Total:              totals.Total,
		UniqueProcessTypes: totals.UniqueTypes,
		FirstGeneration:    totals.FirstAt,
		LastGeneration:     totals.LastAt,
		ByProcessType:      buckets,
	}
	if totals.AvgDuration != nil {
		stats.AvgDurationSeconds = *totals.AvgDuration
	}
	return stats, nil
}
