package model

import (
	"time"

	"gorm.io/datatypes"
)

type BpmnGeneration struct {
	Id                        uint           `gorm:"primaryKey;autoIncrement"`
	CreatedAt                 time.Time      `gorm:"type:timestamptz;not null;default:now();index:idx_bpmn_generations_created_at,sort:desc"`
	ProcessType               string         `gorm:"type:varchar(255);index:idx_bpmn_generations_process_type"`
	AiModel                   string         `gorm:"type:varchar(100)"`
	ChatHistory               datatypes.JSON `gorm:"type:jsonb"`
	InterviewSummary          string         `gorm:"type:text"`
	BpmnXml                   string         `gorm:"type:text"`
	GenerationDurationSeconds float64        `gorm:"type:double precision"`
}

func (BpmnGeneration) TableName() string {
	return "bpmn_generations"
}
