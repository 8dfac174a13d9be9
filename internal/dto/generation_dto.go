package dto

import "time"

type ListGenerationsRequest struct {
	Limit       int    `query:"limit" validate:"omitempty,min=1,max=1000"`
	ProcessType string `query:"process_type" validate:"omitempty,max=255"`
}

type ChatEntryResponse struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Title   string `json:"title,omitempty"`
}

type GenerationSummaryResponse struct {
	Id                        uint      `json:"id"`
	CreatedAt                 time.Time `json:"created_at"`
	ProcessType               string    `json:"process_type"`
	AiModel                   string    `json:"ai_model"`
	GenerationDurationSeconds float64   `json:"generation_duration_seconds"`
}

type GenerationDetailResponse struct {
	GenerationSummaryResponse
	ChatHistory      []ChatEntryResponse `json:"chat_history"`
	InterviewSummary string              `json:"interview_summary"`
	BpmnXml          string              `json:"bpmn_xml"`
}

type ProcessTypeCountResponse struct {
	ProcessType string `json:"process_type"`
	Count       int64  `json:"count"`
}

type GenerationStatsResponse struct {
	Total              int64                      `json:"total"`
	UniqueProcessTypes int64                      `json:"unique_process_types"`
	AvgDurationSeconds float64                    `json:"avg_duration_seconds"`
	FirstGeneration    *time.Time                 `json:"first_generation"`
	LastGeneration     *time.Time                 `json:"last_generation"`
	ByProcessType      []ProcessTypeCountResponse `json:"by_process_type"`
}

// SaveGenerationMessage is queued after a successful synthesis and written
// to the history table by the persistence consumer.
type SaveGenerationMessage struct {
	SessionId                 string              `json:"session_id"`
	ProcessType               string              `json:"process_type"`
	AiModel                   string              `json:"ai_model"`
	ChatHistory               []ChatEntryResponse `json:"chat_history"`
	InterviewSummary          string              `json:"interview_summary"`
	BpmnXml                   string              `json:"bpmn_xml"`
	GenerationDurationSeconds float64             `json:"generation_duration_seconds"`
}
