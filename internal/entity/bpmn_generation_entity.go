package entity

import "time"

// ChatEntry is one line of the interview transcript stored with a generation.
type ChatEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Title   string `json:"title,omitempty"`
}

type BpmnGeneration struct {
	Id                        uint
	CreatedAt                 time.Time
	ProcessType               string
	AiModel                   string
	ChatHistory               []ChatEntry
	InterviewSummary          string
	BpmnXml                   string
	GenerationDurationSeconds float64
}

// ProcessTypeCount is one bucket of the per-type distribution.
type ProcessTypeCount struct {
	ProcessType string
	Count       int64
}

// GenerationStats aggregates the whole generation history.
type GenerationStats struct {
	Total              int64
	UniqueProcessTypes int64
	AvgDurationSeconds float64
	FirstGeneration    *time.Time
	LastGeneration     *time.Time
	ByProcessType      []ProcessTypeCount
}
