package dto

import (
	"time"

	"bpmn-interview-be/pkg/interview"
)

type CreateSessionResponse struct {
	Id string `json:"id"`
}

type StartInterviewRequest struct {
	ProcessType string `json:"process_type" validate:"required,max=255"`
}

type AnswerRequest struct {
	Answer string `json:"answer" validate:"required"`
}

// AudioAnswerRequest carries a base64 recording, optionally as a data URL.
// Error is set by clients whose recorder failed.
type AudioAnswerRequest struct {
	AudioData string `json:"audio_data"`
	MimeType  string `json:"mime_type"`
	Error     string `json:"error"`
}

type TranscriptEntryResponse struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Title   string `json:"title,omitempty"`
}

type SessionResponse struct {
	Id              string                    `json:"id"`
	State           string                    `json:"state"`
	ProcessType     string                    `json:"process_type"`
	CurrentTopicKey string                    `json:"current_topic_key"`
	CurrentTitle    string                    `json:"current_title"`
	CurrentQuestion string                    `json:"current_question"`
	TopicsCompleted []string                  `json:"topics_completed"`
	TotalTopics     int                       `json:"total_topics"`
	Answers         map[string]string         `json:"answers"`
	Summary         string                    `json:"summary"`
	Transcript      []TranscriptEntryResponse `json:"transcript"`
	HasModel        bool                      `json:"has_model"`
	FlowGraph       string                    `json:"flow_graph,omitempty"`
	CreatedAt       time.Time                 `json:"created_at"`
	UpdatedAt       time.Time                 `json:"updated_at"`
}

type TurnResponse struct {
	Outcome    string           `json:"outcome"`
	Nudge      string           `json:"nudge,omitempty"`
	Transcript string           `json:"transcript,omitempty"`
	Session    *SessionResponse `json:"session"`
}

type TopicResponse struct {
	Key   string `json:"key"`
	Title string `json:"title"`
}

type ProcessTypeResponse struct {
	Name    string `json:"name"`
	Context string `json:"context"`
}

type GenerateResponse struct {
	Xml             string   `json:"xml"`
	FlowGraph       string   `json:"flow_graph"`
	Issues          []string `json:"issues"`
	Attempts        int      `json:"attempts"`
	LayoutApplied   bool     `json:"layout_applied"`
	DurationSeconds float64  `json:"duration_seconds"`
}

// ToSessionResponse renders the public view of a session.
func ToSessionResponse(s *interview.Session, totalTopics int) *SessionResponse {
	transcript := make([]TranscriptEntryResponse, len(s.Transcript))
	for i, e := range s.Transcript {
		transcript[i] = TranscriptEntryResponse{Role: string(e.Role), Content: e.Content, Title: e.Title}
	}
	answers := make(map[string]string, len(s.Answers))
	for k, v := range s.Answers {
		answers[k] = v
	}
	return &SessionResponse{
		Id:              s.ID,
		State:           string(s.State),
		ProcessType:     s.ProcessType,
		CurrentTopicKey: s.CurrentTopicKey,
		CurrentTitle:    s.CurrentTitle,
		CurrentQuestion: s.CurrentQuestion,
		TopicsCompleted: append([]string{}, s.TopicsCompleted...),
		TotalTopics:     totalTopics,
		Answers:         answers,
		Summary:         s.Summary,
		Transcript:      transcript,
		HasModel:        s.ModelXML != "",
		FlowGraph:       s.FlowGraph,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}
