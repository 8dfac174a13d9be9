package interview

import (
	"fmt"
	"strings"
	"time"
)

type State string

const (
	StateNotStarted State = "not_started"
	StateActive     State = "active"
	StateComplete   State = "complete"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// QA is one recorded question/answer pair within a topic.
// IsFollowup is kept for compatibility and is always false today.
type QA struct {
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	IsFollowup bool   `json:"is_followup"`
}

// TopicHistory maps a topic key to its append-only list of turns.
type TopicHistory map[string][]QA

// TranscriptEntry is one line of the visible conversation.
type TranscriptEntry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	Title   string `json:"title,omitempty"`
}

// Session is the interview aggregate for one user interaction context.
type Session struct {
	ID              string            `json:"id"`
	State           State             `json:"state"`
	ProcessType     string            `json:"process_type"`
	ProcessContext  string            `json:"process_context"`
	CurrentTopicKey string            `json:"current_topic_key"`
	CurrentQuestion string            `json:"current_question"`
	CurrentTitle    string            `json:"current_title"`
	History         TopicHistory      `json:"history"`
	Answers         map[string]string `json:"answers"`
	Summary         string            `json:"summary"`
	TopicsCompleted []string          `json:"topics_completed"`
	Transcript      []TranscriptEntry `json:"transcript"`

	// Last synthesis output, cleared on reset.
	ModelXML  string `json:"model_xml,omitempty"`
	FlowGraph string `json:"flow_graph,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewSession(id string) *Session {
	now := time.Now()
	s := &Session{ID: id, CreatedAt: now, UpdatedAt: now}
	s.clear()
	return s
}

func (s *Session) clear() {
	s.State = StateNotStarted
	s.ProcessType = ""
	s.ProcessContext = ""
	s.CurrentTopicKey = ""
	s.CurrentQuestion = ""
	s.CurrentTitle = ""
	s.History = TopicHistory{}
	s.Answers = map[string]string{}
	s.Summary = ""
	s.TopicsCompleted = []string{}
	s.Transcript = []TranscriptEntry{}
	s.ModelXML = ""
	s.FlowGraph = ""
}

// Clone returns a deep copy so a turn can be applied atomically.
func (s *Session) Clone() *Session {
	c := *s
	c.History = make(TopicHistory, len(s.History))
	for k, turns := range s.History {
		c.History[k] = append([]QA(nil), turns...)
	}
	c.Answers = make(map[string]string, len(s.Answers))
	for k, v := range s.Answers {
		c.Answers[k] = v
	}
	c.TopicsCompleted = append([]string{}, s.TopicsCompleted...)
	c.Transcript = append([]TranscriptEntry{}, s.Transcript...)
	return &c
}

func (s *Session) IsCompleted(key string) bool {
	for _, k := range s.TopicsCompleted {
		if k == key {
			return true
		}
	}
	return false
}

// markCompleted appends key once. TopicsCompleted never shrinks.
func (s *Session) markCompleted(key string) {
	if key == "" || s.IsCompleted(key) {
		return
	}
	s.TopicsCompleted = append(s.TopicsCompleted, key)
}

// TopicBlock concatenates every recorded turn of a topic.
func (s *Session) TopicBlock(key string) string {
	turns := s.History[key]
	lines := make([]string, len(turns))
	for i, t := range turns {
		lines[i] = fmt.Sprintf("Question: %s Answer: %s", t.Question, t.Answer)
	}
	return strings.Join(lines, "\n")
}

func (s *Session) say(role Role, content, title string) {
	s.Transcript = append(s.Transcript, TranscriptEntry{Role: role, Content: content, Title: title})
}

// TopicNumber is the 1-based counter shown to the user, clamped to total.
func TopicNumber(completed, total int) int {
	n := completed + 1
	if n > total {
		return total
	}
	return n
}

// QuestionTitle renders "Topic n of total: title".
func QuestionTitle(completed, total int, title string) string {
	return fmt.Sprintf("Topic %d of %d: %s", TopicNumber(completed, total), total, title)
}
