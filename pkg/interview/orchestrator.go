package interview

import (
	"context"
	"errors"
	"strings"
	"time"

	"bpmn-interview-be/internal/pkg/logger"
	"bpmn-interview-be/pkg/progress"
)

var (
	ErrNotActive          = errors.New("interview is not active")
	ErrMissingProcessType = errors.New("process type is required")
)

const (
	closingTitle       = "Interview complete"
	closingMessage     = "Thank you! All topics have been answered. Generate the BPMN diagram to create your process model."
	alreadyDoneMessage = "All topics have already been answered sufficiently."
	firstQuestion      = "Please describe how the process starts."
	anotherStep        = "Can you describe another step?"
	defaultNudge       = "Please answer the question about the process."
	unknownTopicTitle  = "Topic"
)

type OutcomeKind string

const (
	OutcomeRejected  OutcomeKind = "rejected"
	OutcomeFlagged   OutcomeKind = "flagged"
	OutcomeStayed    OutcomeKind = "stayed"
	OutcomeAdvanced  OutcomeKind = "advanced"
	OutcomeCompleted OutcomeKind = "completed"
)

// TurnOutcome reports how a submitted answer was handled.
type TurnOutcome struct {
	Kind     OutcomeKind `json:"kind"`
	Nudge    string      `json:"nudge,omitempty"`
	Reason   string      `json:"reason,omitempty"`
	Decision *Decision   `json:"decision,omitempty"`
}

// Orchestrator drives the interview state machine. It holds no per-session
// state; callers must not run two operations on the same session at once.
type Orchestrator struct {
	agents    Agents
	catalog   *Catalog
	processes *ProcessTypes
	logger    logger.ILogger
}

func NewOrchestrator(agents Agents, catalog *Catalog, processes *ProcessTypes, log logger.ILogger) *Orchestrator {
	return &Orchestrator{agents: agents, catalog: catalog, processes: processes, logger: log}
}

func (o *Orchestrator) Catalog() *Catalog {
	return o.catalog
}

func (o *Orchestrator) ProcessTypes() *ProcessTypes {
	return o.processes
}

// Start begins a fresh interview for processType and asks the first question.
// On error the session is left untouched.
func (o *Orchestrator) Start(ctx context.Context, s *Session, processType string) error {
	if strings.TrimSpace(processType) == "" {
		return ErrMissingProcessType
	}

	work := s.Clone()
	work.clear()
	work.State = StateActive
	work.ProcessType = processType
	work.ProcessContext = o.processes.Context(processType)
	work.CurrentTopicKey = o.catalog.First().Key

	progress.Report(ctx, "Preparing the first question...")
	decision, err := o.decide(ctx, work)
	if err != nil {
		return err
	}

	if decision.TopicComplete {
		work.markCompleted(work.CurrentTopicKey)
	}
	if o.finished(work) {
		work.State = StateComplete
		work.say(RoleAssistant, alreadyDoneMessage, closingTitle)
	} else {
		o.ask(work, decision, firstQuestion)
	}

	o.commit(s, work)
	o.logger.Info("Orchestrator", "interview started", map[string]interface{}{
		"session_id":   s.ID,
		"process_type": processType,
		"topic":        s.CurrentTopicKey,
	})
	return nil
}

// Submit runs one turn for answer. The session only changes when the turn
// completes without error.
func (o *Orchestrator) Submit(ctx context.Context, s *Session, answer string) (*TurnOutcome, error) {
	if s.State != StateActive {
		return nil, ErrNotActive
	}
	if strings.TrimSpace(answer) == "" {
		return &TurnOutcome{Kind: OutcomeRejected}, nil
	}

	work := s.Clone()
	baseKey := work.CurrentTopicKey
	question := work.CurrentQuestion
	work.say(RoleUser, answer, "")

	progress.Report(ctx, "Safety check...")
	verdict, err := o.agents.Screen(ctx, ScreenInput{
		Question:       question,
		Answer:         answer,
		ProcessContext: work.ProcessContext,
		Summary:        work.Summary,
	})
	if err != nil {
		return nil, err
	}
	if verdict.Flagged {
		nudge := verdict.Nudge
		if nudge == "" {
			nudge = defaultNudge
		}
		work.say(RoleAssistant, nudge, "")
		o.commit(s, work)
		o.logger.Warn("Orchestrator", "answer flagged", map[string]interface{}{
			"session_id": s.ID,
			"reason":     verdict.Reason,
		})
		return &TurnOutcome{Kind: OutcomeFlagged, Nudge: nudge, Reason: verdict.Reason}, nil
	}

	work.History[baseKey] = append(work.History[baseKey], QA{Question: question, Answer: answer})
	block := work.TopicBlock(baseKey)

	progress.Report(ctx, "Summarizing the answer...")
	topicSummary, err := o.agents.SummarizeAnswer(ctx, question, block)
	if err != nil {
		return nil, err
	}
	work.Answers[baseKey] = topicSummary

	progress.Report(ctx, "Updating the summary...")
	running, err := o.agents.UpdateSummary(ctx, SummaryInput{
		Summary:        work.Summary,
		Question:       question,
		Block:          block,
		TopicHistory:   work.History[baseKey],
		ProcessContext: work.ProcessContext,
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(running) != "" {
		work.Summary = running
	}

	progress.Report(ctx, "Preparing the next question...")
	decision, err := o.decide(ctx, work)
	if err != nil {
		return nil, err
	}

	if decision.TopicComplete {
		work.markCompleted(baseKey)
	}

	outcome := &TurnOutcome{Decision: &decision}
	if o.finished(work) {
		work.State = StateComplete
		work.say(RoleAssistant, closingMessage, closingTitle)
		outcome.Kind = OutcomeCompleted
	} else {
		o.ask(work, decision, anotherStep)
		if work.CurrentTopicKey == baseKey {
			outcome.Kind = OutcomeStayed
		} else {
			outcome.Kind = OutcomeAdvanced
		}
	}

	o.commit(s, work)
	o.logger.Info("Orchestrator", "turn processed", map[string]interface{}{
		"session_id": s.ID,
		"outcome":    outcome.Kind,
		"topic":      baseKey,
		"completed":  len(s.TopicsCompleted),
		"total":      o.catalog.Len(),
	})
	return outcome, nil
}

// Reset returns the session to NotStarted and drops all interview data.
func (o *Orchestrator) Reset(s *Session) {
	s.clear()
	s.UpdatedAt = time.Now()
}

func (o *Orchestrator) decide(ctx context.Context, s *Session) (Decision, error) {
	verdict, err := o.agents.AssessTopic(ctx, TopicInput{
		ProcessContext: s.ProcessContext,
		Summary:        s.Summary,
		Catalog:        o.catalog.Topics(),
		Completed:      s.TopicsCompleted,
		CurrentTitle:   o.catalog.Title(s.CurrentTopicKey, s.CurrentTopicKey),
		History:        s.History,
	})
	if err != nil {
		return Decision{}, err
	}
	return DecideNextTopic(o.catalog, s.TopicsCompleted, s.CurrentTopicKey, verdict), nil
}

func (o *Orchestrator) finished(s *Session) bool {
	return len(s.TopicsCompleted) >= o.catalog.Len()
}

// ask moves the session to the decided topic and records the question.
func (o *Orchestrator) ask(s *Session, d Decision, fallback string) {
	if d.NextKey != "" {
		s.CurrentTopicKey = d.NextKey
	}
	s.CurrentQuestion = d.NextQuestion
	if s.CurrentQuestion == "" {
		s.CurrentQuestion = fallback
	}
	title := o.catalog.Title(s.CurrentTopicKey, unknownTopicTitle)
	s.CurrentTitle = QuestionTitle(len(s.TopicsCompleted), o.catalog.Len(), title)
	s.say(RoleAssistant, s.CurrentQuestion, s.CurrentTitle)
}

func (o *Orchestrator) commit(dst, work *Session) {
	work.UpdatedAt = time.Now()
	*dst = *work
}
