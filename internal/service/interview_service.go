package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bpmn-interview-be/internal/dto"
	"bpmn-interview-be/internal/metrics"
	"bpmn-interview-be/internal/pkg/logger"
	"bpmn-interview-be/internal/repository/contract"
	"bpmn-interview-be/pkg/bpmn"
	"bpmn-interview-be/pkg/interview"
	"bpmn-interview-be/pkg/progress"
	"bpmn-interview-be/pkg/transcription"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound    = contract.ErrSessionNotFound
	ErrNoAnswers          = bpmn.ErrNoAnswers
	ErrMissingCredentials = errors.New("AI provider credentials are not configured")
	ErrNoModel            = errors.New("no BPMN model has been generated for this session")
	ErrGenerationFailed   = errors.New("BPMN generation failed")
	ErrRecordingFailed    = errors.New("audio recording failed")
)

// Progress message kinds pushed to a session's websocket clients.
const (
	ProgressStep  = "progress"
	ProgressDone  = "done"
	ProgressError = "error"
)

const stepSaving = "Saving to database..."

// ProgressNotifier pushes live updates to the clients watching a session.
type ProgressNotifier interface {
	Notify(sessionID, kind string, data interface{})
}

type IInterviewService interface {
	Create(ctx context.Context) (*dto.CreateSessionResponse, error)
	Show(ctx context.Context, id string) (*dto.SessionResponse, error)
	Start(ctx context.Context, id string, req *dto.StartInterviewRequest) (*dto.SessionResponse, error)
	Answer(ctx context.Context, id string, req *dto.AnswerRequest) (*dto.TurnResponse, error)
	AnswerAudio(ctx context.Context, id string, req *dto.AudioAnswerRequest) (*dto.TurnResponse, error)
	Reset(ctx context.Context, id string) (*dto.SessionResponse, error)
	Generate(ctx context.Context, id string) (*dto.GenerateResponse, error)
	DownloadBpmn(ctx context.Context, id string) (string, error)
	Topics() []dto.TopicResponse
	ProcessTypes() []dto.ProcessTypeResponse
}

type interviewService struct {
	catalog      *interview.Catalog
	processes    *interview.ProcessTypes
	orchestrator *interview.Orchestrator
	pipeline     *bpmn.Pipeline
	transcriber  *transcription.Service
	sessions     contract.SessionRepository
	locker       SessionLocker
	notifier     ProgressNotifier
	events       EventPublisher
	persistence  IPublisherService
	metrics      *metrics.Recorder
	aiModel      string
	logger       logger.ILogger
}

// NewInterviewService wires the interview flow. orchestrator and pipeline
// are nil when no model provider could be configured, transcriber is nil
// without speech credentials; the affected operations then fail with
// ErrMissingCredentials.
func NewInterviewService(
	catalog *interview.Catalog,
	processes *interview.ProcessTypes,
	orchestrator *interview.Orchestrator,
	pipeline *bpmn.Pipeline,
	transcriber *transcription.Service,
	sessions contract.SessionRepository,
	locker SessionLocker,
	notifier ProgressNotifier,
	events EventPublisher,
	persistence IPublisherService,
	recorder *metrics.Recorder,
	aiModel string,
	log logger.ILogger,
) IInterviewService {
	return &interviewService{
		catalog:      catalog,
		processes:    processes,
		orchestrator: orchestrator,
		pipeline:     pipeline,
		transcriber:  transcriber,
		sessions:     sessions,
		locker:       locker,
		notifier:     notifier,
		events:       events,
		persistence:  persistence,
		metrics:      recorder,
		aiModel:      aiModel,
		logger:       log,
	}
}

func (s *interviewService) Create(ctx context.Context) (*dto.CreateSessionResponse, error) {
	session := interview.NewSession(uuid.NewString())
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	s.logger.Info("INTERVIEW", "Session created", map[string]interface{}{"session_id": session.ID})
	return &dto.CreateSessionResponse{Id: session.ID}, nil
}

func (s *interviewService) Show(ctx context.Context, id string) (*dto.SessionResponse, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(session), nil
}

func (s *interviewService) Start(ctx context.Context, id string, req *dto.StartInterviewRequest) (*dto.SessionResponse, error) {
	if s.orchestrator == nil {
		return nil, ErrMissingCredentials
	}

	var view *dto.SessionResponse
	err := s.withSession(ctx, id, func(ctx context.Context, session *interview.Session) error {
		if err := s.orchestrator.Start(ctx, session, req.ProcessType); err != nil {
			return err
		}
		if err := s.sessions.Save(ctx, session); err != nil {
			return err
		}
		s.events.PublishInterviewStarted(ctx, session)
		view = s.view(session)
		return nil
	})
	return view, err
}

func (s *interviewService) Answer(ctx context.Context, id string, req *dto.AnswerRequest) (*dto.TurnResponse, error) {
	if s.orchestrator == nil {
		return nil, ErrMissingCredentials
	}

	var res *dto.TurnResponse
	err := s.withSession(ctx, id, func(ctx context.Context, session *interview.Session) error {
		var err error
		res, err = s.submit(ctx, session, req.Answer)
		return err
	})
	return res, err
}

// AnswerAudio transcribes a recording and submits the text as an answer.
// Nothing is submitted when transcription fails.
func (s *interviewService) AnswerAudio(ctx context.Context, id string, req *dto.AudioAnswerRequest) (*dto.TurnResponse, error) {
	if req.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrRecordingFailed, req.Error)
	}
	if s.orchestrator == nil || s.transcriber == nil {
		return nil, ErrMissingCredentials
	}

	audio, err := transcription.DecodeBase64(req.AudioData, req.MimeType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecordingFailed, err)
	}

	var res *dto.TurnResponse
	err = s.withSession(ctx, id, func(ctx context.Context, session *interview.Session) error {
		if session.State != interview.StateActive {
			return interview.ErrNotActive
		}

		progress.Report(ctx, "Transcribing audio...")
		text, err := s.transcriber.Transcribe(ctx, audio)
		s.metrics.Transcription(transcriptionStatus(err))
		if err != nil {
			s.logger.Warn("INTERVIEW", "Transcription failed", map[string]interface{}{
				"session_id": session.ID,
				"error":      err.Error(),
			})
			return err
		}

		res, err = s.submit(ctx, session, text)
		if res != nil {
			res.Transcript = text
		}
		return err
	})
	return res, err
}

func (s *interviewService) Reset(ctx context.Context, id string) (*dto.SessionResponse, error) {
	var view *dto.SessionResponse
	err := s.withSession(ctx, id, func(ctx context.Context, session *interview.Session) error {
		if s.orchestrator != nil {
			s.orchestrator.Reset(session)
		} else {
			fresh := interview.NewSession(session.ID)
			fresh.CreatedAt = session.CreatedAt
			*session = *fresh
		}
		if err := s.sessions.Save(ctx, session); err != nil {
			return err
		}
		view = s.view(session)
		return nil
	})
	return view, err
}

// Generate runs the synthesis pipeline over the session's answers. The
// interview data survives a failed run; a successful run replaces the
// session's last model.
func (s *interviewService) Generate(ctx context.Context, id string) (*dto.GenerateResponse, error) {
	if s.pipeline == nil {
		return nil, ErrMissingCredentials
	}

	var res *dto.GenerateResponse
	err := s.withSession(ctx, id, func(ctx context.Context, session *interview.Session) error {
		if len(session.Answers) == 0 {
			return ErrNoAnswers
		}

		result, err := s.pipeline.Synthesize(ctx, bpmn.Request{
			Summaries:      session.Answers,
			Catalog:        s.catalog,
			ProcessType:    session.ProcessType,
			ProcessContext: session.ProcessContext,
		})
		if err != nil {
			s.metrics.Generation(err, 0, 0)
			s.logger.Error("INTERVIEW", "BPMN generation failed", map[string]interface{}{
				"session_id": session.ID,
				"error":      err.Error(),
			})
			s.events.PublishGenerationFailed(ctx, session, err)
			if errors.Is(err, ErrNoAnswers) || errors.Is(err, context.Canceled) {
				return err
			}
			return fmt.Errorf("%w: %v", ErrGenerationFailed, err)
		}

		s.metrics.Generation(nil, result.Duration, result.Attempts)
		session.ModelXML = result.XML
		session.FlowGraph = result.FlowGraph
		if err := s.sessions.Save(ctx, session); err != nil {
			return err
		}

		progress.Report(ctx, stepSaving)
		s.persist(ctx, session, result)
		s.events.PublishBPMNGenerated(ctx, session, result)

		res = &dto.GenerateResponse{
			Xml:             result.XML,
			FlowGraph:       result.FlowGraph,
			Issues:          append([]string{}, result.Issues...),
			Attempts:        result.Attempts,
			LayoutApplied:   result.LayoutApplied,
			DurationSeconds: result.Duration.Seconds(),
		}
		return nil
	})
	return res, err
}

func (s *interviewService) DownloadBpmn(ctx context.Context, id string) (string, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if session.ModelXML == "" {
		return "", ErrNoModel
	}
	return session.ModelXML, nil
}

func (s *interviewService) Topics() []dto.TopicResponse {
	topics := s.catalog.Topics()
	result := make([]dto.TopicResponse, len(topics))
	for i, t := range topics {
		result[i] = dto.TopicResponse{Key: t.Key, Title: t.Title}
	}
	return result
}

func (s *interviewService) ProcessTypes() []dto.ProcessTypeResponse {
	names := s.processes.Names()
	result := make([]dto.ProcessTypeResponse, len(names))
	for i, name := range names {
		result[i] = dto.ProcessTypeResponse{Name: name, Context: s.processes.Context(name)}
	}
	return result
}

// withSession locks the session, loads it and streams progress labels to
// its websocket clients while fn runs. The outcome of fn is pushed as a
// final done or error message.
func (s *interviewService) withSession(ctx context.Context, id string, fn func(ctx context.Context, session *interview.Session) error) error {
	unlock, err := s.locker.TryLock(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return err
	}

	ctx = progress.WithReporter(ctx, func(step string) {
		s.notifier.Notify(id, ProgressStep, map[string]interface{}{"step": step})
	})

	if err := fn(ctx, session); err != nil {
		s.notifier.Notify(id, ProgressError, map[string]interface{}{"message": err.Error()})
		return err
	}
	s.notifier.Notify(id, ProgressDone, nil)
	return nil
}

func (s *interviewService) submit(ctx context.Context, session *interview.Session, answer string) (*dto.TurnResponse, error) {
	outcome, err := s.orchestrator.Submit(ctx, session, answer)
	if err != nil {
		s.logger.Error("INTERVIEW", "Turn failed", map[string]interface{}{
			"session_id": session.ID,
			"error":      err.Error(),
		})
		return nil, err
	}
	s.metrics.Turn(string(outcome.Kind))

	if outcome.Kind != interview.OutcomeRejected {
		if err := s.sessions.Save(ctx, session); err != nil {
			return nil, err
		}
	}
	if outcome.Kind == interview.OutcomeCompleted {
		s.events.PublishInterviewCompleted(ctx, session)
	}

	return &dto.TurnResponse{
		Outcome: string(outcome.Kind),
		Nudge:   outcome.Nudge,
		Session: s.view(session),
	}, nil
}

// persist queues the generation for the history table. Failures are logged
// and never reach the caller.
func (s *interviewService) persist(ctx context.Context, session *interview.Session, result *bpmn.Result) {
	history := make([]dto.ChatEntryResponse, len(session.Transcript))
	for i, e := range session.Transcript {
		history[i] = dto.ChatEntryResponse{Role: string(e.Role), Content: e.Content, Title: e.Title}
	}

	msg := &dto.SaveGenerationMessage{
		SessionId:                 session.ID,
		ProcessType:               session.ProcessType,
		AiModel:                   s.aiModel,
		ChatHistory:               history,
		InterviewSummary:          strings.TrimSpace(session.Summary),
		BpmnXml:                   result.XML,
		GenerationDurationSeconds: result.Duration.Seconds(),
	}
	if err := s.persistence.PublishGeneration(ctx, msg); err != nil {
		s.logger.Error("INTERVIEW", "Failed to queue generation for storage", map[string]interface{}{
			"session_id": session.ID,
			"error":      err.Error(),
		})
	}
}

func transcriptionStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, transcription.ErrTimeout):
		return "timeout"
	case errors.Is(err, transcription.ErrNoSpeech):
		return "no_speech"
	default:
		return "failed"
	}
}

func (s *interviewService) view(session *interview.Session) *dto.SessionResponse {
	return dto.ToSessionResponse(session, s.catalog.Len())
}
