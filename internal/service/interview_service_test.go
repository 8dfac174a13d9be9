package service

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"bpmn-interview-be/internal/dto"
	"bpmn-interview-be/internal/metrics"
	"bpmn-interview-be/internal/pkg/logger"
	"bpmn-interview-be/internal/repository/memory"
	"bpmn-interview-be/pkg/ai/parser"
	"bpmn-interview-be/pkg/bpmn"
	"bpmn-interview-be/pkg/interview"
	"bpmn-interview-be/pkg/llm"
	"bpmn-interview-be/pkg/prompt"
	"bpmn-interview-be/pkg/transcription"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const emptyModel = `<?xml version="1.0" encoding="UTF-8"?>
<definitions xmlns="http://www.omg.org/spec/BPMN/20100524/MODEL" id="d"><process id="p"/></definitions>`

// scriptedAgents leaves the first topic open on start and completes one
// topic per answer.
type scriptedAgents struct {
	mu      sync.Mutex
	assess  int
	flagged bool
}

func (a *scriptedAgents) Screen(ctx context.Context, in interview.ScreenInput) (parser.SafetyVerdict, error) {
	return parser.SafetyVerdict{Flagged: a.flagged, Nudge: "Stay on topic."}, nil
}

func (a *scriptedAgents) SummarizeAnswer(ctx context.Context, question, answer string) (string, error) {
	return "summary: " + answer, nil
}

func (a *scriptedAgents) UpdateSummary(ctx context.Context, in interview.SummaryInput) (string, error) {
	return in.Summary + " " + in.Block, nil
}

func (a *scriptedAgents) Probe(ctx context.Context, in interview.ProbeInput) (parser.ProbeVerdict, error) {
	return parser.ProbeVerdict{}, nil
}

func (a *scriptedAgents) AssessTopic(ctx context.Context, in interview.TopicInput) (parser.TopicVerdict, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.assess++
	return parser.TopicVerdict{Complete: a.assess > 1, NextQuestion: "Next?"}, nil
}

type staticProvider struct {
	reply string
	err   error
	calls int
}

func (p *staticProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	p.calls++
	return p.reply, p.err
}

func (p *staticProvider) Generate(ctx context.Context, text string, opts ...llm.Option) (string, error) {
	p.calls++
	return p.reply, p.err
}

func (p *staticProvider) ModelName() string { return "test-model" }

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(sessionID, kind string, data interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if m, ok := data.(map[string]interface{}); ok && m["step"] != nil {
		n.messages = append(n.messages, kind+":"+m["step"].(string))
		return
	}
	n.messages = append(n.messages, kind)
}

type recordingEvents struct {
	types []string
}

func (e *recordingEvents) PublishInterviewStarted(ctx context.Context, s *interview.Session) {
	e.types = append(e.types, "started")
}

func (e *recordingEvents) PublishInterviewCompleted(ctx context.Context, s *interview.Session) {
	e.types = append(e.types, "completed")
}

func (e *recordingEvents) PublishBPMNGenerated(ctx context.Context, s *interview.Session, res *bpmn.Result) {
	e.types = append(e.types, "generated")
}

func (e *recordingEvents) PublishGenerationFailed(ctx context.Context, s *interview.Session, err error) {
	e.types = append(e.types, "failed")
}

type recordingPersistence struct {
	err  error
	msgs []*dto.SaveGenerationMessage
}

func (p *recordingPersistence) PublishGeneration(ctx context.Context, msg *dto.SaveGenerationMessage) error {
	p.msgs = append(p.msgs, msg)
	return p.err
}

type fakeTranscriber struct {
	text  string
	err   error
	calls int
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audio transcription.Audio, language string) (string, error) {
	f.calls++
	return f.text, f.err
}

type fixture struct {
	svc         IInterviewService
	sessions    *memory.SessionRepository
	locker      SessionLocker
	agents      *scriptedAgents
	provider    *staticProvider
	notifier    *recordingNotifier
	events      *recordingEvents
	persistence *recordingPersistence
	transcriber *fakeTranscriber
	metrics     *metrics.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	catalog, err := interview.NewCatalog([]interview.Topic{
		{Key: "start", Title: "Process start"},
		{Key: "end", Title: "Process end"},
	})
	require.NoError(t, err)
	processes, err := interview.NewProcessTypes(map[string]interview.ProcessInfo{
		"Personalmanagement": {Context: "Hiring in a craft business"},
	})
	require.NoError(t, err)

	dir := t.TempDir()
	for _, name := range []string{prompt.CoT, prompt.Improvement, prompt.DIGeneration} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".txt"), []byte(name), 0o644))
	}

	f := &fixture{
		sessions:    memory.NewSessionRepository(time.Hour),
		locker:      NewLocalSessionLocker(),
		agents:      &scriptedAgents{},
		provider:    &staticProvider{reply: emptyModel},
		notifier:    &recordingNotifier{},
		events:      &recordingEvents{},
		persistence: &recordingPersistence{},
		transcriber: &fakeTranscriber{text: "  The customer calls.  "},
		metrics:     metrics.NewRecorder(prometheus.NewRegistry()),
	}

	log := logger.NewNopLogger()
	orchestrator := interview.NewOrchestrator(f.agents, catalog, processes, log)
	pipeline := bpmn.NewPipeline(bpmn.NewGenerator(f.provider, prompt.NewStore(dir)), 2, log)
	speech := transcription.NewService(f.transcriber, "de", time.Second)

	f.svc = NewInterviewService(catalog, processes, orchestrator, pipeline, speech,
		f.sessions, f.locker, f.notifier, f.events, f.persistence, f.metrics, "test-model", log)
	return f
}

func (f *fixture) started(t *testing.T) string {
	t.Helper()
	created, err := f.svc.Create(context.Background())
	require.NoError(t, err)
	_, err = f.svc.Start(context.Background(), created.Id, &dto.StartInterviewRequest{ProcessType: "Personalmanagement"})
	require.NoError(t, err)
	return created.Id
}

func TestInterviewFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.started(t)

	view, err := f.svc.Show(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "active", view.State)
	assert.Equal(t, "start", view.CurrentTopicKey)
	assert.Equal(t, "Topic 1 of 2: Process start", view.CurrentTitle)
	assert.Equal(t, 2, view.TotalTopics)

	turn, err := f.svc.Answer(ctx, id, &dto.AnswerRequest{Answer: "A candidate applies."})
	require.NoError(t, err)
	assert.Equal(t, "advanced", turn.Outcome)
	assert.Equal(t, "end", turn.Session.CurrentTopicKey)

	turn, err = f.svc.Answer(ctx, id, &dto.AnswerRequest{Answer: "A contract is signed."})
	require.NoError(t, err)
	assert.Equal(t, "completed", turn.Outcome)
	assert.Equal(t, "complete", turn.Session.State)
	assert.Equal(t, []string{"start", "end"}, turn.Session.TopicsCompleted)

	res, err := f.svc.Generate(ctx, id)
	require.NoError(t, err)
	assert.Contains(t, res.Xml, `<process id="p"/>`)
	assert.Empty(t, res.Issues)
	assert.False(t, res.LayoutApplied)

	xml, err := f.svc.DownloadBpmn(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, res.Xml, xml)

	require.Len(t, f.persistence.msgs, 1)
	saved := f.persistence.msgs[0]
	assert.Equal(t, "Personalmanagement", saved.ProcessType)
	assert.Equal(t, "test-model", saved.AiModel)
	assert.Equal(t, res.Xml, saved.BpmnXml)
	assert.NotEmpty(t, saved.ChatHistory)

	assert.Equal(t, []string{"started", "completed", "generated"}, f.events.types)
	assert.Contains(t, f.notifier.messages, "progress:Generating BPMN model...")
	assert.Contains(t, f.notifier.messages, "progress:Saving to database...")
	assert.Equal(t, "done", f.notifier.messages[len(f.notifier.messages)-1])
}

func TestBusySessionIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.started(t)

	before, err := f.sessions.Get(ctx, id)
	require.NoError(t, err)

	unlock, err := f.locker.TryLock(ctx, id)
	require.NoError(t, err)

	_, err = f.svc.Answer(ctx, id, &dto.AnswerRequest{Answer: "Concurrent answer"})
	assert.ErrorIs(t, err, ErrSessionBusy)
	_, err = f.svc.Generate(ctx, id)
	assert.ErrorIs(t, err, ErrSessionBusy)
	_, err = f.svc.Reset(ctx, id)
	assert.ErrorIs(t, err, ErrSessionBusy)

	after, err := f.sessions.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, before.Transcript, after.Transcript)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt)

	unlock()
	_, err = f.svc.Answer(ctx, id, &dto.AnswerRequest{Answer: "Now it works"})
	assert.NoError(t, err)
}

func TestAudioAnswer(t *testing.T) {
	audio := base64.StdEncoding.EncodeToString([]byte("fake-webm"))

	t.Run("transcript is submitted", func(t *testing.T) {
		f := newFixture(t)
		id := f.started(t)

		turn, err := f.svc.AnswerAudio(context.Background(), id, &dto.AudioAnswerRequest{AudioData: "data:audio/webm;base64," + audio})
		require.NoError(t, err)
		assert.Equal(t, "The customer calls.", turn.Transcript)
		assert.Equal(t, "advanced", turn.Outcome)
		assert.Equal(t, "summary: Question: Next? Answer: The customer calls.", turn.Session.Answers["start"])
	})

	failures := []struct {
		name    string
		text    string
		err     error
		wantErr error
	}{
		{name: "transcription error", err: errors.New("upstream 500"), wantErr: transcription.ErrTranscription},
		{name: "no speech", text: "   ", wantErr: transcription.ErrNoSpeech},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			id := f.started(t)
			f.transcriber.text, f.transcriber.err = tt.text, tt.err

			before, err := f.sessions.Get(context.Background(), id)
			require.NoError(t, err)

			_, err = f.svc.AnswerAudio(context.Background(), id, &dto.AudioAnswerRequest{AudioData: audio})
			assert.ErrorIs(t, err, tt.wantErr)

			after, err := f.sessions.Get(context.Background(), id)
			require.NoError(t, err)
			assert.Equal(t, before.Transcript, after.Transcript)
			assert.Empty(t, after.Answers)
		})
	}

	t.Run("client recording error", func(t *testing.T) {
		f := newFixture(t)
		id := f.started(t)
		_, err := f.svc.AnswerAudio(context.Background(), id, &dto.AudioAnswerRequest{Error: "microphone denied"})
		assert.ErrorIs(t, err, ErrRecordingFailed)
		assert.Zero(t, f.transcriber.calls)
	})

	t.Run("inactive session is not transcribed", func(t *testing.T) {
		f := newFixture(t)
		created, err := f.svc.Create(context.Background())
		require.NoError(t, err)
		_, err = f.svc.AnswerAudio(context.Background(), created.Id, &dto.AudioAnswerRequest{AudioData: audio})
		assert.ErrorIs(t, err, interview.ErrNotActive)
		assert.Zero(t, f.transcriber.calls)
	})
}

func TestGenerate(t *testing.T) {
	t.Run("persistence failure does not fail generation", func(t *testing.T) {
		f := newFixture(t)
		id := f.started(t)
		_, err := f.svc.Answer(context.Background(), id, &dto.AnswerRequest{Answer: "A candidate applies."})
		require.NoError(t, err)
		f.persistence.err = errors.New("queue closed")

		res, err := f.svc.Generate(context.Background(), id)
		require.NoError(t, err)
		assert.NotEmpty(t, res.Xml)

		session, err := f.sessions.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, res.Xml, session.ModelXML)
	})

	t.Run("no answers", func(t *testing.T) {
		f := newFixture(t)
		id := f.started(t)
		_, err := f.svc.Generate(context.Background(), id)
		assert.ErrorIs(t, err, ErrNoAnswers)
		assert.Zero(t, f.provider.calls)
	})

	t.Run("pipeline failure keeps interview data", func(t *testing.T) {
		f := newFixture(t)
		id := f.started(t)
		_, err := f.svc.Answer(context.Background(), id, &dto.AnswerRequest{Answer: "A candidate applies."})
		require.NoError(t, err)
		f.provider.err = llm.ErrNetwork

		_, err = f.svc.Generate(context.Background(), id)
		assert.ErrorIs(t, err, ErrGenerationFailed)
		assert.Contains(t, f.events.types, "failed")
		assert.Equal(t, "error", f.notifier.messages[len(f.notifier.messages)-1])

		session, err := f.sessions.Get(context.Background(), id)
		require.NoError(t, err)
		assert.NotEmpty(t, session.Answers["start"])
		assert.Empty(t, session.ModelXML)

		_, err = f.svc.DownloadBpmn(context.Background(), id)
		assert.ErrorIs(t, err, ErrNoModel)
	})
}

func TestResetAndLookup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.started(t)

	view, err := f.svc.Reset(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "not_started", view.State)
	assert.Empty(t, view.Transcript)

	_, err = f.svc.Answer(ctx, id, &dto.AnswerRequest{Answer: "late"})
	assert.ErrorIs(t, err, interview.ErrNotActive)

	_, err = f.svc.Show(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = f.svc.Start(ctx, id, &dto.StartInterviewRequest{ProcessType: "  "})
	assert.ErrorIs(t, err, interview.ErrMissingProcessType)

	assert.Equal(t, []dto.TopicResponse{{Key: "start", Title: "Process start"}, {Key: "end", Title: "Process end"}}, f.svc.Topics())
	assert.Equal(t, []dto.ProcessTypeResponse{{Name: "Personalmanagement", Context: "Hiring in a craft business"}}, f.svc.ProcessTypes())
}

func TestMissingCredentials(t *testing.T) {
	catalog, err := interview.NewCatalog([]interview.Topic{{Key: "start", Title: "Start"}})
	require.NoError(t, err)
	processes, err := interview.NewProcessTypes(nil)
	require.NoError(t, err)

	svc := NewInterviewService(catalog, processes, nil, nil, nil,
		memory.NewSessionRepository(time.Hour), NewLocalSessionLocker(), &recordingNotifier{},
		&recordingEvents{}, &recordingPersistence{}, nil, "", logger.NewNopLogger())

	created, err := svc.Create(context.Background())
	require.NoError(t, err)

	_, err = svc.Start(context.Background(), created.Id, &dto.StartInterviewRequest{ProcessType: "x"})
	assert.ErrorIs(t, err, ErrMissingCredentials)
	_, err = svc.Generate(context.Background(), created.Id)
	assert.ErrorIs(t, err, ErrMissingCredentials)
	_, err = svc.AnswerAudio(context.Background(), created.Id, &dto.AudioAnswerRequest{AudioData: "AAAA"})
	assert.ErrorIs(t, err, ErrMissingCredentials)

	view, err := svc.Reset(context.Background(), created.Id)
	require.NoError(t, err)
	assert.Equal(t, "not_started", view.State)
}

func TestLocalSessionLocker(t *testing.T) {
	l := NewLocalSessionLocker()
	ctx := context.Background()

	unlockA, err := l.TryLock(ctx, "a")
	require.NoError(t, err)
	_, err = l.TryLock(ctx, "a")
	assert.ErrorIs(t, err, ErrSessionBusy)

	unlockB, err := l.TryLock(ctx, "b")
	require.NoError(t, err)

	unlockA()
	unlockA()
	again, err := l.TryLock(ctx, "a")
	require.NoError(t, err)
	again()
	unlockB()
}
