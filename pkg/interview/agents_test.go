package interview

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"bpmn-interview-be/internal/pkg/logger"
	"bpmn-interview-be/pkg/llm"
	"bpmn-interview-be/pkg/prompt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProvider struct {
	reply   string
	prompts []string
	options []llm.Options
}

func (p *recordingProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return p.Generate(ctx, history[len(history)-1].Content, opts...)
}

func (p *recordingProvider) Generate(ctx context.Context, text string, opts ...llm.Option) (string, error) {
	p.prompts = append(p.prompts, text)
	p.options = append(p.options, llm.Apply(llm.Options{}, opts...))
	return p.reply, nil
}

func (p *recordingProvider) ModelName() string { return "recording" }

func promptDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		prompt.SecurityAgent:   "Q={question_text} A={answer_text}",
		prompt.SummaryAgent:    "S={summary_text} H={topic_history}",
		prompt.ProbingAgent:    "P={answer_text}",
		prompt.TopicManager:    "T={current_topic_title} D={topics_completed}",
		prompt.SummarizeAnswer: "SUM {answer_text}",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".txt"), []byte(body), 0o644))
	}
	return dir
}

func TestAgentProfiles(t *testing.T) {
	tests := []struct {
		name     string
		call     func(a *LLMAgents) error
		temp     float64
		tokens   int
		contains string
	}{
		{
			name: "security",
			call: func(a *LLMAgents) error {
				_, err := a.Screen(context.Background(), ScreenInput{Question: "q", Answer: "a"})
				return err
			},
			temp: 0.1, tokens: 250, contains: "Q=q A=a",
		},
		{
			name: "running summary",
			call: func(a *LLMAgents) error {
				_, err := a.UpdateSummary(context.Background(), SummaryInput{Summary: "old"})
				return err
			},
			temp: 0.2, tokens: 1500, contains: "S=old H=",
		},
		{
			name: "probing",
			call: func(a *LLMAgents) error {
				_, err := a.Probe(context.Background(), ProbeInput{Answer: "x"})
				return err
			},
			temp: 0.3, tokens: 200, contains: "P=x",
		},
		{
			name: "topic manager",
			call: func(a *LLMAgents) error {
				_, err := a.AssessTopic(context.Background(), TopicInput{CurrentTitle: "Start", Completed: []string{"a"}})
				return err
			},
			temp: 0.2, tokens: 250, contains: `T=Start D=["a"]`,
		},
		{
			name: "summarize answer",
			call: func(a *LLMAgents) error {
				_, err := a.SummarizeAnswer(context.Background(), "q", "block")
				return err
			},
			temp: 0.2, tokens: 200, contains: "SUM block",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &recordingProvider{reply: "{}"}
			agents := NewLLMAgents(provider, prompt.NewStore(promptDir(t)), logger.NewNopLogger())

			require.NoError(t, tt.call(agents))
			require.Len(t, provider.options, 1)
			require.NotNil(t, provider.options[0].Temperature)
			assert.Equal(t, tt.temp, *provider.options[0].Temperature)
			assert.Equal(t, tt.tokens, provider.options[0].MaxTokens)
			assert.Contains(t, provider.prompts[0], tt.contains)
		})
	}
}

func TestSummarizeAnswerFallsBackToInput(t *testing.T) {
	provider := &recordingProvider{reply: "   "}
	agents := NewLLMAgents(provider, prompt.NewStore(promptDir(t)), logger.NewNopLogger())

	out, err := agents.SummarizeAnswer(context.Background(), "q", "the raw block")
	require.NoError(t, err)
	assert.Equal(t, "the raw block", out)

	out, err = agents.SummarizeAnswer(context.Background(), "q", "")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Len(t, provider.prompts, 1)
}

func TestAgentsParseReplies(t *testing.T) {
	dir := promptDir(t)

	provider := &recordingProvider{reply: "```json\n{\"flagged\": true, \"reason\": \"off topic\", \"nudge\": \"Back to the process please.\"}\n```"}
	agents := NewLLMAgents(provider, prompt.NewStore(dir), logger.NewNopLogger())
	safety, err := agents.Screen(context.Background(), ScreenInput{})
	require.NoError(t, err)
	assert.True(t, safety.Flagged)
	assert.Equal(t, "Back to the process please.", safety.Nudge)

	provider.reply = `Sure: {"complete": "true", "next_question": "What happens next?"}`
	topic, err := agents.AssessTopic(context.Background(), TopicInput{})
	require.NoError(t, err)
	assert.True(t, topic.Complete)
	assert.Equal(t, "What happens next?", topic.NextQuestion)

	provider.reply = `{"ask_followup": true, "question": "Who signs?"}`
	probe, err := agents.Probe(context.Background(), ProbeInput{})
	require.NoError(t, err)
	assert.True(t, probe.AskFollowup)
	assert.Equal(t, "Who signs?", probe.Question)
}

func TestAgentsMissingTemplate(t *testing.T) {
	agents := NewLLMAgents(&recordingProvider{}, prompt.NewStore(t.TempDir()), logger.NewNopLogger())
	_, err := agents.Screen(context.Background(), ScreenInput{})
	assert.ErrorIs(t, err, prompt.ErrTemplateNotFound)
}
