package interview

import (
	"context"
	"fmt"
	"strings"

	"bpmn-interview-be/internal/pkg/logger"
	"bpmn-interview-be/pkg/ai/parser"
	"bpmn-interview-be/pkg/llm"
	"bpmn-interview-be/pkg/prompt"
)

// ScreenInput is what the safety agent sees.
type ScreenInput struct {
	Question       string
	Answer         string
	ProcessContext string
	Summary        string
}

// SummaryInput feeds the running-summary agent.
type SummaryInput struct {
	Summary        string
	Question       string
	Block          string
	TopicHistory   []QA
	ProcessContext string
}

// ProbeInput feeds the follow-up agent.
type ProbeInput struct {
	Question       string
	Answer         string
	Summary        string
	TopicHistory   []QA
	ProcessContext string
}

// TopicInput feeds the topic manager.
type TopicInput struct {
	ProcessContext string
	Summary        string
	Catalog        []Topic
	Completed      []string
	CurrentTitle   string
	History        TopicHistory
}

// Agents are the narrow model-backed decisions the orchestrator relies on.
type Agents interface {
	Screen(ctx context.Context, in ScreenInput) (parser.SafetyVerdict, error)
	SummarizeAnswer(ctx context.Context, question, answer string) (string, error)
	UpdateSummary(ctx context.Context, in SummaryInput) (string, error)
	Probe(ctx context.Context, in ProbeInput) (parser.ProbeVerdict, error)
	AssessTopic(ctx context.Context, in TopicInput) (parser.TopicVerdict, error)
}

type agentProfile struct {
	template    string
	temperature float64
	maxTokens   int
}

var (
	securityProfile  = agentProfile{prompt.SecurityAgent, 0.1, 250}
	summaryProfile   = agentProfile{prompt.SummaryAgent, 0.2, 1500}
	probingProfile   = agentProfile{prompt.ProbingAgent, 0.3, 200}
	topicProfile     = agentProfile{prompt.TopicManager, 0.2, 250}
	summarizeProfile = agentProfile{prompt.SummarizeAnswer, 0.2, 200}
)

// LLMAgents implements Agents on top of an LLM provider and prompt templates.
type LLMAgents struct {
	provider llm.LLMProvider
	prompts  *prompt.Store
	logger   logger.ILogger
}

var _ Agents = (*LLMAgents)(nil)

func NewLLMAgents(provider llm.LLMProvider, prompts *prompt.Store, log logger.ILogger) *LLMAgents {
	return &LLMAgents{provider: provider, prompts: prompts, logger: log}
}

func (a *LLMAgents) call(ctx context.Context, module string, p agentProfile, bindings map[string]any) (string, error) {
	text, err := a.prompts.Format(p.template, bindings)
	if err != nil {
		return "", err
	}
	a.logger.Debug(module, "prompt", map[string]interface{}{"prompt": text})

	raw, err := a.provider.Generate(ctx, text,
		llm.WithTemperature(p.temperature),
		llm.WithMaxTokens(p.maxTokens),
	)
	if err != nil {
		a.logger.Error(module, "model call failed", map[string]interface{}{"error": err.Error()})
		return "", fmt.Errorf("%s: %w", module, err)
	}

	raw = strings.TrimSpace(raw)
	a.logger.Info(module, "raw response", map[string]interface{}{"response": raw})
	return raw, nil
}

func (a *LLMAgents) Screen(ctx context.Context, in ScreenInput) (parser.SafetyVerdict, error) {
	raw, err := a.call(ctx, "SecurityAgent", securityProfile, map[string]any{
		"process_context": in.ProcessContext,
		"summary_text":    in.Summary,
		"question_text":   in.Question,
		"answer_text":     in.Answer,
	})
	if err != nil {
		return parser.SafetyVerdict{}, err
	}
	payload := parser.ParseJSONPayload(raw)
	a.logger.Info("SecurityAgent", "parsed result", payload)
	return payload.Safety(), nil
}

// SummarizeAnswer condenses the topic block. An empty reply keeps the input.
func (a *LLMAgents) SummarizeAnswer(ctx context.Context, question, answer string) (string, error) {
	if answer == "" {
		return answer, nil
	}
	raw, err := a.call(ctx, "SummarizeAnswer", summarizeProfile, map[string]any{
		"question_text": question,
		"answer_text":   answer,
	})
	if err != nil {
		return "", err
	}
	if raw == "" {
		return answer, nil
	}
	return raw, nil
}

func (a *LLMAgents) UpdateSummary(ctx context.Context, in SummaryInput) (string, error) {
	return a.call(ctx, "SummaryAgent", summaryProfile, map[string]any{
		"summary_text":    in.Summary,
		"answer_text":     in.Block,
		"process_context": in.ProcessContext,
		"question_text":   in.Question,
		"topic_history":   in.TopicHistory,
	})
}

func (a *LLMAgents) Probe(ctx context.Context, in ProbeInput) (parser.ProbeVerdict, error) {
	raw, err := a.call(ctx, "ProbingAgent", probingProfile, map[string]any{
		"summary_text":    in.Summary,
		"question_text":   in.Question,
		"process_context": in.ProcessContext,
		"topic_history":   in.TopicHistory,
		"answer_text":     in.Answer,
	})
	if err != nil {
		return parser.ProbeVerdict{}, err
	}
	payload := parser.ParseJSONPayload(raw)
	a.logger.Info("ProbingAgent", "parsed result", payload)
	return payload.Probe(), nil
}

func (a *LLMAgents) AssessTopic(ctx context.Context, in TopicInput) (parser.TopicVerdict, error) {
	raw, err := a.call(ctx, "TopicManager", topicProfile, map[string]any{
		"process_context":     in.ProcessContext,
		"summary_text":        in.Summary,
		"topic_defs":          in.Catalog,
		"topics_completed":    in.Completed,
		"current_topic_title": in.CurrentTitle,
		"topic_history":       in.History,
	})
	if err != nil {
		return parser.TopicVerdict{}, err
	}
	payload := parser.ParseJSONPayload(raw)
	a.logger.Info("TopicManager", "parsed result", payload)
	return payload.Topic(), nil
}
