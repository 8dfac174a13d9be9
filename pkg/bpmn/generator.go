package bpmn

import (
	"context"
	"fmt"

	"bpmn-interview-be/pkg/ai/parser"
	"bpmn-interview-be/pkg/llm"
	"bpmn-interview-be/pkg/prompt"
)

const (
	draftTemperature   = 0.7
	improveTemperature = 0.5
	layoutTemperature  = 0.5
)

// Generator runs the model-backed stages of the synthesis pipeline. Each
// stage appends its inputs to a fixed instruction template.
type Generator struct {
	provider llm.LLMProvider
	prompts  *prompt.Store
}

func NewGenerator(provider llm.LLMProvider, prompts *prompt.Store) *Generator {
	return &Generator{provider: provider, prompts: prompts}
}

// Draft turns a process description into a model and runs one improvement
// pass over it.
func (g *Generator) Draft(ctx context.Context, description string) (string, error) {
	tmpl, err := g.prompts.Load(prompt.CoT)
	if err != nil {
		return "", err
	}
	raw, err := g.provider.Generate(ctx,
		tmpl+"\n\nTextual Process Description: "+description,
		llm.WithTemperature(draftTemperature),
	)
	if err != nil {
		return "", fmt.Errorf("draft model: %w", err)
	}
	return g.Improve(ctx, parser.ExtractXMLModel(raw), description)
}

// Improve asks the model to revise xml against the description.
func (g *Generator) Improve(ctx context.Context, xml, description string) (string, error) {
	tmpl, err := g.prompts.Load(prompt.Improvement)
	if err != nil {
		return "", err
	}
	raw, err := g.provider.Generate(ctx,
		tmpl+"\n\nBPMN XML: "+xml+"\n\nTextual Process Description: "+description,
		llm.WithTemperature(improveTemperature),
	)
	if err != nil {
		return "", fmt.Errorf("improve model: %w", err)
	}
	return parser.ExtractXMLModel(raw), nil
}

// Layout asks for a diagram-interchange section for xml. It returns "" when
// the reply holds no BPMNDiagram.
func (g *Generator) Layout(ctx context.Context, xml, description string) (string, error) {
	tmpl, err := g.prompts.Load(prompt.DIGeneration)
	if err != nil {
		return "", err
	}
	text := tmpl + "\n\nBPMN XML: " + xml
	if description != "" {
		text += "\n\nTextual Process Description: " + description
	}
	raw, err := g.provider.Generate(ctx, text, llm.WithTemperature(layoutTemperature))
	if err != nil {
		return "", fmt.Errorf("generate layout: %w", err)
	}
	return parser.ExtractDiagram(raw), nil
}
