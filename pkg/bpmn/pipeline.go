package bpmn

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bpmn-interview-be/internal/pkg/logger"
	"bpmn-interview-be/pkg/interview"
	"bpmn-interview-be/pkg/progress"
	"bpmn-interview-be/pkg/prompt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultMaxAttempts bounds the repair loop.
const DefaultMaxAttempts = 3

var (
	ErrNoAnswers  = errors.New("no interview answers to synthesize")
	ErrEmptyModel = errors.New("initial model generation returned nothing")
)

var tracer = otel.Tracer("bpmn-interview-be/pkg/bpmn")

// Progress labels reported while a model is synthesized.
const (
	stepDraft      = "Generating BPMN model..."
	stepCheck      = "Checking completeness..."
	stepLayout     = "Generating diagram layout..."
	stepMerge      = "Merging diagram..."
	stepVisualize  = "Creating visualization..."
	improveStepFmt = "Improving model (attempt %d/%d)..."
)

// Request carries the finished interview into the pipeline.
type Request struct {
	Summaries      map[string]string
	Catalog        *interview.Catalog
	ProcessType    string
	ProcessContext string
}

// Result is the pipeline output. Issues lists what the last completeness
// check still found; it may be non-empty when the repair budget ran out.
type Result struct {
	XML           string        `json:"xml"`
	FlowGraph     string        `json:"flow_graph"`
	Issues        []string      `json:"issues"`
	Attempts      int           `json:"attempts"`
	LayoutApplied bool          `json:"layout_applied"`
	Description   string        `json:"description"`
	Duration      time.Duration `json:"duration"`
}

type Pipeline struct {
	generator   *Generator
	maxAttempts int
	logger      logger.ILogger
}

func NewPipeline(generator *Generator, maxAttempts int, log logger.ILogger) *Pipeline {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Pipeline{generator: generator, maxAttempts: maxAttempts, logger: log}
}

// Describe renders the interview as the textual description fed to every
// stage. Topics appear in catalog order; unanswered ones are skipped.
func Describe(req Request) string {
	parts := []string{
		"Process type: " + req.ProcessType,
		"Context: " + req.ProcessContext,
		"",
	}
	if req.Catalog != nil {
		for _, t := range req.Catalog.Topics() {
			answer, ok := req.Summaries[t.Key]
			if !ok {
				continue
			}
			parts = append(parts, "Topic: "+t.Title, "Answer: "+answer, "")
		}
	}
	return strings.Join(parts, "\n")
}

// Synthesize produces the final model. Layout and merge failures are not
// fatal; the unmerged model is returned instead. A cancelled context still
// aborts the run.
func (p *Pipeline) Synthesize(ctx context.Context, req Request) (*Result, error) {
	if len(req.Summaries) == 0 {
		return nil, ErrNoAnswers
	}

	ctx, span := tracer.Start(ctx, "bpmn.Synthesize")
	defer span.End()
	span.SetAttributes(attribute.String("process_type", req.ProcessType))

	started := time.Now()
	res := &Result{Description: Describe(req)}

	progress.Report(ctx, stepDraft)
	model, err := p.generator.Draft(ctx, res.Description)
	if err != nil {
		return nil, p.fail(span, err)
	}
	if strings.TrimSpace(model) == "" {
		return nil, p.fail(span, ErrEmptyModel)
	}

	progress.Report(ctx, stepCheck)
	res.Issues = CheckCompleteness(model)
	for len(res.Issues) > 0 && res.Attempts < p.maxAttempts {
		progress.Report(ctx, fmt.Sprintf(improveStepFmt, res.Attempts+1, p.maxAttempts))
		p.logger.Info("Pipeline", "repairing model", map[string]interface{}{
			"attempt": res.Attempts + 1,
			"issues":  res.Issues,
		})
		model, err = p.generator.Improve(ctx, model, res.Description)
		if err != nil {
			return nil, p.fail(span, err)
		}
		res.Issues = CheckCompleteness(model)
		res.Attempts++
	}

	progress.Report(ctx, stepLayout)
	fragment, err := p.generator.Layout(ctx, model, "")
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, prompt.ErrTemplateNotFound) {
			return nil, p.fail(span, err)
		}
		p.logger.Warn("Pipeline", "layout generation failed, keeping model without diagram", map[string]interface{}{
			"error": err.Error(),
		})
		fragment = ""
	}

	res.XML = model
	if fragment != "" {
		progress.Report(ctx, stepMerge)
		merged := MergeDiagram(model, fragment)
		res.LayoutApplied = merged != model
		res.XML = merged
	}

	progress.Report(ctx, stepVisualize)
	res.FlowGraph = FlowGraph(res.XML)
	res.Duration = time.Since(started)

	span.SetAttributes(
		attribute.Int("repair_attempts", res.Attempts),
		attribute.Int("remaining_issues", len(res.Issues)),
		attribute.Bool("layout_applied", res.LayoutApplied),
	)
	p.logger.Info("Pipeline", "model synthesized", map[string]interface{}{
		"process_type":   req.ProcessType,
		"attempts":       res.Attempts,
		"issues":         res.Issues,
		"layout_applied": res.LayoutApplied,
		"duration_ms":    res.Duration.Milliseconds(),
	})
	return res, nil
}

func (p *Pipeline) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	p.logger.Error("Pipeline", "synthesis failed", map[string]interface{}{"error": err.Error()})
	return err
}
