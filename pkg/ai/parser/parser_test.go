package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseJSONPayload(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Payload
	}{
		{
			name:  "quoted flagged literal",
			input: `"FLAGGED"`,
			want:  Payload{"flagged": true, "reason": DefaultFlagReason, "nudge": DefaultFlagNudge},
		},
		{
			name:  "quoted true literal",
			input: ` "true" `,
			want:  Payload{"flagged": true, "reason": "", "nudge": ""},
		},
		{
			name:  "quoted false literal",
			input: `"false"`,
			want:  Payload{"flagged": false, "reason": "", "nudge": ""},
		},
		{
			name:  "fenced json",
			input: "```json\n{\"complete\": true}\n```",
			want:  Payload{"complete": true},
		},
		{
			name:  "bare fence",
			input: "```\n{\"complete\": false}\n```",
			want:  Payload{"complete": false},
		},
		{
			name:  "flat object inside prose",
			input: `Sure! Here is the result: {"flagged": false, "reason": ""} hope it helps`,
			want:  Payload{"flagged": false, "reason": ""},
		},
		{
			name:  "innermost braces win when they parse",
			input: `Result => {"complete": true, "meta": {"k": 1}} done`,
			want:  Payload{"k": float64(1)},
		},
		{
			name:  "outer braces when inner span is not json",
			input: `Result => {"complete": true, "note": "use {x}"} done`,
			want:  Payload{"complete": true, "note": "use {x}"},
		},
		{
			name:  "flagged heuristic true",
			input: `flagged: true because off topic`,
			want:  Payload{"flagged": true, "reason": "", "nudge": DefaultFlagNudge},
		},
		{
			name:  "flagged heuristic false",
			input: `not flagged at all`,
			want:  Payload{"flagged": false, "reason": "", "nudge": ""},
		},
		{
			name:  "followup garbage",
			input: `I think no followup {broken`,
			want:  Payload{"ask_followup": false, "question": ""},
		},
		{
			name:  "garbage",
			input: `the model rambled`,
			want:  Payload{},
		},
		{
			name:  "non object json",
			input: `42`,
			want:  Payload{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseJSONPayload(tt.input))
		})
	}
}

func TestPayloadAccessors(t *testing.T) {
	p := Payload{"complete": "TRUE", "next_question": "What next?", "n": float64(2)}

	assert.True(t, p.Bool("complete"))
	assert.False(t, p.Bool("missing"))
	assert.Equal(t, "What next?", p.Topic().NextQuestion)
	assert.Equal(t, "2", p.String("n"))
	assert.Equal(t, "", p.String("missing"))

	empty := Payload{}
	assert.Equal(t, SafetyVerdict{}, empty.Safety())
	assert.Equal(t, ProbeVerdict{}, empty.Probe())
}

func TestExtractXMLModel(t *testing.T) {
	envelope := `<?xml version="1.0" encoding="UTF-8"?><bpmn:definitions id="d"><bpmn:process id="p"/></bpmn:definitions>`
	bare := `<bpmn:definitions id="d"><bpmn:process id="p"/></bpmn:definitions>`
	unprefixed := `<definitions xmlns="http://www.omg.org/spec/BPMN/20100524/MODEL"><process id="p"/></definitions>`

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"envelope with prose", "Here you go:\n" + envelope + "\nEnjoy", envelope},
		{"definitions fragment", "```xml\n" + bare + "\n```", bare},
		{"unprefixed definitions", "text " + unprefixed + " text", unprefixed},
		{"fallback trims", "  not xml at all \n", "not xml at all"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractXMLModel(tt.input))
		})
	}
}

func TestExtractDiagram(t *testing.T) {
	diagram := `<bpmndi:BPMNDiagram id="D1"><bpmndi:BPMNPlane id="P1" bpmnElement="p"/></bpmndi:BPMNDiagram>`

	assert.Equal(t, diagram, ExtractDiagram("layout:\n"+diagram+"\n"+diagram))
	assert.Equal(t, "", ExtractDiagram("no layout today"))
}
