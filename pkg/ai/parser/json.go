package parser

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

const (
	DefaultFlagReason = "The answer was classified as inappropriate"
	DefaultFlagNudge  = "Please answer the question about the business process."
)

var (
	flatObjectPattern  = regexp.MustCompile(`(?s)\{[^{}]*\}`)
	outerObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)
)

// Payload is a decoded agent response. An empty Payload means the agent
// produced no usable decision and callers apply their own defaults.
type Payload map[string]any

func (p Payload) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Bool reports whether key holds a truthy value. Missing keys are false.
func (p Payload) Bool(key string) bool {
	switch v := p[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(strings.TrimSpace(v), "true")
	case float64:
		return v != 0
	default:
		return false
	}
}

// String returns the string form of key. Missing or null keys are "".
func (p Payload) String(key string) string {
	switch v := p[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// ParseJSONPayload decodes a JSON object from noisy model output. Recovery
// steps run in order and stop at the first one that succeeds.
func ParseJSONPayload(text string) Payload {
	cleaned := strings.TrimSpace(text)

	if len(cleaned) >= 2 && strings.HasPrefix(cleaned, `"`) && strings.HasSuffix(cleaned, `"`) {
		inner := strings.ToLower(cleaned[1 : len(cleaned)-1])
		switch inner {
		case "flagged":
			return Payload{"flagged": true, "reason": DefaultFlagReason, "nudge": DefaultFlagNudge}
		case "true", "false":
			return Payload{"flagged": inner == "true", "reason": "", "nudge": ""}
		}
	}

	cleaned = stripCodeFence(cleaned)

	if p, ok := decodeObject(cleaned); ok {
		return p
	}
	if m := flatObjectPattern.FindString(cleaned); m != "" {
		if p, ok := decodeObject(m); ok {
			return p
		}
	}
	if m := outerObjectPattern.FindString(cleaned); m != "" {
		if p, ok := decodeObject(m); ok {
			return p
		}
	}

	lower := strings.ToLower(cleaned)
	if strings.Contains(lower, "flagged") {
		flagged := strings.Contains(lower, "true") || strings.TrimSpace(lower) == "flagged"
		nudge := ""
		if flagged {
			nudge = DefaultFlagNudge
		}
		return Payload{"flagged": flagged, "reason": "", "nudge": nudge}
	}
	if strings.Contains(lower, "followup") {
		return Payload{"ask_followup": false, "question": ""}
	}

	return Payload{}
}

func stripCodeFence(s string) string {
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func decodeObject(s string) (Payload, bool) {
	var p Payload
	if err := json.Unmarshal([]byte(s), &p); err != nil || p == nil {
		return nil, false
	}
	return p, true
}
