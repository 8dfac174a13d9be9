package interview

import (
	"fmt"

	"bpmn-interview-be/pkg/ai/parser"
)

// Decision is the deterministic outcome of a topic-manager round.
type Decision struct {
	// TopicComplete mirrors the agent's signal for the current topic.
	TopicComplete bool `json:"topic_complete"`
	// Finished is set when no topic is left to ask about.
	Finished     bool   `json:"finished"`
	NextKey      string `json:"next_key,omitempty"`
	NextTitle    string `json:"next_title,omitempty"`
	NextQuestion string `json:"next_question,omitempty"`
}

// FallbackQuestion is asked when the agent suggests no question.
func FallbackQuestion(title string) string {
	return fmt.Sprintf("Can you say something briefly about %s?", title)
}

// DecideNextTopic turns the raw agent verdict into the next step. The next
// topic is always the first remaining one in catalog order.
func DecideNextTopic(catalog *Catalog, completed []string, currentKey string, verdict parser.TopicVerdict) Decision {
	remaining := catalog.Remaining(completed)
	if len(remaining) == 0 {
		return Decision{TopicComplete: true, Finished: true}
	}

	var next Topic
	if verdict.Complete {
		found := false
		for _, t := range remaining {
			if t.Key != currentKey {
				next, found = t, true
				break
			}
		}
		if !found {
			return Decision{TopicComplete: true, Finished: true}
		}
	} else {
		current, ok := catalog.Get(currentKey)
		if !ok {
			current = catalog.First()
		}
		next = current
	}

	question := verdict.NextQuestion
	if question == "" {
		question = FallbackQuestion(next.Title)
	}

	return Decision{
		TopicComplete: verdict.Complete,
		NextKey:       next.Key,
		NextTitle:     next.Title,
		NextQuestion:  question,
	}
}
