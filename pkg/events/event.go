package events

import "time"

// Event types published on the bus under "events.<TYPE>".
const (
	InterviewStarted   = "INTERVIEW_STARTED"
	InterviewCompleted = "INTERVIEW_COMPLETED"
	BPMNGenerated      = "BPMN_GENERATED"
	GenerationFailed   = "BPMN_GENERATION_FAILED"
)

// SubjectPrefix is prepended to every event type to form the NATS subject.
const SubjectPrefix = "events."

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "BPMN_GENERATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// SessionID returns the interview session the event belongs to, if any.
func SessionID(e Event) string {
	if id, ok := e.Payload()["session_id"].(string); ok {
		return id
	}
	return ""
}

// Subject returns the bus subject for an event type.
func Subject(eventType string) string {
	return SubjectPrefix + eventType
}

// TypeFromSubject strips the subject prefix.
func TypeFromSubject(subject string) string {
	if len(subject) > len(SubjectPrefix) && subject[:len(SubjectPrefix)] == SubjectPrefix {
		return subject[len(SubjectPrefix):]
	}
	return subject
}
