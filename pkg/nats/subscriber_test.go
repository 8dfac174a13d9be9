package nats

import (
	"testing"
	"time"

	"bpmn-interview-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		subject  string
		data     string
		wantType string
		wantTime time.Time
	}{
		{
			name:     "type and time from envelope",
			subject:  "events.BPMN_GENERATED",
			data:     `{"event_type":"BPMN_GENERATED","occurred_at":"2026-01-02T03:04:05Z","session_id":"abc"}`,
			wantType: events.BPMNGenerated,
			wantTime: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		},
		{
			name:     "type from subject",
			subject:  "events.INTERVIEW_COMPLETED",
			data:     `{"session_id":"abc"}`,
			wantType: events.InterviewCompleted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evt, err := Decode(tt.subject, []byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, evt.EventType())
			assert.Equal(t, "abc", events.SessionID(evt))
			if !tt.wantTime.IsZero() {
				assert.True(t, tt.wantTime.Equal(evt.Timestamp()))
			}
		})
	}

	_, err := Decode("events.X", []byte("not json"))
	assert.Error(t, err)
}
