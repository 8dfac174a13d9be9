package interview

import (
	"os"
	"path/filepath"
	"testing"

	"bpmn-interview-be/pkg/ai/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecideNextTopic(t *testing.T) {
	catalog := threeTopics(t)

	tests := []struct {
		name      string
		completed []string
		current   string
		verdict   parser.TopicVerdict
		want      Decision
	}{
		{
			name:      "nothing remains",
			completed: []string{"start", "steps", "end"},
			current:   "end",
			verdict:   parser.TopicVerdict{Complete: false},
			want:      Decision{TopicComplete: true, Finished: true},
		},
		{
			name:    "complete moves to first remaining other topic",
			current: "start",
			verdict: parser.TopicVerdict{Complete: true},
			want: Decision{
				TopicComplete: true,
				NextKey:       "steps",
				NextTitle:     "Main steps",
				NextQuestion:  "Can you say something briefly about Main steps?",
			},
		},
		{
			name:      "complete skips already completed topics",
			completed: []string{"steps"},
			current:   "start",
			verdict:   parser.TopicVerdict{Complete: true, NextQuestion: "How does it end?"},
			want: Decision{
				TopicComplete: true,
				NextKey:       "end",
				NextTitle:     "Process end",
				NextQuestion:  "How does it end?",
			},
		},
		{
			name:      "complete on last remaining topic finishes",
			completed: []string{"start", "steps"},
			current:   "end",
			verdict:   parser.TopicVerdict{Complete: true},
			want:      Decision{TopicComplete: true, Finished: true},
		},
		{
			name:    "not complete stays",
			current: "steps",
			verdict: parser.TopicVerdict{NextQuestion: "Who approves?"},
			want: Decision{
				NextKey:      "steps",
				NextTitle:    "Main steps",
				NextQuestion: "Who approves?",
			},
		},
		{
			name:    "unknown current falls back to first topic",
			current: "ghost",
			verdict: parser.TopicVerdict{},
			want: Decision{
				NextKey:      "start",
				NextTitle:    "Process start",
				NextQuestion: "Can you say something briefly about Process start?",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecideNextTopic(catalog, tt.completed, tt.current, tt.verdict))
		})
	}
}

func TestTopicNumberIsClamped(t *testing.T) {
	assert.Equal(t, 1, TopicNumber(0, 3))
	assert.Equal(t, 3, TopicNumber(2, 3))
	assert.Equal(t, 3, TopicNumber(3, 3))
	assert.Equal(t, "Topic 3 of 3: Wrap up", QuestionTitle(5, 3, "Wrap up"))
}

func TestMarkCompletedIsIdempotent(t *testing.T) {
	s := NewSession("s")
	s.markCompleted("a")
	s.markCompleted("a")
	s.markCompleted("")
	s.markCompleted("b")
	assert.Equal(t, []string{"a", "b"}, s.TopicsCompleted)
}

func TestNewCatalogValidation(t *testing.T) {
	_, err := NewCatalog(nil)
	assert.ErrorIs(t, err, ErrEmptyCatalog)

	_, err = NewCatalog([]Topic{{Key: "a", Title: "A"}, {Key: "a", Title: "Again"}})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	_, err = NewCatalog([]Topic{{Key: "a"}})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadConfigFiles(t *testing.T) {
	dir := t.TempDir()
	topicsPath := filepath.Join(dir, "topics.json")
	infoPath := filepath.Join(dir, "process-info.json")
	require.NoError(t, os.WriteFile(topicsPath, []byte(`{"topics":[{"key":"start","title":"Start"},{"key":"end","title":"End"}]}`), 0o644))
	require.NoError(t, os.WriteFile(infoPath, []byte(`{"Personalmanagement":{"context":"HR"},"Einkauf":{"context":"Purchasing"}}`), 0o644))

	catalog, err := LoadCatalog(topicsPath)
	require.NoError(t, err)
	assert.Equal(t, 2, catalog.Len())
	assert.Equal(t, "start", catalog.First().Key)
	assert.Equal(t, []Topic{{Key: "end", Title: "End"}}, catalog.Remaining([]string{"start"}))

	types, err := LoadProcessTypes(infoPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"Einkauf", "Personalmanagement"}, types.Names())
	assert.Equal(t, "HR", types.Context("Personalmanagement"))
	assert.Equal(t, DefaultProcessContext, types.Context("unknown"))
}
