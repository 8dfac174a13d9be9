package factory

import (
	"testing"

	"bpmn-interview-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMProvider(t *testing.T) {
	tests := []struct {
		name      string
		settings  Settings
		wantModel string
		wantErr   error
	}{
		{
			name:      "openai",
			settings:  Settings{Provider: "openai", Model: "gpt-5.2", APIKey: "sk-test"},
			wantModel: "gpt-5.2",
		},
		{
			name:     "openai without key",
			settings: Settings{Provider: "openai", Model: "gpt-5.2"},
			wantErr:  llm.ErrUnauthorized,
		},
		{
			name:      "ollama default url",
			settings:  Settings{Provider: "ollama", Model: "llama3"},
			wantModel: "llama3",
		},
		{
			name:      "huggingface",
			settings:  Settings{Provider: "huggingface", Model: "Qwen/Qwen2.5-72B-Instruct", APIKey: "hf"},
			wantModel: "Qwen/Qwen2.5-72B-Instruct",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewLLMProvider(tt.settings)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantModel, p.ModelName())
		})
	}
}

func TestNewLLMProviderUnsupported(t *testing.T) {
	_, err := NewLLMProvider(Settings{Provider: "carrier-pigeon"})
	assert.Error(t, err)
}
