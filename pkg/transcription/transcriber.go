package transcription

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	DefaultModel    = "whisper-1"
	DefaultLanguage = "de"
	DefaultMIMEType = "audio/webm"
	DefaultTimeout  = 90 * time.Second
)

var (
	ErrTranscription = errors.New("transcription failed")
	ErrTimeout       = errors.New("transcription timed out")
	ErrNoSpeech      = errors.New("no speech detected")
)

// Audio is one recorded answer.
type Audio struct {
	Data     []byte
	MIMEType string
}

// Transcriber turns recorded speech into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio Audio, language string) (string, error)
}

// DecodeBase64 builds an Audio from a browser upload. An empty mime type
// defaults to audio/webm.
func DecodeBase64(data, mimeType string) (Audio, error) {
	if i := strings.Index(data, ","); strings.HasPrefix(data, "data:") && i >= 0 {
		data = data[i+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return Audio{}, fmt.Errorf("%w: invalid audio payload: %v", ErrTranscription, err)
	}
	if len(raw) == 0 {
		return Audio{}, fmt.Errorf("%w: empty audio payload", ErrTranscription)
	}
	if mimeType == "" {
		mimeType = DefaultMIMEType
	}
	return Audio{Data: raw, MIMEType: mimeType}, nil
}

// Extension maps a recording mime type to the file suffix the speech API
// uses to detect the container format.
func Extension(mimeType string) string {
	base := strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0])
	switch base {
	case "audio/mp4", "audio/m4a", "audio/x-m4a":
		return ".m4a"
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/wav", "audio/x-wav", "audio/wave":
		return ".wav"
	case "audio/ogg":
		return ".ogg"
	default:
		return ".webm"
	}
}

// WhisperTranscriber calls the OpenAI transcription endpoint.
type WhisperTranscriber struct {
	client openai.Client
	model  string
}

var _ Transcriber = (*WhisperTranscriber)(nil)

func NewWhisperTranscriber(apiKey, model string, opts ...option.RequestOption) *WhisperTranscriber {
	if model == "" {
		model = DefaultModel
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &WhisperTranscriber{client: openai.NewClient(opts...), model: model}
}

func (w *WhisperTranscriber) Transcribe(ctx context.Context, audio Audio, language string) (string, error) {
	params := openai.AudioTranscriptionNewParams{
		Model: openai.AudioModel(w.model),
		File:  openai.File(bytes.NewReader(audio.Data), "audio"+Extension(audio.MIMEType), audio.MIMEType),
	}
	if language != "" {
		params.Language = openai.String(language)
	}

	res, err := w.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// Service bounds every transcription by a timeout and normalizes the
// failure modes callers must tell apart.
type Service struct {
	transcriber Transcriber
	language    string
	timeout     time.Duration
}

func NewService(t Transcriber, language string, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{transcriber: t, language: language, timeout: timeout}
}

// Transcribe returns the trimmed transcript. It returns ErrTimeout when the
// bound elapses, ErrNoSpeech for an empty transcript and ErrTranscription
// for every other failure.
func (s *Service) Transcribe(ctx context.Context, audio Audio) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type reply struct {
		text string
		err  error
	}
	done := make(chan reply, 1)
	go func() {
		text, err := s.transcriber.Transcribe(ctx, audio, s.language)
		done <- reply{text, err}
	}()

	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w after %s", ErrTimeout, s.timeout)
		}
		return "", fmt.Errorf("%w: %v", ErrTranscription, ctx.Err())
	case r := <-done:
		if r.err != nil {
			if errors.Is(r.err, context.DeadlineExceeded) {
				return "", fmt.Errorf("%w after %s", ErrTimeout, s.timeout)
			}
			return "", fmt.Errorf("%w: %v", ErrTranscription, r.err)
		}
		text := strings.TrimSpace(r.text)
		if text == "" {
			return "", ErrNoSpeech
		}
		return text, nil
	}
}
