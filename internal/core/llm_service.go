package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"gwi.com/study-assistant/internal/logger"
)

const (
	DefaultModelName = "gemini-1.5-flash"

	defaultTextTemperature       = float32(0.3)
	defaultTranscribeTemperature = float32(0.1)

	transcribeInstruction = "Transcribe the audio to plain text. Output only the transcript."
)

// TextGenerator is the model surface the synthesis pipeline depends on.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt, modelID string, temperature float32) (string, error)
	TranscribeAudio(ctx context.Context, audio []byte, mimeType, modelID string) (string, error)
}

type LLMOptions struct {
	APIKey                string
	DefaultModel          string
	TranscribeTemperature float32
	ClientOptions         []option.ClientOption
}

// LLMService talks to Gemini. It holds no per-request state.
type LLMService struct {
	log                   *logger.Logger
	client                *genai.Client
	defaultModel          string
	transcribeTemperature float32
}

// NewLLMService builds the client. With no API key it still returns a
// service whose calls all fail with ErrUpstream.
func NewLLMService(ctx context.Context, log *logger.Logger, opts LLMOptions) (*LLMService, error) {
	s := &LLMService{
		log:                   log.With("service", "LLMService"),
		defaultModel:          opts.DefaultModel,
		transcribeTemperature: opts.TranscribeTemperature,
	}
	if s.defaultModel == "" {
		s.defaultModel = DefaultModelName
	}
	if s.transcribeTemperature <= 0 {
		s.transcribeTemperature = defaultTranscribeTemperature
	}

	key := strings.TrimSpace(opts.APIKey)
	if key == "" {
		s.log.Warn("GEMINI_API_KEY missing; model calls will fail")
		return s, nil
	}

	clientOpts := append([]option.ClientOption{option.WithAPIKey(key)}, opts.ClientOptions...)
	client, err := genai.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	s.client = client
	return s, nil
}

func (s *LLMService) Close() {
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			s.log.Error("Error closing GenAI client", "error", err)
		} else {
			s.log.Info("GenAI client closed")
		}
	}
}

// GenerateText returns the first candidate's text, or "" when the model
// produced no candidates.
func (s *LLMService) GenerateText(ctx context.Context, prompt, modelID string, temperature float32) (string, error) {
	model, err := s.model("generate_text", modelID, temperature)
	if err != nil {
		return "", err
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", upstreamErr("generate_text", fmt.Errorf("gemini request failed: %w", err))
	}
	return firstCandidateText(resp), nil
}

// TranscribeAudio sends the audio inline with a fixed verbatim-transcript instruction.
func (s *LLMService) TranscribeAudio(ctx context.Context, audio []byte, mimeType, modelID string) (string, error) {
	model, err := s.model("transcribe_audio", modelID, s.transcribeTemperature)
	if err != nil {
		return "", err
	}

	resp, err := model.GenerateContent(ctx,
		genai.Text(transcribeInstruction),
		genai.Blob{MIMEType: mimeType, Data: audio},
	)
	if err != nil {
		return "", upstreamErr("transcribe_audio", fmt.Errorf("gemini audio request failed: %w", err))
	}
	return firstCandidateText(resp), nil
}

func (s *LLMService) model(op, modelID string, temperature float32) (*genai.GenerativeModel, error) {
	if s.client == nil {
		return nil, upstreamErr(op, fmt.Errorf("GEMINI_API_KEY missing"))
	}
	if modelID == "" {
		modelID = s.defaultModel
	}
	model := s.client.GenerativeModel(modelID)
	model.SetTemperature(temperature)
	return model, nil
}

func firstCandidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(text.String())
}
