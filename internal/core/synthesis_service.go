package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gwi.com/study-assistant/internal/logger"
	"gwi.com/study-assistant/internal/store"
	"gwi.com/study-assistant/internal/utils"
)

const quizSourcePreviewLimit = 400

// ArtifactStore persists canonical artifacts.
type ArtifactStore interface {
	CreateNote(userID, content, summary string) (*store.Note, error)
	CreateFlashcardDeck(userID, subject string, cards []store.Flashcard) (*store.FlashcardDeck, error)
	CreateQuiz(userID, subject, source string, questions []store.QuizQuestion) (*store.Quiz, error)
	CreatePlan(userID, subject, examDate string, plan []string) (*store.StudyPlan, error)
}

type SynthesisOptions struct {
	Model       string
	Temperature float32
}

// SynthesisService runs prompt → model → extract → normalize for one
// request, substituting fixed content when any stage fails. It makes
// exactly one model call per request and never retries.
type SynthesisService struct {
	log         *logger.Logger
	llm         TextGenerator
	store       ArtifactStore
	model       string
	temperature float32
}

func NewSynthesisService(log *logger.Logger, llm TextGenerator, artifacts ArtifactStore, opts SynthesisOptions) *SynthesisService {
	if opts.Temperature <= 0 {
		opts.Temperature = defaultTextTemperature
	}
	return &SynthesisService{
		log:         log.With("service", "SynthesisService"),
		llm:         llm,
		store:       artifacts,
		model:       opts.Model,
		temperature: opts.Temperature,
	}
}

// Outcome is what a generation request hands back: the canonical artifact
// plus whichever record persistence created for it.
type Outcome struct {
	Artifact Artifact
	FellBack bool

	Note *store.Note
	Deck *store.FlashcardDeck
	Quiz *store.Quiz
	Plan *store.StudyPlan
}

// Validate is the structural pre-check; it is the only way a generation
// request is rejected outright.
func Validate(req GenerationRequest) error {
	if _, ok := ParseArtifactKind(string(req.Kind)); !ok {
		return invalidRequest("unknown artifact kind %q", req.Kind)
	}
	if strings.TrimSpace(req.SourceText) == "" {
		if req.Kind == KindPlan {
			return invalidRequest("syllabus required")
		}
		return invalidRequest("content required")
	}
	if req.Kind == KindPlan && strings.TrimSpace(req.ExamDate) == "" {
		return invalidRequest("examDate required")
	}
	return nil
}

// Synthesize runs the pipeline once with no fallback. Errors carry the
// taxonomy kind of the stage that failed.
func (s *SynthesisService) Synthesize(ctx context.Context, req GenerationRequest) (Artifact, error) {
	prompt := BuildPrompt(req)
	if wantsJSON(req.Kind) {
		prompt = WrapJSONPrompt(prompt)
	}

	raw, err := s.llm.GenerateText(ctx, prompt, s.model, s.temperature)
	if err != nil {
		if KindOf(err) == "" {
			err = upstreamErr("generate_text", err)
		}
		return Artifact{}, err
	}
	if strings.TrimSpace(raw) == "" {
		return Artifact{}, upstreamErr("generate_text", errors.New("model returned no output"))
	}

	art := Artifact{Kind: req.Kind}
	switch req.Kind {
	case KindSummary, KindTranscriptSummary:
		art.Bullets, err = NormalizeBullets(raw)
		return art, err
	}

	var extracted utils.Value
	if extracted, err = ExtractJSON(raw); err != nil {
		return Artifact{}, err
	}
	switch req.Kind {
	case KindFlashcards:
		art.Cards, err = NormalizeFlashcards(extracted)
	case KindQuiz:
		art.Questions, err = NormalizeQuiz(extracted)
	case KindPlan:
		art.Plan, err = NormalizePlan(extracted)
	default:
		err = invalidRequest("unknown artifact kind %q", req.Kind)
	}
	if err != nil {
		return Artifact{}, err
	}
	return art, nil
}

// Compose validates, synthesizes, and maps any pipeline failure to the
// kind's fallback artifact. Only validation errors are returned.
func (s *SynthesisService) Compose(ctx context.Context, req GenerationRequest) (Artifact, bool, error) {
	if err := Validate(req); err != nil {
		return Artifact{}, false, err
	}

	art, err := s.Synthesize(ctx, req)
	if err == nil {
		return art, false, nil
	}

	s.log.Warn("Synthesis failed; serving fallback content",
		"kind", req.Kind,
		"error_kind", KindOf(err),
		"error", err,
		"user_id", req.OwnerID,
	)
	return fallbackArtifact(req.Kind), true, nil
}

// Generate composes the artifact and persists it for req.OwnerID.
func (s *SynthesisService) Generate(ctx context.Context, req GenerationRequest) (*Outcome, error) {
	if strings.TrimSpace(req.OwnerID) == "" {
		return nil, invalidRequest("userId required")
	}
	art, fellBack, err := s.Compose(ctx, req)
	if err != nil {
		return nil, err
	}

	out := &Outcome{Artifact: art, FellBack: fellBack}
	switch req.Kind {
	case KindSummary, KindTranscriptSummary:
		out.Note, err = s.store.CreateNote(req.OwnerID, req.SourceText, art.SummaryText())
	case KindFlashcards:
		out.Deck, err = s.store.CreateFlashcardDeck(req.OwnerID, req.Subject, art.Cards)
	case KindQuiz:
		out.Quiz, err = s.store.CreateQuiz(req.OwnerID, req.Subject, preview(req.SourceText, quizSourcePreviewLimit), art.Questions)
	case KindPlan:
		out.Plan, err = s.store.CreatePlan(req.OwnerID, req.Subject, req.ExamDate, art.Plan)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save %s: %w", req.Kind, err)
	}
	return out, nil
}

func preview(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
