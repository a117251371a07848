package core

import (
	"strings"

	"gwi.com/study-assistant/internal/store"
)

type ArtifactKind string

const (
	KindSummary           ArtifactKind = "summary"
	KindFlashcards        ArtifactKind = "flashcards"
	KindQuiz              ArtifactKind = "quiz"
	KindPlan              ArtifactKind = "plan"
	KindTranscriptSummary ArtifactKind = "transcriptSummary"
)

func ParseArtifactKind(s string) (ArtifactKind, bool) {
	switch k := ArtifactKind(strings.TrimSpace(s)); k {
	case KindSummary, KindFlashcards, KindQuiz, KindPlan, KindTranscriptSummary:
		return k, true
	default:
		return "", false
	}
}

// GenerationRequest is one synthesis call's input. For plans, SourceText is the syllabus.
type GenerationRequest struct {
	Kind       ArtifactKind
	SourceText string
	Subject    string
	ExamDate   string
	OwnerID    string
}

// Artifact is the canonical result; only the fields for Kind are set.
type Artifact struct {
	Kind      ArtifactKind         `json:"kind"`
	Bullets   []string             `json:"bullets,omitempty"`
	Cards     []store.Flashcard    `json:"cards,omitempty"`
	Questions []store.QuizQuestion `json:"questions,omitempty"`
	Plan      []string             `json:"plan,omitempty"`
}

// SummaryText joins bullets one per line, the stored form of a summary.
func (a Artifact) SummaryText() string {
	return strings.Join(a.Bullets, "\n")
}
