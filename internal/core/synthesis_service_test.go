package core

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gwi.com/study-assistant/internal/store"
)

const ownerID = "user-1"

func TestGenerateFlashcards(t *testing.T) {
	llm := &fakeLLM{reply: "Here are your cards:\n```json\n[{\"question\":\"What is ATP?\",\"answer\":\"Energy currency\"}]\n```"}
	svc, db := newTestSynthesis(t, llm)

	out, err := svc.Generate(context.Background(), GenerationRequest{
		Kind: KindFlashcards, SourceText: "ATP powers the cell.", Subject: "Biology", OwnerID: ownerID,
	})
	require.NoError(t, err)
	assert.False(t, out.FellBack)
	assert.Equal(t, []store.Flashcard{{Question: "What is ATP?", Answer: "Energy currency"}}, out.Artifact.Cards)
	require.NotNil(t, out.Deck)
	assert.Equal(t, "Biology", out.Deck.Subject)

	require.Len(t, llm.prompts, 1)
	assert.True(t, strings.HasPrefix(llm.prompts[0], jsonOnlyInstruction+"\n"))
	assert.Contains(t, llm.prompts[0], "ATP powers the cell.")
	assert.Equal(t, defaultTextTemperature, llm.temperatures[0])

	decks, err := db.ListFlashcardDecks(ownerID)
	require.NoError(t, err)
	require.Len(t, decks, 1)
	assert.Equal(t, out.Artifact.Cards, decks[0].Cards)
}

func TestGenerateFlashcardsMissingAnswerFallsBack(t *testing.T) {
	llm := &fakeLLM{reply: `[{"question":"Q1"}]`}
	svc, _ := newTestSynthesis(t, llm)

	out, err := svc.Generate(context.Background(), GenerationRequest{
		Kind: KindFlashcards, SourceText: "anything", OwnerID: ownerID,
	})
	require.NoError(t, err)
	assert.True(t, out.FellBack)
	assert.Equal(t, []store.Flashcard{
		{Question: "Sample Q1", Answer: "Sample A1"},
		{Question: "Sample Q2", Answer: "Sample A2"},
	}, out.Deck.Cards)
}

func TestGeneratePlanFallsBackOnModelFailure(t *testing.T) {
	llm := &fakeLLM{replyErr: errQuota}
	svc, db := newTestSynthesis(t, llm)

	out, err := svc.Generate(context.Background(), GenerationRequest{
		Kind: KindPlan, SourceText: "Unit 1, Unit 2", ExamDate: "2025-01-10", Subject: "Math", OwnerID: ownerID,
	})
	require.NoError(t, err)
	assert.True(t, out.FellBack)
	require.Len(t, out.Plan.Plan, 5)
	assert.Equal(t, "Day 1: Revise key definitions and concepts", out.Plan.Plan[0])
	assert.Equal(t, "2025-01-10", out.Plan.ExamDate)
	assert.Equal(t, 1, llm.generateCalls())
	assert.Contains(t, llm.prompts[0], "Unit 1, Unit 2")
	assert.Contains(t, llm.prompts[0], "2025-01-10")

	plans, err := db.ListPlans(ownerID)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, out.Plan.Plan, plans[0].Plan)
}

func TestGenerateQuiz(t *testing.T) {
	llm := &fakeLLM{reply: `[{"prompt":"P","opts":{"x":"A","y":"B"},"ans":"A"}]`}
	svc, _ := newTestSynthesis(t, llm)

	source := strings.Repeat("é", 500)
	out, err := svc.Generate(context.Background(), GenerationRequest{
		Kind: KindQuiz, SourceText: source, OwnerID: ownerID,
	})
	require.NoError(t, err)
	assert.False(t, out.FellBack)
	assert.Equal(t, []store.QuizQuestion{{Question: "P", Options: []string{"A", "B"}, Answer: "A"}}, out.Quiz.Questions)
	assert.Equal(t, strings.Repeat("é", quizSourcePreviewLimit), out.Quiz.Source)
}

func TestGenerateQuizEmptyReplyFallsBack(t *testing.T) {
	llm := &fakeLLM{reply: "   "}
	svc, _ := newTestSynthesis(t, llm)

	out, err := svc.Generate(context.Background(), GenerationRequest{
		Kind: KindQuiz, SourceText: "notes", OwnerID: ownerID,
	})
	require.NoError(t, err)
	assert.True(t, out.FellBack)
	require.Len(t, out.Quiz.Questions, 2)
	assert.Equal(t, "Opt A", out.Quiz.Questions[0].Answer)
	assert.Equal(t, "Opt B", out.Quiz.Questions[1].Answer)
}

func TestGenerateSummary(t *testing.T) {
	llm := &fakeLLM{reply: "- Cells divide\n- DNA replicates"}
	svc, db := newTestSynthesis(t, llm)

	out, err := svc.Generate(context.Background(), GenerationRequest{
		Kind: KindSummary, SourceText: "Mitosis lecture notes", OwnerID: ownerID,
	})
	require.NoError(t, err)
	assert.False(t, out.FellBack)
	assert.Equal(t, "- Cells divide\n- DNA replicates", out.Note.Summary)
	assert.Equal(t, "Mitosis lecture notes", out.Note.Content)
	assert.False(t, strings.HasPrefix(llm.prompts[0], jsonOnlyInstruction))

	notes, err := db.ListNotes(ownerID)
	require.NoError(t, err)
	assert.Len(t, notes, 1)
}

func TestComposeMalformedFallsBack(t *testing.T) {
	llm := &fakeLLM{reply: "I'm sorry, I can't do that."}
	svc, _ := newTestSynthesis(t, llm)

	art, fellBack, err := svc.Compose(context.Background(), GenerationRequest{Kind: KindPlan, SourceText: "Unit 1", ExamDate: "tomorrow"})
	require.NoError(t, err)
	assert.True(t, fellBack)
	assert.Equal(t, fallbackArtifact(KindPlan), art)
}

func TestSynthesizeErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		llm  *fakeLLM
		kind ArtifactKind
		want error
	}{
		{"upstream", &fakeLLM{replyErr: errQuota}, KindQuiz, ErrUpstream},
		{"empty reply", &fakeLLM{reply: ""}, KindSummary, ErrUpstream},
		{"malformed", &fakeLLM{reply: "no json here"}, KindFlashcards, ErrMalformedOutput},
		{"wrong shape", &fakeLLM{reply: `{"cards":[]}`}, KindFlashcards, ErrNormalization},
		{"short summary", &fakeLLM{reply: "ok"}, KindSummary, ErrNormalization},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestSynthesis(t, tt.llm)
			_, err := svc.Synthesize(context.Background(), GenerationRequest{Kind: tt.kind, SourceText: "text", ExamDate: "d"})
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, 1, tt.llm.generateCalls())
		})
	}
}

func TestGenerateValidation(t *testing.T) {
	tests := []struct {
		name string
		req  GenerationRequest
		msg  string
	}{
		{"missing content", GenerationRequest{Kind: KindSummary, SourceText: "  ", OwnerID: ownerID}, "content required"},
		{"missing syllabus", GenerationRequest{Kind: KindPlan, ExamDate: "2025-01-10", OwnerID: ownerID}, "syllabus required"},
		{"missing exam date", GenerationRequest{Kind: KindPlan, SourceText: "Unit 1", OwnerID: ownerID}, "examDate required"},
		{"unknown kind", GenerationRequest{Kind: "poem", SourceText: "x", OwnerID: ownerID}, "unknown artifact kind"},
		{"missing owner", GenerationRequest{Kind: KindQuiz, SourceText: "x"}, "userId required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &fakeLLM{reply: "[]"}
			svc, _ := newTestSynthesis(t, llm)
			_, err := svc.Generate(context.Background(), tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidRequest)
			assert.Contains(t, err.Error(), tt.msg)
			assert.Zero(t, llm.generateCalls())
		})
	}
}

func TestFallbackArtifactFreshSlices(t *testing.T) {
	a := fallbackArtifact(KindFlashcards)
	a.Cards[0].Question = "mutated"
	assert.Equal(t, "Sample Q1", fallbackArtifact(KindFlashcards).Cards[0].Question)

	assert.Equal(t, []string{summaryFallbackBullet}, fallbackArtifact(KindSummary).Bullets)
	assert.Equal(t, []string{summaryFallbackBullet}, fallbackArtifact(KindTranscriptSummary).Bullets)
}

func TestTranscriptFallbackSummary(t *testing.T) {
	assert.Equal(t, "", transcriptFallbackSummary(""))
	assert.Equal(t, "short...", transcriptFallbackSummary("short"))
	long := strings.Repeat("ü", 250)
	assert.Equal(t, strings.Repeat("ü", 200)+"...", transcriptFallbackSummary(long))
}
