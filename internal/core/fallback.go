package core

import "gwi.com/study-assistant/internal/store"

const summaryFallbackBullet = "- Summary unavailable right now. Please review the original notes and try again."

// fallbackArtifact is the single place a failed synthesis becomes placeholder content.
// Every call returns fresh slices so callers may keep or mutate them.
func fallbackArtifact(kind ArtifactKind) Artifact {
	switch kind {
	case KindFlashcards:
		return Artifact{Kind: kind, Cards: []store.Flashcard{
			{Question: "Sample Q1", Answer: "Sample A1"},
			{Question: "Sample Q2", Answer: "Sample A2"},
		}}
	case KindQuiz:
		return Artifact{Kind: kind, Questions: []store.QuizQuestion{
			{Question: "Sample question 1?", Options: []string{"Opt A", "Opt B", "Opt C", "Opt D"}, Answer: "Opt A"},
			{Question: "Sample question 2?", Options: []string{"Opt A", "Opt B", "Opt C", "Opt D"}, Answer: "Opt B"},
		}}
	case KindPlan:
		return Artifact{Kind: kind, Plan: []string{
			"Day 1: Revise key definitions and concepts",
			"Day 2: Practice basic problems",
			"Day 3: Cover next set of topics and take short quiz",
			"Day 4: Revise previous topics and solve mixed exercises",
			"Day 5: Mock test and review mistakes",
		}}
	default:
		return Artifact{Kind: kind, Bullets: []string{summaryFallbackBullet}}
	}
}

const transcriptPreviewLimit = 200

// transcriptFallbackSummary is the voice pipeline's summary when the model
// pass fails: a transcript preview, or nothing without a transcript.
func transcriptFallbackSummary(transcript string) string {
	if transcript == "" {
		return ""
	}
	runes := []rune(transcript)
	if len(runes) > transcriptPreviewLimit {
		runes = runes[:transcriptPreviewLimit]
	}
	return string(runes) + "..."
}
