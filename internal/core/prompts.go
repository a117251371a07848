package core

import (
	"fmt"
	"strings"
)

// BuildPrompt renders the fixed template for req.Kind. JSON kinds are not
// yet wrapped with the JSON-only instruction; see WrapJSONPrompt.
func BuildPrompt(req GenerationRequest) string {
	switch req.Kind {
	case KindFlashcards:
		return flashcardsPrompt(req.SourceText)
	case KindQuiz:
		return quizPrompt(req.SourceText)
	case KindPlan:
		return planPrompt(req.Subject, req.SourceText, req.ExamDate)
	case KindTranscriptSummary:
		return transcriptSummaryPrompt(req.SourceText)
	default:
		return summaryPrompt(req.SourceText)
	}
}

func summaryPrompt(content string) string {
	return "Summarize into 4-6 bullet points:\n" + content
}

func flashcardsPrompt(content string) string {
	return strings.TrimSpace(fmt.Sprintf(`
Create 6 concise Q/A flashcards from this content:
%s

Return ONLY valid JSON:
[
  {"question":"...","answer":"..."}
]`, content))
}

func quizPrompt(content string) string {
	return strings.TrimSpace(fmt.Sprintf(`
Create 5 multiple-choice questions (MCQs) from the following content.
Each question must have exactly 4 options.
Return ONLY valid JSON array like:
[
  {"question":"...","options":["A","B","C","D"],"answer":"Exact option text"}
]

Content:
%s`, content))
}

func planPrompt(subject, syllabus, examDate string) string {
	return strings.TrimSpace(fmt.Sprintf(`
Create a daily study plan for subject %q.
Syllabus:
%s
Exam date: %s

Distribute topics sensibly from today until the exam.
Include revision near the end.
Return STRICT JSON array of strings only:
["Day 1: ...", "Day 2: ...", "Day 3: ..."]`, subject, syllabus, examDate))
}

func transcriptSummaryPrompt(transcript string) string {
	return strings.TrimSpace(fmt.Sprintf(`
You are an expert study assistant. Produce 4 to 6 short concise bullet points that capture the important facts, definitions or steps from the transcript.
- Output ONLY the bullet points (each on its own line starting with a hyphen).
- Do NOT ask for the transcript again and do NOT output anything else.
- Keep each bullet no longer than two short sentences.

Transcript:
%s`, transcript))
}

func wantsJSON(kind ArtifactKind) bool {
	switch kind {
	case KindFlashcards, KindQuiz, KindPlan:
		return true
	default:
		return false
	}
}
