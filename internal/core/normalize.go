package core

import (
	"fmt"
	"regexp"
	"strings"

	"gwi.com/study-assistant/internal/store"
	"gwi.com/study-assistant/internal/utils"
)

const (
	maxSentenceBullets = 6
	minSummaryLength   = 5
	bulletMarker       = "-"
)

var sentenceBoundary = regexp.MustCompile(`\.(?:\s+|$)`)

// accessor reads one aliased field. Tables of accessors are evaluated in
// order and the first one that matches wins.
type accessor[T any] struct {
	key  string
	read func(utils.Value) (T, bool)
}

func firstMatch[T any](obj utils.Value, table []accessor[T]) (T, bool) {
	for _, a := range table {
		v, ok := obj.Get(a.key)
		if !ok {
			continue
		}
		if out, ok := a.read(v); ok {
			return out, true
		}
	}
	var zero T
	return zero, false
}

var (
	quizQuestionFields = []accessor[string]{
		{"question", presentText},
		{"prompt", presentText},
		{"q", presentText},
		{"text", presentText},
	}
	quizOptionFields = []accessor[[]string]{
		{"options", sequenceOptions},
		{"opts", labelledOptions},
	}
	quizAnswerFields = []accessor[string]{
		{"answer", presentText},
		{"ans", presentText},
		{"correct", presentText},
	}
)

// NormalizeQuiz maps a JSON array of loosely shaped MCQs onto QuizQuestion.
func NormalizeQuiz(v utils.Value) ([]store.QuizQuestion, error) {
	items, err := nonEmptyArray(v)
	if err != nil {
		return nil, normalizationErr("normalize_quiz", err)
	}

	out := make([]store.QuizQuestion, 0, len(items))
	for i, item := range items {
		q, err := normalizeQuizItem(item)
		if err != nil {
			return nil, normalizationErr("normalize_quiz", fmt.Errorf("item %d: %w", i, err))
		}
		out = append(out, q)
	}
	return out, nil
}

func normalizeQuizItem(item utils.Value) (store.QuizQuestion, error) {
	if s, ok := item.Str(); ok {
		return store.QuizQuestion{Question: s, Options: []string{}, Answer: ""}, nil
	}
	if !item.Is(utils.Object) {
		return store.QuizQuestion{}, fmt.Errorf("expected string or object, got %s", item.Kind())
	}

	question, _ := firstMatch(item, quizQuestionFields)
	options, ok := firstMatch(item, quizOptionFields)
	if !ok {
		options = []string{}
	}
	answer, _ := firstMatch(item, quizAnswerFields)

	return store.QuizQuestion{Question: question, Options: options, Answer: answer}, nil
}

// NormalizeFlashcards requires every item to carry string question and answer fields.
func NormalizeFlashcards(v utils.Value) ([]store.Flashcard, error) {
	items, err := nonEmptyArray(v)
	if err != nil {
		return nil, normalizationErr("normalize_flashcards", err)
	}

	out := make([]store.Flashcard, 0, len(items))
	for i, item := range items {
		if !item.Is(utils.Object) {
			return nil, normalizationErr("normalize_flashcards", fmt.Errorf("item %d: expected object, got %s", i, item.Kind()))
		}
		question, err := requiredString(item, "question")
		if err != nil {
			return nil, normalizationErr("normalize_flashcards", fmt.Errorf("item %d: %w", i, err))
		}
		answer, err := requiredString(item, "answer")
		if err != nil {
			return nil, normalizationErr("normalize_flashcards", fmt.Errorf("item %d: %w", i, err))
		}
		out = append(out, store.Flashcard{Question: question, Answer: answer})
	}
	return out, nil
}

// NormalizePlan accepts only a non-empty array of strings.
func NormalizePlan(v utils.Value) ([]string, error) {
	items, err := nonEmptyArray(v)
	if err != nil {
		return nil, normalizationErr("normalize_plan", err)
	}

	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.Str()
		if !ok {
			return nil, normalizationErr("normalize_plan", fmt.Errorf("entry %d: expected string, got %s", i, item.Kind()))
		}
		out = append(out, s)
	}
	return out, nil
}

// NormalizeBullets turns raw model text into bullet lines. Multi-line text
// keeps one bullet per non-blank line; a single line is split on sentence
// boundaries, capped, and given a "- " marker.
func NormalizeBullets(text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if len(text) < minSummaryLength {
		return nil, normalizationErr("normalize_bullets", fmt.Errorf("reply too short (%d chars)", len(text)))
	}

	var bullets []string
	if strings.Contains(text, "\n") {
		for _, line := range strings.Split(text, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				bullets = append(bullets, line)
			}
		}
		return bullets, nil
	}

	for _, fragment := range sentenceBoundary.Split(text, -1) {
		fragment = strings.TrimSpace(fragment)
		if fragment == "" {
			continue
		}
		if !strings.HasPrefix(fragment, bulletMarker) {
			fragment = bulletMarker + " " + fragment
		}
		bullets = append(bullets, fragment)
		if len(bullets) == maxSentenceBullets {
			break
		}
	}
	return bullets, nil
}

func nonEmptyArray(v utils.Value) ([]utils.Value, error) {
	if !v.Is(utils.Array) {
		return nil, fmt.Errorf("expected array, got %s", v.Kind())
	}
	if v.Len() == 0 {
		return nil, fmt.Errorf("empty array")
	}
	return v.Items(), nil
}

func requiredString(obj utils.Value, key string) (string, error) {
	v, ok := obj.Get(key)
	if !ok {
		return "", fmt.Errorf("missing %q", key)
	}
	s, ok := v.Str()
	if !ok {
		return "", fmt.Errorf("%q is %s, not string", key, v.Kind())
	}
	return s, nil
}

// presentText matches any non-null, non-empty value and renders it as text.
func presentText(v utils.Value) (string, bool) {
	if v.Is(utils.Null) {
		return "", false
	}
	s := textOf(v)
	return s, s != ""
}

func sequenceOptions(v utils.Value) ([]string, bool) {
	if !v.Is(utils.Array) {
		return nil, false
	}
	return textsOf(v.Items()), true
}

// labelledOptions takes arrays as-is and {"A": "..."} maps by value in
// document order. Any other non-null value yields no options.
func labelledOptions(v utils.Value) ([]string, bool) {
	switch {
	case v.Is(utils.Array):
		return textsOf(v.Items()), true
	case v.Is(utils.Object):
		return textsOf(v.Values()), true
	case v.Is(utils.Null):
		return nil, false
	default:
		return []string{}, true
	}
}

func textsOf(values []utils.Value) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, textOf(v))
	}
	return out
}

// textOf renders strings verbatim and everything else as compact JSON.
func textOf(v utils.Value) string {
	if s, ok := v.Str(); ok {
		return s
	}
	return v.Compact()
}
