package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gwi.com/study-assistant/internal/store"
	"gwi.com/study-assistant/internal/utils"
)

func mustParse(t *testing.T, s string) utils.Value {
	t.Helper()
	v, err := utils.ParseJSON(s)
	require.NoError(t, err)
	return v
}

func TestNormalizeQuiz(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want store.QuizQuestion
	}{
		{
			name: "canonical",
			in:   `[{"question":"2+2?","options":["3","4","5","6"],"answer":"4"}]`,
			want: store.QuizQuestion{Question: "2+2?", Options: []string{"3", "4", "5", "6"}, Answer: "4"},
		},
		{
			name: "labelled opts keep document order",
			in:   `[{"prompt":"P","opts":{"x":"A","y":"B"}}]`,
			want: store.QuizQuestion{Question: "P", Options: []string{"A", "B"}, Answer: ""},
		},
		{
			name: "reverse labelled keys",
			in:   `[{"q":"Q","opts":{"D":"four","A":"one"},"ans":"one"}]`,
			want: store.QuizQuestion{Question: "Q", Options: []string{"four", "one"}, Answer: "one"},
		},
		{
			name: "bare string item",
			in:   `["What is DNA?"]`,
			want: store.QuizQuestion{Question: "What is DNA?", Options: []string{}, Answer: ""},
		},
		{
			name: "non-string values rendered as text",
			in:   `[{"text":"Pick","options":[1,true,{"k":"v"}],"correct":2}]`,
			want: store.QuizQuestion{Question: "Pick", Options: []string{"1", "true", `{"k":"v"}`}, Answer: "2"},
		},
		{
			name: "empty question falls through to next alias",
			in:   `[{"question":"","prompt":"fallback","options":["a"],"answer":null,"ans":"a"}]`,
			want: store.QuizQuestion{Question: "fallback", Options: []string{"a"}, Answer: "a"},
		},
		{
			name: "object options ignored",
			in:   `[{"question":"Q","options":{"A":"x"}}]`,
			want: store.QuizQuestion{Question: "Q", Options: []string{}, Answer: ""},
		},
		{
			name: "scalar opts yields no options",
			in:   `[{"question":"Q","opts":"A B C"}]`,
			want: store.QuizQuestion{Question: "Q", Options: []string{}, Answer: ""},
		},
		{
			name: "nothing recognised",
			in:   `[{"foo":"bar"}]`,
			want: store.QuizQuestion{Question: "", Options: []string{}, Answer: ""},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeQuiz(mustParse(t, tt.in))
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0])
		})
	}
}

func TestNormalizeQuizRejects(t *testing.T) {
	for _, in := range []string{`{"question":"Q"}`, `[]`, `[1]`, `[null]`, `[["nested"]]`} {
		_, err := NormalizeQuiz(mustParse(t, in))
		assert.ErrorIs(t, err, ErrNormalization, in)
	}
}

func TestNormalizeFlashcards(t *testing.T) {
	got, err := NormalizeFlashcards(mustParse(t, `[{"question":"Q1","answer":"A1","extra":1},{"answer":"A2","question":"Q2"}]`))
	require.NoError(t, err)
	assert.Equal(t, []store.Flashcard{{Question: "Q1", Answer: "A1"}, {Question: "Q2", Answer: "A2"}}, got)

	for _, in := range []string{
		`[{"question":"Q"}]`,
		`[{"question":"Q","answer":3}]`,
		`[{"q":"Q","a":"A"}]`,
		`["Q"]`,
		`[]`,
		`{"question":"Q","answer":"A"}`,
	} {
		_, err := NormalizeFlashcards(mustParse(t, in))
		assert.ErrorIs(t, err, ErrNormalization, in)
	}
}

func TestNormalizePlan(t *testing.T) {
	got, err := NormalizePlan(mustParse(t, `["Day 1: Unit 1","Day 2: Unit 2"]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"Day 1: Unit 1", "Day 2: Unit 2"}, got)

	for _, in := range []string{`[]`, `["Day 1", 2]`, `{"plan":["Day 1"]}`, `[{"day":1}]`} {
		_, err := NormalizePlan(mustParse(t, in))
		assert.ErrorIs(t, err, ErrNormalization, in)
	}
}

func TestNormalizeBullets(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"sentences", "A. B. C.", []string{"- A", "- B", "- C"}},
		{"keeps existing marker", "-Already marked. Plain one.", []string{"-Already marked", "- Plain one"}},
		{"decimal not split", "Pi is 3.14 roughly. Next point", []string{"- Pi is 3.14 roughly", "- Next point"}},
		{"capped at six", "1a. 2b. 3c. 4d. 5e. 6f. 7g. 8h.", []string{"- 1a", "- 2b", "- 3c", "- 4d", "- 5e", "- 6f"}},
		{"multi-line verbatim", "- one\n\n  - two  \n* three\n", []string{"- one", "- two", "* three"}},
		{"multi-line no cap", "a\nb\nc\nd\ne\nf\ng", []string{"a", "b", "c", "d", "e", "f", "g"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeBullets(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeBulletsTooShort(t *testing.T) {
	for _, in := range []string{"", "   ", "ok.", " abc \n"} {
		_, err := NormalizeBullets(in)
		assert.ErrorIs(t, err, ErrNormalization, in)
	}
}
