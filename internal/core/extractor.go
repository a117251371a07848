package core

import (
	"fmt"
	"strings"

	"gwi.com/study-assistant/internal/utils"
)

const jsonOnlyInstruction = "Return ONLY valid JSON (no code fences, no extra text)."

// WrapJSONPrompt prefixes every structured-generation prompt with the JSON-only instruction.
func WrapJSONPrompt(prompt string) string {
	return jsonOnlyInstruction + "\n" + prompt
}

// ExtractJSON pulls the JSON value embedded in a model reply. It slices from
// the first '{' or '[' to the last '}' or ']', parses, and on failure retries
// once with code fences stripped.
func ExtractJSON(reply string) (utils.Value, error) {
	candidate := bracketSlice(reply)

	v, err := parseContainer(candidate)
	if err == nil {
		return v, nil
	}

	repaired := strings.TrimSpace(strings.ReplaceAll(candidate, "```", ""))
	v, retryErr := parseContainer(repaired)
	if retryErr == nil {
		return v, nil
	}
	return utils.Value{}, malformedErr("extract_json", fmt.Errorf("%w (after fence strip: %v)", err, retryErr))
}

// parseContainer accepts only a top-level array or object.
func parseContainer(s string) (utils.Value, error) {
	v, err := utils.ParseJSON(s)
	if err != nil {
		return utils.Value{}, err
	}
	if !v.Is(utils.Array) && !v.Is(utils.Object) {
		return utils.Value{}, fmt.Errorf("top-level %s is not an array or object", v.Kind())
	}
	return v, nil
}

func bracketSlice(text string) string {
	first := -1
	for _, open := range []string{"{", "["} {
		if i := strings.Index(text, open); i >= 0 && (first < 0 || i < first) {
			first = i
		}
	}
	last := max(strings.LastIndex(text, "}"), strings.LastIndex(text, "]"))
	if first >= 0 && last > first {
		return text[first : last+1]
	}
	return text
}
