package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ErrNoJSONSpan is returned by [JSONSpan] when the text contains no
// well-ordered pair of braces to slice.
var ErrNoJSONSpan = errors.New("loregen: no JSON object span found in text")

// StripReasoning discards everything in text up to and including the first
// occurrence of endTag, keeping only what follows. This accommodates models
// that emit visible chain-of-thought before the substantive answer. When
// endTag is empty or absent from the text, the input is returned unchanged.
func StripReasoning(text, endTag string) string {
	if endTag == "" {
		return text
	}
	if idx := strings.Index(text, endTag); idx >= 0 {
		return text[idx+len(endTag):]
	}
	return text
}

// JSONSpan slices text to the span between the first '{' and the last '}',
// inclusive, discarding surrounding prose, markdown fences, or trailing
// commentary some models append. It returns [ErrNoJSONSpan] when either brace
// is missing or they are inverted.
func JSONSpan(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < 0 || end < start {
		return "", fmt.Errorf("%w: %q", ErrNoJSONSpan, truncate(text, 120))
	}
	return text[start : end+1], nil
}

// ParseObject parses content as a JSON object. If strict unmarshalling fails,
// the content is run through jsonrepair and parsed again, which recovers the
// common model mistakes (single quotes, unquoted keys, trailing commas).
func ParseObject(content string) (map[string]any, error) {
	var result map[string]any
	err := json.Unmarshal([]byte(content), &result)
	if err == nil {
		return result, nil
	}

	repairedJSON, repairErr := jsonrepair.JSONRepair(content)
	if repairErr != nil {
		return nil, fmt.Errorf("failed to parse content as JSON object and failed to repair it: parse error: %w, repair error: %v", err, repairErr)
	}

	if err = json.Unmarshal([]byte(repairedJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to parse repaired JSON: %w (original content: %s, repaired: %s)", err, truncate(content, 200), truncate(repairedJSON, 200))
	}
	return result, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
