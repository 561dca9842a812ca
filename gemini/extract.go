package gemini

import (
	"encoding/json"
	"fmt"
	"strings"
)

// NonJSONSentinel marks a synthesized record produced when structured output
// could not be recovered from model text.
const NonJSONSentinel = "API returned non-JSON response"

// ExtractJSONArray finds the first JSON-array substring in free-form model
// output (first '[' to last ']', greedy) and parses it. Models wrap valid
// JSON in prose often enough that trusting the raw text is not an option.
func ExtractJSONArray(raw string) ([]map[string]interface{}, error) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end <= start {
		return nil, ErrNoJSONArray
	}

	var out []map[string]interface{}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoJSONArray, err)
	}
	return out, nil
}

// ExtractJSONObject is the brace-to-brace analog of ExtractJSONArray
func ExtractJSONObject(raw string) (map[string]interface{}, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, ErrNoJSONObject
	}

	var out map[string]interface{}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoJSONObject, err)
	}
	return out, nil
}

// ExtractClauseArray parses an array-shaped response, degrading to a single
// synthetic record carrying the raw text when no valid JSON can be
// recovered, so callers always have something to render.
func ExtractClauseArray(raw string) []map[string]interface{} {
	arr, err := ExtractJSONArray(raw)
	if err != nil {
		return []map[string]interface{}{{
			"clause":      NonJSONSentinel,
			"rawResponse": raw,
		}}
	}
	return arr
}

// ExtractObjectOrSentinel is the object-shaped counterpart of
// ExtractClauseArray.
func ExtractObjectOrSentinel(raw string) map[string]interface{} {
	obj, err := ExtractJSONObject(raw)
	if err != nil {
		return map[string]interface{}{
			"error":       NonJSONSentinel,
			"rawResponse": raw,
		}
	}
	return obj
}
