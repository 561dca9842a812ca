package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONArray(t *testing.T) {
	raw := `Sure! Here are the risky clauses:

[{"clause": "We may terminate your account.", "riskLevel": "High"}]

Let me know if you need anything else.`

	arr, err := ExtractJSONArray(raw)
	require.NoError(t, err)
	require.Len(t, arr, 1)
	assert.Equal(t, "We may terminate your account.", arr[0]["clause"])
	assert.Equal(t, "High", arr[0]["riskLevel"])
}

func TestExtractJSONArrayNoArray(t *testing.T) {
	_, err := ExtractJSONArray("I could not produce structured output, sorry.")
	assert.ErrorIs(t, err, ErrNoJSONArray)
}

func TestExtractJSONArrayGreedyBounds(t *testing.T) {
	// Bounds land on the sole bracket pair, but numbers are not clause objects
	_, err := ExtractJSONArray(`First list [1, 2] and second list [3, 4`)
	assert.ErrorIs(t, err, ErrNoJSONArray)

	// First '[' to last ']' spans both arrays, producing invalid JSON
	_, err = ExtractJSONArray(`prose ["a"] more prose ["b"] end`)
	assert.ErrorIs(t, err, ErrNoJSONArray)

	arr, err := ExtractJSONArray(`[{"clause": "x"}] trailing prose without brackets`)
	require.NoError(t, err)
	assert.Len(t, arr, 1)
}

func TestExtractJSONObject(t *testing.T) {
	obj, err := ExtractJSONObject(`The result: {"overallRiskScore": 65} as requested.`)
	require.NoError(t, err)
	assert.Equal(t, float64(65), obj["overallRiskScore"])
}

func TestExtractJSONObjectMissing(t *testing.T) {
	_, err := ExtractJSONObject("plain text answer")
	assert.ErrorIs(t, err, ErrNoJSONObject)
}

func TestExtractClauseArraySentinel(t *testing.T) {
	raw := "The model refused to produce JSON."

	records := ExtractClauseArray(raw)
	require.Len(t, records, 1)
	assert.Equal(t, NonJSONSentinel, records[0]["clause"])
	assert.Equal(t, raw, records[0]["rawResponse"])
}

func TestExtractClauseArrayValid(t *testing.T) {
	records := ExtractClauseArray(`[{"clause": "a"}, {"clause": "b"}]`)
	require.Len(t, records, 2)
	assert.Equal(t, "b", records[1]["clause"])
}

func TestExtractObjectOrSentinel(t *testing.T) {
	raw := "no braces here"

	obj := ExtractObjectOrSentinel(raw)
	assert.Equal(t, NonJSONSentinel, obj["error"])
	assert.Equal(t, raw, obj["rawResponse"])

	obj = ExtractObjectOrSentinel(`{"predictions": []}`)
	assert.NotContains(t, obj, "error")
	assert.Contains(t, obj, "predictions")
}
