package output

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type sampleSummary struct {
	Source  string         `json:"source"`
	Count   int            `json:"count"`
	Rate    float64        `json:"rate_per_minute"`
	Scores  []float64      `json:"scores"`
	Nested  map[string]int `json:"nested"`
	Private string         `json:"-"`
}

func sample() sampleSummary {
	return sampleSummary{
		Source: "talk.wav",
		Count:  2,
		Rate:   40.123456,
		Scores: []float64{0.5, 1.25},
		Nested: map[string]int{"b": 2, "a": 1},
	}
}

func TestNewFormatter(t *testing.T) {
	assert.IsType(t, &JSONFormatter{}, NewFormatter("json", 3))
	assert.IsType(t, &YAMLFormatter{}, NewFormatter("yaml", 3))
	assert.IsType(t, &CSVFormatter{}, NewFormatter("csv", 3))
	assert.IsType(t, &TableFormatter{}, NewFormatter("table", 3))
	assert.IsType(t, &JSONFormatter{}, NewFormatter("xml", 3))
}

func TestJSONFormatter(t *testing.T) {
	out, err := NewFormatter("json", 0).Format(sample(), true)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(out), "}\n"))
	assert.Contains(t, string(out), "\n  \"count\": 2")

	var back map[string]any
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, "talk.wav", back["source"])
	assert.NotContains(t, back, "Private")

	compact, err := NewFormatter("json", 0).Format(sample(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(compact), "\n"))
}

func TestYAMLFormatterUsesJSONNames(t *testing.T) {
	out, err := NewFormatter("yaml", 0).Format(sample(), true)
	require.NoError(t, err)

	var back map[string]any
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, "talk.wav", back["source"])
	assert.Equal(t, 2, back["count"])
	assert.InDelta(t, 40.123456, back["rate_per_minute"], 1e-9)
	assert.Contains(t, string(out), "rate_per_minute:")
}

func TestCSVFormatterKeyValue(t *testing.T) {
	out, err := NewFormatter("csv", 2).Format(sample(), false)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	assert.Equal(t, []string{
		"key,value",
		"count,2",
		"nested.a,1",
		"nested.b,2",
		"rate_per_minute,40.12",
		"scores.0,0.50",
		"scores.1,1.25",
		"source,talk.wav",
	}, lines)
}

func TestCSVFormatterRecords(t *testing.T) {
	records := []map[string]any{
		{"file": "a.wav", "fillers": 1},
		{"file": "b.wav", "fillers": 3, "error": "decode failed"},
	}

	out, err := NewFormatter("csv", 3).Format(records, false)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "file,fillers,error", lines[0])
	assert.Equal(t, "a.wav,1,", lines[1])
	assert.Equal(t, "b.wav,3,decode failed", lines[2])
}

func TestTableFormatter(t *testing.T) {
	out, err := NewFormatter("table", 1).Format(map[string]any{
		"fillers": map[string]any{"rate_per_minute": 12.345},
		"source":  "talk.wav",
	}, true)
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "Fillers / Rate Per Minute")
	assert.Contains(t, text, "12.3")
	assert.Contains(t, text, "Source")
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Avg Pitch", Title("avg_pitch"))
	assert.Equal(t, "Fillers / Decisions / 0 / Reason", Title("fillers.decisions.0.reason"))
}

func TestSanitize(t *testing.T) {
	type inner struct {
		Value  float64   `json:"value"`
		Values []float64 `json:"values"`
		Hidden float64   `json:"-"`
	}
	data := map[string]any{
		"nan":   math.NaN(),
		"inner": &inner{Value: math.Inf(1), Values: []float64{1, math.Inf(-1)}, Hidden: 3},
		"array": [2]float64{math.NaN(), 2},
	}

	clean := Sanitize(data).(map[string]any)
	assert.Equal(t, 0.0, clean["nan"])

	in := clean["inner"].(map[string]any)
	assert.Equal(t, 0.0, in["value"])
	assert.Equal(t, []float64{1, 0}, in["values"])
	assert.NotContains(t, in, "Hidden")

	assert.Equal(t, []any{0.0, 2.0}, clean["array"])

	_, err := json.Marshal(clean)
	require.NoError(t, err)

	assert.Nil(t, Sanitize(nil))
	var nilPtr *inner
	assert.Nil(t, Sanitize(nilPtr))
}
