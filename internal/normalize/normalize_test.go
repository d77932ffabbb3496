// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-assistant/pkg/types"
)

const minimalJSON = `{"topic":"Photosynthesis","summary":"Plants turn light into sugar.","sources":["wikipedia"],"tools_used":["wikipedia"]}`

func TestNormalizeFillsDefaults(t *testing.T) {
	rec, err := Normalize(minimalJSON)
	require.NoError(t, err)

	assert.Equal(t, "Photosynthesis", rec.Topic)
	assert.Equal(t, "Plants turn light into sugar.", rec.Summary)
	assert.Equal(t, []string{"wikipedia"}, rec.Sources)
	assert.Equal(t, []string{"wikipedia"}, rec.ToolsUsed)
	assert.NotNil(t, rec.Ingredients)
	assert.Empty(t, rec.Ingredients)
	assert.Equal(t, types.DefaultInstructions, rec.Instructions)
	assert.Equal(t, "", rec.ImageURL)
}

func TestNormalizeKeepsProvidedOptionalFields(t *testing.T) {
	raw := `{
		"topic": "Carbonara",
		"summary": "Roman pasta.",
		"sources": ["spoonacular"],
		"tools_used": ["fetch_recipe"],
		"ingredients": ["pasta", "egg", "cheese"],
		"instructions": "Boil pasta...",
		"image_url": "https://img/x.png",
		"extra": 42
	}`

	rec, err := Normalize(raw)
	require.NoError(t, err)

	assert.Equal(t, []string{"pasta", "egg", "cheese"}, rec.Ingredients)
	assert.Equal(t, "Boil pasta...", rec.Instructions)
	assert.Equal(t, "https://img/x.png", rec.ImageURL)
}

func TestNormalizeEmptyOutput(t *testing.T) {
	for _, raw := range []string{"", "   ", "\n\t  \n"} {
		_, err := Normalize(raw)
		assert.ErrorIs(t, err, ErrEmptyOutput, "input %q", raw)
	}
}

func TestNormalizeStripsFence(t *testing.T) {
	direct, err := Normalize(minimalJSON)
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  string
	}{
		{"newlines", "```json\n" + minimalJSON + "\n```"},
		{"surrounding whitespace", "  \n```json\n" + minimalJSON + "\n```\n  "},
		{"single line", "```json" + minimalJSON + "```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fenced, err := Normalize(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, direct, fenced)
		})
	}
}

func TestNormalizeMalformedJSON(t *testing.T) {
	tests := []string{
		"{topic: oops}",
		"Here is your answer: the sky is blue.",
		`{"topic": "unterminated"`,
		"```\n" + minimalJSON + "\n```",
		"Agent stopped due to iteration limit or time limit.",
	}
	for _, raw := range tests {
		_, err := Normalize(raw)
		require.Error(t, err, "input %q", raw)
		assert.ErrorIs(t, err, ErrMalformedJSON, "input %q", raw)

		var schemaErr *SchemaError
		assert.False(t, errors.As(err, &schemaErr))
	}
}

func TestNormalizeSchemaViolations(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantPart string
	}{
		{
			name:     "missing topic",
			raw:      `{"summary":"s","sources":[],"tools_used":[]}`,
			wantPart: "topic: field required",
		},
		{
			name:     "missing tools_used",
			raw:      `{"topic":"t","summary":"s","sources":[]}`,
			wantPart: "tools_used: field required",
		},
		{
			name:     "summary wrong type",
			raw:      `{"topic":"t","summary":7,"sources":[],"tools_used":[]}`,
			wantPart: "summary: expected string, got number",
		},
		{
			name:     "sources not an array",
			raw:      `{"topic":"t","summary":"s","sources":"wikipedia","tools_used":[]}`,
			wantPart: "sources: expected array, got string",
		},
		{
			name:     "sources element wrong type",
			raw:      `{"topic":"t","summary":"s","sources":["a",1],"tools_used":[]}`,
			wantPart: "sources[1]: expected string, got number",
		},
		{
			name:     "explicit null ingredients",
			raw:      `{"topic":"t","summary":"s","sources":[],"tools_used":[],"ingredients":null}`,
			wantPart: "ingredients: expected array, got null",
		},
		{
			name:     "top-level array",
			raw:      `["topic"]`,
			wantPart: "expected object, got array",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.raw)
			require.Error(t, err)

			var schemaErr *SchemaError
			require.True(t, errors.As(err, &schemaErr), "want *SchemaError, got %T", err)
			assert.Contains(t, schemaErr.Error(), tt.wantPart)
			assert.NotErrorIs(t, err, ErrMalformedJSON)
		})
	}
}

func TestNormalizeReportsAllViolations(t *testing.T) {
	_, err := Normalize(`{"topic":1}`)

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Len(t, schemaErr.Violations, 4)
}

func TestNormalizeViolationsAreSorted(t *testing.T) {
	_, err := Normalize(`{"summary":1,"sources":["a",2]}`)

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []string{
		"sources[1]: expected string, got number",
		"summary: expected string, got number",
		"tools_used: field required",
		"topic: field required",
	}, schemaErr.Violations)
}

func TestSchemaDefaultsMatchRecordDefaults(t *testing.T) {
	var schema struct {
		Type       string                    `json:"type"`
		Properties map[string]map[string]any `json:"properties"`
		Required   []string                  `json:"required"`
	}
	require.NoError(t, json.Unmarshal([]byte(Schema), &schema))

	assert.Equal(t, "object", schema.Type)
	assert.ElementsMatch(t, []string{"topic", "summary", "sources", "tools_used"}, schema.Required)
	assert.Equal(t, types.DefaultInstructions, schema.Properties["instructions"]["default"])
	assert.Equal(t, types.DefaultImageURL, schema.Properties["image_url"]["default"])
}

func TestFieldPath(t *testing.T) {
	assert.Equal(t, "", fieldPath(rootField))
	assert.Equal(t, "summary", fieldPath("summary"))
	assert.Equal(t, "sources[1]", fieldPath("sources.1"))
}

func TestStripFence(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"```json\n{}\n```", "{}"},
		{"```json {} ```", "{}"},
		{"{}", "{}"},
		{"```\n{}\n```", "```\n{}\n```"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stripFence(tt.in), "input %q", tt.in)
	}
}
