// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize turns the agent's free-form final answer into a typed
// ResearchRecord. The answer is treated as an untrusted payload: it is
// unwrapped from a markdown code fence if present, parsed as JSON, given
// defaults for optional fields, and checked field by field.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/pdiddy/research-assistant/pkg/types"
)

const (
	fenceOpen  = "```json"
	fenceClose = "```"

	// rootField is the validator's name for the document itself.
	rootField = "(root)"
)

// Schema is the JSON schema of the agent's final answer. The agent prompt
// embeds it verbatim, so the model is asked for exactly what is checked here.
const Schema = `{"type": "object", "properties": {
  "topic": {"title": "Topic", "type": "string"},
  "summary": {"title": "Summary", "type": "string"},
  "sources": {"title": "Sources", "type": "array", "items": {"type": "string"}},
  "tools_used": {"title": "Tools Used", "type": "array", "items": {"type": "string"}},
  "ingredients": {"title": "Ingredients", "type": "array", "items": {"type": "string"}, "default": []},
  "instructions": {"title": "Instructions", "type": "string", "default": "No instructions available"},
  "image_url": {"title": "Image Url", "type": "string", "default": ""}
}, "required": ["topic", "summary", "sources", "tools_used"]}`

var recordSchema = mustCompile(Schema)

func mustCompile(schema string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("compiling record schema: %v", err))
	}
	return s
}

var (
	// ErrEmptyOutput is returned when the agent output is empty after trimming.
	ErrEmptyOutput = errors.New("agent output is empty")

	// ErrMalformedJSON is returned when the unwrapped output is not valid JSON.
	ErrMalformedJSON = errors.New("agent output is not valid JSON")
)

// SchemaError reports fields that are missing or carry the wrong JSON type.
type SchemaError struct {
	Violations []string
}

func (e *SchemaError) Error() string {
	return "schema violation: " + strings.Join(e.Violations, "; ")
}

// Normalize parses raw agent output into a ResearchRecord.
//
// Errors: ErrEmptyOutput for blank input, ErrMalformedJSON (wrapping the
// decoder error) when the text does not parse, *SchemaError when required
// fields are absent or any known field has the wrong type.
func Normalize(raw string) (types.ResearchRecord, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return types.ResearchRecord{}, ErrEmptyOutput
	}

	text = stripFence(text)

	var value any
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		return types.ResearchRecord{}, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	if obj, ok := value.(map[string]any); ok {
		applyDefaults(obj)
	}
	return validate(value)
}

// stripFence removes a leading ```json marker and a trailing ``` marker.
// Text without the leading marker is returned unchanged.
func stripFence(text string) string {
	if !strings.HasPrefix(text, fenceOpen) {
		return text
	}
	text = strings.TrimPrefix(text, fenceOpen)
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, fenceClose)
	return strings.TrimSpace(text)
}

// applyDefaults fills optional fields that are absent. A field present with
// a null value is left alone and rejected by the schema.
func applyDefaults(obj map[string]any) {
	if _, ok := obj["ingredients"]; !ok {
		obj["ingredients"] = []any{}
	}
	if _, ok := obj["instructions"]; !ok {
		obj["instructions"] = types.DefaultInstructions
	}
	if _, ok := obj["image_url"]; !ok {
		obj["image_url"] = types.DefaultImageURL
	}
}

// validate checks value against Schema and decodes it on success.
func validate(value any) (types.ResearchRecord, error) {
	result, err := recordSchema.Validate(gojsonschema.NewGoLoader(value))
	if err != nil {
		return types.ResearchRecord{}, fmt.Errorf("validating agent output: %w", err)
	}
	if !result.Valid() {
		return types.ResearchRecord{}, &SchemaError{Violations: violations(result.Errors(), value)}
	}

	data, err := json.Marshal(value)
	if err != nil {
		return types.ResearchRecord{}, fmt.Errorf("re-encoding agent output: %w", err)
	}
	var rec types.ResearchRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return types.ResearchRecord{}, fmt.Errorf("decoding agent output: %w", err)
	}
	return rec, nil
}

// violations renders validator errors as "field: problem" lines, sorted.
func violations(errs []gojsonschema.ResultError, value any) []string {
	var out []string
	for _, e := range errs {
		path := fieldPath(e.Field())
		switch e.Type() {
		case "required":
			name := fmt.Sprint(e.Details()["property"])
			out = append(out, joinPath(path, name)+": field required")
		case "invalid_type":
			got := jsonKind(valueAt(value, e.Field()))
			msg := fmt.Sprintf("expected %v, got %s", e.Details()["expected"], got)
			if path == "" {
				out = append(out, msg)
			} else {
				out = append(out, path+": "+msg)
			}
		default:
			if path == "" {
				out = append(out, e.Description())
			} else {
				out = append(out, path+": "+e.Description())
			}
		}
	}
	sort.Strings(out)
	return out
}

// fieldPath turns a validator field such as "sources.1" into "sources[1]".
// The document root yields "".
func fieldPath(field string) string {
	if field == rootField {
		return ""
	}
	var b strings.Builder
	for i, part := range strings.Split(field, ".") {
		if _, err := strconv.Atoi(part); err == nil {
			b.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			b.WriteString(".")
		}
		b.WriteString(part)
	}
	return b.String()
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

// valueAt looks up the instance value a validator field refers to.
func valueAt(root any, field string) any {
	if field == rootField {
		return root
	}
	cur := root
	for _, part := range strings.Split(field, ".") {
		switch v := cur.(type) {
		case map[string]any:
			cur = v[part]
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(v) {
				return nil
			}
			cur = v[i]
		default:
			return nil
		}
	}
	return cur
}

// jsonKind names the JSON type of a value produced by encoding/json.
func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
