// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the research-assistant service:
// the normalized agent record, the served response, history entries, and the
// configuration tree read by the CLI.
package types

import "time"

// Defaults applied by the normalizer when the agent omits optional fields.
const (
	DefaultInstructions = "No instructions available"
	DefaultImageURL     = ""
)

// Image source labels reported in ResponseRecord.ImageSource.
const (
	ImageSourceDallE = "OpenAI DALL·E"
	ImageSourceOther = "Agent Generated / Other"
)

// ResearchRecord is the typed form of the agent's final answer after
// normalization. Every field is populated; optional fields carry defaults.
type ResearchRecord struct {
	Topic        string   `json:"topic" yaml:"topic"`
	Summary      string   `json:"summary" yaml:"summary"`
	Sources      []string `json:"sources" yaml:"sources"`
	ToolsUsed    []string `json:"tools_used" yaml:"tools_used"`
	Ingredients  []string `json:"ingredients" yaml:"ingredients"`
	Instructions string   `json:"instructions" yaml:"instructions"`
	ImageURL     string   `json:"image_url" yaml:"image_url"`
}

// ResponseRecord is the body served by POST /query on success.
// Ingredients and Instructions are only populated for food-related queries.
type ResponseRecord struct {
	Topic        string   `json:"topic" yaml:"topic"`
	Summary      string   `json:"summary" yaml:"summary"`
	Sources      []string `json:"sources" yaml:"sources"`
	ImageURL     string   `json:"image_url" yaml:"image_url"`
	ImageSource  string   `json:"image_source" yaml:"image_source"`
	Ingredients  []string `json:"ingredients" yaml:"ingredients"`
	Instructions string   `json:"instructions" yaml:"instructions"`
}

// ErrorResponse is the body served on any failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HistoryEntry is a served response persisted by the history store.
type HistoryEntry struct {
	// ID is a random UUID assigned when the entry is recorded.
	ID string `json:"id" yaml:"id"`

	// Query is the trimmed user query that produced the response.
	Query string `json:"query" yaml:"query"`

	// CreatedAt is the UTC time the response was recorded.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	Response ResponseRecord `json:"response" yaml:"response"`
}
