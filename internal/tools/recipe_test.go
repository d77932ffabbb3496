// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-assistant/internal/imagegen"
	"github.com/pdiddy/research-assistant/pkg/types"
)

type stubImages struct {
	url    string
	err    error
	prompt string
}

func (s *stubImages) Generate(_ context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.url, s.err
}

func withSpoonacularServer(t *testing.T, search, info string, searchStatus, infoStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/recipes/complexSearch", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("apiKey"))
		assert.Equal(t, "1", r.URL.Query().Get("number"))
		w.WriteHeader(searchStatus)
		w.Write([]byte(search))
	})
	mux.HandleFunc("/recipes/716429/information", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("apiKey"))
		w.WriteHeader(infoStatus)
		w.Write([]byte(info))
	})
	ts := httptest.NewServer(mux)
	old := spoonacularAPIBase
	spoonacularAPIBase = ts.URL
	t.Cleanup(func() {
		spoonacularAPIBase = old
		ts.Close()
	})
	return ts
}

const carbonaraSearch = `{"results":[{"id":716429,"title":"Spaghetti Carbonara"}],"totalResults":1}`

func decodeRecipe(t *testing.T, out string) RecipeResult {
	t.Helper()
	var r RecipeResult
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	return r
}

func TestRecipeRun(t *testing.T) {
	ts := withSpoonacularServer(t, carbonaraSearch, `{
		"id":716429,"title":"Spaghetti Carbonara","readyInMinutes":25,
		"image":"https://img.spoonacular.com/716429.jpg","sourceUrl":"https://example.com/carbonara",
		"instructions":"Boil pasta. Mix eggs and cheese.",
		"extendedIngredients":[{"id":1,"name":"spaghetti"},{"id":2,"name":"eggs"},{"id":3,"name":"pecorino"}]
	}`, http.StatusOK, http.StatusOK)

	images := &stubImages{url: "https://should-not-be-used"}
	r := &Recipe{Client: ts.Client(), APIKey: "test-key", Images: images}
	out, err := r.Run(context.Background(), "carbonara")
	require.NoError(t, err)

	got := decodeRecipe(t, out)
	assert.Equal(t, "Spaghetti Carbonara", got.Recipe)
	assert.Equal(t, float64(25), got.PreparationTime)
	assert.Equal(t, []string{"spaghetti", "eggs", "pecorino"}, got.Ingredients)
	assert.Equal(t, "Boil pasta. Mix eggs and cheese.", got.Instructions)
	assert.Equal(t, "https://img.spoonacular.com/716429.jpg", got.ImageURL)
	assert.Equal(t, "https://example.com/carbonara", got.Source)
	assert.Empty(t, images.prompt)
}

func TestRecipeRunImageFallback(t *testing.T) {
	info := `{"id":716429,"title":"Spaghetti Carbonara","extendedIngredients":[]}`

	tests := []struct {
		name    string
		images  *stubImages
		wantURL string
	}{
		{"generated", &stubImages{url: "https://oaidalleapi/img.png"}, "https://oaidalleapi/img.png"},
		{"generation failed", &stubImages{err: errors.New("quota")}, imagegen.ErrorPrefix + "quota"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := withSpoonacularServer(t, carbonaraSearch, info, http.StatusOK, http.StatusOK)
			r := &Recipe{Client: ts.Client(), APIKey: "test-key", Images: tt.images}
			out, err := r.Run(context.Background(), "carbonara")
			require.NoError(t, err)

			got := decodeRecipe(t, out)
			assert.Equal(t, tt.wantURL, got.ImageURL)
			assert.Equal(t, "carbonara", tt.images.prompt)
			assert.Equal(t, "Unknown", got.PreparationTime)
			assert.Equal(t, types.DefaultInstructions, got.Instructions)
			assert.NotNil(t, got.Ingredients)
		})
	}
}

func TestRecipeRunErrors(t *testing.T) {
	tests := []struct {
		name         string
		search       string
		searchStatus int
		infoStatus   int
		wantErr      string
	}{
		{"search failure", `{}`, http.StatusPaymentRequired, http.StatusOK, "Unable to fetch recipe (Status Code: 402)"},
		{"no results", `{"results":[]}`, http.StatusOK, http.StatusOK, "No recipe found for the given query."},
		{"info failure", carbonaraSearch, http.StatusOK, http.StatusNotFound, "Error fetching detailed recipe info (Status Code: 404)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := withSpoonacularServer(t, tt.search, `{}`, tt.searchStatus, tt.infoStatus)
			r := &Recipe{Client: ts.Client(), APIKey: "test-key"}
			_, err := r.Run(context.Background(), "carbonara")
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestParseInstructions(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{``, types.DefaultInstructions},
		{`null`, types.DefaultInstructions},
		{`""`, types.DefaultInstructions},
		{`"Stir well."`, "Stir well."},
		{`[{"number":1,"step":"Boil water."},{"number":2,"step":"Add pasta."}]`, "Boil water. Add pasta."},
		{`42`, types.DefaultInstructions},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseInstructions(json.RawMessage(tt.raw)), "raw %q", tt.raw)
	}
}
