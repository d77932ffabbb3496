// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/research-assistant/internal/httputil"
	"github.com/pdiddy/research-assistant/internal/imagegen"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// spoonacularAPIBase is the Spoonacular API root. Declared as a var so tests
// can substitute an httptest server.
var spoonacularAPIBase = "https://api.spoonacular.com"

// ErrNoRecipe is returned when the search yields no recipes.
var ErrNoRecipe = errors.New("No recipe found for the given query.")

// Recipe fetches one recipe with ingredients and instructions from Spoonacular.
// When the recipe has no image, Images is asked for one.
type Recipe struct {
	Client *http.Client
	APIKey string
	Images imagegen.Generator
}

// RecipeResult is the JSON document returned to the model.
type RecipeResult struct {
	Recipe          string   `json:"recipe"`
	PreparationTime any      `json:"preparation_time"`
	Ingredients     []string `json:"ingredients"`
	Instructions    string   `json:"instructions"`
	ImageURL        string   `json:"image_url"`
	Source          string   `json:"source"`
}

func (r *Recipe) Name() string { return "fetch_recipe" }

func (r *Recipe) Description() string {
	return "Fetches detailed food recipes using Spoonacular API."
}

// Run searches for the best matching recipe and returns its details as JSON.
func (r *Recipe) Run(ctx context.Context, input string) (string, error) {
	q := strings.TrimSpace(input)
	if q == "" {
		return "", fmt.Errorf("empty recipe query")
	}

	id, err := r.search(ctx, q)
	if err != nil {
		return "", err
	}

	info, err := r.information(ctx, id)
	if err != nil {
		return "", err
	}

	result := RecipeResult{
		Recipe:          info.Title,
		PreparationTime: info.ReadyInMinutes,
		Ingredients:     make([]string, 0, len(info.ExtendedIngredients)),
		Instructions:    parseInstructions(info.Instructions),
		ImageURL:        info.Image,
		Source:          info.SourceURL,
	}
	if result.Recipe == "" {
		result.Recipe = "Unknown"
	}
	if info.ReadyInMinutes == 0 {
		result.PreparationTime = "Unknown"
	}
	for _, ing := range info.ExtendedIngredients {
		result.Ingredients = append(result.Ingredients, ing.Name)
	}
	if result.ImageURL == "" && r.Images != nil {
		result.ImageURL = imagegen.URLOrError(ctx, r.Images, q)
	}

	out, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("marshaling recipe: %w", err)
	}
	return string(out), nil
}

func (r *Recipe) search(ctx context.Context, q string) (int, error) {
	params := url.Values{
		"query":  {q},
		"apiKey": {r.APIKey},
		"number": {"1"},
	}

	var sr spoonacularSearchResponse
	status, err := r.getJSON(ctx, spoonacularAPIBase+"/recipes/complexSearch?"+params.Encode(), &sr)
	if err != nil {
		return 0, err
	}
	if status != http.StatusOK {
		return 0, fmt.Errorf("Unable to fetch recipe (Status Code: %d)", status)
	}
	if len(sr.Results) == 0 {
		return 0, ErrNoRecipe
	}
	return sr.Results[0].ID, nil
}

func (r *Recipe) information(ctx context.Context, id int) (spoonacularRecipe, error) {
	params := url.Values{"apiKey": {r.APIKey}}
	reqURL := fmt.Sprintf("%s/recipes/%d/information?%s", spoonacularAPIBase, id, params.Encode())

	var info spoonacularRecipe
	status, err := r.getJSON(ctx, reqURL, &info)
	if err != nil {
		return spoonacularRecipe{}, err
	}
	if status != http.StatusOK {
		return spoonacularRecipe{}, fmt.Errorf("Error fetching detailed recipe info (Status Code: %d)", status)
	}
	return info, nil
}

// getJSON decodes the body into dst on 200 and returns the status code.
func (r *Recipe) getJSON(ctx context.Context, reqURL string, dst any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}

	resp, err := httputil.DoWithRetry(ctx, r.Client, req, 0)
	if err != nil {
		return 0, fmt.Errorf("Spoonacular API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return resp.StatusCode, fmt.Errorf("parsing Spoonacular response: %w", err)
	}
	return resp.StatusCode, nil
}

// parseInstructions accepts either a plain string or a list of steps.
func parseInstructions(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return types.DefaultInstructions
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if strings.TrimSpace(s) == "" {
			return types.DefaultInstructions
		}
		return s
	}

	var steps []struct {
		Step string `json:"step"`
	}
	if err := json.Unmarshal(raw, &steps); err == nil {
		parts := make([]string, 0, len(steps))
		for _, st := range steps {
			parts = append(parts, st.Step)
		}
		return strings.Join(parts, " ")
	}

	return types.DefaultInstructions
}

// Spoonacular API JSON structures.
type spoonacularSearchResponse struct {
	Results []struct {
		ID    int    `json:"id"`
		Title string `json:"title"`
	} `json:"results"`
	TotalResults int `json:"totalResults"`
}

type spoonacularRecipe struct {
	ID                  int                     `json:"id"`
	Title               string                  `json:"title"`
	ReadyInMinutes      int                     `json:"readyInMinutes"`
	Image               string                  `json:"image"`
	SourceURL           string                  `json:"sourceUrl"`
	Instructions        json.RawMessage         `json:"instructions"`
	ExtendedIngredients []spoonacularIngredient `json:"extendedIngredients"`
}

type spoonacularIngredient struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
