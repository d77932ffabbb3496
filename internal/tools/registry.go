// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tools implements the capabilities offered to the research agent:
// Wikipedia lookup, Spoonacular recipes, saving notes to disk and image
// generation.
package tools

import (
	"fmt"
	"net/http"

	"github.com/pdiddy/research-assistant/internal/agent"
	"github.com/pdiddy/research-assistant/internal/imagegen"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// Tool names accepted in agent.tools.
const (
	NameWikipedia = "wikipedia"
	NameSave      = "save_text_to_file"
	NameRecipe    = "fetch_recipe"
	NameImage     = "generate_image"
)

// DefaultNames is the tool set offered when none is configured.
var DefaultNames = []string{NameWikipedia, NameSave, NameRecipe}

// Deps carries the shared clients the tools are built from.
type Deps struct {
	HTTP   *http.Client
	Images imagegen.Generator
	Config types.ToolsConfig
}

// Build constructs the named tools in order. An empty names list selects
// DefaultNames.
func Build(names []string, deps Deps) ([]agent.Tool, error) {
	if len(names) == 0 {
		names = DefaultNames
	}
	if deps.HTTP == nil {
		deps.HTTP = http.DefaultClient
	}

	out := make([]agent.Tool, 0, len(names))
	for _, name := range names {
		switch name {
		case NameWikipedia:
			out = append(out, NewWikipedia(deps.HTTP, deps.Config.Wikipedia))
		case NameSave:
			out = append(out, NewSave(deps.Config.Save.Path))
		case NameRecipe:
			if deps.Config.SpoonacularAPIKey == "" {
				return nil, fmt.Errorf("tool %s requires a Spoonacular API key (.secrets/spoonacular-api-key or SPOONACULAR_API_KEY)", name)
			}
			out = append(out, &Recipe{Client: deps.HTTP, APIKey: deps.Config.SpoonacularAPIKey, Images: deps.Images})
		case NameImage:
			if deps.Images == nil {
				return nil, fmt.Errorf("tool %s requires an image generator", name)
			}
			out = append(out, &Image{Generator: deps.Images})
		default:
			return nil, fmt.Errorf("unknown tool %q", name)
		}
	}
	return out, nil
}
