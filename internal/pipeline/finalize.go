// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/imagegen"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// foodKeywords is matched as substrings of the lower-cased query.
var foodKeywords = []string{
	"recipe", "cook", "dish", "food", "ingredient",
	"meal", "cuisine", "bake", "prepare", "kitchen",
}

// imageProviderMarker identifies URLs served by the image provider.
const imageProviderMarker = "openai"

// upstreamErrorPrefix marks an image_url the agent filled with an error
// message instead of a URL.
const upstreamErrorPrefix = "Error"

// IsFoodRelated reports whether query contains any food keyword, ignoring case.
func IsFoodRelated(query string) bool {
	q := strings.ToLower(query)
	for _, kw := range foodKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

// ImageSource labels where an image URL came from. The match is a plain
// substring test, so an image error string that mentions the OpenAI host is
// labelled DALL·E as well.
func ImageSource(imageURL string) string {
	if strings.Contains(strings.ToLower(imageURL), imageProviderMarker) {
		return types.ImageSourceDallE
	}
	return types.ImageSourceOther
}

// needsFallbackImage reports whether the agent's image_url is unusable.
func needsFallbackImage(imageURL string) bool {
	return imageURL == "" || strings.HasPrefix(imageURL, upstreamErrorPrefix)
}

// Finalizer applies the image fallback and the food-content policy to a
// normalized record. It never fails.
type Finalizer struct {
	Images imagegen.Generator
	Logger *zap.Logger
}

// Finalize builds the served response for record and the original query.
// At most one fallback image request is made.
func (f *Finalizer) Finalize(ctx context.Context, record types.ResearchRecord, query string) types.ResponseRecord {
	log := f.logger()

	imageURL := record.ImageURL
	if needsFallbackImage(imageURL) {
		log.Debug("agent image unusable, requesting fallback", zap.String("image_url", imageURL))
		imageURL = imagegen.URLOrError(ctx, f.Images, query)
		if strings.HasPrefix(imageURL, imagegen.ErrorPrefix) {
			log.Warn("fallback image generation failed", zap.String("image_url", imageURL))
		}
	}

	resp := types.ResponseRecord{
		Topic:       record.Topic,
		Summary:     record.Summary,
		Sources:     nonNil(record.Sources),
		ImageURL:    imageURL,
		ImageSource: ImageSource(imageURL),
	}

	if IsFoodRelated(query) {
		resp.Ingredients = nonNil(record.Ingredients)
		resp.Instructions = record.Instructions
		if resp.Instructions == "" {
			resp.Instructions = types.DefaultInstructions
		}
	} else {
		resp.Ingredients = []string{}
		resp.Instructions = ""
	}

	return resp
}

func (f *Finalizer) logger() *zap.Logger {
	if f.Logger == nil {
		return zap.NewNop()
	}
	return f.Logger
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
