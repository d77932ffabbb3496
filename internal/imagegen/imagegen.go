// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package imagegen generates illustrative images through the OpenAI image API.
package imagegen

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// ErrorPrefix marks an image_url value that carries a generation failure
// instead of a URL. Values of this form are shown to callers verbatim.
const ErrorPrefix = "Error generating image: "

const (
	defaultModel = openai.CreateImageModelDallE3
	defaultSize  = openai.CreateImageSize1024x1024
)

// Generator produces an image URL for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// DallE generates images with DALL·E.
type DallE struct {
	Client *openai.Client
	Model  string
	Size   string
}

// NewDallE returns a DallE generator, defaulting model and size.
func NewDallE(client *openai.Client, cfg types.ImageConfig) *DallE {
	d := &DallE{Client: client, Model: cfg.Model, Size: cfg.Size}
	if d.Model == "" {
		d.Model = defaultModel
	}
	if d.Size == "" {
		d.Size = defaultSize
	}
	return d
}

// Generate requests a single image and returns its URL.
func (d *DallE) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := d.Client.CreateImage(ctx, openai.ImageRequest{
		Model:          d.Model,
		Prompt:         prompt,
		N:              1,
		Size:           d.Size,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", errors.New("image API returned no image")
	}
	return resp.Data[0].URL, nil
}

// ErrorString renders a generation failure in the form stored in image_url.
func ErrorString(err error) string {
	return fmt.Sprintf("%s%v", ErrorPrefix, err)
}

// URLOrError calls g and folds a failure into the visible error string.
func URLOrError(ctx context.Context, g Generator, prompt string) string {
	url, err := g.Generate(ctx, prompt)
	if err != nil {
		return ErrorString(err)
	}
	return url
}
