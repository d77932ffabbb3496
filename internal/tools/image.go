package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/research-assistant/internal/imagegen"
)

// Image exposes the image generator to the model.
type Image struct {
	Generator imagegen.Generator
}

func (i *Image) Name() string { return "generate_image" }

func (i *Image) Description() string {
	return "Generates an image based on a text prompt using DALL·E."
}

// Run returns the URL of an image generated for input.
func (i *Image) Run(ctx context.Context, input string) (string, error) {
	prompt := strings.TrimSpace(input)
	if prompt == "" {
		return "", fmt.Errorf("empty image prompt")
	}
	return i.Generator.Generate(ctx, prompt)
}
