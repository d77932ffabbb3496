// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"bytes"
	"text/template"

	"github.com/pdiddy/research-assistant/internal/normalize"
)

// systemPromptTmpl tells the model to answer only with a JSON object in the
// ResearchRecord shape.
var systemPromptTmpl = template.Must(template.New("system").Parse(`You are a research assistant that will help generate a research paper.
Answer the user query and use necessary tools.
Wrap the output in this format and provide no other text
{{.FormatInstructions}}`))

// formatInstructions embeds the same schema the normalizer validates against.
var formatInstructions = "The output should be formatted as a JSON instance that conforms to the JSON schema below.\n\n" +
	normalize.Schema +
	"\n\nFill ingredients and instructions only when the query is about food or cooking."

func renderSystemPrompt() (string, error) {
	var buf bytes.Buffer
	data := struct{ FormatInstructions string }{FormatInstructions: formatInstructions}
	if err := systemPromptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
