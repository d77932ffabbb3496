// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package agent answers research queries with a tool-calling chat model.
// The model plans freely; this package only runs the loop: it declares the
// tools, executes the calls the model asks for, and returns the model's
// final text once it stops calling tools.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/pkg/types"
)

const (
	defaultModel            = openai.GPT4oMini
	defaultMaxIterations    = 25
	defaultMaxExecutionTime = 20 * time.Second

	toolArgument = "input"
)

// ErrBudgetExhausted is returned when the model is still calling tools after
// the iteration limit or the execution time limit.
var ErrBudgetExhausted = errors.New("agent stopped due to iteration limit or time limit")

// Executor produces the agent's final text answer for a query.
type Executor interface {
	Execute(ctx context.Context, query string) (string, error)
}

// Tool is a capability the model can call with a single string argument.
type Tool interface {
	Name() string
	Description() string
	Run(ctx context.Context, input string) (string, error)
}

// OpenAIExecutor drives the OpenAI chat completions API with function tools.
type OpenAIExecutor struct {
	client           *openai.Client
	model            string
	maxIterations    int
	maxExecutionTime time.Duration
	tools            map[string]Tool
	toolDefs         []openai.Tool
	systemPrompt     string
	logger           *zap.Logger
}

// NewOpenAIExecutor builds an executor offering tools to the configured model.
func NewOpenAIExecutor(client *openai.Client, cfg types.AgentConfig, tools []Tool, logger *zap.Logger) (*OpenAIExecutor, error) {
	prompt, err := renderSystemPrompt()
	if err != nil {
		return nil, fmt.Errorf("rendering system prompt: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &OpenAIExecutor{
		client:           client,
		model:            cfg.Model,
		maxIterations:    cfg.MaxIterations,
		maxExecutionTime: cfg.MaxExecutionTime,
		tools:            make(map[string]Tool, len(tools)),
		systemPrompt:     prompt,
		logger:           logger,
	}
	if e.model == "" {
		e.model = defaultModel
	}
	if e.maxIterations <= 0 {
		e.maxIterations = defaultMaxIterations
	}
	if e.maxExecutionTime <= 0 {
		e.maxExecutionTime = defaultMaxExecutionTime
	}

	for _, t := range tools {
		if _, dup := e.tools[t.Name()]; dup {
			return nil, fmt.Errorf("duplicate tool %q", t.Name())
		}
		e.tools[t.Name()] = t
		e.toolDefs = append(e.toolDefs, toolDefinition(t))
	}
	return e, nil
}

// Execute runs the tool-calling loop for query.
func (e *OpenAIExecutor) Execute(ctx context.Context, query string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.maxExecutionTime)
	defer cancel()

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: e.systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: query},
	}

	for iter := 0; iter < e.maxIterations; iter++ {
		req := openai.ChatCompletionRequest{
			Model:    e.model,
			Messages: messages,
		}
		if len(e.toolDefs) > 0 {
			req.Tools = e.toolDefs
		}

		resp, err := e.client.CreateChatCompletion(ctx, req)
		if err != nil {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return "", fmt.Errorf("%w: %v", ErrBudgetExhausted, err)
			}
			return "", fmt.Errorf("chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", errors.New("chat completion returned no choices")
		}

		msg := resp.Choices[0].Message
		if len(msg.ToolCalls) == 0 {
			e.logger.Debug("agent finished", zap.Int("iterations", iter+1))
			return msg.Content, nil
		}

		messages = append(messages, msg)
		for _, call := range msg.ToolCalls {
			output := e.runTool(ctx, call)
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    output,
				ToolCallID: call.ID,
				Name:       call.Function.Name,
			})
		}
	}

	return "", fmt.Errorf("%w: %d iterations", ErrBudgetExhausted, e.maxIterations)
}

// runTool executes one tool call. Failures are reported back to the model
// as a JSON error object so it can recover.
func (e *OpenAIExecutor) runTool(ctx context.Context, call openai.ToolCall) string {
	name := call.Function.Name
	log := e.logger.With(zap.String("tool", name))

	tool, ok := e.tools[name]
	if !ok {
		log.Warn("model requested unknown tool")
		return errorOutput(fmt.Errorf("unknown tool %q", name))
	}

	input, err := decodeArgument(call.Function.Arguments)
	if err != nil {
		log.Warn("invalid tool arguments", zap.Error(err))
		return errorOutput(fmt.Errorf("invalid arguments: %w", err))
	}

	start := time.Now()
	out, err := tool.Run(ctx, input)
	if err != nil {
		log.Warn("tool failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return errorOutput(err)
	}
	log.Debug("tool succeeded", zap.Int("bytes", len(out)), zap.Duration("elapsed", time.Since(start)))
	return out
}

// toolDefinition declares t as a function taking one string argument.
func toolDefinition(t Tool) openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					toolArgument: map[string]any{"type": "string"},
				},
				"required": []string{toolArgument},
			},
		},
	}
}

// decodeArgument extracts the string argument from the model's JSON
// arguments. A bare JSON string is accepted as well.
func decodeArgument(raw string) (string, error) {
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		var s string
		if json.Unmarshal([]byte(raw), &s) == nil {
			return s, nil
		}
		return "", err
	}
	v, ok := args[toolArgument]
	if !ok {
		return "", fmt.Errorf("missing %q", toolArgument)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%q must be a string", toolArgument)
	}
	return s, nil
}

func errorOutput(err error) string {
	b, _ := json.Marshal(map[string]string{"error": err.Error()})
	return string(b)
}
