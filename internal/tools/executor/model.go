package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/argus-ai/argus/internal/model"
)

// AskModel forwards a prompt to the local model service.
type AskModel struct {
	Model model.Model
}

func (t *AskModel) Name() string        { return "ask_model" }
func (t *AskModel) Description() string { return "Ask the local language model" }

func (t *AskModel) Execute(ctx context.Context, input map[string]any) (*Result, error) {
	start := time.Now()

	prompt, ok := input["prompt"].(string)
	if !ok || prompt == "" {
		return NewErrorResult(fmt.Errorf("prompt parameter required")), nil
	}

	req := &model.Request{Prompt: prompt}
	if system, ok := input["system"].(string); ok {
		req.System = system
	}
	if temp, ok := input["temperature"].(float64); ok {
		req.Temperature = temp
	}

	resp, err := t.Model.Generate(ctx, req)
	if err != nil {
		return NewErrorResult(err), nil
	}

	return TimedResult(NewSuccessResult(map[string]any{
		"text":  resp.Text,
		"model": resp.Model,
	}), start), nil
}
