package executor

import (
	"context"
	"time"

	"github.com/argus-ai/argus/internal/history"
	"github.com/argus-ai/argus/pkg/models"
)

// ExecutionHistory inspects the tool-call history store.
type ExecutionHistory struct {
	History *history.Store
}

func (t *ExecutionHistory) Name() string { return "execution_history" }
func (t *ExecutionHistory) Description() string {
	return "Inspect recorded tool executions"
}

func (t *ExecutionHistory) Execute(ctx context.Context, input map[string]any) (*Result, error) {
	start := time.Now()

	if id, ok := input["id"].(string); ok && id != "" {
		view, available := t.History.Get(id)
		if view == nil {
			return TimedResult(&Result{
				Success: false,
				Error:   "execution not found: " + id,
				Data: models.NotFound{
					Error:        "execution not found: " + id,
					AvailableIDs: available,
				},
			}, start), nil
		}
		return TimedResult(NewSuccessResult(view), start), nil
	}

	limit := 10
	if l, ok := toInt(input["limit"]); ok && l > 0 {
		limit = l
	}

	return TimedResult(NewSuccessResult(map[string]any{
		"executions": t.History.Recent(limit),
		"total":      t.History.Len(),
	}), start), nil
}
