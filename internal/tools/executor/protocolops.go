package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/argus-ai/argus/pkg/models"
)

// ProtocolSummary is the listing row for one registered protocol.
type ProtocolSummary struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Triggers []string `json:"triggers"`
	Steps    int      `json:"steps"`
}

// ProtocolController is the slice of the protocol engine the tools need.
// The assistant wires the registry and executor behind it, which keeps this
// package free of a protocol-package dependency.
type ProtocolController interface {
	Protocols() []ProtocolSummary
	StartByQuery(ctx context.Context, query string) (executionID, protocolID string, err error)
	ExecutionStatus(id string) (*models.ProtocolStatusView, error)
}

// ProtocolList lists the registered protocols.
type ProtocolList struct {
	Controller ProtocolController
}

func (t *ProtocolList) Name() string        { return "protocol_list" }
func (t *ProtocolList) Description() string { return "List available protocols" }

func (t *ProtocolList) Execute(ctx context.Context, input map[string]any) (*Result, error) {
	start := time.Now()

	protocols := t.Controller.Protocols()
	return TimedResult(NewSuccessResult(map[string]any{
		"protocols": protocols,
		"count":     len(protocols),
	}), start), nil
}

// ProtocolStart starts the protocol whose triggers match the query.
type ProtocolStart struct {
	Controller ProtocolController
}

func (t *ProtocolStart) Name() string        { return "protocol_start" }
func (t *ProtocolStart) Description() string { return "Start a protocol matching the request" }

func (t *ProtocolStart) Execute(ctx context.Context, input map[string]any) (*Result, error) {
	start := time.Now()

	query, ok := input["query"].(string)
	if !ok || query == "" {
		return NewErrorResult(fmt.Errorf("query parameter required")), nil
	}

	executionID, protocolID, err := t.Controller.StartByQuery(ctx, query)
	if err != nil {
		return NewErrorResult(err), nil
	}

	return TimedResult(NewSuccessResult(map[string]any{
		"execution_id": executionID,
		"protocol_id":  protocolID,
		"started":      true,
	}), start), nil
}

// ProtocolStatus reports the state of one execution.
type ProtocolStatus struct {
	Controller ProtocolController
}

func (t *ProtocolStatus) Name() string        { return "protocol_status" }
func (t *ProtocolStatus) Description() string { return "Show the status of a protocol execution" }

func (t *ProtocolStatus) Execute(ctx context.Context, input map[string]any) (*Result, error) {
	start := time.Now()

	id, ok := input["execution_id"].(string)
	if !ok || id == "" {
		return NewErrorResult(fmt.Errorf("execution_id parameter required")), nil
	}

	view, err := t.Controller.ExecutionStatus(id)
	if err != nil {
		return NewErrorResult(err), nil
	}
	return TimedResult(NewSuccessResult(view), start), nil
}
