// Package protocol provides named multi-step workflows: their registry,
// the dependency-aware executor, and the built-in definitions.
package protocol

import (
	"context"
	"time"
)

// Status is the lifecycle state of one protocol execution.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// StepContext is what a step handler sees: the execution it belongs to and
// the results of the steps that already completed.
type StepContext struct {
	ExecutionID string
	ProtocolID  string
	StepID      string

	// Results maps completed step IDs to their result values.
	Results map[string]any

	// Retries is the step's declared retry budget. The executor never
	// retries; handlers that want retries consume this themselves.
	Retries int
}

// HandlerFunc executes one protocol step.
type HandlerFunc func(ctx context.Context, sc *StepContext) (any, error)

// Step is one named unit of work inside a protocol.
type Step struct {
	ID          string
	Name        string
	Description string

	// DependsOn lists step IDs that must have completed before this step
	// runs. Steps execute in declared order, so a dependency must always
	// be declared earlier in the list.
	DependsOn []string

	Timeout time.Duration
	Retries int
	Handler HandlerFunc
}

// Definition is a named multi-step workflow. Immutable once registered.
type Definition struct {
	ID       string
	Name     string
	Version  string
	Category string

	// Triggers are keywords matched (case-insensitive substring) against
	// user text to find this protocol.
	Triggers []string

	Steps []Step

	// Background marks the protocol as eligible for detached execution.
	Background bool

	// Async marks protocols whose steps tolerate concurrent executions
	// of the same definition.
	Async bool
}

// StepResult is one accumulated step outcome within an execution.
type StepResult struct {
	StepID      string    `json:"step_id"`
	Result      any       `json:"result,omitempty"`
	Error       string    `json:"error,omitempty"`
	Success     bool      `json:"success"`
	CompletedAt time.Time `json:"completed_at"`
}

// Execution is the mutable state of one protocol run. The executor is the
// only writer while the run is in flight.
type Execution struct {
	ID          string
	ProtocolID  string
	Status      Status
	CurrentStep int
	StartedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
	StepResults []StepResult
	LastError   string

	cancel context.CancelFunc
	paused bool
}

// ToolRunner executes a named tool on behalf of a step handler. It is
// satisfied by the tool registry; defining it here keeps the protocol
// package free of a dependency on the tools package.
type ToolRunner interface {
	Run(ctx context.Context, name string, params map[string]any, reasoning string) (any, error)
}
