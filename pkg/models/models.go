// Package models provides the wire types shared with Argus front ends.
// CLI and API surfaces render these payloads; the core guarantees every
// returned payload carries enough structure to format a meaningful message.
package models

import "time"

// ToolCall describes one tool invocation request.
type ToolCall struct {
	Tool       string         `json:"tool"`
	Parameters map[string]any `json:"parameters"`
	Reasoning  string         `json:"reasoning,omitempty"`
}

// ToolResult is the structured outcome of a tool invocation.
// Exactly one of Data or Error is meaningful; Success tells which.
type ToolResult struct {
	Success    bool   `json:"success"`
	Data       any    `json:"data,omitempty"`
	Error      string `json:"error,omitempty"`
	Tool       string `json:"tool,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// ExecutionView is the full inspection payload for one recorded tool call.
type ExecutionView struct {
	ID        string     `json:"id"`
	ToolName  string     `json:"tool_name"`
	Call      ToolCall   `json:"call"`
	Response  ToolResult `json:"response"`
	Success   bool       `json:"success"`
	Timestamp time.Time  `json:"timestamp"`
}

// ExecutionSummary is one row of the newest-first recent listing.
// Reasoning is truncated for display; fetch the full view by ID for the rest.
type ExecutionSummary struct {
	ID        string `json:"id"`
	Tool      string `json:"tool"`
	Success   bool   `json:"success"`
	Reasoning string `json:"reasoning"`
}

// NotFound is returned when an execution ID cannot be resolved.
type NotFound struct {
	Error        string   `json:"error"`
	AvailableIDs []string `json:"available_ids"`
}

// StepResultView is one accumulated protocol step result.
type StepResultView struct {
	StepID      string    `json:"step_id"`
	Result      any       `json:"result,omitempty"`
	Error       string    `json:"error,omitempty"`
	Success     bool      `json:"success"`
	CompletedAt time.Time `json:"completed_at"`
}

// ProtocolStatusView is the poll payload for one protocol execution.
type ProtocolStatusView struct {
	ExecutionID string           `json:"execution_id"`
	ProtocolID  string           `json:"protocol_id"`
	Status      string           `json:"status"`
	CurrentStep int              `json:"current_step"`
	StartedAt   time.Time        `json:"started_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
	StepResults []StepResultView `json:"step_results"`
	LastError   string           `json:"last_error,omitempty"`
}

// Reply is the assistant's answer to one user message.
type Reply struct {
	Text       string       `json:"text"`
	Intent     string       `json:"intent"`
	Confidence float64      `json:"confidence"`
	Results    []ToolResult `json:"results,omitempty"`
}
