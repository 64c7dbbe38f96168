// Package tools provides the unified tool registry: schemas plus executors,
// with parameter validation, panic containment, and history recording on
// every call.
package tools

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/argus-ai/argus/internal/errors"
	"github.com/argus-ai/argus/internal/history"
	"github.com/argus-ai/argus/internal/memory"
	"github.com/argus-ai/argus/internal/model"
	"github.com/argus-ai/argus/internal/stats"
	"github.com/argus-ai/argus/internal/tools/executor"
	"github.com/argus-ai/argus/internal/tools/schemas"
	"github.com/argus-ai/argus/pkg/models"
)

// Registry combines schemas and executors for the closed tool catalog.
type Registry struct {
	schemas   *schemas.Registry
	executors map[string]executor.Tool
	order     []string
	history   *history.Store
	collector *stats.Collector
	logger    *zap.Logger
}

// RegistryOption configures the registry.
type RegistryOption func(*Registry)

// WithHistory records every call to the given history store.
func WithHistory(store *history.Store) RegistryOption {
	return func(r *Registry) { r.history = store }
}

// WithCollector counts tool calls on the given collector.
func WithCollector(collector *stats.Collector) RegistryOption {
	return func(r *Registry) { r.collector = collector }
}

// WithLogger sets the structured logger.
func WithLogger(logger *zap.Logger) RegistryOption {
	return func(r *Registry) { r.logger = logger }
}

// NewRegistry creates an empty tool registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		schemas:   schemas.NewRegistry(),
		executors: make(map[string]executor.Tool),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a tool with its schema. Duplicate names are rejected.
func (r *Registry) Register(tool executor.Tool, schema *schemas.Schema) error {
	name := tool.Name()
	if name == "" || schema == nil || schema.Name != name {
		return apperrors.User(apperrors.CodeInvalidParameters,
			fmt.Sprintf("tool registration requires a schema named after the tool, got %q", name))
	}
	if _, exists := r.executors[name]; exists {
		return apperrors.User(apperrors.CodeInvalidParameters,
			fmt.Sprintf("tool %q already registered", name))
	}
	r.executors[name] = tool
	r.order = append(r.order, name)
	r.schemas.Register(schema)
	return nil
}

// Schemas returns the schema registry.
func (r *Registry) Schemas() *schemas.Registry {
	return r.schemas
}

// Names returns all tool names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Execute runs one tool call end to end: unknown-name check, parameter
// validation, panic-contained dispatch, and history recording. It never
// returns a nil result and never panics; failures come back as structured
// payloads so callers and history always see a well-formed record.
func (r *Registry) Execute(ctx context.Context, call models.ToolCall) *models.ToolResult {
	start := time.Now()
	result := r.dispatch(ctx, call)
	result.Tool = call.Tool
	result.DurationMs = time.Since(start).Milliseconds()

	if r.collector != nil {
		r.collector.RecordToolCall()
		if !result.Success {
			r.collector.RecordError()
		}
	}
	if r.history != nil {
		id := r.history.Record(call.Tool, call.Parameters, *result, call.Reasoning)
		r.logger.Debug("tool executed",
			zap.String("tool", call.Tool),
			zap.String("execution", id),
			zap.Bool("success", result.Success),
			zap.Int64("duration_ms", result.DurationMs))
	}
	return result
}

// Run satisfies the protocol step runner contract: successful calls yield
// the tool's data payload, failed calls an error.
func (r *Registry) Run(ctx context.Context, name string, params map[string]any, reasoning string) (any, error) {
	result := r.Execute(ctx, models.ToolCall{Tool: name, Parameters: params, Reasoning: reasoning})
	if !result.Success {
		return nil, apperrors.New(apperrors.CodeToolExecutionFailed, result.Error, apperrors.CategoryPermanent)
	}
	return result.Data, nil
}

func (r *Registry) dispatch(ctx context.Context, call models.ToolCall) (result *models.ToolResult) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("tool panicked", zap.String("tool", call.Tool), zap.Any("panic", rec))
			result = failure(apperrors.CodeToolExecutionFailed,
				fmt.Sprintf("tool %q panicked: %v", call.Tool, rec),
				map[string]any{"error": fmt.Sprintf("%v", rec), "tool": call.Tool})
		}
	}()

	tool, ok := r.executors[call.Tool]
	if !ok {
		available := r.Names()
		sort.Strings(available)
		return failure(apperrors.CodeUnknownTool,
			fmt.Sprintf("unknown tool %q", call.Tool),
			map[string]any{
				"error":           fmt.Sprintf("unknown tool %q", call.Tool),
				"tool":            call.Tool,
				"available_tools": available,
			})
	}

	if err := r.validate(call.Tool, call.Parameters); err != nil {
		return failure(apperrors.CodeInvalidParameters, err.Error(),
			map[string]any{"error": err.Error(), "tool": call.Tool})
	}

	res, err := tool.Execute(ctx, call.Parameters)
	if err != nil {
		return failure(apperrors.CodeToolExecutionFailed, err.Error(),
			map[string]any{"error": err.Error(), "tool": call.Tool})
	}
	return &models.ToolResult{
		Success: res.Success,
		Data:    res.Data,
		Error:   res.Error,
	}
}

// validate enforces the schema's required parameters and enum constraints.
func (r *Registry) validate(name string, params map[string]any) error {
	schema, ok := r.schemas.Get(name)
	if !ok {
		return nil
	}
	for _, required := range schema.Required() {
		v, present := params[required]
		if !present || v == nil {
			return fmt.Errorf("missing required parameter %q", required)
		}
		if s, isString := v.(string); isString && s == "" {
			return fmt.Errorf("required parameter %q is empty", required)
		}
	}
	for key, value := range params {
		param, declared := schema.Param(key)
		if !declared || len(param.Enum) == 0 {
			continue
		}
		s, isString := value.(string)
		if !isString {
			return fmt.Errorf("parameter %q must be a string, one of %v", key, param.Enum)
		}
		valid := false
		for _, allowed := range param.Enum {
			if s == allowed {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("parameter %q must be one of %v, got %q", key, param.Enum, s)
		}
	}
	return nil
}

func failure(code, message string, data map[string]any) *models.ToolResult {
	data["code"] = code
	return &models.ToolResult{
		Success: false,
		Error:   message,
		Data:    data,
	}
}

// Deps are the collaborators the built-in catalog needs.
type Deps struct {
	Memories  *memory.Store
	History   *history.Store
	Model     model.Model
	Collector *stats.Collector
	Protocols executor.ProtocolController
	DBPath    string
	HTTP      *http.Client
}

// Initialize registers the closed built-in catalog. The catalog is loaded
// once at startup; a failure here is fatal to the process.
func (r *Registry) Initialize(deps Deps) error {
	regs := []struct {
		tool   executor.Tool
		schema *schemas.Schema
	}{
		{
			&executor.FileRead{},
			schemas.NewSchema("file_read", "file", "Read file contents").
				AddParam("path", "string", "Path to the file", true).
				AddParam("offset", "integer", "Starting line (0-based)", false).
				AddParam("limit", "integer", "Maximum lines to read", false).
				Build(),
		},
		{
			&executor.FileList{},
			schemas.NewSchema("file_list", "file", "List directory contents").
				AddParam("path", "string", "Directory path, default current", false).
				AddParam("recursive", "boolean", "List recursively", false).
				Build(),
		},
		{
			&executor.GitStatus{},
			schemas.NewSchema("git_status", "development", "Show git working tree status").
				AddParam("path", "string", "Repository path, default current", false).
				Build(),
		},
		{
			&executor.MemoryStore{Memories: deps.Memories},
			schemas.NewSchema("memory_store", "memory", "Store a memory for later recall").
				AddParam("content", "string", "Text to remember", true).
				AddParam("category", "string", "Memory category, default general", false).
				Build(),
		},
		{
			&executor.MemorySearch{Memories: deps.Memories},
			schemas.NewSchema("memory_search", "memory", "Search stored memories").
				AddParam("query", "string", "Search terms, empty for most recent", false).
				AddParam("limit", "integer", "Maximum results", false).
				Build(),
		},
		{
			&executor.DetectBullshit{},
			schemas.NewSchema("detect_bullshit", "analysis", "Score text for hype and overclaiming").
				AddParam("text", "string", "Text to score", true).
				Build(),
		},
		{
			&executor.ProtocolList{Controller: deps.Protocols},
			schemas.NewSchema("protocol_list", "protocol", "List available protocols").
				Build(),
		},
		{
			&executor.ProtocolStart{Controller: deps.Protocols},
			schemas.NewSchema("protocol_start", "protocol", "Start a protocol matching the request").
				AddParam("query", "string", "Request text matched against protocol triggers", true).
				Build(),
		},
		{
			&executor.ProtocolStatus{Controller: deps.Protocols},
			schemas.NewSchema("protocol_status", "protocol", "Show the status of a protocol execution").
				AddParam("execution_id", "string", "Execution ID returned by protocol_start", true).
				Build(),
		},
		{
			&executor.ExecutionHistory{History: deps.History},
			schemas.NewSchema("execution_history", "system", "Inspect recorded tool executions").
				AddParam("id", "string", "Execution ID for a full record", false).
				AddParam("limit", "integer", "Maximum listing rows", false).
				Build(),
		},
		{
			&executor.SystemStatus{Collector: deps.Collector, DBPath: deps.DBPath},
			schemas.NewSchema("system_status", "system", "Report assistant health and counters").
				Build(),
		},
		{
			&executor.AskModel{Model: deps.Model},
			schemas.NewSchema("ask_model", "model", "Ask the local language model").
				AddParam("prompt", "string", "Prompt text", true).
				AddParam("system", "string", "System prompt", false).
				AddParam("temperature", "number", "Sampling temperature", false).
				Build(),
		},
		{
			&executor.WebFetch{Client: deps.HTTP},
			schemas.NewSchema("web_fetch", "research", "Fetch a URL and convert it to markdown").
				AddParam("url", "string", "HTTP or HTTPS URL", true).
				Build(),
		},
	}

	for _, reg := range regs {
		if err := r.Register(reg.tool, reg.schema); err != nil {
			return fmt.Errorf("load tool catalog: %w", err)
		}
	}
	return nil
}
