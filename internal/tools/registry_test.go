package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/argus-ai/argus/internal/history"
	"github.com/argus-ai/argus/internal/tools/executor"
	"github.com/argus-ai/argus/internal/tools/schemas"
	"github.com/argus-ai/argus/pkg/models"
)

type fakeTool struct {
	name    string
	execute func(ctx context.Context, input map[string]any) (*executor.Result, error)
}

func (t *fakeTool) Name() string        { return t.name }
func (t *fakeTool) Description() string { return "test tool" }
func (t *fakeTool) Execute(ctx context.Context, input map[string]any) (*executor.Result, error) {
	return t.execute(ctx, input)
}

func echoTool(name string) *fakeTool {
	return &fakeTool{
		name: name,
		execute: func(ctx context.Context, input map[string]any) (*executor.Result, error) {
			return executor.NewSuccessResult(input), nil
		},
	}
}

func TestRegistryRejectsDuplicateName(t *testing.T) {
	reg := NewRegistry()
	schema := schemas.NewSchema("echo", "test", "echo").Build()

	require.NoError(t, reg.Register(echoTool("echo"), schema))
	err := reg.Register(echoTool("echo"), schema)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestExecuteUnknownToolReturnsStructuredPayload(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(echoTool("echo"),
		schemas.NewSchema("echo", "test", "echo").Build()))

	result := reg.Execute(context.Background(), models.ToolCall{Tool: "ghost"})
	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "unknown tool")

	data, ok := result.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "UNKNOWN_TOOL", data["code"])
	assert.Contains(t, data["available_tools"], "echo")
}

func TestExecuteValidatesRequiredParams(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(echoTool("greet"),
		schemas.NewSchema("greet", "test", "greet someone").
			AddParam("name", "string", "who to greet", true).
			Build()))

	result := reg.Execute(context.Background(), models.ToolCall{Tool: "greet"})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, `missing required parameter "name"`)

	result = reg.Execute(context.Background(), models.ToolCall{
		Tool:       "greet",
		Parameters: map[string]any{"name": ""},
	})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "empty")

	result = reg.Execute(context.Background(), models.ToolCall{
		Tool:       "greet",
		Parameters: map[string]any{"name": "ada"},
	})
	assert.True(t, result.Success)
}

func TestExecuteValidatesEnums(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(echoTool("mode"),
		schemas.NewSchema("mode", "test", "set a mode").
			AddEnum("level", "verbosity", []string{"quiet", "loud"}, true).
			Build()))

	result := reg.Execute(context.Background(), models.ToolCall{
		Tool:       "mode",
		Parameters: map[string]any{"level": "deafening"},
	})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "must be one of")

	result = reg.Execute(context.Background(), models.ToolCall{
		Tool:       "mode",
		Parameters: map[string]any{"level": "quiet"},
	})
	assert.True(t, result.Success)
}

func TestExecuteRecoversPanics(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&fakeTool{
		name: "explode",
		execute: func(ctx context.Context, input map[string]any) (*executor.Result, error) {
			panic("kaboom")
		},
	}, schemas.NewSchema("explode", "test", "always panics").Build()))

	var result *models.ToolResult
	require.NotPanics(t, func() {
		result = reg.Execute(context.Background(), models.ToolCall{Tool: "explode"})
	})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "kaboom")

	data, ok := result.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "explode", data["tool"])
}

func TestExecuteRecordsEveryCallToHistory(t *testing.T) {
	store := history.New(10)
	reg := NewRegistry(WithHistory(store))
	require.NoError(t, reg.Register(echoTool("echo"),
		schemas.NewSchema("echo", "test", "echo").Build()))

	reg.Execute(context.Background(), models.ToolCall{Tool: "echo", Reasoning: "first"})
	reg.Execute(context.Background(), models.ToolCall{Tool: "ghost", Reasoning: "second"})

	recent := store.Recent(10)
	require.Len(t, recent, 2, "success and failure both recorded")
	assert.Equal(t, "ghost", recent[0].Tool)
	assert.False(t, recent[0].Success)
	assert.Equal(t, "echo", recent[1].Tool)
	assert.True(t, recent[1].Success)
}

func TestRunReturnsDataOrError(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(echoTool("echo"),
		schemas.NewSchema("echo", "test", "echo").Build()))

	data, err := reg.Run(context.Background(), "echo", map[string]any{"k": "v"}, "testing")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"k": "v"}, data)

	_, err = reg.Run(context.Background(), "ghost", nil, "testing")
	require.Error(t, err)
}
