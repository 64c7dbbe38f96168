package assistant

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/argus-ai/argus/internal/config"
	"github.com/argus-ai/argus/pkg/models"
)

func newTestCore(t *testing.T) *Core {
	t.Helper()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = dir
	cfg.Paths.DB = filepath.Join(dir, "argus.db")
	cfg.Assistant.DefaultProjectPath = dir

	core, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, core.Close())
	})
	return core
}

func TestNewLoadsFullToolCatalog(t *testing.T) {
	core := newTestCore(t)

	names := core.Tools().Names()
	for _, want := range []string{
		"file_read", "file_list", "git_status", "memory_store", "memory_search",
		"detect_bullshit", "protocol_list", "protocol_start", "protocol_status",
		"execution_history", "system_status", "ask_model", "web_fetch",
	} {
		assert.Contains(t, names, want)
	}
}

func TestHandleMessageProtocolListScenario(t *testing.T) {
	core := newTestCore(t)

	reply, err := core.HandleMessage(context.Background(), "what protocols can you see?")
	require.NoError(t, err)

	assert.Equal(t, "protocol", reply.Intent)
	require.Len(t, reply.Results, 1)
	require.True(t, reply.Results[0].Success)

	data := reply.Results[0].Data.(map[string]any)
	assert.Equal(t, 3, data["count"], "built-in protocols registered")
}

func TestHandleMessageRecordsHistory(t *testing.T) {
	core := newTestCore(t)

	_, err := core.HandleMessage(context.Background(), "what protocols can you see?")
	require.NoError(t, err)

	recent := core.History().Recent(10)
	require.Len(t, recent, 1)
	assert.Equal(t, "protocol_list", recent[0].Tool)
}

func TestHandleMessageDetectBullshit(t *testing.T) {
	core := newTestCore(t)

	reply, err := core.HandleMessage(context.Background(),
		"analyze this for bullshit: our disruptive synergy always wins")
	require.NoError(t, err)

	assert.Equal(t, "analysis", reply.Intent)
	require.Len(t, reply.Results, 1)
	require.True(t, reply.Results[0].Success)

	data := reply.Results[0].Data.(map[string]any)
	assert.Greater(t, data["score"], 0.0)
}

func TestHandleMessageSelfTestSentinel(t *testing.T) {
	core := newTestCore(t)

	reply, err := core.HandleMessage(context.Background(), "please run a self-test")
	require.NoError(t, err)

	require.Len(t, reply.Results, 1)
	report, ok := reply.Results[0].Data.(*SelfTestReport)
	require.True(t, ok)
	assert.True(t, report.Passed(), report.Summary())
	assert.NotEmpty(t, reply.Text)
}

func TestHandleMessageMemoryRoundTrip(t *testing.T) {
	core := newTestCore(t)

	reply, err := core.HandleMessage(context.Background(),
		"remember that the staging box is 10.0.0.7")
	require.NoError(t, err)
	assert.Equal(t, "memory", reply.Intent)
	require.Len(t, reply.Results, 1)
	require.True(t, reply.Results[0].Success, reply.Results[0].Error)

	reply, err = core.HandleMessage(context.Background(),
		"search your memory for staging")
	require.NoError(t, err)
	require.Len(t, reply.Results, 1)
	require.True(t, reply.Results[0].Success, reply.Results[0].Error)

	data := reply.Results[0].Data.(map[string]any)
	matches := data["matches"].([]map[string]any)
	require.NotEmpty(t, matches)
	assert.Contains(t, matches[0]["content"], "10.0.0.7")
}

func TestHandleMessageRejectsEmptyInput(t *testing.T) {
	core := newTestCore(t)

	_, err := core.HandleMessage(context.Background(), "   ")
	require.Error(t, err)
}

func TestSelfTestReportShapes(t *testing.T) {
	core := newTestCore(t)

	report := core.SelfTest(context.Background())
	require.NotEmpty(t, report.Checks)
	assert.True(t, report.Passed(), report.Summary())

	var empty SelfTestReport
	assert.False(t, empty.Passed(), "empty report cannot pass")
}

func TestUnknownToolNeverPanics(t *testing.T) {
	core := newTestCore(t)

	var result *models.ToolResult
	require.NotPanics(t, func() {
		result = core.Tools().Execute(context.Background(), models.ToolCall{Tool: "bogus"})
	})
	assert.False(t, result.Success)
}
