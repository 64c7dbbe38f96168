// Package assistant wires the classifier, planner, tool registry, history,
// memory, and protocol engine into one orchestration core. The Core is
// constructed once at process start and passed explicitly; there are no
// package-level singletons.
package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/argus-ai/argus/internal/classifier"
	"github.com/argus-ai/argus/internal/config"
	"github.com/argus-ai/argus/internal/history"
	"github.com/argus-ai/argus/internal/memory"
	"github.com/argus-ai/argus/internal/model"
	"github.com/argus-ai/argus/internal/planner"
	"github.com/argus-ai/argus/internal/protocol"
	"github.com/argus-ai/argus/internal/stats"
	"github.com/argus-ai/argus/internal/tools"
	"github.com/argus-ai/argus/pkg/models"
)

// Core is the assistant's orchestration context: every collaborator it needs
// to turn a user message into a reply.
type Core struct {
	cfg        *config.Config
	logger     *zap.Logger
	classifier *classifier.Classifier
	planner    *planner.Planner
	tools      *tools.Registry
	history    *history.Store
	memories   *memory.Store
	model      model.Model
	protocols  *protocol.Registry
	executor   *protocol.Executor
	collector  *stats.Collector
	session    *classifier.SessionHistory
}

// New builds the core from configuration. Any failure here, including a
// tool catalog that fails to load, is fatal to the caller.
func New(cfg *config.Config, logger *zap.Logger) (*Core, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	memories, err := memory.Open(cfg.Paths.DB)
	if err != nil {
		return nil, fmt.Errorf("open memory store: %w", err)
	}

	archive, err := protocol.NewArchive(memories.DB())
	if err != nil {
		memories.Close()
		return nil, fmt.Errorf("open protocol archive: %w", err)
	}

	collector := stats.NewCollector()
	hist := history.New(cfg.Assistant.HistoryLimit)

	modelClient := model.NewOllamaClient(&model.OllamaConfig{
		Endpoint:    cfg.Model.Endpoint,
		Model:       cfg.Model.Name,
		Temperature: cfg.Model.Temperature,
		Timeout:     time.Duration(cfg.Model.TimeoutSeconds) * time.Second,
		MaxRetries:  3,
	})

	protocols := protocol.NewRegistry()
	executor := protocol.NewExecutor(protocols,
		protocol.WithLogger(logger.Named("protocol")),
		protocol.WithArchive(archive),
		protocol.WithRetention(time.Duration(cfg.Assistant.RetentionHours)*time.Hour))

	registry := tools.NewRegistry(
		tools.WithHistory(hist),
		tools.WithCollector(collector),
		tools.WithLogger(logger.Named("tools")))

	controller := &protocolController{
		registry:  protocols,
		executor:  executor,
		collector: collector,
	}

	if err := registry.Initialize(tools.Deps{
		Memories:  memories,
		History:   hist,
		Model:     modelClient,
		Collector: collector,
		Protocols: controller,
		DBPath:    cfg.Paths.DB,
	}); err != nil {
		memories.Close()
		return nil, fmt.Errorf("load tool catalog: %w", err)
	}

	if err := protocol.RegisterBuiltins(protocols, registry, cfg.Assistant.DefaultProjectPath); err != nil {
		memories.Close()
		return nil, fmt.Errorf("register protocols: %w", err)
	}

	return &Core{
		cfg:        cfg,
		logger:     logger.Named("assistant"),
		classifier: classifier.New(),
		planner:    planner.New(cfg.Assistant.DefaultProjectPath),
		tools:      registry,
		history:    hist,
		memories:   memories,
		model:      modelClient,
		protocols:  protocols,
		executor:   executor,
		collector:  collector,
		session:    classifier.NewSessionHistory(cfg.Assistant.SessionWindow),
	}, nil
}

// Close releases the core's resources, waiting for detached protocol runs.
func (c *Core) Close() error {
	c.executor.Wait()
	return c.memories.Close()
}

// Tools exposes the tool registry to front ends.
func (c *Core) Tools() *tools.Registry { return c.tools }

// History exposes the execution history store.
func (c *Core) History() *history.Store { return c.history }

// Protocols exposes the protocol registry.
func (c *Core) Protocols() *protocol.Registry { return c.protocols }

// ProtocolExecutor exposes the protocol executor.
func (c *Core) ProtocolExecutor() *protocol.Executor { return c.executor }

// Collector exposes the stats collector.
func (c *Core) Collector() *stats.Collector { return c.collector }

// HandleMessage turns one user message into a reply: classify, plan, check
// for the self-test sentinel, then execute the planned calls strictly in
// order. Every call lands in history whether it succeeds or not.
func (c *Core) HandleMessage(ctx context.Context, text string) (*models.Reply, error) {
	start := time.Now()
	defer func() {
		c.collector.RecordMessage(time.Since(start))
	}()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty message")
	}

	analysis := c.classifier.Classify(text)
	c.session.Add(analysis)
	c.logger.Debug("message classified",
		zap.String("intent", analysis.Primary),
		zap.Float64("confidence", analysis.Confidence))

	calls := c.planner.Plan(analysis, text)
	if planner.IsSpecialTestRequest(calls) {
		report := c.SelfTest(ctx)
		return &models.Reply{
			Text:       report.Summary(),
			Intent:     analysis.Primary,
			Confidence: analysis.Confidence,
			Results: []models.ToolResult{{
				Success: report.Passed(),
				Data:    report,
				Tool:    planner.SpecialTestRequest,
			}},
		}, nil
	}

	reply := &models.Reply{
		Intent:     analysis.Primary,
		Confidence: analysis.Confidence,
	}
	for _, call := range calls {
		result := c.tools.Execute(ctx, models.ToolCall{
			Tool:       call.Tool,
			Parameters: call.Params,
			Reasoning:  call.Reasoning,
		})
		reply.Results = append(reply.Results, *result)
	}

	reply.Text = renderReply(reply.Results)
	return reply, nil
}

// renderReply builds the spoken part of the reply from the tool outcomes.
// Front ends that want richer formatting render Results themselves.
func renderReply(results []models.ToolResult) string {
	if len(results) == 0 {
		return "Nothing to do."
	}

	var sb strings.Builder
	for i, res := range results {
		if i > 0 {
			sb.WriteString("\n")
		}
		if !res.Success {
			fmt.Fprintf(&sb, "%s failed: %s", res.Tool, res.Error)
			continue
		}
		if text, ok := modelText(res.Data); ok {
			sb.WriteString(text)
			continue
		}
		fmt.Fprintf(&sb, "%s completed.", res.Tool)
	}
	return sb.String()
}

// modelText extracts generated text from an ask_model payload.
func modelText(data any) (string, bool) {
	m, ok := data.(map[string]any)
	if !ok {
		return "", false
	}
	text, ok := m["text"].(string)
	return text, ok && text != ""
}
