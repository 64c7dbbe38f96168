package protocol

import (
	"context"
	"fmt"
	"time"
)

// RegisterBuiltins installs the stock protocol definitions. Every step runs
// through the tool runner so tool-call history and validation apply to
// protocol work the same as to direct requests.
func RegisterBuiltins(reg *Registry, runner ToolRunner, projectPath string) error {
	defs := []*Definition{
		morningBriefing(runner, projectPath),
		projectCheckup(runner, projectPath),
		memoryConsolidation(runner),
	}
	for _, def := range defs {
		if err := reg.Register(def); err != nil {
			return fmt.Errorf("register %s: %w", def.ID, err)
		}
	}
	return nil
}

// morningBriefing gathers recent memories and project state, then asks the
// model for a short situational summary.
func morningBriefing(runner ToolRunner, projectPath string) *Definition {
	return &Definition{
		ID:       "morning_briefing",
		Name:     "Morning Briefing",
		Version:  "1.0",
		Category: "daily",
		Triggers: []string{"morning briefing", "daily briefing", "what's on today"},
		Steps: []Step{
			{
				ID:      "recall",
				Name:    "Recall recent memories",
				Timeout: 15 * time.Second,
				Handler: func(ctx context.Context, sc *StepContext) (any, error) {
					return runner.Run(ctx, "memory_search", map[string]any{
						"query": "today plans reminders",
						"limit": 5,
					}, "gather context for the briefing")
				},
			},
			{
				ID:      "repo",
				Name:    "Check project state",
				Timeout: 15 * time.Second,
				Handler: func(ctx context.Context, sc *StepContext) (any, error) {
					return runner.Run(ctx, "git_status", map[string]any{
						"path": projectPath,
					}, "include repository state in the briefing")
				},
			},
			{
				ID:        "summarize",
				Name:      "Compose briefing",
				DependsOn: []string{"recall", "repo"},
				Timeout:   60 * time.Second,
				Handler: func(ctx context.Context, sc *StepContext) (any, error) {
					prompt := fmt.Sprintf(
						"Write a short morning briefing.\n\nRecent notes:\n%v\n\nRepository state:\n%v",
						sc.Results["recall"], sc.Results["repo"])
					return runner.Run(ctx, "ask_model", map[string]any{
						"prompt": prompt,
					}, "summarize gathered context into a briefing")
				},
			},
		},
	}
}

// projectCheckup inspects the working tree and reports anything that needs
// attention.
func projectCheckup(runner ToolRunner, projectPath string) *Definition {
	return &Definition{
		ID:       "project_checkup",
		Name:     "Project Checkup",
		Version:  "1.0",
		Category: "development",
		Triggers: []string{"project checkup", "check the project", "project health"},
		Steps: []Step{
			{
				ID:      "status",
				Name:    "Repository status",
				Timeout: 15 * time.Second,
				Handler: func(ctx context.Context, sc *StepContext) (any, error) {
					return runner.Run(ctx, "git_status", map[string]any{
						"path": projectPath,
					}, "inspect uncommitted work")
				},
			},
			{
				ID:        "tree",
				Name:      "List project files",
				DependsOn: []string{"status"},
				Timeout:   15 * time.Second,
				Handler: func(ctx context.Context, sc *StepContext) (any, error) {
					return runner.Run(ctx, "file_list", map[string]any{
						"path": projectPath,
					}, "survey the project layout")
				},
			},
			{
				ID:        "report",
				Name:      "Assess findings",
				DependsOn: []string{"status", "tree"},
				Timeout:   60 * time.Second,
				Handler: func(ctx context.Context, sc *StepContext) (any, error) {
					prompt := fmt.Sprintf(
						"Assess this project's health and flag anything needing attention.\n\nGit status:\n%v\n\nFiles:\n%v",
						sc.Results["status"], sc.Results["tree"])
					return runner.Run(ctx, "ask_model", map[string]any{
						"prompt": prompt,
					}, "turn raw project state into an assessment")
				},
			},
		},
	}
}

// memoryConsolidation condenses recent memories into one summary entry.
func memoryConsolidation(runner ToolRunner) *Definition {
	return &Definition{
		ID:         "memory_consolidation",
		Name:       "Memory Consolidation",
		Version:    "1.0",
		Category:   "memory",
		Triggers:   []string{"consolidate memory", "memory consolidation", "tidy up memory"},
		Background: true,
		Steps: []Step{
			{
				ID:      "collect",
				Name:    "Collect recent memories",
				Timeout: 15 * time.Second,
				Handler: func(ctx context.Context, sc *StepContext) (any, error) {
					return runner.Run(ctx, "memory_search", map[string]any{
						"query": "",
						"limit": 20,
					}, "fetch recent entries for consolidation")
				},
			},
			{
				ID:        "condense",
				Name:      "Condense into summary",
				DependsOn: []string{"collect"},
				Timeout:   90 * time.Second,
				Handler: func(ctx context.Context, sc *StepContext) (any, error) {
					prompt := fmt.Sprintf(
						"Condense these notes into one concise summary, keeping every durable fact:\n\n%v",
						sc.Results["collect"])
					return runner.Run(ctx, "ask_model", map[string]any{
						"prompt": prompt,
					}, "merge overlapping entries")
				},
			},
			{
				ID:        "store",
				Name:      "Store consolidated summary",
				DependsOn: []string{"condense"},
				Timeout:   15 * time.Second,
				Handler: func(ctx context.Context, sc *StepContext) (any, error) {
					return runner.Run(ctx, "memory_store", map[string]any{
						"content":  fmt.Sprintf("%v", sc.Results["condense"]),
						"category": "consolidated",
					}, "persist the consolidated summary")
				},
			},
		},
	}
}
