package assistant

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/argus-ai/argus/internal/history"
	"github.com/argus-ai/argus/pkg/models"
)

// CheckResult is the outcome of one self-test check.
type CheckResult struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// SelfTestReport collects every check outcome from one self-test run.
type SelfTestReport struct {
	Checks []CheckResult `json:"checks"`
}

// Passed reports whether every check passed.
func (r *SelfTestReport) Passed() bool {
	for _, c := range r.Checks {
		if !c.Passed {
			return false
		}
	}
	return len(r.Checks) > 0
}

// Summary renders the report as display text.
func (r *SelfTestReport) Summary() string {
	passed := 0
	var sb strings.Builder
	for _, c := range r.Checks {
		mark := "FAIL"
		if c.Passed {
			mark = "ok"
			passed++
		}
		fmt.Fprintf(&sb, "[%s] %s", mark, c.Name)
		if c.Detail != "" {
			fmt.Fprintf(&sb, ": %s", c.Detail)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "%d/%d checks passed", passed, len(r.Checks))
	return sb.String()
}

// SelfTest runs deterministic checks over the core's components. Checks are
// independent and run concurrently; all of them always run to completion.
func (c *Core) SelfTest(ctx context.Context) *SelfTestReport {
	report := &SelfTestReport{}
	var mu sync.Mutex
	add := func(name string, passed bool, detail string) {
		mu.Lock()
		report.Checks = append(report.Checks, CheckResult{Name: name, Passed: passed, Detail: detail})
		mu.Unlock()
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		first := c.classifier.Classify("Check the git status of this project")
		second := c.classifier.Classify("Check the git status of this project")
		if first.Primary != second.Primary || first.Confidence != second.Confidence {
			add("classifier determinism", false,
				fmt.Sprintf("%s/%.2f vs %s/%.2f", first.Primary, first.Confidence, second.Primary, second.Confidence))
			return nil
		}
		if first.Primary != "development" {
			add("classifier determinism", false, "git status not classified as development")
			return nil
		}
		add("classifier determinism", true, "")
		return nil
	})

	g.Go(func() error {
		analysis := c.classifier.Classify("Check the git status of this project")
		calls := c.planner.Plan(analysis, "Check the git status of this project")
		for _, call := range calls {
			if call.Tool == "git_status" {
				add("planner git scenario", true, "")
				return nil
			}
		}
		add("planner git scenario", false, "no git_status call planned")
		return nil
	})

	g.Go(func() error {
		analysis := c.classifier.Classify("what protocols can you see?")
		calls := c.planner.Plan(analysis, "what protocols can you see?")
		if len(calls) == 1 && calls[0].Tool == "protocol_list" && len(calls[0].Params) == 0 {
			add("planner protocol scenario", true, "")
			return nil
		}
		add("planner protocol scenario", false, fmt.Sprintf("got %d calls", len(calls)))
		return nil
	})

	g.Go(func() error {
		// Scratch store: the live history must not absorb test records.
		scratch := history.New(2)
		scratch.Record("a", nil, models.ToolResult{Success: true}, "")
		scratch.Record("b", nil, models.ToolResult{Success: true}, "")
		id3 := scratch.Record("c", nil, models.ToolResult{Success: true}, "")
		if scratch.Len() != 2 {
			add("history eviction", false, fmt.Sprintf("len %d after overflow", scratch.Len()))
			return nil
		}
		if view, _ := scratch.Get(id3); view == nil {
			add("history eviction", false, "newest record missing")
			return nil
		}
		add("history eviction", true, "")
		return nil
	})

	g.Go(func() error {
		result := c.tools.Execute(ctx, models.ToolCall{Tool: "no_such_tool_xyzzy"})
		if result == nil || result.Success {
			add("registry unknown tool", false, "expected structured failure")
			return nil
		}
		add("registry unknown tool", true, "")
		return nil
	})

	g.Go(func() error {
		if len(c.protocols.List()) == 0 {
			add("protocol catalog", false, "no protocols registered")
			return nil
		}
		add("protocol catalog", true, "")
		return nil
	})

	_ = g.Wait() // checks report failures through the report, never as errors

	// Deterministic report order regardless of goroutine scheduling.
	sort.Slice(report.Checks, func(i, j int) bool {
		return report.Checks[i].Name < report.Checks[j].Name
	})
	return report
}
