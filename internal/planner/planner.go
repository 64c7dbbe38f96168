// Package planner maps a classified intent to an ordered tool sequence.
//
// Planning is a pure mapping table keyed by primary intent, with sub-rules
// that inspect the raw text for keyword cues. It produces planned calls only;
// execution (and history logging) is the tool registry's job.
package planner

import (
	"regexp"
	"strings"

	"github.com/argus-ai/argus/internal/classifier"
)

// SpecialTestRequest is the reserved sentinel tool name that signals "run the
// full self-test suite instead of the normal plan". Callers must check for it
// before executing any tool.
const SpecialTestRequest = "SPECIAL_TEST_REQUEST"

// Priority orders planned calls for display; execution is strictly list order.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// PlannedCall is one tool invocation the planner wants executed.
type PlannedCall struct {
	Tool      string         `json:"tool"`
	Params    map[string]any `json:"params"`
	Reasoning string         `json:"reasoning"`
	Priority  Priority       `json:"priority"`
}

// Planner builds tool sequences from intent analyses.
type Planner struct {
	defaultProjectPath string
}

// New creates a planner. defaultProjectPath is used when the user names no
// path (e.g. "check the git status").
func New(defaultProjectPath string) *Planner {
	if defaultProjectPath == "" {
		defaultProjectPath = "."
	}
	return &Planner{defaultProjectPath: defaultProjectPath}
}

var urlPattern = regexp.MustCompile(`https?://[^\s]+`)

// pathPattern matches a token that looks like a filesystem path.
var pathPattern = regexp.MustCompile(`(?:\.{0,2}/)?[\w.\-]+(?:/[\w.\-]+)+|[\w\-]+\.\w{1,5}`)

// Plan produces the ordered tool sequence for one message.
func (p *Planner) Plan(analysis *classifier.Analysis, text string) []PlannedCall {
	lower := strings.ToLower(text)

	if isSelfTestRequest(lower) {
		return []PlannedCall{{
			Tool:      SpecialTestRequest,
			Params:    map[string]any{},
			Reasoning: "user asked for a self-test run",
			Priority:  PriorityHigh,
		}}
	}

	switch analysis.Primary {
	case "development":
		return p.planDevelopment(lower, text)
	case "memory":
		return p.planMemory(lower, text)
	case "analysis":
		return p.planAnalysis(lower, text)
	case "protocol":
		return p.planProtocol(lower, text)
	case "system":
		return []PlannedCall{{
			Tool:      "system_status",
			Params:    map[string]any{},
			Reasoning: "user asked about system state",
			Priority:  PriorityMedium,
		}}
	case "file":
		return p.planFile(text)
	case "research":
		return p.planResearch(text)
	default:
		return p.fallback(text)
	}
}

func (p *Planner) planDevelopment(lower, text string) []PlannedCall {
	if strings.Contains(lower, "git") {
		return []PlannedCall{{
			Tool:      "git_status",
			Params:    map[string]any{"path": p.defaultProjectPath},
			Reasoning: "development request mentioning git; checking working tree state",
			Priority:  PriorityMedium,
		}}
	}
	if path := pathPattern.FindString(text); path != "" {
		return []PlannedCall{{
			Tool:      "file_read",
			Params:    map[string]any{"path": path},
			Reasoning: "development request naming a file",
			Priority:  PriorityMedium,
		}}
	}
	return p.fallback(text)
}

func (p *Planner) planMemory(lower, text string) []PlannedCall {
	for _, cue := range []string{"remember", "store", "save this", "note that"} {
		if strings.Contains(lower, cue) {
			return []PlannedCall{{
				Tool:      "memory_store",
				Params:    map[string]any{"content": text, "category": "general"},
				Reasoning: "user asked to remember something",
				Priority:  PriorityHigh,
			}}
		}
	}
	return []PlannedCall{{
		Tool:      "memory_search",
		Params:    map[string]any{"query": text},
		Reasoning: "memory request without a store cue; searching",
		Priority:  PriorityMedium,
	}}
}

func (p *Planner) planAnalysis(lower, text string) []PlannedCall {
	if strings.Contains(lower, "bullshit") {
		return []PlannedCall{{
			Tool:      "detect_bullshit",
			Params:    map[string]any{"text": text},
			Reasoning: "analysis request asking for a bullshit score",
			Priority:  PriorityMedium,
		}}
	}
	return p.fallback(text)
}

func (p *Planner) planProtocol(lower, text string) []PlannedCall {
	if strings.Contains(lower, "start") || strings.Contains(lower, "run") {
		return []PlannedCall{{
			Tool:      "protocol_start",
			Params:    map[string]any{"query": text},
			Reasoning: "user asked to start a protocol; resolving by trigger",
			Priority:  PriorityHigh,
		}}
	}
	return []PlannedCall{{
		Tool:      "protocol_list",
		Params:    map[string]any{},
		Reasoning: "user asked about available protocols",
		Priority:  PriorityMedium,
	}}
}

func (p *Planner) planFile(text string) []PlannedCall {
	if path := pathPattern.FindString(text); path != "" {
		return []PlannedCall{{
			Tool:      "file_read",
			Params:    map[string]any{"path": path},
			Reasoning: "file request naming a path",
			Priority:  PriorityMedium,
		}}
	}
	return []PlannedCall{{
		Tool:      "file_list",
		Params:    map[string]any{"path": p.defaultProjectPath},
		Reasoning: "file request without a path; listing the project directory",
		Priority:  PriorityLow,
	}}
}

func (p *Planner) planResearch(text string) []PlannedCall {
	if url := urlPattern.FindString(text); url != "" {
		return []PlannedCall{{
			Tool:      "web_fetch",
			Params:    map[string]any{"url": url},
			Reasoning: "research request naming a URL",
			Priority:  PriorityMedium,
		}}
	}
	return p.fallback(text)
}

// fallback plans the single default call: hand the text to the local model.
func (p *Planner) fallback(text string) []PlannedCall {
	return []PlannedCall{{
		Tool:      "ask_model",
		Params:    map[string]any{"prompt": text},
		Reasoning: "no tool rule matched; generating a free-text answer",
		Priority:  PriorityLow,
	}}
}

// IsSpecialTestRequest reports whether the plan is the self-test sentinel.
func IsSpecialTestRequest(calls []PlannedCall) bool {
	return len(calls) == 1 && calls[0].Tool == SpecialTestRequest
}

func isSelfTestRequest(lower string) bool {
	for _, cue := range []string{"self-test", "self test", "test yourself"} {
		if strings.Contains(lower, cue) {
			return true
		}
	}
	return false
}
