package executor

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// GitStatus reports the working tree state of a repository.
type GitStatus struct{}

func (t *GitStatus) Name() string        { return "git_status" }
func (t *GitStatus) Description() string { return "Show git working tree status" }

func (t *GitStatus) Execute(ctx context.Context, input map[string]any) (*Result, error) {
	start := time.Now()

	path := "."
	if p, ok := input["path"].(string); ok && p != "" {
		path = p
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return NewErrorResult(err), nil
	}

	branch, err := gitOutput(ctx, absPath, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return NewErrorResult(fmt.Errorf("not a git repository: %s", absPath)), nil
	}

	porcelain, err := gitOutput(ctx, absPath, "status", "--porcelain")
	if err != nil {
		return NewErrorResult(err), nil
	}

	var modified, untracked, staged []string
	for _, line := range strings.Split(porcelain, "\n") {
		if len(line) < 3 {
			continue
		}
		file := strings.TrimSpace(line[3:])
		switch {
		case strings.HasPrefix(line, "??"):
			untracked = append(untracked, file)
		case line[0] != ' ' && line[0] != '?':
			staged = append(staged, file)
		default:
			modified = append(modified, file)
		}
	}

	return TimedResult(NewSuccessResult(map[string]any{
		"path":      absPath,
		"branch":    branch,
		"clean":     porcelain == "",
		"staged":    staged,
		"modified":  modified,
		"untracked": untracked,
	}), start), nil
}

func gitOutput(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(out.String()))
	}
	return strings.TrimSpace(out.String()), nil
}
