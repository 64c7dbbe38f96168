package executor

import (
	"context"
	"os"
	"time"

	"github.com/argus-ai/argus/internal/stats"
)

// SystemStatus reports process counters and resource usage.
type SystemStatus struct {
	Collector *stats.Collector
	DBPath    string
}

func (t *SystemStatus) Name() string        { return "system_status" }
func (t *SystemStatus) Description() string { return "Report assistant health and counters" }

func (t *SystemStatus) Execute(ctx context.Context, input map[string]any) (*Result, error) {
	start := time.Now()

	var dbSize int64
	if t.DBPath != "" {
		if info, err := os.Stat(t.DBPath); err == nil {
			dbSize = info.Size()
		}
	}

	return TimedResult(NewSuccessResult(t.Collector.Collect(dbSize, t.DBPath)), start), nil
}
