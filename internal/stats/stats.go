// Package stats tracks runtime counters for the assistant process.
package stats

import (
	"runtime"
	"sync/atomic"
	"time"
)

// Collector accumulates process-lifetime counters. Safe for concurrent use.
type Collector struct {
	startTime    time.Time
	messages     atomic.Int64
	toolCalls    atomic.Int64
	protocolRuns atomic.Int64
	errors       atomic.Int64
	totalLatency atomic.Int64 // nanoseconds across handled messages
}

// NewCollector creates a collector anchored at the current time.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
	}
}

// Stats is a point-in-time snapshot of the process.
type Stats struct {
	MemoryStats MemoryStats `json:"memory"`
	Goroutines  int         `json:"goroutines"`
	Uptime      string      `json:"uptime"`

	Messages     int64   `json:"messages"`
	ToolCalls    int64   `json:"tool_calls"`
	ProtocolRuns int64   `json:"protocol_runs"`
	Errors       int64   `json:"errors"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`

	DBSize   int64   `json:"db_size_bytes"`
	DBSizeMB float64 `json:"db_size_mb"`
	DBPath   string  `json:"db_path,omitempty"`
}

// MemoryStats is the heap and GC portion of a snapshot.
type MemoryStats struct {
	HeapAlloc   int64   `json:"heap_alloc_bytes"`
	HeapAllocMB float64 `json:"heap_alloc_mb"`
	HeapSys     int64   `json:"heap_sys_bytes"`
	HeapSysMB   float64 `json:"heap_sys_mb"`
	HeapObjects uint64  `json:"heap_objects"`

	NumGC        uint32        `json:"num_gc"`
	GCPauseTotal time.Duration `json:"gc_pause_total"`
}

// Collect returns the current snapshot.
func (c *Collector) Collect(dbSize int64, dbPath string) *Stats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	messages := c.messages.Load()
	avgLatency := float64(0)
	if messages > 0 {
		avgLatency = float64(c.totalLatency.Load()) / float64(messages) / 1e6
	}

	return &Stats{
		MemoryStats: MemoryStats{
			HeapAlloc:    int64(m.HeapAlloc),
			HeapAllocMB:  bytesToMB(int64(m.HeapAlloc)),
			HeapSys:      int64(m.HeapSys),
			HeapSysMB:    bytesToMB(int64(m.HeapSys)),
			HeapObjects:  m.HeapObjects,
			NumGC:        m.NumGC,
			GCPauseTotal: time.Duration(m.PauseTotalNs),
		},
		Goroutines:   runtime.NumGoroutine(),
		Uptime:       time.Since(c.startTime).Round(time.Second).String(),
		Messages:     messages,
		ToolCalls:    c.toolCalls.Load(),
		ProtocolRuns: c.protocolRuns.Load(),
		Errors:       c.errors.Load(),
		AvgLatencyMs: avgLatency,
		DBSize:       dbSize,
		DBSizeMB:     bytesToMB(dbSize),
		DBPath:       dbPath,
	}
}

// RecordMessage records one handled user message and its latency.
func (c *Collector) RecordMessage(duration time.Duration) {
	c.messages.Add(1)
	c.totalLatency.Add(duration.Nanoseconds())
}

// RecordToolCall records one tool execution.
func (c *Collector) RecordToolCall() {
	c.toolCalls.Add(1)
}

// RecordProtocolRun records one protocol start.
func (c *Collector) RecordProtocolRun() {
	c.protocolRuns.Add(1)
}

// RecordError records an error surfaced to the user.
func (c *Collector) RecordError() {
	c.errors.Add(1)
}

// StartTime returns when the collector started.
func (c *Collector) StartTime() time.Time {
	return c.startTime
}

func bytesToMB(b int64) float64 {
	return float64(b) / 1024 / 1024
}
