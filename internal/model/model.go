// Package model provides the local model service client.
//
// The core treats the model service as a black box: submit a prompt, receive
// either a single completion or an incremental stream of text chunks
// terminated by a done signal.
package model

import "context"

// Request represents a completion request.
type Request struct {
	Prompt      string   `json:"prompt"`
	System      string   `json:"system,omitempty"`
	Temperature float64  `json:"temperature,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

// Response represents a completed (non-streamed) generation.
type Response struct {
	Text       string `json:"text"`
	Model      string `json:"model"`
	DurationMs int64  `json:"duration_ms"`
}

// Chunk is one piece of a streamed generation. Done marks the final chunk.
type Chunk struct {
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// StreamFunc receives each chunk of a streamed generation.
// Returning an error stops the stream.
type StreamFunc func(Chunk) error

// Model is the text-completion contract the core depends on.
type Model interface {
	// Generate runs a blocking completion.
	Generate(ctx context.Context, req *Request) (*Response, error)

	// Stream runs a completion, delivering chunks as they arrive.
	Stream(ctx context.Context, req *Request, fn StreamFunc) error

	// IsAvailable checks if the service is reachable and configured.
	IsAvailable() bool

	// Name returns the model identifier.
	Name() string
}
