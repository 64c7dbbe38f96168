// Package model provides the Ollama HTTP client for local inference.
// Ollama exposes a generate endpoint at http://localhost:11434/api/generate
// that returns either one JSON body or a stream of JSON lines.
package model

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/argus-ai/argus/internal/errors"
)

// OllamaConfig configures the Ollama client.
type OllamaConfig struct {
	Endpoint    string // Default: http://localhost:11434
	Model       string // e.g. "llama3.2"
	Temperature float64
	Timeout     time.Duration
	MaxRetries  int
}

// DefaultOllamaConfig returns default configuration.
func DefaultOllamaConfig() *OllamaConfig {
	return &OllamaConfig{
		Endpoint:    "http://localhost:11434",
		Model:       "llama3.2",
		Temperature: 0.7,
		Timeout:     120 * time.Second,
		MaxRetries:  3,
	}
}

// OllamaClient implements Model against a local Ollama server.
type OllamaClient struct {
	cfg            *OllamaConfig
	client         *http.Client
	circuitBreaker *errors.CircuitBreaker
	retryPolicy    *errors.Policy
}

// NewOllamaClient creates a new Ollama client.
func NewOllamaClient(cfg *OllamaConfig) *OllamaClient {
	if cfg == nil {
		cfg = DefaultOllamaConfig()
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:11434"
	}

	retryPolicy := &errors.Policy{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: 200 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
		RetryIf: func(err error) bool {
			return errors.GetCategory(err) == errors.CategoryTemporary
		},
	}

	return &OllamaClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		circuitBreaker: errors.NewCircuitBreaker("ollama", nil),
		retryPolicy:    retryPolicy,
	}
}

// Name returns the model identifier.
func (c *OllamaClient) Name() string {
	return c.cfg.Model
}

// IsAvailable checks if the Ollama server responds.
func (c *OllamaClient) IsAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	System  string         `json:"system,omitempty"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// Generate runs a blocking completion with retry and circuit breaking.
func (c *OllamaClient) Generate(ctx context.Context, req *Request) (*Response, error) {
	start := time.Now()

	var text string
	err := c.circuitBreaker.Execute(func() error {
		var innerErr error
		text, innerErr = errors.DoWithResult(ctx, c.retryPolicy, func() (string, error) {
			return c.generateOnce(ctx, req)
		})
		return innerErr
	})
	if err != nil {
		return nil, err
	}

	return &Response{
		Text:       text,
		Model:      c.cfg.Model,
		DurationMs: time.Since(start).Milliseconds(),
	}, nil
}

func (c *OllamaClient) generateOnce(ctx context.Context, req *Request) (string, error) {
	body, err := c.post(ctx, req, false)
	if err != nil {
		return "", err
	}
	defer body.Close()

	var out generateResponse
	if err := json.NewDecoder(body).Decode(&out); err != nil {
		return "", errors.Wrap(err, errors.CodeModelInvalidResponse, "decode model response", errors.CategoryPermanent)
	}
	if out.Error != "" {
		return "", errors.Permanent(errors.CodeModelInvalidResponse, out.Error)
	}
	return out.Response, nil
}

// Stream runs a completion and delivers chunks as JSON lines arrive.
// The final chunk carries Done=true.
func (c *OllamaClient) Stream(ctx context.Context, req *Request, fn StreamFunc) error {
	body, err := c.post(ctx, req, true)
	if err != nil {
		return err
	}
	defer body.Close()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var out generateResponse
		if err := json.Unmarshal(line, &out); err != nil {
			return errors.Wrap(err, errors.CodeModelInvalidResponse, "decode stream chunk", errors.CategoryPermanent)
		}
		if out.Error != "" {
			return errors.Permanent(errors.CodeModelInvalidResponse, out.Error)
		}

		if err := fn(Chunk{Text: out.Response, Done: out.Done}); err != nil {
			return err
		}
		if out.Done {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, errors.CodeModelTimeout, "model stream interrupted", errors.CategoryTemporary)
	}

	// Stream ended without a done signal.
	return errors.Temporary(errors.CodeModelInvalidResponse, "model stream ended without done signal")
}

// post submits a generate request and returns the response body on 200.
// Connection failures and timeouts surface as retryable temporary errors.
func (c *OllamaClient) post(ctx context.Context, req *Request, stream bool) (io.ReadCloser, error) {
	payload := generateRequest{
		Model:  c.cfg.Model,
		Prompt: req.Prompt,
		System: req.System,
		Stream: stream,
	}

	temperature := req.Temperature
	if temperature == 0 {
		temperature = c.cfg.Temperature
	}
	payload.Options = map[string]any{"temperature": temperature}
	if len(req.Stop) > 0 {
		payload.Options["stop"] = req.Stop
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeModelInvalidResponse, "encode model request", errors.CategoryPermanent)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint+"/api/generate", bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeModelUnavailable, "build model request", errors.CategoryPermanent)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeModelUnavailable, "model service unreachable", errors.CategoryTemporary)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		category := errors.CategoryPermanent
		if resp.StatusCode >= 500 {
			category = errors.CategoryTemporary
		}
		appErr := errors.Newf(errors.CodeModelUnavailable, category,
			"model service returned %d: %s", resp.StatusCode, string(raw))
		appErr.Retryable = category == errors.CategoryTemporary
		return nil, appErr
	}

	return resp.Body, nil
}

var _ Model = (*OllamaClient)(nil)

// String describes the client for logs.
func (c *OllamaClient) String() string {
	return fmt.Sprintf("ollama(%s @ %s)", c.cfg.Model, c.cfg.Endpoint)
}
