package model

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/argus-ai/argus/internal/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *OllamaClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultOllamaConfig()
	cfg.Endpoint = srv.URL
	cfg.MaxRetries = 1
	cfg.Timeout = 2 * time.Second
	return NewOllamaClient(cfg)
}

func TestGenerate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		assert.Equal(t, "hello", req.Prompt)

		json.NewEncoder(w).Encode(generateResponse{Response: "hi there", Done: true})
	})

	resp, err := c.Generate(context.Background(), &Request{Prompt: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hi there", resp.Text)
}

func TestStreamDeliversChunksUntilDone(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		enc := json.NewEncoder(w)
		enc.Encode(generateResponse{Response: "one "})
		enc.Encode(generateResponse{Response: "two"})
		enc.Encode(generateResponse{Done: true})
	})

	var text string
	var sawDone bool
	err := c.Stream(context.Background(), &Request{Prompt: "x"}, func(ch Chunk) error {
		text += ch.Text
		if ch.Done {
			sawDone = true
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, "one two", text)
	assert.True(t, sawDone)
}

func TestGenerateServerErrorIsRetryable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	})

	_, err := c.Generate(context.Background(), &Request{Prompt: "x"})
	require.Error(t, err)
	assert.Equal(t, apperrors.CategoryTemporary, apperrors.GetCategory(err))
}

func TestGenerateConnectionRefused(t *testing.T) {
	cfg := DefaultOllamaConfig()
	cfg.Endpoint = "http://127.0.0.1:1" // nothing listens here
	cfg.MaxRetries = 1
	cfg.Timeout = time.Second
	c := NewOllamaClient(cfg)

	_, err := c.Generate(context.Background(), &Request{Prompt: "x"})
	require.Error(t, err)
	assert.Equal(t, apperrors.CategoryTemporary, apperrors.GetCategory(err))
}
