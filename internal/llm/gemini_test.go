package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "gemini-pro:generateContent")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"  hello there  "}]}}]}`))
	}))
	defer srv.Close()

	c := NewGemini("test-key", "gemini-pro", 5*time.Second)
	c.BaseURL = srv.URL

	text, err := c.Generate(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello there", text)
}

func TestGeminiGenerateErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewGemini("test-key", "gemini-pro", 5*time.Second)
	c.BaseURL = srv.URL

	_, err := c.Generate(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm provider returned error")
}

func TestGeminiGenerateEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c := NewGemini("test-key", "gemini-pro", 5*time.Second)
	c.BaseURL = srv.URL

	_, err := c.Generate(context.Background(), "hi")
	assert.Error(t, err)
}

func TestGeminiGenerateNoKey(t *testing.T) {
	c := NewGemini("", "gemini-pro", time.Second)
	_, err := c.Generate(context.Background(), "hi")
	assert.Error(t, err)
}
