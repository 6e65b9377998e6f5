package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astralremix/api/internal/config"
)

func TestNanoGenerate(t *testing.T) {
	var got NanoRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"text":"{\"ok\":true}"}`))
	}))
	defer srv.Close()

	c := NewNanoClient(&config.NanoConfig{URL: srv.URL, MaxTokens: 2048})
	text, err := c.Generate(context.Background(), "hello")
	require.NoError(t, err)

	assert.Equal(t, `{"ok":true}`, text)
	assert.Equal(t, "hello", got.Prompt)
	assert.Equal(t, 2048, got.MaxTokens)
}

func TestNanoGenerateErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("overloaded"))
	}))
	defer srv.Close()

	c := NewNanoClient(&config.NanoConfig{URL: srv.URL})
	_, err := c.Generate(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503 overloaded")
}

func TestNanoNotConfigured(t *testing.T) {
	c := NewNanoClient(&config.NanoConfig{})
	assert.False(t, c.IsConfigured())

	_, err := c.Generate(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrNanoNotConfigured)
}
