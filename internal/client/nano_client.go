package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/astralremix/api/internal/config"
)

// ErrNanoNotConfigured is returned when no endpoint URL is set.
var ErrNanoNotConfigured = errors.New("NANO_BANANA_URL is not set")

// NanoClient talks to the fast text-generation endpoint
type NanoClient struct {
	httpClient *http.Client
	url        string
	maxTokens  int
}

// NanoRequest is the request body for the generation endpoint
type NanoRequest struct {
	Prompt    string `json:"prompt"`
	MaxTokens int    `json:"max_tokens"`
}

// NanoResponse is the response body of the generation endpoint
type NanoResponse struct {
	Text string `json:"text"`
}

func NewNanoClient(cfg *config.NanoConfig) *NanoClient {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	return &NanoClient{
		httpClient: &http.Client{Timeout: timeout},
		url:        cfg.URL,
		maxTokens:  maxTokens,
	}
}

// Generate posts a prompt and returns the generated text
func (c *NanoClient) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.IsConfigured() {
		return "", ErrNanoNotConfigured
	}

	bodyBytes, err := json.Marshal(NanoRequest{Prompt: prompt, MaxTokens: c.maxTokens})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	log.Debug().Str("url", c.url).Int("max_tokens", c.maxTokens).Msg("→ nano generate")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	log.Debug().Int("status", resp.StatusCode).Int("bytes", len(respBody)).Msg("← nano generate")

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Nano Banana request failed: %d %s", resp.StatusCode, string(respBody))
	}

	var out NanoResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return out.Text, nil
}

// IsConfigured returns true if the client has valid configuration
func (c *NanoClient) IsConfigured() bool {
	return c.url != ""
}
