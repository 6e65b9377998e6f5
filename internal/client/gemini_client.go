package client

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/astralremix/api/internal/config"
)

// ErrGeminiNotConfigured is returned by every call when no API key is set.
var ErrGeminiNotConfigured = errors.New("missing GEMINI_API_KEY environment variable")

// FileState is the processing state of an uploaded asset
type FileState string

const (
	FileStateProcessing FileState = "PROCESSING"
	FileStateActive     FileState = "ACTIVE"
	FileStateFailed     FileState = "FAILED"
	FileStateUnknown    FileState = "STATE_UNSPECIFIED"
)

// RemoteFile is an asset held by the generative service
type RemoteFile struct {
	Name     string
	URI      string
	MIMEType string
	State    FileState
}

// GeminiClient wraps the Gemini Files and Models APIs
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a client. Without an API key the client is
// returned unconfigured and every call fails with ErrGeminiNotConfigured.
func NewGeminiClient(ctx context.Context, cfg *config.GeminiConfig) (*GeminiClient, error) {
	c := &GeminiClient{model: cfg.Model}
	if cfg.APIKey == "" {
		return c, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}
	c.client = client
	return c, nil
}

// IsConfigured returns true if the client has valid configuration
func (c *GeminiClient) IsConfigured() bool {
	return c.client != nil
}

// Upload sends a local file to the Files API
func (c *GeminiClient) Upload(ctx context.Context, path, mimeType string) (*RemoteFile, error) {
	if !c.IsConfigured() {
		return nil, ErrGeminiNotConfigured
	}

	f, err := c.client.Files.UploadFromPath(ctx, path, &genai.UploadFileConfig{
		MIMEType:    mimeType,
		DisplayName: filepath.Base(path),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}

	log.Info().Str("file", f.DisplayName).Str("name", f.Name).Msg("uploaded asset")
	return toRemoteFile(f), nil
}

// GetFile fetches the current state of an uploaded file
func (c *GeminiClient) GetFile(ctx context.Context, name string) (*RemoteFile, error) {
	if !c.IsConfigured() {
		return nil, ErrGeminiNotConfigured
	}

	f, err := c.client.Files.Get(ctx, name, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get file %s: %w", name, err)
	}
	return toRemoteFile(f), nil
}

func toRemoteFile(f *genai.File) *RemoteFile {
	state := FileStateUnknown
	switch f.State {
	case genai.FileStateProcessing:
		state = FileStateProcessing
	case genai.FileStateActive:
		state = FileStateActive
	case genai.FileStateFailed:
		state = FileStateFailed
	}
	return &RemoteFile{
		Name:     f.Name,
		URI:      f.URI,
		MIMEType: f.MIMEType,
		State:    state,
	}
}

// GenerateJSON runs one schema-constrained generation. When asset is set it
// is passed as a file reference ahead of the prompt text.
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string, asset *RemoteFile, schema *genai.Schema) (string, error) {
	if !c.IsConfigured() {
		return "", ErrGeminiNotConfigured
	}

	var parts []*genai.Part
	if asset != nil {
		mimeType := asset.MIMEType
		if mimeType == "" {
			mimeType = "video/mp4"
		}
		parts = append(parts, genai.NewPartFromURI(asset.URI, mimeType))
	}
	parts = append(parts, genai.NewPartFromText(prompt))

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	}

	log.Debug().Str("model", c.model).Bool("asset", asset != nil).Int("prompt_len", len(prompt)).Msg("→ gemini generate")
	resp, err := c.client.Models.GenerateContent(ctx, c.model, []*genai.Content{
		{Role: "user", Parts: parts},
	}, cfg)
	if err != nil {
		return "", fmt.Errorf("failed to generate content (model: %s): %w", c.model, err)
	}

	text := resp.Text()
	log.Debug().Int("response_len", len(text)).Msg("← gemini generate")
	if text == "" {
		return "", fmt.Errorf("empty response from %s", c.model)
	}
	return text, nil
}
