package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/astralremix/api/internal/config"
)

// ErrLinkedInNotConfigured is returned when the token or person URN is missing
var ErrLinkedInNotConfigured = errors.New("LinkedIn credentials not configured")

const (
	uploadMechanismKey = "com.linkedin.digitalmedia.uploading.MediaUploadHttpRequest"
	shareContentKey    = "com.linkedin.ugc.ShareContent"
	visibilityKey      = "com.linkedin.ugc.MemberNetworkVisibility"
	mediaLabel         = "AI Remix"
)

// LinkedInClient publishes UGC posts with an optional image
type LinkedInClient struct {
	api       *http.Client
	fetch     *http.Client
	baseURL   string
	personURN string
}

func NewLinkedInClient(cfg *config.LinkedInConfig) *LinkedInClient {
	c := &LinkedInClient{
		fetch:     &http.Client{Timeout: 60 * time.Second},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		personURN: cfg.PersonURN,
	}
	if cfg.AccessToken != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: 60 * time.Second})
		c.api = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cfg.AccessToken,
			TokenType:   "Bearer",
		}))
	}
	return c
}

// IsConfigured returns true if the client has valid configuration
func (c *LinkedInClient) IsConfigured() bool {
	return c.api != nil && c.personURN != ""
}

type registerUploadRequest struct {
	RegisterUploadRequest struct {
		Recipes              []string              `json:"recipes"`
		Owner                string                `json:"owner"`
		ServiceRelationships []serviceRelationship `json:"serviceRelationships"`
	} `json:"registerUploadRequest"`
}

type serviceRelationship struct {
	RelationshipType string `json:"relationshipType"`
	Identifier       string `json:"identifier"`
}

type registerUploadResponse struct {
	Value struct {
		Asset           string `json:"asset"`
		UploadMechanism map[string]struct {
			UploadURL string `json:"uploadUrl"`
		} `json:"uploadMechanism"`
	} `json:"value"`
}

type textValue struct {
	Text string `json:"text"`
}

type ugcMedia struct {
	Status      string    `json:"status"`
	Description textValue `json:"description"`
	Media       string    `json:"media"`
	Title       textValue `json:"title"`
}

type shareContent struct {
	ShareCommentary    textValue  `json:"shareCommentary"`
	ShareMediaCategory string     `json:"shareMediaCategory"`
	Media              []ugcMedia `json:"media,omitempty"`
}

type ugcPost struct {
	Author          string                  `json:"author"`
	LifecycleState  string                  `json:"lifecycleState"`
	SpecificContent map[string]shareContent `json:"specificContent"`
	Visibility      map[string]string       `json:"visibility"`
}

// Share publishes text, attaching the image at imageURL when one is given.
// It returns the id of the created post.
func (c *LinkedInClient) Share(ctx context.Context, text, imageURL string) (string, error) {
	if !c.IsConfigured() {
		return "", ErrLinkedInNotConfigured
	}

	asset := ""
	if imageURL != "" {
		image, err := c.fetchImage(ctx, imageURL)
		if err != nil {
			return "", err
		}
		uploadURL, a, err := c.registerUpload(ctx)
		if err != nil {
			return "", err
		}
		if err := c.uploadImage(ctx, uploadURL, image); err != nil {
			return "", err
		}
		asset = a
	}

	return c.createPost(ctx, text, asset)
}

func (c *LinkedInClient) fetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.fetch.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch image: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (c *LinkedInClient) registerUpload(ctx context.Context) (string, string, error) {
	var body registerUploadRequest
	body.RegisterUploadRequest.Recipes = []string{"urn:li:digitalmediaRecipe:feedshare-image"}
	body.RegisterUploadRequest.Owner = c.personURN
	body.RegisterUploadRequest.ServiceRelationships = []serviceRelationship{
		{RelationshipType: "OWNER", Identifier: "urn:li:userGeneratedContent"},
	}

	respBody, _, err := c.doJSON(ctx, c.baseURL+"/assets?action=registerUpload", body)
	if err != nil {
		return "", "", fmt.Errorf("failed to register upload: %w", err)
	}

	var out registerUploadResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", "", fmt.Errorf("failed to unmarshal register upload response: %w", err)
	}
	mech, ok := out.Value.UploadMechanism[uploadMechanismKey]
	if !ok || mech.UploadURL == "" || out.Value.Asset == "" {
		return "", "", fmt.Errorf("register upload response missing upload URL")
	}
	return mech.UploadURL, out.Value.Asset, nil
}

func (c *LinkedInClient) uploadImage(ctx context.Context, uploadURL string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.api.Do(req)
	if err != nil {
		return fmt.Errorf("failed to upload image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("image upload failed with status %d: %s", resp.StatusCode, string(b))
	}
	return nil
}

func (c *LinkedInClient) createPost(ctx context.Context, text, asset string) (string, error) {
	content := shareContent{
		ShareCommentary:    textValue{Text: text},
		ShareMediaCategory: "NONE",
	}
	if asset != "" {
		content.ShareMediaCategory = "IMAGE"
		content.Media = []ugcMedia{{
			Status:      "READY",
			Description: textValue{Text: mediaLabel},
			Media:       asset,
			Title:       textValue{Text: mediaLabel},
		}}
	}

	post := ugcPost{
		Author:          c.personURN,
		LifecycleState:  "PUBLISHED",
		SpecificContent: map[string]shareContent{shareContentKey: content},
		Visibility:      map[string]string{visibilityKey: "PUBLIC"},
	}

	respBody, header, err := c.doJSON(ctx, c.baseURL+"/ugcPosts", post)
	if err != nil {
		return "", fmt.Errorf("failed to create post: %w", err)
	}

	id := header.Get("X-RestLi-Id")
	if id == "" {
		var out struct {
			ID string `json:"id"`
		}
		_ = json.Unmarshal(respBody, &out)
		id = out.ID
	}
	log.Info().Str("post_id", id).Bool("image", asset != "").Msg("published linkedin post")
	return id, nil
}

func (c *LinkedInClient) doJSON(ctx context.Context, endpoint string, body any) ([]byte, http.Header, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := c.api.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}
	return respBody, resp.Header, nil
}
