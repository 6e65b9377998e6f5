package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/astralremix/api/internal/model"
)

const (
	instagramBaseURL  = "https://www.instagram.com"
	browserUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	untitledInstagram = "Untitled Instagram Post"
)

// InstagramClient reads recent posts from the public profile endpoint
type InstagramClient struct {
	httpClient *http.Client
	baseURL    string
}

func NewInstagramClient() *InstagramClient {
	return &InstagramClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    instagramBaseURL,
	}
}

type instagramProfile struct {
	GraphQL struct {
		User struct {
			FullName string `json:"full_name"`
			Media    struct {
				Edges []struct {
					Node instagramNode `json:"node"`
				} `json:"edges"`
			} `json:"edge_owner_to_timeline_media"`
		} `json:"user"`
	} `json:"graphql"`
}

type instagramNode struct {
	ID         string `json:"id"`
	Shortcode  string `json:"shortcode"`
	DisplayURL string `json:"display_url"`
	TakenAt    int64  `json:"taken_at_timestamp"`
	LikedBy    struct {
		Count int64 `json:"count"`
	} `json:"edge_liked_by"`
	Caption struct {
		Edges []struct {
			Node struct {
				Text string `json:"text"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"edge_media_to_caption"`
}

// UserPosts fetches the latest posts of a public profile. Likes are
// reported as views since the endpoint exposes no play counts.
func (c *InstagramClient) UserPosts(ctx context.Context, username string) ([]model.Video, error) {
	endpoint := fmt.Sprintf("%s/%s/?__a=1&__d=dis", c.baseURL, url.PathEscape(username))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch instagram profile: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("instagram returned status %d", resp.StatusCode)
	}

	var profile instagramProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse instagram profile: %w", err)
	}

	edges := profile.GraphQL.User.Media.Edges
	videos := make([]model.Video, 0, len(edges))
	for _, e := range edges {
		n := e.Node
		title := untitledInstagram
		if len(n.Caption.Edges) > 0 && n.Caption.Edges[0].Node.Text != "" {
			title = n.Caption.Edges[0].Node.Text
		}
		videos = append(videos, model.Video{
			ID:          n.ID,
			Title:       title,
			Thumbnail:   n.DisplayURL,
			URL:         fmt.Sprintf("%s/p/%s/", instagramBaseURL, n.Shortcode),
			Views:       n.LikedBy.Count,
			PublishedAt: time.Unix(n.TakenAt, 0).UTC(),
			ChannelName: username,
		})
	}
	return videos, nil
}
