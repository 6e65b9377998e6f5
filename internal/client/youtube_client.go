package client

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/astralremix/api/internal/config"
	"github.com/astralremix/api/internal/model"
)

// ErrInvalidChannelURL is returned when a channel URL cannot be resolved
var ErrInvalidChannelURL = errors.New("Invalid YouTube channel URL")

// ErrYouTubeNotConfigured is returned when YOUTUBE_API_KEY is missing
var ErrYouTubeNotConfigured = errors.New("YOUTUBE_API_KEY is not set")

const uploadsPageSize = 10

var (
	channelIDPattern   = regexp.MustCompile(`/channel/([^/?#]+)`)
	channelNamePattern = regexp.MustCompile(`/(?:@|c/|user/)([^/?#]+)`)
)

// YouTubeClient reads channel uploads through the Data API v3
type YouTubeClient struct {
	svc *youtube.Service
}

// NewYouTubeClient creates a client. Extra options are appended after the
// API key, which lets tests point the service at a local endpoint.
func NewYouTubeClient(ctx context.Context, cfg *config.YouTubeConfig, opts ...option.ClientOption) (*YouTubeClient, error) {
	if cfg.APIKey == "" {
		return &YouTubeClient{}, nil
	}

	svc, err := youtube.NewService(ctx, append([]option.ClientOption{option.WithAPIKey(cfg.APIKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("youtube service: %w", err)
	}
	return &YouTubeClient{svc: svc}, nil
}

// IsConfigured returns true if the client has valid configuration
func (c *YouTubeClient) IsConfigured() bool {
	return c.svc != nil
}

// ResolveChannelID turns a channel URL into a channel id. /channel/ URLs are
// parsed directly; handle, /c/ and /user/ URLs go through channel search.
func (c *YouTubeClient) ResolveChannelID(ctx context.Context, channelURL string) (string, error) {
	if m := channelIDPattern.FindStringSubmatch(channelURL); m != nil {
		return m[1], nil
	}

	m := channelNamePattern.FindStringSubmatch(channelURL)
	if m == nil {
		return "", ErrInvalidChannelURL
	}
	if !c.IsConfigured() {
		return "", ErrYouTubeNotConfigured
	}

	resp, err := c.svc.Search.List([]string{"snippet"}).
		Type("channel").
		Q(m[1]).
		MaxResults(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to search channel %s: %w", m[1], err)
	}
	if len(resp.Items) == 0 || resp.Items[0].Snippet == nil || resp.Items[0].Snippet.ChannelId == "" {
		return "", ErrInvalidChannelURL
	}
	return resp.Items[0].Snippet.ChannelId, nil
}

// ChannelVideos lists the most recent uploads of a channel with view counts
func (c *YouTubeClient) ChannelVideos(ctx context.Context, channelID string) ([]model.Video, error) {
	if !c.IsConfigured() {
		return nil, ErrYouTubeNotConfigured
	}

	channels, err := c.svc.Channels.List([]string{"contentDetails", "snippet"}).
		Id(channelID).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get channel %s: %w", channelID, err)
	}
	if len(channels.Items) == 0 {
		return nil, fmt.Errorf("channel not found: %s", channelID)
	}
	ch := channels.Items[0]
	if ch.ContentDetails == nil || ch.ContentDetails.RelatedPlaylists == nil {
		return nil, fmt.Errorf("channel %s has no uploads playlist", channelID)
	}
	channelName := ""
	if ch.Snippet != nil {
		channelName = ch.Snippet.Title
	}

	items, err := c.svc.PlaylistItems.List([]string{"snippet"}).
		PlaylistId(ch.ContentDetails.RelatedPlaylists.Uploads).
		MaxResults(uploadsPageSize).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}

	videos := make([]model.Video, 0, len(items.Items))
	ids := make([]string, 0, len(items.Items))
	for _, it := range items.Items {
		s := it.Snippet
		if s == nil || s.ResourceId == nil || s.ResourceId.VideoId == "" {
			continue
		}
		v := model.Video{
			ID:          s.ResourceId.VideoId,
			Title:       s.Title,
			URL:         "https://www.youtube.com/watch?v=" + s.ResourceId.VideoId,
			ChannelName: channelName,
		}
		if s.Thumbnails != nil && s.Thumbnails.Medium != nil {
			v.Thumbnail = s.Thumbnails.Medium.Url
		}
		if t, err := time.Parse(time.RFC3339, s.PublishedAt); err == nil {
			v.PublishedAt = t
		}
		videos = append(videos, v)
		ids = append(ids, v.ID)
	}
	if len(ids) == 0 {
		return videos, nil
	}

	stats, err := c.svc.Videos.List([]string{"statistics"}).
		Id(ids...).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get video statistics: %w", err)
	}
	views := make(map[string]int64, len(stats.Items))
	for _, v := range stats.Items {
		if v.Statistics != nil {
			views[v.Id] = int64(v.Statistics.ViewCount)
		}
	}
	for i := range videos {
		videos[i].Views = views[videos[i].ID]
	}
	return videos, nil
}
