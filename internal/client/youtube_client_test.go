package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/astralremix/api/internal/config"
)

func newTestYouTube(t *testing.T, handler http.HandlerFunc) *YouTubeClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewYouTubeClient(context.Background(), &config.YouTubeConfig{APIKey: "test-key"},
		option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	return c
}

func TestResolveChannelIDDirect(t *testing.T) {
	c := &YouTubeClient{}
	id, err := c.ResolveChannelID(context.Background(), "https://www.youtube.com/channel/UC123/videos")
	require.NoError(t, err)
	assert.Equal(t, "UC123", id)
}

func TestResolveChannelIDInvalid(t *testing.T) {
	c := &YouTubeClient{}
	_, err := c.ResolveChannelID(context.Background(), "https://www.youtube.com/watch?v=abc")
	assert.ErrorIs(t, err, ErrInvalidChannelURL)
}

func TestResolveChannelIDByHandle(t *testing.T) {
	var query string
	c := newTestYouTube(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/youtube/v3/search", r.URL.Path)
		assert.Equal(t, "channel", r.URL.Query().Get("type"))
		query = r.URL.Query().Get("q")
		w.Write([]byte(`{"items":[{"snippet":{"channelId":"UCfound"}}]}`))
	})

	id, err := c.ResolveChannelID(context.Background(), "https://www.youtube.com/@aiexplained")
	require.NoError(t, err)
	assert.Equal(t, "UCfound", id)
	assert.Equal(t, "aiexplained", query)
}

func TestResolveChannelIDNoResults(t *testing.T) {
	c := newTestYouTube(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[]}`))
	})

	_, err := c.ResolveChannelID(context.Background(), "https://www.youtube.com/c/nobody")
	assert.ErrorIs(t, err, ErrInvalidChannelURL)
}

func TestChannelVideos(t *testing.T) {
	c := newTestYouTube(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/youtube/v3/channels":
			assert.Equal(t, "UC1", r.URL.Query().Get("id"))
			w.Write([]byte(`{"items":[{"snippet":{"title":"AI Lab"},"contentDetails":{"relatedPlaylists":{"uploads":"UU1"}}}]}`))
		case "/youtube/v3/playlistItems":
			assert.Equal(t, "UU1", r.URL.Query().Get("playlistId"))
			assert.Equal(t, "10", r.URL.Query().Get("maxResults"))
			w.Write([]byte(`{"items":[
				{"snippet":{"title":"First","publishedAt":"2026-01-02T03:04:05Z","resourceId":{"videoId":"v1"},"thumbnails":{"medium":{"url":"https://i.ytimg.com/v1.jpg"}}}},
				{"snippet":{"title":"Second","publishedAt":"2026-01-01T00:00:00Z","resourceId":{"videoId":"v2"}}}
			]}`))
		case "/youtube/v3/videos":
			w.Write([]byte(`{"items":[{"id":"v1","statistics":{"viewCount":"1500"}},{"id":"v2","statistics":{"viewCount":"20"}}]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	videos, err := c.ChannelVideos(context.Background(), "UC1")
	require.NoError(t, err)
	require.Len(t, videos, 2)

	assert.Equal(t, "v1", videos[0].ID)
	assert.Equal(t, "First", videos[0].Title)
	assert.Equal(t, "https://www.youtube.com/watch?v=v1", videos[0].URL)
	assert.Equal(t, "https://i.ytimg.com/v1.jpg", videos[0].Thumbnail)
	assert.Equal(t, int64(1500), videos[0].Views)
	assert.Equal(t, "AI Lab", videos[0].ChannelName)
	assert.Equal(t, 2026, videos[0].PublishedAt.Year())
	assert.Equal(t, int64(20), videos[1].Views)
}

func TestChannelVideosNotConfigured(t *testing.T) {
	c, err := NewYouTubeClient(context.Background(), &config.YouTubeConfig{})
	require.NoError(t, err)
	assert.False(t, c.IsConfigured())

	_, err = c.ChannelVideos(context.Background(), "UC1")
	assert.ErrorIs(t, err, ErrYouTubeNotConfigured)
}
