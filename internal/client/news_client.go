package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/astralremix/api/internal/model"
)

const (
	newsPerFeed    = 5
	newsSummaryMax = 200
)

// FeedSource is a named RSS or Atom feed
type FeedSource struct {
	Name string
	URL  string
}

// DefaultFeeds are the AI news sources polled by the news endpoint
var DefaultFeeds = []FeedSource{
	{Name: "Google News", URL: "https://news.google.com/rss/search?q=artificial+intelligence+when:1d&hl=en-US&gl=US&ceid=US:en"},
	{Name: "Hacker News", URL: "https://hnrss.org/newest?q=AI+OR+machine+learning"},
	{Name: "TechCrunch", URL: "https://techcrunch.com/category/artificial-intelligence/feed/"},
}

// NewsClient reads headlines from syndication feeds
type NewsClient struct {
	parser *gofeed.Parser
}

func NewNewsClient() *NewsClient {
	fp := gofeed.NewParser()
	fp.Client = &http.Client{Timeout: 20 * time.Second}
	return &NewsClient{parser: fp}
}

// Fetch returns the first items of one feed
func (c *NewsClient) Fetch(ctx context.Context, src FeedSource) ([]model.NewsItem, error) {
	feed, err := c.parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", src.Name, err)
	}

	n := len(feed.Items)
	if n > newsPerFeed {
		n = newsPerFeed
	}
	items := make([]model.NewsItem, 0, n)
	for _, it := range feed.Items[:n] {
		title := strings.TrimSpace(it.Title)
		if title == "" {
			title = "Untitled"
		}
		item := model.NewsItem{
			Title:   title,
			Link:    it.Link,
			Source:  src.Name,
			Summary: summarize(it),
		}
		switch {
		case it.PublishedParsed != nil:
			item.PubDate = *it.PublishedParsed
		case it.UpdatedParsed != nil:
			item.PubDate = *it.UpdatedParsed
		}
		items = append(items, item)
	}
	return items, nil
}

func summarize(it *gofeed.Item) string {
	raw := it.Description
	if raw == "" {
		raw = it.Content
	}
	if raw == "" {
		return ""
	}
	text, err := ExtractText(strings.NewReader(raw), newsSummaryMax)
	if err != nil {
		return truncateRunes(raw, newsSummaryMax)
	}
	return text
}
