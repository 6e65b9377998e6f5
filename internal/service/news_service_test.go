package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astralremix/api/internal/client"
	"github.com/astralremix/api/internal/model"
)

type fakeFeeds struct {
	items map[string][]model.NewsItem
}

func (f *fakeFeeds) Fetch(ctx context.Context, src client.FeedSource) ([]model.NewsItem, error) {
	items, ok := f.items[src.Name]
	if !ok {
		return nil, errors.New("feed down")
	}
	return items, nil
}

func TestNewsLatestMergesNewestFirst(t *testing.T) {
	base := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	mk := func(src string, n int, offset int) []model.NewsItem {
		var out []model.NewsItem
		for i := 0; i < n; i++ {
			out = append(out, model.NewsItem{Title: src, Source: src, PubDate: base.Add(time.Duration(offset+i*3) * time.Hour)})
		}
		return out
	}
	feeds := &fakeFeeds{items: map[string][]model.NewsItem{
		"A": mk("A", 5, 0),
		"B": mk("B", 5, 1),
	}}
	svc := NewNewsService(feeds, []client.FeedSource{{Name: "A"}, {Name: "B"}, {Name: "C"}})

	items, err := svc.Latest(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 10)
	for i := 1; i < len(items); i++ {
		assert.False(t, items[i].PubDate.After(items[i-1].PubDate))
	}
	assert.Equal(t, "B", items[0].Source)
}

func TestNewsDefaultFeeds(t *testing.T) {
	svc := NewNewsService(&fakeFeeds{}, nil)
	assert.Len(t, svc.feeds, 3)

	items, err := svc.Latest(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}
