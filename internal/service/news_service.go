package service

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/astralremix/api/internal/client"
	"github.com/astralremix/api/internal/model"
)

const newsLimit = 10

// FeedReader fetches the items of one feed
type FeedReader interface {
	Fetch(ctx context.Context, src client.FeedSource) ([]model.NewsItem, error)
}

// NewsService merges AI headlines from several feeds
type NewsService struct {
	reader FeedReader
	feeds  []client.FeedSource
}

func NewNewsService(reader FeedReader, feeds []client.FeedSource) *NewsService {
	if feeds == nil {
		feeds = client.DefaultFeeds
	}
	return &NewsService{reader: reader, feeds: feeds}
}

// Latest returns the newest headlines across all feeds. A failing feed is
// logged and skipped.
func (s *NewsService) Latest(ctx context.Context) ([]model.NewsItem, error) {
	all := []model.NewsItem{}
	for _, src := range s.feeds {
		items, err := s.reader.Fetch(ctx, src)
		if err != nil {
			log.Warn().Err(err).Str("source", src.Name).Msg("failed to fetch news feed")
			continue
		}
		all = append(all, items...)
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].PubDate.After(all[j].PubDate) })
	if len(all) > newsLimit {
		all = all[:newsLimit]
	}
	return all, nil
}
