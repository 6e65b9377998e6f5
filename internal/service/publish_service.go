package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/astralremix/api/internal/metrics"
	"github.com/astralremix/api/internal/model"
)

// PublishService posts scheduled queue items once they are due
type PublishService struct {
	queue    *QueueService
	linkedin Poster
	now      func() time.Time
}

func NewPublishService(queue *QueueService, linkedin Poster) *PublishService {
	return &PublishService{
		queue:    queue,
		linkedin: linkedin,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// PublishDue posts every due item and returns how many were published.
// Items that fail stay scheduled and are retried on the next run. Each item
// is marked posted before it is shared, so it is posted at most once.
func (s *PublishService) PublishDue(ctx context.Context) (int, error) {
	now := s.now()
	due, err := s.queue.Due(ctx, now)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, item := range due {
		logger := log.With().Str("queue_item_id", item.ID).Str("platform", string(item.Platform)).Logger()

		if item.Platform == model.PublishTwitter {
			logger.Debug().Msg("no twitter publisher, skipping")
			continue
		}
		if item.Platform == model.PublishBoth {
			logger.Debug().Msg("no twitter publisher, posting to linkedin only")
		}
		if item.ContentPack == nil || item.ContentPack.Remix == nil || item.ContentPack.Remix.LinkedInPost == "" {
			logger.Warn().Msg("scheduled item has no linkedin post")
			continue
		}
		if !s.linkedin.IsConfigured() {
			logger.Warn().Msg("linkedin is not configured, leaving item scheduled")
			continue
		}

		remix := item.ContentPack.Remix
		image := ""
		if strings.HasPrefix(remix.LinkedInImage, "http://") || strings.HasPrefix(remix.LinkedInImage, "https://") {
			image = remix.LinkedInImage
		}

		// marked before sharing: an item is posted at most once
		if err := s.queue.MarkPosted(ctx, item.ID, now); err != nil {
			logger.Error().Err(err).Msg("failed to mark item posted, not publishing")
			continue
		}
		postID, err := s.linkedin.Share(ctx, remix.LinkedInPost, image)
		if err != nil {
			logger.Error().Err(err).Msg("failed to publish scheduled item")
			if err := s.queue.ClearPosted(ctx, item.ID); err != nil {
				logger.Error().Err(err).Msg("failed to release item, it will not be retried")
			}
			continue
		}
		metrics.PublishedPosts.WithLabelValues(string(model.PublishLinkedIn)).Inc()
		logger.Info().Str("post_id", postID).Msg("published scheduled item")
		published++
	}
	return published, nil
}
