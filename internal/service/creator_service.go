package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/astralremix/api/internal/client"
	"github.com/astralremix/api/internal/model"
	"github.com/astralremix/api/internal/store"
)

const DefaultScanLimit = 10

var instagramUserPattern = regexp.MustCompile(`(?i)instagram\.com/([^/?#]+)`)

// ChannelSource lists uploads of YouTube channels
type ChannelSource interface {
	ResolveChannelID(ctx context.Context, channelURL string) (string, error)
	ChannelVideos(ctx context.Context, channelID string) ([]model.Video, error)
}

// PostSource lists recent posts of an Instagram profile
type PostSource interface {
	UserPosts(ctx context.Context, username string) ([]model.Video, error)
}

// CreatorService manages the creator roster and scans their recent uploads
type CreatorService struct {
	creators  store.Collection[model.Creator]
	youtube   ChannelSource
	instagram PostSource
}

func NewCreatorService(creators store.Collection[model.Creator], youtube ChannelSource, instagram PostSource) *CreatorService {
	return &CreatorService{creators: creators, youtube: youtube, instagram: instagram}
}

// List returns all creators in the order they were added
func (s *CreatorService) List(ctx context.Context) ([]model.Creator, error) {
	creators, err := s.creators.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list creators: %w", err)
	}
	return creators, nil
}

// Add detects the platform from the channel URL and stores a new creator.
// YouTube URLs must resolve to a channel id.
func (s *CreatorService) Add(ctx context.Context, req *model.CreateCreatorRequest) (*model.Creator, error) {
	creator := model.Creator{
		ID:         uuid.New().String(),
		Name:       req.Name,
		ChannelURL: req.ChannelURL,
		AddedAt:    time.Now().UTC(),
	}

	lower := strings.ToLower(req.ChannelURL)
	switch {
	case strings.Contains(lower, "instagram.com"):
		creator.Platform = model.CreatorInstagram
	case strings.Contains(lower, "tiktok.com"):
		creator.Platform = model.CreatorTikTok
	default:
		creator.Platform = model.CreatorYouTube
		channelID, err := s.youtube.ResolveChannelID(ctx, req.ChannelURL)
		if err != nil {
			if errors.Is(err, client.ErrInvalidChannelURL) {
				return nil, ValidationError(err.Error())
			}
			log.Warn().Err(err).Str("url", req.ChannelURL).Msg("failed to resolve channel")
			return nil, ValidationError(client.ErrInvalidChannelURL.Error())
		}
		creator.ChannelID = channelID
	}

	if err := s.creators.Append(ctx, creator); err != nil {
		return nil, fmt.Errorf("failed to add creator: %w", err)
	}
	log.Info().Str("creator_id", creator.ID).Str("platform", string(creator.Platform)).Msg("creator added")
	return &creator, nil
}

// Remove deletes a creator
func (s *CreatorService) Remove(ctx context.Context, id string) error {
	if _, err := store.Find(ctx, s.creators, id, model.Creator.GetID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrCreatorNotFound
		}
		return err
	}
	return s.creators.Remove(ctx, id)
}

// ScanChannel returns the latest uploads of one channel, most viewed first
func (s *CreatorService) ScanChannel(ctx context.Context, channelID string) ([]model.Video, error) {
	videos, err := s.youtube.ChannelVideos(ctx, channelID)
	if err != nil {
		return nil, err
	}
	sortByViews(videos)
	return videos, nil
}

// ScanAll collects recent uploads of every creator. Failures of a single
// creator are logged and skipped.
func (s *CreatorService) ScanAll(ctx context.Context, limitPerCreator int) ([]model.Video, error) {
	if limitPerCreator <= 0 {
		limitPerCreator = DefaultScanLimit
	}
	creators, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	all := []model.Video{}
	for _, c := range creators {
		var (
			videos []model.Video
			err    error
		)
		switch c.Platform {
		case model.CreatorYouTube:
			if c.ChannelID == "" {
				continue
			}
			videos, err = s.youtube.ChannelVideos(ctx, c.ChannelID)
		case model.CreatorInstagram:
			m := instagramUserPattern.FindStringSubmatch(c.ChannelURL)
			if m == nil {
				continue
			}
			videos, err = s.instagram.UserPosts(ctx, m[1])
		default:
			log.Debug().Str("creator", c.Name).Str("platform", string(c.Platform)).Msg("no scanner for platform")
			continue
		}
		if err != nil {
			log.Error().Err(err).Str("creator", c.Name).Str("platform", string(c.Platform)).Msg("failed to scan creator")
			continue
		}

		if len(videos) > limitPerCreator {
			videos = videos[:limitPerCreator]
		}
		for i := range videos {
			videos[i].ChannelName = c.Name
		}
		all = append(all, videos...)
	}

	sortByViews(all)
	return all, nil
}

func sortByViews(videos []model.Video) {
	sort.SliceStable(videos, func(i, j int) bool { return videos[i].Views > videos[j].Views })
}
