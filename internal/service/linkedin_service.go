package service

import (
	"context"
	"errors"

	"github.com/astralremix/api/internal/client"
	"github.com/astralremix/api/internal/model"
)

// Poster publishes to LinkedIn
type Poster interface {
	Share(ctx context.Context, text, imageURL string) (string, error)
	IsConfigured() bool
}

// LinkedInService shares posts on the configured member's feed
type LinkedInService struct {
	poster Poster
}

func NewLinkedInService(poster Poster) *LinkedInService {
	return &LinkedInService{poster: poster}
}

// Share posts text with an optional image
func (s *LinkedInService) Share(ctx context.Context, req *model.ShareRequest) (*model.ShareResponse, error) {
	if req.Text == "" {
		return nil, ValidationError("Text is required")
	}
	if !s.poster.IsConfigured() {
		return nil, client.ErrLinkedInNotConfigured
	}

	id, err := s.poster.Share(ctx, req.Text, req.ImageURL)
	if err != nil {
		return nil, err
	}
	return &model.ShareResponse{Success: true, PostID: id}, nil
}

// IsNotConfigured reports whether err means LinkedIn credentials are missing
func IsNotConfigured(err error) bool {
	return errors.Is(err, client.ErrLinkedInNotConfigured)
}
