package model

import "time"

// Creator is a tracked channel whose uploads can be scanned for remix ideas
type Creator struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Platform   CreatorPlatform `json:"platform"`
	ChannelID  string          `json:"channelId,omitempty"`
	ChannelURL string          `json:"channelUrl"`
	AddedAt    time.Time       `json:"addedAt"`
}

type CreateCreatorRequest struct {
	ChannelURL string `json:"channelUrl" validate:"required,url"`
	Name       string `json:"name" validate:"required,max=200"`
}

// Video is a recent upload from a tracked creator
type Video struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Thumbnail   string    `json:"thumbnail"`
	URL         string    `json:"url"`
	Views       int64     `json:"views"`
	PublishedAt time.Time `json:"publishedAt"`
	ChannelName string    `json:"channelName"`
}

// NewsItem is a headline from one of the AI news feeds
type NewsItem struct {
	Title   string    `json:"title"`
	Link    string    `json:"link"`
	PubDate time.Time `json:"pubDate"`
	Source  string    `json:"source"`
	Summary string    `json:"summary,omitempty"`
}

// ShareRequest posts text (and optionally an image) to LinkedIn
type ShareRequest struct {
	Text     string `json:"text" validate:"required,max=3000"`
	ImageURL string `json:"imageUrl" validate:"omitempty,url"`
}

type ShareResponse struct {
	Success bool   `json:"success"`
	PostID  string `json:"postId,omitempty"`
}

// GetID returns the creator id.
func (c Creator) GetID() string { return c.ID }
