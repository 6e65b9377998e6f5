package model

import "time"

// QueueItem tracks one unit of batch work through its lifecycle
type QueueItem struct {
	ID           string          `json:"id"`
	URL          string          `json:"url"`
	SourceType   SourceType      `json:"sourceType"`
	Status       QueueStatus     `json:"status"`
	Platform     PublishPlatform `json:"platform,omitempty"`
	ContentPack  *ContentPack    `json:"contentPack,omitempty"`
	Error        string          `json:"error,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	CompletedAt  *time.Time      `json:"completedAt,omitempty"`
	ScheduledFor *time.Time      `json:"scheduledFor,omitempty"`
	PostedAt     *time.Time      `json:"postedAt,omitempty"`
}

// QueueStats counts queue items per status
type QueueStats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
	Scheduled  int `json:"scheduled"`
}

// ScheduleRequest attaches a publish time and platform to a completed item
type ScheduleRequest struct {
	ScheduledFor time.Time       `json:"scheduledFor" validate:"required"`
	Platform     PublishPlatform `json:"platform" validate:"omitempty,oneof=linkedin twitter both"`
}

// BatchRequest is the input for a batch remix
type BatchRequest struct {
	URLs  []string `json:"urls" validate:"required,min=1,max=50,dive,required,url"`
	Style Style    `json:"style" validate:"omitempty,oneof=punchy explainer deepdive"`
	Model Backend  `json:"model" validate:"omitempty,oneof=gemini nano"`
	Async bool     `json:"async"`
}

// BatchItemResult is the outcome of one URL in a batch
type BatchItemResult struct {
	URL         string `json:"url"`
	QueueItemID string `json:"queueItemId"`
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`
}

// BatchResult aggregates a finished batch
type BatchResult struct {
	Total     int               `json:"total"`
	Completed int               `json:"completed"`
	Failed    int               `json:"failed"`
	Results   []BatchItemResult `json:"results"`
}

// BatchAcceptedResponse is returned when a batch is handed to the worker
type BatchAcceptedResponse struct {
	BatchID string      `json:"batchId"`
	Items   []QueueItem `json:"items"`
}

// BatchTaskPayload is the asynq payload for a background batch
type BatchTaskPayload struct {
	BatchID string   `json:"batchId"`
	ItemIDs []string `json:"itemIds"`
	Style   Style    `json:"style"`
	Model   Backend  `json:"model"`
}

// GetID returns the queue item id.
func (q QueueItem) GetID() string { return q.ID }
