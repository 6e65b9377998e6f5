package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/astralremix/api/internal/metrics"
	"github.com/astralremix/api/internal/model"
	"github.com/astralremix/api/internal/store"
)

// Notifier receives queue item updates for live subscribers
type Notifier interface {
	BroadcastStatus(queueItemID string, status model.QueueStatus, stage string)
	BroadcastComplete(queueItemID string, pack *model.ContentPack)
	BroadcastError(queueItemID string, code, message string)
}

// transitions lists the allowed status moves. Nothing leaves failed and
// nothing returns to pending or processing.
var transitions = map[model.QueueStatus][]model.QueueStatus{
	model.QueueStatusPending:    {model.QueueStatusProcessing, model.QueueStatusFailed},
	model.QueueStatusProcessing: {model.QueueStatusCompleted, model.QueueStatusFailed},
	model.QueueStatusCompleted:  {model.QueueStatusScheduled},
}

// CanTransition reports whether a queue item may move from one status to another
func CanTransition(from, to model.QueueStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// QueueService owns queue item status transitions
type QueueService struct {
	items    store.Collection[model.QueueItem]
	notifier Notifier
	now      func() time.Time
}

func NewQueueService(items store.Collection[model.QueueItem], notifier Notifier) *QueueService {
	return &QueueService{
		items:    items,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Add creates a pending queue item
func (s *QueueService) Add(ctx context.Context, url string, sourceType model.SourceType) (*model.QueueItem, error) {
	item := model.QueueItem{
		ID:         uuid.New().String(),
		URL:        url,
		SourceType: sourceType,
		Status:     model.QueueStatusPending,
		CreatedAt:  s.now(),
	}
	if err := s.items.Append(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to add queue item: %w", err)
	}
	return &item, nil
}

// Get returns one queue item
func (s *QueueService) Get(ctx context.Context, id string) (*model.QueueItem, error) {
	item, err := store.Find(ctx, s.items, id, model.QueueItem.GetID)
	if err != nil {
		return nil, s.mapErr(err)
	}
	return &item, nil
}

// List returns all queue items in insertion order
func (s *QueueService) List(ctx context.Context) ([]model.QueueItem, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}
	return items, nil
}

// Stats counts items per status
func (s *QueueService) Stats(ctx context.Context) (*model.QueueStats, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	stats := &model.QueueStats{Total: len(items)}
	for _, it := range items {
		switch it.Status {
		case model.QueueStatusPending:
			stats.Pending++
		case model.QueueStatusProcessing:
			stats.Processing++
		case model.QueueStatusCompleted:
			stats.Completed++
		case model.QueueStatusFailed:
			stats.Failed++
		case model.QueueStatusScheduled:
			stats.Scheduled++
		}
	}
	return stats, nil
}

// MarkProcessing moves a pending item to processing
func (s *QueueService) MarkProcessing(ctx context.Context, id string) error {
	_, err := s.transition(ctx, id, model.QueueStatusProcessing, nil)
	if err != nil {
		return err
	}
	s.notify(func(n Notifier) { n.BroadcastStatus(id, model.QueueStatusProcessing, "") })
	return nil
}

// Complete attaches the content pack and stamps completion
func (s *QueueService) Complete(ctx context.Context, id string, pack *model.ContentPack) error {
	_, err := s.transition(ctx, id, model.QueueStatusCompleted, func(it *model.QueueItem) {
		now := s.now()
		it.ContentPack = pack
		it.Error = ""
		it.CompletedAt = &now
	})
	if err != nil {
		return err
	}
	s.notify(func(n Notifier) { n.BroadcastComplete(id, pack) })
	return nil
}

// Fail records the error message and stamps completion
func (s *QueueService) Fail(ctx context.Context, id string, message string) error {
	_, err := s.transition(ctx, id, model.QueueStatusFailed, func(it *model.QueueItem) {
		now := s.now()
		it.ContentPack = nil
		it.Error = message
		it.CompletedAt = &now
	})
	if err != nil {
		return err
	}
	s.notify(func(n Notifier) { n.BroadcastError(id, "REMIX_FAILED", message) })
	return nil
}

// Schedule marks a completed item for publishing at a later time. The
// content pack is kept for the publisher.
func (s *QueueService) Schedule(ctx context.Context, id string, at time.Time, platform model.PublishPlatform) (*model.QueueItem, error) {
	if platform == "" {
		platform = model.PublishLinkedIn
	}
	item, err := s.transition(ctx, id, model.QueueStatusScheduled, func(it *model.QueueItem) {
		t := at.UTC()
		it.ScheduledFor = &t
		it.Platform = platform
	})
	if err != nil {
		return nil, err
	}
	s.notify(func(n Notifier) { n.BroadcastStatus(id, model.QueueStatusScheduled, "") })
	return item, nil
}

// Scheduled returns scheduled items, soonest first
func (s *QueueService) Scheduled(ctx context.Context) ([]model.QueueItem, error) {
	items, err := s.byStatus(ctx, model.QueueStatusScheduled)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		return timeOf(items[i].ScheduledFor).Before(timeOf(items[j].ScheduledFor))
	})
	return items, nil
}

// Completed returns completed items, most recent first
func (s *QueueService) Completed(ctx context.Context) ([]model.QueueItem, error) {
	items, err := s.byStatus(ctx, model.QueueStatusCompleted)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		return timeOf(items[i].CompletedAt).After(timeOf(items[j].CompletedAt))
	})
	return items, nil
}

// Due returns scheduled items whose time has come and that were not posted yet
func (s *QueueService) Due(ctx context.Context, now time.Time) ([]model.QueueItem, error) {
	scheduled, err := s.Scheduled(ctx)
	if err != nil {
		return nil, err
	}
	var due []model.QueueItem
	for _, it := range scheduled {
		if it.PostedAt == nil && it.ScheduledFor != nil && !it.ScheduledFor.After(now) {
			due = append(due, it)
		}
	}
	return due, nil
}

// MarkPosted stamps the publish time of a scheduled item
func (s *QueueService) MarkPosted(ctx context.Context, id string, at time.Time) error {
	_, err := s.items.Update(ctx, id, func(it *model.QueueItem) error {
		if it.Status != model.QueueStatusScheduled {
			return fmt.Errorf("%w: item %s is %s, not scheduled", ErrInvalidTransition, id, it.Status)
		}
		t := at.UTC()
		it.PostedAt = &t
		return nil
	})
	return s.mapErr(err)
}

// ClearPosted undoes MarkPosted after a failed publish
func (s *QueueService) ClearPosted(ctx context.Context, id string) error {
	_, err := s.items.Update(ctx, id, func(it *model.QueueItem) error {
		it.PostedAt = nil
		return nil
	})
	return s.mapErr(err)
}

// Remove deletes a queue item
func (s *QueueService) Remove(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.items.Remove(ctx, id); err != nil {
		return fmt.Errorf("failed to remove queue item: %w", err)
	}
	return nil
}

func (s *QueueService) transition(ctx context.Context, id string, to model.QueueStatus, patch func(*model.QueueItem)) (*model.QueueItem, error) {
	var from model.QueueStatus
	item, err := s.items.Update(ctx, id, func(it *model.QueueItem) error {
		from = it.Status
		if !CanTransition(it.Status, to) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, it.Status, to)
		}
		it.Status = to
		if patch != nil {
			patch(it)
		}
		return nil
	})
	if err != nil {
		return nil, s.mapErr(err)
	}
	metrics.QueueTransitions.WithLabelValues(string(to)).Inc()
	log.Debug().Str("queue_item_id", id).Str("from", string(from)).Str("to", string(to)).Msg("queue transition")
	return &item, nil
}

func (s *QueueService) byStatus(ctx context.Context, status model.QueueStatus) ([]model.QueueItem, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.QueueItem, 0, len(items))
	for _, it := range items {
		if it.Status == status {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *QueueService) notify(fn func(Notifier)) {
	if s.notifier != nil {
		fn(s.notifier)
	}
}

func (s *QueueService) mapErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrQueueItemNotFound
	}
	return err
}

func timeOf(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
