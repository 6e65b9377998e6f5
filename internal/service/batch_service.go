package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"github.com/astralremix/api/internal/model"
)

const (
	TaskTypeBatchRemix = "remix:batch"
	TaskTypePublishDue = "publish:due"

	QueueRemix   = "remix"
	QueuePublish = "publish"
)

// ErrBackgroundUnavailable is returned when no task queue is wired
var ErrBackgroundUnavailable = errors.New("background processing is not available")

// Remixer runs one video remix and reports the outcome
type Remixer interface {
	Run(ctx context.Context, req *model.RemixRequest) model.RemixResult
}

// TaskEnqueuer hands tasks to the background worker
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// BatchService remixes lists of URLs one at a time
type BatchService struct {
	queue    *QueueService
	remixer  Remixer
	enqueuer TaskEnqueuer
}

func NewBatchService(queue *QueueService, remixer Remixer, enqueuer TaskEnqueuer) *BatchService {
	return &BatchService{queue: queue, remixer: remixer, enqueuer: enqueuer}
}

// Run creates one queue item per URL and processes them sequentially. A
// failing item is recorded and does not stop the batch.
func (s *BatchService) Run(ctx context.Context, req *model.BatchRequest) (*model.BatchResult, error) {
	items, err := s.enqueueItems(ctx, req.URLs)
	if err != nil {
		return nil, err
	}
	return s.process(ctx, items, req.Style, req.Model), nil
}

// Submit creates the queue items and hands processing to the worker
func (s *BatchService) Submit(ctx context.Context, req *model.BatchRequest) (*model.BatchAcceptedResponse, error) {
	if s.enqueuer == nil {
		return nil, ErrBackgroundUnavailable
	}

	items, err := s.enqueueItems(ctx, req.URLs)
	if err != nil {
		return nil, err
	}

	payload := model.BatchTaskPayload{
		BatchID: uuid.New().String(),
		ItemIDs: make([]string, len(items)),
		Style:   req.Style,
		Model:   req.Model,
	}
	for i, it := range items {
		payload.ItemIDs[i] = it.ID
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	_, err = s.enqueuer.Enqueue(asynq.NewTask(TaskTypeBatchRemix, payloadBytes),
		asynq.Queue(QueueRemix),
		asynq.MaxRetry(0),
		asynq.Timeout(2*time.Hour),
		asynq.Retention(24*time.Hour),
	)
	if err != nil {
		for _, it := range items {
			if ferr := s.queue.Fail(ctx, it.ID, "Failed to enqueue batch"); ferr != nil {
				log.Warn().Err(ferr).Str("queue_item_id", it.ID).Msg("failed to mark item failed")
			}
		}
		return nil, fmt.Errorf("failed to enqueue task: %w", err)
	}

	log.Info().Str("batch_id", payload.BatchID).Int("items", len(items)).Msg("batch enqueued")
	return &model.BatchAcceptedResponse{BatchID: payload.BatchID, Items: items}, nil
}

// ProcessTask runs a batch that was handed to the worker
func (s *BatchService) ProcessTask(ctx context.Context, payload *model.BatchTaskPayload) (*model.BatchResult, error) {
	items := make([]model.QueueItem, 0, len(payload.ItemIDs))
	for _, id := range payload.ItemIDs {
		item, err := s.queue.Get(ctx, id)
		if err != nil {
			log.Warn().Err(err).Str("batch_id", payload.BatchID).Str("queue_item_id", id).Msg("skipping missing queue item")
			continue
		}
		items = append(items, *item)
	}
	return s.process(ctx, items, payload.Style, payload.Model), nil
}

func (s *BatchService) enqueueItems(ctx context.Context, urls []string) ([]model.QueueItem, error) {
	items := make([]model.QueueItem, 0, len(urls))
	for _, u := range urls {
		item, err := s.queue.Add(ctx, u, model.SourceVideo)
		if err != nil {
			// Items created so far would otherwise stay pending forever.
			for _, it := range items {
				s.fail(ctx, it.ID, "Failed to create batch")
			}
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

func (s *BatchService) process(ctx context.Context, items []model.QueueItem, style model.Style, backend model.Backend) *model.BatchResult {
	result := &model.BatchResult{
		Total:   len(items),
		Results: make([]model.BatchItemResult, 0, len(items)),
	}

	for i, item := range items {
		log.Info().Str("queue_item_id", item.ID).Str("url", item.URL).Int("index", i+1).Int("total", len(items)).Msg("processing batch item")

		r := s.processItem(ctx, item, style, backend)
		if r.Success {
			result.Completed++
		} else {
			result.Failed++
		}
		result.Results = append(result.Results, r)
	}
	return result
}

func (s *BatchService) processItem(ctx context.Context, item model.QueueItem, style model.Style, backend model.Backend) (r model.BatchItemResult) {
	r = model.BatchItemResult{URL: item.URL, QueueItemID: item.ID}

	defer func() {
		if p := recover(); p != nil {
			log.Error().Interface("panic", p).Str("queue_item_id", item.ID).Msg("batch item panicked")
			r.Success = false
			r.Error = fmt.Sprintf("%v", p)
			s.fail(ctx, item.ID, r.Error)
		}
	}()

	if err := s.queue.MarkProcessing(ctx, item.ID); err != nil {
		r.Error = err.Error()
		s.fail(ctx, item.ID, r.Error)
		return r
	}

	res := s.remixer.Run(ctx, &model.RemixRequest{URL: item.URL, Style: style, Model: backend})
	if !res.Success {
		r.Error = res.Error
		s.fail(ctx, item.ID, res.Error)
		return r
	}

	if err := s.queue.Complete(ctx, item.ID, res.Data); err != nil {
		log.Error().Err(err).Str("queue_item_id", item.ID).Msg("failed to mark item completed")
		r.Error = fmt.Sprintf("Failed to save result: %v", err)
		s.fail(ctx, item.ID, r.Error)
		return r
	}
	r.Success = true
	return r
}

func (s *BatchService) fail(ctx context.Context, id, message string) {
	if err := s.queue.Fail(ctx, id, message); err != nil {
		log.Error().Err(err).Str("queue_item_id", id).Msg("failed to mark item failed")
	}
}
