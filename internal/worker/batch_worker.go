package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"github.com/astralremix/api/internal/model"
)

// BatchProcessor runs a queued batch
type BatchProcessor interface {
	ProcessTask(ctx context.Context, payload *model.BatchTaskPayload) (*model.BatchResult, error)
}

// BatchWorker processes background batch remixes
type BatchWorker struct {
	batches BatchProcessor
}

// NewBatchWorker creates a new batch worker
func NewBatchWorker(batches BatchProcessor) *BatchWorker {
	return &BatchWorker{batches: batches}
}

// ProcessTask handles batch task processing. Item failures are recorded on
// the queue items, so the task itself only fails on a bad payload.
func (w *BatchWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload model.BatchTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal batch payload: %w: %w", err, asynq.SkipRetry)
	}

	log.Info().Str("batch_id", payload.BatchID).Int("items", len(payload.ItemIDs)).Msg("starting batch")

	result, err := w.batches.ProcessTask(ctx, &payload)
	if err != nil {
		log.Error().Err(err).Str("batch_id", payload.BatchID).Msg("batch failed")
		return err
	}

	log.Info().
		Str("batch_id", payload.BatchID).
		Int("total", result.Total).
		Int("completed", result.Completed).
		Int("failed", result.Failed).
		Msg("batch finished")
	return nil
}
