package worker

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"github.com/astralremix/api/internal/service"
)

// Publisher posts due scheduled items
type Publisher interface {
	PublishDue(ctx context.Context) (int, error)
}

// PublishWorker runs the periodic publish sweep
type PublishWorker struct {
	publisher Publisher
}

// NewPublishWorker creates a new publish worker
func NewPublishWorker(publisher Publisher) *PublishWorker {
	return &PublishWorker{publisher: publisher}
}

// ProcessTask publishes every scheduled item that is due
func (w *PublishWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	n, err := w.publisher.PublishDue(ctx)
	if err != nil {
		return fmt.Errorf("failed to publish due items: %w", err)
	}
	if n > 0 {
		log.Info().Int("published", n).Msg("published scheduled items")
	}
	return nil
}

// RegisterPublishSchedule adds the periodic publish task to scheduler
func RegisterPublishSchedule(scheduler *asynq.Scheduler, cronspec string) (string, error) {
	if cronspec == "" {
		cronspec = "@every 1m"
	}
	id, err := scheduler.Register(cronspec, asynq.NewTask(service.TaskTypePublishDue, nil),
		asynq.Queue(service.QueuePublish),
		asynq.MaxRetry(0),
	)
	if err != nil {
		return "", fmt.Errorf("failed to register publish schedule: %w", err)
	}
	return id, nil
}

// NewMux routes task types to their workers
func NewMux(batch *BatchWorker, publish *PublishWorker) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(service.TaskTypeBatchRemix, batch.ProcessTask)
	mux.HandleFunc(service.TaskTypePublishDue, publish.ProcessTask)
	return mux
}
