package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astralremix/api/internal/model"
	"github.com/astralremix/api/internal/service"
)

type fakeBatches struct {
	got *model.BatchTaskPayload
	err error
}

func (f *fakeBatches) ProcessTask(ctx context.Context, p *model.BatchTaskPayload) (*model.BatchResult, error) {
	f.got = p
	if f.err != nil {
		return nil, f.err
	}
	return &model.BatchResult{Total: len(p.ItemIDs), Completed: len(p.ItemIDs)}, nil
}

type fakePublisher struct {
	n     int
	err   error
	calls int
}

func (f *fakePublisher) PublishDue(ctx context.Context) (int, error) {
	f.calls++
	return f.n, f.err
}

func TestBatchWorkerProcessTask(t *testing.T) {
	batches := &fakeBatches{}
	w := NewBatchWorker(batches)

	payload, err := json.Marshal(model.BatchTaskPayload{BatchID: "b1", ItemIDs: []string{"a", "b"}, Style: model.StylePunchy})
	require.NoError(t, err)

	require.NoError(t, w.ProcessTask(context.Background(), asynq.NewTask(service.TaskTypeBatchRemix, payload)))
	require.NotNil(t, batches.got)
	assert.Equal(t, "b1", batches.got.BatchID)
	assert.Equal(t, []string{"a", "b"}, batches.got.ItemIDs)
}

func TestBatchWorkerBadPayloadSkipsRetry(t *testing.T) {
	w := NewBatchWorker(&fakeBatches{})

	err := w.ProcessTask(context.Background(), asynq.NewTask(service.TaskTypeBatchRemix, []byte("{")))
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestBatchWorkerPropagatesError(t *testing.T) {
	w := NewBatchWorker(&fakeBatches{err: errors.New("store down")})

	payload, _ := json.Marshal(model.BatchTaskPayload{BatchID: "b1"})
	assert.Error(t, w.ProcessTask(context.Background(), asynq.NewTask(service.TaskTypeBatchRemix, payload)))
}

func TestPublishWorker(t *testing.T) {
	p := &fakePublisher{n: 2}
	w := NewPublishWorker(p)

	require.NoError(t, w.ProcessTask(context.Background(), asynq.NewTask(service.TaskTypePublishDue, nil)))
	assert.Equal(t, 1, p.calls)

	p.err = errors.New("queue unavailable")
	assert.Error(t, w.ProcessTask(context.Background(), asynq.NewTask(service.TaskTypePublishDue, nil)))
}

func TestMuxRoutesTasks(t *testing.T) {
	batches := &fakeBatches{}
	p := &fakePublisher{}
	mux := NewMux(NewBatchWorker(batches), NewPublishWorker(p))

	payload, _ := json.Marshal(model.BatchTaskPayload{BatchID: "b2"})
	require.NoError(t, mux.ProcessTask(context.Background(), asynq.NewTask(service.TaskTypeBatchRemix, payload)))
	require.NoError(t, mux.ProcessTask(context.Background(), asynq.NewTask(service.TaskTypePublishDue, nil)))

	assert.Equal(t, "b2", batches.got.BatchID)
	assert.Equal(t, 1, p.calls)
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, asynq.DebugLevel, LogLevel("DEBUG"))
	assert.Equal(t, asynq.WarnLevel, LogLevel("warn"))
	assert.Equal(t, asynq.ErrorLevel, LogLevel("error"))
	assert.Equal(t, asynq.InfoLevel, LogLevel(""))
}
