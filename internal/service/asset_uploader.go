package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/astralremix/api/internal/client"
	"github.com/astralremix/api/internal/metrics"
)

// FileService is the remote file store that holds uploaded media
type FileService interface {
	Upload(ctx context.Context, path, mimeType string) (*client.RemoteFile, error)
	GetFile(ctx context.Context, name string) (*client.RemoteFile, error)
}

// AssetUploader pushes local media to the model's file store and waits for
// the remote copy to become usable.
type AssetUploader struct {
	files    FileService
	interval time.Duration
	maxWait  time.Duration
}

func NewAssetUploader(files FileService, interval, maxWait time.Duration) *AssetUploader {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if maxWait <= 0 {
		maxWait = 10 * time.Minute
	}
	return &AssetUploader{files: files, interval: interval, maxWait: maxWait}
}

// Upload registers the file at path and polls until it is ACTIVE
func (u *AssetUploader) Upload(ctx context.Context, path string) (*client.RemoteFile, error) {
	f, err := u.files.Upload(ctx, path, "video/mp4")
	if err != nil {
		return nil, newPipelineError(KindAssetProcessing, err, "Failed to upload video: %v", err)
	}
	return u.waitActive(ctx, f)
}

func (u *AssetUploader) waitActive(ctx context.Context, f *client.RemoteFile) (*client.RemoteFile, error) {
	deadline := time.Now().Add(u.maxWait)
	attempt := 0

	for {
		switch f.State {
		case client.FileStateActive:
			return f, nil
		case client.FileStateFailed:
			return nil, &PipelineError{Kind: KindAssetProcessing, Message: MsgVideoProcessingFailed}
		}

		if !time.Now().Before(deadline) {
			return nil, newPipelineError(KindTimeout, nil, "Video processing timed out after %v", u.maxWait)
		}

		select {
		case <-ctx.Done():
			log.Warn().Str("file", f.Name).Int("attempt", attempt).Msg("asset poll cancelled")
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, newPipelineError(KindTimeout, ctx.Err(), "Video processing timed out")
			}
			return nil, ctx.Err()
		case <-time.After(u.interval):
		}

		attempt++
		next, err := u.files.GetFile(ctx, f.Name)
		if err != nil {
			log.Error().Err(err).Str("file", f.Name).Int("attempt", attempt).Msg("asset poll failed")
			return nil, newPipelineError(KindAssetProcessing, err, "Failed to check video status: %v", err)
		}
		f = next
		metrics.AssetPolls.WithLabelValues(string(f.State)).Inc()
		log.Debug().Str("file", f.Name).Int("attempt", attempt).Str("state", string(f.State)).Msg("asset poll")
	}
}
