// Package bootstrap wires storage and the remix pipeline from configuration.
// It is shared by the API server and the command-line runner.
package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/astralremix/api/internal/client"
	"github.com/astralremix/api/internal/config"
	"github.com/astralremix/api/internal/model"
	"github.com/astralremix/api/internal/service"
	"github.com/astralremix/api/internal/store"
)

const (
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverMemory = "memory"

	redisKeyPrefix = "astralremix:"
)

// Stores holds the three persisted collections
type Stores struct {
	Queue    store.Collection[model.QueueItem]
	Creators store.Collection[model.Creator]
	Remixes  store.Collection[model.RemixRecord]
}

// OpenStores opens the collections for the configured driver. The redis
// driver requires rdb.
func OpenStores(cfg *config.StorageConfig, rdb redis.Cmdable) (*Stores, error) {
	switch cfg.Driver {
	case DriverMemory:
		return &Stores{
			Queue:    store.NewMemoryCollection(model.QueueItem.GetID),
			Creators: store.NewMemoryCollection(model.Creator.GetID),
			Remixes:  store.NewMemoryCollection(model.RemixRecord.GetID),
		}, nil

	case DriverRedis:
		if rdb == nil {
			return nil, fmt.Errorf("storage driver %q needs a redis client", cfg.Driver)
		}
		return &Stores{
			Queue:    store.NewRedisCollection(rdb, redisKeyPrefix+"queue", model.QueueItem.GetID),
			Creators: store.NewRedisCollection(rdb, redisKeyPrefix+"creators", model.Creator.GetID),
			Remixes:  store.NewRedisCollection(rdb, redisKeyPrefix+"remixes", model.RemixRecord.GetID),
		}, nil

	case DriverFile, "":
		queue, err := store.NewFileCollection(filepath.Join(cfg.DataDir, "queue.json"), model.QueueItem.GetID)
		if err != nil {
			return nil, err
		}
		creators, err := store.NewFileCollection(filepath.Join(cfg.DataDir, "creators.json"), model.Creator.GetID)
		if err != nil {
			return nil, err
		}
		remixes, err := store.NewFileCollection(filepath.Join(cfg.DataDir, "remixes.json"), model.RemixRecord.GetID)
		if err != nil {
			return nil, err
		}
		return &Stores{Queue: queue, Creators: creators, Remixes: remixes}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// Pipeline is a remix service together with the model clients it runs on
type Pipeline struct {
	Remix      *service.RemixService
	Gemini     *client.GeminiClient
	Nano       *client.NanoClient
	Downloader *client.YtDlpClient
}

// NewPipeline builds the remix pipeline. archive may be nil.
func NewPipeline(ctx context.Context, cfg *config.Config, remixes store.Collection[model.RemixRecord], archive *client.R2Client) (*Pipeline, error) {
	gemini, err := client.NewGeminiClient(ctx, &cfg.Gemini)
	if err != nil {
		return nil, err
	}
	if !gemini.IsConfigured() {
		log.Warn().Msg("GEMINI_API_KEY not set, gemini remixes will fail")
	}
	nano := client.NewNanoClient(&cfg.Nano)
	downloader := client.NewYtDlpClient(&cfg.YtDlp, cfg.Storage.TmpDir)

	deps := service.RemixDeps{
		Downloader: downloader,
		Articles:   client.NewArticleClient(),
		Uploader:   service.NewAssetUploader(gemini, cfg.Gemini.UploadPollInterval, cfg.Gemini.UploadMaxWait),
		Generators: map[model.Backend]service.Generator{
			model.BackendGemini: service.NewSchemaGenerator(gemini),
			model.BackendNano:   service.NewFastGenerator(nano),
		},
		Remixes:   remixes,
		PublicURL: cfg.Server.PublicURL,
	}
	// Keep the interface nil when there is no archive.
	if archive.IsConfigured() {
		deps.Archive = archive
	}

	return &Pipeline{
		Remix:      service.NewRemixService(deps),
		Gemini:     gemini,
		Nano:       nano,
		Downloader: downloader,
	}, nil
}

// NewArchive returns an R2 client when credentials are present, else nil
func NewArchive(cfg *config.R2Config) *client.R2Client {
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		log.Info().Msg("R2 storage not configured, remixes are not archived")
		return nil
	}
	r2, err := client.NewR2Client(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("R2 client not initialized")
		return nil
	}
	return r2
}
