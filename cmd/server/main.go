package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/astralremix/api/internal/auth"
	"github.com/astralremix/api/internal/bootstrap"
	"github.com/astralremix/api/internal/client"
	"github.com/astralremix/api/internal/config"
	"github.com/astralremix/api/internal/logging"
	"github.com/astralremix/api/internal/middleware"
	"github.com/astralremix/api/internal/server"
	"github.com/astralremix/api/internal/service"
	ws "github.com/astralremix/api/internal/websocket"
	"github.com/astralremix/api/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Init(cfg.Server.LogLevel, logging.DefaultFormat(cfg.Server.Env, cfg.Server.LogFormat))

	ctx := context.Background()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	redisUp := redisClient.Ping(ctx).Err() == nil
	if !redisUp {
		log.Warn().Str("addr", cfg.Redis.Addr).Msg("redis not available, rate limits and background batches disabled")
	}

	var rdb redis.Cmdable
	if redisUp {
		rdb = redisClient
	} else if cfg.Storage.Driver == bootstrap.DriverRedis {
		log.Warn().Str("data_dir", cfg.Storage.DataDir).Msg("falling back to file storage")
		cfg.Storage.Driver = bootstrap.DriverFile
	}
	stores, err := bootstrap.OpenStores(&cfg.Storage, rdb)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("failed to open storage")
	}

	hub := ws.NewHub()
	go hub.Run()

	archive := bootstrap.NewArchive(&cfg.R2)
	pipeline, err := bootstrap.NewPipeline(ctx, cfg, stores.Remixes, archive)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build remix pipeline")
	}
	if _, err := pipeline.Downloader.EnsureBinary(ctx); err != nil {
		log.Warn().Err(err).Msg("yt-dlp not available, video remixes will fail until it is installed")
	}

	youtubeClient, err := client.NewYouTubeClient(ctx, &cfg.YouTube)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create youtube client")
	}
	linkedinClient := client.NewLinkedInClient(&cfg.LinkedIn)

	var verifier auth.TokenVerifier
	if cfg.OIDC.Issuer != "" {
		jwksVerifier, err := auth.NewJWKSVerifier(&cfg.OIDC)
		if err != nil {
			log.Warn().Err(err).Msg("oidc verifier not initialized, using local tokens only")
		} else {
			defer jwksVerifier.Close()
			verifier = jwksVerifier
		}
	}

	var asynqClient *asynq.Client
	var enqueuer service.TaskEnqueuer
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	if redisUp {
		asynqClient = asynq.NewClient(redisOpt)
		defer asynqClient.Close()
		enqueuer = asynqClient
	}

	queueService := service.NewQueueService(stores.Queue, hub)
	batchService := service.NewBatchService(queueService, pipeline.Remix, enqueuer)
	creatorService := service.NewCreatorService(stores.Creators, youtubeClient, client.NewInstagramClient())
	linkedinService := service.NewLinkedInService(linkedinClient)
	newsService := service.NewNewsService(client.NewNewsClient(), nil)
	publishService := service.NewPublishService(queueService, linkedinClient)

	var rateLimiter *middleware.RateLimiter
	if redisUp {
		rateLimiter = middleware.NewRateLimiter(redisClient)
	}

	app := server.New(server.Deps{
		Config:      cfg,
		Remix:       pipeline.Remix,
		Queue:       queueService,
		Batch:       batchService,
		Creators:    creatorService,
		LinkedIn:    linkedinService,
		News:        newsService,
		Hub:         hub,
		Verifier:    verifier,
		RateLimiter: rateLimiter,
		Services: map[string]bool{
			"gemini":   pipeline.Gemini.IsConfigured(),
			"nano":     pipeline.Nano.IsConfigured(),
			"youtube":  youtubeClient.IsConfigured(),
			"linkedin": linkedinClient.IsConfigured(),
			"r2":       archive.IsConfigured(),
			"redis":    redisUp,
		},
	})

	var workers *workerSet
	if redisUp {
		workers, err = startWorkers(cfg, redisOpt, batchService, publishService)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to start workers")
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info().Msg("shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("server shutdown error")
		}
	}()

	addr := ":" + cfg.Server.Port
	log.Info().Str("addr", addr).Str("storage", cfg.Storage.Driver).Msg("server starting")
	if err := app.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
	workers.shutdown()
}

// workerSet owns the background task servers and the publish scheduler
type workerSet struct {
	remix     *asynq.Server
	publish   *asynq.Server
	scheduler *asynq.Scheduler
}

// startWorkers runs batches and publish sweeps on separate servers, each
// with concurrency 1: batch items never run in parallel and a long batch
// does not hold up publishing.
func startWorkers(cfg *config.Config, redisOpt asynq.RedisClientOpt, batches *service.BatchService, publisher *service.PublishService) (*workerSet, error) {
	level := worker.LogLevel(cfg.Server.LogLevel)
	mux := worker.NewMux(worker.NewBatchWorker(batches), worker.NewPublishWorker(publisher))

	newServer := func(queue string) *asynq.Server {
		return asynq.NewServer(redisOpt, asynq.Config{
			Concurrency: 1,
			Queues:      map[string]int{queue: 1},
			Logger:      worker.NewLogger("asynq-" + queue),
			LogLevel:    level,
		})
	}

	set := &workerSet{
		remix:   newServer(service.QueueRemix),
		publish: newServer(service.QueuePublish),
		scheduler: asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
			Logger:   worker.NewLogger("asynq-scheduler"),
			LogLevel: level,
		}),
	}

	if _, err := worker.RegisterPublishSchedule(set.scheduler, cfg.Worker.PublishInterval); err != nil {
		return nil, err
	}
	if err := set.remix.Start(mux); err != nil {
		return nil, err
	}
	if err := set.publish.Start(mux); err != nil {
		return nil, err
	}
	if err := set.scheduler.Start(); err != nil {
		return nil, err
	}
	log.Info().Str("publish_interval", cfg.Worker.PublishInterval).Msg("workers started")
	return set, nil
}

func (w *workerSet) shutdown() {
	if w == nil {
		return
	}
	w.scheduler.Shutdown()
	w.publish.Shutdown()
	w.remix.Shutdown()
}
