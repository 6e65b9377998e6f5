// Package server assembles the HTTP API: middleware, routes and handlers.
package server

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/astralremix/api/internal/auth"
	"github.com/astralremix/api/internal/config"
	"github.com/astralremix/api/internal/handler"
	"github.com/astralremix/api/internal/middleware"
	"github.com/astralremix/api/internal/service"
	ws "github.com/astralremix/api/internal/websocket"
	"github.com/astralremix/api/pkg/response"
)

// Deps are the collaborators the HTTP layer needs. Verifier, RateLimiter
// and Hub may be nil.
type Deps struct {
	Config      *config.Config
	Validator   *validator.Validate
	Remix       *service.RemixService
	Queue       *service.QueueService
	Batch       *service.BatchService
	Creators    *service.CreatorService
	LinkedIn    *service.LinkedInService
	News        *service.NewsService
	Hub         *ws.Hub
	Verifier    auth.TokenVerifier
	RateLimiter *middleware.RateLimiter
	// Services is reported by /health as name -> configured.
	Services map[string]bool
}

// New builds the fiber app with every route registered
func New(d Deps) *fiber.App {
	cfg := d.Config
	validate := d.Validator
	if validate == nil {
		validate = validator.New()
	}

	remixHandler := handler.NewRemixHandler(d.Remix, validate)
	queueHandler := handler.NewQueueHandler(d.Queue, validate)
	batchHandler := handler.NewBatchHandler(d.Batch, validate)
	creatorHandler := handler.NewCreatorHandler(d.Creators, validate)
	linkedinHandler := handler.NewLinkedInHandler(d.LinkedIn, validate)
	newsHandler := handler.NewNewsHandler(d.News)
	authHandler := handler.NewAuthHandler(d.Verifier, cfg.JWT.Secret)

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    1 * 1024 * 1024,
		// Remixes block while the video is downloaded and processed.
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 15 * time.Minute,
	})

	app.Use(recover.New())
	app.Use(middleware.Metrics())
	logFormat := "[${time}] ${status} - ${latency} ${method} ${path}\n"
	if strings.EqualFold(cfg.Server.LogLevel, "debug") {
		logFormat = "[${time}] ${status} - ${latency} ${method} ${path} ${queryParams} ${body}\n"
	}
	app.Use(logger.New(logger.Config{
		Format: logFormat,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"timestamp": time.Now().Unix(),
		})
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		services := fiber.Map{
			"auth": d.Verifier != nil || cfg.JWT.Secret != "",
		}
		for name, ok := range d.Services {
			services[name] = ok
		}
		return c.JSON(fiber.Map{
			"status":   "ok",
			"services": services,
		})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Get("/auth/verify", authHandler.Verify)

	// Public: social networks fetch thumbnails without credentials.
	app.Get("/api/thumbnail", handler.Thumbnail)

	if d.Hub != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws/queue/:id", websocket.New(func(c *websocket.Conn) {
			d.Hub.HandleConnection(c, c.Params("id"))
		}))
	}

	api := app.Group("/api", authMiddleware(cfg, d.Verifier))
	rl := d.RateLimiter

	remix := api.Group("/remix", rl.RemixLimit(cfg.RateLimit.RemixPerHour))
	remix.Post("/video", remixHandler.Video)
	remix.Post("/article", remixHandler.Article)
	remix.Post("/linkedin", remixHandler.LinkedIn)
	api.Get("/remixes", remixHandler.List)

	api.Post("/batch", rl.BatchLimit(cfg.RateLimit.BatchPerHour), batchHandler.Run)

	queue := api.Group("/queue")
	queue.Get("/", queueHandler.List)
	queue.Get("/stats", queueHandler.Stats)
	queue.Get("/scheduled", queueHandler.Scheduled)
	queue.Get("/:id", queueHandler.Get)
	queue.Post("/:id/schedule", queueHandler.Schedule)
	queue.Delete("/:id", queueHandler.Delete)

	creators := api.Group("/creators")
	creators.Get("/", creatorHandler.List)
	creators.Post("/", creatorHandler.Create)
	creators.Get("/videos", creatorHandler.Videos)
	creators.Delete("/:id", creatorHandler.Delete)
	creators.Get("/:channelId/videos", creatorHandler.ChannelVideos)

	api.Post("/linkedin/share", rl.ShareLimit(cfg.RateLimit.SharePerHour), linkedinHandler.Share)
	api.Get("/news", newsHandler.Latest)

	return app
}

// authMiddleware picks header-based auth behind the gateway, otherwise
// validates tokens itself.
func authMiddleware(cfg *config.Config, verifier auth.TokenVerifier) fiber.Handler {
	if cfg.Gateway.Enabled {
		log.Info().Msg("gateway mode enabled, using header-based auth")
		return middleware.GatewayAuthMiddleware()
	}

	var m *middleware.AuthMiddleware
	switch {
	case verifier != nil && cfg.JWT.Secret != "":
		m = middleware.NewAuthMiddlewareWithFallback(verifier, cfg.JWT.Secret)
	case verifier != nil:
		m = middleware.NewAuthMiddleware(verifier)
	default:
		m = middleware.NewLegacyAuthMiddleware(cfg.JWT.Secret)
	}
	return m.Authenticate()
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	} else {
		log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
	}

	return response.Error(c, code, response.CodeServiceError, message, nil)
}
