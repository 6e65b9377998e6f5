// Command remix runs one remix in-process and prints the content pack as JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"

	"github.com/astralremix/api/internal/bootstrap"
	"github.com/astralremix/api/internal/config"
	"github.com/astralremix/api/internal/logging"
	"github.com/astralremix/api/internal/model"
)

func main() {
	var (
		url     = flag.StringP("url", "u", "", "video or article URL to remix")
		style   = flag.StringP("style", "s", string(model.StylePunchy), "script style: punchy, explainer or deepdive")
		backend = flag.StringP("model", "m", string(model.BackendGemini), "generation backend: gemini or nano")
		article = flag.Bool("article", false, "treat the URL as an article instead of a video")
		title   = flag.String("title", "", "article title (with --article)")
		noSave  = flag.Bool("no-save", false, "do not persist the result")
	)
	flag.Parse()

	if *url == "" {
		fmt.Fprintln(os.Stderr, "usage: remix --url <url> [--style punchy] [--model gemini] [--article --title <title>]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logging.Init(cfg.Server.LogLevel, logging.DefaultFormat(cfg.Server.Env, cfg.Server.LogFormat))

	if *noSave || cfg.Storage.Driver == bootstrap.DriverRedis {
		cfg.Storage.Driver = bootstrap.DriverMemory
	}
	stores, err := bootstrap.OpenStores(&cfg.Storage, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open storage")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline, err := bootstrap.NewPipeline(ctx, cfg, stores.Remixes, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build remix pipeline")
	}

	var pack *model.ContentPack
	if *article {
		pack, err = pipeline.Remix.RemixArticle(ctx, &model.ArticleRemixRequest{
			URL:   *url,
			Title: *title,
			Style: model.Style(*style),
			Model: model.Backend(*backend),
		})
	} else {
		pack, err = pipeline.Remix.RemixVideo(ctx, &model.RemixRequest{
			URL:   *url,
			Style: model.Style(*style),
			Model: model.Backend(*backend),
		})
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "remix failed: %v\n", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(pack); err != nil {
		log.Fatal().Err(err).Msg("failed to write output")
	}
}
