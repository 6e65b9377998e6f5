package service

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/astralremix/api/internal/client"
	"github.com/astralremix/api/internal/metrics"
	"github.com/astralremix/api/internal/model"
	"github.com/astralremix/api/internal/prompt"
	"github.com/astralremix/api/internal/store"
)

const defaultFailureMessage = "Something went wrong during the remix process."

// VideoDownloader fetches a video to local disk
type VideoDownloader interface {
	Download(ctx context.Context, url string) (*client.DownloadResult, error)
	Cleanup(path string) error
}

// ArticleFetcher returns the visible text of a web page
type ArticleFetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// MediaUploader makes a local file available to the generator
type MediaUploader interface {
	Upload(ctx context.Context, path string) (*client.RemoteFile, error)
}

// Archiver mirrors saved remixes to object storage
type Archiver interface {
	PutJSON(ctx context.Context, key string, v any) (string, error)
}

// RemixDeps wires the collaborators of a RemixService. Archive is optional.
type RemixDeps struct {
	Downloader VideoDownloader
	Articles   ArticleFetcher
	Uploader   MediaUploader
	Generators map[model.Backend]Generator
	Remixes    store.Collection[model.RemixRecord]
	Archive    Archiver
	PublicURL  string
}

// RemixService runs the remix pipeline: fetch, upload, generate, persist
type RemixService struct {
	downloader VideoDownloader
	articles   ArticleFetcher
	uploader   MediaUploader
	generators map[model.Backend]Generator
	remixes    store.Collection[model.RemixRecord]
	archive    Archiver
	publicURL  string
}

func NewRemixService(deps RemixDeps) *RemixService {
	return &RemixService{
		downloader: deps.Downloader,
		articles:   deps.Articles,
		uploader:   deps.Uploader,
		generators: deps.Generators,
		remixes:    deps.Remixes,
		archive:    deps.Archive,
		publicURL:  deps.PublicURL,
	}
}

// Run executes a video remix and never fails: errors and panics are turned
// into an error result.
func (s *RemixService) Run(ctx context.Context, req *model.RemixRequest) model.RemixResult {
	pack, err := s.RemixVideo(ctx, req)
	if err != nil {
		return FailureResult(err)
	}
	return model.RemixResult{Success: true, Data: pack}
}

// FailureResult converts an error into the uniform error result
func FailureResult(err error) model.RemixResult {
	msg := err.Error()
	if msg == "" {
		msg = defaultFailureMessage
	}
	return model.RemixResult{Error: msg}
}

// RemixVideo downloads the video at req.URL, uploads it, generates a content
// pack and saves it. The downloaded file is removed on every exit path. A
// panic inside the pipeline is returned as a KindInternal error.
func (s *RemixService) RemixVideo(ctx context.Context, req *model.RemixRequest) (pack *model.ContentPack, err error) {
	started := time.Now()
	defer func() {
		metrics.RecordRemix(string(model.SourceVideo), outcome(err), started)
	}()
	defer recoverPipeline(model.SourceVideo, &pack, &err)
	return s.remixVideo(ctx, req)
}

func (s *RemixService) remixVideo(ctx context.Context, req *model.RemixRequest) (*model.ContentPack, error) {
	if req == nil || req.URL == "" {
		return nil, ValidationError("URL is required")
	}
	style, gen, err := s.resolve(req.Style, req.Model)
	if err != nil {
		return nil, err
	}
	basePrompt, err := prompt.Build(prompt.Options{Style: style})
	if err != nil {
		return nil, ValidationError(err.Error())
	}

	logger := log.With().Str("url", req.URL).Str("style", string(style)).Str("model", string(req.Model)).Logger()

	logger.Info().Str("stage", "fetching").Msg("downloading video")
	dl, err := s.downloader.Download(ctx, req.URL)
	if err != nil {
		logger.Error().Err(err).Str("stage", "fetching").Msg("download failed")
		return nil, newPipelineError(KindDownload, err, "%s", err.Error())
	}
	defer func() {
		if err := s.downloader.Cleanup(dl.FilePath); err != nil {
			logger.Warn().Err(err).Str("file", dl.FilePath).Msg("failed to remove temp video")
			return
		}
		logger.Debug().Str("file", dl.FilePath).Msg("removed temp video")
	}()

	logger.Info().Str("stage", "uploading").Str("file", dl.FilePath).Msg("uploading video")
	asset, err := s.uploader.Upload(ctx, dl.FilePath)
	if err != nil {
		logger.Error().Err(err).Str("stage", "uploading").Msg("upload failed")
		return nil, asPipelineError(KindAssetProcessing, err)
	}

	logger.Info().Str("stage", "generating").Str("asset", asset.Name).Msg("generating content pack")
	pack, err := s.generate(ctx, gen, basePrompt, asset)
	if err != nil {
		logger.Error().Err(err).Str("stage", "generating").Msg("generation failed")
		return nil, err
	}

	s.finish(ctx, req.URL, pack)
	logger.Info().Str("stage", "done").Msg("remix complete")
	return pack, nil
}

// RemixArticle builds a content pack from the text of a web article. Panics
// are handled as in RemixVideo.
func (s *RemixService) RemixArticle(ctx context.Context, req *model.ArticleRemixRequest) (pack *model.ContentPack, err error) {
	started := time.Now()
	defer func() {
		metrics.RecordRemix(string(model.SourceArticle), outcome(err), started)
	}()
	defer recoverPipeline(model.SourceArticle, &pack, &err)
	return s.remixArticle(ctx, req)
}

// recoverPipeline must be deferred directly so that recover sees the panic.
func recoverPipeline(source model.SourceType, pack **model.ContentPack, err *error) {
	r := recover()
	if r == nil {
		return
	}
	log.Error().Interface("panic", r).Str("source", string(source)).Msg("remix pipeline panicked")
	*pack = nil
	*err = newPipelineError(KindInternal, nil, "%v", r)
}

func (s *RemixService) remixArticle(ctx context.Context, req *model.ArticleRemixRequest) (*model.ContentPack, error) {
	if req == nil || req.URL == "" {
		return nil, ValidationError("URL is required")
	}
	style, gen, err := s.resolve(req.Style, req.Model)
	if err != nil {
		return nil, err
	}

	logger := log.With().Str("url", req.URL).Str("style", string(style)).Logger()

	logger.Info().Str("stage", "fetching").Msg("fetching article")
	text, err := s.articles.FetchText(ctx, req.URL)
	if err != nil {
		return nil, newPipelineError(KindDownload, err, "Failed to fetch article: %v", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, newPipelineError(KindDownload, nil, "Article has no readable text")
	}

	p, err := prompt.Build(prompt.Options{Style: style, SourceTitle: req.Title, SourceText: text})
	if err != nil {
		return nil, ValidationError(err.Error())
	}

	logger.Info().Str("stage", "generating").Int("chars", len(text)).Msg("generating content pack")
	pack, err := s.generate(ctx, gen, p, nil)
	if err != nil {
		return nil, err
	}

	s.finish(ctx, req.URL, pack)
	return pack, nil
}

// RegenerateLinkedIn writes a new LinkedIn post for sourceContent in the
// given tone. Only the remix section is returned; nothing is saved.
func (s *RemixService) RegenerateLinkedIn(ctx context.Context, req *model.LinkedInRegenerateRequest) (*model.Remix, error) {
	if req == nil || req.SourceContent == "" {
		return nil, ValidationError("Source content is required")
	}
	p, err := prompt.Build(prompt.Options{Tone: req.Tone, SourceText: req.SourceContent})
	if err != nil {
		return nil, ValidationError(err.Error())
	}
	gen, ok := s.generators[model.BackendGemini]
	if !ok {
		return nil, ValidationError("gemini backend is not available")
	}

	pack, err := s.generate(ctx, gen, p, nil)
	if err != nil {
		return nil, err
	}
	s.deriveThumbnail(pack)
	return pack.Remix, nil
}

// ListRemixes returns saved remixes, newest first
func (s *RemixService) ListRemixes(ctx context.Context) ([]model.RemixRecord, error) {
	records, err := s.remixes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list remixes: %w", err)
	}
	slices.Reverse(records)
	return records, nil
}

func (s *RemixService) resolve(style model.Style, backend model.Backend) (model.Style, Generator, error) {
	if style == "" {
		style = model.StylePunchy
	}
	if !style.IsValid() {
		return "", nil, ValidationError(fmt.Sprintf("Invalid style: %s", style))
	}
	if backend == "" {
		backend = model.BackendGemini
	}
	gen, ok := s.generators[backend]
	if !ok {
		return "", nil, ValidationError(fmt.Sprintf("Invalid model: %s", backend))
	}
	return style, gen, nil
}

func (s *RemixService) generate(ctx context.Context, gen Generator, p string, asset *client.RemoteFile) (*model.ContentPack, error) {
	raw, err := gen.Generate(ctx, p, asset)
	if err != nil {
		return nil, asPipelineError(KindGeneration, err)
	}
	return ParseContentPack(raw)
}

func (s *RemixService) finish(ctx context.Context, sourceURL string, pack *model.ContentPack) {
	s.deriveThumbnail(pack)
	s.persist(ctx, sourceURL, pack)
}

func (s *RemixService) deriveThumbnail(pack *model.ContentPack) {
	if pack.Remix == nil || pack.Remix.ThumbnailHeadline == "" {
		return
	}
	pack.Remix.LinkedInImage = ThumbnailURL(s.publicURL, pack.Remix.ThumbnailHeadline)
}

// ThumbnailURL is the rendered-thumbnail link for a headline
func ThumbnailURL(base, headline string) string {
	return base + "/api/thumbnail?" + url.Values{"title": {headline}}.Encode()
}

// persist saves the result. Storage failures are logged and never surface.
func (s *RemixService) persist(ctx context.Context, sourceURL string, pack *model.ContentPack) {
	rec := model.RemixRecord{
		ID:          uuid.New().String(),
		CreatedAt:   time.Now().UTC(),
		URL:         sourceURL,
		ContentPack: *pack,
	}
	if err := s.remixes.Append(ctx, rec); err != nil {
		perr := newPipelineError(KindPersistence, err, "failed to save remix: %v", err)
		log.Error().Err(perr).Str("url", sourceURL).Str("kind", string(perr.Kind)).Msg("remix not saved")
		return
	}
	if s.archive == nil {
		return
	}
	if _, err := s.archive.PutJSON(ctx, "remixes/"+rec.ID+".json", rec); err != nil {
		log.Warn().Err(err).Str("remix_id", rec.ID).Msg("failed to archive remix")
	}
}

func outcome(err error) string {
	if err == nil {
		return "success"
	}
	return string(KindOf(err))
}

func asPipelineError(kind ErrorKind, err error) error {
	if KindOf(err) != KindInternal {
		return err
	}
	return newPipelineError(kind, err, "%s", err.Error())
}
