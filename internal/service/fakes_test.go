package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/astralremix/api/internal/client"
	"github.com/astralremix/api/internal/model"
	"github.com/astralremix/api/internal/store"
)

const validPackJSON = `{
  "source_metadata": {
    "topic_summary": "A new coding agent",
    "tool_or_feature_demoed": "Agent mode",
    "transcript_summary": "Demo of an agent fixing a bug"
  },
  "deconstruction": {
    "core_idea_one_liner": "Agents fix bugs for you",
    "hook_analysis": "Opens with a broken build",
    "structure_breakdown": "Problem, demo, result",
    "why_this_video_works": "Fast payoff"
  },
  "audrey_remix": {
    "hooks": ["Your build is broken.", "This agent fixed it.", "In 30 seconds."],
    "hook_variants": {"pattern_interrupt": "Stop.", "curiosity_gap": "Guess what.", "social_proof": "1M devs use it."},
    "thumbnail_variants": {"benefit_focused": "Ship faster", "curiosity_focused": "What?", "authority_focused": "Pros use this"},
    "cta_variants": {"direct_action": "Try it", "engagement_focused": "Comment below"},
    "short_script": "Here is how the agent works.",
    "cta": "Follow for more",
    "caption": "Agents are here",
    "thumbnail_headline": "Agents & You",
    "b_roll_notes": "Screen recording",
    "linkedin_image": "A laptop",
    "linkedin_post": "Agents changed how I ship.",
    "performance_tags": {"content_type": "tutorial", "emotional_trigger": "curiosity", "topic_cluster": "ai-agents", "complexity_level": "beginner"},
    "performance_hypothesis": "Short demos win"
  }
}`

// fakeDownloader writes a real temp file so cleanup can be observed.
type fakeDownloader struct {
	dir     string
	err     error
	path    string
	cleaned []string
}

func newFakeDownloader(t *testing.T) *fakeDownloader {
	return &fakeDownloader{dir: t.TempDir()}
}

func (f *fakeDownloader) Download(ctx context.Context, url string) (*client.DownloadResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.path = filepath.Join(f.dir, "video.mp4")
	if err := os.WriteFile(f.path, []byte("video"), 0o644); err != nil {
		return nil, err
	}
	return &client.DownloadResult{FilePath: f.path, Title: "Demo"}, nil
}

func (f *fakeDownloader) Cleanup(path string) error {
	f.cleaned = append(f.cleaned, path)
	err := os.Remove(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

type fakeUploader struct {
	err   error
	calls int
}

func (f *fakeUploader) Upload(ctx context.Context, path string) (*client.RemoteFile, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &client.RemoteFile{Name: "files/abc", URI: "https://files.example/abc", MIMEType: "video/mp4", State: client.FileStateActive}, nil
}

type fakeGenerator struct {
	mu      sync.Mutex
	out     string
	err     error
	panics  bool
	prompts []string
	assets  []*client.RemoteFile
}

func (f *fakeGenerator) Generate(ctx context.Context, p string, asset *client.RemoteFile) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panics {
		panic("generator exploded")
	}
	f.prompts = append(f.prompts, p)
	f.assets = append(f.assets, asset)
	return f.out, f.err
}

type fakeArticles struct {
	text string
	err  error
}

func (f *fakeArticles) FetchText(ctx context.Context, url string) (string, error) {
	return f.text, f.err
}

type fakeArchive struct {
	keys []string
	err  error
}

func (f *fakeArchive) PutJSON(ctx context.Context, key string, v any) (string, error) {
	f.keys = append(f.keys, key)
	return "https://cdn/" + key, f.err
}

// failingCollection fails every write.
type failingCollection[T any] struct{ store.Collection[T] }

func (f failingCollection[T]) Append(ctx context.Context, item T) error {
	return errors.New("disk full")
}

type remixFixture struct {
	svc        *RemixService
	downloader *fakeDownloader
	uploader   *fakeUploader
	gemini     *fakeGenerator
	nano       *fakeGenerator
	articles   *fakeArticles
	remixes    store.Collection[model.RemixRecord]
	archive    *fakeArchive
}

func newRemixFixture(t *testing.T) *remixFixture {
	t.Helper()
	f := &remixFixture{
		downloader: newFakeDownloader(t),
		uploader:   &fakeUploader{},
		gemini:     &fakeGenerator{out: validPackJSON},
		nano:       &fakeGenerator{out: validPackJSON},
		articles:   &fakeArticles{text: "Article body"},
		remixes:    store.NewMemoryCollection[model.RemixRecord](model.RemixRecord.GetID),
		archive:    &fakeArchive{},
	}
	f.svc = f.build(f.remixes)
	return f
}

func (f *remixFixture) build(remixes store.Collection[model.RemixRecord]) *RemixService {
	return NewRemixService(RemixDeps{
		Downloader: f.downloader,
		Articles:   f.articles,
		Uploader:   f.uploader,
		Generators: map[model.Backend]Generator{
			model.BackendGemini: f.gemini,
			model.BackendNano:   f.nano,
		},
		Remixes:   remixes,
		Archive:   f.archive,
		PublicURL: "https://remix.example.com",
	})
}

func newQueue(t *testing.T) *QueueService {
	t.Helper()
	return NewQueueService(store.NewMemoryCollection[model.QueueItem](model.QueueItem.GetID), nil)
}

func addItem(t *testing.T, q *QueueService, url string) *model.QueueItem {
	t.Helper()
	item, err := q.Add(context.Background(), url, model.SourceVideo)
	require.NoError(t, err)
	return item
}
