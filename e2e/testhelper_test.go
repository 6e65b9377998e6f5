package e2e

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/hibiken/asynq"

	"github.com/astralremix/api/internal/auth"
	"github.com/astralremix/api/internal/client"
	"github.com/astralremix/api/internal/config"
	"github.com/astralremix/api/internal/model"
	"github.com/astralremix/api/internal/server"
	"github.com/astralremix/api/internal/service"
	"github.com/astralremix/api/internal/store"
	ws "github.com/astralremix/api/internal/websocket"
)

const (
	testJWTSecret = "test-secret-for-e2e"
	testPublicURL = "https://remix.example.com"
)

const packJSON = `{
  "source_metadata": {"topic_summary": "Coding agents", "transcript_summary": "An agent fixes a bug live"},
  "deconstruction": {"core_idea_one_liner": "Agents ship fixes", "hook_analysis": "Broken build opener", "structure_breakdown": "Problem, demo, payoff", "why_this_video_works": "Fast payoff"},
  "audrey_remix": {
    "hooks": ["Your build is red.", "Watch this.", "Fixed."],
    "hook_variants": {"pattern_interrupt": "Stop.", "curiosity_gap": "Guess.", "social_proof": "Everyone uses it."},
    "thumbnail_variants": {"benefit_focused": "Ship faster", "curiosity_focused": "What?", "authority_focused": "Pros do this"},
    "cta_variants": {"direct_action": "Try it", "engagement_focused": "Comment"},
    "short_script": "Here is the agent.",
    "cta": "Follow",
    "caption": "Agents are here",
    "thumbnail_headline": "Agents Ship",
    "b_roll_notes": "Screen capture",
    "linkedin_image": "model image idea",
    "linkedin_post": "Agents changed how I ship.",
    "performance_tags": {"content_type": "demo", "emotional_trigger": "curiosity", "topic_cluster": "agents", "complexity_level": "beginner"},
    "performance_hypothesis": "Short demos win"
  }
}`

// testApp holds the app and the fakes behind it
type testApp struct {
	app        *fiber.App
	downloader *fakeDownloader
	generator  *fakeGenerator
	uploader   *fakeUploader
	articles   *fakeArticles
	enqueuer   *fakeEnqueuer
	poster     *fakePoster
	queue      *service.QueueService
}

// setupApp builds the same app as cmd/server with in-memory stores and
// fake external services.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	cfg := &config.Config{}
	cfg.JWT.Secret = testJWTSecret
	cfg.Server.PublicURL = testPublicURL
	cfg.Server.LogLevel = "error"

	ta := &testApp{
		downloader: &fakeDownloader{dir: t.TempDir()},
		generator:  &fakeGenerator{out: packJSON},
		uploader:   &fakeUploader{},
		articles:   &fakeArticles{text: "Agents are rewriting how teams ship software."},
		enqueuer:   &fakeEnqueuer{},
		poster:     &fakePoster{configured: true},
	}

	remixes := store.NewMemoryCollection(model.RemixRecord.GetID)
	remix := service.NewRemixService(service.RemixDeps{
		Downloader: ta.downloader,
		Articles:   ta.articles,
		Uploader:   ta.uploader,
		Generators: map[model.Backend]service.Generator{
			model.BackendGemini: ta.generator,
			model.BackendNano:   ta.generator,
		},
		Remixes:   remixes,
		PublicURL: testPublicURL,
	})

	hub := ws.NewHub()
	go hub.Run()

	ta.queue = service.NewQueueService(store.NewMemoryCollection(model.QueueItem.GetID), hub)
	batch := service.NewBatchService(ta.queue, remix, ta.enqueuer)
	creators := service.NewCreatorService(store.NewMemoryCollection(model.Creator.GetID), fakeChannels{}, fakePosts{})
	news := service.NewNewsService(fakeFeeds{}, []client.FeedSource{{Name: "Test Feed", URL: "https://feeds.example.com/ai"}})

	ta.app = server.New(server.Deps{
		Config:   cfg,
		Remix:    remix,
		Queue:    ta.queue,
		Batch:    batch,
		Creators: creators,
		LinkedIn: service.NewLinkedInService(ta.poster),
		News:     news,
		Hub:      hub,
		Services: map[string]bool{"gemini": false, "nano": false},
	})
	return ta
}

// generateToken creates a legacy HMAC JWT token for test requests.
func generateToken(t *testing.T) string {
	t.Helper()
	claims := auth.LegacyClaims{
		UserID: "test-user-123",
		Email:  "test@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer: auth.Issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}
	return signed
}

// doRequest is a helper to perform HTTP requests against the test app.
func doRequest(app *fiber.App, method, path string, body string, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, path, bodyReader)
	if err != nil {
		return nil, err
	}

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return app.Test(req, -1)
}

// doAuthRequest performs an authenticated request.
func doAuthRequest(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, error) {
	t.Helper()
	token := generateToken(t)
	return doRequest(app, method, path, body, map[string]string{
		"Authorization": "Bearer " + token,
	})
}

// mustAuthRequest is doAuthRequest that fails the test on transport errors.
func mustAuthRequest(t *testing.T, app *fiber.App, method, path, body string) *http.Response {
	t.Helper()
	resp, err := doAuthRequest(t, app, method, path, body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

// readBody reads and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(b)
}

// parseJSON parses response body into a map.
func parseJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body := readBody(t, resp)
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, body)
	}
	return result
}

// parseJSONArray parses response body into a slice of objects.
func parseJSONArray(t *testing.T, resp *http.Response) []map[string]interface{} {
	t.Helper()
	body := readBody(t, resp)
	var result []map[string]interface{}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to parse JSON array: %v\nbody: %s", err, body)
	}
	return result
}

// assertStatus checks the HTTP status code.
func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// errorCode returns error.code from a response envelope.
func errorCode(body map[string]interface{}) string {
	e, _ := body["error"].(map[string]interface{})
	code, _ := e["code"].(string)
	return code
}

// --- fakes ---

type fakeDownloader struct {
	mu      sync.Mutex
	dir     string
	fail    map[string]string
	cleaned int
}

func (f *fakeDownloader) Download(ctx context.Context, url string) (*client.DownloadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := f.fail[url]; ok {
		return nil, errors.New(msg)
	}
	path := filepath.Join(f.dir, "video.mp4")
	if err := os.WriteFile(path, []byte("mp4"), 0o644); err != nil {
		return nil, err
	}
	return &client.DownloadResult{FilePath: path}, nil
}

func (f *fakeDownloader) Cleanup(path string) error {
	f.mu.Lock()
	f.cleaned++
	f.mu.Unlock()
	return os.Remove(path)
}

type fakeUploader struct {
	err error
}

func (f *fakeUploader) Upload(ctx context.Context, path string) (*client.RemoteFile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &client.RemoteFile{Name: "files/abc", URI: "https://files.example.com/abc", State: client.FileStateActive}, nil
}

type fakeGenerator struct {
	mu      sync.Mutex
	out     string
	err     error
	panics  bool
	prompts []string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, asset *client.RemoteFile) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panics {
		panic("generator exploded")
	}
	f.prompts = append(f.prompts, prompt)
	return f.out, f.err
}

type fakeArticles struct {
	text string
}

func (f *fakeArticles) FetchText(ctx context.Context, url string) (string, error) {
	return f.text, nil
}

type fakeEnqueuer struct {
	mu    sync.Mutex
	tasks []*asynq.Task
}

func (f *fakeEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "task-1", Queue: service.QueueRemix, Type: task.Type()}, nil
}

type fakePoster struct {
	configured bool
	texts      []string
}

func (f *fakePoster) Share(ctx context.Context, text, imageURL string) (string, error) {
	f.texts = append(f.texts, text)
	return "urn:li:share:1", nil
}

func (f *fakePoster) IsConfigured() bool { return f.configured }

type fakeChannels struct{}

func (fakeChannels) ResolveChannelID(ctx context.Context, channelURL string) (string, error) {
	if strings.Contains(channelURL, "/@") || strings.Contains(channelURL, "/channel/") {
		return "UC123", nil
	}
	return "", client.ErrInvalidChannelURL
}

func (fakeChannels) ChannelVideos(ctx context.Context, channelID string) ([]model.Video, error) {
	return []model.Video{
		{ID: "v1", Title: "Small", Views: 10, URL: "https://www.youtube.com/watch?v=v1"},
		{ID: "v2", Title: "Big", Views: 5000, URL: "https://www.youtube.com/watch?v=v2"},
	}, nil
}

type fakePosts struct{}

func (fakePosts) UserPosts(ctx context.Context, username string) ([]model.Video, error) {
	return []model.Video{{ID: "p1", Title: "Reel", Views: 700}}, nil
}

type fakeFeeds struct{}

func (fakeFeeds) Fetch(ctx context.Context, src client.FeedSource) ([]model.NewsItem, error) {
	return []model.NewsItem{{Title: "Agents everywhere", Link: "https://news.example.com/1", Source: src.Name}}, nil
}
