package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/astralremix/api/internal/config"
)

const ytDlpReleaseURL = "https://github.com/yt-dlp/yt-dlp/releases/latest/download/"

// DownloadResult is a media file fetched to local disk
type DownloadResult struct {
	FilePath string
	Title    string
	Duration float64
}

// commandResult is the captured output of one process execution.
type commandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// commandRunner abstracts process execution for testability.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) (commandResult, error)
}

type execRunner struct{}

func (r *execRunner) Run(ctx context.Context, name string, args ...string) (commandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := commandResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		result.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
		return result, err
	}
	return result, nil
}

// YtDlpClient downloads videos with the yt-dlp binary
type YtDlpClient struct {
	path        string
	binDir      string
	autoInstall bool
	tmpDir      string
	releaseURL  string
	runner      commandRunner
	httpClient  *http.Client

	mu       sync.Mutex
	resolved string
}

// NewYtDlpClient creates a downloader writing into tmpDir
func NewYtDlpClient(cfg *config.YtDlpConfig, tmpDir string) *YtDlpClient {
	return &YtDlpClient{
		path:        cfg.Path,
		binDir:      cfg.BinDir,
		autoInstall: cfg.AutoInstall,
		tmpDir:      tmpDir,
		releaseURL:  ytDlpReleaseURL,
		runner:      &execRunner{},
		httpClient:  &http.Client{Timeout: 5 * time.Minute},
	}
}

// Download fetches url into a fresh file under the temp directory.
// On failure no file is left behind.
func (c *YtDlpClient) Download(ctx context.Context, url string) (*DownloadResult, error) {
	bin, err := c.EnsureBinary(ctx)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(c.tmpDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	filePath := filepath.Join(c.tmpDir, uuid.New().String()+".mp4")

	result := &DownloadResult{FilePath: filePath}
	if meta, err := c.metadata(ctx, bin, url); err != nil {
		log.Warn().Err(err).Str("url", url).Msg("yt-dlp metadata unavailable")
	} else {
		result.Title = meta.Title
		result.Duration = meta.Duration
	}

	log.Info().Str("url", url).Str("file", filePath).Msg("downloading video")
	out, err := c.runner.Run(ctx, bin,
		url,
		"-f", "best[ext=mp4]/best",
		"-S", "res:720",
		"-o", filePath,
		"--force-overwrites",
	)
	if err != nil {
		c.removePartial(filePath)
		return nil, errors.New(downloadErrorMessage(out, err))
	}

	if _, err := os.Stat(filePath); err != nil {
		c.removePartial(filePath)
		return nil, fmt.Errorf("yt-dlp finished without producing %s", filepath.Base(filePath))
	}

	log.Info().Str("file", filePath).Msg("download complete")
	return result, nil
}

// Cleanup removes a downloaded file. Missing files are not an error.
func (c *YtDlpClient) Cleanup(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

type videoMetadata struct {
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
}

func (c *YtDlpClient) metadata(ctx context.Context, bin, url string) (*videoMetadata, error) {
	out, err := c.runner.Run(ctx, bin, "--dump-json", "--no-download", "--no-warnings", url)
	if err != nil {
		return nil, errors.New(downloadErrorMessage(out, err))
	}
	var meta videoMetadata
	if err := json.Unmarshal([]byte(out.Stdout), &meta); err != nil {
		return nil, fmt.Errorf("failed to decode yt-dlp metadata: %w", err)
	}
	return &meta, nil
}

func (c *YtDlpClient) removePartial(filePath string) {
	for _, p := range []string{filePath, filePath + ".part", filePath + ".ytdl"} {
		_ = os.Remove(p)
	}
}

// downloadErrorMessage surfaces the downloader's own error text so callers
// can show it unchanged.
func downloadErrorMessage(out commandResult, err error) string {
	var errLines []string
	for _, line := range strings.Split(out.Stderr, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "ERROR:") {
			errLines = append(errLines, line)
		}
	}
	if len(errLines) > 0 {
		return strings.Join(errLines, "\n")
	}
	if msg := strings.TrimSpace(out.Stderr); msg != "" {
		return msg
	}
	if err != nil {
		return err.Error()
	}
	return "Failed to download video"
}

// EnsureBinary resolves the yt-dlp executable, installing it into binDir
// when allowed and nothing usable is found.
func (c *YtDlpClient) EnsureBinary(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.resolved != "" {
		return c.resolved, nil
	}

	if c.path != "" {
		c.resolved = c.path
		return c.resolved, nil
	}

	local := filepath.Join(c.binDir, "yt-dlp")
	if runtime.GOOS == "windows" {
		local += ".exe"
	}
	if _, err := os.Stat(local); err == nil {
		c.resolved = local
		return local, nil
	}

	if p, err := exec.LookPath("yt-dlp"); err == nil {
		c.resolved = p
		return p, nil
	}

	if !c.autoInstall {
		return "", fmt.Errorf("yt-dlp not found and auto install disabled")
	}

	if err := c.install(ctx, local); err != nil {
		return "", fmt.Errorf("failed to initialize yt-dlp: %w", err)
	}
	c.resolved = local
	return local, nil
}

func releaseAssetName(goos string) string {
	switch goos {
	case "linux":
		return "yt-dlp_linux"
	case "darwin":
		return "yt-dlp_macos"
	case "windows":
		return "yt-dlp.exe"
	default:
		return "yt-dlp"
	}
}

func (c *YtDlpClient) install(ctx context.Context, dest string) error {
	downloadURL := c.releaseURL + releaseAssetName(runtime.GOOS)
	log.Info().Str("url", downloadURL).Str("dest", dest).Msg("installing yt-dlp")

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("release download returned status %d", resp.StatusCode)
	}

	tmp := dest + ".download"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dest)
}
