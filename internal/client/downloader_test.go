package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner delegates to injected behavior.
type fakeRunner struct {
	calls [][]string
	run   func(name string, args ...string) (commandResult, error)
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (commandResult, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.run == nil {
		return commandResult{}, nil
	}
	return f.run(name, args...)
}

func argValue(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

func newTestDownloader(t *testing.T, runner commandRunner) *YtDlpClient {
	t.Helper()
	return &YtDlpClient{
		path:     "yt-dlp-test",
		tmpDir:   t.TempDir(),
		runner:   runner,
		resolved: "yt-dlp-test",
	}
}

func TestDownloadSuccess(t *testing.T) {
	runner := &fakeRunner{
		run: func(name string, args ...string) (commandResult, error) {
			if args[0] == "--dump-json" {
				return commandResult{Stdout: `{"title":"Demo","duration":42.5}`}, nil
			}
			out := argValue(args, "-o")
			require.NoError(t, os.WriteFile(out, []byte("video"), 0o644))
			return commandResult{}, nil
		},
	}
	d := newTestDownloader(t, runner)

	res, err := d.Download(context.Background(), "https://youtu.be/abc")
	require.NoError(t, err)

	assert.Equal(t, "Demo", res.Title)
	assert.Equal(t, 42.5, res.Duration)
	assert.Equal(t, ".mp4", filepath.Ext(res.FilePath))
	assert.FileExists(t, res.FilePath)

	require.Len(t, runner.calls, 2)
	dl := runner.calls[1]
	assert.Equal(t, "yt-dlp-test", dl[0])
	assert.Equal(t, "https://youtu.be/abc", dl[1])
	assert.Equal(t, "best[ext=mp4]/best", argValue(dl, "-f"))
	assert.Equal(t, "res:720", argValue(dl, "-S"))
	assert.Contains(t, dl, "--force-overwrites")

	require.NoError(t, d.Cleanup(res.FilePath))
	assert.NoFileExists(t, res.FilePath)
	assert.NoError(t, d.Cleanup(res.FilePath))
}

func TestDownloadMetadataFailureIsNotFatal(t *testing.T) {
	runner := &fakeRunner{
		run: func(name string, args ...string) (commandResult, error) {
			if args[0] == "--dump-json" {
				return commandResult{Stderr: "ERROR: no metadata", ExitCode: 1}, errors.New("exit status 1")
			}
			require.NoError(t, os.WriteFile(argValue(args, "-o"), []byte("video"), 0o644))
			return commandResult{}, nil
		},
	}
	d := newTestDownloader(t, runner)

	res, err := d.Download(context.Background(), "https://example.com/v")
	require.NoError(t, err)
	assert.Empty(t, res.Title)
}

func TestDownloadFailurePropagatesMessageAndRemovesPartial(t *testing.T) {
	var outPath string
	runner := &fakeRunner{
		run: func(name string, args ...string) (commandResult, error) {
			if args[0] == "--dump-json" {
				return commandResult{Stdout: `{}`}, nil
			}
			outPath = argValue(args, "-o")
			require.NoError(t, os.WriteFile(outPath+".part", []byte("half"), 0o644))
			return commandResult{
				Stderr:   "WARNING: something\nERROR: [youtube] abc: Video unavailable\n",
				ExitCode: 1,
			}, errors.New("exit status 1")
		},
	}
	d := newTestDownloader(t, runner)

	_, err := d.Download(context.Background(), "https://youtu.be/abc")
	require.Error(t, err)
	assert.Equal(t, "ERROR: [youtube] abc: Video unavailable", err.Error())
	assert.NoFileExists(t, outPath)
	assert.NoFileExists(t, outPath+".part")
}

func TestDownloadNoOutputFile(t *testing.T) {
	d := newTestDownloader(t, &fakeRunner{})

	_, err := d.Download(context.Background(), "https://youtu.be/abc")
	assert.Error(t, err)
}

func TestDownloadErrorMessageFallbacks(t *testing.T) {
	assert.Equal(t, "plain failure", downloadErrorMessage(commandResult{Stderr: " plain failure \n"}, errors.New("exit")))
	assert.Equal(t, "exit status 2", downloadErrorMessage(commandResult{}, errors.New("exit status 2")))
	assert.Equal(t, "Failed to download video", downloadErrorMessage(commandResult{}, nil))
}

func TestEnsureBinaryInstallsFromRelease(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("#!/bin/sh\necho ok\n"))
	}))
	defer srv.Close()

	t.Setenv("PATH", t.TempDir())
	binDir := filepath.Join(t.TempDir(), "bin")
	d := &YtDlpClient{
		binDir:      binDir,
		autoInstall: true,
		releaseURL:  srv.URL + "/",
		httpClient:  srv.Client(),
	}

	bin, err := d.EnsureBinary(context.Background())
	require.NoError(t, err)
	assert.FileExists(t, bin)

	info, err := os.Stat(bin)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0o100)

	again, err := d.EnsureBinary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, bin, again)
}

func TestEnsureBinaryWithoutAutoInstall(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	d := &YtDlpClient{binDir: t.TempDir()}

	_, err := d.EnsureBinary(context.Background())
	assert.Error(t, err)
}

func TestReleaseAssetName(t *testing.T) {
	assert.Equal(t, "yt-dlp_linux", releaseAssetName("linux"))
	assert.Equal(t, "yt-dlp_macos", releaseAssetName("darwin"))
	assert.Equal(t, "yt-dlp.exe", releaseAssetName("windows"))
	assert.Equal(t, "yt-dlp", releaseAssetName("plan9"))
}
