package ytdlp

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/clipforge/clipforge/internal/mediatool"
)

type fakeRunner struct {
	calls   [][]string
	stdout  map[string]string // keyed by first flag
	failAll error
}

func (f *fakeRunner) Run(_ context.Context, tool string, args ...string) (mediatool.Result, error) {
	f.calls = append(f.calls, append([]string{tool}, args...))
	if f.failAll != nil {
		return mediatool.Result{}, f.failAll
	}
	if out, ok := f.stdout[args[0]]; ok {
		return mediatool.Result{Stdout: []byte(out)}, nil
	}
	return mediatool.Result{}, nil
}

type fakeGrabber struct {
	payload []byte
	err     error
}

func (f *fakeGrabber) ExtractFrame(_ context.Context, _, out string) error {
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(out, f.payload, 0o644)
}

const metaJSON = `{
	"title": " Great Video ",
	"description": "d",
	"duration": 120.5,
	"thumbnail": "raw",
	"thumbnails": [
		{"id": "maxresdefault", "url": "A", "width": 1280, "height": 720},
		{"id": "hqdefault", "url": "B", "width": 480, "height": 360}
	],
	"uploader": "alice",
	"width": 1920,
	"height": 1080,
	"fps": 30,
	"is_live": false
}`

func TestExtract_ParsesAndSelectsThumbnail(t *testing.T) {
	t.Parallel()

	run := &fakeRunner{stdout: map[string]string{"--dump-json": metaJSON}}
	a := New("yt-dlp", run, nil, t.TempDir())

	meta, err := a.Extract(context.Background(), "https://www.youtube.com/watch?v=abc")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if meta.Title != "Great Video" {
		t.Fatalf("title = %q", meta.Title)
	}
	if meta.Duration != 120.5 {
		t.Fatalf("duration = %v", meta.Duration)
	}
	if meta.Thumbnail != "A" {
		t.Fatalf("thumbnail = %q, want maxres variant", meta.Thumbnail)
	}
}

func TestExtract_ToolFailureIsFatal(t *testing.T) {
	t.Parallel()

	wantErr := &mediatool.ExternalToolError{Tool: "yt-dlp", ExitCode: 1, Stderr: "boom"}
	run := &fakeRunner{failAll: wantErr}
	a := New("yt-dlp", run, nil, t.TempDir())

	_, err := a.Extract(context.Background(), "https://www.youtube.com/watch?v=abc")
	var toolErr *mediatool.ExternalToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("expected ExternalToolError, got %T: %v", err, err)
	}
}

func TestExtract_LiveSkipsFrameFallback(t *testing.T) {
	t.Parallel()

	live := strings.Replace(metaJSON, `"is_live": false`, `"is_live": true`, 1)
	run := &fakeRunner{stdout: map[string]string{"--dump-json": live}}
	a := New("yt-dlp", run, &fakeGrabber{payload: []byte("jpg")}, t.TempDir())

	meta, err := a.Extract(context.Background(), "https://twitter.com/u/status/1")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if strings.HasPrefix(meta.Thumbnail, "data:") {
		t.Fatalf("live stream must not trigger frame extraction, got %q", meta.Thumbnail)
	}
	if len(run.calls) != 1 {
		t.Fatalf("expected only the metadata call, got %d calls", len(run.calls))
	}
}

func TestExtract_WeakPlatformUsesFrameFallback(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	run := &fakeRunner{stdout: map[string]string{
		"--dump-json": metaJSON,
		"-g":          "https://video.example/direct.mp4\n",
	}}
	a := New("yt-dlp", run, &fakeGrabber{payload: []byte("jpegbytes")}, tmp)

	meta, err := a.Extract(context.Background(), "https://twitter.com/u/status/1")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.HasPrefix(meta.Thumbnail, "data:image/jpeg;base64,") {
		t.Fatalf("expected data-embedded frame, got %q", meta.Thumbnail)
	}

	// The frame temp file must be cleaned up.
	entries, err := os.ReadDir(tmp)
	if err != nil {
		t.Fatalf("read temp dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("frame temp files left behind: %v", entries)
	}
}

func TestExtract_FallbackFailureKeepsSelected(t *testing.T) {
	t.Parallel()

	run := &fakeRunner{stdout: map[string]string{
		"--dump-json": metaJSON,
		"-g":          "https://video.example/direct.mp4\n",
	}}
	a := New("yt-dlp", run, &fakeGrabber{err: errors.New("no frame")}, t.TempDir())

	meta, err := a.Extract(context.Background(), "https://twitter.com/u/status/1")
	if err != nil {
		t.Fatalf("frame fallback failure must be non-fatal, got: %v", err)
	}
	// twitter ranking picks the widest candidate among those >= 480px.
	if meta.Thumbnail != "A" {
		t.Fatalf("expected originally selected thumbnail, got %q", meta.Thumbnail)
	}
}

func TestMetadataArgs(t *testing.T) {
	t.Parallel()

	base := strings.Join(metadataArgs("u", "youtube"), " ")
	for _, want := range []string{
		"--dump-json", "--no-download", "--no-warnings",
		"--extractor-retries 3", "--socket-timeout 10",
	} {
		if !strings.Contains(base, want) {
			t.Fatalf("missing %q in args: %s", want, base)
		}
	}
	if strings.Contains(base, "--no-check-certificates") {
		t.Fatalf("cert-tolerant mode must be twitter-only: %s", base)
	}

	tw := strings.Join(metadataArgs("u", "twitter"), " ")
	if !strings.Contains(tw, "--no-check-certificates") {
		t.Fatalf("expected cert-tolerant mode for twitter: %s", tw)
	}
}

func TestDetectPlatform(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"https://www.youtube.com/watch?v=abc": "youtube",
		"https://youtu.be/abc":                "youtube",
		"https://www.tiktok.com/@u/video/1":   "tiktok",
		"https://www.instagram.com/reel/1":    "instagram",
		"https://twitter.com/u/status/1":      "twitter",
		"https://x.com/u/status/1":            "twitter",
		"https://example.com/video.mp4":       "",
	}
	for url, want := range tests {
		if got := DetectPlatform(url); got != want {
			t.Fatalf("DetectPlatform(%q) = %q, want %q", url, got, want)
		}
	}
}

func TestFirstLine(t *testing.T) {
	t.Parallel()

	if got := firstLine("video\naudio\n"); got != "video" {
		t.Fatalf("firstLine = %q", got)
	}
	if got := firstLine("  \n"); got != "" {
		t.Fatalf("firstLine = %q, want empty", got)
	}
}
