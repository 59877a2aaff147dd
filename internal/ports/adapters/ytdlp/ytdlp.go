// Package ytdlp extracts source-video metadata through the yt-dlp binary and
// upgrades weak thumbnails with a real frame pulled from the stream.
package ytdlp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/clipforge/clipforge/internal/domain/thumbnails"
	"github.com/clipforge/clipforge/internal/mediatool"
	"github.com/clipforge/clipforge/internal/ports"
	"github.com/clipforge/clipforge/internal/types"
)

// Conservative network settings for the metadata fetch; nothing else in the
// pipeline gets a retry budget.
const (
	extractorRetries = "3"
	socketTimeoutSec = "10"
)

type runner interface {
	Run(ctx context.Context, tool string, args ...string) (mediatool.Result, error)
}

type Adapter struct {
	bin    string
	run    runner
	frames ports.FrameGrabber
	tmpDir string
}

// New builds the extractor. frames may be nil, which disables the
// frame-extraction thumbnail fallback.
func New(binPath string, run runner, frames ports.FrameGrabber, tmpDir string) *Adapter {
	if binPath == "" {
		binPath = "yt-dlp"
	}
	if run == nil {
		run = mediatool.New()
	}
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}
	return &Adapter{bin: binPath, run: run, frames: frames, tmpDir: tmpDir}
}

// Extract fetches metadata for sourceURL and resolves the best usable
// thumbnail. Metadata-tool failure is fatal for the call; thumbnail fallback
// failure only degrades thumbnail quality.
func (a *Adapter) Extract(ctx context.Context, sourceURL string) (types.Metadata, error) {
	platform := DetectPlatform(sourceURL)

	res, err := a.run.Run(ctx, a.bin, metadataArgs(sourceURL, platform)...)
	if err != nil {
		return types.Metadata{}, err
	}

	meta, err := parseMetadata(res.Stdout)
	if err != nil {
		return types.Metadata{}, err
	}

	selected := thumbnails.Select(meta, platform)
	// A live asset has no stable recent frame; hand back whatever the
	// selection policy produced.
	if meta.IsLive {
		meta.Thumbnail = selected
		return meta, nil
	}

	if weakThumbnailPlatform(platform) || thumbnails.IsPlaceholder(selected) {
		if frame, err := a.extractFrameThumbnail(ctx, sourceURL, platform); err == nil {
			selected = frame
		} else {
			log.Debug().Err(err).Str("platform", platform).
				Msg("frame-extraction fallback failed, keeping selected thumbnail")
		}
	}

	meta.Thumbnail = selected
	return meta, nil
}

// Download ingests the source video into outPath, preferring an mp4 the
// cutter can stream-copy from.
func (a *Adapter) Download(ctx context.Context, sourceURL, outPath string) error {
	platform := DetectPlatform(sourceURL)
	args := []string{
		"-f", "mp4/best",
		"--no-warnings",
		"-o", outPath,
	}
	if platform == "twitter" {
		args = append(args, "--no-check-certificates")
	}
	args = append(args, sourceURL)
	_, err := a.run.Run(ctx, a.bin, args...)
	return err
}

func metadataArgs(sourceURL, platform string) []string {
	args := []string{
		"--dump-json",
		"--no-download",
		"--no-warnings",
		"--extractor-retries", extractorRetries,
		"--socket-timeout", socketTimeoutSec,
	}
	// twitter's CDN intermittently serves certificates yt-dlp rejects; be
	// permissive there only.
	if platform == "twitter" {
		args = append(args, "--no-check-certificates")
	}
	return append(args, sourceURL)
}

type rawMetadata struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Duration    float64           `json:"duration"`
	Thumbnail   string            `json:"thumbnail"`
	Thumbnails  []types.Thumbnail `json:"thumbnails"`
	Uploader    string            `json:"uploader"`
	Width       int               `json:"width"`
	Height      int               `json:"height"`
	FPS         float64           `json:"fps"`
	IsLive      bool              `json:"is_live"`
}

func parseMetadata(out []byte) (types.Metadata, error) {
	var raw rawMetadata
	if err := json.Unmarshal(out, &raw); err != nil {
		return types.Metadata{}, fmt.Errorf("parse metadata dump: %w", err)
	}
	return types.Metadata{
		Title:       strings.TrimSpace(raw.Title),
		Description: raw.Description,
		Duration:    raw.Duration,
		Thumbnail:   raw.Thumbnail,
		Thumbnails:  raw.Thumbnails,
		Uploader:    raw.Uploader,
		Width:       raw.Width,
		Height:      raw.Height,
		FPS:         raw.FPS,
		IsLive:      raw.IsLive,
	}, nil
}

// extractFrameThumbnail resolves a playable media URL capped at 720p and
// pulls one real frame, returned as a data-embedded JPEG.
func (a *Adapter) extractFrameThumbnail(ctx context.Context, sourceURL, platform string) (string, error) {
	if a.frames == nil {
		return "", fmt.Errorf("frame grabber not configured")
	}

	res, err := a.run.Run(ctx, a.bin, directURLArgs(sourceURL, platform)...)
	if err != nil {
		return "", err
	}
	mediaURL := firstLine(string(res.Stdout))
	if mediaURL == "" {
		return "", fmt.Errorf("no playable media url resolved")
	}

	framePath := filepath.Join(a.tmpDir, "thumb_"+uuid.NewString()+".jpg")
	defer func() {
		if err := os.Remove(framePath); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", framePath).Msg("frame cleanup failed")
		}
	}()

	if err := a.frames.ExtractFrame(ctx, mediaURL, framePath); err != nil {
		return "", err
	}
	b, err := os.ReadFile(framePath)
	if err != nil {
		return "", err
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(b), nil
}

func directURLArgs(sourceURL, platform string) []string {
	args := []string{"-g", "-f", formatSelector(platform), "--no-warnings"}
	if platform == "twitter" {
		args = append(args, "--no-check-certificates")
	}
	return append(args, sourceURL)
}

// formatSelector caps resolution at 720p; a thumbnail frame never needs more.
func formatSelector(platform string) string {
	switch platform {
	case "twitter":
		return "best[height<=720]/best"
	default:
		return "best[height<=720]"
	}
}

// weakThumbnailPlatform marks platforms whose reported thumbnails are
// unreliable enough that a real frame is always preferred.
func weakThumbnailPlatform(platform string) bool {
	return platform == "twitter"
}

// DetectPlatform classifies a source URL by host. Unknown hosts return "".
func DetectPlatform(sourceURL string) string {
	lower := strings.ToLower(sourceURL)
	switch {
	case strings.Contains(lower, "youtube.com"), strings.Contains(lower, "youtu.be"):
		return "youtube"
	case strings.Contains(lower, "tiktok.com"):
		return "tiktok"
	case strings.Contains(lower, "instagram.com"):
		return "instagram"
	case strings.Contains(lower, "twitter.com"), strings.Contains(lower, "//x.com"), strings.Contains(lower, "www.x.com"):
		return "twitter"
	default:
		return ""
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
