package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clipforge/clipforge/internal/domain/captions"
	"github.com/clipforge/clipforge/internal/domain/engagement"
	"github.com/clipforge/clipforge/internal/mediatool"
	"github.com/clipforge/clipforge/internal/ports"
	"github.com/clipforge/clipforge/internal/ports/adapters/ffmpeg"
	"github.com/clipforge/clipforge/internal/ports/adapters/httpfetch"
	"github.com/clipforge/clipforge/internal/ports/adapters/remote"
	"github.com/clipforge/clipforge/internal/ports/adapters/s3store"
	"github.com/clipforge/clipforge/internal/ports/adapters/ytdlp"
	"github.com/clipforge/clipforge/internal/types"
	"github.com/clipforge/clipforge/internal/usecase"
)

type Config struct {
	// Exactly one of SourceURL or InputPath is required.
	SourceURL string
	InputPath string

	// Platform overrides URL-based detection when set.
	Platform string

	ClipCount       int
	MinScore        float64
	ClipDurationSec float64
	AspectRatio     string // "9:16" or "original"

	// Captions are optional; when both are set the uploaded clips also get
	// burned-caption variants.
	CaptionsFile    string
	FontKey         string
	CaptionPosition string

	OutDir string

	YtDlpPath   string
	FFmpegPath  string
	FFprobePath string

	S3Bucket        string
	S3Region        string
	S3PublicBaseURL string

	// Remote processing backend; both empty means local tools only.
	RemoteBaseURL string
	RemoteSecret  string

	Log zerolog.Logger
}

func (c Config) Validate() error {
	if c.SourceURL == "" && c.InputPath == "" {
		return errors.New("source url or input path is required")
	}
	if c.SourceURL != "" && c.InputPath != "" {
		return errors.New("source url and input path are mutually exclusive")
	}
	if c.InputPath != "" {
		if _, err := os.Stat(c.InputPath); err != nil {
			return fmt.Errorf("stat input: %w", err)
		}
	}
	if c.ClipCount <= 0 {
		return errors.New("clip count must be > 0")
	}
	if c.ClipDurationSec <= 0 {
		return errors.New("clip duration must be > 0")
	}
	if c.MinScore < 0 || c.MinScore > 100 {
		return errors.New("min score must be within [0,100]")
	}
	switch c.AspectRatio {
	case "", "9:16", "original":
	default:
		return fmt.Errorf("unsupported aspect ratio %q", c.AspectRatio)
	}
	if c.S3Bucket == "" {
		return errors.New("artifact store bucket is required")
	}
	if c.FontKey != "" && c.CaptionsFile == "" {
		return errors.New("font key given without a captions file")
	}
	return nil
}

// Result is everything durable a run leaves behind: metadata, the batch
// outcome and any burned-caption uploads. All temp files are gone by the
// time Run returns.
type Result struct {
	Meta      types.Metadata       `json:"meta"`
	Platform  string               `json:"platform"`
	Windows   []types.ClipWindow   `json:"windows"`
	Batch     types.BatchResult    `json:"batch"`
	Captioned []types.UploadResult `json:"captioned,omitempty"`
}

func Run(ctx context.Context, cfg Config) (Result, error) {
	log := cfg.Log

	store, err := s3store.NewFromEnv(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3PublicBaseURL)
	if err != nil {
		return Result{}, err
	}
	return run(ctx, cfg, store, log)
}

func run(ctx context.Context, cfg Config, store ports.ArtifactStore, log zerolog.Logger) (Result, error) {
	// One scratch scope per invocation; uuid-suffixed so concurrent runs
	// never collide without locking.
	scratch := filepath.Join(os.TempDir(), "clipforge", "run-"+uuid.NewString())
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return Result{}, err
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			log.Warn().Err(err).Str("dir", scratch).Msg("scratch cleanup failed")
		}
	}()
	log.Debug().Str("scratch", scratch).Msg("workspace ready")

	invoker := mediatool.New()
	video := ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath, invoker)
	dl := ytdlp.New(cfg.YtDlpPath, invoker, video, scratch)
	fetch := httpfetch.New()
	proxy := remote.New(cfg.RemoteBaseURL, cfg.RemoteSecret, scratch)
	fonts := captions.DefaultRegistry()

	// Backend substitution is a config-time choice, not a runtime retry
	// path: once a run starts, the selected backend serves every call.
	var meta ports.MetadataProvider = dl
	var applier ports.CaptionApplier = usecase.NewBurner(video, fetch, fonts, scratch, log)
	if proxy.Configured() {
		meta = proxy
		applier = proxy
		log.Info().Str("backend", cfg.RemoteBaseURL).Msg("using remote processing backend")
	} else {
		log.Info().Msg("processing backend not configured, using local tools")
	}

	md, platform, inputPath, err := ingest(ctx, cfg, meta, dl, video, scratch)
	if err != nil {
		return Result{}, err
	}
	log.Info().Str("title", md.Title).Float64("duration", md.Duration).
		Str("platform", platform).Msg("source ingested")

	scored := engagement.Score(sampleFrames(md.Duration), engagement.Input{
		Title:    md.Title,
		Duration: md.Duration,
		Platform: platform,
	})
	windows := engagement.BuildWindows(scored, cfg.MinScore, cfg.ClipDurationSec, cfg.ClipCount)
	log.Info().Int("windows", len(windows)).Msg("candidate windows selected")

	uc := usecase.New(usecase.Deps{Video: video, Store: store, Log: log})
	batch := uc.ProcessClips(ctx, usecase.BatchInput{
		InputPath:   inputPath,
		Windows:     windows,
		SourceTitle: md.Title,
		Platform:    platform,
		AspectRatio: cfg.AspectRatio,
		ScratchDir:  scratch,
	})
	log.Info().Int("processed", batch.Processed).Int("failed", batch.Failed).Msg("batch done")

	res := Result{Meta: md, Platform: platform, Windows: windows, Batch: batch}

	if cfg.CaptionsFile != "" && cfg.FontKey != "" {
		captioned, err := burnCaptionedVariants(ctx, cfg, windows, batch, applier, store, log)
		if err != nil {
			return Result{}, err
		}
		res.Captioned = captioned
	}

	if cfg.OutDir != "" {
		if err := writeResult(cfg.OutDir, md.Title, res); err != nil {
			return Result{}, err
		}
	}
	return res, nil
}

// ingest resolves metadata and a local media path for the source, whether it
// arrived as a URL or a file already on disk.
func ingest(
	ctx context.Context,
	cfg Config,
	meta ports.MetadataProvider,
	dl *ytdlp.Adapter,
	video ports.VideoTool,
	scratch string,
) (types.Metadata, string, string, error) {
	if cfg.InputPath != "" {
		duration, err := video.ProbeDuration(ctx, cfg.InputPath)
		if err != nil {
			return types.Metadata{}, "", "", err
		}
		name := strings.TrimSuffix(filepath.Base(cfg.InputPath), filepath.Ext(cfg.InputPath))
		return types.Metadata{Title: name, Duration: duration}, cfg.Platform, cfg.InputPath, nil
	}

	platform := cfg.Platform
	if platform == "" {
		platform = ytdlp.DetectPlatform(cfg.SourceURL)
	}

	md, err := meta.Extract(ctx, cfg.SourceURL)
	if err != nil {
		return types.Metadata{}, "", "", err
	}
	if md.IsLive {
		return types.Metadata{}, "", "", errors.New("live streams cannot be clipped")
	}

	local := filepath.Join(scratch, "source.mp4")
	if err := dl.Download(ctx, cfg.SourceURL, local); err != nil {
		return types.Metadata{}, "", "", err
	}
	return md, platform, local, nil
}

// burnCaptionedVariants produces a burned-caption upload for every clip the
// batch managed to process. Caption timing arrives in absolute source time
// and is re-based onto each clip.
func burnCaptionedVariants(
	ctx context.Context,
	cfg Config,
	windows []types.ClipWindow,
	batch types.BatchResult,
	applier ports.CaptionApplier,
	store ports.ArtifactStore,
	log zerolog.Logger,
) ([]types.UploadResult, error) {
	all, err := loadCaptions(cfg.CaptionsFile)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]types.ClipWindow, len(windows))
	for _, w := range windows {
		byID[w.ID] = w
	}

	out := make([]types.UploadResult, 0, len(batch.Clips))
	for _, clip := range batch.Clips {
		w := byID[clip.WindowID]
		payload := types.CaptionPayload{
			Captions: captions.AlignToClip(all, w.StartSec, w.Duration()),
			FontKey:  cfg.FontKey,
			Position: cfg.CaptionPosition,
		}
		burned, err := applier.Apply(ctx, clip.Upload.URL, payload, w.ID)
		if err != nil {
			return nil, fmt.Errorf("burn captions for %s: %w", w.ID, err)
		}

		upload, err := store.Upload(ctx, burned.Path, "clips/"+burned.FileName, "video/mp4")
		if rmErr := os.Remove(burned.Path); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Warn().Err(rmErr).Str("path", burned.Path).Msg("burned clip cleanup failed")
		}
		if err != nil {
			return nil, fmt.Errorf("upload captioned %s: %w", w.ID, err)
		}
		out = append(out, upload)
	}
	return out, nil
}

func loadCaptions(path string) ([]types.Caption, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read captions file: %w", err)
	}
	var out []types.Caption
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("parse captions file: %w", err)
	}
	return out, nil
}

// sampleFrames spreads scoring offsets evenly across the timeline: one per
// two seconds, bounded to keep the scorer cheap on very long sources.
func sampleFrames(duration float64) []types.FrameSample {
	if duration <= 0 {
		return nil
	}
	n := int(duration / 2)
	if n < 20 {
		n = 20
	}
	if n > 100 {
		n = 100
	}
	step := duration / float64(n)
	out := make([]types.FrameSample, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, types.FrameSample{Index: i, Timestamp: step * float64(i)})
	}
	return out
}

func writeResult(outDir, title string, res Result) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	name := buildResultName(title, time.Now().UTC())
	return os.WriteFile(filepath.Join(outDir, name), b, 0o644)
}

// buildResultName yields a stable, collision-resistant artifact name from
// the source title and run time.
func buildResultName(title string, now time.Time) string {
	name := normalizePathSegment(title)
	if name == "" {
		name = "run"
	}
	ts := now.UTC().Format("20060102-150405Z")
	seed := fmt.Sprintf("%s|%d", title, now.UTC().UnixNano())
	return fmt.Sprintf("%s-%s-%s.json", name, ts, hash(seed)[:6])
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}

// ensure adapters implement ports
var _ ports.MetadataProvider = (*ytdlp.Adapter)(nil)
var _ ports.MetadataProvider = (*remote.Client)(nil)
var _ ports.CaptionApplier = (*remote.Client)(nil)
var _ ports.CaptionApplier = (*usecase.Burner)(nil)
var _ ports.VideoTool = (*ffmpeg.Adapter)(nil)
var _ ports.FrameGrabber = (*ffmpeg.Adapter)(nil)
var _ ports.ArtifactStore = (*s3store.Store)(nil)
var _ ports.Fetcher = (*httpfetch.Fetcher)(nil)
