package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clipforge/clipforge/internal/domain/captions"
	"github.com/clipforge/clipforge/internal/ports"
	"github.com/clipforge/clipforge/internal/types"
)

// Burner renders burned-in captions locally. It implements the same
// contract as the remote proxy's apply call, so the pipeline can swap one
// for the other at wiring time.
type Burner struct {
	video  ports.VideoTool
	fetch  ports.Fetcher
	fonts  captions.Registry
	tmpDir string
	log    zerolog.Logger
}

func NewBurner(video ports.VideoTool, fetch ports.Fetcher, fonts captions.Registry, tmpDir string, log zerolog.Logger) *Burner {
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}
	return &Burner{video: video, fetch: fetch, fonts: fonts, tmpDir: tmpDir, log: log}
}

// Apply validates the font key, fetches the source locally when it is a
// remote URL, renders the ASS document and burns it in. Intermediate files
// (downloaded source, subtitle file) are removed before returning; cleanup
// failures are logged, never fatal. Captions are expected in clip-local
// time (see captions.AlignToClip).
func (b *Burner) Apply(ctx context.Context, videoSource string, payload types.CaptionPayload, clipID string) (types.RenderedClip, error) {
	font, err := b.fonts.Resolve(payload.FontKey)
	if err != nil {
		return types.RenderedClip{}, err
	}

	inPath := videoSource
	var intermediates []string
	if isRemote(videoSource) {
		inPath = filepath.Join(b.tmpDir, fmt.Sprintf("burn_src_%s.mp4", uuid.NewString()[:8]))
		if err := b.fetch.FetchToFile(ctx, videoSource, inPath); err != nil {
			return types.RenderedClip{}, fmt.Errorf("fetch source video: %w", err)
		}
		intermediates = append(intermediates, inPath)
	}
	defer func() { b.removeQuietly(intermediates) }()

	assPath := filepath.Join(b.tmpDir, fmt.Sprintf("captions_%s.ass", clipID))
	doc := captions.RenderASS(payload.Captions, captions.Style{
		Font:        font,
		Position:    payload.Position,
		FrameWidth:  1080,
		FrameHeight: 1920,
	})
	if err := os.WriteFile(assPath, []byte(doc), 0o644); err != nil {
		return types.RenderedClip{}, fmt.Errorf("write subtitles: %w", err)
	}
	intermediates = append(intermediates, assPath)

	name := fmt.Sprintf("clip_%s_captioned.mp4", clipID)
	outPath := filepath.Join(b.tmpDir, name)
	if err := b.video.BurnSubtitles(ctx, inPath, assPath, outPath); err != nil {
		return types.RenderedClip{}, err
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return types.RenderedClip{}, fmt.Errorf("stat burned clip: %w", err)
	}
	duration, err := b.video.ProbeDuration(ctx, outPath)
	if err != nil {
		// Duration is informational on this path; a probe failure must not
		// discard a finished burn.
		b.log.Warn().Err(err).Str("clip", clipID).Msg("probe of burned clip failed")
	}

	return types.RenderedClip{
		Path:      outPath,
		FileName:  name,
		SizeBytes: info.Size(),
		Duration:  duration,
	}, nil
}

func (b *Burner) removeQuietly(paths []string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			b.log.Warn().Err(err).Str("path", p).Msg("intermediate cleanup failed")
		}
	}
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
