package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clipforge/clipforge/internal/domain/engagement"
	"github.com/clipforge/clipforge/internal/ports"
	"github.com/clipforge/clipforge/internal/types"
)

type Deps struct {
	Video ports.VideoTool
	Store ports.ArtifactStore
	Log   zerolog.Logger
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase { return Usecase{d: d} }

// BatchInput describes one clip-extraction batch over an already-ingested
// local source video.
type BatchInput struct {
	InputPath   string
	Windows     []types.ClipWindow
	SourceTitle string
	Platform    string
	AspectRatio string // "9:16" or "original"

	// TitleHints maps window IDs to transcription-derived titles. Windows
	// without a hint get the deterministic source-title fallback.
	TitleHints map[string]string

	// ScratchDir is the invocation's temp scope. Every file created under
	// it for a window is removed before the window's iteration ends.
	ScratchDir string
}

// ProcessClips cuts, titles and uploads each window in order. Processing is
// sequential on purpose: it bounds simultaneous encoder CPU and disk
// pressure on a single host. A failing window is recorded and skipped; it
// never aborts the remaining windows.
func (u Usecase) ProcessClips(ctx context.Context, in BatchInput) types.BatchResult {
	res := types.BatchResult{Clips: []types.ProcessedClip{}, Errors: []types.WindowError{}}
	vertical := in.AspectRatio == "9:16" || engagement.IsShortForm(in.Platform)

	for _, w := range in.Windows {
		clip, err := u.processWindow(ctx, in, w, vertical)
		if err != nil {
			u.d.Log.Error().Err(err).Str("window", w.ID).Msg("window failed")
			res.Failed++
			res.Errors = append(res.Errors, types.WindowError{WindowID: w.ID, Message: err.Error()})
			continue
		}
		res.Processed++
		res.Clips = append(res.Clips, clip)
	}
	return res
}

func (u Usecase) processWindow(ctx context.Context, in BatchInput, w types.ClipWindow, vertical bool) (types.ProcessedClip, error) {
	suffix := uuid.NewString()[:8]
	clipPath := filepath.Join(in.ScratchDir, fmt.Sprintf("clip_%s_%s.mp4", w.ID, suffix))
	audioPath := filepath.Join(in.ScratchDir, fmt.Sprintf("clip_%s_%s.wav", w.ID, suffix))

	// Both temp files go away whatever happens past this point, upload
	// failures included.
	defer u.removeQuietly(clipPath, audioPath)

	rendered, err := u.d.Video.CutClip(ctx, in.InputPath, clipPath, w.StartSec, w.EndSec, vertical)
	if err != nil {
		return types.ProcessedClip{}, fmt.Errorf("cut clip: %w", err)
	}

	// The audio sibling feeds transcription downstream; it has a different
	// consumer than the visual clip, hence the separate artifact.
	if err := u.d.Video.ExtractAudioMono16k(ctx, in.InputPath, audioPath, w.StartSec, w.EndSec); err != nil {
		return types.ProcessedClip{}, fmt.Errorf("extract audio: %w", err)
	}

	title := deriveTitle(in.SourceTitle, in.TitleHints[w.ID], w.StartSec)

	upload, err := u.d.Store.Upload(ctx, rendered.Path, "clips/"+rendered.FileName, "video/mp4")
	if err != nil {
		return types.ProcessedClip{}, fmt.Errorf("upload clip: %w", err)
	}

	return types.ProcessedClip{
		WindowID: w.ID,
		Title:    title,
		StartSec: w.StartSec,
		EndSec:   w.EndSec,
		Score:    w.Score,
		Upload:   upload,
	}, nil
}

// deriveTitle prefers the transcription-derived hint and falls back to a
// deterministic title built from the source title and the clip offset.
func deriveTitle(sourceTitle, hint string, startSec float64) string {
	if h := strings.TrimSpace(hint); h != "" {
		return h
	}
	base := strings.TrimSpace(sourceTitle)
	if base == "" {
		base = "Clip"
	}
	return fmt.Sprintf("%s (at %s)", base, formatOffset(startSec))
}

func formatOffset(sec float64) string {
	total := int(sec)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// removeQuietly deletes temp files, logging failures as warnings. Partial
// cleanup is never fatal.
func (u Usecase) removeQuietly(paths ...string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			u.d.Log.Warn().Err(err).Str("path", p).Msg("temp cleanup failed")
		}
	}
}
