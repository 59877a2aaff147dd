package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/clipforge/clipforge/internal/mediatool"
	"github.com/clipforge/clipforge/internal/types"
)

// Vertical output targets the 9:16 short-form canvas.
const (
	verticalFilter = "scale=1080:1920:force_original_aspect_ratio=increase,crop=1080:1920"
	videoCodec     = "libx264"
	videoPreset    = "veryfast"
	videoCRF       = "23"
	audioCodec     = "aac"
	audioBitrate   = "128k"
)

type Adapter struct {
	ffmpeg  string
	ffprobe string
	run     *mediatool.Invoker
}

func New(ffmpegPath, ffprobePath string, run *mediatool.Invoker) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if run == nil {
		run = mediatool.New()
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath, run: run}
}

// CutClip renders [startSec, endSec) of in into out. Vertical cuts re-encode
// to the 1080x1920 canvas; everything else copies streams for speed.
func (a *Adapter) CutClip(ctx context.Context, in, out string, startSec, endSec float64, vertical bool) (types.RenderedClip, error) {
	args := cutArgs(in, out, startSec, endSec, vertical)
	log.Debug().Str("input", in).Float64("start", startSec).Float64("end", endSec).
		Bool("vertical", vertical).Msg("cutting clip")

	if _, err := a.run.Run(ctx, a.ffmpeg, args...); err != nil {
		return types.RenderedClip{}, err
	}

	info, err := os.Stat(out)
	if err != nil {
		return types.RenderedClip{}, fmt.Errorf("stat rendered clip: %w", err)
	}
	aspect := "original"
	if vertical {
		aspect = "9:16"
	}
	return types.RenderedClip{
		Path:        out,
		FileName:    filepath.Base(out),
		SizeBytes:   info.Size(),
		Duration:    endSec - startSec,
		AspectRatio: aspect,
	}, nil
}

// cutArgs keeps the argument contract in one inspectable place. Fast seek
// (-ss before -i) trades frame accuracy for speed on large inputs.
func cutArgs(in, out string, startSec, endSec float64, vertical bool) []string {
	args := []string{
		"-ss", fmtSeconds(startSec),
		"-i", in,
		"-t", fmtSeconds(endSec - startSec),
	}
	if vertical {
		args = append(args,
			"-vf", verticalFilter,
			"-c:v", videoCodec,
			"-preset", videoPreset,
			"-crf", videoCRF,
			"-c:a", audioCodec,
			"-b:a", audioBitrate,
		)
	} else {
		args = append(args, "-c", "copy")
	}
	return append(args, "-avoid_negative_ts", "make_zero", "-y", out)
}

// ExtractAudioMono16k writes the same time range as 16 kHz mono PCM, the
// shape transcription services require.
func (a *Adapter) ExtractAudioMono16k(ctx context.Context, in, out string, startSec, endSec float64) error {
	_, err := a.run.Run(ctx, a.ffmpeg, audioArgs(in, out, startSec, endSec)...)
	return err
}

func audioArgs(in, out string, startSec, endSec float64) []string {
	return []string{
		"-ss", fmtSeconds(startSec),
		"-i", in,
		"-t", fmtSeconds(endSec - startSec),
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		"-y", out,
	}
}

// ExtractFrame grabs one displayable frame from a playable media URL,
// skipping frame zero to avoid black or filler frames.
func (a *Adapter) ExtractFrame(ctx context.Context, mediaURL, out string) error {
	_, err := a.run.Run(ctx, a.ffmpeg,
		"-ss", "1",
		"-i", mediaURL,
		"-vf", `select=gte(n\,1)`,
		"-frames:v", "1",
		"-q:v", "2",
		"-y", out,
	)
	return err
}

// BurnSubtitles bakes the ASS file into the video pixels. Audio is copied
// untouched.
func (a *Adapter) BurnSubtitles(ctx context.Context, in, assPath, out string) error {
	_, err := a.run.Run(ctx, a.ffmpeg,
		"-i", in,
		"-vf", "subtitles="+escapeFilterPath(assPath),
		"-c:v", videoCodec,
		"-preset", videoPreset,
		"-crf", "18",
		"-c:a", "copy",
		"-y", out,
	)
	return err
}

func (a *Adapter) ProbeDuration(ctx context.Context, in string) (float64, error) {
	res, err := a.run.Run(ctx, a.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		in,
	)
	if err != nil {
		return 0, err
	}
	s := strings.TrimSpace(string(res.Stdout))
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return sec, nil
}

func fmtSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 3, 64)
}

func escapeFilterPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "\\\\")
	p = strings.ReplaceAll(p, ":", "\\:")
	return p
}
