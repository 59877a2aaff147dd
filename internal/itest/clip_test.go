//go:build integration

package itest

import (
	"context"
	"math"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/clipforge/clipforge/internal/mediatool"
	"github.com/clipforge/clipforge/internal/ports/adapters/ffmpeg"
)

// makeTestVideo renders a 15s synthetic source with a tone so both video and
// audio streams exist.
func makeTestVideo(t *testing.T, dir string) string {
	t.Helper()
	out := filepath.Join(dir, "source.mp4")
	cmd := exec.Command("ffmpeg",
		"-y",
		"-f", "lavfi",
		"-i", "testsrc=size=1280x720:rate=30:duration=15",
		"-f", "lavfi",
		"-i", "sine=frequency=440:duration=15",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-shortest",
		out,
	)
	if b, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("ffmpeg synth failed: %v\n%s", err, string(b))
	}
	return out
}

func TestCutClip_OriginalPreservesDuration(t *testing.T) {
	tmp := t.TempDir()
	src := makeTestVideo(t, tmp)

	a := ffmpeg.New("", "", mediatool.New())
	out := filepath.Join(tmp, "clip.mp4")
	clip, err := a.CutClip(context.Background(), src, out, 2, 8, false)
	if err != nil {
		t.Fatalf("cut: %v", err)
	}
	if clip.SizeBytes == 0 {
		t.Fatal("rendered clip is empty")
	}

	got, err := a.ProbeDuration(context.Background(), out)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	// Stream copy cuts on keyframes; allow one frame interval at 30fps plus
	// keyframe slack.
	if math.Abs(got-6) > 0.5 {
		t.Fatalf("duration = %v, want ~6s", got)
	}
}

func TestCutClip_VerticalCanvas(t *testing.T) {
	tmp := t.TempDir()
	src := makeTestVideo(t, tmp)

	a := ffmpeg.New("", "", mediatool.New())
	out := filepath.Join(tmp, "vertical.mp4")
	if _, err := a.CutClip(context.Background(), src, out, 0, 4, true); err != nil {
		t.Fatalf("cut vertical: %v", err)
	}

	cmd := exec.Command("ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "csv=s=x:p=0",
		out,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("ffprobe: %v\n%s", err, string(b))
	}
	if got := string(b); got != "1080x1920\n" {
		t.Fatalf("canvas = %q, want 1080x1920", got)
	}
}

func TestExtractAudioMono16k(t *testing.T) {
	tmp := t.TempDir()
	src := makeTestVideo(t, tmp)

	a := ffmpeg.New("", "", mediatool.New())
	wav := filepath.Join(tmp, "audio.wav")
	if err := a.ExtractAudioMono16k(context.Background(), src, wav, 1, 5); err != nil {
		t.Fatalf("extract audio: %v", err)
	}

	cmd := exec.Command("ffprobe",
		"-v", "error",
		"-select_streams", "a:0",
		"-show_entries", "stream=channels,sample_rate",
		"-of", "csv=p=0",
		wav,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("ffprobe: %v\n%s", err, string(b))
	}
	if got := string(b); got != "16000,1\n" {
		t.Fatalf("audio shape = %q, want 16000,1", got)
	}
}
