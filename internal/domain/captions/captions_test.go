package captions

import (
	"errors"
	"strings"
	"testing"

	"github.com/clipforge/clipforge/internal/types"
)

func TestRegistry_ResolveKnownKeys(t *testing.T) {
	t.Parallel()

	reg := DefaultRegistry()
	for _, key := range reg.Keys() {
		f, err := reg.Resolve(key)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", key, err)
		}
		if f.Family == "" {
			t.Fatalf("font %q has empty family", key)
		}
	}
	if n := len(reg.Keys()); n != 5 {
		t.Fatalf("expected 5 registered fonts, got %d", n)
	}
}

func TestRegistry_ResolveIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	reg := DefaultRegistry()
	f, err := reg.Resolve("  Bangers ")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if f.Family != "Bangers" {
		t.Fatalf("family = %q, want Bangers", f.Family)
	}
}

func TestRegistry_UnsupportedFontListsValidKeys(t *testing.T) {
	t.Parallel()

	reg := DefaultRegistry()
	_, err := reg.Resolve("comicSans")
	var fontErr *UnsupportedFontError
	if !errors.As(err, &fontErr) {
		t.Fatalf("expected UnsupportedFontError, got %T: %v", err, err)
	}
	if len(fontErr.Valid) != 5 {
		t.Fatalf("expected 5 valid keys in error, got %d", len(fontErr.Valid))
	}
	for _, key := range []string{"bangers", "komika", "montserrat", "poppins", "roboto"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("error %q does not list key %q", err.Error(), key)
		}
	}
}

func TestAlignToClip(t *testing.T) {
	t.Parallel()

	words := []types.Caption{
		{Text: "before", StartSec: 8, EndSec: 9},
		{Text: "straddle-in", StartSec: 9.5, EndSec: 10.5},
		{Text: "inside", StartSec: 12, EndSec: 13},
		{Text: "straddle-out", StartSec: 19.5, EndSec: 20.5},
		{Text: "after", StartSec: 21, EndSec: 22},
	}

	got := AlignToClip(words, 10, 10)
	if len(got) != 3 {
		t.Fatalf("expected 3 aligned words, got %d: %v", len(got), got)
	}
	if got[0].Text != "straddle-in" || got[0].StartSec != 0 {
		t.Fatalf("straddling word not clamped to 0: %+v", got[0])
	}
	if got[1].StartSec != 2 || got[1].EndSec != 3 {
		t.Fatalf("inside word not shifted to clip base: %+v", got[1])
	}
	if got[2].EndSec != 10 {
		t.Fatalf("tail word not clamped to clip duration: %+v", got[2])
	}
}

func TestAlignToClip_Empty(t *testing.T) {
	t.Parallel()

	if got := AlignToClip(nil, 0, 30); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
	if got := AlignToClip([]types.Caption{{Text: "x", StartSec: 1, EndSec: 2}}, 0, 0); got != nil {
		t.Fatalf("expected nil for zero duration, got %v", got)
	}
}

func TestRenderASS(t *testing.T) {
	t.Parallel()

	reg := DefaultRegistry()
	font, err := reg.Resolve("montserrat")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	words := []types.Caption{
		{Text: "hello", StartSec: 0.1, EndSec: 0.6},
		{Text: "world", StartSec: 0.7, EndSec: 1.2},
	}
	doc := RenderASS(words, Style{Font: font, Position: "top", FrameWidth: 1080, FrameHeight: 1920})

	if !strings.Contains(doc, "Montserrat") {
		t.Fatalf("expected font family in styles:\n%s", doc)
	}
	if !strings.Contains(doc, "PlayResX: 1080") || !strings.Contains(doc, "PlayResY: 1920") {
		t.Fatalf("expected frame dimensions in header:\n%s", doc)
	}
	if !strings.Contains(doc, "{\\k") {
		t.Fatalf("expected karaoke timing tags:\n%s", doc)
	}
	// Alignment 8 is top in the ASS numpad convention.
	if !strings.Contains(doc, ",8, 80,80,85,1") {
		t.Fatalf("expected top alignment in style line:\n%s", doc)
	}
}

func TestRenderASS_SanitizesBraces(t *testing.T) {
	t.Parallel()

	words := []types.Caption{{Text: "{evil}", StartSec: 0, EndSec: 0.5}}
	doc := RenderASS(words, Style{Font: Font{Family: "Roboto"}})
	if strings.Contains(doc, "{evil}") {
		t.Fatalf("braces must be sanitized out of caption text:\n%s", doc)
	}
	if !strings.Contains(doc, "(evil)") {
		t.Fatalf("expected sanitized text in output:\n%s", doc)
	}
}

func TestPackLines_Budgets(t *testing.T) {
	t.Parallel()

	var words []types.Caption
	for i := 0; i < 25; i++ {
		words = append(words, types.Caption{
			Text:     "word",
			StartSec: float64(i),
			EndSec:   float64(i) + 0.5,
		})
	}
	lines := packLines(words)
	if len(lines) < 2 {
		t.Fatalf("expected word budget to split lines, got %d line(s)", len(lines))
	}
	for _, ln := range lines {
		if len(ln.words) > wordBudget {
			t.Fatalf("line exceeds word budget: %d words", len(ln.words))
		}
	}
}
