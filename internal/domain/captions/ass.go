package captions

import (
	"fmt"
	"strings"
	"time"

	"github.com/clipforge/clipforge/internal/types"
)

// Style carries the burn-time rendering choices.
type Style struct {
	Font        Font
	Position    string // "top", "middle" or "bottom"
	FrameWidth  int
	FrameHeight int
}

// RenderASS produces an ASS subtitle document for clip-local captions,
// grouped into readable lines with per-word karaoke timing.
func RenderASS(captions []types.Caption, style Style) string {
	var b strings.Builder
	b.WriteString(header(style))
	b.WriteString("\n[Events]\n")
	b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	for _, ln := range packLines(captions) {
		b.WriteString("Dialogue: 0,")
		b.WriteString(assTime(ln.start))
		b.WriteString(",")
		b.WriteString(assTime(ln.end))
		b.WriteString(",Caption,,0,0,0,,")
		for _, w := range ln.words {
			durCS := int((w.EndSec - w.StartSec) * 100)
			if durCS < 1 {
				durCS = 1
			}
			b.WriteString(fmt.Sprintf("{\\k%d}%s ", durCS, sanitize(w.Text)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

type assLine struct {
	start float64
	end   float64
	words []types.Caption
}

// Hard budgets trade exact caption grouping for consistently readable chunks
// on vertical-video layouts.
const (
	charBudget = 42
	wordBudget = 9
)

func packLines(words []types.Caption) []assLine {
	if len(words) == 0 {
		return nil
	}
	var out []assLine
	cur := assLine{start: words[0].StartSec}
	curLen := 0
	for i, w := range words {
		wl := len([]rune(w.Text))
		nextLen := curLen
		if curLen > 0 {
			nextLen++
		}
		nextLen += wl
		if len(cur.words) >= wordBudget || (len(cur.words) > 0 && nextLen > charBudget) {
			cur.end = cur.words[len(cur.words)-1].EndSec
			out = append(out, cur)
			cur = assLine{start: w.StartSec}
			curLen = 0
		}
		cur.words = append(cur.words, w)
		if curLen > 0 {
			curLen++
		}
		curLen += wl
		if i == len(words)-1 {
			cur.end = w.EndSec
			out = append(out, cur)
		}
	}
	return out
}

// Alignment maps position to the numpad convention ASS uses.
func alignment(position string) int {
	switch strings.ToLower(position) {
	case "top":
		return 8
	case "middle", "center":
		return 5
	default:
		return 2 // bottom
	}
}

func header(style Style) string {
	w, h := style.FrameWidth, style.FrameHeight
	if w <= 0 || h <= 0 {
		w, h = 1080, 1920
	}
	family := style.Font.Family
	if family == "" {
		family = "Roboto"
	}
	return fmt.Sprintf(strings.TrimSpace(`
[Script Info]
ScriptType: v4.00+
PlayResX: %d
PlayResY: %d
ScaledBorderAndShadow: yes

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Caption, %s, 78, &H00FFFFFF, &H00FFD200, &H00000000, &H64000000, 1,0,0,0,100,100,0,0,1,6,2,%d, 80,80,85,1
`), w, h, family, alignment(style.Position))
}

func assTime(sec float64) string {
	d := time.Duration(sec * float64(time.Second))
	if d < 0 {
		d = 0
	}
	hs := int(d / time.Hour)
	d -= time.Duration(hs) * time.Hour
	ms := int(d / time.Minute)
	d -= time.Duration(ms) * time.Minute
	s := int(d / time.Second)
	d -= time.Duration(s) * time.Second
	cs := int(d / (10 * time.Millisecond))
	return fmt.Sprintf("%d:%02d:%02d.%02d", hs, ms, s, cs)
}

func sanitize(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "{", "(")
	s = strings.ReplaceAll(s, "}", ")")
	return strings.TrimSpace(s)
}
