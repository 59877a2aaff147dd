package captions

import "github.com/clipforge/clipforge/internal/types"

// AlignToClip shifts absolute caption timestamps onto a clip's local time
// base and discards words that fall outside [0, clipDurationSec]. Words
// straddling a boundary are clamped to it. This is the whole of the
// live-preview contract: the consumer styles and overlays the result itself,
// no re-encode happens here.
func AlignToClip(captions []types.Caption, clipStartSec, clipDurationSec float64) []types.Caption {
	if clipDurationSec <= 0 {
		return nil
	}
	out := make([]types.Caption, 0, len(captions))
	for _, c := range captions {
		start := c.StartSec - clipStartSec
		end := c.EndSec - clipStartSec
		if end <= 0 || start >= clipDurationSec {
			continue
		}
		if start < 0 {
			start = 0
		}
		if end > clipDurationSec {
			end = clipDurationSec
		}
		out = append(out, types.Caption{Text: c.Text, StartSec: start, EndSec: end})
	}
	return out
}
