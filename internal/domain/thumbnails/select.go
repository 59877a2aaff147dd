// Package thumbnails picks the best preview image from metadata-tool output.
// Selection is a pure function of the metadata: calling it twice on the same
// input returns the same candidate.
package thumbnails

import (
	"strings"

	"github.com/clipforge/clipforge/internal/types"
)

// Select applies the per-platform ranking policy and returns the chosen
// thumbnail URL, which may be empty when the metadata carries none at all.
func Select(meta types.Metadata, platform string) string {
	switch strings.ToLower(platform) {
	case "youtube":
		return selectYouTube(meta)
	case "twitter":
		return selectTwitter(meta)
	default:
		// tiktok, instagram and anything unknown share the
		// area-maximizing rule.
		return selectByArea(meta)
	}
}

// IsPlaceholder reports whether the selected thumbnail is unusable and a
// real frame should be pulled from the stream instead. Inline SVG payloads
// are the classic "blank player" placeholder.
func IsPlaceholder(url string) bool {
	if strings.TrimSpace(url) == "" {
		return true
	}
	lower := strings.ToLower(url)
	if strings.HasPrefix(lower, "data:image/svg") {
		return true
	}
	if strings.HasSuffix(strings.Split(lower, "?")[0], ".svg") {
		return true
	}
	return false
}

// selectYouTube prefers the explicitly labeled maximum-resolution variant,
// then the high-quality default, then falls through to area ranking.
func selectYouTube(meta types.Metadata) string {
	for _, want := range []string{"maxresdefault", "hqdefault"} {
		for _, t := range meta.Thumbnails {
			if t.URL == "" {
				continue
			}
			if strings.Contains(t.ID, want) || strings.Contains(t.URL, want) {
				return t.URL
			}
		}
	}
	return selectByArea(meta)
}

// selectTwitter tries ordered strategies because the platform's thumbnails
// are historically unreliable: largest at least 480px wide, then any
// dimensioned thumbnail, then any thumbnail, then the raw field.
func selectTwitter(meta types.Metadata) string {
	var best types.Thumbnail
	for _, t := range meta.Thumbnails {
		if t.URL == "" || t.Width < 480 {
			continue
		}
		if t.Width*t.Height > best.Width*best.Height {
			best = t
		}
	}
	if best.URL != "" {
		return best.URL
	}
	if url := largestByArea(meta.Thumbnails); url != "" {
		return url
	}
	for _, t := range meta.Thumbnails {
		if t.URL != "" {
			return t.URL
		}
	}
	return meta.Thumbnail
}

func selectByArea(meta types.Metadata) string {
	if url := largestByArea(meta.Thumbnails); url != "" {
		return url
	}
	for _, t := range meta.Thumbnails {
		if t.URL != "" {
			return t.URL
		}
	}
	return meta.Thumbnail
}

// largestByArea considers only candidates carrying both dimensions.
func largestByArea(cands []types.Thumbnail) string {
	var best types.Thumbnail
	for _, t := range cands {
		if t.URL == "" || t.Width <= 0 || t.Height <= 0 {
			continue
		}
		if t.Width*t.Height > best.Width*best.Height {
			best = t
		}
	}
	return best.URL
}
