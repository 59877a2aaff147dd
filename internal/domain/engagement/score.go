package engagement

import (
	"fmt"
	"sort"
	"strings"

	"github.com/clipforge/clipforge/internal/types"
)

// Scoring is pure and offline: no network, no ML inference. The constants
// below are empirically tuned product values; scoring behavior is a tested
// contract, so they must not be adjusted without updated product numbers.
const (
	baseScore = 30

	// Proximity influence radius as a fraction of total duration.
	momentRadiusFrac = 0.10

	titleHighBonus   = 15
	titleActionBonus = 8

	earlyShortFormBonus = 20
	midPositionBonus    = 10

	climaxMinDuration = 60 // seconds
)

// optimalMoment is a high-retention point expressed as a fraction of total
// duration with a base weight.
type optimalMoment struct {
	frac   float64
	weight float64
	label  string
}

var highEngagementWords = []string{
	"amazing", "incredible", "shocking", "unbelievable", "insane",
	"secret", "viral", "epic", "crazy", "mindblowing",
}

var actionWords = []string{
	"watch", "how", "why", "what", "make", "best", "top", "try",
}

// Input carries the per-video context the scorer needs.
type Input struct {
	Title    string
	Duration float64
	Platform string
}

// IsShortForm reports whether the platform's primary format is short
// vertical video.
func IsShortForm(platform string) bool {
	switch strings.ToLower(platform) {
	case "tiktok", "instagram", "shorts":
		return true
	}
	return false
}

// optimalMoments returns the retention anchors for this video: the hook end
// (~15%), the golden-ratio point and its complement, an early hook for
// short-form platforms, and a late climax for longer videos.
func optimalMoments(in Input) []optimalMoment {
	moments := []optimalMoment{
		{frac: 0.15, weight: 90, label: "hook end"},
		{frac: 0.618, weight: 95, label: "golden ratio"},
		{frac: 0.382, weight: 85, label: "golden complement"},
	}
	if IsShortForm(in.Platform) {
		moments = append(moments, optimalMoment{frac: 0.05, weight: 88, label: "early hook"})
	}
	if in.Duration > climaxMinDuration {
		moments = append(moments, optimalMoment{frac: 0.85, weight: 82, label: "climax"})
	}
	return moments
}

// Score ranks the sampled frames by estimated viewer appeal, descending.
// All scores are clamped to [0,100]. The sort is stable, so tied frames keep
// their sampling order.
func Score(frames []types.FrameSample, in Input) []types.ScoredFrame {
	if len(frames) == 0 || in.Duration <= 0 {
		return nil
	}

	moments := optimalMoments(in)
	titleBonus := titleScore(in.Title)
	shortForm := IsShortForm(in.Platform)
	radius := in.Duration * momentRadiusFrac

	out := make([]types.ScoredFrame, 0, len(frames))
	for _, f := range frames {
		score := float64(baseScore)
		reason := "baseline"

		for _, m := range moments {
			target := m.frac * in.Duration
			dist := abs(f.Timestamp - target)
			proximity := 1 - dist/radius
			if proximity <= 0 {
				continue
			}
			score += m.weight * proximity
			reason = m.label
		}

		score += titleBonus

		if shortForm && f.Timestamp <= 0.30*in.Duration {
			score += earlyShortFormBonus
		}
		rel := f.Timestamp / in.Duration
		if rel > 0.20 && rel < 0.80 {
			score += midPositionBonus
		}

		out = append(out, types.ScoredFrame{
			FrameSample: f,
			Score:       clamp(score, 0, 100),
			Reason:      reason,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func titleScore(title string) float64 {
	lower := strings.ToLower(title)
	var bonus float64
	for _, w := range highEngagementWords {
		if strings.Contains(lower, w) {
			bonus += titleHighBonus
		}
	}
	for _, w := range actionWords {
		if strings.Contains(lower, w) {
			bonus += titleActionBonus
		}
	}
	return bonus
}

// BuildWindows turns the top scored frames into clip windows of the requested
// duration, each centered on its frame's timestamp. Windows clamped at zero
// keep their duration by shifting the end forward. Returns an empty slice
// when nothing clears minScore; reacting to zero candidates is the caller's
// call.
func BuildWindows(scored []types.ScoredFrame, minScore, clipDurationSec float64, maxCount int) []types.ClipWindow {
	if maxCount <= 0 || clipDurationSec <= 0 {
		return []types.ClipWindow{}
	}

	out := make([]types.ClipWindow, 0, maxCount)
	for _, f := range scored {
		if f.Score < minScore {
			continue
		}
		start := f.Timestamp - clipDurationSec/2
		if start < 0 {
			start = 0
		}
		out = append(out, types.ClipWindow{
			ID:       fmt.Sprintf("w%03d", len(out)+1),
			StartSec: start,
			EndSec:   start + clipDurationSec,
			Score:    f.Score,
			Reason:   fmt.Sprintf("%s (score %.0f at %.1fs)", f.Reason, f.Score, f.Timestamp),
		})
		if len(out) >= maxCount {
			break
		}
	}
	return out
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func clamp(x, a, b float64) float64 {
	if x < a {
		return a
	}
	if x > b {
		return b
	}
	return x
}
