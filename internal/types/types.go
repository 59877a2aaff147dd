package types

import "time"

// Metadata describes a source video as reported by the metadata tool or the
// remote processing backend.
type Metadata struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Duration    float64     `json:"duration"`
	Thumbnail   string      `json:"thumbnail"`
	Thumbnails  []Thumbnail `json:"thumbnails,omitempty"`
	Uploader    string      `json:"uploader"`
	Width       int         `json:"width"`
	Height      int         `json:"height"`
	FPS         float64     `json:"fps"`
	IsLive      bool        `json:"is_live"`
}

// Thumbnail is one candidate preview image for a source video.
type Thumbnail struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// FrameSample is one sampled frame offset awaiting scoring. Samples are
// consumed by the scorer and discarded, never persisted.
type FrameSample struct {
	Index     int
	Timestamp float64
	Path      string
}

// ScoredFrame is a FrameSample with its engagement score attached.
type ScoredFrame struct {
	FrameSample
	Score  float64
	Reason string
}

// ClipWindow is a scored, time-bounded candidate segment of a source video.
type ClipWindow struct {
	ID       string
	StartSec float64
	EndSec   float64
	Score    float64
	Reason   string
}

// Duration is derived from the bounds, never supplied independently.
func (w ClipWindow) Duration() float64 { return w.EndSec - w.StartSec }

// RenderedClip is a cut (and possibly re-encoded) clip on local disk,
// transient until uploaded.
type RenderedClip struct {
	Path        string
	FileName    string
	SizeBytes   int64
	Duration    float64
	AspectRatio string
}

// Caption is one word or phrase with absolute source-video timestamps in
// seconds. Burned and overlay rendering both consume this shape.
type Caption struct {
	Text     string  `json:"text"`
	StartSec float64 `json:"start"`
	EndSec   float64 `json:"end"`
}

// CaptionPayload carries caller-supplied caption data plus styling choices.
type CaptionPayload struct {
	Captions []Caption `json:"captions"`
	FontKey  string    `json:"fontKey"`
	Position string    `json:"position"`
}

// UploadResult is the durable trace of a clip after the artifact store
// accepted it.
type UploadResult struct {
	URL      string `json:"url"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
}

// ProcessedClip ties a window to its uploaded artifact.
type ProcessedClip struct {
	WindowID string       `json:"window_id"`
	Title    string       `json:"title"`
	StartSec float64      `json:"start_sec"`
	EndSec   float64      `json:"end_sec"`
	Score    float64      `json:"score"`
	Upload   UploadResult `json:"upload"`
}

// WindowError records a single failed window inside a batch.
type WindowError struct {
	WindowID string `json:"window_id"`
	Message  string `json:"message"`
}

// BatchResult reports per-window outcomes of a clip batch. Batches never fail
// as a whole on individual window errors.
type BatchResult struct {
	Processed int             `json:"processed"`
	Failed    int             `json:"failed"`
	Clips     []ProcessedClip `json:"clips"`
	Errors    []WindowError   `json:"errors,omitempty"`
}

// SourceDescriptor identifies one ingestion source. Exactly one of URL or
// LocalPath is set. Immutable once created.
type SourceDescriptor struct {
	URL              string
	LocalPath        string
	Platform         string
	DeclaredDuration time.Duration
	Title            string
	Uploader         string
}
