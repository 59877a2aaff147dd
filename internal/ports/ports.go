package ports

import (
	"context"

	"github.com/clipforge/clipforge/internal/types"
)

// MetadataProvider retrieves source-video metadata with a usable thumbnail.
// Implemented locally by the yt-dlp adapter and remotely by the processing
// backend proxy; callers are agnostic to which served the request.
type MetadataProvider interface {
	Extract(ctx context.Context, sourceURL string) (types.Metadata, error)
}

// VideoTool wraps the local media executable for all cut/encode operations.
type VideoTool interface {
	// CutClip renders [startSec, endSec) of in into out. Vertical cuts are
	// re-encoded to 1080x1920; otherwise streams are copied for speed.
	CutClip(ctx context.Context, in, out string, startSec, endSec float64, vertical bool) (types.RenderedClip, error)

	// ExtractAudioMono16k writes the same time range as 16 kHz mono PCM,
	// the shape transcription services require.
	ExtractAudioMono16k(ctx context.Context, in, out string, startSec, endSec float64) error

	// BurnSubtitles re-encodes in with the given ASS subtitle file baked in.
	BurnSubtitles(ctx context.Context, in, assPath, out string) error

	ProbeDuration(ctx context.Context, in string) (float64, error)
}

// FrameGrabber pulls a single displayable frame from a playable media URL.
type FrameGrabber interface {
	ExtractFrame(ctx context.Context, mediaURL, out string) error
}

// CaptionApplier renders burned-in captions onto a clip.
type CaptionApplier interface {
	Apply(ctx context.Context, videoSource string, payload types.CaptionPayload, clipID string) (types.RenderedClip, error)
}

// ArtifactStore is the durable home of finished clips. Treated as a black
// box with upload/delete only.
type ArtifactStore interface {
	Upload(ctx context.Context, localPath, key, mimeType string) (types.UploadResult, error)
	Delete(ctx context.Context, path string) error
}

// Fetcher streams a remote video URL to a local file.
type Fetcher interface {
	FetchToFile(ctx context.Context, url, dst string) error
}
