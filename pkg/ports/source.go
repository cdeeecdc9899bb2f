package ports

import (
	"context"
	"image"
)

// VideoHandle identifies one source video. Immutable once created; owned
// by the ingestion layer and referenced by the rendering pipeline.
type VideoHandle struct {
	ID         string  // Stable identifier used to look up annotations
	Name       string  // Display name, used for output file naming
	FrameCount int     // Total number of decodable frames
	FPS        float64 // Native frame rate, 0 if unknown
}

// FrameReference is a lazy handle to one decodable frame of a video.
// It is resolved to a pixel buffer only inside a worker, on demand.
type FrameReference struct {
	Index   int    // Frame index within the video, starting at 0
	Name    string // Display name of the frame (e.g. "video_000042")
	Locator string // Source-specific decode key (file path, container offset...)
}

// FrameSource abstracts video ingestion: it enumerates videos, lists their
// frame references and decodes individual frames on access. Implementations
// must never materialize a whole video's pixel data at once.
type FrameSource interface {
	// Videos returns the handles of all available videos, in a stable order.
	Videos(ctx context.Context) ([]VideoHandle, error)

	// Frames returns the ordered frame references of a video.
	Frames(ctx context.Context, video VideoHandle) ([]FrameReference, error)

	// Resolve decodes a single frame into a pixel buffer.
	Resolve(ctx context.Context, video VideoHandle, ref FrameReference) (image.Image, error)
}
