package ports

import "image"

// FrameSink receives rendered frames for persistence.
type FrameSink interface {
	// WriteFrame persists one rendered frame under the given video, using
	// the frame's display name as the file stem.
	WriteFrame(video VideoHandle, name string, img image.Image) error
}
