package ports

import (
	"image"
)

// VideoEncoder abstracts a streaming video encoding session.
//
// A session moves through open -> encode... -> finish. Frames must be
// submitted one at a time and in presentation order; the implementation
// resamples each frame to the configured output resolution and pixel
// format before handing it to the codec. Finish flushes the codec,
// finalizes the container and closes the session. Finish must be safe to
// call after a failed Encode so that a partially written file is still a
// valid, playable container up to the last successfully encoded frame.
type VideoEncoder interface {
	// Open creates the output container at path and configures one video
	// stream. Missing parent directories are created.
	Open(path string, cfg EncoderConfig) error

	// Encode resamples and submits a single frame. Packets emitted by the
	// codec are written to the container in emission order.
	Encode(img image.Image) error

	// Finish signals end-of-stream, writes any buffered packets and
	// finalizes the container. The session cannot be reused afterwards.
	Finish() error
}

// EncoderConfig configures the output video stream.
type EncoderConfig struct {
	Width       int // Output width in pixels (default 1280)
	Height      int // Output height in pixels (default 720)
	FPS         int // Output frame rate (default 25)
	BitrateKbps int // Target bitrate in kbps
	Quality     int // CRF value: 0-51 (lower is higher quality)
}

// DefaultEncoderConfig returns the standard 720p output configuration.
func DefaultEncoderConfig() EncoderConfig {
	return EncoderConfig{
		Width:       1280,
		Height:      720,
		FPS:         25,
		BitrateKbps: 10000,
		Quality:     23,
	}
}
