package h264encoder

import "errors"

var (
	// ErrNotOpen is returned when Encode or Finish is called before Open.
	ErrNotOpen = errors.New("h264encoder: session not open")

	// ErrAlreadyOpen is returned when Open is called twice on one session.
	ErrAlreadyOpen = errors.New("h264encoder: session already open")

	// ErrSessionClosed is returned when Encode or Finish is called after
	// the session has been finished.
	ErrSessionClosed = errors.New("h264encoder: session closed")

	// ErrNoFrames is returned by Finish when no frame was ever encoded.
	ErrNoFrames = errors.New("h264encoder: no frames to encode")

	// ErrFFmpegNotFound is returned when ffmpeg is not found in PATH.
	ErrFFmpegNotFound = errors.New("h264encoder: ffmpeg not found in PATH")
)
