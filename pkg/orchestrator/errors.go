package orchestrator

import "errors"

var (
	// ErrSourceUnavailable marks a video or frame that cannot be resolved
	// or decoded. Fatal for that video; other videos are unaffected.
	ErrSourceUnavailable = errors.New("orchestrator: video source unavailable")

	// ErrRenderFailure marks a failed annotation draw operation.
	ErrRenderFailure = errors.New("orchestrator: annotation rendering failed")

	// ErrSinkWrite marks a failed image or video write.
	ErrSinkWrite = errors.New("orchestrator: output write failed")

	// ErrNoOutput is returned when both image and video output are disabled.
	ErrNoOutput = errors.New("orchestrator: neither image nor video output is enabled")
)
