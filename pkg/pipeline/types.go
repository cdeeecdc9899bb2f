package pipeline

import (
	"image"

	"github.com/user/trackviz/pkg/ports"
)

// FrameAnnotations is everything a renderer needs to annotate one frame:
// the predicted and ground-truth records of that frame plus the optional
// per-frame auxiliary scalars.
type FrameAnnotations struct {
	FrameIndex  int
	Predictions []ports.AnnotationRecord
	GroundTruth []ports.AnnotationRecord
	ImagePred   ports.FrameScalars
	ImageGT     ports.FrameScalars
}

// RenderTask is the complete, self-contained input a worker needs to render
// one frame. Created by the orchestrator, consumed exactly once by a worker,
// never mutated after creation.
type RenderTask struct {
	// Seq is the task's position in submission order. Results are released
	// to the consumer strictly in Seq order regardless of completion order.
	Seq int

	Video       ports.VideoHandle
	Frame       ports.FrameReference
	Annotations FrameAnnotations
}

// RenderedFrame is the output of one render task: the annotated pixel
// buffer plus the originating frame's display name.
type RenderedFrame struct {
	Seq   int
	Name  string
	Image image.Image
}

// GroupByFrame builds a mapping from frame index to the records of that
// frame in a single pass. The relative order of records within one frame
// is preserved.
func GroupByFrame(records []ports.AnnotationRecord) map[int][]ports.AnnotationRecord {
	grouped := make(map[int][]ports.AnnotationRecord)
	for _, rec := range records {
		grouped[rec.FrameIndex] = append(grouped[rec.FrameIndex], rec)
	}
	return grouped
}

// ScalarsAt returns the auxiliary scalars of a frame, or nil if none exist.
func ScalarsAt(scalars map[int]ports.FrameScalars, frameIndex int) ports.FrameScalars {
	if scalars == nil {
		return nil
	}
	return scalars[frameIndex]
}
