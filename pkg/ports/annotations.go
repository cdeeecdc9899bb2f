package ports

import (
	"context"
)

// AnnotationKind distinguishes predicted detections from ground truth.
type AnnotationKind int

const (
	KindPrediction AnnotationKind = iota
	KindGroundTruth
)

// String returns the string representation of the annotation kind.
func (k AnnotationKind) String() string {
	switch k {
	case KindPrediction:
		return "prediction"
	case KindGroundTruth:
		return "ground_truth"
	default:
		return "unknown"
	}
}

// Box is an axis-aligned bounding box in pixel coordinates (left-top origin).
type Box struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// CenterX returns the horizontal center of the box.
func (b Box) CenterX() float64 { return b.Left + b.Width/2 }

// CenterY returns the vertical center of the box.
func (b Box) CenterY() float64 { return b.Top + b.Height/2 }

// AnnotationRecord is one detection or ground-truth entry for one frame.
// Multiple records share a frame.
type AnnotationRecord struct {
	FrameIndex int     `json:"frame"`
	TrackID    int     `json:"track_id"`
	Box        Box     `json:"bbox"`
	Confidence float64 `json:"confidence"`
	Category   string  `json:"category,omitempty"`
}

// FrameScalars holds per-frame auxiliary values such as camera movement or
// visibility scores, keyed by metric name.
type FrameScalars map[string]float64

// VideoAnnotations bundles all annotation data of one video.
type VideoAnnotations struct {
	Predictions []AnnotationRecord
	GroundTruth []AnnotationRecord
	ImagePreds  map[int]FrameScalars // Per-frame auxiliary prediction scalars
	ImageGTs    map[int]FrameScalars // Per-frame auxiliary ground-truth scalars
}

// AnnotationProvider supplies annotation data per video.
type AnnotationProvider interface {
	// Load returns all annotation records for the video with the given ID.
	Load(ctx context.Context, videoID string) (VideoAnnotations, error)
}
