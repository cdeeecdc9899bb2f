// Package visualize implements the annotation drawing capability surface:
// pluggable visualizers that draw detection, ground-truth and trajectory
// overlays onto decoded video frames.
package visualize

import (
	"errors"
	"fmt"

	"github.com/user/trackviz/pkg/pipeline"
	"github.com/user/trackviz/pkg/ports"
)

var (
	// ErrUnknownVariant is returned when a visualizer implements neither
	// drawing capability.
	ErrUnknownVariant = errors.New("visualize: visualizer implements neither FrameDrawer nor DetectionDrawer")

	// ErrUnknownVisualizer is returned when a configured visualizer name
	// is not registered.
	ErrUnknownVisualizer = errors.New("visualize: unknown visualizer name")
)

// Visualizer is the common surface of all annotation renderers. A concrete
// visualizer must additionally implement exactly one of the two capability
// variants, FrameDrawer or DetectionDrawer.
type Visualizer interface {
	// Name identifies the visualizer in configuration and logs.
	Name() string
}

// FrameDrawer is the whole-frame capability variant: one call per frame,
// given every annotation of that frame at once.
type FrameDrawer interface {
	Visualizer
	DrawFrame(canvas ports.Canvas, ann pipeline.FrameAnnotations) error
}

// DetectionDrawer is the per-detection capability variant: one call per
// annotation record.
type DetectionDrawer interface {
	Visualizer
	DrawDetection(canvas ports.Canvas, rec ports.AnnotationRecord, kind ports.AnnotationKind) error
}

// Set is the composition point: an ordered collection of visualizers
// applied in turn to the same frame, each mutating the running canvas in
// place before the next is invoked.
type Set struct {
	visualizers []Visualizer
}

// NewSet builds a composition from visualizers. The capability variant of
// each is checked up front so that an unusable plugin is rejected before
// any frame is rendered.
func NewSet(visualizers ...Visualizer) (*Set, error) {
	for _, v := range visualizers {
		switch v.(type) {
		case FrameDrawer, DetectionDrawer:
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownVariant, v.Name())
		}
	}
	return &Set{visualizers: visualizers}, nil
}

// Len returns the number of composed visualizers.
func (s *Set) Len() int {
	return len(s.visualizers)
}

// Apply invokes every visualizer on the canvas in configured order. A
// DetectionDrawer is invoked once per prediction record and once per
// ground-truth record; a FrameDrawer once per frame.
func (s *Set) Apply(canvas ports.Canvas, ann pipeline.FrameAnnotations) error {
	for _, v := range s.visualizers {
		switch d := v.(type) {
		case FrameDrawer:
			if err := d.DrawFrame(canvas, ann); err != nil {
				return fmt.Errorf("visualizer %s: %w", v.Name(), err)
			}
		case DetectionDrawer:
			for _, rec := range ann.Predictions {
				if err := d.DrawDetection(canvas, rec, ports.KindPrediction); err != nil {
					return fmt.Errorf("visualizer %s: %w", v.Name(), err)
				}
			}
			for _, rec := range ann.GroundTruth {
				if err := d.DrawDetection(canvas, rec, ports.KindGroundTruth); err != nil {
					return fmt.Errorf("visualizer %s: %w", v.Name(), err)
				}
			}
		}
	}
	return nil
}
