package visualize

import (
	"fmt"

	"github.com/user/trackviz/pkg/ports"
)

// DefaultMaxTrail bounds trajectory trails to the last 50 positions.
const DefaultMaxTrail = 50

// FromNames builds the visualizer set of one video from configured names.
// Trajectory visualizers need the video's full prediction set, so the set
// is constructed per video, not once per run.
func FromNames(names []string, ann ports.VideoAnnotations) (*Set, error) {
	visualizers := make([]Visualizer, 0, len(names))
	for _, name := range names {
		switch name {
		case "bbox":
			visualizers = append(visualizers, NewBoundingBoxes())
		case "ground_truth":
			visualizers = append(visualizers, NewGroundTruth())
		case "trajectories":
			visualizers = append(visualizers, NewTrajectories(ann.Predictions, DefaultMaxTrail))
		case "scalars":
			visualizers = append(visualizers, NewScalarOverlay())
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownVisualizer, name)
		}
	}
	return NewSet(visualizers...)
}
