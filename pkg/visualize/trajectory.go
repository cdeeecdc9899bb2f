package visualize

import (
	"sort"

	"github.com/user/trackviz/pkg/pipeline"
	"github.com/user/trackviz/pkg/ports"
)

// Trajectories draws the trail of each track's box centers up to the
// current frame. Whole-frame variant.
//
// The visualizer is built per video from that video's full prediction set;
// the history is read-only after construction, so the same value can be
// shared by all render workers.
type Trajectories struct {
	// MaxTrail bounds how many past positions are drawn per track.
	// 0 means unbounded.
	MaxTrail int

	history map[int][]ports.AnnotationRecord
}

// NewTrajectories builds the trajectory visualizer from all prediction
// records of one video.
func NewTrajectories(predictions []ports.AnnotationRecord, maxTrail int) *Trajectories {
	history := make(map[int][]ports.AnnotationRecord)
	for _, rec := range predictions {
		history[rec.TrackID] = append(history[rec.TrackID], rec)
	}
	for id := range history {
		track := history[id]
		sort.Slice(track, func(i, j int) bool {
			return track[i].FrameIndex < track[j].FrameIndex
		})
	}
	return &Trajectories{MaxTrail: maxTrail, history: history}
}

// Name implements Visualizer.
func (v *Trajectories) Name() string { return "trajectories" }

// DrawFrame implements FrameDrawer.
func (v *Trajectories) DrawFrame(canvas ports.Canvas, ann pipeline.FrameAnnotations) error {
	for trackID, track := range v.history {
		trail := trailUpTo(track, ann.FrameIndex, v.MaxTrail)
		if len(trail) < 2 {
			continue
		}

		col := TrackColor(trackID)
		for i := 1; i < len(trail); i++ {
			prev, cur := trail[i-1], trail[i]
			canvas.DrawLine(
				int(prev.Box.CenterX()), int(prev.Box.CenterY()),
				int(cur.Box.CenterX()), int(cur.Box.CenterY()),
				col, 2,
			)
		}
		head := trail[len(trail)-1]
		canvas.DrawCircle(int(head.Box.CenterX()), int(head.Box.CenterY()), 3, col)
	}
	return nil
}

// trailUpTo returns the track positions at or before frameIndex, bounded
// to the most recent maxTrail entries.
func trailUpTo(track []ports.AnnotationRecord, frameIndex, maxTrail int) []ports.AnnotationRecord {
	end := sort.Search(len(track), func(i int) bool {
		return track[i].FrameIndex > frameIndex
	})
	trail := track[:end]
	if maxTrail > 0 && len(trail) > maxTrail {
		trail = trail[len(trail)-maxTrail:]
	}
	return trail
}
