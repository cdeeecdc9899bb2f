// Package sampler implements bounded, evenly spaced frame sampling.
package sampler

import (
	"context"
	"errors"
	"fmt"

	"github.com/user/trackviz/pkg/pipeline"
)

var (
	// ErrNoFrames is returned when the video has no frames to sample from.
	ErrNoFrames = errors.New("sampler: video has no frames")

	// ErrBadBudget is returned when the sample budget is negative.
	ErrBadBudget = errors.New("sampler: sample budget must not be negative")
)

// Sample returns the indices of budget frames picked from a video with n
// frames, strictly increasing, starting at index 0, with constant stride
// n/budget. A budget of 0 means "all frames". A budget larger than n is
// clamped to n, so the result never contains duplicate or out-of-range
// indices.
func Sample(n, budget int) ([]int, error) {
	if n < 1 {
		return nil, ErrNoFrames
	}
	if budget < 0 {
		return nil, fmt.Errorf("%w: %d", ErrBadBudget, budget)
	}
	if budget == 0 || budget > n {
		budget = n
	}

	stride := n / budget
	indices := make([]int, 0, budget)
	for idx := 0; idx < n && len(indices) < budget; idx += stride {
		indices = append(indices, idx)
	}
	return indices, nil
}

// Input contains the parameters for frame sampling.
type Input struct {
	FrameCount int // Total number of frames in the video
	Budget     int // Target number of samples, 0 for all frames
}

// Stage wraps Sample as a pipeline stage.
type Stage struct{}

// NewStage creates a new sampling stage.
func NewStage() *Stage {
	return &Stage{}
}

// Execute runs the sampler.
func (s *Stage) Execute(_ context.Context, input Input) ([]int, error) {
	return Sample(input.FrameCount, input.Budget)
}

// Ensure Stage implements pipeline.Stage
var _ pipeline.Stage[Input, []int] = (*Stage)(nil)
