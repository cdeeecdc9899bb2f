package progress

import "github.com/user/trackviz/pkg/ports"

// NoopReporter discards all progress notifications.
type NoopReporter struct{}

// NewNoop creates a reporter that does nothing.
func NewNoop() *NoopReporter {
	return &NoopReporter{}
}

func (r *NoopReporter) Init(stage, title string, total int) {}

func (r *NoopReporter) Step() {}

func (r *NoopReporter) Finish() {}

// Ensure NoopReporter implements ports.ProgressReporter
var _ ports.ProgressReporter = (*NoopReporter)(nil)
