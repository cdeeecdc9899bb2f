// Package progress provides console and no-op progress reporters.
package progress

import (
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/user/trackviz/pkg/ports"
)

// ConsoleReporter draws a terminal progress bar. When stderr is not a
// terminal it falls back to logging stage boundaries only.
type ConsoleReporter struct {
	mu     sync.Mutex
	bar    *progressbar.ProgressBar
	logger ports.Logger
	tty    bool
}

// NewConsole creates a reporter writing to stderr.
func NewConsole(logger ports.Logger) *ConsoleReporter {
	return &ConsoleReporter{
		logger: logger.WithComponent("progress"),
		tty:    isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()),
	}
}

func (r *ConsoleReporter) Init(stage, title string, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bar != nil {
		r.bar.Finish()
	}
	if !r.tty {
		r.bar = nil
		r.logger.Info("%s: %d steps", title, total)
		return
	}

	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription(title),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func (r *ConsoleReporter) Step() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bar != nil {
		r.bar.Add(1)
	}
}

func (r *ConsoleReporter) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bar != nil {
		r.bar.Finish()
		r.bar = nil
	}
}

// Ensure ConsoleReporter implements ports.ProgressReporter
var _ ports.ProgressReporter = (*ConsoleReporter)(nil)
