// Package renderpool executes render tasks on a bounded set of parallel
// workers and releases the results to a single consumer strictly in task
// submission order, regardless of completion order.
package renderpool

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/user/trackviz/pkg/pipeline"
	"github.com/user/trackviz/pkg/ports"
)

// RenderFunc renders one task into a frame. It is invoked concurrently
// from multiple workers; a RenderTask carries everything the worker needs,
// so implementations must not rely on shared mutable state.
type RenderFunc func(ctx context.Context, task pipeline.RenderTask) (pipeline.RenderedFrame, error)

// ConsumeFunc receives rendered frames strictly in submission order.
// Returning an error aborts the run.
type ConsumeFunc func(frame pipeline.RenderedFrame) error

// Pool is a scoped worker pool. Workers are provisioned on entry to Run
// and joined on every exit path, including failure.
type Pool struct {
	workers int
	logger  ports.Logger
}

// New creates a pool with the given number of workers.
// A non-positive count defaults to the host's available parallelism.
func New(workers int, logger ports.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{
		workers: workers,
		logger:  logger.WithComponent("renderpool"),
	}
}

// Workers returns the configured worker count.
func (p *Pool) Workers() int {
	return p.workers
}

// result pairs a completed frame (or its error) with its sequence number
// for reassembly.
type result struct {
	seq   int
	frame pipeline.RenderedFrame
	err   error
}

// Run renders all tasks and hands each result to consume in submission
// order. Completed-but-not-yet-due results are buffered until their turn.
// If a render or the consumer fails, in-flight and queued tasks are
// abandoned and the error is returned once that task's result is due in
// sequence. Run does not return before all workers have terminated.
func (p *Pool) Run(ctx context.Context, tasks []pipeline.RenderTask, render RenderFunc, consume ConsumeFunc) error {
	if len(tasks) == 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Dispatch stops as soon as any worker reports an error. Work already
	// in flight keeps the run context, so results with earlier sequence
	// numbers still land and are consumed before the error surfaces.
	dispatchCtx, stopDispatch := context.WithCancel(ctx)
	defer stopDispatch()

	jobs := make(chan pipeline.RenderTask)
	results := make(chan result, p.workers)

	p.logger.Debug("Rendering %d tasks with %d workers", len(tasks), p.workers)

	// Dispatch tasks in sequence order.
	go func() {
		defer close(jobs)
		for _, task := range tasks {
			select {
			case jobs <- task:
			case <-dispatchCtx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.worker(ctx, jobs, results, render)
		}()
	}

	// Close results once all workers have terminated, so the reassembly
	// loop below can run it to completion.
	go func() {
		wg.Wait()
		close(results)
	}()

	err := p.reassemble(ctx, stopDispatch, len(tasks), results, consume)
	if err != nil {
		// Tear down: abandon queued work and wait for the workers to
		// drain out before surfacing the error.
		cancel()
		for range results {
		}
		return err
	}
	return nil
}

// worker renders tasks from jobs until the queue closes or the run is
// cancelled.
func (p *Pool) worker(ctx context.Context, jobs <-chan pipeline.RenderTask, results chan<- result, render RenderFunc) {
	for task := range jobs {
		frame, err := render(ctx, task)
		if err != nil {
			err = fmt.Errorf("render frame %q (seq %d): %w", task.Frame.Name, task.Seq, err)
		}
		select {
		case results <- result{seq: task.Seq, frame: frame, err: err}:
		case <-ctx.Done():
			return
		}
		if err != nil {
			return
		}
	}
}

// reassemble buffers out-of-order results and releases them to consume in
// strict sequence order. A failed task's error surfaces exactly when that
// task's result is due.
func (p *Pool) reassemble(ctx context.Context, stopDispatch context.CancelFunc, total int, results <-chan result, consume ConsumeFunc) error {
	pending := make(map[int]result)
	next := 0

	for res := range results {
		pending[res.seq] = res
		if res.err != nil {
			// No further tasks are handed out once a worker has failed,
			// even while the failing sequence number is not yet due.
			stopDispatch()
		}

		for next < total {
			due, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			if due.err != nil {
				return due.err
			}
			if err := consume(due.frame); err != nil {
				return fmt.Errorf("consume frame %q (seq %d): %w", due.frame.Name, due.seq, err)
			}
			next++
		}

		if next == total {
			return nil
		}
	}

	// The results channel closed before every sequence number was
	// delivered: the run was cancelled from outside.
	if err := ctx.Err(); err != nil {
		return err
	}
	return fmt.Errorf("renderpool: result stream ended after %d of %d frames", next, total)
}
