// Package orchestrator ties the visualization pipeline together: it
// samples frames, groups annotations, fans rendering out to the worker
// pool and streams the ordered results into the configured sinks.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/user/trackviz/pkg/pipeline"
	"github.com/user/trackviz/pkg/ports"
	"github.com/user/trackviz/pkg/renderpool"
	"github.com/user/trackviz/pkg/sampler"
	"github.com/user/trackviz/pkg/visualize"
)

// Config contains all configuration for a visualization run.
type Config struct {
	// Output
	OutputDir  string
	SaveImages bool
	SaveVideos bool

	// Limits. Zero means no limit: all videos, all frames.
	ProcessNVideos        int
	ProcessNFramesByVideo int

	// Rendering
	Workers     int // Worker count, 0 for host parallelism
	Visualizers []string

	// Encoding
	VideoFPS int
	Encoder  ports.EncoderConfig
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		OutputDir:   "visualization",
		SaveImages:  true,
		SaveVideos:  true,
		VideoFPS:    25,
		Visualizers: []string{"bbox", "ground_truth", "trajectories"},
		Encoder:     ports.DefaultEncoderConfig(),
	}
}

// Orchestrator coordinates the per-video pipeline and the batch run.
type Orchestrator struct {
	source      ports.FrameSource
	annotations ports.AnnotationProvider
	renderer    ports.Renderer
	sink        ports.FrameSink
	newEncoder  func() ports.VideoEncoder
	progress    ports.ProgressReporter
	logger      ports.Logger
}

// New creates a new Orchestrator. newEncoder builds one fresh encoder
// session per video; sessions are never reused across videos.
func New(
	source ports.FrameSource,
	annotations ports.AnnotationProvider,
	renderer ports.Renderer,
	sink ports.FrameSink,
	newEncoder func() ports.VideoEncoder,
	progress ports.ProgressReporter,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		source:      source,
		annotations: annotations,
		renderer:    renderer,
		sink:        sink,
		newEncoder:  newEncoder,
		progress:    progress,
		logger:      logger,
	}
}

// BatchResult summarizes a batch run.
type BatchResult struct {
	Processed int
	Failed    int
}

// RunAll visualizes every available video, bounded by ProcessNVideos.
// A failing video does not stop the batch; its error is collected and
// the joined failures are returned at the end.
func (o *Orchestrator) RunAll(ctx context.Context, cfg Config) (BatchResult, error) {
	videos, err := o.source.Videos(ctx)
	if err != nil {
		return BatchResult{}, fmt.Errorf("%w: list videos: %w", ErrSourceUnavailable, err)
	}
	if cfg.ProcessNVideos > 0 && len(videos) > cfg.ProcessNVideos {
		videos = videos[:cfg.ProcessNVideos]
	}

	o.logger.Info("Starting visualization of %d videos", len(videos))

	var result BatchResult
	var failures []error
	for _, video := range videos {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := o.RunVideo(ctx, video, cfg); err != nil {
			o.logger.Error("Visualization failed for %s: %s", video.Name, err)
			result.Failed++
			failures = append(failures, fmt.Errorf("%s: %w", video.Name, err))
			continue
		}
		result.Processed++
	}
	return result, errors.Join(failures...)
}

// RunVideo visualizes one video: sample frames, group annotations once,
// render in parallel and consume the results in submission order.
func (o *Orchestrator) RunVideo(ctx context.Context, video ports.VideoHandle, cfg Config) error {
	if !cfg.SaveImages && !cfg.SaveVideos {
		return ErrNoOutput
	}

	frames, err := o.source.Frames(ctx, video)
	if err != nil {
		return fmt.Errorf("%w: list frames of %s: %w", ErrSourceUnavailable, video.Name, err)
	}

	indices, err := sampler.Sample(len(frames), cfg.ProcessNFramesByVideo)
	if err != nil {
		return fmt.Errorf("sample frames of %s: %w", video.Name, err)
	}

	ann, err := o.annotations.Load(ctx, video.ID)
	if err != nil {
		return fmt.Errorf("%w: annotations of %s: %w", ErrSourceUnavailable, video.Name, err)
	}

	set, err := visualize.FromNames(cfg.Visualizers, ann)
	if err != nil {
		return err
	}

	// Group once per video, not per task.
	preds := pipeline.GroupByFrame(ann.Predictions)
	gts := pipeline.GroupByFrame(ann.GroundTruth)

	tasks := make([]pipeline.RenderTask, len(indices))
	for seq, idx := range indices {
		tasks[seq] = pipeline.RenderTask{
			Seq:   seq,
			Video: video,
			Frame: frames[idx],
			Annotations: pipeline.FrameAnnotations{
				FrameIndex:  idx,
				Predictions: preds[idx],
				GroundTruth: gts[idx],
				ImagePred:   pipeline.ScalarsAt(ann.ImagePreds, idx),
				ImageGT:     pipeline.ScalarsAt(ann.ImageGTs, idx),
			},
		}
	}

	o.logger.Info("Visualizing %s (%d frames, %d sampled)", video.Name, len(frames), len(tasks))

	var enc ports.VideoEncoder
	encoderDone := false
	if cfg.SaveVideos {
		enc = o.newEncoder()
		encCfg := cfg.Encoder
		if cfg.VideoFPS > 0 {
			encCfg.FPS = cfg.VideoFPS
		}
		path := filepath.Join(cfg.OutputDir, "videos", video.Name+".mp4")
		if err := enc.Open(path, encCfg); err != nil {
			return fmt.Errorf("%w: open video output: %w", ErrSinkWrite, err)
		}
		// A failed run still finalizes the container, so the file on disk
		// is playable up to the last successfully encoded frame.
		defer func() {
			if !encoderDone {
				if ferr := enc.Finish(); ferr != nil {
					o.logger.Warn("Finalizing video output for %s failed: %s", video.Name, ferr)
				}
			}
		}()
	}

	o.progress.Init("vis", "Visualization", len(tasks))
	defer o.progress.Finish()

	pool := renderpool.New(cfg.Workers, o.logger)

	render := func(ctx context.Context, task pipeline.RenderTask) (pipeline.RenderedFrame, error) {
		img, err := o.source.Resolve(ctx, task.Video, task.Frame)
		if err != nil {
			return pipeline.RenderedFrame{}, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
		}
		canvas := o.renderer.CanvasFor(img)
		if err := set.Apply(canvas, task.Annotations); err != nil {
			return pipeline.RenderedFrame{}, fmt.Errorf("%w: %w", ErrRenderFailure, err)
		}
		return pipeline.RenderedFrame{Seq: task.Seq, Name: task.Frame.Name, Image: canvas.ToImage()}, nil
	}

	consume := func(frame pipeline.RenderedFrame) error {
		if cfg.SaveImages {
			if err := o.sink.WriteFrame(video, frame.Name, frame.Image); err != nil {
				return fmt.Errorf("%w: %w", ErrSinkWrite, err)
			}
		}
		if enc != nil {
			if err := enc.Encode(frame.Image); err != nil {
				return fmt.Errorf("%w: %w", ErrSinkWrite, err)
			}
		}
		o.progress.Step()
		return nil
	}

	if err := pool.Run(ctx, tasks, render, consume); err != nil {
		return err
	}

	if enc != nil {
		encoderDone = true
		if err := enc.Finish(); err != nil {
			return fmt.Errorf("%w: finalize video output: %w", ErrSinkWrite, err)
		}
	}

	o.logger.Info("Visualization completed for %s", video.Name)
	return nil
}
