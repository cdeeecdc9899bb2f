// Package main provides the CLI entry point for trackviz.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/trackviz/pkg/adapters/annotstore"
	"github.com/user/trackviz/pkg/adapters/ggrenderer"
	"github.com/user/trackviz/pkg/adapters/h264encoder"
	"github.com/user/trackviz/pkg/adapters/imagedirsource"
	"github.com/user/trackviz/pkg/adapters/imagesink"
	"github.com/user/trackviz/pkg/adapters/logger"
	"github.com/user/trackviz/pkg/adapters/osfilesystem"
	"github.com/user/trackviz/pkg/adapters/progress"
	"github.com/user/trackviz/pkg/adapters/videofilesource"
	"github.com/user/trackviz/pkg/config"
	"github.com/user/trackviz/pkg/orchestrator"
	"github.com/user/trackviz/pkg/ports"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "trackviz",
		Usage:   l10n.T("Render tracking annotation overlays as images and videos"),
		Version: version,
		Commands: []*cli.Command{
			runCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: l10n.T("Visualize tracking results over the source videos"),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: l10n.T("YAML configuration file")},
			&cli.StringFlag{Name: "frames-dir", Usage: l10n.T("Directory of per-video frame image folders")},
			&cli.StringFlag{Name: "videos-dir", Usage: l10n.T("Directory of source .mp4 files")},
			&cli.StringFlag{Name: "annotation-dir", Usage: l10n.T("Directory of per-video annotation JSON files")},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: l10n.T("Output directory")},
			&cli.BoolFlag{Name: "images", Value: true, Usage: l10n.T("Write rendered frames as image files")},
			&cli.BoolFlag{Name: "videos", Value: true, Usage: l10n.T("Encode rendered frames into one MP4 per video")},
			&cli.IntFlag{Name: "fps", Usage: l10n.T("Output video frame rate")},
			&cli.IntFlag{Name: "n-videos", Usage: l10n.T("Only visualize the first N videos")},
			&cli.IntFlag{Name: "n-frames", Usage: l10n.T("Sample at most N evenly spaced frames per video")},
			&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: l10n.T("Render worker count (0 uses all CPUs)")},
			&cli.StringSliceFlag{Name: "visualizer", Usage: l10n.T("Visualizer to apply, in order (bbox, ground_truth, trajectories, scalars)")},
			&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Value: "info", Usage: l10n.T("Log level (debug, info, warn, error)")},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"Q"}, Usage: l10n.T("Suppress all output except errors")},
		},
		Action: runAction,
	}
}

func runAction(c *cli.Context) error {
	cfg, err := buildConfig(c)
	if err != nil {
		return err
	}

	var log ports.Logger
	if c.Bool("quiet") {
		log = logger.NewNoop()
	} else {
		log = logger.NewConsole(ports.ParseLogLevel(cfg.LogLevel))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn("Interrupted, shutting down...")
		cancel()
	}()

	fs := osfilesystem.New()
	renderer := ggrenderer.New()

	var source ports.FrameSource
	switch {
	case cfg.VideosDir != "":
		source = videofilesource.New(cfg.VideosDir, renderer, log)
	case cfg.FramesDir != "":
		source = imagedirsource.New(cfg.FramesDir, fs, renderer)
	default:
		return errors.New(l10n.T("either frames-dir or videos-dir must be configured"))
	}

	if cfg.SaveVideos && !h264encoder.IsFFmpegAvailable() {
		return errors.New(l10n.T("ffmpeg not found; install it or disable video output"))
	}

	annotations := annotstore.New(cfg.AnnotationDir, fs)
	sink := imagesink.New(cfg.OutputDir, fs, renderer)
	newEncoder := func() ports.VideoEncoder { return h264encoder.New(fs, log) }

	var reporter ports.ProgressReporter
	if c.Bool("quiet") {
		reporter = progress.NewNoop()
	} else {
		reporter = progress.NewConsole(log)
	}

	orch := orchestrator.New(source, annotations, renderer, sink, newEncoder, reporter, log)

	result, err := orch.RunAll(ctx, cfg.ToOrchestratorConfig())
	if err != nil {
		return err
	}

	log.Info("Visualized %d videos into %s", result.Processed, cfg.OutputDir)
	return nil
}

// buildConfig layers defaults, the optional YAML file and explicit CLI
// flags, in that order.
func buildConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if c.IsSet("frames-dir") {
		cfg.FramesDir = c.String("frames-dir")
	}
	if c.IsSet("videos-dir") {
		cfg.VideosDir = c.String("videos-dir")
	}
	if c.IsSet("annotation-dir") {
		cfg.AnnotationDir = c.String("annotation-dir")
	}
	if c.IsSet("output") {
		cfg.OutputDir = c.String("output")
	}
	if c.IsSet("images") {
		cfg.SaveImages = c.Bool("images")
	}
	if c.IsSet("videos") {
		cfg.SaveVideos = c.Bool("videos")
	}
	if c.IsSet("fps") {
		cfg.VideoFPS = c.Int("fps")
	}
	if c.IsSet("n-videos") {
		cfg.ProcessNVideos = c.Int("n-videos")
	}
	if c.IsSet("n-frames") {
		cfg.ProcessNFramesByVideo = c.Int("n-frames")
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("visualizer") {
		cfg.Visualizers = c.StringSlice("visualizer")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	return cfg, nil
}
