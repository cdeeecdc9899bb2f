// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/user/trackviz/pkg/orchestrator"
	"github.com/user/trackviz/pkg/ports"
)

// Config represents the full configuration for trackviz.
type Config struct {
	// Input
	FramesDir     string `yaml:"frames_dir"`     // per-video frame image directories
	VideosDir     string `yaml:"videos_dir"`     // .mp4 files, alternative ingestion
	AnnotationDir string `yaml:"annotation_dir"` // per-video annotation JSON files

	// Output
	OutputDir  string `yaml:"output_dir"`
	SaveImages bool   `yaml:"save_images"`
	SaveVideos bool   `yaml:"save_videos"`

	// Limits, zero means unlimited
	ProcessNVideos        int `yaml:"process_n_videos"`
	ProcessNFramesByVideo int `yaml:"process_n_frames_by_video"`

	// Rendering
	Workers     int      `yaml:"workers"` // 0 uses the host's parallelism
	Visualizers []string `yaml:"visualizers"`

	// Encoding
	VideoFPS         int `yaml:"video_fps"`
	VideoWidth       int `yaml:"video_width"`
	VideoHeight      int `yaml:"video_height"`
	VideoBitrateKbps int `yaml:"video_bitrate_kbps"`
	VideoCRF         int `yaml:"video_crf"`

	// Logging
	LogLevel string `yaml:"log_level"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	enc := ports.DefaultEncoderConfig()
	return Config{
		AnnotationDir: "annotations",
		OutputDir:     "visualization",

		SaveImages: true,
		SaveVideos: true,

		Visualizers: []string{"bbox", "ground_truth", "trajectories"},

		VideoFPS:         enc.FPS,
		VideoWidth:       enc.Width,
		VideoHeight:      enc.Height,
		VideoBitrateKbps: enc.BitrateKbps,
		VideoCRF:         enc.Quality,

		LogLevel: "info",
	}
}

// LoadFromFile loads configuration from a YAML file on top of the defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// ToOrchestratorConfig maps the file configuration onto the orchestrator's
// run configuration.
func (c Config) ToOrchestratorConfig() orchestrator.Config {
	return orchestrator.Config{
		OutputDir:  c.OutputDir,
		SaveImages: c.SaveImages,
		SaveVideos: c.SaveVideos,

		ProcessNVideos:        c.ProcessNVideos,
		ProcessNFramesByVideo: c.ProcessNFramesByVideo,

		Workers:     c.Workers,
		Visualizers: c.Visualizers,

		VideoFPS: c.VideoFPS,
		Encoder: ports.EncoderConfig{
			Width:       c.VideoWidth,
			Height:      c.VideoHeight,
			FPS:         c.VideoFPS,
			BitrateKbps: c.VideoBitrateKbps,
			Quality:     c.VideoCRF,
		},
	}
}
