package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if !cfg.SaveImages || !cfg.SaveVideos {
		t.Error("both outputs should be enabled by default")
	}
	if cfg.VideoFPS != 25 {
		t.Errorf("expected default fps 25, got %d", cfg.VideoFPS)
	}
	if cfg.VideoWidth != 1280 || cfg.VideoHeight != 720 {
		t.Errorf("expected 1280x720, got %dx%d", cfg.VideoWidth, cfg.VideoHeight)
	}
	if cfg.ProcessNVideos != 0 || cfg.ProcessNFramesByVideo != 0 {
		t.Error("limits should default to unlimited")
	}
	if cfg.OutputDir != "visualization" {
		t.Errorf("unexpected default output dir %s", cfg.OutputDir)
	}
}

func TestLoadFromFile_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trackviz.yaml")
	doc := `
frames_dir: /data/frames
save_videos: false
video_fps: 30
process_n_frames_by_video: 50
visualizers: [bbox]
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if cfg.FramesDir != "/data/frames" {
		t.Errorf("unexpected frames dir %s", cfg.FramesDir)
	}
	if cfg.SaveVideos {
		t.Error("save_videos: false should override the default")
	}
	if !cfg.SaveImages {
		t.Error("save_images should keep its default")
	}
	if cfg.VideoFPS != 30 {
		t.Errorf("expected fps 30, got %d", cfg.VideoFPS)
	}
	if cfg.ProcessNFramesByVideo != 50 {
		t.Errorf("expected frame budget 50, got %d", cfg.ProcessNFramesByVideo)
	}
	if len(cfg.Visualizers) != 1 || cfg.Visualizers[0] != "bbox" {
		t.Errorf("unexpected visualizers %v", cfg.Visualizers)
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestToOrchestratorConfig(t *testing.T) {
	cfg := Defaults()
	cfg.OutputDir = "out"
	cfg.VideoFPS = 30
	cfg.VideoCRF = 18
	cfg.Workers = 8

	oc := cfg.ToOrchestratorConfig()
	if oc.OutputDir != "out" || oc.Workers != 8 {
		t.Errorf("unexpected mapping: %+v", oc)
	}
	if oc.VideoFPS != 30 || oc.Encoder.FPS != 30 {
		t.Errorf("fps should map to both fields: %d / %d", oc.VideoFPS, oc.Encoder.FPS)
	}
	if oc.Encoder.Quality != 18 {
		t.Errorf("expected CRF 18, got %d", oc.Encoder.Quality)
	}
}
