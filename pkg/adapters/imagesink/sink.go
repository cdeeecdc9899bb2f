// Package imagesink persists rendered frames as JPEG files laid out as
// images/<video>/<frame>.jpg under a base directory.
package imagesink

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/user/trackviz/pkg/ports"
)

const jpegQuality = 90

// Sink implements ports.FrameSink over a directory tree.
type Sink struct {
	baseDir  string
	fs       ports.FileSystem
	renderer ports.Renderer
}

// New creates a sink rooted at baseDir.
func New(baseDir string, fs ports.FileSystem, renderer ports.Renderer) *Sink {
	return &Sink{
		baseDir:  baseDir,
		fs:       fs,
		renderer: renderer,
	}
}

// WriteFrame encodes the frame as JPEG and writes it atomically to
// <base>/images/<video>/<name>.jpg, creating directories as needed.
func (s *Sink) WriteFrame(video ports.VideoHandle, name string, img image.Image) error {
	dir := filepath.Join(s.baseDir, "images", video.Name)
	if err := s.fs.MkdirAll(dir); err != nil {
		return fmt.Errorf("create image directory: %w", err)
	}

	data, err := s.renderer.EncodeImage(img, ports.FormatJPEG, jpegQuality)
	if err != nil {
		return fmt.Errorf("encode frame %s: %w", name, err)
	}

	path := filepath.Join(dir, name+".jpg")
	if err := s.fs.WriteFileAtomic(path, data); err != nil {
		return fmt.Errorf("write frame %s: %w", name, err)
	}
	return nil
}

// Ensure Sink implements ports.FrameSink
var _ ports.FrameSink = (*Sink)(nil)
