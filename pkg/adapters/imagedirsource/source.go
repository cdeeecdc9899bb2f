// Package imagedirsource ingests videos stored as directories of frame
// images: <root>/<video>/<frame>.jpg. Frames are decoded one at a time,
// on access.
package imagedirsource

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/user/trackviz/pkg/ports"
)

// Source implements ports.FrameSource over a directory tree.
type Source struct {
	root     string
	fs       ports.FileSystem
	renderer ports.Renderer
}

// New creates a source rooted at root.
func New(root string, fs ports.FileSystem, renderer ports.Renderer) *Source {
	return &Source{
		root:     root,
		fs:       fs,
		renderer: renderer,
	}
}

// Videos lists the sub-directories of the root, sorted by name. Each one
// is a video; its frame count is the number of image files it holds.
func (s *Source) Videos(ctx context.Context) ([]ports.VideoHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read source directory %s: %w", s.root, err)
	}

	var videos []ports.VideoHandle
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		frames, err := s.listFrameFiles(entry.Name())
		if err != nil {
			return nil, err
		}
		videos = append(videos, ports.VideoHandle{
			ID:         entry.Name(),
			Name:       entry.Name(),
			FrameCount: len(frames),
		})
	}

	sort.Slice(videos, func(i, j int) bool { return videos[i].Name < videos[j].Name })
	return videos, nil
}

// Frames returns references for the video's image files in name order.
func (s *Source) Frames(ctx context.Context, video ports.VideoHandle) ([]ports.FrameReference, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	files, err := s.listFrameFiles(video.ID)
	if err != nil {
		return nil, err
	}

	refs := make([]ports.FrameReference, len(files))
	for i, name := range files {
		refs[i] = ports.FrameReference{
			Index:   i,
			Name:    strings.TrimSuffix(name, filepath.Ext(name)),
			Locator: filepath.Join(s.root, video.ID, name),
		}
	}
	return refs, nil
}

// Resolve reads and decodes one frame image.
func (s *Source) Resolve(ctx context.Context, video ports.VideoHandle, ref ports.FrameReference) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := s.fs.ReadFile(ref.Locator)
	if err != nil {
		return nil, fmt.Errorf("read frame %s: %w", ref.Name, err)
	}

	img, err := s.renderer.DecodeImage(data, formatForExt(filepath.Ext(ref.Locator)))
	if err != nil {
		return nil, fmt.Errorf("decode frame %s: %w", ref.Name, err)
	}
	return img, nil
}

// listFrameFiles returns the image file names of one video, sorted.
func (s *Source) listFrameFiles(videoID string) ([]string, error) {
	dir := filepath.Join(s.root, videoID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read video directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png":
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func formatForExt(ext string) ports.ImageFormat {
	if strings.EqualFold(ext, ".png") {
		return ports.FormatPNG
	}
	return ports.FormatJPEG
}

// Ensure Source implements ports.FrameSource
var _ ports.FrameSource = (*Source)(nil)
