// Package videofilesource ingests videos stored as .mp4 files. Container
// metadata (frame count, frame rate) is read in-process with mp4ff;
// individual frames are decoded on demand by an external ffmpeg process.
package videofilesource

import (
	"context"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/trackviz/pkg/adapters/h264encoder"
	"github.com/user/trackviz/pkg/ports"
)

// Source implements ports.FrameSource over a directory of .mp4 files.
type Source struct {
	root     string
	renderer ports.Renderer
	logger   ports.Logger
}

// New creates a source rooted at root.
func New(root string, renderer ports.Renderer, logger ports.Logger) *Source {
	return &Source{
		root:     root,
		renderer: renderer,
		logger:   logger.WithComponent("videofilesource"),
	}
}

// Videos lists the .mp4 files of the root directory, sorted by name, and
// probes each container for its frame count and frame rate.
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
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".mp4") {
			continue
		}
		path := filepath.Join(s.root, entry.Name())
		count, fps, err := probe(path)
		if err != nil {
			// A corrupt container voids only itself, not the listing.
			s.logger.Warn("Skipping unreadable video %s: %s", entry.Name(), err)
			continue
		}
		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		videos = append(videos, ports.VideoHandle{
			ID:         path,
			Name:       name,
			FrameCount: count,
			FPS:        fps,
		})
	}

	sort.Slice(videos, func(i, j int) bool { return videos[i].Name < videos[j].Name })
	return videos, nil
}

// Frames returns one reference per container frame. The locator is the
// container path; the index selects the frame at decode time.
func (s *Source) Frames(ctx context.Context, video ports.VideoHandle) ([]ports.FrameReference, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	refs := make([]ports.FrameReference, video.FrameCount)
	for i := range refs {
		refs[i] = ports.FrameReference{
			Index:   i,
			Name:    fmt.Sprintf("%s_%06d", video.Name, i),
			Locator: video.ID,
		}
	}
	return refs, nil
}

// Resolve decodes a single frame by index with ffmpeg, received as PNG
// over stdout.
func (s *Source) Resolve(ctx context.Context, video ports.VideoHandle, ref ports.FrameReference) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ffmpegPath, err := h264encoder.FindFFmpeg()
	if err != nil {
		return nil, err
	}

	args := []string{
		"-i", ref.Locator,
		"-vf", fmt.Sprintf("select=eq(n\\,%d)", ref.Index),
		"-vsync", "vfr",
		"-frames:v", "1",
		"-f", "image2pipe",
		"-c:v", "png",
		"pipe:1",
	}

	cmd := exec.CommandContext(ctx, ffmpegPath, args...)
	data, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("decode frame %d of %s: %w", ref.Index, video.Name, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("decode frame %d of %s: no output", ref.Index, video.Name)
	}

	img, err := s.renderer.DecodeImage(data, ports.FormatPNG)
	if err != nil {
		return nil, fmt.Errorf("decode frame %d of %s: %w", ref.Index, video.Name, err)
	}
	return img, nil
}

// probe reads frame count and frame rate from the container headers.
func probe(path string) (int, float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	mp4File, err := mp4.DecodeFile(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decode mp4: %w", err)
	}

	if mp4File.IsFragmented() {
		return probeFragmented(mp4File)
	}
	return probeProgressive(mp4File)
}

func probeProgressive(mp4File *mp4.File) (int, float64, error) {
	trak := findVideoTrak(mp4File.Moov)
	if trak == nil {
		return 0, 0, fmt.Errorf("no video track found")
	}

	stbl := trak.Mdia.Minf.Stbl
	if stbl.Stsz == nil {
		return 0, 0, fmt.Errorf("no sample size box")
	}
	count := int(stbl.Stsz.SampleNumber)

	var fps float64
	if mdhd := trak.Mdia.Mdhd; mdhd != nil && mdhd.Duration > 0 {
		fps = float64(count) * float64(mdhd.Timescale) / float64(mdhd.Duration)
	}
	return count, fps, nil
}

func probeFragmented(mp4File *mp4.File) (int, float64, error) {
	if mp4File.Init == nil || mp4File.Init.Moov == nil {
		return 0, 0, fmt.Errorf("no init segment")
	}
	trak := findVideoTrak(mp4File.Init.Moov)
	if trak == nil {
		return 0, 0, fmt.Errorf("no video track found")
	}

	var trex *mp4.TrexBox
	if mp4File.Init.Moov.Mvex != nil {
		for _, t := range mp4File.Init.Moov.Mvex.Trexs {
			if t.TrackID == trak.Tkhd.TrackID {
				trex = t
				break
			}
		}
	}

	count := 0
	var totalDur uint64
	for _, seg := range mp4File.Segments {
		for _, frag := range seg.Fragments {
			samples, err := frag.GetFullSamples(trex)
			if err != nil {
				return 0, 0, fmt.Errorf("get samples: %w", err)
			}
			count += len(samples)
			for _, sample := range samples {
				totalDur += uint64(sample.Dur)
			}
		}
	}

	var fps float64
	if mdhd := trak.Mdia.Mdhd; mdhd != nil && totalDur > 0 {
		fps = float64(count) * float64(mdhd.Timescale) / float64(totalDur)
	}
	return count, fps, nil
}

func findVideoTrak(moov *mp4.MoovBox) *mp4.TrakBox {
	if moov == nil {
		return nil
	}
	for _, trak := range moov.Traks {
		if trak.Mdia != nil && trak.Mdia.Hdlr != nil && trak.Mdia.Hdlr.HandlerType == "vide" {
			return trak
		}
	}
	return nil
}

// Ensure Source implements ports.FrameSource
var _ ports.FrameSource = (*Source)(nil)
