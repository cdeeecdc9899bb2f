// Package h264encoder provides a streaming H.264 encoding session: frames
// go in one at a time, an MP4 container comes out. Encoding is done by an
// external ffmpeg/libx264 process producing an Annex B elementary stream;
// the container is muxed in-process with mp4ff.
package h264encoder

import (
	"fmt"
	"image"
	"image/draw"
	"path/filepath"
	"sync"

	xdraw "golang.org/x/image/draw"

	"github.com/user/trackviz/pkg/ports"
)

// sessionState tracks the encoder lifecycle.
// Transitions: unopened -> open -> flushing -> closed.
type sessionState int

const (
	stateUnopened sessionState = iota
	stateOpen
	stateFlushing
	stateClosed
)

// codec is the stateful frame compressor behind a session. Implemented by
// ffmpegCodec; replaced by a fake in tests.
type codec interface {
	start(cfg ports.EncoderConfig) error

	// encodeFrame submits one RGBA frame already at the output resolution.
	encodeFrame(img *image.RGBA) error

	// flush signals end-of-stream and returns every access unit produced
	// over the whole session, including any the codec had buffered. It
	// must return what it has even if an earlier encodeFrame failed.
	flush() ([]accessUnit, error)

	close()
}

// Session implements ports.VideoEncoder. Exactly one Session exists per
// output video; it is owned by the orchestrator for the duration of one
// visualization run and is not safe for concurrent use beyond the mutex
// guarding its state machine.
type Session struct {
	mu sync.Mutex

	state      sessionState
	path       string
	cfg        ports.EncoderConfig
	frameCount int

	fs     ports.FileSystem
	logger ports.Logger

	codec    codec
	newCodec func() codec

	// scratch is the reused resample target; one frame is in flight at a
	// time, so a single buffer suffices.
	scratch *image.RGBA
}

// New creates an unopened session.
func New(fs ports.FileSystem, logger ports.Logger) *Session {
	return &Session{
		fs:       fs,
		logger:   logger.WithComponent("h264encoder"),
		newCodec: func() codec { return &ffmpegCodec{} },
	}
}

// Open transitions Unopened -> Open: starts the codec and prepares the
// output location. Missing parent directories are created here so a later
// Finish cannot fail on them.
func (s *Session) Open(path string, cfg ports.EncoderConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case stateOpen, stateFlushing:
		return ErrAlreadyOpen
	case stateClosed:
		return ErrSessionClosed
	}

	def := ports.DefaultEncoderConfig()
	if cfg.Width <= 0 {
		cfg.Width = def.Width
	}
	if cfg.Height <= 0 {
		cfg.Height = def.Height
	}
	if cfg.FPS <= 0 {
		cfg.FPS = def.FPS
	}
	if cfg.BitrateKbps <= 0 {
		cfg.BitrateKbps = def.BitrateKbps
	}
	if cfg.Quality <= 0 {
		cfg.Quality = def.Quality
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := s.fs.MkdirAll(dir); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	c := s.newCodec()
	if err := c.start(cfg); err != nil {
		return fmt.Errorf("start codec: %w", err)
	}

	s.logger.Debug("Opening video output %s", path)

	s.codec = c
	s.path = path
	s.cfg = cfg
	s.frameCount = 0
	s.scratch = image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height))
	s.state = stateOpen
	return nil
}

// Encode resamples one frame to the configured output resolution and
// submits it to the codec (Open -> Open steady state).
func (s *Session) Encode(img image.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case stateUnopened:
		return ErrNotOpen
	case stateFlushing, stateClosed:
		return ErrSessionClosed
	}

	s.resample(img)
	if err := s.codec.encodeFrame(s.scratch); err != nil {
		return fmt.Errorf("encode frame %d: %w", s.frameCount, err)
	}
	s.frameCount++
	return nil
}

// Finish transitions Open -> Flushing -> Closed: drains the codec, muxes
// the MP4 container and writes it to the output path. It runs even after
// a failed Encode so the file is valid up to the last encoded frame.
func (s *Session) Finish() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case stateUnopened:
		return ErrNotOpen
	case stateFlushing, stateClosed:
		return ErrSessionClosed
	}

	s.state = stateFlushing
	s.logger.Debug("Flushing encoder for %s", s.path)

	units, flushErr := s.codec.flush()
	s.codec.close()
	s.codec = nil
	s.state = stateClosed

	if len(units) == 0 {
		if flushErr != nil {
			return fmt.Errorf("flush codec: %w", flushErr)
		}
		return ErrNoFrames
	}

	data, err := muxMP4(units, s.cfg)
	if err != nil {
		return fmt.Errorf("mux container: %w", err)
	}
	if err := s.fs.WriteFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("write container: %w", err)
	}

	s.logger.Debug("Encoded %d frames to %s", s.frameCount, s.path)

	// The container on disk is complete; a late codec error only means
	// the stream ended early.
	if flushErr != nil {
		return fmt.Errorf("flush codec: %w", flushErr)
	}
	return nil
}

// FrameCount returns the number of frames accepted so far.
func (s *Session) FrameCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frameCount
}

// resample scales img into the session's scratch buffer at the output
// resolution, converting to RGBA along the way.
func (s *Session) resample(img image.Image) {
	bounds := img.Bounds()
	if bounds.Dx() == s.cfg.Width && bounds.Dy() == s.cfg.Height {
		draw.Draw(s.scratch, s.scratch.Bounds(), img, bounds.Min, draw.Src)
		return
	}
	xdraw.ApproxBiLinear.Scale(s.scratch, s.scratch.Bounds(), img, bounds, xdraw.Src, nil)
}

// Ensure Session implements ports.VideoEncoder
var _ ports.VideoEncoder = (*Session)(nil)
