package h264encoder

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"runtime"
	"sync"

	"github.com/user/trackviz/pkg/ports"
)

// accessUnit is one encoded frame: the NAL units belonging to a single
// picture, in stream order.
type accessUnit struct {
	nalus    [][]byte
	keyframe bool
}

// ffmpegCodec compresses frames with an external ffmpeg/libx264 process:
// raw RGBA frames in over stdin, an Annex B H.264 elementary stream out
// over stdout.
type ffmpegCodec struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser

	// exec.Cmd copies the process's stderr from its own goroutine, so
	// every read of the buffer goes through errMu.
	errMu  sync.Mutex
	stderr bytes.Buffer

	outMu  sync.Mutex
	out    bytes.Buffer
	outErr error
	done   chan struct{}

	started  bool
	finished bool
}

// FindFFmpeg searches for ffmpeg via the FFMPEG_PATH environment
// variable, then PATH, then common install locations.
func FindFFmpeg() (string, error) {
	if envPath := os.Getenv("FFMPEG_PATH"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
		return "", fmt.Errorf("%w: FFMPEG_PATH %s not found", ErrFFmpegNotFound, envPath)
	}

	execName := "ffmpeg"
	if runtime.GOOS == "windows" {
		execName = "ffmpeg.exe"
	}
	if path, err := exec.LookPath(execName); err == nil {
		return path, nil
	}

	var commonPaths []string
	switch runtime.GOOS {
	case "windows":
		commonPaths = []string{
			`C:\ffmpeg\bin\ffmpeg.exe`,
			`C:\Program Files\ffmpeg\bin\ffmpeg.exe`,
		}
	case "darwin":
		commonPaths = []string{
			"/opt/homebrew/bin/ffmpeg",
			"/usr/local/bin/ffmpeg",
			"/usr/bin/ffmpeg",
		}
	default:
		commonPaths = []string{
			"/usr/bin/ffmpeg",
			"/usr/local/bin/ffmpeg",
			"/snap/bin/ffmpeg",
		}
	}
	for _, p := range commonPaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", ErrFFmpegNotFound
}

// IsFFmpegAvailable reports whether ffmpeg can be located on this host.
func IsFFmpegAvailable() bool {
	_, err := FindFFmpeg()
	return err == nil
}

func (c *ffmpegCodec) start(cfg ports.EncoderConfig) error {
	ffmpegPath, err := FindFFmpeg()
	if err != nil {
		return err
	}

	crf := cfg.Quality
	if crf > 51 {
		crf = 51
	}

	// -bf 0 keeps encode order equal to presentation order, so access
	// units come out of the stream in frame order.
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"-r", fmt.Sprintf("%d", cfg.FPS),
		"-i", "pipe:0",
		"-c:v", "libx264",
		"-preset", "fast",
		"-bf", "0",
		"-pix_fmt", "yuv420p",
		"-crf", fmt.Sprintf("%d", crf),
		"-b:v", fmt.Sprintf("%dk", cfg.BitrateKbps),
		"-profile:v", "baseline",
		"-level", "3.1",
		"-f", "h264",
		"pipe:1",
	}

	c.cmd = exec.Command(ffmpegPath, args...)
	c.cmd.Stderr = &lockedBuffer{mu: &c.errMu, buf: &c.stderr}

	stdin, err := c.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := c.cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return fmt.Errorf("stdout pipe: %w", err)
	}

	if err := c.cmd.Start(); err != nil {
		stdin.Close()
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	c.stdin = stdin
	c.done = make(chan struct{})
	c.started = true

	// Drain the elementary stream as it is produced so the encoder never
	// blocks on a full pipe.
	go func() {
		defer close(c.done)
		_, err := io.Copy(&lockedBuffer{mu: &c.outMu, buf: &c.out}, stdout)
		if err != nil {
			c.outMu.Lock()
			c.outErr = err
			c.outMu.Unlock()
		}
	}()

	return nil
}

func (c *ffmpegCodec) encodeFrame(img *image.RGBA) error {
	if !c.started || c.finished {
		return ErrNotOpen
	}
	if _, err := c.stdin.Write(img.Pix); err != nil {
		return fmt.Errorf("write frame: %w (ffmpeg: %s)", err, c.stderrTail())
	}
	return nil
}

func (c *ffmpegCodec) flush() ([]accessUnit, error) {
	if !c.started {
		return nil, ErrNotOpen
	}
	if c.finished {
		return nil, ErrSessionClosed
	}
	c.finished = true

	// Closing stdin signals end-of-stream; libx264 then emits its
	// buffered frames before exiting.
	c.stdin.Close()
	waitErr := c.cmd.Wait()
	<-c.done

	c.outMu.Lock()
	stream := c.out.Bytes()
	readErr := c.outErr
	c.outMu.Unlock()

	units := splitAccessUnits(stream)

	if waitErr != nil {
		return units, fmt.Errorf("ffmpeg: %w (%s)", waitErr, c.stderrTail())
	}
	if readErr != nil {
		return units, fmt.Errorf("read elementary stream: %w", readErr)
	}
	return units, nil
}

func (c *ffmpegCodec) close() {
	if c.started && !c.finished {
		c.stdin.Close()
		c.cmd.Process.Kill()
		c.cmd.Wait()
		<-c.done
		c.finished = true
	}
}

// lockedBuffer serializes writes against the flush-side read.
type lockedBuffer struct {
	mu  *sync.Mutex
	buf *bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// stderrTail returns the last line ffmpeg wrote to stderr so far. Safe to
// call while the process is still running.
func (c *ffmpegCodec) stderrTail() string {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return lastLine(c.stderr.Bytes())
}

// lastLine returns the final non-empty line of output, which is where
// ffmpeg puts its actual error message.
func lastLine(out []byte) string {
	lines := bytes.Split(bytes.TrimSpace(out), []byte("\n"))
	if len(lines) == 0 {
		return ""
	}
	return string(bytes.TrimSpace(lines[len(lines)-1]))
}
