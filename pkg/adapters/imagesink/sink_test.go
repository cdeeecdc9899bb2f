package imagesink

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/user/trackviz/pkg/adapters/ggrenderer"
	"github.com/user/trackviz/pkg/adapters/osfilesystem"
	"github.com/user/trackviz/pkg/ports"
)

func TestWriteFrame_LayoutAndContent(t *testing.T) {
	base := t.TempDir()
	renderer := ggrenderer.New()
	sink := New(base, osfilesystem.New(), renderer)

	video := ports.VideoHandle{ID: "v001", Name: "MOT17-02"}
	img := image.NewRGBA(image.Rect(0, 0, 32, 24))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}

	if err := sink.WriteFrame(video, "000010", img); err != nil {
		t.Fatalf("WriteFrame failed: %v", err)
	}

	path := filepath.Join(base, "images", "MOT17-02", "000010.jpg")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected frame file at %s: %v", path, err)
	}

	decoded, err := renderer.DecodeImage(data, ports.FormatJPEG)
	if err != nil {
		t.Fatalf("decode written frame: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 32 || b.Dy() != 24 {
		t.Errorf("expected 32x24, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestWriteFrame_MultipleVideosDoNotCollide(t *testing.T) {
	base := t.TempDir()
	sink := New(base, osfilesystem.New(), ggrenderer.New())

	frame := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			frame.Set(x, y, color.RGBA{R: 0x80, A: 0xFF})
		}
	}

	for _, name := range []string{"clip-a", "clip-b"} {
		v := ports.VideoHandle{ID: name, Name: name}
		if err := sink.WriteFrame(v, "000001", frame); err != nil {
			t.Fatalf("WriteFrame(%s) failed: %v", name, err)
		}
	}

	for _, name := range []string{"clip-a", "clip-b"} {
		path := filepath.Join(base, "images", name, "000001.jpg")
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing frame for %s: %v", name, err)
		}
	}
}
