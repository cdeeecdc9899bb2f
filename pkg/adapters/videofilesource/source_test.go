package videofilesource

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/trackviz/pkg/adapters/ggrenderer"
	"github.com/user/trackviz/pkg/adapters/logger"
	"github.com/user/trackviz/pkg/ports"
)

// Minimal baseline parameter sets for a 1280x720 track.
var (
	fixtureSPS = []byte{0x67, 0x42, 0x00, 0x1F, 0xDA, 0x01, 0x40, 0x16, 0xE4}
	fixturePPS = []byte{0x68, 0xCE, 0x38, 0x80}
)

// writeFixtureMP4 writes a fragmented MP4 with the given number of video
// samples at a constant frame rate. Sample payloads are not decodable;
// probing only reads container metadata.
func writeFixtureMP4(t *testing.T, path string, frames, fps int) {
	t.Helper()

	timescale := uint32(fps * 1000)
	frameDur := timescale / uint32(fps)

	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(timescale, "video", "en")

	avcC, err := mp4.CreateAvcC([][]byte{fixtureSPS}, [][]byte{fixturePPS}, true)
	if err != nil {
		t.Fatalf("create avcC: %v", err)
	}
	avc1 := mp4.CreateVisualSampleEntryBox("avc1", 1280, 720, avcC)
	init.Moov.Trak.Mdia.Minf.Stbl.Stsd.AddChild(avc1)

	frag, err := mp4.CreateFragment(1, 1)
	if err != nil {
		t.Fatalf("create fragment: %v", err)
	}
	for i := 0; i < frames; i++ {
		flags := mp4.NonSyncSampleFlags
		if i == 0 {
			flags = mp4.SyncSampleFlags
		}
		data := []byte{0, 0, 0, 2, 0x65, 0x88}
		frag.AddFullSample(mp4.FullSample{
			Sample: mp4.Sample{
				Flags: flags,
				Size:  uint32(len(data)),
				Dur:   frameDur,
			},
			DecodeTime: uint64(i) * uint64(frameDur),
			Data:       data,
		})
	}

	var buf bytes.Buffer
	ftyp := mp4.NewFtyp("isom", 0x200, []string{"isom", "iso2", "avc1", "mp41"})
	if err := ftyp.Encode(&buf); err != nil {
		t.Fatalf("encode ftyp: %v", err)
	}
	if err := init.Moov.Encode(&buf); err != nil {
		t.Fatalf("encode moov: %v", err)
	}
	if err := frag.Encode(&buf); err != nil {
		t.Fatalf("encode fragment: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
}

func TestVideos_ProbesContainers(t *testing.T) {
	root := t.TempDir()
	writeFixtureMP4(t, filepath.Join(root, "clip-b.mp4"), 30, 25)
	writeFixtureMP4(t, filepath.Join(root, "clip-a.mp4"), 12, 30)
	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	src := New(root, ggrenderer.New(), logger.NewNoop())
	videos, err := src.Videos(context.Background())
	if err != nil {
		t.Fatalf("Videos failed: %v", err)
	}

	if len(videos) != 2 {
		t.Fatalf("expected 2 videos, got %d", len(videos))
	}
	if videos[0].Name != "clip-a" || videos[1].Name != "clip-b" {
		t.Errorf("unexpected order: %s, %s", videos[0].Name, videos[1].Name)
	}
	if videos[0].FrameCount != 12 || videos[1].FrameCount != 30 {
		t.Errorf("unexpected frame counts: %d, %d", videos[0].FrameCount, videos[1].FrameCount)
	}
	if math.Abs(videos[0].FPS-30) > 0.01 || math.Abs(videos[1].FPS-25) > 0.01 {
		t.Errorf("unexpected frame rates: %f, %f", videos[0].FPS, videos[1].FPS)
	}
}

func TestVideos_SkipsUnreadableContainers(t *testing.T) {
	root := t.TempDir()
	writeFixtureMP4(t, filepath.Join(root, "clip-a.mp4"), 12, 30)
	if err := os.WriteFile(filepath.Join(root, "broken.mp4"), []byte("not an mp4"), 0o644); err != nil {
		t.Fatal(err)
	}

	src := New(root, ggrenderer.New(), logger.NewNoop())
	videos, err := src.Videos(context.Background())
	if err != nil {
		t.Fatalf("Videos failed: %v", err)
	}

	if len(videos) != 1 {
		t.Fatalf("expected 1 video, got %d", len(videos))
	}
	if videos[0].Name != "clip-a" {
		t.Errorf("unexpected video %s", videos[0].Name)
	}
}

func TestFrames_ReferencesCoverEveryIndex(t *testing.T) {
	src := New(t.TempDir(), ggrenderer.New(), logger.NewNoop())

	video := ports.VideoHandle{ID: "/data/clip.mp4", Name: "clip", FrameCount: 4, FPS: 25}
	frames, err := src.Frames(context.Background(), video)
	if err != nil {
		t.Fatalf("Frames failed: %v", err)
	}

	if len(frames) != 4 {
		t.Fatalf("expected 4 references, got %d", len(frames))
	}
	for i, ref := range frames {
		if ref.Index != i {
			t.Errorf("reference %d has index %d", i, ref.Index)
		}
		if ref.Locator != video.ID {
			t.Errorf("reference %d locator %s", i, ref.Locator)
		}
	}
	if frames[2].Name != "clip_000002" {
		t.Errorf("unexpected frame name %s", frames[2].Name)
	}
}
