package visualize

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/user/trackviz/pkg/pipeline"
	"github.com/user/trackviz/pkg/ports"
)

// opCanvas records drawing operations for assertions.
type opCanvas struct {
	ops []string
}

func (c *opCanvas) DrawImage(img image.Image, x, y int) {
	c.ops = append(c.ops, "image")
}

func (c *opCanvas) DrawRect(x, y, w, h int, col color.Color) {
	c.ops = append(c.ops, "rect")
}

func (c *opCanvas) DrawRectStroke(x, y, w, h int, col color.Color, strokeWidth float64) {
	c.ops = append(c.ops, fmt.Sprintf("stroke(%d,%d,%d,%d)", x, y, w, h))
}

func (c *opCanvas) DrawCircle(x, y int, radius float64, col color.Color) {
	c.ops = append(c.ops, "circle")
}

func (c *opCanvas) DrawLine(x1, y1, x2, y2 int, col color.Color, width float64) {
	c.ops = append(c.ops, "line")
}

func (c *opCanvas) DrawText(text string, x, y int, style ports.TextStyle) {
	c.ops = append(c.ops, "text:"+text)
}

func (c *opCanvas) MeasureText(text string, style ports.TextStyle) (float64, float64) {
	return float64(len(text)) * style.FontSize / 2, style.FontSize
}

func (c *opCanvas) Size() (int, int) { return 640, 480 }

func (c *opCanvas) ToImage() image.Image { return image.NewRGBA(image.Rect(0, 0, 640, 480)) }

func (c *opCanvas) count(prefix string) int {
	n := 0
	for _, op := range c.ops {
		if strings.HasPrefix(op, prefix) {
			n++
		}
	}
	return n
}

// markerDrawer is a whole-frame visualizer that leaves an identifiable mark.
type markerDrawer struct {
	name string
}

func (d *markerDrawer) Name() string { return d.name }

func (d *markerDrawer) DrawFrame(canvas ports.Canvas, ann pipeline.FrameAnnotations) error {
	canvas.DrawText("mark:"+d.name, 0, 0, ports.TextStyle{})
	return nil
}

// bareVisualizer implements neither capability variant.
type bareVisualizer struct{}

func (bareVisualizer) Name() string { return "bare" }

func record(frame, track int, l, t, w, h float64) ports.AnnotationRecord {
	return ports.AnnotationRecord{
		FrameIndex: frame,
		TrackID:    track,
		Box:        ports.Box{Left: l, Top: t, Width: w, Height: h},
		Confidence: 0.9,
	}
}

func TestSet_AppliesVisualizersInConfiguredOrder(t *testing.T) {
	set, err := NewSet(&markerDrawer{name: "first"}, &markerDrawer{name: "second"})
	if err != nil {
		t.Fatalf("NewSet failed: %v", err)
	}

	canvas := &opCanvas{}
	if err := set.Apply(canvas, pipeline.FrameAnnotations{}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	want := []string{"text:mark:first", "text:mark:second"}
	if len(canvas.ops) != len(want) {
		t.Fatalf("expected %d ops, got %d (%v)", len(want), len(canvas.ops), canvas.ops)
	}
	for i, op := range want {
		if canvas.ops[i] != op {
			t.Errorf("ops[%d]: expected %q, got %q", i, op, canvas.ops[i])
		}
	}
}

func TestSet_DetectionDrawerInvokedOncePerRecord(t *testing.T) {
	set, err := NewSet(NewBoundingBoxes(), NewGroundTruth())
	if err != nil {
		t.Fatalf("NewSet failed: %v", err)
	}

	ann := pipeline.FrameAnnotations{
		Predictions: []ports.AnnotationRecord{
			record(0, 1, 10, 10, 40, 80),
			record(0, 2, 60, 10, 40, 80),
			record(0, 3, 110, 10, 40, 80),
		},
		GroundTruth: []ports.AnnotationRecord{
			record(0, 1, 12, 12, 40, 80),
			record(0, 2, 62, 12, 40, 80),
		},
	}

	canvas := &opCanvas{}
	if err := set.Apply(canvas, ann); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	// Three prediction boxes plus two ground-truth boxes.
	if got := canvas.count("stroke"); got != 5 {
		t.Errorf("expected 5 stroked boxes, got %d (%v)", got, canvas.ops)
	}
	// Labels only on predictions.
	if got := canvas.count("text"); got != 3 {
		t.Errorf("expected 3 labels, got %d", got)
	}
}

func TestNewSet_RejectsUnknownVariant(t *testing.T) {
	_, err := NewSet(bareVisualizer{})
	if !errors.Is(err, ErrUnknownVariant) {
		t.Fatalf("expected ErrUnknownVariant, got %v", err)
	}
}

func TestTrajectories_DrawsTrailUpToCurrentFrame(t *testing.T) {
	predictions := []ports.AnnotationRecord{
		record(0, 7, 0, 0, 10, 10),
		record(1, 7, 10, 0, 10, 10),
		record(2, 7, 20, 0, 10, 10),
		record(3, 7, 30, 0, 10, 10),
		// A second track with a single position: no trail to draw.
		record(0, 8, 100, 100, 10, 10),
	}
	v := NewTrajectories(predictions, 0)

	canvas := &opCanvas{}
	err := v.DrawFrame(canvas, pipeline.FrameAnnotations{FrameIndex: 2})
	if err != nil {
		t.Fatalf("DrawFrame failed: %v", err)
	}

	// Positions at frames 0..2 give two segments; frame 3 is the future.
	if got := canvas.count("line"); got != 2 {
		t.Errorf("expected 2 trail segments, got %d", got)
	}
	if got := canvas.count("circle"); got != 1 {
		t.Errorf("expected 1 trail head, got %d", got)
	}
}

func TestTrajectories_MaxTrailBoundsHistory(t *testing.T) {
	var predictions []ports.AnnotationRecord
	for i := 0; i < 100; i++ {
		predictions = append(predictions, record(i, 1, float64(i), 0, 10, 10))
	}
	v := NewTrajectories(predictions, 10)

	canvas := &opCanvas{}
	if err := v.DrawFrame(canvas, pipeline.FrameAnnotations{FrameIndex: 99}); err != nil {
		t.Fatalf("DrawFrame failed: %v", err)
	}
	if got := canvas.count("line"); got != 9 {
		t.Errorf("expected 9 trail segments with MaxTrail 10, got %d", got)
	}
}

func TestFromNames(t *testing.T) {
	set, err := FromNames([]string{"bbox", "ground_truth", "trajectories", "scalars"}, ports.VideoAnnotations{})
	if err != nil {
		t.Fatalf("FromNames failed: %v", err)
	}
	if set.Len() != 4 {
		t.Errorf("expected 4 visualizers, got %d", set.Len())
	}

	_, err = FromNames([]string{"nope"}, ports.VideoAnnotations{})
	if !errors.Is(err, ErrUnknownVisualizer) {
		t.Errorf("expected ErrUnknownVisualizer, got %v", err)
	}
}
