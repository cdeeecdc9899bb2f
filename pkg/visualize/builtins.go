package visualize

import (
	"fmt"
	"image/color"
	"sort"

	"github.com/user/trackviz/pkg/pipeline"
	"github.com/user/trackviz/pkg/ports"
)

// trackPalette is a fixed set of visually distinct colors; a track keeps
// its color across frames because selection is by track id.
var trackPalette = []color.RGBA{
	{R: 230, G: 57, B: 70, A: 255},
	{R: 46, G: 196, B: 182, A: 255},
	{R: 255, G: 183, B: 3, A: 255},
	{R: 58, G: 134, B: 255, A: 255},
	{R: 131, G: 56, B: 236, A: 255},
	{R: 251, G: 86, B: 7, A: 255},
	{R: 6, G: 214, B: 160, A: 255},
	{R: 239, G: 71, B: 111, A: 255},
	{R: 17, G: 138, B: 178, A: 255},
	{R: 255, G: 209, B: 102, A: 255},
}

// TrackColor returns the palette color of a track id.
func TrackColor(trackID int) color.Color {
	if trackID < 0 {
		trackID = -trackID
	}
	return trackPalette[trackID%len(trackPalette)]
}

var groundTruthColor = color.RGBA{R: 60, G: 220, B: 60, A: 255}

// BoundingBoxes draws predicted detections: one colored box per record
// with the track id and confidence as a label. Per-detection variant.
type BoundingBoxes struct {
	StrokeWidth float64
	FontSize    float64
}

// NewBoundingBoxes creates the predicted-box visualizer.
func NewBoundingBoxes() *BoundingBoxes {
	return &BoundingBoxes{StrokeWidth: 2, FontSize: 13}
}

// Name implements Visualizer.
func (v *BoundingBoxes) Name() string { return "bbox" }

// DrawDetection implements DetectionDrawer.
func (v *BoundingBoxes) DrawDetection(canvas ports.Canvas, rec ports.AnnotationRecord, kind ports.AnnotationKind) error {
	if kind != ports.KindPrediction {
		return nil
	}
	col := TrackColor(rec.TrackID)
	x, y := int(rec.Box.Left), int(rec.Box.Top)
	w, h := int(rec.Box.Width), int(rec.Box.Height)

	canvas.DrawRectStroke(x, y, w, h, col, v.StrokeWidth)

	label := fmt.Sprintf("%d %.0f%%", rec.TrackID, rec.Confidence*100)
	style := ports.TextStyle{FontSize: v.FontSize, Color: color.White, Align: ports.AlignLeft}
	tw, th := canvas.MeasureText(label, style)
	canvas.DrawRect(x, y-int(th)-4, int(tw)+8, int(th)+4, col)
	canvas.DrawText(label, x+4, y-int(th)/2-2, style)
	return nil
}

// GroundTruth draws ground-truth boxes in a single distinct color, thinner
// than predictions so both stay readable when they overlap. Per-detection
// variant.
type GroundTruth struct {
	StrokeWidth float64
}

// NewGroundTruth creates the ground-truth box visualizer.
func NewGroundTruth() *GroundTruth {
	return &GroundTruth{StrokeWidth: 1}
}

// Name implements Visualizer.
func (v *GroundTruth) Name() string { return "ground_truth" }

// DrawDetection implements DetectionDrawer.
func (v *GroundTruth) DrawDetection(canvas ports.Canvas, rec ports.AnnotationRecord, kind ports.AnnotationKind) error {
	if kind != ports.KindGroundTruth {
		return nil
	}
	x, y := int(rec.Box.Left), int(rec.Box.Top)
	w, h := int(rec.Box.Width), int(rec.Box.Height)
	canvas.DrawRectStroke(x, y, w, h, groundTruthColor, v.StrokeWidth)
	return nil
}

// ScalarOverlay prints the per-frame auxiliary scalars (e.g. camera
// movement or visibility scores) in the top-left corner. Whole-frame
// variant.
type ScalarOverlay struct {
	FontSize float64
}

// NewScalarOverlay creates the auxiliary scalar overlay.
func NewScalarOverlay() *ScalarOverlay {
	return &ScalarOverlay{FontSize: 14}
}

// Name implements Visualizer.
func (v *ScalarOverlay) Name() string { return "scalars" }

// DrawFrame implements FrameDrawer.
func (v *ScalarOverlay) DrawFrame(canvas ports.Canvas, ann pipeline.FrameAnnotations) error {
	lines := make([]string, 0, len(ann.ImagePred)+len(ann.ImageGT))
	for _, key := range sortedKeys(ann.ImagePred) {
		lines = append(lines, fmt.Sprintf("%s: %.3f", key, ann.ImagePred[key]))
	}
	for _, key := range sortedKeys(ann.ImageGT) {
		lines = append(lines, fmt.Sprintf("gt %s: %.3f", key, ann.ImageGT[key]))
	}
	if len(lines) == 0 {
		return nil
	}

	style := ports.TextStyle{FontSize: v.FontSize, Color: color.White, Align: ports.AlignLeft}
	y := int(v.FontSize) + 6
	for _, line := range lines {
		tw, th := canvas.MeasureText(line, style)
		canvas.DrawRect(4, y-int(th)+2, int(tw)+8, int(th)+4, color.RGBA{A: 160})
		canvas.DrawText(line, 8, y, style)
		y += int(th) + 8
	}
	return nil
}

func sortedKeys(scalars ports.FrameScalars) []string {
	keys := make([]string, 0, len(scalars))
	for key := range scalars {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
