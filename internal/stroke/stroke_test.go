package stroke

import (
	"image"
	"image/color"
	"testing"

	"layout-studio/internal/raster"
	"layout-studio/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ink = color.RGBA{R: 20, G: 20, B: 20, A: 255}

func pt(x, y float64) geometry.Point2D { return geometry.Point2D{X: x, Y: y} }

// columnCoverage counts painted pixels in one column, a proxy for the local
// stroke width of a horizontal stroke.
func columnCoverage(buf *image.RGBA, x int) int {
	count := 0
	b := buf.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		if buf.RGBAAt(x, y).A != 0 {
			count++
		}
	}
	return count
}

func TestSmoothPathDegenerateCases(t *testing.T) {
	// One point: a dot.
	buf := raster.NewCanvas(40, 40)
	SmoothPath(buf, []geometry.Point2D{pt(20, 20)}, ink, 6)
	assert.NotEqual(t, uint8(0), buf.RGBAAt(20, 20).A)
	assert.Equal(t, uint8(0), buf.RGBAAt(2, 2).A)

	// Two points: a straight segment.
	buf = raster.NewCanvas(40, 40)
	SmoothPath(buf, []geometry.Point2D{pt(5, 20), pt(35, 20)}, ink, 4)
	assert.NotEqual(t, uint8(0), buf.RGBAAt(20, 20).A)
	assert.Equal(t, uint8(0), buf.RGBAAt(20, 5).A)
}

func TestVariableWidthPenSensitivityZeroIsConstantWidth(t *testing.T) {
	pts := []geometry.Point2D{pt(10, 20), pt(35, 20), pt(60, 20)}

	pen := raster.NewCanvas(80, 40)
	VariableWidthPen(pen, pts, ink, 10, 0)

	smooth := raster.NewCanvas(80, 40)
	SmoothPath(smooth, pts, ink, 10)
	assert.True(t, raster.EqualPix(pen, smooth),
		"sensitivity 0 must degenerate to the smooth-path renderer")

	// Width along the stroke is uniformly the base size.
	for _, x := range []int{20, 35, 50} {
		assert.Equal(t, 10, columnCoverage(pen, x), "column %d", x)
	}
}

func TestVariableWidthPenFastStrokeThins(t *testing.T) {
	// Widely spaced samples = high velocity = thinner than base.
	fast := raster.NewCanvas(200, 40)
	VariableWidthPen(fast, []geometry.Point2D{pt(10, 20), pt(90, 20), pt(170, 20)}, ink, 12, 1)

	slow := raster.NewCanvas(200, 40)
	VariableWidthPen(slow, []geometry.Point2D{pt(10, 20), pt(12, 20), pt(14, 20)}, ink, 12, 1)

	assert.Less(t, columnCoverage(fast, 160), columnCoverage(slow, 12))
}

func TestVariableWidthPenRespectsFloor(t *testing.T) {
	buf := raster.NewCanvas(400, 60)
	// Extreme velocity: width must clamp at 10% of base, not vanish.
	VariableWidthPen(buf, []geometry.Point2D{pt(10, 30), pt(390, 30)}, ink, 20, 1)
	assert.GreaterOrEqual(t, columnCoverage(buf, 380), 2)
}

func TestEraseClearsAlpha(t *testing.T) {
	buf := raster.NewCanvas(40, 40)
	raster.Fill(buf, ink)
	Erase(buf, []geometry.Point2D{pt(5, 20), pt(35, 20)}, 8)
	assert.Equal(t, uint8(0), buf.RGBAAt(20, 20).A)
	assert.Equal(t, uint8(255), buf.RGBAAt(20, 2).A, "pixels off the path keep their alpha")
}

func TestMaskPenChannelsAndIdempotence(t *testing.T) {
	buf := raster.NewCanvas(40, 40)
	MaskPen(buf, []geometry.Point2D{pt(5, 20), pt(35, 20)}, MaskSide, 6)
	got := buf.RGBAAt(20, 20)
	assert.Equal(t, color.RGBA{G: 255, A: MaskAlpha}, got)

	// Re-painting the same region must not accumulate alpha.
	MaskPen(buf, []geometry.Point2D{pt(5, 20), pt(35, 20)}, MaskSide, 6)
	assert.Equal(t, got, buf.RGBAAt(20, 20))

	MaskPen(buf, []geometry.Point2D{pt(5, 20), pt(35, 20)}, MaskBack, 6)
	assert.Equal(t, color.RGBA{B: 255, A: MaskAlpha}, buf.RGBAAt(20, 20))
}

func TestStampedMarkerOpacityDoesNotAccumulate(t *testing.T) {
	buf := raster.NewCanvas(60, 40)
	opts := MarkerOptions{
		Shape:   MarkerCircle,
		Size:    12,
		Opacity: 0.4,
		Color:   color.RGBA{R: 200, A: 255},
	}
	// Dense samples guarantee heavily overlapping stamps.
	StampedMarker(buf, []geometry.Point2D{pt(20, 20), pt(22, 20), pt(24, 20), pt(26, 20)}, opts)

	want := uint8(0.4*255 + 0.5)
	got := buf.RGBAAt(23, 20)
	assert.InDelta(t, int(want), int(got.A), 1,
		"overlapping stamps must resolve to a single opacity pass")
}

func TestStampedMarkerRotatedRect(t *testing.T) {
	buf := raster.NewCanvas(40, 40)
	StampedMarker(buf, []geometry.Point2D{pt(20, 20)}, MarkerOptions{
		Shape: MarkerRect, Size: 10, Opacity: 1, Rotation: 45,
		Color: color.RGBA{B: 255, A: 255},
	})
	// At 45 degrees the square's corners extend past size/2 along the axes.
	assert.NotEqual(t, uint8(0), buf.RGBAAt(20, 26).A)
	// And the axis-aligned corner region of the unrotated square is empty.
	assert.Equal(t, uint8(0), buf.RGBAAt(25, 25).A)
}

func TestCurveBuilderProtocol(t *testing.T) {
	var cb CurveBuilder
	assert.Equal(t, CurveAwaitStart, cb.Stage())

	_, _, _, _, done := cb.Click(pt(0, 0))
	assert.False(t, done)
	_, _, _, _, done = cb.Click(pt(30, 0))
	assert.False(t, done)
	_, _, _, _, done = cb.Click(pt(10, 10))
	assert.False(t, done)
	assert.Equal(t, CurveAwaitCtrl2, cb.Stage())

	start, c0, c1, end, done := cb.Click(pt(20, 10))
	require.True(t, done)
	assert.Equal(t, pt(0, 0), start)
	assert.Equal(t, pt(10, 10), c0)
	assert.Equal(t, pt(20, 10), c1)
	assert.Equal(t, pt(30, 0), end)
	assert.Equal(t, CurveAwaitStart, cb.Stage(), "builder resets after completion")
}

func TestCurveBuilderReset(t *testing.T) {
	var cb CurveBuilder
	cb.Click(pt(0, 0))
	cb.Click(pt(10, 0))
	cb.Reset()
	assert.Equal(t, CurveAwaitStart, cb.Stage())
}

func TestLineAndEllipse(t *testing.T) {
	buf := raster.NewCanvas(60, 60)
	Line(buf, pt(10, 10), pt(50, 50), ink, 3)
	assert.NotEqual(t, uint8(0), buf.RGBAAt(30, 30).A)

	buf = raster.NewCanvas(60, 60)
	Ellipse(buf, pt(10, 20), pt(50, 40), ink, 2)
	// On the outline: rightmost point of the ellipse.
	assert.NotEqual(t, uint8(0), buf.RGBAAt(49, 30).A)
	// Center of the ellipse stays unpainted (outline only).
	assert.Equal(t, uint8(0), buf.RGBAAt(30, 30).A)
}

func TestCubicCurvePassesThroughEndpoints(t *testing.T) {
	buf := raster.NewCanvas(80, 80)
	CubicCurve(buf, pt(10, 70), pt(20, 10), pt(60, 10), pt(70, 70), ink, 3)
	assert.NotEqual(t, uint8(0), buf.RGBAAt(10, 70).A)
	assert.NotEqual(t, uint8(0), buf.RGBAAt(70, 70).A)
	// The curve sags toward the control points but never reaches them.
	assert.Equal(t, uint8(0), buf.RGBAAt(20, 10).A)
}
