package doc

import (
	"image"
	"image/color"
	"testing"

	"layout-studio/internal/raster"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResizeDimensionInvariant(t *testing.T) {
	d := New(400, 300)
	raster.Fill(d.ActiveLayer().Buffer, color.RGBA{R: 50, G: 60, B: 70, A: 255})

	require.NoError(t, d.Resize(800, 450))
	for _, l := range d.Layers() {
		assert.Equal(t, image.Rect(0, 0, 800, 450), l.Buffer.Bounds())
	}

	// Resizing back is lossy but must yield exactly the original dimensions.
	require.NoError(t, d.Resize(400, 300))
	assert.Equal(t, 400, d.Width())
	assert.Equal(t, 300, d.Height())
	for _, l := range d.Layers() {
		assert.Equal(t, image.Rect(0, 0, 400, 300), l.Buffer.Bounds())
	}
}

func TestResizeEnforcesMinimumPerAxis(t *testing.T) {
	d := New(400, 300)
	require.NoError(t, d.Resize(50, 1000))
	assert.Equal(t, MinCanvasDim, d.Width())
	assert.Equal(t, 1000, d.Height())
}

func TestResizeRescalesVanishingPoints(t *testing.T) {
	d := New(400, 300)
	_, err := d.AddVanishingPoint(pt(100, 150))
	require.NoError(t, err)

	require.NoError(t, d.Resize(800, 600))
	got := d.VanishingPoints()[0].Pos
	assert.InDelta(t, 200, got.X, 1e-9)
	assert.InDelta(t, 300, got.Y, 1e-9)
}

func TestResizeStretchesContent(t *testing.T) {
	d := New(400, 300)
	l := d.ActiveLayer()
	// Paint the left half only.
	for y := 0; y < 300; y++ {
		for x := 0; x < 200; x++ {
			l.Buffer.SetRGBA(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	require.NoError(t, d.Resize(800, 300))
	// A full-canvas stretch keeps the painted region at the left half.
	assert.NotEqual(t, uint8(0), l.Buffer.RGBAAt(300, 150).A)
	assert.Equal(t, uint8(0), l.Buffer.RGBAAt(700, 150).A)
}

func TestCropExactDimensions(t *testing.T) {
	d := New(400, 300)
	l := d.ActiveLayer()
	l.Buffer.SetRGBA(120, 110, color.RGBA{G: 255, A: 255})

	require.NoError(t, d.Crop(image.Rect(100, 100, 250, 220)))
	assert.Equal(t, 150, d.Width())
	assert.Equal(t, 120, d.Height())
	assert.Equal(t, image.Rect(0, 0, 150, 120), l.Buffer.Bounds())

	// Content is sub-extracted, not stretched: the pixel moved by -min.
	assert.Equal(t, uint8(255), l.Buffer.RGBAAt(20, 10).G)
}

func TestCropRebasesBuffersToOrigin(t *testing.T) {
	d := New(400, 300)
	l := d.ActiveLayer()
	l.Buffer.SetRGBA(120, 110, color.RGBA{G: 255, A: 255})

	require.NoError(t, d.Crop(image.Rect(100, 100, 250, 220)))
	require.Equal(t, image.Point{}, l.Buffer.Bounds().Min)

	// Drawing at coordinates below the old crop origin must land in the
	// buffer, not get clipped against a stale offset frame.
	drawDot(t, d, 5, 5)
	assert.NotEqual(t, uint8(0), l.Buffer.RGBAAt(5, 5).A)

	// A second crop intersects the new frame, not the pre-crop one.
	require.NoError(t, d.Crop(image.Rect(10, 0, 150, 120)))
	assert.Equal(t, 140, d.Width())
	assert.Equal(t, image.Point{}, l.Buffer.Bounds().Min)
	assert.Equal(t, uint8(255), l.Buffer.RGBAAt(10, 10).G)
}

func TestCropFullCanvasIsNoopOnContent(t *testing.T) {
	d := New(200, 200)
	l := d.ActiveLayer()
	l.Buffer.SetRGBA(5, 5, color.RGBA{B: 255, A: 255})
	before := raster.CloneRGBA(l.Buffer)

	require.NoError(t, d.Crop(image.Rect(0, 0, 200, 200)))
	assert.True(t, raster.EqualPix(before, l.Buffer))
	assert.Equal(t, 200, d.Width())
}

func TestCropDegenerateRejected(t *testing.T) {
	d := New(200, 200)
	assert.ErrorIs(t, d.Crop(image.Rect(10, 10, 12, 180)), ErrDegenerateCrop)
	assert.ErrorIs(t, d.Crop(image.Rect(10, 10, 10, 10)), ErrDegenerateCrop)
	assert.Equal(t, 200, d.Width(), "rejected crop leaves the canvas untouched")
}

func TestCropTranslatesVanishingPoints(t *testing.T) {
	d := New(400, 300)
	_, err := d.AddVanishingPoint(pt(150, 150))
	require.NoError(t, err)

	require.NoError(t, d.Crop(image.Rect(100, 100, 300, 250)))
	got := d.VanishingPoints()[0].Pos
	assert.Equal(t, pt(50, 50), got)
}

func TestCropResetsHistory(t *testing.T) {
	d := New(300, 300)
	l := d.ActiveLayer()
	drawDot(t, d, 150, 150)
	require.True(t, l.CanUndo())

	require.NoError(t, d.Crop(image.Rect(50, 50, 250, 250)))
	assert.False(t, l.CanUndo(), "old-geometry snapshots are discarded")
	assert.Equal(t, 1, l.HistoryDepth())
}
