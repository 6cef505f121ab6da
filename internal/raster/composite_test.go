package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := NewCanvas(w, h)
	Fill(img, c)
	return img
}

func TestCompositeOrderAndVisibility(t *testing.T) {
	red := solid(4, 4, color.RGBA{R: 255, A: 255})
	green := solid(4, 4, color.RGBA{G: 255, A: 255})
	blue := solid(4, 4, color.RGBA{B: 255, A: 255})

	out := Composite(4, 4, []Input{
		{Image: red, Opacity: 1, Visible: true},
		{Image: green, Opacity: 1, Visible: false}, // hidden: must not contribute
		{Image: blue, Opacity: 1, Visible: true},
	})
	assert.Equal(t, color.RGBA{B: 255, A: 255}, out.RGBAAt(2, 2))
}

func TestCompositeOpacity(t *testing.T) {
	white := solid(2, 2, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	black := solid(2, 2, color.RGBA{A: 255})

	out := Composite(2, 2, []Input{
		{Image: black, Opacity: 1, Visible: true},
		{Image: white, Opacity: 0.5, Visible: true},
	})
	got := out.RGBAAt(0, 0)
	assert.InDelta(t, 128, int(got.R), 1)
}

func TestCompositeBlendMode(t *testing.T) {
	base := solid(2, 2, color.RGBA{R: 200, G: 200, B: 200, A: 255})
	top := solid(2, 2, color.RGBA{R: 128, G: 128, B: 128, A: 255})

	out := Composite(2, 2, []Input{
		{Image: base, Opacity: 1, Visible: true},
		{Image: top, Opacity: 1, Mode: BlendMultiply, Visible: true},
	})
	got := out.RGBAAt(1, 1)
	assert.InDelta(t, 100, int(got.R), 1) // 200/255 * 128/255 * 255
}

func TestCompositeEmptyStackIsTransparent(t *testing.T) {
	out := Composite(3, 3, nil)
	assert.Equal(t, color.RGBA{}, out.RGBAAt(1, 1))
	assert.Equal(t, image.Rect(0, 0, 3, 3), out.Bounds())
}

func TestFitRectPreservesAspect(t *testing.T) {
	// Wide image into a square canvas: width-limited, vertically centered.
	r := FitRect(200, 100, 100, 100)
	assert.Equal(t, image.Rect(0, 25, 100, 75), r)

	// Tall image into a wide canvas: height-limited, horizontally centered.
	r = FitRect(100, 200, 400, 100)
	assert.Equal(t, image.Rect(175, 0, 225, 100), r)

	// Degenerate inputs.
	assert.True(t, FitRect(0, 10, 100, 100).Empty())
}

func TestCompositeFitCentersReference(t *testing.T) {
	ref := solid(10, 10, color.RGBA{R: 255, A: 255})
	out := Composite(40, 20, []Input{
		{Image: ref, Opacity: 1, Visible: true, Fit: true},
	})
	// Fitted to 20x20 centered at x=10..30.
	assert.Equal(t, uint8(255), out.RGBAAt(20, 10).R)
	assert.Equal(t, uint8(0), out.RGBAAt(2, 10).A)
	assert.Equal(t, uint8(0), out.RGBAAt(37, 10).A)
}

func TestMergeMultiply(t *testing.T) {
	dst := solid(2, 2, color.RGBA{R: 200, G: 200, B: 200, A: 255})
	src := solid(2, 2, color.RGBA{R: 128, G: 128, B: 128, A: 255})
	Merge(dst, src, BlendMultiply)
	assert.InDelta(t, 100, int(dst.RGBAAt(0, 0).R), 1)
}

func TestContentBounds(t *testing.T) {
	buf := NewCanvas(10, 10)
	_, ok := ContentBounds([]*image.RGBA{buf})
	assert.False(t, ok, "blank layer has no content")

	buf.SetRGBA(3, 4, color.RGBA{R: 1, A: 255})
	buf.SetRGBA(7, 8, color.RGBA{G: 1, A: 10})
	rect, ok := ContentBounds([]*image.RGBA{buf})
	require.True(t, ok)
	assert.Equal(t, image.Rect(3, 4, 8, 9), rect)

	other := NewCanvas(10, 10)
	other.SetRGBA(0, 9, color.RGBA{B: 1, A: 255})
	rect, ok = ContentBounds([]*image.RGBA{buf, other, nil})
	require.True(t, ok)
	assert.Equal(t, image.Rect(0, 4, 8, 10), rect)
}

func TestCloneAndEqualPix(t *testing.T) {
	a := solid(5, 5, color.RGBA{R: 9, G: 8, B: 7, A: 255})
	b := CloneRGBA(a)
	assert.True(t, EqualPix(a, b))
	b.SetRGBA(0, 0, color.RGBA{})
	assert.False(t, EqualPix(a, b))
	assert.Nil(t, CloneRGBA(nil))
}
