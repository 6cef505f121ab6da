package geometry

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Zoom bounds for the canvas view.
const (
	MinZoom = 0.1
	MaxZoom = 10.0
)

// ViewTransform describes how the canvas is presented on screen: a zoom
// factor, a pan offset in screen pixels, and a rotation about the canvas
// center in degrees. It is purely presentational and never alters stored
// raster coordinates.
type ViewTransform struct {
	Zoom     float64 `json:"zoom"`
	Pan      Point2D `json:"pan"`
	Rotation float64 `json:"rotation"` // degrees
}

// NewViewTransform returns the neutral view: zoom 1, no pan, no rotation.
func NewViewTransform() ViewTransform {
	return ViewTransform{Zoom: 1}
}

// Clamp bounds the zoom factor to [MinZoom, MaxZoom].
func (v ViewTransform) Clamp() ViewTransform {
	v.Zoom = math.Max(MinZoom, math.Min(MaxZoom, v.Zoom))
	return v
}

// Matrix returns the canvas-to-screen transform: rotate about the canvas
// center, then scale, then translate by the pan offset.
func (v ViewTransform) Matrix(center Point2D) AffineTransform {
	zoom := v.Zoom
	if zoom == 0 {
		zoom = 1
	}
	return Translation(v.Pan.X, v.Pan.Y).
		Compose(Scale(zoom, zoom)).
		Compose(RotationAbout(v.Rotation*math.Pi/180, center))
}

// Inverse returns the screen-to-canvas transform. The 2x3 affine is lifted
// to a homogeneous 3x3 matrix and inverted numerically, so the mapping is
// the exact inverse of Matrix for any pan/zoom/rotation combination.
func (v ViewTransform) Inverse(center Point2D) (AffineTransform, bool) {
	t := v.Matrix(center)
	m := mat.NewDense(3, 3, []float64{
		t.A, t.B, t.TX,
		t.C, t.D, t.TY,
		0, 0, 1,
	})
	var inv mat.Dense
	if err := inv.Inverse(m); err != nil {
		return AffineTransform{}, false
	}
	return AffineTransform{
		A: inv.At(0, 0), B: inv.At(0, 1), TX: inv.At(0, 2),
		C: inv.At(1, 0), D: inv.At(1, 1), TY: inv.At(1, 2),
	}, true
}

// CanvasToScreen maps a canvas-space point to screen space.
func (v ViewTransform) CanvasToScreen(p, center Point2D) Point2D {
	return v.Matrix(center).Apply(p)
}

// ScreenToCanvas maps a screen-space point (e.g. a pointer event) into
// canvas-space coordinates usable for drawing. Falls back to the input
// point if the transform is degenerate (zoom forced to zero).
func (v ViewTransform) ScreenToCanvas(p, center Point2D) Point2D {
	inv, ok := v.Inverse(center)
	if !ok {
		return p
	}
	return inv.Apply(p)
}
