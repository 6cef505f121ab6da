package stroke

import (
	"image"
	"image/color"
	"math"

	"layout-studio/pkg/geometry"
)

// Line draws a straight constant-width segment. Vanishing-point snapping is
// the caller's concern; by the time the endpoint reaches here it is final.
func Line(dst *image.RGBA, a, b geometry.Point2D, col color.RGBA, width float64) {
	stampSegment(dst, a, b, width, col, paintOver)
}

// Ellipse draws the outline of the ellipse inscribed in the bounding box
// spanned by the two drag points.
func Ellipse(dst *image.RGBA, a, b geometry.Point2D, col color.RGBA, width float64) {
	rect := geometry.RectFromCorners(a, b)
	cx := rect.X + rect.Width/2
	cy := rect.Y + rect.Height/2
	rx := rect.Width / 2
	ry := rect.Height / 2
	if rx < 0.5 && ry < 0.5 {
		dab(dst, geometry.Point2D{X: cx, Y: cy}, width/2, col, paintOver)
		return
	}

	// Parametric walk with enough steps that adjacent samples are closer
	// than the dab spacing.
	circumference := math.Pi * (3*(rx+ry) - math.Sqrt((3*rx+ry)*(rx+3*ry)))
	steps := int(circumference) + 8
	prev := geometry.Point2D{X: cx + rx, Y: cy}
	for i := 1; i <= steps; i++ {
		theta := 2 * math.Pi * float64(i) / float64(steps)
		p := geometry.Point2D{X: cx + rx*math.Cos(theta), Y: cy + ry*math.Sin(theta)}
		stampSegment(dst, prev, p, width, col, paintOver)
		prev = p
	}
}

// QuadCurve draws a quadratic Bézier from p0 to p1 with one control point.
// Used for the live preview while the curve tool is collecting its second
// control point.
func QuadCurve(dst *image.RGBA, p0, ctrl, p1 geometry.Point2D, col color.RGBA, width float64) {
	pts := flattenQuad([]geometry.Point2D{p0}, p0, ctrl, p1)
	for i := 1; i < len(pts); i++ {
		stampSegment(dst, pts[i-1], pts[i], width, col, paintOver)
	}
}

// CubicCurve draws a cubic Bézier between two endpoints with two control
// points, the completed output of the four-click curve tool.
func CubicCurve(dst *image.RGBA, p0, c0, c1, p1 geometry.Point2D, col color.RGBA, width float64) {
	approxLen := p0.Distance(c0) + c0.Distance(c1) + c1.Distance(p1)
	steps := int(approxLen/3) + 4
	prev := p0
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		a := p0.Lerp(c0, t)
		b := c0.Lerp(c1, t)
		c := c1.Lerp(p1, t)
		ab := a.Lerp(b, t)
		bc := b.Lerp(c, t)
		p := ab.Lerp(bc, t)
		stampSegment(dst, prev, p, width, col, paintOver)
		prev = p
	}
}

// CurveStage tracks the four-click curve collection protocol.
type CurveStage int

const (
	CurveAwaitStart CurveStage = iota
	CurveAwaitEnd
	CurveAwaitCtrl1
	CurveAwaitCtrl2
)

// CurveBuilder collects clicks for the curve tool: start point, end point,
// then two control points. After the first control point arrives the
// in-progress curve previews as a quadratic; the fourth click completes a
// cubic. Reset abandons the collection (bound to Escape).
type CurveBuilder struct {
	stage      CurveStage
	start, end geometry.Point2D
	ctrl1      geometry.Point2D
}

// Stage returns the current collection stage.
func (cb *CurveBuilder) Stage() CurveStage { return cb.stage }

// Click feeds the next click into the protocol. done is true when the
// fourth click completed the curve, at which point the builder has already
// reset itself for the next collection.
func (cb *CurveBuilder) Click(p geometry.Point2D) (start, c0, c1, end geometry.Point2D, done bool) {
	switch cb.stage {
	case CurveAwaitStart:
		cb.start = p
		cb.stage = CurveAwaitEnd
	case CurveAwaitEnd:
		cb.end = p
		cb.stage = CurveAwaitCtrl1
	case CurveAwaitCtrl1:
		cb.ctrl1 = p
		cb.stage = CurveAwaitCtrl2
	case CurveAwaitCtrl2:
		start, c0, c1, end, done = cb.start, cb.ctrl1, p, cb.end, true
		cb.Reset()
	}
	return
}

// Preview renders the in-progress curve onto dst: a straight segment once
// both endpoints exist, or a quadratic through the first control point.
// cursor is the current pointer position standing in for the next click.
func (cb *CurveBuilder) Preview(dst *image.RGBA, cursor geometry.Point2D, col color.RGBA, width float64) {
	switch cb.stage {
	case CurveAwaitEnd:
		Line(dst, cb.start, cursor, col, width)
	case CurveAwaitCtrl1:
		QuadCurve(dst, cb.start, cursor, cb.end, col, width)
	case CurveAwaitCtrl2:
		CubicCurve(dst, cb.start, cb.ctrl1, cursor, cb.end, col, width)
	}
}

// Reset abandons the in-progress collection.
func (cb *CurveBuilder) Reset() {
	*cb = CurveBuilder{}
}
