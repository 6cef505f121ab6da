// Package stroke renders sampled pointer paths onto raster buffers. All
// coordinates are canvas-space; the interaction layer maps pointer events
// through the view transform before calling in here.
package stroke

import (
	"image"
	"image/color"
	"math"

	"layout-studio/pkg/geometry"
)

// Tuning constants for the pen width model.
const (
	// VelocityDivisor normalizes the distance between consecutive samples
	// into a [0,1] speed value.
	VelocityDivisor = 40.0

	// WidthSmoothing is the exponential smoothing factor applied to the pen
	// width frame to frame, damping jitter from uneven sampling.
	WidthSmoothing = 0.8

	// MinWidthFraction is the floor for the dynamic pen width, as a
	// fraction of the base size.
	MinWidthFraction = 0.1
)

// paintMode selects how a dab modifies the destination pixel.
type paintMode int

const (
	paintOver paintMode = iota // stroke color over destination
	paintErase                 // clear alpha (subtract)
	paintSet                   // set pixel exactly (idempotent, for masks)
)

// dab stamps a filled hard-edged circle. The workhorse for every freehand
// renderer in this package.
func dab(dst *image.RGBA, center geometry.Point2D, radius float64, col color.RGBA, mode paintMode) {
	if radius < 0.5 {
		radius = 0.5
	}
	b := dst.Bounds()
	minX := int(math.Floor(center.X - radius))
	maxX := int(math.Ceil(center.X + radius))
	minY := int(math.Floor(center.Y - radius))
	maxY := int(math.Ceil(center.Y + radius))
	r2 := radius * radius

	for y := minY; y <= maxY; y++ {
		if y < b.Min.Y || y >= b.Max.Y {
			continue
		}
		for x := minX; x <= maxX; x++ {
			if x < b.Min.X || x >= b.Max.X {
				continue
			}
			dx := float64(x) + 0.5 - center.X
			dy := float64(y) + 0.5 - center.Y
			if dx*dx+dy*dy > r2 {
				continue
			}
			switch mode {
			case paintOver:
				dst.SetRGBA(x, y, over(dst.RGBAAt(x, y), col))
			case paintErase:
				i := dst.PixOffset(x, y)
				dst.Pix[i] = 0
				dst.Pix[i+1] = 0
				dst.Pix[i+2] = 0
				dst.Pix[i+3] = 0
			case paintSet:
				dst.SetRGBA(x, y, col)
			}
		}
	}
}

// over composites src over dst in premultiplied-free 8-bit space.
func over(dst, src color.RGBA) color.RGBA {
	if src.A == 255 {
		return src
	}
	sa := float64(src.A) / 255
	da := float64(dst.A) / 255
	outA := sa + da*(1-sa)
	if outA == 0 {
		return color.RGBA{}
	}
	blendCh := func(s, d uint8) uint8 {
		v := (float64(s)*sa + float64(d)*da*(1-sa)) / outA
		return uint8(v + 0.5)
	}
	return color.RGBA{
		R: blendCh(src.R, dst.R),
		G: blendCh(src.G, dst.G),
		B: blendCh(src.B, dst.B),
		A: uint8(outA*255 + 0.5),
	}
}

// stampSegment stamps dabs from a to b at roughly quarter-width spacing so
// the segment reads as a continuous stroke.
func stampSegment(dst *image.RGBA, a, b geometry.Point2D, width float64, col color.RGBA, mode paintMode) {
	radius := width / 2
	dist := a.Distance(b)
	spacing := math.Max(0.75, radius/2)
	steps := int(dist/spacing) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		dab(dst, a.Lerp(b, t), radius, col, mode)
	}
}

// flattenQuad subdivides the quadratic Bézier (p0, ctrl, p1) into line
// segments appended to out.
func flattenQuad(out []geometry.Point2D, p0, ctrl, p1 geometry.Point2D) []geometry.Point2D {
	// Segment count scales with the control polygon length.
	approxLen := p0.Distance(ctrl) + ctrl.Distance(p1)
	steps := int(approxLen/3) + 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		a := p0.Lerp(ctrl, t)
		b := ctrl.Lerp(p1, t)
		out = append(out, a.Lerp(b, t))
	}
	return out
}

// smoothPoints converts raw samples into a smoothed polyline by running
// quadratic Béziers through successive midpoints, with the samples acting
// as control points. One point degenerates to itself, two to a segment.
func smoothPoints(pts []geometry.Point2D) []geometry.Point2D {
	if len(pts) <= 2 {
		return pts
	}
	out := make([]geometry.Point2D, 0, len(pts)*4)
	out = append(out, pts[0])
	// First segment runs from the start point to the first midpoint.
	out = flattenQuad(out, pts[0], pts[0].Midpoint(pts[1]), pts[0].Midpoint(pts[1]))
	for i := 1; i < len(pts)-1; i++ {
		m0 := pts[i-1].Midpoint(pts[i])
		m1 := pts[i].Midpoint(pts[i+1])
		out = flattenQuad(out, m0, pts[i], m1)
	}
	out = append(out, pts[len(pts)-1])
	return out
}

// renderSmooth walks a smoothed polyline stamping constant-width dabs.
func renderSmooth(dst *image.RGBA, pts []geometry.Point2D, col color.RGBA, width float64, mode paintMode) {
	if len(pts) == 0 {
		return
	}
	if len(pts) == 1 {
		dab(dst, pts[0], width/2, col, mode)
		return
	}
	smoothed := smoothPoints(pts)
	for i := 1; i < len(smoothed); i++ {
		stampSegment(dst, smoothed[i-1], smoothed[i], width, col, mode)
	}
}

// SmoothPath draws a continuous smoothed stroke through the sampled points
// at constant width. Degenerates to a dot for one point and a straight
// segment for two.
func SmoothPath(dst *image.RGBA, pts []geometry.Point2D, col color.RGBA, width float64) {
	renderSmooth(dst, pts, col, width, paintOver)
}

// Erase removes alpha along the smoothed path, compositing in subtract mode
// rather than painting.
func Erase(dst *image.RGBA, pts []geometry.Point2D, width float64) {
	renderSmooth(dst, pts, color.RGBA{}, width, paintErase)
}

// MaskChannel selects which orientation a mask-pen stroke encodes.
type MaskChannel int

const (
	MaskFront MaskChannel = iota // red
	MaskSide                     // green
	MaskBack                     // blue
)

// MaskAlpha is the fixed partial alpha mask-pen strokes are painted at.
const MaskAlpha = 160

// MaskColor returns the paint color for a mask channel.
func MaskColor(ch MaskChannel) color.RGBA {
	switch ch {
	case MaskSide:
		return color.RGBA{G: 255, A: MaskAlpha}
	case MaskBack:
		return color.RGBA{B: 255, A: MaskAlpha}
	default:
		return color.RGBA{R: 255, A: MaskAlpha}
	}
}

// MaskPen paints a directional mask stroke: a pure R/G/B triplet at fixed
// partial alpha. Pixels are set rather than composited so repeated passes
// stay at the same alpha.
func MaskPen(dst *image.RGBA, pts []geometry.Point2D, ch MaskChannel, width float64) {
	renderSmooth(dst, pts, MaskColor(ch), width, paintSet)
}

// VariableWidthPen draws a pressure-like stroke whose width follows the
// local pointer velocity: fast segments thin out toward the width floor,
// slow segments stay near the base size. sensitivity 0 disables the
// velocity response entirely and the stroke renders at constant base size.
func VariableWidthPen(dst *image.RGBA, pts []geometry.Point2D, col color.RGBA, baseSize, sensitivity float64) {
	if sensitivity <= 0 {
		SmoothPath(dst, pts, col, baseSize)
		return
	}
	if len(pts) == 0 {
		return
	}
	if len(pts) == 1 {
		dab(dst, pts[0], baseSize/2, col, paintOver)
		return
	}

	minWidth := baseSize * MinWidthFraction
	width := baseSize
	for i := 1; i < len(pts); i++ {
		velocity := math.Min(1, pts[i-1].Distance(pts[i])/VelocityDivisor)
		target := baseSize * (1 - sensitivity*velocity)
		if target < minWidth {
			target = minWidth
		}
		// Exponential smoothing keeps consecutive segment widths from
		// jumping when sample spacing is uneven.
		width = width*WidthSmoothing + target*(1-WidthSmoothing)
		stampSegment(dst, pts[i-1], pts[i], width, col, paintOver)
	}
}
