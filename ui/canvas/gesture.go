package canvas

import (
	"math"

	"layout-studio/pkg/geometry"
)

// Scrubby-zoom sensitivity: horizontal drag pixels to exponential zoom.
const scrubbySensitivity = 0.005

// TouchPair is a snapshot of two simultaneous touch positions in screen
// space, produced by a platform touch source and fed to
// SketchCanvas.ApplyPinch. Pinch deltas are derived from the previous
// snapshot versus the latest one on every move event.
type TouchPair [2]geometry.Point2D

// Center returns the midpoint between the two touches.
func (tp TouchPair) Center() geometry.Point2D {
	return tp[0].Midpoint(tp[1])
}

// Spread returns the distance between the two touches.
func (tp TouchPair) Spread() float64 {
	return tp[0].Distance(tp[1])
}

// PinchDelta derives the pan offset and zoom factor a two-finger gesture
// moved through between two snapshots. The pan is the travel of the touch
// midpoint; the zoom factor is the ratio of finger spreads (1 when the
// previous spread is degenerate).
func PinchDelta(prev, cur TouchPair) (pan geometry.Point2D, zoomFactor float64) {
	pan = cur.Center().Sub(prev.Center())
	prevSpread := prev.Spread()
	if prevSpread <= 0 {
		return pan, 1
	}
	return pan, cur.Spread() / prevSpread
}

// ScrubbyZoom maps a horizontal drag distance onto a new zoom level:
// rightward drags zoom in, leftward out, exponentially so the feel is
// uniform across the zoom range. The result is clamped to the view bounds.
func ScrubbyZoom(zoom, dx float64) float64 {
	z := zoom * math.Exp(dx*scrubbySensitivity)
	return math.Max(geometry.MinZoom, math.Min(geometry.MaxZoom, z))
}
