package doc

import (
	"fmt"

	"layout-studio/pkg/geometry"
)

// MaxVanishingPoints is the number of perspective guide points a document
// can hold. The count drives the guide pattern: one point draws a horizon
// line, two an open polyline, three a closed triangle.
const MaxVanishingPoints = 3

// VanishingPoint is a canvas-space perspective target. Axis-colored line
// strokes snap toward it while drawing.
type VanishingPoint struct {
	ID  int              `json:"id"`
	Pos geometry.Point2D `json:"pos"`
}

// VanishingPoints returns the guide points in insertion order.
func (d *Document) VanishingPoints() []VanishingPoint { return d.vps }

// VanishingPositions returns just the canvas-space positions, in insertion
// order, for the snapping routine.
func (d *Document) VanishingPositions() []geometry.Point2D {
	pts := make([]geometry.Point2D, len(d.vps))
	for i, vp := range d.vps {
		pts[i] = vp.Pos
	}
	return pts
}

// AddVanishingPoint places a new guide point and returns its id.
func (d *Document) AddVanishingPoint(pos geometry.Point2D) (int, error) {
	if len(d.vps) >= MaxVanishingPoints {
		return 0, ErrTooManyPoints
	}
	d.nextVPID++
	d.vps = append(d.vps, VanishingPoint{ID: d.nextVPID, Pos: pos})
	d.changed()
	return d.nextVPID, nil
}

// MoveVanishingPoint repositions an existing guide point.
func (d *Document) MoveVanishingPoint(id int, pos geometry.Point2D) error {
	for i := range d.vps {
		if d.vps[i].ID == id {
			d.vps[i].Pos = pos
			d.changed()
			return nil
		}
	}
	return fmt.Errorf("vanishing point %d not found", id)
}

// DeleteVanishingPoint removes a guide point. Unknown ids are a no-op.
func (d *Document) DeleteVanishingPoint(id int) {
	for i := range d.vps {
		if d.vps[i].ID == id {
			d.vps = append(d.vps[:i], d.vps[i+1:]...)
			d.changed()
			return
		}
	}
}

// VanishingPointNear returns the id of the guide point within the given
// canvas-space radius of pos, or false when none is close enough.
func (d *Document) VanishingPointNear(pos geometry.Point2D, radius float64) (int, bool) {
	best := -1
	bestDist := radius
	for _, vp := range d.vps {
		if dist := vp.Pos.Distance(pos); dist <= bestDist {
			best = vp.ID
			bestDist = dist
		}
	}
	return best, best >= 0
}

// rescaleVanishingPoints remaps every guide point by the width/height
// ratios of a canvas resize, keeping guides proportionally anchored.
func (d *Document) rescaleVanishingPoints(rx, ry float64) {
	for i := range d.vps {
		d.vps[i].Pos.X *= rx
		d.vps[i].Pos.Y *= ry
	}
}
