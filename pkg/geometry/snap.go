package geometry

// Snapping parameters for perspective-guided line drawing. The threshold is
// a constant canvas-space distance; it intentionally is not rescaled by the
// current zoom, matching the interaction feel the tool was tuned for.
const (
	SnapThreshold       = 20.0
	MinDragForDirection = 8.0
)

// SnapToVanishingPoint adjusts the endpoint of an in-progress line so that
// it lies on the ray from start through the nearest vanishing point, when
// that point is close enough to the line being dragged.
//
// When the drag is long enough to define a direction, closeness is the
// perpendicular distance from each vanishing point to the infinite line
// through (start, cursor). For very short drags no direction exists yet, so
// the Euclidean distance from the vanishing point to start is used instead.
// The two metrics share one threshold.
//
// Returns the possibly-adjusted endpoint and the index of the vanishing
// point snapped to, or -1 when no snap occurred.
func SnapToVanishingPoint(start, cursor Point2D, points []Point2D) (Point2D, int) {
	if len(points) == 0 {
		return cursor, -1
	}

	dir := cursor.Sub(start)
	dirLen := dir.Length()

	best := -1
	bestDist := SnapThreshold
	for i, vp := range points {
		var dist float64
		if dirLen >= MinDragForDirection {
			// Perpendicular distance from vp to the line start->cursor.
			dist = absFloat(dir.Cross(vp.Sub(start))) / dirLen
		} else {
			dist = vp.Distance(start)
		}
		if dist < bestDist {
			bestDist = dist
			best = i
		}
	}
	if best < 0 {
		return cursor, -1
	}

	// Project cursor onto the ray from start through the winning point.
	axis := points[best].Sub(start)
	axisLen2 := axis.Dot(axis)
	if axisLen2 == 0 {
		return cursor, -1
	}
	t := cursor.Sub(start).Dot(axis) / axisLen2
	return start.Add(axis.Scale(t)), best
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
