package canvas

import (
	"image"

	"layout-studio/pkg/geometry"
)

// guideTargets returns the canvas-space points each vanishing point fans
// rays toward: the four corners plus three evenly spaced positions along
// every edge.
func guideTargets(w, h float64) []geometry.Point2D {
	targets := []geometry.Point2D{
		{X: 0, Y: 0}, {X: w, Y: 0}, {X: 0, Y: h}, {X: w, Y: h},
	}
	for i := 1; i <= 3; i++ {
		f := float64(i) / 4
		targets = append(targets,
			geometry.Point2D{X: w * f, Y: 0},
			geometry.Point2D{X: w * f, Y: h},
			geometry.Point2D{X: 0, Y: h * f},
			geometry.Point2D{X: w, Y: h * f},
		)
	}
	return targets
}

// drawGuides renders the perspective fan for every vanishing point, the
// emphasized polyline connecting them, and the point markers. The active
// point is highlighted.
func (sc *SketchCanvas) drawGuides(out *image.RGBA) {
	vps := sc.state.Doc.VanishingPoints()
	if len(vps) == 0 {
		return
	}
	w := float64(sc.state.Doc.Width())
	h := float64(sc.state.Doc.Height())
	targets := guideTargets(w, h)

	// Faint fan rays from each point to the corner/edge targets.
	for _, vp := range vps {
		from := sc.toScreen(vp.Pos)
		for _, t := range targets {
			to := sc.toScreen(t)
			drawLinePx(out, int(from.X), int(from.Y), int(to.X), int(to.Y), guideFaint, 1)
		}
	}

	// Emphasized guide: horizon line through a single point, open polyline
	// for two, closed triangle for three.
	switch len(vps) {
	case 1:
		a := sc.toScreen(geometry.Point2D{X: -w, Y: vps[0].Pos.Y})
		b := sc.toScreen(geometry.Point2D{X: 2 * w, Y: vps[0].Pos.Y})
		drawLinePx(out, int(a.X), int(a.Y), int(b.X), int(b.Y), guideStrong, 2)
	default:
		for i := 0; i < len(vps); i++ {
			next := i + 1
			if next == len(vps) {
				if len(vps) < 3 {
					break
				}
				next = 0
			}
			a := sc.toScreen(vps[i].Pos)
			b := sc.toScreen(vps[next].Pos)
			drawLinePx(out, int(a.X), int(a.Y), int(b.X), int(b.Y), guideStrong, 2)
		}
	}

	// Point markers, active one larger and warm.
	for _, vp := range vps {
		p := sc.toScreen(vp.Pos)
		if vp.ID == sc.activeVP {
			drawCirclePx(out, int(p.X), int(p.Y), 9, vpActiveFill, true)
		} else {
			drawCirclePx(out, int(p.X), int(p.Y), 6, vpFill, true)
		}
	}
}

// drawSnapHighlight marks the vanishing point the in-progress line snapped
// to and traces the snap ray through it.
func (sc *SketchCanvas) drawSnapHighlight(out *image.RGBA) {
	positions := sc.state.Doc.VanishingPositions()
	if sc.snapVP < 0 || sc.snapVP >= len(positions) {
		return
	}
	vp := positions[sc.snapVP]
	from := sc.toScreen(sc.lineStart)
	to := sc.toScreen(vp)
	drawLinePx(out, int(from.X), int(from.Y), int(to.X), int(to.Y), snapColor, 1)
	drawCirclePx(out, int(to.X), int(to.Y), 11, snapColor, false)
}

// drawAnchors renders the character anchor markers of every visible layer:
// a filled center dot plus the influence-radius ring. The selected anchor
// gets a second ring.
func (sc *SketchCanvas) drawAnchors(out *image.RGBA) {
	w := sc.state.Doc.Width()
	h := sc.state.Doc.Height()
	zoom := sc.state.View.Zoom
	for _, layer := range sc.state.Doc.Layers() {
		if !layer.Visible {
			continue
		}
		for _, a := range layer.Anchors {
			ax, ay := a.PixelPos(w, h)
			p := sc.toScreen(geometry.Point2D{X: ax, Y: ay})
			ring := a.Color
			ring.A = 170
			drawCirclePx(out, int(p.X), int(p.Y), 4, a.Color, true)
			drawCirclePx(out, int(p.X), int(p.Y), a.PixelRadius(w)*zoom, ring, false)
			if layer.ID == sc.activeAnchorLayer && a.Name == sc.activeAnchorName {
				drawCirclePx(out, int(p.X), int(p.Y), 8, vpActiveFill, false)
			}
		}
	}
}
