package canvas

import (
	"image"

	"layout-studio/internal/raster"
	"layout-studio/internal/stroke"
	"layout-studio/pkg/geometry"
)

// render is the raster draw closure: it maps every screen pixel through the
// inverse view transform and samples the composited document, then paints
// the screen-space overlays on top.
func (sc *SketchCanvas) render(w, h int) image.Image {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	raster.Fill(out, backdropColor)
	if w <= 0 || h <= 0 {
		return out
	}

	preview := sc.state.Preview()
	center := sc.state.Doc.Center()
	inv, ok := sc.state.View.Inverse(center)
	if preview != nil && ok {
		scratch := sc.curvePreview()
		cb := preview.Bounds()
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				p := inv.Apply(geometry.Point2D{X: float64(x) + 0.5, Y: float64(y) + 0.5})
				cx, cy := int(p.X), int(p.Y)
				if cx < cb.Min.X || cx >= cb.Max.X || cy < cb.Min.Y || cy >= cb.Max.Y {
					continue
				}
				px := preview.RGBAAt(cx, cy)
				if scratch != nil {
					px = overRGBA(px, scratch.RGBAAt(cx, cy))
				}
				out.SetRGBA(x, y, overRGBA(backdropColor, px))
			}
		}
	}

	sc.drawCanvasFrame(out)
	sc.drawGuides(out)
	sc.drawAnchors(out)
	if sc.drag == dragLine {
		sc.drawSnapHighlight(out)
	}
	if !sc.cropRect.Empty() {
		sc.drawCropOverlay(out)
	}
	if sc.tool == ToolPan {
		sc.drawResizeHandles(out)
	}
	if sc.pendingW > 0 || sc.pendingH > 0 {
		sc.drawPendingResize(out)
	}
	return out
}

// curvePreview renders the in-progress curve collection into a reusable
// canvas-sized scratch surface, or returns nil when nothing previews.
func (sc *SketchCanvas) curvePreview() *image.RGBA {
	if sc.tool != ToolCurve || sc.curve.Stage() == stroke.CurveAwaitStart || !sc.hovering {
		return nil
	}
	w, h := sc.state.Doc.Width(), sc.state.Doc.Height()
	if sc.scratch == nil || sc.scratch.Bounds().Dx() != w || sc.scratch.Bounds().Dy() != h {
		sc.scratch = raster.NewCanvas(w, h)
	} else {
		for i := range sc.scratch.Pix {
			sc.scratch.Pix[i] = 0
		}
	}
	sc.curve.Preview(sc.scratch, sc.hover, sc.brush.Color, sc.brush.Size)
	return sc.scratch
}

// canvasCornersScreen projects the canvas rectangle into screen space.
func (sc *SketchCanvas) canvasCornersScreen() [4]geometry.Point2D {
	w := float64(sc.state.Doc.Width())
	h := float64(sc.state.Doc.Height())
	return [4]geometry.Point2D{
		sc.toScreen(geometry.Point2D{X: 0, Y: 0}),
		sc.toScreen(geometry.Point2D{X: w, Y: 0}),
		sc.toScreen(geometry.Point2D{X: w, Y: h}),
		sc.toScreen(geometry.Point2D{X: 0, Y: h}),
	}
}

func (sc *SketchCanvas) drawCanvasFrame(out *image.RGBA) {
	c := sc.canvasCornersScreen()
	for i := 0; i < 4; i++ {
		a, b := c[i], c[(i+1)%4]
		drawLinePx(out, int(a.X), int(a.Y), int(b.X), int(b.Y), frameColor, 1)
	}
}

// drawCropOverlay darkens everything outside the selection and dashes its
// border. Only correct for unrotated views; the crop tool resets rotation
// on confirm anyway.
func (sc *SketchCanvas) drawCropOverlay(out *image.RGBA) {
	min := sc.toScreen(geometry.Point2D{X: float64(sc.cropRect.Min.X), Y: float64(sc.cropRect.Min.Y)})
	max := sc.toScreen(geometry.Point2D{X: float64(sc.cropRect.Max.X), Y: float64(sc.cropRect.Max.Y)})
	r := image.Rect(int(min.X), int(min.Y), int(max.X), int(max.Y)).Canon()
	darkenOutsidePx(out, r)
	drawDashedRectPx(out, r, cropLineColor)
}

// resizeHandles returns the three grab points in canvas space with the
// axes each one drives: right edge (width), bottom edge (height), corner
// (both).
func (sc *SketchCanvas) resizeHandles() [3]struct {
	pos    geometry.Point2D
	ax, ay bool
} {
	w := float64(sc.state.Doc.Width())
	h := float64(sc.state.Doc.Height())
	return [3]struct {
		pos    geometry.Point2D
		ax, ay bool
	}{
		{pos: geometry.Point2D{X: w, Y: h / 2}, ax: true},
		{pos: geometry.Point2D{X: w / 2, Y: h}, ay: true},
		{pos: geometry.Point2D{X: w, Y: h}, ax: true, ay: true},
	}
}

func (sc *SketchCanvas) drawResizeHandles(out *image.RGBA) {
	for _, hd := range sc.resizeHandles() {
		p := sc.toScreen(hd.pos)
		drawHandlePx(out, int(p.X), int(p.Y))
	}
}

// hitResizeHandle tests a screen point against the resize handles and
// reports which axes the grabbed handle drives.
func (sc *SketchCanvas) hitResizeHandle(screen geometry.Point2D) (ax, ay, ok bool) {
	for _, hd := range sc.resizeHandles() {
		if screen.Distance(sc.toScreen(hd.pos)) <= handleHitRadius {
			return hd.ax, hd.ay, true
		}
	}
	return false, false, false
}

// drawPendingResize outlines the live resize target dimensions.
func (sc *SketchCanvas) drawPendingResize(out *image.RGBA) {
	w := sc.pendingW
	if w == 0 {
		w = sc.state.Doc.Width()
	}
	h := sc.pendingH
	if h == 0 {
		h = sc.state.Doc.Height()
	}
	min := sc.toScreen(geometry.Point2D{})
	max := sc.toScreen(geometry.Point2D{X: float64(w), Y: float64(h)})
	drawDashedRectPx(out, image.Rect(int(min.X), int(min.Y), int(max.X), int(max.Y)).Canon(), handleColor)
}
