// Package canvas provides the interactive sketch surface: tool dispatch,
// drag state machines, view navigation, and guide/crop overlays.
package canvas

import (
	"errors"
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog/log"

	"layout-studio/internal/app"
	"layout-studio/internal/doc"
	"layout-studio/internal/raster"
	"layout-studio/internal/stroke"
	"layout-studio/pkg/colorutil"
	"layout-studio/pkg/geometry"
)

const (
	zoomStep = 1.25

	// Screen-space hit radii for grabbing existing markers.
	vpHitRadius     = 14.0
	anchorHitRadius = 12.0
	handleHitRadius = 10.0
)

// Brush holds the user-adjustable stroke settings shared by the drawing
// tools. The panel widgets mutate it through the pointer returned by
// SketchCanvas.Brush.
type Brush struct {
	Color       color.RGBA
	Size        float64
	Sensitivity float64 // velocity response of the pen, 0 disables
	Marker      stroke.MarkerOptions
	Mask        stroke.MaskChannel
}

// DefaultBrush is the startup configuration: a black 10px pen with
// moderate velocity response.
func DefaultBrush() Brush {
	return Brush{
		Color:       colorutil.Black,
		Size:        10,
		Sensitivity: 0.5,
		Marker: stroke.MarkerOptions{
			Shape:    stroke.MarkerRect,
			Size:     24,
			Opacity:  0.4,
			Rotation: 30,
		},
		Mask: stroke.MaskFront,
	}
}

// dragKind identifies which drag state machine is running.
type dragKind int

const (
	dragNone dragKind = iota
	dragIgnore
	dragDraw
	dragLine
	dragEllipse
	dragPan
	dragZoom
	dragVP
	dragCrop
	dragResize
	dragAnchorRadius
)

// SketchCanvas is the drawing widget. It renders the composited document
// through the current view transform and translates pointer, scroll, and
// key events into document operations.
type SketchCanvas struct {
	widget.BaseWidget

	state  *app.State
	raster *fynecanvas.Raster

	tool  Tool
	brush Brush

	drag     dragKind
	lastDrag geometry.Point2D // screen space, for pan/zoom deltas

	// Freehand stroke state: the active layer's buffer is restored from
	// strokeBase and fully re-rendered on every move so the live preview
	// is the real stroke, not an approximation.
	samples     []geometry.Point2D
	strokeLayer int
	strokeBase  *image.RGBA
	maskTarget  *image.RGBA // non-nil when the gesture paints a ref mask

	lineStart geometry.Point2D
	lineEnd   geometry.Point2D
	snapVP    int // index of the vanishing point snapped to, -1 when none

	curve    stroke.CurveBuilder
	hover    geometry.Point2D
	hovering bool
	scratch  *image.RGBA // curve preview surface, canvas sized

	activeVP int // vanishing point id, -1 when none selected

	anchorName        string // next placement name, empty uses the layer name
	activeAnchorLayer int
	activeAnchorName  string

	cropAnchor  geometry.Point2D
	cropRect    image.Rectangle
	cropPending bool

	pendingW, pendingH       int // live resize target, 0 when idle
	resizeAxisX, resizeAxisY bool

	onViewChange func()
}

// NewSketchCanvas builds the widget over the application state. The state's
// preview hook is claimed by the canvas to drive repaints.
func NewSketchCanvas(state *app.State) *SketchCanvas {
	sc := &SketchCanvas{
		state:    state,
		tool:     ToolPen,
		brush:    DefaultBrush(),
		snapVP:   -1,
		activeVP: -1,
	}
	sc.raster = fynecanvas.NewRaster(sc.render)
	sc.raster.ScaleMode = fynecanvas.ImageScalePixels
	sc.raster.SetMinSize(fyne.NewSize(400, 300))
	state.OnPreview(func(*image.RGBA) { sc.Refresh() })
	sc.ExtendBaseWidget(sc)
	return sc
}

// CreateRenderer implements fyne.Widget.
func (sc *SketchCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(sc.raster)
}

// Refresh repaints the raster.
func (sc *SketchCanvas) Refresh() {
	sc.raster.Refresh()
	sc.BaseWidget.Refresh()
}

// State exposes the application state the canvas operates on.
func (sc *SketchCanvas) State() *app.State { return sc.state }

// Brush returns the live brush settings for the panel widgets to adjust.
func (sc *SketchCanvas) Brush() *Brush { return &sc.brush }

// SetTool switches the active tool, resetting any in-progress multi-click
// input.
func (sc *SketchCanvas) SetTool(t Tool) {
	sc.tool = t
	sc.curve.Reset()
	sc.cancelCrop()
	sc.Refresh()
}

// CurrentTool returns the active tool.
func (sc *SketchCanvas) CurrentTool() Tool { return sc.tool }

// SetAnchorName sets the character name used by the next anchor placement.
// Empty defaults to the owning layer's name.
func (sc *SketchCanvas) SetAnchorName(name string) { sc.anchorName = name }

// OnViewChange registers a hook fired after pan/zoom changes, for status
// displays.
func (sc *SketchCanvas) OnViewChange(fn func()) { sc.onViewChange = fn }

func (sc *SketchCanvas) viewChanged() {
	if sc.onViewChange != nil {
		sc.onViewChange()
	}
	sc.Refresh()
}

func screenPoint(p fyne.Position) geometry.Point2D {
	return geometry.Point2D{X: float64(p.X), Y: float64(p.Y)}
}

func (sc *SketchCanvas) toCanvas(p geometry.Point2D) geometry.Point2D {
	return sc.state.View.ScreenToCanvas(p, sc.state.Doc.Center())
}

func (sc *SketchCanvas) toScreen(p geometry.Point2D) geometry.Point2D {
	return sc.state.View.CanvasToScreen(p, sc.state.Doc.Center())
}

// Dragged drives all drag state machines. The first event of a gesture
// selects the machine from the active tool; subsequent events feed it.
func (sc *SketchCanvas) Dragged(ev *fyne.DragEvent) {
	screen := screenPoint(ev.Position)
	if sc.drag == dragNone {
		sc.beginDrag(screen)
	}
	canvasPt := sc.toCanvas(screen)

	switch sc.drag {
	case dragNone, dragIgnore:

	case dragDraw:
		sc.samples = append(sc.samples, canvasPt)
		sc.repaintFreehand()

	case dragLine, dragEllipse:
		sc.lineEnd = canvasPt
		sc.snapVP = -1
		if sc.drag == dragLine && sc.axisColor() {
			sc.lineEnd, sc.snapVP = geometry.SnapToVanishingPoint(
				sc.lineStart, canvasPt, sc.state.Doc.VanishingPositions())
		}
		sc.repaintShape()

	case dragPan:
		delta := screen.Sub(sc.lastDrag)
		sc.state.View.Pan = sc.state.View.Pan.Add(delta)
		sc.lastDrag = screen
		sc.viewChanged()

	case dragZoom:
		dx := screen.X - sc.lastDrag.X
		sc.state.View.Zoom = ScrubbyZoom(sc.state.View.Zoom, dx)
		sc.lastDrag = screen
		sc.viewChanged()

	case dragVP:
		if sc.activeVP >= 0 {
			_ = sc.state.Doc.MoveVanishingPoint(sc.activeVP, canvasPt)
		}

	case dragCrop:
		r := geometry.RectFromCorners(sc.cropAnchor, canvasPt).ToInt()
		sc.cropRect = image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height).
			Intersect(image.Rect(0, 0, sc.state.Doc.Width(), sc.state.Doc.Height()))
		sc.Refresh()

	case dragResize:
		if sc.resizeAxisX {
			sc.pendingW = clampDim(int(canvasPt.X))
		}
		if sc.resizeAxisY {
			sc.pendingH = clampDim(int(canvasPt.Y))
		}
		sc.Refresh()

	case dragAnchorRadius:
		sc.dragAnchorRadiusTo(canvasPt)
	}
}

func clampDim(v int) int {
	if v < doc.MinCanvasDim {
		return doc.MinCanvasDim
	}
	return v
}

// beginDrag selects the drag machine for the gesture from the active tool.
func (sc *SketchCanvas) beginDrag(screen geometry.Point2D) {
	canvasPt := sc.toCanvas(screen)
	sc.lastDrag = screen

	switch sc.tool {
	case ToolPen, ToolMarker, ToolEraser, ToolMaskPen:
		sc.beginFreehand(canvasPt)

	case ToolLine:
		sc.beginShape(canvasPt, dragLine)

	case ToolEllipse:
		sc.beginShape(canvasPt, dragEllipse)

	case ToolCurve, ToolAnchorDelete:
		// Click-driven tools; drags are swallowed until release.
		sc.drag = dragIgnore

	case ToolAnchor:
		sc.beginAnchor(canvasPt)

	case ToolPerspective:
		sc.selectOrAddVP(canvasPt)
		sc.drag = dragVP

	case ToolCrop:
		sc.cropAnchor = canvasPt
		sc.cropRect = image.Rectangle{}
		sc.cropPending = false
		sc.drag = dragCrop

	case ToolPan:
		if ax, ay, ok := sc.hitResizeHandle(screen); ok {
			sc.resizeAxisX, sc.resizeAxisY = ax, ay
			sc.pendingW, sc.pendingH = sc.state.Doc.Width(), sc.state.Doc.Height()
			sc.drag = dragResize
		} else {
			sc.drag = dragPan
		}

	case ToolZoom:
		sc.drag = dragZoom
	}
}

func (sc *SketchCanvas) beginFreehand(p geometry.Point2D) {
	layer := sc.state.Doc.ActiveLayer()
	sc.strokeLayer = layer.ID
	sc.maskTarget = nil

	if sc.tool == ToolMaskPen {
		if target := sc.refMaskTarget(layer); target != nil {
			sc.maskTarget = target
			sc.strokeBase = raster.CloneRGBA(target)
			sc.samples = []geometry.Point2D{p}
			sc.drag = dragDraw
			return
		}
	}

	if err := sc.state.Doc.BeginStroke(layer.ID); err != nil {
		sc.drag = dragIgnore
		return
	}
	sc.strokeBase = raster.CloneRGBA(layer.Buffer)
	sc.samples = []geometry.Point2D{p}
	sc.drag = dragDraw
	sc.repaintFreehand()
}

// refMaskTarget returns the directional-mask surface of the layer's newest
// style reference, allocating it on first paint. Nil when the layer has no
// references, in which case the mask pen falls back to the sketch surface.
func (sc *SketchCanvas) refMaskTarget(layer *doc.Layer) *image.RGBA {
	if len(layer.Refs) == 0 {
		return nil
	}
	ref := layer.Refs[len(layer.Refs)-1]
	if ref.Mask == nil {
		ref.Mask = raster.NewCanvas(sc.state.Doc.Width(), sc.state.Doc.Height())
	}
	return ref.Mask
}

func (sc *SketchCanvas) beginShape(p geometry.Point2D, kind dragKind) {
	layer := sc.state.Doc.ActiveLayer()
	if err := sc.state.Doc.BeginStroke(layer.ID); err != nil {
		sc.drag = dragIgnore
		return
	}
	sc.strokeLayer = layer.ID
	sc.strokeBase = raster.CloneRGBA(layer.Buffer)
	sc.lineStart = p
	sc.lineEnd = p
	sc.snapVP = -1
	sc.drag = kind
}

func (sc *SketchCanvas) beginAnchor(p geometry.Point2D) {
	layer := sc.state.Doc.ActiveLayer()
	if a, ok := sc.anchorNear(layer, p); ok {
		sc.activeAnchorLayer = layer.ID
		sc.activeAnchorName = a.Name
		sc.drag = dragAnchorRadius
		return
	}
	fx := p.X / float64(sc.state.Doc.Width()) * 100
	fy := p.Y / float64(sc.state.Doc.Height()) * 100
	a, err := sc.state.Doc.PlaceAnchor(layer.ID, sc.anchorName, fx, fy)
	if err != nil {
		sc.drag = dragIgnore
		return
	}
	sc.activeAnchorLayer = layer.ID
	sc.activeAnchorName = a.Name
	sc.drag = dragAnchorRadius
}

func (sc *SketchCanvas) anchorNear(layer *doc.Layer, p geometry.Point2D) (*doc.AnchorPoint, bool) {
	hit := anchorHitRadius / sc.state.View.Zoom
	for _, a := range layer.Anchors {
		ax, ay := a.PixelPos(sc.state.Doc.Width(), sc.state.Doc.Height())
		if p.Distance(geometry.Point2D{X: ax, Y: ay}) <= hit {
			return a, true
		}
	}
	return nil, false
}

func (sc *SketchCanvas) dragAnchorRadiusTo(p geometry.Point2D) {
	layer, err := sc.state.Doc.Layer(sc.activeAnchorLayer)
	if err != nil {
		return
	}
	for _, a := range layer.Anchors {
		if a.Name != sc.activeAnchorName {
			continue
		}
		ax, ay := a.PixelPos(sc.state.Doc.Width(), sc.state.Doc.Height())
		dist := p.Distance(geometry.Point2D{X: ax, Y: ay})
		pct := dist / float64(sc.state.Doc.Width()) * 100
		_ = sc.state.Doc.SetAnchorRadius(layer.ID, a.Name, pct)
		return
	}
}

func (sc *SketchCanvas) selectOrAddVP(p geometry.Point2D) {
	hit := vpHitRadius / sc.state.View.Zoom
	if id, ok := sc.state.Doc.VanishingPointNear(p, hit); ok {
		sc.activeVP = id
		sc.Refresh()
		return
	}
	id, err := sc.state.Doc.AddVanishingPoint(p)
	if err != nil {
		return
	}
	sc.activeVP = id
}

// axisColor reports whether the brush color is one of the three designated
// snap-enabled axis colors.
func (sc *SketchCanvas) axisColor() bool {
	return colorutil.SameRGB(sc.brush.Color, colorutil.AxisRed) ||
		colorutil.SameRGB(sc.brush.Color, colorutil.AxisGreen) ||
		colorutil.SameRGB(sc.brush.Color, colorutil.AxisBlue)
}

// repaintFreehand restores the stroke target from its pre-gesture snapshot
// and re-renders the whole sample list, so every frame shows the final
// stroke geometry.
func (sc *SketchCanvas) repaintFreehand() {
	target := sc.maskTarget
	if target == nil {
		layer, err := sc.state.Doc.Layer(sc.strokeLayer)
		if err != nil {
			return
		}
		target = layer.Buffer
	}
	copy(target.Pix, sc.strokeBase.Pix)

	switch sc.tool {
	case ToolPen:
		stroke.VariableWidthPen(target, sc.samples, sc.brush.Color, sc.brush.Size, sc.brush.Sensitivity)
	case ToolMarker:
		opts := sc.brush.Marker
		opts.Color = sc.brush.Color
		stroke.StampedMarker(target, sc.samples, opts)
	case ToolEraser:
		stroke.Erase(target, sc.samples, sc.brush.Size)
	case ToolMaskPen:
		stroke.MaskPen(target, sc.samples, sc.brush.Mask, sc.brush.Size)
	}

	if sc.maskTarget != nil {
		sc.Refresh()
		return
	}
	sc.state.Recomposite()
}

func (sc *SketchCanvas) repaintShape() {
	layer, err := sc.state.Doc.Layer(sc.strokeLayer)
	if err != nil {
		return
	}
	copy(layer.Buffer.Pix, sc.strokeBase.Pix)
	switch sc.drag {
	case dragLine:
		stroke.Line(layer.Buffer, sc.lineStart, sc.lineEnd, sc.brush.Color, sc.brush.Size)
	case dragEllipse:
		stroke.Ellipse(layer.Buffer, sc.lineStart, sc.lineEnd, sc.brush.Color, sc.brush.Size)
	}
	sc.state.Recomposite()
}

// DragEnd finalizes the running drag machine.
func (sc *SketchCanvas) DragEnd() {
	switch sc.drag {
	case dragDraw:
		// Mask gestures skipped BeginStroke, so they add no history
		// entry, but they still changed document content and must fire
		// the change hook like any other edit.
		sc.state.Doc.CommitStroke()
		sc.strokeBase = nil
		sc.maskTarget = nil
		sc.samples = nil

	case dragLine, dragEllipse:
		sc.state.Doc.CommitStroke()
		sc.strokeBase = nil
		sc.snapVP = -1

	case dragCrop:
		if !sc.cropRect.Empty() {
			sc.cropPending = true
		}
		sc.Refresh()

	case dragResize:
		w, h := sc.pendingW, sc.pendingH
		sc.pendingW, sc.pendingH = 0, 0
		sc.resizeAxisX, sc.resizeAxisY = false, false
		if w > 0 && h > 0 {
			_ = sc.state.Doc.Resize(w, h)
		}
	}
	sc.drag = dragNone
}

// Tapped routes clicks for the click-driven tools.
func (sc *SketchCanvas) Tapped(ev *fyne.PointEvent) {
	p := sc.toCanvas(screenPoint(ev.Position))

	switch sc.tool {
	case ToolCurve:
		start, c0, c1, end, done := sc.curve.Click(p)
		if done {
			layer := sc.state.Doc.ActiveLayer()
			if err := sc.state.Doc.BeginStroke(layer.ID); err == nil {
				stroke.CubicCurve(layer.Buffer, start, c0, c1, end, sc.brush.Color, sc.brush.Size)
				sc.state.Doc.CommitStroke()
			}
		}
		sc.Refresh()

	case ToolAnchor:
		sc.beginAnchor(p)
		sc.drag = dragNone

	case ToolAnchorDelete:
		layer := sc.state.Doc.ActiveLayer()
		if a, ok := sc.anchorNear(layer, p); ok {
			_ = sc.state.Doc.RemoveAnchor(layer.ID, a.Name)
			if sc.activeAnchorName == a.Name {
				sc.activeAnchorName = ""
			}
		}

	case ToolPerspective:
		sc.selectOrAddVP(p)
		sc.drag = dragNone

	case ToolPen, ToolMarker, ToolEraser, ToolMaskPen, ToolLine, ToolEllipse,
		ToolCrop, ToolPan, ToolZoom:
		// Dot strokes come through Dragged on desktop; single taps on the
		// drawing tools intentionally do nothing extra.
	}
}

// Scrolled zooms with the wheel in fixed steps.
func (sc *SketchCanvas) Scrolled(ev *fyne.ScrollEvent) {
	v := sc.state.View
	if ev.Scrolled.DY > 0 {
		v.Zoom *= zoomStep
	} else if ev.Scrolled.DY < 0 {
		v.Zoom /= zoomStep
	}
	sc.state.View = v.Clamp()
	sc.viewChanged()
}

// ApplyPinch feeds a two-finger gesture: the midpoint travel pans and the
// spread ratio zooms. The desktop driver delivers no multitouch events, so
// this is the integration point for a platform touch source (mobile driver
// or tablet input shim) that tracks the two contact points and calls in
// with consecutive snapshots on every move. Single-touch drawing is
// mutually exclusive with this path by touch count at that layer.
func (sc *SketchCanvas) ApplyPinch(prev, cur TouchPair) {
	pan, factor := PinchDelta(prev, cur)
	v := sc.state.View
	v.Pan = v.Pan.Add(pan)
	v.Zoom *= factor
	sc.state.View = v.Clamp()
	sc.viewChanged()
}

// MouseIn implements desktop.Hoverable.
func (sc *SketchCanvas) MouseIn(*desktop.MouseEvent) { sc.hovering = true }

// MouseMoved tracks the cursor for the curve tool's live preview.
func (sc *SketchCanvas) MouseMoved(ev *desktop.MouseEvent) {
	sc.hover = sc.toCanvas(screenPoint(ev.Position))
	if sc.tool == ToolCurve && sc.curve.Stage() != stroke.CurveAwaitStart {
		sc.Refresh()
	}
}

// MouseOut implements desktop.Hoverable.
func (sc *SketchCanvas) MouseOut() { sc.hovering = false }

// TypedKey handles Escape (reset in-progress input), Delete/Backspace
// (remove the active vanishing point or anchor), and Return (confirm crop).
func (sc *SketchCanvas) TypedKey(ev *fyne.KeyEvent) {
	switch ev.Name {
	case fyne.KeyEscape:
		sc.curve.Reset()
		sc.cancelCrop()
		sc.Refresh()

	case fyne.KeyDelete, fyne.KeyBackspace:
		if sc.tool == ToolPerspective && sc.activeVP >= 0 {
			sc.state.Doc.DeleteVanishingPoint(sc.activeVP)
			sc.activeVP = -1
			return
		}
		if sc.activeAnchorName != "" {
			_ = sc.state.Doc.RemoveAnchor(sc.activeAnchorLayer, sc.activeAnchorName)
			sc.activeAnchorName = ""
		}

	case fyne.KeyReturn, fyne.KeyEnter:
		sc.ConfirmCrop()
	}
}

// TypedRune implements fyne.Focusable.
func (sc *SketchCanvas) TypedRune(rune) {}

// FocusGained implements fyne.Focusable.
func (sc *SketchCanvas) FocusGained() {}

// FocusLost implements fyne.Focusable.
func (sc *SketchCanvas) FocusLost() {}

// ConfirmCrop applies the pending crop rectangle and resets the view so the
// new canvas lands centered at neutral zoom. Degenerate rectangles are
// rejected by the document and simply dismissed here.
func (sc *SketchCanvas) ConfirmCrop() {
	if !sc.cropPending {
		return
	}
	rect := sc.cropRect
	sc.cancelCrop()
	if err := sc.state.Doc.Crop(rect); err != nil {
		// Degenerate rectangles are rejected silently.
		sc.Refresh()
		return
	}
	sc.state.ResetView()
	sc.viewChanged()
}

func (sc *SketchCanvas) cancelCrop() {
	sc.cropRect = image.Rectangle{}
	sc.cropPending = false
}

// UndoActive undoes the last stroke on the active layer. Boundary no-ops
// are swallowed.
func (sc *SketchCanvas) UndoActive() {
	if err := sc.state.Doc.Undo(sc.state.Doc.ActiveLayer().ID); err != nil &&
		!errors.Is(err, doc.ErrNothingToUndo) {
		log.Warn().Err(err).Msg("undo failed")
	}
}

// RedoActive redoes the next stroke on the active layer.
func (sc *SketchCanvas) RedoActive() {
	if err := sc.state.Doc.Redo(sc.state.Doc.ActiveLayer().ID); err != nil &&
		!errors.Is(err, doc.ErrNothingToRedo) {
		log.Warn().Err(err).Msg("redo failed")
	}
}

// Interface guards.
var (
	_ fyne.Widget       = (*SketchCanvas)(nil)
	_ fyne.Draggable    = (*SketchCanvas)(nil)
	_ fyne.Tappable     = (*SketchCanvas)(nil)
	_ fyne.Scrollable   = (*SketchCanvas)(nil)
	_ fyne.Focusable    = (*SketchCanvas)(nil)
	_ desktop.Hoverable = (*SketchCanvas)(nil)
)
