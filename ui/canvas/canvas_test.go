package canvas

import (
	"image"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"layout-studio/internal/app"
	"layout-studio/internal/doc"
	"layout-studio/pkg/colorutil"
	"layout-studio/pkg/geometry"
)

func newTestCanvas(t *testing.T, w, h int) *SketchCanvas {
	t.Helper()
	test.NewApp()
	state := app.NewState(doc.New(w, h), nil, nil)
	return NewSketchCanvas(state)
}

func dragTo(sc *SketchCanvas, x, y float32) {
	sc.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)}})
}

func TestToolDispatchExhaustive(t *testing.T) {
	for _, tool := range Tools() {
		assert.NotEqual(t, "unknown", tool.String(), "tool %d has no name", tool)
		if tool.IsFreehand() {
			assert.True(t, tool.Draws(), "%s: freehand tools mutate the raster", tool)
		}
	}
	assert.False(t, Tool(len(toolNames)).IsFreehand())
	assert.Equal(t, "unknown", Tool(len(toolNames)).String())
}

func TestPenDragCommitsSingleUndoableStroke(t *testing.T) {
	sc := newTestCanvas(t, 400, 300)
	sc.SetTool(ToolPen)

	// At the neutral view, screen coordinates equal canvas coordinates.
	dragTo(sc, 50, 50)
	dragTo(sc, 60, 55)
	dragTo(sc, 70, 60)
	sc.DragEnd()

	layer := sc.State().Doc.ActiveLayer()
	assert.True(t, layer.CanUndo(), "the gesture must have pushed one snapshot")
	assert.NotZero(t, layer.Buffer.RGBAAt(50, 50).A, "stroke landed on the layer")

	sc.UndoActive()
	assert.Zero(t, layer.Buffer.RGBAAt(50, 50).A, "one undo removes the whole gesture")
}

func TestMaskPenDragFiresChangeHook(t *testing.T) {
	sc := newTestCanvas(t, 400, 300)
	st := sc.State()
	layer := st.Doc.ActiveLayer()
	require.NoError(t, st.Doc.AttachStyleRef(layer.ID, &doc.StyleRef{Name: "pose"}))
	sc.SetTool(ToolMaskPen)

	var changes int
	st.OnPreview(func(*image.RGBA) { changes++ })

	dragTo(sc, 50, 50)
	dragTo(sc, 60, 55)
	sc.DragEnd()

	ref := layer.Refs[0]
	require.NotNil(t, ref.Mask, "mask surface allocated on first paint")
	assert.NotZero(t, ref.Mask.RGBAAt(50, 50).R, "front channel painted")
	assert.NotZero(t, changes, "mask edits schedule the change machinery")
	assert.False(t, layer.CanUndo(), "mask painting records no layer history")
}

func TestCropDragThenConfirm(t *testing.T) {
	sc := newTestCanvas(t, 400, 300)
	sc.SetTool(ToolCrop)

	dragTo(sc, 10, 10)
	dragTo(sc, 210, 160)
	sc.DragEnd()
	require.True(t, sc.cropPending)

	sc.ConfirmCrop()
	assert.Equal(t, 200, sc.State().Doc.Width())
	assert.Equal(t, 150, sc.State().Doc.Height())
	assert.Equal(t, 1.0, sc.State().View.Zoom, "view resets after crop")
}

func TestCropEscapeCancels(t *testing.T) {
	sc := newTestCanvas(t, 400, 300)
	sc.SetTool(ToolCrop)

	dragTo(sc, 10, 10)
	dragTo(sc, 210, 160)
	sc.DragEnd()

	sc.TypedKey(&fyne.KeyEvent{Name: fyne.KeyEscape})
	assert.False(t, sc.cropPending)

	sc.ConfirmCrop()
	assert.Equal(t, 400, sc.State().Doc.Width(), "cancelled crop leaves dimensions alone")
}

func TestScrubbyZoomDrag(t *testing.T) {
	sc := newTestCanvas(t, 400, 300)
	sc.SetTool(ToolZoom)

	dragTo(sc, 100, 100)
	dragTo(sc, 260, 100)
	sc.DragEnd()

	assert.Greater(t, sc.State().View.Zoom, 1.0)
}

func TestPanDrag(t *testing.T) {
	sc := newTestCanvas(t, 400, 300)
	sc.SetTool(ToolPan)

	dragTo(sc, 100, 100)
	dragTo(sc, 140, 130)
	sc.DragEnd()

	assert.InDelta(t, 40, sc.State().View.Pan.X, 1e-9)
	assert.InDelta(t, 30, sc.State().View.Pan.Y, 1e-9)
}

func TestLineSnapGatedOnAxisColor(t *testing.T) {
	sc := newTestCanvas(t, 400, 300)
	_, err := sc.State().Doc.AddVanishingPoint(geometry.Point2D{X: 100, Y: 100})
	require.NoError(t, err)
	sc.SetTool(ToolLine)

	// Non-axis color: the endpoint stays where the cursor is.
	dragTo(sc, 0, 0)
	dragTo(sc, 90, 95)
	assert.Equal(t, -1, sc.snapVP)
	sc.DragEnd()
	sc.UndoActive()

	// Axis color within the threshold: endpoint snaps onto the ray
	// through the vanishing point.
	sc.Brush().Color = colorutil.AxisRed
	dragTo(sc, 0, 0)
	dragTo(sc, 90, 95)
	assert.Equal(t, 0, sc.snapVP)
	cross := sc.lineEnd.Cross(geometry.Point2D{X: 100, Y: 100})
	assert.InDelta(t, 0, cross, 1e-6, "snapped endpoint is collinear with start and the point")
	sc.DragEnd()
}

func TestPerspectiveToolPlacesAndDrags(t *testing.T) {
	sc := newTestCanvas(t, 400, 300)
	sc.SetTool(ToolPerspective)

	dragTo(sc, 120, 80)
	dragTo(sc, 150, 90)
	sc.DragEnd()

	vps := sc.State().Doc.VanishingPoints()
	require.Len(t, vps, 1)
	assert.InDelta(t, 150, vps[0].Pos.X, 1e-9)
	assert.InDelta(t, 90, vps[0].Pos.Y, 1e-9)

	// Delete removes the active point.
	sc.TypedKey(&fyne.KeyEvent{Name: fyne.KeyDelete})
	assert.Empty(t, sc.State().Doc.VanishingPoints())
}

func TestAnchorTapPlacesFractionalPoint(t *testing.T) {
	sc := newTestCanvas(t, 400, 300)
	sc.SetTool(ToolAnchor)

	sc.Tapped(&fyne.PointEvent{Position: fyne.NewPos(100, 75)})

	layer := sc.State().Doc.ActiveLayer()
	require.Len(t, layer.Anchors, 1)
	assert.InDelta(t, 25, layer.Anchors[0].X, 1e-9)
	assert.InDelta(t, 25, layer.Anchors[0].Y, 1e-9)
}

func TestGuideTargetsFanCoverage(t *testing.T) {
	targets := guideTargets(400, 300)
	// 4 corners plus 3 positions along each of the 4 edges.
	assert.Len(t, targets, 16)
}

func TestResizeHandleDragGrowsCanvas(t *testing.T) {
	sc := newTestCanvas(t, 400, 300)
	sc.SetTool(ToolPan)

	// Grab the bottom-right corner handle and pull outward.
	dragTo(sc, 400, 300)
	dragTo(sc, 500, 420)
	sc.DragEnd()

	assert.Equal(t, 500, sc.State().Doc.Width())
	assert.Equal(t, 420, sc.State().Doc.Height())
}
