package doc

import (
	"image"
	"image/color"
	"testing"

	"layout-studio/internal/raster"
	"layout-studio/internal/stroke"
	"layout-studio/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pt(x, y float64) geometry.Point2D { return geometry.Point2D{X: x, Y: y} }

// drawDot performs one complete mutating gesture on the active layer.
func drawDot(t *testing.T, d *Document, x, y float64) {
	t.Helper()
	l := d.ActiveLayer()
	require.NoError(t, d.BeginStroke(l.ID))
	stroke.SmoothPath(l.Buffer, []geometry.Point2D{pt(x, y)}, color.RGBA{A: 255}, 6)
	d.CommitStroke()
}

func TestNewDocumentHasOneBlankLayer(t *testing.T) {
	d := New(320, 240)
	require.Len(t, d.Layers(), 1)
	l := d.ActiveLayer()
	assert.Equal(t, "Layer 1", l.Name)
	assert.True(t, l.Visible)
	assert.Equal(t, 1.0, l.Opacity)
	assert.Equal(t, raster.BlendNormal, l.Blend)
	assert.Equal(t, 320, l.Buffer.Bounds().Dx())
	_, hasContent := raster.ContentBounds([]*image.RGBA{l.Buffer})
	assert.False(t, hasContent)
}

func TestAddLayerInsertsAboveActive(t *testing.T) {
	d := New(100, 100)
	first := d.ActiveLayer()

	added := d.AddLayer()
	require.Len(t, d.Layers(), 2)
	assert.Equal(t, added.ID, d.ActiveLayer().ID, "new layer becomes active")
	assert.Equal(t, first.ID, d.Layers()[0].ID)
	assert.Equal(t, added.ID, d.Layers()[1].ID, "new layer sits directly above the previously active one")
	assert.Equal(t, "Layer 2", added.Name)

	// Adding above a middle layer inserts mid-stack.
	require.NoError(t, d.SetActiveLayer(first.ID))
	mid := d.AddLayer()
	assert.Equal(t, []int{first.ID, mid.ID, added.ID}, layerIDs(d))
}

func layerIDs(d *Document) []int {
	ids := make([]int, len(d.Layers()))
	for i, l := range d.Layers() {
		ids[i] = l.ID
	}
	return ids
}

func TestDeleteLayer(t *testing.T) {
	d := New(100, 100)
	assert.ErrorIs(t, d.DeleteLayer(d.ActiveLayer().ID), ErrLastLayer)

	bottom := d.ActiveLayer()
	top := d.AddLayer()
	require.NoError(t, d.DeleteLayer(top.ID))
	assert.Equal(t, bottom.ID, d.ActiveLayer().ID, "selection falls to the layer below")
	require.Len(t, d.Layers(), 1)

	// Deleting the bottom layer selects the new top.
	top = d.AddLayer()
	require.NoError(t, d.DeleteLayer(bottom.ID))
	assert.Equal(t, top.ID, d.ActiveLayer().ID)
}

func TestMoveLayerBoundaries(t *testing.T) {
	d := New(100, 100)
	a := d.ActiveLayer()
	b := d.AddLayer()

	assert.ErrorIs(t, d.MoveLayer(b.ID, MoveUp), ErrLayerBoundary)
	assert.ErrorIs(t, d.MoveLayer(a.ID, MoveDown), ErrLayerBoundary)

	require.NoError(t, d.MoveLayer(a.ID, MoveUp))
	assert.Equal(t, []int{b.ID, a.ID}, layerIDs(d))
}

func TestUndoRedoRoundTrip(t *testing.T) {
	d := New(64, 64)
	l := d.ActiveLayer()
	blank := raster.CloneRGBA(l.Buffer)

	const n = 5
	for i := 0; i < n; i++ {
		drawDot(t, d, float64(10+i*8), 32)
	}
	final := raster.CloneRGBA(d.ActiveLayer().Buffer)
	assert.False(t, raster.EqualPix(blank, final))

	for i := 0; i < n; i++ {
		require.NoError(t, d.Undo(l.ID), "undo %d", i)
	}
	assert.True(t, raster.EqualPix(blank, d.ActiveLayer().Buffer),
		"undoing every stroke restores the blank raster byte for byte")

	for i := 0; i < n; i++ {
		require.NoError(t, d.Redo(l.ID), "redo %d", i)
	}
	assert.True(t, raster.EqualPix(final, d.ActiveLayer().Buffer),
		"redoing every stroke restores the final raster byte for byte")
}

func TestUndoRedoBoundariesAreSignaledNoops(t *testing.T) {
	d := New(32, 32)
	l := d.ActiveLayer()
	assert.ErrorIs(t, d.Undo(l.ID), ErrNothingToUndo)
	assert.ErrorIs(t, d.Redo(l.ID), ErrNothingToRedo)

	drawDot(t, d, 16, 16)
	require.NoError(t, d.Undo(l.ID))
	require.NoError(t, d.Redo(l.ID))
	assert.ErrorIs(t, d.Redo(l.ID), ErrNothingToRedo)
}

func TestHistoryCapEviction(t *testing.T) {
	d := New(32, 32)
	l := d.ActiveLayer()
	for i := 0; i < HistoryCap*3; i++ {
		drawDot(t, d, float64(i%30), float64(i%30))
	}
	assert.LessOrEqual(t, l.HistoryDepth(), HistoryCap,
		"stack length never exceeds the cap regardless of operation count")
	assert.True(t, l.CanUndo())
}

func TestMergeDownMultiply(t *testing.T) {
	d := New(16, 16)
	a := d.ActiveLayer()
	raster.Fill(a.Buffer, color.RGBA{R: 200, G: 200, B: 200, A: 255})

	b := d.AddLayer()
	raster.Fill(b.Buffer, color.RGBA{R: 128, G: 128, B: 128, A: 255})
	require.NoError(t, d.SetLayerBlend(b.ID, raster.BlendMultiply))

	preDepth := a.HistoryDepth()
	require.NoError(t, d.MergeDown(b.ID))

	_, err := d.Layer(b.ID)
	assert.ErrorIs(t, err, ErrNoSuchLayer, "merged layer no longer exists")
	assert.InDelta(t, 100, int(a.Buffer.RGBAAt(8, 8).R), 1, "raster reflects the multiply composite")
	assert.Equal(t, preDepth+1, a.HistoryDepth(), "exactly one new history entry")
	assert.Equal(t, a.ID, d.ActiveLayer().ID)

	// The merge is atomic for undo: one step restores the pre-merge pixels.
	require.NoError(t, d.Undo(a.ID))
	assert.Equal(t, uint8(200), a.Buffer.RGBAAt(8, 8).R)
}

func TestMergeDownBottomLayerRejected(t *testing.T) {
	d := New(16, 16)
	assert.ErrorIs(t, d.MergeDown(d.ActiveLayer().ID), ErrLayerBoundary)
}

func TestPlaceAnchorFractionalRoundTrip(t *testing.T) {
	d := New(1000, 619)
	l := d.ActiveLayer()

	// Pixel (250, 123) on a 1000x619 canvas.
	a, err := d.PlaceAnchor(l.ID, "hero", 250.0/1000*100, 123.0/619*100)
	require.NoError(t, err)
	assert.InDelta(t, 25.0, a.X, 1e-9)
	assert.InDelta(t, 19.8707592892, a.Y, 1e-6)

	x, y := a.PixelPos(d.Width(), d.Height())
	assert.InDelta(t, 250, x, 1e-9)
	assert.InDelta(t, 123, y, 1e-9)

	require.NoError(t, d.Resize(2000, 1238))
	x, y = a.PixelPos(d.Width(), d.Height())
	assert.InDelta(t, 500, x, 1e-9, "anchor re-resolves proportionally after resize")
	assert.InDelta(t, 246, y, 1e-9)
}

func TestPlaceAnchorRelocatesSameName(t *testing.T) {
	d := New(100, 100)
	l := d.ActiveLayer()
	_, err := d.PlaceAnchor(l.ID, "", 10, 10)
	require.NoError(t, err)
	require.Len(t, l.Anchors, 1)
	assert.Equal(t, l.Name, l.Anchors[0].Name, "name defaults to the owning layer")

	moved, err := d.PlaceAnchor(l.ID, l.Name, 60, 70)
	require.NoError(t, err)
	assert.Len(t, l.Anchors, 1, "re-placing with the same name relocates, not duplicates")
	assert.Equal(t, 60.0, moved.X)

	require.NoError(t, d.RemoveAnchor(l.ID, l.Name))
	assert.Empty(t, l.Anchors)
}

func TestVanishingPointOps(t *testing.T) {
	d := New(200, 200)
	id1, err := d.AddVanishingPoint(pt(10, 10))
	require.NoError(t, err)
	_, err = d.AddVanishingPoint(pt(100, 10))
	require.NoError(t, err)
	_, err = d.AddVanishingPoint(pt(50, 150))
	require.NoError(t, err)
	_, err = d.AddVanishingPoint(pt(0, 0))
	assert.ErrorIs(t, err, ErrTooManyPoints)

	require.NoError(t, d.MoveVanishingPoint(id1, pt(20, 30)))
	assert.Equal(t, pt(20, 30), d.VanishingPoints()[0].Pos)

	got, ok := d.VanishingPointNear(pt(22, 31), 5)
	require.True(t, ok)
	assert.Equal(t, id1, got)
	_, ok = d.VanishingPointNear(pt(80, 80), 5)
	assert.False(t, ok)

	d.DeleteVanishingPoint(id1)
	assert.Len(t, d.VanishingPoints(), 2)
}

func TestSetGlobalRefFiresChangeHook(t *testing.T) {
	d := New(64, 64)
	var changes int
	d.OnChange(func() { changes++ })

	ref := image.NewRGBA(image.Rect(0, 0, 8, 8))
	d.SetGlobalRef(RefImage{Image: ref, Opacity: 0.5, Visible: true})
	assert.Equal(t, 1, changes)
	assert.Equal(t, ref, d.GlobalRef.Image)

	d.SetEditBase(RefImage{Image: ref, Opacity: 1, Visible: true})
	assert.Equal(t, 2, changes)
}

func TestCloneIsIndependent(t *testing.T) {
	d := New(64, 64)
	drawDot(t, d, 20, 20)
	l := d.ActiveLayer()
	_, err := d.PlaceAnchor(l.ID, "hero", 30, 40)
	require.NoError(t, err)
	_, err = d.AddVanishingPoint(pt(10, 10))
	require.NoError(t, err)
	require.NoError(t, d.AttachStyleRef(l.ID, &StyleRef{
		Name: "pose",
		Mask: image.NewRGBA(image.Rect(0, 0, 8, 8)),
	}))

	c := d.Clone()
	require.Len(t, c.Layers(), 1)
	cl := c.Layers()[0]
	assert.True(t, raster.EqualPix(l.Buffer, cl.Buffer))

	// Mutations after the clone must not show through.
	l.Buffer.SetRGBA(5, 5, color.RGBA{R: 255, A: 255})
	l.Anchors[0].X = 99
	l.Refs[0].Mask.SetRGBA(1, 1, color.RGBA{G: 255, A: 255})
	require.NoError(t, d.MoveVanishingPoint(d.VanishingPoints()[0].ID, pt(50, 50)))

	assert.Equal(t, uint8(0), cl.Buffer.RGBAAt(5, 5).R)
	assert.Equal(t, 30.0, cl.Anchors[0].X)
	assert.Equal(t, uint8(0), cl.Refs[0].Mask.RGBAAt(1, 1).G)
	assert.Equal(t, pt(10, 10), c.VanishingPoints()[0].Pos)

	// The clone carries no change hook and no shared history.
	c.SetLensTag("35mm")
	assert.Empty(t, d.LensTag)
	assert.ErrorIs(t, c.Undo(cl.ID), ErrNothingToUndo)
}
