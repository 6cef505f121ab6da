package project

import (
	"encoding/json"
	"image/color"
	"path/filepath"
	"testing"

	"layout-studio/internal/doc"
	"layout-studio/internal/raster"
	"layout-studio/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	d := doc.New(120, 80)
	d.SetLensTag("50mm")
	l := d.ActiveLayer()
	l.Buffer.SetRGBA(10, 20, color.RGBA{R: 200, G: 100, B: 50, A: 255})
	require.NoError(t, d.SetLayerOpacity(l.ID, 0.7))
	require.NoError(t, d.SetLayerBlend(l.ID, raster.BlendScreen))
	_, err := d.PlaceAnchor(l.ID, "hero", 30, 40)
	require.NoError(t, err)
	_, err = d.AddVanishingPoint(geometry.Point2D{X: 60, Y: 10})
	require.NoError(t, err)
	top := d.AddLayer()
	top.Buffer.SetRGBA(5, 5, color.RGBA{B: 255, A: 255})

	f, err := Snapshot(d)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, f.Version)

	// Through JSON, as the store would do.
	blob, err := json.Marshal(f)
	require.NoError(t, err)
	var back DocumentFile
	require.NoError(t, json.Unmarshal(blob, &back))

	restored := Restore(&back)
	assert.Equal(t, 120, restored.Width())
	assert.Equal(t, 80, restored.Height())
	assert.Equal(t, "50mm", restored.LensTag)
	require.Len(t, restored.Layers(), 2)

	rl := restored.Layers()[0]
	assert.Equal(t, l.Name, rl.Name)
	assert.Equal(t, 0.7, rl.Opacity)
	assert.Equal(t, raster.BlendScreen, rl.Blend)
	assert.Equal(t, color.RGBA{R: 200, G: 100, B: 50, A: 255}, rl.Buffer.RGBAAt(10, 20))
	require.Len(t, rl.Anchors, 1)
	assert.Equal(t, "hero", rl.Anchors[0].Name)

	require.Len(t, restored.VanishingPoints(), 1)
	assert.Equal(t, geometry.Point2D{X: 60, Y: 10}, restored.VanishingPoints()[0].Pos)

	// PNG round trip preserves opaque pixels exactly.
	assert.Equal(t, top.Buffer.RGBAAt(5, 5), restored.Layers()[1].Buffer.RGBAAt(5, 5))
}

func TestRestoreUpgradesLegacySingleStyleRef(t *testing.T) {
	d := doc.New(32, 32)
	ref := raster.NewCanvas(8, 8)
	require.NoError(t, d.AttachStyleRef(d.ActiveLayer().ID, &doc.StyleRef{Name: "settei", Image: ref}))
	f, err := Snapshot(d)
	require.NoError(t, err)

	// Rewrite the snapshot as a version-1 document with the legacy field.
	legacy := f.Layers[0].Refs[0]
	f.Layers[0].Refs = nil
	f.Layers[0].StyleRef = &legacy
	f.Version = 1

	restored := Restore(f)
	refs := restored.Layers()[0].Refs
	require.Len(t, refs, 1, "legacy single reference upgrades to the multi-reference list")
	assert.Equal(t, "settei", refs[0].Name)
}

func TestRestoreCorruptRasterFallsBackBlank(t *testing.T) {
	d := doc.New(40, 40)
	f, err := Snapshot(d)
	require.NoError(t, err)
	f.Layers[0].Raster = "not-base64!"

	restored := Restore(f)
	require.Len(t, restored.Layers(), 1)
	buf := restored.Layers()[0].Buffer
	assert.Equal(t, 40, buf.Bounds().Dx(), "corrupt layer restores as a blank canvas-sized raster")
}

func TestStorePutGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	s := Open(path)

	require.NoError(t, s.Put("greeting", "hello"))
	require.NoError(t, s.Put("count", 3))

	// Re-open from disk.
	s2 := Open(path)
	var greeting string
	found, err := s2.Get("greeting", &greeting)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "hello", greeting)

	var missing int
	found, err = s2.Get("absent", &missing)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s2.Delete("greeting"))
	found, _ = Open(path).Get("greeting", &greeting)
	assert.False(t, found)
}

func TestStoreDocumentKeyRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	s := Open(path)

	d := doc.New(64, 48)
	f, err := Snapshot(d)
	require.NoError(t, err)
	require.NoError(t, s.Put(DocumentKey, f))

	var back DocumentFile
	found, err := Open(path).Get(DocumentKey, &back)
	require.NoError(t, err)
	require.True(t, found)
	restored := Restore(&back)
	assert.Equal(t, 64, restored.Width())
	assert.Equal(t, 48, restored.Height())
}
