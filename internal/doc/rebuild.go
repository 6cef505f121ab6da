package doc

import (
	"image"

	"layout-studio/internal/raster"
)

// LayerSeed carries the persisted state of one layer for Rebuild.
type LayerSeed struct {
	Name    string
	Visible bool
	Opacity float64
	Blend   raster.BlendMode
	Buffer  *image.RGBA
	Refs    []*StyleRef
	Anchors []*AnchorPoint
}

// NameCounter exposes the default-name counter for persistence.
func (d *Document) NameCounter() int { return d.nameCounter }

// Rebuild reconstructs a document from persisted state. Layer and
// vanishing-point ids are reassigned; each layer's history is reseeded with
// its restored raster. The bottom layer starts active.
func Rebuild(width, height int, seeds []LayerSeed, vpPositions []VanishingPoint, nameCounter int, lensTag string) *Document {
	d := &Document{
		width:       width,
		height:      height,
		nameCounter: nameCounter,
		LensTag:     lensTag,
	}
	for _, seed := range seeds {
		d.nextLayerID++
		buf := seed.Buffer
		if buf == nil || buf.Bounds().Dx() != width || buf.Bounds().Dy() != height {
			buf = raster.NewCanvas(width, height)
		}
		l := &Layer{
			ID:      d.nextLayerID,
			Name:    seed.Name,
			Visible: seed.Visible,
			Opacity: seed.Opacity,
			Blend:   seed.Blend,
			Buffer:  buf,
			Refs:    seed.Refs,
			Anchors: seed.Anchors,
			history: newHistory(buf),
		}
		d.layers = append(d.layers, l)
	}
	if len(d.layers) == 0 {
		d.layers = []*Layer{d.allocLayer()}
	}
	d.activeID = d.layers[0].ID

	for _, vp := range vpPositions {
		if len(d.vps) >= MaxVanishingPoints {
			break
		}
		d.nextVPID++
		d.vps = append(d.vps, VanishingPoint{ID: d.nextVPID, Pos: vp.Pos})
	}
	return d
}
