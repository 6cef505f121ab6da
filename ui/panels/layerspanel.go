// Package panels holds the side-panel widgets: layer stack management and
// brush settings.
package panels

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog/log"

	"layout-studio/internal/doc"
	"layout-studio/internal/raster"
	"layout-studio/ui/canvas"
)

// LayersPanel manages the layer stack: selection, visibility, opacity,
// blend mode, ordering, and reference-image attachment.
type LayersPanel struct {
	sketch *canvas.SketchCanvas
	win    fyne.Window

	list    *widget.List
	opacity *widget.Slider
	blend   *widget.Select
	box     fyne.CanvasObject
}

// NewLayersPanel builds the panel over the sketch canvas's document.
func NewLayersPanel(sketch *canvas.SketchCanvas, win fyne.Window) *LayersPanel {
	lp := &LayersPanel{sketch: sketch, win: win}
	d := sketch.State().Doc

	lp.list = widget.NewList(
		func() int { return len(d.Layers()) },
		func() fyne.CanvasObject {
			check := widget.NewCheck("", nil)
			label := widget.NewLabel("layer")
			return container.NewHBox(check, label)
		},
		func(i widget.ListItemID, item fyne.CanvasObject) {
			layer := lp.layerAt(i)
			if layer == nil {
				return
			}
			row := item.(*fyne.Container)
			check := row.Objects[0].(*widget.Check)
			label := row.Objects[1].(*widget.Label)
			check.SetChecked(layer.Visible)
			check.OnChanged = func(v bool) {
				_ = d.SetLayerVisible(layer.ID, v)
			}
			label.SetText(layer.Name)
		},
	)
	lp.list.OnSelected = func(i widget.ListItemID) {
		if layer := lp.layerAt(i); layer != nil {
			_ = d.SetActiveLayer(layer.ID)
			lp.syncControls()
		}
	}

	lp.opacity = widget.NewSlider(0, 1)
	lp.opacity.Step = 0.05
	lp.opacity.OnChanged = func(v float64) {
		_ = d.SetLayerOpacity(d.ActiveLayer().ID, v)
	}

	lp.blend = widget.NewSelect(blendNames(), func(name string) {
		mode, err := raster.ParseBlendMode(name)
		if err != nil {
			return
		}
		_ = d.SetLayerBlend(d.ActiveLayer().ID, mode)
	})

	addBtn := widget.NewButton("Add", func() {
		d.AddLayer()
		lp.Refresh()
	})
	deleteBtn := widget.NewButton("Delete", func() {
		if err := d.DeleteLayer(d.ActiveLayer().ID); err != nil {
			log.Debug().Err(err).Msg("delete layer rejected")
		}
		lp.Refresh()
	})
	mergeBtn := widget.NewButton("Merge Down", func() {
		if err := d.MergeDown(d.ActiveLayer().ID); err != nil {
			log.Debug().Err(err).Msg("merge down rejected")
		}
		lp.Refresh()
	})
	upBtn := widget.NewButton("Up", func() {
		_ = d.MoveLayer(d.ActiveLayer().ID, doc.MoveUp)
		lp.Refresh()
	})
	downBtn := widget.NewButton("Down", func() {
		_ = d.MoveLayer(d.ActiveLayer().ID, doc.MoveDown)
		lp.Refresh()
	})
	refBtn := widget.NewButton("Attach Ref...", lp.openStyleRef)
	globalBtn := widget.NewButton("Scene Ref...", lp.openGlobalRef)

	lp.box = container.NewBorder(
		widget.NewLabel("Layers"),
		container.NewVBox(
			container.NewGridWithColumns(3, addBtn, deleteBtn, mergeBtn),
			container.NewGridWithColumns(2, upBtn, downBtn),
			widget.NewLabel("Opacity"), lp.opacity,
			widget.NewLabel("Blend"), lp.blend,
			container.NewGridWithColumns(2, refBtn, globalBtn),
		),
		nil, nil,
		lp.list,
	)
	lp.Refresh()
	return lp
}

// Container returns the panel's root object for embedding.
func (lp *LayersPanel) Container() fyne.CanvasObject { return lp.box }

// layerAt maps a list row to a layer: row 0 is the top of the stack.
func (lp *LayersPanel) layerAt(i int) *doc.Layer {
	layers := lp.sketch.State().Doc.Layers()
	idx := len(layers) - 1 - i
	if idx < 0 || idx >= len(layers) {
		return nil
	}
	return layers[idx]
}

// Refresh reloads the list and the per-layer controls after any stack
// mutation.
func (lp *LayersPanel) Refresh() {
	d := lp.sketch.State().Doc
	lp.list.Refresh()
	layers := d.Layers()
	active := d.ActiveLayer()
	for i := range layers {
		if lp.layerAt(i) == active {
			lp.list.Select(i)
			break
		}
	}
	lp.syncControls()
}

func (lp *LayersPanel) syncControls() {
	active := lp.sketch.State().Doc.ActiveLayer()
	lp.opacity.SetValue(active.Opacity)
	lp.blend.SetSelected(active.Blend.String())
}

// openStyleRef attaches an uploaded style-reference image to the active
// layer. Decode failures leave the layer untouched.
func (lp *LayersPanel) openStyleRef() {
	dialog.ShowFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		defer rc.Close()
		img, _, err := image.Decode(rc)
		if err != nil {
			log.Warn().Err(err).Str("uri", rc.URI().String()).Msg("style ref decode failed")
			return
		}
		d := lp.sketch.State().Doc
		ref := &doc.StyleRef{Name: rc.URI().Name(), Image: img}
		if err := d.AttachStyleRef(d.ActiveLayer().ID, ref); err != nil {
			log.Warn().Err(err).Msg("attach style ref failed")
		}
	}, lp.win)
}

// openGlobalRef loads the document-wide scene reference image.
func (lp *LayersPanel) openGlobalRef() {
	dialog.ShowFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		defer rc.Close()
		img, _, err := image.Decode(rc)
		if err != nil {
			log.Warn().Err(err).Str("uri", rc.URI().String()).Msg("scene ref decode failed")
			return
		}
		st := lp.sketch.State()
		st.Doc.SetGlobalRef(doc.RefImage{Image: img, Opacity: 0.5, Visible: true})
	}, lp.win)
}

// blendNames lists the selectable blend modes in declaration order.
func blendNames() []string {
	modes := raster.BlendModes()
	names := make([]string, len(modes))
	for i, m := range modes {
		names[i] = m.String()
	}
	return names
}

// LayerSummary formats the stack for status displays.
func LayerSummary(d *doc.Document) string {
	return fmt.Sprintf("%d layers, active %q", len(d.Layers()), d.ActiveLayer().Name)
}
