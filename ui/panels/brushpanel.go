package panels

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"layout-studio/internal/stroke"
	"layout-studio/pkg/colorutil"
	"layout-studio/ui/canvas"
)

// brushColors maps the selectable stroke colors. The three axis colors
// participate in vanishing-point snapping; the rest are plain paint.
var brushColors = []struct {
	Name  string
	Color color.RGBA
}{
	{"Black", colorutil.Black},
	{"White", colorutil.White},
	{"Axis Red", colorutil.AxisRed},
	{"Axis Green", colorutil.AxisGreen},
	{"Axis Blue", colorutil.AxisBlue},
}

var maskChannels = []struct {
	Name    string
	Channel stroke.MaskChannel
}{
	{"Front (red)", stroke.MaskFront},
	{"Side (green)", stroke.MaskSide},
	{"Back (blue)", stroke.MaskBack},
}

// BrushPanel adjusts the shared brush settings: color, size, pen velocity
// sensitivity, marker stamp options, and the mask-pen channel.
type BrushPanel struct {
	sketch *canvas.SketchCanvas
	box    fyne.CanvasObject
}

// NewBrushPanel builds the brush controls bound to the canvas brush.
func NewBrushPanel(sketch *canvas.SketchCanvas) *BrushPanel {
	bp := &BrushPanel{sketch: sketch}
	brush := sketch.Brush()

	colorNames := make([]string, len(brushColors))
	for i, c := range brushColors {
		colorNames[i] = c.Name
	}
	colorSel := widget.NewSelect(colorNames, func(name string) {
		for _, c := range brushColors {
			if c.Name == name {
				brush.Color = c.Color
				return
			}
		}
	})
	colorSel.SetSelected("Black")

	size := widget.NewSlider(1, 64)
	size.Step = 1
	size.SetValue(brush.Size)
	size.OnChanged = func(v float64) { brush.Size = v }

	sensitivity := widget.NewSlider(0, 1)
	sensitivity.Step = 0.05
	sensitivity.SetValue(brush.Sensitivity)
	sensitivity.OnChanged = func(v float64) { brush.Sensitivity = v }

	markerShape := widget.NewSelect([]string{"Rectangle", "Circle"}, func(name string) {
		if name == "Circle" {
			brush.Marker.Shape = stroke.MarkerCircle
		} else {
			brush.Marker.Shape = stroke.MarkerRect
		}
	})
	markerShape.SetSelected("Rectangle")

	markerOpacity := widget.NewSlider(0.05, 1)
	markerOpacity.Step = 0.05
	markerOpacity.SetValue(brush.Marker.Opacity)
	markerOpacity.OnChanged = func(v float64) { brush.Marker.Opacity = v }

	markerRotation := widget.NewSlider(0, 90)
	markerRotation.Step = 5
	markerRotation.SetValue(brush.Marker.Rotation)
	markerRotation.OnChanged = func(v float64) { brush.Marker.Rotation = v }

	maskNames := make([]string, len(maskChannels))
	for i, m := range maskChannels {
		maskNames[i] = m.Name
	}
	maskSel := widget.NewSelect(maskNames, func(name string) {
		for _, m := range maskChannels {
			if m.Name == name {
				brush.Mask = m.Channel
				return
			}
		}
	})
	maskSel.SetSelected(maskNames[0])

	anchorName := widget.NewEntry()
	anchorName.SetPlaceHolder("character name")
	anchorName.OnChanged = sketch.SetAnchorName

	bp.box = container.NewVBox(
		widget.NewLabel("Brush"),
		widget.NewLabel("Color"), colorSel,
		widget.NewLabel("Size"), size,
		widget.NewLabel("Sensitivity"), sensitivity,
		widget.NewLabel("Marker shape"), markerShape,
		widget.NewLabel("Marker opacity"), markerOpacity,
		widget.NewLabel("Marker rotation"), markerRotation,
		widget.NewLabel("Mask channel"), maskSel,
		widget.NewLabel("Anchor"), anchorName,
	)
	return bp
}

// Container returns the panel's root object for embedding.
func (bp *BrushPanel) Container() fyne.CanvasObject { return bp.box }
