package doc

import (
	"fmt"
	"image"

	"layout-studio/internal/raster"
	"layout-studio/pkg/geometry"
)

// RefImage is a document-wide reference surface (the global scene reference
// or the edit-base image) with its own presentation settings. It is fitted
// into the canvas bounds at composite time, so it keeps its native size.
type RefImage struct {
	Image   image.Image
	Opacity float64
	Visible bool
}

// Document is the single source of truth for one drawing: canvas
// dimensions, the layer stack (bottom to top), vanishing points, reference
// images, and the lens preset tag. All mutations go through named
// operations; each fires the change hook exactly once.
type Document struct {
	width  int
	height int

	layers      []*Layer
	activeID    int
	nextLayerID int
	nameCounter int

	vps      []VanishingPoint
	nextVPID int

	GlobalRef RefImage
	EditBase  RefImage
	LensTag   string

	onChange func()
}

// New creates a document with one blank layer.
func New(width, height int) *Document {
	d := &Document{width: width, height: height}
	layer := d.allocLayer()
	d.layers = []*Layer{layer}
	d.activeID = layer.ID
	return d
}

// OnChange registers the hook invoked after every mutating operation. The
// application uses it to recomposite the preview and schedule the debounced
// emit/persist work.
func (d *Document) OnChange(fn func()) { d.onChange = fn }

func (d *Document) changed() {
	if d.onChange != nil {
		d.onChange()
	}
}

// Width returns the canvas width in pixels.
func (d *Document) Width() int { return d.width }

// Height returns the canvas height in pixels.
func (d *Document) Height() int { return d.height }

// Center returns the canvas center, the pivot for view rotation.
func (d *Document) Center() geometry.Point2D {
	return geometry.Point2D{X: float64(d.width) / 2, Y: float64(d.height) / 2}
}

// Layers returns the layer stack bottom to top. Callers must not reorder
// or mutate the slice; use the named operations.
func (d *Document) Layers() []*Layer { return d.layers }

// Layer returns the layer with the given id.
func (d *Document) Layer(id int) (*Layer, error) {
	for _, l := range d.layers {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, fmt.Errorf("layer %d: %w", id, ErrNoSuchLayer)
}

// ActiveLayer returns the currently selected layer.
func (d *Document) ActiveLayer() *Layer {
	l, err := d.Layer(d.activeID)
	if err != nil {
		// The active id always tracks an existing layer; fall back to the
		// top of the stack if it ever goes stale.
		return d.layers[len(d.layers)-1]
	}
	return l
}

// SetActiveLayer selects the layer the interaction layer draws on.
func (d *Document) SetActiveLayer(id int) error {
	if _, err := d.Layer(id); err != nil {
		return err
	}
	d.activeID = id
	return nil
}

func (d *Document) allocLayer() *Layer {
	d.nextLayerID++
	d.nameCounter++
	return newLayer(d.nextLayerID, fmt.Sprintf("Layer %d", d.nameCounter), d.width, d.height)
}

func (d *Document) indexOf(id int) int {
	for i, l := range d.layers {
		if l.ID == id {
			return i
		}
	}
	return -1
}

// AddLayer inserts a new blank layer immediately above the active layer,
// makes it active, and returns it.
func (d *Document) AddLayer() *Layer {
	layer := d.allocLayer()
	idx := d.indexOf(d.activeID)
	pos := idx + 1
	d.layers = append(d.layers, nil)
	copy(d.layers[pos+1:], d.layers[pos:])
	d.layers[pos] = layer
	d.activeID = layer.ID
	d.changed()
	return layer
}

// DeleteLayer removes a layer and its history. The last remaining layer
// cannot be deleted. Selection moves to the layer that was immediately
// below, or the new top layer when the bottom one was deleted.
func (d *Document) DeleteLayer(id int) error {
	if len(d.layers) <= 1 {
		return ErrLastLayer
	}
	idx := d.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("layer %d: %w", id, ErrNoSuchLayer)
	}
	d.layers = append(d.layers[:idx], d.layers[idx+1:]...)
	if d.activeID == id {
		sel := idx - 1
		if sel < 0 {
			sel = len(d.layers) - 1
		}
		d.activeID = d.layers[sel].ID
	}
	d.changed()
	return nil
}

// MergeDown composites the layer onto the one below it using the top
// layer's blend mode at full opacity, then deletes the top layer. The whole
// action is atomic: the surviving layer records exactly one history entry,
// so a single undo restores its pre-merge state.
func (d *Document) MergeDown(id int) error {
	idx := d.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("layer %d: %w", id, ErrNoSuchLayer)
	}
	if idx == 0 {
		return fmt.Errorf("merge down: %w", ErrLayerBoundary)
	}
	top := d.layers[idx]
	below := d.layers[idx-1]

	below.history.push(below.Buffer)
	raster.Merge(below.Buffer, top.Buffer, top.Blend)

	d.layers = append(d.layers[:idx], d.layers[idx+1:]...)
	if d.activeID == id {
		d.activeID = below.ID
	}
	d.changed()
	return nil
}

// MoveDirection selects the direction for MoveLayer.
type MoveDirection int

const (
	MoveUp MoveDirection = iota
	MoveDown
)

// MoveLayer swaps a layer with its neighbor in stacking order. Moving past
// the top or bottom of the stack is a boundary no-op.
func (d *Document) MoveLayer(id int, dir MoveDirection) error {
	idx := d.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("layer %d: %w", id, ErrNoSuchLayer)
	}
	other := idx + 1
	if dir == MoveDown {
		other = idx - 1
	}
	if other < 0 || other >= len(d.layers) {
		return ErrLayerBoundary
	}
	d.layers[idx], d.layers[other] = d.layers[other], d.layers[idx]
	d.changed()
	return nil
}

// BeginStroke snapshots the layer's raster before a mutating stroke begins.
// Exactly one call per gesture, not one per pointer-move sample.
func (d *Document) BeginStroke(layerID int) error {
	l, err := d.Layer(layerID)
	if err != nil {
		return err
	}
	l.history.push(l.Buffer)
	return nil
}

// CommitStroke marks the end of a mutating gesture and fires the change
// hook. Gestures that skipped BeginStroke (mask painting has no undo
// history) still call it so the edit reaches the preview, the emission
// debouncer, and persistence.
func (d *Document) CommitStroke() {
	d.changed()
}

// Undo steps the layer's history back one snapshot and repaints the buffer
// from it. At the boundary it reports ErrNothingToUndo and changes nothing.
func (d *Document) Undo(layerID int) error {
	l, err := d.Layer(layerID)
	if err != nil {
		return err
	}
	snap, err := l.history.undo(l.Buffer)
	if err != nil {
		return err
	}
	l.Buffer = snap
	d.changed()
	return nil
}

// Redo steps the layer's history forward one snapshot.
func (d *Document) Redo(layerID int) error {
	l, err := d.Layer(layerID)
	if err != nil {
		return err
	}
	snap, err := l.history.redo()
	if err != nil {
		return err
	}
	l.Buffer = snap
	d.changed()
	return nil
}

// PlaceAnchor places a character point on the layer at the given fractional
// position. Placing with a name that already exists on the layer relocates
// the existing point instead of duplicating it. An empty name defaults to
// the layer's name.
func (d *Document) PlaceAnchor(layerID int, name string, fx, fy float64) (*AnchorPoint, error) {
	l, err := d.Layer(layerID)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = l.Name
	}
	for _, a := range l.Anchors {
		if a.Name == name {
			a.X, a.Y = fx, fy
			d.changed()
			return a, nil
		}
	}
	a := &AnchorPoint{
		Name:   name,
		X:      fx,
		Y:      fy,
		Radius: DefaultAnchorRadius,
		Color:  anchorPalette[len(l.Anchors)%len(anchorPalette)],
	}
	l.Anchors = append(l.Anchors, a)
	d.changed()
	return a, nil
}

// RemoveAnchor deletes the named point from the layer. Unknown names are a
// no-op.
func (d *Document) RemoveAnchor(layerID int, name string) error {
	l, err := d.Layer(layerID)
	if err != nil {
		return err
	}
	for i, a := range l.Anchors {
		if a.Name == name {
			l.Anchors = append(l.Anchors[:i], l.Anchors[i+1:]...)
			d.changed()
			return nil
		}
	}
	return nil
}

// SetAnchorRadius adjusts a point's influence radius (percent of canvas
// width).
func (d *Document) SetAnchorRadius(layerID int, name string, radius float64) error {
	l, err := d.Layer(layerID)
	if err != nil {
		return err
	}
	for _, a := range l.Anchors {
		if a.Name == name {
			a.Radius = radius
			d.changed()
			return nil
		}
	}
	return nil
}

// AttachStyleRef appends an uploaded style-reference image to the layer.
func (d *Document) AttachStyleRef(layerID int, ref *StyleRef) error {
	l, err := d.Layer(layerID)
	if err != nil {
		return err
	}
	l.Refs = append(l.Refs, ref)
	d.changed()
	return nil
}

// SetLayerVisible toggles a layer's visibility.
func (d *Document) SetLayerVisible(id int, visible bool) error {
	l, err := d.Layer(id)
	if err != nil {
		return err
	}
	l.Visible = visible
	d.changed()
	return nil
}

// SetLayerOpacity sets a layer's opacity, clamped to [0,1].
func (d *Document) SetLayerOpacity(id int, opacity float64) error {
	l, err := d.Layer(id)
	if err != nil {
		return err
	}
	if opacity < 0 {
		opacity = 0
	} else if opacity > 1 {
		opacity = 1
	}
	l.Opacity = opacity
	d.changed()
	return nil
}

// SetLayerBlend sets a layer's blend mode.
func (d *Document) SetLayerBlend(id int, mode raster.BlendMode) error {
	l, err := d.Layer(id)
	if err != nil {
		return err
	}
	l.Blend = mode
	d.changed()
	return nil
}

// SetGlobalRef installs the scene-wide reference image and fires the change
// hook so the preview and the debounced emit/persist work pick it up.
func (d *Document) SetGlobalRef(ref RefImage) {
	d.GlobalRef = ref
	d.changed()
}

// SetEditBase installs the edit-base surface the generated result paints
// over.
func (d *Document) SetEditBase(ref RefImage) {
	d.EditBase = ref
	d.changed()
}

// SetLensTag records the selected camera-framing preset.
func (d *Document) SetLensTag(tag string) {
	d.LensTag = tag
	d.changed()
}

// Clone returns a deep copy safe to read from another goroutine while the
// original keeps mutating. Layer buffers, style-ref masks, anchors, and
// vanishing points are copied; decoded reference images are shared because
// they are immutable once loaded. The clone carries no history and no
// change hook.
func (d *Document) Clone() *Document {
	c := &Document{
		width:       d.width,
		height:      d.height,
		activeID:    d.activeID,
		nextLayerID: d.nextLayerID,
		nameCounter: d.nameCounter,
		nextVPID:    d.nextVPID,
		GlobalRef:   d.GlobalRef,
		EditBase:    d.EditBase,
		LensTag:     d.LensTag,
	}
	c.vps = append([]VanishingPoint(nil), d.vps...)
	c.layers = make([]*Layer, len(d.layers))
	for i, l := range d.layers {
		buf := raster.CloneRGBA(l.Buffer)
		cl := &Layer{
			ID:      l.ID,
			Name:    l.Name,
			Visible: l.Visible,
			Opacity: l.Opacity,
			Blend:   l.Blend,
			Buffer:  buf,
			history: newHistory(buf),
		}
		for _, r := range l.Refs {
			cl.Refs = append(cl.Refs, &StyleRef{
				Name:  r.Name,
				Image: r.Image,
				Mask:  raster.CloneRGBA(r.Mask),
			})
		}
		for _, a := range l.Anchors {
			ca := *a
			cl.Anchors = append(cl.Anchors, &ca)
		}
		c.layers[i] = cl
	}
	return c
}

// CompositeInputs builds the deterministic bottom-to-top composite stack:
// global reference, edit base, then every layer in stack order.
func (d *Document) CompositeInputs() []raster.Input {
	inputs := make([]raster.Input, 0, len(d.layers)+2)
	inputs = append(inputs, raster.Input{
		Image:   d.GlobalRef.Image,
		Opacity: d.GlobalRef.Opacity,
		Visible: d.GlobalRef.Visible && d.GlobalRef.Image != nil,
		Fit:     true,
	})
	inputs = append(inputs, raster.Input{
		Image:   d.EditBase.Image,
		Opacity: d.EditBase.Opacity,
		Visible: d.EditBase.Visible && d.EditBase.Image != nil,
		Fit:     true,
	})
	for _, l := range d.layers {
		inputs = append(inputs, raster.Input{
			Image:   l.Buffer,
			Opacity: l.Opacity,
			Mode:    l.Blend,
			Visible: l.Visible,
		})
	}
	return inputs
}

// Composite renders the current preview surface.
func (d *Document) Composite() *image.RGBA {
	return raster.Composite(d.width, d.height, d.CompositeInputs())
}

// VisibleBuffers returns the raster buffers of all visible layers, for the
// sketch bounding-box scan.
func (d *Document) VisibleBuffers() []*image.RGBA {
	var bufs []*image.RGBA
	for _, l := range d.layers {
		if l.Visible {
			bufs = append(bufs, l.Buffer)
		}
	}
	return bufs
}
