// Package app owns application-level state: the live document, the view
// transform, the composited preview, and the debounced emit/persist
// boundaries.
package app

import (
	"image"
	"sync"

	"github.com/rs/zerolog/log"

	"layout-studio/internal/ai"
	"layout-studio/internal/doc"
	"layout-studio/internal/project"
	"layout-studio/pkg/geometry"
)

// Default canvas dimensions for a fresh document.
const (
	DefaultCanvasWidth  = 1000
	DefaultCanvasHeight = 619
)

// Receiver consumes the debounced sketch payload. The AI collaborator's
// client implements it in the host application.
type Receiver interface {
	SketchUpdated(p ai.Payload)
}

// State holds the live document and the machinery that reacts to its
// changes: synchronous recompositing plus trailing-edge debounced payload
// emission and persistence.
type State struct {
	mu sync.RWMutex

	Doc  *doc.Document
	View geometry.ViewTransform

	preview *image.RGBA

	// snapshot is a deep copy of the document captured synchronously at
	// every change, so the debouncer goroutines never read the live
	// document while the UI keeps mutating it.
	snapshot *doc.Document

	store    *project.Store
	receiver Receiver

	emit    *Debouncer
	persist *Debouncer

	autosave bool

	onPreview func(*image.RGBA)
}

// NewState wires a document into the application machinery. receiver may be
// nil when no collaborator is attached.
func NewState(d *doc.Document, store *project.Store, receiver Receiver) *State {
	s := &State{
		Doc:      d,
		View:     geometry.NewViewTransform(),
		store:    store,
		receiver: receiver,
		autosave: true,
	}
	s.emit = NewDebouncer(EmitDelay, s.emitPayload)
	s.persist = NewDebouncer(PersistDelay, s.persistDocument)
	d.OnChange(s.documentChanged)
	s.captureSnapshot()
	s.Recomposite()
	return s
}

// LoadOrNew restores the persisted document from the store, or starts a
// fresh one when nothing (or something corrupt) is stored.
func LoadOrNew(store *project.Store) *doc.Document {
	var f project.DocumentFile
	found, err := store.Get(project.DocumentKey, &f)
	if err != nil {
		log.Warn().Err(err).Msg("stored document unreadable, starting fresh")
		return doc.New(DefaultCanvasWidth, DefaultCanvasHeight)
	}
	if !found {
		return doc.New(DefaultCanvasWidth, DefaultCanvasHeight)
	}
	return project.Restore(&f)
}

// OnPreview registers the hook invoked (synchronously, on the mutating
// goroutine) whenever the composited preview is rebuilt.
func (s *State) OnPreview(fn func(*image.RGBA)) { s.onPreview = fn }

// documentChanged is the document's change hook: snapshot and recomposite
// now, on the mutating goroutine, then schedule the debounced boundaries.
func (s *State) documentChanged() {
	s.captureSnapshot()
	s.Recomposite()
	s.emit.Trigger()
	if s.autosave {
		s.persist.Trigger()
	}
}

// captureSnapshot publishes a copy of the document for the timer goroutines.
func (s *State) captureSnapshot() {
	snap := s.Doc.Clone()
	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()
}

func (s *State) currentSnapshot() *doc.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// SetAutosave toggles the debounced persistence of edits. Shutdown and
// explicit saves are unaffected.
func (s *State) SetAutosave(enabled bool) {
	s.autosave = enabled
	if !enabled {
		s.persist.Stop()
	}
}

// Recomposite rebuilds the preview surface from the current document.
func (s *State) Recomposite() {
	preview := s.Doc.Composite()
	s.mu.Lock()
	s.preview = preview
	s.mu.Unlock()
	if s.onPreview != nil {
		s.onPreview(preview)
	}
}

// Preview returns the latest composited surface.
func (s *State) Preview() *image.RGBA {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.preview
}

// emitPayload hands the last-captured sketch snapshot to the collaborator.
// It runs on the debouncer's timer goroutine and never touches the live
// document.
func (s *State) emitPayload() {
	if s.receiver == nil {
		return
	}
	p, err := ai.BuildPayload(s.currentSnapshot())
	if err != nil {
		log.Warn().Err(err).Msg("emit: payload build failed")
		return
	}
	s.receiver.SketchUpdated(p)
}

// persistDocument serializes the last-captured snapshot to the store under
// its fixed key. Store failures are logged, never fatal.
func (s *State) persistDocument() {
	if s.store == nil {
		return
	}
	f, err := project.Snapshot(s.currentSnapshot())
	if err != nil {
		log.Warn().Err(err).Msg("persist: snapshot failed")
		return
	}
	if err := s.store.Put(project.DocumentKey, f); err != nil {
		log.Warn().Err(err).Msg("persist: store write failed")
	}
}

// SaveNow persists the document immediately, regardless of the autosave
// setting. It runs on the UI goroutine, so it recaptures the snapshot first
// to pick up edits whose debounce window has not elapsed.
func (s *State) SaveNow() {
	s.persist.Stop()
	s.captureSnapshot()
	s.persistDocument()
}

// Shutdown flushes pending persistence so the last edits reach disk.
func (s *State) Shutdown() {
	s.emit.Stop()
	s.persist.Flush()
}

// ApplyGeneratedImage installs an image returned by the collaborator as
// the edit-base surface, visible under the sketch layers.
func (s *State) ApplyGeneratedImage(img image.Image) {
	s.Doc.SetEditBase(doc.RefImage{Image: img, Opacity: 1, Visible: true})
}

// ReplaceDocument swaps in a new document, rewiring the change hook and
// scheduling persistence so the swap itself reaches disk.
func (s *State) ReplaceDocument(d *doc.Document) {
	s.Doc = d
	d.OnChange(s.documentChanged)
	s.documentChanged()
}

// ResetView restores the neutral pan/zoom/rotation, used after a crop.
func (s *State) ResetView() {
	s.View = geometry.NewViewTransform()
}
