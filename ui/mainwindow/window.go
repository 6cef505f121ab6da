// Package mainwindow assembles the application window: toolbar, sketch
// canvas, side panels, shortcuts, and the collaborator actions.
package mainwindow

import (
	"context"
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog/log"

	"layout-studio/internal/ai"
	"layout-studio/internal/app"
	"layout-studio/internal/doc"
	"layout-studio/ui/canvas"
	"layout-studio/ui/panels"
	"layout-studio/ui/prefs"
)

const (
	prefKeyLensTag   = "lensTag"
	prefKeyAutosave  = "autosave"
	prefKeyWinWidth  = "windowWidth"
	prefKeyWinHeight = "windowHeight"
)

// Camera-framing presets forwarded to the collaborator with every payload.
var lensTags = []string{
	"24mm wide",
	"35mm",
	"50mm standard",
	"85mm portrait",
	"135mm telephoto",
}

const collaboratorTimeout = 90 * time.Second

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app    fyne.App
	state  *app.State
	prefs  *prefs.Prefs
	collab ai.Collaborator

	sketch    *canvas.SketchCanvas
	layers    *panels.LayersPanel
	brush     *panels.BrushPanel
	statusBar *widget.Label
}

// New builds the window. collab may be nil when no AI backend is
// configured; the generate/analyze actions then report that in the status
// bar instead of acting.
func New(fyneApp fyne.App, state *app.State, p *prefs.Prefs, collab ai.Collaborator) *MainWindow {
	win := fyneApp.NewWindow("Layout Studio")

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		prefs:  p,
		collab: collab,
	}

	state.SetAutosave(p.Bool(prefKeyAutosave, true))

	mw.setupUI()
	mw.setupMenus()
	mw.setupShortcuts()
	mw.restoreWindow()

	win.SetCloseIntercept(func() {
		mw.persistWindow()
		state.Shutdown()
		win.Close()
	})
	return mw
}

func (mw *MainWindow) setupUI() {
	mw.sketch = canvas.NewSketchCanvas(mw.state)
	mw.layers = panels.NewLayersPanel(mw.sketch, mw.Window)
	mw.brush = panels.NewBrushPanel(mw.sketch)
	mw.statusBar = widget.NewLabel("Ready")

	mw.sketch.OnViewChange(func() {
		mw.updateStatus(fmt.Sprintf("zoom %.0f%%", mw.state.View.Zoom*100))
	})

	side := container.NewVSplit(mw.layers.Container(), container.NewVScroll(mw.brush.Container()))
	side.SetOffset(0.5)

	canvasArea := container.NewBorder(
		mw.makeToolbar(), // top
		nil, nil, nil,
		mw.sketch,
	)

	split := container.NewHSplit(side, canvasArea)
	split.SetOffset(0.22)

	content := container.NewBorder(
		nil,
		container.NewPadded(mw.statusBar),
		nil, nil,
		split,
	)
	mw.SetContent(content)
}

func (mw *MainWindow) makeToolbar() fyne.CanvasObject {
	objects := make([]fyne.CanvasObject, 0, len(canvas.Tools())+6)
	for _, tool := range canvas.Tools() {
		t := tool
		objects = append(objects, widget.NewButton(t.String(), func() {
			mw.sketch.SetTool(t)
			mw.updateStatus("tool: " + t.String())
		}))
	}

	lens := widget.NewSelect(lensTags, func(tag string) {
		mw.state.Doc.SetLensTag(tag)
		mw.prefs.SetString(prefKeyLensTag, tag)
	})
	switch {
	case mw.state.Doc.LensTag != "":
		lens.SetSelected(mw.state.Doc.LensTag)
	case mw.prefs.String(prefKeyLensTag) != "":
		lens.SetSelected(mw.prefs.String(prefKeyLensTag))
	default:
		lens.SetSelected(lensTags[2])
	}

	objects = append(objects,
		widget.NewSeparator(),
		widget.NewLabel("Lens:"), lens,
		widget.NewButton("Generate", mw.onGenerate),
		widget.NewButton("Analyze", mw.onAnalyze),
	)
	return container.NewHScroll(container.NewHBox(objects...))
}

func (mw *MainWindow) setupMenus() {
	autosaveItem := fyne.NewMenuItem("Autosave", nil)
	autosaveItem.Checked = mw.prefs.Bool(prefKeyAutosave, true)
	autosaveItem.Action = func() {
		autosaveItem.Checked = !autosaveItem.Checked
		mw.state.SetAutosave(autosaveItem.Checked)
		mw.prefs.SetBool(prefKeyAutosave, autosaveItem.Checked)
	}
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("New Document", mw.onNewDocument),
		fyne.NewMenuItem("Save", func() {
			mw.state.SaveNow()
			mw.updateStatus("saved")
		}),
		autosaveItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)
	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", mw.onUndo),
		fyne.NewMenuItem("Redo", mw.onRedo),
	)
	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Reset View", func() {
			mw.state.ResetView()
			mw.sketch.Refresh()
		}),
	)
	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, viewMenu))
}

func (mw *MainWindow) setupShortcuts() {
	c := mw.Canvas()
	c.AddShortcut(&desktop.CustomShortcut{
		KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierControl,
	}, func(fyne.Shortcut) { mw.onUndo() })
	c.AddShortcut(&desktop.CustomShortcut{
		KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierControl | fyne.KeyModifierShift,
	}, func(fyne.Shortcut) { mw.onRedo() })
	c.SetOnTypedKey(mw.sketch.TypedKey)
}

func (mw *MainWindow) onUndo() {
	mw.sketch.UndoActive()
	mw.layers.Refresh()
}

func (mw *MainWindow) onRedo() {
	mw.sketch.RedoActive()
	mw.layers.Refresh()
}

func (mw *MainWindow) onNewDocument() {
	mw.state.ReplaceDocument(doc.New(app.DefaultCanvasWidth, app.DefaultCanvasHeight))
	mw.state.ResetView()
	mw.layers.Refresh()
	mw.sketch.Refresh()
	mw.updateStatus("new document")
}

func (mw *MainWindow) onGenerate() {
	if mw.collab == nil {
		mw.updateStatus("no AI collaborator configured")
		return
	}
	payload, err := ai.BuildPayload(mw.state.Doc)
	if err != nil {
		mw.updateStatus("payload build failed")
		log.Warn().Err(err).Msg("generate: payload build failed")
		return
	}
	mw.updateStatus("generating...")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), collaboratorTimeout)
		defer cancel()
		img, err := mw.collab.Generate(ctx, payload)
		if err != nil {
			log.Warn().Err(err).Msg("generate failed")
			fyne.Do(func() { mw.updateStatus("generate failed") })
			return
		}
		// The document is only ever mutated on the UI goroutine.
		fyne.Do(func() {
			mw.state.ApplyGeneratedImage(img)
			mw.updateStatus("generated image applied")
		})
	}()
}

func (mw *MainWindow) onAnalyze() {
	if mw.collab == nil {
		mw.updateStatus("no AI collaborator configured")
		return
	}
	payload, err := ai.BuildPayload(mw.state.Doc)
	if err != nil {
		mw.updateStatus("payload build failed")
		log.Warn().Err(err).Msg("analyze: payload build failed")
		return
	}
	mw.updateStatus("analyzing...")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), collaboratorTimeout)
		defer cancel()
		text, err := mw.collab.Analyze(ctx, payload)
		if err != nil {
			log.Warn().Err(err).Msg("analyze failed")
			fyne.Do(func() { mw.updateStatus("analyze failed") })
			return
		}
		fyne.Do(func() { mw.updateStatus(text) })
	}()
}

func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func (mw *MainWindow) restoreWindow() {
	w := float32(mw.prefs.Float(prefKeyWinWidth, 1280))
	h := float32(mw.prefs.Float(prefKeyWinHeight, 800))
	mw.Resize(fyne.NewSize(w, h))
}

func (mw *MainWindow) persistWindow() {
	size := mw.Canvas().Size()
	mw.prefs.SetFloat(prefKeyWinWidth, float64(size.Width))
	mw.prefs.SetFloat(prefKeyWinHeight, float64(size.Height))
	if err := mw.prefs.Save(); err != nil {
		log.Warn().Err(err).Msg("saving preferences failed")
	}
}
