// Package main provides the entry point for the Layout Studio application.
package main

import (
	"os"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"layout-studio/internal/app"
	"layout-studio/internal/project"
	"layout-studio/internal/version"
	"layout-studio/ui/mainwindow"
	"layout-studio/ui/prefs"
)

const appTitle = "Layout Studio"

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	log.Info().Str("version", version.Version).Str("commit", version.GitCommit).
		Msgf("starting %s", appTitle)

	fyneApp := fyneapp.NewWithID("io.layoutstudio.app")
	fyneApp.Settings().SetTheme(&app.StudioTheme{})

	appPrefs := prefs.Load()

	store := project.OpenDefault()
	if len(os.Args) > 1 {
		store = project.Open(os.Args[1])
	}

	state := app.NewState(app.LoadOrNew(store), store, nil)

	win := mainwindow.New(fyneApp, state, appPrefs, nil)
	win.SetTitle(appTitle)

	setupHotReload(win)

	win.ShowAndRun()
}

// setupHotReload configures automatic restart detection when the binary is
// recompiled.
func setupHotReload(win *mainwindow.MainWindow) {
	reloader := app.NewHotReloader(2 * time.Second)
	if reloader == nil {
		log.Info().Msg("hot reload: unable to determine executable path")
		return
	}
	log.Info().Str("path", reloader.ExecPath()).Msg("hot reload: watching binary")

	reloader.OnNewBinary(func() {
		log.Info().Msg("hot reload: newer binary detected")
		fyne.Do(func() { promptRestart(reloader, win) })
	})

	reloader.Start()
}

func promptRestart(reloader *app.HotReloader, win *mainwindow.MainWindow) {
	dlg := dialog.NewConfirm(
		"New Version Available",
		"The application binary has been updated.\nRestart now?",
		func(restart bool) {
			if !restart {
				reloader.ResetBaseline()
				reloader.Start()
				return
			}
			log.Info().Msg("hot reload: restarting")
			if err := reloader.Restart(); err != nil {
				log.Error().Err(err).Msg("hot reload: restart failed")
			}
		},
		win.Window,
	)
	dlg.Show()
}
