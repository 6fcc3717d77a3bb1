package main

import (
	"log/slog"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/tickfork/engine"
)

// pauser is the part of the frame clock the keyboard controls
type pauser interface {
	Toggle() bool
}

type pauseIndicator interface {
	SetPaused(bool)
}

// input maps keys onto clock controls
type input struct {
	scene    *scene
	clock    pauser
	renderer pauseIndicator
}

var _ pauser = (*engine.PausableClock)(nil)

// handleKey applies one key event, false requests exit
func (in *input) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyRune:
		return in.handleRune(ev.Rune())
	default:
		return true
	}
}

// handleRune applies one typed character, false requests exit
func (in *input) handleRune(r rune) bool {
	step := in.scene.cfg.Frame.TimescaleStep
	switch r {
	case 'q':
		return false
	case ' ':
		paused := in.clock.Toggle()
		if in.renderer != nil {
			in.renderer.SetPaused(paused)
		}
		slog.Debug("pause toggled", "paused", paused)
	case '+', '=':
		ts := in.scene.adjustTimescale(step)
		slog.Debug("timescale changed", "timescale", ts)
	case '-', '_':
		ts := in.scene.adjustTimescale(-step)
		slog.Debug("timescale changed", "timescale", ts)
	case 'r':
		ts := in.scene.reverseTimescale()
		slog.Debug("timescale reversed", "timescale", ts)
	}
	return true
}
