package render

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/tickfork/component"
	"github.com/lixenwraith/tickfork/core"
	"github.com/lixenwraith/tickfork/engine"
	"github.com/lixenwraith/tickfork/status"
	"github.com/lixenwraith/tickfork/vmath"
)

// Viewport maps world space onto terminal cells
// World Y=0 sits on the ground row, X=0 is the center column
type Viewport struct {
	// CellsPerUnit is the vertical scale, horizontal is doubled for the cell aspect ratio
	CellsPerUnit float64
}

// DefaultViewport fits a scene about 10 units tall into a typical terminal
func DefaultViewport() Viewport {
	return Viewport{CellsPerUnit: 2}
}

// TerminalRenderer draws the presentation world from RenderTransform only
type TerminalRenderer struct {
	screen tcell.Screen
	view   Viewport
	width  int
	height int

	paused atomic.Bool

	// Cached metric pointers
	statTick    *atomic.Int64
	statForks   *atomic.Int64
	statBusy    *atomic.Bool
	statEpisode *status.AtomicFloat
}

// NewTerminalRenderer wraps an initialized screen; metrics may be nil
func NewTerminalRenderer(screen tcell.Screen, view Viewport, metrics *status.Registry) *TerminalRenderer {
	if metrics == nil {
		metrics = status.NewRegistry()
	}
	r := &TerminalRenderer{
		screen:      screen,
		view:        view,
		statTick:    metrics.Ints.Get("sim.current_tick"),
		statForks:   metrics.Ints.Get("sim.forks"),
		statBusy:    metrics.Bools.Get("sim.busy"),
		statEpisode: metrics.Floats.Get("sim.episode_ms"),
	}
	r.width, r.height = screen.Size()
	return r
}

// SetPaused toggles the paused marker in the status line
func (r *TerminalRenderer) SetPaused(paused bool) {
	r.paused.Store(paused)
}

// HandleResize picks up the new screen size
func (r *TerminalRenderer) HandleResize() {
	r.width, r.height = r.screen.Size()
	r.screen.Sync()
}

// groundRow is the last row above the status line
func (r *TerminalRenderer) groundRow() int {
	return r.height - 2
}

// Project returns the cell for a world position, false when off screen
func (r *TerminalRenderer) Project(p vmath.Vec3F) (int, int, bool) {
	x := r.width/2 + int(math.Round(p.X*r.view.CellsPerUnit*2))
	y := r.groundRow() - int(math.Round(p.Y*r.view.CellsPerUnit))
	if x < 0 || x >= r.width || y < 0 || y > r.groundRow() {
		return 0, 0, false
	}
	return x, y, true
}

// Draw renders one frame
func (r *TerminalRenderer) Draw(w *engine.World) {
	bg := tcell.StyleDefault.Background(RgbBackground)
	r.screen.Fill(' ', bg)
	if r.height < 3 || r.width < 10 {
		r.screen.Show()
		return
	}

	ground := bg.Foreground(RgbGround)
	for x := 0; x < r.width; x++ {
		r.screen.SetContent(x, r.groundRow(), '▀', nil, ground)
	}

	balls := 0
	engine.Components[component.RenderTransform](w).Each(func(e core.Entity, rt component.RenderTransform) {
		if !rt.Valid {
			return
		}
		x, y, ok := r.Project(rt.Translation)
		if !ok {
			return
		}
		style := bg.Foreground(RgbBall)
		if sl, ok := engine.GetComponent[component.Sleeping](w, e); ok && sl.Sleeping {
			style = bg.Foreground(RgbBallAsleep)
		}
		r.screen.SetContent(x, y, '●', nil, style)
		balls++
	})

	r.drawStatus(w, balls, bg)
	r.screen.Show()
}

func (r *TerminalRenderer) drawStatus(w *engine.World, balls int, bg tcell.Style) {
	tl := engine.SingleTimeline(w)
	text := fmt.Sprintf(" t=%7.2f x%-5.2f tick=%-6d forks=%-5d ep=%5.2fms balls=%d",
		tl.Timestamp, tl.Timescale, r.statTick.Load(), r.statForks.Load(), r.statEpisode.Get(), balls)

	style := bg.Foreground(RgbStatus)
	if r.statBusy.Load() {
		style = bg.Foreground(RgbStatusBusy)
	}
	col := r.drawText(0, r.height-1, text, style)
	if r.paused.Load() {
		r.drawText(col+1, r.height-1, "PAUSED", bg.Foreground(RgbPaused).Bold(true))
	}
}

func (r *TerminalRenderer) drawText(x, y int, text string, style tcell.Style) int {
	for _, ch := range text {
		if x >= r.width {
			break
		}
		r.screen.SetContent(x, y, ch, nil, style)
		x++
	}
	return x
}

// System draws in StageRender
func (r *TerminalRenderer) System() engine.System {
	return engine.Func(r.Draw)
}
