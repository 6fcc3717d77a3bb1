package render

import "github.com/gdamore/tcell/v2"

// Palette
var (
	RgbBackground = tcell.NewRGBColor(16, 18, 24)
	RgbGround     = tcell.NewRGBColor(90, 80, 60)
	RgbBall       = tcell.NewRGBColor(240, 180, 60)
	RgbBallAsleep = tcell.NewRGBColor(120, 110, 90)
	RgbStatus     = tcell.NewRGBColor(200, 200, 210)
	RgbStatusBusy = tcell.NewRGBColor(120, 200, 255)
	RgbPaused     = tcell.NewRGBColor(255, 90, 90)
)
