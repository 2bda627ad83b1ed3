package render

import (
	"math"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-dronestrike/pkg/mission"
	"github.com/opd-ai/go-dronestrike/pkg/physics"
)

// Canvas is the drawing surface. tcell.Screen satisfies it.
type Canvas interface {
	Size() (int, int)
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	Show()
}

// hudLines is the number of text rows reserved below the play field.
const hudLines = 3

// wreckFlashFrames is how many frames a freshly destroyed entity burns.
const wreckFlashFrames = 12

type cell struct {
	r     rune
	style tcell.Style
}

var (
	styleDefault   = tcell.StyleDefault
	styleGround    = tcell.StyleDefault.Foreground(tcell.ColorOlive)
	styleObstacle  = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	styleMetal     = tcell.StyleDefault.Foreground(tcell.ColorSteelBlue)
	styleTarget    = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleWreck     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleBonus     = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleDrone     = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleExplosion = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleSuccess   = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleFail      = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
)

// droneGlyphs point along the body axis, clockwise from east (screen y grows down).
var droneGlyphs = [8]rune{'→', '↘', '↓', '↙', '←', '↖', '↑', '↗'}

// TerminalRenderer draws missions as text cells, scaling the mission
// viewport to fit the canvas above a small HUD.
type TerminalRenderer struct {
	canvas Canvas
	width  int
	height int
	buffer [][]cell
	scaleX float64
	scaleY float64

	// wrecks holds the flash frames left per destroyed entity. Entity ids
	// never repeat, so one renderer can draw successive missions.
	wrecks map[uint64]int
}

// NewTerminalRenderer creates a renderer drawing on canvas.
func NewTerminalRenderer(canvas Canvas) *TerminalRenderer {
	return &TerminalRenderer{canvas: canvas, wrecks: make(map[uint64]int)}
}

// Render implements Renderer.
func (r *TerminalRenderer) Render(s *mission.State) {
	if s == nil {
		return
	}
	r.resize()
	r.Clear()
	if r.fieldHeight() > 0 {
		r.setScale(s.Bounds)
		r.drawGround(s)
		r.drawObstacles(s)
		r.drawTargets(s)
		r.drawBonuses(s)
		r.drawExplosion(s)
		r.drawDrone(s)
	}
	r.drawHUD(s)
	r.Present()
}

// resize matches the buffer to the canvas.
func (r *TerminalRenderer) resize() {
	w, h := r.canvas.Size()
	if w == r.width && h == r.height && r.buffer != nil {
		return
	}
	r.width, r.height = max(w, 0), max(h, 0)
	r.buffer = make([][]cell, r.height)
	for i := range r.buffer {
		r.buffer[i] = make([]cell, r.width)
	}
}

func (r *TerminalRenderer) fieldHeight() int {
	return r.height - hudLines
}

func (r *TerminalRenderer) setScale(v mission.Viewport) {
	r.scaleX = v.Width / float64(max(r.width, 1))
	r.scaleY = v.Height / float64(max(r.fieldHeight(), 1))
}

// worldToScreen converts world coordinates to a field cell.
func (r *TerminalRenderer) worldToScreen(pos physics.Vector2D) (int, int) {
	return int(math.Floor(pos.X / r.scaleX)), int(math.Floor(pos.Y / r.scaleY))
}

// cellCenter returns the world position of a cell's center.
func (r *TerminalRenderer) cellCenter(x, y int) physics.Vector2D {
	return physics.Vector2D{X: (float64(x) + 0.5) * r.scaleX, Y: (float64(y) + 0.5) * r.scaleY}
}

// Clear blanks the buffer.
func (r *TerminalRenderer) Clear() {
	for y := range r.buffer {
		for x := range r.buffer[y] {
			r.buffer[y][x] = cell{' ', styleDefault}
		}
	}
}

// Present copies the buffer to the canvas and shows it.
func (r *TerminalRenderer) Present() {
	for y := range r.buffer {
		for x, c := range r.buffer[y] {
			r.canvas.SetContent(x, y, c.r, nil, c.style)
		}
	}
	r.canvas.Show()
}

// set writes a field cell, ignoring anything outside the field.
func (r *TerminalRenderer) set(x, y int, ch rune, style tcell.Style) {
	if x < 0 || x >= r.width || y < 0 || y >= r.fieldHeight() {
		return
	}
	r.buffer[y][x] = cell{ch, style}
}

func (r *TerminalRenderer) drawGround(s *mission.State) {
	_, top := r.worldToScreen(physics.Vector2D{Y: s.GroundY})
	for y := max(top, 0); y < r.fieldHeight(); y++ {
		ch := '░'
		if y == top {
			ch = '='
		}
		for x := 0; x < r.width; x++ {
			r.set(x, y, ch, styleGround)
		}
	}
}

func (r *TerminalRenderer) drawObstacles(s *mission.State) {
	for _, o := range s.Obstacles {
		if o.Destroyed {
			c := o.Rect.Center()
			x, y := r.worldToScreen(c)
			r.set(x, y, ',', r.wreckStyle(o.Entity))
			continue
		}
		ch, style := '#', styleObstacle
		switch o.Material {
		case mission.MaterialMetal:
			ch, style = '▓', styleMetal
		case mission.MaterialConcrete:
			ch = '█'
		}
		x0, y0 := r.worldToScreen(physics.Vector2D{X: o.Rect.X, Y: o.Rect.Y})
		x1, y1 := r.worldToScreen(physics.Vector2D{X: o.Rect.X + o.Rect.Width, Y: o.Rect.Y + o.Rect.Height})
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				r.set(x, y, ch, style)
			}
		}
	}
}

func (r *TerminalRenderer) drawTargets(s *mission.State) {
	for _, t := range s.Targets {
		if t.Destroyed {
			x, y := r.worldToScreen(t.Center)
			r.set(x, y, 'x', r.wreckStyle(t.Entity))
			continue
		}
		r.fillCircle(physics.Circle{Center: t.Center, Radius: t.Radius}, 'o', styleTarget)
		x, y := r.worldToScreen(t.Center)
		r.set(x, y, targetGlyph(t.TargetType), styleTarget.Bold(true))
	}
}

// wreckStyle burns a destroyed entity for wreckFlashFrames frames from the
// first frame it is drawn destroyed, then greys it out.
func (r *TerminalRenderer) wreckStyle(entity uint64) tcell.Style {
	left, seen := r.wrecks[entity]
	if !seen {
		left = wreckFlashFrames
	}
	if left == 0 {
		return styleWreck
	}
	r.wrecks[entity] = left - 1
	return styleExplosion
}

func targetGlyph(targetType string) rune {
	for _, ch := range strings.ToUpper(targetType) {
		return ch
	}
	return 'T'
}

func (r *TerminalRenderer) drawBonuses(s *mission.State) {
	for _, b := range s.BonusItems {
		if b.Collected {
			continue
		}
		x, y := r.worldToScreen(b.Center)
		r.set(x, y, '+', styleBonus)
	}
}

func (r *TerminalRenderer) drawExplosion(s *mission.State) {
	if s.Explosion == nil {
		return
	}
	r.fillCircle(physics.Circle{Center: s.Explosion.Position, Radius: s.Explosion.Radius}, '*', styleExplosion)
}

func (r *TerminalRenderer) drawDrone(s *mission.State) {
	d := s.Drone
	x, y := r.worldToScreen(d.Position)
	if d.Destroyed {
		if s.Explosion == nil {
			r.set(x, y, 'X', styleWreck)
		}
		return
	}
	r.set(x, y, droneGlyph(d.Angle), styleDrone)
}

func droneGlyph(angle float64) rune {
	i := int(math.Round(angle/(math.Pi/4))) % len(droneGlyphs)
	if i < 0 {
		i += len(droneGlyphs)
	}
	return droneGlyphs[i]
}

// fillCircle marks every cell whose center lies inside c, and always the
// cell holding c's center.
func (r *TerminalRenderer) fillCircle(c physics.Circle, ch rune, style tcell.Style) {
	x0, y0 := r.worldToScreen(physics.Vector2D{X: c.Center.X - c.Radius, Y: c.Center.Y - c.Radius})
	x1, y1 := r.worldToScreen(physics.Vector2D{X: c.Center.X + c.Radius, Y: c.Center.Y + c.Radius})
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if r.cellCenter(x, y).Distance(c.Center) <= c.Radius {
				r.set(x, y, ch, style)
			}
		}
	}
	x, y := r.worldToScreen(c.Center)
	r.set(x, y, ch, style)
}

func (r *TerminalRenderer) drawHUD(s *mission.State) {
	top := max(r.fieldHeight(), 0)
	lines := HUD(s)
	for i, line := range lines {
		style := styleDefault
		if i == len(lines)-1 {
			switch s.Status {
			case mission.StatusSuccess:
				style = styleSuccess
			case mission.StatusFail:
				style = styleFail
			}
		}
		r.drawText(0, top+i, line, style)
	}
}

func (r *TerminalRenderer) drawText(x, y int, text string, style tcell.Style) {
	if y < 0 || y >= r.height {
		return
	}
	for _, ch := range text {
		if x >= r.width {
			return
		}
		if x >= 0 {
			r.buffer[y][x] = cell{ch, style}
		}
		x++
	}
}
