// Package view draws a running simulation on a terminal: a status line, the
// grid, and a tail of recent agent events.
package view

import (
	"fmt"

	"github.com/gdamore/tcell"

	"github.com/borkshop/roomba/internal/grid"
	"github.com/borkshop/roomba/internal/point"
	"github.com/borkshop/roomba/internal/roomba"
	"github.com/borkshop/roomba/internal/stats"
)

// World is what the renderer needs from a simulation.
type World interface {
	Grid() *grid.Grid
	Agents() []*roomba.Agent
	Snapshot() stats.Snapshot
}

// Glyphs.
const (
	GlyphFloor    = '.'
	GlyphDirt     = '*'
	GlyphStation  = '+'
	GlyphObstacle = '#'
	GlyphAgent    = '@'
	GlyphDead     = 'x'
)

var (
	styleFloor    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleDirt     = tcell.StyleDefault.Foreground(tcell.ColorOlive)
	styleStation  = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	styleObstacle = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleHeader   = tcell.StyleDefault.Bold(true)
)

func agentStyle(a *roomba.Agent) tcell.Style {
	switch {
	case a.Dead:
		return tcell.StyleDefault.Foreground(tcell.ColorRed)
	case a.Charging:
		return tcell.StyleDefault.Foreground(tcell.ColorBlue)
	case a.State == roomba.SeekingCharger:
		return tcell.StyleDefault.Foreground(tcell.ColorYellow)
	}
	return tcell.StyleDefault.Foreground(tcell.ColorLightGreen)
}

func cellGlyph(k grid.Kind) (rune, tcell.Style) {
	switch {
	case k.Any(grid.Obstacle):
		return GlyphObstacle, styleObstacle
	case k.Any(grid.Dirt):
		return GlyphDirt, styleDirt
	case k.Any(grid.Station):
		return GlyphStation, styleStation
	}
	return GlyphFloor, styleFloor
}

// Header formats the status line for snap.
func Header(snap stats.Snapshot) string {
	return fmt.Sprintf("t%d  dirt %d (%.0f%%)  battery %.1f  live %d  charging %d",
		snap.Tick, snap.DirtRemaining, snap.DirtRemainingPct, snap.AvgBattery, snap.Live, snap.Charging)
}

// Draw renders world and the tail of logs, clearing the screen first; it
// does not Show.
func Draw(scr tcell.Screen, world World, logs *Logs, status string) {
	scr.Clear()
	line := Header(world.Snapshot())
	if status != "" {
		line += "  " + status
	}
	drawString(scr, 0, 0, styleHeader, line)

	const top = 1
	g := world.Grid()
	g.Each(func(pt point.Point, k grid.Kind) {
		ch, style := cellGlyph(k)
		scr.SetContent(pt.X, top+pt.Y, ch, nil, style)
	})
	for _, a := range world.Agents() {
		ch := GlyphAgent
		if a.Dead {
			if g.Kinds(a.Pos).Any(grid.Agent) {
				continue
			}
			ch = GlyphDead
		}
		scr.SetContent(a.Pos.X, top+a.Pos.Y, ch, nil, agentStyle(a))
	}

	if logs != nil {
		_, h := scr.Size()
		y := top + g.Size().Y + 1
		if n := h - y; n > 0 {
			logs.Render(scr, y, n)
		}
	}
}
