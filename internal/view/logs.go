package view

import (
	"fmt"

	"github.com/gdamore/tcell"

	"github.com/borkshop/roomba/internal/roomba"
)

// Logs is a renderable ring of recent messages.
type Logs struct {
	Buffer []string
	Style  tcell.Style
}

// Init allocates the given capacity.
func (logs *Logs) Init(logCap int) {
	logs.Buffer = make([]string, 0, logCap)
	logs.Style = tcell.StyleDefault.Foreground(tcell.ColorSilver)
}

// Log formats and appends a log message to the buffer, discarding the oldest
// message if full.
func (logs *Logs) Log(mess string, args ...interface{}) {
	mess = fmt.Sprintf(mess, args...)
	if cap(logs.Buffer) == 0 {
		logs.Init(100)
	}
	if len(logs.Buffer) < cap(logs.Buffer) {
		logs.Buffer = append(logs.Buffer, mess)
	} else {
		copy(logs.Buffer, logs.Buffer[1:])
		logs.Buffer[len(logs.Buffer)-1] = mess
	}
}

// Event logs an agent event; pass it to sim.WithEvents.
func (logs *Logs) Event(ev roomba.Event) {
	logs.Log("%v", ev)
}

// Render draws the tail of the buffer into the screen rows [y, y+height).
func (logs *Logs) Render(scr tcell.Screen, y, height int) {
	off := len(logs.Buffer) - height
	if off < 0 {
		off = 0
	}
	for i := off; i < len(logs.Buffer); i, y = i+1, y+1 {
		drawString(scr, 0, y, logs.Style, logs.Buffer[i])
	}
}

func drawString(scr tcell.Screen, x, y int, style tcell.Style, s string) {
	w, _ := scr.Size()
	for _, r := range s {
		if x >= w {
			return
		}
		scr.SetContent(x, y, r, nil, style)
		x++
	}
}
