package view_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/gdamore/tcell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borkshop/roomba/internal/grid"
	"github.com/borkshop/roomba/internal/moremath"
	"github.com/borkshop/roomba/internal/point"
	"github.com/borkshop/roomba/internal/roomba"
	"github.com/borkshop/roomba/internal/sim"
	"github.com/borkshop/roomba/internal/stats"
	"github.com/borkshop/roomba/internal/view"
)

type fakeWorld struct {
	g      *grid.Grid
	agents []*roomba.Agent
}

func (w fakeWorld) Grid() *grid.Grid { return w.g }
func (w fakeWorld) Agents() []*roomba.Agent { return w.agents }
func (w fakeWorld) Snapshot() stats.Snapshot {
	var bat []int
	for _, a := range w.agents {
		if a.Live() {
			bat = append(bat, a.Battery)
		}
	}
	return stats.Snapshot{
		Tick:             7,
		DirtRemaining:    w.g.Count(grid.Dirt),
		DirtRemainingPct: 50,
		AvgBattery:       moremath.MeanInt(bat...),
		Live:             len(bat),
	}
}

func screenLines(t *testing.T, scr tcell.SimulationScreen) []string {
	t.Helper()
	scr.Show()
	cells, width, _ := scr.GetContents()
	var buf bytes.Buffer
	var lines []string
	for i := 0; i < len(cells); i++ {
		if i > 0 && i%width == 0 {
			lines = append(lines, buf.String())
			buf.Reset()
		}
		buf.Write(cells[i].Bytes)
	}
	return append(lines, buf.String())
}

func newScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	scr := tcell.NewSimulationScreen("")
	require.NoError(t, scr.Init())
	scr.SetSize(w, h)
	t.Cleanup(scr.Fini)
	return scr
}

func TestDraw(t *testing.T) {
	g, err := grid.New(5, 3, grid.Bounded)
	require.NoError(t, err)
	require.NoError(t, g.Place(grid.Station, point.Pt(0, 0)))
	require.NoError(t, g.Place(grid.Agent, point.Pt(0, 0)))
	require.NoError(t, g.Place(grid.Dirt, point.Pt(4, 2)))
	require.NoError(t, g.Place(grid.Obstacle, point.Pt(2, 1)))
	require.NoError(t, g.Place(grid.Station, point.Pt(3, 0)))

	live := roomba.New(1, point.Pt(0, 0), point.Pt(0, 0), 0)
	live.Battery = 80
	dead := roomba.New(2, point.Pt(1, 2), point.Pt(0, 0), 0)
	dead.Battery, dead.Dead = 0, true

	var logs view.Logs
	logs.Init(2)
	logs.Log("one")
	logs.Event(roomba.Event{Kind: roomba.EventDeath, Agent: 2, At: point.Pt(1, 2)})
	logs.Log("three %d", 3)
	assert.Len(t, logs.Buffer, 2, "oldest dropped")

	scr := newScreen(t, 60, 7)
	view.Draw(scr, fakeWorld{g, []*roomba.Agent{live, dead}}, &logs, "")
	assert.Equal(t, []string{
		"t7  dirt 1 (50%)  battery 80.0  live 1  charging 0          ",
		"@..+.                                                       ",
		"..#..                                                       ",
		".x..*                                                       ",
		"                                                            ",
		"roomba 2 death at (1,2) (battery 0)                         ",
		"three 3                                                     ",
	}, screenLines(t, scr))
}

func TestWatch_pauseAndStep(t *testing.T) {
	s, err := sim.New(sim.DefaultScenario(), sim.WithRunID("w"))
	require.NoError(t, err)

	scr := newScreen(t, 60, 20)
	for _, r := range []rune{' ', '.', '.', '.', 'q'} {
		scr.InjectKey(tcell.KeyRune, r, tcell.ModNone)
	}
	var logs view.Logs
	logs.Init(10)

	require.NoError(t, view.Watch(context.Background(), scr, s, &logs, time.Hour, 0))
	assert.Equal(t, uint64(3), uint64(s.Now()))
	assert.Equal(t, sim.Running, s.Outcome())

	lines := screenLines(t, scr)
	assert.Contains(t, lines[0], "t3 ")
	assert.Contains(t, lines[0], "[paused]")
}

func TestWatch_limit(t *testing.T) {
	s, err := sim.New(sim.DefaultScenario())
	require.NoError(t, err)

	scr := newScreen(t, 60, 20)
	for _, r := range []rune{' ', '.', '.', '.', 'q'} {
		scr.InjectKey(tcell.KeyRune, r, tcell.ModNone)
	}
	require.NoError(t, view.Watch(context.Background(), scr, s, nil, time.Hour, 2))
	assert.Equal(t, uint64(2), uint64(s.Now()))
	assert.Contains(t, screenLines(t, scr)[0], "[limit]")
}

func TestWatch_zeroDelay(t *testing.T) {
	sc := sim.DefaultScenario()
	s, err := sim.New(sc)
	require.NoError(t, err)

	scr := newScreen(t, 60, 20)
	scr.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	assert.NotPanics(t, func() {
		assert.NoError(t, view.Watch(context.Background(), scr, s, nil, 0, 5))
	})
	assert.LessOrEqual(t, uint64(s.Now()), uint64(5))
}
