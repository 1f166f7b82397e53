package view

import (
	"context"
	"time"

	"github.com/gdamore/tcell"

	"github.com/borkshop/roomba/internal/sim"
)

// MinDelay is the shortest interval between animated ticks.
const MinDelay = time.Millisecond

// Watch animates s on scr, one tick per delay, until the user quits (q, Esc
// or Ctrl-C) or ctx is done. Space pauses; '.' steps while paused. Once the
// run is over the final frame stays up until the user quits. Watch stops
// ticking after maxTicks ticks in total (0 for no limit). A delay of zero or
// less ticks every MinDelay.
func Watch(ctx context.Context, scr tcell.Screen, s *sim.Simulation, logs *Logs, delay time.Duration, maxTicks uint64) error {
	events := make(chan tcell.Event)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			ev := scr.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	if delay < MinDelay {
		delay = MinDelay
	}
	ticker := time.NewTicker(delay)
	defer ticker.Stop()

	paused := false
	canTick := func() bool {
		return s.Outcome() == sim.Running && (maxTicks == 0 || uint64(s.Now()) < maxTicks)
	}
	status := func() string {
		if p := s.Perf(); p != nil && canTick() && !paused {
			return p.Summary()
		}
		switch {
		case !canTick():
			if s.Outcome() == sim.Running {
				return "[limit]  q to quit"
			}
			return "[" + s.Outcome().String() + "]  q to quit"
		case paused:
			return "[paused]"
		}
		return ""
	}
	redraw := func() {
		Draw(scr, s, logs, status())
		scr.Show()
	}
	step := func() {
		if canTick() {
			s.Tick(ctx)
		}
		redraw()
	}

	redraw()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.C:
			if !paused {
				step()
			}

		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				scr.Sync()
				redraw()
			case *tcell.EventKey:
				switch ev.Key() {
				case tcell.KeyEscape, tcell.KeyCtrlC:
					return nil
				case tcell.KeyRune:
					switch ev.Rune() {
					case 'q', 'Q':
						return nil
					case ' ':
						paused = !paused
						redraw()
					case '.':
						if paused {
							step()
						}
					}
				}
			}
		}
	}
}
