// Package roomba implements the per-agent decision policy of a cleaning
// agent: each tick it charges, heads for a known station, cleans adjacent
// dirt, or steps toward the nearest dirt, depending on its battery.
package roomba

import (
	"github.com/zyedidia/generic/mapset"

	"github.com/borkshop/roomba/internal/grid"
	"github.com/borkshop/roomba/internal/moremath"
	"github.com/borkshop/roomba/internal/point"
	"github.com/borkshop/roomba/internal/search"
)

// Agent is a cleaning agent. Its battery and memories are its own; it only
// touches shared state through the Env passed to Step.
type Agent struct {
	ID       int
	Pos      point.Point
	Home     point.Point
	Battery  int
	Charging bool
	Dead     bool
	Halted   bool
	State    State

	// Known lists discovered stations, in discovery order, starting with Home.
	Known []point.Point

	visited mapset.Set[point.Point]
	trail   []point.Point
	memCap  int
}

// New creates an agent at pos with a full battery, knowing its home station.
func New(id int, pos, home point.Point, memCap int) *Agent {
	a := &Agent{
		ID:      id,
		Pos:     pos,
		Home:    home,
		Battery: MaxBattery,
		Known:   []point.Point{home},
		visited: mapset.New[point.Point](),
		memCap:  memCap,
	}
	a.visit(pos)
	return a
}

// Visited returns true if the agent remembers having been at pt.
func (a *Agent) Visited(pt point.Point) bool { return a.visited.Has(pt) }

// Remembered returns how many visited cells the agent remembers.
func (a *Agent) Remembered() int { return len(a.trail) }

// Knows returns true if the agent has discovered a station at pt.
func (a *Agent) Knows(pt point.Point) bool {
	for _, k := range a.Known {
		if k == pt {
			return true
		}
	}
	return false
}

// Live returns true until the agent's battery has run out.
func (a *Agent) Live() bool { return !a.Dead }

// Step takes the agent's turn for one tick. Rules apply in priority order:
// dead agents do nothing; an empty battery kills; a charging agent keeps
// charging until full; a low battery sends the agent toward its nearest known
// station; otherwise it cleans adjacent dirt, or steps toward the nearest dirt
// anywhere, or halts if none is left.
func (a *Agent) Step(env *Env) Action {
	act := Action{Agent: a.ID, Kind: ActNone, From: a.Pos}
	switch {
	case a.Dead || a.Halted:
	case a.Battery <= 0:
		a.die(env)
		act.Kind = ActDie
	default:
		a.discover(env)
		act.Kind = a.decide(env)
	}
	act.To = a.Pos
	act.Battery = a.Battery
	return act
}

func (a *Agent) decide(env *Env) ActionKind {
	if a.Charging && a.Battery < MaxBattery {
		a.charge(env)
		return ActCharge
	}
	a.Charging = false
	if a.Battery < env.Params.LowBattery {
		return a.seek(env)
	}
	return a.work(env)
}

func (a *Agent) seek(env *Env) ActionKind {
	a.State = SeekingCharger
	if env.Stations.Has(a.Pos) {
		a.dock(env)
		return ActDock
	}

	cands := a.candidates(env)
	if len(cands) == 0 {
		a.State = Idle
		return ActIdle
	}
	best, err := search.Nearest(cands, a.Known)
	if err != nil {
		panic(err)
	}
	if !a.moveTo(env, best) {
		return ActIdle
	}
	if env.Stations.Has(best) {
		a.dock(env)
		return ActDock
	}
	a.Battery--
	return ActSeek
}

func (a *Agent) work(env *Env) ActionKind {
	for _, n := range env.Grid.Neighborhood(a.Pos) {
		if !env.Dirt.Has(n) || !env.Grid.IsPassable(n) {
			continue
		}
		if !a.moveTo(env, n) {
			return ActIdle
		}
		a.State = Cleaning
		env.Dirt.Clean(n, env.Grid)
		a.Battery--
		return ActClean
	}

	if env.Dirt.Len() == 0 {
		a.Halted = true
		a.State = Idle
		env.emit(Event{Kind: EventDone, Agent: a.ID, At: a.Pos, Battery: a.Battery})
		return ActDone
	}

	cands := a.candidates(env)
	if fresh := a.unvisited(cands); len(fresh) > 0 {
		cands = fresh
	}
	if len(cands) == 0 {
		a.State = Idle
		return ActIdle
	}
	best, err := search.Nearest(cands, env.Dirt.List())
	if err != nil {
		panic(err)
	}
	if !a.moveTo(env, best) {
		return ActIdle
	}
	a.State = Exploring
	a.Battery--
	return ActExplore
}

func (a *Agent) dock(env *Env) {
	a.Charging = true
	env.emit(Event{Kind: EventDock, Agent: a.ID, At: a.Pos, Battery: a.Battery})
	a.charge(env)
}

// charge applies one increment; reaching a full battery ends charging.
func (a *Agent) charge(env *Env) {
	a.State = Charging
	a.Battery = moremath.MinInt(a.Battery+env.Params.ChargeRate, MaxBattery)
	if a.Battery >= MaxBattery {
		a.Charging = false
		env.emit(Event{Kind: EventCharged, Agent: a.ID, At: a.Pos, Battery: a.Battery})
	}
}

func (a *Agent) die(env *Env) {
	a.Battery = 0
	a.Dead = true
	a.Charging = false
	a.State = Dead
	env.Grid.Remove(grid.Agent, a.Pos)
	env.emit(Event{Kind: EventDeath, Agent: a.ID, At: a.Pos})
}

// discover adds any station on or around the agent to its known stations.
func (a *Agent) discover(env *Env) {
	scan := append(env.Grid.Neighborhood(a.Pos), a.Pos)
	for _, pt := range scan {
		if env.Stations.Has(pt) && !a.Knows(pt) {
			a.Known = append(a.Known, pt)
			env.emit(Event{Kind: EventDiscover, Agent: a.ID, At: pt, Battery: a.Battery})
		}
	}
}

// candidates lists the neighbouring cells the agent may step into without
// landing on dirt.
func (a *Agent) candidates(env *Env) []point.Point {
	nbrs := env.Grid.Neighborhood(a.Pos)
	cands := nbrs[:0]
	for _, n := range nbrs {
		if env.Grid.IsPassable(n) && !env.Dirt.Has(n) {
			cands = append(cands, n)
		}
	}
	return cands
}

func (a *Agent) unvisited(cands []point.Point) []point.Point {
	var fresh []point.Point
	for _, c := range cands {
		if !a.visited.Has(c) {
			fresh = append(fresh, c)
		}
	}
	return fresh
}

func (a *Agent) moveTo(env *Env, to point.Point) bool {
	if err := env.Grid.Move(a.Pos, to); err != nil {
		env.logger().Error("roomba move failed", "agent", a.ID, "from", a.Pos, "to", to, "err", err)
		a.State = Idle
		return false
	}
	a.Pos = to
	a.visit(to)
	return true
}

func (a *Agent) visit(pt point.Point) {
	if a.visited.Has(pt) {
		return
	}
	a.visited.Put(pt)
	a.trail = append(a.trail, pt)
	if a.memCap > 0 && len(a.trail) > a.memCap {
		a.visited.Remove(a.trail[0])
		a.trail = a.trail[1:]
	}
}
