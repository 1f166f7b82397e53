package roomba

import (
	"context"
	"io"
	"log/slog"

	"github.com/borkshop/roomba/internal/grid"
	"github.com/borkshop/roomba/internal/registry"
)

// MaxBattery is a full charge.
const MaxBattery = 100

// Params tune agent behaviour.
type Params struct {
	// LowBattery is the level below which an agent heads for a station.
	LowBattery int
	// ChargeRate is the battery gained per tick on a station.
	ChargeRate int
	// MemoryCap bounds how many visited cells an agent remembers, oldest
	// forgotten first; 0 means unbounded.
	MemoryCap int
}

// DefaultParams are the parameters of the reference scenario.
var DefaultParams = Params{LowBattery: 50, ChargeRate: 5}

// Env is the state shared by every agent: the grid and the registries.
// Agents take their turns one at a time against the same Env.
type Env struct {
	Grid     *grid.Grid
	Dirt     *registry.Dirt
	Stations *registry.Stations
	Params   Params

	// Log receives agent events; nil discards.
	Log *slog.Logger
	// Events, if set, is called for every Event.
	Events func(Event)
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func (env *Env) logger() *slog.Logger {
	if env.Log == nil {
		return discard
	}
	return env.Log
}

func (env *Env) emit(ev Event) {
	level := slog.LevelDebug
	if ev.Kind == EventDeath || ev.Kind == EventDone {
		level = slog.LevelInfo
	}
	env.logger().Log(context.Background(), level, "roomba "+ev.Kind.String(),
		"agent", ev.Agent, "at", ev.At, "battery", ev.Battery)
	if env.Events != nil {
		env.Events(ev)
	}
}
