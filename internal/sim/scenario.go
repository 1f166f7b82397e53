package sim

import (
	"errors"
	"fmt"

	"github.com/borkshop/roomba/internal/point"
	"github.com/borkshop/roomba/internal/roomba"
)

// ErrConfig is returned for scenarios that cannot be built.
var ErrConfig = errors.New("invalid scenario")

// Layout selects where charging stations go.
type Layout string

// Layouts.
const (
	// PerAgent puts one station under each agent's starting cell.
	PerAgent Layout = "per-agent"
	// Corner fills the 3x3 block at the origin with stations; agents start
	// on random free cells and call the closest one home.
	Corner Layout = "corner"
)

// Scenario describes a world to build and the agent parameters to run it
// with.
type Scenario struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Torus      bool   `json:"torus,omitempty"`
	Agents     int    `json:"agents"`
	Dirt       int    `json:"dirt"`
	Obstacles  int    `json:"obstacles"`
	LowBattery int    `json:"low_battery"`
	ChargeRate int    `json:"charge_rate"`
	Seed       int64  `json:"seed"`
	Stations   Layout `json:"stations"`
	MemoryCap  int    `json:"memory_cap,omitempty"`
}

// DefaultScenario is the reference room: 8x8, ten agents sharing a corner
// charging block, ten dirty cells and ten obstacles.
func DefaultScenario() Scenario {
	return Scenario{
		Width:      8,
		Height:     8,
		Agents:     10,
		Dirt:       10,
		Obstacles:  10,
		LowBattery: roomba.DefaultParams.LowBattery,
		ChargeRate: roomba.DefaultParams.ChargeRate,
		Seed:       42,
		Stations:   Corner,
	}
}

// Params returns the agent parameters of the scenario.
func (sc Scenario) Params() roomba.Params {
	return roomba.Params{
		LowBattery: sc.LowBattery,
		ChargeRate: sc.ChargeRate,
		MemoryCap:  sc.MemoryCap,
	}
}

func (sc Scenario) layout() Layout {
	if sc.Stations == "" {
		return PerAgent
	}
	return sc.Stations
}

// cornerBlock returns the corner station cells that fit the grid.
func (sc Scenario) cornerBlock() point.Box {
	return point.Bx(0, 0, min(2, sc.Width-1), min(2, sc.Height-1))
}

// Validate checks that the scenario can be built.
func (sc Scenario) Validate() error {
	switch {
	case sc.Width <= 0 || sc.Height <= 0:
		return fmt.Errorf("%w: grid size %dx%d", ErrConfig, sc.Width, sc.Height)
	case sc.Agents < 0 || sc.Dirt < 0 || sc.Obstacles < 0:
		return fmt.Errorf("%w: negative count (agents %d, dirt %d, obstacles %d)",
			ErrConfig, sc.Agents, sc.Dirt, sc.Obstacles)
	case sc.LowBattery < 0 || sc.LowBattery > roomba.MaxBattery:
		return fmt.Errorf("%w: low battery threshold %d not in [0,%d]", ErrConfig, sc.LowBattery, roomba.MaxBattery)
	case sc.ChargeRate <= 0 || sc.ChargeRate > roomba.MaxBattery:
		return fmt.Errorf("%w: charge rate %d not in [1,%d]", ErrConfig, sc.ChargeRate, roomba.MaxBattery)
	case sc.MemoryCap < 0:
		return fmt.Errorf("%w: negative memory cap %d", ErrConfig, sc.MemoryCap)
	}

	free := sc.Width * sc.Height
	switch sc.layout() {
	case PerAgent:
	case Corner:
		free -= sc.cornerBlock().Area()
	default:
		return fmt.Errorf("%w: unknown station layout %q", ErrConfig, sc.Stations)
	}
	if need := sc.Agents + sc.Dirt + sc.Obstacles; need > free {
		return fmt.Errorf("%w: %d agents, dirt and obstacles do not fit %d free cells", ErrConfig, need, free)
	}
	return nil
}
