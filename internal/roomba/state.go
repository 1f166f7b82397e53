package roomba

import (
	"fmt"

	"github.com/borkshop/roomba/internal/point"
)

// State is an agent's behaviour mode, as of its last step.
type State uint8

// States.
const (
	Exploring State = iota
	Cleaning
	SeekingCharger
	Charging
	Idle
	Dead
)

var stateNames = [...]string{"exploring", "cleaning", "seeking-charger", "charging", "idle", "dead"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// ActionKind says what an agent did with its turn.
type ActionKind uint8

// Actions.
const (
	ActNone    ActionKind = iota // dead, or halted: no turn taken
	ActDie                       // battery ran out this turn
	ActCharge                    // stayed on a station, charging
	ActDock                      // reached a station and started charging
	ActSeek                      // stepped toward a known station
	ActClean                     // stepped onto dirt and removed it
	ActExplore                   // stepped toward the nearest dirt
	ActIdle                      // boxed in, stayed put
	ActDone                      // no dirt left anywhere
)

var actionNames = [...]string{"none", "die", "charge", "dock", "seek", "clean", "explore", "idle", "done"}

func (k ActionKind) String() string {
	if int(k) < len(actionNames) {
		return actionNames[k]
	}
	return fmt.Sprintf("ActionKind(%d)", uint8(k))
}

// Action records one agent turn.
type Action struct {
	Agent    int
	Kind     ActionKind
	From, To point.Point
	Battery  int
}

// Moved returns true if the agent changed cells.
func (act Action) Moved() bool { return act.From != act.To }

// EventKind enumerates notable agent events.
type EventKind uint8

// Events.
const (
	EventDeath EventKind = iota
	EventDock
	EventCharged
	EventDiscover
	EventDone
)

var eventNames = [...]string{"death", "dock", "charged", "discover", "done"}

func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return fmt.Sprintf("EventKind(%d)", uint8(k))
}

// Event is emitted to Env.Events when something notable happens to an agent.
type Event struct {
	Kind    EventKind
	Agent   int
	At      point.Point
	Battery int
}

func (ev Event) String() string {
	return fmt.Sprintf("roomba %d %v at %v (battery %d)", ev.Agent, ev.Kind, ev.At, ev.Battery)
}
