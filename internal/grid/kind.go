package grid

import "strings"

// Kind is a set of occupant kinds present on a cell.
type Kind uint8

// Occupant kinds; a cell holds at most one Fixed kind and at most one Agent.
const (
	Dirt Kind = 1 << iota
	Station
	Obstacle
	Agent
)

const (
	// Empty is the Kind of a cell with no occupants.
	Empty Kind = 0

	// Fixed covers the non-moving occupant kinds.
	Fixed = Dirt | Station | Obstacle
)

var kindNames = []struct {
	k    Kind
	name string
}{
	{Dirt, "dirt"},
	{Station, "station"},
	{Obstacle, "obstacle"},
	{Agent, "agent"},
}

func (k Kind) String() string {
	if k == Empty {
		return "empty"
	}
	var parts []string
	for _, kn := range kindNames {
		if k&kn.k != 0 {
			parts = append(parts, kn.name)
		}
	}
	return strings.Join(parts, "|")
}

// All returns true only if all of the masked kind bits are set. If the mask is
// Empty, always returns false.
func (k Kind) All(mask Kind) bool { return mask != Empty && k&mask == mask }

// Any returns true only if at least one of the masked kind bits is set.
func (k Kind) Any(mask Kind) bool { return k&mask != 0 }

// single returns true if exactly one kind bit is set.
func (k Kind) single() bool { return k != Empty && k&(k-1) == 0 }
