package world

import "strings"

// Flags describes the physical properties of a block type that the physics model reacts to.
type Flags uint32

const (
	// Ground blocks can be stood on.
	Ground Flags = 1 << iota
	// Solid blocks have sturdy faces for liquid flow and vine attachment.
	Solid
	Liquid
	Water
	Lava
	Ice
	BlueIce
	Slime
	// Bouncy blocks reverse vertical motion on landing (slime, beds).
	Bouncy
	// Sticky blocks slow down sliding (honey).
	Sticky
	SoulSand
	BerryBush
	// Waterlogged blocks hold water in addition to their own shape.
	Waterlogged
	Climbable
	// NeedsAttachment marks climbables that only work while attached to a solid block (vines).
	NeedsAttachment
)

var flagNames = [...]string{
	"ground", "solid", "liquid", "water", "lava", "ice", "blue_ice", "slime", "bouncy", "sticky",
	"soul_sand", "berry_bush", "waterlogged", "climbable", "needs_attachment",
}

// Has reports whether any of the flags in mask are set.
func (f Flags) Has(mask Flags) bool {
	return f&mask != 0
}

func (f Flags) String() string {
	if f == 0 {
		return "none"
	}
	var names []string
	for i, name := range flagNames {
		if f&(1<<i) != 0 {
			names = append(names, name)
		}
	}
	return strings.Join(names, "|")
}
