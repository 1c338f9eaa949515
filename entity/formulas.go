package entity

import (
	"sync"

	"github.com/oomph-ac/replica/movement"
	"github.com/oomph-ac/replica/version"
)

// lavaFormula is the way a client decides whether it is in lava.
type lavaFormula uint8

const (
	// lavaContracted scans a box shrunk by 0.1 horizontally and 0.4 vertically.
	lavaContracted lavaFormula = iota
	// lavaInside tests for lava intersecting the box, like webs and berry bushes.
	lavaInside
	// lavaHeight compares the lava surface with the box, like water.
	lavaHeight
)

// Formulas is the set of physics variants one client version uses.
type Formulas struct {
	Movement movement.Rules

	LegacyWater bool
	Lava        lavaFormula
	// CentreProperties is set for clients that only apply block properties (ice, slime, honey, soul
	// sand) from the block at the centre of the entity.
	CentreProperties bool

	SlimeExists   bool
	BedsBounce    bool
	BlueIceExists bool
	Waterlogging  bool
	BerryBushes   bool
	HoneyExists   bool
	ClimbAlwaysUp bool
}

var (
	legacyWater      = version.NewTable(true, version.Since(version.V1_13, false))
	lava             = version.NewTable(lavaContracted, version.Since(version.V1_14, lavaInside), version.Since(version.V1_16, lavaHeight))
	centreProperties = version.NewTable(true, version.After(version.V1_19_4, false))
	slimeExists      = version.NewTable(false, version.Since(version.V1_8, true))
	bedsBounce       = version.NewTable(false, version.Since(version.V1_12, true))
	aquatic          = version.NewTable(false, version.Since(version.V1_13, true))
	villagePillage   = version.NewTable(false, version.Since(version.V1_14, true))
	buzzyBees        = version.NewTable(false, version.Since(version.V1_15, true))

	formulaCache sync.Map
)

// FormulasFor returns the formulas of a client version. Results are cached per version.
func FormulasFor(v version.Version) Formulas {
	v = v.Resolve()
	if f, ok := formulaCache.Load(v); ok {
		return f.(Formulas)
	}
	f := Formulas{
		Movement:         movement.RulesFor(v),
		LegacyWater:      legacyWater.Lookup(v),
		Lava:             lava.Lookup(v),
		CentreProperties: centreProperties.Lookup(v),
		SlimeExists:      slimeExists.Lookup(v),
		BedsBounce:       bedsBounce.Lookup(v),
		BlueIceExists:    aquatic.Lookup(v),
		Waterlogging:     aquatic.Lookup(v),
		BerryBushes:      villagePillage.Lookup(v),
		HoneyExists:      buzzyBees.Lookup(v),
		ClimbAlwaysUp:    villagePillage.Lookup(v),
	}
	formulaCache.Store(v, f)
	return f
}
