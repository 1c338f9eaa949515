package movement

import "github.com/oomph-ac/replica/version"

// Rules are the version dependent switches of the collision and liquid models.
type Rules struct {
	// TwoPhaseStep enables the lift-then-move step-up resolution.
	TwoPhaseStep bool
	// LegacyPush selects the pre-aquatic liquid push: contracted scan, normalized push, water only.
	LegacyPush bool
	// LavaPushes is false for clients on which lava never pushes an entity standing in it.
	LavaPushes bool
}

var (
	twoPhaseStep = version.NewTable(false, version.Since(version.V1_8, true))
	legacyPush   = version.NewTable(true, version.Since(version.V1_13, false))
	lavaPushes   = version.NewTable(false, version.Since(version.V1_16, true))
)

// RulesFor returns the rules of the given client version.
func RulesFor(v version.Version) Rules {
	return Rules{
		TwoPhaseStep: twoPhaseStep.Lookup(v),
		LegacyPush:   legacyPush.Lookup(v),
		LavaPushes:   lavaPushes.Lookup(v),
	}
}
