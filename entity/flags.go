package entity

// PhysicalFlags is a snapshot of every derived flag of a Location.
type PhysicalFlags struct {
	OnGround            bool
	OnGroundDueToEntity bool
	InWater             bool
	InLava              bool
	InWaterLogged       bool
	OnIce               bool
	OnBlueIce           bool
	OnSlimeBlock        bool
	OnBouncyBlock       bool
	OnHoneyBlock        bool
	InSoulSand          bool
	InBerryBush         bool
	OnClimbable         bool
}

// InLiquid reports whether the entity is in water or lava.
func (f PhysicalFlags) InLiquid() bool {
	return f.InWater || f.InLava
}

// Flags evaluates every derived flag of the location.
func (l *Location) Flags() PhysicalFlags {
	return PhysicalFlags{
		OnGround:            l.OnGround(),
		OnGroundDueToEntity: l.OnGroundDueToEntity(),
		InWater:             l.InWater(),
		InLava:              l.InLava(),
		InWaterLogged:       l.InWaterLogged(),
		OnIce:               l.OnIce(),
		OnBlueIce:           l.OnBlueIce(),
		OnSlimeBlock:        l.OnSlimeBlock(),
		OnBouncyBlock:       l.OnBouncyBlock(),
		OnHoneyBlock:        l.OnHoneyBlock(),
		InSoulSand:          l.InSoulSand(),
		InBerryBush:         l.InBerryBush(),
		OnClimbable:         l.OnClimbable(),
	}
}
