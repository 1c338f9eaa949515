package entity

import (
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/replica/game"
	"github.com/oomph-ac/replica/movement"
	"github.com/oomph-ac/replica/oerror"
	"github.com/oomph-ac/replica/version"
	"github.com/oomph-ac/replica/world"
)

// lazyFlag is a flag computed at most once.
type lazyFlag struct {
	set bool
	val bool
}

func (f *lazyFlag) get(compute func() bool) bool {
	if !f.set {
		f.val, f.set = compute(), true
	}
	return f.val
}

// Location is the physical model of an entity for a single sample. Every derived flag is computed on
// first use and remembered for the lifetime of the Location, so a new Location must be created for
// every sample. A Location only reads from its world and is not safe for concurrent use.
type Location struct {
	state State
	ver   version.Version
	f     Formulas
	src   world.Source
	probe world.EntityProbe
	opts  Options

	box       cube.BBox
	eyeHeight float64
	block     cube.Pos

	onGround       lazyFlag
	standsOnEntity bool
	inWater        lazyFlag
	inLava         lazyFlag
	inWaterLogged  lazyFlag
	onIce          lazyFlag
	onBlueIce      lazyFlag
	onSlime        lazyFlag
	onBouncy       lazyFlag
	onHoney        lazyFlag
	inSoulSand     lazyFlag
	inBerryBush    lazyFlag
	onClimbable    lazyFlag
}

// NewLocation returns the model of the entity state in the world for the given client version. A nil
// probe means no entities can be stood on.
func NewLocation(state State, v version.Version, src world.Source, probe world.EntityProbe, opts Options) *Location {
	if probe == nil {
		probe = world.NopProbe{}
	}
	if opts.YOnGround <= 0 {
		opts.YOnGround = game.DefaultYOnGround
	}
	opts.StepHeight = max(opts.StepHeight, 0)
	if opts.EntityStackMargin <= 0 {
		opts.EntityStackMargin = game.EntityStackMargin
	}

	_, _, eye := state.Dimensions()
	return &Location{
		state:     state,
		ver:       v,
		f:         FormulasFor(v),
		src:       src,
		probe:     probe,
		opts:      opts,
		box:       state.Box(),
		eyeHeight: eye,
		block:     cube.PosFromVec3(state.Pos),
	}
}

// Box returns the bounding box of the entity.
func (l *Location) Box() cube.BBox { return l.box }

// EyeHeight returns the eye height of the entity.
func (l *Location) EyeHeight() float64 { return l.eyeHeight }

// Version returns the client version the model follows.
func (l *Location) Version() version.Version { return l.ver }

// State returns the state the model was built from.
func (l *Location) State() State { return l.state }

// OnGround reports whether the entity stands on a block or, failing that, on another entity.
func (l *Location) OnGround() bool {
	return l.onGround.get(func() bool {
		if l.onGroundWithin(l.opts.YOnGround) {
			return true
		}
		min, max := l.box.Min(), l.box.Max()
		m := l.opts.EntityStackMargin
		region := cube.Box(min[0]-m, min[1]-l.opts.YOnGround, min[2]-m, max[0]+m, min[1], max[2]+m)
		l.standsOnEntity = l.probe.StandsOnEntity(l.state.ID, region)
		return l.standsOnEntity
	})
}

// OnGroundDueToEntity reports whether the entity is on ground only because it stands on an entity.
func (l *Location) OnGroundDueToEntity() bool {
	return l.OnGround() && l.standsOnEntity
}

// StandsOnEntity tests for an entity below with custom margins, for vehicles. The result is not
// remembered and does not affect OnGround.
func (l *Location) StandsOnEntity(yOnGround, xzMargin, yMargin float64) bool {
	min, max := l.box.Min(), l.box.Max()
	region := cube.Box(
		min[0]-xzMargin, min[1]-yOnGround-yMargin, min[2]-xzMargin,
		max[0]+xzMargin, min[1]+yMargin, max[2]+xzMargin,
	)
	return l.probe.StandsOnEntity(l.state.ID, region)
}

// onGroundWithin tests for ground blocks within yOnGround below the feet.
func (l *Location) onGroundWithin(yOnGround float64) bool {
	min, max := l.box.Min(), l.box.Max()
	return world.Collides(l.src, cube.Box(min[0], min[1]-yOnGround, min[2], max[0], min[1], max[2]), world.Ground)
}

// InWater reports whether the entity touches water.
func (l *Location) InWater() bool {
	return l.inWater.get(func() bool {
		if l.f.LegacyWater {
			return l.liquidScan(world.Water, game.LegacyWaterContraction, true)
		}
		return l.liquidScan(world.Water, 0, false)
	})
}

// InLava reports whether the entity touches lava.
func (l *Location) InLava() bool {
	return l.inLava.get(func() bool {
		switch l.f.Lava {
		case lavaContracted:
			return l.legacyLavaScan()
		case lavaInside:
			return world.InsideBlock(l.src, l.box, world.Lava, game.LiquidEpsilon)
		}
		return l.liquidScan(world.Lava, 0, false)
	})
}

// liquidScan tests whether the surface of the liquid in any voxel of the box, shrunk by the liquid
// epsilon and the extra vertical contraction, reaches above the bottom of the shrunk box.
func (l *Location) liquidScan(liquid world.Flags, contraction float64, ownOnly bool) bool {
	min, max := l.box.Min(), l.box.Max()
	bottom := min[1] + game.LiquidEpsilon + contraction
	for x := game.Floor(min[0] + game.LiquidEpsilon); x < game.Ceil(max[0]-game.LiquidEpsilon); x++ {
		for y := game.Floor(bottom); y < game.Ceil(max[1]-game.LiquidEpsilon-contraction); y++ {
			for z := game.Floor(min[2] + game.LiquidEpsilon); z < game.Ceil(max[2]-game.LiquidEpsilon); z++ {
				height := world.LiquidHeight(l.src, cube.Pos{x, y, z}, liquid, ownOnly)
				if height != 0 && float64(y)+height >= bottom {
					return true
				}
			}
		}
	}
	return false
}

func (l *Location) legacyLavaScan() bool {
	min, max := l.box.Min(), l.box.Max()
	xz, y := game.LegacyLavaContractionXZ, game.LegacyLavaContractionY
	for bx := game.Floor(min[0] + xz); bx < game.Floor(max[0]-xz+1); bx++ {
		for by := game.Floor(min[1] + y); by < game.Floor(max[1]-y+1); by++ {
			for bz := game.Floor(min[2] + xz); bz < game.Floor(max[2]-xz+1); bz++ {
				if l.src.Block(cube.Pos{bx, by, bz}).Flags.Has(world.Lava) {
					return true
				}
			}
		}
	}
	return false
}

// InWaterLogged reports whether the entity is inside a waterlogged block.
func (l *Location) InWaterLogged() bool {
	return l.inWaterLogged.get(func() bool {
		return l.f.Waterlogging && world.InsideBlock(l.src, l.box, world.Waterlogged, game.LiquidEpsilon)
	})
}

// centreBelow tests the block just below the centre of the feet.
func (l *Location) centreBelow(mask world.Flags) bool {
	pos := cube.Pos{l.block[0], game.Floor(l.state.Pos[1] - game.LegacyBelowOffset), l.block[2]}
	return l.src.Block(pos).Flags.Has(mask)
}

// centreAt tests the block at the centre of the feet.
func (l *Location) centreAt(mask world.Flags) bool {
	return l.src.Block(l.block).Flags.Has(mask)
}

// supportingBelow tests every block under the footprint of the box that the entity rests on.
func (l *Location) supportingBelow(mask world.Flags) bool {
	return world.Footprint(l.src, l.box, game.Floor(l.box.Min()[1]-game.SupportingBelowOffset), mask)
}

// feetLayer tests every block under the footprint of the box in the layer of the feet.
func (l *Location) feetLayer(mask world.Flags) bool {
	return world.Footprint(l.src, l.box, game.Floor(l.box.Min()[1]), mask)
}

// OnIce reports whether the entity stands on ice. Clients without blue ice see it as regular ice.
func (l *Location) OnIce() bool {
	return l.onIce.get(func() bool {
		if !l.OnGround() {
			return false
		}
		mask := world.Ice
		if !l.f.BlueIceExists {
			mask |= world.BlueIce
		}
		if l.f.CentreProperties {
			return l.centreBelow(mask)
		}
		return l.supportingBelow(mask)
	})
}

// OnBlueIce reports whether the entity stands on blue ice.
func (l *Location) OnBlueIce() bool {
	return l.onBlueIce.get(func() bool {
		if !l.f.BlueIceExists || !l.OnGround() {
			return false
		}
		if l.f.CentreProperties {
			return l.centreBelow(world.BlueIce)
		}
		return l.supportingBelow(world.BlueIce)
	})
}

// OnSlimeBlock reports whether the entity is on a slime block.
func (l *Location) OnSlimeBlock() bool {
	return l.onSlime.get(func() bool {
		if !l.f.SlimeExists {
			return false
		}
		if l.f.CentreProperties {
			return l.centreBelow(world.Slime)
		}
		return l.supportingBelow(world.Slime)
	})
}

// OnBouncyBlock reports whether the entity is on a block that makes it bounce. Beds only bounce on
// clients from 1.12 onwards.
func (l *Location) OnBouncyBlock() bool {
	return l.onBouncy.get(func() bool {
		if !l.supportingBelow(world.Bouncy) {
			return false
		}
		return l.f.BedsBounce || l.OnSlimeBlock()
	})
}

// OnHoneyBlock reports whether the entity is on or in a honey block.
func (l *Location) OnHoneyBlock() bool {
	return l.onHoney.get(func() bool {
		if !l.f.HoneyExists {
			return false
		}
		if l.f.CentreProperties {
			return l.centreAt(world.Sticky)
		}
		return l.feetLayer(world.Sticky) || (l.OnGround() && l.supportingBelow(world.Sticky))
	})
}

// InSoulSand reports whether the feet of the entity are in soul sand.
func (l *Location) InSoulSand() bool {
	return l.inSoulSand.get(func() bool {
		if l.f.CentreProperties {
			return l.centreAt(world.SoulSand)
		}
		return l.feetLayer(world.SoulSand)
	})
}

// InBerryBush reports whether the entity is inside a berry bush.
func (l *Location) InBerryBush() bool {
	return l.inBerryBush.get(func() bool {
		return l.f.BerryBushes && world.InsideBlock(l.src, l.box, world.BerryBush, game.LiquidEpsilon)
	})
}

// OnClimbable reports whether the entity is in a climbable block.
func (l *Location) OnClimbable() bool {
	return l.onClimbable.get(func() bool {
		return l.centreAt(world.Climbable)
	})
}

// CanClimbUp reports whether the entity may move upwards on the climbable it is in. Older clients
// only climb vines attached to a solid block, or vines they could have jumped onto.
func (l *Location) CanClimbUp(jumpHeight float64) bool {
	if l.f.ClimbAlwaysUp || !l.centreAt(world.NeedsAttachment) {
		return true
	}
	if l.attached(l.block) {
		return true
	}
	headY := game.Floor(l.box.Max()[1])
	for y := l.block[1] + 1; y <= headY; y++ {
		if l.attached(cube.Pos{l.block[0], y, l.block[2]}) {
			return true
		}
	}
	return l.onGroundWithin(jumpHeight)
}

func (l *Location) attached(pos cube.Pos) bool {
	for _, face := range world.HorizontalFaces() {
		b := l.src.Block(pos.Side(face))
		if b.Flags.Has(world.Solid) && b.FaceSturdy(face.Opposite()) {
			return true
		}
	}
	return false
}

// SlidingDown reports whether the entity slides down the side of a honey block. yDistance is the
// vertical distance moved this sample.
func (l *Location) SlidingDown(yDistance float64) bool {
	if !l.f.HoneyExists || l.OnGround() || yDistance >= -game.DefaultGravity {
		return false
	}
	return l.nextToBlock(game.StickySideMargin, world.Sticky)
}

func (l *Location) nextToBlock(margin float64, mask world.Flags) bool {
	return world.Collides(l.src, l.box.GrowVec3(mgl64.Vec3{margin, 0, margin}), mask)
}

// SeekCollisionAbove reports whether solid ground is within margin above the head of the entity. With
// stepCorrection, the top of the tested region is snapped onto a 0.25 lattice above the head to be
// lenient towards floating point drift. A negative margin is a programming error and is reported as
// oerror.ErrInvalidArgument.
func (l *Location) SeekCollisionAbove(margin float64, stepCorrection bool) (bool, error) {
	if margin < 0 {
		return false, oerror.InvalidArgument("head obstruction margin must not be negative, got %v", margin)
	}
	min, max := l.box.Min(), l.box.Max()
	if stepCorrection {
		top := max[1] + margin
		top = top - float64(game.Floor(top)) + game.HeadObstructionOffset
		for bound := 1.0; bound > 0; bound -= game.HeadObstructionLattice {
			if top >= bound {
				margin += bound + game.HeadObstructionOffset - top
				break
			}
		}
	}
	region := cube.Box(min[0], max[1], min[2], max[0], max[1]+margin, max[2])
	if !world.Collides(l.src, region, world.Ground|world.Solid) {
		return false, nil
	}
	// Inside a honey block sideways the top of the box touches the honey above.
	return !l.nextToBlock(game.StickySideMargin, world.Sticky), nil
}

// Collide returns the part of motion the entity can travel, stepping up low obstacles when on ground.
func (l *Location) Collide(motion mgl64.Vec3, onGround bool) mgl64.Vec3 {
	if motion == (mgl64.Vec3{}) {
		return mgl64.Vec3{}
	}
	reach := game.ExpandTowards(l.box, motion)
	if l.opts.StepHeight > 0 {
		reach = game.ExpandTowards(reach, mgl64.Vec3{0, l.opts.StepHeight})
	}
	return movement.Collide(movement.CollideInput{
		Motion:     motion,
		Box:        l.box,
		Obstacles:  world.CollisionBoxes(l.src, reach),
		OnGround:   onGround,
		StepHeight: l.opts.StepHeight,
		Rules:      l.f.Movement,
	})
}

// LiquidPush returns the velocity the given liquid adds this sample. xDist and zDist are the
// horizontal distances moved in the last sample.
func (l *Location) LiquidPush(xDist, zDist float64, liquid world.Flags) mgl64.Vec3 {
	return movement.Push(movement.PushInput{
		Box:         l.box,
		Liquid:      liquid,
		Source:      l.src,
		Rules:       l.f.Movement,
		XDist:       xDist,
		ZDist:       zDist,
		InWater:     l.InWater(),
		InLava:      l.InLava(),
		Flying:      l.state.Flying,
		InVehicle:   l.state.InVehicle,
		Environment: l.state.Environment,
	})
}
