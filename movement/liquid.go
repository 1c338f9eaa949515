package movement

import (
	"math"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/replica/game"
	"github.com/oomph-ac/replica/world"
)

// Environment is the kind of dimension an entity is in. Lava flows faster in the nether.
type Environment uint8

const (
	Overworld Environment = iota
	Nether
	End
)

func (e Environment) String() string {
	switch e {
	case Nether:
		return "nether"
	case End:
		return "end"
	}
	return "overworld"
}

// FlowForce returns the unit direction the liquid at pos flows in. Falling liquid next to a solid face
// additionally pulls downwards before the result is normalized.
func FlowForce(src world.Source, pos cube.Pos, liquid world.Flags) mgl64.Vec3 {
	var xMod, zMod float64
	height := float32(world.LiquidHeight(src, pos, liquid, true))
	for _, face := range world.HorizontalFaces() {
		neighbour := pos.Side(face)
		if !world.AffectsFlow(src, neighbour, liquid) {
			continue
		}

		var force float32
		if modHeight := float32(world.LiquidHeight(src, neighbour, liquid, true)); modHeight == 0 {
			if !src.Block(neighbour).Flags.Has(world.Ground) {
				below := neighbour.Side(cube.FaceDown)
				if world.AffectsFlow(src, below, liquid) {
					if belowHeight := float32(world.LiquidHeight(src, below, liquid, true)); belowHeight > 0 {
						force = height - (belowHeight - game.FallingLiquidBelowOffset)
					}
				}
			}
		} else if modHeight > 0 {
			force = height - modHeight
		}
		if force != 0 {
			dir := cube.Pos{}.Side(face)
			xMod += float64(float32(dir[0]) * force)
			zMod += float64(float32(dir[2]) * force)
		}
	}

	flow := mgl64.Vec3{xMod, 0, zMod}
	if src.Block(pos).Falling() {
		for _, face := range world.HorizontalFaces() {
			if world.SolidFace(src, pos, face, liquid) || world.SolidFace(src, pos.Side(cube.FaceUp), face, liquid) {
				flow = game.SafeNormalize(flow).Add(mgl64.Vec3{0, game.FallingLiquidPush, 0})
				break
			}
		}
	}
	return game.SafeNormalize(flow)
}

// PushInput describes an entity for which the liquid push is computed.
type PushInput struct {
	Box    cube.BBox
	Liquid world.Flags
	Source world.Source
	Rules  Rules

	// XDist and ZDist are the horizontal distances moved in the last sample.
	XDist, ZDist float64
	// InWater and InLava are the derived liquid flags of the entity for the same sample.
	InWater, InLava bool
	Flying          bool
	InVehicle       bool
	Environment     Environment
}

// Push returns the velocity the liquid given in the input adds to the entity this sample.
func Push(in PushInput) mgl64.Vec3 {
	if in.Liquid.Has(world.Lava) && !in.Rules.LavaPushes {
		return mgl64.Vec3{}
	}

	contraction := 0.0
	if in.Rules.LegacyPush {
		contraction = game.LegacyWaterContraction
	}
	min, max := in.Box.Min(), in.Box.Max()
	minX, maxX := game.Floor(min[0]+game.LiquidEpsilon), game.Ceil(max[0]-game.LiquidEpsilon)
	minY, maxY := game.Floor(min[1]+game.LiquidEpsilon+contraction), game.Ceil(max[1]-game.LiquidEpsilon-contraction)
	minZ, maxZ := game.Floor(min[2]+game.LiquidEpsilon), game.Ceil(max[2]-game.LiquidEpsilon)

	var (
		push  mgl64.Vec3
		depth float64
		cells int
	)
	for x := minX; x < maxX; x++ {
		for y := minY; y < maxY; y++ {
			for z := minZ; z < maxZ; z++ {
				pos := cube.Pos{x, y, z}
				height := world.LiquidHeight(in.Source, pos, in.Liquid, false)
				if height == 0 || in.Flying {
					continue
				}
				if in.Rules.LegacyPush {
					if surface := float64(float32(y+1)) - height; float64(maxY) >= surface {
						push = push.Add(FlowForce(in.Source, pos, in.Liquid))
					}
					continue
				}

				surface := float64(y) + height
				if surface < min[1]+game.LiquidEpsilon {
					continue
				}
				depth = math.Max(surface-min[1]+game.LiquidDepthExpansion, depth)
				flow := FlowForce(in.Source, pos, in.Liquid)
				if depth < game.FullDepthPushThreshold {
					flow = flow.Mul(depth)
				}
				push = push.Add(flow)
				cells++
			}
		}
	}

	if push.LenSqr() <= 0 {
		return mgl64.Vec3{}
	}
	if in.Rules.LegacyPush {
		if !in.InWater {
			return push
		}
		return game.SafeNormalize(push).Mul(game.WaterPushMultiplier)
	}

	multiplier := game.LavaPushMultiplier
	switch {
	case in.InWater:
		multiplier = game.WaterPushMultiplier
	case in.Environment == Nether:
		multiplier = game.NetherLavaPushMultiplier
	}
	if cells > 0 {
		push = push.Mul(1 / float64(cells))
	}
	if in.InVehicle {
		push = game.SafeNormalize(push)
	}
	return SnapPush(push.Mul(multiplier), in.XDist, in.ZDist)
}

// SnapPush raises a push that would otherwise round away to the minimum push magnitude, keeping its
// direction, while the entity itself is barely moving horizontally.
func SnapPush(push mgl64.Vec3, xDist, zDist float64) mgl64.Vec3 {
	if math.Abs(xDist) < game.NegligibleHorizontalSpeed && math.Abs(zDist) < game.NegligibleHorizontalSpeed &&
		push.Len() < game.MinimumPushMagnitude {
		return game.SafeNormalize(push).Mul(game.MinimumPushMagnitude)
	}
	return push
}
