package movement

import (
	"math"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/replica/game"
)

// Resolve returns the part of motion that box can travel before it runs into one of the obstacles.
// The vertical axis is resolved first, then the horizontal axis with the larger magnitude last. No
// component of the result is larger in magnitude than the matching component of motion, and its sign
// is kept unless it became zero.
func Resolve(motion mgl64.Vec3, box cube.BBox, obstacles []cube.BBox) mgl64.Vec3 {
	if motion == (mgl64.Vec3{}) || len(obstacles) == 0 {
		return motion
	}
	out := motion
	order := [3]int{1, 0, 2}
	if math.Abs(motion[0]) < math.Abs(motion[2]) {
		order = [3]int{1, 2, 0}
	}
	for _, axis := range order {
		if out[axis] == 0 {
			continue
		}
		for _, obstacle := range obstacles {
			out[axis] = game.AxisOffset(obstacle, box, axis, out[axis])
		}
		var shift mgl64.Vec3
		shift[axis] = out[axis]
		box = box.Translate(shift)
	}
	return out
}

// CollideInput holds everything Collide needs to resolve one motion.
type CollideInput struct {
	Motion    mgl64.Vec3
	Box       cube.BBox
	Obstacles []cube.BBox
	// OnGround is the ground state before moving, from blocks or from standing on an entity.
	OnGround   bool
	StepHeight float64
	Rules      Rules
}

// Collide resolves the motion against the obstacles like Resolve does, and additionally lets an entity
// on ground step up onto low obstacles blocking its horizontal motion. The stepped result is used only
// if it covers strictly more horizontal distance.
func Collide(in CollideInput) mgl64.Vec3 {
	motion := in.Motion
	if motion == (mgl64.Vec3{}) {
		return mgl64.Vec3{}
	}
	collision := Resolve(motion, in.Box, in.Obstacles)
	collideX := motion[0] != collision[0]
	collideY := motion[1] != collision[1]
	collideZ := motion[2] != collision[2]
	touchGround := in.OnGround || (collideY && collision[1] < 0)
	if in.StepHeight <= 0 || !touchGround || (!collideX && !collideZ) {
		return collision
	}

	step := Resolve(mgl64.Vec3{motion[0], in.StepHeight, motion[2]}, in.Box, in.Obstacles)
	if in.Rules.TwoPhaseStep {
		// Lift as far as possible over the swept horizontal area first, then move horizontally.
		lift := Resolve(mgl64.Vec3{0, in.StepHeight}, game.ExpandTowards(in.Box, mgl64.Vec3{motion[0], 0, motion[2]}), in.Obstacles)
		if lift[1] < in.StepHeight {
			combined := Resolve(mgl64.Vec3{motion[0], 0, motion[2]}, in.Box.Translate(lift), in.Obstacles).Add(lift)
			if game.Vec3HzDistSqr(combined) > game.Vec3HzDistSqr(step) {
				step = combined
			}
		}
	}
	if game.Vec3HzDistSqr(step) <= game.Vec3HzDistSqr(collision) {
		return collision
	}
	settle := Resolve(mgl64.Vec3{0, -step[1] + motion[1]}, in.Box.Translate(step), in.Obstacles)
	return step.Add(settle)
}
