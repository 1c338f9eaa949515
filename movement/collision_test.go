package movement

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/replica/game"
	"github.com/oomph-ac/replica/version"
)

func playerBox(x, y, z float64) cube.BBox {
	return game.BoxFromDimensions(mgl64.Vec3{x, y, z}, 0.6, 1.8)
}

func TestResolveEmptyObstaclesReturnsInput(t *testing.T) {
	motion := mgl64.Vec3{0.3, -0.5, 0.1}
	if out := Resolve(motion, playerBox(0.5, 1, 0.5), nil); out != motion {
		t.Fatalf("expected %v, got %v", motion, out)
	}
}

func TestResolveLandsOnFloor(t *testing.T) {
	floor := []cube.BBox{cube.Box(0, 0, 0, 1, 1, 1)}
	out := Resolve(mgl64.Vec3{0, -0.5, 0}, playerBox(0.5, 1.2, 0.5), floor)
	if math.Abs(out.Y()+0.2) > 1e-9 {
		t.Fatalf("expected to fall 0.2 onto the floor, got %v", out)
	}
}

func TestResolveNeverExceedsInput(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		var obstacles []cube.BBox
		for j := 0; j < 6; j++ {
			x, y, z := r.Float64()*4-2, r.Float64()*4-2, r.Float64()*4-2
			obstacles = append(obstacles, cube.Box(x, y, z, x+r.Float64()+0.1, y+r.Float64()+0.1, z+r.Float64()+0.1))
		}
		motion := mgl64.Vec3{r.Float64()*2 - 1, r.Float64()*2 - 1, r.Float64()*2 - 1}
		out := Resolve(motion, playerBox(0, 0, 0), obstacles)
		for axis := range 3 {
			if math.Abs(out[axis]) > math.Abs(motion[axis]) {
				t.Fatalf("axis %d grew from %v to %v", axis, motion[axis], out[axis])
			}
			if out[axis] != 0 && math.Signbit(out[axis]) != math.Signbit(motion[axis]) {
				t.Fatalf("axis %d flipped sign from %v to %v", axis, motion[axis], out[axis])
			}
		}
	}
}

func stepWorld() []cube.BBox {
	return []cube.BBox{
		cube.Box(0, 0, 0, 1, 1, 1),
		cube.Box(1, 0, 0, 2, 1, 1),
		// Slab in front of the entity.
		cube.Box(1, 1, 0, 2, 1.5, 1),
	}
}

func TestCollideStepsOntoSlab(t *testing.T) {
	in := CollideInput{
		Motion:     mgl64.Vec3{0.3, 0, 0},
		Box:        playerBox(0.5, 1, 0.5),
		Obstacles:  stepWorld(),
		OnGround:   true,
		StepHeight: game.StepHeight,
		Rules:      RulesFor(version.V1_8),
	}
	out := Collide(in)
	if math.Abs(out.X()-0.3) > 1e-9 || math.Abs(out.Y()-0.5) > 1e-9 {
		t.Fatalf("expected to step onto the slab, got %v", out)
	}

	in.Rules = RulesFor(version.V1_7)
	if legacy := Collide(in); math.Abs(legacy.X()-0.3) > 1e-9 || math.Abs(legacy.Y()-0.5) > 1e-9 {
		t.Fatalf("expected single phase lift to step onto the slab, got %v", legacy)
	}
}

func TestCollideDoesNotStepInAir(t *testing.T) {
	in := CollideInput{
		Motion:     mgl64.Vec3{0.3, 0, 0},
		Box:        playerBox(0.5, 1, 0.5),
		Obstacles:  stepWorld(),
		StepHeight: game.StepHeight,
		Rules:      RulesFor(version.Latest),
	}
	out := Collide(in)
	if math.Abs(out.X()-0.2) > 1e-9 || out.Y() != 0 {
		t.Fatalf("expected to stop at the slab, got %v", out)
	}
}

func TestCollideStepsOnlyAfterDescending(t *testing.T) {
	// Resting on the floor without ground state: the fall is fully blocked, so there is no step.
	in := CollideInput{
		Motion:     mgl64.Vec3{0.3, -0.0784, 0},
		Box:        playerBox(0.5, 1, 0.5),
		Obstacles:  stepWorld(),
		StepHeight: game.StepHeight,
		Rules:      RulesFor(version.Latest),
	}
	if out := Collide(in); math.Abs(out.X()-0.2) > 1e-9 || out.Y() != 0 {
		t.Fatalf("expected to stop at the slab, got %v", out)
	}

	// Landing this sample still moves down before the floor stops it, which allows a step.
	in.Motion = mgl64.Vec3{0.3, -0.5, 0}
	in.Box = playerBox(0.5, 1.2, 0.5)
	if out := Collide(in); math.Abs(out.X()-0.3) > 1e-9 || math.Abs(out.Y()-0.3) > 1e-9 {
		t.Fatalf("expected to land on the slab, got %v", out)
	}
}

func TestCollideStepNeverRegresses(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	for i := 0; i < 300; i++ {
		var obstacles []cube.BBox
		for j := 0; j < 5; j++ {
			x, z := r.Float64()*3-1.5, r.Float64()*3-1.5
			h := r.Float64()
			obstacles = append(obstacles, cube.Box(x, 0, z, x+0.5, h, z+0.5))
		}
		box := playerBox(0, 0, 0)
		motion := mgl64.Vec3{r.Float64() - 0.5, 0, r.Float64() - 0.5}
		plain := Resolve(motion, box, obstacles)
		stepped := Collide(CollideInput{Motion: motion, Box: box, Obstacles: obstacles, OnGround: true, StepHeight: game.StepHeight, Rules: RulesFor(version.Latest)})
		if game.Vec3HzDistSqr(stepped) < game.Vec3HzDistSqr(plain) {
			t.Fatalf("step-up regressed: plain %v stepped %v", plain, stepped)
		}
	}
}

func TestCollideZeroMotion(t *testing.T) {
	if out := Collide(CollideInput{Box: playerBox(0, 0, 0), Obstacles: stepWorld(), OnGround: true, StepHeight: 0.6}); out != (mgl64.Vec3{}) {
		t.Fatalf("expected zero, got %v", out)
	}
}

func TestRulesCutovers(t *testing.T) {
	if RulesFor(version.V1_7).TwoPhaseStep || !RulesFor(version.V1_8).TwoPhaseStep {
		t.Fatalf("two phase step must start at 1.8")
	}
	if !RulesFor(version.MustParse("1.12.2")).LegacyPush || RulesFor(version.V1_13).LegacyPush {
		t.Fatalf("legacy push must end at 1.13")
	}
	if RulesFor(version.MustParse("1.15.2")).LavaPushes || !RulesFor(version.V1_16).LavaPushes {
		t.Fatalf("lava push must start at 1.16")
	}
}
