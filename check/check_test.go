package check

import (
	"io"
	"math"
	"testing"
	"time"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/replica/action"
	"github.com/oomph-ac/replica/entity"
	"github.com/oomph-ac/replica/player"
	"github.com/oomph-ac/replica/settings"
	"github.com/oomph-ac/replica/version"
	"github.com/oomph-ac/replica/violation"
	"github.com/oomph-ac/replica/world"
	"github.com/sirupsen/logrus"
)

type recordingDispatcher struct {
	violations []action.Violation
}

func (d *recordingDispatcher) Dispatch(v action.Violation) bool {
	d.violations = append(d.violations, v)
	return v.Actions.EffectsFor(v.VL).Has(action.Cancel)
}

func (d *recordingDispatcher) last(t *testing.T) action.Violation {
	t.Helper()
	if len(d.violations) == 0 {
		t.Fatalf("expected a dispatched violation")
	}
	return d.violations[len(d.violations)-1]
}

func newPlayer(s settings.Settings, src world.Source, lag violation.LagSource) (*player.Player, *recordingDispatcher) {
	d := &recordingDispatcher{}
	log := logrus.New()
	log.Out = io.Discard
	return player.Config{
		Name:       "steve",
		Version:    version.V1_20,
		Log:        log,
		Lag:        lag,
		Dispatcher: d,
		Settings:   &s,
		World:      src,
	}.New(), d
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func cancelAlways() []settings.Threshold {
	return []settings.Threshold{{VL: 0, Effects: "cancel"}}
}

func TestFrequencyShortTerm(t *testing.T) {
	s := settings.DefaultSettings()
	s.Frequency.ShortTermTicks = 100
	s.Frequency.ShortTermLimit = 10
	s.Frequency.Basics.AdjustToLag = false
	s.Frequency.Basics.Actions = cancelAlways()
	p, d := newPlayer(s, world.NewMap(), nil)

	c := Frequency{}
	start := time.Now()
	for i := range 10 {
		p.SetTick(int64(i * 9))
		if c.Break(p, start.Add(time.Duration(i)*10*time.Millisecond)) {
			t.Fatalf("break %d: expected no cancellation within the limit", i)
		}
	}
	if c.Violations(p) != 0 || len(d.violations) != 0 {
		t.Fatalf("expected no violations within the limit")
	}

	p.SetTick(90)
	if !c.Break(p, start.Add(100*time.Millisecond)) {
		t.Fatalf("expected the 11th break to be cancelled")
	}
	v := d.last(t)
	if !approx(v.Added, 0.5) || !approx(c.Violations(p), 0.5) {
		t.Fatalf("expected 0.5 violation level, added %v, vl %v", v.Added, c.Violations(p))
	}
	if v.Tag != "short_term" || v.Check != "BlockBreak" || v.SubType != "Frequency" {
		t.Fatalf("unexpected violation: %+v", v)
	}
}

func TestFrequencyTickReset(t *testing.T) {
	s := settings.DefaultSettings()
	s.Frequency.ShortTermTicks = 100
	s.Frequency.ShortTermLimit = 2
	s.Frequency.Basics.AdjustToLag = false
	p, d := newPlayer(s, world.NewMap(), nil)

	c := Frequency{}
	now := time.Now()
	for _, tick := range []int64{50, 51, 10, 11} {
		p.SetTick(tick)
		c.Break(p, now)
	}
	if len(d.violations) != 0 {
		t.Fatalf("expected a tick counter going backwards to reset the short term window")
	}
}

func TestFrequencyLag(t *testing.T) {
	s := settings.DefaultSettings()
	s.Frequency.ShortTermTicks = 100
	s.Frequency.ShortTermLimit = 2
	p, d := newPlayer(s, world.NewMap(), violation.FixedLag(2))

	c := Frequency{}
	now := time.Now()
	for i := range 5 {
		p.SetTick(int64(i + 1))
		c.Break(p, now)
	}
	if len(d.violations) != 0 {
		t.Fatalf("expected lag to restart the short term window")
	}
}

func TestFrequencyFullPeriodAndDecay(t *testing.T) {
	s := settings.DefaultSettings()
	s.Frequency.IntervalSurvival = 500
	s.Frequency.BucketDuration = 1000
	s.Frequency.BucketCount = 2
	s.Frequency.ShortTermLimit = 100
	s.Frequency.Basics.AdjustToLag = false
	p, d := newPlayer(s, world.NewMap(), nil)

	c := Frequency{}
	now := time.Now()
	for range 4 {
		c.Break(p, now)
	}
	if len(d.violations) != 0 {
		t.Fatalf("expected a score equal to the window not to be a violation")
	}
	c.Break(p, now)
	v := d.last(t)
	if v.Tag != "full_period" || !approx(v.Added, 0.5) {
		t.Fatalf("expected a full period violation of 0.5, got %+v", v)
	}

	// A gap longer than the window clears the history, the next break is clean.
	c.Break(p, now.Add(time.Minute))
	if got := c.Violations(p); !approx(got, 0.5*0.95) {
		t.Fatalf("expected the violation level to decay to %v, got %v", 0.5*0.95, got)
	}

	p.SetCreative(true)
	s.Frequency.IntervalCreative = 10
	p.SetSettings(s)
	for range 10 {
		c.Break(p, now.Add(time.Minute))
	}
	if len(d.violations) != 1 {
		t.Fatalf("expected the creative interval to be used")
	}
}

func TestFrequencyDisabled(t *testing.T) {
	s := settings.DefaultSettings()
	s.Frequency.Basics.Enabled = false
	s.Frequency.ShortTermLimit = 1
	p, d := newPlayer(s, world.NewMap(), nil)
	for range 10 {
		if (Frequency{}).Break(p, time.Now()) {
			t.Fatalf("expected a disabled check never to cancel")
		}
	}
	if len(d.violations) != 0 {
		t.Fatalf("expected a disabled check never to flag")
	}
}

func TestAutoSignEditTime(t *testing.T) {
	s := settings.DefaultSettings()
	s.AutoSign.Basics.AdjustToLag = false
	s.AutoSign.Basics.Actions = cancelAlways()
	p, d := newPlayer(s, world.NewMap(), nil)

	c := AutoSign{}
	pos := cube.Pos{1, 64, 1}
	open := time.Now()
	c.Place(p, pos, "minecraft:oak_sign", open)

	lines := []string{"abcde", "", "", ""}
	if got := ExpectedEditTime(lines, s.AutoSign); got != 400 {
		t.Fatalf("expected an edit time of 400ms, got %d", got)
	}
	if !c.Edit(p, pos, "minecraft:oak_sign", lines, open.Add(100*time.Millisecond)) {
		t.Fatalf("expected the edit to be cancelled")
	}
	v := d.last(t)
	if !approx(v.Added, 2) || v.Tag != "edit_time" {
		t.Fatalf("expected 2.0 added for edit_time, got %+v", v)
	}

	c.Place(p, pos, "minecraft:oak_sign", open)
	if c.Edit(p, pos, "minecraft:oak_sign", lines, open.Add(time.Second)) {
		t.Fatalf("expected a slow edit not to be cancelled")
	}
	if len(d.violations) != 1 {
		t.Fatalf("expected a slow edit not to flag")
	}
}

func TestAutoSignLag(t *testing.T) {
	s := settings.DefaultSettings()
	p, d := newPlayer(s, world.NewMap(), violation.FixedLag(4))

	c := AutoSign{}
	pos := cube.Pos{}
	open := time.Now()
	c.Place(p, pos, "oak_sign", open)
	// 400ms expected, 100ms once divided by the lag.
	c.Edit(p, pos, "oak_sign", []string{"abcde"}, open.Add(100*time.Millisecond))
	if len(d.violations) != 0 {
		t.Fatalf("expected the expected edit time to scale with lag")
	}
}

func TestAutoSignLagWithoutAdjustToLag(t *testing.T) {
	s := settings.DefaultSettings()
	s.AutoSign.Basics.AdjustToLag = false
	p, d := newPlayer(s, world.NewMap(), violation.FixedLag(4))

	c := AutoSign{}
	pos := cube.Pos{}
	open := time.Now()
	c.Place(p, pos, "oak_sign", open)
	c.Edit(p, pos, "oak_sign", []string{"abcde"}, open.Add(100*time.Millisecond))
	if len(d.violations) != 0 {
		t.Fatalf("expected the expected edit time to scale with lag regardless of adjust_to_lag")
	}
}

func TestAutoSignBlockMismatch(t *testing.T) {
	s := settings.DefaultSettings()
	s.AutoSign.Basics.AdjustToLag = false
	p, d := newPlayer(s, world.NewMap(), nil)

	c := AutoSign{}
	open := time.Now()
	c.Place(p, cube.Pos{0, 64, 0}, "minecraft:standing_sign", open)
	c.Edit(p, cube.Pos{0, 64, 0}, "minecraft:wall_sign", []string{"hi"}, open.Add(5*time.Second))
	if len(d.violations) != 0 {
		t.Fatalf("expected wall and standing signs to hash the same")
	}

	c.Edit(p, cube.Pos{5, 64, 0}, "minecraft:standing_sign", []string{"hi"}, open.Add(5*time.Second))
	v := d.last(t)
	if v.Tag != "block_mismatch" || !approx(v.Added, 10) {
		t.Fatalf("expected a block mismatch adding 10, got %+v", v)
	}
}

func TestAutoSignEdgeCases(t *testing.T) {
	s := settings.DefaultSettings()
	s.AutoSign.Basics.AdjustToLag = false
	s.AutoSign.SkipEmpty = true
	p, d := newPlayer(s, world.NewMap(), nil)

	c := AutoSign{}
	open := time.Now()
	c.Place(p, cube.Pos{}, "oak_sign", open)
	c.Edit(p, cube.Pos{}, "oak_sign", []string{"", " ", "", ""}, open.Add(time.Millisecond))
	if len(d.violations) != 0 {
		t.Fatalf("expected empty signs to be skipped")
	}

	c.Edit(p, cube.Pos{}, "oak_sign", []string{"abc"}, open.Add(-time.Second))
	if len(d.violations) != 0 {
		t.Fatalf("expected a clock going backwards not to flag")
	}

	if got := ExpectedEditTime([]string{"ab", "AA"}, s.AutoSign); got != 150+100+50+100 {
		t.Fatalf("expected 400ms for two lines, got %d", got)
	}
}

func TestSignMaterial(t *testing.T) {
	cases := map[string]string{
		"minecraft:oak_wall_sign":             "oak_sign",
		"CHERRY_WALL_HANGING_SIGN":            "cherry_hanging_sign",
		"WALL_SIGN":                           "sign",
		"SIGN_POST":                           "sign",
		"minecraft:standing_sign":             "sign",
		"minecraft:bamboo_hanging_sign":       "bamboo_hanging_sign",
		"minecraft:spruce_standing_sign":      "spruce_standing_sign",
		"minecraft:dark_oak_wall_sign":        "dark_oak_sign",
		"minecraft:crimson_wall_hanging_sign": "crimson_hanging_sign",
	}
	for in, want := range cases {
		if got := SignMaterial(in); got != want {
			t.Fatalf("%s: expected %s, got %s", in, want, got)
		}
	}
}

func floorWorld() *world.Map {
	src := world.NewMap()
	for x := -2; x <= 2; x++ {
		for z := -2; z <= 2; z++ {
			src.SetBlock(cube.Pos{x, 0, z}, world.FullBlock("stone", 0))
		}
	}
	return src
}

func standing() entity.State {
	return entity.State{
		Pos:       mgl64.Vec3{0.5, 1, 0.5},
		Width:     0.6,
		Height:    1.8,
		EyeHeight: 1.62,
		Kind:      entity.Living | entity.Player,
	}
}

func TestCollisionFloor(t *testing.T) {
	s := settings.DefaultSettings()
	s.Collision.Basics.Actions = cancelAlways()
	p, d := newPlayer(s, floorWorld(), nil)

	c := Collision{}
	m := Movement{State: standing(), Motion: mgl64.Vec3{0, -0.0784, 0}}
	if got := c.Expected(p, m); got != (mgl64.Vec3{}) {
		t.Fatalf("expected the floor to stop the fall, got %v", got)
	}
	if c.Move(p, m) {
		t.Fatalf("expected a legitimate movement not to be cancelled")
	}

	m.Observed = mgl64.Vec3{0, -0.0784, 0}
	if !c.Move(p, m) {
		t.Fatalf("expected falling through the floor to be cancelled")
	}
	v := d.last(t)
	if !approx(v.Added, (0.0784-s.Collision.Tolerance)*s.Collision.Multiplier) {
		t.Fatalf("unexpected added violation level %v", v.Added)
	}

	vl := c.Violations(p)
	m.Observed = mgl64.Vec3{}
	c.Move(p, m)
	if got := c.Violations(p); !approx(got, vl*s.Collision.DecayFactor) {
		t.Fatalf("expected the violation level to decay from %v to %v, got %v", vl, vl*s.Collision.DecayFactor, got)
	}
}

func TestCollisionNoDecayNearTolerance(t *testing.T) {
	s := settings.DefaultSettings()
	s.Collision.Basics.Actions = cancelAlways()
	p, _ := newPlayer(s, floorWorld(), nil)

	c := Collision{}
	m := Movement{State: standing(), Motion: mgl64.Vec3{0, -0.0784, 0}, Observed: mgl64.Vec3{0, -0.0784, 0}}
	if !c.Move(p, m) {
		t.Fatalf("expected falling through the floor to be cancelled")
	}
	vl := c.Violations(p)

	// Within tolerance, but above the fraction of it that allows decay.
	m.Observed = mgl64.Vec3{0, -0.0009, 0}
	if c.Move(p, m) {
		t.Fatalf("expected a movement within tolerance not to be cancelled")
	}
	if got := c.Violations(p); got != vl {
		t.Fatalf("expected the violation level to stay at %v, got %v", vl, got)
	}
}

func TestCollisionWall(t *testing.T) {
	src := floorWorld()
	src.SetBlock(cube.Pos{1, 1, 0}, world.FullBlock("stone", 0))
	src.SetBlock(cube.Pos{1, 2, 0}, world.FullBlock("stone", 0))
	s := settings.DefaultSettings()
	p, d := newPlayer(s, src, nil)

	c := Collision{}
	m := Movement{State: standing(), Motion: mgl64.Vec3{0.3, 0, 0}, Observed: mgl64.Vec3{0.3, 0, 0}}
	got := c.Expected(p, m)
	if !approx(got.X(), 0.2) || got.Y() != 0 {
		t.Fatalf("expected the wall to stop the player after 0.2 blocks, got %v", got)
	}
	c.Move(p, m)
	if len(d.violations) != 1 || d.last(t).Check != "Movement" {
		t.Fatalf("expected walking into the wall to flag")
	}

	m.State.InVehicle = true
	c.Move(p, m)
	if len(d.violations) != 1 {
		t.Fatalf("expected movements in vehicles to be skipped")
	}
}

func TestCollisionStepUp(t *testing.T) {
	src := floorWorld()
	src.SetBlock(cube.Pos{1, 1, 0}, world.Slab("stone_slab"))
	s := settings.DefaultSettings()
	p, d := newPlayer(s, src, nil)

	c := Collision{}
	m := Movement{State: standing(), Motion: mgl64.Vec3{0.3, 0, 0}}
	m.Observed = c.Expected(p, m)
	if !approx(m.Observed.Y(), 0.5) {
		t.Fatalf("expected the player to step onto the slab, got %v", m.Observed)
	}
	c.Move(p, m)
	if len(d.violations) != 0 {
		t.Fatalf("expected stepping up not to flag")
	}
}

func TestRecoverDoesNotCancel(t *testing.T) {
	s := settings.DefaultSettings()
	s.Collision.Basics.Actions = cancelAlways()
	p, _ := newPlayer(s, nil, nil)

	// Without a world the evaluation panics, which must not crash or cancel.
	if (Collision{}).Move(p, Movement{State: standing(), Motion: mgl64.Vec3{0, -1, 0}, Observed: mgl64.Vec3{0, 5, 0}}) {
		t.Fatalf("expected a recovered evaluation not to cancel")
	}
}
