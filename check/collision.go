package check

import (
	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/replica/entity"
	"github.com/oomph-ac/replica/game"
	"github.com/oomph-ac/replica/player"
	"github.com/oomph-ac/replica/violation"
	"github.com/oomph-ac/replica/world"
)

const collisionKey = "check.collision"

// Collision replicates how a movement collides with the world and compares the result with the
// movement the client reported.
type Collision struct{}

// Movement is one movement sample of a player.
type Movement struct {
	// State is the state of the player before the movement. Its Delta is the movement of the previous
	// sample, which liquids push along.
	State entity.State
	// Motion is the motion the player attempted, before collisions.
	Motion mgl64.Vec3
	// Observed is the position delta the client reported.
	Observed mgl64.Vec3
}

type collisionData struct {
	rec violation.Record
}

func (Collision) Type() string    { return "Movement" }
func (Collision) SubType() string { return "Collision" }
func (Collision) Description() string {
	return "Checks if a player moves through blocks."
}

// Expected returns the position delta a movement should result in, including the push of any liquid
// the player is in.
func (Collision) Expected(p *player.Player, m Movement) mgl64.Vec3 {
	loc := p.Location(m.State)
	motion := m.Motion
	flags := loc.Flags()
	if flags.InWater {
		motion = motion.Add(loc.LiquidPush(m.State.Delta.X(), m.State.Delta.Z(), world.Water))
	}
	if flags.InLava {
		motion = motion.Add(loc.LiquidPush(m.State.Delta.X(), m.State.Delta.Z(), world.Lava))
	}
	return loc.Collide(motion, flags.OnGround)
}

// Move evaluates a movement and returns true if it should be cancelled.
func (c Collision) Move(p *player.Player, m Movement) (cancel bool) {
	defer p.Recover(&cancel)

	conf := p.Settings().Collision
	if !conf.Basics.Enabled || m.State.InVehicle {
		return false
	}
	data := player.State(p, collisionKey, func() *collisionData { return &collisionData{} })

	expected := c.Expected(p, m)
	deviation := game.Finite(m.Observed.Sub(expected).Len(), 0)
	_, act := data.rec.Observe(violation.Observation{
		Violation: (deviation - conf.Tolerance) * conf.Multiplier,
		Signal:    deviation,
		Threshold: conf.Tolerance,
	}, violation.Config{
		Normalization:          1,
		DecayFactor:            conf.DecayFactor,
		DecayThresholdFraction: conf.DecayThresholdFraction,
	})
	if !act {
		return false
	}

	extra := orderedmap.NewOrderedMap[string, any]()
	extra.Set("expected", game.Round64(expected.Len(), 4))
	extra.Set("observed", game.Round64(m.Observed.Len(), 4))
	extra.Set("deviation", game.Round64(deviation, 4))
	return Flag(p, c, &data.rec, conf.Basics, "deviation", extra)
}

// Violations returns the violation level of the player for this check.
func (Collision) Violations(p *player.Player) float64 {
	return player.State(p, collisionKey, func() *collisionData { return &collisionData{} }).rec.VL
}
