package violation

import (
	"math"
	"time"

	"github.com/oomph-ac/replica/game"
)

// Config holds the scoring parameters shared by every check.
type Config struct {
	// Normalization converts a raw violation into violation level units.
	Normalization float64
	// DecayFactor is the factor the violation level is multiplied with on a clean observation.
	DecayFactor float64
	// DecayThresholdFraction is the fraction of the threshold the signal has to stay below for the
	// violation level to decay.
	DecayThresholdFraction float64
}

// DefaultConfig returns the parameters of the rate limit checks.
func DefaultConfig() Config {
	return Config{Normalization: 1000, DecayFactor: 0.95, DecayThresholdFraction: 0.75}
}

// Observation is one evaluation of a check.
type Observation struct {
	// Violation is the raw deviation of this evaluation. Anything not positive counts as clean.
	Violation float64
	// Signal is the smoothed value compared against Threshold to decide on decay.
	Signal    float64
	Threshold float64
}

// Record is the violation level of one check for one player. The zero value is ready to use.
type Record struct {
	// VL is the violation level. It is never negative.
	VL float64
	// LastAdded is the amount added by the last violation.
	LastAdded float64
	// LastViolation is the time of the last violation.
	LastViolation time.Time
}

// Observe feeds an observation into the record. A violation raises the violation level by the
// normalized violation and asks for actions to be executed. A clean observation whose signal is
// comfortably below its threshold decays the level instead.
func (r *Record) Observe(o Observation, c Config) (vl float64, act bool) {
	violation := sanitize(o.Violation)
	if violation > 0 {
		norm := c.Normalization
		if !(norm > 0) || math.IsInf(norm, 0) {
			norm = 1
		}
		r.Add(violation / norm)
		return r.VL, true
	}

	fraction := game.ClampFloat(game.Finite(c.DecayThresholdFraction, 0), 0, 1)
	if r.VL > 0 && sanitize(o.Signal) < sanitize(o.Threshold)*fraction {
		r.Decay(c.DecayFactor)
	}
	return r.VL, false
}

// Add raises the violation level by amount. Non-finite and negative amounts are ignored.
func (r *Record) Add(amount float64) float64 {
	amount = sanitize(amount)
	r.VL += amount
	r.LastAdded = amount
	r.LastViolation = time.Now()
	return r.VL
}

// Decay multiplies the violation level by factor, clamped into [0, 1].
func (r *Record) Decay(factor float64) float64 {
	factor = game.ClampFloat(game.Finite(factor, 1), 0, 1)
	r.VL = math.Max(0, r.VL*factor)
	return r.VL
}

// Reset clears the record.
func (r *Record) Reset() {
	*r = Record{}
}

// sanitize turns untrusted values into finite, non-negative ones.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// MaxViolation returns the larger of two independently normalized violations.
func MaxViolation(full, short float64) float64 {
	return math.Max(sanitize(full), sanitize(short))
}
