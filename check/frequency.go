package check

import (
	"time"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/oomph-ac/replica/game"
	"github.com/oomph-ac/replica/player"
	"github.com/oomph-ac/replica/settings"
	"github.com/oomph-ac/replica/violation"
)

const frequencyKey = "check.frequency"

// Frequency limits how fast a player breaks blocks, both over a period of a few seconds and over a
// short amount of ticks.
type Frequency struct{}

type frequencyData struct {
	conf    settings.Frequency
	buckets *violation.TimeBuckets
	window  violation.ShortTermWindow
	rec     violation.Record
}

func (Frequency) Type() string    { return "BlockBreak" }
func (Frequency) SubType() string { return "Frequency" }
func (Frequency) Description() string {
	return "Checks if a player breaks blocks faster than possible."
}

// Break evaluates a block break at now and returns true if it should be cancelled.
func (c Frequency) Break(p *player.Player, now time.Time) (cancel bool) {
	defer p.Recover(&cancel)

	conf := p.Settings().Frequency
	if !conf.Basics.Enabled {
		return false
	}
	data := player.State(p, frequencyKey, func() *frequencyData { return newFrequencyData(conf) })
	if data.conf.BucketCount != conf.BucketCount || data.conf.BucketDuration != conf.BucketDuration {
		data.buckets = violation.NewTimeBuckets(conf.BucketCount, time.Duration(conf.BucketDuration)*time.Millisecond)
	}
	data.conf = conf

	interval := conf.IntervalSurvival
	if p.Creative() {
		interval = conf.IntervalCreative
	}
	data.buckets.Add(now, float64(interval))
	fullScore := data.buckets.Score(conf.BucketFactor)
	fullTime := data.buckets.Window()

	lag := lagOf(p, conf.Basics)
	count := data.window.Add(p.Tick(), conf.ShortTermTicks, lag)
	fullLag := 1.0
	if lag != nil {
		fullLag = violation.LagFactor(lag, fullTime)
	}

	full := violation.FullPeriodViolation(fullScore, fullTime, fullLag)
	short := violation.ShortTermViolation(count, conf.ShortTermLimit, conf.ShortTermTicks)
	_, act := data.rec.Observe(violation.Observation{
		Violation: violation.MaxViolation(full, short),
		Signal:    fullScore,
		Threshold: float64(fullTime.Milliseconds()),
	}, violation.Config{
		Normalization:          conf.Normalization,
		DecayFactor:            conf.DecayFactor,
		DecayThresholdFraction: conf.DecayThresholdFraction,
	})
	if !act {
		return false
	}

	tag := "short_term"
	if full > short {
		tag = "full_period"
	}
	extra := orderedmap.NewOrderedMap[string, any]()
	extra.Set("full_score", game.Round64(fullScore, 2))
	extra.Set("short_term", count)
	return Flag(p, c, &data.rec, conf.Basics, tag, extra)
}

// Violations returns the violation level of the player for this check.
func (Frequency) Violations(p *player.Player) float64 {
	return player.State(p, frequencyKey, func() *frequencyData { return newFrequencyData(p.Settings().Frequency) }).rec.VL
}

func newFrequencyData(conf settings.Frequency) *frequencyData {
	return &frequencyData{
		conf:    conf,
		buckets: violation.NewTimeBuckets(conf.BucketCount, time.Duration(conf.BucketDuration)*time.Millisecond),
	}
}
