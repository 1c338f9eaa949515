package settings

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/oomph-ac/replica/action"
	"github.com/oomph-ac/replica/game"
	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

// Settings contains all settings that can be configured for each check.
type Settings struct {
	Physics   Physics   `toml:"physics" yaml:"physics"`
	Frequency Frequency `toml:"frequency" yaml:"frequency"`
	AutoSign  AutoSign  `toml:"auto_sign" yaml:"auto_sign"`
	Collision Collision `toml:"collision" yaml:"collision"`
}

// Basics are the basic settings for a check.
type Basics struct {
	// Enabled is whether the check should be enabled or not.
	Enabled bool `toml:"enabled" yaml:"enabled"`
	// AdjustToLag makes the check account for server side lag.
	AdjustToLag bool `toml:"adjust_to_lag" yaml:"adjust_to_lag"`
	// Actions are the effects executed once the violation level of the check reaches a threshold.
	Actions []Threshold `toml:"actions" yaml:"actions"`
}

// Threshold is the configured form of an action.Threshold. Effects is a comma separated list such
// as "cancel,log".
type Threshold struct {
	VL      float64 `toml:"vl" yaml:"vl"`
	Effects string  `toml:"effects" yaml:"effects"`
}

// ActionList parses the thresholds of the check.
func (b Basics) ActionList() (action.List, error) {
	thresholds := make([]action.Threshold, 0, len(b.Actions))
	for _, t := range b.Actions {
		effects, err := action.Parse(t.Effects)
		if err != nil {
			return action.List{}, fmt.Errorf("threshold %v: %w", t.VL, err)
		}
		thresholds = append(thresholds, action.Threshold{VL: t.VL, Effects: effects})
	}
	return action.NewList(thresholds...), nil
}

// Physics holds the parameters of the physics replication.
type Physics struct {
	StepHeight        float64 `toml:"step_height" yaml:"step_height"`
	YOnGround         float64 `toml:"y_on_ground" yaml:"y_on_ground"`
	EntityStackMargin float64 `toml:"entity_stack_margin" yaml:"entity_stack_margin"`
}

// Frequency holds the settings of the block break frequency check. Durations are in milliseconds.
type Frequency struct {
	Basics Basics `toml:"basics" yaml:"basics"`

	IntervalSurvival int64   `toml:"interval_survival" yaml:"interval_survival"`
	IntervalCreative int64   `toml:"interval_creative" yaml:"interval_creative"`
	BucketDuration   int64   `toml:"bucket_duration" yaml:"bucket_duration"`
	BucketCount      int     `toml:"bucket_count" yaml:"bucket_count"`
	BucketFactor     float64 `toml:"bucket_factor" yaml:"bucket_factor"`
	ShortTermTicks   int64   `toml:"short_term_ticks" yaml:"short_term_ticks"`
	ShortTermLimit   int     `toml:"short_term_limit" yaml:"short_term_limit"`

	Normalization          float64 `toml:"normalization" yaml:"normalization"`
	DecayFactor            float64 `toml:"decay_factor" yaml:"decay_factor"`
	DecayThresholdFraction float64 `toml:"decay_threshold_fraction" yaml:"decay_threshold_fraction"`
}

// AutoSign holds the settings of the sign edit timing check. Durations are in milliseconds.
type AutoSign struct {
	Basics Basics `toml:"basics" yaml:"basics"`

	// SkipEmpty ignores signs without any text.
	SkipEmpty   bool  `toml:"skip_empty" yaml:"skip_empty"`
	MaxEditTime int64 `toml:"max_edit_time" yaml:"max_edit_time"`
	MinEditTime int64 `toml:"min_edit_time" yaml:"min_edit_time"`
	MinLineTime int64 `toml:"min_line_time" yaml:"min_line_time"`
	MinCharTime int64 `toml:"min_char_time" yaml:"min_char_time"`
}

// Collision holds the settings of the movement collision check.
type Collision struct {
	Basics Basics `toml:"basics" yaml:"basics"`

	// Tolerance is the distance the observed movement may deviate from the replicated one.
	Tolerance float64 `toml:"tolerance" yaml:"tolerance"`
	// Multiplier converts a deviation in blocks into violation level.
	Multiplier  float64 `toml:"multiplier" yaml:"multiplier"`
	DecayFactor float64 `toml:"decay_factor" yaml:"decay_factor"`
	// DecayThresholdFraction is the fraction of Tolerance a deviation has to stay below for the
	// violation level to decay.
	DecayThresholdFraction float64 `toml:"decay_threshold_fraction" yaml:"decay_threshold_fraction"`
}

// DefaultSettings returns the default settings for all checks.
func DefaultSettings() Settings {
	s := Settings{}
	s.Physics = Physics{
		StepHeight:        game.StepHeight,
		YOnGround:         game.DefaultYOnGround,
		EntityStackMargin: game.EntityStackMargin,
	}

	s.Frequency = Frequency{
		Basics: Basics{
			Enabled:     true,
			AdjustToLag: true,
			Actions: []Threshold{
				{VL: 0, Effects: "cancel"},
				{VL: 5, Effects: "cancel,warn,log"},
				{VL: 60, Effects: "cancel,warn,log,kick"},
			},
		},
		IntervalSurvival:       45,
		IntervalCreative:       95,
		BucketDuration:         1000,
		BucketCount:            2,
		BucketFactor:           1,
		ShortTermTicks:         5,
		ShortTermLimit:         7,
		Normalization:          1000,
		DecayFactor:            0.95,
		DecayThresholdFraction: 0.75,
	}

	s.AutoSign = AutoSign{
		Basics: Basics{
			Enabled:     true,
			AdjustToLag: true,
			Actions: []Threshold{
				{VL: 0, Effects: "cancel,log"},
				{VL: 10, Effects: "cancel,warn,log"},
			},
		},
		SkipEmpty:   false,
		MaxEditTime: 1500,
		MinEditTime: 150,
		MinLineTime: 50,
		MinCharTime: 50,
	}

	s.Collision = Collision{
		Basics: Basics{
			Enabled: true,
			Actions: []Threshold{
				{VL: 0, Effects: "cancel"},
				{VL: 20, Effects: "cancel,warn,log"},
			},
		},
		Tolerance:              0.001,
		Multiplier:             100,
		DecayFactor:            0.98,
		DecayThresholdFraction: 0.5,
	}
	return s
}

// Validate clamps untrusted values into their valid ranges, falling back to the defaults for
// values that cannot be used or are missing, and makes sure every action list parses.
func (s *Settings) Validate() error {
	def := DefaultSettings()

	positive(&s.Physics.StepHeight, def.Physics.StepHeight)
	positive(&s.Physics.YOnGround, def.Physics.YOnGround)
	positive(&s.Physics.EntityStackMargin, def.Physics.EntityStackMargin)

	f := &s.Frequency
	positiveInt(&f.IntervalSurvival, def.Frequency.IntervalSurvival)
	positiveInt(&f.IntervalCreative, def.Frequency.IntervalCreative)
	positiveInt(&f.BucketDuration, def.Frequency.BucketDuration)
	positiveInt(&f.BucketCount, def.Frequency.BucketCount)
	positive(&f.BucketFactor, def.Frequency.BucketFactor)
	positiveInt(&f.ShortTermTicks, def.Frequency.ShortTermTicks)
	positiveInt(&f.ShortTermLimit, def.Frequency.ShortTermLimit)
	positive(&f.Normalization, def.Frequency.Normalization)
	f.DecayFactor = game.ClampFloat(game.Finite(f.DecayFactor, def.Frequency.DecayFactor), 0, 1)
	f.DecayThresholdFraction = game.ClampFloat(game.Finite(f.DecayThresholdFraction, def.Frequency.DecayThresholdFraction), 0, 1)

	a := &s.AutoSign
	positiveInt(&a.MaxEditTime, def.AutoSign.MaxEditTime)
	positiveInt(&a.MinEditTime, def.AutoSign.MinEditTime)
	positiveInt(&a.MinLineTime, def.AutoSign.MinLineTime)
	positiveInt(&a.MinCharTime, def.AutoSign.MinCharTime)

	c := &s.Collision
	c.Tolerance = math.Max(0, game.Finite(c.Tolerance, def.Collision.Tolerance))
	positive(&c.Multiplier, def.Collision.Multiplier)
	c.DecayFactor = game.ClampFloat(game.Finite(c.DecayFactor, def.Collision.DecayFactor), 0, 1)
	c.DecayThresholdFraction = game.ClampFloat(game.Finite(c.DecayThresholdFraction, def.Collision.DecayThresholdFraction), 0, 1)

	sections := []struct {
		name   string
		b, def *Basics
	}{
		{"frequency", &f.Basics, &def.Frequency.Basics},
		{"auto_sign", &a.Basics, &def.AutoSign.Basics},
		{"collision", &c.Basics, &def.Collision.Basics},
	}
	for _, sec := range sections {
		if sec.b.Actions == nil {
			sec.b.Actions = sec.def.Actions
		}
		if _, err := sec.b.ActionList(); err != nil {
			return fmt.Errorf("%s actions: %w", sec.name, err)
		}
	}
	return nil
}

func positive(v *float64, def float64) {
	if math.IsNaN(*v) || math.IsInf(*v, 0) || *v <= 0 {
		*v = def
	}
}

func positiveInt[T int | int64](v *T, def T) {
	if *v <= 0 {
		*v = def
	}
}

// SaveDefault will create and save the default settings file. The encoding is chosen by the file
// extension. If the file already exists, it will return an error.
func SaveDefault(path string) error {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return errors.New("settings file already exists")
	}

	data, err := marshal(path, DefaultSettings())
	if err != nil {
		return fmt.Errorf("failed encoding default settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed creating settings file: %w", err)
	}
	return nil
}

// Load will load and validate the settings from your settings file, and return an error if the file
// does not exist. Files ending in .yaml or .yml are decoded as YAML, everything else as TOML.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Settings{}, errors.New("settings file doesn't exist")
	} else if err != nil {
		return Settings{}, fmt.Errorf("error reading config: %w", err)
	}

	s := DefaultSettings()
	if isYAML(path) {
		err = yaml.Unmarshal(data, &s)
	} else {
		err = toml.Unmarshal(data, &s)
	}
	if err != nil {
		return Settings{}, fmt.Errorf("error decoding config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("invalid config: %w", err)
	}
	return s, nil
}

func marshal(path string, s Settings) ([]byte, error) {
	if isYAML(path) {
		return yaml.Marshal(s)
	}
	return toml.Marshal(s)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
