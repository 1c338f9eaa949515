package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/oomph-ac/replica/action"
)

func TestSaveDefaultAndLoad(t *testing.T) {
	for _, name := range []string{"settings.toml", "settings.yaml"} {
		path := filepath.Join(t.TempDir(), name)
		if err := SaveDefault(path); err != nil {
			t.Fatalf("%s: SaveDefault: %v", name, err)
		}
		if err := SaveDefault(path); err == nil {
			t.Fatalf("%s: expected SaveDefault to refuse overwriting", name)
		}

		s, err := Load(path)
		if err != nil {
			t.Fatalf("%s: Load: %v", name, err)
		}
		def := DefaultSettings()
		if s.Frequency.ShortTermLimit != def.Frequency.ShortTermLimit || s.Frequency.BucketCount != def.Frequency.BucketCount {
			t.Fatalf("%s: frequency settings did not survive: %+v", name, s.Frequency)
		}
		if s.AutoSign.MaxEditTime != 1500 || s.AutoSign.MinCharTime != 50 {
			t.Fatalf("%s: auto sign settings did not survive: %+v", name, s.AutoSign)
		}
		if !s.Collision.Basics.Enabled || len(s.Collision.Basics.Actions) != len(def.Collision.Basics.Actions) {
			t.Fatalf("%s: collision settings did not survive: %+v", name, s.Collision)
		}
		l, err := s.Frequency.Basics.ActionList()
		if err != nil {
			t.Fatalf("%s: ActionList: %v", name, err)
		}
		if got := l.EffectsFor(5); !got.Has(action.Cancel | action.Warn | action.Log) {
			t.Fatalf("%s: expected cancel,warn,log at vl 5, got %v", name, got)
		}
	}
}

func TestLoadYAMLOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yml")
	data := []byte(`
frequency:
  short_term_ticks: 100
  short_term_limit: 10
  decay_factor: 3
  basics:
    enabled: true
    actions:
      - vl: 0
        effects: cancel
auto_sign:
  skip_empty: true
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Frequency.ShortTermTicks != 100 || s.Frequency.ShortTermLimit != 10 {
		t.Fatalf("expected overridden short term settings, got %+v", s.Frequency)
	}
	if s.Frequency.DecayFactor != 1 {
		t.Fatalf("expected the decay factor to be clamped to 1, got %v", s.Frequency.DecayFactor)
	}
	if !s.AutoSign.SkipEmpty || s.AutoSign.MaxEditTime != 1500 {
		t.Fatalf("expected skip empty with default timings, got %+v", s.AutoSign)
	}
}

func TestLoadInvalid(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected an error for a missing file")
	}

	path := filepath.Join(t.TempDir(), "settings.yaml")
	data := []byte("collision:\n  basics:\n    actions:\n      - vl: 1\n        effects: explode\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected an error for an unknown effect")
	}
}

func TestValidate(t *testing.T) {
	s := Settings{}
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	def := DefaultSettings()
	if s.Physics != def.Physics {
		t.Fatalf("expected default physics, got %+v", s.Physics)
	}
	if s.Frequency.ShortTermTicks != def.Frequency.ShortTermTicks || s.Frequency.Normalization != def.Frequency.Normalization {
		t.Fatalf("expected default frequency limits, got %+v", s.Frequency)
	}
	if len(s.AutoSign.Basics.Actions) == 0 {
		t.Fatalf("expected default actions for a missing action list")
	}

	s.Collision.Tolerance = -1
	s.Frequency.DecayFactor = -0.5
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if s.Collision.Tolerance != 0 || s.Frequency.DecayFactor != 0 {
		t.Fatalf("expected clamped values, got tolerance %v and decay %v", s.Collision.Tolerance, s.Frequency.DecayFactor)
	}
}
