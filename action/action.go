package action

import (
	"slices"
	"strings"
	"time"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/google/uuid"
	"github.com/oomph-ac/replica/oerror"
)

// Effect is a set of consequences of a violation.
type Effect uint8

const (
	// Cancel asks the caller to cancel the event that was checked.
	Cancel Effect = 1 << iota
	// Warn logs the violation at warning level.
	Warn
	// Log forwards the violation to the history sink.
	Log
	// Kick removes the player from the server.
	Kick

	None Effect = 0
)

type namedEffect struct {
	e    Effect
	name string
}

var effectNames = []namedEffect{
	{Cancel, "cancel"},
	{Warn, "warn"},
	{Log, "log"},
	{Kick, "kick"},
}

// Has returns true if all effects in o are part of e.
func (e Effect) Has(o Effect) bool {
	return e&o == o
}

func (e Effect) String() string {
	if e == None {
		return "none"
	}
	names := make([]string, 0, len(effectNames))
	for _, n := range effectNames {
		if e.Has(n.e) {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, ",")
}

// Parse parses a comma separated list of effects such as "cancel,log". An empty string or "none"
// results in no effects.
func Parse(s string) (Effect, error) {
	var e Effect
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" || part == "none" {
			continue
		}
		idx := slices.IndexFunc(effectNames, func(n namedEffect) bool { return n.name == part })
		if idx == -1 {
			return None, oerror.InvalidArgument("unknown effect %q", part)
		}
		e |= effectNames[idx].e
	}
	return e, nil
}

// Threshold applies its effects once the violation level reaches VL.
type Threshold struct {
	VL      float64
	Effects Effect
}

// List is an ordered list of thresholds.
type List struct {
	thresholds []Threshold
}

// NewList returns a list of the given thresholds ordered by violation level. Thresholds sharing a
// violation level are merged.
func NewList(thresholds ...Threshold) List {
	sorted := slices.Clone(thresholds)
	slices.SortStableFunc(sorted, func(a, b Threshold) int {
		switch {
		case a.VL < b.VL:
			return -1
		case a.VL > b.VL:
			return 1
		}
		return 0
	})
	merged := sorted[:0]
	for _, t := range sorted {
		if n := len(merged); n > 0 && merged[n-1].VL == t.VL {
			merged[n-1].Effects |= t.Effects
			continue
		}
		merged = append(merged, t)
	}
	return List{thresholds: merged}
}

// EffectsFor returns the effects of the highest threshold not above vl.
func (l List) EffectsFor(vl float64) Effect {
	effects := None
	for _, t := range l.thresholds {
		if t.VL > vl {
			break
		}
		effects = t.Effects
	}
	return effects
}

// Thresholds returns a copy of the thresholds in the list.
func (l List) Thresholds() []Threshold {
	return slices.Clone(l.thresholds)
}

// Violation is a flagged evaluation of a check, handed to a Dispatcher.
type Violation struct {
	PlayerID uuid.UUID
	Player   string

	// Check is the primary type of the check, for example "BlockBreak". SubType names the method,
	// for example "Frequency".
	Check   string
	SubType string
	// Tag describes the sub-condition that fired.
	Tag string

	// VL is the violation level after the violation was added. Added is the amount added.
	VL    float64
	Added float64

	Actions List
	Extra   *orderedmap.OrderedMap[string, any]
}

// Dispatcher executes the configured effects of violations. Dispatch returns true if the event that
// caused the violation should be cancelled.
type Dispatcher interface {
	Dispatch(v Violation) bool
}

// NopDispatcher drops every violation and never cancels.
type NopDispatcher struct{}

func (NopDispatcher) Dispatch(Violation) bool { return false }

// Entry is a violation as written to a Sink.
type Entry struct {
	PlayerID uuid.UUID
	Player   string
	Check    string
	SubType  string
	Tag      string
	VL       float64
	Added    float64
	Extra    string
	Time     time.Time
}

// Sink persists violations that carry the Log effect.
type Sink interface {
	Record(e Entry) error
}
