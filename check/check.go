package check

import (
	"github.com/elliotchance/orderedmap/v2"
	"github.com/oomph-ac/replica/action"
	"github.com/oomph-ac/replica/player"
	"github.com/oomph-ac/replica/settings"
	"github.com/oomph-ac/replica/violation"
)

// Check describes a check. Every check keeps its per-player data on the player.Player it evaluates,
// so a single value serves all players.
type Check interface {
	// Type returns the primary type of the check. E.G - "BlockBreak", "Movement", etc.
	Type() string
	// SubType returns the method the check uses to find the cheat named by Type.
	SubType() string
	// Description returns the description of what the check does.
	Description() string
}

// Flag dispatches the last violation added to rec and returns true if the event that caused it
// should be cancelled. The violation level of rec must already include the violation.
func Flag(p *player.Player, c Check, rec *violation.Record, b settings.Basics, tag string, extra *orderedmap.OrderedMap[string, any]) bool {
	if extra == nil {
		extra = orderedmap.NewOrderedMap[string, any]()
	}
	extra.Set("tick", p.Tick())

	actions, err := b.ActionList()
	if err != nil {
		p.Log().Errorf("%s: invalid actions of %s (%s): %v", p.Name(), c.Type(), c.SubType(), err)
		return false
	}
	return p.Dispatcher().Dispatch(action.Violation{
		PlayerID: p.ID(),
		Player:   p.Name(),
		Check:    c.Type(),
		SubType:  c.SubType(),
		Tag:      tag,
		VL:       rec.VL,
		Added:    rec.LastAdded,
		Actions:  actions,
		Extra:    extra,
	})
}

// lagOf returns the lag source of the player if the check adjusts to lag, or nil otherwise.
func lagOf(p *player.Player, b settings.Basics) violation.LagSource {
	if !b.AdjustToLag {
		return nil
	}
	return p.Lag()
}
