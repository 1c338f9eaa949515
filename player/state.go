package player

import "github.com/oomph-ac/replica/assert"

// State returns the per-player state stored under key, creating it with create if it does not exist
// yet. Checks use it to keep their data on the player without the player knowing about them.
func State[T any](p *Player, key string, create func() T) T {
	if v, ok := p.states[key]; ok {
		t, ok := v.(T)
		assert.IsTrue(ok, "state %q of %s has type %T", key, p.name, v)
		return t
	}
	t := create()
	p.states[key] = t
	return t
}

// Forget removes the state stored under key.
func (p *Player) Forget(key string) {
	delete(p.states, key)
}
