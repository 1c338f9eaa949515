package version

import (
	"github.com/oomph-ac/replica/assert"
)

// Cutover is one row of a Table: the value applies to every version on or beyond the boundary.
type Cutover[T any] struct {
	boundary Version
	after    bool
	val      T
}

// Since returns a cutover applying to versions >= v.
func Since[T any](v Version, val T) Cutover[T] {
	return Cutover[T]{boundary: v, val: val}
}

// After returns a cutover applying to versions > v.
func After[T any](v Version, val T) Cutover[T] {
	return Cutover[T]{boundary: v, after: true, val: val}
}

func (c Cutover[T]) key() uint64 {
	k := uint64(c.boundary) << 1
	if c.after {
		k |= 1
	}
	return k
}

func (c Cutover[T]) applies(v Version) bool {
	if c.after {
		return v > c.boundary
	}
	return v >= c.boundary
}

// Table selects one of several frozen formula variants by version. Every version maps to exactly one
// value: the legacy value below the first cutover, otherwise the value of the last cutover that
// applies.
type Table[T any] struct {
	legacy   T
	cutovers []Cutover[T]
}

// NewTable returns a table with the given legacy value and cutovers. Cutovers must be passed in
// strictly ascending order.
func NewTable[T any](legacy T, cutovers ...Cutover[T]) Table[T] {
	for i := 1; i < len(cutovers); i++ {
		assert.IsTrue(cutovers[i-1].key() < cutovers[i].key(), "version table cutovers out of order at %v", cutovers[i].boundary)
	}
	return Table[T]{legacy: legacy, cutovers: cutovers}
}

// Lookup returns the value for v.
func (t Table[T]) Lookup(v Version) T {
	v = v.Resolve()
	val := t.legacy
	for _, c := range t.cutovers {
		if !c.applies(v) {
			break
		}
		val = c.val
	}
	return val
}
