package world

import (
	"sync"

	"github.com/df-mc/dragonfly/server/block/cube"
)

// Source provides read-only access to the blocks of a world. Implementations must be safe for
// concurrent reads.
type Source interface {
	// Block returns the block at pos, or Air if nothing is there.
	Block(pos cube.Pos) Block
}

// EntityProbe answers whether an entity other than self occupies part of a region that an entity
// could stand on.
type EntityProbe interface {
	StandsOnEntity(self uint64, region cube.BBox) bool
}

// NopProbe is an EntityProbe for worlds without entities.
type NopProbe struct{}

func (NopProbe) StandsOnEntity(uint64, cube.BBox) bool { return false }

// Map is an in-memory Source. The zero value is an empty world of air.
type Map struct {
	mu     sync.RWMutex
	blocks map[cube.Pos]Block
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{blocks: make(map[cube.Pos]Block)}
}

func (m *Map) Block(pos cube.Pos) Block {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if b, ok := m.blocks[pos]; ok {
		return b
	}
	return Air
}

// SetBlock sets the block at pos. Setting Air removes the entry.
func (m *Map) SetBlock(pos cube.Pos, b Block) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.blocks == nil {
		m.blocks = make(map[cube.Pos]Block)
	}
	if b.IsAir() {
		delete(m.blocks, pos)
		return
	}
	m.blocks[pos] = b
}

// Fill sets every block in the inclusive range between a and b.
func (m *Map) Fill(a, b cube.Pos, blk Block) {
	for x := min(a[0], b[0]); x <= max(a[0], b[0]); x++ {
		for y := min(a[1], b[1]); y <= max(a[1], b[1]); y++ {
			for z := min(a[2], b[2]); z <= max(a[2], b[2]); z++ {
				m.SetBlock(cube.Pos{x, y, z}, blk)
			}
		}
	}
}
