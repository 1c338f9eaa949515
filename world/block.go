package world

import (
	"github.com/df-mc/dragonfly/server/block/cube"
)

// Block is the physical description of the block at a voxel. Boxes are relative to the voxel origin
// and span at most the unit cube, like dragonfly block models.
type Block struct {
	Name  string
	Flags Flags
	// Data holds the liquid level for liquids: 0 for a source, 1-7 for flowing liquid and 8 or more
	// for falling liquid.
	Data  uint8
	Boxes []cube.BBox
}

// Air is the block returned for voxels that hold nothing.
var Air = Block{Name: "air"}

// FullBlock returns a solid, full-cube ground block with the given name and extra flags.
func FullBlock(name string, extra Flags) Block {
	return Block{Name: name, Flags: Ground | Solid | extra, Boxes: []cube.BBox{cube.Box(0, 0, 0, 1, 1, 1)}}
}

// Slab returns a bottom half-block.
func Slab(name string) Block {
	return Block{Name: name, Flags: Ground | Solid, Boxes: []cube.BBox{cube.Box(0, 0, 0, 1, 0.5, 1)}}
}

// WaterBlock returns water with the given level.
func WaterBlock(level uint8) Block {
	return Block{Name: "water", Flags: Liquid | Water, Data: level}
}

// LavaBlock returns lava with the given level.
func LavaBlock(level uint8) Block {
	return Block{Name: "lava", Flags: Liquid | Lava, Data: level}
}

// IsAir reports whether the block has no flags and no collision.
func (b Block) IsAir() bool {
	return b.Flags == 0 && len(b.Boxes) == 0
}

// HasLiquid reports whether the block holds the given liquid, either as the liquid itself or, for
// water, as a waterlogged block.
func (b Block) HasLiquid(liquid Flags) bool {
	if b.Flags.Has(Liquid) && b.Flags.Has(liquid) {
		return true
	}
	return liquid.Has(Water) && b.Flags.Has(Waterlogged)
}

// Falling reports whether the block is a falling liquid.
func (b Block) Falling() bool {
	return b.Flags.Has(Liquid) && b.Data >= 8
}

// WorldBoxes returns the collision boxes of the block translated to pos.
func (b Block) WorldBoxes(pos cube.Pos) []cube.BBox {
	if len(b.Boxes) == 0 {
		return nil
	}
	out := make([]cube.BBox, len(b.Boxes))
	for i, box := range b.Boxes {
		out[i] = box.Translate(pos.Vec3())
	}
	return out
}

// FaceSturdy reports whether one of the block's boxes covers the whole given face of the voxel.
func (b Block) FaceSturdy(face cube.Face) bool {
	for _, box := range b.Boxes {
		min, max := box.Min(), box.Max()
		full := func(a int) bool { return min[a] <= 0 && max[a] >= 1 }
		var sturdy bool
		switch face {
		case cube.FaceDown:
			sturdy = min[1] <= 0 && full(0) && full(2)
		case cube.FaceUp:
			sturdy = max[1] >= 1 && full(0) && full(2)
		case cube.FaceNorth:
			sturdy = min[2] <= 0 && full(0) && full(1)
		case cube.FaceSouth:
			sturdy = max[2] >= 1 && full(0) && full(1)
		case cube.FaceWest:
			sturdy = min[0] <= 0 && full(1) && full(2)
		case cube.FaceEast:
			sturdy = max[0] >= 1 && full(1) && full(2)
		}
		if sturdy {
			return true
		}
	}
	return false
}
