package world

import (
	"math"

	"github.com/df-mc/dragonfly/server/block/cube"
)

// Overlaps reports whether a and b share volume. The test is strict on the horizontal axes and
// inclusive on the vertical axis, so that a box resting exactly on a surface touches it.
func Overlaps(a, b cube.BBox) bool {
	amin, amax, bmin, bmax := a.Min(), a.Max(), b.Min(), b.Max()
	return amax[0] > bmin[0] && amin[0] < bmax[0] &&
		amax[2] > bmin[2] && amin[2] < bmax[2] &&
		amax[1] >= bmin[1] && amin[1] <= bmax[1]
}

// Intersects reports whether a and b share volume, strictly on every axis.
func Intersects(a, b cube.BBox) bool {
	amin, amax, bmin, bmax := a.Min(), a.Max(), b.Min(), b.Max()
	return amax[0] > bmin[0] && amin[0] < bmax[0] &&
		amax[1] > bmin[1] && amin[1] < bmax[1] &&
		amax[2] > bmin[2] && amin[2] < bmax[2]
}

// VoxelRange returns the inclusive range of voxel coordinates the box touches.
func VoxelRange(box cube.BBox) (min, max cube.Pos) {
	bmin, bmax := box.Min(), box.Max()
	for i := range 3 {
		min[i] = int(math.Floor(bmin[i]))
		max[i] = int(math.Floor(bmax[i]))
	}
	return min, max
}

// shapeOf returns the world boxes of b at pos, or the whole voxel if b has no collision shape.
func shapeOf(b Block, pos cube.Pos) []cube.BBox {
	if boxes := b.WorldBoxes(pos); len(boxes) > 0 {
		return boxes
	}
	p := pos.Vec3()
	return []cube.BBox{cube.Box(p[0], p[1], p[2], p[0]+1, p[1]+1, p[2]+1)}
}

// Collides reports whether a block carrying any of the flags in mask has a shape overlapping box.
// Blocks without a collision shape, such as liquids, are treated as filling their voxel.
func Collides(src Source, box cube.BBox, mask Flags) bool {
	min, max := VoxelRange(box)
	for x := min[0]; x <= max[0]; x++ {
		for y := min[1]; y <= max[1]; y++ {
			for z := min[2]; z <= max[2]; z++ {
				pos := cube.Pos{x, y, z}
				b := src.Block(pos)
				if !b.Flags.Has(mask) {
					continue
				}
				for _, shape := range shapeOf(b, pos) {
					if Overlaps(shape, box) {
						return true
					}
				}
			}
		}
	}
	return false
}

// InsideBlock reports whether a block carrying any of the flags in mask strictly intersects box
// shrunk by the given margin.
func InsideBlock(src Source, box cube.BBox, mask Flags, margin float64) bool {
	box = box.Grow(-margin)
	min, max := VoxelRange(box)
	for x := min[0]; x <= max[0]; x++ {
		for y := min[1]; y <= max[1]; y++ {
			for z := min[2]; z <= max[2]; z++ {
				pos := cube.Pos{x, y, z}
				b := src.Block(pos)
				if !b.Flags.Has(mask) {
					continue
				}
				for _, shape := range shapeOf(b, pos) {
					if Intersects(shape, box) {
						return true
					}
				}
			}
		}
	}
	return false
}

// Footprint reports whether a block carrying any of the flags in mask sits in layer y under the
// horizontal extent of box.
func Footprint(src Source, box cube.BBox, y int, mask Flags) bool {
	bmin, bmax := box.Min(), box.Max()
	for x := int(math.Floor(bmin[0])); x < int(math.Ceil(bmax[0])); x++ {
		for z := int(math.Floor(bmin[2])); z < int(math.Ceil(bmax[2])); z++ {
			if src.Block(cube.Pos{x, y, z}).Flags.Has(mask) {
				return true
			}
		}
	}
	return false
}

// CollisionBoxes returns the world collision boxes of every block that strictly intersects box. The
// scan reaches one voxel further than the box on each side so that shapes taller than a voxel, such
// as fences, are found.
func CollisionBoxes(src Source, box cube.BBox) []cube.BBox {
	min, max := VoxelRange(box)
	var boxes []cube.BBox
	for x := min[0] - 1; x <= max[0]+1; x++ {
		for y := min[1] - 1; y <= max[1]+1; y++ {
			for z := min[2] - 1; z <= max[2]+1; z++ {
				pos := cube.Pos{x, y, z}
				for _, shape := range src.Block(pos).WorldBoxes(pos) {
					if Intersects(shape, box) {
						boxes = append(boxes, shape)
					}
				}
			}
		}
	}
	return boxes
}
