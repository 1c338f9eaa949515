package world

import "github.com/df-mc/dragonfly/server/block/cube"

// horizontalFaces are the faces liquid flow is computed over, in the order the client visits them.
var horizontalFaces = [...]cube.Face{cube.FaceNorth, cube.FaceEast, cube.FaceSouth, cube.FaceWest}

// HorizontalFaces returns north, east, south and west, in that order.
func HorizontalFaces() [4]cube.Face {
	return horizontalFaces
}

// liquidAmount returns the amount of liquid in b on a scale of 0 to 8.
func liquidAmount(b Block, liquid Flags) int {
	if !b.HasLiquid(liquid) {
		return 0
	}
	if !b.Flags.Has(Liquid) || b.Data >= 8 {
		// Waterlogged blocks hold a source, falling liquid fills the voxel.
		return 8
	}
	return 8 - int(b.Data)
}

// LiquidHeight returns the height of the given liquid at pos, between 0 and 1. Unless ownOnly is set,
// liquid with the same liquid directly above it is reported as full height.
func LiquidHeight(src Source, pos cube.Pos, liquid Flags, ownOnly bool) float64 {
	amount := liquidAmount(src.Block(pos), liquid)
	if amount == 0 {
		return 0
	}
	if !ownOnly && src.Block(pos.Side(cube.FaceUp)).HasLiquid(liquid) {
		return 1
	}
	// Heights are single precision on the client.
	return float64(float32(amount) / 9)
}

// AffectsFlow reports whether the block at neighbour takes part in the flow of liquid: it holds
// either no liquid at all or the same liquid.
func AffectsFlow(src Source, neighbour cube.Pos, liquid Flags) bool {
	b := src.Block(neighbour)
	if !b.HasLiquid(Water) && !b.HasLiquid(Lava) {
		return true
	}
	return b.HasLiquid(liquid)
}

// SolidFace reports whether the block next to pos on the given face blocks the flow of liquid
// falling at pos.
func SolidFace(src Source, pos cube.Pos, face cube.Face, liquid Flags) bool {
	b := src.Block(pos.Side(face))
	switch {
	case b.HasLiquid(liquid):
		return false
	case face == cube.FaceUp:
		return true
	case b.Flags.Has(Ice):
		return false
	}
	return b.Flags.Has(Solid) && b.FaceSturdy(face.Opposite())
}
