package entity

import (
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/replica/game"
	"github.com/oomph-ac/replica/movement"
)

// Kind is a set of capabilities of an entity, independent from the client version controlling it.
type Kind uint8

const (
	// Living entities have an eye height of their own.
	Living Kind = 1 << iota
	Player
	Vehicle
)

// Has reports whether all capabilities in o are present.
func (k Kind) Has(o Kind) bool {
	return k&o == o
}

// State is the physical state of an entity for one sample.
type State struct {
	ID uint64
	// Pos is the position of the feet of the entity.
	Pos mgl64.Vec3
	// Delta is the movement since the previous sample.
	Delta mgl64.Vec3

	Width     float64
	Height    float64
	EyeHeight float64

	Kind        Kind
	Flying      bool
	InVehicle   bool
	Environment movement.Environment
}

// Dimensions returns the width, full height and eye height used for the box. Living entities are at
// least as tall as their eyes, other entities see from the top of their box.
func (s State) Dimensions() (width, height, eyeHeight float64) {
	if s.Kind.Has(Living) {
		return s.Width, max(s.Height, s.EyeHeight), s.EyeHeight
	}
	return s.Width, s.Height, s.Height
}

// Box returns the bounding box of the entity at its position.
func (s State) Box() cube.BBox {
	width, height, _ := s.Dimensions()
	return game.BoxFromDimensions(s.Pos, width, height)
}

// Options are the tunables of the physical model.
type Options struct {
	// YOnGround is how far below the feet geometry still counts as ground.
	YOnGround float64
	// StepHeight is the height the entity may step up. Zero disables stepping.
	StepHeight float64
	// EntityStackMargin is the horizontal margin within which another entity can be stood on.
	EntityStackMargin float64
}

// DefaultOptions returns the options of a player.
func DefaultOptions() Options {
	return Options{YOnGround: game.DefaultYOnGround, StepHeight: game.StepHeight, EntityStackMargin: game.EntityStackMargin}
}
