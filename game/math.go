package game

import (
	"math"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
)

// Round64 will round a float64 to a given precision.
func Round64(val float64, precision int) float64 {
	pwr := math.Pow(10, float64(precision))
	return math.Round(val*pwr) / pwr
}

// ClampFloat clamps the given value to the given range.
func ClampFloat(num, min, max float64) float64 {
	if num < min {
		return min
	}
	return math.Min(num, max)
}

// Finite returns v, or fallback if v is NaN or infinite.
func Finite(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

// Vec3HzDistSqr returns the squared horizontal distance in a vector.
func Vec3HzDistSqr(vec3 mgl64.Vec3) float64 {
	return vec3.X()*vec3.X() + vec3.Z()*vec3.Z()
}

// SafeNormalize returns the unit vector of v, or the zero vector if v is too short to have a
// meaningful direction.
func SafeNormalize(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l < NormalizeEpsilon || math.IsNaN(l) || math.IsInf(l, 0) {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}

// Floor returns the voxel coordinate containing f.
func Floor(f float64) int {
	return int(math.Floor(f))
}

// Ceil returns the smallest voxel coordinate not below f.
func Ceil(f float64) int {
	return int(math.Ceil(f))
}

// AxisOffset returns how far box may move along axis (0 = x, 1 = y, 2 = z) by at most d before it
// touches obstacle. The result keeps the sign of d and never exceeds its magnitude. If the boxes do
// not overlap on the two other axes, d is returned unchanged.
func AxisOffset(obstacle, box cube.BBox, axis int, d float64) float64 {
	if d == 0 {
		return 0
	}
	oMin, oMax, bMin, bMax := obstacle.Min(), obstacle.Max(), box.Min(), box.Max()
	for other := range 3 {
		if other == axis {
			continue
		}
		if bMax[other] <= oMin[other] || bMin[other] >= oMax[other] {
			return d
		}
	}
	if d > 0 && bMax[axis] <= oMin[axis] {
		if gap := oMin[axis] - bMax[axis]; gap < d {
			d = gap
		}
	} else if d < 0 && bMin[axis] >= oMax[axis] {
		if gap := oMax[axis] - bMin[axis]; gap > d {
			d = gap
		}
	}
	return d
}

// BoxFromDimensions returns the box of an entity whose feet are centred at pos.
func BoxFromDimensions(pos mgl64.Vec3, width, height float64) cube.BBox {
	w := width / 2
	return cube.Box(pos[0]-w, pos[1], pos[2]-w, pos[0]+w, pos[1]+height, pos[2]+w)
}

// ExpandTowards grows box in the direction of motion only, covering the volume it sweeps.
func ExpandTowards(box cube.BBox, motion mgl64.Vec3) cube.BBox {
	min, max := box.Min(), box.Max()
	for i := range 3 {
		if motion[i] < 0 {
			min[i] += motion[i]
		} else {
			max[i] += motion[i]
		}
	}
	return cube.Box(min[0], min[1], min[2], max[0], max[1], max[2])
}
