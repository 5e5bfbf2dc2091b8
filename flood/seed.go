package flood

import "golang.org/x/exp/constraints"

// Texel is one RGBA float32 texel of a mask, seed or flood surface.
//
// Mask surfaces store (coverage, owner, 0, 1). Seed and flood surfaces
// store (x, y, owner, 1) where x and y are the integer texel coordinates of
// the nearest seed found so far, or NoSeed.
type Texel [4]float32

// NoSeed marks a texel that has not been reached by any seed.
var NoSeed = Texel{-1, -1, 0, 0}

// CoverageThreshold is the mask coverage at and above which a texel seeds.
const CoverageThreshold = 0.5

// MaskTexel encodes a rasterized mask fragment.
func MaskTexel(coverage float32, owner uint32) Texel {
	return Texel{coverage, float32(owner), 0, 1}
}

// SeedTexel encodes a seed located at (x, y).
func SeedTexel(x, y int, owner uint32) Texel {
	return Texel{float32(x), float32(y), float32(owner), 1}
}

// Valid reports whether t carries a seed coordinate.
func (t Texel) Valid() bool {
	return t[3] > 0.5
}

// Coord returns the seed coordinate stored in t.
func (t Texel) Coord() (x, y int) {
	return int(t[0]), int(t[1])
}

// Owner returns the owner id stored in t. Zero means no owner.
func (t Texel) Owner() uint32 {
	if t[2] <= 0 {
		return 0
	}
	return uint32(t[2] + 0.5)
}

// SeedFromMask converts the mask texel at (x, y) into its seed encoding.
func SeedFromMask(m Texel, x, y int) Texel {
	if m[3] <= 0.5 || m[0] < CoverageThreshold {
		return NoSeed
	}
	return SeedTexel(x, y, uint32(m[1]+0.5))
}

// SquaredDistance returns the squared Euclidean distance between two
// integer points.
func SquaredDistance[T constraints.Signed](ax, ay, bx, by T) T {
	dx := ax - bx
	dy := ay - by
	return dx*dx + dy*dy
}
