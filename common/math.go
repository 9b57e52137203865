package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ComposeTRS builds a column-major model matrix from translation, rotation and scale.
// The result applies scale first, then rotation, then translation (M = T * R * S).
//
// Parameters:
//   - t: translation in parent space
//   - r: rotation quaternion (normalized internally)
//   - s: per-axis scale factors
//
// Returns:
//   - mgl32.Mat4: the composed transform
func ComposeTRS(t mgl32.Vec3, r mgl32.Quat, s mgl32.Vec3) mgl32.Mat4 {
	rot := r.Normalize().Mat4()
	return mgl32.Translate3D(t[0], t[1], t[2]).Mul4(rot).Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
}

// MaxComponent returns the largest of the three components of v.
//
// Parameters:
//   - v: the vector to inspect
//
// Returns:
//   - float32: max(v.x, v.y, v.z)
func MaxComponent(v mgl32.Vec3) float32 {
	return max(v[0], v[1], v[2])
}

// SafeNormalize returns v scaled to unit length, or fallback when v has (near) zero length.
//
// Parameters:
//   - v: the vector to normalize
//   - fallback: returned unchanged when v cannot be normalized
//
// Returns:
//   - mgl32.Vec3: the unit vector
func SafeNormalize(v, fallback mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l < 1e-8 || math.IsNaN(float64(l)) {
		return fallback
	}
	return v.Mul(1 / l)
}

// Clamp32 restricts v to the closed range [lo, hi].
func Clamp32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
