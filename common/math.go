// package common contains small math helpers shared by the animation packages. They are plain functions over
// mathgl types, not interface-wrapped structs.
package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Epsilon is the tolerance used for near-zero checks on weights, scales and determinants.
const Epsilon float32 = 1e-6

// Clamp01 clamps v into the closed range [0, 1].
//
// Parameters:
//   - v: the value to clamp
//
// Returns:
//   - float32: v limited to [0, 1]
func Clamp01(v float32) float32 {
	return mgl32.Clamp(v, 0, 1)
}

// Lerp linearly interpolates between a and b by t. t is not clamped.
//
// Parameters:
//   - a: the value at t = 0
//   - b: the value at t = 1
//   - t: the interpolation factor
//
// Returns:
//   - float32: a + (b-a)*t
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// WithinEpsilon reports whether |a-b| <= eps. Unlike mgl32's relative comparisons the tolerance is
// absolute, so it behaves the same near zero as anywhere else.
//
// Parameters:
//   - a: the first value
//   - b: the second value
//   - eps: the absolute tolerance
//
// Returns:
//   - bool: true if a and b differ by at most eps
func WithinEpsilon(a, b, eps float32) bool {
	return absf(a-b) <= eps
}

// LerpVec3 linearly interpolates each component of two vectors.
//
// Parameters:
//   - a: the vector at t = 0
//   - b: the vector at t = 1
//   - t: the interpolation factor
//
// Returns:
//   - mgl32.Vec3: the interpolated vector
func LerpVec3(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return mgl32.Vec3{Lerp(a[0], b[0], t), Lerp(a[1], b[1], t), Lerp(a[2], b[2], t)}
}

// MulVec3 multiplies two vectors component-wise.
func MulVec3(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// DivVec3 divides a by b component-wise. Components of b whose magnitude is below Epsilon yield 0
// instead of an infinity.
//
// Parameters:
//   - a: the dividend
//   - b: the divisor
//
// Returns:
//   - mgl32.Vec3: a / b with zero-safe components
func DivVec3(a, b mgl32.Vec3) mgl32.Vec3 {
	var out mgl32.Vec3
	for i := range out {
		if absf(b[i]) < Epsilon {
			continue
		}
		out[i] = a[i] / b[i]
	}
	return out
}

// AlignQuat returns q or -q, whichever lies in the same hemisphere as ref.
// Both represent the same rotation; the aligned one interpolates along the short arc.
//
// Parameters:
//   - ref: the sign reference quaternion
//   - q: the quaternion to align
//
// Returns:
//   - mgl32.Quat: q with its sign flipped if ref·q < 0
func AlignQuat(ref, q mgl32.Quat) mgl32.Quat {
	if ref.Dot(q) < 0 {
		return q.Scale(-1)
	}
	return q
}

// Slerp spherically interpolates from a to b along the shortest arc and re-normalizes the result.
//
// Parameters:
//   - a: the rotation at t = 0
//   - b: the rotation at t = 1
//   - t: the interpolation factor in [0, 1]
//
// Returns:
//   - mgl32.Quat: the normalized interpolated rotation
func Slerp(a, b mgl32.Quat, t float32) mgl32.Quat {
	if t <= 0 {
		return a.Normalize()
	}
	if t >= 1 {
		return AlignQuat(a, b).Normalize()
	}
	return mgl32.QuatSlerp(a, AlignQuat(a, b), t).Normalize()
}

// WrapTime wraps t into [0, length). Negative times are wrapped from the end.
// A non-positive length yields 0.
//
// Parameters:
//   - t: the time to wrap, in seconds
//   - length: the cycle length, in seconds
//
// Returns:
//   - float32: t modulo length in [0, length)
func WrapTime(t, length float32) float32 {
	if length <= 0 {
		return 0
	}
	w := float32(math.Mod(float64(t), float64(length)))
	if w < 0 {
		w += length
	}
	// Mod of a tiny negative value can round back up to length.
	if w >= length {
		w = 0
	}
	return w
}

// ComposeMat4 builds a column-major TRS matrix (translate * rotate * scale).
//
// Parameters:
//   - t: the translation
//   - r: the rotation quaternion
//   - s: the scale
//
// Returns:
//   - mgl32.Mat4: the composed matrix
func ComposeMat4(t mgl32.Vec3, r mgl32.Quat, s mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(t[0], t[1], t[2]).Mul4(r.Normalize().Mat4()).Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
}

// DecomposeMat4 splits a column-major matrix into translation, rotation and scale.
// Shear is not representable and is dropped.
//
// Parameters:
//   - m: the matrix to decompose
//
// Returns:
//   - mgl32.Vec3: the translation (column 3)
//   - mgl32.Quat: the normalized rotation
//   - mgl32.Vec3: the scale (column lengths)
func DecomposeMat4(m mgl32.Mat4) (mgl32.Vec3, mgl32.Quat, mgl32.Vec3) {
	t := mgl32.Vec3{m[12], m[13], m[14]}
	s := mgl32.Vec3{
		mgl32.Vec3{m[0], m[1], m[2]}.Len(),
		mgl32.Vec3{m[4], m[5], m[6]}.Len(),
		mgl32.Vec3{m[8], m[9], m[10]}.Len(),
	}

	div := s
	for i := range div {
		if div[i] < 0.0001 {
			div[i] = 1
		}
	}

	rot := mgl32.Mat4{
		m[0] / div[0], m[1] / div[0], m[2] / div[0], 0,
		m[4] / div[1], m[5] / div[1], m[6] / div[1], 0,
		m[8] / div[2], m[9] / div[2], m[10] / div[2], 0,
		0, 0, 0, 1,
	}
	return t, mgl32.Mat4ToQuat(rot).Normalize(), s
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
