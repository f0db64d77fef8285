package model

import (
	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/go-gl/mathgl/mgl32"
)

// IdentityTransform returns the transform with zero translation, identity rotation and unit scale.
//
// Returns:
//   - Transform: the identity transform
func IdentityTransform() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// IsZero reports whether every field of t holds its Go zero value.
// A zero Transform is not a valid rotation and is treated as "unset".
//
// Returns:
//   - bool: true if t is the zero value
func (t Transform) IsZero() bool {
	return t == Transform{}
}

// Compose returns t expressed in the space its parent lives in: local × parent = world.
// Scale is applied component-wise, which is exact for uniform scale and the usual
// shear-free approximation otherwise.
//
// Parameters:
//   - parent: the parent's transform in the target space
//
// Returns:
//   - Transform: t relative to the parent's space
func (t Transform) Compose(parent Transform) Transform {
	return Transform{
		Translation: parent.Translation.Add(parent.Rotation.Rotate(common.MulVec3(parent.Scale, t.Translation))),
		Rotation:    parent.Rotation.Mul(t.Rotation).Normalize(),
		Scale:       common.MulVec3(parent.Scale, t.Scale),
	}
}

// RelativeTo is the inverse of Compose: it returns the transform that, composed with parent,
// reproduces t. Parent scale components near zero produce zero in the result.
//
// Parameters:
//   - parent: the parent's transform in t's space
//
// Returns:
//   - Transform: t relative to parent
func (t Transform) RelativeTo(parent Transform) Transform {
	inv := parent.Rotation.Inverse()
	return Transform{
		Translation: common.DivVec3(inv.Rotate(t.Translation.Sub(parent.Translation)), parent.Scale),
		Rotation:    inv.Mul(t.Rotation).Normalize(),
		Scale:       common.DivVec3(t.Scale, parent.Scale),
	}
}

// Lerp interpolates two transforms: linear for translation and scale, shortest-arc slerp for rotation.
//
// Parameters:
//   - to: the transform at alpha = 1
//   - alpha: the interpolation factor in [0, 1]
//
// Returns:
//   - Transform: the interpolated transform
func (t Transform) Lerp(to Transform, alpha float32) Transform {
	return Transform{
		Translation: common.LerpVec3(t.Translation, to.Translation, alpha),
		Rotation:    common.Slerp(t.Rotation, to.Rotation, alpha),
		Scale:       common.LerpVec3(t.Scale, to.Scale, alpha),
	}
}

// Mat4 returns the column-major TRS matrix for t.
//
// Returns:
//   - mgl32.Mat4: translate * rotate * scale
func (t Transform) Mat4() mgl32.Mat4 {
	return common.ComposeMat4(t.Translation, t.Rotation, t.Scale)
}

// TransformFromMat4 decomposes a shear-free matrix into a Transform.
//
// Parameters:
//   - m: the column-major matrix
//
// Returns:
//   - Transform: the decomposed transform
func TransformFromMat4(m mgl32.Mat4) Transform {
	tr, r, s := common.DecomposeMat4(m)
	return Transform{Translation: tr, Rotation: r, Scale: s}
}

// ApproxEqual reports whether two transforms match within eps on every component.
// Rotations q and -q are considered equal.
//
// Parameters:
//   - o: the transform to compare against
//   - eps: the absolute tolerance
//
// Returns:
//   - bool: true if all components are within eps
func (t Transform) ApproxEqual(o Transform, eps float32) bool {
	if !withinVec3(t.Translation, o.Translation, eps) || !withinVec3(t.Scale, o.Scale, eps) {
		return false
	}
	q := common.AlignQuat(t.Rotation, o.Rotation)
	return withinVec3(t.Rotation.V, q.V, eps) && common.WithinEpsilon(t.Rotation.W, q.W, eps)
}

func withinVec3(a, b mgl32.Vec3, eps float32) bool {
	for i := range a {
		if !common.WithinEpsilon(a[i], b[i], eps) {
			return false
		}
	}
	return true
}
