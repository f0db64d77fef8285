package model

import "github.com/Carmen-Shannon/oxy-anim/common"

// NewPose allocates a pose of n identity transforms.
//
// Parameters:
//   - n: the number of bones
//
// Returns:
//   - Pose: the identity pose
func NewPose(n int) Pose {
	p := make(Pose, n)
	p.SetIdentity()
	return p
}

// SetIdentity resets every bone of p to the identity transform.
func (p Pose) SetIdentity() {
	id := IdentityTransform()
	for i := range p {
		p[i] = id
	}
}

// ApproxEqual reports whether two poses have the same length and match bone by bone within eps.
//
// Parameters:
//   - o: the pose to compare against
//   - eps: the absolute tolerance per component
//
// Returns:
//   - bool: true if the poses match
func (p Pose) ApproxEqual(o Pose, eps float32) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if !p[i].ApproxEqual(o[i], eps) {
			return false
		}
	}
	return true
}

// EnsurePose returns p resized to the skeleton's bone count, reusing its storage when possible.
// A nil skeleton yields an empty pose.
//
// Parameters:
//   - p: the buffer to reuse (may be nil)
//   - skel: the skeleton whose bone count is required
//
// Returns:
//   - Pose: a pose of length skel.BoneCount()
func EnsurePose(p Pose, skel *Skeleton) Pose {
	return common.Resize(p, skel.BoneCount())
}
