// Package blend implements the pose operations used by every playback node: coordinate space conversion,
// weighted pose blending, additive accumulation and masked layering.
//
// Every function writes into a caller-owned output pose and allocates nothing. Output may alias an input
// unless noted otherwise. Poses are processed up to the shortest of the buffers involved.
package blend

import (
	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// WeightEpsilon is the total weight at or below which a multi-pose blend is considered degenerate.
const WeightEpsilon float32 = 1e-4

// ToComponentSpace converts a local-space pose into component space by walking bones in index order,
// composing every bone onto its already-resolved parent.
//
// Parameters:
//   - skel: the skeleton providing the hierarchy
//   - local: the local-space pose
//   - out: the destination component-space pose (may alias local)
func ToComponentSpace(skel *model.Skeleton, local, out model.Pose) {
	n := min(skel.BoneCount(), len(local), len(out))
	for i := 0; i < n; i++ {
		p := skel.ParentIndex(i)
		if p < 0 {
			out[i] = local[i]
			continue
		}
		out[i] = local[i].Compose(out[p])
	}
}

// ToLocalSpace converts a component-space pose back into local space, the inverse of ToComponentSpace.
// Bones are walked in reverse index order so that out may alias component.
//
// Parameters:
//   - skel: the skeleton providing the hierarchy
//   - component: the component-space pose
//   - out: the destination local-space pose (may alias component)
func ToLocalSpace(skel *model.Skeleton, component, out model.Pose) {
	n := min(skel.BoneCount(), len(component), len(out))
	for i := n - 1; i >= 0; i-- {
		p := skel.ParentIndex(i)
		if p < 0 {
			out[i] = component[i]
			continue
		}
		out[i] = component[i].RelativeTo(component[p])
	}
}

// BlendTwo interpolates two poses bone by bone: linear for translation and scale, slerp for rotation.
//
// Parameters:
//   - a: the pose at alpha = 0
//   - b: the pose at alpha = 1
//   - alpha: the blend factor, clamped to [0, 1]
//   - out: the destination pose
func BlendTwo(a, b model.Pose, alpha float32, out model.Pose) {
	alpha = common.Clamp01(alpha)
	n := min(len(a), len(b), len(out))
	for i := 0; i < n; i++ {
		out[i] = a[i].Lerp(b[i], alpha)
	}
}

// BlendThree is BlendN over exactly three poses.
//
// Parameters:
//   - a, b, c: the contributing poses (a pose with zero weight may be nil)
//   - wa, wb, wc: their weights, normalized before use
//   - out: the destination pose
//
// Returns:
//   - bool: false if the total weight was degenerate and a was copied verbatim
func BlendThree(a, b, c model.Pose, wa, wb, wc float32, out model.Pose) bool {
	poses := [3]model.Pose{a, b, c}
	weights := [3]float32{wa, wb, wc}
	return BlendN(poses[:], weights[:], out)
}

// BlendN computes the normalized weighted average of any number of poses.
// Negative weights count as zero. If the total weight is at or below WeightEpsilon, the first pose is copied
// verbatim and false is returned so the caller can report the degenerate blend.
// Rotations are summed after aligning each one with a sign reference (the first pose with non-zero weight)
// and the sum is re-normalized, which keeps antipodal quaternions from cancelling out.
//
// Parameters:
//   - poses: the contributing poses; poses with zero weight are not read and may be nil
//   - weights: one weight per pose
//   - out: the destination pose (must not alias a contributing pose)
//
// Returns:
//   - bool: true if a weighted blend was produced
func BlendN(poses []model.Pose, weights []float32, out model.Pose) bool {
	count := min(len(poses), len(weights))
	var total float32
	ref := -1
	for k := 0; k < count; k++ {
		if weights[k] > 0 {
			total += weights[k]
			if ref < 0 {
				ref = k
			}
		}
	}
	if total <= WeightEpsilon || ref < 0 {
		if len(poses) > 0 {
			copy(out, poses[0])
		}
		return false
	}

	n := len(out)
	for k := 0; k < count; k++ {
		if weights[k] > 0 {
			n = min(n, len(poses[k]))
		}
	}

	inv := 1 / total
	for i := 0; i < n; i++ {
		refRot := poses[ref][i].Rotation
		var trans, scale mgl32.Vec3
		var rot mgl32.Quat
		for k := 0; k < count; k++ {
			w := weights[k]
			if w <= 0 {
				continue
			}
			w *= inv
			t := poses[k][i]
			trans = trans.Add(t.Translation.Mul(w))
			scale = scale.Add(t.Scale.Mul(w))
			q := common.AlignQuat(refRot, t.Rotation)
			rot.W += q.W * w
			rot.V = rot.V.Add(q.V.Mul(w))
		}
		if rot.Len() < common.Epsilon {
			rot = refRot
		}
		out[i] = model.Transform{Translation: trans, Rotation: rot.Normalize(), Scale: scale}
	}
	return true
}
