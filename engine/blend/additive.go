package blend

import (
	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// AccumulateAdditive applies a delta pose on top of a base pose:
//
//	rotation    = normalize(slerp(identity, delta.rotation, weight) * base.rotation)
//	translation = base.translation + delta.translation * weight
//	scale       = base.scale * lerp(1, delta.scale, weight)
//
// Parameters:
//   - base: the pose the delta is layered onto
//   - delta: the additive pose, usually produced by MakeAdditive
//   - weight: the strength of the delta (not clamped, so values above 1 exaggerate it)
//   - out: the destination pose (may alias base)
func AccumulateAdditive(base, delta model.Pose, weight float32, out model.Pose) {
	n := min(len(base), len(delta), len(out))
	one := mgl32.Vec3{1, 1, 1}
	for i := 0; i < n; i++ {
		b, d := base[i], delta[i]
		out[i] = model.Transform{
			Translation: b.Translation.Add(d.Translation.Mul(weight)),
			Rotation:    common.Slerp(mgl32.QuatIdent(), d.Rotation, weight).Mul(b.Rotation).Normalize(),
			Scale:       common.MulVec3(b.Scale, common.LerpVec3(one, d.Scale, weight)),
		}
	}
}

// MakeAdditive builds the delta pose that turns reference into source under AccumulateAdditive with weight 1.
//
// Parameters:
//   - source: the pose to express as a delta
//   - reference: the pose the delta is relative to
//   - out: the destination delta pose (may alias source)
func MakeAdditive(source, reference, out model.Pose) {
	n := min(len(source), len(reference), len(out))
	for i := 0; i < n; i++ {
		s, r := source[i], reference[i]
		out[i] = model.Transform{
			Translation: s.Translation.Sub(r.Translation),
			Rotation:    s.Rotation.Mul(r.Rotation.Inverse()).Normalize(),
			Scale:       common.DivVec3(s.Scale, r.Scale),
		}
	}
}
