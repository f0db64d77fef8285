package blend

import "github.com/Carmen-Shannon/oxy-anim/engine/model"

// LayerByMask selects each bone from either the base or the upper pose. It is a hard per-bone switch,
// not a weighted blend. Bones beyond the end of mask take the base pose.
//
// Parameters:
//   - base: the pose used where mask is false
//   - upper: the pose used where mask is true
//   - mask: one flag per bone
//   - out: the destination pose (may alias base or upper)
func LayerByMask(base, upper model.Pose, mask []bool, out model.Pose) {
	n := min(len(base), len(upper), len(out))
	for i := 0; i < n; i++ {
		if i < len(mask) && mask[i] {
			out[i] = upper[i]
		} else {
			out[i] = base[i]
		}
	}
}
