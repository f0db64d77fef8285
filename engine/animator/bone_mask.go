package animator

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-anim/engine/model"
)

// BoneMask selects bones for layering: true takes the upper layer's pose, false keeps the base pose.
type BoneMask []bool

// NewBoneMaskFromBranch builds a mask selecting the named bone and all of its descendants.
//
// Parameters:
//   - skel: the skeleton
//   - boneName: the root of the selected branch
//
// Returns:
//   - BoneMask: one flag per bone
//   - error: an error if the bone does not exist
func NewBoneMaskFromBranch(skel *model.Skeleton, boneName string) (BoneMask, error) {
	root := skel.IndexOf(boneName)
	if root < 0 {
		return nil, fmt.Errorf("bone mask branch %q: bone not found", boneName)
	}
	mask := make(BoneMask, skel.BoneCount())
	// Parents precede children, so one forward pass propagates selection down the hierarchy.
	for i := range mask {
		if i == root {
			mask[i] = true
			continue
		}
		if p := skel.ParentIndex(i); p >= 0 && mask[p] {
			mask[i] = true
		}
	}
	return mask, nil
}

// Invert returns a new mask with every flag flipped.
//
// Returns:
//   - BoneMask: the inverted mask
func (m BoneMask) Invert() BoneMask {
	out := make(BoneMask, len(m))
	for i, v := range m {
		out[i] = !v
	}
	return out
}

// Count returns the number of selected bones.
//
// Returns:
//   - int: the number of true flags
func (m BoneMask) Count() int {
	n := 0
	for _, v := range m {
		if v {
			n++
		}
	}
	return n
}
