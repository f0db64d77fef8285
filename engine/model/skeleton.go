package model

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrEmptySkeleton is returned when a skeleton is built from zero bones.
	ErrEmptySkeleton = errors.New("skeleton has no bones")

	// ErrInvalidParent is returned when a bone's parent index is out of range.
	ErrInvalidParent = errors.New("bone parent index out of range")

	// ErrSkeletonCycle is returned when a bone is its own ancestor.
	ErrSkeletonCycle = errors.New("bone hierarchy contains a cycle")
)

// Skeleton represents a bone hierarchy for skeletal animation.
// Bones are stored so that every parent precedes its children; walking bones in index order is
// therefore a valid topological order. A Skeleton is immutable after NewSkeleton.
type Skeleton struct {
	bones           []Bone
	bindPose        Pose
	rootBoneIndices []int
	boneNameToIndex map[string]int
	sortedIndex     []int
}

// NewSkeleton validates a bone list and builds a Skeleton from it.
// Parent indices refer to positions in the given slice. Bones are re-ordered parents-first;
// SortedIndex maps an input position to its new index. Missing bind data is derived: a zero
// LocalBindTransform comes from BindMatrix relative to the parent, a zero BindMatrix from the
// local bind chain, and a zero InverseBindMatrix from inverting BindMatrix.
//
// Parameters:
//   - bones: the bones in authoring order
//
// Returns:
//   - *Skeleton: the validated, topologically ordered skeleton
//   - error: ErrEmptySkeleton, ErrInvalidParent or ErrSkeletonCycle (wrapped with the bone index)
func NewSkeleton(bones []Bone) (*Skeleton, error) {
	n := len(bones)
	if n == 0 {
		return nil, ErrEmptySkeleton
	}

	for i := range bones {
		p := bones[i].ParentIndex
		switch {
		case p >= n:
			return nil, fmt.Errorf("bone %d (%s): parent %d: %w", i, bones[i].Name, p, ErrInvalidParent)
		case p == i:
			return nil, fmt.Errorf("bone %d (%s) is its own parent: %w", i, bones[i].Name, ErrSkeletonCycle)
		}
	}

	order, err := topologicalOrder(bones)
	if err != nil {
		return nil, err
	}

	s := &Skeleton{
		bones:           make([]Bone, n),
		bindPose:        make(Pose, n),
		boneNameToIndex: make(map[string]int, n),
		sortedIndex:     make([]int, n),
	}
	for newIdx, oldIdx := range order {
		s.sortedIndex[oldIdx] = newIdx
	}

	for newIdx, oldIdx := range order {
		bone := bones[oldIdx]
		if bone.ParentIndex >= 0 {
			bone.ParentIndex = s.sortedIndex[bone.ParentIndex]
		} else {
			bone.ParentIndex = -1
			s.rootBoneIndices = append(s.rootBoneIndices, newIdx)
		}
		if bone.Name == "" {
			bone.Name = fmt.Sprintf("bone_%d", oldIdx)
		}
		if _, dup := s.boneNameToIndex[bone.Name]; !dup {
			s.boneNameToIndex[bone.Name] = newIdx
		}
		s.bones[newIdx] = bone
	}

	s.resolveBindData()
	return s, nil
}

// topologicalOrder returns bone indices with every parent before its children.
// A bone whose ancestor chain never reaches a root is part of a cycle.
func topologicalOrder(bones []Bone) ([]int, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(bones))
	order := make([]int, 0, len(bones))
	var chain []int

	for i := range bones {
		if state[i] == done {
			continue
		}
		// Walk up until a resolved bone or a root, then emit the chain top-down.
		chain = chain[:0]
		cur := i
		for cur >= 0 && state[cur] != done {
			if state[cur] == visiting {
				return nil, fmt.Errorf("bone %d (%s): %w", cur, bones[cur].Name, ErrSkeletonCycle)
			}
			state[cur] = visiting
			chain = append(chain, cur)
			cur = bones[cur].ParentIndex
		}
		for j := len(chain) - 1; j >= 0; j-- {
			state[chain[j]] = done
			order = append(order, chain[j])
		}
	}
	return order, nil
}

// resolveBindData fills in whichever of the local bind transform, bind matrix and inverse bind
// matrix were left zero, then caches the local bind pose.
func (s *Skeleton) resolveBindData() {
	var zero mgl32.Mat4
	for i := range s.bones {
		b := &s.bones[i]
		if b.LocalBindTransform.IsZero() {
			switch {
			case b.BindMatrix == zero:
				b.LocalBindTransform = IdentityTransform()
			case b.ParentIndex < 0:
				b.LocalBindTransform = TransformFromMat4(b.BindMatrix)
			default:
				parent := s.bones[b.ParentIndex].BindMatrix
				b.LocalBindTransform = TransformFromMat4(parent.Inv().Mul4(b.BindMatrix))
			}
		}
		if b.BindMatrix == zero {
			local := b.LocalBindTransform.Mat4()
			if b.ParentIndex < 0 {
				b.BindMatrix = local
			} else {
				b.BindMatrix = s.bones[b.ParentIndex].BindMatrix.Mul4(local)
			}
		}
		if b.InverseBindMatrix == zero {
			b.InverseBindMatrix = b.BindMatrix.Inv()
		}
		s.bindPose[i] = b.LocalBindTransform
	}
}

// BoneCount returns the number of bones in the skeleton.
// A nil skeleton has zero bones.
//
// Returns:
//   - int: the bone count
func (s *Skeleton) BoneCount() int {
	if s == nil {
		return 0
	}
	return len(s.bones)
}

// Bone returns the bone at index i. The index must be in [0, BoneCount()).
//
// Parameters:
//   - i: the bone index
//
// Returns:
//   - Bone: a copy of the bone
func (s *Skeleton) Bone(i int) Bone {
	return s.bones[i]
}

// ParentIndex returns the parent of bone i, or -1 for roots.
func (s *Skeleton) ParentIndex(i int) int {
	return s.bones[i].ParentIndex
}

// RootBoneIndices returns the indices of the bones with no parent.
func (s *Skeleton) RootBoneIndices() []int {
	return s.rootBoneIndices
}

// IndexOf returns the index of the named bone, or -1 if the name is unknown.
//
// Parameters:
//   - name: the bone name
//
// Returns:
//   - int: the bone index or -1
func (s *Skeleton) IndexOf(name string) int {
	if s == nil {
		return -1
	}
	if i, ok := s.boneNameToIndex[name]; ok {
		return i
	}
	return -1
}

// SortedIndex maps an index into the slice given to NewSkeleton to the bone's index in s.
// Out of range input returns -1.
//
// Parameters:
//   - source: the authoring-order index
//
// Returns:
//   - int: the skeleton index or -1
func (s *Skeleton) SortedIndex(source int) int {
	if source < 0 || source >= len(s.sortedIndex) {
		return -1
	}
	return s.sortedIndex[source]
}

// IsDescendant reports whether bone i is ancestor or bone i itself lies below ancestor.
//
// Parameters:
//   - i: the bone to test
//   - ancestor: the candidate ancestor
//
// Returns:
//   - bool: true if i == ancestor or ancestor is on i's parent chain
func (s *Skeleton) IsDescendant(i, ancestor int) bool {
	for cur := i; cur >= 0; cur = s.bones[cur].ParentIndex {
		if cur == ancestor {
			return true
		}
	}
	return false
}

// BindPose returns a freshly allocated copy of the local-space bind pose.
//
// Returns:
//   - Pose: the bind pose, length BoneCount()
func (s *Skeleton) BindPose() Pose {
	out := make(Pose, s.BoneCount())
	s.FillBindPose(out)
	return out
}

// FillBindPose copies the local-space bind pose into out without allocating.
// Only min(len(out), BoneCount()) entries are written.
//
// Parameters:
//   - out: the destination pose buffer
func (s *Skeleton) FillBindPose(out Pose) {
	if s == nil {
		return
	}
	copy(out, s.bindPose)
}
