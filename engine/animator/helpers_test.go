package animator

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

const testEpsilon = 1e-4

// newTestSkeleton builds root -> child with a unit offset on the child.
func newTestSkeleton(t *testing.T) *model.Skeleton {
	t.Helper()
	s, err := model.NewSkeleton([]model.Bone{
		{Name: "root", ParentIndex: -1, LocalBindTransform: model.IdentityTransform()},
		{Name: "child", ParentIndex: 0, LocalBindTransform: model.Transform{
			Translation: mgl32.Vec3{0, 1, 0},
			Rotation:    mgl32.QuatIdent(),
			Scale:       mgl32.Vec3{1, 1, 1},
		}},
	})
	if err != nil {
		t.Fatalf("NewSkeleton() error = %v", err)
	}
	return s
}

// newHumanoidSkeleton builds root -> spine -> arm and root -> leg.
func newHumanoidSkeleton(t *testing.T) *model.Skeleton {
	t.Helper()
	bone := func(name string, parent int) model.Bone {
		return model.Bone{Name: name, ParentIndex: parent, LocalBindTransform: model.Transform{
			Translation: mgl32.Vec3{0, 1, 0},
			Rotation:    mgl32.QuatIdent(),
			Scale:       mgl32.Vec3{1, 1, 1},
		}}
	}
	s, err := model.NewSkeleton([]model.Bone{
		bone("root", -1),
		bone("spine", 0),
		bone("arm", 1),
		bone("leg", 0),
	})
	if err != nil {
		t.Fatalf("NewSkeleton() error = %v", err)
	}
	return s
}

// constantClip holds every listed bone at rot with a translation of (x, 0, 0).
func constantClip(name string, length float32, rot mgl32.Quat, x float32, bones ...int) *model.AnimationClip {
	c := &model.AnimationClip{Name: name, Length: length, FrameRate: 30}
	for _, b := range bones {
		c.Tracks = append(c.Tracks, model.AnimationTrack{
			BoneIndex:    b,
			PositionKeys: []mgl32.Vec3{{x, 0, 0}},
			RotationKeys: []mgl32.Quat{rot},
		})
	}
	return c
}

// rampClip moves bone 0 from x=0 to x=length along X at one key per second.
func rampClip(name string, length int) *model.AnimationClip {
	keys := make([]mgl32.Vec3, length+1)
	for i := range keys {
		keys[i] = mgl32.Vec3{float32(i), 0, 0}
	}
	return &model.AnimationClip{
		Name:      name,
		Length:    float32(length),
		FrameRate: 1,
		Tracks:    []model.AnimationTrack{{BoneIndex: 0, PositionKeys: keys}},
	}
}

func evaluate(n PlaybackNode, skel *model.Skeleton) model.Pose {
	out := skel.BindPose()
	n.Evaluate(out)
	return out
}
