package model

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/go-gl/mathgl/mgl32"
)

func twoBoneSkeleton(t *testing.T) *Skeleton {
	t.Helper()
	s, err := NewSkeleton([]Bone{
		{Name: "root", ParentIndex: -1, LocalBindTransform: IdentityTransform()},
		{Name: "child", ParentIndex: 0, LocalBindTransform: Transform{Translation: mgl32.Vec3{0, 1, 0}, Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}}},
	})
	if err != nil {
		t.Fatalf("NewSkeleton() error = %v", err)
	}
	return s
}

func TestSampleTrack(t *testing.T) {
	rotB := mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})
	track := &AnimationTrack{
		PositionKeys: []mgl32.Vec3{{0, 0, 0}, {10, 0, 0}, {20, 0, 0}},
		RotationKeys: []mgl32.Quat{mgl32.QuatIdent(), rotB},
	}

	tests := []struct {
		name        string
		time        float32
		interpolate bool
		wantPos     mgl32.Vec3
		wantRot     mgl32.Quat
	}{
		{"first key", 0, true, mgl32.Vec3{0, 0, 0}, mgl32.QuatIdent()},
		{"mid interval", 0.25, true, mgl32.Vec3{5, 0, 0}, common.Slerp(mgl32.QuatIdent(), rotB, 0.5)},
		{"discrete floors", 0.25, false, mgl32.Vec3{0, 0, 0}, mgl32.QuatIdent()},
		{"past last key", 5, true, mgl32.Vec3{20, 0, 0}, rotB},
		{"negative time", -1, true, mgl32.Vec3{0, 0, 0}, mgl32.QuatIdent()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SampleTrack(track, tt.time, 2, tt.interpolate)
			if !got.Translation.ApproxEqualThreshold(tt.wantPos, 1e-5) {
				t.Errorf("translation = %v, want %v", got.Translation, tt.wantPos)
			}
			if !got.Rotation.ApproxEqualThreshold(tt.wantRot, 1e-5) {
				t.Errorf("rotation = %v, want %v", got.Rotation, tt.wantRot)
			}
			if got.Scale != (mgl32.Vec3{1, 1, 1}) {
				t.Errorf("scale with no keys = %v, want identity", got.Scale)
			}
			if l := got.Rotation.Len(); l < 0.9999 || l > 1.0001 {
				t.Errorf("rotation is not normalized, len = %f", l)
			}
		})
	}
}

func TestSampleTrackSingleKeyVerbatim(t *testing.T) {
	key := mgl32.Vec3{3, 4, 5}
	track := &AnimationTrack{PositionKeys: []mgl32.Vec3{key}}
	for _, tm := range []float32{0, 0.5, 100} {
		if got := SampleTrack(track, tm, 30, true); got.Translation != key {
			t.Errorf("SampleTrack(%f) = %v, want %v", tm, got.Translation, key)
		}
	}
}

func TestExtractPoseKeepsBindAndSkipsBadTracks(t *testing.T) {
	skel := twoBoneSkeleton(t)
	clip := &AnimationClip{
		Name:      "wave",
		Length:    1,
		FrameRate: 1,
		Tracks: []AnimationTrack{
			{BoneIndex: 0, PositionKeys: []mgl32.Vec3{{0, 0, 0}, {2, 0, 0}}},
			{BoneIndex: 7, PositionKeys: []mgl32.Vec3{{9, 9, 9}}},
			{BoneIndex: -1, PositionKeys: []mgl32.Vec3{{9, 9, 9}}},
		},
	}

	out := make(Pose, skel.BoneCount())
	clip.ExtractPose(skel, 0.5, true, out)

	if !out[0].Translation.ApproxEqualThreshold(mgl32.Vec3{1, 0, 0}, 1e-5) {
		t.Errorf("root translation = %v, want (1, 0, 0)", out[0].Translation)
	}
	if !out[1].ApproxEqual(skel.Bone(1).LocalBindTransform, 1e-6) {
		t.Errorf("untracked bone = %v, want bind pose", out[1])
	}

	// Time is clamped to the clip length.
	clip.ExtractPose(skel, 4, true, out)
	if !out[0].Translation.ApproxEqualThreshold(mgl32.Vec3{2, 0, 0}, 1e-5) {
		t.Errorf("clamped root translation = %v, want (2, 0, 0)", out[0].Translation)
	}
}

func TestNotifiesInRange(t *testing.T) {
	clip := &AnimationClip{Notifies: []Notify{{"b", 0.5}, {"a", 0.1}, {"c", 1}}}
	clip.SortNotifies()
	if clip.Notifies[0].Name != "a" {
		t.Fatalf("SortNotifies() first = %s, want a", clip.Notifies[0].Name)
	}

	tests := []struct {
		from, to float32
		want     []string
	}{
		{0, 0.5, []string{"a", "b"}},
		{0.1, 0.5, []string{"b"}},
		{0.5, 1, []string{"c"}},
		{0.6, 0.6, nil},
		{0.9, 0.2, nil},
	}
	for _, tt := range tests {
		got := clip.NotifiesInRange(tt.from, tt.to, nil)
		if len(got) != len(tt.want) {
			t.Errorf("NotifiesInRange(%f, %f) = %v, want %v", tt.from, tt.to, got, tt.want)
			continue
		}
		for i := range got {
			if got[i].Name != tt.want[i] {
				t.Errorf("NotifiesInRange(%f, %f)[%d] = %s, want %s", tt.from, tt.to, i, got[i].Name, tt.want[i])
			}
		}
	}
}
