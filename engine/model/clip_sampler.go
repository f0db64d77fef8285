package model

import (
	"math"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/go-gl/mathgl/mgl32"
)

// keyBracket locates the two keys surrounding time t for a channel of n keys sampled at frameRate.
// alpha is the fractional position between them, clamped to [0, 1].
func keyBracket(n int, t, frameRate float32) (frame, next int, alpha float32) {
	f := float64(t * frameRate)
	if math.IsNaN(f) || f < 0 {
		f = 0
	}
	fl := math.Floor(f)
	frame = int(fl)
	if frame >= n-1 {
		return n - 1, n - 1, 0
	}
	next = min(frame+1, n-1)
	alpha = common.Clamp01(float32(f - fl))
	return frame, next, alpha
}

func sampleVec3(keys []mgl32.Vec3, t, frameRate float32, interpolate bool, identity mgl32.Vec3) mgl32.Vec3 {
	switch len(keys) {
	case 0:
		return identity
	case 1:
		return keys[0]
	}
	frame, next, alpha := keyBracket(len(keys), t, frameRate)
	if !interpolate || frame == next {
		return keys[frame]
	}
	return common.LerpVec3(keys[frame], keys[next], alpha)
}

func sampleQuat(keys []mgl32.Quat, t, frameRate float32, interpolate bool) mgl32.Quat {
	switch len(keys) {
	case 0:
		return mgl32.QuatIdent()
	case 1:
		return keys[0]
	}
	frame, next, alpha := keyBracket(len(keys), t, frameRate)
	if !interpolate || frame == next {
		return keys[frame]
	}
	return common.Slerp(keys[frame], keys[next], alpha)
}

// SampleTrack samples a single bone track at time t.
// Keys are addressed as frame = floor(t * frameRate) and min(frame+1, n-1). Position and scale are
// lerped, rotation is slerped along the shortest arc and re-normalized. A channel with zero keys
// yields its identity component and a channel with one key yields that key unchanged. When
// interpolate is false the floor key is returned without blending.
//
// Parameters:
//   - track: the keyframe track to sample
//   - t: the sample time in seconds
//   - frameRate: the clip frame rate in keys per second
//   - interpolate: whether to blend between bracketing keys
//
// Returns:
//   - Transform: the bone's local transform at t
func SampleTrack(track *AnimationTrack, t, frameRate float32, interpolate bool) Transform {
	return Transform{
		Translation: sampleVec3(track.PositionKeys, t, frameRate, interpolate, mgl32.Vec3{}),
		Rotation:    sampleQuat(track.RotationKeys, t, frameRate, interpolate),
		Scale:       sampleVec3(track.ScaleKeys, t, frameRate, interpolate, mgl32.Vec3{1, 1, 1}),
	}
}

// ExtractPose samples the clip at time t into a local-space pose.
// t is clamped to [0, Length]. Every bone is first reset to the skeleton's bind pose so bones without a
// track are never left undefined; tracks whose BoneIndex is outside the pose are skipped.
//
// Parameters:
//   - skel: the skeleton providing the bind pose
//   - t: the sample time in seconds
//   - interpolate: whether to blend between bracketing keys
//   - out: the destination local-space pose, normally of length skel.BoneCount()
func (c *AnimationClip) ExtractPose(skel *Skeleton, t float32, interpolate bool, out Pose) {
	skel.FillBindPose(out)
	if c == nil {
		return
	}
	t = mgl32.Clamp(t, 0, c.Length)
	for i := range c.Tracks {
		track := &c.Tracks[i]
		if track.BoneIndex < 0 || track.BoneIndex >= len(out) {
			continue
		}
		out[track.BoneIndex] = SampleTrack(track, t, c.FrameRate, interpolate)
	}
}
