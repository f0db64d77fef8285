package model

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// --- Transform & Skeleton Types ---

// Transform represents a decomposed bone transform used for sampling and blending.
// Transforms compose under the "local × parent = world" convention, see Compose.
type Transform struct {
	// Translation is the position offset.
	Translation mgl32.Vec3

	// Rotation is the orientation as a unit quaternion.
	Rotation mgl32.Quat

	// Scale is the scale factor along each axis.
	Scale mgl32.Vec3
}

// Bone represents a single bone in a skeleton hierarchy.
type Bone struct {
	// Name is the bone's identifier (for debugging, masks and animation targeting).
	Name string

	// ParentIndex is the index of the parent bone (-1 for root bones).
	ParentIndex int

	// LocalBindTransform is the bone's bind-pose transform relative to its parent.
	// A zero value is derived from BindMatrix by NewSkeleton.
	LocalBindTransform Transform

	// BindMatrix is the bone's component-space transform at bind time.
	// A zero value is derived from the local bind chain by NewSkeleton.
	BindMatrix mgl32.Mat4

	// InverseBindMatrix transforms from model space to bone space at bind pose.
	// A zero value is derived by inverting BindMatrix.
	InverseBindMatrix mgl32.Mat4
}

// PoseSpace identifies the coordinate space a Pose buffer holds.
type PoseSpace int

const (
	// SpaceLocal poses hold each bone relative to its parent bone.
	SpaceLocal PoseSpace = iota

	// SpaceComponent poses hold each bone relative to the skeleton root.
	SpaceComponent
)

// String returns a readable name for the space.
func (s PoseSpace) String() string {
	switch s {
	case SpaceComponent:
		return "component"
	default:
		return "local"
	}
}

// ParsePoseSpace converts a name produced by PoseSpace.String back into a PoseSpace.
//
// Parameters:
//   - name: "local" or "component", case-insensitive
//
// Returns:
//   - PoseSpace: the parsed space
//   - error: error if the name is not a known space
func ParsePoseSpace(name string) (PoseSpace, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "local":
		return SpaceLocal, nil
	case "component":
		return SpaceComponent, nil
	default:
		return SpaceLocal, fmt.Errorf("unknown pose space %q", name)
	}
}

// Pose is an ordered sequence of bone transforms, one per skeleton bone.
// Its space is implied by the producer; conversions go through the blend package.
type Pose []Transform

// --- Animation Types ---

// AnimationClip represents a single animation (walk, run, attack, etc.) sampled at a fixed frame rate.
// Clips are read-only once built and may be shared by any number of players.
type AnimationClip struct {
	// Name is the animation identifier.
	Name string

	// Length is the total length of the animation in seconds.
	Length float32

	// FrameRate is the number of keys per second stored in each track.
	FrameRate float32

	// Tracks contains keyframe data for each animated bone.
	Tracks []AnimationTrack

	// Notifies are named events fired when playback crosses their trigger time.
	Notifies []Notify
}

// AnimationTrack contains dense keyframe data for a single bone.
// Key i of every array corresponds to time i / FrameRate.
type AnimationTrack struct {
	// BoneIndex is the index of the bone this track animates.
	BoneIndex int

	// PositionKeys are keyframes for translation.
	PositionKeys []mgl32.Vec3

	// RotationKeys are keyframes for rotation.
	RotationKeys []mgl32.Quat

	// ScaleKeys are keyframes for scale.
	ScaleKeys []mgl32.Vec3
}

// Notify is a named event authored at a point in clip time.
type Notify struct {
	// Name identifies the event for the owner (e.g. "footstep_left").
	Name string

	// Time is the trigger time in seconds.
	Time float32
}
