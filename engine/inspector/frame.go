package inspector

import (
	"github.com/Carmen-Shannon/oxy-anim/engine/blend"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/google/uuid"
)

// Message types sent to inspector clients.
const (
	TypeHello = "hello"
	TypePose  = "pose"
)

// BoneState is the wire form of one bone's transform in the frame's space.
// Rotation is stored as [x, y, z, w].
type BoneState struct {
	Name        string     `json:"name"`
	Parent      int        `json:"parent"`
	Translation [3]float32 `json:"t"`
	Rotation    [4]float32 `json:"r"`
	Scale       [3]float32 `json:"s"`
}

// Frame is one animator's pose at a point in time.
type Frame struct {
	Type     string      `json:"type"`
	Instance uuid.UUID   `json:"instance"`
	Time     float32     `json:"time"`
	Space    string      `json:"space"`
	Bones    []BoneState `json:"bones"`
}

type helloMessage struct {
	Type   string    `json:"type"`
	Client uuid.UUID `json:"client"`
}

// NewFrame builds a pose frame for an animator instance.
// Only bones present in both the skeleton and the pose are included. With SpaceComponent the local pose
// is converted so every bone is relative to the skeleton root; the input pose is not modified.
//
// Parameters:
//   - instance: the animator ID
//   - t: the animator time in seconds
//   - skel: the skeleton providing bone names and parents
//   - pose: the local-space pose
//   - space: the space the frame's bones are expressed in
//
// Returns:
//   - Frame: the frame ready to Publish
func NewFrame(instance uuid.UUID, t float32, skel *model.Skeleton, pose model.Pose, space model.PoseSpace) Frame {
	n := min(skel.BoneCount(), len(pose))
	f := Frame{
		Type:     TypePose,
		Instance: instance,
		Time:     t,
		Space:    space.String(),
		Bones:    make([]BoneState, n),
	}

	src := pose[:n]
	if space == model.SpaceComponent {
		src = make(model.Pose, n)
		blend.ToComponentSpace(skel, pose[:n], src)
	}

	for i := 0; i < n; i++ {
		b := skel.Bone(i)
		tr := src[i]
		f.Bones[i] = BoneState{
			Name:        b.Name,
			Parent:      b.ParentIndex,
			Translation: tr.Translation,
			Rotation:    [4]float32{tr.Rotation.V[0], tr.Rotation.V[1], tr.Rotation.V[2], tr.Rotation.W},
			Scale:       tr.Scale,
		}
	}
	return f
}
