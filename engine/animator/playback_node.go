// Package animator contains the playback graph that turns clips into poses every frame: the sequence player,
// the crossfading state machine, the 2D blend space and the Animator instance that owns one of them.
//
// Nodes are single-threaded. Different animators may be ticked on different goroutines, but one node is
// never updated or evaluated concurrently with itself.
package animator

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-anim/engine/model"
)

var (
	// ErrInvalidStateIndex is returned when a transition references a state that does not exist.
	ErrInvalidStateIndex = errors.New("state index out of range")

	// ErrInvalidSampleIndex is returned when a triangle or removal references a sample that does not exist.
	ErrInvalidSampleIndex = errors.New("blend space sample index out of range")

	// ErrInvalidTriangleIndex is returned when removing a triangle that does not exist.
	ErrInvalidTriangleIndex = errors.New("blend space triangle index out of range")
)

// PlaybackNode is implemented by every node an Animator can own.
//
// Update advances the node's time by the context's delta; Evaluate writes the node's current local-space pose.
// Evaluate writes nothing when out does not match the node's skeleton, so a caller that pre-fills out with
// the bind pose gets the bind pose back from an incompatible node.
type PlaybackNode interface {
	// Update advances the node by one tick and records any notifies crossed.
	//
	// Parameters:
	//   - ctx: the tick context; may be nil to advance silently
	Update(ctx *UpdateContext)

	// Evaluate writes the node's local-space pose.
	//
	// Parameters:
	//   - out: the destination pose, of length equal to the node's skeleton bone count
	Evaluate(out model.Pose)
}

// compatible reports whether out is a valid destination for a node bound to skel.
func compatible(skel *model.Skeleton, out model.Pose) bool {
	return skel != nil && len(out) == skel.BoneCount()
}
