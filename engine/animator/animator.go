package animator

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-anim/engine/blend"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/Carmen-Shannon/oxy-anim/engine/profiler"
	"github.com/google/uuid"
)

// animator is the implementation of the Animator interface.
type animator struct {
	id       uuid.UUID
	skeleton *model.Skeleton
	node     PlaybackNode

	upperNode PlaybackNode
	upperMask BoneMask
	upperPose model.Pose

	additiveNode   PlaybackNode
	additiveWeight float32
	additivePose   model.Pose

	updateCtx     UpdateContext
	notifyHandler func(NotifyEvent)
	time          float32

	profiler *profiler.Profiler
	logger   *slog.Logger
}

// Animator is one animated instance of a skeleton.
//
// It owns a single PlaybackNode and is driven once per frame by its owner: NativeUpdateAnimation(dt) first,
// then EvaluateAnimation(out). Evaluation starts from the bind pose, lets the node write over it, then applies
// the optional upper-body layer (a per-bone switch) and the optional additive layer. Notifies crossed during
// the update are passed to the notify handler before NativeUpdateAnimation returns.
type Animator interface {
	// ID returns the instance's unique identifier.
	//
	// Returns:
	//   - uuid.UUID: the instance ID
	ID() uuid.UUID

	// Skeleton returns the skeleton the instance is bound to, or nil.
	//
	// Returns:
	//   - *model.Skeleton: the skeleton
	Skeleton() *model.Skeleton

	// Node returns the instance's playback node, or nil.
	//
	// Returns:
	//   - PlaybackNode: the node
	Node() PlaybackNode

	// SetNode replaces the instance's playback node.
	//
	// Parameters:
	//   - node: the new node (nil plays the bind pose)
	SetNode(node PlaybackNode)

	// SetUpperBodyLayer sets a node whose pose replaces the base pose on the bones selected by mask.
	// A nil node removes the layer.
	//
	// Parameters:
	//   - node: the upper layer's node
	//   - mask: the bones the upper layer drives
	SetUpperBodyLayer(node PlaybackNode, mask BoneMask)

	// SetAdditiveLayer sets a node producing an additive delta applied on top of the layered pose.
	// A nil node removes the layer.
	//
	// Parameters:
	//   - node: a node producing a delta pose, usually a SequencePlayer built WithAdditive
	//   - weight: the strength of the delta
	SetAdditiveLayer(node PlaybackNode, weight float32)

	// SetAdditiveWeight changes the additive layer's strength.
	//
	// Parameters:
	//   - weight: the new strength
	SetAdditiveWeight(weight float32)

	// SetNotifyHandler sets the function called for every notify crossed during an update.
	//
	// Parameters:
	//   - handler: the handler (nil discards notifies)
	SetNotifyHandler(handler func(NotifyEvent))

	// NativeUpdateAnimation advances every node of the instance by dt seconds and dispatches notifies.
	//
	// Parameters:
	//   - dt: the frame delta in seconds
	NativeUpdateAnimation(dt float32)

	// EvaluateAnimation writes the instance's local-space pose into out, resizing it to the skeleton's bone
	// count. A nil skeleton yields an empty pose; an incompatible node yields the bind pose.
	//
	// Parameters:
	//   - out: the buffer to reuse (may be nil)
	//
	// Returns:
	//   - model.Pose: the evaluated pose
	EvaluateAnimation(out model.Pose) model.Pose

	// Time returns the total time the instance has been updated for, in seconds.
	//
	// Returns:
	//   - float32: the accumulated delta time
	Time() float32
}

var _ Animator = &animator{}

// NewAnimator creates a new Animator bound to skel.
// Pose buffers for the optional layers are sized to the skeleton here and reused every frame.
//
// Parameters:
//   - skel: the skeleton to animate (may be nil)
//   - options: variadic list of AnimatorBuilderOption functions to configure the Animator
//
// Returns:
//   - Animator: a new instance of Animator
func NewAnimator(skel *model.Skeleton, options ...AnimatorBuilderOption) Animator {
	a := &animator{
		id:           uuid.New(),
		skeleton:     skel,
		upperPose:    make(model.Pose, skel.BoneCount()),
		additivePose: make(model.Pose, skel.BoneCount()),
		logger:       slog.Default(),
	}
	for _, opt := range options {
		opt(a)
	}
	return a
}

func (a *animator) ID() uuid.UUID {
	return a.id
}

func (a *animator) Skeleton() *model.Skeleton {
	return a.skeleton
}

func (a *animator) Node() PlaybackNode {
	return a.node
}

func (a *animator) SetNode(node PlaybackNode) {
	a.node = node
}

func (a *animator) SetUpperBodyLayer(node PlaybackNode, mask BoneMask) {
	if node != nil && len(mask) != a.skeleton.BoneCount() {
		a.logger.Warn("upper body mask does not match skeleton", "instance", a.id, "mask", len(mask), "bones", a.skeleton.BoneCount())
	}
	a.upperNode = node
	a.upperMask = mask
}

func (a *animator) SetAdditiveLayer(node PlaybackNode, weight float32) {
	a.additiveNode = node
	a.additiveWeight = weight
}

func (a *animator) SetAdditiveWeight(weight float32) {
	a.additiveWeight = weight
}

func (a *animator) SetNotifyHandler(handler func(NotifyEvent)) {
	a.notifyHandler = handler
}

func (a *animator) NativeUpdateAnimation(dt float32) {
	start := a.profiler.Begin("update")
	defer a.profiler.End("update", start)

	a.time += dt
	a.updateCtx.Reset(dt)
	for _, n := range [...]PlaybackNode{a.node, a.upperNode, a.additiveNode} {
		if n != nil {
			n.Update(&a.updateCtx)
		}
	}

	if a.notifyHandler == nil {
		return
	}
	for _, ev := range a.updateCtx.Notifies() {
		ev.Instance = a.id
		a.notifyHandler(ev)
	}
}

func (a *animator) EvaluateAnimation(out model.Pose) model.Pose {
	start := a.profiler.Begin("evaluate")
	defer a.profiler.End("evaluate", start)

	out = model.EnsurePose(out, a.skeleton)
	if a.skeleton == nil {
		return out
	}
	a.skeleton.FillBindPose(out)
	if a.node != nil {
		a.node.Evaluate(out)
	}

	if a.upperNode != nil {
		a.upperPose = model.EnsurePose(a.upperPose, a.skeleton)
		a.skeleton.FillBindPose(a.upperPose)
		a.upperNode.Evaluate(a.upperPose)
		blend.LayerByMask(out, a.upperPose, a.upperMask, out)
	}

	if a.additiveNode != nil && a.additiveWeight != 0 {
		a.additivePose = model.EnsurePose(a.additivePose, a.skeleton)
		a.additivePose.SetIdentity()
		a.additiveNode.Evaluate(a.additivePose)
		blend.AccumulateAdditive(out, a.additivePose, a.additiveWeight, out)
	}
	return out
}

func (a *animator) Time() float32 {
	return a.time
}
