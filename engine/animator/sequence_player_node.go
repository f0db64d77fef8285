package animator

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/blend"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// sequencePlayer is the implementation of the SequencePlayer interface.
type sequencePlayer struct {
	skeleton *model.Skeleton
	clip     *model.AnimationClip
	ctx      PlaybackContext

	refPose   model.Pose
	notifyBuf []model.Notify

	logger *slog.Logger
}

// SequencePlayer plays a single AnimationClip.
//
// Time advances by delta * play rate each update. Looping players wrap time into [0, length) in both
// directions; non-looping players clamp to [0, length]. Notifies whose time falls in (previous, current]
// are reported to the update context when playing forwards. A player with no clip evaluates to the bind pose.
type SequencePlayer interface {
	PlaybackNode

	// EvaluateComponentSpace writes the player's pose in component space, for blending inside a graph.
	//
	// Parameters:
	//   - out: the destination pose, of length equal to the skeleton bone count
	EvaluateComponentSpace(out model.Pose)

	// Skeleton returns the skeleton the player samples against.
	//
	// Returns:
	//   - *model.Skeleton: the skeleton
	Skeleton() *model.Skeleton

	// Clip returns the bound clip, or nil.
	//
	// Returns:
	//   - *model.AnimationClip: the clip or nil
	Clip() *model.AnimationClip

	// SetClip binds a new clip and rewinds to time 0. nil unbinds the clip.
	//
	// Parameters:
	//   - clip: the clip to play
	SetClip(clip *model.AnimationClip)

	// Length returns the bound clip's length in seconds, 0 without a clip.
	//
	// Returns:
	//   - float32: the clip length
	Length() float32

	// Time returns the current playback time in seconds.
	//
	// Returns:
	//   - float32: the playback time
	Time() float32

	// SetTime moves the playhead without reporting notifies. The time is wrapped or clamped like Update.
	//
	// Parameters:
	//   - t: the new time in seconds
	SetTime(t float32)

	// RemainingTime returns the time left before a non-looping clip ends.
	// Looping players report the time until the next wrap.
	//
	// Returns:
	//   - float32: length - time
	RemainingTime() float32

	// PlayRate returns the play rate multiplier.
	//
	// Returns:
	//   - float32: the play rate
	PlayRate() float32

	// SetPlayRate sets the play rate multiplier.
	//
	// Parameters:
	//   - rate: the new play rate (1 = normal speed, negative = reverse)
	SetPlayRate(rate float32)

	// Looping returns whether the player wraps at the clip end.
	//
	// Returns:
	//   - bool: true if looping
	Looping() bool

	// SetLooping sets whether the player wraps at the clip end.
	//
	// Parameters:
	//   - loop: true to loop
	SetLooping(loop bool)

	// Context returns a copy of the player's playback context.
	//
	// Returns:
	//   - PlaybackContext: the playback state
	Context() PlaybackContext

	// Reset rewinds the player to time 0.
	Reset()
}

var _ SequencePlayer = &sequencePlayer{}

// NewSequencePlayer creates a SequencePlayer for the given skeleton and clip.
// Players loop, interpolate and play at rate 1 unless configured otherwise.
//
// Parameters:
//   - skel: the skeleton to sample against
//   - clip: the clip to play (may be nil)
//   - options: variadic list of SequencePlayerOption functions to configure the player
//
// Returns:
//   - SequencePlayer: the new player
func NewSequencePlayer(skel *model.Skeleton, clip *model.AnimationClip, options ...SequencePlayerOption) SequencePlayer {
	return newSequencePlayer(skel, clip, options...)
}

func newSequencePlayer(skel *model.Skeleton, clip *model.AnimationClip, options ...SequencePlayerOption) *sequencePlayer {
	p := &sequencePlayer{
		skeleton: skel,
		ctx: PlaybackContext{
			PlayRate:    1,
			Looping:     true,
			Interpolate: true,
		},
		logger: slog.Default(),
	}
	for _, opt := range options {
		opt(p)
	}
	p.SetClip(clip)
	return p
}

func (p *sequencePlayer) Update(ctx *UpdateContext) {
	p.advance(ctx.delta()*p.ctx.PlayRate, ctx)
}

// advance moves the playhead by delta seconds of clip time and reports crossed notifies to ctx.
func (p *sequencePlayer) advance(delta float32, ctx *UpdateContext) {
	p.ctx.DeltaTime = delta
	length := p.Length()
	if length <= 0 {
		p.ctx.CurrentTime = 0
		return
	}

	prev := p.ctx.CurrentTime
	target := prev + delta
	p.ctx.CurrentTime = p.wrap(target)

	if ctx == nil || delta <= 0 || len(p.clip.Notifies) == 0 {
		return
	}
	p.notifyBuf = p.notifyBuf[:0]
	if p.ctx.Looping && target >= length {
		p.notifyBuf = p.clip.NotifiesInRange(prev, length, p.notifyBuf)
		p.notifyBuf = p.clip.NotifiesInRange(-1, p.ctx.CurrentTime, p.notifyBuf)
	} else {
		p.notifyBuf = p.clip.NotifiesInRange(prev, p.ctx.CurrentTime, p.notifyBuf)
	}
	for _, n := range p.notifyBuf {
		ctx.Emit(NotifyEvent{Clip: p.clip.Name, Name: n.Name, Time: n.Time})
	}
}

func (p *sequencePlayer) wrap(t float32) float32 {
	length := p.Length()
	if p.ctx.Looping {
		return common.WrapTime(t, length)
	}
	return mgl32.Clamp(t, 0, max(length, 0))
}

func (p *sequencePlayer) Evaluate(out model.Pose) {
	if !compatible(p.skeleton, out) {
		return
	}
	if p.ctx.Additive {
		p.evaluateLocal(out)
		return
	}
	p.EvaluateComponentSpace(out)
	blend.ToLocalSpace(p.skeleton, out, out)
}

func (p *sequencePlayer) EvaluateComponentSpace(out model.Pose) {
	if !compatible(p.skeleton, out) {
		return
	}
	p.evaluateLocal(out)
	blend.ToComponentSpace(p.skeleton, out, out)
}

// evaluateLocal samples the clip into out in local space, producing the additive delta when enabled.
func (p *sequencePlayer) evaluateLocal(out model.Pose) {
	if p.clip == nil {
		p.skeleton.FillBindPose(out)
		return
	}
	p.clip.ExtractPose(p.skeleton, p.ctx.CurrentTime, p.ctx.Interpolate, out)
	if !p.ctx.Additive {
		return
	}
	p.refPose = model.EnsurePose(p.refPose, p.skeleton)
	p.clip.ExtractPose(p.skeleton, p.ctx.ReferenceTime, p.ctx.Interpolate, p.refPose)
	blend.MakeAdditive(out, p.refPose, out)
}

func (p *sequencePlayer) Skeleton() *model.Skeleton {
	return p.skeleton
}

func (p *sequencePlayer) Clip() *model.AnimationClip {
	return p.clip
}

func (p *sequencePlayer) SetClip(clip *model.AnimationClip) {
	if clip != nil {
		if err := clip.Validate(); err != nil {
			p.logger.Warn("clip failed validation, playing bind pose", "clip", clip.Name, "error", err)
			clip = nil
		}
	}
	p.clip = clip
	p.ctx.CurrentTime = 0
	p.ctx.DeltaTime = 0
}

func (p *sequencePlayer) Length() float32 {
	if p.clip == nil {
		return 0
	}
	return p.clip.Length
}

func (p *sequencePlayer) Time() float32 {
	return p.ctx.CurrentTime
}

func (p *sequencePlayer) SetTime(t float32) {
	if p.Length() <= 0 {
		p.ctx.CurrentTime = 0
		return
	}
	p.ctx.CurrentTime = p.wrap(t)
}

func (p *sequencePlayer) RemainingTime() float32 {
	return max(p.Length()-p.ctx.CurrentTime, 0)
}

func (p *sequencePlayer) PlayRate() float32 {
	return p.ctx.PlayRate
}

func (p *sequencePlayer) SetPlayRate(rate float32) {
	p.ctx.PlayRate = rate
}

func (p *sequencePlayer) Looping() bool {
	return p.ctx.Looping
}

func (p *sequencePlayer) SetLooping(loop bool) {
	p.ctx.Looping = loop
	p.SetTime(p.ctx.CurrentTime)
}

func (p *sequencePlayer) Context() PlaybackContext {
	return p.ctx
}

func (p *sequencePlayer) Reset() {
	p.ctx.CurrentTime = 0
	p.ctx.DeltaTime = 0
}
