package animator

import (
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/blend"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
)

// AnimationState is a named state of a StateMachine with its own independently timed player.
type AnimationState struct {
	// Name identifies the state.
	Name string

	// PlayRate is the play rate of the state's player.
	PlayRate float32

	// Looping is whether the state's player wraps at the clip end.
	Looping bool

	// Player is the state's sequence player.
	Player SequencePlayer
}

// StateTransition is a directed edge between two states.
type StateTransition struct {
	// Source is the index of the state the transition leaves.
	Source int

	// Destination is the index of the state the transition enters.
	Destination int

	// BlendDuration is the crossfade time in seconds.
	BlendDuration float32

	// Automatic transitions fire on their own when the source state's non-looping clip has no more than
	// BlendDuration seconds left.
	Automatic bool
}

// stateMachine is the implementation of the StateMachine interface.
type stateMachine struct {
	skeleton *model.Skeleton

	states      []AnimationState
	players     []*sequencePlayer
	transitions [][]StateTransition

	current, next int
	blendAlpha    float32
	blendDuration float32

	nextPose model.Pose

	logger *slog.Logger
}

// StateMachine is a playback node that plays one state at a time and crossfades between states.
//
// A transition in flight blends the current and next state in component space by blendAlpha, which advances
// by |dt| / blendDuration each update. When it reaches 1 the next state becomes current. Requesting a new
// state while a transition is in flight cancels it.
type StateMachine interface {
	PlaybackNode

	// EvaluateComponentSpace writes the blended pose in component space.
	//
	// Parameters:
	//   - out: the destination pose, of length equal to the skeleton bone count
	EvaluateComponentSpace(out model.Pose)

	// AddState adds a state playing clip and returns its index. Names need not be unique; StateIndex returns
	// the first match.
	//
	// Parameters:
	//   - name: the state name
	//   - clip: the clip the state plays (may be nil for a bind-pose state)
	//   - playRate: the state's play rate
	//   - looping: whether the state loops
	//
	// Returns:
	//   - int: the new state's index
	AddState(name string, clip *model.AnimationClip, playRate float32, looping bool) int

	// AddTransition registers a transition, replacing any existing edge between the same two states.
	//
	// Parameters:
	//   - t: the transition to add
	//
	// Returns:
	//   - error: ErrInvalidStateIndex if either end does not exist
	AddTransition(t StateTransition) error

	// RemoveTransition removes the edge from src to dst.
	//
	// Parameters:
	//   - src: the source state index
	//   - dst: the destination state index
	//
	// Returns:
	//   - bool: true if an edge was removed
	RemoveTransition(src, dst int) bool

	// FindTransition looks up the edge from src to dst.
	//
	// Parameters:
	//   - src: the source state index
	//   - dst: the destination state index
	//
	// Returns:
	//   - StateTransition: the edge
	//   - bool: false if there is no such edge
	FindTransition(src, dst int) (StateTransition, bool)

	// Transitions returns the edges leaving src.
	//
	// Parameters:
	//   - src: the source state index
	//
	// Returns:
	//   - []StateTransition: the outgoing edges (nil for an invalid index)
	Transitions(src int) []StateTransition

	// StateCount returns the number of states.
	//
	// Returns:
	//   - int: the state count
	StateCount() int

	// State returns the state at index i.
	//
	// Parameters:
	//   - i: the state index
	//
	// Returns:
	//   - AnimationState: the state
	//   - bool: false if i is out of range
	State(i int) (AnimationState, bool)

	// StateIndex returns the index of the first state with the given name, or -1.
	//
	// Parameters:
	//   - name: the state name
	//
	// Returns:
	//   - int: the state index or -1
	StateIndex(name string) int

	// SetCurrentState requests a switch to target.
	// An invalid target is ignored. A negative blendTime uses the registered transition from the current state,
	// or switches immediately if there is none. Targeting the current state while nothing is in flight is a
	// no-op. With no current state or a zero blend time the switch is immediate, rewinds the target and cancels
	// any crossfade, including one heading to target. Otherwise targeting the current or in-flight state is a
	// no-op, and any other target starts a crossfade that replaces the one in flight.
	//
	// Parameters:
	//   - target: the destination state index
	//   - blendTime: the crossfade time in seconds, or negative for the registered default
	SetCurrentState(target int, blendTime float32)

	// SetCurrentStateByName is SetCurrentState addressed by state name.
	//
	// Parameters:
	//   - name: the destination state name
	//   - blendTime: the crossfade time in seconds, or negative for the registered default
	//
	// Returns:
	//   - bool: false if no state has that name
	SetCurrentStateByName(name string, blendTime float32) bool

	// CurrentState returns the current state index, or -1.
	//
	// Returns:
	//   - int: the current state index
	CurrentState() int

	// NextState returns the index of the state being crossfaded to, or -1.
	//
	// Returns:
	//   - int: the next state index
	NextState() int

	// CurrentStateName returns the current state's name, or "" when there is none.
	//
	// Returns:
	//   - string: the state name
	CurrentStateName() string

	// CurrentStateTime returns the current state's playback time in seconds.
	//
	// Returns:
	//   - float32: the playback time, 0 with no current state
	CurrentStateTime() float32

	// BlendAlpha returns the progress of the transition in flight, in [0, 1].
	//
	// Returns:
	//   - float32: the blend alpha
	BlendAlpha() float32

	// BlendDuration returns the duration of the transition in flight.
	//
	// Returns:
	//   - float32: the blend duration in seconds
	BlendDuration() float32

	// IsActive reports whether a state is playing or being transitioned to.
	//
	// Returns:
	//   - bool: true while current or next is set
	IsActive() bool
}

var _ StateMachine = &stateMachine{}

// NewStateMachine creates an empty StateMachine bound to skel.
//
// Parameters:
//   - skel: the skeleton states sample against
//   - options: variadic list of StateMachineOption functions to configure the state machine
//
// Returns:
//   - StateMachine: the new state machine
func NewStateMachine(skel *model.Skeleton, options ...StateMachineOption) StateMachine {
	sm := &stateMachine{
		skeleton: skel,
		current:  -1,
		next:     -1,
		nextPose: make(model.Pose, skel.BoneCount()),
		logger:   slog.Default(),
	}
	for _, opt := range options {
		opt(sm)
	}
	return sm
}

func (sm *stateMachine) AddState(name string, clip *model.AnimationClip, playRate float32, looping bool) int {
	p := newSequencePlayer(sm.skeleton, clip, WithPlayRate(playRate), WithLooping(looping), WithPlayerLogger(sm.logger))
	sm.states = append(sm.states, AnimationState{Name: name, PlayRate: playRate, Looping: looping, Player: p})
	sm.players = append(sm.players, p)
	sm.transitions = append(sm.transitions, nil)
	return len(sm.states) - 1
}

func (sm *stateMachine) validState(i int) bool {
	return i >= 0 && i < len(sm.states)
}

func (sm *stateMachine) AddTransition(t StateTransition) error {
	if !sm.validState(t.Source) {
		return fmt.Errorf("transition source %d: %w", t.Source, ErrInvalidStateIndex)
	}
	if !sm.validState(t.Destination) {
		return fmt.Errorf("transition destination %d: %w", t.Destination, ErrInvalidStateIndex)
	}
	edges := sm.transitions[t.Source]
	for i := range edges {
		if edges[i].Destination == t.Destination {
			edges[i] = t
			return nil
		}
	}
	sm.transitions[t.Source] = append(edges, t)
	return nil
}

func (sm *stateMachine) RemoveTransition(src, dst int) bool {
	if !sm.validState(src) {
		return false
	}
	edges := sm.transitions[src]
	for i := range edges {
		if edges[i].Destination == dst {
			sm.transitions[src] = append(edges[:i], edges[i+1:]...)
			return true
		}
	}
	return false
}

func (sm *stateMachine) FindTransition(src, dst int) (StateTransition, bool) {
	if !sm.validState(src) {
		return StateTransition{}, false
	}
	for _, t := range sm.transitions[src] {
		if t.Destination == dst {
			return t, true
		}
	}
	return StateTransition{}, false
}

func (sm *stateMachine) Transitions(src int) []StateTransition {
	if !sm.validState(src) {
		return nil
	}
	return sm.transitions[src]
}

func (sm *stateMachine) StateCount() int {
	return len(sm.states)
}

func (sm *stateMachine) State(i int) (AnimationState, bool) {
	if !sm.validState(i) {
		return AnimationState{}, false
	}
	s := sm.states[i]
	s.PlayRate = sm.players[i].PlayRate()
	s.Looping = sm.players[i].Looping()
	return s, true
}

func (sm *stateMachine) StateIndex(name string) int {
	for i := range sm.states {
		if sm.states[i].Name == name {
			return i
		}
	}
	return -1
}

func (sm *stateMachine) SetCurrentState(target int, blendTime float32) {
	if !sm.validState(target) {
		sm.logger.Debug("ignoring transition to invalid state", "target", target, "states", len(sm.states))
		return
	}
	if blendTime < 0 {
		blendTime = 0
		if t, ok := sm.FindTransition(sm.current, target); ok {
			blendTime = t.BlendDuration
		}
	}
	// Re-requesting the settled current state keeps its playhead.
	if sm.current != -1 && sm.next == -1 && target == sm.current {
		return
	}

	// Immediate requests win over the idempotence rule so they can cut a crossfade short, even one
	// already heading to target.
	if sm.current == -1 || blendTime <= 0 {
		sm.players[target].Reset()
		sm.current = target
		sm.next = -1
		sm.blendAlpha = 0
		sm.blendDuration = 0
		return
	}
	if target == sm.current || target == sm.next {
		return
	}

	sm.players[target].Reset()
	sm.next = target
	sm.blendAlpha = 0
	sm.blendDuration = max(blendTime, 0)
}

func (sm *stateMachine) SetCurrentStateByName(name string, blendTime float32) bool {
	i := sm.StateIndex(name)
	if i < 0 {
		return false
	}
	sm.SetCurrentState(i, blendTime)
	return true
}

func (sm *stateMachine) Update(ctx *UpdateContext) {
	if sm.current < 0 {
		return
	}
	sm.players[sm.current].Update(ctx)

	if sm.next < 0 {
		sm.checkAutomaticTransitions()
		return
	}

	sm.players[sm.next].Update(ctx)
	if sm.blendDuration <= 0 {
		sm.blendAlpha = 1
	} else {
		dt := ctx.delta()
		if dt < 0 {
			dt = -dt
		}
		sm.blendAlpha = min(sm.blendAlpha+dt/sm.blendDuration, 1)
	}
	if sm.blendAlpha >= 1 {
		sm.current = sm.next
		sm.next = -1
		sm.blendAlpha = 0
		sm.blendDuration = 0
	}
}

// checkAutomaticTransitions starts the first automatic transition out of the current state whose trigger
// window has been reached.
func (sm *stateMachine) checkAutomaticTransitions() {
	p := sm.players[sm.current]
	if p.Looping() || p.Clip() == nil {
		return
	}
	remaining := p.RemainingTime()
	for _, t := range sm.transitions[sm.current] {
		if t.Automatic && remaining <= t.BlendDuration {
			sm.SetCurrentState(t.Destination, t.BlendDuration)
			return
		}
	}
}

func (sm *stateMachine) Evaluate(out model.Pose) {
	if !compatible(sm.skeleton, out) {
		return
	}
	if sm.current < 0 {
		sm.skeleton.FillBindPose(out)
		return
	}
	if sm.next < 0 {
		sm.players[sm.current].Evaluate(out)
		return
	}
	sm.EvaluateComponentSpace(out)
	blend.ToLocalSpace(sm.skeleton, out, out)
}

func (sm *stateMachine) EvaluateComponentSpace(out model.Pose) {
	if !compatible(sm.skeleton, out) {
		return
	}
	if sm.current < 0 {
		sm.skeleton.FillBindPose(out)
		blend.ToComponentSpace(sm.skeleton, out, out)
		return
	}
	sm.players[sm.current].EvaluateComponentSpace(out)
	if sm.next < 0 {
		return
	}
	sm.nextPose = model.EnsurePose(sm.nextPose, sm.skeleton)
	sm.players[sm.next].EvaluateComponentSpace(sm.nextPose)
	blend.BlendTwo(out, sm.nextPose, common.Clamp01(sm.blendAlpha), out)
}

func (sm *stateMachine) CurrentState() int {
	return sm.current
}

func (sm *stateMachine) NextState() int {
	return sm.next
}

func (sm *stateMachine) CurrentStateName() string {
	if sm.current < 0 {
		return ""
	}
	return sm.states[sm.current].Name
}

func (sm *stateMachine) CurrentStateTime() float32 {
	if sm.current < 0 {
		return 0
	}
	return sm.players[sm.current].Time()
}

func (sm *stateMachine) BlendAlpha() float32 {
	return sm.blendAlpha
}

func (sm *stateMachine) BlendDuration() float32 {
	return sm.blendDuration
}

func (sm *stateMachine) IsActive() bool {
	return sm.current != -1 || sm.next != -1
}
