package animator

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

func newCrossfadeMachine(t *testing.T) (StateMachine, mgl32.Quat, mgl32.Quat) {
	t.Helper()
	skel := newTestSkeleton(t)
	rotA := mgl32.QuatRotate(mgl32.DegToRad(10), mgl32.Vec3{0, 1, 0})
	rotB := mgl32.QuatRotate(mgl32.DegToRad(120), mgl32.Vec3{1, 0, 0})

	sm := NewStateMachine(skel)
	sm.AddState("A", constantClip("A", 1, rotA, 0, 0, 1), 1, true)
	sm.AddState("B", constantClip("B", 1, rotB, 2, 0, 1), 1, true)
	return sm, rotA, rotB
}

func TestStateMachineCrossfadeScenario(t *testing.T) {
	sm, rotA, rotB := newCrossfadeMachine(t)
	skel := newTestSkeleton(t)

	sm.SetCurrentState(0, 0)
	sm.SetCurrentState(1, 0.5)
	if sm.CurrentState() != 0 || sm.NextState() != 1 {
		t.Fatalf("after request current=%d next=%d, want 0 and 1", sm.CurrentState(), sm.NextState())
	}

	sm.Update(NewUpdateContext(0.25))
	if sm.BlendAlpha() != 0.5 {
		t.Fatalf("BlendAlpha() = %f, want 0.5", sm.BlendAlpha())
	}
	pose := evaluate(sm, skel)
	want := common.Slerp(rotA, rotB, 0.5)
	if !pose[0].Rotation.ApproxEqualThreshold(want, testEpsilon) {
		t.Errorf("root rotation = %v, want %v", pose[0].Rotation, want)
	}

	sm.Update(NewUpdateContext(0.25))
	if sm.CurrentState() != 1 || sm.NextState() != -1 {
		t.Errorf("after blend current=%d next=%d, want 1 and -1", sm.CurrentState(), sm.NextState())
	}
	if sm.CurrentStateName() != "B" {
		t.Errorf("CurrentStateName() = %q, want B", sm.CurrentStateName())
	}
	pose = evaluate(sm, skel)
	if !pose[0].Rotation.ApproxEqualThreshold(rotB, testEpsilon) {
		t.Errorf("root rotation after blend = %v, want %v", pose[0].Rotation, rotB)
	}
}

func TestStateMachineTransitionMonotonic(t *testing.T) {
	sm, _, _ := newCrossfadeMachine(t)
	sm.SetCurrentState(0, 0)
	sm.SetCurrentState(1, 1)

	var last float32
	completions := 0
	for _, dt := range []float32{0.1, 0.05, 0.3, 0, 0.2, 0.15, 0.4, 0.1, 0.1} {
		wasBlending := sm.NextState() == 1
		sm.Update(NewUpdateContext(dt))
		switch {
		case sm.NextState() == 1:
			if sm.BlendAlpha() < last {
				t.Fatalf("BlendAlpha() decreased from %f to %f", last, sm.BlendAlpha())
			}
			last = sm.BlendAlpha()
		case wasBlending:
			completions++
			if sm.CurrentState() != 1 {
				t.Fatalf("completed into state %d, want 1", sm.CurrentState())
			}
		}
	}
	if completions != 1 {
		t.Errorf("transition completed %d times, want 1", completions)
	}
	if sm.NextState() != -1 {
		t.Errorf("NextState() = %d after completion, want -1", sm.NextState())
	}
}

func TestStateMachineZeroBlendSwitchesImmediately(t *testing.T) {
	sm, _, _ := newCrossfadeMachine(t)
	sm.SetCurrentState(0, 0)
	if err := sm.AddTransition(StateTransition{Source: 0, Destination: 1}); err != nil {
		t.Fatalf("AddTransition() error = %v", err)
	}
	// A registered zero-length edge switches immediately.
	sm.SetCurrentState(1, -1)
	if sm.CurrentState() != 1 || sm.NextState() != -1 {
		t.Errorf("current=%d next=%d, want 1 and -1", sm.CurrentState(), sm.NextState())
	}
}

func TestStateMachineSetCurrentState(t *testing.T) {
	sm, _, _ := newCrossfadeMachine(t)
	sm.AddState("C", nil, 1, true)
	if sm.IsActive() {
		t.Fatalf("IsActive() = true before any state was set")
	}

	sm.SetCurrentState(7, 0)
	sm.SetCurrentState(-2, 0)
	if sm.CurrentState() != -1 {
		t.Fatalf("invalid target changed state to %d", sm.CurrentState())
	}

	// No current state: immediate even with a blend time.
	sm.SetCurrentState(0, 1)
	if sm.CurrentState() != 0 || sm.NextState() != -1 || !sm.IsActive() {
		t.Fatalf("first request current=%d next=%d, want 0 and -1", sm.CurrentState(), sm.NextState())
	}

	sm.Update(NewUpdateContext(0.4))
	sm.SetCurrentState(0, 0)
	if sm.CurrentStateTime() != 0.4 {
		t.Errorf("re-requesting the current state reset its time to %f", sm.CurrentStateTime())
	}

	sm.SetCurrentState(1, 1)
	sm.Update(NewUpdateContext(0.25))
	sm.SetCurrentState(1, 1)
	if sm.BlendAlpha() != 0.25 {
		t.Errorf("re-requesting the next state changed alpha to %f", sm.BlendAlpha())
	}

	// A new target cancels the transition in flight.
	sm.SetCurrentState(2, 0.5)
	if sm.NextState() != 2 || sm.BlendAlpha() != 0 || sm.BlendDuration() != 0.5 {
		t.Errorf("cancel: next=%d alpha=%f duration=%f, want 2, 0, 0.5", sm.NextState(), sm.BlendAlpha(), sm.BlendDuration())
	}

	// The registered edge supplies the blend time for negative requests.
	if err := sm.AddTransition(StateTransition{Source: 0, Destination: 1, BlendDuration: 0.75}); err != nil {
		t.Fatalf("AddTransition() error = %v", err)
	}
	sm.SetCurrentState(1, -1)
	if sm.NextState() != 1 || sm.BlendDuration() != 0.75 {
		t.Errorf("default edge: next=%d duration=%f, want 1 and 0.75", sm.NextState(), sm.BlendDuration())
	}

	// Immediate switch rewinds the target and cancels the transition.
	sm.SetCurrentState(2, 0)
	if sm.CurrentState() != 2 || sm.NextState() != -1 || sm.CurrentStateTime() != 0 {
		t.Errorf("immediate: current=%d next=%d time=%f", sm.CurrentState(), sm.NextState(), sm.CurrentStateTime())
	}
}

func TestStateMachineImmediateRequestCutsCrossfade(t *testing.T) {
	tests := []struct {
		name   string
		target int
		want   int
	}{
		{"to the pending state", 1, 1},
		{"back to the current state", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm, _, _ := newCrossfadeMachine(t)
			sm.SetCurrentState(0, 0)
			sm.SetCurrentState(1, 1)
			sm.Update(NewUpdateContext(0.25))
			if sm.NextState() != 1 || sm.BlendAlpha() != 0.25 {
				t.Fatalf("setup: next=%d alpha=%f, want 1 and 0.25", sm.NextState(), sm.BlendAlpha())
			}

			sm.SetCurrentState(tt.target, 0)
			if sm.CurrentState() != tt.want || sm.NextState() != -1 || sm.BlendAlpha() != 0 {
				t.Errorf("current=%d next=%d alpha=%f, want %d, -1, 0", sm.CurrentState(), sm.NextState(), sm.BlendAlpha(), tt.want)
			}
			if sm.CurrentStateTime() != 0 {
				t.Errorf("CurrentStateTime() = %f, want the target rewound to 0", sm.CurrentStateTime())
			}
		})
	}
}

func TestStateMachineTransitions(t *testing.T) {
	sm, _, _ := newCrossfadeMachine(t)

	err := sm.AddTransition(StateTransition{Source: 0, Destination: 9})
	if !errors.Is(err, ErrInvalidStateIndex) {
		t.Fatalf("AddTransition(invalid) error = %v, want ErrInvalidStateIndex", err)
	}

	_ = sm.AddTransition(StateTransition{Source: 0, Destination: 1, BlendDuration: 0.2})
	_ = sm.AddTransition(StateTransition{Source: 0, Destination: 1, BlendDuration: 0.4})
	if got := sm.Transitions(0); len(got) != 1 || got[0].BlendDuration != 0.4 {
		t.Errorf("Transitions(0) = %+v, want one edge with duration 0.4", got)
	}
	if _, ok := sm.FindTransition(1, 0); ok {
		t.Errorf("FindTransition(1, 0) found an edge that was never added")
	}
	if !sm.RemoveTransition(0, 1) || sm.RemoveTransition(0, 1) {
		t.Errorf("RemoveTransition() did not remove exactly once")
	}
	if sm.StateIndex("B") != 1 || sm.StateIndex("Z") != -1 {
		t.Errorf("StateIndex() returned the wrong index")
	}
	if !sm.SetCurrentStateByName("B", 0) || sm.CurrentState() != 1 {
		t.Errorf("SetCurrentStateByName(B) did not switch")
	}
	if sm.SetCurrentStateByName("Z", 0) {
		t.Errorf("SetCurrentStateByName(Z) = true for an unknown state")
	}
}

func TestStateMachineAutomaticTransition(t *testing.T) {
	skel := newTestSkeleton(t)
	sm := NewStateMachine(skel)
	jump := sm.AddState("jump", rampClip("jump", 1), 1, false)
	land := sm.AddState("land", rampClip("land", 1), 1, true)
	if err := sm.AddTransition(StateTransition{Source: jump, Destination: land, BlendDuration: 0.25, Automatic: true}); err != nil {
		t.Fatalf("AddTransition() error = %v", err)
	}
	sm.SetCurrentState(jump, 0)

	sm.Update(NewUpdateContext(0.5))
	if sm.NextState() != -1 {
		t.Fatalf("automatic transition fired with 0.5s remaining")
	}
	sm.Update(NewUpdateContext(0.3))
	if sm.NextState() != land {
		t.Fatalf("automatic transition did not fire with 0.2s remaining")
	}
	sm.Update(NewUpdateContext(0.25))
	if sm.CurrentState() != land {
		t.Errorf("CurrentState() = %d, want land", sm.CurrentState())
	}
}

func TestStateMachineNotifiesFromBothStates(t *testing.T) {
	sm, _, _ := newCrossfadeMachine(t)
	a, _ := sm.State(0)
	b, _ := sm.State(1)
	a.Player.Clip().Notifies = []model.Notify{{Name: "a", Time: 0.1}}
	b.Player.Clip().Notifies = []model.Notify{{Name: "b", Time: 0.1}}
	sm.SetCurrentState(0, 0)
	sm.SetCurrentState(1, 1)

	ctx := NewUpdateContext(0.2)
	sm.Update(ctx)
	if got := ctx.Notifies(); len(got) != 2 || got[0].Name != "a" || got[1].Name != "b" {
		t.Errorf("notifies = %+v, want a then b", got)
	}
}
