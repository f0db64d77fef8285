package driver

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-anim/engine/animator"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/Carmen-Shannon/oxy-anim/engine/profiler"
	"github.com/go-gl/mathgl/mgl32"
)

func newTestAnimator(t *testing.T, options ...animator.AnimatorBuilderOption) animator.Animator {
	t.Helper()
	skel, err := model.NewSkeleton([]model.Bone{
		{Name: "root", ParentIndex: -1, LocalBindTransform: model.IdentityTransform()},
		{Name: "tip", ParentIndex: 0, LocalBindTransform: model.IdentityTransform()},
	})
	if err != nil {
		t.Fatalf("NewSkeleton() error = %v", err)
	}
	clip := &model.AnimationClip{
		Name:      "slide",
		Length:    2,
		FrameRate: 1,
		Tracks: []model.AnimationTrack{{
			BoneIndex:    0,
			PositionKeys: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}},
		}},
	}
	options = append([]animator.AnimatorBuilderOption{animator.WithNode(animator.NewSequencePlayer(skel, clip))}, options...)
	return animator.NewAnimator(skel, options...)
}

func TestDriverTickEvaluatesEveryAnimator(t *testing.T) {
	d := NewDriver(WithWorkers(2))
	var anims []animator.Animator
	for i := 0; i < 5; i++ {
		a := newTestAnimator(t)
		anims = append(anims, a)
		if n := d.Add(a); n != i+1 {
			t.Fatalf("Add() = %d, want %d", n, i+1)
		}
	}
	if d.Add(anims[0]) != 5 {
		t.Errorf("re-adding an animator changed the count")
	}

	if d.Pose(anims[0].ID()) != nil {
		t.Errorf("Pose() before the first tick is not nil")
	}

	d.Tick(0.5)
	for _, a := range anims {
		pose := d.Pose(a.ID())
		if len(pose) != 2 {
			t.Fatalf("Pose() length = %d, want 2", len(pose))
		}
		if !pose[0].Translation.ApproxEqualThreshold(mgl32.Vec3{0.5, 0, 0}, 1e-4) {
			t.Errorf("root translation = %v, want (0.5, 0, 0)", pose[0].Translation)
		}
	}

	pose := d.Pose(anims[1].ID())
	pose[0].Translation = mgl32.Vec3{9, 9, 9}
	if d.Pose(anims[1].ID())[0].Translation[0] == 9 {
		t.Errorf("Pose() returned the driver's buffer instead of a copy")
	}
}

func TestDriverRemove(t *testing.T) {
	d := NewDriver()
	a, b := newTestAnimator(t), newTestAnimator(t)
	d.Add(a)
	d.Add(b)

	if !d.Remove(a.ID()) || d.Remove(a.ID()) {
		t.Errorf("Remove() did not remove exactly once")
	}
	if d.Count() != 1 || d.Animator(b.ID()) != b || d.Animator(a.ID()) != nil {
		t.Errorf("after Remove count=%d", d.Count())
	}

	d.Tick(1)
	if d.Pose(a.ID()) != nil {
		t.Errorf("Pose() of a removed animator is not nil")
	}
	if b.Time() != 1 {
		t.Errorf("remaining animator time = %f, want 1", b.Time())
	}
}

func TestDriverRunUntilQuit(t *testing.T) {
	var frames atomic.Int32
	d := NewDriver(WithTickRate(500))
	a := newTestAnimator(t)
	d.Add(a)
	d.SetFrameCallback(func(float32) {
		if frames.Add(1) == 5 {
			d.Quit()
		}
	})

	done := make(chan struct{})
	go func() {
		d.Run()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		d.Quit()
		t.Fatalf("Run() did not return after Quit()")
	}
	if frames.Load() < 5 {
		t.Errorf("frames = %d, want at least 5", frames.Load())
	}
	if a.Time() <= 0 {
		t.Errorf("animator never advanced")
	}
	d.Quit()
}

func TestDriverReconfigureWhileRunning(t *testing.T) {
	var first, second atomic.Int32
	d := NewDriver(WithTickRate(500), WithFrameCallback(func(float32) { first.Add(1) }))
	d.Add(newTestAnimator(t))

	done := make(chan struct{})
	go func() {
		d.Run()
		close(done)
	}()
	t.Cleanup(d.Quit)

	deadline := time.After(5 * time.Second)
	for first.Load() < 3 {
		select {
		case <-deadline:
			t.Fatal("first callback never ran")
		case <-time.After(time.Millisecond):
		}
	}

	// Swapping the callback and toggling profiling race with the tick loop unless synchronized.
	d.EnableProfiler()
	d.SetFrameCallback(func(float32) {
		if second.Add(1) == 3 {
			d.Quit()
		}
	})
	d.DisableProfiler()

	select {
	case <-done:
	case <-deadline:
		t.Fatal("replacement callback never quit the driver")
	}
	if second.Load() < 3 {
		t.Errorf("replacement callback ran %d times, want at least 3", second.Load())
	}

	d.SetFrameCallback(nil)
	d.Tick(0.1)
}

func TestDriverSharesProfiler(t *testing.T) {
	p := profiler.NewProfiler()
	d := NewDriver(WithProfiler(p))
	d.Add(newTestAnimator(t, animator.WithProfiler(p)))
	d.Add(newTestAnimator(t, animator.WithProfiler(p)))

	d.Tick(0.1)
	d.Tick(0.1)

	if d.Profiler() != p {
		t.Fatalf("Profiler() did not return the injected profiler")
	}
	if got := p.Section("tick").Count; got != 2 {
		t.Errorf("tick count = %d, want 2", got)
	}
	if got := p.Section("update").Count; got != 4 {
		t.Errorf("update count = %d, want 4", got)
	}
}

func TestTickInterval(t *testing.T) {
	tests := []struct {
		fps  float64
		want time.Duration
	}{
		{60, time.Second / 60},
		{0, time.Second / 60},
		{-5, time.Second / 60},
		{30, time.Second / 30},
		{120, time.Second / 120},
	}
	for _, tt := range tests {
		if got := tickInterval(tt.fps); got != tt.want {
			t.Errorf("tickInterval(%f) = %v, want %v", tt.fps, got, tt.want)
		}
	}
}
