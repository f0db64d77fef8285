package main

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-anim/engine/animator"
	"github.com/Carmen-Shannon/oxy-anim/engine/driver"
	"github.com/Carmen-Shannon/oxy-anim/engine/inspector"
	"github.com/Carmen-Shannon/oxy-anim/engine/loader"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/Carmen-Shannon/oxy-anim/engine/profiler"
)

// app owns one animated asset: it loads it, keeps one animator for it in the driver, and reports every
// frame. A reload swaps in a fresh animator for the new asset.
type app struct {
	cfg    Config
	out    io.Writer
	logger *slog.Logger

	loader   loader.Loader
	driver   driver.Driver
	profiler *profiler.Profiler
	hub      inspector.Hub

	mu          sync.Mutex
	anim        animator.Animator
	machine     animator.StateMachine
	frame       int
	sinceSwitch float32
}

func newApp(cfg Config, out io.Writer, logger *slog.Logger) *app {
	a := &app{
		cfg:    cfg,
		out:    out,
		logger: logger,
	}
	a.profiler = profiler.NewProfiler(profiler.WithLogger(logger))
	a.loader = loader.NewLoader(loader.BackendTypeGLTF,
		loader.WithFrameRate(cfg.Loader.FrameRate),
		loader.WithSkin(cfg.Loader.Skin),
		loader.WithLogger(logger),
	)
	a.driver = driver.NewDriver(
		driver.WithTickRate(cfg.Driver.TickRate),
		driver.WithWorkers(cfg.Driver.Workers),
		driver.WithProfiler(a.profiler),
		driver.WithProfiling(cfg.Driver.Profile),
		driver.WithFrameCallback(a.onFrame),
		driver.WithLogger(logger),
	)
	if cfg.Inspector.Addr != "" {
		a.hub = inspector.NewHub(inspector.WithLogger(logger))
	}
	return a
}

// load imports the configured asset and installs a new animator for it. With reload set the loader cache
// is bypassed.
func (a *app) load(reload bool) error {
	var asset model.Asset
	var err error
	if reload {
		asset, err = a.loader.Reload(a.cfg.Loader.Asset)
	} else {
		asset, err = a.loader.Load(a.cfg.Loader.Asset)
	}
	if err != nil {
		return err
	}
	return a.install(asset)
}

// install builds an animator for asset and swaps it into the driver in place of the previous one.
func (a *app) install(asset model.Asset) error {
	node, machine, err := a.buildNode(asset)
	if err != nil {
		return err
	}
	anim := animator.NewAnimator(asset.Skeleton(),
		animator.WithNode(node),
		animator.WithProfiler(a.profiler),
		animator.WithNotifyHandler(a.onNotify),
		animator.WithLogger(a.logger),
	)

	a.mu.Lock()
	old := a.anim
	a.anim = anim
	a.machine = machine
	a.sinceSwitch = 0
	a.mu.Unlock()

	a.driver.Add(anim)
	if old != nil {
		a.driver.Remove(old.ID())
	}

	a.logger.Info("asset ready",
		"asset", asset.Name(),
		"bones", asset.Skeleton().BoneCount(),
		"clips", asset.AnimationNames(),
		"instance", anim.ID(),
	)
	return nil
}

// buildNode turns the configured clip list into a playback node. A single clip plays on a sequence player;
// several become states of a machine that crossfades from each to the next.
func (a *app) buildNode(asset model.Asset) (animator.PlaybackNode, animator.StateMachine, error) {
	pb := a.cfg.Playback
	skel := asset.Skeleton()

	names := pb.Clips
	if len(names) == 0 {
		all := asset.AnimationNames()
		if len(all) == 0 {
			return nil, nil, fmt.Errorf("asset %s has no animations", asset.Name())
		}
		names = all[:1]
	}

	clips := make([]*model.AnimationClip, len(names))
	for i, name := range names {
		clips[i] = asset.Animation(name)
		if clips[i] == nil {
			return nil, nil, fmt.Errorf("asset %s has no clip %q", asset.Name(), name)
		}
	}

	if len(clips) == 1 {
		player := animator.NewSequencePlayer(skel, clips[0],
			animator.WithPlayRate(pb.PlayRate),
			animator.WithLooping(pb.Looping),
			animator.WithInterpolation(pb.Interpolate),
			animator.WithPlayerLogger(a.logger),
		)
		return player, nil, nil
	}

	sm := animator.NewStateMachine(skel, animator.WithStateMachineLogger(a.logger))
	for i, clip := range clips {
		sm.AddState(names[i], clip, pb.PlayRate, pb.Looping)
	}
	for i := range clips {
		err := sm.AddTransition(animator.StateTransition{
			Source:        i,
			Destination:   (i + 1) % len(clips),
			BlendDuration: pb.BlendTime,
			Automatic:     !pb.Looping,
		})
		if err != nil {
			return nil, nil, err
		}
	}
	sm.SetCurrentState(0, 0)
	return sm, sm, nil
}

// onFrame runs on the driver loop after every tick.
func (a *app) onFrame(dt float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.anim == nil {
		return
	}
	a.frame++

	if a.machine != nil && a.cfg.Playback.Looping && a.cfg.Playback.CycleTime > 0 {
		a.sinceSwitch += dt
		if a.sinceSwitch >= a.cfg.Playback.CycleTime {
			a.sinceSwitch = 0
			next := (a.machine.CurrentState() + 1) % a.machine.StateCount()
			a.machine.SetCurrentState(next, -1)
		}
	}

	pose := a.driver.Pose(a.anim.ID())
	if pose == nil {
		return
	}
	skel := a.anim.Skeleton()

	if !a.cfg.Driver.Quiet {
		a.printRoot(skel, pose)
	}
	if a.hub != nil {
		if err := a.hub.Publish(inspector.NewFrame(a.anim.ID(), a.anim.Time(), skel, pose, a.cfg.Inspector.Space)); err != nil {
			a.logger.Debug("inspector publish failed", "error", err)
		}
	}

	if a.cfg.Driver.Frames > 0 && a.frame >= a.cfg.Driver.Frames {
		a.driver.Quit()
	}
}

func (a *app) printRoot(skel *model.Skeleton, pose model.Pose) {
	roots := skel.RootBoneIndices()
	if len(roots) == 0 || roots[0] >= len(pose) {
		return
	}
	r := roots[0]
	t := pose[r]
	fmt.Fprintf(a.out, "%6d %8.3f %-12s t=(%.3f %.3f %.3f) r=(%.3f %.3f %.3f %.3f) s=(%.3f %.3f %.3f)\n",
		a.frame, a.anim.Time(), skel.Bone(r).Name,
		t.Translation[0], t.Translation[1], t.Translation[2],
		t.Rotation.V[0], t.Rotation.V[1], t.Rotation.V[2], t.Rotation.W,
		t.Scale[0], t.Scale[1], t.Scale[2],
	)
}

func (a *app) onNotify(ev animator.NotifyEvent) {
	a.logger.Info("notify", "instance", ev.Instance, "clip", ev.Clip, "name", ev.Name, "time", ev.Time)
}
