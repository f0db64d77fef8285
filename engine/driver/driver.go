package driver

import (
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-anim/engine/animator"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/Carmen-Shannon/oxy-anim/engine/profiler"
	"github.com/google/uuid"
)

// driverEntry is one registered animator and the pose buffer it evaluates into.
type driverEntry struct {
	animator animator.Animator
	pose     model.Pose
}

// driver implements the Driver interface.
type driver struct {
	mu sync.RWMutex

	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running atomic.Bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	tickRate time.Duration
	// frameCallback is swapped atomically so it can be replaced while Run is active.
	frameCallback atomic.Pointer[func(deltaTime float32)]

	entries []*driverEntry
	byID    map[uuid.UUID]*driverEntry

	workers int
	pool    worker.DynamicWorkerPool

	logger *slog.Logger
}

// Driver owns a set of animators and advances them once per tick.
// Each tick updates and evaluates every animator in parallel on a worker pool; the tick returns
// only after all of them finished, so poses read between ticks are complete.
type Driver interface {
	// Add registers an animator. Adding an animator whose ID is already registered is a no-op.
	//
	// Parameters:
	//   - a: the animator to drive
	//
	// Returns:
	//   - int: the number of registered animators
	Add(a animator.Animator) int

	// Remove unregisters the animator with the given ID.
	//
	// Parameters:
	//   - id: the animator instance ID
	//
	// Returns:
	//   - bool: true if an animator was removed
	Remove(id uuid.UUID) bool

	// Animator retrieves a registered animator by ID.
	//
	// Parameters:
	//   - id: the animator instance ID
	//
	// Returns:
	//   - animator.Animator: the animator, or nil if not registered
	Animator(id uuid.UUID) animator.Animator

	// Count returns the number of registered animators.
	//
	// Returns:
	//   - int: the animator count
	Count() int

	// Pose returns a copy of the pose the animator produced on the last tick.
	//
	// Parameters:
	//   - id: the animator instance ID
	//
	// Returns:
	//   - model.Pose: the local-space pose, or nil if the animator is unknown or has not ticked
	Pose(id uuid.UUID) model.Pose

	// Tick advances every animator by deltaTime and evaluates its pose.
	//
	// Parameters:
	//   - deltaTime: the elapsed time in seconds
	Tick(deltaTime float32)

	// Run starts the fixed-rate tick loop and blocks until Quit is called.
	Run()

	// Quit signals the tick loop to stop.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()

	// SetTickRate sets the tick rate in frames per second.
	// If the driver is running, the change takes effect immediately.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetFrameCallback registers the function called after each tick of the Run loop.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetFrameCallback(callback func(deltaTime float32))

	// EnableProfiler enables periodic profiler output from the Run loop.
	EnableProfiler()

	// DisableProfiler disables periodic profiler output.
	DisableProfiler()

	// Profiler returns the profiler shared with the driven animators.
	//
	// Returns:
	//   - *profiler.Profiler: the profiler
	Profiler() *profiler.Profiler
}

var _ Driver = &driver{}

// NewDriver creates a new Driver instance with the provided options.
//
// Parameters:
//   - options: functional options for driver configuration (tick rate, workers, profiling, etc.)
//
// Returns:
//   - Driver: the newly created driver
func NewDriver(options ...DriverBuilderOption) Driver {
	d := &driver{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		byID:            make(map[uuid.UUID]*driverEntry),
		tickRate:        time.Second / 60,
		workers:         max(runtime.NumCPU()-1, 1),
		logger:          slog.Default(),
	}

	for _, opt := range options {
		opt(d)
	}

	if d.profiler == nil {
		d.profiler = profiler.NewProfiler(profiler.WithLogger(d.logger))
	}
	// Initialize the pool after options so WithWorkers can override the default.
	d.pool = worker.NewDynamicWorkerPool(d.workers, 256, 1*time.Second)

	return d
}

func (d *driver) Add(a animator.Animator) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	if a == nil {
		return len(d.entries)
	}
	if _, ok := d.byID[a.ID()]; ok {
		return len(d.entries)
	}
	e := &driverEntry{animator: a}
	d.entries = append(d.entries, e)
	d.byID[a.ID()] = e
	return len(d.entries)
}

func (d *driver) Remove(id uuid.UUID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.byID[id]
	if !ok {
		return false
	}
	delete(d.byID, id)
	for i, x := range d.entries {
		if x == e {
			d.entries = append(d.entries[:i], d.entries[i+1:]...)
			break
		}
	}
	return true
}

func (d *driver) Animator(id uuid.UUID) animator.Animator {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if e, ok := d.byID[id]; ok {
		return e.animator
	}
	return nil
}

func (d *driver) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}

func (d *driver) Pose(id uuid.UUID) model.Pose {
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.byID[id]
	if !ok || e.pose == nil {
		return nil
	}
	return append(model.Pose(nil), e.pose...)
}

func (d *driver) Tick(deltaTime float32) {
	d.mu.Lock()
	defer d.mu.Unlock()

	start := d.profiler.Begin("tick")
	defer d.profiler.End("tick", start)

	// Workers are reused across frames. A WaitGroup provides the per-frame barrier since
	// pool-level waiting blocks until workers idle-exit.
	var wg sync.WaitGroup
	for i, e := range d.entries {
		wg.Add(1)
		entry := e
		d.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				entry.animator.NativeUpdateAnimation(deltaTime)
				entry.pose = entry.animator.EvaluateAnimation(entry.pose)
				return nil, nil
			},
		})
	}
	wg.Wait()
}

func (d *driver) Run() {
	d.running.Store(true)
	d.wg.Add(2)
	go d.handleTick()
	go d.handleQuit()
	d.wg.Wait()
	d.running.Store(false)
}

func (d *driver) Quit() {
	d.quitOnce.Do(func() {
		close(d.quitChannel)
	})
}

// handleTick runs the fixed-rate tick loop in its own goroutine.
// Listens for dynamic rate changes via tickRateChannel and exits when the quit channel is closed.
func (d *driver) handleTick() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.tickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-d.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			d.Tick(dt)
			if cb := d.frameCallback.Load(); cb != nil {
				(*cb)(dt)
			}
			if d.profilingEnabled.Load() {
				d.profiler.Tick()
			}
		case newRate := <-d.tickRateChannel:
			ticker.Reset(newRate)
			d.tickRate = newRate
			d.logger.Debug("tick rate changed", "interval", newRate)
		}
	}
}

// handleQuit blocks until the quit channel is closed, then decrements the WaitGroup.
func (d *driver) handleQuit() {
	defer d.wg.Done()
	<-d.quitChannel
}

func (d *driver) SetTickRate(fps float64) {
	newRate := tickInterval(fps)

	if d.running.Load() {
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case d.tickRateChannel <- newRate:
		default:
			select {
			case <-d.tickRateChannel:
			default:
			}
			d.tickRateChannel <- newRate
		}
	} else {
		d.tickRate = newRate
	}
}

func (d *driver) SetFrameCallback(callback func(deltaTime float32)) {
	if callback == nil {
		d.frameCallback.Store(nil)
		return
	}
	d.frameCallback.Store(&callback)
}

func (d *driver) EnableProfiler() {
	d.profilingEnabled.Store(true)
}

func (d *driver) DisableProfiler() {
	d.profilingEnabled.Store(false)
}

func (d *driver) Profiler() *profiler.Profiler {
	return d.profiler
}

// tickInterval converts a rate in frames per second into a ticker interval.
func tickInterval(fps float64) time.Duration {
	if fps <= 0 {
		fps = 60
	}
	return time.Duration(float64(time.Second) / fps)
}
