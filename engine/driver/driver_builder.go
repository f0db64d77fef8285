package driver

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-anim/engine/profiler"
)

// DriverBuilderOption is a functional option for configuring a Driver.
// Use the With* functions to create options that are applied directly to the driver instance.
type DriverBuilderOption func(*driver)

// WithProfiling enables or disables periodic profiler output from the Run loop.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - DriverBuilderOption: option function to apply
func WithProfiling(enabled bool) DriverBuilderOption {
	return func(d *driver) {
		d.profilingEnabled.Store(enabled)
	}
}

// WithProfiler sets the profiler the driver records its tick section into.
// Pass the same profiler to the animators to see update and evaluate times in one report.
//
// Parameters:
//   - p: the profiler
//
// Returns:
//   - DriverBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) DriverBuilderOption {
	return func(d *driver) {
		d.profiler = p
	}
}

// WithTickRate sets the tick rate in frames per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - DriverBuilderOption: option function to apply
func WithTickRate(fps float64) DriverBuilderOption {
	return func(d *driver) {
		d.tickRate = tickInterval(fps)
	}
}

// WithWorkers sets the number of pool workers that update animators in parallel.
// Values < 1 are ignored.
//
// Parameters:
//   - n: the worker count (default NumCPU-1)
//
// Returns:
//   - DriverBuilderOption: option function to apply
func WithWorkers(n int) DriverBuilderOption {
	return func(d *driver) {
		if n >= 1 {
			d.workers = n
		}
	}
}

// WithFrameCallback registers the function called after each tick of the Run loop.
//
// Parameters:
//   - callback: function receiving the delta time in seconds
//
// Returns:
//   - DriverBuilderOption: option function to apply
func WithFrameCallback(callback func(deltaTime float32)) DriverBuilderOption {
	return func(d *driver) {
		d.SetFrameCallback(callback)
	}
}

// WithLogger sets the logger used by the driver and its default profiler.
//
// Parameters:
//   - logger: the structured logger
//
// Returns:
//   - DriverBuilderOption: option function to apply
func WithLogger(logger *slog.Logger) DriverBuilderOption {
	return func(d *driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}
