package animator

import (
	"github.com/google/uuid"
)

// PlaybackContext is the per-node playback state of a single clip.
// It is owned and mutated by exactly one node and never shared.
type PlaybackContext struct {
	// CurrentTime is the playback position in seconds.
	CurrentTime float32

	// DeltaTime is the scaled time step applied by the last update.
	DeltaTime float32

	// PlayRate multiplies the tick delta (negative plays backwards).
	PlayRate float32

	// ReferenceTime is the clip time additive deltas are measured against.
	ReferenceTime float32

	// Looping wraps time into [0, length) instead of clamping it to [0, length].
	Looping bool

	// Interpolate enables blending between bracketing keys; false samples the floor key.
	Interpolate bool

	// Additive makes the node emit a delta pose relative to ReferenceTime.
	Additive bool
}

// NotifyEvent is a clip notify crossed during an update.
type NotifyEvent struct {
	// Instance is the ID of the animator that produced the event. It is set at dispatch time.
	Instance uuid.UUID

	// Clip is the name of the clip that owns the notify.
	Clip string

	// Name is the notify's name.
	Name string

	// Time is the notify's trigger time in clip seconds.
	Time float32
}

// UpdateContext carries the tick's input into a node graph and collects the notifies crossed while
// updating it. Nodes pass a nil *UpdateContext to children whose events should be suppressed.
type UpdateContext struct {
	// DeltaTime is the unscaled tick delta in seconds.
	DeltaTime float32

	notifies []NotifyEvent
}

// NewUpdateContext creates an UpdateContext for a single tick.
//
// Parameters:
//   - dt: the tick delta in seconds
//
// Returns:
//   - *UpdateContext: the context
func NewUpdateContext(dt float32) *UpdateContext {
	return &UpdateContext{DeltaTime: dt}
}

// Reset prepares the context for a new tick, keeping the notify buffer's storage.
//
// Parameters:
//   - dt: the tick delta in seconds
func (c *UpdateContext) Reset(dt float32) {
	c.DeltaTime = dt
	c.notifies = c.notifies[:0]
}

// Emit records a notify. It is a no-op on a nil context.
//
// Parameters:
//   - ev: the event to record
func (c *UpdateContext) Emit(ev NotifyEvent) {
	if c == nil {
		return
	}
	c.notifies = append(c.notifies, ev)
}

// Notifies returns the events recorded since the last Reset.
// The slice is reused by the next Reset and must not be retained.
//
// Returns:
//   - []NotifyEvent: the recorded events
func (c *UpdateContext) Notifies() []NotifyEvent {
	if c == nil {
		return nil
	}
	return c.notifies
}

// delta returns the tick delta, 0 on a nil context.
func (c *UpdateContext) delta() float32 {
	if c == nil {
		return 0
	}
	return c.DeltaTime
}
