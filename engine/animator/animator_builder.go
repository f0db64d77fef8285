package animator

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-anim/engine/profiler"
	"github.com/google/uuid"
)

// AnimatorBuilderOption is a functional option for configuring an Animator during construction.
type AnimatorBuilderOption func(*animator)

// WithNode is an option builder that sets the Animator's playback node.
//
// Parameters:
//   - node: the node to own
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the node option to an animator
func WithNode(node PlaybackNode) AnimatorBuilderOption {
	return func(a *animator) {
		a.node = node
	}
}

// WithUpperBodyLayer is an option builder that sets the Animator's upper-body layer.
//
// Parameters:
//   - node: the upper layer's node
//   - mask: the bones the upper layer drives
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the layer option to an animator
func WithUpperBodyLayer(node PlaybackNode, mask BoneMask) AnimatorBuilderOption {
	return func(a *animator) {
		a.SetUpperBodyLayer(node, mask)
	}
}

// WithAdditiveLayer is an option builder that sets the Animator's additive layer.
//
// Parameters:
//   - node: a node producing a delta pose
//   - weight: the strength of the delta
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the layer option to an animator
func WithAdditiveLayer(node PlaybackNode, weight float32) AnimatorBuilderOption {
	return func(a *animator) {
		a.SetAdditiveLayer(node, weight)
	}
}

// WithNotifyHandler is an option builder that sets the function receiving notifies.
//
// Parameters:
//   - handler: the notify handler
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the handler option to an animator
func WithNotifyHandler(handler func(NotifyEvent)) AnimatorBuilderOption {
	return func(a *animator) {
		a.notifyHandler = handler
	}
}

// WithProfiler is an option builder that makes the Animator time its update and evaluate passes.
//
// Parameters:
//   - p: the profiler to report into
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the profiler option to an animator
func WithProfiler(p *profiler.Profiler) AnimatorBuilderOption {
	return func(a *animator) {
		a.profiler = p
	}
}

// WithLogger is an option builder that sets the Animator's logger.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the logger option to an animator
func WithLogger(logger *slog.Logger) AnimatorBuilderOption {
	return func(a *animator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithID is an option builder that overrides the Animator's generated ID.
//
// Parameters:
//   - id: the instance ID
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the ID option to an animator
func WithID(id uuid.UUID) AnimatorBuilderOption {
	return func(a *animator) {
		a.id = id
	}
}
