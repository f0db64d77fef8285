package animator

import "log/slog"

// BlendSpaceOption is a functional option for configuring a BlendSpace2D during construction.
type BlendSpaceOption func(*blendSpace2D)

// WithBlendSpacePlayRate is an option builder that sets the shared clock's rate in normalized units per second.
//
// Parameters:
//   - rate: the play rate
//
// Returns:
//   - BlendSpaceOption: a function that applies the play rate option to a blend space
func WithBlendSpacePlayRate(rate float32) BlendSpaceOption {
	return func(bs *blendSpace2D) {
		bs.playRate = rate
	}
}

// WithBlendSpaceLooping is an option builder that sets whether the shared clock wraps or clamps at 1.
//
// Parameters:
//   - loop: true to wrap
//
// Returns:
//   - BlendSpaceOption: a function that applies the looping option to a blend space
func WithBlendSpaceLooping(loop bool) BlendSpaceOption {
	return func(bs *blendSpace2D) {
		bs.looping = loop
	}
}

// WithBlendSpaceLogger is an option builder that sets the logger used for degenerate blends and clip warnings.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - BlendSpaceOption: a function that applies the logger option to a blend space
func WithBlendSpaceLogger(logger *slog.Logger) BlendSpaceOption {
	return func(bs *blendSpace2D) {
		if logger != nil {
			bs.logger = logger
		}
	}
}
