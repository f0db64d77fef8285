package animator

import "log/slog"

// SequencePlayerOption is a functional option for configuring a SequencePlayer during construction.
type SequencePlayerOption func(*sequencePlayer)

// WithPlayRate is an option builder that sets the player's play rate multiplier.
//
// Parameters:
//   - rate: the play rate (1 = normal speed)
//
// Returns:
//   - SequencePlayerOption: a function that applies the play rate option to a player
func WithPlayRate(rate float32) SequencePlayerOption {
	return func(p *sequencePlayer) {
		p.ctx.PlayRate = rate
	}
}

// WithLooping is an option builder that sets whether the player wraps at the clip end.
//
// Parameters:
//   - loop: true to loop
//
// Returns:
//   - SequencePlayerOption: a function that applies the looping option to a player
func WithLooping(loop bool) SequencePlayerOption {
	return func(p *sequencePlayer) {
		p.ctx.Looping = loop
	}
}

// WithInterpolation is an option builder that enables or disables key interpolation.
// Disabled interpolation samples the floor key only.
//
// Parameters:
//   - interpolate: true to blend between keys
//
// Returns:
//   - SequencePlayerOption: a function that applies the interpolation option to a player
func WithInterpolation(interpolate bool) SequencePlayerOption {
	return func(p *sequencePlayer) {
		p.ctx.Interpolate = interpolate
	}
}

// WithAdditive is an option builder that makes the player emit an additive delta pose measured against the
// clip's pose at referenceTime.
//
// Parameters:
//   - referenceTime: the clip time of the reference pose, in seconds
//
// Returns:
//   - SequencePlayerOption: a function that applies the additive option to a player
func WithAdditive(referenceTime float32) SequencePlayerOption {
	return func(p *sequencePlayer) {
		p.ctx.Additive = true
		p.ctx.ReferenceTime = referenceTime
	}
}

// WithPlayerLogger is an option builder that sets the logger used for clip warnings.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - SequencePlayerOption: a function that applies the logger option to a player
func WithPlayerLogger(logger *slog.Logger) SequencePlayerOption {
	return func(p *sequencePlayer) {
		if logger != nil {
			p.logger = logger
		}
	}
}
