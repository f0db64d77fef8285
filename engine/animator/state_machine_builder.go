package animator

import "log/slog"

// StateMachineOption is a functional option for configuring a StateMachine during construction.
type StateMachineOption func(*stateMachine)

// WithStateMachineLogger is an option builder that sets the logger used by the state machine and its players.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - StateMachineOption: a function that applies the logger option to a state machine
func WithStateMachineLogger(logger *slog.Logger) StateMachineOption {
	return func(sm *stateMachine) {
		if logger != nil {
			sm.logger = logger
		}
	}
}
