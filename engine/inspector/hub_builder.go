package inspector

import (
	"log/slog"
	"time"
)

// HubBuilderOption is a functional option for configuring a Hub via NewHub.
type HubBuilderOption func(*hub)

// WithSendBuffer sets how many frames may queue per client before frames are dropped.
//
// Parameters:
//   - n: the queue length, values < 1 are ignored
//
// Returns:
//   - HubBuilderOption: a function that applies the buffer option to a hub
func WithSendBuffer(n int) HubBuilderOption {
	return func(h *hub) {
		if n >= 1 {
			h.sendBuffer = n
		}
	}
}

// WithWriteTimeout sets the deadline for a single websocket write.
//
// Parameters:
//   - d: the write timeout
//
// Returns:
//   - HubBuilderOption: a function that applies the timeout option to a hub
func WithWriteTimeout(d time.Duration) HubBuilderOption {
	return func(h *hub) {
		if d > 0 {
			h.writeTimeout = d
		}
	}
}

// WithLogger sets the logger used for connection diagnostics.
//
// Parameters:
//   - logger: the structured logger
//
// Returns:
//   - HubBuilderOption: a function that applies the logger option to a hub
func WithLogger(logger *slog.Logger) HubBuilderOption {
	return func(h *hub) {
		if logger != nil {
			h.logger = logger
		}
	}
}
