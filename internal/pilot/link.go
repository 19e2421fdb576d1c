// Package pilot is the closed-loop controller core: aim convergence,
// coordinate navigation and verified block placement over a live state
// channel. One goroutine drives a Link; there are never concurrent in-flight
// actions.
package pilot

import (
	"context"

	"voxelpilot.ai/internal/protocol"
)

// Link is the controller's view of the simulation channel: the latest
// observed frame, a way to block until the next one arrives, and an action
// sink. State is never nil once the session delivered its first frame.
type Link interface {
	State() *protocol.StateMsg
	Step(ctx context.Context) error
	Send(ctx context.Context, action any) error
}

// StepN advances n frames, stopping early on channel failure.
func StepN(ctx context.Context, l Link, n int) error {
	for i := 0; i < n; i++ {
		if err := l.Step(ctx); err != nil {
			return err
		}
	}
	return nil
}
