package pilot

import (
	"context"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"voxelpilot.ai/internal/geom"
	"voxelpilot.ai/internal/protocol"
)

// Converger drives the look delta toward a target in a closed loop: the
// delta is re-derived from the fresh pose every iteration because the
// simulation applies orientation changes asynchronously and intervening
// physics can shift the eye. A single open-loop correction does not converge
// reliably.
type Converger struct {
	Link Link

	Tolerance   float64 // per-component, degrees
	MaxAttempts int
	SettleTicks int
}

// TraceStep records one correction of a convergence loop.
type TraceStep struct {
	Attempt        int     `json:"attempt"`
	ResidualBefore float64 `json:"residual_before"`
	DeltaYaw       float64 `json:"delta_yaw"`
	DeltaPitch     float64 `json:"delta_pitch"`
	ResidualAfter  float64 `json:"residual_after"`
}

// Result reports a convergence outcome. Non-convergence is a soft failure:
// Converged is false and Residual holds the remaining error.
type Result struct {
	Converged bool        `json:"converged"`
	Attempts  int         `json:"attempts"`
	Residual  float64     `json:"residual"` // degrees, Euclidean over (yaw, pitch)
	Trace     []TraceStep `json:"trace,omitempty"`
}

func (c *Converger) delta(target mgl64.Vec3) (dyaw, dpitch float64) {
	st := c.Link.State()
	eye := mgl64.Vec3{st.Pose.X, st.Pose.Y, st.Pose.Z}
	return geom.LookDelta(eye, st.Pose.Yaw, st.Pose.Pitch, target)
}

// LookAt converges the camera onto target. If the residual is already below
// tolerance no action is sent. Only channel failures surface as errors.
func (c *Converger) LookAt(ctx context.Context, target mgl64.Vec3) (Result, error) {
	var res Result
	for attempt := 0; attempt < c.MaxAttempts; attempt++ {
		dyaw, dpitch := c.delta(target)
		before := math.Hypot(dyaw, dpitch)

		if math.Abs(dyaw) < c.Tolerance && math.Abs(dpitch) < c.Tolerance {
			res.Converged = true
			res.Attempts = attempt
			res.Residual = before
			return res, nil
		}

		if err := c.Link.Send(ctx, protocol.Look(dyaw, dpitch)); err != nil {
			return res, err
		}
		if err := StepN(ctx, c.Link, c.SettleTicks); err != nil {
			return res, err
		}

		dyaw2, dpitch2 := c.delta(target)
		after := math.Hypot(dyaw2, dpitch2)
		res.Trace = append(res.Trace, TraceStep{
			Attempt:        attempt,
			ResidualBefore: before,
			DeltaYaw:       dyaw,
			DeltaPitch:     dpitch,
			ResidualAfter:  after,
		})
		res.Attempts = attempt + 1
		res.Residual = after
	}
	return res, nil
}

// FaceYaw rotates to the absolute heading targetYaw, leveling pitch to
// horizontal at the same time. tolerance is coarser than aim tolerance;
// navigation only needs the heading roughly right before a burst.
// Returns the corrections sent and the final heading error.
func (c *Converger) FaceYaw(ctx context.Context, targetYaw, tolerance float64) (steps int, finalErr float64, err error) {
	for i := 0; i < c.MaxAttempts; i++ {
		st := c.Link.State()
		delta := geom.NormalizeDeg(targetYaw - st.Pose.Yaw)
		if math.Abs(delta) <= tolerance {
			break
		}
		if err := c.Link.Send(ctx, protocol.Look(delta, -st.Pose.Pitch)); err != nil {
			return steps, 0, err
		}
		if err := StepN(ctx, c.Link, c.SettleTicks); err != nil {
			return steps, 0, err
		}
		steps++
	}
	finalErr = math.Abs(geom.NormalizeDeg(targetYaw - c.Link.State().Pose.Yaw))
	return steps, finalErr, nil
}
