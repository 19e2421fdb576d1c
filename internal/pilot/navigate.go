package pilot

import (
	"context"

	"voxelpilot.ai/internal/geom"
	"voxelpilot.ai/internal/protocol"
)

// Navigator walks the agent to an XZ coordinate with a correction loop:
// align heading, walk a bounded burst, re-measure, repeat. Short bursts
// trade speed for correction frequency. Zero displacement across bursts
// triggers a jump recovery, then a strafe escalation to route around
// obstacles.
type Navigator struct {
	Link Link
	Conv *Converger

	TickMs           int
	HeadingTolerance float64
	MaxCorrections   int
	StuckThreshold   float64
	StuckLimit       int
	JumpLimit        int
}

// NavResult reports one coordinate-reaching task. Exhaustion is a soft
// failure: Arrived is false and FinalError holds the remaining distance.
type NavResult struct {
	Arrived     bool    `json:"arrived"`
	FinalError  float64 `json:"final_error"`
	Corrections int     `json:"corrections"`
	LookSteps   int     `json:"look_steps"`
	Jumps       int     `json:"jumps"`
	Strafes     int     `json:"strafes"`
	PathLength  float64 `json:"path_length"`
	Efficiency  float64 `json:"efficiency"` // straight-line / path length
}

// burstMs picks a forward burst duration from the remaining distance.
func burstMs(remaining float64) int {
	switch {
	case remaining > 10:
		return 1500
	case remaining > 5:
		return 1000
	case remaining > 2:
		return 500
	default:
		return 250
	}
}

// settleFrames converts a burst duration to the frames to wait for it to
// play out, plus a small settle margin.
func (n *Navigator) settleFrames(durationMs int) int {
	f := durationMs/n.TickMs + 3
	if f < 3 {
		f = 3
	}
	return f
}

// GoTo walks to (tx, tz) within tolerance. Only channel failures surface as
// errors; running out of correction cycles yields Arrived=false.
func (n *Navigator) GoTo(ctx context.Context, tx, tz, tolerance float64) (NavResult, error) {
	var res NavResult

	st := n.Link.State()
	startX, startZ := st.Pose.X, st.Pose.Z
	straight := geom.DistXZ(startX, startZ, tx, tz)

	prevX, prevZ := startX, startZ
	stuck := 0

	for i := 0; i < n.MaxCorrections; i++ {
		p := n.Link.State().Pose
		remaining := geom.DistXZ(p.X, p.Z, tx, tz)
		if remaining <= tolerance {
			res.Arrived = true
			break
		}

		steps, _, err := n.Conv.FaceYaw(ctx, geom.Bearing(p.X, p.Z, tx, tz), n.HeadingTolerance)
		if err != nil {
			return res, err
		}
		res.LookSteps += steps

		dur := burstMs(remaining)
		if err := n.Link.Send(ctx, protocol.Move(1, 0, dur)); err != nil {
			return res, err
		}
		if err := StepN(ctx, n.Link, n.settleFrames(dur)); err != nil {
			return res, err
		}
		res.Corrections++

		p = n.Link.State().Pose
		moved := geom.DistXZ(prevX, prevZ, p.X, p.Z)

		if moved < n.StuckThreshold {
			stuck++
			if stuck >= n.StuckLimit {
				if err := n.recover(ctx, &res); err != nil {
					return res, err
				}
				stuck = 0
			}
		} else {
			stuck = 0
		}

		p = n.Link.State().Pose
		res.PathLength += geom.DistXZ(prevX, prevZ, p.X, p.Z)
		prevX, prevZ = p.X, p.Z
	}

	p := n.Link.State().Pose
	res.FinalError = geom.DistXZ(p.X, p.Z, tx, tz)
	if res.FinalError <= tolerance {
		res.Arrived = true
	}
	if res.PathLength > 0.01 {
		res.Efficiency = straight / res.PathLength
	}
	return res, nil
}

// recover jumps over a one-block obstacle with a short forward burst. Once
// JumpLimit recoveries pile up it strafes sideways to route around, then the
// jump budget resets.
func (n *Navigator) recover(ctx context.Context, res *NavResult) error {
	if err := n.Link.Send(ctx, protocol.Jump()); err != nil {
		return err
	}
	if err := n.Link.Step(ctx); err != nil {
		return err
	}
	if err := n.Link.Send(ctx, protocol.Move(1, 0, 500)); err != nil {
		return err
	}
	if err := StepN(ctx, n.Link, n.settleFrames(500)); err != nil {
		return err
	}
	res.Jumps++

	if res.Jumps%n.JumpLimit == 0 {
		if err := n.Link.Send(ctx, protocol.Move(0.5, 1, 800)); err != nil {
			return err
		}
		if err := StepN(ctx, n.Link, n.settleFrames(800)); err != nil {
			return err
		}
		res.Strafes++
	}
	return nil
}
