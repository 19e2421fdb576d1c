// Package pilottest provides a deterministic in-memory simulation
// implementing pilot.Link, so controller loops can be tested without a
// server. Physics is intentionally simple: look deltas apply with a
// configurable gain, moves displace along the heading unless blocked,
// results resolve after a fixed frame delay.
package pilottest

import (
	"context"
	"math"

	"voxelpilot.ai/internal/geom"
	"voxelpilot.ai/internal/protocol"
)

type Sim struct {
	TickMs    int
	WalkSpeed float64 // units per second of forward input

	// LookGain scales each applied look delta. 1 applies deltas instantly;
	// below 1 the convergence loop needs several iterations, like a laggy
	// simulation.
	LookGain float64

	// Blocked reports whether the agent may not move to (x, z).
	Blocked func(x, z float64) bool

	// Ray derives the raycast observation from the current pose. Nil means
	// "no hit".
	Ray func(p protocol.Pose) protocol.RaycastObs

	// OnUse/OnAttack produce the action result for an interaction; nil (or a
	// nil return) means the result never resolves.
	OnUse    func() *protocol.ActionResult
	OnAttack func() *protocol.ActionResult

	// ResultDelay is how many frames pass before an interaction result
	// appears in a state frame.
	ResultDelay int

	Hotbar   []string
	Selected int

	// Actions logs every action sent, in order.
	Actions []any
	Jumps   int

	pose      protocol.Pose
	tick      uint64
	frame     *protocol.StateMsg
	pending   *protocol.ActionResult
	pendingIn int
}

func New() *Sim {
	s := &Sim{
		TickMs:      50,
		WalkSpeed:   4.3,
		LookGain:    1,
		ResultDelay: 2,
		Hotbar:      []string{"stone", "dirt", "wood"},
	}
	s.refresh(nil)
	return s
}

func (s *Sim) SetPose(x, y, z, yaw, pitch float64) {
	s.pose = protocol.Pose{X: x, Y: y, Z: z, Yaw: yaw, Pitch: pitch}
	s.refresh(nil)
}

func (s *Sim) Pose() protocol.Pose { return s.pose }

func (s *Sim) State() *protocol.StateMsg { return s.frame }

func (s *Sim) Step(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.tick++

	var result *protocol.ActionResult
	if s.pending != nil {
		s.pendingIn--
		if s.pendingIn <= 0 {
			result = s.pending
			s.pending = nil
		}
	}
	s.refresh(result)
	return nil
}

func (s *Sim) Send(ctx context.Context, action any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.Actions = append(s.Actions, action)

	switch a := action.(type) {
	case protocol.LookAction:
		s.pose.Yaw += a.Yaw * s.LookGain
		s.pose.Pitch = geom.Clamp(s.pose.Pitch+a.Pitch*s.LookGain, -geom.PitchLimit, geom.PitchLimit)
	case protocol.MoveAction:
		s.applyMove(a)
	case protocol.JumpAction:
		s.Jumps++
	case protocol.UseAction:
		if s.OnUse != nil {
			if r := s.OnUse(); r != nil {
				s.pending = r
				s.pendingIn = s.ResultDelay
			}
		}
	case protocol.AttackAction:
		if s.OnAttack != nil {
			if r := s.OnAttack(); r != nil {
				s.pending = r
				s.pendingIn = s.ResultDelay
			}
		}
	case protocol.HotbarSelectAction:
		s.Selected = a.Slot
	}
	s.refresh(s.frame.LastActionResult)
	return nil
}

func (s *Sim) applyMove(a protocol.MoveAction) {
	dist := s.WalkSpeed * float64(a.Duration) / 1000
	yr := s.pose.Yaw * math.Pi / 180

	fx, fz := math.Cos(yr), math.Sin(yr)
	rx, rz := -math.Sin(yr), math.Cos(yr)

	nx := s.pose.X + dist*(a.Forward*fx+a.Strafe*rx)
	nz := s.pose.Z + dist*(a.Forward*fz+a.Strafe*rz)
	if s.Blocked != nil && s.Blocked(nx, nz) {
		return
	}
	s.pose.X, s.pose.Z = nx, nz
}

func (s *Sim) refresh(result *protocol.ActionResult) {
	ray := protocol.RaycastObs{HitType: protocol.HitNone}
	if s.Ray != nil {
		ray = s.Ray(s.pose)
	}
	s.frame = &protocol.StateMsg{
		Type:             protocol.TypeState,
		Tick:             s.tick,
		Pose:             s.pose,
		Raycast:          ray,
		UIState:          protocol.UIState{OnGround: true, HotbarSelected: s.Selected},
		HotbarContents:   s.Hotbar,
		LastActionResult: result,
	}
}

// LookActions filters the action log down to look corrections.
func (s *Sim) LookActions() []protocol.LookAction {
	var out []protocol.LookAction
	for _, a := range s.Actions {
		if l, ok := a.(protocol.LookAction); ok {
			out = append(out, l)
		}
	}
	return out
}

// MoveActions filters the action log down to movement bursts.
func (s *Sim) MoveActions() []protocol.MoveAction {
	var out []protocol.MoveAction
	for _, a := range s.Actions {
		if m, ok := a.(protocol.MoveAction); ok {
			out = append(out, m)
		}
	}
	return out
}

// UseCount counts interactions sent.
func (s *Sim) UseCount() int {
	n := 0
	for _, a := range s.Actions {
		if _, ok := a.(protocol.UseAction); ok {
			n++
		}
	}
	return n
}
