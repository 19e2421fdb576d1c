package pilot

import (
	"context"

	"github.com/go-gl/mathgl/mgl64"

	"voxelpilot.ai/internal/geom"
	"voxelpilot.ai/internal/protocol"
)

// Outcome classifies one placement or break attempt. A geometrically "close
// enough" aim can still interact with an unintended face or neighbor voxel;
// only coordinate equality on the action result proves correctness, so the
// classes stay distinct.
type Outcome string

const (
	OutcomeSuccess       Outcome = "success"
	OutcomeWrongFace     Outcome = "wrong-face"     // raycast hit the wrong face, no action sent
	OutcomeMiss          Outcome = "miss"           // raycast hit no block, or the action was rejected
	OutcomeTimeout       Outcome = "timeout"        // no result within the poll budget
	OutcomeWrongLocation Outcome = "wrong-location" // placed, but not at the intended voxel
)

// Placement reports one verified attempt.
type Placement struct {
	Outcome   Outcome       `json:"outcome"`
	Target    [3]int        `json:"target"`
	PlacedAt  [3]int        `json:"placed_at,omitempty"`
	HitID     string        `json:"hit_id,omitempty"`
	HitNormal protocol.Face `json:"hit_normal,omitempty"`
	Aim       Result        `json:"aim"`
}

// Placer aims at a block face, interacts, and cross-checks the asynchronous
// result against the intended voxel.
type Placer struct {
	Link Link
	Conv *Converger

	RequiredFace     protocol.Face
	ResultPollFrames int

	// AllowAnyFace skips the face pre-check; the coordinate match still
	// decides the outcome. Used by side-face fallback paths.
	AllowAnyFace bool
}

// PlaceOnTop places a block at (bx, by, bz) by aiming at the top face of the
// support block underneath it. Three checks run in order: raycast face
// pre-check, action result arrival, exact coordinate match.
func (p *Placer) PlaceOnTop(ctx context.Context, bx, by, bz int) (Placement, error) {
	// Top face center of the support block at by-1.
	aim := mgl64.Vec3{float64(bx) + 0.5, float64(by), float64(bz) + 0.5}
	return p.placeAt(ctx, aim, [3]int{bx, by, bz})
}

// PlaceAt aims at an arbitrary point (typically a face center of a neighbor
// block) and verifies the result lands on target.
func (p *Placer) PlaceAt(ctx context.Context, aim mgl64.Vec3, target [3]int) (Placement, error) {
	return p.placeAt(ctx, aim, target)
}

func (p *Placer) placeAt(ctx context.Context, aim mgl64.Vec3, target [3]int) (Placement, error) {
	pl := Placement{Target: target}

	conv, err := p.Conv.LookAt(ctx, aim)
	if err != nil {
		return pl, err
	}
	pl.Aim = conv

	ray := p.Link.State().Raycast
	pl.HitID = ray.HitID
	pl.HitNormal = ray.HitNormal

	if ray.HitType != protocol.HitBlock {
		pl.Outcome = OutcomeMiss
		return pl, nil
	}
	if !p.AllowAnyFace && ray.HitNormal != p.RequiredFace {
		pl.Outcome = OutcomeWrongFace
		return pl, nil
	}

	res, err := p.awaitResult(ctx, protocol.Use(), p.ResultPollFrames)
	if err != nil {
		return pl, err
	}
	switch {
	case res == nil:
		pl.Outcome = OutcomeTimeout
	case !res.Success:
		pl.Outcome = OutcomeMiss
	case res.Pos != target:
		pl.Outcome = OutcomeWrongLocation
		pl.PlacedAt = res.Pos
	default:
		pl.Outcome = OutcomeSuccess
		pl.PlacedAt = res.Pos
	}
	return pl, nil
}

// BreakAt breaks the block at (bx, by, bz), aiming at its center. Face does
// not matter for breaking, only the coordinate match.
func (p *Placer) BreakAt(ctx context.Context, bx, by, bz int) (Placement, error) {
	pl := Placement{Target: [3]int{bx, by, bz}}

	aim := mgl64.Vec3{float64(bx) + 0.5, float64(by) + 0.5, float64(bz) + 0.5}
	conv, err := p.Conv.LookAt(ctx, aim)
	if err != nil {
		return pl, err
	}
	pl.Aim = conv

	ray := p.Link.State().Raycast
	pl.HitID = ray.HitID
	pl.HitNormal = ray.HitNormal
	if ray.HitType != protocol.HitBlock {
		pl.Outcome = OutcomeMiss
		return pl, nil
	}

	res, err := p.awaitResult(ctx, protocol.Attack(), p.ResultPollFrames)
	if err != nil {
		return pl, err
	}
	switch {
	case res == nil:
		pl.Outcome = OutcomeTimeout
	case !res.Success:
		pl.Outcome = OutcomeMiss
	case res.Pos != pl.Target:
		pl.Outcome = OutcomeWrongLocation
		pl.PlacedAt = res.Pos
	default:
		pl.Outcome = OutcomeSuccess
		pl.PlacedAt = res.Pos
	}
	return pl, nil
}

// awaitResult sends the action and polls frames until a non-null
// last_action_result shows up. The result is correlated by arrival; the
// channel carries no request ids. Exhausting the budget returns nil, a soft
// timeout.
func (p *Placer) awaitResult(ctx context.Context, action any, frames int) (*protocol.ActionResult, error) {
	if err := p.Link.Send(ctx, action); err != nil {
		return nil, err
	}
	for i := 0; i < frames; i++ {
		if err := p.Link.Step(ctx); err != nil {
			return nil, err
		}
		if r := p.Link.State().LastActionResult; r != nil {
			return r, nil
		}
	}
	return nil, nil
}

// PillarUp gains height: jump, look straight down at the peak, place below
// the feet, land on the new block. Used when the eye sits below a required
// TOP face. Returns how many of the n blocks were confirmed placed.
func (p *Placer) PillarUp(ctx context.Context, n int) (int, error) {
	placed := 0
	for i := 0; i < n; i++ {
		res, err := p.placeBelow(ctx)
		if err != nil {
			return placed, err
		}
		if res != nil && res.Success {
			placed++
		}
	}
	return placed, nil
}

func (p *Placer) placeBelow(ctx context.Context) (*protocol.ActionResult, error) {
	if err := p.Link.Send(ctx, protocol.Jump()); err != nil {
		return nil, err
	}
	// Reach the jump peak before looking down.
	if err := StepN(ctx, p.Link, 4); err != nil {
		return nil, err
	}
	pitch := p.Link.State().Pose.Pitch
	if err := p.Link.Send(ctx, protocol.Look(0, -geom.PitchLimit-pitch)); err != nil {
		return nil, err
	}
	if err := p.Link.Step(ctx); err != nil {
		return nil, err
	}
	res, err := p.awaitResult(ctx, protocol.Use(), p.ResultPollFrames)
	if err != nil {
		return nil, err
	}
	// Land.
	if err := StepN(ctx, p.Link, 6); err != nil {
		return nil, err
	}
	return res, nil
}

// BreakBelow looks straight down and breaks the block underfoot when it
// matches blockID. Used to clean up temporary pillars.
func (p *Placer) BreakBelow(ctx context.Context, blockID string) (bool, error) {
	pitch := p.Link.State().Pose.Pitch
	if err := p.Link.Send(ctx, protocol.Look(0, -geom.PitchLimit-pitch)); err != nil {
		return false, err
	}
	if err := StepN(ctx, p.Link, 2); err != nil {
		return false, err
	}
	ray := p.Link.State().Raycast
	if ray.HitType != protocol.HitBlock || ray.HitID != blockID {
		return false, nil
	}
	res, err := p.awaitResult(ctx, protocol.Attack(), p.ResultPollFrames)
	if err != nil {
		return false, err
	}
	if res == nil || !res.Success {
		return false, nil
	}
	// Fall onto the block below.
	if err := StepN(ctx, p.Link, 5); err != nil {
		return false, err
	}
	return true, nil
}
