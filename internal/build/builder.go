package build

import (
	"context"
	"fmt"
	"log"

	"github.com/go-gl/mathgl/mgl64"

	"voxelpilot.ai/internal/geom"
	"voxelpilot.ai/internal/pilot"
	"voxelpilot.ai/internal/protocol"
)

// Report aggregates the outcomes of one build.
type Report struct {
	Plan    string `json:"plan"`
	Planned int    `json:"planned"`

	Placed        int `json:"placed"`
	WrongFace     int `json:"wrong_face"`
	Miss          int `json:"miss"`
	Timeout       int `json:"timeout"`
	WrongLocation int `json:"wrong_location"`

	Verified int `json:"verified"`

	Placements []pilot.Placement `json:"placements,omitempty"`
}

func (r *Report) add(p pilot.Placement) {
	r.Placements = append(r.Placements, p)
	switch p.Outcome {
	case pilot.OutcomeSuccess:
		r.Placed++
	case pilot.OutcomeWrongFace:
		r.WrongFace++
	case pilot.OutcomeTimeout:
		r.Timeout++
	case pilot.OutcomeWrongLocation:
		r.WrongLocation++
	default:
		r.Miss++
	}
}

// SuccessRate is placed / planned in [0, 1].
func (r Report) SuccessRate() float64 {
	if r.Planned == 0 {
		return 0
	}
	return float64(r.Placed) / float64(r.Planned)
}

// Builder executes plans with the controller core. All placements are
// verified; failures are counted, never fatal.
type Builder struct {
	Pilot *pilot.Pilot
	Log   *log.Logger
}

func (b *Builder) logf(format string, args ...any) {
	if b.Log != nil {
		b.Log.Printf(format, args...)
	}
}

// SelectItem finds item in the hotbar and selects its slot.
func (b *Builder) SelectItem(ctx context.Context, item string) (int, error) {
	slot := -1
	for i, name := range b.Pilot.Link.State().HotbarContents {
		if name == item {
			slot = i
			break
		}
	}
	if slot < 0 {
		return -1, fmt.Errorf("no %q in hotbar", item)
	}
	if err := b.Pilot.Link.Send(ctx, protocol.HotbarSelect(slot)); err != nil {
		return -1, err
	}
	if err := pilot.StepN(ctx, b.Pilot.Link, 2); err != nil {
		return -1, err
	}
	return slot, nil
}

// BuildWall builds a 3×3 wall at x=wx, z0..z0+2, standing west of it. Rows
// within eye reach are placed from a standoff spot; the top row uses the
// pillar technique because the eye would otherwise sit below the TOP face
// and the ray would hit a side face instead. The pillar is broken down
// afterwards.
func (b *Builder) BuildWall(ctx context.Context, item string, wx, z0 int) (Report, error) {
	rep := Report{Plan: "wall", Planned: 9}

	if _, err := b.SelectItem(ctx, item); err != nil {
		return rep, err
	}

	gy := geom.GroundY(b.Pilot.Link.State().Pose.Y)
	plan := WallPlan(item, wx, gy+1, z0)
	b.logf("wall: x=%d z=%d..%d y=%d..%d", wx, z0, z0+2, gy+1, gy+3)

	// Rows 1-2 from 1.5 blocks west of the wall.
	if _, err := b.Pilot.Nav.GoTo(ctx, float64(wx)-1.5, float64(z0)+1.0, 0.5); err != nil {
		return rep, err
	}
	for _, blk := range plan.Blocks[:6] {
		pl, err := b.Pilot.Placer.PlaceOnTop(ctx, blk[0], blk[1], blk[2])
		if err != nil {
			return rep, err
		}
		rep.add(pl)
		b.logf("  (%d,%d,%d): %s", blk[0], blk[1], blk[2], pl.Outcome)
	}

	// Top row: pillar up next to the wall.
	if _, err := b.Pilot.Nav.GoTo(ctx, float64(wx-1)+0.5, float64(z0+1)+0.5, 0.5); err != nil {
		return rep, err
	}
	pillared, err := b.Pilot.Placer.PillarUp(ctx, 2)
	if err != nil {
		return rep, err
	}
	b.logf("  pillared %d blocks", pillared)

	for _, blk := range plan.Blocks[6:] {
		pl, err := b.placeWithFallback(ctx, item, blk[0], blk[1], blk[2])
		if err != nil {
			return rep, err
		}
		rep.add(pl)
		b.logf("  (%d,%d,%d): %s", blk[0], blk[1], blk[2], pl.Outcome)
	}

	// Tear the pillar down again.
	for i := 0; i < pillared; i++ {
		broke, err := b.Pilot.Placer.BreakBelow(ctx, item)
		if err != nil {
			return rep, err
		}
		if !broke {
			break
		}
	}

	// Step back and scan the wall.
	if _, err := b.Pilot.Nav.GoTo(ctx, float64(wx)-4.0, float64(z0)+1.0, 1.0); err != nil {
		return rep, err
	}
	verified, err := b.VerifyScan(ctx, plan)
	if err != nil {
		return rep, err
	}
	rep.Verified = verified
	return rep, nil
}

// placeWithFallback first tries the TOP face; if that is refused it tries
// placing against a side face of an already-placed neighbor in the same row,
// still requiring the coordinate match on the result.
func (b *Builder) placeWithFallback(ctx context.Context, item string, bx, by, bz int) (pilot.Placement, error) {
	pl, err := b.Pilot.Placer.PlaceOnTop(ctx, bx, by, bz)
	if err != nil || pl.Outcome == pilot.OutcomeSuccess {
		return pl, err
	}

	side := *b.Pilot.Placer
	side.AllowAnyFace = true

	for _, nbz := range []int{bz - 1, bz + 1} {
		// The neighbor must already exist.
		probe := mgl64.Vec3{float64(bx) + 0.5, float64(by) + 0.5, float64(nbz) + 0.5}
		if _, err := b.Pilot.Conv.LookAt(ctx, probe); err != nil {
			return pl, err
		}
		ray := b.Pilot.Link.State().Raycast
		if ray.HitType != protocol.HitBlock || ray.HitID != item {
			continue
		}

		// Aim at the neighbor face that borders the gap.
		aimZ := float64(nbz)
		if nbz < bz {
			aimZ = float64(nbz) + 1.0
		}
		aim := mgl64.Vec3{float64(bx) + 0.5, float64(by) + 0.5, aimZ}
		fb, err := side.PlaceAt(ctx, aim, [3]int{bx, by, bz})
		if err != nil {
			return pl, err
		}
		if fb.Outcome == pilot.OutcomeSuccess {
			return fb, nil
		}
	}
	return pl, nil
}

// BuildHut builds a rectangular shell around (cx, cz): 5×5 perimeter walls,
// three layers high, plus a roof slab. Each higher layer is reached by
// pillaring up once. The hut path tolerates non-TOP faces (the shell has
// many valid support faces); the coordinate match still decides success.
func (b *Builder) BuildHut(ctx context.Context, item string, cx, cz int) (Report, error) {
	rep := Report{Plan: "hut"}

	if _, err := b.SelectItem(ctx, item); err != nil {
		return rep, err
	}

	gy := geom.GroundY(b.Pilot.Link.State().Pose.Y)
	plan := HutPlan(item, cx-2, cz-2, cx+2, cz+2, gy+1, 3)
	rep.Planned = len(plan.Blocks)

	relaxed := *b.Pilot.Placer
	relaxed.AllowAnyFace = true

	// Build from the center so every perimeter block is in reach.
	if _, err := b.Pilot.Nav.GoTo(ctx, float64(cx)+0.5, float64(cz)+0.5, 1.5); err != nil {
		return rep, err
	}

	for i, layer := range plan.Layers() {
		if i > 0 {
			// Eye below the next layer's TOP faces; gain a block of height.
			if _, err := b.Pilot.Placer.PillarUp(ctx, 1); err != nil {
				return rep, err
			}
		}
		for _, blk := range layer {
			pl, err := relaxed.PlaceOnTop(ctx, blk[0], blk[1], blk[2])
			if err != nil {
				return rep, err
			}
			rep.add(pl)
		}
		b.logf("hut: layer %d done (%d placed so far)", i+1, rep.Placed)
	}
	return rep, nil
}

// VerifyScan aims at the center of every planned voxel and counts the cells
// whose raycast reports the plan's item. Proof of effect, independent of
// the placement results.
func (b *Builder) VerifyScan(ctx context.Context, plan Plan) (int, error) {
	verified := 0
	for _, blk := range plan.Blocks {
		center := mgl64.Vec3{float64(blk[0]) + 0.5, float64(blk[1]) + 0.5, float64(blk[2]) + 0.5}
		if _, err := b.Pilot.Conv.LookAt(ctx, center); err != nil {
			return verified, err
		}
		ray := b.Pilot.Link.State().Raycast
		if ray.HitType == protocol.HitBlock && ray.HitID == plan.Item {
			verified++
		}
	}
	return verified, nil
}
