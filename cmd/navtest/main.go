// Navigation suite: rotation precision at the cardinal headings, a walk
// speed measurement, and a set of closed-loop navigation legs.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"

	"voxelpilot.ai/internal/client"
	"voxelpilot.ai/internal/geom"
	"voxelpilot.ai/internal/persistence/reportdb"
	"voxelpilot.ai/internal/pilot"
	"voxelpilot.ai/internal/protocol"
	"voxelpilot.ai/internal/tuning"
)

func main() {
	var (
		url     = flag.String("url", "ws://localhost:25566", "agent channel url")
		tunPath = flag.String("tuning", "", "tuning yaml (optional)")
		dbPath  = flag.String("db", "", "report sqlite path (optional)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[navtest] ", log.LstdFlags|log.Lmicroseconds)

	tun := tuning.Default()
	if *tunPath != "" {
		var err error
		if tun, err = tuning.Load(*tunPath); err != nil {
			logger.Fatalf("tuning: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sess, err := client.Dial(ctx, *url)
	if err != nil {
		logger.Fatalf("connect: %v", err)
	}
	defer sess.Close()
	logger.Printf("connected, server version %s", sess.Hello().Version)

	var db *reportdb.DB
	var runID string
	if *dbPath != "" {
		if db, err = reportdb.Open(*dbPath); err != nil {
			logger.Fatalf("reportdb: %v", err)
		}
		defer db.Close()
		runID = db.StartRun("navtest")
	}

	p := pilot.New(sess, tun.Pilot())

	rotations(ctx, logger, p)
	walkSpeed(ctx, logger, p)
	arrived, legs := navigation(ctx, logger, p, db, runID)

	logger.Printf("navigation: %d/%d legs arrived", arrived, legs)
	if db != nil {
		db.FinishRun(runID, map[string]any{"arrived": arrived, "legs": legs})
		db.Flush()
	}
}

// rotations faces the four cardinal headings and reports how close the pose
// yaw lands on each.
func rotations(ctx context.Context, logger *log.Logger, p *pilot.Pilot) {
	headings := []struct {
		name string
		yaw  float64
	}{
		{"east (+x)", 0},
		{"south (+z)", 90},
		{"west (-x)", 180},
		{"north (-z)", -90},
	}
	for _, h := range headings {
		steps, finalErr, err := p.Conv.FaceYaw(ctx, h.yaw, 0.5)
		if err != nil {
			logger.Fatalf("face %s: %v", h.name, err)
		}
		logger.Printf("rotate %s: steps=%d error=%.3f°", h.name, steps, finalErr)
	}
}

// walkSpeed runs a straight one second burst and reports blocks per second.
func walkSpeed(ctx context.Context, logger *log.Logger, p *pilot.Pilot) {
	if _, _, err := p.Conv.FaceYaw(ctx, 0, 1); err != nil {
		logger.Fatalf("face east: %v", err)
	}
	before := p.Link.State().Pose

	const durMs = 1000
	if err := p.Link.Send(ctx, protocol.Move(1, 0, durMs)); err != nil {
		logger.Fatalf("move: %v", err)
	}
	frames := durMs/p.Nav.TickMs + 3
	if err := pilot.StepN(ctx, p.Link, frames); err != nil {
		logger.Fatalf("step: %v", err)
	}

	after := p.Link.State().Pose
	moved := geom.DistXZ(before.X, before.Z, after.X, after.Z)
	logger.Printf("walk speed: %.2f blocks/s over %d frames", moved, frames)
}

// navigation drives four legs of increasing difficulty: short cardinal,
// longer cardinal, a diagonal, and a short precision approach.
func navigation(ctx context.Context, logger *log.Logger, p *pilot.Pilot, db *reportdb.DB, runID string) (arrived, legs int) {
	start := p.Link.State().Pose
	targets := []struct {
		name string
		dx   float64
		dz   float64
		tol  float64
	}{
		{"10 north", 0, -10, 1.0},
		{"20 east", 20, 0, 1.0},
		{"30 diagonal", 21, 21, 1.5},
		{"3 east precise", 3, 0, 0.5},
	}

	for i, leg := range targets {
		legs++
		from := p.Link.State().Pose
		tx, tz := start.X+leg.dx, start.Z+leg.dz
		straight := geom.DistXZ(from.X, from.Z, tx, tz)

		res, err := p.Nav.GoTo(ctx, tx, tz, leg.tol)
		if err != nil {
			logger.Fatalf("leg %q: %v", leg.name, err)
		}
		if res.Arrived {
			arrived++
		}
		logger.Printf("leg %q: arrived=%v err=%.2f corrections=%d jumps=%d strafes=%d path=%.1f/%.1f eff=%.2f",
			leg.name, res.Arrived, res.FinalError, res.Corrections, res.Jumps,
			res.Strafes, res.PathLength, straight, res.Efficiency)
		if db != nil {
			db.AddNavLeg(runID, i, tx, tz, res)
		}
	}
	return arrived, legs
}
