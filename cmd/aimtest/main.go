// Aim accuracy suite: single-shot look-at residuals and closed-loop
// convergence traces against a live simulation.
package main

import (
	"context"
	"flag"
	"log"
	"math"
	"os"
	"os/signal"

	"github.com/go-gl/mathgl/mgl64"

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

	logger := log.New(os.Stdout, "[aimtest] ", log.LstdFlags|log.Lmicroseconds)

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
		runID = db.StartRun("aimtest")
	}

	p := pilot.New(sess, tun.Pilot())

	singleShot(ctx, logger, p)
	converged, total := convergence(ctx, logger, p)

	logger.Printf("convergence: %d/%d targets", converged, total)
	if db != nil {
		db.FinishRun(runID, map[string]any{"converged": converged, "targets": total})
		db.Flush()
	}
}

// singleShot sends one correction per target and reports the residual the
// next frames show.
func singleShot(ctx context.Context, logger *log.Logger, p *pilot.Pilot) {
	st := p.Link.State()
	gy := geom.GroundY(st.Pose.Y)
	cx, cz := int(st.Pose.X), int(st.Pose.Z)

	offsets := [][2]int{{1, 0}, {3, 0}, {5, 0}, {2, 2}, {0, 3}, {-2, 0}, {0, -3}, {5, 5}}
	for _, off := range offsets {
		target := mgl64.Vec3{
			float64(cx+off[0]) + 0.5,
			float64(gy) + 1.0, // top face of the ground block
			float64(cz+off[1]) + 0.5,
		}

		pose := p.Link.State().Pose
		eye := mgl64.Vec3{pose.X, pose.Y, pose.Z}
		dyaw, dpitch := geom.LookDelta(eye, pose.Yaw, pose.Pitch, target)
		if err := p.Link.Send(ctx, protocol.Look(dyaw, dpitch)); err != nil {
			logger.Fatalf("send: %v", err)
		}
		if err := pilot.StepN(ctx, p.Link, 3); err != nil {
			logger.Fatalf("step: %v", err)
		}

		pose = p.Link.State().Pose
		eye = mgl64.Vec3{pose.X, pose.Y, pose.Z}
		ry, rp := geom.LookDelta(eye, pose.Yaw, pose.Pitch, target)
		ray := p.Link.State().Raycast
		logger.Printf("single-shot (%+d,%+d): residual=%.3f° hit=%s/%s face=%s",
			off[0], off[1], math.Hypot(ry, rp), ray.HitType, ray.HitID, ray.HitNormal)
	}
}

// convergence runs the full closed loop from a deliberately wrong start
// orientation and prints each trace.
func convergence(ctx context.Context, logger *log.Logger, p *pilot.Pilot) (converged, total int) {
	st := p.Link.State()
	gy := geom.GroundY(st.Pose.Y)
	cx, cz := int(st.Pose.X), int(st.Pose.Z)

	targets := []mgl64.Vec3{
		{float64(cx+3) + 0.5, float64(gy) + 1.0, float64(cz) + 0.5},
		{float64(cx+5) + 0.5, float64(gy) + 1.0, float64(cz+5) + 0.5},
		{float64(cx+1) + 0.5, float64(gy+2) + 1.0, float64(cz) + 0.5},
		{float64(cx) + 0.5, float64(gy) + 1.0, float64(cz+7) + 0.5},
	}

	for _, target := range targets {
		total++
		// Start from a skewed orientation so the loop has work to do.
		if _, _, err := p.Conv.FaceYaw(ctx, 45, 1); err != nil {
			logger.Fatalf("reset look: %v", err)
		}

		res, err := p.Conv.LookAt(ctx, target)
		if err != nil {
			logger.Fatalf("look at: %v", err)
		}
		if res.Converged {
			converged++
		}
		logger.Printf("target %v: converged=%v attempts=%d residual=%.4f°",
			target, res.Converged, res.Attempts, res.Residual)
		for _, tr := range res.Trace {
			logger.Printf("  iter %d: %.2f° -> %.4f°", tr.Attempt, tr.ResidualBefore, tr.ResidualAfter)
		}
	}
	return converged, total
}
