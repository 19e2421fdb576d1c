// Builder drives a verified build: a 3×3 wall or a hut shell, placed block
// by block with per-placement verification and a final raycast scan.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"

	"voxelpilot.ai/internal/build"
	"voxelpilot.ai/internal/client"
	"voxelpilot.ai/internal/geom"
	logrec "voxelpilot.ai/internal/persistence/log"
	"voxelpilot.ai/internal/persistence/reportdb"
	"voxelpilot.ai/internal/pilot"
	"voxelpilot.ai/internal/tuning"
)

func main() {
	var (
		url     = flag.String("url", "ws://localhost:25566", "agent channel url")
		tunPath = flag.String("tuning", "", "tuning yaml (optional)")
		dbPath  = flag.String("db", "", "report sqlite path (optional)")
		recDir  = flag.String("record", "", "session log directory (optional)")
		plan    = flag.String("plan", "wall", "wall or hut")
		item    = flag.String("item", "stone", "hotbar item to place")
		dx      = flag.Int("dx", 3, "structure offset east of the start pose")
		dz      = flag.Int("dz", 0, "structure offset south of the start pose")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[builder] ", log.LstdFlags|log.Lmicroseconds)

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

	if *recDir != "" {
		rec := logrec.NewRecorder(*recDir, "builder")
		defer rec.Close()
		sess.SetRecorder(rec)
	}

	var db *reportdb.DB
	var runID string
	if *dbPath != "" {
		if db, err = reportdb.Open(*dbPath); err != nil {
			logger.Fatalf("reportdb: %v", err)
		}
		defer db.Close()
		runID = db.StartRun("builder-" + *plan)
	}

	p := pilot.New(sess, tun.Pilot())
	b := &build.Builder{Pilot: p, Log: logger}

	start := p.Link.State().Pose
	bx, bz := int(start.X)+*dx, int(start.Z)+*dz

	var rep build.Report
	switch *plan {
	case "wall":
		rep, err = b.BuildWall(ctx, *item, bx, bz)
	case "hut":
		rep, err = b.BuildHut(ctx, *item, bx, bz)
	default:
		logger.Fatalf("unknown plan %q", *plan)
	}
	if err != nil {
		logger.Fatalf("build %s: %v", *plan, err)
	}

	logger.Printf("%s: placed %d/%d (%.0f%%), wrong-face=%d miss=%d timeout=%d wrong-location=%d verified=%d",
		rep.Plan, rep.Placed, rep.Planned, 100*rep.SuccessRate(),
		rep.WrongFace, rep.Miss, rep.Timeout, rep.WrongLocation, rep.Verified)

	end := p.Link.State().Pose
	logger.Printf("finished at (%.1f, %.1f), %.1f from start",
		end.X, end.Z, geom.DistXZ(start.X, start.Z, end.X, end.Z))

	if db != nil {
		for _, pl := range rep.Placements {
			db.AddPlacement(runID, pl)
		}
		db.FinishRun(runID, rep)
		db.Flush()
	}
}
