// Package reportdb persists controller run reports (aim traces, navigation
// legs, placements) in an embedded sqlite database. Writes go through a
// single writer goroutine so call sites never block on disk.
package reportdb

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"voxelpilot.ai/internal/pilot"
)

type DB struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type reqKind int

const (
	reqRun reqKind = iota + 1
	reqFinish
	reqNavLeg
	reqPlacement
)

type req struct {
	kind reqKind

	run       runRow
	finish    finishRow
	navLeg    navLegRow
	placement placementRow

	flush chan struct{}
}

type runRow struct {
	ID        string
	Kind      string
	StartedAt string
}

type finishRow struct {
	ID         string
	FinishedAt string
	Summary    string
}

type navLegRow struct {
	RunID   string
	Leg     int
	TargetX float64
	TargetZ float64
	Result  pilot.NavResult
}

type placementRow struct {
	RunID  string
	Target [3]int
	P      pilot.Placement
}

func Open(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	d := &DB{
		db: db,
		ch: make(chan req, 4096),
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.loop()
	}()
	return d, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			summary TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS nav_legs (
			run_id TEXT NOT NULL,
			leg INTEGER NOT NULL,
			target_x REAL NOT NULL,
			target_z REAL NOT NULL,
			arrived INTEGER NOT NULL,
			final_error REAL NOT NULL,
			corrections INTEGER NOT NULL,
			jumps INTEGER NOT NULL,
			path_length REAL NOT NULL,
			efficiency REAL NOT NULL,
			PRIMARY KEY (run_id, leg)
		);`,
		`CREATE TABLE IF NOT EXISTS placements (
			run_id TEXT NOT NULL,
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			z INTEGER NOT NULL,
			outcome TEXT NOT NULL,
			aim_attempts INTEGER NOT NULL,
			aim_residual REAL NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_placements_run ON placements(run_id);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (d *DB) Close() error {
	var err error
	d.once.Do(func() {
		d.closed.Store(true)
		close(d.ch)
		d.wg.Wait()
		err = d.db.Close()
	})
	return err
}

// StartRun registers a new run and returns its id.
func (d *DB) StartRun(kind string) string {
	id := uuid.NewString()
	if d == nil || d.closed.Load() {
		return id
	}
	d.ch <- req{kind: reqRun, run: runRow{
		ID:        id,
		Kind:      kind,
		StartedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}}
	return id
}

// FinishRun stores the end time and a JSON summary.
func (d *DB) FinishRun(id string, summary any) {
	if d == nil || d.closed.Load() {
		return
	}
	b, err := json.Marshal(summary)
	if err != nil {
		b = []byte("{}")
	}
	d.ch <- req{kind: reqFinish, finish: finishRow{
		ID:         id,
		FinishedAt: time.Now().UTC().Format(time.RFC3339Nano),
		Summary:    string(b),
	}}
}

func (d *DB) AddNavLeg(runID string, leg int, tx, tz float64, r pilot.NavResult) {
	if d == nil || d.closed.Load() {
		return
	}
	d.ch <- req{kind: reqNavLeg, navLeg: navLegRow{RunID: runID, Leg: leg, TargetX: tx, TargetZ: tz, Result: r}}
}

func (d *DB) AddPlacement(runID string, p pilot.Placement) {
	if d == nil || d.closed.Load() {
		return
	}
	d.ch <- req{kind: reqPlacement, placement: placementRow{RunID: runID, Target: p.Target, P: p}}
}

// Flush blocks until every queued write reached sqlite.
func (d *DB) Flush() {
	if d == nil || d.closed.Load() {
		return
	}
	done := make(chan struct{})
	d.ch <- req{flush: done}
	<-done
}

func (d *DB) loop() {
	for r := range d.ch {
		if r.flush != nil {
			close(r.flush)
			continue
		}
		switch r.kind {
		case reqRun:
			_, _ = d.db.Exec(
				`INSERT OR REPLACE INTO runs(id, kind, started_at) VALUES(?,?,?)`,
				r.run.ID, r.run.Kind, r.run.StartedAt)
		case reqFinish:
			_, _ = d.db.Exec(
				`UPDATE runs SET finished_at=?, summary=? WHERE id=?`,
				r.finish.FinishedAt, r.finish.Summary, r.finish.ID)
		case reqNavLeg:
			nr := r.navLeg.Result
			arrived := 0
			if nr.Arrived {
				arrived = 1
			}
			_, _ = d.db.Exec(
				`INSERT OR REPLACE INTO nav_legs(run_id, leg, target_x, target_z, arrived, final_error, corrections, jumps, path_length, efficiency)
				 VALUES(?,?,?,?,?,?,?,?,?,?)`,
				r.navLeg.RunID, r.navLeg.Leg, r.navLeg.TargetX, r.navLeg.TargetZ,
				arrived, nr.FinalError, nr.Corrections, nr.Jumps, nr.PathLength, nr.Efficiency)
		case reqPlacement:
			p := r.placement.P
			_, _ = d.db.Exec(
				`INSERT INTO placements(run_id, x, y, z, outcome, aim_attempts, aim_residual)
				 VALUES(?,?,?,?,?,?,?)`,
				r.placement.RunID, p.Target[0], p.Target[1], p.Target[2],
				string(p.Outcome), p.Aim.Attempts, p.Aim.Residual)
		}
	}
}

// CountPlacements reports per-outcome counts for a run.
func (d *DB) CountPlacements(runID string) (map[string]int, error) {
	rows, err := d.db.Query(`SELECT outcome, COUNT(*) FROM placements WHERE run_id=? GROUP BY outcome`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, err
		}
		out[outcome] = n
	}
	return out, rows.Err()
}

// RunSummary returns the stored summary JSON for a run, or "" if unfinished.
func (d *DB) RunSummary(id string) (string, error) {
	var s sql.NullString
	err := d.db.QueryRow(`SELECT summary FROM runs WHERE id=?`, id).Scan(&s)
	if err != nil {
		return "", err
	}
	return s.String, nil
}
