// Package tuning loads controller thresholds from yaml, with compiled-in
// defaults. Variant thresholds that used to be separate scripts are plain
// parameters here.
package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"voxelpilot.ai/internal/pilot"
)

type Tuning struct {
	TickMs int `yaml:"tick_ms"`

	Aim   Aim   `yaml:"aim"`
	Nav   Nav   `yaml:"nav"`
	Place Place `yaml:"place"`
}

type Aim struct {
	ToleranceDeg float64 `yaml:"tolerance_deg"`
	MaxAttempts  int     `yaml:"max_attempts"`
	SettleTicks  int     `yaml:"settle_ticks"`
}

type Nav struct {
	HeadingToleranceDeg float64 `yaml:"heading_tolerance_deg"`
	ArriveTolerance     float64 `yaml:"arrive_tolerance"`
	MaxCorrections      int     `yaml:"max_corrections"`
	StuckThreshold      float64 `yaml:"stuck_threshold"`
	StuckLimit          int     `yaml:"stuck_limit"`
	JumpLimit           int     `yaml:"jump_limit"`
}

type Place struct {
	ResultPollFrames int `yaml:"result_poll_frames"`
}

func Default() Tuning {
	c := pilot.DefaultConfig()
	return Tuning{
		TickMs: c.TickMs,
		Aim: Aim{
			ToleranceDeg: c.AimTolerance,
			MaxAttempts:  c.AimMaxAttempts,
			SettleTicks:  c.AimSettleTicks,
		},
		Nav: Nav{
			HeadingToleranceDeg: c.HeadingTolerance,
			ArriveTolerance:     1.0,
			MaxCorrections:      c.MaxCorrections,
			StuckThreshold:      c.StuckThreshold,
			StuckLimit:          c.StuckLimit,
			JumpLimit:           c.JumpLimit,
		},
		Place: Place{
			ResultPollFrames: c.ResultPollFrames,
		},
	}
}

// Load reads path over the defaults; absent keys keep their default value.
func Load(path string) (Tuning, error) {
	t := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

// Pilot maps the tuning onto a controller config.
func (t Tuning) Pilot() pilot.Config {
	return pilot.Config{
		TickMs:           t.TickMs,
		AimTolerance:     t.Aim.ToleranceDeg,
		AimMaxAttempts:   t.Aim.MaxAttempts,
		AimSettleTicks:   t.Aim.SettleTicks,
		HeadingTolerance: t.Nav.HeadingToleranceDeg,
		MaxCorrections:   t.Nav.MaxCorrections,
		StuckThreshold:   t.Nav.StuckThreshold,
		StuckLimit:       t.Nav.StuckLimit,
		JumpLimit:        t.Nav.JumpLimit,
		ResultPollFrames: t.Place.ResultPollFrames,
	}
}
