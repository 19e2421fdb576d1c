package pilot

import "voxelpilot.ai/internal/protocol"

// Config bundles every controller threshold. Zero values fall back to the
// defaults below, so callers can override selectively.
type Config struct {
	TickMs int // duration of one simulation tick

	// Aim convergence.
	AimTolerance   float64 // per-component residual, degrees
	AimMaxAttempts int
	AimSettleTicks int // frames to wait after a look before re-measuring

	// Navigation.
	HeadingTolerance float64 // coarse yaw alignment, degrees
	MaxCorrections   int     // global align/burst cycle cap
	StuckThreshold   float64 // displacement below this counts as no motion
	StuckLimit       int     // consecutive no-motion bursts before jumping
	JumpLimit        int     // jump recoveries before the strafe escalation

	// Placement.
	ResultPollFrames int // frames to wait for a last_action_result
}

func DefaultConfig() Config {
	return Config{
		TickMs:           50,
		AimTolerance:     0.5,
		AimMaxAttempts:   8,
		AimSettleTicks:   2,
		HeadingTolerance: 1.5,
		MaxCorrections:   25,
		StuckThreshold:   0.25,
		StuckLimit:       2,
		JumpLimit:        3,
		ResultPollFrames: 10,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TickMs <= 0 {
		c.TickMs = d.TickMs
	}
	if c.AimTolerance <= 0 {
		c.AimTolerance = d.AimTolerance
	}
	if c.AimMaxAttempts <= 0 {
		c.AimMaxAttempts = d.AimMaxAttempts
	}
	if c.AimSettleTicks <= 0 {
		c.AimSettleTicks = d.AimSettleTicks
	}
	if c.HeadingTolerance <= 0 {
		c.HeadingTolerance = d.HeadingTolerance
	}
	if c.MaxCorrections <= 0 {
		c.MaxCorrections = d.MaxCorrections
	}
	if c.StuckThreshold <= 0 {
		c.StuckThreshold = d.StuckThreshold
	}
	if c.StuckLimit <= 0 {
		c.StuckLimit = d.StuckLimit
	}
	if c.JumpLimit <= 0 {
		c.JumpLimit = d.JumpLimit
	}
	if c.ResultPollFrames <= 0 {
		c.ResultPollFrames = d.ResultPollFrames
	}
	return c
}

// Pilot wires the three controllers over one link.
type Pilot struct {
	Link   Link
	Conv   *Converger
	Nav    *Navigator
	Placer *Placer
}

func New(link Link, cfg Config) *Pilot {
	cfg = cfg.withDefaults()
	conv := &Converger{
		Link:        link,
		Tolerance:   cfg.AimTolerance,
		MaxAttempts: cfg.AimMaxAttempts,
		SettleTicks: cfg.AimSettleTicks,
	}
	nav := &Navigator{
		Link:             link,
		Conv:             conv,
		TickMs:           cfg.TickMs,
		HeadingTolerance: cfg.HeadingTolerance,
		MaxCorrections:   cfg.MaxCorrections,
		StuckThreshold:   cfg.StuckThreshold,
		StuckLimit:       cfg.StuckLimit,
		JumpLimit:        cfg.JumpLimit,
	}
	placer := &Placer{
		Link:             link,
		Conv:             conv,
		RequiredFace:     protocol.FaceTop,
		ResultPollFrames: cfg.ResultPollFrames,
	}
	return &Pilot{Link: link, Conv: conv, Nav: nav, Placer: placer}
}
