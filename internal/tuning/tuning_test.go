package tuning_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxelpilot.ai/internal/tuning"
)

func TestDefault(t *testing.T) {
	tun := tuning.Default()

	assert.Equal(t, 50, tun.TickMs)
	assert.Equal(t, 0.5, tun.Aim.ToleranceDeg)
	assert.Equal(t, 8, tun.Aim.MaxAttempts)
	assert.Equal(t, 1.0, tun.Nav.ArriveTolerance)
	assert.Equal(t, 10, tun.Place.ResultPollFrames)
}

func TestLoad_OverridesSelectively(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
tick_ms: 100
aim:
  tolerance_deg: 0.25
nav:
  stuck_limit: 4
`), 0o644))

	tun, err := tuning.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 100, tun.TickMs)
	assert.Equal(t, 0.25, tun.Aim.ToleranceDeg)
	assert.Equal(t, 4, tun.Nav.StuckLimit)

	// Untouched keys keep the defaults.
	assert.Equal(t, 8, tun.Aim.MaxAttempts)
	assert.Equal(t, 1.5, tun.Nav.HeadingToleranceDeg)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := tuning.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestPilotMapping(t *testing.T) {
	tun := tuning.Default()
	tun.Aim.ToleranceDeg = 0.3
	tun.Nav.MaxCorrections = 40

	cfg := tun.Pilot()
	assert.Equal(t, 0.3, cfg.AimTolerance)
	assert.Equal(t, 40, cfg.MaxCorrections)
	assert.Equal(t, tun.TickMs, cfg.TickMs)
}
