// Package geom holds the camera geometry shared by every controller: look
// deltas, angle normalization and bearings.
//
// Camera convention (matches the simulation's camera):
//
//	yaw 0° looks along +X, positive yaw turns toward +Z
//	pitch positive looks up
//	front = (cos(pitch)·cos(yaw), sin(pitch), cos(pitch)·sin(yaw))
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// PitchLimit mirrors the simulation's own clamp; targets beyond ±89°
	// elevation are unreachable.
	PitchLimit = 89.0

	// EyeHeight is the camera offset above the block the agent stands on.
	EyeHeight = 1.62

	// Below this horizontal distance the azimuth to a target is undefined.
	minHorizontal = 0.001
)

// NormalizeDeg wraps an angle into (-180, 180].
func NormalizeDeg(a float64) float64 {
	for a > 180 {
		a -= 360
	}
	for a <= -180 {
		a += 360
	}
	return a
}

// LookDelta returns the minimal (dyaw, dpitch) that, applied to the current
// orientation, points the camera from eye at target. A target directly
// above/below keeps the current heading instead of spinning. A target
// coinciding with the eye is a caller precondition violation.
func LookDelta(eye mgl64.Vec3, yaw, pitch float64, target mgl64.Vec3) (dyaw, dpitch float64) {
	d := target.Sub(eye)
	horizontal := math.Hypot(d.X(), d.Z())

	var targetYaw, targetPitch float64
	if horizontal < minHorizontal {
		targetYaw = yaw
		if d.Y() > 0 {
			targetPitch = PitchLimit
		} else {
			targetPitch = -PitchLimit
		}
	} else {
		targetYaw = deg(math.Atan2(d.Z(), d.X()))
		targetPitch = deg(math.Atan2(d.Y(), horizontal))
	}
	targetPitch = Clamp(targetPitch, -PitchLimit, PitchLimit)

	return NormalizeDeg(targetYaw - yaw), targetPitch - pitch
}

// Direction returns the unit front vector for the given orientation.
func Direction(yaw, pitch float64) mgl64.Vec3 {
	yr := rad(yaw)
	pr := rad(pitch)
	cp := math.Cos(pr)
	return mgl64.Vec3{cp * math.Cos(yr), math.Sin(pr), cp * math.Sin(yr)}
}

// Bearing is the absolute yaw that faces (tx, tz) from (cx, cz).
func Bearing(cx, cz, tx, tz float64) float64 {
	return deg(math.Atan2(tz-cz, tx-cx))
}

// DistXZ is the horizontal distance between two points.
func DistXZ(x1, z1, x2, z2 float64) float64 {
	return math.Hypot(x2-x1, z2-z1)
}

// Dist3 is the full 3D distance between two points.
func Dist3(a, b mgl64.Vec3) float64 {
	return a.Sub(b).Len()
}

// GroundY derives the Y of the block the agent stands on from its eye height.
func GroundY(eyeY float64) int {
	return int(math.Floor(eyeY - EyeHeight))
}

// Clamp bounds v into [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	return math.Min(v, hi)
}

func deg(r float64) float64 { return r * 180 / math.Pi }
func rad(d float64) float64 { return d * math.Pi / 180 }
