package game

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Crosshair holds the constants used to pick the candidate a viewer is looking at. The defaults are
// returned by DefaultCrosshair.
type Crosshair struct {
	// MinDistance and MaxDistance bound the distance between the eye of the viewer and a candidate.
	MinDistance, MaxDistance float64
	// MinDot is the exclusive lower bound of the dot product between the view vector and the direction to a
	// candidate. 0.9 is a cone of roughly 25 degrees.
	MinDot float64
	// EyeHeight is added to the feet position of the viewer.
	EyeHeight float64
	// TargetHeight is added to the feet position of every candidate, aiming at the body rather than the feet.
	TargetHeight float64
}

// DefaultCrosshair returns the crosshair constants used for players targeting proxies.
func DefaultCrosshair() Crosshair {
	return Crosshair{
		MinDistance:  0.1,
		MaxDistance:  32,
		MinDot:       0.9,
		EyeHeight:    1.62,
		TargetHeight: 0.9,
	}
}

// Pick returns the index of the candidate the viewer at feet position pos with the yaw and pitch passed is
// looking at. Candidates are feet positions. Among the candidates inside the cone the one closest to the
// centre wins, and ties keep the first candidate. False is returned if no candidate qualifies.
func (c Crosshair) Pick(pos mgl64.Vec3, yaw, pitch float32, candidates []mgl64.Vec3) (int, bool) {
	look := DirectionVector(float64(yaw), float64(pitch))
	eye := pos.Add(mgl64.Vec3{0, c.EyeHeight})

	best, bestDot := -1, math.Inf(-1)
	for i, candidate := range candidates {
		delta := candidate.Add(mgl64.Vec3{0, c.TargetHeight}).Sub(eye)
		dist := delta.Len()
		if dist < c.MinDistance || dist > c.MaxDistance {
			continue
		}

		dot := look.Dot(delta.Mul(1 / dist))
		if dot > c.MinDot && dot > bestDot {
			best, bestDot = i, dot
		}
	}
	return best, best != -1
}
