package game

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// at returns the feet position of a candidate whose aim point is dist units away from an eye at the origin
// feet position, rotated deg degrees to the left of the +z axis.
func at(c Crosshair, deg, dist float64) mgl64.Vec3 {
	rad := mgl64.DegToRad(deg)
	return mgl64.Vec3{-math.Sin(rad) * dist, c.EyeHeight - c.TargetHeight, math.Cos(rad) * dist}
}

func TestPickDirectOverOffAxis(t *testing.T) {
	c := DefaultCrosshair()
	candidates := []mgl64.Vec3{at(c, 40, 5), at(c, 0, 5)}

	i, ok := c.Pick(mgl64.Vec3{}, 0, 0, candidates)
	if !ok || i != 1 {
		t.Fatalf("expected the direct candidate (1), got %d (ok=%v)", i, ok)
	}
}

func TestPickDistanceBounds(t *testing.T) {
	c := DefaultCrosshair()
	for _, dist := range []float64{0.05, 40} {
		if i, ok := c.Pick(mgl64.Vec3{}, 0, 0, []mgl64.Vec3{at(c, 0, dist)}); ok {
			t.Fatalf("candidate at distance %v must never be picked, got %d", dist, i)
		}
	}
}

func TestPickClosestToCentre(t *testing.T) {
	c := DefaultCrosshair()
	candidates := []mgl64.Vec3{at(c, 15, 6), at(c, 5, 12), at(c, -10, 3)}

	i, ok := c.Pick(mgl64.Vec3{}, 0, 0, candidates)
	if !ok || i != 1 {
		t.Fatalf("expected candidate 1, got %d (ok=%v)", i, ok)
	}
}

func TestPickTieKeepsFirst(t *testing.T) {
	c := DefaultCrosshair()
	candidates := []mgl64.Vec3{at(c, 0, 5), at(c, 0, 5)}

	if i, ok := c.Pick(mgl64.Vec3{}, 0, 0, candidates); !ok || i != 0 {
		t.Fatalf("expected the first of two equal candidates, got %d (ok=%v)", i, ok)
	}
}

func TestPickNone(t *testing.T) {
	c := DefaultCrosshair()
	if _, ok := c.Pick(mgl64.Vec3{}, 180, 0, []mgl64.Vec3{at(c, 0, 5)}); ok {
		t.Fatalf("candidate behind the viewer must not be picked")
	}
	if _, ok := c.Pick(mgl64.Vec3{}, 0, 0, nil); ok {
		t.Fatalf("no candidates must yield no pick")
	}
}
