package game

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
)

// DirectionVector returns a unit direction vector from the given yaw and pitch values, in degrees.
func DirectionVector(yaw, pitch float64) mgl64.Vec3 {
	return cube.Rotation{yaw, pitch}.Vec3()
}

// NormalizeAngle wraps an angle in degrees into the range [0, 360).
func NormalizeAngle(deg float32) float32 {
	deg = math32.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg -= 360
	}
	return deg
}

// AngleByte converts an angle in degrees to the 1/256th of a turn encoding used on the wire.
func AngleByte(deg float32) byte {
	return byte(math32.Floor(NormalizeAngle(deg) * 256 / 360))
}

// LookAt returns the yaw and pitch an entity standing at from needs to face the position to. Both positions
// are feet positions: the eye height offsets of the source and the target cancel out.
func LookAt(from, to mgl64.Vec3) (yaw, pitch float32) {
	d := to.Sub(from)
	horizontal := math.Sqrt(d.X()*d.X() + d.Z()*d.Z())

	yaw = float32(mgl64.RadToDeg(math.Atan2(-d.X(), d.Z())))
	pitch = float32(mgl64.RadToDeg(math.Atan2(-d.Y(), horizontal)))
	return yaw, pitch
}

// HorizontalDistSqr returns the squared horizontal distance between two positions.
func HorizontalDistSqr(a, b mgl64.Vec3) float64 {
	dx, dz := b.X()-a.X(), b.Z()-a.Z()
	return dx*dx + dz*dz
}
