package entity

import "github.com/go-gl/mathgl/mgl64"

// Location represents the location of a proxy in the world.
type Location struct {
	X, Y, Z    float64
	Yaw, Pitch float32
}

// LocationOf returns a Location at the position passed with the yaw and pitch passed.
func LocationOf(pos mgl64.Vec3, yaw, pitch float32) Location {
	return Location{X: pos.X(), Y: pos.Y(), Z: pos.Z(), Yaw: yaw, Pitch: pitch}
}

// Position returns the feet position of the location.
func (l Location) Position() mgl64.Vec3 {
	return mgl64.Vec3{l.X, l.Y, l.Z}
}
