package steer

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Plane selects the 2D projection applied to positions and velocities
// before steering math. Worlds with a ground plane project so that height
// differences do not affect steering; PlaneNone keeps all three axes.
type Plane uint8

const (
	PlaneNone Plane = iota
	PlaneXY
	PlaneXZ
	PlaneYZ
)

var planeNames = [...]string{
	PlaneNone: "none",
	PlaneXY:   "xy",
	PlaneXZ:   "xz",
	PlaneYZ:   "yz",
}

func (pl Plane) String() string {
	if int(pl) < len(planeNames) {
		return planeNames[pl]
	}
	return fmt.Sprintf("plane(%d)", uint8(pl))
}

// ParsePlane resolves the YAML/CLI name of a projection plane.
func ParsePlane(name string) (Plane, error) {
	for p, n := range planeNames {
		if n == name {
			return Plane(p), nil
		}
	}
	return PlaneNone, fmt.Errorf("steer: unknown plane %q", name)
}

// Project drops the axis orthogonal to the plane.
func (pl Plane) Project(v r3.Vec) r3.Vec {
	switch pl {
	case PlaneXY:
		v.Z = 0
	case PlaneXZ:
		v.Y = 0
	case PlaneYZ:
		v.X = 0
	}
	return v
}

// Forward returns the reference forward axis for orientations expressed in
// this plane: +Y for the XY screen plane, +Z otherwise.
func (pl Plane) Forward() r3.Vec {
	if pl == PlaneXY {
		return r3.Vec{Y: 1}
	}
	return r3.Vec{Z: 1}
}

// projectPercept applies the projection to a percept's spatial fields.
func (pl Plane) projectPercept(p Percept) Percept {
	p.Position = pl.Project(p.Position)
	p.Velocity = pl.Project(p.Velocity)
	return p
}
