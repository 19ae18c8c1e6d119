package steer

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Percept is a per-tick snapshot of one perceived object, or of the agent
// itself. The perception pipeline refreshes percepts before behaviours run;
// behaviours copy them into local scratch and never mutate the source.
type Percept struct {
	Position     r3.Vec
	Rotation     r3.Rotation
	Velocity     r3.Vec
	Active       bool
	Significance float64
}

// IdentityRotation returns the no-op orientation. The zero value of
// r3.Rotation collapses every vector to zero, so percepts and contexts
// should carry this instead when they have no meaningful rotation.
func IdentityRotation() r3.Rotation {
	return r3.Rotation(quat.Number{Real: 1})
}
