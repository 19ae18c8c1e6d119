package steer

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// angleDeg returns the angle between two vectors in degrees, or -1 when
// either vector is (near) zero length and the angle is undefined.
func angleDeg(a, b r3.Vec) float64 {
	if r3.Norm(a) < Epsilon || r3.Norm(b) < Epsilon {
		return -1
	}
	c := r3.Cos(a, b)
	if c > 1 {
		c = 1
	} else if c < -1 {
		c = -1
	}
	return math.Acos(c) * 180 / math.Pi
}

// Similarity weighs how strongly a receptor agrees with a desired
// direction. The structure's direction must already be expressed in the
// same frame as direction (the evaluation loop transforms it to world
// space). Receptors whose angular distance exceeds the structure's
// sensitivity plus the offset contribute nothing; within the threshold the
// angle is normalized through the given mapping kind.
func Similarity(kind MappingKind, structure Structure, direction r3.Vec, sensitivityOffset float64) float64 {
	threshold := structure.Sensitivity + sensitivityOffset
	if threshold <= Epsilon {
		return 0
	}
	angle := angleDeg(direction, structure.Direction)
	if angle < 0 || angle > threshold {
		return 0
	}
	return Map(kind, 0, threshold, angle)
}
