package steer

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Structure is a receptor's static geometric profile. It is owned by the
// sensor and immutable for the duration of one evaluation tick.
type Structure struct {
	// Direction is the receptor's unit direction in agent-local space.
	Direction r3.Vec
	// Sensitivity is the angular half-angle threshold in degrees within
	// which the receptor responds to a desired direction.
	Sensitivity float64
	// Magnitude scales every value written through this receptor.
	Magnitude float64
	// Position is the receptor's local offset, used by receptor-relative
	// behaviours.
	Position r3.Vec
}

// Receptor pairs a Structure with the stable identifier used as the grid's
// slot index.
type Receptor struct {
	ID        int
	Structure Structure
}

// Sensor is an ordered receptor set, fixed for the duration of a tick. Each
// agent owns an independent sensor instance when evaluated in parallel.
type Sensor interface {
	ReceptorCount() int
	Receptor(i int) Receptor
}

// FixedSensor is an immutable Sensor over a receptor slice.
type FixedSensor struct {
	receptors []Receptor
}

// NewFixedSensor builds a sensor whose slot IDs are the structure indices.
func NewFixedSensor(structures []Structure) *FixedSensor {
	recs := make([]Receptor, len(structures))
	for i, s := range structures {
		recs[i] = Receptor{ID: i, Structure: s}
	}
	return &FixedSensor{receptors: recs}
}

// ReceptorCount returns the number of receptors.
func (s *FixedSensor) ReceptorCount() int { return len(s.receptors) }

// Receptor returns the i-th receptor in sensor order.
func (s *FixedSensor) Receptor(i int) Receptor { return s.receptors[i] }

// NewCircleSensor lays count receptors evenly around the given plane, the
// first pointing along the plane's forward axis. Sensitivity is chosen so
// neighbouring receptors half-overlap unless a positive value is given.
func NewCircleSensor(count int, plane Plane, sensitivity, magnitude float64) *FixedSensor {
	if count < 1 {
		count = 1
	}
	if sensitivity <= 0 {
		sensitivity = 360.0 / float64(count)
	}
	if magnitude == 0 {
		magnitude = 1
	}
	structures := make([]Structure, count)
	for i := range structures {
		a := 2 * math.Pi * float64(i) / float64(count)
		sin, cos := math.Sincos(a)
		var dir r3.Vec
		switch plane {
		case PlaneXY:
			dir = r3.Vec{X: sin, Y: cos}
		case PlaneYZ:
			dir = r3.Vec{Y: sin, Z: cos}
		default:
			dir = r3.Vec{X: sin, Z: cos}
		}
		structures[i] = Structure{
			Direction:   dir,
			Sensitivity: sensitivity,
			Magnitude:   magnitude,
		}
	}
	return NewFixedSensor(structures)
}
