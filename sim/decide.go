package sim

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/arcfield/steer/steer"
)

// Decision is the reduction of one agent's objective grid to a single
// movement command.
type Decision struct {
	Slot      int     // winning receptor slot
	Direction r3.Vec  // agent-local unit direction
	Value     float64 // combined objective value at the winner
	Magnitude float64 // speed scale in [0, 1]
}

// Decide reduces the grid to a movement decision: the receptor maximizing
// interest minus danger wins, with parabolic interpolation across the ring
// neighbors for a continuous direction. Reports false when no receptor has
// a positive combined value (the agent holds).
func Decide(p *steer.Problem, sensor steer.Sensor, interest, danger int) (Decision, bool) {
	values := p.Values(interest)
	if values == nil || sensor == nil {
		return Decision{}, false
	}
	dangerValues := p.Values(danger) // nil when the danger row is absent

	n := sensor.ReceptorCount()
	if n == 0 || n > len(values) {
		return Decision{}, false
	}

	combined := func(i int) float64 {
		v := values[i]
		if dangerValues != nil {
			v -= dangerValues[i]
		}
		return v
	}

	best := 0
	bestVal := combined(0)
	for i := 1; i < n; i++ {
		if v := combined(i); v > bestVal {
			best, bestVal = i, v
		}
	}
	if bestVal <= steer.Epsilon {
		return Decision{}, false
	}

	dir := sensor.Receptor(best).Structure.Direction
	if n >= 3 {
		// Parabolic fit over the winner and its ring neighbors gives a
		// sub-slot offset in [-0.5, 0.5].
		left := combined((best - 1 + n) % n)
		right := combined((best + 1) % n)
		denom := left - 2*bestVal + right
		if denom < -steer.Epsilon {
			offset := 0.5 * (left - right) / denom
			if offset > 0.5 {
				offset = 0.5
			} else if offset < -0.5 {
				offset = -0.5
			}
			var other r3.Vec
			if offset >= 0 {
				other = sensor.Receptor((best + 1) % n).Structure.Direction
			} else {
				other = sensor.Receptor((best - 1 + n) % n).Structure.Direction
				offset = -offset
			}
			blend := r3.Add(r3.Scale(1-offset, dir), r3.Scale(offset, other))
			if r3.Norm(blend) > steer.Epsilon {
				dir = blend
			}
		}
	}

	mag := bestVal
	if mag > 1 {
		mag = 1
	}

	return Decision{
		Slot:      best,
		Direction: r3.Unit(dir),
		Value:     bestVal,
		Magnitude: mag,
	}, true
}
