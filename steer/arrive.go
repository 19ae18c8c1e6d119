package steer

import "gonum.org/v1/gonum/spatial/r3"

// Arrive steers toward the target with a speed-shaping magnitude: outside
// the outer radius it equals BaseMagnitude, inside the window it follows
// the radius mapping between BaseMagnitude and 1. The interpolation
// endpoints depend on whether the mapping kind rises or falls with
// distance, so the magnitude is always BaseMagnitude at the outer boundary
// and 1 at the inner one; whether approach means slowing down or speeding
// up is decided by BaseMagnitude alone.
type Arrive struct {
	Behavior

	InnerRadius   float64
	OuterRadius   float64
	RadiusMapping MappingKind
	// BaseMagnitude is the cruise magnitude used outside the window.
	BaseMagnitude float64
}

// NewArrive returns an arrive behaviour targeting the given objective.
func NewArrive(objective int) *Arrive {
	a := &Arrive{
		Behavior: Behavior{
			Objective:           objective,
			ValueMapping:        MappingInverseLinear,
			Rule:                AssignGreater,
			MagnitudeMultiplier: 1,
			threadSafe:          true,
		},
		RadiusMapping: MappingInverseLinear,
		BaseMagnitude: 1,
	}
	a.hooks = hooks{perceptStep: a.perceptStep}
	return a
}

func (a *Arrive) perceptStep(ev *Evaluation) {
	dir := r3.Sub(ev.Percept.Position, ev.Self.Position)
	ev.Direction = dir
	sqrOuter := a.OuterRadius * a.OuterRadius
	sqrDist := r3.Norm2(dir)
	if sqrDist > sqrOuter+Epsilon {
		ev.Magnitude = a.BaseMagnitude
		return
	}
	sqrInner := a.InnerRadius * a.InnerRadius
	m := MapSquared(a.RadiusMapping, sqrInner, sqrOuter, sqrDist)
	if a.RadiusMapping.Inverse() {
		// Falling kinds reach 1 at the inner radius and 0 at the outer.
		ev.Magnitude = a.BaseMagnitude + (1-a.BaseMagnitude)*m
	} else {
		ev.Magnitude = 1 + (a.BaseMagnitude-1)*m
	}
}
