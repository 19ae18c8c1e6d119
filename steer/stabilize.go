package steer

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Stabilization biases decisions toward directional continuity. It reads no
// percepts: for every receptor it measures the angle to a reference
// direction (the agent's velocity, or a fixed local direction when the
// velocity is unusable) and adds a mapped bonus to the target objective.
type Stabilization struct {
	// Objective is the grid row receiving the bonus.
	Objective int
	// AngleMapping normalizes the angle inside [0, MaxAngle].
	AngleMapping MappingKind
	// MaxAngle is the angular window in degrees around the reference.
	MaxAngle float64
	// MaxIncrease scales the bonus added per receptor.
	MaxIncrease float64
	// UseVelocity selects the agent's velocity as the reference direction.
	UseVelocity bool
	// LocalDirection is the agent-local reference used when UseVelocity is
	// false or the velocity is near zero.
	LocalDirection r3.Vec
	// Plane projects the velocity before comparing directions.
	Plane Plane
}

// NewStabilization returns a stabilization behaviour favouring the agent's
// current movement direction.
func NewStabilization(objective int) *Stabilization {
	return &Stabilization{
		Objective:      objective,
		AngleMapping:   MappingInverseLinear,
		MaxAngle:       90,
		MaxIncrease:    1,
		UseVelocity:    true,
		LocalDirection: r3.Vec{Z: 1},
	}
}

// ThreadSafe reports that stabilization touches only the agent's own grid.
func (s *Stabilization) ThreadSafe() bool { return true }

// Evaluate adds the continuity bonus to every receptor within the window.
func (s *Stabilization) Evaluate(ctx *Context) error {
	if err := ctx.check(); err != nil {
		return err
	}
	if s.Objective < 0 || s.Objective >= ctx.Problem.ObjectiveCount() {
		ctx.configError(fmt.Errorf("%w: target objective %d of %d", ErrConfig, s.Objective, ctx.Problem.ObjectiveCount()))
		return nil
	}
	if s.MaxAngle <= Epsilon {
		return nil
	}
	ref := r3.Vec{}
	if s.UseVelocity {
		ref = s.Plane.Project(ctx.Self.Velocity)
	}
	if r3.Norm(ref) < Epsilon {
		ref = ctx.Orientation.Rotate(s.LocalDirection)
	}
	n := ctx.Sensor.ReceptorCount()
	for i := 0; i < n; i++ {
		rec := ctx.Sensor.Receptor(i)
		dir := ctx.Orientation.Rotate(rec.Structure.Direction)
		angle := angleDeg(ref, dir)
		if angle < 0 || angle > s.MaxAngle {
			continue
		}
		bonus := Map(s.AngleMapping, 0, s.MaxAngle, angle) * s.MaxIncrease
		if err := ctx.Problem.Write(s.Objective, rec.ID, bonus, Addition); err != nil {
			ctx.configError(err)
		}
	}
	return nil
}
