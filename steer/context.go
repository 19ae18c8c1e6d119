package steer

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Context owns one agent's steering evaluation: the agent's own snapshot,
// the percepts refreshed for this tick, the receptor set and the problem
// grid the behaviours fill. A context is exclusively owned by one agent;
// cross-agent parallelism only requires that each agent has its own.
type Context struct {
	// Self is the agent's own percept snapshot.
	Self Percept
	// Orientation transforms agent-local directions to world space.
	Orientation r3.Rotation
	// Percepts is this tick's perception snapshot, read-only for
	// behaviours.
	Percepts []Percept
	// Sensor is the agent's receptor set for this tick.
	Sensor Sensor
	// Problem is the objective grid, reset at the start of every tick.
	Problem *Problem
	// Sources run in this fixed order; the order decides combinator
	// outcomes and is part of the agent's configuration.
	Sources []Source

	// ConfigErrors counts configuration problems skipped this tick.
	ConfigErrors int
	// OnConfigError, when set, additionally receives each one.
	OnConfigError func(error)
}

// NewContext builds a context with an objectives × receptor grid sized for
// the sensor.
func NewContext(objectives int, sensor Sensor, sources ...Source) *Context {
	valueCount := 0
	if sensor != nil {
		valueCount = sensor.ReceptorCount()
	}
	return &Context{
		Self:        Percept{Active: true, Significance: 1, Rotation: IdentityRotation()},
		Orientation: IdentityRotation(),
		Sensor:      sensor,
		Problem:     NewProblem(objectives, valueCount),
		Sources:     sources,
	}
}

// ThreadSafe reports whether every source on this agent may run off the
// primary goroutine. One unsafe source keeps the whole agent on it.
func (c *Context) ThreadSafe() bool {
	for _, s := range c.Sources {
		if !s.ThreadSafe() {
			return false
		}
	}
	return true
}

// Evaluate resets the problem and runs every source in configured order.
// The returned error aborts this agent's tick only; other agents' grids
// are unaffected because no grid is shared.
func (c *Context) Evaluate() error {
	if err := c.check(); err != nil {
		return err
	}
	if c.Orientation == (r3.Rotation{}) {
		c.Orientation = IdentityRotation()
	}
	c.ConfigErrors = 0
	c.Problem.Reset()
	for _, src := range c.Sources {
		if err := src.Evaluate(c); err != nil {
			return err
		}
	}
	return nil
}

func (c *Context) check() error {
	if c == nil {
		return fmt.Errorf("%w: nil context", ErrPrecondition)
	}
	if c.Problem == nil {
		return fmt.Errorf("%w: nil problem", ErrPrecondition)
	}
	if c.Sensor == nil {
		return fmt.Errorf("%w: nil sensor", ErrPrecondition)
	}
	return nil
}

func (c *Context) configError(err error) {
	c.ConfigErrors++
	if c.OnConfigError != nil {
		c.OnConfigError(err)
	}
}
