package steer

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Source is one steering contribution in an agent's configured order.
type Source interface {
	// Evaluate writes the source's contribution into ctx.Problem. A
	// returned error is a precondition violation and aborts the agent's
	// tick; configuration problems are reported through the context and
	// skip the source instead.
	Evaluate(ctx *Context) error

	// ThreadSafe reports whether the source may run off the primary
	// goroutine during cross-agent parallel evaluation.
	ThreadSafe() bool
}

// Evaluation is the scratch state threaded through one behaviour's steering
// steps for a single percept. It is local to one (behaviour, percept) pass;
// hooks may mutate it freely, nothing in it is shared across agents.
type Evaluation struct {
	// Context is the owning agent's evaluation context.
	Context *Context
	// Self is the projected copy of the agent's own snapshot.
	Self Percept
	// Percept is the projected copy of the percept under evaluation.
	Percept Percept

	// Direction and Magnitude are the result pair receptor weights derive
	// from. Hooks set them per percept or per receptor.
	Direction r3.Vec
	Magnitude float64

	// Radius-filter cache, valid once RadiusFilter.relevant reports true.
	SqrDistance     float64
	RadiusMagnitude float64
}

// hooks wires a behaviour variant's steps into the shared loop. A nil step
// is the "does not need this step" flag; a nil start means every active
// percept is relevant. The set is fixed at construction.
type hooks struct {
	start         func(ev *Evaluation) bool
	perceptStep   func(ev *Evaluation)
	receptorStep  func(ev *Evaluation, rec Receptor)
	singlePercept bool
}

// Behavior carries the configuration shared by every percept-driven
// steering behaviour and runs the evaluation loop against the agent's grid.
type Behavior struct {
	// Objective is the grid row this behaviour writes to. An out-of-range
	// index disables the behaviour for the tick.
	Objective int
	// ValueMapping normalizes the receptor angle inside the sensitivity
	// threshold.
	ValueMapping MappingKind
	// Rule combines written values with whatever the cell already holds.
	Rule CombineRule
	// Plane projects self and percepts before any geometry.
	Plane Plane
	// MagnitudeMultiplier scales every written value.
	MagnitudeMultiplier float64
	// SensitivityOffset widens (or narrows) every receptor's threshold.
	SensitivityOffset float64
	// UseSignificance scales values by the percept's significance weight.
	UseSignificance bool

	hooks      hooks
	threadSafe bool
}

// ThreadSafe reports whether the behaviour may run off the primary
// goroutine. All behaviours in this package touch only their own scratch.
func (b *Behavior) ThreadSafe() bool { return b.threadSafe }

// Evaluate runs the shared steering loop: for every active percept that
// passes the relevance filter, derive a weight per receptor from direction
// similarity and write it into the grid under the configured rule.
func (b *Behavior) Evaluate(ctx *Context) error {
	if err := ctx.check(); err != nil {
		return err
	}
	if b.Objective < 0 || b.Objective >= ctx.Problem.ObjectiveCount() {
		ctx.configError(fmt.Errorf("%w: target objective %d of %d", ErrConfig, b.Objective, ctx.Problem.ObjectiveCount()))
		return nil
	}
	self := b.Plane.projectPercept(ctx.Self)
	for i := range ctx.Percepts {
		if !ctx.Percepts[i].Active {
			continue
		}
		ev := Evaluation{
			Context:   ctx,
			Self:      self,
			Percept:   b.Plane.projectPercept(ctx.Percepts[i]),
			Magnitude: 1,
		}
		if b.hooks.start != nil && !b.hooks.start(&ev) {
			continue
		}
		if b.hooks.perceptStep != nil {
			b.hooks.perceptStep(&ev)
		}
		b.writeReceptors(ctx, &ev)
		if b.hooks.singlePercept {
			break
		}
	}
	return nil
}

func (b *Behavior) writeReceptors(ctx *Context, ev *Evaluation) {
	n := ctx.Sensor.ReceptorCount()
	for i := 0; i < n; i++ {
		rec := ctx.Sensor.Receptor(i)
		if b.hooks.receptorStep != nil {
			b.hooks.receptorStep(ev, rec)
		}
		world := rec.Structure
		world.Direction = ctx.Orientation.Rotate(world.Direction)
		significance := 1.0
		if b.UseSignificance {
			significance = ev.Percept.Significance
		}
		value := significance * b.MagnitudeMultiplier * rec.Structure.Magnitude * ev.Magnitude *
			Similarity(b.ValueMapping, world, ev.Direction, b.SensitivityOffset)
		if err := ctx.Problem.Write(b.Objective, rec.ID, value, b.Rule); err != nil {
			// Bad slot ID: drop this write, keep evaluating.
			ctx.configError(err)
		}
	}
}
