package steer

import "fmt"

// Retention smooths objective values over time. It keeps its own copy of the
// last combined grid rows and, each evaluation, blends the remembered values
// back into the fresh ones. A memory factor of 0 disables smoothing, 1 holds
// the remembered values indefinitely.
//
// Retention runs as a post-process: list it after the behaviours whose
// output it should smooth.
type Retention struct {
	// Objectives lists the grid rows to smooth.
	Objectives []int
	// MemoryFactor is the fraction of the remembered value kept per step,
	// clamped to [0, 1].
	MemoryFactor float64

	memory    [][]float64
	memValues int
}

// NewRetention returns a retention post-process over the given objectives.
func NewRetention(memoryFactor float64, objectives ...int) *Retention {
	return &Retention{
		Objectives:   objectives,
		MemoryFactor: memoryFactor,
	}
}

// ThreadSafe reports that retention touches only the agent's own grid.
func (r *Retention) ThreadSafe() bool { return true }

// Evaluate blends the remembered rows into the current grid and refreshes
// the memory from the blended result.
func (r *Retention) Evaluate(ctx *Context) error {
	if err := ctx.check(); err != nil {
		return err
	}
	if len(r.Objectives) == 0 {
		ctx.configError(fmt.Errorf("%w: retention has no objectives", ErrConfig))
		return nil
	}
	r.reconcile(ctx.Problem)

	m := clamp01(r.MemoryFactor)
	for i, obj := range r.Objectives {
		values := ctx.Problem.Values(obj)
		if values == nil {
			ctx.configError(fmt.Errorf("%w: retained objective %d of %d", ErrConfig, obj, ctx.Problem.ObjectiveCount()))
			continue
		}
		mem := r.memory[i]
		for slot := range values {
			cur := values[slot]
			delta := (mem[slot] - cur) * m
			if err := ctx.Problem.Write(obj, slot, delta, Addition); err != nil {
				ctx.configError(err)
				continue
			}
			mem[slot] = cur + delta
		}
	}
	return nil
}

// reconcile resizes the memory buffers when the objective list or the grid
// shape changed, seeding fresh rows from the current grid values.
func (r *Retention) reconcile(p *Problem) {
	if len(r.memory) == len(r.Objectives) && r.memValues == p.ValueCount() {
		return
	}
	mem := make([][]float64, len(r.Objectives))
	for i, obj := range r.Objectives {
		row := make([]float64, p.ValueCount())
		if values := p.Values(obj); values != nil {
			copy(row, values)
		}
		mem[i] = row
	}
	r.memory = mem
	r.memValues = p.ValueCount()
}
