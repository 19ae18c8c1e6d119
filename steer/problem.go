package steer

import "fmt"

// Problem is the objectives × receptor-slots value grid one agent's
// behaviours fill each tick. It is owned by exactly one agent's evaluation:
// no locking happens here, isolation comes from never sharing it.
type Problem struct {
	objectives int
	valueCount int
	cells      []float64
}

// NewProblem allocates a zeroed grid. The value count equals the agent's
// receptor count and stays constant for the lifetime of an evaluation.
func NewProblem(objectives, valueCount int) *Problem {
	if objectives < 0 {
		objectives = 0
	}
	if valueCount < 0 {
		valueCount = 0
	}
	return &Problem{
		objectives: objectives,
		valueCount: valueCount,
		cells:      make([]float64, objectives*valueCount),
	}
}

// ObjectiveCount returns the number of objectives in the grid.
func (p *Problem) ObjectiveCount() int { return p.objectives }

// ValueCount returns the number of receptor slots per objective.
func (p *Problem) ValueCount() int { return p.valueCount }

// Reset zeroes every cell. Called once at the start of each evaluation tick.
func (p *Problem) Reset() {
	for i := range p.cells {
		p.cells[i] = 0
	}
}

// Values returns one objective's receptor-value sequence. The slice aliases
// the grid; callers outside the evaluation must treat it as read-only.
func (p *Problem) Values(objective int) []float64 {
	if objective < 0 || objective >= p.objectives {
		return nil
	}
	return p.cells[objective*p.valueCount : (objective+1)*p.valueCount]
}

// Value reads a single cell.
func (p *Problem) Value(objective, slot int) (float64, error) {
	if err := p.check(objective, slot); err != nil {
		return 0, err
	}
	return p.cells[objective*p.valueCount+slot], nil
}

// Write folds value into the cell at (objective, slot) under the given
// combine rule. An out-of-range index fails only this write.
func (p *Problem) Write(objective, slot int, value float64, rule CombineRule) error {
	if err := p.check(objective, slot); err != nil {
		return err
	}
	i := objective*p.valueCount + slot
	p.cells[i] = combine(rule, p.cells[i], value)
	return nil
}

func (p *Problem) check(objective, slot int) error {
	if objective < 0 || objective >= p.objectives {
		return fmt.Errorf("%w: objective %d of %d", ErrOutOfRange, objective, p.objectives)
	}
	if slot < 0 || slot >= p.valueCount {
		return fmt.Errorf("%w: slot %d of %d", ErrOutOfRange, slot, p.valueCount)
	}
	return nil
}
