package steer

import "fmt"

// CombineRule is the update policy applied when a behaviour writes a value
// into an occupied grid cell. The assign rules are guarded by Epsilon; the
// arithmetic rules fold the new value into the old one, which makes the
// agent-level behaviour execution order part of the contract.
type CombineRule uint8

const (
	AssignGreater CombineRule = iota
	AssignLesser
	Addition
	Subtraction
	Multiplication
	Division
)

var combineNames = [...]string{
	AssignGreater:  "assign_greater",
	AssignLesser:   "assign_lesser",
	Addition:       "addition",
	Subtraction:    "subtraction",
	Multiplication: "multiplication",
	Division:       "division",
}

func (r CombineRule) String() string {
	if int(r) < len(combineNames) {
		return combineNames[r]
	}
	return fmt.Sprintf("rule(%d)", uint8(r))
}

// ParseCombineRule resolves the YAML/CLI name of a combine rule.
func ParseCombineRule(name string) (CombineRule, error) {
	for r, n := range combineNames {
		if n == name {
			return CombineRule(r), nil
		}
	}
	return AssignGreater, fmt.Errorf("steer: unknown combine rule %q", name)
}

// combine returns the value a cell holds after writing value over old under
// the given rule. Division by zero is defined as a no-op, not an error.
func combine(rule CombineRule, old, value float64) float64 {
	switch rule {
	case AssignGreater:
		if value > old+Epsilon {
			return value
		}
	case AssignLesser:
		if value < old-Epsilon {
			return value
		}
	case Addition:
		return old + value
	case Subtraction:
		return old - value
	case Multiplication:
		return old * value
	case Division:
		if value != 0 {
			return old / value
		}
	}
	return old
}
