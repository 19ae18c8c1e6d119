package steer

import (
	"fmt"
	"math"
)

// Epsilon is the tolerance used for every boundary comparison in the engine.
const Epsilon = 1e-5

// MappingKind selects the curve used to normalize an interval position into
// a [0, 1] weight. Direct kinds (Linear, Quadratic, SquareRoot) rise from 0
// at the interval start to 1 at its end; the inverse kinds are their
// complement. Constant ignores the interval entirely.
type MappingKind uint8

const (
	MappingConstant MappingKind = iota
	MappingLinear
	MappingInverseLinear
	MappingQuadratic
	MappingInverseQuadratic
	MappingSquareRoot
	MappingInverseSquareRoot
)

var mappingNames = [...]string{
	MappingConstant:          "constant",
	MappingLinear:            "linear",
	MappingInverseLinear:     "inverse_linear",
	MappingQuadratic:         "quadratic",
	MappingInverseQuadratic:  "inverse_quadratic",
	MappingSquareRoot:        "square_root",
	MappingInverseSquareRoot: "inverse_square_root",
}

func (k MappingKind) String() string {
	if int(k) < len(mappingNames) {
		return mappingNames[k]
	}
	return fmt.Sprintf("mapping(%d)", uint8(k))
}

// Inverse reports whether the kind falls from 1 to 0 over the interval.
func (k MappingKind) Inverse() bool {
	return k == MappingInverseLinear || k == MappingInverseQuadratic || k == MappingInverseSquareRoot
}

// ParseMappingKind resolves the YAML/CLI name of a mapping kind.
func ParseMappingKind(name string) (MappingKind, error) {
	for k, n := range mappingNames {
		if n == name {
			return MappingKind(k), nil
		}
	}
	return MappingConstant, fmt.Errorf("steer: unknown mapping kind %q", name)
}

// Map converts value's position within [min, max] into a [0, 1] weight.
// Values within Epsilon of either bound take the corresponding limit of the
// kind's curve; out-of-interval values clamp to the same limits.
func Map(kind MappingKind, min, max, value float64) float64 {
	if kind == MappingConstant {
		return 1
	}
	if value < min+Epsilon {
		if kind.Inverse() {
			return 1
		}
		return 0
	}
	if value > max-Epsilon {
		if kind.Inverse() {
			return 0
		}
		return 1
	}
	t := clamp01((value - min) / (max - min))
	switch kind {
	case MappingLinear:
		return t
	case MappingInverseLinear:
		return 1 - t
	case MappingQuadratic:
		return t * t
	case MappingInverseQuadratic:
		return 1 - t*t
	case MappingSquareRoot:
		return math.Sqrt(t)
	case MappingInverseSquareRoot:
		return 1 - math.Sqrt(t)
	}
	return 0
}

// MapSquared is Map over pre-squared bounds and value. Callers that only
// have squared distances avoid the square root; for a zero minimum the
// result is identical to Map over the unsquared quantities.
func MapSquared(kind MappingKind, sqrMin, sqrMax, sqrValue float64) float64 {
	if kind == MappingConstant {
		return 1
	}
	if sqrValue < sqrMin+Epsilon {
		if kind.Inverse() {
			return 1
		}
		return 0
	}
	if sqrValue > sqrMax-Epsilon {
		if kind.Inverse() {
			return 0
		}
		return 1
	}
	t := clamp01((sqrValue - sqrMin) / (sqrMax - sqrMin))
	s := math.Sqrt(t)
	switch kind {
	case MappingLinear:
		return s
	case MappingInverseLinear:
		return 1 - s
	case MappingQuadratic:
		return t
	case MappingInverseQuadratic:
		return 1 - t
	case MappingSquareRoot:
		return math.Sqrt(s)
	case MappingInverseSquareRoot:
		return 1 - math.Sqrt(s)
	}
	return 0
}

// clamp01 clamps v to the [0, 1] range.
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
