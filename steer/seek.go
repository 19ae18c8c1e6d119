package steer

import "gonum.org/v1/gonum/spatial/r3"

// Seek steers toward every percept inside the radius window, weighting
// receptors by the radius-mapped distance and their angular agreement with
// the direction to the percept.
type Seek struct {
	Behavior
	RadiusFilter

	// ReceptorScaled selects the per-receptor variant, which measures the
	// target direction and distance from each receptor's own position
	// instead of the agent center.
	ReceptorScaled bool

	negate bool
}

// NewSeek returns a seek behaviour targeting the given objective.
func NewSeek(objective int, receptorScaled bool) *Seek {
	s := newSeek(objective, receptorScaled, false)
	s.wire()
	return s
}

func newSeek(objective int, receptorScaled, negate bool) *Seek {
	return &Seek{
		Behavior: Behavior{
			Objective:           objective,
			ValueMapping:        MappingInverseLinear,
			Rule:                AssignGreater,
			MagnitudeMultiplier: 1,
			threadSafe:          true,
		},
		RadiusFilter:   RadiusFilter{RadiusMapping: MappingInverseLinear},
		ReceptorScaled: receptorScaled,
		negate:         negate,
	}
}

func (s *Seek) wire() {
	s.hooks = hooks{start: s.start, perceptStep: s.perceptStep}
	if s.ReceptorScaled {
		s.hooks.receptorStep = s.receptorStep
	}
}

func (s *Seek) start(ev *Evaluation) bool {
	return s.relevant(ev)
}

func (s *Seek) perceptStep(ev *Evaluation) {
	// Direction was cached by the radius filter.
	ev.Magnitude = ev.RadiusMagnitude
	if s.negate {
		ev.Direction = r3.Scale(-1, ev.Direction)
	}
}

func (s *Seek) receptorStep(ev *Evaluation, rec Receptor) {
	offset := ev.Context.Orientation.Rotate(rec.Structure.Position)
	origin := r3.Add(ev.Self.Position, offset)
	dir := r3.Sub(ev.Percept.Position, origin)
	sqrInner := s.InnerRadius * s.InnerRadius
	sqrOuter := s.OuterRadius * s.OuterRadius
	ev.Direction = dir
	ev.Magnitude = MapSquared(s.RadiusMapping, sqrInner, sqrOuter, r3.Norm2(dir))
	if s.negate {
		ev.Direction = r3.Scale(-1, ev.Direction)
	}
}

// Flee is Seek with the resulting direction negated: identical geometry,
// opposite intent.
type Flee struct {
	Seek
}

// NewFlee returns a flee behaviour targeting the given objective.
func NewFlee(objective int, receptorScaled bool) *Flee {
	f := &Flee{Seek: *newSeek(objective, receptorScaled, true)}
	f.Seek.wire()
	return f
}
