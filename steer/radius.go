package steer

import "gonum.org/v1/gonum/spatial/r3"

// RadiusFilter restricts percepts to a perception window between an inner
// and outer radius and caches the per-percept quantities derived behaviours
// reuse: the direction to the percept, its squared distance and the
// radius-mapped magnitude.
type RadiusFilter struct {
	InnerRadius float64
	OuterRadius float64
	// RadiusMapping converts the squared distance within the window into
	// the cached magnitude.
	RadiusMapping MappingKind
}

// relevant reports whether the percept lies inside the window, boundaries
// inclusive within Epsilon, and fills the evaluation's caches.
func (f *RadiusFilter) relevant(ev *Evaluation) bool {
	dir := r3.Sub(ev.Percept.Position, ev.Self.Position)
	sqrInner := f.InnerRadius * f.InnerRadius
	sqrOuter := f.OuterRadius * f.OuterRadius
	sqrDist := r3.Norm2(dir)
	if sqrDist < sqrInner-Epsilon || sqrDist > sqrOuter+Epsilon {
		return false
	}
	ev.Direction = dir
	ev.SqrDistance = sqrDist
	ev.RadiusMagnitude = MapSquared(f.RadiusMapping, sqrInner, sqrOuter, sqrDist)
	return true
}
