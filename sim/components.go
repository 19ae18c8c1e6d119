// Package sim hosts the runtime around the steering engine: an ark ECS
// world whose agents perceive each other through a spatial grid, evaluate
// their steering contexts in parallel and integrate the decided motion.
package sim

import "gonum.org/v1/gonum/spatial/r3"

// Pose is an entity's position and facing in the XY arena plane.
type Pose struct {
	Position r3.Vec
	Heading  float64 // radians, 0 = +X
}

// Kinematics holds an entity's motion state.
type Kinematics struct {
	Velocity r3.Vec
	MaxSpeed float64
}

// Agent links an entity to its steering state slot.
type Agent struct {
	Index   int
	Arrived bool
}

// Threat marks an entity agents flee from.
type Threat struct {
	Significance float64
}
