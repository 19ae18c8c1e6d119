// Package steer implements a context-steering evaluation engine.
//
// Instead of summing competing force vectors, each agent carries a fixed
// ring of directional receptors and a grid of objective values over them
// (the Problem). Every behaviour attached to the agent maps raw geometry
// (distances, angles) to normalized weights and writes them into the grid
// through a small set of combine rules. The fully populated grid is then
// handed to a decision step that picks the best-scoring direction.
//
// One Context owns one agent's evaluation for a tick. Contexts are never
// shared, so agents can be evaluated in parallel with Pool as long as every
// behaviour on an agent reports ThreadSafe.
package steer
