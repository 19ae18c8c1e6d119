package steer

import "errors"

// ErrOutOfRange marks a grid write against an objective or slot index the
// problem does not have. The failed write is dropped; the evaluation that
// issued it continues.
var ErrOutOfRange = errors.New("steer: index out of range")

// ErrPrecondition marks a wiring bug: a behaviour evaluated without a
// context, problem or sensor. It aborts the owning agent's tick.
var ErrPrecondition = errors.New("steer: evaluation precondition violated")

// ErrConfig marks a recoverable configuration problem (out-of-range target
// objective, empty objective list). The affected behaviour skips the tick
// and the error is surfaced through Context diagnostics.
var ErrConfig = errors.New("steer: behaviour misconfigured")
