package steer

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

// scriptSource runs an arbitrary function as a steering source.
type scriptSource struct {
	fn   func(ctx *Context) error
	safe bool
}

func (s *scriptSource) Evaluate(ctx *Context) error { return s.fn(ctx) }
func (s *scriptSource) ThreadSafe() bool            { return s.safe }

func writeSource(objective, slot int, value float64, rule CombineRule) *scriptSource {
	return &scriptSource{
		fn: func(ctx *Context) error {
			return ctx.Problem.Write(objective, slot, value, rule)
		},
		safe: true,
	}
}

func TestEvaluateOrderMatters(t *testing.T) {
	add := writeSource(0, 0, 1, Addition)
	mul := writeSource(0, 0, 2, Multiplication)

	addFirst := newTestContext(add, mul)
	if err := addFirst.Evaluate(); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got, _ := addFirst.Problem.Value(0, 0); got != 2 {
		t.Errorf("add then multiply = %f, want 2", got)
	}

	mulFirst := newTestContext(mul, add)
	if err := mulFirst.Evaluate(); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got, _ := mulFirst.Problem.Value(0, 0); got != 1 {
		t.Errorf("multiply then add = %f, want 1", got)
	}
}

func TestEvaluateResetsBetweenTicks(t *testing.T) {
	ctx := newTestContext(writeSource(0, 0, 1, Addition))

	for i := 0; i < 3; i++ {
		if err := ctx.Evaluate(); err != nil {
			t.Fatalf("Evaluate: %v", err)
		}
		if got, _ := ctx.Problem.Value(0, 0); got != 1 {
			t.Fatalf("tick %d: cell = %f, want 1 (grid not reset)", i, got)
		}
	}
}

func TestEvaluatePreconditions(t *testing.T) {
	ctx := newTestContext()
	ctx.Sensor = nil
	if err := ctx.Evaluate(); !errors.Is(err, ErrPrecondition) {
		t.Errorf("nil sensor: got %v, want ErrPrecondition", err)
	}

	ctx = newTestContext()
	ctx.Problem = nil
	if err := ctx.Evaluate(); !errors.Is(err, ErrPrecondition) {
		t.Errorf("nil problem: got %v, want ErrPrecondition", err)
	}
}

func TestConfigErrorSkipsSource(t *testing.T) {
	bad := NewSeek(7, false) // objective out of range
	bad.OuterRadius = 10
	good := NewSeek(0, false)
	good.OuterRadius = 10

	ctx := newTestContext(bad, good)
	ctx.Percepts = []Percept{{Position: r3.Vec{Z: 5}, Active: true, Significance: 1}}

	var reported []error
	ctx.OnConfigError = func(err error) { reported = append(reported, err) }

	if err := ctx.Evaluate(); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if ctx.ConfigErrors != 1 {
		t.Errorf("ConfigErrors = %d, want 1", ctx.ConfigErrors)
	}
	if len(reported) != 1 || !errors.Is(reported[0], ErrConfig) {
		t.Errorf("reported = %v, want one ErrConfig", reported)
	}

	// The healthy source still ran.
	if got := ctx.Problem.Values(0)[0]; got != 0.5 {
		t.Errorf("good source output = %f, want 0.5", got)
	}
}

func TestEvaluateAbortsOnSourceError(t *testing.T) {
	boom := errors.New("boom")
	failing := &scriptSource{fn: func(*Context) error { return boom }, safe: true}
	after := writeSource(0, 0, 1, Addition)

	ctx := newTestContext(failing, after)
	if err := ctx.Evaluate(); !errors.Is(err, boom) {
		t.Fatalf("Evaluate: got %v, want boom", err)
	}
	if got, _ := ctx.Problem.Value(0, 0); got != 0 {
		t.Errorf("source after failure ran: cell = %f, want 0", got)
	}
}

func TestContextThreadSafe(t *testing.T) {
	safe := writeSource(0, 0, 1, Addition)
	unsafeSrc := &scriptSource{fn: func(*Context) error { return nil }, safe: false}

	if ctx := newTestContext(safe, safe); !ctx.ThreadSafe() {
		t.Error("all-safe context reported unsafe")
	}
	if ctx := newTestContext(safe, unsafeSrc); ctx.ThreadSafe() {
		t.Error("context with unsafe source reported safe")
	}
}
