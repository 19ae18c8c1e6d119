package steer

import (
	"math"
	"testing"
)

func TestRetentionConvergesToInput(t *testing.T) {
	// A constant input of 1 smoothed with memory factor m approaches 1 as
	// 1-m^n once the memory has been seeded.
	const m = 0.5
	input := 0.0
	src := &scriptSource{
		fn: func(ctx *Context) error {
			return ctx.Problem.Write(0, 0, input, AssignGreater)
		},
		safe: true,
	}
	ret := NewRetention(m, 0)
	ctx := newTestContext(src, ret)

	// Seed the memory while the input is silent.
	if err := ctx.Evaluate(); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got, _ := ctx.Problem.Value(0, 0); got != 0 {
		t.Fatalf("seeded value = %f, want 0", got)
	}

	input = 1
	for n := 1; n <= 5; n++ {
		if err := ctx.Evaluate(); err != nil {
			t.Fatalf("tick %d: %v", n, err)
		}
		got, _ := ctx.Problem.Value(0, 0)
		want := 1 - math.Pow(m, float64(n))
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("tick %d: value = %f, want %f", n, got, want)
		}
	}
}

func TestRetentionMemoryFactorExtremes(t *testing.T) {
	src := writeSource(0, 0, 1, AssignGreater)

	// Factor 0 passes the input through unchanged.
	ctx := newTestContext(src, NewRetention(0, 0))
	for i := 0; i < 3; i++ {
		if err := ctx.Evaluate(); err != nil {
			t.Fatalf("Evaluate: %v", err)
		}
	}
	if got, _ := ctx.Problem.Value(0, 0); got != 1 {
		t.Errorf("factor 0: value = %f, want 1", got)
	}

	// Factor 1 holds the seeded value forever.
	input := 0.0
	toggled := &scriptSource{
		fn: func(ctx *Context) error {
			return ctx.Problem.Write(0, 0, input, AssignGreater)
		},
		safe: true,
	}
	ctx = newTestContext(toggled, NewRetention(1, 0))
	if err := ctx.Evaluate(); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	input = 1
	for i := 0; i < 3; i++ {
		if err := ctx.Evaluate(); err != nil {
			t.Fatalf("Evaluate: %v", err)
		}
	}
	if got, _ := ctx.Problem.Value(0, 0); got != 0 {
		t.Errorf("factor 1: value = %f, want 0", got)
	}
}

func TestRetentionOnlyTouchesConfiguredObjectives(t *testing.T) {
	input := 0.0
	srcA := &scriptSource{
		fn: func(ctx *Context) error {
			return ctx.Problem.Write(0, 0, input, AssignGreater)
		},
		safe: true,
	}
	srcB := &scriptSource{
		fn: func(ctx *Context) error {
			return ctx.Problem.Write(1, 0, input, AssignGreater)
		},
		safe: true,
	}
	ret := NewRetention(0.5, 0)

	ctx := NewContext(2, NewCircleSensor(4, PlaneXZ, 0, 0), srcA, srcB, ret)
	if err := ctx.Evaluate(); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	// The input jumps to 1; the retained objective lags, the other does not.
	input = 1
	if err := ctx.Evaluate(); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	smoothed, _ := ctx.Problem.Value(0, 0)
	if math.Abs(smoothed-0.5) > 1e-9 {
		t.Errorf("retained objective = %f, want 0.5", smoothed)
	}
	raw, _ := ctx.Problem.Value(1, 0)
	if raw != 1 {
		t.Errorf("unretained objective = %f, want 1", raw)
	}
}

func TestRetentionReconcilesBufferShape(t *testing.T) {
	ret := NewRetention(0.5, 0)
	ctx := newTestContext(writeSource(0, 0, 1, AssignGreater), ret)
	if err := ctx.Evaluate(); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	// Changing the objective list discards the memory and reseeds from
	// the grid on the next evaluation.
	ret.Objectives = []int{0, 0}
	if err := ctx.Evaluate(); err != nil {
		t.Fatalf("Evaluate after resize: %v", err)
	}
	if len(ret.memory) != 2 {
		t.Fatalf("memory rows = %d, want 2", len(ret.memory))
	}
	if ret.memValues != ctx.Problem.ValueCount() {
		t.Errorf("memory width = %d, want %d", ret.memValues, ctx.Problem.ValueCount())
	}
}

func TestRetentionWithoutObjectivesIsConfigError(t *testing.T) {
	ret := NewRetention(0.5)
	ctx := newTestContext(ret)
	if err := ctx.Evaluate(); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if ctx.ConfigErrors != 1 {
		t.Errorf("ConfigErrors = %d, want 1", ctx.ConfigErrors)
	}
}
