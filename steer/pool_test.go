package steer

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func poolTestContexts(n int) []*Context {
	ctxs := make([]*Context, n)
	for i := range ctxs {
		seek := NewSeek(0, false)
		seek.OuterRadius = 10
		ctx := newTestContext(seek)
		// Vary the geometry so every grid is distinct.
		d := 1 + float64(i%8)
		ctx.Percepts = []Percept{{Position: r3.Vec{Z: d}, Active: true, Significance: 1}}
		ctxs[i] = ctx
	}
	return ctxs
}

func TestPoolMatchesSequential(t *testing.T) {
	const n = 64 // above the parallel threshold

	parallel := poolTestContexts(n)
	sequential := poolTestContexts(n)

	pool := NewPool()
	defer pool.Stop()

	errs := pool.Evaluate(parallel)
	for i, err := range errs {
		if err != nil {
			t.Fatalf("context %d: %v", i, err)
		}
	}

	for i := range sequential {
		if err := sequential[i].Evaluate(); err != nil {
			t.Fatalf("sequential %d: %v", i, err)
		}
		pGrid := parallel[i].Problem.Values(0)
		sGrid := sequential[i].Problem.Values(0)
		for slot := range sGrid {
			if math.Abs(pGrid[slot]-sGrid[slot]) > 1e-12 {
				t.Fatalf("context %d slot %d: parallel %f, sequential %f", i, slot, pGrid[slot], sGrid[slot])
			}
		}
	}
}

func TestPoolErrorSliceInvalidatedByNextCall(t *testing.T) {
	pool := NewPool()
	defer pool.Stop()

	broken := poolTestContexts(4)
	broken[2].Sensor = nil
	first := pool.Evaluate(broken)
	if !errors.Is(first[2], ErrPrecondition) {
		t.Fatalf("expected precondition error, got %v", first[2])
	}

	// The slice is a pool-owned buffer; the next call overwrites it, so
	// callers that keep results across ticks must copy them out first.
	kept := make([]error, len(first))
	copy(kept, first)

	second := pool.Evaluate(poolTestContexts(4))
	if second[2] != nil {
		t.Fatalf("healthy contexts reported error: %v", second[2])
	}
	if first[2] != nil {
		t.Errorf("retained slice still holds the old error after reuse")
	}
	if !errors.Is(kept[2], ErrPrecondition) {
		t.Errorf("copied results lost the error: %v", kept[2])
	}
}

func TestPoolBelowThresholdRunsInline(t *testing.T) {
	ctxs := poolTestContexts(3)

	pool := NewPool()
	defer pool.Stop()

	errs := pool.Evaluate(ctxs)
	for i, err := range errs {
		if err != nil {
			t.Fatalf("context %d: %v", i, err)
		}
	}
	if got := ctxs[0].Problem.Values(0)[0]; got == 0 {
		t.Error("small batch was not evaluated")
	}
}

func TestPoolKeepsUnsafeSourcesOnCaller(t *testing.T) {
	const n = 40

	ctxs := poolTestContexts(n)
	// Sprinkle in sources that must stay on the calling goroutine.
	for i := 0; i < n; i += 5 {
		i := i
		ctxs[i].Sources = append(ctxs[i].Sources, &scriptSource{
			fn: func(ctx *Context) error {
				return ctx.Problem.Write(0, 1, float64(i), AssignGreater)
			},
			safe: false,
		})
	}

	pool := NewPool()
	defer pool.Stop()

	errs := pool.Evaluate(ctxs)
	for i, err := range errs {
		if err != nil {
			t.Fatalf("context %d: %v", i, err)
		}
	}

	// Unsafe contexts were still evaluated, with their extra write applied.
	for i := 5; i < n; i += 5 {
		if got := ctxs[i].Problem.Values(0)[1]; got != float64(i) {
			t.Errorf("unsafe context %d: slot 1 = %f, want %d", i, got, i)
		}
	}
}

func TestPoolReportsPerContextErrors(t *testing.T) {
	ctxs := poolTestContexts(20)
	ctxs[7].Sensor = nil
	ctxs[7].Problem = nil

	pool := NewPool()
	defer pool.Stop()

	errs := pool.Evaluate(ctxs)
	for i, err := range errs {
		if i == 7 {
			if !errors.Is(err, ErrPrecondition) {
				t.Errorf("context 7: got %v, want ErrPrecondition", err)
			}
			continue
		}
		if err != nil {
			t.Errorf("context %d: unexpected error %v", i, err)
		}
	}
}

func TestPoolReuseAcrossTicks(t *testing.T) {
	pool := NewPool()
	defer pool.Stop()

	ctxs := poolTestContexts(64)
	for tick := 0; tick < 3; tick++ {
		errs := pool.Evaluate(ctxs)
		for i, err := range errs {
			if err != nil {
				t.Fatalf("tick %d context %d: %v", tick, i, err)
			}
		}
	}
	// Shrinking batches reuse the pool's buffers.
	errs := pool.Evaluate(ctxs[:10])
	if len(errs) != 10 {
		t.Fatalf("error slice length = %d, want 10", len(errs))
	}
}
