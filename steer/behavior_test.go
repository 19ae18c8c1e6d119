package steer

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

// newTestContext builds a context around a 4-receptor ring in the XZ plane
// (slots: +Z, +X, -Z, -X) with the given sources.
func newTestContext(sources ...Source) *Context {
	return NewContext(1, NewCircleSensor(4, PlaneXZ, 0, 0), sources...)
}

func assertRow(t *testing.T, ctx *Context, objective int, want []float64) {
	t.Helper()
	got := ctx.Problem.Values(objective)
	if len(got) != len(want) {
		t.Fatalf("row length %d, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("slot %d = %f, want %f (row %v)", i, got[i], want[i], got)
		}
	}
}

func TestSeekWeightsAlignedReceptor(t *testing.T) {
	seek := NewSeek(0, false)
	seek.OuterRadius = 10
	ctx := newTestContext(seek)
	ctx.Percepts = []Percept{{Position: r3.Vec{Z: 5}, Active: true, Significance: 1}}

	if err := ctx.Evaluate(); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	// Halfway into the window the radius mapping yields 0.5; only the +Z
	// receptor is aligned with the target, its neighbours sit exactly on
	// the 90 degree threshold.
	assertRow(t, ctx, 0, []float64{0.5, 0, 0, 0})
}

func TestSeekIgnoresOutOfWindowAndInactive(t *testing.T) {
	seek := NewSeek(0, false)
	seek.InnerRadius = 2
	seek.OuterRadius = 10
	ctx := newTestContext(seek)
	ctx.Percepts = []Percept{
		{Position: r3.Vec{Z: 1}, Active: true, Significance: 1},  // inside inner radius
		{Position: r3.Vec{Z: 20}, Active: true, Significance: 1}, // beyond outer radius
		{Position: r3.Vec{Z: 5}, Active: false, Significance: 1}, // inactive
	}

	if err := ctx.Evaluate(); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	assertRow(t, ctx, 0, []float64{0, 0, 0, 0})
}

func TestSeekSignificanceScaling(t *testing.T) {
	seek := NewSeek(0, false)
	seek.OuterRadius = 10
	seek.UseSignificance = true
	ctx := newTestContext(seek)
	ctx.Percepts = []Percept{{Position: r3.Vec{Z: 5}, Active: true, Significance: 0.4}}

	if err := ctx.Evaluate(); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	assertRow(t, ctx, 0, []float64{0.2, 0, 0, 0})
}

func TestFleeNegatesSeek(t *testing.T) {
	flee := NewFlee(0, false)
	flee.OuterRadius = 10
	ctx := newTestContext(flee)
	ctx.Percepts = []Percept{{Position: r3.Vec{Z: 5}, Active: true, Significance: 1}}

	if err := ctx.Evaluate(); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	// Same geometry as seek, opposite direction: the -Z receptor wins.
	assertRow(t, ctx, 0, []float64{0, 0, 0.5, 0})
}

func TestSeekReceptorScaled(t *testing.T) {
	seek := NewSeek(0, true)
	seek.OuterRadius = 10
	ctx := newTestContext(seek)
	ctx.Percepts = []Percept{{Position: r3.Vec{Z: 5}, Active: true, Significance: 1}}

	if err := ctx.Evaluate(); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	// Receptor positions default to the agent center, so the variant
	// reduces to plain seek here.
	assertRow(t, ctx, 0, []float64{0.5, 0, 0, 0})

	// An offset receptor measures its own distance to the target.
	structures := []Structure{
		{Direction: r3.Vec{Z: 1}, Sensitivity: 90, Magnitude: 1, Position: r3.Vec{Z: 4}},
	}
	ctx2 := NewContext(1, NewFixedSensor(structures), seek)
	ctx2.Percepts = ctx.Percepts
	if err := ctx2.Evaluate(); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	// Distance from the receptor is 1, so the radius weight is 1-1/10.
	assertRow(t, ctx2, 0, []float64{0.9})
}

func TestFollowIgnoresDistance(t *testing.T) {
	follow := NewFollow(0)
	ctx := newTestContext(follow)
	ctx.Percepts = []Percept{{Position: r3.Vec{Z: 1000}, Active: true, Significance: 1}}

	if err := ctx.Evaluate(); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	assertRow(t, ctx, 0, []float64{1, 0, 0, 0})
}

func TestAlignMatchesTargetOrientation(t *testing.T) {
	align := NewAlign(0)
	align.Plane = PlaneXZ
	ctx := newTestContext(align)

	// Target faces +X: its rotation turns the +Z forward axis onto +X.
	rot := r3.NewRotation(math.Pi/2, r3.Vec{Y: 1})
	ctx.Percepts = []Percept{
		{Rotation: rot, Active: true, Significance: 1},
		// A second percept must be ignored, align is single-target.
		{Rotation: IdentityRotation(), Active: true, Significance: 1},
	}

	if err := ctx.Evaluate(); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	assertRow(t, ctx, 0, []float64{0, 1, 0, 0})
}

func TestAdjustAccumulatesNeighbors(t *testing.T) {
	adjust := NewAdjust(0)
	adjust.Plane = PlaneXZ
	adjust.OuterRadius = 10
	ctx := newTestContext(adjust)

	// Two neighbours both facing +Z at half the window distance.
	ctx.Percepts = []Percept{
		{Position: r3.Vec{X: 5}, Rotation: IdentityRotation(), Active: true, Significance: 1},
		{Position: r3.Vec{X: -5}, Rotation: IdentityRotation(), Active: true, Significance: 1},
	}

	if err := ctx.Evaluate(); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	// Each contributes 0.5 to the +Z receptor under Addition.
	assertRow(t, ctx, 0, []float64{1, 0, 0, 0})
}

func TestArriveMagnitudes(t *testing.T) {
	tests := []struct {
		name     string
		mapping  MappingKind
		base     float64
		distance float64
		want     float64
	}{
		{"outside window cruises", MappingInverseLinear, 0.2, 20, 0.2},
		{"inner boundary reaches one", MappingInverseLinear, 0.2, 0.5, 1},
		{"direct mapping inner boundary", MappingLinear, 0.2, 0.5, 1},
		{"direct mapping outside window", MappingLinear, 0.2, 20, 0.2},
		{"base above one speeds up", MappingInverseLinear, 2, 0.5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arrive := NewArrive(0)
			arrive.InnerRadius = 1
			arrive.OuterRadius = 10
			arrive.RadiusMapping = tt.mapping
			arrive.BaseMagnitude = tt.base

			ctx := newTestContext(arrive)
			ctx.Percepts = []Percept{{Position: r3.Vec{Z: tt.distance}, Active: true, Significance: 1}}
			if err := ctx.Evaluate(); err != nil {
				t.Fatalf("Evaluate: %v", err)
			}

			got := ctx.Problem.Values(0)[0]
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("magnitude at distance %f = %f, want %f", tt.distance, got, tt.want)
			}
		})
	}
}

func TestArriveMonotonicInsideWindow(t *testing.T) {
	arrive := NewArrive(0)
	arrive.InnerRadius = 1
	arrive.OuterRadius = 10
	arrive.BaseMagnitude = 0.2

	prev := math.Inf(-1)
	for _, d := range []float64{9, 7, 5, 3, 1.5} {
		ctx := newTestContext(arrive)
		ctx.Percepts = []Percept{{Position: r3.Vec{Z: d}, Active: true, Significance: 1}}
		if err := ctx.Evaluate(); err != nil {
			t.Fatalf("Evaluate: %v", err)
		}
		got := ctx.Problem.Values(0)[0]
		if got <= prev {
			t.Fatalf("magnitude at distance %f = %f, not increasing toward the target (prev %f)", d, got, prev)
		}
		prev = got
	}
}
