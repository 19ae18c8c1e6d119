package steer

import (
	"math"
	"testing"
)

func TestMapInterior(t *testing.T) {
	tests := []struct {
		name  string
		kind  MappingKind
		value float64
		want  float64
	}{
		{"linear mid", MappingLinear, 0.5, 0.5},
		{"linear quarter", MappingLinear, 0.25, 0.25},
		{"inverse linear mid", MappingInverseLinear, 0.5, 0.5},
		{"inverse linear quarter", MappingInverseLinear, 0.25, 0.75},
		{"quadratic mid", MappingQuadratic, 0.5, 0.25},
		{"inverse quadratic mid", MappingInverseQuadratic, 0.5, 0.75},
		{"square root quarter", MappingSquareRoot, 0.25, 0.5},
		{"inverse square root quarter", MappingInverseSquareRoot, 0.25, 0.5},
		{"constant ignores value", MappingConstant, 0.37, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Map(tt.kind, 0, 1, tt.value)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Map(%v, 0, 1, %f) = %f, want %f", tt.kind, tt.value, got, tt.want)
			}
		})
	}
}

func TestMapBoundaries(t *testing.T) {
	kinds := []MappingKind{
		MappingLinear, MappingInverseLinear,
		MappingQuadratic, MappingInverseQuadratic,
		MappingSquareRoot, MappingInverseSquareRoot,
	}

	for _, kind := range kinds {
		atMin := Map(kind, 2, 8, 2)
		atMax := Map(kind, 2, 8, 8)
		below := Map(kind, 2, 8, -5)
		above := Map(kind, 2, 8, 100)

		wantMin, wantMax := 0.0, 1.0
		if kind.Inverse() {
			wantMin, wantMax = 1.0, 0.0
		}

		if atMin != wantMin || below != wantMin {
			t.Errorf("%v at/below min: got %f/%f, want %f", kind, atMin, below, wantMin)
		}
		if atMax != wantMax || above != wantMax {
			t.Errorf("%v at/above max: got %f/%f, want %f", kind, atMax, above, wantMax)
		}
	}

	// Constant is 1 everywhere, boundaries included.
	if got := Map(MappingConstant, 2, 8, -5); got != 1 {
		t.Errorf("constant below min = %f, want 1", got)
	}
}

func TestMapEpsilonBand(t *testing.T) {
	// Values inside the epsilon band of a bound take the boundary result.
	if got := Map(MappingLinear, 0, 1, Epsilon/2); got != 0 {
		t.Errorf("linear just above min = %f, want 0", got)
	}
	if got := Map(MappingLinear, 0, 1, 1-Epsilon/2); got != 1 {
		t.Errorf("linear just below max = %f, want 1", got)
	}
}

func TestMapSquaredMatchesMap(t *testing.T) {
	// With a zero minimum the squared variant is exactly Map over the
	// unsquared quantities.
	kinds := []MappingKind{
		MappingLinear, MappingInverseLinear,
		MappingQuadratic, MappingInverseQuadratic,
		MappingSquareRoot, MappingInverseSquareRoot,
	}
	values := []float64{0.1, 0.5, 2, 5, 9.9}

	for _, kind := range kinds {
		for _, v := range values {
			want := Map(kind, 0, 10, v)
			got := MapSquared(kind, 0, 100, v*v)
			if math.Abs(got-want) > 1e-9 {
				t.Errorf("MapSquared(%v, 0, 100, %f) = %f, want Map result %f", kind, v*v, got, want)
			}
		}
	}
}

func TestMappingKindRoundTrip(t *testing.T) {
	for k := MappingConstant; k <= MappingInverseSquareRoot; k++ {
		parsed, err := ParseMappingKind(k.String())
		if err != nil {
			t.Fatalf("ParseMappingKind(%q): %v", k.String(), err)
		}
		if parsed != k {
			t.Errorf("round trip %v: got %v", k, parsed)
		}
	}

	if _, err := ParseMappingKind("bogus"); err == nil {
		t.Error("ParseMappingKind(bogus) should fail")
	}
}
