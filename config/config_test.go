package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arcfield/steer/steer"
)

func TestLoadEmbeddedDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Sensor.Receptors != 16 {
		t.Errorf("receptors = %d, want 16", cfg.Sensor.Receptors)
	}
	if cfg.Objectives.Count != 2 {
		t.Errorf("objective count = %d, want 2", cfg.Objectives.Count)
	}
	if len(cfg.Behaviors) == 0 {
		t.Fatal("default behaviour list is empty")
	}
	if cfg.Derived.DT <= 0 {
		t.Errorf("derived DT = %f, want positive", cfg.Derived.DT)
	}
	if cfg.Derived.GridCellSize != cfg.World.PerceptionRadius {
		t.Errorf("grid cell size = %f, want perception radius %f", cfg.Derived.GridCellSize, cfg.World.PerceptionRadius)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	data := []byte("sensor:\n  receptors: 8\nworld:\n  tick_rate: 60\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Sensor.Receptors != 8 {
		t.Errorf("receptors = %d, want 8", cfg.Sensor.Receptors)
	}
	if cfg.Derived.DT != 1.0/60 {
		t.Errorf("DT = %f, want %f", cfg.Derived.DT, 1.0/60)
	}
	// Untouched sections keep their defaults.
	if len(cfg.Behaviors) == 0 {
		t.Error("file override dropped the default behaviours")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/steer.yaml"); err == nil {
		t.Error("Load of missing file should fail")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.World.Agents = 7

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load written file: %v", err)
	}
	if back.World.Agents != 7 {
		t.Errorf("agents after round trip = %d, want 7", back.World.Agents)
	}
}

func TestBuildDefaultBehaviors(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	sources, err := cfg.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(sources) != len(cfg.Behaviors) {
		t.Fatalf("built %d sources from %d behaviours", len(sources), len(cfg.Behaviors))
	}

	// Order must match the list order.
	if _, ok := sources[0].Source.(*steer.Seek); !ok {
		t.Errorf("first source is %T, want *steer.Seek", sources[0].Source)
	}
	if sources[0].Target != "goal" {
		t.Errorf("first target = %q, want goal", sources[0].Target)
	}
	if _, ok := sources[len(sources)-1].Source.(*steer.Retention); !ok {
		t.Errorf("last source is %T, want *steer.Retention", sources[len(sources)-1].Source)
	}
}

func TestBuildAppliesOverrides(t *testing.T) {
	cfg := &Config{
		Behaviors: []BehaviorConfig{{
			Type:                "seek",
			Objective:           0,
			ValueMapping:        "linear",
			Rule:                "addition",
			Plane:               "xz",
			MagnitudeMultiplier: 2,
			InnerRadius:         1,
			OuterRadius:         50,
			RadiusMapping:       "inverse_quadratic",
		}},
	}

	sources, err := cfg.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	seek, ok := sources[0].Source.(*steer.Seek)
	if !ok {
		t.Fatalf("source is %T, want *steer.Seek", sources[0].Source)
	}
	if seek.ValueMapping != steer.MappingLinear {
		t.Errorf("value mapping = %v", seek.ValueMapping)
	}
	if seek.Rule != steer.Addition {
		t.Errorf("rule = %v", seek.Rule)
	}
	if seek.Plane != steer.PlaneXZ {
		t.Errorf("plane = %v", seek.Plane)
	}
	if seek.MagnitudeMultiplier != 2 {
		t.Errorf("magnitude multiplier = %f", seek.MagnitudeMultiplier)
	}
	if seek.OuterRadius != 50 || seek.InnerRadius != 1 {
		t.Errorf("radii = %f..%f", seek.InnerRadius, seek.OuterRadius)
	}
	if seek.RadiusMapping != steer.MappingInverseQuadratic {
		t.Errorf("radius mapping = %v", seek.RadiusMapping)
	}
}

func TestBuildRejectsBadNames(t *testing.T) {
	cases := []BehaviorConfig{
		{Type: "warp"},
		{Type: "seek", ValueMapping: "bogus"},
		{Type: "seek", Rule: "bogus"},
		{Type: "seek", Plane: "bogus"},
		{Type: "retention"},
		{Type: "stabilization", LocalDirection: []float64{1, 2}},
	}
	for _, bc := range cases {
		cfg := &Config{Behaviors: []BehaviorConfig{bc}}
		if _, err := cfg.Build(); err == nil {
			t.Errorf("Build(%+v) should fail", bc)
		}
	}
}

func TestBuildSensor(t *testing.T) {
	cfg := &Config{Sensor: SensorConfig{Receptors: 8, Plane: "xy"}}
	sensor, err := cfg.BuildSensor()
	if err != nil {
		t.Fatalf("BuildSensor: %v", err)
	}
	if sensor.ReceptorCount() != 8 {
		t.Errorf("receptor count = %d, want 8", sensor.ReceptorCount())
	}

	cfg.Sensor.Plane = "bogus"
	if _, err := cfg.BuildSensor(); err == nil {
		t.Error("BuildSensor with bad plane should fail")
	}
}
