// Package main provides CMA-ES tuning for steering behaviour gains.
package main

import (
	"github.com/arcfield/steer/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tunable behaviour gains.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "seek_gain", Path: "behaviors.seek.magnitude_multiplier", Min: 0.2, Max: 3.0, Default: 1.0},
			{Name: "flee_gain", Path: "behaviors.flee.magnitude_multiplier", Min: 0.2, Max: 3.0, Default: 1.0},
			{Name: "flee_outer", Path: "behaviors.flee.outer_radius", Min: 40, Max: 400, Default: 160},
			{Name: "adjust_gain", Path: "behaviors.adjust.magnitude_multiplier", Min: 0.0, Max: 2.0, Default: 0.3},
			{Name: "adjust_outer", Path: "behaviors.adjust.outer_radius", Min: 20, Max: 200, Default: 80},
			{Name: "stabilize_increase", Path: "behaviors.stabilization.max_increase", Min: 0.0, Max: 1.0, Default: 0.2},
			{Name: "memory_factor", Path: "behaviors.retention.memory_factor", Min: 0.0, Max: 0.95, Default: 0.4},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	for i := range cfg.Behaviors {
		b := &cfg.Behaviors[i]
		switch b.Type {
		case "seek":
			b.MagnitudeMultiplier = clamped[0]
		case "flee":
			b.MagnitudeMultiplier = clamped[1]
			b.OuterRadius = clamped[2]
		case "adjust":
			b.MagnitudeMultiplier = clamped[3]
			b.OuterRadius = clamped[4]
		case "stabilization":
			b.MaxIncrease = clamped[5]
		case "retention":
			b.MemoryFactor = clamped[6]
		}
	}
}

// ExtractFromConfig extracts current parameter values from a Config struct,
// falling back to defaults for behaviours the config does not carry.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	v := pv.DefaultVector()
	for _, b := range cfg.Behaviors {
		switch b.Type {
		case "seek":
			if b.MagnitudeMultiplier != 0 {
				v[0] = b.MagnitudeMultiplier
			}
		case "flee":
			if b.MagnitudeMultiplier != 0 {
				v[1] = b.MagnitudeMultiplier
			}
			if b.OuterRadius != 0 {
				v[2] = b.OuterRadius
			}
		case "adjust":
			if b.MagnitudeMultiplier != 0 {
				v[3] = b.MagnitudeMultiplier
			}
			if b.OuterRadius != 0 {
				v[4] = b.OuterRadius
			}
		case "stabilization":
			if b.MaxIncrease != 0 {
				v[5] = b.MaxIncrease
			}
		case "retention":
			v[6] = b.MemoryFactor
		}
	}
	return v
}
