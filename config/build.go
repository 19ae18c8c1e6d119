package config

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/arcfield/steer/steer"
)

// BuiltSource pairs a constructed steering source with the percept channel
// it reads. Channel routing happens in the harness; the core engine sees
// only the percept slice it is handed.
type BuiltSource struct {
	Source steer.Source
	Target string
}

// BuildSensor constructs the receptor ring described by the sensor section.
func (c *Config) BuildSensor() (steer.Sensor, error) {
	plane, err := steer.ParsePlane(c.Sensor.Plane)
	if err != nil {
		return nil, err
	}
	return steer.NewCircleSensor(c.Sensor.Receptors, plane, c.Sensor.Sensitivity, c.Sensor.Magnitude), nil
}

// Build constructs the behaviour list in configured order.
func (c *Config) Build() ([]BuiltSource, error) {
	out := make([]BuiltSource, 0, len(c.Behaviors))
	for i, bc := range c.Behaviors {
		src, err := buildBehavior(bc)
		if err != nil {
			return nil, fmt.Errorf("behaviors[%d] (%s): %w", i, bc.Type, err)
		}
		target := bc.Target
		if target == "" {
			target = "all"
		}
		out = append(out, BuiltSource{Source: src, Target: target})
	}
	return out, nil
}

func buildBehavior(bc BehaviorConfig) (steer.Source, error) {
	switch bc.Type {
	case "seek":
		s := steer.NewSeek(bc.Objective, bc.ReceptorScaled)
		if err := applyBase(&s.Behavior, bc); err != nil {
			return nil, err
		}
		if err := applyRadius(&s.RadiusFilter, bc); err != nil {
			return nil, err
		}
		return s, nil

	case "flee":
		f := steer.NewFlee(bc.Objective, bc.ReceptorScaled)
		if err := applyBase(&f.Behavior, bc); err != nil {
			return nil, err
		}
		if err := applyRadius(&f.RadiusFilter, bc); err != nil {
			return nil, err
		}
		return f, nil

	case "follow":
		f := steer.NewFollow(bc.Objective)
		if err := applyBase(&f.Behavior, bc); err != nil {
			return nil, err
		}
		return f, nil

	case "align":
		a := steer.NewAlign(bc.Objective)
		if err := applyBase(&a.Behavior, bc); err != nil {
			return nil, err
		}
		return a, nil

	case "adjust":
		a := steer.NewAdjust(bc.Objective)
		if err := applyBase(&a.Behavior, bc); err != nil {
			return nil, err
		}
		if err := applyRadius(&a.RadiusFilter, bc); err != nil {
			return nil, err
		}
		return a, nil

	case "arrive":
		a := steer.NewArrive(bc.Objective)
		if err := applyBase(&a.Behavior, bc); err != nil {
			return nil, err
		}
		a.InnerRadius = bc.InnerRadius
		a.OuterRadius = bc.OuterRadius
		if bc.RadiusMapping != "" {
			kind, err := steer.ParseMappingKind(bc.RadiusMapping)
			if err != nil {
				return nil, err
			}
			a.RadiusMapping = kind
		}
		if bc.BaseMagnitude != 0 {
			a.BaseMagnitude = bc.BaseMagnitude
		}
		return a, nil

	case "stabilization":
		s := steer.NewStabilization(bc.Objective)
		if bc.AngleMapping != "" {
			kind, err := steer.ParseMappingKind(bc.AngleMapping)
			if err != nil {
				return nil, err
			}
			s.AngleMapping = kind
		}
		if bc.MaxAngle != 0 {
			s.MaxAngle = bc.MaxAngle
		}
		if bc.MaxIncrease != 0 {
			s.MaxIncrease = bc.MaxIncrease
		}
		if bc.UseVelocity != nil {
			s.UseVelocity = *bc.UseVelocity
		}
		if len(bc.LocalDirection) == 3 {
			s.LocalDirection = r3.Vec{X: bc.LocalDirection[0], Y: bc.LocalDirection[1], Z: bc.LocalDirection[2]}
		} else if len(bc.LocalDirection) != 0 {
			return nil, fmt.Errorf("local_direction needs 3 components, got %d", len(bc.LocalDirection))
		}
		if bc.Plane != "" {
			plane, err := steer.ParsePlane(bc.Plane)
			if err != nil {
				return nil, err
			}
			s.Plane = plane
		}
		return s, nil

	case "retention":
		if len(bc.Objectives) == 0 {
			return nil, fmt.Errorf("retention needs a non-empty objectives list")
		}
		return steer.NewRetention(bc.MemoryFactor, bc.Objectives...), nil

	default:
		return nil, fmt.Errorf("unknown behaviour type %q", bc.Type)
	}
}

// applyBase overrides the constructor defaults with any configured fields.
func applyBase(b *steer.Behavior, bc BehaviorConfig) error {
	if bc.ValueMapping != "" {
		kind, err := steer.ParseMappingKind(bc.ValueMapping)
		if err != nil {
			return err
		}
		b.ValueMapping = kind
	}
	if bc.Rule != "" {
		rule, err := steer.ParseCombineRule(bc.Rule)
		if err != nil {
			return err
		}
		b.Rule = rule
	}
	if bc.Plane != "" {
		plane, err := steer.ParsePlane(bc.Plane)
		if err != nil {
			return err
		}
		b.Plane = plane
	}
	if bc.MagnitudeMultiplier != 0 {
		b.MagnitudeMultiplier = bc.MagnitudeMultiplier
	}
	b.SensitivityOffset = bc.SensitivityOffset
	b.UseSignificance = bc.UseSignificance
	return nil
}

func applyRadius(f *steer.RadiusFilter, bc BehaviorConfig) error {
	f.InnerRadius = bc.InnerRadius
	f.OuterRadius = bc.OuterRadius
	if bc.RadiusMapping != "" {
		kind, err := steer.ParseMappingKind(bc.RadiusMapping)
		if err != nil {
			return err
		}
		f.RadiusMapping = kind
	}
	return nil
}
