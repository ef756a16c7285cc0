package home

import (
	"fmt"
	"time"

	"github.com/smartdom/smartdom-core/internal/catalog"
)

// GasStatus is the derived CO2 concentration bucket for gas sensors.
type GasStatus string

const (
	GasStatusOutdoorAir  GasStatus = "outdoor_air"
	GasStatusRecommended GasStatus = "recommended"
	GasStatusElevated    GasStatus = "elevated"
	GasStatusCritical    GasStatus = "critical"
)

// Gas concentration thresholds, CO2 ppm. Boundary values resolve to the
// lower bucket (<= convention).
const (
	gasOutdoorAirMax  = 400.0
	gasRecommendedMax = 1000.0
	gasElevatedMax    = 1500.0
)

// GasStatusFor buckets a CO2 reading into a status. Pure function of ppm.
func GasStatusFor(ppm float64) GasStatus {
	switch {
	case ppm <= gasOutdoorAirMax:
		return GasStatusOutdoorAir
	case ppm <= gasRecommendedMax:
		return GasStatusRecommended
	case ppm <= gasElevatedMax:
		return GasStatusElevated
	default:
		return GasStatusCritical
	}
}

// Default values for freshly provisioned sensors.
const (
	defaultTemperature = 20.0 // room temperature
	defaultGasPPM      = 400.0
	defaultHumidity    = 50.0 // comfortable indoor humidity
)

// kindSpec describes the per-kind behaviour: initial field values at
// provisioning time and how an incoming reading mutates the row.
type kindSpec struct {
	setDefaults func(s *Sensor, now time.Time)
	apply       func(s *Sensor, r Reading) error
}

var kindRegistry = map[catalog.Kind]kindSpec{
	catalog.KindTemperature: {
		setDefaults: func(s *Sensor, _ time.Time) {
			s.Value = ptr(defaultTemperature)
		},
		apply: func(s *Sensor, r Reading) error {
			if r.Value == nil {
				return fmt.Errorf("%w: temperature value is required", ErrInvalidReading)
			}
			s.Value = r.Value
			return nil
		},
	},
	catalog.KindLight: {
		setDefaults: func(s *Sensor, _ time.Time) {
			s.IsOn = ptrBool(false)
		},
		apply: func(s *Sensor, r Reading) error {
			on := r.IsOn
			if on == nil && r.Value != nil {
				on = ptrBool(*r.Value != 0)
			}
			if on == nil {
				return fmt.Errorf("%w: light state is required", ErrInvalidReading)
			}
			s.IsOn = on
			return nil
		},
	},
	catalog.KindGas: {
		setDefaults: func(s *Sensor, _ time.Time) {
			s.PPM = ptr(defaultGasPPM)
			s.GasStatus = GasStatusFor(defaultGasPPM)
		},
		apply: func(s *Sensor, r Reading) error {
			ppm := coalesce(r.PPM, r.Value)
			if ppm == nil {
				return fmt.Errorf("%w: gas ppm is required", ErrInvalidReading)
			}
			s.PPM = ppm
			s.GasStatus = GasStatusFor(*ppm)
			return nil
		},
	},
	catalog.KindHumidity: {
		setDefaults: func(s *Sensor, _ time.Time) {
			s.HumidityLevel = ptr(defaultHumidity)
		},
		apply: func(s *Sensor, r Reading) error {
			level := coalesce(r.HumidityLevel, r.Value)
			if level == nil {
				return fmt.Errorf("%w: humidity level is required", ErrInvalidReading)
			}
			s.HumidityLevel = level
			return nil
		},
	},
	catalog.KindVentilation: {
		setDefaults: func(s *Sensor, _ time.Time) {
			s.IsOn = ptrBool(false)
			s.FanSpeed = ptr(0.0)
		},
		apply: func(s *Sensor, r Reading) error {
			speed := coalesce(r.FanSpeed, r.Value)
			if speed == nil || r.IsOn == nil {
				return fmt.Errorf("%w: ventilation fan_speed and is_on are required", ErrInvalidReading)
			}
			s.FanSpeed = speed
			s.IsOn = r.IsOn
			return nil
		},
	},
	catalog.KindMotion: {
		setDefaults: func(s *Sensor, now time.Time) {
			t := now
			s.TriggerTime = &t
		},
		apply: func(s *Sensor, r Reading) error {
			t := r.TriggerTime
			if t == nil {
				now := time.Now().UTC()
				t = &now
			}
			s.TriggerTime = t
			return nil
		},
	},
}

// NewDefaultSensor builds a sensor row with the kind's default values.
// This is what the provisioning engine inserts before any telemetry arrives.
func NewDefaultSensor(kind catalog.Kind, roomID int64, number int, now time.Time) (*Sensor, error) {
	spec, ok := kindRegistry[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	s := &Sensor{
		RoomID: roomID,
		Kind:   kind,
		Number: number,
	}
	spec.setDefaults(s, now)
	return s, nil
}

// ApplyReading mutates a sensor's kind-specific fields from an incoming
// reading. Fields belonging to other kinds are left untouched.
func ApplyReading(s *Sensor, r Reading) error {
	spec, ok := kindRegistry[s.Kind]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKind, s.Kind)
	}
	return spec.apply(s, r)
}

// coalesce returns the first non-nil of the two pointers.
func coalesce(a, b *float64) *float64 {
	if a != nil {
		return a
	}
	return b
}

func ptr(f float64) *float64 { return &f }

func ptrBool(b bool) *bool { return &b }
