package weather

import (
	"fmt"
	"strings"
)

// Units selects the measurement system for provider responses, mirroring
// OpenWeather's "units" query parameter.
type Units string

const (
	UnitsStandard Units = "standard" // Kelvin, m/s
	UnitsMetric   Units = "metric"   // Celsius, m/s
	UnitsImperial Units = "imperial" // Fahrenheit, mph
)

// ParseUnits maps a caller-supplied unit system to a Units value, falling
// back to def when s is empty.
func ParseUnits(s string, def Units) (Units, error) {
	switch Units(strings.ToLower(s)) {
	case "":
		return def, nil
	case UnitsStandard, UnitsMetric, UnitsImperial:
		return Units(strings.ToLower(s)), nil
	}
	return "", fmt.Errorf("unknown unit system %q (want standard, metric, or imperial)", s)
}

// TempSuffix returns the display suffix for temperatures in this system.
func (u Units) TempSuffix() string {
	switch u {
	case UnitsMetric:
		return "°C"
	case UnitsImperial:
		return "°F"
	default:
		return "K"
	}
}

// WindSuffix returns the display suffix for wind speeds in this system.
func (u Units) WindSuffix() string {
	if u == UnitsImperial {
		return "mph"
	}
	return "m/s"
}

// unitClass groups convertible units; conversions never cross classes.
type unitClass int

const (
	classTemperature unitClass = iota
	classSpeed
)

type unitDef struct {
	canonical string
	class     unitClass
}

// unitAliases maps the spellings callers (and models) actually produce to a
// canonical unit.
var unitAliases = map[string]unitDef{
	"c":          {"celsius", classTemperature},
	"celsius":    {"celsius", classTemperature},
	"°c":         {"celsius", classTemperature},
	"f":          {"fahrenheit", classTemperature},
	"fahrenheit": {"fahrenheit", classTemperature},
	"°f":         {"fahrenheit", classTemperature},
	"k":          {"kelvin", classTemperature},
	"kelvin":     {"kelvin", classTemperature},
	"m/s":        {"m/s", classSpeed},
	"ms":         {"m/s", classSpeed},
	"mps":        {"m/s", classSpeed},
	"mph":        {"mph", classSpeed},
	"km/h":       {"km/h", classSpeed},
	"kmh":        {"km/h", classSpeed},
	"kph":        {"km/h", classSpeed},
}

// Convert converts value between two units of the same class.
// Temperatures route through Celsius, speeds through m/s.
func Convert(value float64, fromUnit, toUnit string) (ConversionResult, error) {
	from, ok := unitAliases[strings.ToLower(strings.TrimSpace(fromUnit))]
	if !ok {
		return ConversionResult{}, fmt.Errorf("unsupported unit %q", fromUnit)
	}
	to, ok := unitAliases[strings.ToLower(strings.TrimSpace(toUnit))]
	if !ok {
		return ConversionResult{}, fmt.Errorf("unsupported unit %q", toUnit)
	}
	if from.class != to.class {
		return ConversionResult{}, fmt.Errorf("cannot convert %s to %s", from.canonical, to.canonical)
	}

	var out float64
	switch from.class {
	case classTemperature:
		celsius := toCelsius(value, from.canonical)
		out = fromCelsius(celsius, to.canonical)
	case classSpeed:
		ms := toMetersPerSecond(value, from.canonical)
		out = fromMetersPerSecond(ms, to.canonical)
	}
	return ConversionResult{Value: out, Unit: to.canonical}, nil
}

func toCelsius(v float64, unit string) float64 {
	switch unit {
	case "fahrenheit":
		return (v - 32) * 5 / 9
	case "kelvin":
		return v - 273.15
	default:
		return v
	}
}

func fromCelsius(c float64, unit string) float64 {
	switch unit {
	case "fahrenheit":
		return c*9/5 + 32
	case "kelvin":
		return c + 273.15
	default:
		return c
	}
}

func toMetersPerSecond(v float64, unit string) float64 {
	switch unit {
	case "mph":
		return v * 0.44704
	case "km/h":
		return v / 3.6
	default:
		return v
	}
}

func fromMetersPerSecond(ms float64, unit string) float64 {
	switch unit {
	case "mph":
		return ms / 0.44704
	case "km/h":
		return ms * 3.6
	default:
		return ms
	}
}
