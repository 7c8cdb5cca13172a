// Package weather defines the normalized domain records produced from raw
// OpenWeather payloads, the pure normalization functions that build them,
// and the unit/time utilities they share. Nothing in this package performs
// I/O; given identical input, every function returns identical output.
package weather

import "time"

// Location is the resolved addressing key for all weather lookups. It is
// produced by geocoding and immutable once returned.
type Location struct {
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CurrentConditions is an immutable snapshot of the weather at a location,
// recreated on every call. ObservedAt carries the location's UTC offset so
// it renders as local time.
type CurrentConditions struct {
	Location        Location  `json:"location"`
	Temperature     float64   `json:"temperature"`
	FeelsLike       float64   `json:"feels_like"`
	Condition       string    `json:"condition"`
	Description     string    `json:"description"`
	WindSpeed       float64   `json:"wind_speed"`
	// WindDirection is nil when the provider omits it (calm wind); a stored
	// zero would be indistinguishable from due north.
	WindDirection   *int      `json:"wind_direction,omitempty"`
	Humidity        int       `json:"humidity"`
	ObservedAt      time.Time `json:"observed_at"`
	Units           Units     `json:"units"`
	TemperatureUnit string    `json:"temperature_unit"`
	WindSpeedUnit   string    `json:"wind_speed_unit"`
}

// ForecastEntry is one time-stamped snapshot in a forecast sequence.
// Sequences are always ordered by ascending Timestamp.
type ForecastEntry struct {
	Timestamp         time.Time `json:"timestamp"`
	Temperature       float64   `json:"temperature"`
	FeelsLike         float64   `json:"feels_like"`
	TempMin           float64   `json:"temp_min"`
	TempMax           float64   `json:"temp_max"`
	Condition         string    `json:"condition"`
	Description       string    `json:"description"`
	PrecipProbability float64   `json:"precipitation_probability"` // percent, 0-100
	WindSpeed         float64   `json:"wind_speed"`
	Humidity          int       `json:"humidity"`
	Units             Units     `json:"units"`
}

// AirQuality reports the provider's AQI category (1 best to 5 worst) and
// per-pollutant concentrations in µg/m³.
type AirQuality struct {
	AQI        int                `json:"aqi"`
	Pollutants map[string]float64 `json:"pollutant_levels"`
	MeasuredAt time.Time          `json:"measured_at"`
}

// ConversionResult is the output of the convert_units tool.
type ConversionResult struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}
