package weather

import (
	"encoding/json"
	"sort"
	"time"

	"weather-agent/internal/api"
)

// The normalizers below map provider-specific payloads into the stable
// internal schema. Required fields are decoded through pointers so that an
// absent field is distinguishable from a zero value: a missing field is a
// schema_mismatch error, never a silent default.

// NormalizeLocation maps an OpenWeather direct-geocoding response (a JSON
// array of candidates) to the best-match Location.
func NormalizeLocation(raw json.RawMessage) (Location, error) {
	var results []struct {
		Name    *string  `json:"name"`
		State   string   `json:"state"`
		Country string   `json:"country"`
		Lat     *float64 `json:"lat"`
		Lon     *float64 `json:"lon"`
	}
	if err := json.Unmarshal(raw, &results); err != nil {
		return Location{}, api.Errorf(api.ErrSchemaMismatch, false, "geocoding payload is not a candidate list: %v", err)
	}
	if len(results) == 0 {
		return Location{}, api.NewToolError(api.ErrProvider, "no geocoding results for the requested place", false)
	}

	r := results[0]
	if r.Name == nil || r.Lat == nil || r.Lon == nil {
		return Location{}, api.NewToolError(api.ErrSchemaMismatch, "geocoding candidate is missing name or coordinates", false)
	}
	if *r.Lat < -90 || *r.Lat > 90 || *r.Lon < -180 || *r.Lon > 180 {
		return Location{}, api.Errorf(api.ErrSchemaMismatch, false, "geocoding candidate has out-of-range coordinates (%f, %f)", *r.Lat, *r.Lon)
	}

	name := *r.Name
	if r.State != "" {
		name += ", " + r.State
	}
	return Location{
		Name:      name,
		Country:   r.Country,
		Latitude:  *r.Lat,
		Longitude: *r.Lon,
	}, nil
}

// NormalizeCurrent maps an OpenWeather current-weather payload to a
// CurrentConditions snapshot. The Location field is left for the caller,
// which knows whether the coordinates came from geocoding or directly from
// the arguments.
func NormalizeCurrent(raw json.RawMessage, units Units) (CurrentConditions, error) {
	var payload struct {
		Dt       *int64 `json:"dt"`
		Timezone int    `json:"timezone"` // shift from UTC in seconds
		Main     *struct {
			Temp      *float64 `json:"temp"`
			FeelsLike *float64 `json:"feels_like"`
			Humidity  *int     `json:"humidity"`
		} `json:"main"`
		Weather []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
		} `json:"weather"`
		Wind struct {
			Speed *float64 `json:"speed"`
			Deg   *int     `json:"deg"` // optional; absent for calm wind
		} `json:"wind"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return CurrentConditions{}, api.Errorf(api.ErrSchemaMismatch, false, "current weather payload is malformed: %v", err)
	}

	switch {
	case payload.Main == nil || payload.Main.Temp == nil:
		return CurrentConditions{}, api.NewToolError(api.ErrSchemaMismatch, "current weather payload is missing main.temp", false)
	case payload.Main.FeelsLike == nil:
		return CurrentConditions{}, api.NewToolError(api.ErrSchemaMismatch, "current weather payload is missing main.feels_like", false)
	case payload.Main.Humidity == nil:
		return CurrentConditions{}, api.NewToolError(api.ErrSchemaMismatch, "current weather payload is missing main.humidity", false)
	case len(payload.Weather) == 0:
		return CurrentConditions{}, api.NewToolError(api.ErrSchemaMismatch, "current weather payload has no condition entry", false)
	case payload.Wind.Speed == nil:
		return CurrentConditions{}, api.NewToolError(api.ErrSchemaMismatch, "current weather payload is missing wind.speed", false)
	case payload.Dt == nil:
		return CurrentConditions{}, api.NewToolError(api.ErrSchemaMismatch, "current weather payload is missing observation time", false)
	}

	return CurrentConditions{
		Temperature:     *payload.Main.Temp,
		FeelsLike:       *payload.Main.FeelsLike,
		Condition:       payload.Weather[0].Main,
		Description:     payload.Weather[0].Description,
		WindSpeed:       *payload.Wind.Speed,
		WindDirection:   payload.Wind.Deg,
		Humidity:        *payload.Main.Humidity,
		ObservedAt:      localTime(*payload.Dt, payload.Timezone),
		Units:           units,
		TemperatureUnit: units.TempSuffix(),
		WindSpeedUnit:   units.WindSuffix(),
	}, nil
}

// NormalizeForecast maps an OpenWeather 5-day/3-hour forecast payload to a
// sequence of ForecastEntry records ordered by ascending timestamp.
func NormalizeForecast(raw json.RawMessage, units Units) ([]ForecastEntry, error) {
	var payload struct {
		List []struct {
			Dt   *int64 `json:"dt"`
			Main *struct {
				Temp      *float64 `json:"temp"`
				FeelsLike float64  `json:"feels_like"`
				TempMin   float64  `json:"temp_min"`
				TempMax   float64  `json:"temp_max"`
				Humidity  int      `json:"humidity"`
			} `json:"main"`
			Weather []struct {
				Main        string `json:"main"`
				Description string `json:"description"`
			} `json:"weather"`
			Wind struct {
				Speed float64 `json:"speed"`
			} `json:"wind"`
			Pop float64 `json:"pop"` // precipitation probability, 0-1
		} `json:"list"`
		City *struct {
			Timezone int `json:"timezone"`
		} `json:"city"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, api.Errorf(api.ErrSchemaMismatch, false, "forecast payload is malformed: %v", err)
	}
	if payload.List == nil {
		return nil, api.NewToolError(api.ErrSchemaMismatch, "forecast payload is missing the entry list", false)
	}
	if len(payload.List) == 0 {
		return nil, api.NewToolError(api.ErrProvider, "no forecast data available", false)
	}

	offset := 0
	if payload.City != nil {
		offset = payload.City.Timezone
	}

	entries := make([]ForecastEntry, 0, len(payload.List))
	for _, item := range payload.List {
		if item.Dt == nil || item.Main == nil || item.Main.Temp == nil {
			return nil, api.NewToolError(api.ErrSchemaMismatch, "forecast entry is missing timestamp or temperature", false)
		}
		if len(item.Weather) == 0 {
			return nil, api.NewToolError(api.ErrSchemaMismatch, "forecast entry has no condition entry", false)
		}
		entries = append(entries, ForecastEntry{
			Timestamp:         localTime(*item.Dt, offset),
			Temperature:       *item.Main.Temp,
			FeelsLike:         item.Main.FeelsLike,
			TempMin:           item.Main.TempMin,
			TempMax:           item.Main.TempMax,
			Condition:         item.Weather[0].Main,
			Description:       item.Weather[0].Description,
			PrecipProbability: item.Pop * 100,
			WindSpeed:         item.Wind.Speed,
			Humidity:          item.Main.Humidity,
			Units:             units,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})
	return entries, nil
}

// NormalizeAirQuality maps an OpenWeather air-pollution payload to an
// AirQuality record. The provider's AQI scale is the 1-5 category range;
// anything outside it means the payload cannot be trusted.
func NormalizeAirQuality(raw json.RawMessage) (AirQuality, error) {
	var payload struct {
		List []struct {
			Dt   *int64 `json:"dt"`
			Main *struct {
				AQI *int `json:"aqi"`
			} `json:"main"`
			Components map[string]float64 `json:"components"`
		} `json:"list"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return AirQuality{}, api.Errorf(api.ErrSchemaMismatch, false, "air quality payload is malformed: %v", err)
	}
	if len(payload.List) == 0 {
		return AirQuality{}, api.NewToolError(api.ErrProvider, "no air quality data available", false)
	}

	entry := payload.List[0]
	if entry.Main == nil || entry.Main.AQI == nil || entry.Dt == nil {
		return AirQuality{}, api.NewToolError(api.ErrSchemaMismatch, "air quality payload is missing aqi or measurement time", false)
	}
	if *entry.Main.AQI < 1 || *entry.Main.AQI > 5 {
		return AirQuality{}, api.Errorf(api.ErrSchemaMismatch, false, "air quality index %d is outside the provider's 1-5 range", *entry.Main.AQI)
	}

	return AirQuality{
		AQI:        *entry.Main.AQI,
		Pollutants: entry.Components,
		MeasuredAt: time.Unix(*entry.Dt, 0).UTC(),
	}, nil
}

// localTime renders a unix timestamp in the fixed zone implied by the
// provider's UTC offset, so observed_at renders as the location's local time.
func localTime(unix int64, offsetSeconds int) time.Time {
	return time.Unix(unix, 0).In(time.FixedZone("local", offsetSeconds))
}
