package tools

import (
	"net/url"
	"strconv"

	"weather-agent/internal/weather"
)

// LocationArgs is the shared argument block for every tool that addresses a
// location. Callers supply either a free-text place name or explicit
// coordinates; when only a name is given, the dispatcher resolves it through
// the geocode tool before Execute runs.
type LocationArgs struct {
	LocationName string   `json:"location_name,omitempty" validate:"required_without=Latitude"`
	Latitude     *float64 `json:"latitude,omitempty" validate:"required_without=LocationName,omitempty,gte=-90,lte=90"`
	Longitude    *float64 `json:"longitude,omitempty" validate:"required_with=Latitude,omitempty,gte=-180,lte=180"`

	resolved *weather.Location
}

// NeedsGeocoding reports whether the arguments still lack usable coordinates.
func (a *LocationArgs) NeedsGeocoding() bool {
	return a.Latitude == nil || a.Longitude == nil
}

// Place returns the free-text name to geocode.
func (a *LocationArgs) Place() string { return a.LocationName }

// Resolve threads a geocoded Location into the arguments.
func (a *LocationArgs) Resolve(loc weather.Location) {
	a.resolved = &loc
	a.Latitude = &loc.Latitude
	a.Longitude = &loc.Longitude
}

// Location returns the effective location of the call: the geocoded result
// when one was resolved, otherwise a record built from the raw coordinates.
func (a *LocationArgs) Location() weather.Location {
	if a.resolved != nil {
		return *a.resolved
	}
	return weather.Location{
		Name:      a.LocationName,
		Latitude:  *a.Latitude,
		Longitude: *a.Longitude,
	}
}

// coordParams renders the coordinates as provider query parameters.
func (a *LocationArgs) coordParams() url.Values {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(*a.Latitude, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(*a.Longitude, 'f', -1, 64))
	return params
}

// locationSchema returns the shared schema properties for location-addressed
// tools; callers extend the returned map with their own parameters.
func locationSchema() map[string]*JSONSchema {
	return map[string]*JSONSchema{
		"location_name": {
			Type:        "string",
			Description: "Free-text place name, e.g. \"Paris\" or \"Dhaka, BD\". Used when latitude/longitude are not provided.",
		},
		"latitude": {
			Type:        "number",
			Description: "Latitude in degrees, between -90 and 90.",
		},
		"longitude": {
			Type:        "number",
			Description: "Longitude in degrees, between -180 and 180.",
		},
	}
}
