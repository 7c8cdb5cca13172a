package tools

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weather-agent/internal/api"
	"weather-agent/internal/weather"
)

func newTestRegistry() *Registry {
	requester := &fakeRequester{responses: nil, errs: nil}
	return NewWeatherRegistry(requester, weather.UnitsMetric)
}

func TestWeatherRegistryDefinitions(t *testing.T) {
	registry := newTestRegistry()
	assert.Equal(t, 5, registry.Count())

	defs := registry.Definitions()
	require.Len(t, defs, 5)

	wantOrder := []string{ToolGeocode, ToolCurrentWeather, ToolForecast, ToolAirQuality, ToolConvertUnits}
	for i, def := range defs {
		assert.Equal(t, wantOrder[i], def.Function.Name)
		assert.Equal(t, ToolTypeFunction, def.Type)
		assert.NotEmpty(t, def.Function.Description, "%s needs a description for the model", def.Function.Name)
		assert.Equal(t, "object", def.Function.Parameters.Type)
		assert.NotEmpty(t, def.Function.Parameters.Properties, "%s declares no parameters", def.Function.Name)
	}
}

func TestRegistryLookup(t *testing.T) {
	registry := newTestRegistry()

	executor, ok := registry.Lookup(ToolConvertUnits)
	require.True(t, ok)
	assert.Equal(t, ToolConvertUnits, executor.Definition().Function.Name)

	_, ok = registry.Lookup("no_such_tool")
	assert.False(t, ok)
}

func TestLocationDependencyFlags(t *testing.T) {
	registry := newTestRegistry()

	wantsLocation := map[string]bool{
		ToolGeocode:        false,
		ToolCurrentWeather: true,
		ToolForecast:       true,
		ToolAirQuality:     true,
		ToolConvertUnits:   false,
	}
	for name, want := range wantsLocation {
		executor, ok := registry.Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, want, executor.Definition().RequiresLocation, name)
	}
}

func TestParseArgsValid(t *testing.T) {
	registry := newTestRegistry()
	executor, _ := registry.Lookup(ToolCurrentWeather)

	args, err := registry.ParseArgs(executor, json.RawMessage(`{"location_name":"Paris","units":"imperial"}`))
	require.NoError(t, err)

	parsed, ok := args.(*currentWeatherArgs)
	require.True(t, ok)
	assert.Equal(t, "Paris", parsed.LocationName)
	assert.Equal(t, "imperial", parsed.Units)
	assert.True(t, parsed.NeedsGeocoding())
}

func TestParseArgsCoordinatesOnly(t *testing.T) {
	registry := newTestRegistry()
	executor, _ := registry.Lookup(ToolAirQuality)

	args, err := registry.ParseArgs(executor, json.RawMessage(`{"latitude":48.85,"longitude":2.35}`))
	require.NoError(t, err)

	parsed, ok := args.(*airQualityArgs)
	require.True(t, ok)
	assert.False(t, parsed.NeedsGeocoding())
}

func TestParseArgsRejections(t *testing.T) {
	registry := newTestRegistry()

	cases := []struct {
		name string
		tool string
		raw  string
	}{
		{"malformed json", ToolGeocode, `{"location_name":`},
		{"wrong type", ToolForecast, `{"location_name":"Paris","horizon_days":"three"}`},
		{"missing required", ToolGeocode, `{}`},
		{"latitude out of range", ToolCurrentWeather, `{"latitude":95,"longitude":0}`},
		{"latitude without longitude", ToolCurrentWeather, `{"latitude":10}`},
		{"unknown unit system", ToolCurrentWeather, `{"location_name":"Paris","units":"nautical"}`},
		{"missing conversion value", ToolConvertUnits, `{"from_unit":"C","to_unit":"F"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			executor, ok := registry.Lookup(tc.tool)
			require.True(t, ok)

			_, err := registry.ParseArgs(executor, json.RawMessage(tc.raw))
			require.Error(t, err)
			terr := api.AsToolError(err)
			require.NotNil(t, terr)
			assert.Equal(t, api.ErrInvalidArguments, terr.Kind)
			assert.False(t, terr.Retryable)
		})
	}
}

func TestParseArgsExplicitZeroValue(t *testing.T) {
	registry := newTestRegistry()
	executor, _ := registry.Lookup(ToolConvertUnits)

	// An explicit zero passes the required rule because Value decodes
	// through a pointer.
	args, err := registry.ParseArgs(executor, json.RawMessage(`{"value":0,"from_unit":"C","to_unit":"F"}`))
	require.NoError(t, err)

	parsed := args.(*convertUnitsArgs)
	require.NotNil(t, parsed.Value)
	assert.Equal(t, 0.0, *parsed.Value)
}

func TestParseArgsEmptyAndNullPayloads(t *testing.T) {
	registry := newTestRegistry()
	executor, _ := registry.Lookup(ToolGeocode)

	for _, raw := range []json.RawMessage{nil, json.RawMessage(``), json.RawMessage(`null`)} {
		_, err := registry.ParseArgs(executor, raw)
		terr := api.AsToolError(err)
		require.NotNil(t, terr, "payload %q", string(raw))
		assert.Equal(t, api.ErrInvalidArguments, terr.Kind)
	}
}
