package tools

import (
	"context"

	"weather-agent/internal/api"
	"weather-agent/internal/weather"
	"weather-agent/internal/weatherapi"
)

// CurrentWeatherTool fetches current conditions for a location.
type CurrentWeatherTool struct {
	client       weatherapi.Requester
	defaultUnits weather.Units
}

var _ Executor = (*CurrentWeatherTool)(nil)

func NewCurrentWeatherTool(client weatherapi.Requester, defaultUnits weather.Units) *CurrentWeatherTool {
	return &CurrentWeatherTool{client: client, defaultUnits: defaultUnits}
}

type currentWeatherArgs struct {
	LocationArgs
	Units string `json:"units,omitempty" validate:"omitempty,oneof=standard metric imperial"`
}

func (t *CurrentWeatherTool) Definition() Definition {
	props := locationSchema()
	props["units"] = unitsSchema()
	return Definition{
		Tool: NewFunctionTool(
			ToolCurrentWeather,
			"Get the current weather conditions (temperature, feels-like, condition, wind, humidity) for a location.",
			JSONSchema{Type: "object", Properties: props},
		),
		RequiresLocation: true,
	}
}

func (t *CurrentWeatherTool) NewArgs() any { return &currentWeatherArgs{} }

func (t *CurrentWeatherTool) Execute(ctx context.Context, args any) (any, error) {
	a := args.(*currentWeatherArgs)

	units, err := weather.ParseUnits(a.Units, t.defaultUnits)
	if err != nil {
		return nil, api.NewToolError(api.ErrInvalidArguments, err.Error(), false)
	}

	params := a.coordParams()
	params.Set("units", string(units))

	raw, err := t.client.Request(ctx, weatherapi.EndpointCurrentWeather, params)
	if err != nil {
		return nil, err
	}

	conditions, err := weather.NormalizeCurrent(raw, units)
	if err != nil {
		return nil, err
	}
	conditions.Location = a.Location()
	return conditions, nil
}

// unitsSchema is the shared schema node for the unit-system parameter.
func unitsSchema() *JSONSchema {
	return &JSONSchema{
		Type:        "string",
		Description: "Unit system for temperatures and wind speeds. Defaults to the configured system.",
		Enum:        []string{"standard", "metric", "imperial"},
	}
}
