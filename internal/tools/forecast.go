package tools

import (
	"context"
	"strconv"

	"weather-agent/internal/api"
	"weather-agent/internal/weather"
	"weather-agent/internal/weatherapi"
)

// entriesPerDay is the number of 3-hour forecast slots in one day.
const entriesPerDay = 8

// ForecastTool fetches the 3-hourly forecast for a location over a bounded
// horizon. The provider supports at most 5 days.
type ForecastTool struct {
	client       weatherapi.Requester
	defaultUnits weather.Units
}

var _ Executor = (*ForecastTool)(nil)

func NewForecastTool(client weatherapi.Requester, defaultUnits weather.Units) *ForecastTool {
	return &ForecastTool{client: client, defaultUnits: defaultUnits}
}

type forecastArgs struct {
	LocationArgs
	HorizonDays int    `json:"horizon_days" validate:"required,gte=1,lte=5"`
	Units       string `json:"units,omitempty" validate:"omitempty,oneof=standard metric imperial"`
}

func (t *ForecastTool) Definition() Definition {
	props := locationSchema()
	props["horizon_days"] = &JSONSchema{
		Type:        "integer",
		Description: "How many days ahead to forecast, between 1 and 5.",
	}
	props["units"] = unitsSchema()
	return Definition{
		Tool: NewFunctionTool(
			ToolForecast,
			"Get the weather forecast in 3-hour steps for the next 1 to 5 days for a location.",
			JSONSchema{Type: "object", Properties: props, Required: []string{"horizon_days"}},
		),
		RequiresLocation: true,
	}
}

func (t *ForecastTool) NewArgs() any { return &forecastArgs{} }

func (t *ForecastTool) Execute(ctx context.Context, args any) (any, error) {
	a := args.(*forecastArgs)

	units, err := weather.ParseUnits(a.Units, t.defaultUnits)
	if err != nil {
		return nil, api.NewToolError(api.ErrInvalidArguments, err.Error(), false)
	}

	params := a.coordParams()
	params.Set("units", string(units))
	params.Set("cnt", strconv.Itoa(a.HorizonDays*entriesPerDay))

	raw, err := t.client.Request(ctx, weatherapi.EndpointForecast, params)
	if err != nil {
		return nil, err
	}
	return weather.NormalizeForecast(raw, units)
}
