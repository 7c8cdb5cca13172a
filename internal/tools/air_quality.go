package tools

import (
	"context"

	"weather-agent/internal/weather"
	"weather-agent/internal/weatherapi"
)

// AirQualityTool fetches the current air quality index and pollutant
// concentrations for a location.
type AirQualityTool struct {
	client weatherapi.Requester
}

var _ Executor = (*AirQualityTool)(nil)

func NewAirQualityTool(client weatherapi.Requester) *AirQualityTool {
	return &AirQualityTool{client: client}
}

type airQualityArgs struct {
	LocationArgs
}

func (t *AirQualityTool) Definition() Definition {
	return Definition{
		Tool: NewFunctionTool(
			ToolAirQuality,
			"Get the current air quality index (1 best to 5 worst) and pollutant concentrations for a location.",
			JSONSchema{Type: "object", Properties: locationSchema()},
		),
		RequiresLocation: true,
	}
}

func (t *AirQualityTool) NewArgs() any { return &airQualityArgs{} }

func (t *AirQualityTool) Execute(ctx context.Context, args any) (any, error) {
	a := args.(*airQualityArgs)

	raw, err := t.client.Request(ctx, weatherapi.EndpointAirQuality, a.coordParams())
	if err != nil {
		return nil, err
	}
	return weather.NormalizeAirQuality(raw)
}
