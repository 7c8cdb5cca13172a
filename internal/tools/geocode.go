package tools

import (
	"context"
	"net/url"

	"weather-agent/internal/weather"
	"weather-agent/internal/weatherapi"
)

// GeocodeTool resolves a free-text place name to coordinates. It is both a
// caller-facing tool and the dependency the dispatcher invokes when another
// tool receives a place name instead of coordinates.
type GeocodeTool struct {
	client weatherapi.Requester
}

var _ Executor = (*GeocodeTool)(nil)

func NewGeocodeTool(client weatherapi.Requester) *GeocodeTool {
	return &GeocodeTool{client: client}
}

type geocodeArgs struct {
	LocationName string `json:"location_name" validate:"required"`
}

func (t *GeocodeTool) Definition() Definition {
	return Definition{
		Tool: NewFunctionTool(
			ToolGeocode,
			"Resolve a free-text place name to geographic coordinates and a normalized name.",
			JSONSchema{
				Type: "object",
				Properties: map[string]*JSONSchema{
					"location_name": {
						Type:        "string",
						Description: "The place to geocode, e.g. \"Paris\", \"New York, US\", \"Tokyo, Japan\".",
					},
				},
				Required: []string{"location_name"},
			},
		),
	}
}

func (t *GeocodeTool) NewArgs() any { return &geocodeArgs{} }

func (t *GeocodeTool) Execute(ctx context.Context, args any) (any, error) {
	a := args.(*geocodeArgs)

	params := url.Values{}
	params.Set("q", a.LocationName)
	params.Set("limit", "1")

	raw, err := t.client.Request(ctx, weatherapi.EndpointGeocode, params)
	if err != nil {
		return nil, err
	}
	return weather.NormalizeLocation(raw)
}
