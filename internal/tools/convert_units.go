package tools

import (
	"context"

	"weather-agent/internal/api"
	"weather-agent/internal/weather"
)

// ConvertUnitsTool performs pure unit conversion. It never touches the
// network, which makes it the cheapest tool the model can call.
type ConvertUnitsTool struct{}

var _ Executor = (*ConvertUnitsTool)(nil)

func NewConvertUnitsTool() *ConvertUnitsTool {
	return &ConvertUnitsTool{}
}

type convertUnitsArgs struct {
	// Value is a pointer so that an explicit 0 is distinguishable from an
	// omitted field under the required rule.
	Value    *float64 `json:"value" validate:"required"`
	FromUnit string   `json:"from_unit" validate:"required"`
	ToUnit   string   `json:"to_unit" validate:"required"`
}

func (t *ConvertUnitsTool) Definition() Definition {
	return Definition{
		Tool: NewFunctionTool(
			ToolConvertUnits,
			"Convert a value between temperature units (C, F, K) or speed units (m/s, mph, km/h).",
			JSONSchema{
				Type: "object",
				Properties: map[string]*JSONSchema{
					"value": {
						Type:        "number",
						Description: "The numeric value to convert.",
					},
					"from_unit": {
						Type:        "string",
						Description: "Unit of the input value, e.g. \"C\", \"F\", \"K\", \"m/s\", \"mph\", \"km/h\".",
					},
					"to_unit": {
						Type:        "string",
						Description: "Unit to convert into; must be in the same family as from_unit.",
					},
				},
				Required: []string{"value", "from_unit", "to_unit"},
			},
		),
	}
}

func (t *ConvertUnitsTool) NewArgs() any { return &convertUnitsArgs{} }

func (t *ConvertUnitsTool) Execute(_ context.Context, args any) (any, error) {
	a := args.(*convertUnitsArgs)

	result, err := weather.Convert(*a.Value, a.FromUnit, a.ToUnit)
	if err != nil {
		return nil, api.NewToolError(api.ErrInvalidArguments, err.Error(), false)
	}
	return result, nil
}
