// Package tools defines the callable tool contracts of the weather agent,
// the static registry that validates arguments against them, and the
// dispatcher that resolves a tool call to a normalized result or a
// structured error. These types are a universal, provider-agnostic
// representation that the LLM layer translates into the format its API
// requires.
package tools

// ToolTypeFunction is the standard type for function-based tools.
const ToolTypeFunction = "function"

// Registered tool names. The set is fixed at startup; there is no dynamic
// tool discovery.
const (
	ToolGeocode        = "geocode"
	ToolCurrentWeather = "current_weather"
	ToolForecast       = "forecast"
	ToolAirQuality     = "air_quality"
	ToolConvertUnits   = "convert_units"
)

// Tool is the schema for a function that can be described to an LLM: the
// information sent *to* the model so it knows the tool exists.
type Tool struct {
	Type     string   `json:"type"`
	Function Function `json:"function"`
}

// Function defines the name, description, and parameters of a callable tool.
// The description is what the model uses to decide when to call it.
type Function struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Parameters  JSONSchema `json:"parameters"`
}

// JSONSchema is a structured, type-safe representation of the JSON Schema
// used for tool parameters. Using this instead of map[string]interface{}
// keeps tool definitions readable and catches shape mistakes at compile
// time.
type JSONSchema struct {
	// Type is the data type of this schema node ("object", "string",
	// "number", "integer"). The top-level parameters node is always
	// "object".
	Type string `json:"type"`
	// Description explains what a specific parameter is for.
	Description string `json:"description,omitempty"`
	// Enum restricts a string parameter to a fixed set of values.
	Enum []string `json:"enum,omitempty"`
	// Properties describes the parameters of an object node, keyed by
	// parameter name.
	Properties map[string]*JSONSchema `json:"properties,omitempty"`
	// Required lists the parameter names that are mandatory.
	Required []string `json:"required,omitempty"`
}

// Definition is the complete registry record for one tool: the schema shown
// to the model plus the dispatch metadata the core needs. RequiresLocation
// declares the cross-tool dependency explicitly so the dispatcher can
// resolve a place name through geocoding generically instead of
// special-casing individual tools.
type Definition struct {
	Tool
	RequiresLocation bool `json:"-"`
}

// NewFunctionTool builds a Tool with the correct function type.
func NewFunctionTool(name, description string, parameters JSONSchema) Tool {
	return Tool{
		Type: ToolTypeFunction,
		Function: Function{
			Name:        name,
			Description: description,
			Parameters:  parameters,
		},
	}
}
