package tools

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"weather-agent/internal/api"
	"weather-agent/internal/weather"
	"weather-agent/internal/weatherapi"
)

// Registry holds the static set of tools constructed at startup. It owns
// argument validation: required fields, types, and domain ranges are all
// enforced here, before any network call is attempted, so malformed input
// is rejected immediately without a wasted round-trip.
type Registry struct {
	validate  *validator.Validate
	executors map[string]Executor
	order     []string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		validate:  validator.New(),
		executors: make(map[string]Executor),
	}
}

// NewWeatherRegistry builds the agent's full tool set against the given
// provider client.
func NewWeatherRegistry(client weatherapi.Requester, defaultUnits weather.Units) *Registry {
	r := NewRegistry()
	r.Register(NewGeocodeTool(client))
	r.Register(NewCurrentWeatherTool(client, defaultUnits))
	r.Register(NewForecastTool(client, defaultUnits))
	r.Register(NewAirQualityTool(client))
	r.Register(NewConvertUnitsTool())
	return r
}

// Register adds a tool under its definition name. Last registration wins,
// but first registration keeps its position in Definitions order.
func (r *Registry) Register(e Executor) {
	name := e.Definition().Function.Name
	if _, exists := r.executors[name]; !exists {
		r.order = append(r.order, name)
	}
	r.executors[name] = e
}

// Lookup returns the executor registered under name.
func (r *Registry) Lookup(name string) (Executor, bool) {
	e, ok := r.executors[name]
	return e, ok
}

// Definitions returns every registered tool schema in registration order,
// ready to hand to the model.
func (r *Registry) Definitions() []Tool {
	defs := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.executors[name].Definition().Tool)
	}
	return defs
}

// Count returns the number of registered tools.
func (r *Registry) Count() int { return len(r.executors) }

// ParseArgs unmarshals and validates raw caller arguments into the tool's
// typed argument struct. Any failure is an invalid_arguments ToolError.
func (r *Registry) ParseArgs(e Executor, raw json.RawMessage) (any, error) {
	args := e.NewArgs()
	name := e.Definition().Function.Name

	if len(raw) > 0 && !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		if err := json.Unmarshal(raw, args); err != nil {
			return nil, api.Errorf(api.ErrInvalidArguments, false, "arguments for %s are not valid JSON for its schema: %v", name, err)
		}
	}
	if err := r.validate.Struct(args); err != nil {
		return nil, api.Errorf(api.ErrInvalidArguments, false, "arguments for %s failed validation: %s", name, validationDetail(err))
	}
	return args, nil
}

// validationDetail flattens validator output into a single actionable line.
func validationDetail(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	detail := ""
	for i, fe := range verrs {
		if i > 0 {
			detail += "; "
		}
		detail += fmt.Sprintf("field %s violates rule %q", fe.Field(), fe.Tag())
	}
	return detail
}
