package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"weather-agent/internal/api"
	"weather-agent/internal/weather"
)

// Dispatcher resolves a ToolCall to a terminal ToolResult. Each invocation
// walks Received -> Validating -> (ResolvingDependency) -> Executing ->
// Normalizing -> Completed|Failed; normalization happens inside the tool's
// Execute, so from here the two last states collapse into the Execute call.
//
// The dispatcher holds no mutable state, so invocations may run concurrently
// without coordination. It never retries (that is the HTTP adapter's job)
// and never partially applies a tool: a result is returned only when every
// dependent sub-call succeeded.
type Dispatcher struct {
	registry *Registry
}

func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// locationResolver is implemented by argument structs embedding
// LocationArgs. The dispatcher uses it to thread a geocoded Location into
// any tool that declared the dependency.
type locationResolver interface {
	NeedsGeocoding() bool
	Place() string
	Resolve(weather.Location)
}

// Dispatch executes one tool call and reports its outcome. Failures are
// carried verbatim in the result's Error field; Dispatch itself never
// returns a Go error because every failure is structured data to the
// caller.
func (d *Dispatcher) Dispatch(ctx context.Context, call api.ToolCall) api.ToolResult {
	result := api.ToolResult{ToolName: call.Name}

	executor, ok := d.registry.Lookup(call.Name)
	if !ok {
		result.Error = api.Errorf(api.ErrInvalidArguments, false, "unknown tool %q", call.Name)
		return result
	}

	args, err := d.registry.ParseArgs(executor, call.Arguments)
	if err != nil {
		result.Error = asToolError(err)
		return result
	}

	if executor.Definition().RequiresLocation {
		if resolver, ok := args.(locationResolver); ok && resolver.NeedsGeocoding() {
			loc, terr := d.resolveLocation(ctx, resolver.Place())
			if terr != nil {
				result.Error = terr
				return result
			}
			resolver.Resolve(loc)
		}
	}

	data, err := executor.Execute(ctx, args)
	if err != nil {
		result.Error = asToolError(err)
		log.Printf("tool %s failed: %v", call.Name, result.Error)
		return result
	}

	result.Data = data
	return result
}

// resolveLocation runs the geocode tool as a dependency of another call.
// The sub-call goes through the full dispatch path so it is validated and
// counted like any other invocation.
func (d *Dispatcher) resolveLocation(ctx context.Context, place string) (weather.Location, *api.ToolError) {
	arguments, err := json.Marshal(geocodeArgs{LocationName: place})
	if err != nil {
		return weather.Location{}, api.Errorf(api.ErrDependencyResolution, false, "building geocode arguments: %v", err)
	}

	sub := d.Dispatch(ctx, api.ToolCall{Name: ToolGeocode, Arguments: arguments})
	if sub.Error != nil {
		return weather.Location{}, &api.ToolError{
			Kind:      api.ErrDependencyResolution,
			Message:   fmt.Sprintf("could not resolve location %q", place),
			Retryable: sub.Error.Retryable,
			Cause:     sub.Error,
		}
	}

	loc, ok := sub.Data.(weather.Location)
	if !ok {
		return weather.Location{}, api.NewToolError(api.ErrDependencyResolution, "geocode returned an unexpected result shape", false)
	}
	return loc, nil
}

// asToolError keeps structured failures intact and classifies anything else
// as a provider error so no raw error ever crosses the dispatch boundary.
func asToolError(err error) *api.ToolError {
	if terr := api.AsToolError(err); terr != nil {
		return terr
	}
	return api.NewToolError(api.ErrProvider, err.Error(), false)
}
