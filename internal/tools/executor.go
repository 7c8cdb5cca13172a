package tools

import "context"

// Executor is the standard interface every tool implements. The registry
// and dispatcher manage tools exclusively through it, so adding a tool is a
// matter of implementing this contract and registering the instance.
type Executor interface {
	// Definition returns the tool's registry record: the schema shown to
	// the model plus dispatch metadata.
	Definition() Definition

	// NewArgs returns a fresh pointer to the tool's typed argument struct.
	// The registry unmarshals the caller's raw arguments into it and runs
	// struct-tag validation before Execute is ever called.
	NewArgs() any

	// Execute runs the tool against already-validated arguments. Failures
	// are returned as *api.ToolError; Execute never performs its own
	// retries and never panics across this boundary.
	Execute(ctx context.Context, args any) (any, error)
}
