// Package tool implements the tool calling subsystem: named, schema-validated
// capabilities agents may invoke mid-execution, a registry holding them, and
// an executor enforcing tenant permission before dispatch. Successful results
// and every failure mode are normalized into core.ToolResult.
package tool

import (
	"context"

	"github.com/hupe1980/agentdirector/schema"
)

// Tool is a named capability with a declared parameter schema. Execute
// receives arguments already validated and typed by the executor.
//
// Implementations should be safe for concurrent use; sibling calls in one
// agent decision run in parallel.
type Tool interface {
	// Name returns the unique identifier used in tool calls (snake_case
	// recommended).
	Name() string

	// Description is shown to models to explain when to use the tool.
	Description() string

	// Schema declares the expected arguments.
	Schema() *schema.Schema

	// Execute runs the tool with validated parameters. Returned errors (and
	// panics) are wrapped by the executor; they never reach the caller raw.
	Execute(ctx context.Context, params *schema.Params) (any, error)
}

// FunctionTool adapts a plain Go function into a Tool. It holds no mutable
// state after construction.
type FunctionTool struct {
	name        string
	description string
	schema      *schema.Schema
	fn          func(ctx context.Context, params *schema.Params) (any, error)
}

// NewFunctionTool constructs a FunctionTool from an explicit schema and
// implementation.
func NewFunctionTool(
	name, description string,
	s *schema.Schema,
	fn func(ctx context.Context, params *schema.Params) (any, error),
) *FunctionTool {
	return &FunctionTool{name: name, description: description, schema: s, fn: fn}
}

// Name returns the unique tool name.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the natural language description exposed to models.
func (t *FunctionTool) Description() string { return t.description }

// Schema returns the declared parameter schema.
func (t *FunctionTool) Schema() *schema.Schema { return t.schema }

// Execute invokes the wrapped function.
func (t *FunctionTool) Execute(ctx context.Context, params *schema.Params) (any, error) {
	return t.fn(ctx, params)
}
