package core

import (
	"fmt"
	"strings"
)

// ToolCall carries one tool invocation request. Arguments arrive as an
// untyped key/value map at the boundary; the tool subsystem validates them
// against the tool's declared schema before execution.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// ToolResult is the outcome of a tool call, correlated 1:1 with the
// originating call by CallID. Either Response is set (success) or Err holds a
// typed failure. Err is an in-process value; callers needing a serialized
// form use ErrorMessage.
type ToolResult struct {
	CallID   string `json:"call_id"`
	Name     string `json:"name"`
	Response any    `json:"response,omitempty"`
	Err      ToolError
}

// Failed reports whether the call ended in a typed failure.
func (r ToolResult) Failed() bool { return r.Err != nil }

// ErrorMessage returns the failure text or "" on success.
func (r ToolResult) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// ToolError is the closed set of tool execution failures. Concrete types
// implement the unexported isToolError marker.
type ToolError interface {
	error
	isToolError()
}

// ExecutionFailed covers lookup misses, argument validation failures and
// handler errors/panics. Cause is optional.
type ExecutionFailed struct {
	Reason string
	Cause  error
}

func (e *ExecutionFailed) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Cause)
	}
	return e.Reason
}

// Unwrap exposes the underlying cause for errors.Is / errors.As chains.
func (e *ExecutionFailed) Unwrap() error { return e.Cause }

func (*ExecutionFailed) isToolError() {}

// NoTenantContext is returned when a tool call arrives without tenant scoping.
type NoTenantContext struct{}

func (*NoTenantContext) Error() string { return "no tenant context" }

func (*NoTenantContext) isToolError() {}

// InsufficientPermissions is returned when the tenant's allowed set does not
// cover the requested tool, regardless of argument validity.
type InsufficientPermissions struct {
	Missing []string
}

func (e *InsufficientPermissions) Error() string {
	return fmt.Sprintf("insufficient permissions, missing: %s", strings.Join(e.Missing, ", "))
}

func (*InsufficientPermissions) isToolError() {}
