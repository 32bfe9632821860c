// Package core defines the shared domain types of the director engine:
// the Agent contract, conversation state (messages, executed steps, handoffs),
// the closed Result and ToolError sets, director decisions, tenant scoping and
// the event stream delivered to callers.
//
// The package carries no orchestration logic; the planning loop lives in the
// director package, tool dispatch in the tool package and the caller-facing
// API in the root package.
package core
