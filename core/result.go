package core

import "context"

// Result represents one element of an agent's output stream. Concrete result
// types implement the unexported isResult marker enabling a closed set; the
// step executor branches exhaustively on all of them.
type Result interface{ isResult() }

// TextResult is a plain text segment of the agent's answer.
type TextResult struct {
	Text string
}

func (TextResult) isResult() {}

// StructuredResult is a structured data payload. The director's decision
// arrives through this variant and is decoded into a DirectorDecision.
type StructuredResult struct {
	Data map[string]any
}

func (StructuredResult) isResult() {}

// ToolCallResult requests execution of one or more tools. Sibling calls in
// the same result carry no ordering dependency and run concurrently.
type ToolCallResult struct {
	Calls []ToolCall
}

func (ToolCallResult) isResult() {}

// ToolResponseResult carries tool outcomes an agent resolved on its own,
// without delegating to the engine's tool subsystem.
type ToolResponseResult struct {
	Results []ToolResult
}

func (ToolResponseResult) isResult() {}

// SystemResult is an informational status line from the agent.
type SystemResult struct {
	Message string
}

func (SystemResult) isResult() {}

// ErrorResult signals that the agent failed. The step executor marks the step
// FAILED but keeps draining the stream so the agent may emit cleanup output.
type ErrorResult struct {
	Message string
}

func (ErrorResult) isResult() {}

// Agent is the uniform contract every task handler implements. Process
// receives the incoming message plus the conversation so far and returns an
// ordered, asynchronous stream of results. The returned channel must be
// closed when processing completes; failures are reported in-stream via
// ErrorResult, never by panicking across the channel boundary.
//
// Implementations must respect ctx cancellation and stop emitting once it is
// done. The director loop treats every concrete agent (LLM-backed,
// database-backed, hand-written) identically through this interface.
type Agent interface {
	ID() string
	Description() string
	Process(ctx context.Context, msg Message, conv *Conversation) <-chan Result
}
