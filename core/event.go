package core

// EventType classifies an engine event on the caller's stream.
type EventType string

const (
	// EventDirectorDecision reports the rationale of one planning call.
	EventDirectorDecision EventType = "director.decision"
	// EventStepStarted marks dispatch of an action to an agent.
	EventStepStarted EventType = "step.started"
	// EventStepMessage carries text/structured/system output produced during a step.
	EventStepMessage EventType = "step.message"
	// EventToolCall records a tool invocation request.
	EventToolCall EventType = "tool.call"
	// EventToolResponse records the matching tool outcome.
	EventToolResponse EventType = "tool.response"
	// EventStepCompleted marks a step that finished without an error result.
	EventStepCompleted EventType = "step.completed"
	// EventStepFailed marks a step that yielded an error result or threw.
	EventStepFailed EventType = "step.failed"

	// Terminal states. Exactly one of these ends every SendMessage stream.

	// EventCompleted reports the director judged the request satisfied.
	EventCompleted EventType = "conversation.completed"
	// EventAwaitingInput reports the director needs user clarification.
	EventAwaitingInput EventType = "conversation.awaiting_input"
	// EventFailed reports the loop halted on a planning or step failure.
	EventFailed EventType = "conversation.failed"
	// EventMaxStepsExceeded reports the step budget ran out before completion.
	EventMaxStepsExceeded EventType = "conversation.max_steps_exceeded"
)

// Event is one element of the stream returned by SendMessage. Events are
// delivered in generation order; the embedded Message is appended to the
// conversation history at the moment the event is emitted.
type Event struct {
	Type           EventType `json:"type"`
	ConversationID string    `json:"conversation_id"`
	// Step is the 1-based planning iteration, 0 when not step-scoped.
	Step    int     `json:"step,omitempty"`
	Message Message `json:"message"`
}

// IsTerminal reports whether the event ends the stream.
func (e Event) IsTerminal() bool {
	switch e.Type {
	case EventCompleted, EventAwaitingInput, EventFailed, EventMaxStepsExceeded:
		return true
	}
	return false
}
