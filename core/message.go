package core

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the conversational author of a message.
type Role string

const (
	// RoleUser marks messages originating from the end user.
	RoleUser Role = "user"
	// RoleAssistant marks messages produced by an agent.
	RoleAssistant Role = "assistant"
	// RoleTool marks tool call / tool response records.
	RoleTool Role = "tool"
	// RoleSystem marks engine status messages (step transitions, halts).
	RoleSystem Role = "system"
)

// Message is the unit of conversation history. It is appended to a
// Conversation (and, during step execution, to the owning ExecutedStep) at
// the same point it is emitted to the caller's event stream, so the two views
// never diverge. After emission a Message should be treated as immutable.
//
// Exactly one payload group is normally populated: Content for text, Data for
// structured output, ToolCalls / ToolResults for tool activity.
type Message struct {
	ID          string         `json:"id"`
	Role        Role           `json:"role"`
	AgentID     string         `json:"agent_id,omitempty"`
	Content     string         `json:"content,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
	ToolCalls   []ToolCall     `json:"tool_calls,omitempty"`
	ToolResults []ToolResult   `json:"tool_results,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}

// NewID generates a unique identifier for messages, conversations, steps and
// handoffs.
func NewID() string { return uuid.NewString() }

func newMessage(role Role, agentID string) Message {
	return Message{
		ID:        NewID(),
		Role:      role,
		AgentID:   agentID,
		Timestamp: time.Now().UTC(),
	}
}

// NewUserMessage creates a user-authored text message.
func NewUserMessage(text string) Message {
	m := newMessage(RoleUser, "")
	m.Content = text
	return m
}

// NewAgentMessage creates an assistant message authored by the given agent.
func NewAgentMessage(agentID, text string) Message {
	m := newMessage(RoleAssistant, agentID)
	m.Content = text
	return m
}

// NewDataMessage creates an assistant message carrying a structured payload.
func NewDataMessage(agentID string, data map[string]any) Message {
	m := newMessage(RoleAssistant, agentID)
	m.Data = data
	return m
}

// NewSystemMessage creates an engine status message.
func NewSystemMessage(text string) Message {
	m := newMessage(RoleSystem, "")
	m.Content = text
	return m
}

// NewToolCallMessage records a batch of tool invocations requested by an agent.
func NewToolCallMessage(agentID string, calls ...ToolCall) Message {
	m := newMessage(RoleTool, agentID)
	m.ToolCalls = calls
	return m
}

// NewToolResultMessage records the outcomes of previously issued tool calls.
func NewToolResultMessage(agentID string, results ...ToolResult) Message {
	m := newMessage(RoleTool, agentID)
	m.ToolResults = results
	return m
}
