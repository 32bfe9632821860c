// Package model defines the provider-neutral generation interface used by
// agents, plus a deterministic mock for tests and examples. Provider adapters
// live in the subpackages.
package model

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/agentdirector/core"
)

// GenerationMode hints how the model output will be consumed. It is an open
// set; adapters treat unknown modes as ModeText.
type GenerationMode string

const (
	// ModeText requests free-form natural language output.
	ModeText GenerationMode = "text"
	// ModeJSON requests a single JSON object as the complete output. The
	// caller's instructions must describe the expected shape; adapters and
	// the mock honor the hint best-effort.
	ModeJSON GenerationMode = "json"
)

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"` // JSON Schema
}

// Request captures the normalized model input produced by agents.
type Request struct {
	Instructions string           `json:"instructions"`
	Messages     []core.Message   `json:"messages"`
	Tools        []ToolDefinition `json:"tools,omitempty"`
	Stream       bool             `json:"stream,omitempty"`
	Mode         GenerationMode   `json:"mode,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a (partial or final) chunk emitted by a generating model. Text
// and ToolCalls are cumulative on the final chunk; partial chunks carry
// deltas.
type Response struct {
	Partial      bool            `json:"partial"`
	Text         string          `json:"text,omitempty"`
	ToolCalls    []core.ToolCall `json:"tool_calls,omitempty"`
	FinishReason string          `json:"finish_reason,omitempty"`
	Usage        *TokenUsage     `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"`
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface required by agents to drive generation.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model for tests and examples. Canned
// responses are matched against the last message's content; tool call scripts
// take precedence over text.
type MockModel struct {
	info      Info
	responses map[string]string
	toolCalls map[string][]core.ToolCall
}

// NewMockModel constructs a MockModel with tool support enabled.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: provider, SupportsTools: true},
		responses: make(map[string]string),
		toolCalls: make(map[string][]core.ToolCall),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) { m.responses[prompt] = response }

// AddToolCalls registers a canned tool call batch for an input prompt.
func (m *MockModel) AddToolCalls(prompt string, calls ...core.ToolCall) {
	m.toolCalls[prompt] = calls
}

// Generate implements Model; emits optional streaming chunks then the final
// response.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	go func() {
		defer close(respCh)
		defer close(errCh)
		if len(req.Messages) == 0 {
			errCh <- fmt.Errorf("no messages provided")
			return
		}
		inputText := req.Messages[len(req.Messages)-1].Content

		if calls, ok := m.toolCalls[inputText]; ok {
			respCh <- Response{ToolCalls: calls, FinishReason: "tool_calls"}
			return
		}

		full, ok := m.responses[inputText]
		if !ok {
			if req.Mode == ModeJSON {
				full = fmt.Sprintf(`{"response": %q}`, inputText)
			} else {
				full = fmt.Sprintf("Mock response to: %s", inputText)
			}
		}
		if req.Stream {
			for _, word := range strings.SplitAfter(full, " ") {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case respCh <- Response{Partial: true, Text: word}:
				}
			}
		}
		respCh <- Response{Text: full, FinishReason: "stop"}
	}()
	return respCh, errCh
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
