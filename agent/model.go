// Package agent provides the built-in core.Agent implementations: ModelAgent,
// a specialist backed by a generating model with optional tool access, and
// Director, the coordinating agent that plans conversations step by step.
package agent

import (
	"context"
	"errors"

	"github.com/hupe1980/agentdirector/core"
	"github.com/hupe1980/agentdirector/logging"
	"github.com/hupe1980/agentdirector/model"
	"github.com/hupe1980/agentdirector/tool"
)

var errNoResponse = errors.New("model produced no response")

// ModelAgentOptions configures a ModelAgent.
type ModelAgentOptions struct {
	// Instructions is the system prompt for every generation.
	Instructions string
	// Tools advertised to the model. Calls come back as a ToolCallResult for
	// the step executor to resolve; the agent itself never runs tools.
	Tools []tool.Tool
	// Stream requests incremental generation from the provider. The agent
	// still emits a single final text result.
	Stream bool
	// Mode hints the expected output shape.
	Mode model.GenerationMode
	// Logger for agent activity. Defaults to NoOpLogger.
	Logger logging.Logger
}

// ModelAgent is a specialist agent that answers each dispatched action with a
// single model generation over the conversation history.
type ModelAgent struct {
	id          string
	description string
	model       model.Model
	opts        ModelAgentOptions
}

// NewModelAgent constructs a ModelAgent.
func NewModelAgent(id, description string, m model.Model, optFns ...func(o *ModelAgentOptions)) *ModelAgent {
	opts := ModelAgentOptions{Mode: model.ModeText, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &ModelAgent{id: id, description: description, model: m, opts: opts}
}

// ID implements core.Agent.
func (a *ModelAgent) ID() string { return a.id }

// Description implements core.Agent.
func (a *ModelAgent) Description() string { return a.description }

// Process implements core.Agent. The channel closes when generation finishes;
// model failures surface in-stream as an ErrorResult.
func (a *ModelAgent) Process(ctx context.Context, msg core.Message, conv *core.Conversation) <-chan core.Result {
	out := make(chan core.Result, 16)

	go func() {
		defer close(out)

		req := model.Request{
			Instructions: a.opts.Instructions,
			Messages:     append(conv.Messages(), msg),
			Tools:        toolDefinitions(a.opts.Tools),
			Stream:       a.opts.Stream,
			Mode:         a.opts.Mode,
		}

		final, err := lastResponse(ctx, a.model, req)
		if err != nil {
			a.opts.Logger.Error("agent.generate.error", "agent", a.id, "error", err.Error())
			out <- core.ErrorResult{Message: err.Error()}
			return
		}

		a.opts.Logger.Debug(
			"agent.generate.done",
			"agent", a.id,
			"finish_reason", final.FinishReason,
			"tool_calls", len(final.ToolCalls),
		)
		if len(final.ToolCalls) > 0 {
			out <- core.ToolCallResult{Calls: final.ToolCalls}
		}
		if final.Text != "" {
			out <- core.TextResult{Text: final.Text}
		}
	}()
	return out
}

// lastResponse drains a generation and returns the final (non-partial)
// response, preferring a stream error when both occur.
func lastResponse(ctx context.Context, m model.Model, req model.Request) (model.Response, error) {
	respCh, errCh := m.Generate(ctx, req)

	var (
		final model.Response
		seen  bool
	)
	for r := range respCh {
		if r.Partial {
			continue
		}
		final = r
		seen = true
	}
	if err, ok := <-errCh; ok && err != nil {
		return model.Response{}, err
	}
	if !seen {
		return model.Response{}, errNoResponse
	}
	return final, nil
}

// toolDefinitions renders tool schemas into the declarative form exposed to
// models.
func toolDefinitions(tools []tool.Tool) []model.ToolDefinition {
	if len(tools) == 0 {
		return nil
	}
	defs := make([]model.ToolDefinition, len(tools))
	for i, t := range tools {
		defs[i] = model.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Schema().JSONSchema(),
		}
	}
	return defs
}
