package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hupe1980/agentdirector/core"
	"github.com/hupe1980/agentdirector/logging"
	"github.com/hupe1980/agentdirector/model"
)

const directorInstructions = `You are the director of a team of specialist agents. You do not answer the
user yourself; you decide, one step at a time, which agent acts next.

Respond with a single JSON object and nothing else:

{
  "next_step": {"agent_id": "<id>", "action": "<what the agent should do>", "reason": "<why this agent>"},
  "is_complete": false,
  "wait_for_user_input": false,
  "reasoning": "<your thinking>"
}

Rules:
- When the user's request has been fully handled, set "is_complete": true and
  omit "next_step".
- When you need a clarification from the user, set "wait_for_user_input":
  true and put the question in "next_step.action".
- Otherwise "next_step" is required and "agent_id" must be one of the listed
  agents.
- Review the executed steps before deciding; do not repeat completed work.`

// DirectorOptions configures a Director.
type DirectorOptions struct {
	// Logger for planning activity. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Director is the coordinating agent. Each Process call produces exactly one
// planning decision as a structured result; the execution loop decodes and
// validates it.
type Director struct {
	id     string
	model  model.Model
	roster func() []core.Agent
	logger logging.Logger
}

// NewDirector constructs a Director over the given model. roster supplies the
// dispatchable agents at decision time, so agents registered later are still
// visible.
func NewDirector(id string, m model.Model, roster func() []core.Agent, optFns ...func(o *DirectorOptions)) *Director {
	opts := DirectorOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Director{id: id, model: m, roster: roster, logger: opts.Logger}
}

// ID implements core.Agent.
func (d *Director) ID() string { return d.id }

// Description implements core.Agent.
func (d *Director) Description() string {
	return "Coordinates specialist agents by planning one step at a time"
}

// Process implements core.Agent. It emits a single StructuredResult holding
// the raw decision object, or an ErrorResult when the model output is not a
// JSON object.
func (d *Director) Process(ctx context.Context, msg core.Message, conv *core.Conversation) <-chan core.Result {
	out := make(chan core.Result, 1)

	go func() {
		defer close(out)

		req := model.Request{
			Instructions: d.buildInstructions(conv),
			Messages:     append(conv.Messages(), msg),
			Mode:         model.ModeJSON,
		}

		final, err := lastResponse(ctx, d.model, req)
		if err != nil {
			d.logger.Error("director.generate.error", "director", d.id, "error", err.Error())
			out <- core.ErrorResult{Message: err.Error()}
			return
		}

		decision, err := parseDecision(final.Text)
		if err != nil {
			d.logger.Warn("director.decision.unparseable", "director", d.id, "error", err.Error())
			out <- core.ErrorResult{Message: err.Error()}
			return
		}
		out <- core.StructuredResult{Data: decision}
	}()
	return out
}

// buildInstructions appends the live roster and the executed-step history to
// the base planning prompt.
func (d *Director) buildInstructions(conv *core.Conversation) string {
	var b strings.Builder
	b.WriteString(directorInstructions)

	b.WriteString("\n\nAvailable agents:\n")
	for _, a := range d.roster() {
		if a.ID() == d.id {
			continue
		}
		fmt.Fprintf(&b, "- %s: %s\n", a.ID(), a.Description())
	}

	steps := conv.Steps()
	if len(steps) > 0 {
		b.WriteString("\nExecuted steps so far:\n")
		for i, s := range steps {
			fmt.Fprintf(&b, "%d. [%s] %s -> %s", i+1, s.Status, s.AgentID, s.Action)
			if s.Error != "" {
				fmt.Fprintf(&b, " (error: %s)", s.Error)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// parseDecision extracts the decision object from the model output, tolerating
// markdown fences and prose around the JSON.
func parseDecision(text string) (map[string]any, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in director output: %q", truncate(text, 120))
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &out); err != nil {
		return nil, fmt.Errorf("decode director output: %w", err)
	}
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
