// Package director implements the planning loop that drives a conversation:
// a coordinating agent decides step by step which specialist agent acts next,
// the step executor runs that action, and the loop repeats until the director
// declares completion, asks for user input, a step fails, or the step budget
// is exhausted. Exactly one terminal event closes every run.
package director

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentdirector/core"
	"github.com/hupe1980/agentdirector/logging"
	"github.com/hupe1980/agentdirector/tool"
)

// DefaultMaxSteps bounds the planning loop when no explicit limit is set.
const DefaultMaxSteps = 10

// AgentResolver resolves agent ids to registered agents.
type AgentResolver interface {
	GetAgent(id string) (core.Agent, bool)
}

// LoopOptions configures a Loop.
type LoopOptions struct {
	// MaxSteps caps planning iterations per message. Values < 1 fall back to
	// DefaultMaxSteps.
	MaxSteps int
	// Logger for loop activity. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Loop is the director-driven execution engine for a single conversation at a
// time. It owns no conversation state itself; the caller passes the
// conversation in and is responsible for holding its gate for the duration of
// Run.
type Loop struct {
	agents   AgentResolver
	steps    *StepExecutor
	maxSteps int
	logger   logging.Logger
}

// NewLoop constructs a Loop over the given agent resolver and tool executor.
func NewLoop(agents AgentResolver, tools *tool.Executor, optFns ...func(o *LoopOptions)) *Loop {
	opts := LoopOptions{MaxSteps: DefaultMaxSteps, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxSteps < 1 {
		opts.MaxSteps = DefaultMaxSteps
	}
	return &Loop{
		agents:   agents,
		steps:    NewStepExecutor(tools, opts.Logger),
		maxSteps: opts.MaxSteps,
		logger:   opts.Logger,
	}
}

// Run executes the planning loop for one incoming user message. The caller
// must hold the conversation's gate. Every outcome, including failures, is
// reported through emit; Run itself never returns an error. Exactly one
// terminal event is emitted unless the caller's context is cancelled first.
func (l *Loop) Run(
	ctx context.Context,
	conv *core.Conversation,
	userMsg core.Message,
	directorID string,
	tenant *core.TenantContext,
	emit Emit,
) {
	conv.AddMessage(userMsg)

	director, ok := l.agents.GetAgent(directorID)
	if !ok {
		emit(core.Event{
			Type:    core.EventFailed,
			Message: core.NewSystemMessage(fmt.Sprintf("director agent not found: %s", directorID)),
		})
		return
	}

	for stepNum := 1; ; stepNum++ {
		if stepNum > l.maxSteps {
			l.logger.Warn("director.max_steps", "conversation_id", conv.ID, "max_steps", l.maxSteps)
			emit(core.Event{
				Type:    core.EventMaxStepsExceeded,
				Message: core.NewSystemMessage(fmt.Sprintf("%s (%d)", core.ErrMaxStepsExceeded, l.maxSteps)),
			})
			return
		}
		if ctx.Err() != nil {
			emit(core.Event{
				Type:    core.EventFailed,
				Message: core.NewSystemMessage(fmt.Sprintf("planning aborted: %s", ctx.Err())),
			})
			return
		}

		decision, err := l.decide(ctx, director, userMsg, conv)
		if err != nil {
			l.logger.Error("director.decision.error", "conversation_id", conv.ID, "error", err.Error())
			emit(core.Event{
				Type:    core.EventFailed,
				Step:    stepNum,
				Message: core.NewSystemMessage(fmt.Sprintf("planning failed: %s", err)),
			})
			return
		}

		l.logger.Debug(
			"director.decision",
			"conversation_id", conv.ID,
			"step", stepNum,
			"complete", decision.IsComplete,
			"wait_for_user", decision.WaitForUserInput,
		)
		decisionMsg := core.NewSystemMessage(decision.Reasoning)
		if data, encErr := decision.Encode(); encErr == nil {
			decisionMsg.Data = data
		}
		emit(core.Event{Type: core.EventDirectorDecision, Step: stepNum, Message: decisionMsg})

		// Terminal-state checks run before any dispatch: a completing or
		// clarifying decision executes no step.
		if decision.IsComplete {
			emit(core.Event{
				Type:    core.EventCompleted,
				Message: core.NewSystemMessage("conversation completed"),
			})
			return
		}
		if decision.WaitForUserInput {
			emit(core.Event{
				Type:    core.EventAwaitingInput,
				Message: core.NewSystemMessage(l.clarification(decision)),
			})
			return
		}

		next := decision.NextStep
		agent, ok := l.agents.GetAgent(next.AgentID)
		if !ok {
			step := core.NewExecutedStep(next.AgentID, next.Action)
			_ = step.MarkFailed(fmt.Sprintf("%s: %s", core.ErrAgentNotFound, next.AgentID))
			conv.AddStep(step)
			emit(core.Event{
				Type:    core.EventStepFailed,
				Step:    stepNum,
				Message: core.NewSystemMessage(step.Error),
			})
			emit(core.Event{
				Type:    core.EventFailed,
				Step:    stepNum,
				Message: core.NewSystemMessage(fmt.Sprintf("halted: %s", step.Error)),
			})
			return
		}

		conv.AddHandoff(core.Handoff{
			ID:          core.NewID(),
			FromAgentID: directorID,
			ToAgentID:   next.AgentID,
			Action:      next.Action,
			Reason:      next.Reason,
			Timestamp:   conv.Updated(),
		})

		step := core.NewExecutedStep(next.AgentID, next.Action)
		conv.AddStep(step)
		l.steps.Execute(ctx, conv, agent, step, stepNum, tenant, emit)

		if step.Status == core.StepFailed {
			emit(core.Event{
				Type:    core.EventFailed,
				Step:    stepNum,
				Message: core.NewSystemMessage(fmt.Sprintf("halted after step %d failure: %s", stepNum, step.Error)),
			})
			return
		}
	}
}

// decide invokes the director with the incoming message and the full
// conversation (history, executed steps) as context, then decodes the last
// structured result of its stream into a validated decision.
func (l *Loop) decide(
	ctx context.Context,
	director core.Agent,
	userMsg core.Message,
	conv *core.Conversation,
) (*core.DirectorDecision, error) {
	var (
		lastStructured map[string]any
		streamErr      string
	)
	for res := range director.Process(ctx, userMsg, conv) {
		switch r := res.(type) {
		case core.StructuredResult:
			lastStructured = r.Data
		case core.ErrorResult:
			streamErr = r.Message
		}
	}
	if streamErr != "" {
		return nil, fmt.Errorf("director error: %s", streamErr)
	}
	if lastStructured == nil {
		return nil, fmt.Errorf("director produced no decision")
	}
	return core.DecodeDirectorDecision(lastStructured)
}

// clarification picks the caller-facing question out of a wait-for-input
// decision. Directors encode it as the next step's action; reasoning is the
// fallback when they don't.
func (l *Loop) clarification(d *core.DirectorDecision) string {
	if d.NextStep != nil && d.NextStep.Action != "" {
		return d.NextStep.Action
	}
	if d.Reasoning != "" {
		return d.Reasoning
	}
	return "additional input required"
}
