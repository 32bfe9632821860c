package director

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentdirector/core"
	"github.com/hupe1980/agentdirector/logging"
	"github.com/hupe1980/agentdirector/tool"
)

// Emit delivers one event to the caller's stream and appends its message to
// the conversation history at the same point, keeping the two views in sync.
// It returns false when the stream is gone (caller cancelled); emitters stop
// producing once that happens.
type Emit func(core.Event) bool

// StepExecutor dispatches one decided action to its target agent and
// aggregates the agent's result stream into the owned ExecutedStep record.
//
// Failure semantics: an in-stream ErrorResult marks the step FAILED but the
// remainder of the stream is still drained, since the agent may emit cleanup
// output. Panics raised while consuming the stream are recovered and mapped
// to FAILED; nothing propagates past Execute.
type StepExecutor struct {
	tools  *tool.Executor
	logger logging.Logger
}

// NewStepExecutor constructs a StepExecutor using the given tool executor.
func NewStepExecutor(tools *tool.Executor, logger logging.Logger) *StepExecutor {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &StepExecutor{tools: tools, logger: logger}
}

// Execute runs a single step. The step must be PENDING; on return it is in a
// terminal status. stepNum is the 1-based planning iteration used on events.
func (x *StepExecutor) Execute(
	ctx context.Context,
	conv *core.Conversation,
	agent core.Agent,
	step *core.ExecutedStep,
	stepNum int,
	tenant *core.TenantContext,
	emit Emit,
) {
	if err := step.MarkRunning(); err != nil {
		x.logger.Error("step.transition.error", "step_id", step.ID, "error", err.Error())
		return
	}

	emit(core.Event{
		Type:    core.EventStepStarted,
		Step:    stepNum,
		Message: core.NewSystemMessage(fmt.Sprintf("dispatching to agent %s: %s", agent.ID(), step.Action)),
	})

	failed, errText := x.consume(ctx, conv, agent, step, stepNum, tenant, emit)

	if failed {
		_ = step.MarkFailed(errText)
		x.logger.Warn("step.failed", "step_id", step.ID, "agent", agent.ID(), "error", errText)
		emit(core.Event{
			Type:    core.EventStepFailed,
			Step:    stepNum,
			Message: core.NewSystemMessage(fmt.Sprintf("step failed: %s", errText)),
		})
		return
	}

	_ = step.MarkCompleted()
	x.logger.Debug("step.completed", "step_id", step.ID, "agent", agent.ID())
	emit(core.Event{
		Type:    core.EventStepCompleted,
		Step:    stepNum,
		Message: core.NewSystemMessage(fmt.Sprintf("agent %s completed: %s", agent.ID(), step.Action)),
	})
}

// consume drains the agent's result stream, forwarding output and resolving
// tool calls. It reports whether the step failed and with what error.
func (x *StepExecutor) consume(
	ctx context.Context,
	conv *core.Conversation,
	agent core.Agent,
	step *core.ExecutedStep,
	stepNum int,
	tenant *core.TenantContext,
	emit Emit,
) (failed bool, errText string) {
	defer func() {
		if r := recover(); r != nil {
			failed = true
			errText = fmt.Sprintf("panic: %v", r)
			x.logger.Error("step.panic", "step_id", step.ID, "agent", agent.ID(), "recover", r)
		}
	}()

	// record forwards a step-scoped message to the caller and books it on
	// the step record as well as (via emit) the conversation history.
	record := func(t core.EventType, m core.Message) bool {
		step.AddMessage(m)
		return emit(core.Event{Type: t, Step: stepNum, Message: m})
	}

	input := x.buildInput(conv, step)

	for res := range agent.Process(ctx, input, conv) {
		if ctx.Err() != nil {
			return true, ctx.Err().Error()
		}
		switch r := res.(type) {
		case core.TextResult:
			record(core.EventStepMessage, core.NewAgentMessage(agent.ID(), r.Text))

		case core.StructuredResult:
			record(core.EventStepMessage, core.NewDataMessage(agent.ID(), r.Data))

		case core.SystemResult:
			record(core.EventStepMessage, core.NewSystemMessage(r.Message))

		case core.ErrorResult:
			// Keep draining: the agent may still emit cleanup messages.
			failed = true
			errText = r.Message

		case core.ToolCallResult:
			x.runToolCalls(ctx, agent, r.Calls, tenant, record)

		case core.ToolResponseResult:
			// Agent resolved its own tools; just forward the outcomes.
			record(core.EventToolResponse, core.NewToolResultMessage(agent.ID(), r.Results...))
		}
	}
	return failed, errText
}

// runToolCalls emits each call before the batch starts so every
// call/response pair stays internally ordered, then executes siblings
// concurrently; responses may interleave across calls.
func (x *StepExecutor) runToolCalls(
	ctx context.Context,
	agent core.Agent,
	calls []core.ToolCall,
	tenant *core.TenantContext,
	record func(core.EventType, core.Message) bool,
) {
	for _, call := range calls {
		record(core.EventToolCall, core.NewToolCallMessage(agent.ID(), call))
	}
	x.tools.ExecuteBatch(ctx, tenant, calls, func(res core.ToolResult) {
		record(core.EventToolResponse, core.NewToolResultMessage(agent.ID(), res))
	})
}

// buildInput constructs the scoped message handed to the target agent: the
// action text plus the conversation's original request for grounding.
func (x *StepExecutor) buildInput(conv *core.Conversation, step *core.ExecutedStep) core.Message {
	content := step.Action
	if original, ok := conv.FirstUserMessage(); ok && original.Content != step.Action {
		content = fmt.Sprintf("%s\n\nOriginal request: %s", step.Action, original.Content)
	}
	return core.NewUserMessage(content)
}
