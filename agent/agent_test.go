package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentdirector/core"
	"github.com/hupe1980/agentdirector/model"
	"github.com/hupe1980/agentdirector/schema"
	"github.com/hupe1980/agentdirector/tool"
)

// Interface compliance (compile-time assertions)
var (
	_ core.Agent = (*ModelAgent)(nil)
	_ core.Agent = (*Director)(nil)
)

// brokenModel always fails generation.
type brokenModel struct{}

func (brokenModel) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response)
	errCh := make(chan error, 1)
	errCh <- errors.New("provider unreachable")
	close(out)
	close(errCh)
	return out, errCh
}

func (brokenModel) Info() model.Info { return model.Info{Name: "broken", Provider: "test"} }

// cannedModel returns a fixed text regardless of input.
type cannedModel struct{ text string }

func (m cannedModel) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 1)
	errCh := make(chan error, 1)
	out <- model.Response{Text: m.text, FinishReason: "stop"}
	close(out)
	close(errCh)
	return out, errCh
}

func (m cannedModel) Info() model.Info { return model.Info{Name: "canned", Provider: "test"} }

func collect(t *testing.T, ch <-chan core.Result) []core.Result {
	t.Helper()
	var out []core.Result
	for r := range ch {
		out = append(out, r)
	}
	return out
}

func TestModelAgent_Text(t *testing.T) {
	m := model.NewMockModel("test", "mock")
	m.AddResponse("summarize this", "a short summary")

	a := NewModelAgent("summarizer", "Summarizes text", m)
	assert.Equal(t, "summarizer", a.ID())
	assert.Equal(t, "Summarizes text", a.Description())

	results := collect(t, a.Process(context.Background(), core.NewUserMessage("summarize this"), core.NewConversation()))
	require.Len(t, results, 1)
	text, ok := results[0].(core.TextResult)
	require.True(t, ok)
	assert.Equal(t, "a short summary", text.Text)
}

func TestModelAgent_ToolCalls(t *testing.T) {
	m := model.NewMockModel("test", "mock")
	m.AddToolCalls("what is 2+2", core.ToolCall{
		ID:        "c1",
		Name:      "calculate",
		Arguments: map[string]any{"operation": "add", "a": 2.0, "b": 2.0},
	})

	calc := tool.NewFunctionTool("calculate", "Adds numbers",
		schema.New("calculate"),
		func(ctx context.Context, params *schema.Params) (any, error) { return 4, nil })
	a := NewModelAgent("calculator", "Does math", m, func(o *ModelAgentOptions) {
		o.Tools = []tool.Tool{calc}
	})

	results := collect(t, a.Process(context.Background(), core.NewUserMessage("what is 2+2"), core.NewConversation()))
	require.Len(t, results, 1)
	calls, ok := results[0].(core.ToolCallResult)
	require.True(t, ok)
	require.Len(t, calls.Calls, 1)
	assert.Equal(t, "calculate", calls.Calls[0].Name)
}

func TestModelAgent_GenerationError(t *testing.T) {
	a := NewModelAgent("broken", "Always fails", brokenModel{})

	results := collect(t, a.Process(context.Background(), core.NewUserMessage("anything"), core.NewConversation()))
	require.Len(t, results, 1)
	errRes, ok := results[0].(core.ErrorResult)
	require.True(t, ok)
	assert.Contains(t, errRes.Message, "provider unreachable")
}

func TestDirector_EmitsDecision(t *testing.T) {
	m := cannedModel{text: "```json\n" +
		`{"next_step": {"agent_id": "worker", "action": "do it", "reason": "fits"}, "reasoning": "needs work"}` +
		"\n```"}
	d := NewDirector("director", m, func() []core.Agent { return nil })

	results := collect(t, d.Process(context.Background(), core.NewUserMessage("plan this"), core.NewConversation()))
	require.Len(t, results, 1)
	structured, ok := results[0].(core.StructuredResult)
	require.True(t, ok)

	decision, err := core.DecodeDirectorDecision(structured.Data)
	require.NoError(t, err)
	require.NotNil(t, decision.NextStep)
	assert.Equal(t, "worker", decision.NextStep.AgentID)
	assert.Equal(t, "do it", decision.NextStep.Action)
}

func TestDirector_UnparseableOutput(t *testing.T) {
	d := NewDirector("director", cannedModel{text: "I cannot decide right now."}, func() []core.Agent { return nil })

	results := collect(t, d.Process(context.Background(), core.NewUserMessage("plan this"), core.NewConversation()))
	require.Len(t, results, 1)
	errRes, ok := results[0].(core.ErrorResult)
	require.True(t, ok)
	assert.Contains(t, errRes.Message, "no JSON object")
}

func TestDirector_RosterAndStepsInInstructions(t *testing.T) {
	var captured model.Request
	m := captureModel{onRequest: func(req model.Request) { captured = req }}

	worker := NewModelAgent("worker", "Handles the work", model.NewMockModel("m", "mock"))
	d := NewDirector("director", m, func() []core.Agent { return []core.Agent{worker, d0} })

	conv := core.NewConversation()
	step := core.NewExecutedStep("worker", "first attempt")
	require.NoError(t, step.MarkRunning())
	require.NoError(t, step.MarkFailed("timeout"))
	conv.AddStep(step)

	collect(t, d.Process(context.Background(), core.NewUserMessage("plan"), conv))

	assert.Contains(t, captured.Instructions, "worker: Handles the work")
	assert.NotContains(t, captured.Instructions, "director:", "the director never lists itself")
	assert.Contains(t, captured.Instructions, "[FAILED] worker -> first attempt")
	assert.Contains(t, captured.Instructions, "error: timeout")
	assert.Equal(t, model.ModeJSON, captured.Mode)
}

// d0 stands in for the director itself inside the roster.
var d0 core.Agent = NewDirector("director", cannedModel{text: "{}"}, func() []core.Agent { return nil })

// captureModel records the request and answers with a completing decision.
type captureModel struct{ onRequest func(model.Request) }

func (m captureModel) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	m.onRequest(req)
	out := make(chan model.Response, 1)
	errCh := make(chan error, 1)
	out <- model.Response{Text: `{"is_complete": true}`, FinishReason: "stop"}
	close(out)
	close(errCh)
	return out, errCh
}

func (captureModel) Info() model.Info { return model.Info{Name: "capture", Provider: "test"} }
