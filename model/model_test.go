package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentdirector/core"
)

// Interface compliance (compile-time assertion)
var _ Model = (*MockModel)(nil)

func generate(t *testing.T, m Model, req Request) ([]Response, error) {
	t.Helper()
	respCh, errCh := m.Generate(context.Background(), req)
	var out []Response
	for r := range respCh {
		out = append(out, r)
	}
	err, _ := <-errCh
	return out, err
}

func TestMockModel_CannedResponse(t *testing.T) {
	m := NewMockModel("test", "mock")
	m.AddResponse("hello", "world")

	resps, err := generate(t, m, Request{Messages: []core.Message{core.NewUserMessage("hello")}})
	require.NoError(t, err)
	require.Len(t, resps, 1)
	assert.Equal(t, "world", resps[0].Text)
	assert.Equal(t, "stop", resps[0].FinishReason)
}

func TestMockModel_Streaming(t *testing.T) {
	m := NewMockModel("test", "mock")
	m.AddResponse("hello", "one two")

	resps, err := generate(t, m, Request{
		Messages: []core.Message{core.NewUserMessage("hello")},
		Stream:   true,
	})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(resps), 2)

	final := resps[len(resps)-1]
	assert.False(t, final.Partial)
	assert.Equal(t, "one two", final.Text)

	var streamed string
	for _, r := range resps[:len(resps)-1] {
		assert.True(t, r.Partial)
		streamed += r.Text
	}
	assert.Equal(t, "one two", streamed)
}

func TestMockModel_ToolCalls(t *testing.T) {
	m := NewMockModel("test", "mock")
	m.AddToolCalls("compute", core.ToolCall{ID: "c1", Name: "calc"})

	resps, err := generate(t, m, Request{Messages: []core.Message{core.NewUserMessage("compute")}})
	require.NoError(t, err)
	require.Len(t, resps, 1)
	require.Len(t, resps[0].ToolCalls, 1)
	assert.Equal(t, "tool_calls", resps[0].FinishReason)
}

func TestMockModel_NoMessages(t *testing.T) {
	m := NewMockModel("test", "mock")
	_, err := generate(t, m, Request{})
	assert.Error(t, err)
}

func TestMockModel_JSONModeFallback(t *testing.T) {
	m := NewMockModel("test", "mock")
	resps, err := generate(t, m, Request{
		Messages: []core.Message{core.NewUserMessage("unscripted")},
		Mode:     ModeJSON,
	})
	require.NoError(t, err)
	require.Len(t, resps, 1)
	assert.JSONEq(t, `{"response": "unscripted"}`, resps[0].Text)
}
