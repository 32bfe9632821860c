package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectorDecision_Validate(t *testing.T) {
	tests := []struct {
		name     string
		decision DirectorDecision
		wantErr  bool
	}{
		{
			name:     "dispatch",
			decision: DirectorDecision{NextStep: &NextStep{AgentID: "a", Action: "do it"}},
		},
		{
			name:     "complete without next step",
			decision: DirectorDecision{IsComplete: true},
		},
		{
			name:     "complete with leftover next step",
			decision: DirectorDecision{IsComplete: true, NextStep: &NextStep{AgentID: "a"}},
		},
		{
			name:     "wait for input",
			decision: DirectorDecision{WaitForUserInput: true, NextStep: &NextStep{Action: "which city?"}},
		},
		{
			name:     "wait and complete together",
			decision: DirectorDecision{WaitForUserInput: true, IsComplete: true},
			wantErr:  true,
		},
		{
			name:     "incomplete without next step",
			decision: DirectorDecision{},
			wantErr:  true,
		},
		{
			name:     "next step without agent id",
			decision: DirectorDecision{NextStep: &NextStep{Action: "do it"}},
			wantErr:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.decision.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidDecision)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDirectorDecision_EncodeDecodeRoundTrip(t *testing.T) {
	in := DirectorDecision{
		NextStep:  &NextStep{AgentID: "researcher", Action: "look it up", Reason: "topic expert"},
		Reasoning: "needs research first",
	}
	data, err := in.Encode()
	require.NoError(t, err)

	out, err := DecodeDirectorDecision(data)
	require.NoError(t, err)
	require.NotNil(t, out.NextStep)
	assert.Equal(t, "researcher", out.NextStep.AgentID)
	assert.Equal(t, "look it up", out.NextStep.Action)
	assert.Equal(t, "needs research first", out.Reasoning)
}

func TestDecodeDirectorDecision_Invalid(t *testing.T) {
	_, err := DecodeDirectorDecision(map[string]any{"is_complete": false})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDecision)

	_, err = DecodeDirectorDecision(map[string]any{"next_step": "not an object"})
	require.Error(t, err)
}

func TestExecutedStep_Transitions(t *testing.T) {
	s := NewExecutedStep("a", "act")
	assert.Equal(t, StepPending, s.Status)
	assert.False(t, s.Status.IsTerminal())

	require.NoError(t, s.MarkRunning())
	require.NoError(t, s.MarkCompleted())
	assert.True(t, s.Status.IsTerminal())

	// Terminal steps admit no further transitions.
	assert.Error(t, s.MarkRunning())
	assert.Error(t, s.MarkFailed("late"))
	assert.Equal(t, StepCompleted, s.Status)
	assert.Empty(t, s.Error)
}

func TestExecutedStep_FailFromAnyNonTerminal(t *testing.T) {
	pending := NewExecutedStep("a", "act")
	require.NoError(t, pending.MarkFailed("agent not found"))
	assert.Equal(t, StepFailed, pending.Status)
	assert.Equal(t, "agent not found", pending.Error)

	running := NewExecutedStep("a", "act")
	require.NoError(t, running.MarkRunning())
	require.NoError(t, running.MarkFailed("boom"))
	assert.Equal(t, StepFailed, running.Status)

	// COMPLETED cannot be skipped to from PENDING.
	skipped := NewExecutedStep("a", "act")
	assert.Error(t, skipped.MarkCompleted())
}

func TestConversation_DefensiveCopies(t *testing.T) {
	c := NewConversation()
	c.AddMessage(NewUserMessage("hi"))

	msgs := c.Messages()
	msgs[0].Content = "mutated"
	assert.Equal(t, "hi", c.Messages()[0].Content)

	c.AddHandoff(Handoff{ID: NewID(), FromAgentID: "d", ToAgentID: "a"})
	hs := c.Handoffs()
	hs[0].ToAgentID = "mutated"
	assert.Equal(t, "a", c.Handoffs()[0].ToAgentID)
}

func TestEvent_IsTerminal(t *testing.T) {
	terminal := []EventType{EventCompleted, EventAwaitingInput, EventFailed, EventMaxStepsExceeded}
	for _, et := range terminal {
		assert.True(t, Event{Type: et}.IsTerminal(), string(et))
	}
	nonTerminal := []EventType{EventDirectorDecision, EventStepStarted, EventStepMessage, EventToolCall, EventToolResponse, EventStepCompleted, EventStepFailed}
	for _, et := range nonTerminal {
		assert.False(t, Event{Type: et}.IsTerminal(), string(et))
	}
}

func TestTenantContext(t *testing.T) {
	tenant := &TenantContext{TenantID: "t", AllowedTools: []string{"echo"}, Permissions: []string{"read"}}
	assert.True(t, tenant.Allows("echo"))
	assert.False(t, tenant.Allows("other"))
	assert.True(t, tenant.HasPermission("read"))
	assert.False(t, tenant.HasPermission("write"))

	provider := NewStaticTenantProvider(tenant)
	got, ok := provider.GetTenant("t")
	require.True(t, ok)
	assert.Equal(t, tenant, got)
	_, ok = provider.GetTenant("missing")
	assert.False(t, ok)
}
