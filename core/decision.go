package core

import (
	"encoding/json"
	"errors"
	"fmt"
)

// NextStep names the single action the director wants executed next and the
// agent that should carry it out.
type NextStep struct {
	AgentID string `json:"agent_id"`
	Action  string `json:"action"`
	Reason  string `json:"reason,omitempty"`
}

// DirectorDecision is the parsed output of one planning call.
//
// Invariants:
//   - WaitForUserInput == true implies IsComplete == false.
//   - IsComplete == false and WaitForUserInput == false require NextStep;
//     its absence is a protocol violation treated as a planning failure,
//     never a silent no-op.
//   - IsComplete takes priority over a NextStep that happens to be present.
type DirectorDecision struct {
	NextStep         *NextStep `json:"next_step,omitempty"`
	IsComplete       bool      `json:"is_complete"`
	WaitForUserInput bool      `json:"wait_for_user_input"`
	Reasoning        string    `json:"reasoning,omitempty"`
}

// ErrInvalidDecision wraps every decision invariant violation.
var ErrInvalidDecision = errors.New("invalid director decision")

// Validate enforces the decision invariants.
func (d *DirectorDecision) Validate() error {
	if d.WaitForUserInput && d.IsComplete {
		return fmt.Errorf("%w: wait_for_user_input set together with is_complete", ErrInvalidDecision)
	}
	if !d.IsComplete && !d.WaitForUserInput {
		if d.NextStep == nil {
			return fmt.Errorf("%w: next_step missing while request is incomplete", ErrInvalidDecision)
		}
		if d.NextStep.AgentID == "" {
			return fmt.Errorf("%w: next_step.agent_id is empty", ErrInvalidDecision)
		}
	}
	return nil
}

// Encode renders the decision as the structured map agents emit.
func (d *DirectorDecision) Encode() (map[string]any, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeDirectorDecision parses a structured result payload into a validated
// decision. Any decode or invariant failure is reported as an error; the
// planning loop maps it to its FAILED terminal state.
func DecodeDirectorDecision(data map[string]any) (*DirectorDecision, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode decision payload: %w", err)
	}
	var d DirectorDecision
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode director decision: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}
