package core

import (
	"fmt"
	"sync"
	"time"
)

// StepStatus is the lifecycle state of an ExecutedStep. Transitions are
// monotonic: PENDING → RUNNING → {COMPLETED | FAILED}. A step in a terminal
// state is never mutated again.
type StepStatus string

const (
	// StepPending marks a step the director decided on but not yet started.
	StepPending StepStatus = "PENDING"
	// StepRunning marks a step whose agent stream is being consumed.
	StepRunning StepStatus = "RUNNING"
	// StepCompleted marks a step whose stream finished without an error result.
	StepCompleted StepStatus = "COMPLETED"
	// StepFailed marks a step that yielded an error result or threw.
	StepFailed StepStatus = "FAILED"
)

// IsTerminal reports whether the status admits no further transition.
func (s StepStatus) IsTerminal() bool { return s == StepCompleted || s == StepFailed }

// ExecutedStep records one iteration of the planning loop: the action the
// director assigned, the agent it was dispatched to, the messages produced
// while executing it and the terminal outcome. It is created when the
// director decides on a next step and mutated only by the step executor that
// owns it.
type ExecutedStep struct {
	ID       string     `json:"id"`
	AgentID  string     `json:"agent_id"`
	Action   string     `json:"action"`
	Status   StepStatus `json:"status"`
	Error    string     `json:"error,omitempty"`
	Messages []Message  `json:"messages,omitempty"`
	Started  time.Time  `json:"started"`
}

// NewExecutedStep creates a pending step for the given agent and action.
func NewExecutedStep(agentID, action string) *ExecutedStep {
	return &ExecutedStep{
		ID:      NewID(),
		AgentID: agentID,
		Action:  action,
		Status:  StepPending,
		Started: time.Now().UTC(),
	}
}

// MarkRunning transitions PENDING → RUNNING.
func (s *ExecutedStep) MarkRunning() error { return s.transition(StepPending, StepRunning) }

// MarkCompleted transitions RUNNING → COMPLETED.
func (s *ExecutedStep) MarkCompleted() error { return s.transition(StepRunning, StepCompleted) }

// MarkFailed transitions to FAILED from any non-terminal state, recording the
// error text.
func (s *ExecutedStep) MarkFailed(errText string) error {
	if s.Status.IsTerminal() {
		return fmt.Errorf("step %s: invalid transition %s -> %s", s.ID, s.Status, StepFailed)
	}
	s.Status = StepFailed
	s.Error = errText
	return nil
}

func (s *ExecutedStep) transition(from, to StepStatus) error {
	if s.Status != from {
		return fmt.Errorf("step %s: invalid transition %s -> %s", s.ID, s.Status, to)
	}
	s.Status = to
	return nil
}

// AddMessage appends a message to the step's own record. The step executor is
// the only writer.
func (s *ExecutedStep) AddMessage(m Message) { s.Messages = append(s.Messages, m) }

// Handoff is an audit record of control passing from one agent to another,
// appended whenever the director dispatches an action.
type Handoff struct {
	ID          string    `json:"id"`
	FromAgentID string    `json:"from_agent_id"`
	ToAgentID   string    `json:"to_agent_id"`
	Action      string    `json:"action"`
	Reason      string    `json:"reason,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Conversation is the per-id unit of state: an append-only message history,
// the ordered executed-step records and the handoff audit trail. It is safe
// for concurrent reads; writes during a planning loop are additionally
// serialized by the conversation store's per-id gate, so no two loops mutate
// the same conversation concurrently.
type Conversation struct {
	ID      string
	Created time.Time

	mu       sync.RWMutex
	updated  time.Time
	messages []Message
	steps    []*ExecutedStep
	handoffs []Handoff
}

// NewConversation creates an empty conversation with a generated id.
func NewConversation() *Conversation {
	now := time.Now().UTC()
	return &Conversation{ID: NewID(), Created: now, updated: now}
}

// AddMessage appends to the history.
func (c *Conversation) AddMessage(m Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, m)
	c.updated = time.Now().UTC()
}

// Messages returns a defensive copy of the full history.
func (c *Conversation) Messages() []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// SetMessages replaces the history with an externally persisted transcript.
func (c *Conversation) SetMessages(msgs []Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = make([]Message, len(msgs))
	copy(c.messages, msgs)
	c.updated = time.Now().UTC()
}

// AddStep appends an executed-step record.
func (c *Conversation) AddStep(s *ExecutedStep) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.steps = append(c.steps, s)
	c.updated = time.Now().UTC()
}

// Steps returns a copy of the step record slice. The records themselves are
// shared; they are immutable once terminal.
func (c *Conversation) Steps() []*ExecutedStep {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*ExecutedStep, len(c.steps))
	copy(out, c.steps)
	return out
}

// AddHandoff appends to the audit trail.
func (c *Conversation) AddHandoff(h Handoff) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handoffs = append(c.handoffs, h)
	c.updated = time.Now().UTC()
}

// Handoffs returns a defensive copy of the audit trail.
func (c *Conversation) Handoffs() []Handoff {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Handoff, len(c.handoffs))
	copy(out, c.handoffs)
	return out
}

// FirstUserMessage returns the original request of the conversation, used by
// the director for grounding. False when no user message exists yet.
func (c *Conversation) FirstUserMessage() (Message, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, m := range c.messages {
		if m.Role == RoleUser {
			return m, true
		}
	}
	return Message{}, false
}

// Updated returns the last mutation time.
func (c *Conversation) Updated() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updated
}
