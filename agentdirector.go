// Package agentdirector provides a high-level façade over the director-driven
// execution engine: per-conversation state, a coordinating director agent that
// plans step by step, specialist agents that execute those steps, and a
// tenant-scoped tool subsystem. Most applications interact with this package
// by:
//  1. Creating an Engine via New() (optionally overriding defaults)
//  2. Registering agents and tools
//  3. Starting a conversation and sending messages (SendMessage streams
//     events; SendMessageSync drains them)
//
// All defaults are safe for local development and testing; production
// deployments typically supply a structured logger.
package agentdirector

import (
	"context"
	"sync"

	"github.com/hupe1980/agentdirector/conversation"
	"github.com/hupe1980/agentdirector/core"
	"github.com/hupe1980/agentdirector/director"
	"github.com/hupe1980/agentdirector/logging"
	"github.com/hupe1980/agentdirector/tool"
)

// Options configures the Engine.
type Options struct {
	// MaxSteps caps planning iterations per incoming message. Defaults to
	// director.DefaultMaxSteps.
	MaxSteps int

	// EventBufferSize sets the channel buffer size for event streams. Larger
	// buffers reduce blocking of the planning loop when consumers are slow.
	EventBufferSize int

	// MaxParallelTools caps sibling tool calls executed concurrently within
	// one agent decision. 0 means no explicit limit.
	MaxParallelTools int

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// Engine is the high-level façade aggregating the conversation store, agent
// registry, tool subsystem and planning loop.
type Engine struct {
	opts  Options
	store *conversation.Store
	tools *tool.Registry
	loop  *director.Loop

	mu     sync.RWMutex
	agents map[string]core.Agent
}

// New creates an Engine with optional overrides.
func New(optFns ...func(o *Options)) *Engine {
	opts := Options{
		MaxSteps:        director.DefaultMaxSteps,
		EventBufferSize: 64,
		Logger:          logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	e := &Engine{
		opts:   opts,
		store:  conversation.NewStore(),
		tools:  tool.NewRegistry(),
		agents: make(map[string]core.Agent),
	}
	executor := tool.NewExecutor(e.tools, func(o *tool.ExecutorOptions) {
		o.MaxParallel = opts.MaxParallelTools
		o.Logger = opts.Logger
	})
	e.loop = director.NewLoop(e, executor, func(o *director.LoopOptions) {
		o.MaxSteps = opts.MaxSteps
		o.Logger = opts.Logger
	})
	return e
}

// RegisterAgent adds an agent, replacing any previous agent with the same id.
func (e *Engine) RegisterAgent(a core.Agent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.agents[a.ID()] = a
}

// GetAgent implements director.AgentResolver.
func (e *Engine) GetAgent(id string) (core.Agent, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	a, ok := e.agents[id]
	return a, ok
}

// Agents returns all registered agents in unspecified order. Useful as a
// director roster.
func (e *Engine) Agents() []core.Agent {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]core.Agent, 0, len(e.agents))
	for _, a := range e.agents {
		out = append(out, a)
	}
	return out
}

// RegisterTool adds a tool to the shared registry.
func (e *Engine) RegisterTool(t tool.Tool) { e.tools.Register(t) }

// StartConversation creates a new conversation and returns its id.
func (e *Engine) StartConversation() string { return e.store.Start() }

// SendMessage runs one full planning loop for the given conversation and
// returns the event stream. The stream carries director decisions, step
// activity and tool traffic, and is closed after exactly one terminal event
// (unless ctx is cancelled first). The only non-stream failure is an unknown
// conversation id.
//
// Concurrent sends to the same conversation serialize on its gate; sends to
// different conversations run independently.
func (e *Engine) SendMessage(
	ctx context.Context,
	conversationID string,
	text string,
	directorID string,
	tenant *core.TenantContext,
) (<-chan core.Event, error) {
	conv := e.store.Get(conversationID)
	if conv == nil {
		return nil, core.ErrConversationNotFound
	}

	ch := make(chan core.Event, e.opts.EventBufferSize)
	go func() {
		defer close(ch)

		release, ok := e.store.Acquire(conversationID)
		if !ok {
			return
		}
		defer release()

		emit := func(ev core.Event) bool {
			ev.ConversationID = conversationID
			conv.AddMessage(ev.Message)
			select {
			case <-ctx.Done():
				return false
			case ch <- ev:
				return true
			}
		}
		e.loop.Run(ctx, conv, core.NewUserMessage(text), directorID, tenant, emit)
	}()
	return ch, nil
}

// SendMessageSync drains the event stream of SendMessage and returns all
// events up to and including the terminal one.
func (e *Engine) SendMessageSync(
	ctx context.Context,
	conversationID string,
	text string,
	directorID string,
	tenant *core.TenantContext,
) ([]core.Event, error) {
	ch, err := e.SendMessage(ctx, conversationID, text, directorID, tenant)
	if err != nil {
		return nil, err
	}
	var events []core.Event
	for ev := range ch {
		events = append(events, ev)
	}
	if ctx.Err() != nil {
		return events, ctx.Err()
	}
	return events, nil
}

// GetHistory returns a copy of the conversation's message history.
func (e *Engine) GetHistory(conversationID string) ([]core.Message, error) {
	conv := e.store.Get(conversationID)
	if conv == nil {
		return nil, core.ErrConversationNotFound
	}
	return conv.Messages(), nil
}

// GetSteps returns the conversation's executed-step records.
func (e *Engine) GetSteps(conversationID string) ([]*core.ExecutedStep, error) {
	conv := e.store.Get(conversationID)
	if conv == nil {
		return nil, core.ErrConversationNotFound
	}
	return conv.Steps(), nil
}

// GetHandoffs returns the conversation's handoff audit trail.
func (e *Engine) GetHandoffs(conversationID string) ([]core.Handoff, error) {
	conv := e.store.Get(conversationID)
	if conv == nil {
		return nil, core.ErrConversationNotFound
	}
	return conv.Handoffs(), nil
}

// LoadConversationHistory replaces the conversation's message history with an
// externally persisted transcript, e.g. when rehydrating from durable storage.
func (e *Engine) LoadConversationHistory(conversationID string, messages []core.Message) error {
	if !e.store.LoadHistory(conversationID, messages) {
		return core.ErrConversationNotFound
	}
	return nil
}
