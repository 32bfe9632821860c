// Package conversation provides the in-memory conversation store: a registry
// of conversation state keyed by id with per-conversation mutual exclusion.
// Concurrent messages to the same conversation serialize; distinct
// conversations share no lock and impose no backpressure on one another.
package conversation

import (
	"sync"

	"github.com/hupe1980/agentdirector/core"
)

// entry pairs a conversation with its dedicated gate. The gate is held for
// the duration of one full planning loop so step records from two concurrent
// SendMessage calls can never interleave.
type entry struct {
	conv *core.Conversation
	gate sync.Mutex
}

// Store is a volatile conversation registry. Conversations are created on
// Start and live as long as the process; eviction is an external concern.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[string]*entry)}
}

// Start creates a new conversation and returns its id.
func (s *Store) Start() string {
	conv := core.NewConversation()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[conv.ID] = &entry{conv: conv}
	return conv.ID
}

// Get returns the canonical conversation instance or nil when unknown.
// Callers interact through the store while holding the id's gate; they must
// not retain the reference across planning loops.
func (s *Store) Get(id string) *core.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.entries[id]; ok {
		return e.conv
	}
	return nil
}

// Append adds a message to the conversation's history. False when the id is
// unknown.
func (s *Store) Append(id string, m core.Message) bool {
	conv := s.Get(id)
	if conv == nil {
		return false
	}
	conv.AddMessage(m)
	return true
}

// LoadHistory replaces the conversation's message history with an externally
// persisted transcript. False when the id is unknown.
func (s *Store) LoadHistory(id string, messages []core.Message) bool {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	e.gate.Lock()
	defer e.gate.Unlock()
	e.conv.SetMessages(messages)
	return true
}

// Acquire locks the conversation's dedicated gate and returns the release
// function. ok is false when the id is unknown. The gate must be held for
// the full planning loop of one SendMessage call.
func (s *Store) Acquire(id string) (release func(), ok bool) {
	s.mu.RLock()
	e, exists := s.entries[id]
	s.mu.RUnlock()
	if !exists {
		return nil, false
	}
	e.gate.Lock()
	return e.gate.Unlock, true
}

// Len returns the number of conversations held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
