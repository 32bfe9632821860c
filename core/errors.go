package core

import "errors"

// ErrConversationNotFound is the one failure surfaced directly from
// SendMessage instead of through the event stream, because no stream exists
// for an unknown conversation.
var ErrConversationNotFound = errors.New("conversation not found")

// ErrAgentNotFound reports an unresolvable agent id.
var ErrAgentNotFound = errors.New("agent not found")

// ErrMaxStepsExceeded reports that a planning loop ran out of step budget.
var ErrMaxStepsExceeded = errors.New("maximum step limit reached")
