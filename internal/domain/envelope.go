package domain

import "time"

// Correlation carries the context a worker echoes back so responses can be
// matched to the originating session.
type Correlation struct {
	Channel  Channel `json:"channel"`
	GroupKey string  `json:"group_key"`
	ThreadID string  `json:"thread_id"`
}

// Envelope is the unit of work placed on an input queue
type Envelope struct {
	Command     string      `json:"command"`
	CommandID   string      `json:"command_id"`
	Correlation Correlation `json:"correlation"`
	EnqueuedAt  time.Time   `json:"enqueued_at"`
	Instruction string      `json:"instruction"`
	SessionID   string      `json:"session_id"`
}

// Response is what a worker posts to the output queue when an envelope has
// been processed
type Response struct {
	CommandID   string    `json:"command_id"`
	CompletedAt time.Time `json:"completed_at"`
	Error       string    `json:"error,omitempty"`
	Result      string    `json:"result,omitempty"`
	SessionID   string    `json:"session_id"`
	Success     bool      `json:"success"`
}
