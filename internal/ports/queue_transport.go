package ports

import "context"

// QueueTransport is the opaque send/receive primitive the router runs on.
// Delivery is at-least-once: consumers must tolerate duplicates.
type QueueTransport interface {
	// Send enqueues one payload. Atomic: an abandoned call leaves no
	// partial state.
	Send(ctx context.Context, queue string, payload []byte) error

	// Receive dequeues up to max pending payloads, marking them in-flight.
	// A payload not acknowledged before redelivery timeout becomes pending
	// again.
	Receive(ctx context.Context, queue string, max int) ([]QueueMessage, error)

	// Ack removes a delivered payload for good
	Ack(ctx context.Context, receipt string) error
}

// QueueMessage is one delivery from a queue
type QueueMessage struct {
	Payload []byte
	Receipt string
}

// ResponseStore records worker responses for correlation by command id
type ResponseStore interface {
	PutResponse(ctx context.Context, commandID string, payload []byte) error
	GetResponse(ctx context.Context, commandID string) ([]byte, error)
}
