package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"relay/internal/domain"
	"relay/internal/logging"
	"relay/internal/ports"
)

// Router carries inbound messages through thread resolution, session lookup,
// queue provisioning, and container claiming, then serializes command
// envelopes onto the group's input queue.
type Router struct {
	claims    *Claims
	registry  *Registry
	responses ports.ResponseStore
	topology  *Topology
	transport ports.QueueTransport
}

// NewRouter creates a new Router
func NewRouter(registry *Registry, topology *Topology, claims *Claims, transport ports.QueueTransport, responses ports.ResponseStore) *Router {
	return &Router{
		claims:    claims,
		registry:  registry,
		responses: responses,
		topology:  topology,
		transport: transport,
	}
}

// RouteResult reports where an inbound message ended up
type RouteResult struct {
	BranchName  string
	CommandID   string
	ContainerID string
	InputQueue  string
	SessionID   string
	ThreadID    string
}

// Route runs one inbound message through the full pipeline described by the
// route contract: thread id, session, queues, claim, envelope.
func (r *Router) Route(ctx context.Context, msg domain.InboundMessage, clientID, projectID, userID, instruction string) (*RouteResult, error) {
	threadID := domain.ExtractThreadID(msg)

	session, err := r.registry.GetOrCreate(ctx, clientID, projectID, userID, threadID, msg.Channel)
	if err != nil {
		return nil, err
	}

	group := session.Group()
	pair, err := r.topology.EnsureQueues(ctx, group)
	if err != nil {
		return nil, err
	}

	claim, err := r.claims.EnsureClaim(ctx, group)
	if err != nil {
		return nil, err
	}

	if err := r.claims.MarkActive(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to mark claim active: %w", err)
	}

	envelope := domain.Envelope{
		Command:     "edit",
		CommandID:   uuid.New().String(),
		EnqueuedAt:  time.Now().UTC(),
		Instruction: instruction,
		SessionID:   session.SessionID,
		Correlation: domain.Correlation{
			Channel:  msg.Channel,
			GroupKey: group.Key(),
			ThreadID: threadID,
		},
	}

	if err := r.Send(ctx, pair.InputQueue, envelope); err != nil {
		return nil, err
	}

	logging.Logger.Info("Message routed",
		"session_id", session.SessionID,
		"thread_id", threadID,
		"group", group.Key(),
		"container_id", claim.ContainerID,
		"command_id", envelope.CommandID)

	return &RouteResult{
		BranchName:  session.BranchName,
		CommandID:   envelope.CommandID,
		ContainerID: claim.ContainerID,
		InputQueue:  pair.InputQueue,
		SessionID:   session.SessionID,
		ThreadID:    threadID,
	}, nil
}

// Send serializes one envelope onto a queue. Fire-and-forget: the commandId
// inside the envelope is the caller's correlation handle.
func (r *Router) Send(ctx context.Context, queue string, envelope domain.Envelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}
	if err := r.transport.Send(ctx, queue, payload); err != nil {
		return fmt.Errorf("failed to send envelope: %w", err)
	}
	return nil
}

// CollectResponses drains one batch from a group's output queue into the
// response store. At-least-once transport means duplicates arrive; storing
// by commandId is idempotent so they are harmless. Returns how many
// responses were collected.
func (r *Router) CollectResponses(ctx context.Context, group domain.AffinityGroup, max int) (int, error) {
	queue := domain.OutputQueueName(group)

	messages, err := r.transport.Receive(ctx, queue, max)
	if err != nil {
		return 0, fmt.Errorf("failed to receive responses: %w", err)
	}

	collected := 0
	for _, m := range messages {
		var resp domain.Response
		if err := json.Unmarshal(m.Payload, &resp); err != nil {
			logging.Logger.Warn("Dropping malformed response",
				"queue", queue,
				"error", err)
			// Ack it anyway: a malformed payload never becomes valid
			if err := r.transport.Ack(ctx, m.Receipt); err != nil {
				return collected, err
			}
			continue
		}

		if err := r.responses.PutResponse(ctx, resp.CommandID, m.Payload); err != nil {
			return collected, err
		}
		if err := r.transport.Ack(ctx, m.Receipt); err != nil {
			return collected, err
		}
		collected++
	}

	return collected, nil
}

// Correlate returns the stored response for a command id, or
// domain.ErrResponseNotFound while the worker is still running.
func (r *Router) Correlate(ctx context.Context, commandID string) (*domain.Response, error) {
	payload, err := r.responses.GetResponse(ctx, commandID)
	if err != nil {
		return nil, err
	}

	var resp domain.Response
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &resp, nil
}
