package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storageadapter "relay/internal/adapters/storage"
	"relay/internal/domain"
)

func newTestRouter(t *testing.T) (*Router, *storageadapter.SQLiteStore) {
	t.Helper()

	store := newTestStore(t)
	router := NewRouter(
		NewRegistry(store),
		NewTopology(store),
		NewClaims(store),
		store,
		store,
	)
	return router, store
}

func TestRoute_FullPipeline(t *testing.T) {
	router, store := newTestRouter(t)
	ctx := context.Background()

	require.NoError(t, store.RegisterContainer(ctx, "ctr-a"))

	msg := domain.InboundMessage{
		Channel: domain.ChannelEmail,
		Body:    "please fix the header",
		Email: domain.EmailFields{
			MessageID:  "<new@x>",
			References: []string{"<orig@x>", "<mid@x>"},
		},
	}

	result, err := router.Route(ctx, msg, "acme", "siteA", "u1", "fix the header")
	require.NoError(t, err)

	assert.Len(t, result.ThreadID, domain.ThreadIDLength)
	assert.Equal(t, "acme-siteA-"+result.ThreadID, result.SessionID)
	assert.Equal(t, "thread-"+result.ThreadID, result.BranchName)
	assert.Equal(t, "ctr-a", result.ContainerID)
	assert.Equal(t, "relay-in-siteA-u1", result.InputQueue)
	assert.NotEmpty(t, result.CommandID)

	// The claim went straight to processing
	claim, err := store.GetClaim(ctx, domain.AffinityGroup{ProjectID: "siteA", UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimProcessing, claim.Status)

	// The envelope on the input queue carries the correlation context
	messages, err := store.Receive(ctx, result.InputQueue, 1)
	require.NoError(t, err)
	require.Len(t, messages, 1)

	var envelope domain.Envelope
	require.NoError(t, json.Unmarshal(messages[0].Payload, &envelope))
	assert.Equal(t, "edit", envelope.Command)
	assert.Equal(t, result.CommandID, envelope.CommandID)
	assert.Equal(t, result.SessionID, envelope.SessionID)
	assert.Equal(t, "fix the header", envelope.Instruction)
	assert.Equal(t, domain.ChannelEmail, envelope.Correlation.Channel)
	assert.Equal(t, "siteA/u1", envelope.Correlation.GroupKey)
	assert.Equal(t, result.ThreadID, envelope.Correlation.ThreadID)
}

func TestRoute_RepliesLandOnSameSession(t *testing.T) {
	router, store := newTestRouter(t)
	ctx := context.Background()

	require.NoError(t, store.RegisterContainer(ctx, "ctr-a"))

	original := domain.InboundMessage{
		Channel: domain.ChannelEmail,
		Email:   domain.EmailFields{MessageID: "<orig@x>"},
	}
	reply := domain.InboundMessage{
		Channel: domain.ChannelEmail,
		Email: domain.EmailFields{
			MessageID:  "<new@x>",
			InReplyTo:  "<orig@x>",
			References: []string{"<orig@x>"},
		},
	}

	first, err := router.Route(ctx, original, "acme", "siteA", "u1", "start")
	require.NoError(t, err)
	second, err := router.Route(ctx, reply, "acme", "siteA", "u1", "continue")
	require.NoError(t, err)

	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Equal(t, first.ThreadID, second.ThreadID)
	assert.Equal(t, first.ContainerID, second.ContainerID)
	assert.NotEqual(t, first.CommandID, second.CommandID)
}

func TestRoute_NoWarmContainer(t *testing.T) {
	router, _ := newTestRouter(t)

	msg := domain.InboundMessage{
		Channel: domain.ChannelChat,
		Chat:    domain.ChatFields{ThreadID: "t1"},
	}

	_, err := router.Route(context.Background(), msg, "acme", "siteA", "u1", "hi")
	assert.ErrorIs(t, err, domain.ErrNoWarmContainer)
}

func TestCollectResponses_AndCorrelate(t *testing.T) {
	router, store := newTestRouter(t)
	ctx := context.Background()
	group := domain.AffinityGroup{ProjectID: "siteA", UserID: "u1"}

	// A worker posts its result on the output queue
	response := domain.Response{
		CommandID:   "cmd-1",
		CompletedAt: time.Now().UTC(),
		Result:      "done",
		SessionID:   "acme-siteA-abc12345",
		Success:     true,
	}
	payload, err := json.Marshal(response)
	require.NoError(t, err)
	require.NoError(t, store.Send(ctx, domain.OutputQueueName(group), payload))

	// Not yet collected
	_, err = router.Correlate(ctx, "cmd-1")
	assert.ErrorIs(t, err, domain.ErrResponseNotFound)

	collected, err := router.CollectResponses(ctx, group, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, collected)

	got, err := router.Correlate(ctx, "cmd-1")
	require.NoError(t, err)
	assert.True(t, got.Success)
	assert.Equal(t, "done", got.Result)
	assert.Equal(t, response.SessionID, got.SessionID)

	// The queue is drained
	messages, err := store.Receive(ctx, domain.OutputQueueName(group), 10)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestCollectResponses_DuplicateDeliveryIsIdempotent(t *testing.T) {
	router, store := newTestRouter(t)
	ctx := context.Background()
	group := domain.AffinityGroup{ProjectID: "siteA", UserID: "u1"}

	response := domain.Response{CommandID: "cmd-1", Success: true}
	payload, err := json.Marshal(response)
	require.NoError(t, err)

	// At-least-once transport: the same response arrives twice
	require.NoError(t, store.Send(ctx, domain.OutputQueueName(group), payload))
	require.NoError(t, store.Send(ctx, domain.OutputQueueName(group), payload))

	collected, err := router.CollectResponses(ctx, group, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, collected)

	got, err := router.Correlate(ctx, "cmd-1")
	require.NoError(t, err)
	assert.True(t, got.Success)
}

func TestCollectResponses_MalformedPayloadAcked(t *testing.T) {
	router, store := newTestRouter(t)
	ctx := context.Background()
	group := domain.AffinityGroup{ProjectID: "siteA", UserID: "u1"}

	require.NoError(t, store.Send(ctx, domain.OutputQueueName(group), []byte("not json")))

	collected, err := router.CollectResponses(ctx, group, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, collected)

	// Malformed payloads are acked, not redelivered forever
	messages, err := store.Receive(ctx, domain.OutputQueueName(group), 10)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestCorrelate_FailedCommand(t *testing.T) {
	router, store := newTestRouter(t)
	ctx := context.Background()

	response := domain.Response{
		CommandID: "cmd-err",
		Error:     "merge conflict",
		Success:   false,
	}
	payload, err := json.Marshal(response)
	require.NoError(t, err)
	require.NoError(t, store.PutResponse(ctx, response.CommandID, payload))

	got, err := router.Correlate(ctx, "cmd-err")
	require.NoError(t, err)
	assert.False(t, got.Success)
	assert.Equal(t, "merge conflict", got.Error)
}
