package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relay/internal/domain"
)

func TestEnsureQueues_Idempotent(t *testing.T) {
	topology := NewTopology(newTestStore(t))
	ctx := context.Background()

	first, err := topology.EnsureQueues(ctx, testGroup())
	require.NoError(t, err)
	assert.Equal(t, "relay-in-siteA-u1", first.InputQueue)

	second, err := topology.EnsureQueues(ctx, testGroup())
	require.NoError(t, err)
	assert.Equal(t, first.InputQueue, second.InputQueue)

	pairs, err := topology.ListQueues(ctx)
	require.NoError(t, err)
	assert.Len(t, pairs, 1)
}

func TestDeleteQueues_MissingPairIsNoop(t *testing.T) {
	topology := NewTopology(newTestStore(t))

	assert.NoError(t, topology.DeleteQueues(context.Background(), testGroup()))
}

func TestDeleteQueues_RefusedUnderClaim(t *testing.T) {
	store := newTestStore(t)
	topology := NewTopology(store)
	claims := NewClaims(store)
	ctx := context.Background()

	_, err := topology.EnsureQueues(ctx, testGroup())
	require.NoError(t, err)
	require.NoError(t, claims.RegisterContainer(ctx, "ctr-a"))
	_, err = claims.EnsureClaim(ctx, testGroup())
	require.NoError(t, err)

	err = topology.DeleteQueues(ctx, testGroup())
	assert.ErrorIs(t, err, domain.ErrQueueBusy)

	// The pair survives the refused delete
	pairs, err := topology.ListQueues(ctx)
	require.NoError(t, err)
	assert.Len(t, pairs, 1)

	require.NoError(t, claims.Release(ctx, testGroup()))
	assert.NoError(t, topology.DeleteQueues(ctx, testGroup()))
}
