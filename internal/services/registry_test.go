package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storageadapter "relay/internal/adapters/storage"
	"relay/internal/domain"
)

func newTestStore(t *testing.T) *storageadapter.SQLiteStore {
	t.Helper()

	store, err := storageadapter.NewSQLiteStore(filepath.Join(t.TempDir(), "relay.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestGetOrCreate_FirstContact(t *testing.T) {
	registry := NewRegistry(newTestStore(t))
	ctx := context.Background()

	session, err := registry.GetOrCreate(ctx, "acme", "siteA", "u1", "abc12345", domain.ChannelEmail)
	require.NoError(t, err)

	assert.Equal(t, "acme-siteA-abc12345", session.SessionID)
	assert.Equal(t, "thread-abc12345", session.BranchName)
	assert.Equal(t, domain.ChannelEmail, session.Source)
	assert.Equal(t, "u1", session.UserID)
}

func TestGetOrCreate_IdempotentAcrossSources(t *testing.T) {
	registry := NewRegistry(newTestStore(t))
	ctx := context.Background()

	first, err := registry.GetOrCreate(ctx, "acme", "siteA", "u1", "abc12345", domain.ChannelEmail)
	require.NoError(t, err)

	// Same identity over a different channel: identical session, updated
	// source
	second, err := registry.GetOrCreate(ctx, "acme", "siteA", "u1", "abc12345", domain.ChannelSMS)
	require.NoError(t, err)

	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Equal(t, first.BranchName, second.BranchName)
	assert.Equal(t, domain.ChannelSMS, second.Source)
	assert.False(t, second.LastActivity.Before(first.LastActivity))

	// The update is durable, not just reflected in the return value
	stored, err := registry.Get(ctx, first.SessionID)
	require.NoError(t, err)
	assert.Equal(t, domain.ChannelSMS, stored.Source)

	sessions, err := registry.ListSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestGetOrCreate_DistinctThreadsDistinctSessions(t *testing.T) {
	registry := NewRegistry(newTestStore(t))
	ctx := context.Background()

	a, err := registry.GetOrCreate(ctx, "acme", "siteA", "u1", "thread0a", domain.ChannelChat)
	require.NoError(t, err)
	b, err := registry.GetOrCreate(ctx, "acme", "siteA", "u1", "thread0b", domain.ChannelChat)
	require.NoError(t, err)

	assert.NotEqual(t, a.SessionID, b.SessionID)
	assert.Equal(t, a.Group(), b.Group(), "same project+user share one affinity group")

	grouped, err := registry.ListByGroup(ctx, a.Group())
	require.NoError(t, err)
	assert.Len(t, grouped, 2)
}
