package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeriveSessionID(t *testing.T) {
	assert.Equal(t, "acme-siteA-abc12345", DeriveSessionID("acme", "siteA", "abc12345"))
}

func TestDeriveBranchName(t *testing.T) {
	assert.Equal(t, "thread-abc12345", DeriveBranchName("abc12345"))
}

func TestNewSession(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	s := NewSession("acme", "siteA", "u1", "abc12345", ChannelEmail, now)

	assert.Equal(t, "acme-siteA-abc12345", s.SessionID)
	assert.Equal(t, "thread-abc12345", s.BranchName)
	assert.Equal(t, ChannelEmail, s.Source)
	assert.Equal(t, now, s.CreatedAt)
	assert.Equal(t, now, s.LastActivity)
	assert.Equal(t, AffinityGroup{ProjectID: "siteA", UserID: "u1"}, s.Group())
}

func TestAffinityGroupKey(t *testing.T) {
	g := AffinityGroup{ProjectID: "siteA", UserID: "u1"}
	assert.Equal(t, "siteA/u1", g.Key())

	parsed, ok := ParseAffinityGroup("siteA/u1")
	assert.True(t, ok)
	assert.Equal(t, g, parsed)

	_, ok = ParseAffinityGroup("nokey")
	assert.False(t, ok)
}

func TestQueueNames(t *testing.T) {
	g := AffinityGroup{ProjectID: "siteA", UserID: "u1"}
	assert.Equal(t, "relay-in-siteA-u1", InputQueueName(g))
	assert.Equal(t, "relay-out-siteA-u1", OutputQueueName(g))
}
