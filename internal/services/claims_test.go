package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relay/internal/domain"
)

func testGroup() domain.AffinityGroup {
	return domain.AffinityGroup{ProjectID: "siteA", UserID: "u1"}
}

func TestEnsureClaim_ClaimsWarmContainer(t *testing.T) {
	claims := NewClaims(newTestStore(t))
	ctx := context.Background()

	require.NoError(t, claims.RegisterContainer(ctx, "ctr-a"))

	claim, err := claims.EnsureClaim(ctx, testGroup())
	require.NoError(t, err)
	assert.Equal(t, "ctr-a", claim.ContainerID)
	assert.Equal(t, domain.ClaimClaimed, claim.Status)

	// Repeat calls return the held claim
	again, err := claims.EnsureClaim(ctx, testGroup())
	require.NoError(t, err)
	assert.Equal(t, claim.ContainerID, again.ContainerID)
}

func TestEnsureClaim_PoolExhausted(t *testing.T) {
	claims := NewClaims(newTestStore(t))

	_, err := claims.EnsureClaim(context.Background(), testGroup())
	assert.ErrorIs(t, err, domain.ErrNoWarmContainer)
}

func TestClaimLifecycle_RoundTrip(t *testing.T) {
	claims := NewClaims(newTestStore(t))
	ctx := context.Background()

	require.NoError(t, claims.RegisterContainer(ctx, "ctr-a"))
	_, err := claims.EnsureClaim(ctx, testGroup())
	require.NoError(t, err)

	// claimed -> processing
	require.NoError(t, claims.MarkActive(ctx, testGroup()))
	claim, err := claims.Get(ctx, testGroup())
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimProcessing, claim.Status)

	// processing -> idle
	require.NoError(t, claims.MarkIdle(ctx, testGroup()))
	claim, err = claims.Get(ctx, testGroup())
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimIdle, claim.Status)

	// idle -> processing on the next message
	require.NoError(t, claims.MarkActive(ctx, testGroup()))
	claim, err = claims.Get(ctx, testGroup())
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimProcessing, claim.Status)

	// forced release returns the container to the pool
	require.NoError(t, claims.Release(ctx, testGroup()))
	_, err = claims.Get(ctx, testGroup())
	assert.ErrorIs(t, err, domain.ErrClaimNotFound)

	containers, err := claims.ListContainers(ctx)
	require.NoError(t, err)
	require.Len(t, containers, 1)
	assert.Equal(t, domain.ClaimWarm, containers[0].Status)
}

func TestMarkIdle_OnlyFromProcessing(t *testing.T) {
	claims := NewClaims(newTestStore(t))
	ctx := context.Background()

	require.NoError(t, claims.RegisterContainer(ctx, "ctr-a"))
	_, err := claims.EnsureClaim(ctx, testGroup())
	require.NoError(t, err)

	// Claimed but never active: MarkIdle is a no-op
	require.NoError(t, claims.MarkIdle(ctx, testGroup()))
	claim, err := claims.Get(ctx, testGroup())
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimClaimed, claim.Status)
}

func TestMarkIdleIfQuietSince(t *testing.T) {
	claims := NewClaims(newTestStore(t))
	ctx := context.Background()

	require.NoError(t, claims.RegisterContainer(ctx, "ctr-a"))
	_, err := claims.EnsureClaim(ctx, testGroup())
	require.NoError(t, err)
	require.NoError(t, claims.MarkActive(ctx, testGroup()))

	// Activity after the cutoff: the claim stays hot
	require.NoError(t, claims.MarkIdleIfQuietSince(ctx, testGroup(), time.Now().UTC().Add(-time.Hour)))
	claim, err := claims.Get(ctx, testGroup())
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimProcessing, claim.Status)

	// Activity before the cutoff: the claim idles
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, claims.MarkIdleIfQuietSince(ctx, testGroup(), time.Now().UTC()))
	claim, err = claims.Get(ctx, testGroup())
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimIdle, claim.Status)

	// Missing claim is not an error
	require.NoError(t, claims.MarkIdleIfQuietSince(ctx, domain.AffinityGroup{ProjectID: "x", UserID: "y"}, time.Now().UTC()))
}

func TestReleaseIfIdleSince(t *testing.T) {
	claims := NewClaims(newTestStore(t))
	ctx := context.Background()

	require.NoError(t, claims.RegisterContainer(ctx, "ctr-a"))
	_, err := claims.EnsureClaim(ctx, testGroup())
	require.NoError(t, err)
	require.NoError(t, claims.MarkActive(ctx, testGroup()))
	require.NoError(t, claims.MarkIdle(ctx, testGroup()))

	// Still a processing claim elsewhere in time: not quiet long enough
	require.NoError(t, claims.ReleaseIfIdleSince(ctx, testGroup(), time.Now().UTC().Add(-time.Hour)))
	claim, err := claims.Get(ctx, testGroup())
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimIdle, claim.Status)

	// Quiet past the cutoff: released, container back in the pool
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, claims.ReleaseIfIdleSince(ctx, testGroup(), time.Now().UTC()))
	_, err = claims.Get(ctx, testGroup())
	assert.ErrorIs(t, err, domain.ErrClaimNotFound)

	containers, err := claims.ListContainers(ctx)
	require.NoError(t, err)
	require.Len(t, containers, 1)
	assert.Equal(t, domain.ClaimWarm, containers[0].Status)
}

func TestReleaseIfIdleSince_SkipsProcessingClaim(t *testing.T) {
	claims := NewClaims(newTestStore(t))
	ctx := context.Background()

	require.NoError(t, claims.RegisterContainer(ctx, "ctr-a"))
	_, err := claims.EnsureClaim(ctx, testGroup())
	require.NoError(t, err)
	require.NoError(t, claims.MarkActive(ctx, testGroup()))

	// A processing claim never gets reclaimed, however old
	require.NoError(t, claims.ReleaseIfIdleSince(ctx, testGroup(), time.Now().UTC().Add(time.Hour)))
	claim, err := claims.Get(ctx, testGroup())
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimProcessing, claim.Status)
}

func TestRelease_MissingClaimIsNoop(t *testing.T) {
	claims := NewClaims(newTestStore(t))

	assert.NoError(t, claims.Release(context.Background(), testGroup()))
}
