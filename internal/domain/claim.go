package domain

import "time"

// ClaimStatus represents the state of a container claim
type ClaimStatus string

const (
	ClaimWarm       ClaimStatus = "warm"
	ClaimClaimed    ClaimStatus = "claimed"
	ClaimProcessing ClaimStatus = "processing"
	ClaimIdle       ClaimStatus = "idle"
)

// AffinityGroup is the (project, user) scope that owns one claimed container
// and one queue pair
type AffinityGroup struct {
	ProjectID string
	UserID    string
}

// Key returns the canonical string form used to key claim and queue records
func (g AffinityGroup) Key() string {
	return g.ProjectID + "/" + g.UserID
}

// ParseAffinityGroup parses the canonical "project/user" form
func ParseAffinityGroup(key string) (AffinityGroup, bool) {
	for i := 0; i < len(key); i++ {
		if key[i] == '/' {
			return AffinityGroup{ProjectID: key[:i], UserID: key[i+1:]}, true
		}
	}
	return AffinityGroup{}, false
}

// ContainerClaim is the exclusive assignment of a container to an affinity
// group. At most one claim record exists per group; the Version column guards
// every transition so a stale writer loses instead of corrupting state.
type ContainerClaim struct {
	ClaimedAt    time.Time
	ContainerID  string
	Group        AffinityGroup
	LastActivity time.Time
	Status       ClaimStatus
	Version      int64
}

// Container is a worker container registered with the pool. Warm containers
// are running but unassigned and therefore available for claiming.
type Container struct {
	ContainerID  string
	RegisteredAt time.Time
	Status       ClaimStatus
}
