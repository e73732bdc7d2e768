package domain

import "time"

// QueuePair is the input/output queue duo provisioned for one affinity group
type QueuePair struct {
	CreatedAt   time.Time
	Group       AffinityGroup
	InputQueue  string
	OutputQueue string
}

// InputQueueName derives the input queue name for a group. Names are a pure
// function of the group key so any component can address a queue without a
// lookup.
func InputQueueName(g AffinityGroup) string {
	return "relay-in-" + g.ProjectID + "-" + g.UserID
}

// OutputQueueName derives the output queue name for a group
func OutputQueueName(g AffinityGroup) string {
	return "relay-out-" + g.ProjectID + "-" + g.UserID
}
