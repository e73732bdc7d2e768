package storage

import "time"

// SessionModel is the GORM model for sessions table
type SessionModel struct {
	BranchName   string `gorm:"not null;default:''"`
	ClientID     string `gorm:"not null;index:idx_identity,unique"`
	CreatedAt    time.Time
	LastActivity time.Time `gorm:"not null;index:idx_session_activity"`
	ProjectID    string    `gorm:"not null;index:idx_identity,unique;index:idx_session_group"`
	SessionID    string    `gorm:"primaryKey"`
	Source       string    `gorm:"not null;default:''"`
	ThreadID     string    `gorm:"not null;index:idx_identity,unique"`
	UpdatedAt    time.Time
	UserID       string `gorm:"not null;index:idx_identity,unique;index:idx_session_group"`
}

// TableName specifies the table name for GORM
func (SessionModel) TableName() string { return "sessions" }

// ClaimModel is the GORM model for container claims. One row per affinity
// group; GroupKey is the primary key so claiming is a create-if-absent.
type ClaimModel struct {
	ClaimedAt    time.Time
	ContainerID  string `gorm:"not null;index:idx_claim_container"`
	CreatedAt    time.Time
	GroupKey     string    `gorm:"primaryKey"`
	LastActivity time.Time `gorm:"not null;index:idx_claim_activity"`
	Status       string    `gorm:"not null;check:status IN ('claimed','processing','idle')"`
	UpdatedAt    time.Time
	Version      int64 `gorm:"not null;default:1"`
}

// TableName specifies the table name for GORM
func (ClaimModel) TableName() string { return "container_claims" }

// ContainerModel is the GORM model for the worker container pool
type ContainerModel struct {
	ContainerID  string `gorm:"primaryKey"`
	CreatedAt    time.Time
	RegisteredAt time.Time
	Status       string `gorm:"not null;default:'warm';index:idx_container_status"`
	UpdatedAt    time.Time
}

// TableName specifies the table name for GORM
func (ContainerModel) TableName() string { return "containers" }

// QueuePairModel is the GORM model for provisioned queue pairs
type QueuePairModel struct {
	CreatedAt   time.Time
	GroupKey    string `gorm:"primaryKey"`
	InputQueue  string `gorm:"not null"`
	OutputQueue string `gorm:"not null"`
	UpdatedAt   time.Time
}

// TableName specifies the table name for GORM
func (QueuePairModel) TableName() string { return "queue_pairs" }

// QueueMessageModel is one durable queue entry. InFlightUntil is zero while
// the message is pending; a receive stamps it and an unacked message becomes
// pending again once the stamp expires (at-least-once delivery).
type QueueMessageModel struct {
	CreatedAt     time.Time
	ID            uint       `gorm:"primaryKey;autoIncrement"`
	InFlightUntil *time.Time `gorm:"index:idx_msg_inflight"`
	Payload       []byte     `gorm:"not null"`
	Queue         string     `gorm:"not null;index:idx_msg_queue"`
	Receipt       string     `gorm:"not null;uniqueIndex:idx_msg_receipt"`
	UpdatedAt     time.Time
}

// TableName specifies the table name for GORM
func (QueueMessageModel) TableName() string { return "queue_messages" }

// ResponseModel stores correlated worker responses keyed by command id
type ResponseModel struct {
	CommandID string `gorm:"primaryKey"`
	CreatedAt time.Time
	Payload   []byte `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM
func (ResponseModel) TableName() string { return "responses" }
