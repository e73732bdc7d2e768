package storage

import (
	"relay/internal/domain"
)

// sessionModelToDomain converts a SessionModel (GORM) to domain.Session
func sessionModelToDomain(m SessionModel) domain.Session {
	return domain.Session{
		BranchName:   m.BranchName,
		ClientID:     m.ClientID,
		CreatedAt:    m.CreatedAt,
		LastActivity: m.LastActivity,
		ProjectID:    m.ProjectID,
		SessionID:    m.SessionID,
		Source:       domain.Channel(m.Source),
		ThreadID:     m.ThreadID,
		UserID:       m.UserID,
	}
}

// domainToSessionModel converts a domain.Session to SessionModel (GORM)
func domainToSessionModel(s domain.Session) SessionModel {
	return SessionModel{
		BranchName:   s.BranchName,
		ClientID:     s.ClientID,
		CreatedAt:    s.CreatedAt,
		LastActivity: s.LastActivity,
		ProjectID:    s.ProjectID,
		SessionID:    s.SessionID,
		Source:       string(s.Source),
		ThreadID:     s.ThreadID,
		UserID:       s.UserID,
	}
}

// claimModelToDomain converts a ClaimModel (GORM) to domain.ContainerClaim
func claimModelToDomain(m ClaimModel) domain.ContainerClaim {
	group, _ := domain.ParseAffinityGroup(m.GroupKey)
	return domain.ContainerClaim{
		ClaimedAt:    m.ClaimedAt,
		ContainerID:  m.ContainerID,
		Group:        group,
		LastActivity: m.LastActivity,
		Status:       domain.ClaimStatus(m.Status),
		Version:      m.Version,
	}
}

// containerModelToDomain converts a ContainerModel (GORM) to domain.Container
func containerModelToDomain(m ContainerModel) domain.Container {
	return domain.Container{
		ContainerID:  m.ContainerID,
		RegisteredAt: m.RegisteredAt,
		Status:       domain.ClaimStatus(m.Status),
	}
}

// queuePairModelToDomain converts a QueuePairModel (GORM) to domain.QueuePair
func queuePairModelToDomain(m QueuePairModel) domain.QueuePair {
	group, _ := domain.ParseAffinityGroup(m.GroupKey)
	return domain.QueuePair{
		CreatedAt:   m.CreatedAt,
		Group:       group,
		InputQueue:  m.InputQueue,
		OutputQueue: m.OutputQueue,
	}
}
