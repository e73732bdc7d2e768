package domain

import "errors"

var (
	ErrClaimNotFound    = errors.New("claim not found")
	ErrContainerExists  = errors.New("container already registered")
	ErrNoWarmContainer  = errors.New("no warm container available")
	ErrQueueBusy        = errors.New("queue pair backs an active claim")
	ErrQueueNotFound    = errors.New("queue pair not found")
	ErrResponseNotFound = errors.New("response not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrStaleWrite       = errors.New("conditional write lost to a newer version")
)
