package service

import "errors"

var (
	ErrInvalidDuration      = errors.New("duration is not an allowed subscription length")
	ErrCodeNotFound         = errors.New("code not found")
	ErrCodeAlreadyUsed      = errors.New("code already used by another user")
	ErrCodeSpaceExhausted   = errors.New("could not find an unused code")
	ErrGatewayUnavailable   = errors.New("channel gateway unavailable")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrRemovalFailed        = errors.New("failed to remove member from channel")
	ErrSweepInProgress      = errors.New("a sweep is already running")
)
